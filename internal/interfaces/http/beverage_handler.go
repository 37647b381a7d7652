package http

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bebidas-api/internal/application/dto"
	"github.com/jhoicas/bebidas-api/internal/application/inventory"
	"github.com/jhoicas/bebidas-api/internal/domain"
	"github.com/jhoicas/bebidas-api/pkg/clock"
	"github.com/jhoicas/bebidas-api/pkg/logger"
)

// BeverageHandler maneja las peticiones HTTP de lotes de bebidas.
type BeverageHandler struct {
	engine *inventory.Engine
	query  *inventory.QueryService
	log    *logger.Logger
}

// NewBeverageHandler construye el handler. log nil descarta los registros.
func NewBeverageHandler(engine *inventory.Engine, query *inventory.QueryService, log *logger.Logger) *BeverageHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &BeverageHandler{engine: engine, query: query, log: log}
}

// List godoc
// @Summary      Listar lotes
// @Tags         beverages
// @Produce      json
// @Param        name  query  string  false  "Filtrar por nombre exacto"
// @Success      200  {array}  dto.BeverageResponse
// @Router       /api/beverages [get]
func (h *BeverageHandler) List(c *fiber.Ctx) error {
	list, err := h.query.List(c.Context(), c.Query("name"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(list)
}

// GetByID godoc
// @Summary      Obtener lote por ID
// @Tags         beverages
// @Produce      json
// @Param        id   path  int  true  "ID del lote"
// @Success      200  {object}  dto.BeverageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/beverages/{id} [get]
func (h *BeverageHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return validationError(c, err.Error())
	}
	out, err := h.query.GetByID(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// StockIn godoc
// @Summary      Registrar entrada de un lote
// @Tags         beverages
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockInRequest  true  "name, quantity (1-100), productionDate, expiryDate"
// @Success      201   {object}  dto.BeverageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/beverages/stock-in [post]
func (h *BeverageHandler) StockIn(c *fiber.Ctx) error {
	var in dto.StockInRequest
	if err := c.BodyParser(&in); err != nil {
		return validationError(c, "cuerpo inválido")
	}
	if strings.TrimSpace(in.Name) == "" {
		return validationError(c, "name es requerido")
	}
	if in.Quantity == nil || *in.Quantity < 1 {
		return validationError(c, "quantity debe ser mayor que 0")
	}
	production, expiry, err := parseDates(in.ProductionDate, in.ExpiryDate)
	if err != nil {
		return validationError(c, err.Error())
	}
	b, err := h.engine.StockIn(c.Context(), inventory.StockInInput{
		Name:           in.Name,
		Quantity:       *in.Quantity,
		ProductionDate: production,
		ExpiryDate:     expiry,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToBeverageResponse(b, h.engine.Today()))
}

// StockOut godoc
// @Summary      Registrar salida FEFO
// @Description  Retira la cantidad pedida empezando por el lote que vence antes.
// @Tags         beverages
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockOutRequest  true  "name, quantity"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/beverages/stock-out [post]
func (h *BeverageHandler) StockOut(c *fiber.Ctx) error {
	var in dto.StockOutRequest
	if err := c.BodyParser(&in); err != nil {
		return validationError(c, "cuerpo inválido")
	}
	if strings.TrimSpace(in.Name) == "" {
		return validationError(c, "name es requerido")
	}
	if in.Quantity == nil || *in.Quantity < 1 {
		return validationError(c, "quantity debe ser mayor que 0")
	}
	w, err := h.engine.StockOut(c.Context(), in.Name, *in.Quantity)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.MessageResponse{
		Message: fmt.Sprintf("成功出庫 %d 瓶 %s", w.Requested, w.Name),
	})
}

// Update godoc
// @Summary      Actualizar lote
// @Tags         beverages
// @Accept       json
// @Produce      json
// @Param        id    path  int                        true  "ID del lote"
// @Param        body  body  dto.UpdateBeverageRequest  true  "name, quantity, productionDate, expiryDate"
// @Success      200   {object}  dto.BeverageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/beverages/{id} [put]
func (h *BeverageHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return validationError(c, err.Error())
	}
	var in dto.UpdateBeverageRequest
	if err := c.BodyParser(&in); err != nil {
		return validationError(c, "cuerpo inválido")
	}
	if strings.TrimSpace(in.Name) == "" {
		return validationError(c, "name es requerido")
	}
	if in.Quantity == nil || *in.Quantity < 0 {
		return validationError(c, "quantity es requerido y no puede ser negativo")
	}
	production, expiry, err := parseDates(in.ProductionDate, in.ExpiryDate)
	if err != nil {
		return validationError(c, err.Error())
	}
	b, err := h.engine.Update(c.Context(), id, inventory.UpdateInput{
		Name:           in.Name,
		Quantity:       *in.Quantity,
		ProductionDate: production,
		ExpiryDate:     expiry,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.ToBeverageResponse(b, h.engine.Today()))
}

// Delete godoc
// @Summary      Eliminar lote
// @Tags         beverages
// @Produce      json
// @Param        id   path  int  true  "ID del lote"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/beverages/{id} [delete]
func (h *BeverageHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return validationError(c, err.Error())
	}
	if err := h.engine.Delete(c.Context(), id); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: fmt.Sprintf("成功刪除飲料，ID: %d", id)})
}

// Expired godoc
// @Summary      Lotes vencidos (cualquier estado)
// @Tags         beverages
// @Produce      json
// @Success      200  {array}  dto.BeverageResponse
// @Router       /api/beverages/expired [get]
func (h *BeverageHandler) Expired(c *fiber.Ctx) error {
	list, err := h.query.ListExpired(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(list)
}

// ExpiringSoon godoc
// @Summary      Lotes que vencen en los próximos 7 días
// @Tags         beverages
// @Produce      json
// @Success      200  {array}  dto.BeverageResponse
// @Router       /api/beverages/expiring-soon [get]
func (h *BeverageHandler) ExpiringSoon(c *fiber.Ctx) error {
	list, err := h.query.ListExpiringSoon(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(list)
}

// Statistics godoc
// @Summary      Estadísticas de inventario
// @Tags         beverages
// @Produce      json
// @Success      200  {object}  dto.StatisticsResponse
// @Router       /api/beverages/statistics [get]
func (h *BeverageHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.engine.Statistics(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.ToStatisticsResponse(stats))
}

// QuarantineExpired godoc
// @Summary      Poner en cuarentena los lotes vencidos
// @Tags         beverages
// @Produce      json
// @Success      200  {object}  dto.QuarantineResponse
// @Router       /api/beverages/quarantine-expired [post]
func (h *BeverageHandler) QuarantineExpired(c *fiber.Ctx) error {
	n, err := h.engine.QuarantineExpired(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.QuarantineResponse{
		Message:          fmt.Sprintf("成功隔離 %d 個過期商品", n),
		QuarantinedCount: n,
	})
}

// Quarantined godoc
// @Summary      Lotes en cuarentena
// @Tags         beverages
// @Produce      json
// @Success      200  {array}  dto.BeverageResponse
// @Router       /api/beverages/quarantined [get]
func (h *BeverageHandler) Quarantined(c *fiber.Ctx) error {
	list, err := h.query.ListQuarantined(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(list)
}

// Dispose godoc
// @Summary      Dar de baja un lote en cuarentena
// @Tags         beverages
// @Accept       json
// @Produce      json
// @Param        id    path  int                 true   "ID del lote"
// @Param        body  body  dto.DisposeRequest  false  "reason (opcional, por defecto 過期報廢)"
// @Success      200   {object}  dto.BeverageResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/beverages/{id}/dispose [post]
func (h *BeverageHandler) Dispose(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return validationError(c, err.Error())
	}
	var in dto.DisposeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return validationError(c, "cuerpo inválido")
		}
	}
	b, err := h.engine.Dispose(c.Context(), id, strings.TrimSpace(in.Reason))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.ToBeverageResponse(b, h.engine.Today()))
}

// Disposed godoc
// @Summary      Lotes dados de baja
// @Tags         beverages
// @Produce      json
// @Success      200  {array}  dto.BeverageResponse
// @Router       /api/beverages/disposed [get]
func (h *BeverageHandler) Disposed(c *fiber.Ctx) error {
	list, err := h.query.ListDisposed(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(list)
}

func parseID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("id %q inválido", raw)
	}
	return id, nil
}

func parseDates(production, expiry string) (time.Time, time.Time, error) {
	if production == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("productionDate es requerido")
	}
	if expiry == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("expiryDate es requerido")
	}
	p, err := clock.ParseDate(production)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	e, err := clock.ParseDate(expiry)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return p, e, nil
}

// fail responde el error tipado. Los errores internos se registran con su causa, que no llega al cliente.
func (h *BeverageHandler) fail(c *fiber.Ctx, err error) error {
	if domain.KindOf(err) == domain.CodeInternal {
		h.log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	}
	return writeError(c, err)
}
