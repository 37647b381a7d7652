package inventory

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/jhoicas/bebidas-api/internal/domain"
	"github.com/jhoicas/bebidas-api/internal/domain/entity"
	"github.com/jhoicas/bebidas-api/internal/domain/repository"
	"github.com/jhoicas/bebidas-api/pkg/clock"
	"github.com/jhoicas/bebidas-api/pkg/logger"
)

// Reglas de negocio de entrada.
const (
	MaxStockInQuantity    = 100
	MaxNameLength         = 100
	MaxReasonLength       = 500
	DefaultDisposalReason = "過期報廢"
)

// Engine motor de inventario: todas las transiciones que preservan invariantes.
// Cada operación corre en una única transacción (TxRunner.Run); cualquier error aborta sin efectos parciales.
type Engine struct {
	tx    TxRunner
	clock clock.Clock
	log   *logger.Logger
	rec   Recorder
}

// NewEngine construye el motor. log y rec pueden ser nil.
func NewEngine(tx TxRunner, clk clock.Clock, log *logger.Logger, rec Recorder) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Engine{tx: tx, clock: clk, log: log, rec: rec}
}

// StockInInput entrada para registrar un lote nuevo.
type StockInInput struct {
	Name           string
	Quantity       int
	ProductionDate time.Time
	ExpiryDate     time.Time
}

// UpdateInput campos sobrescritos por Update.
type UpdateInput struct {
	Name           string
	Quantity       int
	ProductionDate time.Time
	ExpiryDate     time.Time
}

// Take cantidad retirada de un lote durante una salida.
type Take struct {
	BeverageID int64
	Quantity   int
	Removed    bool // el lote quedó en cero y se eliminó
}

// Withdrawal resultado de una salida FEFO exitosa.
type Withdrawal struct {
	Name      string
	Requested int
	// Representative primer lote tocado, con su estado posterior a la salida.
	Representative *entity.Beverage
	Takes          []Take
}

// StockIn inserta un lote NORMAL. El estado inicial es NORMAL aunque ya esté vencido:
// la cuarentena la hace el barrido diario.
func (e *Engine) StockIn(ctx context.Context, in StockInInput) (*entity.Beverage, error) {
	name := entity.NormalizeName(in.Name)
	if err := validateName(name); err != nil {
		return nil, e.fail(OpStockIn, err)
	}
	if in.Quantity < 1 || in.Quantity > MaxStockInQuantity {
		return nil, e.fail(OpStockIn, domain.Errorf(domain.ErrValidation,
			"la cantidad por entrada debe estar entre 1 y %d, recibido %d", MaxStockInQuantity, in.Quantity))
	}
	if err := validateDates(in.ProductionDate, in.ExpiryDate); err != nil {
		return nil, e.fail(OpStockIn, err)
	}

	b := &entity.Beverage{
		Name:           name,
		Quantity:       in.Quantity,
		ProductionDate: clock.DateOf(in.ProductionDate),
		ExpiryDate:     clock.DateOf(in.ExpiryDate),
		Status:         entity.StatusNormal,
	}
	err := e.tx.Run(ctx, func(repo repository.BeverageRepository) error {
		return repo.Insert(ctx, b)
	})
	if err != nil {
		return nil, e.fail(OpStockIn, err)
	}

	e.rec.ObserveOperation(OpStockIn, "OK")
	e.rec.AddUnits(DirectionIn, b.Quantity)
	e.log.Info().
		Int64("beverage_id", b.ID).
		Str("name", b.Name).
		Int("quantity", b.Quantity).
		Str("expiry_date", clock.FormatDate(b.ExpiryDate)).
		Msg("entrada registrada")
	return b, nil
}

// StockOut retira requested unidades de name siguiendo FEFO.
//
// Los candidatos llegan bloqueados y ordenados por (expiry_date, id), por lo que dos salidas
// concurrentes del mismo nombre adquieren los bloqueos en el mismo orden y no hay espera circular.
// Si la suma elegible no alcanza, la transacción se revierte y ningún lote cambia.
func (e *Engine) StockOut(ctx context.Context, name string, requested int) (*Withdrawal, error) {
	name = entity.NormalizeName(name)
	if err := validateName(name); err != nil {
		return nil, e.fail(OpStockOut, err)
	}
	if requested < 1 {
		return nil, e.fail(OpStockOut, domain.Errorf(domain.ErrValidation,
			"la cantidad a retirar debe ser mayor que 0, recibido %d", requested))
	}

	today := e.clock.Today()
	var w *Withdrawal
	err := e.tx.Run(ctx, func(repo repository.BeverageRepository) error {
		candidates, err := repo.FindEligibleForWithdrawal(ctx, name, today)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return domain.Errorf(domain.ErrNoStock, "no hay stock disponible de %s", name)
		}

		remaining := requested
		var first *entity.Beverage
		takes := make([]Take, 0, len(candidates))
		for _, c := range candidates {
			if remaining <= 0 {
				break
			}
			// Relectura con bloqueo: otra tx pudo confirmar entre el escaneo y esta iteración
			// en almacenes que liberan los bloqueos del escaneo de forma perezosa.
			b, err := repo.FindByIDForUpdate(ctx, c.ID)
			if err != nil {
				return err
			}
			if b == nil || b.Quantity <= 0 {
				continue
			}
			if first == nil {
				first = b
			}
			if b.Quantity <= remaining {
				remaining -= b.Quantity
				takes = append(takes, Take{BeverageID: b.ID, Quantity: b.Quantity, Removed: true})
				if err := repo.Delete(ctx, b.ID); err != nil {
					return err
				}
				b.Quantity = 0
				continue
			}
			b.Quantity -= remaining
			takes = append(takes, Take{BeverageID: b.ID, Quantity: remaining})
			remaining = 0
			if err := repo.Save(ctx, b); err != nil {
				return err
			}
		}
		if remaining > 0 {
			return domain.Errorf(domain.ErrInsufficientStock,
				"stock insuficiente, no se pueden retirar %d unidades de %s (faltan %d)", requested, name, remaining)
		}
		w = &Withdrawal{Name: name, Requested: requested, Representative: first, Takes: takes}
		return nil
	})
	if err != nil {
		e.log.Warn().Err(err).Str("name", name).Int("requested", requested).
			Str("today", clock.FormatDate(today)).Msg("salida rechazada")
		return nil, e.fail(OpStockOut, err)
	}

	e.rec.ObserveOperation(OpStockOut, "OK")
	e.rec.AddUnits(DirectionOut, requested)
	e.log.Info().
		Str("name", name).
		Int("quantity", requested).
		Int("batches", len(w.Takes)).
		Str("today", clock.FormatDate(today)).
		Msg("salida registrada")
	return w, nil
}

// Update sobrescribe nombre, cantidad y fechas. No toca estado, datos de baja ni CreatedAt.
func (e *Engine) Update(ctx context.Context, id int64, in UpdateInput) (*entity.Beverage, error) {
	name := entity.NormalizeName(in.Name)
	if err := validateName(name); err != nil {
		return nil, e.fail(OpUpdate, err)
	}
	if in.Quantity < 0 {
		return nil, e.fail(OpUpdate, domain.Errorf(domain.ErrValidation,
			"la cantidad no puede ser negativa, recibido %d", in.Quantity))
	}
	if err := validateDates(in.ProductionDate, in.ExpiryDate); err != nil {
		return nil, e.fail(OpUpdate, err)
	}

	var out *entity.Beverage
	err := e.tx.Run(ctx, func(repo repository.BeverageRepository) error {
		b, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return notFound(id)
		}
		b.Name = name
		b.Quantity = in.Quantity
		b.ProductionDate = clock.DateOf(in.ProductionDate)
		b.ExpiryDate = clock.DateOf(in.ExpiryDate)
		if err := repo.Save(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, e.fail(OpUpdate, err)
	}
	e.rec.ObserveOperation(OpUpdate, "OK")
	e.log.Info().Int64("beverage_id", id).Str("name", out.Name).Int("quantity", out.Quantity).Msg("lote actualizado")
	return out, nil
}

// Delete borrado administrativo sin restricción de estado.
func (e *Engine) Delete(ctx context.Context, id int64) error {
	err := e.tx.Run(ctx, func(repo repository.BeverageRepository) error {
		b, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return notFound(id)
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return e.fail(OpDelete, err)
	}
	e.rec.ObserveOperation(OpDelete, "OK")
	e.log.Info().Int64("beverage_id", id).Msg("lote eliminado")
	return nil
}

// QuarantineExpired pasa a QUARANTINED cada lote NORMAL con expiry_date < hoy.
// Los lotes ya en cuarentena o dados de baja no se tocan; una segunda llamada el mismo día devuelve 0.
func (e *Engine) QuarantineExpired(ctx context.Context) (int, error) {
	today := e.clock.Today()
	count := 0
	err := e.tx.Run(ctx, func(repo repository.BeverageRepository) error {
		count = 0
		expired, err := repo.FindExpired(ctx, today)
		if err != nil {
			return err
		}
		for _, c := range expired {
			if c.Status != entity.StatusNormal {
				continue
			}
			b, err := repo.FindByIDForUpdate(ctx, c.ID)
			if err != nil {
				return err
			}
			// Estado releído bajo bloqueo: otra tx pudo cambiarlo o actualizar la fecha.
			if b == nil || !b.IsExpired(today) || !b.Quarantine() {
				continue
			}
			if err := repo.Save(ctx, b); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, e.fail(OpQuarantine, err)
	}
	e.rec.ObserveOperation(OpQuarantine, "OK")
	e.rec.AddQuarantined(count)
	e.log.Info().Int("quarantined", count).Str("today", clock.FormatDate(today)).Msg("barrido de cuarentena")
	return count, nil
}

// Dispose da de baja un lote en cuarentena. El registro se conserva para el histórico.
func (e *Engine) Dispose(ctx context.Context, id int64, reason string) (*entity.Beverage, error) {
	if reason == "" {
		reason = DefaultDisposalReason
	}
	if utf8.RuneCountInString(reason) > MaxReasonLength {
		return nil, e.fail(OpDispose, domain.Errorf(domain.ErrValidation,
			"el motivo supera %d caracteres", MaxReasonLength))
	}

	var out *entity.Beverage
	err := e.tx.Run(ctx, func(repo repository.BeverageRepository) error {
		b, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return notFound(id)
		}
		from := b.Status
		if !b.Dispose(reason, e.clock.Now()) {
			return domain.Errorf(domain.ErrIllegalTransition,
				"solo se pueden dar de baja lotes en cuarentena, estado actual: %s", from)
		}
		if err := repo.Save(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, e.fail(OpDispose, err)
	}
	e.rec.ObserveOperation(OpDispose, "OK")
	e.log.Info().Int64("beverage_id", id).Str("reason", reason).Msg("lote dado de baja")
	return out, nil
}

// Statistics agrega sobre una única lectura de todos los lotes con un único "hoy".
func (e *Engine) Statistics(ctx context.Context) (entity.Statistics, error) {
	today := e.clock.Today()
	var stats entity.Statistics
	err := e.tx.Run(ctx, func(repo repository.BeverageRepository) error {
		all, err := repo.FindAll(ctx)
		if err != nil {
			return err
		}
		stats = entity.ComputeStatistics(all, today)
		return nil
	})
	return stats, err
}

// Today expone la fecha civil del reloj del motor (para proyectar campos derivados).
func (e *Engine) Today() time.Time {
	return e.clock.Today()
}

func (e *Engine) fail(op string, err error) error {
	e.rec.ObserveOperation(op, domain.KindOf(err))
	return err
}

func notFound(id int64) error {
	return domain.Errorf(domain.ErrNotFound, "no existe el lote con ID %d", id)
}

func validateName(name string) error {
	if name == "" {
		return domain.Errorf(domain.ErrValidation, "el nombre es obligatorio")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return domain.Errorf(domain.ErrValidation, "el nombre supera %d caracteres", MaxNameLength)
	}
	return nil
}

// validateDates ambas fechas obligatorias; el vencimiento no puede ser anterior a la producción.
func validateDates(production, expiry time.Time) error {
	if production.IsZero() {
		return domain.Errorf(domain.ErrValidation, "la fecha de producción es obligatoria")
	}
	if expiry.IsZero() {
		return domain.Errorf(domain.ErrValidation, "la fecha de vencimiento es obligatoria")
	}
	if clock.DateOf(expiry).Before(clock.DateOf(production)) {
		return domain.Errorf(domain.ErrValidation, "la fecha de vencimiento %s es anterior a la de producción %s",
			clock.FormatDate(expiry), clock.FormatDate(production))
	}
	return nil
}
