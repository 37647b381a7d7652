package dto

import (
	"time"

	"github.com/jhoicas/bebidas-api/internal/domain/entity"
	"github.com/jhoicas/bebidas-api/pkg/clock"
)

// StockInRequest body para POST /api/beverages/stock-in.
// Las fechas llegan como YYYY-MM-DD; Quantity es puntero para distinguir ausencia de cero.
type StockInRequest struct {
	Name           string `json:"name"`
	Quantity       *int   `json:"quantity"`
	ProductionDate string `json:"productionDate"`
	ExpiryDate     string `json:"expiryDate"`
}

// UpdateBeverageRequest body para PUT /api/beverages/{id}. Mismos campos que la entrada.
type UpdateBeverageRequest StockInRequest

// StockOutRequest body para POST /api/beverages/stock-out.
type StockOutRequest struct {
	Name     string `json:"name"`
	Quantity *int   `json:"quantity"`
}

// DisposeRequest body opcional para POST /api/beverages/{id}/dispose.
type DisposeRequest struct {
	Reason string `json:"reason"`
}

// BeverageResponse salida de un lote con los campos derivados calculados contra "hoy".
type BeverageResponse struct {
	ID              int64         `json:"id"`
	Name            string        `json:"name"`
	Quantity        int           `json:"quantity"`
	ProductionDate  string        `json:"productionDate"`
	ExpiryDate      string        `json:"expiryDate"`
	Status          entity.Status `json:"status"`
	DisposalReason  *string       `json:"disposalReason,omitempty"`
	DisposedAt      *time.Time    `json:"disposedAt,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
	Expired         bool          `json:"expired"`
	DaysUntilExpiry int           `json:"daysUntilExpiry"`
	ExpiringSoon    bool          `json:"expiringSoon"`
}

// StatisticsResponse salida de GET /api/beverages/statistics.
type StatisticsResponse struct {
	TotalItems           int64 `json:"totalItems"`
	TotalQuantity        int64 `json:"totalQuantity"`
	ExpiredQuantity      int64 `json:"expiredQuantity"`
	ExpiringSoonQuantity int64 `json:"expiringSoonQuantity"`
}

// QuarantineResponse salida de POST /api/beverages/quarantine-expired.
type QuarantineResponse struct {
	Message          string `json:"message"`
	QuarantinedCount int    `json:"quarantinedCount"`
}

// ToBeverageResponse proyecta la entidad; los campos derivados nunca se persisten.
func ToBeverageResponse(b *entity.Beverage, today time.Time) BeverageResponse {
	return BeverageResponse{
		ID:              b.ID,
		Name:            b.Name,
		Quantity:        b.Quantity,
		ProductionDate:  clock.FormatDate(b.ProductionDate),
		ExpiryDate:      clock.FormatDate(b.ExpiryDate),
		Status:          b.Status,
		DisposalReason:  b.DisposalReason,
		DisposedAt:      b.DisposedAt,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		Expired:         b.IsExpired(today),
		DaysUntilExpiry: b.DaysUntilExpiry(today),
		ExpiringSoon:    b.IsExpiringSoon(today),
	}
}

// ToBeverageList proyecta una lista; nunca devuelve nil para que el JSON sea [].
func ToBeverageList(list []*entity.Beverage, today time.Time) []BeverageResponse {
	out := make([]BeverageResponse, 0, len(list))
	for _, b := range list {
		out = append(out, ToBeverageResponse(b, today))
	}
	return out
}

// ToStatisticsResponse proyecta los agregados.
func ToStatisticsResponse(s entity.Statistics) StatisticsResponse {
	return StatisticsResponse{
		TotalItems:           s.TotalItems,
		TotalQuantity:        s.TotalQuantity,
		ExpiredQuantity:      s.ExpiredQuantity,
		ExpiringSoonQuantity: s.ExpiringSoonQuantity,
	}
}
