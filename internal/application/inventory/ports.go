package inventory

import (
	"context"

	"github.com/jhoicas/bebidas-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando el repositorio atado a esa tx.
// Commit si fn devuelve nil, Rollback en cualquier otro caso. Garantiza atomicidad para el motor.
type TxRunner interface {
	Run(ctx context.Context, fn func(repo repository.BeverageRepository) error) error
}

// Recorder recibe los resultados del motor para métricas. Implementación opcional.
type Recorder interface {
	ObserveOperation(operation, code string)
	AddUnits(direction string, n int)
	AddQuarantined(n int)
}

// Operaciones y direcciones reportadas al Recorder.
const (
	OpStockIn    = "stock_in"
	OpStockOut   = "stock_out"
	OpUpdate     = "update"
	OpDelete     = "delete"
	OpQuarantine = "quarantine"
	OpDispose    = "dispose"

	DirectionIn  = "in"
	DirectionOut = "out"
)

type nopRecorder struct{}

func (nopRecorder) ObserveOperation(string, string) {}
func (nopRecorder) AddUnits(string, int)            {}
func (nopRecorder) AddQuarantined(int)              {}
