package repository

import (
	"context"
	"time"

	"github.com/jhoicas/bebidas-api/internal/domain/entity"
)

// BeverageReader lecturas sin bloqueo. Los listados se ordenan por (expiry_date, id).
// FindByID devuelve nil, nil si el lote no existe.
type BeverageReader interface {
	FindByID(ctx context.Context, id int64) (*entity.Beverage, error)
	FindAll(ctx context.Context) ([]*entity.Beverage, error)
	FindByName(ctx context.Context, name string) ([]*entity.Beverage, error)
	FindExpired(ctx context.Context, today time.Time) ([]*entity.Beverage, error)
	FindByStatus(ctx context.Context, status entity.Status) ([]*entity.Beverage, error)
	FindExpiringSoon(ctx context.Context, from, to time.Time) ([]*entity.Beverage, error)
}

// BeverageRepository define el puerto de persistencia de lotes dentro de una transacción.
// Los bloqueos de fila se mantienen hasta Commit o Rollback.
type BeverageRepository interface {
	BeverageReader

	// Insert asigna ID, CreatedAt y UpdatedAt.
	Insert(ctx context.Context, b *entity.Beverage) error
	// FindByIDForUpdate bloquea la fila en modo exclusivo (SELECT FOR UPDATE).
	FindByIDForUpdate(ctx context.Context, id int64) (*entity.Beverage, error)
	// FindEligibleForWithdrawal lotes NORMAL, con cantidad > 0 y expiry_date >= today,
	// ordenados por (expiry_date, id) y bloqueados en ese orden antes de devolverse.
	FindEligibleForWithdrawal(ctx context.Context, name string, today time.Time) ([]*entity.Beverage, error)
	// Save persiste los campos mutables y refresca UpdatedAt.
	Save(ctx context.Context, b *entity.Beverage) error
	Delete(ctx context.Context, id int64) error
}
