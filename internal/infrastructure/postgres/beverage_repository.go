package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/bebidas-api/internal/domain"
	"github.com/jhoicas/bebidas-api/internal/domain/entity"
	"github.com/jhoicas/bebidas-api/internal/domain/repository"
	"github.com/jhoicas/bebidas-api/pkg/clock"
)

var _ repository.BeverageRepository = (*BeverageRepo)(nil)

const beverageColumns = `id, name, quantity, production_date, expiry_date, status,
		disposal_reason, disposed_at, created_at, updated_at`

// BeverageRepo implementación de BeverageRepository sobre PostgreSQL (usable con pool o tx).
// Los métodos ...ForUpdate solo tienen sentido dentro de una tx.
type BeverageRepo struct {
	q     Querier
	clock clock.Clock
}

// NewBeverageRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewBeverageRepository(q Querier, clk clock.Clock) *BeverageRepo {
	if clk == nil {
		clk = clock.NewSystem(time.UTC)
	}
	return &BeverageRepo{q: q, clock: clk}
}

// Insert persiste un lote nuevo y asigna ID y marcas de tiempo.
func (r *BeverageRepo) Insert(ctx context.Context, b *entity.Beverage) error {
	now := r.clock.Now()
	query := `
		INSERT INTO beverages (name, quantity, production_date, expiry_date, status,
			disposal_reason, disposed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		b.Name, b.Quantity, b.ProductionDate, b.ExpiryDate, string(b.Status),
		b.DisposalReason, b.DisposedAt, now,
	).Scan(&b.ID)
	if err != nil {
		return wrapErr("insert beverage", err)
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	return nil
}

// FindByID devuelve nil, nil si el lote no existe.
func (r *BeverageRepo) FindByID(ctx context.Context, id int64) (*entity.Beverage, error) {
	query := `SELECT ` + beverageColumns + ` FROM beverages WHERE id = $1`
	return r.one(ctx, "find beverage", query, id)
}

// FindByIDForUpdate igual que FindByID pero bloquea la fila (SELECT FOR UPDATE).
func (r *BeverageRepo) FindByIDForUpdate(ctx context.Context, id int64) (*entity.Beverage, error) {
	query := `SELECT ` + beverageColumns + ` FROM beverages WHERE id = $1 FOR UPDATE`
	return r.one(ctx, "find beverage for update", query, id)
}

func (r *BeverageRepo) FindAll(ctx context.Context) ([]*entity.Beverage, error) {
	query := `SELECT ` + beverageColumns + ` FROM beverages ORDER BY expiry_date, id`
	return r.many(ctx, "list beverages", query)
}

func (r *BeverageRepo) FindByName(ctx context.Context, name string) ([]*entity.Beverage, error) {
	query := `SELECT ` + beverageColumns + ` FROM beverages WHERE name = $1 ORDER BY expiry_date, id`
	return r.many(ctx, "list beverages by name", query, name)
}

// FindExpired lotes con expiry_date < today, en cualquier estado.
func (r *BeverageRepo) FindExpired(ctx context.Context, today time.Time) ([]*entity.Beverage, error) {
	query := `SELECT ` + beverageColumns + ` FROM beverages WHERE expiry_date < $1 ORDER BY expiry_date, id`
	return r.many(ctx, "list expired beverages", query, today)
}

func (r *BeverageRepo) FindByStatus(ctx context.Context, status entity.Status) ([]*entity.Beverage, error) {
	query := `SELECT ` + beverageColumns + ` FROM beverages WHERE status = $1 ORDER BY expiry_date, id`
	return r.many(ctx, "list beverages by status", query, string(status))
}

// FindExpiringSoon lotes con from <= expiry_date <= to.
func (r *BeverageRepo) FindExpiringSoon(ctx context.Context, from, to time.Time) ([]*entity.Beverage, error) {
	query := `SELECT ` + beverageColumns + ` FROM beverages
		WHERE expiry_date >= $1 AND expiry_date <= $2
		ORDER BY expiry_date, id`
	return r.many(ctx, "list expiring beverages", query, from, to)
}

// FindEligibleForWithdrawal bloquea en orden FEFO los lotes NORMAL, con stock y no vencidos de un nombre.
// En read committed PostgreSQL reevalúa el WHERE sobre la versión más reciente de cada fila
// tras esperar su bloqueo, por lo que un lote vaciado o cuarentenado en paralelo queda fuera.
func (r *BeverageRepo) FindEligibleForWithdrawal(ctx context.Context, name string, today time.Time) ([]*entity.Beverage, error) {
	query := `SELECT ` + beverageColumns + ` FROM beverages
		WHERE name = $1 AND status = 'NORMAL' AND quantity > 0 AND expiry_date >= $2
		ORDER BY expiry_date, id
		FOR UPDATE`
	return r.many(ctx, "lock eligible beverages", query, name, today)
}

// Save actualiza todos los campos mutables del lote y refresca updated_at.
func (r *BeverageRepo) Save(ctx context.Context, b *entity.Beverage) error {
	now := r.clock.Now()
	query := `
		UPDATE beverages SET
			name = $2, quantity = $3, production_date = $4, expiry_date = $5, status = $6,
			disposal_reason = $7, disposed_at = $8, updated_at = GREATEST($9, created_at)
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		b.ID, b.Name, b.Quantity, b.ProductionDate, b.ExpiryDate, string(b.Status),
		b.DisposalReason, b.DisposedAt, now,
	)
	if err != nil {
		return wrapErr("update beverage", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Errorf(domain.ErrNotFound, "no existe el lote con ID %d", b.ID)
	}
	b.UpdatedAt = now
	return nil
}

func (r *BeverageRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM beverages WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete beverage", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Errorf(domain.ErrNotFound, "no existe el lote con ID %d", id)
	}
	return nil
}

func (r *BeverageRepo) one(ctx context.Context, op, query string, args ...any) (*entity.Beverage, error) {
	b, err := scanBeverage(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return b, nil
}

func (r *BeverageRepo) many(ctx context.Context, op, query string, args ...any) ([]*entity.Beverage, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()
	list := make([]*entity.Beverage, 0)
	for rows.Next() {
		b, err := scanBeverage(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		list = append(list, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}
	return list, nil
}

func scanBeverage(row pgx.Row) (*entity.Beverage, error) {
	var (
		b      entity.Beverage
		status string
	)
	err := row.Scan(
		&b.ID, &b.Name, &b.Quantity, &b.ProductionDate, &b.ExpiryDate, &status,
		&b.DisposalReason, &b.DisposedAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	st, ok := entity.ParseStatus(status)
	if !ok {
		return nil, fmt.Errorf("estado desconocido %q en lote %d", status, b.ID)
	}
	b.Status = st
	b.ProductionDate = clock.DateOf(b.ProductionDate)
	b.ExpiryDate = clock.DateOf(b.ExpiryDate)
	return &b, nil
}
