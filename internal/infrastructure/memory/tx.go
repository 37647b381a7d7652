package memory

import (
	"context"
	"time"

	"github.com/jhoicas/bebidas-api/internal/domain"
	"github.com/jhoicas/bebidas-api/internal/domain/entity"
	"github.com/jhoicas/bebidas-api/internal/domain/repository"
)

var _ repository.BeverageRepository = (*tx)(nil)

// tx transacción en curso. pending guarda las escrituras (nil = borrado) hasta el Commit;
// held los bloqueos de fila adquiridos, liberados en Commit o Rollback.
// inserted IDs creados por esta tx; si se revierte, sus candados se descartan.
type tx struct {
	s        *Store
	held     map[int64]chan struct{}
	pending  map[int64]*entity.Beverage
	inserted []int64
}

func (t *tx) lock(ctx context.Context, id int64) (bool, error) {
	if _, ok := t.held[id]; ok {
		return false, nil
	}
	ch, err := t.s.acquire(ctx, id)
	if err != nil {
		return false, err
	}
	t.held[id] = ch
	return true, nil
}

func (t *tx) unlock(id int64) {
	if ch, ok := t.held[id]; ok {
		delete(t.held, id)
		<-ch
	}
}

// current estado visible para esta tx: escritura pendiente o última versión confirmada.
func (t *tx) current(id int64) *entity.Beverage {
	if p, ok := t.pending[id]; ok {
		if p == nil {
			return nil
		}
		return p.Clone()
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if b, ok := t.s.rows[id]; ok {
		return b.Clone()
	}
	return nil
}

func (t *tx) commit() {
	t.s.mu.Lock()
	for id, b := range t.pending {
		if b == nil {
			delete(t.s.rows, id)
			continue
		}
		t.s.rows[id] = b
	}
	t.s.mu.Unlock()
	t.releaseAll()
	// Los IDs no se reutilizan: el candado de una fila borrada ya no hace falta.
	var deleted []int64
	for id, b := range t.pending {
		if b == nil {
			deleted = append(deleted, id)
		}
	}
	t.s.dropLocks(deleted)
}

func (t *tx) rollback() {
	t.pending = nil
	t.releaseAll()
	t.s.dropLocks(t.inserted)
}

func (t *tx) releaseAll() {
	for id := range t.held {
		t.unlock(id)
	}
}

// ─── Lecturas dentro de la tx (ven sus propias escrituras) ──────────────────

func (t *tx) FindByID(_ context.Context, id int64) (*entity.Beverage, error) {
	return t.current(id), nil
}

func (t *tx) FindAll(_ context.Context) ([]*entity.Beverage, error) {
	return t.s.filter(t.pending, func(*entity.Beverage) bool { return true }), nil
}

func (t *tx) FindByName(_ context.Context, name string) ([]*entity.Beverage, error) {
	return t.s.filter(t.pending, byName(name)), nil
}

func (t *tx) FindExpired(_ context.Context, today time.Time) ([]*entity.Beverage, error) {
	return t.s.filter(t.pending, expiredAt(today)), nil
}

func (t *tx) FindByStatus(_ context.Context, status entity.Status) ([]*entity.Beverage, error) {
	return t.s.filter(t.pending, byStatus(status)), nil
}

func (t *tx) FindExpiringSoon(_ context.Context, from, to time.Time) ([]*entity.Beverage, error) {
	return t.s.filter(t.pending, expiringBetween(from, to)), nil
}

// ─── Escrituras y lecturas con bloqueo ──────────────────────────────────────

func (t *tx) Insert(ctx context.Context, b *entity.Beverage) error {
	t.s.mu.Lock()
	t.s.nextID++
	id := t.s.nextID
	t.s.mu.Unlock()

	// Fila nueva, invisible para el resto: el bloqueo nunca espera.
	if _, err := t.lock(ctx, id); err != nil {
		return err
	}
	t.inserted = append(t.inserted, id)
	now := t.s.clock.Now()
	b.ID = id
	b.CreatedAt = now
	b.UpdatedAt = now
	t.pending[id] = b.Clone()
	return nil
}

func (t *tx) FindByIDForUpdate(ctx context.Context, id int64) (*entity.Beverage, error) {
	acquired, err := t.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	b := t.current(id)
	if b == nil && acquired {
		t.unlock(id)
	}
	return b, nil
}

// FindEligibleForWithdrawal escanea, ordena por (expiry_date, id) y bloquea en ese orden.
// Tras obtener cada bloqueo se reevalúa el predicado sobre la última versión confirmada,
// igual que SELECT ... FOR UPDATE en read committed.
func (t *tx) FindEligibleForWithdrawal(ctx context.Context, name string, today time.Time) ([]*entity.Beverage, error) {
	keep := eligible(name, today)
	candidates := t.s.filter(t.pending, keep)
	out := make([]*entity.Beverage, 0, len(candidates))
	for _, c := range candidates {
		acquired, err := t.lock(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		b := t.current(c.ID)
		if b == nil || !keep(b) {
			if acquired {
				t.unlock(c.ID)
			}
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (t *tx) Save(ctx context.Context, b *entity.Beverage) error {
	if _, err := t.lock(ctx, b.ID); err != nil {
		return err
	}
	if t.current(b.ID) == nil {
		return domain.Errorf(domain.ErrNotFound, "no existe el lote con ID %d", b.ID)
	}
	b.UpdatedAt = t.s.clock.Now()
	t.pending[b.ID] = b.Clone()
	return nil
}

func (t *tx) Delete(ctx context.Context, id int64) error {
	if _, err := t.lock(ctx, id); err != nil {
		return err
	}
	if t.current(id) == nil {
		return domain.Errorf(domain.ErrNotFound, "no existe el lote con ID %d", id)
	}
	t.pending[id] = nil
	return nil
}
