// Package memory implementa el almacén de lotes en proceso, con bloqueos exclusivos por fila
// y transacciones read committed: las escrituras de una tx solo son visibles tras el Commit.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/bebidas-api/internal/application/inventory"
	"github.com/jhoicas/bebidas-api/internal/domain"
	"github.com/jhoicas/bebidas-api/internal/domain/entity"
	"github.com/jhoicas/bebidas-api/internal/domain/repository"
	"github.com/jhoicas/bebidas-api/pkg/clock"
)

var (
	_ inventory.TxRunner        = (*Store)(nil)
	_ repository.BeverageReader = (*Store)(nil)
)

// Store filas confirmadas + un candado por fila (canal de capacidad 1).
type Store struct {
	mu          sync.Mutex
	rows        map[int64]*entity.Beverage
	locks       map[int64]chan struct{}
	nextID      int64
	clock       clock.Clock
	lockTimeout time.Duration
}

// Option configura el Store.
type Option func(*Store)

// WithLockTimeout limita la espera por un bloqueo de fila; al vencer la operación falla como TRANSIENT.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) { s.lockTimeout = d }
}

// NewStore crea un almacén vacío. clk fija CreatedAt/UpdatedAt.
func NewStore(clk clock.Clock, opts ...Option) *Store {
	s := &Store{
		rows:  make(map[int64]*entity.Beverage),
		locks: make(map[int64]chan struct{}),
		clock: clk,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run ejecuta fn en una transacción: Commit si devuelve nil, Rollback en otro caso (también ante panic).
func (s *Store) Run(ctx context.Context, fn func(repo repository.BeverageRepository) error) (err error) {
	t := &tx{
		s:       s,
		held:    make(map[int64]chan struct{}),
		pending: make(map[int64]*entity.Beverage),
	}
	defer func() {
		if r := recover(); r != nil {
			t.rollback()
			panic(r)
		}
	}()
	if err := fn(t); err != nil {
		t.rollback()
		return err
	}
	t.commit()
	return nil
}

// ─── Lecturas confirmadas (sin bloqueo) ─────────────────────────────────────

func (s *Store) FindByID(_ context.Context, id int64) (*entity.Beverage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.rows[id]; ok {
		return b.Clone(), nil
	}
	return nil, nil
}

func (s *Store) FindAll(_ context.Context) ([]*entity.Beverage, error) {
	return s.filter(nil, func(*entity.Beverage) bool { return true }), nil
}

func (s *Store) FindByName(_ context.Context, name string) ([]*entity.Beverage, error) {
	return s.filter(nil, byName(name)), nil
}

func (s *Store) FindExpired(_ context.Context, today time.Time) ([]*entity.Beverage, error) {
	return s.filter(nil, expiredAt(today)), nil
}

func (s *Store) FindByStatus(_ context.Context, status entity.Status) ([]*entity.Beverage, error) {
	return s.filter(nil, byStatus(status)), nil
}

func (s *Store) FindExpiringSoon(_ context.Context, from, to time.Time) ([]*entity.Beverage, error) {
	return s.filter(nil, expiringBetween(from, to)), nil
}

// Len número de filas confirmadas.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// filter recorre las filas confirmadas superpuestas con overlay (escrituras pendientes de una tx;
// nil en overlay = borrada) y devuelve copias ordenadas por (expiry_date, id).
func (s *Store) filter(overlay map[int64]*entity.Beverage, keep func(*entity.Beverage) bool) []*entity.Beverage {
	s.mu.Lock()
	out := make([]*entity.Beverage, 0, len(s.rows))
	for id, b := range s.rows {
		if overlay != nil {
			if p, ok := overlay[id]; ok {
				if p != nil && keep(p) {
					out = append(out, p.Clone())
				}
				continue
			}
		}
		if keep(b) {
			out = append(out, b.Clone())
		}
	}
	// Filas insertadas por la propia tx, aún no confirmadas.
	for id, p := range overlay {
		if _, committed := s.rows[id]; committed || p == nil {
			continue
		}
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	s.mu.Unlock()
	sortFEFO(out)
	return out
}

// ─── Bloqueos de fila ───────────────────────────────────────────────────────

func (s *Store) lockFor(id int64) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[id] = ch
	}
	return ch
}

// dropLocks descarta los candados de filas que ya no existen (borradas o nunca confirmadas).
func (s *Store) dropLocks(ids []int64) {
	if len(ids) == 0 {
		return
	}
	s.mu.Lock()
	for _, id := range ids {
		delete(s.locks, id)
	}
	s.mu.Unlock()
}

// acquire bloquea hasta obtener la fila, o falla como TRANSIENT si ctx (o el lock timeout) vence.
func (s *Store) acquire(ctx context.Context, id int64) (chan struct{}, error) {
	if s.lockTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.lockTimeout)
		defer cancel()
	}
	ch := s.lockFor(id)
	select {
	case ch <- struct{}{}:
		return ch, nil
	case <-ctx.Done():
		return nil, domain.Errorf(domain.ErrTransient, "espera de bloqueo del lote %d: %v", id, ctx.Err())
	}
}

// ─── Predicados ─────────────────────────────────────────────────────────────

func byName(name string) func(*entity.Beverage) bool {
	return func(b *entity.Beverage) bool { return b.Name == name }
}

func byStatus(status entity.Status) func(*entity.Beverage) bool {
	return func(b *entity.Beverage) bool { return b.Status == status }
}

func expiredAt(today time.Time) func(*entity.Beverage) bool {
	return func(b *entity.Beverage) bool { return b.ExpiryDate.Before(today) }
}

func expiringBetween(from, to time.Time) func(*entity.Beverage) bool {
	return func(b *entity.Beverage) bool {
		return !b.ExpiryDate.Before(from) && !b.ExpiryDate.After(to)
	}
}

func eligible(name string, today time.Time) func(*entity.Beverage) bool {
	return func(b *entity.Beverage) bool {
		return b.Name == name && b.IsWithdrawable(today)
	}
}

// sortFEFO orden total (expiry_date asc, id asc).
func sortFEFO(list []*entity.Beverage) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].ExpiryDate.Equal(list[j].ExpiryDate) {
			return list[i].ExpiryDate.Before(list[j].ExpiryDate)
		}
		return list[i].ID < list[j].ID
	})
}
