package inventory

import (
	"context"

	"github.com/jhoicas/bebidas-api/internal/application/dto"
	"github.com/jhoicas/bebidas-api/internal/domain/entity"
	"github.com/jhoicas/bebidas-api/internal/domain/repository"
	"github.com/jhoicas/bebidas-api/pkg/clock"
)

// QueryService proyecciones de solo lectura, sin bloqueos.
// Fuera de una transacción puede leer un estado ligeramente desactualizado.
type QueryService struct {
	reader repository.BeverageReader
	clock  clock.Clock
}

// NewQueryService construye el servicio de consultas.
func NewQueryService(reader repository.BeverageReader, clk clock.Clock) *QueryService {
	return &QueryService{reader: reader, clock: clk}
}

// List todos los lotes, o solo los de name si no está vacío.
func (s *QueryService) List(ctx context.Context, name string) ([]dto.BeverageResponse, error) {
	if name = entity.NormalizeName(name); name != "" {
		return s.project(s.reader.FindByName(ctx, name))
	}
	return s.project(s.reader.FindAll(ctx))
}

// GetByID devuelve domain.ErrNotFound si no existe.
func (s *QueryService) GetByID(ctx context.Context, id int64) (*dto.BeverageResponse, error) {
	b, err := s.reader.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, notFound(id)
	}
	out := dto.ToBeverageResponse(b, s.clock.Today())
	return &out, nil
}

// ListExpired lotes con expiry_date < hoy, en cualquier estado.
func (s *QueryService) ListExpired(ctx context.Context) ([]dto.BeverageResponse, error) {
	today := s.clock.Today()
	list, err := s.reader.FindExpired(ctx, today)
	if err != nil {
		return nil, err
	}
	return dto.ToBeverageList(list, today), nil
}

// ListExpiringSoon lotes con hoy <= expiry_date <= hoy+7.
func (s *QueryService) ListExpiringSoon(ctx context.Context) ([]dto.BeverageResponse, error) {
	today := s.clock.Today()
	list, err := s.reader.FindExpiringSoon(ctx, today, today.AddDate(0, 0, entity.ExpiringSoonDays))
	if err != nil {
		return nil, err
	}
	return dto.ToBeverageList(list, today), nil
}

// ListQuarantined lotes en cuarentena.
func (s *QueryService) ListQuarantined(ctx context.Context) ([]dto.BeverageResponse, error) {
	return s.project(s.reader.FindByStatus(ctx, entity.StatusQuarantined))
}

// ListDisposed lotes dados de baja (histórico).
func (s *QueryService) ListDisposed(ctx context.Context) ([]dto.BeverageResponse, error) {
	return s.project(s.reader.FindByStatus(ctx, entity.StatusDisposed))
}

func (s *QueryService) project(list []*entity.Beverage, err error) ([]dto.BeverageResponse, error) {
	if err != nil {
		return nil, err
	}
	return dto.ToBeverageList(list, s.clock.Today()), nil
}
