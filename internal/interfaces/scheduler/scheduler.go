// Package scheduler dispara el barrido diario de cuarentena.
package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/bebidas-api/pkg/clock"
	"github.com/jhoicas/bebidas-api/pkg/logger"
)

// Sweeper operación periódica (inventory.Engine.QuarantineExpired).
type Sweeper interface {
	QuarantineExpired(ctx context.Context) (int, error)
}

// Locker coordina réplicas: solo quien obtiene la llave del día ejecuta el barrido.
type Locker interface {
	TryAcquire(ctx context.Context, day time.Time) (bool, error)
}

// holderLocker locker que además informa qué réplica tiene la llave.
type holderLocker interface {
	Holder(ctx context.Context, day time.Time) (string, error)
}

// Config hora local del barrido.
type Config struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// Scheduler ejecuta el barrido una vez al día a la hora configurada.
type Scheduler struct {
	sweeper Sweeper
	locker  Locker
	clock   clock.Clock
	cfg     Config
	log     *logger.Logger
	// now hora de pared usada para calcular la próxima ejecución.
	now func() time.Time
}

// New construye el scheduler. locker nil equivale a instancia única.
func New(sw Sweeper, locker Locker, clk clock.Clock, cfg Config, log *logger.Logger) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{sweeper: sw, locker: locker, clock: clk, cfg: cfg, log: log, now: time.Now}
}

// Start bloquea hasta que ctx se cancela, ejecutando RunOnce cada día a la hora configurada.
func (s *Scheduler) Start(ctx context.Context) {
	for {
		next := NextRun(s.now(), s.cfg.Location, s.cfg.Hour, s.cfg.Minute)
		s.log.Info().Time("next_run", next).Msg("barrido de cuarentena programado")

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		_, _ = s.RunOnce(ctx)
	}
}

// RunOnce ejecuta un barrido. Si otra réplica ya tiene la llave del día devuelve 0 sin barrer.
// Un fallo de Redis no impide el barrido: es idempotente y repetirlo solo cuenta 0.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	runID := uuid.NewString()
	today := s.clock.Today()
	log := s.log.With().Str("run_id", runID).Str("today", clock.FormatDate(today)).Logger()

	if s.locker != nil {
		ok, err := s.locker.TryAcquire(ctx, today)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("no se pudo coordinar el barrido, se ejecuta localmente")
		case !ok:
			ev := log.Info()
			if hl, isHolder := s.locker.(holderLocker); isHolder {
				if holder, err := hl.Holder(ctx, today); err == nil && holder != "" {
					ev = ev.Str("holder", holder)
				}
			}
			ev.Msg("barrido ya ejecutado por otra réplica")
			return 0, nil
		}
	}

	start := time.Now()
	count, err := s.sweeper.QuarantineExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("barrido de cuarentena fallido")
		return 0, err
	}
	log.Info().Int("quarantined", count).Dur("elapsed", time.Since(start)).Msg("barrido de cuarentena completado")
	return count, nil
}

// NextRun primer instante estrictamente posterior a now en que el reloj de loc marca hour:minute.
func NextRun(now time.Time, loc *time.Location, hour, minute int) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}
	return next
}
