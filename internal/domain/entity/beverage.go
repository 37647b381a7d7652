package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/bebidas-api/pkg/clock"
	"golang.org/x/text/unicode/norm"
)

// Status estado del ciclo de vida de un lote. Conjunto cerrado.
type Status string

const (
	StatusNormal      Status = "NORMAL"      // disponible para salida
	StatusQuarantined Status = "QUARANTINED" // vencido, a la espera de baja
	StatusDisposed    Status = "DISPOSED"    // dado de baja, se conserva el registro
)

// ExpiringSoonDays ventana (inclusive) en la que un lote se considera próximo a vencer.
const ExpiringSoonDays = 7

// ParseStatus convierte la forma textual persistida en Status.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusNormal, StatusQuarantined, StatusDisposed:
		return Status(s), true
	}
	return "", false
}

// CanTransitionTo solo NORMAL→QUARANTINED y QUARANTINED→DISPOSED son legales.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusNormal:
		return next == StatusQuarantined
	case StatusQuarantined:
		return next == StatusDisposed
	}
	return false
}

// Beverage lote de bebida: nombre, cantidad, fechas y estado compartidos.
// ProductionDate y ExpiryDate son fechas civiles (medianoche UTC).
type Beverage struct {
	ID             int64
	Name           string
	Quantity       int
	ProductionDate time.Time
	ExpiryDate     time.Time
	Status         Status
	DisposalReason *string
	DisposedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsExpired vencido cuando la fecha de vencimiento es anterior a hoy.
// Un lote que vence hoy todavía no está vencido.
func (b *Beverage) IsExpired(today time.Time) bool {
	return b.ExpiryDate.Before(today)
}

// DaysUntilExpiry días (con signo) entre hoy y el vencimiento.
func (b *Beverage) DaysUntilExpiry(today time.Time) int {
	return clock.DaysBetween(today, b.ExpiryDate)
}

// IsExpiringSoon vence entre hoy y hoy+7, ambos inclusive.
func (b *Beverage) IsExpiringSoon(today time.Time) bool {
	d := b.DaysUntilExpiry(today)
	return d >= 0 && d <= ExpiringSoonDays
}

// IsWithdrawable lote elegible para salida FEFO.
func (b *Beverage) IsWithdrawable(today time.Time) bool {
	return b.Status == StatusNormal && b.Quantity > 0 && !b.IsExpired(today)
}

// Quarantine pasa el lote a cuarentena. Devuelve false si la transición no es legal.
func (b *Beverage) Quarantine() bool {
	if !b.Status.CanTransitionTo(StatusQuarantined) {
		return false
	}
	b.Status = StatusQuarantined
	return true
}

// Dispose da de baja el lote registrando motivo y fecha.
func (b *Beverage) Dispose(reason string, at time.Time) bool {
	if !b.Status.CanTransitionTo(StatusDisposed) {
		return false
	}
	b.Status = StatusDisposed
	b.DisposalReason = &reason
	b.DisposedAt = &at
	return true
}

// Clone copia profunda (los punteros de baja no se comparten).
func (b *Beverage) Clone() *Beverage {
	c := *b
	if b.DisposalReason != nil {
		r := *b.DisposalReason
		c.DisposalReason = &r
	}
	if b.DisposedAt != nil {
		t := *b.DisposedAt
		c.DisposedAt = &t
	}
	return &c
}

// NormalizeName recorta espacios y normaliza a NFC para que el mismo nombre
// escrito con distintas secuencias Unicode coincida en las búsquedas por nombre.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
