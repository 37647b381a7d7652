// Package clock entrega la fecha civil "hoy" y la hora actual.
// Todas las fechas civiles se representan como time.Time a medianoche UTC.
package clock

import (
	"fmt"
	"sync"
	"time"
)

// DateLayout formato de fecha usado en la API y en la base de datos.
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// Clock fuente de la fecha civil actual. Punto único de inyección.
type Clock interface {
	Today() time.Time
	Now() time.Time
}

// System reloj de pared. Location define la zona en la que se interpreta "hoy".
type System struct {
	Location *time.Location
}

// NewSystem construye el reloj de pared para la zona indicada (UTC si loc es nil).
func NewSystem(loc *time.Location) System {
	if loc == nil {
		loc = time.UTC
	}
	return System{Location: loc}
}

func (s System) Today() time.Time {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(time.Now().In(loc))
}

func (s System) Now() time.Time { return time.Now().UTC() }

// Fixed reloj fijo y avanzable para pruebas. Seguro para uso concurrente.
type Fixed struct {
	mu  sync.RWMutex
	now time.Time
}

// NewFixed fija el reloj en la medianoche (UTC) de la fecha dada.
func NewFixed(today time.Time) *Fixed {
	return &Fixed{now: DateOf(today)}
}

func (f *Fixed) Today() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return DateOf(f.now)
}

func (f *Fixed) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.now
}

// Advance mueve el reloj d hacia adelante (o atrás si d es negativo).
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// AdvanceDays mueve el reloj n días civiles.
func (f *Fixed) AdvanceDays(n int) {
	f.mu.Lock()
	f.now = f.now.AddDate(0, 0, n)
	f.mu.Unlock()
}

// Set fija el instante actual.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.now = t.UTC()
	f.mu.Unlock()
}

// Date construye una fecha civil.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf trunca t a su fecha civil (según la zona de t) y la devuelve a medianoche UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// ParseDate interpreta una fecha YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha %q inválida, se espera YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDate serializa una fecha civil como YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetween días civiles con signo de from a to.
// Se calcula con segundos Unix: time.Duration satura a ~292 años.
func DaysBetween(from, to time.Time) int {
	return int((DateOf(to).Unix() - DateOf(from).Unix()) / secondsPerDay)
}
