package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOf_UsaLaZonaDelInstante(t *testing.T) {
	taipei := time.FixedZone("CST", 8*60*60)
	// 2024-06-01 20:00 UTC = 2024-06-02 04:00 en UTC+8.
	instant := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, Date(2024, 6, 1), DateOf(instant))
	assert.Equal(t, Date(2024, 6, 2), DateOf(instant.In(taipei)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, Date(2024, 2, 29), d)
	assert.Equal(t, "2024-02-29", FormatDate(d))

	for _, in := range []string{"", "2024/06/01", "2023-02-29", "01-06-2024", "2024-06-01T00:00:00Z"} {
		_, err := ParseDate(in)
		assert.Error(t, err, in)
	}
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(Date(2024, 6, 1), Date(2024, 6, 1)))
	assert.Equal(t, 7, DaysBetween(Date(2024, 6, 1), Date(2024, 6, 8)))
	assert.Equal(t, -1, DaysBetween(Date(2024, 6, 1), Date(2024, 5, 31)))
	assert.Equal(t, 366, DaysBetween(Date(2024, 1, 1), Date(2025, 1, 1)))
}

func TestFixed(t *testing.T) {
	c := NewFixed(time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC))
	assert.Equal(t, Date(2024, 6, 1), c.Today())

	c.Advance(9 * time.Hour)
	assert.Equal(t, Date(2024, 6, 2), c.Today())

	c.AdvanceDays(-2)
	assert.Equal(t, Date(2024, 5, 31), c.Today())

	c.Set(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, Date(2025, 1, 1), c.Today())
	assert.Equal(t, 12, c.Now().Hour())
}

func TestSystem_ZonaPorDefecto(t *testing.T) {
	s := NewSystem(nil)
	assert.Equal(t, time.UTC, s.Location)
	assert.Equal(t, DateOf(time.Now().UTC()), s.Today())
	assert.Equal(t, time.UTC, s.Now().Location())
}

func TestDaysBetween_FechasLejanas(t *testing.T) {
	today := Date(2024, 6, 1)
	assert.Equal(t, 137179, DaysBetween(today, Date(2400, 1, 1)))
	assert.Equal(t, -118490, DaysBetween(today, Date(1700, 1, 1)))
	assert.Equal(t, 1, DaysBetween(Date(9999, 12, 30), Date(9999, 12, 31)))
}
