package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStatus_CanTransitionTo(t *testing.T) {
	all := []Status{StatusNormal, StatusQuarantined, StatusDisposed}
	legal := map[[2]Status]bool{
		{StatusNormal, StatusQuarantined}:   true,
		{StatusQuarantined, StatusDisposed}: true,
	}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, legal[[2]Status{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus("QUARANTINED")
	assert.True(t, ok)
	assert.Equal(t, StatusQuarantined, s)

	_, ok = ParseStatus("normal")
	assert.False(t, ok)
}

func TestCamposDerivados(t *testing.T) {
	today := day(2024, 6, 1)
	cases := []struct {
		expiry  time.Time
		days    int
		expired bool
		soon    bool
	}{
		{day(2024, 5, 31), -1, true, false},
		{today, 0, false, true},
		{day(2024, 6, 8), 7, false, true},
		{day(2024, 6, 9), 8, false, false},
	}
	for _, c := range cases {
		b := &Beverage{ExpiryDate: c.expiry}
		assert.Equal(t, c.days, b.DaysUntilExpiry(today), c.expiry)
		assert.Equal(t, c.expired, b.IsExpired(today), c.expiry)
		assert.Equal(t, c.soon, b.IsExpiringSoon(today), c.expiry)
	}
}

func TestIsWithdrawable(t *testing.T) {
	today := day(2024, 6, 1)
	ok := &Beverage{Quantity: 1, Status: StatusNormal, ExpiryDate: today}
	assert.True(t, ok.IsWithdrawable(today))

	empty := ok.Clone()
	empty.Quantity = 0
	assert.False(t, empty.IsWithdrawable(today))

	expired := ok.Clone()
	expired.ExpiryDate = day(2024, 5, 31)
	assert.False(t, expired.IsWithdrawable(today))

	quarantined := ok.Clone()
	quarantined.Status = StatusQuarantined
	assert.False(t, quarantined.IsWithdrawable(today))
}

func TestCicloDeVida(t *testing.T) {
	b := &Beverage{Status: StatusNormal}
	assert.False(t, b.Dispose("x", day(2024, 6, 1)))
	assert.Nil(t, b.DisposalReason)

	require.True(t, b.Quarantine())
	assert.False(t, b.Quarantine())

	at := day(2024, 6, 2)
	require.True(t, b.Dispose("過期報廢", at))
	assert.Equal(t, StatusDisposed, b.Status)
	assert.Equal(t, "過期報廢", *b.DisposalReason)
	assert.Equal(t, at, *b.DisposedAt)
	assert.False(t, b.Dispose("otra vez", at))
	assert.False(t, b.Quarantine())
}

func TestClone_NoCompartePunteros(t *testing.T) {
	b := &Beverage{Status: StatusQuarantined}
	require.True(t, b.Dispose("motivo", day(2024, 6, 1)))

	c := b.Clone()
	*c.DisposalReason = "cambiado"
	*c.DisposedAt = day(2030, 1, 1)
	assert.Equal(t, "motivo", *b.DisposalReason)
	assert.Equal(t, day(2024, 6, 1), *b.DisposedAt)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Café", NormalizeName("  Café\t"))
	assert.Equal(t, "", NormalizeName("   "))
	assert.Equal(t, "可樂", NormalizeName("可樂"))
}

func TestComputeStatistics(t *testing.T) {
	today := day(2024, 6, 1)
	batches := []*Beverage{
		{Quantity: 5, ExpiryDate: day(2024, 5, 31), Status: StatusQuarantined},
		{Quantity: 7, ExpiryDate: today, Status: StatusNormal},
		{Quantity: 11, ExpiryDate: day(2024, 6, 8), Status: StatusNormal},
		{Quantity: 13, ExpiryDate: day(2024, 6, 9), Status: StatusNormal},
		{Quantity: 0, ExpiryDate: day(2024, 1, 1), Status: StatusDisposed},
	}
	s := ComputeStatistics(batches, today)
	assert.Equal(t, Statistics{
		TotalItems:           5,
		TotalQuantity:        36,
		ExpiredQuantity:      5,
		ExpiringSoonQuantity: 18,
	}, s)

	assert.Equal(t, Statistics{}, ComputeStatistics(nil, today))
}

func TestDaysUntilExpiry_FechasLejanas(t *testing.T) {
	today := day(2024, 6, 1)
	far := &Beverage{ExpiryDate: day(2400, 1, 1)}
	assert.Equal(t, 137179, far.DaysUntilExpiry(today))
	assert.False(t, far.IsExpiringSoon(today))

	past := &Beverage{ExpiryDate: day(1700, 1, 1)}
	assert.Equal(t, -118490, past.DaysUntilExpiry(today))
	assert.True(t, past.IsExpired(today))
}
