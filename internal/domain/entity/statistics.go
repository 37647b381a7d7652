package entity

import "time"

// Statistics agregados del inventario calculados contra un único "hoy".
type Statistics struct {
	TotalItems           int64
	TotalQuantity        int64
	ExpiredQuantity      int64
	ExpiringSoonQuantity int64
}

// ComputeStatistics agrega sobre una instantánea de lotes (todos los estados).
func ComputeStatistics(batches []*Beverage, today time.Time) Statistics {
	var s Statistics
	soonLimit := today.AddDate(0, 0, ExpiringSoonDays)
	for _, b := range batches {
		q := int64(b.Quantity)
		s.TotalItems++
		s.TotalQuantity += q
		if b.ExpiryDate.Before(today) {
			s.ExpiredQuantity += q
		} else if !b.ExpiryDate.After(soonLimit) {
			s.ExpiringSoonQuantity += q
		}
	}
	return s
}
