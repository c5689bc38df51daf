package payment

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SumAmount totals the amount column of the payments matched by q.
func SumAmount(q *gorm.DB) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := q.Select("SUM(amount)").Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// CountByStatus returns how many payments matched by q are in each status.
func CountByStatus(q *gorm.DB) (map[Status]int64, error) {
	var rows []struct {
		Status Status
		Count  int64
	}
	if err := q.Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := map[Status]int64{
		StatusPending:   0,
		StatusCompleted: 0,
		StatusFailed:    0,
		StatusRefunded:  0,
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
