package analytics

import "github.com/rogerio-castellano/pharmacy-dashboard/internal/models"

// Order is any record that folds like a sale: sales and invoices.
type Order interface {
	Summary() models.OrderSummary
}

// InRange keeps the records created within r, preserving order.
func InRange[T Order](records []T, r DateRange) []T {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if r.Contains(rec.Summary().CreatedAt) {
			out = append(out, rec)
		}
	}
	return out
}
