package analytics

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Granularity selects the bucket size of a rollup.
type Granularity string

const (
	Daily   Granularity = "day"
	Monthly Granularity = "month"
)

// DefaultWindowDays is the trailing window used when a rollup has no range.
const DefaultWindowDays = 30

func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case Daily, Monthly:
		return Granularity(s), nil
	case "":
		return Daily, nil
	}
	return "", fmt.Errorf("unknown granularity %q", s)
}

func (g Granularity) layout() string {
	if g == Monthly {
		return "2006-01"
	}
	return time.DateOnly
}

// Bucket is one day or month of a sales series.
type Bucket struct {
	Key             string  `json:"key"`
	Revenue         float64 `json:"revenue"`
	Orders          int     `json:"orders"`
	UniqueCustomers int     `json:"unique_customers"`
}

type bucketAcc struct {
	revenue   decimal.Decimal
	orders    int
	customers map[string]struct{}
}

// Rollup buckets the records created within r by day or month and returns
// the buckets sorted by key. A nil range means the trailing
// DefaultWindowDays ending at now. Bucket keys use now's location.
func Rollup[T Order](records []T, g Granularity, r *DateRange, now time.Time) ([]Bucket, error) {
	window := TrailingDays(now, DefaultWindowDays)
	if r != nil {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		window = *r
	}

	loc := now.Location()
	layout := g.layout()
	accs := map[string]*bucketAcc{}
	for _, rec := range records {
		o := rec.Summary()
		if !window.Contains(o.CreatedAt) {
			continue
		}
		key := o.CreatedAt.In(loc).Format(layout)
		acc, ok := accs[key]
		if !ok {
			acc = &bucketAcc{revenue: decimal.Zero, customers: map[string]struct{}{}}
			accs[key] = acc
		}
		acc.revenue = acc.revenue.Add(amount(o.TotalAmount))
		acc.orders++
		if o.CustomerID != "" {
			acc.customers[o.CustomerID] = struct{}{}
		}
	}

	keys := make([]string, 0, len(accs))
	for k := range accs {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	buckets := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		acc := accs[k]
		buckets = append(buckets, Bucket{
			Key:             k,
			Revenue:         toFloat(acc.revenue),
			Orders:          acc.orders,
			UniqueCustomers: len(acc.customers),
		})
	}
	return buckets, nil
}
