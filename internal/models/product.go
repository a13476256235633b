package models

import "time"

// StockStatus is the derived classification of a product's stock level.
type StockStatus string

const (
	StockOutOfStock StockStatus = "out_of_stock"
	StockLow        StockStatus = "low"
	StockOverstock  StockStatus = "overstock"
	StockNormal     StockStatus = "normal"
)

// overstockRatio is the share of maxStock at which a product counts as overstocked.
const overstockRatio = 0.9

// Classify maps a stock level to its status. Rules are evaluated in order and
// the first match wins. The overstock rule only applies when maxStock > 0.
func Classify(currentStock, minStock, maxStock int) StockStatus {
	switch {
	case currentStock == 0:
		return StockOutOfStock
	case currentStock <= minStock:
		return StockLow
	case maxStock > 0 && float64(currentStock) >= overstockRatio*float64(maxStock):
		return StockOverstock
	default:
		return StockNormal
	}
}

// IsLow reports whether the status needs restocking.
func (s StockStatus) IsLow() bool {
	return s == StockLow || s == StockOutOfStock
}

// Product represents a pharmacy product. Its status is never stored; call Status.
type Product struct {
	ID           int        `json:"id"`
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	Category     string     `json:"category"`
	CostPrice    float64    `json:"cost_price"`
	SellingPrice float64    `json:"selling_price"`
	CurrentStock int        `json:"current_stock"`
	MinStock     int        `json:"min_stock"`
	MaxStock     int        `json:"max_stock"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	Supplier     string     `json:"supplier,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Status derives the product's stock status from its stock fields.
func (p Product) Status() StockStatus {
	return Classify(p.CurrentStock, p.MinStock, p.MaxStock)
}
