package models

import "time"

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentPartial = "partial"
	PaymentOverdue = "overdue"

	OrderPending   = "pending"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
	OrderRefunded  = "refunded"
)

// LineItem is one product line of a sale or invoice. Discount is a percentage.
type LineItem struct {
	ProductID   int     `json:"product_id,omitempty"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Discount    float64 `json:"discount"`
	Total       float64 `json:"total"`
}

// Sale is a point-of-sale transaction.
type Sale struct {
	ID            string     `json:"id"`
	CustomerID    string     `json:"customer_id,omitempty"`
	Items         []LineItem `json:"items"`
	TotalAmount   float64    `json:"total_amount"`
	PaymentMethod string     `json:"payment_method"`
	PaymentStatus string     `json:"payment_status"`
	Status        string     `json:"status"`
	CashierID     int        `json:"cashier_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Invoice is a billed order which may be settled after its creation.
type Invoice struct {
	ID            string     `json:"id"`
	Number        string     `json:"number"`
	CustomerID    string     `json:"customer_id,omitempty"`
	Items         []LineItem `json:"items"`
	TotalAmount   float64    `json:"total_amount"`
	PaymentMethod string     `json:"payment_method"`
	PaymentStatus string     `json:"payment_status"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	DueDate       *time.Time `json:"due_date,omitempty"`
}

// OrderSummary is the part of a sale or invoice the aggregations fold over.
type OrderSummary struct {
	ID            string
	CustomerID    string
	TotalAmount   float64
	PaymentMethod string
	PaymentStatus string
	Status        string
	CreatedAt     time.Time
	DueDate       *time.Time
	Items         []LineItem
}

func (s Sale) Summary() OrderSummary {
	return OrderSummary{
		ID:            s.ID,
		CustomerID:    s.CustomerID,
		TotalAmount:   s.TotalAmount,
		PaymentMethod: s.PaymentMethod,
		PaymentStatus: s.PaymentStatus,
		Status:        s.Status,
		CreatedAt:     s.CreatedAt,
		Items:         s.Items,
	}
}

func (i Invoice) Summary() OrderSummary {
	return OrderSummary{
		ID:            i.ID,
		CustomerID:    i.CustomerID,
		TotalAmount:   i.TotalAmount,
		PaymentMethod: i.PaymentMethod,
		PaymentStatus: i.PaymentStatus,
		Status:        i.Status,
		CreatedAt:     i.CreatedAt,
		DueDate:       i.DueDate,
		Items:         i.Items,
	}
}
