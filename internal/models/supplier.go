package models

import "time"

type Supplier struct {
	ID             int      `json:"id"`
	Code           string   `json:"code"`
	Name           string   `json:"name"`
	Status         string   `json:"status"`
	TotalPurchases float64  `json:"total_purchases"`
	TotalDebt      float64  `json:"total_debt"`
	Rating         float64  `json:"rating"`
	Categories     []string `json:"categories,omitempty"`
}

type Contract struct {
	ID         int       `json:"id"`
	SupplierID int       `json:"supplier_id"`
	Status     string    `json:"status"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
}

// TransactionType classifies money movements with a supplier.
type TransactionType string

const (
	TransactionPurchase   TransactionType = "purchase"
	TransactionPayment    TransactionType = "payment"
	TransactionRefund     TransactionType = "refund"
	TransactionAdjustment TransactionType = "adjustment"
)

type Transaction struct {
	ID            int             `json:"id"`
	SupplierID    int             `json:"supplier_id"`
	Type          TransactionType `json:"type"`
	Amount        float64         `json:"amount"`
	PaymentStatus string          `json:"payment_status"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Unsettled reports whether the transaction still awaits payment.
func (t Transaction) Unsettled() bool {
	switch t.PaymentStatus {
	case PaymentPending, PaymentPartial, PaymentOverdue:
		return true
	}
	return false
}
