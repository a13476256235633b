package analytics

import (
	"time"

	"github.com/rogerio-castellano/pharmacy-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

const unspecified = "unspecified"

type CustomerSummary struct {
	Total                  int            `json:"total"`
	Active                 int            `json:"active"`
	Inactive               int            `json:"inactive"`
	TotalRevenue           float64        `json:"total_revenue"`
	AvgPurchase            float64        `json:"avg_purchase"`
	TotalLoyaltyPoints     int            `json:"total_loyalty_points"`
	MembershipDistribution map[string]int `json:"membership_distribution"`
	GenderDistribution     map[string]int `json:"gender_distribution"`
}

// CustomerStats summarizes the customer base.
func CustomerStats(customers []models.Customer) CustomerSummary {
	s := CustomerSummary{
		Total:                  len(customers),
		MembershipDistribution: map[string]int{},
		GenderDistribution:     map[string]int{},
	}
	revenue := decimal.Zero
	for _, c := range customers {
		if c.Status == models.StatusActive {
			s.Active++
		} else {
			s.Inactive++
		}
		revenue = revenue.Add(amount(c.TotalPurchases))
		s.TotalLoyaltyPoints += c.LoyaltyPoints
		s.MembershipDistribution[orUnspecified(string(c.MembershipLevel))]++
		s.GenderDistribution[orUnspecified(c.Gender)]++
	}
	s.TotalRevenue = toFloat(revenue)
	s.AvgPurchase = ratio(revenue, decimal.NewFromInt(int64(s.Total)))
	return s
}

func orUnspecified(v string) string {
	if v == "" {
		return unspecified
	}
	return v
}

type InventorySummary struct {
	TotalItems      int     `json:"total_items"`
	LowStockItems   int     `json:"low_stock_items"`
	OutOfStockItems int     `json:"out_of_stock_items"`
	OverstockItems  int     `json:"overstock_items"`
	TotalValue      float64 `json:"total_value"`
}

// InventoryStats classifies every product and values the stock at cost.
func InventoryStats(products []models.Product) InventorySummary {
	s := InventorySummary{TotalItems: len(products)}
	value := decimal.Zero
	for _, p := range products {
		switch p.Status() {
		case models.StockOutOfStock:
			s.OutOfStockItems++
			s.LowStockItems++
		case models.StockLow:
			s.LowStockItems++
		case models.StockOverstock:
			s.OverstockItems++
		}
		value = value.Add(stockValue(p))
	}
	s.TotalValue = toFloat(value)
	return s
}

func stockValue(p models.Product) decimal.Decimal {
	return decimal.NewFromInt(int64(p.CurrentStock)).Mul(amount(p.CostPrice))
}

type SupplierSummary struct {
	TotalSuppliers      int     `json:"total_suppliers"`
	ActiveSuppliers     int     `json:"active_suppliers"`
	ActiveContracts     int     `json:"active_contracts"`
	TotalPurchases      float64 `json:"total_purchases"`
	TotalDebt           float64 `json:"total_debt"`
	PendingTransactions int     `json:"pending_transactions"`
	OverdueTransactions int     `json:"overdue_transactions"`
}

// SupplierStats summarizes suppliers, their contracts and open transactions.
// A transaction is pending while unsettled and overdue once its due date has
// passed or it is explicitly marked overdue.
func SupplierStats(suppliers []models.Supplier, contracts []models.Contract, transactions []models.Transaction, now time.Time) SupplierSummary {
	s := SupplierSummary{TotalSuppliers: len(suppliers)}
	purchases, debt := decimal.Zero, decimal.Zero
	for _, sup := range suppliers {
		if sup.Status == models.StatusActive {
			s.ActiveSuppliers++
		}
		purchases = purchases.Add(amount(sup.TotalPurchases))
		debt = debt.Add(amount(sup.TotalDebt))
	}
	for _, c := range contracts {
		if c.Status == models.StatusActive {
			s.ActiveContracts++
		}
	}
	for _, t := range transactions {
		if !t.Unsettled() {
			continue
		}
		s.PendingTransactions++
		if t.PaymentStatus == models.PaymentOverdue || (t.DueDate != nil && t.DueDate.Before(now)) {
			s.OverdueTransactions++
		}
	}
	s.TotalPurchases = toFloat(purchases)
	s.TotalDebt = toFloat(debt)
	return s
}

// DocumentSummary counts sales or invoices by state.
type DocumentSummary struct {
	Total        int     `json:"total"`
	TotalRevenue float64 `json:"total_revenue"`
	TodayCount   int     `json:"today_count"`
	TodayRevenue float64 `json:"today_revenue"`
	Pending      int     `json:"pending"`
	Overdue      int     `json:"overdue"`
	Completed    int     `json:"completed"`
	Cancelled    int     `json:"cancelled"`
	Refunded     int     `json:"refunded"`
}

// InvoiceStats summarizes invoices. "Today" is the calendar date of now in
// now's location.
func InvoiceStats(invoices []models.Invoice, now time.Time) DocumentSummary {
	return documentStats(invoices, now)
}

// SaleStats summarizes sales the same way as invoices. Sales carry no due
// date, so none is ever overdue.
func SaleStats(sales []models.Sale, now time.Time) DocumentSummary {
	return documentStats(sales, now)
}

func documentStats[T Order](records []T, now time.Time) DocumentSummary {
	s := DocumentSummary{Total: len(records)}
	total, today := decimal.Zero, decimal.Zero
	for _, rec := range records {
		o := rec.Summary()
		total = total.Add(amount(o.TotalAmount))
		if sameDay(o.CreatedAt, now) {
			s.TodayCount++
			today = today.Add(amount(o.TotalAmount))
		}
		if o.PaymentStatus == models.PaymentPending {
			s.Pending++
			if o.DueDate != nil && o.DueDate.Before(now) {
				s.Overdue++
			}
		}
		switch o.Status {
		case models.OrderCompleted:
			s.Completed++
		case models.OrderCancelled:
			s.Cancelled++
		case models.OrderRefunded:
			s.Refunded++
		}
	}
	s.TotalRevenue = toFloat(total)
	s.TodayRevenue = toFloat(today)
	return s
}
