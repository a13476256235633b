package analytics

import (
	"time"

	"github.com/rogerio-castellano/pharmacy-dashboard/internal/models"
)

// Input is a complete snapshot of every record collection.
type Input struct {
	Sales        []models.Sale
	Invoices     []models.Invoice
	Products     []models.Product
	Customers    []models.Customer
	Suppliers    []models.Supplier
	Contracts    []models.Contract
	Transactions []models.Transaction
}

type Options struct {
	TopN                 int
	ExpiryWindow         time.Duration
	OperatingExpenseRate float64
}

func DefaultOptions() Options {
	return Options{
		TopN:                 10,
		ExpiryWindow:         90 * day,
		OperatingExpenseRate: DefaultOperatingExpenseRate,
	}
}

// Diagnostics reports records the composer had to skip.
type Diagnostics struct {
	UnresolvedLineItems int `json:"unresolved_line_items"`
}

// Snapshot is the full report for one date range. It is recomputed on demand
// and never persisted.
type Snapshot struct {
	Range       DateRange `json:"range"`
	GeneratedAt time.Time `json:"generated_at"`

	KPIs         KPIs     `json:"kpis"`
	DailySales   []Bucket `json:"daily_sales"`
	MonthlySales []Bucket `json:"monthly_sales"`

	TopProducts            []ProductPerformance `json:"top_products"`
	CustomerSegments       []CustomerSegment    `json:"customer_segments"`
	StockLevels            []CategoryStock      `json:"stock_levels"`
	ExpiringProducts       []ExpiringProduct    `json:"expiring_products"`
	TopSuppliers           []SupplierRanking    `json:"top_suppliers"`
	RevenueByPaymentMethod []PaymentMethodShare `json:"revenue_by_payment_method"`
	ProfitMargins          []CategoryMargin     `json:"profit_margins"`
	OutstandingPayments    []OutstandingPayment `json:"outstanding_payments"`

	Customers CustomerSummary  `json:"customers"`
	Inventory InventorySummary `json:"inventory"`
	Suppliers SupplierSummary  `json:"suppliers"`
	Invoices  DocumentSummary  `json:"invoices"`
	Sales     DocumentSummary  `json:"sales"`

	Diagnostics Diagnostics `json:"diagnostics"`
}

// Compose builds the report snapshot for r. Series, rankings, margins and
// KPIs only see sales created within r; the entity summaries cover the full
// collections as of now.
func Compose(in Input, r DateRange, opts Options, now time.Time) (Snapshot, error) {
	if err := r.Validate(); err != nil {
		return Snapshot{}, err
	}

	current := InRange(in.Sales, r)
	previous := InRange(in.Sales, r.Previous())

	daily, err := Rollup(current, Daily, &r, now)
	if err != nil {
		return Snapshot{}, err
	}
	monthly, err := Rollup(current, Monthly, &r, now)
	if err != nil {
		return Snapshot{}, err
	}

	margins, unresolved := ProfitMargins(current, in.Products)

	return Snapshot{
		Range:       r,
		GeneratedAt: now,
		KPIs: CalculateKPIs(KPIInput{
			Current:              current,
			Previous:             previous,
			Margins:              margins,
			Products:             in.Products,
			OperatingExpenseRate: opts.OperatingExpenseRate,
		}),
		DailySales:             daily,
		MonthlySales:           monthly,
		TopProducts:            TopProducts(current, previous, in.Products, opts.TopN),
		CustomerSegments:       CustomerSegments(in.Customers),
		StockLevels:            StockByCategory(in.Products),
		ExpiringProducts:       ExpiringProducts(in.Products, now, opts.ExpiryWindow, opts.TopN),
		TopSuppliers:           TopSuppliers(in.Suppliers, in.Contracts, opts.TopN),
		RevenueByPaymentMethod: RevenueByPaymentMethod(current),
		ProfitMargins:          margins,
		OutstandingPayments:    OutstandingPayments(in.Transactions, in.Suppliers, now),
		Customers:              CustomerStats(in.Customers),
		Inventory:              InventoryStats(in.Products),
		Suppliers:              SupplierStats(in.Suppliers, in.Contracts, in.Transactions, now),
		Invoices:               InvoiceStats(in.Invoices, now),
		Sales:                  SaleStats(in.Sales, now),
		Diagnostics:            Diagnostics{UnresolvedLineItems: unresolved},
	}, nil
}
