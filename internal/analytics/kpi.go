package analytics

import (
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

// DefaultOperatingExpenseRate is the share of revenue assumed to go to
// operating expenses when no rate is configured.
const DefaultOperatingExpenseRate = 0.15

type KPIs struct {
	TotalRevenue          float64 `json:"total_revenue"`
	TotalOrders           int     `json:"total_orders"`
	AverageOrderValue     float64 `json:"average_order_value"`
	GrossProfit           float64 `json:"gross_profit"`
	GrossProfitMargin     float64 `json:"gross_profit_margin"`
	OperatingExpenses     float64 `json:"operating_expenses"`
	NetProfit             float64 `json:"net_profit"`
	CustomerRetentionRate float64 `json:"customer_retention_rate"`
	InventoryTurnover     float64 `json:"inventory_turnover"`
}

// KPIInput carries what the KPI calculator folds over. Current and Previous
// are the sales of the report window and of the equal-length window before it.
type KPIInput struct {
	Current              []models.Sale
	Previous             []models.Sale
	Margins              []CategoryMargin
	Products             []models.Product
	OperatingExpenseRate float64
}

// CalculateKPIs derives the headline figures.
//
// Retention is the percentage of customers who bought in the previous window
// and bought again in the current one. Inventory turnover is cost of goods
// sold over the average inventory value, where the beginning inventory is
// approximated as the current value plus the goods sold in the window.
func CalculateKPIs(in KPIInput) KPIs {
	revenue := decimal.Zero
	for _, s := range in.Current {
		revenue = revenue.Add(amount(s.TotalAmount))
	}
	cogs := decimal.Zero
	for _, m := range in.Margins {
		cogs = cogs.Add(amount(m.Cost))
	}

	grossProfit := revenue.Sub(cogs)
	opex := revenue.Mul(amount(in.OperatingExpenseRate))
	orders := len(in.Current)

	return KPIs{
		TotalRevenue:          toFloat(revenue),
		TotalOrders:           orders,
		AverageOrderValue:     ratio(revenue, decimal.NewFromInt(int64(orders))),
		GrossProfit:           toFloat(grossProfit),
		GrossProfitMargin:     ratio(grossProfit.Mul(decimal.NewFromInt(100)), revenue),
		OperatingExpenses:     toFloat(opex),
		NetProfit:             toFloat(grossProfit.Sub(opex)),
		CustomerRetentionRate: retentionRate(in.Current, in.Previous),
		InventoryTurnover:     inventoryTurnover(in.Products, cogs),
	}
}

func customerSet(sales []models.Sale) map[string]struct{} {
	set := map[string]struct{}{}
	for _, s := range sales {
		if s.CustomerID != "" {
			set[s.CustomerID] = struct{}{}
		}
	}
	return set
}

func retentionRate(current, previous []models.Sale) float64 {
	before := customerSet(previous)
	now := customerSet(current)
	retained := 0
	for id := range before {
		if _, ok := now[id]; ok {
			retained++
		}
	}
	return ratio(decimal.NewFromInt(int64(retained*100)), decimal.NewFromInt(int64(len(before))))
}

func inventoryTurnover(products []models.Product, cogs decimal.Decimal) float64 {
	ending := decimal.Zero
	for _, p := range products {
		ending = ending.Add(stockValue(p))
	}
	beginning := ending.Add(cogs)
	average := beginning.Add(ending).Div(decimal.NewFromInt(2))
	return ratio(cogs, average)
}
