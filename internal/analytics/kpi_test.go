package analytics

import (
	"testing"

	"github.com/rogerio-castellano/pharmacy-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCalculateKPIs(t *testing.T) {
	in := KPIInput{
		Current: []models.Sale{
			sale("s1", "a", 60000, now),
			sale("s2", "c", 40000, now),
		},
		Previous: []models.Sale{
			sale("p1", "a", 10, now.AddDate(0, 0, -40)),
			sale("p2", "b", 10, now.AddDate(0, 0, -40)),
			sale("p3", "", 10, now.AddDate(0, 0, -40)),
		},
		Margins: []CategoryMargin{
			{Category: "Analgesics", Revenue: 70000, Cost: 40000},
			{Category: "Antibiotics", Revenue: 30000, Cost: 20000},
		},
		Products:             []models.Product{{CurrentStock: 10, CostPrice: 100}},
		OperatingExpenseRate: 0.15,
	}

	got := CalculateKPIs(in)

	assert.Equal(t, 100000.0, got.TotalRevenue)
	assert.Equal(t, 2, got.TotalOrders)
	assert.Equal(t, 50000.0, got.AverageOrderValue)
	assert.Equal(t, 40000.0, got.GrossProfit)
	assert.Equal(t, 40.0, got.GrossProfitMargin)
	assert.Equal(t, 15000.0, got.OperatingExpenses)
	assert.Equal(t, 25000.0, got.NetProfit)
	assert.Equal(t, 50.0, got.CustomerRetentionRate)
	assert.InDelta(t, 60000.0/31000.0, got.InventoryTurnover, 1e-9)
}

func TestCalculateKPIs_NoSales(t *testing.T) {
	got := CalculateKPIs(KPIInput{OperatingExpenseRate: 0.15})

	assert.Equal(t, KPIs{}, got)
}

func TestCalculateKPIs_ConfigurableExpenseRate(t *testing.T) {
	in := KPIInput{
		Current:              []models.Sale{sale("s1", "", 1000, now)},
		OperatingExpenseRate: 0.25,
	}

	got := CalculateKPIs(in)

	assert.Equal(t, 250.0, got.OperatingExpenses)
	assert.Equal(t, 750.0, got.NetProfit)
	assert.Equal(t, 100.0, got.GrossProfitMargin)
}
