package analytics

import (
	"testing"
	"time"

	"github.com/rogerio-castellano/pharmacy-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func composeInput() Input {
	return Input{
		Products: testProducts(),
		Sales: []models.Sale{
			sale("s1", "c1", 50000, at(2024, 1, 15, 9), item(1, "Paracetamol 500mg", 50, 50000)),
			sale("s2", "c2", 30000, at(2024, 1, 15, 17), item(2, "Amoxicillin 250mg", 12, 30000)),
			sale("s3", "", 20000, at(2024, 1, 16, 10), item(0, "Unknown Balm", 4, 20000)),
			sale("old", "c1", 9999, at(2023, 6, 1, 10), item(1, "Paracetamol 500mg", 1, 9999)),
		},
		Invoices: []models.Invoice{
			{ID: "i1", TotalAmount: 100, PaymentStatus: models.PaymentPending, CreatedAt: at(2024, 1, 20, 9)},
		},
		Customers: []models.Customer{
			{ID: "c1", MembershipLevel: models.TierGold, TotalPurchases: 50000, Status: models.StatusActive},
			{ID: "c2", MembershipLevel: models.TierBronze, TotalPurchases: 30000, Status: models.StatusActive},
		},
		Suppliers: []models.Supplier{
			{ID: 1, Name: "MediSupply", Status: models.StatusActive, TotalPurchases: 1000},
		},
		Contracts: []models.Contract{{ID: 1, SupplierID: 1, Status: models.StatusActive}},
		Transactions: []models.Transaction{
			{ID: 1, SupplierID: 1, Amount: 300, PaymentStatus: models.PaymentOverdue, DueDate: ptr(now.AddDate(0, 0, -4))},
		},
	}
}

func TestCompose(t *testing.T) {
	r := DateRange{Start: at(2024, 1, 1, 0), End: now}

	snap, err := Compose(composeInput(), r, DefaultOptions(), now)

	require.NoError(t, err)
	assert.Equal(t, r, snap.Range)
	assert.Equal(t, now, snap.GeneratedAt)
	assert.Equal(t, 100000.0, snap.KPIs.TotalRevenue)
	assert.Equal(t, 3, snap.KPIs.TotalOrders)
	assert.Equal(t, []Bucket{
		{Key: "2024-01-15", Revenue: 80000, Orders: 2, UniqueCustomers: 2},
		{Key: "2024-01-16", Revenue: 20000, Orders: 1, UniqueCustomers: 0},
	}, snap.DailySales)
	assert.Equal(t, []Bucket{{Key: "2024-01", Revenue: 100000, Orders: 3, UniqueCustomers: 2}}, snap.MonthlySales)
	assert.Equal(t, 1, snap.Diagnostics.UnresolvedLineItems)
	require.Len(t, snap.TopProducts, 3)
	assert.Equal(t, "Paracetamol 500mg", snap.TopProducts[0].Name)
	require.Len(t, snap.ProfitMargins, 2)
	assert.Equal(t, "Antibiotics", snap.ProfitMargins[1].Category)
	assert.Equal(t, 30000.0, snap.ProfitMargins[1].Revenue)
	require.Len(t, snap.OutstandingPayments, 1)
	assert.Equal(t, 4, snap.OutstandingPayments[0].DaysOverdue)
	assert.Equal(t, 4, snap.Sales.Total)
	assert.Equal(t, 1, snap.Invoices.TodayCount)
	assert.Equal(t, 4, snap.Inventory.TotalItems)
	assert.Equal(t, 1, snap.Suppliers.ActiveContracts)

	wantCost := 50.0*600 + 12.0*1500
	assert.Equal(t, 100000.0-wantCost, snap.KPIs.GrossProfit)
}

func TestCompose_IsIdempotent(t *testing.T) {
	in := composeInput()
	r := DateRange{Start: at(2024, 1, 1, 0), End: now}

	first, err := Compose(in, r, DefaultOptions(), now)
	require.NoError(t, err)
	second, err := Compose(in, r, DefaultOptions(), now)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCompose_InvalidRange(t *testing.T) {
	r := DateRange{Start: now, End: now.Add(-time.Hour)}

	_, err := Compose(composeInput(), r, DefaultOptions(), now)

	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestCompose_EmptyInput(t *testing.T) {
	r := DateRange{Start: at(2024, 1, 1, 0), End: now}

	snap, err := Compose(Input{}, r, DefaultOptions(), now)

	require.NoError(t, err)
	assert.Equal(t, KPIs{}, snap.KPIs)
	assert.Empty(t, snap.DailySales)
	assert.Equal(t, 0, snap.Customers.Total)
	for _, seg := range snap.CustomerSegments {
		assert.Zero(t, seg.Percentage)
	}
}
