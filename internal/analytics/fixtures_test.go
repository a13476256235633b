package analytics

import (
	"time"

	"github.com/rogerio-castellano/pharmacy-dashboard/internal/models"
)

var now = time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)

func at(year int, month time.Month, dayOfMonth, hour int) time.Time {
	return time.Date(year, month, dayOfMonth, hour, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func sale(id, customer string, total float64, createdAt time.Time, items ...models.LineItem) models.Sale {
	return models.Sale{
		ID:            id,
		CustomerID:    customer,
		Items:         items,
		TotalAmount:   total,
		PaymentMethod: "cash",
		PaymentStatus: models.PaymentPaid,
		Status:        models.OrderCompleted,
		CreatedAt:     createdAt,
	}
}

func item(productID int, name string, qty int, total float64) models.LineItem {
	li := models.LineItem{ProductID: productID, ProductName: name, Quantity: qty, Total: total}
	if qty > 0 {
		li.UnitPrice = total / float64(qty)
	}
	return li
}

func testProducts() []models.Product {
	return []models.Product{
		{ID: 1, Name: "Paracetamol 500mg", Category: "Analgesics", CostPrice: 600, SellingPrice: 1000, CurrentStock: 25, MinStock: 30, MaxStock: 200},
		{ID: 2, Name: "Amoxicillin 250mg", Category: "Antibiotics", CostPrice: 1500, SellingPrice: 2500, CurrentStock: 190, MinStock: 50, MaxStock: 200},
		{ID: 3, Name: "Vitamin C", Category: "Supplements", CostPrice: 200, SellingPrice: 400, CurrentStock: 0, MinStock: 10, MaxStock: 100},
		{ID: 4, Name: "Ibuprofen 400mg", Category: "Analgesics", CostPrice: 800, SellingPrice: 1200, CurrentStock: 100, MinStock: 20, MaxStock: 300},
	}
}
