package analytics

import (
	"cmp"
	"slices"
	"strconv"
	"time"

	"github.com/rogerio-castellano/pharmacy-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

// catalog resolves line items to products. Items carrying a product id are
// joined by id only; the name lookup serves items recorded without one.
type catalog struct {
	byID   map[int]models.Product
	byName map[string]models.Product
}

func newCatalog(products []models.Product) catalog {
	c := catalog{
		byID:   make(map[int]models.Product, len(products)),
		byName: make(map[string]models.Product, len(products)),
	}
	for _, p := range products {
		if _, ok := c.byID[p.ID]; !ok {
			c.byID[p.ID] = p
		}
		if _, ok := c.byName[p.Name]; !ok {
			c.byName[p.Name] = p
		}
	}
	return c
}

func (c catalog) resolve(item models.LineItem) (models.Product, bool) {
	if item.ProductID != 0 {
		p, ok := c.byID[item.ProductID]
		return p, ok
	}
	p, ok := c.byName[item.ProductName]
	return p, ok
}

// truncate keeps the first n entries; n <= 0 keeps everything.
func truncate[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}

type ProductPerformance struct {
	ProductID int     `json:"product_id,omitempty"`
	Name      string  `json:"name"`
	Sold      int     `json:"sold"`
	Revenue   float64 `json:"revenue"`
	Growth    int     `json:"growth"`
}

type productAcc struct {
	id      int
	name    string
	sold    int
	revenue decimal.Decimal
}

// TopProducts ranks products by line-item revenue in current. Growth compares
// each product's revenue with its revenue in previous, in percent.
func TopProducts(current, previous []models.Sale, products []models.Product, n int) []ProductPerformance {
	cat := newCatalog(products)
	now := accumulateProducts(current, cat)
	before := accumulateProducts(previous, cat)

	out := make([]ProductPerformance, 0, len(now))
	for key, acc := range now {
		growth := 0
		if prev, ok := before[key]; ok && !prev.revenue.IsZero() {
			growth = percent(acc.revenue.Sub(prev.revenue), prev.revenue)
		}
		out = append(out, ProductPerformance{
			ProductID: acc.id,
			Name:      acc.name,
			Sold:      acc.sold,
			Revenue:   toFloat(acc.revenue),
			Growth:    growth,
		})
	}
	slices.SortFunc(out, func(a, b ProductPerformance) int {
		if c := cmp.Compare(b.Revenue, a.Revenue); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	return truncate(out, n)
}

func accumulateProducts(sales []models.Sale, cat catalog) map[string]*productAcc {
	accs := map[string]*productAcc{}
	for _, s := range sales {
		for _, item := range s.Items {
			key, id, name := "name:"+item.ProductName, 0, item.ProductName
			if p, ok := cat.resolve(item); ok {
				key, id, name = "id:"+strconv.Itoa(p.ID), p.ID, p.Name
			}
			acc, ok := accs[key]
			if !ok {
				acc = &productAcc{id: id, name: name, revenue: decimal.Zero}
				accs[key] = acc
			}
			acc.sold += item.Quantity
			acc.revenue = acc.revenue.Add(amount(item.Total))
		}
	}
	return accs
}

type CustomerSegment struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage int     `json:"percentage"`
	Revenue    float64 `json:"revenue"`
}

var segments = []struct {
	name  string
	tiers []models.MembershipTier
}{
	{"VIP", []models.MembershipTier{models.TierPlatinum, models.TierGold}},
	{"Regular", []models.MembershipTier{models.TierSilver}},
	{"New", []models.MembershipTier{models.TierBronze}},
}

// CustomerSegments partitions customers into VIP, Regular and New by tier.
// Revenue is the segment's summed total purchases.
func CustomerSegments(customers []models.Customer) []CustomerSegment {
	out := make([]CustomerSegment, 0, len(segments))
	for _, seg := range segments {
		count := 0
		revenue := decimal.Zero
		for _, c := range customers {
			if slices.Contains(seg.tiers, c.MembershipLevel) {
				count++
				revenue = revenue.Add(amount(c.TotalPurchases))
			}
		}
		out = append(out, CustomerSegment{
			Name:       seg.name,
			Count:      count,
			Percentage: percentOfCount(count, len(customers)),
			Revenue:    toFloat(revenue),
		})
	}
	return out
}

// CategoryStock counts products per category. LowStock includes products
// that are out of stock.
type CategoryStock struct {
	Category   string `json:"category"`
	Total      int    `json:"total"`
	LowStock   int    `json:"low_stock"`
	OutOfStock int    `json:"out_of_stock"`
}

func StockByCategory(products []models.Product) []CategoryStock {
	byCat := map[string]*CategoryStock{}
	for _, p := range products {
		cs, ok := byCat[p.Category]
		if !ok {
			cs = &CategoryStock{Category: p.Category}
			byCat[p.Category] = cs
		}
		cs.Total++
		status := p.Status()
		if status.IsLow() {
			cs.LowStock++
		}
		if status == models.StockOutOfStock {
			cs.OutOfStock++
		}
	}

	out := make([]CategoryStock, 0, len(byCat))
	for _, cs := range byCat {
		out = append(out, *cs)
	}
	slices.SortFunc(out, func(a, b CategoryStock) int { return cmp.Compare(a.Category, b.Category) })
	return out
}

type ExpiringProduct struct {
	ProductID  int       `json:"product_id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	Stock      int       `json:"stock"`
	ExpiryDate time.Time `json:"expiry_date"`
	DaysLeft   int       `json:"days_left"`
}

// ExpiringProducts lists in-stock products expiring within window of now,
// soonest first. Already expired products have a negative DaysLeft.
func ExpiringProducts(products []models.Product, now time.Time, window time.Duration, n int) []ExpiringProduct {
	limit := now.Add(window)
	var out []ExpiringProduct
	for _, p := range products {
		if p.CurrentStock <= 0 || p.ExpiryDate == nil || p.ExpiryDate.After(limit) {
			continue
		}
		out = append(out, ExpiringProduct{
			ProductID:  p.ID,
			Name:       p.Name,
			Category:   p.Category,
			Stock:      p.CurrentStock,
			ExpiryDate: *p.ExpiryDate,
			DaysLeft:   daysBetween(now, *p.ExpiryDate),
		})
	}
	slices.SortStableFunc(out, func(a, b ExpiringProduct) int {
		if c := cmp.Compare(a.DaysLeft, b.DaysLeft); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return truncate(out, n)
}

type SupplierRanking struct {
	SupplierID      int     `json:"supplier_id"`
	Name            string  `json:"name"`
	TotalPurchases  float64 `json:"total_purchases"`
	Rating          float64 `json:"rating"`
	ActiveContracts int     `json:"active_contracts"`
}

// TopSuppliers ranks active suppliers by total purchases.
func TopSuppliers(suppliers []models.Supplier, contracts []models.Contract, n int) []SupplierRanking {
	active := map[int]int{}
	for _, c := range contracts {
		if c.Status == models.StatusActive {
			active[c.SupplierID]++
		}
	}

	var out []SupplierRanking
	for _, s := range suppliers {
		if s.Status != models.StatusActive {
			continue
		}
		out = append(out, SupplierRanking{
			SupplierID:      s.ID,
			Name:            s.Name,
			TotalPurchases:  finite(s.TotalPurchases),
			Rating:          finite(s.Rating),
			ActiveContracts: active[s.ID],
		})
	}
	slices.SortStableFunc(out, func(a, b SupplierRanking) int {
		return cmp.Compare(b.TotalPurchases, a.TotalPurchases)
	})
	return truncate(out, n)
}

type PaymentMethodShare struct {
	Method     string  `json:"method"`
	Amount     float64 `json:"amount"`
	Count      int     `json:"count"`
	Percentage int     `json:"percentage"`
}

// RevenueByPaymentMethod splits sales revenue by payment method, largest first.
func RevenueByPaymentMethod(sales []models.Sale) []PaymentMethodShare {
	type acc struct {
		amount decimal.Decimal
		count  int
	}
	byMethod := map[string]*acc{}
	total := decimal.Zero
	for _, s := range sales {
		method := orUnspecified(s.PaymentMethod)
		a, ok := byMethod[method]
		if !ok {
			a = &acc{amount: decimal.Zero}
			byMethod[method] = a
		}
		a.amount = a.amount.Add(amount(s.TotalAmount))
		a.count++
		total = total.Add(amount(s.TotalAmount))
	}

	out := make([]PaymentMethodShare, 0, len(byMethod))
	for method, a := range byMethod {
		out = append(out, PaymentMethodShare{
			Method:     method,
			Amount:     toFloat(a.amount),
			Count:      a.count,
			Percentage: percent(a.amount, total),
		})
	}
	slices.SortFunc(out, func(a, b PaymentMethodShare) int {
		if c := cmp.Compare(b.Amount, a.Amount); c != 0 {
			return c
		}
		return cmp.Compare(a.Method, b.Method)
	})
	return out
}

type CategoryMargin struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
	Cost     float64 `json:"cost"`
	Profit   float64 `json:"profit"`
	Margin   int     `json:"margin"`
}

// ProfitMargins computes revenue, cost and margin per product category. Line
// items whose product cannot be resolved are skipped and counted in the
// second return value.
func ProfitMargins(sales []models.Sale, products []models.Product) ([]CategoryMargin, int) {
	type acc struct{ revenue, cost decimal.Decimal }
	cat := newCatalog(products)
	byCat := map[string]*acc{}
	unresolved := 0
	for _, s := range sales {
		for _, item := range s.Items {
			p, ok := cat.resolve(item)
			if !ok {
				unresolved++
				continue
			}
			a, ok := byCat[p.Category]
			if !ok {
				a = &acc{revenue: decimal.Zero, cost: decimal.Zero}
				byCat[p.Category] = a
			}
			a.revenue = a.revenue.Add(amount(item.Total))
			a.cost = a.cost.Add(amount(p.CostPrice).Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	out := make([]CategoryMargin, 0, len(byCat))
	for category, a := range byCat {
		profit := a.revenue.Sub(a.cost)
		out = append(out, CategoryMargin{
			Category: category,
			Revenue:  toFloat(a.revenue),
			Cost:     toFloat(a.cost),
			Profit:   toFloat(profit),
			Margin:   percent(profit, a.revenue),
		})
	}
	slices.SortFunc(out, func(a, b CategoryMargin) int { return cmp.Compare(a.Category, b.Category) })
	return out, unresolved
}

type OutstandingPayment struct {
	TransactionID int       `json:"transaction_id"`
	SupplierID    int       `json:"supplier_id"`
	SupplierName  string    `json:"supplier_name,omitempty"`
	Amount        float64   `json:"amount"`
	DueDate       time.Time `json:"due_date"`
	DaysOverdue   int       `json:"days_overdue"`
}

// OutstandingPayments lists overdue supplier transactions, longest overdue first.
func OutstandingPayments(transactions []models.Transaction, suppliers []models.Supplier, now time.Time) []OutstandingPayment {
	names := make(map[int]string, len(suppliers))
	for _, s := range suppliers {
		names[s.ID] = s.Name
	}

	var out []OutstandingPayment
	for _, t := range transactions {
		if t.PaymentStatus != models.PaymentOverdue || t.DueDate == nil {
			continue
		}
		out = append(out, OutstandingPayment{
			TransactionID: t.ID,
			SupplierID:    t.SupplierID,
			SupplierName:  names[t.SupplierID],
			Amount:        finite(t.Amount),
			DueDate:       *t.DueDate,
			DaysOverdue:   daysBetween(*t.DueDate, now),
		})
	}
	slices.SortStableFunc(out, func(a, b OutstandingPayment) int {
		if c := cmp.Compare(b.DaysOverdue, a.DaysOverdue); c != 0 {
			return c
		}
		return cmp.Compare(a.TransactionID, b.TransactionID)
	})
	return out
}
