package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/analytics"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/models"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/repo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// StockNotifier is told about every product whose stock changed.
type StockNotifier interface {
	StockChanged(ctx context.Context, p models.Product)
}

type Service struct {
	products *repo.ProductRepository
	sales    repo.Store[models.Sale]
	clock    analytics.Clock
	notifier StockNotifier
	logger   *zap.Logger
}

// NewService returns the inventory service. notifier may be nil.
func NewService(products *repo.ProductRepository, sales repo.Store[models.Sale], clock analytics.Clock, notifier StockNotifier, logger *zap.Logger) *Service {
	return &Service{
		products: products,
		sales:    sales,
		clock:    clock,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *Service) stockChanged(ctx context.Context, products ...models.Product) {
	if s.notifier == nil {
		return
	}
	for _, p := range products {
		s.notifier.StockChanged(ctx, p)
	}
}

func (s *Service) ListProducts(ctx context.Context, filter repo.ProductFilter) ([]models.Product, error) {
	return s.products.Filter(ctx, filter)
}

func (s *Service) GetProduct(ctx context.Context, id int) (models.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	if err := ValidateProduct(p); err != nil {
		return models.Product{}, err
	}
	now := s.clock.Now()
	p.CreatedAt, p.UpdatedAt = now, now

	created, err := s.products.Create(ctx, p)
	if err != nil {
		return models.Product{}, err
	}
	s.logger.Info("product created", zap.Int("product_id", created.ID), zap.String("name", created.Name))
	s.stockChanged(ctx, created)
	return created, nil
}

// UpdateProduct replaces every editable field of an existing product.
func (s *Service) UpdateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	if err := ValidateProduct(p); err != nil {
		return models.Product{}, err
	}
	existing, err := s.products.GetByID(ctx, p.ID)
	if err != nil {
		return models.Product{}, err
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.clock.Now()

	updated, err := s.products.Update(ctx, p)
	if err != nil {
		return models.Product{}, err
	}
	if updated.CurrentStock != existing.CurrentStock {
		s.stockChanged(ctx, updated)
	}
	return updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("product deleted", zap.Int("product_id", id))
	return nil
}

// AdjustStock adds delta, which may be negative, to a product's stock.
func (s *Service) AdjustStock(ctx context.Context, id, delta int) (models.Product, error) {
	p, err := s.products.AdjustQuantity(ctx, id, delta)
	if errors.Is(err, repo.ErrInvalidQuantityChange) {
		return models.Product{}, fmt.Errorf("%w: %v", ErrInsufficientStock, err)
	}
	if err != nil {
		return models.Product{}, err
	}
	s.stockChanged(ctx, p)
	return p, nil
}

const (
	ImportSkip   = "skip"
	ImportUpdate = "update"
)

type ImportResult struct {
	Imported int          `json:"imported"`
	Errors   []FieldError `json:"errors"`
}

// ImportProducts creates each row as a new product. Rows whose name already
// exists are skipped in ImportSkip mode and overwrite the existing product in
// ImportUpdate mode. rowOffset is added to row indexes in error messages.
func (s *Service) ImportProducts(ctx context.Context, rows []models.Product, mode string, rowOffset int) ImportResult {
	result := ImportResult{Errors: []FieldError{}}
	for i, row := range rows {
		field := fmt.Sprintf("row %d", i+rowOffset)

		existing, err := s.products.GetByName(ctx, row.Name)
		switch {
		case err == nil && mode != ImportUpdate:
			result.Errors = append(result.Errors, FieldError{Field: field, Description: fmt.Sprintf("product '%s' already exists", row.Name)})
			continue
		case err == nil:
			row.ID = existing.ID
			_, err = s.UpdateProduct(ctx, row)
		case errors.Is(err, repo.ErrProductNotFound):
			_, err = s.CreateProduct(ctx, row)
		}
		if err != nil {
			result.Errors = append(result.Errors, FieldError{Field: field, Description: err.Error()})
			continue
		}
		result.Imported++
	}
	return result
}

type SaleItemRequest struct {
	ProductID int      `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Discount  float64  `json:"discount"`
	UnitPrice *float64 `json:"unit_price,omitempty"`
}

type SaleRequest struct {
	CustomerID    string            `json:"customer_id,omitempty"`
	Items         []SaleItemRequest `json:"items"`
	PaymentMethod string            `json:"payment_method"`
	PaymentStatus string            `json:"payment_status,omitempty"`
	CashierID     int               `json:"-"` // set from the session
}

func (s *Service) ListSales(ctx context.Context) ([]models.Sale, error) {
	return s.sales.Load(ctx)
}

// RecordSale prices the requested items, takes them out of stock and appends
// the sale. Items without a unit price are sold at the product's selling
// price. Either the whole sale is recorded or nothing changes.
func (s *Service) RecordSale(ctx context.Context, req SaleRequest) (models.Sale, error) {
	if err := validateSale(req); err != nil {
		return models.Sale{}, err
	}

	sale := models.Sale{
		ID:            uuid.NewString(),
		CustomerID:    req.CustomerID,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: req.PaymentStatus,
		Status:        models.OrderCompleted,
		CashierID:     req.CashierID,
		CreatedAt:     s.clock.Now(),
	}
	if sale.PaymentMethod == "" {
		sale.PaymentMethod = "cash"
	}
	if sale.PaymentStatus == "" {
		sale.PaymentStatus = models.PaymentPaid
	}

	deltas := map[int]int{}
	total := decimal.Zero
	for _, item := range req.Items {
		p, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return models.Sale{}, fmt.Errorf("item %d: %w", item.ProductID, err)
		}
		price := p.SellingPrice
		if item.UnitPrice != nil {
			price = *item.UnitPrice
		}
		line := LineTotal(item.Quantity, price, item.Discount)
		total = total.Add(line)

		sale.Items = append(sale.Items, models.LineItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    item.Quantity,
			UnitPrice:   price,
			Discount:    item.Discount,
			Total:       line.InexactFloat64(),
		})
		deltas[p.ID] -= item.Quantity
	}
	sale.TotalAmount = total.InexactFloat64()

	changed, err := s.products.AdjustQuantities(ctx, deltas)
	if errors.Is(err, repo.ErrInvalidQuantityChange) {
		return models.Sale{}, ErrInsufficientStock
	}
	if err != nil {
		return models.Sale{}, err
	}

	if err := s.sales.Append(ctx, sale); err != nil {
		restore := map[int]int{}
		for id, d := range deltas {
			restore[id] = -d
		}
		if _, rerr := s.products.AdjustQuantities(ctx, restore); rerr != nil {
			s.logger.Error("failed to restore stock after sale write failure", zap.String("sale_id", sale.ID), zap.Error(rerr))
		}
		return models.Sale{}, fmt.Errorf("failed to record sale: %w", err)
	}

	s.logger.Info("sale recorded", zap.String("sale_id", sale.ID), zap.Float64("total", sale.TotalAmount), zap.Int("items", len(sale.Items)))
	s.stockChanged(ctx, changed...)
	return sale, nil
}

// LineTotal is quantity * unitPrice * (1 - discount/100).
func LineTotal(quantity int, unitPrice, discount float64) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	factor := hundred.Sub(decimal.NewFromFloat(discount)).Div(hundred)
	return decimal.NewFromInt(int64(quantity)).Mul(decimal.NewFromFloat(unitPrice)).Mul(factor)
}
