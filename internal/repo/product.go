package repo

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rogerio-castellano/pharmacy-dashboard/internal/models"
)

var (
	// ErrProductNotFound is returned when a product is not found in the repository.
	ErrProductNotFound       = errors.New("product not found")
	ErrInvalidQuantityChange = errors.New("stock cannot go below zero")
	ErrDuplicatedValueUnique = errors.New("duplicated value for unique field")
)

// ProductRepository is the product catalogue on top of a product Store.
// Read-modify-write cycles are serialized within the process.
type ProductRepository struct {
	mu    sync.Mutex
	store Store[models.Product]
}

func NewProductRepository(store Store[models.Product]) *ProductRepository {
	return &ProductRepository{store: store}
}

// GetAll retrieves all products.
func (r *ProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	return r.store.Load(ctx)
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id int) (models.Product, error) {
	products, err := r.store.Load(ctx)
	if err != nil {
		return models.Product{}, err
	}
	i := indexByID(products, id)
	if i < 0 {
		return models.Product{}, ErrProductNotFound
	}
	return products[i], nil
}

func (r *ProductRepository) GetByName(ctx context.Context, name string) (models.Product, error) {
	products, err := r.store.Load(ctx)
	if err != nil {
		return models.Product{}, err
	}
	for _, p := range products {
		if p.Name == name {
			return p, nil
		}
	}
	return models.Product{}, ErrProductNotFound
}

// Create assigns the next free ID and stores the product. Codes are unique
// when set.
func (r *ProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.store.Load(ctx)
	if err != nil {
		return models.Product{}, err
	}
	if codeTaken(products, p.Code, 0) {
		return models.Product{}, ErrDuplicatedValueUnique
	}

	next := 1
	for _, existing := range products {
		if existing.ID >= next {
			next = existing.ID + 1
		}
	}
	p.ID = next

	if err := r.store.Append(ctx, p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// Update replaces the product with the same ID.
func (r *ProductRepository) Update(ctx context.Context, p models.Product) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.store.Load(ctx)
	if err != nil {
		return models.Product{}, err
	}
	i := indexByID(products, p.ID)
	if i < 0 {
		return models.Product{}, ErrProductNotFound
	}
	if codeTaken(products, p.Code, p.ID) {
		return models.Product{}, ErrDuplicatedValueUnique
	}

	products[i] = p
	if err := r.store.Save(ctx, products); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// Delete removes a product by its ID.
func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.store.Load(ctx)
	if err != nil {
		return err
	}
	i := indexByID(products, id)
	if i < 0 {
		return ErrProductNotFound
	}
	products = append(products[:i], products[i+1:]...)
	return r.store.Save(ctx, products)
}

// AdjustQuantities applies every stock delta in one write. Nothing is written
// when any product is missing or would drop below zero.
func (r *ProductRepository) AdjustQuantities(ctx context.Context, deltas map[int]int) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	changed := make([]models.Product, 0, len(deltas))
	for id, delta := range deltas {
		i := indexByID(products, id)
		if i < 0 {
			return nil, ErrProductNotFound
		}
		if products[i].CurrentStock+delta < 0 {
			return nil, ErrInvalidQuantityChange
		}
		products[i].CurrentStock += delta
		changed = append(changed, products[i])
	}

	if err := r.store.Save(ctx, products); err != nil {
		return nil, err
	}
	return changed, nil
}

// AdjustQuantity changes the stock of one product by delta.
func (r *ProductRepository) AdjustQuantity(ctx context.Context, productID, delta int) (models.Product, error) {
	changed, err := r.AdjustQuantities(ctx, map[int]int{productID: delta})
	if err != nil {
		return models.Product{}, err
	}
	return changed[0], nil
}

func (r *ProductRepository) Filter(ctx context.Context, pf ProductFilter) ([]models.Product, error) {
	products, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	filtered := []models.Product{}
	for _, p := range products {
		if matchesFilter(p, pf) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func indexByID(products []models.Product, id int) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func codeTaken(products []models.Product, code string, exceptID int) bool {
	if code == "" {
		return false
	}
	for _, p := range products {
		if p.ID != exceptID && strings.EqualFold(p.Code, code) {
			return true
		}
	}
	return false
}
