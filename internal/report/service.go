package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rogerio-castellano/pharmacy-dashboard/internal/analytics"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/config"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/redissvc"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/repo"
	"go.uber.org/zap"
)

var ErrUnknownEntity = errors.New("unknown entity")

// Entities accepted by Stats.
const (
	EntityCustomers = "customers"
	EntityInventory = "inventory"
	EntitySuppliers = "suppliers"
	EntityInvoices  = "invoices"
	EntitySales     = "sales"
)

// Service serves derived dashboard state. Nothing it returns is persisted;
// snapshots are recomputed on every call from the stores, whose contents may
// be cached.
type Service struct {
	stores      *repo.Stores
	cache       *redissvc.Cache
	clock       analytics.Clock
	opts        analytics.Options
	windowDays  int
	logger      *zap.Logger
	unsubscribe func()
}

// Options derives the composer options from the report configuration.
func Options(cfg config.ReportConfig) analytics.Options {
	opts := analytics.DefaultOptions()
	if cfg.TopN > 0 {
		opts.TopN = cfg.TopN
	}
	if cfg.ExpiryWindowDays > 0 {
		opts.ExpiryWindow = time.Duration(cfg.ExpiryWindowDays) * 24 * time.Hour
	}
	if cfg.OperatingExpenseRate > 0 {
		opts.OperatingExpenseRate = cfg.OperatingExpenseRate
	}
	return opts
}

// NewService wires the service to stores. When cache is non-nil every store
// change invalidates the cached collections.
func NewService(stores *repo.Stores, cache *redissvc.Cache, clock analytics.Clock, cfg config.ReportConfig, logger *zap.Logger) *Service {
	s := &Service{
		stores:     stores,
		cache:      cache,
		clock:      clock,
		opts:       Options(cfg),
		windowDays: cfg.DefaultWindowDays,
		logger:     logger,
	}
	if s.windowDays <= 0 {
		s.windowDays = analytics.DefaultWindowDays
	}
	if cache != nil {
		s.unsubscribe = stores.OnChange(s.invalidate)
	}
	return s
}

func (s *Service) invalidate(collection string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate report cache", zap.String("collection", collection), zap.Error(err))
		return
	}
	s.logger.Debug("report cache invalidated", zap.String("collection", collection))
}

// Close stops listening for store changes.
func (s *Service) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

func (s *Service) window(r *analytics.DateRange, now time.Time) analytics.DateRange {
	if r == nil {
		return analytics.TrailingDays(now, s.windowDays)
	}
	return *r
}

// collectionsKey is the cache entry holding every collection. Snapshots are
// composed from it on each request, so values derived from the clock stay
// current.
const collectionsKey = "collections"

// load reads every collection, through the cache when one is configured.
// Cache failures are logged and fall back to the stores.
func (s *Service) load(ctx context.Context) (analytics.Input, error) {
	snap, err := s.loadCollections(ctx)
	if err != nil {
		return analytics.Input{}, fmt.Errorf("failed to load collections: %w", err)
	}
	return analytics.Input{
		Sales:        snap.Sales,
		Invoices:     snap.Invoices,
		Products:     snap.Products,
		Customers:    snap.Customers,
		Suppliers:    snap.Suppliers,
		Contracts:    snap.Contracts,
		Transactions: snap.Transactions,
	}, nil
}

func (s *Service) loadCollections(ctx context.Context) (repo.Snapshot, error) {
	if s.cache == nil {
		return s.stores.Load(ctx)
	}

	key, err := s.cache.BuildKey(ctx, collectionsKey)
	if err != nil {
		s.logger.Warn("report cache unavailable", zap.Error(err))
		return s.stores.Load(ctx)
	}

	var snap repo.Snapshot
	err = s.cache.FetchJSON(ctx, key, &snap, func(ctx context.Context) (any, error) {
		return s.stores.Load(ctx)
	})
	switch {
	case err == nil:
		return snap, nil
	case errors.Is(err, redissvc.ErrCacheWrite):
		s.logger.Warn("failed to cache collections", zap.Error(err))
		return snap, nil
	case errors.Is(err, redissvc.ErrCacheRead):
		s.logger.Warn("report cache unavailable", zap.Error(err))
		return s.stores.Load(ctx)
	default:
		return repo.Snapshot{}, err
	}
}

// Snapshot composes the full report for r, or for the trailing default window
// when r is nil.
func (s *Service) Snapshot(ctx context.Context, r *analytics.DateRange) (analytics.Snapshot, error) {
	now := s.clock.Now()
	window := s.window(r, now)
	if err := window.Validate(); err != nil {
		return analytics.Snapshot{}, err
	}

	in, err := s.load(ctx)
	if err != nil {
		return analytics.Snapshot{}, err
	}
	snap, err := analytics.Compose(in, window, s.opts, now)
	if err != nil {
		return analytics.Snapshot{}, err
	}
	if n := snap.Diagnostics.UnresolvedLineItems; n > 0 {
		s.logger.Warn("line items without a matching product were skipped", zap.Int("count", n))
	}
	return snap, nil
}

// Series returns the sales rollup at granularity g.
func (s *Service) Series(ctx context.Context, g analytics.Granularity, r *analytics.DateRange) ([]analytics.Bucket, error) {
	now := s.clock.Now()
	window := s.window(r, now)
	if err := window.Validate(); err != nil {
		return nil, err
	}
	in, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.Rollup(in.Sales, g, &window, now)
}

// Stats returns the aggregate summary of one entity collection.
func (s *Service) Stats(ctx context.Context, entity string) (any, error) {
	now := s.clock.Now()
	switch entity {
	case EntityCustomers:
		customers, err := s.stores.Customers.Load(ctx)
		if err != nil {
			return nil, err
		}
		return analytics.CustomerStats(customers), nil
	case EntityInventory:
		products, err := s.stores.Products.Load(ctx)
		if err != nil {
			return nil, err
		}
		return analytics.InventoryStats(products), nil
	case EntitySuppliers:
		in, err := s.load(ctx)
		if err != nil {
			return nil, err
		}
		return analytics.SupplierStats(in.Suppliers, in.Contracts, in.Transactions, now), nil
	case EntityInvoices:
		invoices, err := s.stores.Invoices.Load(ctx)
		if err != nil {
			return nil, err
		}
		return analytics.InvoiceStats(invoices, now), nil
	case EntitySales:
		sales, err := s.stores.Sales.Load(ctx)
		if err != nil {
			return nil, err
		}
		return analytics.SaleStats(sales, now), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
}

// ExpiringProducts lists in-stock products expiring within the configured
// window, as of now.
func (s *Service) ExpiringProducts(ctx context.Context) ([]analytics.ExpiringProduct, error) {
	products, err := s.stores.Products.Load(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.ExpiringProducts(products, s.clock.Now(), s.opts.ExpiryWindow, s.opts.TopN), nil
}
