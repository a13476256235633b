package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Stores bundles every record collection the dashboard reads.
type Stores struct {
	Products     Store[models.Product]
	Sales        Store[models.Sale]
	Invoices     Store[models.Invoice]
	Customers    Store[models.Customer]
	Suppliers    Store[models.Supplier]
	Contracts    Store[models.Contract]
	Transactions Store[models.Transaction]

	// reader, when set, reads all collections in one consistent operation.
	reader collectionReader
}

// collectionReader returns the raw records of each named collection as of a
// single point in time.
type collectionReader interface {
	readCollections(ctx context.Context, collections []string) (map[string][]json.RawMessage, error)
}

var allCollections = []string{
	CollectionProducts, CollectionSales, CollectionInvoices, CollectionCustomers,
	CollectionSuppliers, CollectionContracts, CollectionTransactions,
}

func NewMemoryStores() *Stores {
	return &Stores{
		Products:     NewMemoryStore[models.Product](CollectionProducts),
		Sales:        NewMemoryStore[models.Sale](CollectionSales),
		Invoices:     NewMemoryStore[models.Invoice](CollectionInvoices),
		Customers:    NewMemoryStore[models.Customer](CollectionCustomers),
		Suppliers:    NewMemoryStore[models.Supplier](CollectionSuppliers),
		Contracts:    NewMemoryStore[models.Contract](CollectionContracts),
		Transactions: NewMemoryStore[models.Transaction](CollectionTransactions),
	}
}

func NewRedisStores(rdb *redis.Client) *Stores {
	return &Stores{
		Products:     NewRedisStore[models.Product](rdb, CollectionProducts),
		Sales:        NewRedisStore[models.Sale](rdb, CollectionSales),
		Invoices:     NewRedisStore[models.Invoice](rdb, CollectionInvoices),
		Customers:    NewRedisStore[models.Customer](rdb, CollectionCustomers),
		Suppliers:    NewRedisStore[models.Supplier](rdb, CollectionSuppliers),
		Contracts:    NewRedisStore[models.Contract](rdb, CollectionContracts),
		Transactions: NewRedisStore[models.Transaction](rdb, CollectionTransactions),
		reader:       redisReader{rdb: rdb},
	}
}

func NewPostgresStores(db *sqlx.DB) *Stores {
	return &Stores{
		Products:     NewPostgresStore[models.Product](db, CollectionProducts),
		Sales:        NewPostgresStore[models.Sale](db, CollectionSales),
		Invoices:     NewPostgresStore[models.Invoice](db, CollectionInvoices),
		Customers:    NewPostgresStore[models.Customer](db, CollectionCustomers),
		Suppliers:    NewPostgresStore[models.Supplier](db, CollectionSuppliers),
		Contracts:    NewPostgresStore[models.Contract](db, CollectionContracts),
		Transactions: NewPostgresStore[models.Transaction](db, CollectionTransactions),
		reader:       postgresReader{db: db},
	}
}

type subscriber interface {
	OnChange(fn func(collection string)) func()
}

func (s *Stores) all() []subscriber {
	return []subscriber{s.Products, s.Sales, s.Invoices, s.Customers, s.Suppliers, s.Contracts, s.Transactions}
}

// OnChange subscribes fn to every collection.
func (s *Stores) OnChange(fn func(collection string)) func() {
	var unsubs []func()
	for _, st := range s.all() {
		unsubs = append(unsubs, st.OnChange(fn))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

type listener interface {
	Listen(ctx context.Context) error
}

// Listen relays changes made by other processes for backends that support
// it. It blocks until ctx is cancelled and returns immediately otherwise.
func (s *Stores) Listen(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, st := range s.all() {
		if l, ok := st.(listener); ok {
			g.Go(func() error { return l.Listen(ctx) })
		}
	}
	return g.Wait()
}

// Snapshot is one consistent read of every collection.
type Snapshot struct {
	Products     []models.Product     `json:"products"`
	Sales        []models.Sale        `json:"sales"`
	Invoices     []models.Invoice     `json:"invoices"`
	Customers    []models.Customer    `json:"customers"`
	Suppliers    []models.Supplier    `json:"suppliers"`
	Contracts    []models.Contract    `json:"contracts"`
	Transactions []models.Transaction `json:"transactions"`
}

// Load reads every collection. Backends that can read all of them at once do
// so; otherwise the collections are read concurrently.
func (s *Stores) Load(ctx context.Context) (Snapshot, error) {
	if s.reader != nil {
		return s.loadConsistent(ctx)
	}

	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(load(ctx, s.Products, &snap.Products))
	g.Go(load(ctx, s.Sales, &snap.Sales))
	g.Go(load(ctx, s.Invoices, &snap.Invoices))
	g.Go(load(ctx, s.Customers, &snap.Customers))
	g.Go(load(ctx, s.Suppliers, &snap.Suppliers))
	g.Go(load(ctx, s.Contracts, &snap.Contracts))
	g.Go(load(ctx, s.Transactions, &snap.Transactions))
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func load[T any](ctx context.Context, st Store[T], dst *[]T) func() error {
	return func() error {
		items, err := st.Load(ctx)
		if err != nil {
			return err
		}
		*dst = items
		return nil
	}
}

func (s *Stores) loadConsistent(ctx context.Context) (Snapshot, error) {
	raw, err := s.reader.readCollections(ctx, allCollections)
	if err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	steps := []error{
		decodeCollection(raw, CollectionProducts, &snap.Products),
		decodeCollection(raw, CollectionSales, &snap.Sales),
		decodeCollection(raw, CollectionInvoices, &snap.Invoices),
		decodeCollection(raw, CollectionCustomers, &snap.Customers),
		decodeCollection(raw, CollectionSuppliers, &snap.Suppliers),
		decodeCollection(raw, CollectionContracts, &snap.Contracts),
		decodeCollection(raw, CollectionTransactions, &snap.Transactions),
	}
	for _, err := range steps {
		if err != nil {
			return Snapshot{}, err
		}
	}
	return snap, nil
}

func decodeCollection[T any](raw map[string][]json.RawMessage, collection string, dst *[]T) error {
	records := raw[collection]
	items := make([]T, 0, len(records))
	for _, r := range records {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			return fmt.Errorf("failed to decode %s: %w", collection, err)
		}
		items = append(items, item)
	}
	*dst = items
	return nil
}

// Seed replaces every collection with the given snapshot.
func (s *Stores) Seed(ctx context.Context, snap Snapshot) error {
	steps := []func() error{
		func() error { return s.Products.Save(ctx, snap.Products) },
		func() error { return s.Sales.Save(ctx, snap.Sales) },
		func() error { return s.Invoices.Save(ctx, snap.Invoices) },
		func() error { return s.Customers.Save(ctx, snap.Customers) },
		func() error { return s.Suppliers.Save(ctx, snap.Suppliers) },
		func() error { return s.Contracts.Save(ctx, snap.Contracts) },
		func() error { return s.Transactions.Save(ctx, snap.Transactions) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("failed to seed collections: %w", err)
		}
	}
	return nil
}

// Open builds the stores for backend. rdb and db are only required by the
// backend that uses them.
func Open(backend string, rdb *redis.Client, db *sqlx.DB) (*Stores, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemoryStores(), nil
	case BackendRedis:
		if rdb == nil {
			return nil, fmt.Errorf("store backend %q requires a redis client", backend)
		}
		return NewRedisStores(rdb), nil
	case BackendPostgres:
		if db == nil {
			return nil, fmt.Errorf("store backend %q requires a database", backend)
		}
		return NewPostgresStores(db), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
