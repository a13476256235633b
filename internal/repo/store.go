package repo

import (
	"context"
	"sync"
	"time"
)

// Collection names shared by every backend.
const (
	CollectionProducts     = "products"
	CollectionSales        = "sales"
	CollectionInvoices     = "invoices"
	CollectionCustomers    = "customers"
	CollectionSuppliers    = "suppliers"
	CollectionContracts    = "contracts"
	CollectionTransactions = "transactions"
)

const queryTimeout = 3 * time.Second

// Store holds one record collection. Load always returns a complete snapshot
// and Save replaces the whole collection; concurrent writers resolve by last
// write wins.
type Store[T any] interface {
	Load(ctx context.Context) ([]T, error)
	Save(ctx context.Context, items []T) error
	Append(ctx context.Context, items ...T) error
	// OnChange registers fn to run after the collection changes. The returned
	// func removes the subscription.
	OnChange(fn func(collection string)) (unsubscribe func())
}

type notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]func(string)
}

func (n *notifier) OnChange(fn func(collection string)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = map[int]func(string){}
	}
	id := n.next
	n.next++
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

func (n *notifier) notify(collection string) {
	n.mu.Lock()
	subs := make([]func(string), 0, len(n.subs))
	for _, fn := range n.subs {
		subs = append(subs, fn)
	}
	n.mu.Unlock()

	for _, fn := range subs {
		fn(collection)
	}
}
