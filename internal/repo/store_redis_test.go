package repo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/models"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewRedisStore[models.Customer](newTestRedis(t), CollectionCustomers)

	empty, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty collection, got %d", len(empty))
	}

	if err := s.Save(ctx, []models.Customer{{ID: "c1", Name: "Ana"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Append(ctx, models.Customer{ID: "c2", Name: "Bo"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || items[1].Name != "Bo" {
		t.Errorf("expected [Ana Bo], got %+v", items)
	}
}

func TestRedisStoreListenRelaysOtherWriters(t *testing.T) {
	rdb := newTestRedis(t)
	reader := NewRedisStore[models.Sale](rdb, CollectionSales)
	writer := NewRedisStore[models.Sale](rdb, CollectionSales)

	changed := make(chan string, 1)
	reader.OnChange(func(c string) { changed <- c })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reader.Listen(ctx)

	// Give the subscription time to register before publishing.
	time.Sleep(50 * time.Millisecond)
	if err := writer.Append(context.Background(), models.Sale{ID: "s1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case c := <-changed:
		if c != CollectionSales {
			t.Errorf("expected %q, got %q", CollectionSales, c)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected change notification from other writer")
	}
}

func TestRedisStoresLoadReadsEveryCollectionAtOnce(t *testing.T) {
	ctx := context.Background()
	rdb := newTestRedis(t)
	stores := NewRedisStores(rdb)

	err := stores.Seed(ctx, Snapshot{
		Products: []models.Product{{ID: 1, Name: "Aspirin"}},
		Sales:    []models.Sale{{ID: "s1", TotalAmount: 10}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A collection that was never written reads as empty.
	rdb.Del(ctx, collectionKey(CollectionContracts))

	snap, err := stores.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Products) != 1 || snap.Products[0].Name != "Aspirin" {
		t.Errorf("unexpected products %+v", snap.Products)
	}
	if len(snap.Sales) != 1 || snap.Sales[0].ID != "s1" {
		t.Errorf("unexpected sales %+v", snap.Sales)
	}
	if snap.Contracts == nil || len(snap.Contracts) != 0 {
		t.Errorf("expected empty contracts, got %+v", snap.Contracts)
	}

	rdb.Set(ctx, collectionKey(CollectionInvoices), "not json", 0)
	if _, err := stores.Load(ctx); err == nil {
		t.Error("expected decode error for corrupt collection")
	}
}
