package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadSnapshot decodes a JSON snapshot keyed by collection name.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}

func (snap Snapshot) empty() bool {
	return len(snap.Products) == 0 && len(snap.Sales) == 0 && len(snap.Invoices) == 0 &&
		len(snap.Customers) == 0 && len(snap.Suppliers) == 0 && len(snap.Contracts) == 0 &&
		len(snap.Transactions) == 0
}

// SeedFile loads the snapshot at path into the stores when every collection
// is empty. It reports whether the stores were seeded.
func (s *Stores) SeedFile(ctx context.Context, path string) (bool, error) {
	current, err := s.Load(ctx)
	if err != nil {
		return false, err
	}
	if !current.empty() {
		return false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	snap, err := ReadSnapshot(f)
	if err != nil {
		return false, err
	}
	if err := s.Seed(ctx, snap); err != nil {
		return false, err
	}
	return true, nil
}
