package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const recordsSchema = `
CREATE TABLE IF NOT EXISTS collection_records (
	collection TEXT    NOT NULL,
	position   INTEGER NOT NULL,
	payload    JSONB   NOT NULL,
	PRIMARY KEY (collection, position)
)`

// Migrate creates the tables used by the postgres backend.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := db.ExecContext(ctx, recordsSchema); err != nil {
		return fmt.Errorf("failed to create collection_records: %w", err)
	}
	if _, err := db.ExecContext(ctx, usersSchema); err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	return nil
}

// PostgresStore keeps a collection as ordered JSONB rows. Change
// notifications are local to the process.
type PostgresStore[T any] struct {
	notifier
	db         *sqlx.DB
	collection string
}

func NewPostgresStore[T any](db *sqlx.DB, collection string) *PostgresStore[T] {
	return &PostgresStore[T]{db: db, collection: collection}
}

// Load reads the collection inside a read-only repeatable-read transaction so
// the snapshot is consistent.
func (s *PostgresStore[T]) Load(ctx context.Context) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer tx.Rollback()

	var payloads [][]byte
	query := `SELECT payload FROM collection_records WHERE collection = $1 ORDER BY position`
	if err := tx.SelectContext(ctx, &payloads, query, s.collection); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.collection, err)
	}

	items := make([]T, 0, len(payloads))
	for _, p := range payloads {
		var item T
		if err := json.Unmarshal(p, &item); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", s.collection, err)
		}
		items = append(items, item)
	}
	return items, tx.Commit()
}

func (s *PostgresStore[T]) Save(ctx context.Context, items []T) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM collection_records WHERE collection = $1`, s.collection); err != nil {
		return fmt.Errorf("failed to clear %s: %w", s.collection, err)
	}
	if err := s.insert(ctx, tx, 0, items); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to save %s: %w", s.collection, err)
	}
	s.notify(s.collection)
	return nil
}

func (s *PostgresStore[T]) Append(ctx context.Context, items ...T) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Serializes appends to the same collection.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, s.collection); err != nil {
		return fmt.Errorf("failed to lock %s: %w", s.collection, err)
	}

	var next int
	query := `SELECT COALESCE(MAX(position), -1) + 1 FROM collection_records WHERE collection = $1`
	if err := tx.GetContext(ctx, &next, query, s.collection); err != nil {
		return fmt.Errorf("failed to read %s position: %w", s.collection, err)
	}
	if err := s.insert(ctx, tx, next, items); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to append %s: %w", s.collection, err)
	}
	s.notify(s.collection)
	return nil
}

func (s *PostgresStore[T]) insert(ctx context.Context, tx *sqlx.Tx, start int, items []T) error {
	stmt, err := tx.PreparexContext(ctx, `INSERT INTO collection_records (collection, position, payload) VALUES ($1, $2, $3)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, item := range items {
		payload, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", s.collection, err)
		}
		if _, err := stmt.ExecContext(ctx, s.collection, start+i, string(payload)); err != nil {
			return fmt.Errorf("failed to insert %s: %w", s.collection, err)
		}
	}
	return nil
}

type postgresReader struct {
	db *sqlx.DB
}

type recordRow struct {
	Collection string `db:"collection"`
	Payload    []byte `db:"payload"`
}

// readCollections reads every requested collection with one query in a
// read-only repeatable-read transaction.
func (r postgresReader) readCollections(ctx context.Context, collections []string) (map[string][]json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer tx.Rollback()

	var rows []recordRow
	query := `SELECT collection, payload FROM collection_records WHERE collection = ANY($1) ORDER BY collection, position`
	if err := tx.SelectContext(ctx, &rows, query, collections); err != nil {
		return nil, fmt.Errorf("failed to read collections: %w", err)
	}

	out := make(map[string][]json.RawMessage, len(collections))
	for _, row := range rows {
		out[row.Collection] = append(out[row.Collection], json.RawMessage(row.Payload))
	}
	return out, tx.Commit()
}
