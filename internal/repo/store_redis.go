package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ChangesChannel carries "<collection>|<origin>" after every write.
const ChangesChannel = "pharmacy:changes"

const maxWatchRetries = 5

// ErrConcurrentWrite is returned when an append keeps losing optimistic locks.
var ErrConcurrentWrite = errors.New("collection modified concurrently")

// RedisStore keeps a collection as one JSON array. Writes are announced on
// ChangesChannel so other processes sharing the same Redis can react.
type RedisStore[T any] struct {
	notifier
	rdb        *redis.Client
	collection string
	key        string
	origin     string
}

func NewRedisStore[T any](rdb *redis.Client, collection string) *RedisStore[T] {
	return &RedisStore[T]{
		rdb:        rdb,
		collection: collection,
		key:        collectionKey(collection),
		origin:     uuid.NewString(),
	}
}

func collectionKey(collection string) string {
	return "pharmacy:collection:" + collection
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore[T]) load(ctx context.Context, g stringGetter) ([]T, error) {
	data, err := g.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.collection, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.collection, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (s *RedisStore[T]) Load(ctx context.Context) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.load(ctx, s.rdb)
}

func (s *RedisStore[T]) Save(ctx context.Context, items []T) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.collection, err)
	}
	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.collection, err)
	}
	s.announce(ctx)
	return nil
}

// Append adds items under an optimistic WATCH on the collection key.
func (s *RedisStore[T]) Append(ctx context.Context, items ...T) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	txf := func(tx *redis.Tx) error {
		current, err := s.load(ctx, tx)
		if err != nil {
			return err
		}
		data, err := json.Marshal(append(current, items...))
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", s.collection, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, data, 0)
			return nil
		})
		return err
	}

	for range maxWatchRetries {
		err := s.rdb.Watch(ctx, txf, s.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return err
		}
		s.announce(ctx)
		return nil
	}
	return ErrConcurrentWrite
}

func (s *RedisStore[T]) announce(ctx context.Context) {
	s.notify(s.collection)
	_ = s.rdb.Publish(ctx, ChangesChannel, s.collection+"|"+s.origin).Err()
}

// Listen relays writes made by other processes to local subscribers until
// ctx is cancelled.
func (s *RedisStore[T]) Listen(ctx context.Context) error {
	sub := s.rdb.Subscribe(ctx, ChangesChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", ChangesChannel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			collection, origin, _ := strings.Cut(msg.Payload, "|")
			if collection == s.collection && origin != s.origin {
				s.notify(s.collection)
			}
		}
	}
}

type redisReader struct {
	rdb *redis.Client
}

// readCollections fetches every collection key with a single MGET, which
// Redis executes atomically.
func (r redisReader) readCollections(ctx context.Context, collections []string) (map[string][]json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	keys := make([]string, len(collections))
	for i, c := range collections {
		keys[i] = collectionKey(c)
	}
	values, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read collections: %w", err)
	}

	out := make(map[string][]json.RawMessage, len(collections))
	for i, v := range values {
		data, ok := v.(string)
		if !ok {
			continue
		}
		var records []json.RawMessage
		if err := json.Unmarshal([]byte(data), &records); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", collections[i], err)
		}
		out[collections[i]] = records
	}
	return out, nil
}
