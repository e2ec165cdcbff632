package store

import (
	"context"
	"errors"

	"github.com/goliatone/go-access/pkg/types"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces registry keys in a shared keyspace.
const DefaultRedisPrefix = "access:"

// RedisStoreConfig configures the Redis-backed store.
type RedisStoreConfig struct {
	Client redis.UniversalClient
	Prefix string
}

// RedisStore keeps each entry under "<prefix><key>".
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore constructs the store.
func NewRedisStore(cfg RedisStoreConfig) (*RedisStore, error) {
	if cfg.Client == nil {
		return nil, errMissingRedis
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: cfg.Client, prefix: prefix}, nil
}

var (
	_ types.Store      = (*RedisStore)(nil)
	_ types.Transactor = (*RedisStore)(nil)
)

func (s *RedisStore) Has(ctx context.Context, key types.Key) (bool, error) {
	n, err := s.client.Exists(ctx, s.redisKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) Get(ctx context.Context, key types.Key) ([]byte, error) {
	value, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, types.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key types.Key, value []byte) error {
	return s.client.Set(ctx, s.redisKey(key), cloneBytes(value), 0).Err()
}

func (s *RedisStore) Remove(ctx context.Context, key types.Key) error {
	return s.client.Del(ctx, s.redisKey(key)).Err()
}

// maxRedisTxAttempts bounds optimistic retries when a watched key changes
// before EXEC.
const maxRedisTxAttempts = 5

// RunInTx runs fn under WATCH: every key fn reads is watched before it is read,
// the writes of fn are buffered and applied in a single MULTI/EXEC. When a
// watched key changes before EXEC the attempt is discarded and fn runs again
// against fresh state.
func (s *RedisStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx types.Store) error) error {
	for attempt := 0; attempt < maxRedisTxAttempts; attempt++ {
		err := s.client.Watch(ctx, func(rtx *redis.Tx) error {
			buffer := newOverlay(redisWatchView{store: s, tx: rtx})
			if err := fn(ctx, buffer); err != nil {
				return err
			}
			changes := buffer.changes()
			if len(changes) == 0 {
				return nil
			}
			_, err := rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				for _, w := range changes {
					if w.deleted {
						pipe.Del(ctx, s.redisKey(w.key))
						continue
					}
					pipe.Set(ctx, s.redisKey(w.key), w.value, 0)
				}
				return nil
			})
			return err
		})
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return errRedisTxConflict
}

func (s *RedisStore) redisKey(key types.Key) string {
	return s.prefix + key.String()
}

// redisWatchView reads through the WATCH connection, watching each key before
// reading it.
type redisWatchView struct {
	store *RedisStore
	tx    *redis.Tx
}

func (v redisWatchView) Has(ctx context.Context, key types.Key) (bool, error) {
	redisKey := v.store.redisKey(key)
	if err := v.tx.Watch(ctx, redisKey).Err(); err != nil {
		return false, err
	}
	n, err := v.tx.Exists(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (v redisWatchView) Get(ctx context.Context, key types.Key) ([]byte, error) {
	redisKey := v.store.redisKey(key)
	if err := v.tx.Watch(ctx, redisKey).Err(); err != nil {
		return nil, err
	}
	value, err := v.tx.Get(ctx, redisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, types.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (v redisWatchView) Set(context.Context, types.Key, []byte) error {
	return errReadOnlyView
}

func (v redisWatchView) Remove(context.Context, types.Key) error {
	return errReadOnlyView
}
