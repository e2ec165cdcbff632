package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goliatone/go-access/pkg/types"
	"github.com/uptrace/bun"
)

var (
	errReadOnlyView = errors.New("go-access: read-only store view")
	errMissingDB    = errors.New("go-access: bun store requires db")
	errMissingRedis = errors.New("go-access: redis store requires client")

	errRedisTxConflict = errors.New("go-access: redis transaction kept conflicting")
)

// Entry models a row in access_entries. The admin record is stored with empty
// role and account columns; role grants carry an empty value.
type Entry struct {
	bun.BaseModel `bun:"table:access_entries"`

	Kind      string    `bun:"kind,pk"`
	Role      string    `bun:"role,pk"`
	Account   string    `bun:"account,pk"`
	Value     []byte    `bun:"value"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// BunStoreConfig configures the Bun-backed ledger.
type BunStoreConfig struct {
	DB    bun.IDB
	Clock types.Clock
}

// BunStore persists entries in access_entries through Bun.
type BunStore struct {
	db    bun.IDB
	clock types.Clock
}

// NewBunStore constructs the SQL store. Either a *bun.DB or a bun.Tx works.
func NewBunStore(cfg BunStoreConfig) (*BunStore, error) {
	if cfg.DB == nil {
		return nil, errMissingDB
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	return &BunStore{db: cfg.DB, clock: clock}, nil
}

var (
	_ types.Store      = (*BunStore)(nil)
	_ types.Transactor = (*BunStore)(nil)
)

func (s *BunStore) Has(ctx context.Context, key types.Key) (bool, error) {
	return s.db.NewSelect().
		Model((*Entry)(nil)).
		Apply(keyCriteria(key)).
		Exists(ctx)
}

func (s *BunStore) Get(ctx context.Context, key types.Key) ([]byte, error) {
	entry := new(Entry)
	err := s.db.NewSelect().
		Model(entry).
		Apply(keyCriteria(key)).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return cloneBytes(entry.Value), nil
}

func (s *BunStore) Set(ctx context.Context, key types.Key, value []byte) error {
	entry := &Entry{
		Kind:      string(key.Kind),
		Role:      string(key.Role),
		Account:   string(key.Account),
		Value:     cloneBytes(value),
		CreatedAt: s.clock.Now(),
	}
	_, err := s.db.NewInsert().
		Model(entry).
		On("CONFLICT (kind, role, account) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	return err
}

func (s *BunStore) Remove(ctx context.Context, key types.Key) error {
	_, err := s.db.NewDelete().
		Model((*Entry)(nil)).
		Where("kind = ?", string(key.Kind)).
		Where("role = ?", string(key.Role)).
		Where("account = ?", string(key.Account)).
		Exec(ctx)
	return err
}

// RunInTx runs fn inside a database transaction. Nested calls on a store
// already bound to a bun.Tx use a savepoint.
func (s *BunStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx types.Store) error) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &BunStore{db: tx, clock: s.clock})
	})
}

func keyCriteria(key types.Key) func(*bun.SelectQuery) *bun.SelectQuery {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("kind = ?", string(key.Kind)).
			Where("role = ?", string(key.Role)).
			Where("account = ?", string(key.Account))
	}
}
