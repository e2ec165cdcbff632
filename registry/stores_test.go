package registry_test

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"sort"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	access "github.com/goliatone/go-access"
	"github.com/goliatone/go-access/authz"
	"github.com/goliatone/go-access/events"
	"github.com/goliatone/go-access/pkg/types"
	"github.com/goliatone/go-access/registry"
	"github.com/goliatone/go-access/store"
	goerrors "github.com/goliatone/go-errors"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const (
	rootAdmin types.Account = "admin"
	operator  types.Account = "user"
	intruder  types.Account = "non-admin"
)

type storeFactory func(t *testing.T) types.Store

func factories() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T) types.Store { return store.NewMemoryStore() },
		"bun":    newBunStore,
		"redis":  newRedisStore,
	}
}

func newBunStore(t *testing.T) types.Store {
	t.Helper()
	sqldb, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	migrationsFS, err := fs.Sub(access.GetMigrationsFS(), "data/sql/migrations")
	require.NoError(t, err)
	files, err := fs.Glob(migrationsFS, "sqlite/*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	sort.Strings(files)
	for _, file := range files {
		raw, err := fs.ReadFile(migrationsFS, file)
		require.NoError(t, err)
		_, err = sqldb.Exec(string(raw))
		require.NoError(t, err, "applying %s", file)
	}

	s, err := store.NewBunStore(store.BunStoreConfig{DB: db})
	require.NoError(t, err)
	return s
}

func newRedisStore(t *testing.T) types.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	s, err := store.NewRedisStore(store.RedisStoreConfig{Client: client})
	require.NoError(t, err)
	return s
}

func newRegistry(t *testing.T, s types.Store, authorizer types.Authorizer) (*registry.RoleRegistry, *events.Recorder) {
	t.Helper()
	rec := events.NewRecorder()
	reg, err := registry.New(registry.Config{Store: s, Authorizer: authorizer, Sink: rec})
	require.NoError(t, err)
	return reg, rec
}

func caller(account types.Account) context.Context {
	return authz.WithCaller(context.Background(), account)
}

func requireRole(t *testing.T, reg *registry.RoleRegistry, role types.Role, account types.Account, want bool) {
	t.Helper()
	ok, err := reg.HasRole(context.Background(), role, account)
	require.NoError(t, err)
	require.Equal(t, want, ok, "%s/%s", role, account)
}

func TestStores_GrantRevokeScenario(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			reg, rec := newRegistry(t, factory(t), authz.Caller())
			require.NoError(t, reg.Init(context.Background(), rootAdmin))

			require.NoError(t, reg.GrantRole(caller(rootAdmin), types.RoleOperator, operator))
			require.NoError(t, reg.GrantRole(caller(rootAdmin), types.RoleOperator, operator))
			requireRole(t, reg, types.RoleOperator, operator, true)

			require.NoError(t, reg.RevokeRole(caller(rootAdmin), types.RoleOperator, operator))
			require.NoError(t, reg.RevokeRole(caller(rootAdmin), types.RoleOperator, operator))
			requireRole(t, reg, types.RoleOperator, operator, false)

			err := reg.GrantRole(caller(intruder), types.RoleOperator, operator)
			require.True(t, types.IsUnauthorized(err))
			requireRole(t, reg, types.RoleOperator, operator, false)

			require.Equal(t, []types.Event{
				types.RoleGranted{Role: types.RoleAdmin, Account: rootAdmin},
				types.RoleGranted{Role: types.RoleOperator, Account: operator},
				types.RoleRevoked{Role: types.RoleOperator, Account: operator},
			}, rec.Events())
		})
	}
}

func TestStores_SecondInitLeavesState(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			reg, rec := newRegistry(t, factory(t), authz.Caller())
			require.NoError(t, reg.Init(context.Background(), rootAdmin))

			err := reg.Init(context.Background(), intruder)
			require.True(t, types.IsAlreadyInitialized(err))

			got, err := reg.GetAdmin(context.Background())
			require.NoError(t, err)
			require.Equal(t, rootAdmin, got)
			requireRole(t, reg, types.RoleAdmin, intruder, false)
			require.Equal(t, 1, rec.Count())
		})
	}
}

func TestStores_UnauthorizedLeavesState(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			reg, rec := newRegistry(t, factory(t), authz.Caller())
			require.NoError(t, reg.Init(context.Background(), rootAdmin))
			require.NoError(t, reg.GrantRole(caller(rootAdmin), types.RoleGame, operator))
			rec.Reset()

			require.True(t, types.IsUnauthorized(reg.GrantRole(caller(intruder), types.RolePauser, operator)))
			require.True(t, types.IsUnauthorized(reg.RevokeRole(caller(intruder), types.RoleGame, operator)))
			require.True(t, types.IsUnauthorized(reg.GrantRole(context.Background(), types.RolePauser, operator)))

			requireRole(t, reg, types.RolePauser, operator, false)
			requireRole(t, reg, types.RoleGame, operator, true)
			require.Zero(t, rec.Count())
		})
	}
}

func TestStores_FailedCallRollsBackAndEmitsNothing(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			inner := factory(t)
			failing := &failOnSet{Store: inner, failOn: types.RoleKey(types.RoleAdmin, rootAdmin)}
			reg, rec := newRegistry(t, failing, authz.Caller())

			err := reg.Init(context.Background(), rootAdmin)
			var richErr *goerrors.Error
			require.True(t, goerrors.As(err, &richErr))
			require.Equal(t, types.TextCodeStoreFailure, richErr.TextCode)

			exists, err := inner.Has(context.Background(), types.AdminKey())
			require.NoError(t, err)
			require.False(t, exists, "admin record rolled back")
			require.Zero(t, rec.Count())

			failing.failOn = types.Key{}
			require.NoError(t, reg.Init(context.Background(), rootAdmin))
			require.Equal(t, 1, rec.Count())
		})
	}
}

func TestStores_AuthorizerMayReadRegistry(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			var reg *registry.RoleRegistry
			roleHolder := authz.Func(func(ctx context.Context, account types.Account) (bool, error) {
				return reg.HasRole(ctx, types.RoleAdmin, account)
			})
			reg, rec := newRegistry(t, factory(t), roleHolder)
			require.NoError(t, reg.Init(context.Background(), rootAdmin))

			done := make(chan error, 1)
			go func() {
				done <- reg.GrantRole(context.Background(), types.RoleOperator, operator)
			}()
			select {
			case err := <-done:
				require.NoError(t, err)
			case <-time.After(2 * time.Second):
				t.Fatal("GrantRole blocked while the authorizer read the registry")
			}
			requireRole(t, reg, types.RoleOperator, operator, true)
			require.Equal(t, 2, rec.Count())
		})
	}
}

func TestStores_InitRejectsEmptyAdmin(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			reg, rec := newRegistry(t, factory(t), authz.Caller())

			err := reg.Init(context.Background(), "")
			require.ErrorIs(t, err, types.ErrAccountRequired)

			_, err = reg.GetAdmin(context.Background())
			require.True(t, types.IsNotInitialized(err))
			require.Zero(t, rec.Count())
			require.NoError(t, reg.Init(context.Background(), rootAdmin))
		})
	}
}

// failOnSet fails writes to one key inside transactions of the wrapped store.
type failOnSet struct {
	types.Store
	failOn types.Key
}

func (f *failOnSet) RunInTx(ctx context.Context, fn func(context.Context, types.Store) error) error {
	transactor, ok := f.Store.(types.Transactor)
	if !ok {
		return errors.New("store is not transactional")
	}
	return transactor.RunInTx(ctx, func(ctx context.Context, tx types.Store) error {
		return fn(ctx, failingWrite{Store: tx, failOn: f.failOn})
	})
}

type failingWrite struct {
	types.Store
	failOn types.Key
}

func (f failingWrite) Set(ctx context.Context, key types.Key, value []byte) error {
	if key == f.failOn {
		return errors.New("disk full")
	}
	return f.Store.Set(ctx, key, value)
}
