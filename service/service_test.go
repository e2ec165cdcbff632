package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-access/authz"
	"github.com/goliatone/go-access/command"
	"github.com/goliatone/go-access/events"
	"github.com/goliatone/go-access/pkg/types"
	"github.com/goliatone/go-access/query"
	"github.com/goliatone/go-access/service"
	"github.com/goliatone/go-access/store"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/require"
)

func TestService_RequiresStore(t *testing.T) {
	_, err := service.New(service.Config{})
	require.ErrorIs(t, err, types.ErrMissingStore)
}

func TestService_NilServiceNotReady(t *testing.T) {
	var svc *service.Service
	require.False(t, svc.Ready())
	require.ErrorIs(t, svc.HealthCheck(context.Background()), types.ErrServiceNotReady)
}

func TestService_CommandsAndQueries(t *testing.T) {
	ctx := context.Background()
	recorder := events.NewRecorder()
	var hooked []types.Event

	svc, err := service.New(service.Config{
		Store:      store.NewMemoryStore(),
		Authorizer: authz.Caller(),
		Sink:       recorder,
		Hooks: types.Hooks{
			AfterRoleChange: func(_ context.Context, event types.Event) {
				hooked = append(hooked, event)
			},
		},
	})
	require.NoError(t, err)
	require.True(t, svc.Ready())
	require.NoError(t, svc.HealthCheck(ctx))

	require.NoError(t, svc.Commands().Init.Execute(ctx, command.InitInput{Admin: "root"}))

	asRoot := authz.WithCaller(ctx, "root")
	require.NoError(t, svc.Commands().GrantRole.Execute(asRoot, command.GrantRoleInput{Role: types.RoleGame, Account: "g1"}))

	ok, err := svc.Queries().HasRole.Query(ctx, query.HasRoleInput{Role: types.RoleGame, Account: "g1"})
	require.NoError(t, err)
	require.True(t, ok)

	admin, err := svc.Queries().GetAdmin.Query(ctx, query.GetAdminInput{})
	require.NoError(t, err)
	require.Equal(t, types.Account("root"), admin)

	require.NoError(t, svc.Commands().RevokeRole.Execute(asRoot, command.RevokeRoleInput{Role: types.RoleGame, Account: "g1"}))
	require.NoError(t, svc.Registry().RequireAdmin(asRoot))

	want := []types.Event{
		types.RoleGranted{Role: types.RoleAdmin, Account: "root"},
		types.RoleGranted{Role: types.RoleGame, Account: "g1"},
		types.RoleRevoked{Role: types.RoleGame, Account: "g1"},
	}
	require.Equal(t, want, recorder.Events())
	require.Equal(t, want, hooked)
}

func TestService_DefaultAuthorizerDenies(t *testing.T) {
	ctx := context.Background()
	svc, err := service.New(service.Config{Store: store.NewMemoryStore()})
	require.NoError(t, err)
	require.NoError(t, svc.Commands().Init.Execute(ctx, command.InitInput{Admin: "root"}))

	err = svc.Commands().GrantRole.Execute(authz.WithCaller(ctx, "root"), command.GrantRoleInput{Role: types.RoleOperator, Account: "op"})
	require.True(t, types.IsUnauthorized(err))
}

func TestService_HealthCheckSurfacesStoreErrors(t *testing.T) {
	svc, err := service.New(service.Config{Store: brokenStore{}})
	require.NoError(t, err)

	err = svc.HealthCheck(context.Background())
	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	require.Equal(t, types.TextCodeStoreFailure, richErr.TextCode)
}

var errBroken = errors.New("broken")

type brokenStore struct{}

func (brokenStore) Has(context.Context, types.Key) (bool, error) { return false, errBroken }
func (brokenStore) Get(context.Context, types.Key) ([]byte, error) { return nil, errBroken }
func (brokenStore) Set(context.Context, types.Key, []byte) error { return errBroken }
func (brokenStore) Remove(context.Context, types.Key) error { return errBroken }
