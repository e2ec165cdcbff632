package command

import (
	"context"
	"testing"

	"github.com/goliatone/go-access/authz"
	"github.com/goliatone/go-access/pkg/types"
	"github.com/goliatone/go-access/registry"
	"github.com/goliatone/go-access/store"
	"github.com/stretchr/testify/require"
)

func TestInitCommand_ValidatesAdmin(t *testing.T) {
	reg := &fakeRoleRegistry{}
	err := NewInitCommand(reg).Execute(context.Background(), InitInput{})
	require.ErrorIs(t, err, ErrAdminRequired)
	require.Empty(t, reg.calls)
}

func TestGrantRoleCommand_ValidatesTarget(t *testing.T) {
	reg := &fakeRoleRegistry{}
	cmd := NewGrantRoleCommand(reg)

	err := cmd.Execute(context.Background(), GrantRoleInput{Account: "u"})
	require.ErrorIs(t, err, ErrRoleRequired)

	err = cmd.Execute(context.Background(), GrantRoleInput{Role: types.RoleOperator})
	require.ErrorIs(t, err, ErrAccountRequired)
	require.Empty(t, reg.calls)
}

func TestGrantAndRevokeCommands_Forward(t *testing.T) {
	reg := &fakeRoleRegistry{}
	ctx := context.Background()

	require.NoError(t, NewGrantRoleCommand(reg).Execute(ctx, GrantRoleInput{Role: types.RolePauser, Account: "u"}))
	require.NoError(t, NewRevokeRoleCommand(reg).Execute(ctx, RevokeRoleInput{Role: types.RolePauser, Account: "u"}))
	require.Equal(t, []string{"grant:PAUSER:u", "revoke:PAUSER:u"}, reg.calls)
}

func TestCommands_MissingRegistry(t *testing.T) {
	ctx := context.Background()
	require.ErrorIs(t, NewInitCommand(nil).Execute(ctx, InitInput{Admin: "a"}), ErrMissingRegistry)
	require.ErrorIs(t, NewGrantRoleCommand(nil).Execute(ctx, GrantRoleInput{Role: "R", Account: "a"}), ErrMissingRegistry)
	require.ErrorIs(t, NewRevokeRoleCommand(nil).Execute(ctx, RevokeRoleInput{Role: "R", Account: "a"}), ErrMissingRegistry)
}

func TestCommands_AgainstRegistry(t *testing.T) {
	reg, err := registry.New(registry.Config{Store: store.NewMemoryStore(), Authorizer: authz.Caller()})
	require.NoError(t, err)

	require.NoError(t, NewInitCommand(reg).Execute(context.Background(), InitInput{Admin: "admin"}))

	grant := NewGrantRoleCommand(reg)
	err = grant.Execute(authz.WithCaller(context.Background(), "mallory"), GrantRoleInput{Role: types.RoleOperator, Account: "u"})
	require.True(t, types.IsUnauthorized(err))

	require.NoError(t, grant.Execute(authz.WithCaller(context.Background(), "admin"), GrantRoleInput{Role: types.RoleOperator, Account: "u"}))
	ok, err := reg.HasRole(context.Background(), types.RoleOperator, "u")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestInputTypes(t *testing.T) {
	require.Equal(t, "command.access.init", InitInput{}.Type())
	require.Equal(t, "command.role.grant", GrantRoleInput{}.Type())
	require.Equal(t, "command.role.revoke", RevokeRoleInput{}.Type())
}

type fakeRoleRegistry struct {
	calls []string
}

func (f *fakeRoleRegistry) Init(_ context.Context, admin types.Account) error {
	f.calls = append(f.calls, "init:"+string(admin))
	return nil
}

func (f *fakeRoleRegistry) GrantRole(_ context.Context, role types.Role, account types.Account) error {
	f.calls = append(f.calls, "grant:"+string(role)+":"+string(account))
	return nil
}

func (f *fakeRoleRegistry) RevokeRole(_ context.Context, role types.Role, account types.Account) error {
	f.calls = append(f.calls, "revoke:"+string(role)+":"+string(account))
	return nil
}

func (f *fakeRoleRegistry) HasRole(context.Context, types.Role, types.Account) (bool, error) {
	return false, nil
}

func (f *fakeRoleRegistry) GetAdmin(context.Context) (types.Account, error) {
	return "", nil
}

func (f *fakeRoleRegistry) RequireAdmin(context.Context) error {
	return nil
}

func (f *fakeRoleRegistry) RequireRole(context.Context, types.Role, types.Account) error {
	return nil
}
