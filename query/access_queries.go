package query

import (
	"context"
	"errors"

	"github.com/goliatone/go-access/pkg/types"
	gocommand "github.com/goliatone/go-command"
)

var errMissingRegistry = errors.New("go-access: missing role registry")

// HasRoleInput asks whether an account holds a role.
type HasRoleInput struct {
	Role    types.Role
	Account types.Account
}

// Type implements gocommand.Message.
func (HasRoleInput) Type() string {
	return "query.role.has"
}

// Validate implements gocommand.Message.
func (input HasRoleInput) Validate() error {
	switch {
	case input.Role.IsZero():
		return types.ErrRoleRequired
	case input.Account.IsZero():
		return types.ErrAccountRequired
	default:
		return nil
	}
}

// HasRoleQuery checks grant membership.
type HasRoleQuery struct {
	registry types.RoleRegistry
}

// NewHasRoleQuery builds the query.
func NewHasRoleQuery(registry types.RoleRegistry) *HasRoleQuery {
	return &HasRoleQuery{registry: registry}
}

var _ gocommand.Querier[HasRoleInput, bool] = (*HasRoleQuery)(nil)

// Query forwards to the registry.
func (q *HasRoleQuery) Query(ctx context.Context, input HasRoleInput) (bool, error) {
	if q.registry == nil {
		return false, errMissingRegistry
	}
	if err := input.Validate(); err != nil {
		return false, err
	}
	return q.registry.HasRole(ctx, input.Role, input.Account)
}

// GetAdminInput requests the super admin.
type GetAdminInput struct{}

// Type implements gocommand.Message.
func (GetAdminInput) Type() string {
	return "query.access.admin"
}

// Validate implements gocommand.Message.
func (GetAdminInput) Validate() error {
	return nil
}

// GetAdminQuery returns the super admin.
type GetAdminQuery struct {
	registry types.RoleRegistry
}

// NewGetAdminQuery builds the query.
func NewGetAdminQuery(registry types.RoleRegistry) *GetAdminQuery {
	return &GetAdminQuery{registry: registry}
}

var _ gocommand.Querier[GetAdminInput, types.Account] = (*GetAdminQuery)(nil)

// Query forwards to the registry.
func (q *GetAdminQuery) Query(ctx context.Context, _ GetAdminInput) (types.Account, error) {
	if q.registry == nil {
		return "", errMissingRegistry
	}
	return q.registry.GetAdmin(ctx)
}
