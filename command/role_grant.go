package command

import (
	"context"

	"github.com/goliatone/go-access/pkg/types"
	gocommand "github.com/goliatone/go-command"
)

// GrantRoleInput grants a role to an account.
type GrantRoleInput struct {
	Role    types.Role
	Account types.Account
}

// Type implements gocommand.Message.
func (GrantRoleInput) Type() string {
	return "command.role.grant"
}

// Validate implements gocommand.Message.
func (input GrantRoleInput) Validate() error {
	return validateRoleTarget(input.Role, input.Account)
}

// RevokeRoleInput removes a role from an account.
type RevokeRoleInput struct {
	Role    types.Role
	Account types.Account
}

// Type implements gocommand.Message.
func (RevokeRoleInput) Type() string {
	return "command.role.revoke"
}

// Validate implements gocommand.Message.
func (input RevokeRoleInput) Validate() error {
	return validateRoleTarget(input.Role, input.Account)
}

// GrantRoleCommand wraps registry grants. The caller proof travels on ctx.
type GrantRoleCommand struct {
	registry types.RoleRegistry
}

// NewGrantRoleCommand constructs the handler.
func NewGrantRoleCommand(registry types.RoleRegistry) *GrantRoleCommand {
	return &GrantRoleCommand{registry: registry}
}

var _ gocommand.Commander[GrantRoleInput] = (*GrantRoleCommand)(nil)

// Execute grants the requested role.
func (c *GrantRoleCommand) Execute(ctx context.Context, input GrantRoleInput) error {
	if c.registry == nil {
		return ErrMissingRegistry
	}
	if err := input.Validate(); err != nil {
		return err
	}
	return c.registry.GrantRole(ctx, input.Role, input.Account)
}

// RevokeRoleCommand wraps registry revocations.
type RevokeRoleCommand struct {
	registry types.RoleRegistry
}

// NewRevokeRoleCommand constructs the handler.
func NewRevokeRoleCommand(registry types.RoleRegistry) *RevokeRoleCommand {
	return &RevokeRoleCommand{registry: registry}
}

var _ gocommand.Commander[RevokeRoleInput] = (*RevokeRoleCommand)(nil)

// Execute removes the given grant.
func (c *RevokeRoleCommand) Execute(ctx context.Context, input RevokeRoleInput) error {
	if c.registry == nil {
		return ErrMissingRegistry
	}
	if err := input.Validate(); err != nil {
		return err
	}
	return c.registry.RevokeRole(ctx, input.Role, input.Account)
}
