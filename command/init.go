package command

import (
	"context"

	"github.com/goliatone/go-access/pkg/types"
	gocommand "github.com/goliatone/go-command"
)

// InitInput sets the super admin.
type InitInput struct {
	Admin types.Account
}

// Type implements gocommand.Message.
func (InitInput) Type() string {
	return "command.access.init"
}

// Validate implements gocommand.Message.
func (input InitInput) Validate() error {
	if input.Admin.IsZero() {
		return ErrAdminRequired
	}
	return nil
}

// InitCommand initializes the registry once.
type InitCommand struct {
	registry types.RoleRegistry
}

// NewInitCommand constructs the handler.
func NewInitCommand(registry types.RoleRegistry) *InitCommand {
	return &InitCommand{registry: registry}
}

var _ gocommand.Commander[InitInput] = (*InitCommand)(nil)

// Execute stores the admin record.
func (c *InitCommand) Execute(ctx context.Context, input InitInput) error {
	if c.registry == nil {
		return ErrMissingRegistry
	}
	if err := input.Validate(); err != nil {
		return err
	}
	return c.registry.Init(ctx, input.Admin)
}
