package command

import (
	"errors"

	"github.com/goliatone/go-access/pkg/types"
)

var (
	// ErrRoleRequired occurs when a role command omits the role.
	ErrRoleRequired = types.ErrRoleRequired
	// ErrAccountRequired occurs when a command omits the target account.
	ErrAccountRequired = types.ErrAccountRequired
	// ErrAdminRequired occurs when init omits the admin account.
	ErrAdminRequired = errors.New("go-access: admin account required")
	// ErrMissingRegistry occurs when a handler is built without a registry.
	ErrMissingRegistry = errors.New("go-access: missing role registry")
)

func validateRoleTarget(role types.Role, account types.Account) error {
	if role.IsZero() {
		return ErrRoleRequired
	}
	if account.IsZero() {
		return ErrAccountRequired
	}
	return nil
}
