package registry

import (
	"context"
	"errors"

	"github.com/goliatone/go-access/pkg/types"
)

// Config wires the registry collaborators.
type Config struct {
	Store      types.Store
	Authorizer types.Authorizer
	Sink       types.EventSink
	Hooks      types.Hooks
	Logger     types.Logger
}

// RoleRegistry owns the admin record and the role grants.
type RoleRegistry struct {
	store      types.Store
	authorizer types.Authorizer
	sink       types.EventSink
	hooks      types.Hooks
	logger     types.Logger
}

var _ types.RoleRegistry = (*RoleRegistry)(nil)

// New constructs the registry. A nil Authorizer denies every caller and a nil
// Sink drops events.
func New(cfg Config) (*RoleRegistry, error) {
	if cfg.Store == nil {
		return nil, types.ErrMissingStore
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &RoleRegistry{
		store:      cfg.Store,
		authorizer: cfg.Authorizer,
		sink:       cfg.Sink,
		hooks:      cfg.Hooks,
		logger:     logger,
	}, nil
}

// Init stores the super admin and grants it the ADMIN role. It fails with
// AlreadyInitialized, without touching state, once an admin exists. An empty
// admin is rejected since no caller could ever prove it.
func (r *RoleRegistry) Init(ctx context.Context, admin types.Account) error {
	if admin.IsZero() {
		return types.AccountRequiredError()
	}
	return r.mutate(ctx, func(ctx context.Context, tx *txState) error {
		exists, err := tx.store.Has(ctx, types.AdminKey())
		if err != nil {
			return types.StoreError(err, "has")
		}
		if exists {
			return types.AlreadyInitializedError()
		}
		if err := tx.store.Set(ctx, types.AdminKey(), []byte(admin)); err != nil {
			return types.StoreError(err, "set")
		}
		if err := tx.grant(ctx, types.RoleAdmin, admin); err != nil {
			return err
		}
		r.logger.Info("go-access: registry initialized", "admin", string(admin))
		return nil
	})
}

// GrantRole grants role to account. Only the admin may call it. Granting an
// existing grant changes nothing and emits nothing.
func (r *RoleRegistry) GrantRole(ctx context.Context, role types.Role, account types.Account) error {
	admin, err := r.verifyAdmin(ctx, r.store)
	if err != nil {
		return err
	}
	return r.mutate(ctx, func(ctx context.Context, tx *txState) error {
		if err := tx.confirmAdmin(ctx, admin); err != nil {
			return err
		}
		return tx.grant(ctx, role, account)
	})
}

// RevokeRole removes role from account. Only the admin may call it. Revoking
// an absent grant changes nothing and emits nothing.
func (r *RoleRegistry) RevokeRole(ctx context.Context, role types.Role, account types.Account) error {
	admin, err := r.verifyAdmin(ctx, r.store)
	if err != nil {
		return err
	}
	return r.mutate(ctx, func(ctx context.Context, tx *txState) error {
		if err := tx.confirmAdmin(ctx, admin); err != nil {
			return err
		}
		return tx.revoke(ctx, role, account)
	})
}

// HasRole reports whether the exact (role, account) grant exists.
func (r *RoleRegistry) HasRole(ctx context.Context, role types.Role, account types.Account) (bool, error) {
	return hasRole(ctx, r.store, role, account)
}

// GetAdmin returns the super admin, or NotInitialized before Init.
func (r *RoleRegistry) GetAdmin(ctx context.Context) (types.Account, error) {
	return getAdmin(ctx, r.store)
}

// RequireAdmin passes only when the caller proves it is the stored admin. It
// always reads the admin record and never consults the ADMIN grant.
func (r *RoleRegistry) RequireAdmin(ctx context.Context) error {
	_, err := r.verifyAdmin(ctx, r.store)
	return err
}

// RequireRole fails with MissingRole when account does not hold role. It does
// not authenticate the caller; pair it with an Authorizer check when account
// must be the caller.
func (r *RoleRegistry) RequireRole(ctx context.Context, role types.Role, account types.Account) error {
	ok, err := hasRole(ctx, r.store, role, account)
	if err != nil {
		return err
	}
	if !ok {
		return types.MissingRoleError(role, account)
	}
	return nil
}

// verifyAdmin runs outside any store transaction so the Authorizer may read
// the registry without contending with the writer.
func (r *RoleRegistry) verifyAdmin(ctx context.Context, store types.Store) (types.Account, error) {
	admin, err := getAdmin(ctx, store)
	if err != nil {
		return "", err
	}
	if r.authorizer == nil {
		return "", types.UnauthorizedError(nil)
	}
	ok, err := r.authorizer.VerifyCaller(ctx, admin)
	if err != nil {
		r.logger.Debug("go-access: authorizer failed", "admin", string(admin), "error", err.Error())
		return "", types.UnauthorizedError(err)
	}
	if !ok {
		return "", types.UnauthorizedError(nil)
	}
	return admin, nil
}

func getAdmin(ctx context.Context, store types.Store) (types.Account, error) {
	value, err := store.Get(ctx, types.AdminKey())
	if errors.Is(err, types.ErrKeyNotFound) {
		return "", types.NotInitializedError()
	}
	if err != nil {
		return "", types.StoreError(err, "get")
	}
	return types.Account(value), nil
}

func hasRole(ctx context.Context, store types.Store, role types.Role, account types.Account) (bool, error) {
	ok, err := store.Has(ctx, types.RoleKey(role, account))
	if err != nil {
		return false, types.StoreError(err, "has")
	}
	return ok, nil
}
