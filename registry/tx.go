package registry

import (
	"context"
	"errors"

	"github.com/goliatone/go-access/pkg/types"
)

// txState is the unit of work of one mutating call. Events are buffered and
// only published after the store commits.
type txState struct {
	store   types.Store
	pending []types.Event
}

// confirmAdmin re-reads the admin record inside the transaction and fails
// unless it is still the account the caller was verified against.
func (t *txState) confirmAdmin(ctx context.Context, verified types.Account) error {
	current, err := getAdmin(ctx, t.store)
	if err != nil {
		return err
	}
	if current != verified {
		return types.UnauthorizedError(nil)
	}
	return nil
}

func (t *txState) grant(ctx context.Context, role types.Role, account types.Account) error {
	key := types.RoleKey(role, account)
	exists, err := t.store.Has(ctx, key)
	if err != nil {
		return types.StoreError(err, "has")
	}
	if exists {
		return nil
	}
	if err := t.store.Set(ctx, key, []byte{}); err != nil {
		return types.StoreError(err, "set")
	}
	t.pending = append(t.pending, types.RoleGranted{Role: role, Account: account})
	return nil
}

func (t *txState) revoke(ctx context.Context, role types.Role, account types.Account) error {
	key := types.RoleKey(role, account)
	exists, err := t.store.Has(ctx, key)
	if err != nil {
		return types.StoreError(err, "has")
	}
	if !exists {
		return nil
	}
	if err := t.store.Remove(ctx, key); err != nil {
		return types.StoreError(err, "remove")
	}
	t.pending = append(t.pending, types.RoleRevoked{Role: role, Account: account})
	return nil
}

func (r *RoleRegistry) mutate(ctx context.Context, fn func(context.Context, *txState) error) error {
	var state *txState
	if transactor, ok := r.store.(types.Transactor); ok {
		err := transactor.RunInTx(ctx, func(ctx context.Context, tx types.Store) error {
			// a retried transaction starts from a clean buffer
			state = &txState{store: tx}
			return fn(ctx, state)
		})
		if err != nil {
			// rich registry errors pass through unchanged
			return types.StoreError(err, "commit")
		}
	} else {
		state = &txState{store: r.store}
		if err := fn(ctx, state); err != nil {
			return err
		}
	}
	for _, event := range state.pending {
		r.publish(ctx, event)
	}
	return nil
}

func (r *RoleRegistry) publish(ctx context.Context, event types.Event) {
	role, account := event.Subject()
	r.logger.Debug("go-access: role change", "type", string(event.Type()), "role", string(role), "account", string(account))
	if r.sink != nil {
		if err := r.sink.Publish(ctx, event); err != nil {
			r.logger.Error("go-access: event publish failed", err, "type", string(event.Type()))
		}
	}
	r.emitHook(ctx, event)
}

func (r *RoleRegistry) emitHook(ctx context.Context, event types.Event) {
	if r.hooks.AfterRoleChange == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("go-access: role hook panic", errors.New("panic in AfterRoleChange"), "panic", rec)
		}
	}()
	r.hooks.AfterRoleChange(ctx, event)
}
