package authz

import (
	"context"

	"github.com/goliatone/go-access/pkg/types"
)

// Func adapts a function to types.Authorizer.
type Func func(ctx context.Context, account types.Account) (bool, error)

// VerifyCaller implements types.Authorizer.
func (f Func) VerifyCaller(ctx context.Context, account types.Account) (bool, error) {
	return f(ctx, account)
}

// AllowAll verifies every caller. Use it when the host already authenticated
// the call, and in tests.
func AllowAll() types.Authorizer {
	return Func(func(context.Context, types.Account) (bool, error) { return true, nil })
}

// DenyAll rejects every caller.
func DenyAll() types.Authorizer {
	return Func(func(context.Context, types.Account) (bool, error) { return false, nil })
}

// Static verifies only the listed accounts.
func Static(accounts ...types.Account) types.Authorizer {
	allowed := make(map[types.Account]struct{}, len(accounts))
	for _, account := range accounts {
		if account.IsZero() {
			continue
		}
		allowed[account] = struct{}{}
	}
	return Func(func(_ context.Context, account types.Account) (bool, error) {
		_, ok := allowed[account]
		return ok, nil
	})
}

type callerKey struct{}

// WithCaller records the authenticated caller on the context.
func WithCaller(ctx context.Context, account types.Account) context.Context {
	return context.WithValue(ctx, callerKey{}, account)
}

// CallerFromContext returns the caller stored by WithCaller.
func CallerFromContext(ctx context.Context) (types.Account, bool) {
	if ctx == nil {
		return "", false
	}
	account, ok := ctx.Value(callerKey{}).(types.Account)
	return account, ok && !account.IsZero()
}

// Caller verifies the account stored on the context by WithCaller.
func Caller() types.Authorizer {
	return Func(func(ctx context.Context, account types.Account) (bool, error) {
		caller, ok := CallerFromContext(ctx)
		return ok && caller == account, nil
	})
}
