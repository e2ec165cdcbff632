package authz

import (
	"context"

	"github.com/goliatone/go-access/pkg/types"
	auth "github.com/goliatone/go-auth"
)

// ActorContext verifies the caller against the go-auth actor stored on the
// request context by the auth middleware. The actor matches when its ActorID
// equals the account.
func ActorContext() types.Authorizer {
	return Func(func(ctx context.Context, account types.Account) (bool, error) {
		if ctx == nil {
			return false, nil
		}
		actor, ok := auth.ActorFromContext(ctx)
		if !ok || actor == nil || actor.ActorID == "" {
			return false, nil
		}
		return types.Account(actor.ActorID) == account, nil
	})
}
