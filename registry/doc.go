// Package registry implements the role registry: a single super admin, an
// open-ended set of presence-only (role, account) grants, and the guards
// co-located logic uses to gate on them. State lives in an injected
// types.Store, caller proofs come from a types.Authorizer, and role changes
// are published to a types.EventSink.
package registry
