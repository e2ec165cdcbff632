// Package authz provides types.Authorizer implementations, the oracle the
// registry asks whether the current caller proved a given identity.
package authz
