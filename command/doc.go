// Package command exposes go-command compatible handlers for the mutating
// registry operations (init, grant, revoke). Commands are wired by the service
// layer and can be invoked by any transport.
package command
