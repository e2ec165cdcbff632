// Package query exposes go-command compatible read handlers over the role
// registry. Reads never require caller authorization.
package query
