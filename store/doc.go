// Package store provides types.Store implementations for the registry: an
// in-memory map, a SQL ledger on Bun and a Redis keyspace. All of them also
// implement types.Transactor so registry calls commit atomically.
package store
