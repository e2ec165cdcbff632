package types

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Account identifies a principal known to the host (an address, a user id,
// a service identity). The registry treats it as opaque.
type Account string

// String implements fmt.Stringer.
func (a Account) String() string { return string(a) }

// IsZero reports whether the account is empty.
func (a Account) IsZero() bool { return a == "" }

// Role is an opaque permission tag. Roles are not hierarchical.
type Role string

// String implements fmt.Stringer.
func (r Role) String() string { return string(r) }

// IsZero reports whether the role is empty.
func (r Role) IsZero() bool { return r == "" }

// Reserved roles. Any other non-empty Role can be used as a custom role.
const (
	// RoleAdmin is granted to the super admin at initialization.
	RoleAdmin Role = "ADMIN"
	// RoleOperator is intended for day to day operators.
	RoleOperator Role = "OPERATOR"
	// RolePauser is intended for accounts allowed to pause co-located logic.
	RolePauser Role = "PAUSER"
	// RoleGame is intended for game contracts or services.
	RoleGame Role = "GAME"
)

// ReservedRoles returns the predefined role identifiers.
func ReservedRoles() []Role {
	return []Role{RoleAdmin, RoleOperator, RolePauser, RoleGame}
}

// IsReserved reports whether the role is one of the predefined identifiers.
func (r Role) IsReserved() bool {
	for _, reserved := range ReservedRoles() {
		if r == reserved {
			return true
		}
	}
	return false
}

// Store is the persistent key-value ledger the registry keeps its state in.
// Implementations must outlive a single call.
type Store interface {
	Has(ctx context.Context, key Key) (bool, error)
	// Get returns ErrKeyNotFound when the key is absent.
	Get(ctx context.Context, key Key) ([]byte, error)
	Set(ctx context.Context, key Key, value []byte) error
	Remove(ctx context.Context, key Key) error
}

// Transactor is implemented by stores that can apply a group of writes
// atomically. Writes performed through the Store handed to fn are committed
// only when fn returns nil.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

// Authorizer verifies, for the current call, whether the given account
// authorized it. A false result without error means the proof is missing or
// does not match.
type Authorizer interface {
	VerifyCaller(ctx context.Context, account Account) (bool, error)
}

// EventSink receives role change events. Publishing is fire-and-forget from
// the registry's point of view; errors are logged, never returned.
type EventSink interface {
	Publish(ctx context.Context, event Event) error
}

// Hooks groups optional callbacks invoked after role changes are published.
type Hooks struct {
	AfterRoleChange func(context.Context, Event)
}

// Clock abstracts time retrieval for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID creation.
type IDGenerator interface {
	UUID() uuid.UUID
}

// Logger captures basic logging hooks used by the registry.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator produces UUIDv4 identifiers.
type UUIDGenerator struct{}

// UUID returns a randomly generated UUID.
func (UUIDGenerator) UUID() uuid.UUID { return uuid.New() }

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}

// RoleRegistry is the contract implemented by registry.RoleRegistry and
// consumed by the command and query handlers.
type RoleRegistry interface {
	Init(ctx context.Context, admin Account) error
	GrantRole(ctx context.Context, role Role, account Account) error
	RevokeRole(ctx context.Context, role Role, account Account) error
	HasRole(ctx context.Context, role Role, account Account) (bool, error)
	GetAdmin(ctx context.Context) (Account, error)
	RequireAdmin(ctx context.Context) error
	RequireRole(ctx context.Context, role Role, account Account) error
}
