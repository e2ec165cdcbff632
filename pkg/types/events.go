package types

// EventType names a role change event.
type EventType string

const (
	EventTypeRoleGranted EventType = "role.granted"
	EventTypeRoleRevoked EventType = "role.revoked"
)

// Event is a typed role change record published to an EventSink.
type Event interface {
	Type() EventType
	Subject() (Role, Account)
}

// RoleGranted is emitted when a grant is created.
type RoleGranted struct {
	Role    Role
	Account Account
}

// Type implements Event.
func (RoleGranted) Type() EventType { return EventTypeRoleGranted }

// Subject implements Event.
func (e RoleGranted) Subject() (Role, Account) { return e.Role, e.Account }

// RoleRevoked is emitted when an existing grant is deleted.
type RoleRevoked struct {
	Role    Role
	Account Account
}

// Type implements Event.
func (RoleRevoked) Type() EventType { return EventTypeRoleRevoked }

// Subject implements Event.
func (e RoleRevoked) Subject() (Role, Account) { return e.Role, e.Account }
