package types

import (
	"fmt"
	"net/url"
	"strings"
)

// KeyKind discriminates the entities persisted by the registry.
type KeyKind string

const (
	// KeyKindAdmin addresses the singleton admin record.
	KeyKindAdmin KeyKind = "admin"
	// KeyKindRole addresses a presence-only (role, account) grant.
	KeyKindRole KeyKind = "role"
)

// Key is the discriminated storage key. Admin keys carry no role or account.
type Key struct {
	Kind    KeyKind
	Role    Role
	Account Account
}

// AdminKey returns the well-known key holding the admin record.
func AdminKey() Key {
	return Key{Kind: KeyKindAdmin}
}

// RoleKey returns the composite key whose existence is the grant.
func RoleKey(role Role, account Account) Key {
	return Key{Kind: KeyKindRole, Role: role, Account: account}
}

// IsAdmin reports whether the key addresses the admin record.
func (k Key) IsAdmin() bool { return k.Kind == KeyKindAdmin }

// String encodes the key as "admin" or "role/<role>/<account>" with both
// components path-escaped, so the encoding stays unambiguous for any
// identifier.
func (k Key) String() string {
	switch k.Kind {
	case KeyKindAdmin:
		return string(KeyKindAdmin)
	case KeyKindRole:
		return string(KeyKindRole) + "/" + url.PathEscape(string(k.Role)) + "/" + url.PathEscape(string(k.Account))
	default:
		return string(k.Kind)
	}
}

// ParseKey decodes a key produced by Key.String.
func ParseKey(value string) (Key, error) {
	if value == string(KeyKindAdmin) {
		return AdminKey(), nil
	}
	parts := strings.Split(value, "/")
	if len(parts) != 3 || parts[0] != string(KeyKindRole) {
		return Key{}, fmt.Errorf("go-access: malformed key %q", value)
	}
	role, err := url.PathUnescape(parts[1])
	if err != nil {
		return Key{}, fmt.Errorf("go-access: malformed role in key %q: %w", value, err)
	}
	account, err := url.PathUnescape(parts[2])
	if err != nil {
		return Key{}, fmt.Errorf("go-access: malformed account in key %q: %w", value, err)
	}
	return RoleKey(Role(role), Account(account)), nil
}
