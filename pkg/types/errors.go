package types

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

var (
	// ErrAlreadyInitialized indicates Init was called after the admin record exists.
	ErrAlreadyInitialized = errors.New("go-access: already initialized")
	// ErrNotInitialized indicates an admin-dependent call before Init.
	ErrNotInitialized = errors.New("go-access: not initialized")
	// ErrUnauthorized indicates the caller could not prove it is the admin.
	ErrUnauthorized = errors.New("go-access: unauthorized")
	// ErrMissingRole indicates the nominated account lacks the required role.
	ErrMissingRole = errors.New("go-access: missing required role")
	// ErrKeyNotFound is returned by Store.Get for absent keys.
	ErrKeyNotFound = errors.New("go-access: key not found")
	// ErrMissingStore occurs when the registry is built without a store.
	ErrMissingStore = errors.New("go-access: missing store")
	// ErrRoleRequired occurs when a command omits the role.
	ErrRoleRequired = errors.New("go-access: role required")
	// ErrAccountRequired occurs when a command omits the account.
	ErrAccountRequired = errors.New("go-access: account required")
	// ErrServiceNotReady indicates the service has not been properly configured.
	ErrServiceNotReady = errors.New("go-access: service not ready")
)

const (
	TextCodeAlreadyInitialized = "ACCESS_ALREADY_INITIALIZED"
	TextCodeNotInitialized     = "ACCESS_NOT_INITIALIZED"
	TextCodeUnauthorized       = "ACCESS_UNAUTHORIZED"
	TextCodeMissingRole        = "ACCESS_MISSING_ROLE"
	TextCodeStoreFailure       = "ACCESS_STORE_FAILURE"
	TextCodeAccountRequired    = "ACCESS_ACCOUNT_REQUIRED"
)

// AlreadyInitializedError wraps ErrAlreadyInitialized in a rich error.
func AlreadyInitializedError() error {
	return goerrors.Wrap(ErrAlreadyInitialized, goerrors.CategoryValidation, "go-access: admin already initialized").
		WithCode(goerrors.CodeBadRequest).
		WithTextCode(TextCodeAlreadyInitialized)
}

// AccountRequiredError wraps ErrAccountRequired in a rich validation error.
func AccountRequiredError() error {
	return goerrors.Wrap(ErrAccountRequired, goerrors.CategoryValidation, "go-access: account required").
		WithCode(goerrors.CodeBadRequest).
		WithTextCode(TextCodeAccountRequired)
}

// NotInitializedError wraps ErrNotInitialized in a rich error.
func NotInitializedError() error {
	return goerrors.Wrap(ErrNotInitialized, goerrors.CategoryNotFound, "go-access: admin record not found").
		WithCode(goerrors.CodeNotFound).
		WithTextCode(TextCodeNotInitialized)
}

// UnauthorizedError wraps ErrUnauthorized, recording the oracle failure as
// metadata when there is one.
func UnauthorizedError(cause error) error {
	err := goerrors.Wrap(ErrUnauthorized, goerrors.CategoryAuth, "go-access: caller is not the admin").
		WithCode(goerrors.CodeUnauthorized).
		WithTextCode(TextCodeUnauthorized)
	if cause != nil {
		err = err.WithMetadata(map[string]any{"cause": cause.Error()})
	}
	return err
}

// MissingRoleError wraps ErrMissingRole for the given pair.
func MissingRoleError(role Role, account Account) error {
	return goerrors.Wrap(ErrMissingRole, goerrors.CategoryAuthz, "go-access: account lacks required role").
		WithCode(goerrors.CodeForbidden).
		WithTextCode(TextCodeMissingRole).
		WithMetadata(map[string]any{
			"role":    string(role),
			"account": string(account),
		})
}

// StoreError wraps an infrastructure failure raised by the store.
func StoreError(err error, op string) error {
	if err == nil {
		return nil
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "go-access: store "+op+" failed").
		WithCode(goerrors.CodeInternal).
		WithTextCode(TextCodeStoreFailure)
}

// IsAlreadyInitialized reports whether err is an AlreadyInitialized failure.
func IsAlreadyInitialized(err error) bool {
	return errors.Is(err, ErrAlreadyInitialized) || hasTextCode(err, TextCodeAlreadyInitialized)
}

// IsNotInitialized reports whether err is a NotInitialized failure.
func IsNotInitialized(err error) bool {
	return errors.Is(err, ErrNotInitialized) || hasTextCode(err, TextCodeNotInitialized)
}

// IsUnauthorized reports whether err is an Unauthorized failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || hasTextCode(err, TextCodeUnauthorized)
}

// IsMissingRole reports whether err is a MissingRole failure.
func IsMissingRole(err error) bool {
	return errors.Is(err, ErrMissingRole) || hasTextCode(err, TextCodeMissingRole)
}

func hasTextCode(err error, code string) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}
