package auth

import (
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// TextCode values surfaced to API clients alongside the HTTP status.
const (
	TextCodeDuplicateEmail  = "DUPLICATE_EMAIL"
	TextCodeInvalidCreds    = "INVALID_CREDENTIALS"
	TextCodeUserNotFound    = "USER_NOT_FOUND"
	TextCodeTokenExpired    = "TOKEN_EXPIRED"
	TextCodeTokenMalformed  = "TOKEN_MALFORMED"
	TextCodeTokenNotValid   = "TOKEN_NOT_VALID"
	TextCodeUserInactive    = "USER_INACTIVE"
	TextCodeMissingAuthUser = "MISSING_AUTH_USER"
	TextCodeForbiddenRole   = "FORBIDDEN_ROLE"
	TextCodeEmptyPassword   = "EMPTY_PASSWORD"
	TextCodeRecordNotFound  = "RECORD_NOT_FOUND"
)

// ErrDuplicateEmail is returned when registration hits the unique-email
// constraint. Client error, not retried.
var ErrDuplicateEmail = goerrors.New("email is already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail).
	WithCode(goerrors.CodeBadRequest)

// ErrUserNotFound is the login failure for an unknown email. Same status
// class as ErrInvalidCredentials, distinct message.
var ErrUserNotFound = goerrors.New("User not found", goerrors.CategoryAuth).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidCredentials is the login failure for a bad password.
var ErrInvalidCredentials = goerrors.New("User not valid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrMismatchedHashAndPassword is what the hasher reports; the login
// orchestrator maps it to ErrInvalidCredentials before it leaves the core.
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString rejects empty passwords before they reach bcrypt.
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrTokenExpired is returned when a token's expiry has passed.
var ErrTokenExpired = goerrors.New("Token expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed covers bad signatures and broken token structure.
var ErrTokenMalformed = goerrors.New("Invalid or malformed token", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenNotValid is returned when a verified token references an
// identity that no longer exists.
var ErrTokenNotValid = goerrors.New("Token not valid", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenNotValid).
	WithCode(goerrors.CodeUnauthorized)

// ErrUserInactive rejects authentication for deactivated accounts, even
// when the token itself is still valid.
var ErrUserInactive = goerrors.New("User is not active, talk with an admin", goerrors.CategoryAuth).
	WithTextCode(TextCodeUserInactive).
	WithCode(goerrors.CodeUnauthorized)

// ErrMissingAuthUser signals a pipeline misconfiguration: a role guard ran
// without the authentication step attaching a user first.
var ErrMissingAuthUser = goerrors.New("User not found", goerrors.CategoryBadInput).
	WithTextCode(TextCodeMissingAuthUser).
	WithCode(goerrors.CodeBadRequest)

// NewForbiddenRoleError names the identity and the roles that would have
// satisfied the requirement.
func NewForbiddenRoleError(fullName string, roles []string) *goerrors.Error {
	return goerrors.New(
		fmt.Sprintf("User %s need a valid role: [%s]", fullName, strings.Join(roles, ", ")),
		goerrors.CategoryAuthz,
	).
		WithTextCode(TextCodeForbiddenRole).
		WithCode(goerrors.CodeForbidden).
		WithMetadata(map[string]any{
			"user":           fullName,
			"required_roles": roles,
		})
}

// NewRecordNotFound is the store-level absent marker. It never reaches a
// client directly; orchestrator and validator map it to their own errors.
func NewRecordNotFound(field, value string) *goerrors.Error {
	return goerrors.New("record not found", goerrors.CategoryNotFound).
		WithTextCode(TextCodeRecordNotFound).
		WithCode(goerrors.CodeNotFound).
		WithMetadata(map[string]any{field: value})
}

// NewPersistenceError wraps a store failure. The cause is kept for logs;
// clients only ever see the generic message.
func NewPersistenceError(err error) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, "unexpected persistence error").
		WithCode(goerrors.CodeInternal)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == TextCodeTokenMalformed {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
