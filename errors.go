package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes surfaced to API clients alongside structured errors.
const (
	TextCodeDuplicateIdentity = "DUPLICATE_IDENTITY"
	TextCodeInvalidCreds      = "INVALID_CREDENTIALS"
	TextCodeStorageFailure    = "STORAGE_UNAVAILABLE"
	TextCodeTokenExpired      = "TOKEN_EXPIRED"
	TextCodeTokenMalformed    = "TOKEN_MALFORMED"
	TextCodeTokenMissing      = "TOKEN_MISSING"
	TextCodeForbidden         = "FORBIDDEN"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound)

// ErrDuplicateIdentity signals a registration against an email that already
// has an identity. The store guarantees at most one identity per email, so a
// second writer always receives this error, racing or not.
var ErrDuplicateIdentity = errors.New("an identity with this email already exists", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateIdentity)

// ErrMismatchedHashAndPassword covers both unknown email and wrong password.
// Callers must not be able to tell the two apart.
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrStorageUnavailable wraps transient persistence faults. Log the source,
// never leak it to the caller.
var ErrStorageUnavailable = errors.New("identity storage unavailable", errors.CategoryInternal).
	WithTextCode(TextCodeStorageFailure).
	WithCode(errors.CodeInternal)

// ErrTokenExpired is returned when a token is past its expiry
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for bad signatures and undecodable tokens
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMissing is returned when a request carries no bearer token
var ErrTokenMissing = errors.New("missing or malformed JWT", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMissing).
	WithCode(errors.CodeUnauthorized)

// ErrForbidden is returned when valid claims lack a required role
var ErrForbidden = errors.New("insufficient role for this operation", errors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(errors.CodeForbidden)

// ErrNoEmptyString rejects empty secrets before they reach bcrypt
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryBadInput)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
