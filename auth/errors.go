package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCredential = "auth_invalid_credential"
	TextCodeMissingEmail      = "auth_missing_required_attribute"
	TextCodeTokenExpired      = "auth_token_expired"
	TextCodeTokenMalformed    = "auth_token_malformed"
	TextCodeIdentityNotFound  = "auth_identity_not_found"
	TextCodeForbidden         = "auth_forbidden"
)

// ErrInvalidCredential is returned whenever the external verifier rejects a
// credential. The verifier's reason stays in error metadata; callers only
// see this message.
var ErrInvalidCredential = errors.New("invalid credential", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredential).
	WithCode(errors.CodeUnauthorized)

// ErrMissingIdentityEmail is returned when a credential verifies but the
// asserted identity has no email.
var ErrMissingIdentityEmail = errors.New("missing required attribute", errors.CategoryAuth).
	WithTextCode(TextCodeMissingEmail).
	WithCode(errors.CodeUnauthorized)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(errors.CodeNotFound)

// ErrTokenExpired is returned when a session token is past its expiry.
var ErrTokenExpired = errors.New("token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail parsing or signature
// verification.
var ErrTokenMalformed = errors.New("token malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrInsufficientRole is returned when a validated session lacks the role a
// route requires.
var ErrInsufficientRole = errors.New("insufficient role", errors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(errors.CodeForbidden)

// IsDuplicateKeyError will check for unique constraint violations across the
// drivers we run against.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "constraint failed: UNIQUE")
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenExpired) ||
		strings.Contains(err.Error(), "token is expired")
}
