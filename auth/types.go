package auth

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// VerifiedIdentity is the claim set returned by an external identity
// verifier after it has checked a credential. SubjectID is the provider's
// stable identifier for the user; the rest is profile data.
type VerifiedIdentity struct {
	SubjectID string
	Email     string
	Name      string
	AvatarURL string
}

// IdentityVerifier checks an opaque external credential and returns the
// identity it asserts. Implementations must not be trusted for role data;
// roles always come from the local user directory.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (*VerifiedIdentity, error)
}

// TokenService mints and validates session tokens.
type TokenService interface {
	Generate(user *User) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetContextKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
}

// AuthClaims represents the structured claims of a validated session token.
type AuthClaims interface {
	Subject() string
	UserID() string
	Email() string
	ExternalSubject() string
	Roles() []string
	HasRole(role string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// DefaultLogger returns a Logger that writes to stdout. It is used as a
// fallback when no logger is configured.
func DefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
