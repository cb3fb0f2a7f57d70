package auth

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the concrete claim set signed into session tokens. It is
// built from the stored user record at authentication time and never
// persisted; role changes show up in the next token issued, not in ones
// already out there.
type SessionClaims struct {
	jwt.RegisteredClaims
	UID       string   `json:"uid,omitempty"`
	UserEmail string   `json:"email,omitempty"`
	FUID      string   `json:"fuid,omitempty"`
	UserRoles []string `json:"roles,omitempty"`
}

var _ AuthClaims = (*SessionClaims)(nil)

// Subject returns the subject claim
func (c *SessionClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the internal user id.
func (c *SessionClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Email returns the email claim.
func (c *SessionClaims) Email() string {
	return c.UserEmail
}

// ExternalSubject returns the identity provider's subject id.
func (c *SessionClaims) ExternalSubject() string {
	return c.FUID
}

// Roles returns the role set the user had when the token was minted.
func (c *SessionClaims) Roles() []string {
	return c.UserRoles
}

// HasRole checks the role set for an exact match.
func (c *SessionClaims) HasRole(role string) bool {
	return slices.Contains(c.UserRoles, role)
}

// Expires returns the expiration time
func (c *SessionClaims) Expires() time.Time {
	if c.ExpiresAt != nil {
		return c.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *SessionClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
