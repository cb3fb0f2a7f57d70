package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestSessionClaimsAccessors(t *testing.T) {
	issued := time.Now().Truncate(time.Second)
	expires := issued.Add(72 * time.Hour)

	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "8b7f4b1e-0000-4000-8000-000000000001",
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		UID:       "8b7f4b1e-0000-4000-8000-000000000001",
		UserEmail: "rose@example.com",
		FUID:      "firebase-uid-123",
		UserRoles: []string{RoleUser, RoleAdmin},
	}

	assert.Equal(t, "8b7f4b1e-0000-4000-8000-000000000001", claims.Subject())
	assert.Equal(t, "8b7f4b1e-0000-4000-8000-000000000001", claims.UserID())
	assert.Equal(t, "rose@example.com", claims.Email())
	assert.Equal(t, "firebase-uid-123", claims.ExternalSubject())
	assert.Equal(t, []string{RoleUser, RoleAdmin}, claims.Roles())
	assert.Equal(t, issued, claims.IssuedAt())
	assert.Equal(t, expires, claims.Expires())
}

func TestSessionClaimsUserIDFallsBackToSubject(t *testing.T) {
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "subject-only"},
	}
	assert.Equal(t, "subject-only", claims.UserID())
}

func TestSessionClaimsHasRole(t *testing.T) {
	claims := &SessionClaims{UserRoles: []string{RoleUser}}

	assert.True(t, claims.HasRole(RoleUser))
	assert.False(t, claims.HasRole(RoleAdmin))
	assert.False(t, claims.HasRole(""))
}

func TestSessionClaimsZeroTimes(t *testing.T) {
	claims := &SessionClaims{}

	assert.True(t, claims.Expires().IsZero())
	assert.True(t, claims.IssuedAt().IsZero())
}

func TestUserHasRole(t *testing.T) {
	user := &User{Roles: []string{RoleUser, RoleAdmin}}

	assert.True(t, user.HasRole(RoleAdmin))
	assert.False(t, (&User{}).HasRole(RoleUser))
}
