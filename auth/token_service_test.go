package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSigningKey = []byte("test-signing-key")

func newTestTokenService() TokenService {
	return NewTokenService(testSigningKey, 72, "catalog-api", jwt.ClaimStrings{"catalog-clients"}, nil)
}

func testUser() *User {
	return &User{
		ID:        uuid.New(),
		SubjectID: "firebase-uid-123",
		Email:     "rose@example.com",
		Name:      "Rose Noir",
		Roles:     []string{RoleUser, RoleAdmin},
	}
}

func TestGenerateValidateRoundtrip(t *testing.T) {
	service := newTestTokenService()
	user := testUser()

	tokenString, err := service.Generate(user)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := service.Validate(tokenString)
	require.NoError(t, err)

	assert.Equal(t, user.ID.String(), claims.Subject())
	assert.Equal(t, user.ID.String(), claims.UserID())
	assert.Equal(t, user.Email, claims.Email())
	assert.Equal(t, user.SubjectID, claims.ExternalSubject())
	assert.Equal(t, user.Roles, claims.Roles())
	assert.True(t, claims.HasRole(RoleAdmin))
	assert.False(t, claims.HasRole("editor"))
	assert.WithinDuration(t, time.Now().Add(72*time.Hour), claims.Expires(), time.Minute)
}

func TestGenerateRequiresUser(t *testing.T) {
	service := newTestTokenService()

	_, err := service.Generate(nil)
	require.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	service := NewTokenService(testSigningKey, -1, "catalog-api", nil, nil)

	tokenString, err := service.Generate(testUser())
	require.NoError(t, err)

	_, err = service.Validate(tokenString)
	require.Error(t, err)
	assert.True(t, IsTokenExpiredError(err))
}

func TestValidateRejectsWrongKey(t *testing.T) {
	service := newTestTokenService()
	other := NewTokenService([]byte("other-key"), 72, "catalog-api", jwt.ClaimStrings{"catalog-clients"}, nil)

	tokenString, err := other.Generate(testUser())
	require.NoError(t, err)

	_, err = service.Validate(tokenString)
	require.Error(t, err)

	var richErr *goerrors.Error
	require.ErrorAs(t, err, &richErr)
	assert.Equal(t, TextCodeTokenMalformed, richErr.TextCode)
}

func TestValidateRejectsNonHMACToken(t *testing.T) {
	service := newTestTokenService()

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": uuid.NewString(),
		"iss": "catalog-api",
		"aud": "catalog-clients",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = service.Validate(tokenString)
	require.Error(t, err)
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	service := newTestTokenService()
	other := NewTokenService(testSigningKey, 72, "someone-else", jwt.ClaimStrings{"catalog-clients"}, nil)

	tokenString, err := other.Generate(testUser())
	require.NoError(t, err)

	_, err = service.Validate(tokenString)
	require.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	service := newTestTokenService()

	_, err := service.Validate("not-a-token")
	require.Error(t, err)

	var richErr *goerrors.Error
	require.ErrorAs(t, err, &richErr)
	assert.Equal(t, TextCodeTokenMalformed, richErr.TextCode)
}
