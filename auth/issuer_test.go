package auth

import (
	"context"
	stderrors "errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	identity *VerifiedIdentity
	err      error
}

func (s *stubVerifier) Verify(ctx context.Context, credential string) (*VerifiedIdentity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

type stubIssuerUsers struct {
	Users

	bySubject    map[string]*User
	provisioned  []*User
	provisionErr error
	lookupErr    error
	lookups      int

	// afterProvisionErr lets a test insert the winner's row between the
	// failed insert and the re-fetch, simulating a lost first-login race.
	afterProvisionErr func(s *stubIssuerUsers)
}

func newStubIssuerUsers(seed ...*User) *stubIssuerUsers {
	s := &stubIssuerUsers{bySubject: map[string]*User{}}
	for _, user := range seed {
		s.bySubject[user.SubjectID] = user
	}
	return s
}

func (s *stubIssuerUsers) GetBySubjectID(ctx context.Context, subjectID string) (*User, error) {
	s.lookups++
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	if user, ok := s.bySubject[subjectID]; ok {
		return user, nil
	}
	return nil, repository.NewRecordNotFound()
}

func (s *stubIssuerUsers) Provision(ctx context.Context, record *User) (*User, error) {
	if s.provisionErr != nil {
		err := s.provisionErr
		if s.afterProvisionErr != nil {
			s.afterProvisionErr(s)
		}
		return nil, err
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if len(record.Roles) == 0 {
		record.Roles = []string{RoleUser}
	}
	s.bySubject[record.SubjectID] = record
	s.provisioned = append(s.provisioned, record)
	return record, nil
}

type stubTokens struct {
	signedFor []*User
	err       error
}

func (s *stubTokens) Generate(user *User) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.signedFor = append(s.signedFor, user)
	return "token-" + user.ID.String(), nil
}

func (s *stubTokens) Validate(tokenString string) (AuthClaims, error) {
	return nil, nil
}

func firebaseIdentity() *VerifiedIdentity {
	return &VerifiedIdentity{
		SubjectID: "firebase-uid-123",
		Email:     "rose@example.com",
		Name:      "Rose Noir",
		AvatarURL: "https://example.com/rose.png",
	}
}

func TestAuthenticateProvisionsUserOnFirstLogin(t *testing.T) {
	users := newStubIssuerUsers()
	tokens := &stubTokens{}
	issuer := NewSessionIssuer(&stubVerifier{identity: firebaseIdentity()}, users, tokens)

	result, err := issuer.Authenticate(context.Background(), "credential")
	require.NoError(t, err)
	require.NotNil(t, result)

	require.Len(t, users.provisioned, 1)
	created := users.provisioned[0]

	assert.True(t, result.IsNewUser)
	assert.Equal(t, "firebase-uid-123", created.SubjectID)
	assert.Equal(t, "rose@example.com", created.Email)
	assert.Equal(t, []string{RoleUser}, created.Roles)

	assert.Equal(t, "token-"+created.ID.String(), result.Token)
	require.NotNil(t, result.User)
	assert.Equal(t, created.ID.String(), result.User.ID)
}

func TestAuthenticateIsIdempotentForKnownSubject(t *testing.T) {
	users := newStubIssuerUsers()
	tokens := &stubTokens{}
	issuer := NewSessionIssuer(&stubVerifier{identity: firebaseIdentity()}, users, tokens)

	first, err := issuer.Authenticate(context.Background(), "credential")
	require.NoError(t, err)

	second, err := issuer.Authenticate(context.Background(), "credential")
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.False(t, second.IsNewUser)
	require.Len(t, users.provisioned, 1)
}

func TestAuthenticateRejectedCredentialCreatesNothing(t *testing.T) {
	users := newStubIssuerUsers()
	issuer := NewSessionIssuer(
		&stubVerifier{err: stderrors.New("firebase: id token expired")},
		users,
		&stubTokens{},
	)

	_, err := issuer.Authenticate(context.Background(), "bad credential")
	require.Error(t, err)

	var richErr *goerrors.Error
	require.ErrorAs(t, err, &richErr)
	assert.Equal(t, TextCodeInvalidCredential, richErr.TextCode)
	assert.Equal(t, goerrors.CodeUnauthorized, richErr.Code)
	assert.Equal(t, "invalid credential", richErr.Message)
	assert.Contains(t, richErr.Metadata["cause"], "expired")

	assert.Empty(t, users.provisioned)
	assert.Zero(t, users.lookups)
}

func TestAuthenticateRequiresIdentityEmail(t *testing.T) {
	identity := firebaseIdentity()
	identity.Email = ""

	users := newStubIssuerUsers()
	issuer := NewSessionIssuer(&stubVerifier{identity: identity}, users, &stubTokens{})

	_, err := issuer.Authenticate(context.Background(), "credential")
	require.Error(t, err)

	var richErr *goerrors.Error
	require.ErrorAs(t, err, &richErr)
	assert.Equal(t, TextCodeMissingEmail, richErr.TextCode)
	assert.Equal(t, goerrors.CodeUnauthorized, richErr.Code)

	assert.Empty(t, users.provisioned)
}

func TestAuthenticateRecoversFromLostProvisioningRace(t *testing.T) {
	winner := &User{
		ID:        uuid.New(),
		SubjectID: "firebase-uid-123",
		Email:     "rose@example.com",
		Roles:     []string{RoleUser},
	}

	users := newStubIssuerUsers()
	users.provisionErr = stderrors.New("UNIQUE constraint failed: users.subject_id")
	users.afterProvisionErr = func(s *stubIssuerUsers) {
		s.bySubject[winner.SubjectID] = winner
	}

	tokens := &stubTokens{}
	issuer := NewSessionIssuer(&stubVerifier{identity: firebaseIdentity()}, users, tokens)

	result, err := issuer.Authenticate(context.Background(), "credential")
	require.NoError(t, err)

	assert.False(t, result.IsNewUser)
	assert.Equal(t, winner.ID.String(), result.User.ID)
	assert.Equal(t, 2, users.lookups)
}

func TestAuthenticateBuildsClaimsFromStoredRecord(t *testing.T) {
	stored := &User{
		ID:        uuid.New(),
		SubjectID: "firebase-uid-123",
		Email:     "directory@example.com",
		Name:      "Directory Name",
		Roles:     []string{RoleUser, RoleAdmin},
	}

	users := newStubIssuerUsers(stored)
	tokens := &stubTokens{}
	issuer := NewSessionIssuer(&stubVerifier{identity: firebaseIdentity()}, users, tokens)

	result, err := issuer.Authenticate(context.Background(), "credential")
	require.NoError(t, err)

	// The verified identity carries different profile values, but the
	// stored record is what signs and what the response reflects.
	require.Len(t, tokens.signedFor, 1)
	assert.Equal(t, stored.Roles, tokens.signedFor[0].Roles)
	assert.Equal(t, "directory@example.com", result.User.Email)
	assert.Equal(t, stored.Roles, result.User.Roles)
}

func TestAuthenticateProfileShape(t *testing.T) {
	users := newStubIssuerUsers()
	issuer := NewSessionIssuer(&stubVerifier{identity: firebaseIdentity()}, users, &stubTokens{})

	result, err := issuer.Authenticate(context.Background(), "credential")
	require.NoError(t, err)

	profile := result.User
	require.NotNil(t, profile)
	assert.NotEmpty(t, profile.ID)
	assert.Equal(t, "rose@example.com", profile.Email)
	assert.Equal(t, "Rose Noir", profile.Name)
	assert.Equal(t, "https://example.com/rose.png", profile.Avatar)
	assert.Equal(t, []string{RoleUser}, profile.Roles)
}

func TestAuthenticateDeterministicIDs(t *testing.T) {
	users := newStubIssuerUsers()
	issuer := NewSessionIssuer(
		&stubVerifier{identity: firebaseIdentity()},
		users,
		&stubTokens{},
		WithDeterministicIDs(),
	)

	result, err := issuer.Authenticate(context.Background(), "credential")
	require.NoError(t, err)

	expected, err := hashid.NewUUID("firebase-uid-123")
	require.NoError(t, err)
	assert.Equal(t, expected.String(), result.User.ID)
}

func TestAuthenticateDirectoryFailureIsInternal(t *testing.T) {
	users := newStubIssuerUsers()
	users.lookupErr = stderrors.New("connection refused")

	issuer := NewSessionIssuer(&stubVerifier{identity: firebaseIdentity()}, users, &stubTokens{})

	_, err := issuer.Authenticate(context.Background(), "credential")
	require.Error(t, err)

	var richErr *goerrors.Error
	require.ErrorAs(t, err, &richErr)
	assert.Equal(t, goerrors.CategoryInternal, richErr.Category)
}
