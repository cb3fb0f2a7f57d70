package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
)

// AuthResult is what a successful authentication returns.
type AuthResult struct {
	Token     string   `json:"accessToken"`
	User      *Profile `json:"user"`
	IsNewUser bool     `json:"-"`
}

// SessionIssuer orchestrates credential verification, find-or-create user
// resolution, and session token issuance. It holds no mutable state; every
// call works off the verifier and the user directory.
type SessionIssuer struct {
	verifier         IdentityVerifier
	users            Users
	tokens           TokenService
	logger           Logger
	deterministicIDs bool
}

// SessionIssuerOption configures the issuer.
type SessionIssuerOption func(*SessionIssuer)

// NewSessionIssuer creates a new session issuer.
func NewSessionIssuer(verifier IdentityVerifier, users Users, tokens TokenService, opts ...SessionIssuerOption) *SessionIssuer {
	s := &SessionIssuer{
		verifier: verifier,
		users:    users,
		tokens:   tokens,
		logger:   defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// WithLogger sets the issuer logger.
func WithLogger(logger Logger) SessionIssuerOption {
	return func(s *SessionIssuer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDeterministicIDs derives new user ids from the external subject id
// instead of generating random ones. Useful when several environments must
// agree on ids for the same identity.
func WithDeterministicIDs() SessionIssuerOption {
	return func(s *SessionIssuer) {
		s.deterministicIDs = true
	}
}

// Authenticate verifies an external credential, resolves the local user
// record (provisioning it on first login), and returns a signed session
// token plus the user's public profile.
//
// Verifier failures of any kind come back as ErrInvalidCredential; the
// provider-specific reason is kept in error metadata and never surfaced to
// the caller.
func (s *SessionIssuer) Authenticate(ctx context.Context, credential string) (*AuthResult, error) {
	identity, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		s.logger.Info("authenticate credential rejected: %s", err)
		rejected := ErrInvalidCredential.Clone()
		rejected.Source = err
		return nil, rejected.WithMetadata(map[string]any{
			"cause": err.Error(),
		})
	}

	if identity == nil || identity.SubjectID == "" {
		s.logger.Error("authenticate verifier returned empty identity")
		return nil, ErrInvalidCredential.Clone()
	}

	if identity.Email == "" {
		s.logger.Info("authenticate identity %s missing email", identity.SubjectID)
		return nil, ErrMissingIdentityEmail.Clone().WithMetadata(map[string]any{
			"subject_id": identity.SubjectID,
		})
	}

	user, isNew, err := s.resolveUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to generate session token")
	}

	if isNew {
		s.logger.Info("provisioned user %s on first login for subject %s", user.ID, user.SubjectID)
	}

	return &AuthResult{
		Token:     token,
		User:      user.PublicProfile(),
		IsNewUser: isNew,
	}, nil
}

// resolveUser finds the user record for a verified identity, creating it on
// first login. Claims data only seeds the record at creation; on every later
// call the stored record wins, so administrative changes (roles above all)
// stick.
func (s *SessionIssuer) resolveUser(ctx context.Context, identity *VerifiedIdentity) (*User, bool, error) {
	user, err := s.users.GetBySubjectID(ctx, identity.SubjectID)
	if err == nil {
		return user, false, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, false, errors.Wrap(err, errors.CategoryInternal, "user directory lookup failed")
	}

	record := s.userFromIdentity(identity)

	created, err := s.users.Provision(ctx, record)
	if err == nil {
		return created, true, nil
	}

	if !IsDuplicateKeyError(err) {
		return nil, false, errors.Wrap(err, errors.CategoryInternal, "failed to provision user")
	}

	// Lost the first-login race: a concurrent call created the record
	// between our lookup and insert. The unique index on subject_id
	// guarantees the winner's row exists, so one re-fetch settles it.
	winner, ferr := s.users.GetBySubjectID(ctx, identity.SubjectID)
	if ferr != nil {
		return nil, false, errors.Wrap(ferr, errors.CategoryInternal, "failed to resolve user after provisioning conflict").
			WithMetadata(map[string]any{
				"subject_id": identity.SubjectID,
			})
	}

	return winner, false, nil
}

func (s *SessionIssuer) userFromIdentity(identity *VerifiedIdentity) *User {
	user := &User{
		SubjectID: identity.SubjectID,
		Email:     identity.Email,
		Name:      identity.Name,
		AvatarURL: identity.AvatarURL,
		Roles:     []string{RoleUser},
	}

	if s.deterministicIDs {
		if id, err := hashid.NewUUID(identity.SubjectID); err == nil {
			user.ID = id
		}
	}

	return user
}
