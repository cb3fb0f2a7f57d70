package firebase

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/touslux/catalog-api/auth"
)

// Verifier validates Firebase-issued ID tokens against the Google
// securetoken JWKS and maps their claims to a VerifiedIdentity.
type Verifier struct {
	config  Config
	keyFunc jwt.Keyfunc
	jwks    *keyfunc.JWKS
	logger  auth.Logger
	parser  *jwt.Parser
}

// Option configures the Verifier.
type Option func(*Verifier)

// WithLogger sets the logger used for JWKS refresh failures.
func WithLogger(logger auth.Logger) Option {
	return func(v *Verifier) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// NewVerifier creates a Firebase ID token verifier. Unless Config.KeyFunc
// is set, it fetches the securetoken JWKS and keeps it refreshed in the
// background until Close is called.
func NewVerifier(cfg Config, opts ...Option) (*Verifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	v := &Verifier{
		config: cfg,
		logger: auth.DefaultLogger(),
	}

	for _, opt := range opts {
		opt(v)
	}

	v.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(cfg.issuer()),
		jwt.WithAudience(cfg.ProjectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)

	if cfg.KeyFunc != nil {
		v.keyFunc = cfg.KeyFunc
		return v, nil
	}

	jwks, err := keyfunc.Get(cfg.jwksURL(), keyfunc.Options{
		RefreshInterval:   cfg.refreshInterval(),
		RefreshRateLimit:  cfg.refreshInterval() / 12,
		RefreshTimeout:    cfg.refreshTimeout(),
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			v.logger.Warn("firebase: JWKS refresh failed: %s", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("firebase: failed to get JWKS: %w", err)
	}

	v.jwks = jwks
	v.keyFunc = jwks.Keyfunc

	return v, nil
}

// Close stops the background JWKS refresh.
func (v *Verifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

type idTokenClaims struct {
	jwt.RegisteredClaims
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Picture       string `json:"picture,omitempty"`
}

// Verify implements auth.IdentityVerifier. It checks the token signature,
// issuer, audience, and lifetime, then maps the Firebase claims to a
// provider-neutral identity.
func (v *Verifier) Verify(ctx context.Context, credential string) (*auth.VerifiedIdentity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(credential) == "" {
		return nil, fmt.Errorf("firebase: empty id token")
	}

	claims := &idTokenClaims{}
	token, err := v.parser.ParseWithClaims(credential, claims, v.keyFunc)
	if err != nil {
		return nil, normalizeVerifyError(err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("firebase: invalid id token")
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("firebase: id token missing subject")
	}

	return &auth.VerifiedIdentity{
		SubjectID: claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
		AvatarURL: claims.Picture,
	}, nil
}

func normalizeVerifyError(err error) error {
	switch {
	case stderrors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("firebase: id token expired: %w", err)
	case stderrors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return fmt.Errorf("firebase: id token used before issued: %w", err)
	default:
		return fmt.Errorf("firebase: id token validation failed: %w", err)
	}
}
