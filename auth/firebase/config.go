package firebase

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken%40system.gserviceaccount.com"

// Config holds Firebase project configuration for ID token verification.
// It is an explicit object handed to NewVerifier at startup; there is no
// process-wide SDK state.
type Config struct {
	// ProjectID is the Firebase project id. It is both the expected
	// audience and the tail of the expected issuer.
	ProjectID string

	// JWKSURL overrides the Google securetoken JWKS endpoint (optional).
	JWKSURL string

	// RefreshInterval is how often to refresh the JWKS in the background.
	// Default: 1 hour.
	RefreshInterval time.Duration

	// RefreshTimeout bounds a single JWKS refresh. Default: 10 seconds.
	RefreshTimeout time.Duration

	// KeyFunc overrides key resolution entirely (tests, air-gapped runs).
	// When set, no JWKS endpoint is contacted.
	KeyFunc jwt.Keyfunc
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ProjectID) == "" {
		return fmt.Errorf("firebase: project id is required")
	}
	return nil
}

func (c Config) issuer() string {
	return "https://securetoken.google.com/" + c.ProjectID
}

func (c Config) jwksURL() string {
	if c.JWKSURL != "" {
		return c.JWKSURL
	}
	return defaultJWKSURL
}

func (c Config) refreshInterval() time.Duration {
	if c.RefreshInterval > 0 {
		return c.RefreshInterval
	}
	return time.Hour
}

func (c Config) refreshTimeout() time.Duration {
	if c.RefreshTimeout > 0 {
		return c.RefreshTimeout
	}
	return 10 * time.Second
}
