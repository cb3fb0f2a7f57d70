package config

import (
	"fmt"
	"time"
)

// BaseConfig is the application configuration root. It is loaded through
// go-config, so values come from config files layered with environment
// overrides.
type BaseConfig struct {
	Server      Server      `json:"server" yaml:"server"`
	Auth        Auth        `json:"auth" yaml:"auth"`
	Firebase    Firebase    `json:"firebase" yaml:"firebase"`
	Persistence Persistence `json:"persistence" yaml:"persistence"`
}

// Validate checks the loaded configuration before anything is wired.
func (a *BaseConfig) Validate() error {
	if a.Auth.SigningKey == "" {
		return fmt.Errorf("config: auth.signing_key is required")
	}
	if a.Firebase.ProjectID == "" {
		return fmt.Errorf("config: firebase.project_id is required")
	}
	if a.Persistence.DSN == "" {
		return fmt.Errorf("config: persistence.dsn is required")
	}
	return nil
}

// GetServer returns the server section.
func (a *BaseConfig) GetServer() Server {
	return a.Server
}

// GetAuth returns the auth section.
func (a *BaseConfig) GetAuth() Auth {
	return a.Auth
}

// GetFirebase returns the firebase section.
func (a *BaseConfig) GetFirebase() Firebase {
	return a.Firebase
}

// GetPersistence returns the persistence section.
func (a *BaseConfig) GetPersistence() Persistence {
	return a.Persistence
}

// Server holds the HTTP listener configuration.
type Server struct {
	Address string `json:"address" yaml:"address"`
}

// GetAddress returns the listen address, defaulting to :8080.
func (s Server) GetAddress() string {
	if s.Address == "" {
		return ":8080"
	}
	return s.Address
}

// Auth holds session token configuration.
type Auth struct {
	SigningKey      string   `json:"signing_key" yaml:"signing_key"`
	TokenExpiration int      `json:"token_expiration" yaml:"token_expiration"`
	ContextKey      string   `json:"context_key" yaml:"context_key"`
	Issuer          string   `json:"issuer" yaml:"issuer"`
	Audience        []string `json:"audience" yaml:"audience"`
}

// GetSigningKey returns the HS256 signing key.
func (a Auth) GetSigningKey() string {
	return a.SigningKey
}

// GetTokenExpiration returns the token lifetime in hours, defaulting to 72.
func (a Auth) GetTokenExpiration() int {
	if a.TokenExpiration <= 0 {
		return 72
	}
	return a.TokenExpiration
}

// GetContextKey returns the locals key session claims are stored under.
func (a Auth) GetContextKey() string {
	if a.ContextKey == "" {
		return "user"
	}
	return a.ContextKey
}

// GetIssuer returns the token issuer.
func (a Auth) GetIssuer() string {
	return a.Issuer
}

// GetAudience returns the token audience.
func (a Auth) GetAudience() []string {
	return a.Audience
}

// Firebase holds identity provider configuration.
type Firebase struct {
	ProjectID string `json:"project_id" yaml:"project_id"`
	JWKSURL   string `json:"jwks_url" yaml:"jwks_url"`
}

// GetProjectID returns the Firebase project id.
func (f Firebase) GetProjectID() string {
	return f.ProjectID
}

// GetJWKSURL returns the JWKS endpoint override, empty for the default.
func (f Firebase) GetJWKSURL() string {
	return f.JWKSURL
}

// Persistence holds database configuration.
type Persistence struct {
	Debug                 bool   `json:"debug" yaml:"debug"`
	Driver                string `json:"driver" yaml:"driver"`
	Server                string `json:"server" yaml:"server"`
	DSN                   string `json:"dsn" yaml:"dsn"`
	PingTimeoutExpression string `json:"ping_timeout" yaml:"ping_timeout"`
	OtelIdentifier        string `json:"otel_identifier" yaml:"otel_identifier"`
}

// GetDebug returns whether query logging is enabled.
func (p Persistence) GetDebug() bool {
	return p.Debug
}

// GetDriver returns the database driver name.
func (p Persistence) GetDriver() string {
	if p.Driver == "" {
		return "sqlite"
	}
	return p.Driver
}

// GetServer returns the database server address.
func (p Persistence) GetServer() string {
	return p.Server
}

// GetDSN returns the database connection string.
func (p Persistence) GetDSN() string {
	return p.DSN
}

// GetOtelIdentifier returns the identifier used to tag database telemetry.
func (p Persistence) GetOtelIdentifier() string {
	return p.OtelIdentifier
}

// GetPingTimeout parses the ping timeout expression.
func (p Persistence) GetPingTimeout() time.Duration {
	if p.PingTimeoutExpression == "" {
		return 5 * time.Second
	}
	dur, err := time.ParseDuration(p.PingTimeoutExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", p.PingTimeoutExpression),
		)
	}
	return dur
}
