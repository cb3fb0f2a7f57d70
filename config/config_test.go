package config

import (
	"testing"
	"time"

	"github.com/goliatone/go-persistence-bun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ persistence.Config = Persistence{}

func TestValidateRequiredFields(t *testing.T) {
	cfg := &BaseConfig{}
	require.Error(t, cfg.Validate())

	cfg.Auth.SigningKey = "secret"
	require.Error(t, cfg.Validate())

	cfg.Firebase.ProjectID = "touslux-dev"
	require.Error(t, cfg.Validate())

	cfg.Persistence.DSN = "file::memory:?cache=shared"
	require.NoError(t, cfg.Validate())
}

func TestServerDefaults(t *testing.T) {
	assert.Equal(t, ":8080", Server{}.GetAddress())
	assert.Equal(t, ":3000", Server{Address: ":3000"}.GetAddress())
}

func TestAuthDefaults(t *testing.T) {
	assert.Equal(t, 72, Auth{}.GetTokenExpiration())
	assert.Equal(t, 24, Auth{TokenExpiration: 24}.GetTokenExpiration())
	assert.Equal(t, "user", Auth{}.GetContextKey())
	assert.Empty(t, Auth{}.GetAudience())
}

func TestPersistenceDefaults(t *testing.T) {
	p := Persistence{}

	assert.Equal(t, "sqlite", p.GetDriver())
	assert.Equal(t, 5*time.Second, p.GetPingTimeout())
	assert.Empty(t, p.GetServer())
	assert.Empty(t, p.GetOtelIdentifier())

	p = Persistence{
		Driver:                "postgres",
		Server:                "db.internal:5432",
		DSN:                   "postgres://touslux",
		PingTimeoutExpression: "30s",
		OtelIdentifier:        "catalog-api-db",
	}

	assert.Equal(t, "postgres", p.GetDriver())
	assert.Equal(t, "db.internal:5432", p.GetServer())
	assert.Equal(t, 30*time.Second, p.GetPingTimeout())
	assert.Equal(t, "catalog-api-db", p.GetOtelIdentifier())
}

func TestPersistencePingTimeoutPanicsOnBadExpression(t *testing.T) {
	p := Persistence{PingTimeoutExpression: "not-a-duration"}
	assert.Panics(t, func() { p.GetPingTimeout() })
}
