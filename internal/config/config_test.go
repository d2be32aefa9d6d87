package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, BackendPostgres, cfg.BackendDriver)
	assert.Equal(t, LocalStoreSQLite, cfg.LocalStoreDriver)
	assert.Equal(t, 10*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 5.0, cfg.AuthRateLimitRPS)
	assert.Equal(t, 10, cfg.AuthRateLimitBurst)
}

func TestLoadFrom_RESTBackend(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"BACKEND_DRIVER":     "rest",
		"BACKEND_URL":        "https://example.supabase.co",
		"BACKEND_API_KEY":    "anon",
		"LOCAL_STORE_DRIVER": "redis",
		"REMOTE_TIMEOUT":     "3s",
	})
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.RemoteTimeout)

	_, err = LoadFrom(map[string]string{"BACKEND_DRIVER": "rest"})
	assert.ErrorContains(t, err, "BACKEND_URL")
}

func TestLoadFrom_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown backend":  {"BACKEND_DRIVER": "mongo"},
		"unknown store":    {"LOCAL_STORE_DRIVER": "leveldb"},
		"bad port":         {"HTTP_PORT": "70000"},
		"zero timeout":     {"REMOTE_TIMEOUT": "0s"},
		"bad sample rate":  {"OTEL_SAMPLE_RATE": "2"},
		"unparsable value": {"REMOTE_TIMEOUT": "soon"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(vars)
			assert.Error(t, err)
		})
	}
}

func TestLoadFrom_ProductionRequiresStrongSecret(t *testing.T) {
	_, err := LoadFrom(map[string]string{"ENVIRONMENT": "production"})
	assert.ErrorContains(t, err, "JWT_SECRET")

	_, err = LoadFrom(map[string]string{"ENVIRONMENT": "production", "JWT_SECRET": "short"})
	assert.ErrorContains(t, err, "at least 32")

	_, err = LoadFrom(map[string]string{"ENVIRONMENT": "production", "JWT_SECRET": strings.Repeat("k", 32)})
	assert.NoError(t, err)
}
