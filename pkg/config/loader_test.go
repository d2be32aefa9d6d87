package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Port    int      `env:"HTTP_PORT" envDefault:"8080"`
	Level   string   `env:"LOG_LEVEL" envDefault:"info"`
	Brokers []string `env:"BROKERS" envSeparator:","`
}

func TestLoadFrom_Defaults(t *testing.T) {
	var cfg sample
	require.NoError(t, LoadFrom(&cfg, map[string]string{}))

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.Level)
	assert.Empty(t, cfg.Brokers)
}

func TestLoadFrom_Overrides(t *testing.T) {
	var cfg sample
	err := LoadFrom(&cfg, map[string]string{
		"HTTP_PORT": "9000",
		"LOG_LEVEL": "debug",
		"BROKERS":   "a:9092,b:9092",
	})
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Brokers)
}

func TestLoadFrom_InvalidValue(t *testing.T) {
	var cfg sample
	err := LoadFrom(&cfg, map[string]string{"HTTP_PORT": "not-a-number"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
