package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, 8000, cfg.GetInt("server.port", 0))
	assert.Equal(t, "localhost", cfg.Get("database.host"))
	assert.Equal(t, "https://pokeapi.co/api/v2", cfg.Get("pokeapi.base_url"))
	assert.Equal(t, 10*time.Second, cfg.GetDuration("pokeapi.timeout", 0))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9001")
	t.Setenv("DATABASE_NAME", "catalog_test")
	t.Setenv("POKEAPI_TIMEOUT", "3s")

	cfg := FromEnv()

	assert.Equal(t, 9001, cfg.GetInt("server.port", 0))
	assert.Equal(t, "catalog_test", cfg.Get("database.name"))
	assert.Equal(t, 3*time.Second, cfg.GetDuration("pokeapi.timeout", 0))
}

func TestTypedGettersFallBack(t *testing.T) {
	cfg := New()
	cfg.Update(map[string]string{"bad.int": "not-a-number", "bad.duration": "soon"})

	assert.Equal(t, 42, cfg.GetInt("bad.int", 42))
	assert.Equal(t, 42, cfg.GetInt("missing", 42))
	assert.Equal(t, time.Minute, cfg.GetDuration("bad.duration", time.Minute))
}

func TestRequiresRestart(t *testing.T) {
	cfg := FromEnv()
	before := cfg.GetAll()

	cfg.Update(map[string]string{"pokeapi.timeout": "20s"})
	assert.False(t, cfg.RequiresRestart(before))

	cfg.Update(map[string]string{"server.port": "9999"})
	assert.True(t, cfg.RequiresRestart(before))
}
