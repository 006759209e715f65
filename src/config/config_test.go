package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "RULES_DIR", "AUTH_REQUIRED", "RESULT_CACHE_TTL", "ALLOWED_ORIGINS", "DEFAULT_TAX_YEAR"} {
		// Setenv registers the restore; Unsetenv makes the variable absent for this test.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "", cfg.RulesDir)
	assert.False(t, cfg.AuthRequired)
	assert.Equal(t, 15*time.Minute, cfg.ResultCacheTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, 2025, cfg.DefaultTaxYear)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("AUTH_REQUIRED", "true")
	t.Setenv("RESULT_CACHE_TTL", "2m")
	t.Setenv("RATE_LIMIT_PER_SECOND", "2.5")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("DEFAULT_TAX_YEAR", "2024")
	t.Setenv("MAX_REQUEST_BODY_BYTES", "not-a-number")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.AuthRequired)
	assert.Equal(t, 2*time.Minute, cfg.ResultCacheTTL)
	assert.Equal(t, 2.5, cfg.RateLimitPerSecond)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 2024, cfg.DefaultTaxYear)
	assert.Equal(t, int64(1<<20), cfg.MaxRequestBodyBytes)
}
