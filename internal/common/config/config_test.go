package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Admin.ValidationAttempts)
	assert.Equal(t, time.Second, cfg.Admin.ValidationBackoff)
	assert.Equal(t, 15*time.Minute, cfg.Storage.UploadURLTTL)
	assert.Equal(t, "@every 1h", cfg.Usage.CronSpec)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
	assert.Contains(t, cfg.GetDSN(), "dbname=social")
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadClampsAttempts(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
	t.Setenv("ADMIN_VALIDATION_ATTEMPTS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Admin.ValidationAttempts)
}
