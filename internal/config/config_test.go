package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "DATABASE_URL", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB", "POSTGRES_HOST",
	"POSTGRES_PORT", "POSTGRES_SSLMODE", "JWT_SECRET", "GO_ENV", "LOG_LEVEL", "ACCESS_TOKEN_TTL",
	"CHECKOUT_TIMEOUT", "INITIAL_BALANCE", "UPLOAD_DIR", "MAX_UPLOAD_BYTES", "REDIS_ADDR",
	"VERIFY_TOKEN_TTL", "RESET_TOKEN_TTL", "SEED_SAMPLE_DATA", "ADMIN_EMAIL", "ADMIN_PASSWORD",
	"PUBLIC_BASE_URL",
}

// 各テストを空の環境から始める
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "dev", cfg.GoEnv)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 5*time.Second, cfg.CheckoutTimeout)
	assert.Equal(t, "10000000", cfg.InitialBalance.String())
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	assert.True(t, cfg.SeedSampleData)
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=storefront sslmode=disable", cfg.DSN())
}

func TestFromEnv_DatabaseURLWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.DSN())
}

func TestFromEnv_ProdRequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("GO_ENV", "prod")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.SeedSampleData)
}

func TestFromEnv_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"POSTGRES_PORT":    "abc",
		"CHECKOUT_TIMEOUT": "5",
		"INITIAL_BALANCE":  "lots",
		"SEED_SAMPLE_DATA": "maybe",
		"GO_ENV":           "staging",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestFromEnv_AdminPair(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADMIN_EMAIL", "admin@example.com")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=9090\nCHECKOUT_TIMEOUT=2s\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("PORT")
		_ = os.Unsetenv("CHECKOUT_TIMEOUT")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.CheckoutTimeout)
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	assert.NoError(t, err)
}
