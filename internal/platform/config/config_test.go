package config

import (
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	for _, name := range []string{"HTTP_PORT", "STORAGE_DRIVER", "JWT_TTL", "VOTE_TIMEOUT", "USER_PAGE_SIZE", "LOG_LEVEL", "JWT_SECRET"} {
		unsetEnv(t, name)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5*time.Second, cfg.VoteTimeout)
	assert.Equal(t, 20, cfg.UserPageSize)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.JWTSecret)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcriptor.ini")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_PORT = 9090\nUSER_PAGE_SIZE = 50\nSTORAGE_DRIVER = memory\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HTTP_PORT", "7070")
	unsetEnv(t, "USER_PAGE_SIZE")
	unsetEnv(t, "STORAGE_DRIVER")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.HTTPPort)
	assert.Equal(t, 50, cfg.UserPageSize)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
}

func TestLoadDecodesSecret(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	secret := []byte("0123456789abcdef0123456789abcdef")
	t.Setenv("JWT_SECRET", base64.StdEncoding.EncodeToString(secret))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, secret, cfg.JWTSecret)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"JWT_SECRET":     "not base64!",
		"VOTE_TIMEOUT":   "soon",
		"USER_PAGE_SIZE": "0",
		"STORAGE_DRIVER": "sqlite",
		"LOG_FORMAT":     "xml",
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("CONFIG_FILE", "")
			t.Setenv(name, value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestParseBool(t *testing.T) {
	assert.True(t, parseBool("yes", false))
	assert.False(t, parseBool("off", true))
	assert.True(t, parseBool("maybe", true))
	assert.False(t, parseBool("", false))
}

// unsetEnv clears name for the test and restores it afterwards.
func unsetEnv(t *testing.T, name string) {
	t.Helper()
	t.Setenv(name, "")
	require.NoError(t, os.Unsetenv(name))
}
