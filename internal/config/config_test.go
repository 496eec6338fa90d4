package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "data/words/words.json", cfg.WordsFile)
	assert.Equal(t, "file", cfg.StoreDriver)
	assert.Equal(t, "data/users", cfg.UsersDir)
	assert.Equal(t, 5, cfg.PracticeWords)
	assert.False(t, cfg.PracticeFilterByLevel)
	assert.Equal(t, 3*time.Second, cfg.MismatchDelay)
	assert.Equal(t, 2*time.Hour, cfg.GameIdleTTL)
	assert.Equal(t, 3, cfg.PersistAttempts)
	assert.Error(t, cfg.RequireToken())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("VOCABBOT_TELEGRAM_TOKEN", "123:abc")
	t.Setenv("VOCABBOT_STORE_DRIVER", "sqlite")
	t.Setenv("VOCABBOT_PRACTICE_WORDS", "8")
	t.Setenv("VOCABBOT_MISMATCH_DELAY", "1500ms")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.NoError(t, cfg.RequireToken())
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, 8, cfg.PracticeWords)
	assert.Equal(t, 1500*time.Millisecond, cfg.MismatchDelay)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("VOCABBOT_LOG_LEVEL=debug\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("VOCABBOT_LOG_LEVEL") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string][2]string{
		"unknown driver":       {"VOCABBOT_STORE_DRIVER", "mongo"},
		"practice too large":   {"VOCABBOT_PRACTICE_WORDS", "500"},
		"bad log level":        {"VOCABBOT_LOG_LEVEL", "loud"},
		"postgres without dsn": {"VOCABBOT_STORE_DRIVER", "postgres"},
		"unparseable duration": {"VOCABBOT_GAME_IDLE_TTL", "soon"},
	}

	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}
