package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/config"
	"github.com/dmitrymomot/authkit/pkg/totp"
)

type sample struct {
	Name     string        `env:"SAMPLE_NAME" envDefault:"default"`
	Count    int           `env:"SAMPLE_COUNT" envDefault:"3"`
	Timeout  time.Duration `env:"SAMPLE_TIMEOUT" envDefault:"5s"`
	Required string        `env:"SAMPLE_REQUIRED,required"`
}

func TestLoad_FromMap(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load[sample](config.WithEnvironment(map[string]string{
		"SAMPLE_NAME":     "custom",
		"SAMPLE_REQUIRED": "yes",
	}))
	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.Name)
	assert.Equal(t, 3, cfg.Count)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "yes", cfg.Required)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Parallel()

	_, err := config.Load[sample](config.WithEnvironment(map[string]string{}))
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Parallel()

	_, err := config.Load[sample](config.WithEnvironment(map[string]string{
		"SAMPLE_REQUIRED": "yes",
		"SAMPLE_COUNT":    "many",
	}))
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoad_Prefix(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load[sample](
		config.WithPrefix("APP_"),
		config.WithEnvironment(map[string]string{"APP_SAMPLE_REQUIRED": "prefixed"}),
	)
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.Required)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SAMPLE_REQUIRED=from-file\nSAMPLE_COUNT=7\n"), 0o600))
	t.Setenv("SAMPLE_COUNT", "9")
	t.Cleanup(func() { _ = os.Unsetenv("SAMPLE_REQUIRED") })

	cfg, err := config.Load[sample](config.WithEnvFiles(path, filepath.Join(t.TempDir(), "missing.env")))
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Required)
	assert.Equal(t, 9, cfg.Count, "process environment wins over the file")
}

func TestLoad_TOTPConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load[totp.Config](config.WithEnvironment(map[string]string{}))
	require.NoError(t, err)
	assert.Equal(t, "AuthKit", cfg.Issuer)
	assert.Equal(t, totp.DefaultWindow, cfg.Window)
	assert.Equal(t, totp.DefaultStep, cfg.Step)
	assert.Equal(t, totp.DefaultDigits, cfg.Digits)
	assert.Empty(t, cfg.EncryptionKey)
}

func TestMustLoad_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		config.MustLoad[sample](config.WithEnvironment(map[string]string{}))
	})
}
