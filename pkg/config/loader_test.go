package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/pkg/config"
)

type testConfig struct {
	Name    string        `env:"NAME" envDefault:"billing"`
	Port    int           `env:"PORT" envDefault:"8080"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"5s"`
	Origins []string      `env:"ORIGINS" envSeparator:","`
	DSN     string        `env:"DSN,required"`
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("defaults and values", func(t *testing.T) {
		t.Parallel()

		cfg, err := config.Load[testConfig](config.WithEnviron(map[string]string{
			"DSN":     "postgres://localhost/billing",
			"PORT":    "9090",
			"ORIGINS": "https://a.example,https://b.example",
		}))
		require.NoError(t, err)
		assert.Equal(t, "billing", cfg.Name)
		assert.Equal(t, 9090, cfg.Port)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins)
	})

	t.Run("missing required", func(t *testing.T) {
		t.Parallel()

		_, err := config.Load[testConfig](config.WithEnviron(map[string]string{}))
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Parallel()

		_, err := config.Load[testConfig](config.WithEnviron(map[string]string{"DSN": "x", "PORT": "eighty"}))
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("prefix", func(t *testing.T) {
		t.Parallel()

		cfg, err := config.Load[testConfig](
			config.WithPrefix("BILLING_"),
			config.WithEnviron(map[string]string{"BILLING_DSN": "x", "DSN": "ignored"}),
		)
		require.NoError(t, err)
		assert.Equal(t, "x", cfg.DSN)
	})
}

func TestLoad_EnvFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DSN=from-file\nNAME=file-name\n"), 0o600))

	cfg, err := config.Load[testConfig](
		config.WithEnviron(map[string]string{"NAME": "from-env"}),
		config.WithEnvFiles(path, filepath.Join(dir, "missing.env")),
	)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.DSN)
	assert.Equal(t, "from-env", cfg.Name)
}

func TestMustLoad_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		config.MustLoad[testConfig](config.WithEnviron(map[string]string{}))
	})
}
