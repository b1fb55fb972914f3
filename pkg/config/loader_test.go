package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dariomolina/cintelink-challenge/pkg/config"
)

type testConfig struct {
	Addr     string        `env:"TEST_ADDR" envDefault:":8080"`
	Secret   string        `env:"TEST_SECRET,required"`
	Interval time.Duration `env:"TEST_INTERVAL" envDefault:"5s"`
	Workers  int           `env:"TEST_WORKERS" envDefault:"4"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults apply", func(t *testing.T) {
		t.Setenv("TEST_SECRET", "hush")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, "hush", cfg.Secret)
		assert.Equal(t, 5*time.Second, cfg.Interval)
		assert.Equal(t, 4, cfg.Workers)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("TEST_SECRET", "hush")
		t.Setenv("TEST_ADDR", ":9090")
		t.Setenv("TEST_INTERVAL", "250ms")
		t.Setenv("TEST_WORKERS", "16")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, ":9090", cfg.Addr)
		assert.Equal(t, 250*time.Millisecond, cfg.Interval)
		assert.Equal(t, 16, cfg.Workers)
	})

	t.Run("missing required value", func(t *testing.T) {
		var cfg testConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("unparsable value", func(t *testing.T) {
		t.Setenv("TEST_SECRET", "hush")
		t.Setenv("TEST_WORKERS", "many")

		var cfg testConfig
		assert.ErrorIs(t, config.Load(&cfg), config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		assert.ErrorIs(t, config.Load[testConfig](nil), config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on missing required value", func(t *testing.T) {
		var cfg testConfig
		assert.Panics(t, func() { config.MustLoad(&cfg) })
	})

	t.Run("succeeds with environment set", func(t *testing.T) {
		t.Setenv("TEST_SECRET", "hush")

		var cfg testConfig
		assert.NotPanics(t, func() { config.MustLoad(&cfg) })
		assert.Equal(t, "hush", cfg.Secret)
	})
}
