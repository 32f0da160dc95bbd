package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/pkg/config"
)

func TestAppConfig_PeriodCacheSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"default", "", 1024},
		{"disabled", "0", 0},
		{"custom", "64", 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			environ := map[string]string{"PG_CONN_URL": "postgres://localhost:5432/billing"}
			if tt.value != "" {
				environ["USAGE_PERIOD_CACHE_SIZE"] = tt.value
			}

			cfg, err := config.Load[appConfig](config.WithEnviron(environ))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.PeriodCacheSize)
		})
	}
}
