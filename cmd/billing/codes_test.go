package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/pkg/limits"
)

func TestReadCodes(t *testing.T) {
	t.Parallel()

	t.Run("default and explicit tiers", func(t *testing.T) {
		t.Parallel()

		in := "# exported batch\nAS-AAAA-BBBB\nAS-CCCC-DDDD, 3\n\nAS-EEEE-FFFF,\n"
		batch, err := readCodes(strings.NewReader(in), 2)
		require.NoError(t, err)
		require.Len(t, batch, 3)

		assert.Equal(t, "AS-AAAA-BBBB", batch[0].Code)
		assert.Equal(t, limits.AppsumoTier(2), batch[0].Tier)
		assert.Equal(t, limits.AppsumoTier(3), batch[1].Tier)
		assert.Equal(t, limits.AppsumoTier(2), batch[2].Tier)
	})

	t.Run("malformed tier", func(t *testing.T) {
		t.Parallel()

		_, err := readCodes(strings.NewReader("AS-AAAA,two\n"), 1)
		assert.ErrorContains(t, err, "line 1")
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		batch, err := readCodes(strings.NewReader(""), 1)
		require.NoError(t, err)
		assert.Empty(t, batch)
	})
}
