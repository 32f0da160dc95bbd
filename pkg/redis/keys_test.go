package redis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/billingkit/pkg/redis"
)

func TestKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "billing:usage:org:2025-09", redis.Key("billing", "usage", "org", "2025-09"))
	assert.Equal(t, "usage:org", redis.Key("", "usage", "org"))
	assert.Equal(t, "billing:usage", redis.Key("billing", "", "usage"))
	assert.Equal(t, "billing", redis.Key("billing"))
}
