package services

import (
	"testing"

	"lead-backend/internal/cache"

	"github.com/stretchr/testify/assert"
)

func TestConversionRate(t *testing.T) {
	assert.Equal(t, 0.0, conversionRate(0, 0))
	assert.Equal(t, 0.0, conversionRate(5, 0))
	assert.Equal(t, 0.0, conversionRate(0, 10))
	assert.Equal(t, 50.0, conversionRate(5, 10))
	assert.Equal(t, 100.0, conversionRate(10, 10))
	assert.InDelta(t, 33.33, conversionRate(1, 3), 0.01)
}

func TestStatsCacheKeyVariesByCaller(t *testing.T) {
	assert.Equal(t, cache.DashboardStatsKey, statsCacheKey(1, true))
	assert.Equal(t, cache.DashboardStatsKey, statsCacheKey(99, true))

	broker7 := statsCacheKey(7, false)
	broker8 := statsCacheKey(8, false)
	assert.Equal(t, "dashboard:stats:broker:7", broker7)
	assert.NotEqual(t, broker7, broker8)
	assert.NotEqual(t, cache.DashboardStatsKey, broker7)
}
