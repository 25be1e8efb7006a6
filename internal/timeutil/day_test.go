package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDay(t *testing.T) {
	in := time.Date(2025, 3, 10, 17, 45, 12, 500, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), StartOfDay(in))
}

func TestStartOfDayConvertsToUTC(t *testing.T) {
	// 01:30 IST on March 11 is still March 10 in UTC
	ist := time.FixedZone("IST", 5*3600+1800)
	in := time.Date(2025, 3, 11, 1, 30, 0, 0, ist)

	got := StartOfDay(in)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestEndOfDay(t *testing.T) {
	in := time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC)
	got := EndOfDay(in)
	assert.Equal(t, 23, got.Hour())
	assert.Equal(t, 59, got.Minute())
	assert.True(t, SameDay(in, got))
}

func TestSameDay(t *testing.T) {
	a := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	b := time.Date(2025, 3, 10, 23, 59, 59, 0, time.UTC)
	c := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(b, c))
}

func TestSameDayAcrossZones(t *testing.T) {
	// Both instants are March 10 in UTC even though the second reads
	// March 11 in its local zone
	ist := time.FixedZone("IST", 5*3600+1800)
	a := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	b := time.Date(2025, 3, 11, 2, 0, 0, 0, ist)

	assert.True(t, SameDay(a, b))
}

func TestNowIsUTC(t *testing.T) {
	assert.Equal(t, time.UTC, Now().Location())
}
