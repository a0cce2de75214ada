package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsExpired(t *testing.T) {
	assert.False(t, IsExpired(0), "zero means no expiry")
	assert.True(t, IsExpired(time.Now().Add(-time.Hour).Unix()))
	assert.False(t, IsExpired(time.Now().Add(time.Hour).Unix()))
}

func TestIsFutureTime(t *testing.T) {
	assert.True(t, IsFutureTime(time.Now().Add(time.Hour).Unix()))
	assert.False(t, IsFutureTime(time.Now().Add(-time.Hour).Unix()))
	assert.False(t, IsFutureTime(0))
}

func TestIsWithinAllowedWindow(t *testing.T) {
	assert.True(t, IsWithinAllowedWindow(time.Now().Add(-5*time.Minute).Unix(), 60))
	assert.False(t, IsWithinAllowedWindow(time.Now().Add(-2*time.Hour).Unix(), 60))
	assert.False(t, IsWithinAllowedWindow(0, 60))
}

func TestEpochRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	assert.Equal(t, now.Unix(), TimeToEpoch(EpochToTime(now.Unix())))
}

func TestParseTime_RoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second)

	parsed, err := ParseTime(FormatTime(now))

	assert.NoError(t, err)
	assert.True(t, now.Equal(parsed))
}
