package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TOXICITY_THRESHOLD", "0.35")
	t.Setenv("RATE_LIMIT_POST", "15s")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 0.35, cfg.ToxicityThreshold, 1e-9)
	assert.Equal(t, 15*time.Second, cfg.RateLimitPost)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.NotEmpty(t, cfg.Port)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("MODERATION_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MODERATION_TIMEOUT")
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	t.Setenv("TIMEZONE", "Mars/Olympus_Mons")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TIMEZONE")
}
