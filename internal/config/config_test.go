package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 100, cfg.MaxProfilesPerDay)
	assert.Equal(t, 24*time.Hour, cfg.RateLimitWindow)
	assert.Equal(t, 2500*time.Millisecond, cfg.ExtractionDelay)
	assert.Equal(t, 5, cfg.MinRequiredProfile)
	assert.True(t, cfg.BrowserHeadless)
	assert.NotEmpty(t, cfg.UserAgent)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_PROFILES_PER_DAY", "25")
	t.Setenv("EXTRACTION_DELAY", "1s")
	t.Setenv("BROWSER_HEADLESS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 25, cfg.MaxProfilesPerDay)
	assert.Equal(t, time.Second, cfg.ExtractionDelay)
	assert.False(t, cfg.BrowserHeadless)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("EXTRACTION_DELAY", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 2500*time.Millisecond, cfg.ExtractionDelay)
}

func TestValidate_RejectsBadRanges(t *testing.T) {
	cfg := &Config{Port: 0, MaxProfilesPerDay: 100, MinRequiredProfile: 5}
	assert.Error(t, cfg.Validate())

	cfg = &Config{Port: 8000, MaxProfilesPerDay: 0, MinRequiredProfile: 5}
	assert.Error(t, cfg.Validate())

	cfg = &Config{Port: 8000, MaxProfilesPerDay: 100, MinRequiredProfile: 0}
	assert.Error(t, cfg.Validate())
}
