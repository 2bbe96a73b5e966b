package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rheyna/duncord/internal/config"
)

func TestNewHarvestConfigDefaults(t *testing.T) {
	cfg, err := config.NewHarvestConfig()
	require.NoError(t, err)

	assert.Equal(t, []int{1}, cfg.Categories)
	assert.Equal(t, 50*time.Millisecond, cfg.Cooldown)
	assert.Equal(t, 15, cfg.Retry.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Retry.Backoff)
	assert.Equal(t, 12, cfg.Linkage.RecentMonths)
	assert.Equal(t, 24, cfg.Linkage.SearchBudget)
	require.Len(t, cfg.Linkage.GapRanges, 2)
	assert.Equal(t, 201703, cfg.Linkage.GapRanges[0].From)
	assert.Equal(t, 201611, cfg.Linkage.GapRanges[0].To)
}

func TestNewHarvestConfigFromEnv(t *testing.T) {
	t.Setenv("HARVEST_CATEGORIES", "3, 5, 8")
	t.Setenv("HARVEST_COOLDOWN", "200ms")
	t.Setenv("HARVEST_MAX_ATTEMPTS", "5")
	t.Setenv("HARVEST_BACKOFF", "500ms")

	cfg, err := config.NewHarvestConfig()
	require.NoError(t, err)

	assert.Equal(t, []int{3, 5, 8}, cfg.Categories)
	assert.Equal(t, 200*time.Millisecond, cfg.Cooldown)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.Backoff)
}

func TestHarvestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *config.HarvestConfig)
	}{
		{
			name:   "non-positive category",
			mutate: func(cfg *config.HarvestConfig) { cfg.Categories = []int{0} },
		},
		{
			name:   "inverted gap range",
			mutate: func(cfg *config.HarvestConfig) { cfg.Linkage.GapRanges[0] = config.GapEntry{From: 201611, To: 201703} },
		},
		{
			name:   "gap before service launch",
			mutate: func(cfg *config.HarvestConfig) { cfg.Linkage.GapRanges[0] = config.GapEntry{From: 201201, To: 201101} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.NewHarvestConfig()
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestHarvestConfigMapping(t *testing.T) {
	cfg, err := config.NewHarvestConfig()
	require.NoError(t, err)

	cc := cfg.ClientConfig("https://ranking.example.com")
	assert.Equal(t, "https://ranking.example.com", cc.BaseURL)
	assert.Equal(t, cfg.Cooldown, cc.Cooldown)
	assert.Equal(t, cfg.Retry.MaxAttempts, cc.Retry.MaxAttempts)

	lc := cfg.LinkageConfig()
	assert.Equal(t, cfg.Linkage.RecentMonths, lc.RecentMonths)
	assert.Equal(t, cfg.Linkage.SearchBudget, lc.SearchBudget)
	require.Len(t, lc.GapRanges, len(cfg.Linkage.GapRanges))
	assert.Equal(t, cfg.Linkage.GapRanges[0].From, lc.GapRanges[0].From)
}
