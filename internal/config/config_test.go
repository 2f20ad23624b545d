package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsMissingFileUsesDefaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.Equal(t, 500, s.Filtering.EngagementThreshold.MinLikes)
	assert.Equal(t, 50, s.Filtering.EngagementThreshold.MinReposts)
	assert.Equal(t, 10, s.Processing.PostsToAnalyze)
	assert.Equal(t, 5, s.Processing.PostsToRewrite)
	assert.False(t, s.Processing.GenerateImages)
	assert.Equal(t, time.Second, s.AccountDelay())
	assert.Equal(t, 100*time.Millisecond, s.ItemDelay())
}

func TestLoadSettingsPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"filtering": {"engagement_threshold": {"min_likes": 1000}},
		"processing": {"generate_images": true}
	}`), 0o644))

	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, 1000, s.Filtering.EngagementThreshold.MinLikes)
	assert.Equal(t, 50, s.Filtering.EngagementThreshold.MinReposts) // default fills the gap
	assert.True(t, s.Processing.GenerateImages)
	assert.Equal(t, 10, s.Processing.PostsToAnalyze)
}

func TestLoadSettingsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{broken`), 0o644))

	s, err := LoadSettings(path)
	require.Error(t, err)
	// Defaults still returned so the caller can proceed deliberately.
	assert.Equal(t, 500, s.Filtering.EngagementThreshold.MinLikes)
}

func TestLoadAccounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"benchmark_accounts": [
			{"username": "alice", "category": "ai-side-hustle"},
			{"username": "bob", "category": "fintech"}
		]
	}`), 0o644))

	accounts, err := LoadAccounts(path)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "alice", accounts[0].Username)
	assert.Equal(t, "fintech", accounts[1].Category)
}
