package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAutomaticDescription(t *testing.T) {
	tests := map[string]struct {
		description string
		want        bool
	}{
		"safety backup":   {description: SafetyBackupDescription, want: true},
		"marker only":     {description: "[AUTO]", want: true},
		"user text":       {description: "Before mods", want: false},
		"marker mid text": {description: "note [AUTO] later", want: false},
		"lowercase":       {description: "[auto] nope", want: false},
		"empty":           {description: "", want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAutomaticDescription(tt.description))
		})
	}
}

func TestDefaultDescription(t *testing.T) {
	now := time.Date(2024, 6, 1, 14, 30, 59, 0, time.Local)
	assert.Equal(t, "Snapshot - 2024-06-01 14:30", DefaultDescription(now))
}

func TestAutosaveDescriptionIsAutomatic(t *testing.T) {
	desc := AutosaveDescription(time.Date(2024, 6, 1, 9, 5, 0, 0, time.Local))
	assert.Equal(t, "[AUTO] Autosave - 2024-06-01 09:05", desc)
	assert.True(t, IsAutomaticDescription(desc))
}

func TestSnapshotDisplayText(t *testing.T) {
	s := Snapshot{
		ID:          "0123456789abcdef",
		Description: "Boss fight",
		Timestamp:   time.Date(2025, 1, 2, 3, 4, 0, 0, time.Local),
	}
	assert.Equal(t, "2025-01-02 03:04 - Boss fight", s.DisplayText())
	assert.Equal(t, "01234567", s.ShortID())
	assert.Equal(t, "abc", Snapshot{ID: "abc"}.ShortID())
}

func TestProjectConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))

	cfg, err := LoadProjectConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultProjectConfig(), cfg)

	cfg.GameID = "skyrim_se"
	cfg.GameName = "Skyrim Special Edition"
	cfg.MaxSnapshots = Unlimited
	require.NoError(t, cfg.Save(dir))

	loaded, err := LoadProjectConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadProjectConfigPartialFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))
	require.NoError(t, os.WriteFile(ProjectConfigPath(dir), []byte("game_name = \"Doom\"\n"), 0644))

	cfg, err := LoadProjectConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "Doom", cfg.GameName)
	assert.True(t, cfg.AutoSnapshotOnClose)
	assert.Equal(t, DefaultMaxSnapshots, cfg.MaxSnapshots)
}

func TestLoadProjectConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))
	require.NoError(t, os.WriteFile(ProjectConfigPath(dir), []byte("max_snapshots = \"many\"\n"), 0644))

	_, err := LoadProjectConfig(dir)
	assert.Error(t, err)
}

func TestProjectConfigLimits(t *testing.T) {
	cfg := DefaultProjectConfig()
	assert.False(t, cfg.ExceedsSnapshots(DefaultMaxSnapshots))
	assert.True(t, cfg.ExceedsSnapshots(DefaultMaxSnapshots+1))
	assert.True(t, cfg.ExceedsSize(DefaultMaxSizeBytes+1))

	cfg.MaxSnapshots = Unlimited
	cfg.MaxSizeBytes = Unlimited
	assert.False(t, cfg.ExceedsSnapshots(1_000_000))
	assert.False(t, cfg.ExceedsSize(1<<60))
}
