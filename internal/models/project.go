package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ProjectConfigFile is stored inside the backend metadata directory so it is
// never captured by a snapshot nor overwritten by a restore.
const ProjectConfigFile = "checkpoint.toml"

const (
	DefaultMaxSnapshots       = 50
	DefaultMaxSizeBytes int64 = 5 * 1024 * 1024 * 1024
	Unlimited                 = -1
)

// ProjectConfig holds the settings of one managed game directory
type ProjectConfig struct {
	GameID              string `toml:"game_id"`
	GameName            string `toml:"game_name"`
	AutoSnapshotOnClose bool   `toml:"auto_snapshot_on_close"`
	MaxSnapshots        int    `toml:"max_snapshots"`
	MaxSizeBytes        int64  `toml:"max_size_bytes"`
}

// DefaultProjectConfig returns the settings used when no file exists yet
func DefaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		AutoSnapshotOnClose: true,
		MaxSnapshots:        DefaultMaxSnapshots,
		MaxSizeBytes:        DefaultMaxSizeBytes,
	}
}

// ProjectConfigPath returns the path of the project config for a working directory
func ProjectConfigPath(projectDir string) string {
	return filepath.Join(projectDir, ".git", ProjectConfigFile)
}

// LoadProjectConfig reads the project config, falling back to defaults for a
// missing file or missing keys.
func LoadProjectConfig(projectDir string) (ProjectConfig, error) {
	cfg := DefaultProjectConfig()
	path := ProjectConfigPath(projectDir)
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultProjectConfig(), nil
		}
		return DefaultProjectConfig(), fmt.Errorf("failed to read project config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the project config. The backend metadata directory must exist.
func (c ProjectConfig) Save(projectDir string) error {
	path := ProjectConfigPath(projectDir)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create project config: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to write project config: %w", err)
	}
	return nil
}

// ExceedsSnapshots reports whether count is above the configured limit
func (c ProjectConfig) ExceedsSnapshots(count int) bool {
	return c.MaxSnapshots != Unlimited && count > c.MaxSnapshots
}

// ExceedsSize reports whether size is above the configured limit
func (c ProjectConfig) ExceedsSize(size int64) bool {
	return c.MaxSizeBytes != Unlimited && size > c.MaxSizeBytes
}
