package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pders01/checkpoint/internal/git"
	"github.com/pders01/checkpoint/internal/models"
	"github.com/pders01/checkpoint/internal/snapshot"
)

var saveCmd = &cobra.Command{
	Use:     "save [description]",
	Aliases: []string{"create"},
	Short:   "Create a snapshot of the current game files",
	Long: `Commit every file in the game directory as a new snapshot.

Without a description one is generated as "Snapshot - YYYY-MM-DD HH:MM".
A directory that is not tracked yet is initialized first.

Examples:
  checkpoint save
  checkpoint save "Before the final boss"
  checkpoint create Before installing mods`,
	RunE: runSave,
}

func init() {
	rootCmd.AddCommand(saveCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	m, backend, err := openProject(progressPrinter())
	if err != nil {
		return err
	}

	if !backend.IsInitialized() {
		fmt.Println("No snapshot repository found, initializing...")
		if _, err := m.Initialize(ctx, models.DefaultProjectConfig()).Wait(); err != nil {
			return describeError(err)
		}
	}

	if detached, err := m.IsDetached(ctx).Wait(); err == nil && detached {
		fmt.Println("Note: a restored snapshot is checked out; the new snapshot will not be on the default branch")
		fmt.Println("  Keep its ID to restore it later")
	}

	description := strings.TrimSpace(strings.Join(args, " "))
	snapshot, err := m.CreateSnapshot(ctx, description).Wait()
	if errors.Is(err, git.ErrNothingToCommit) {
		fmt.Println("Nothing to save: no changes since the last snapshot")
		return nil
	}
	if err != nil {
		return describeError(err)
	}

	if snapshot.ID == "" {
		fmt.Println("✓ Snapshot created")
	} else {
		fmt.Printf("✓ Snapshot created: %s\n", snapshot.DisplayText())
		fmt.Printf("  ID: %s\n", snapshot.ShortID())
	}

	warnLimits(ctx, m)
	return nil
}

// warnLimits prints a notice when the project exceeds its configured limits
func warnLimits(ctx context.Context, m *snapshot.Manager) {
	cfg, err := models.LoadProjectConfig(m.Backend().Path())
	if err != nil {
		appLog.Error(err, "cannot read project config")
		return
	}
	stats, err := m.Stats(ctx, cfg).Wait()
	if err != nil {
		appLog.V(1).Info("skipping limit check", "error", err.Error())
		return
	}
	if stats.OverSnapshotLimit {
		fmt.Printf("  Warning: %d snapshots exceed the limit of %d\n", stats.TotalSnapshots, cfg.MaxSnapshots)
	}
	if stats.OverSizeLimit {
		fmt.Printf("  Warning: repository size %s exceeds the limit of %s\n", formatBytes(stats.RepositoryBytes), formatBytes(cfg.MaxSizeBytes))
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
