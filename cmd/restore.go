package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pders01/checkpoint/internal/git"
	"github.com/pders01/checkpoint/internal/snapshot"
)

var restoreLatest bool

var restoreCmd = &cobra.Command{
	Use:   "restore <snapshot-id>",
	Short: "Bring the game files back to a snapshot",
	Long: `Restore the game directory to the state of a snapshot.

Pending changes are committed first as "[AUTO] Safety backup before restore",
so the current state can always be restored again later.

Examples:
  checkpoint restore 3f9c2a1b
  checkpoint restore --latest`,
	Args: func(cmd *cobra.Command, args []string) error {
		if restoreLatest {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runRestore,
}

func init() {
	rootCmd.AddCommand(restoreCmd)

	restoreCmd.Flags().BoolVar(&restoreLatest, "latest", false, "Restore the newest snapshot")
}

func runRestore(cmd *cobra.Command, args []string) error {
	m, _, err := openInitializedProject(progressPrinter())
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	var task *snapshot.Task[snapshot.RestoreOutcome]
	if restoreLatest {
		task = m.RestoreLatest(ctx)
	} else {
		task = m.RestoreSnapshot(ctx, args[0])
	}

	outcome, err := task.Wait()
	printBackup(outcome)
	if errors.Is(err, git.ErrNotFound) && restoreLatest && outcome.RevisionID == "" {
		return fmt.Errorf("no snapshots to restore")
	}
	if err != nil {
		return describeError(err)
	}

	fmt.Printf("✓ Restored snapshot %s\n", truncate(outcome.RevisionID, 12))
	return nil
}

func printBackup(outcome snapshot.RestoreOutcome) {
	switch {
	case outcome.BackedUp:
		fmt.Println("✓ Pending changes saved as a safety backup")
	case outcome.BackupErr != nil:
		fmt.Printf("Warning: safety backup failed, pending changes were not saved: %v\n", outcome.BackupErr)
	case !outcome.ChangesSeen && outcome.State != snapshot.RestoreIdle:
		fmt.Println("No pending changes, no safety backup needed")
	}
}
