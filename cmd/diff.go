package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pders01/checkpoint/internal/git"
)

var (
	diffJSON bool
	diffToon bool
)

var diffCmd = &cobra.Command{
	Use:   "diff <snapshot-id>",
	Short: "Show files that differ from a snapshot",
	Long: `Compare the current game files with a snapshot and list what changed.

Status letters: A added, M modified, D deleted, R renamed.

Example:
  checkpoint diff 3f9c2a1b`,
	Args: cobra.ExactArgs(1),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().BoolVar(&diffJSON, "json", false, "Output as JSON")
	diffCmd.Flags().BoolVar(&diffToon, "toon", false, "Output in LLM-friendly toon format")
}

type snapshotDiff struct {
	Snapshot string           `json:"snapshot"`
	Files    []git.FileChange `json:"files"`
	Added    int              `json:"added"`
	Modified int              `json:"modified"`
	Deleted  int              `json:"deleted"`
}

func runDiff(cmd *cobra.Command, args []string) error {
	m, _, err := openInitializedProject(nil)
	if err != nil {
		return err
	}

	changes, err := m.ChangedFiles(commandContext(cmd), args[0]).Wait()
	if err != nil {
		return describeError(err)
	}

	diff := snapshotDiff{Snapshot: args[0], Files: changes}
	for _, c := range changes {
		switch c.Status {
		case "A":
			diff.Added++
		case "D":
			diff.Deleted++
		default:
			diff.Modified++
		}
	}

	if done, err := printStructured(diff, diffJSON, diffToon); done {
		return err
	}

	if len(changes) == 0 {
		fmt.Printf("No differences from snapshot %s\n", truncate(args[0], 12))
		return nil
	}

	fmt.Printf("Changes since snapshot %s:\n\n", truncate(args[0], 12))
	for _, c := range changes {
		fmt.Printf("  %s  %s\n", c.Status, c.Path)
	}
	fmt.Println()
	fmt.Printf("%d added, %d modified, %d deleted\n", diff.Added, diff.Modified, diff.Deleted)
	return nil
}
