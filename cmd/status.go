package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the game files changed since the last snapshot",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	m, backend, err := openInitializedProject(nil)
	if err != nil {
		return err
	}

	dirty, err := m.HasUncommittedChanges(commandContext(cmd)).Wait()
	if err != nil {
		return describeError(err)
	}

	fmt.Printf("Directory: %s\n", backend.Path())
	if dirty {
		fmt.Println("Uncommitted changes: yes")
		fmt.Println("  Run 'checkpoint save' to keep them")
	} else {
		fmt.Println("Uncommitted changes: no")
	}
	return nil
}
