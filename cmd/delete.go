package cmd

import (
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <snapshot-id>",
	Short: "Delete a snapshot (not supported)",
	Long: `Deleting a snapshot would require rewriting the history of the
repository, which checkpoint does not do. This command always fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	m, _, err := openProject(nil)
	if err != nil {
		return err
	}
	_, err = m.DeleteSnapshot(commandContext(cmd), args[0]).Wait()
	return err
}
