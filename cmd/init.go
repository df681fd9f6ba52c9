package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pders01/checkpoint/internal/models"
)

var (
	initGameID   string
	initGameName string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Start tracking snapshots for a game directory",
	Long: `Create the snapshot repository for a game directory.

This command:
  - Initializes the repository on the default branch with a fixed identity
  - Records an empty bootstrap revision that is never listed
  - Writes the project settings to .git/checkpoint.toml if missing

Running it again on an initialized directory is harmless.

Examples:
  checkpoint init
  checkpoint init --game-id skyrim_se --game-name "Skyrim Special Edition"`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initGameID, "game-id", "", "Identifier of the game preset")
	initCmd.Flags().StringVar(&initGameName, "game-name", "", "Display name of the game")
}

func runInit(cmd *cobra.Command, args []string) error {
	m, backend, err := openProject(progressPrinter())
	if err != nil {
		return err
	}

	already := backend.IsInitialized()

	cfg := models.DefaultProjectConfig()
	cfg.GameID = initGameID
	cfg.GameName = initGameName

	if _, err := m.Initialize(commandContext(cmd), cfg).Wait(); err != nil {
		return describeError(err)
	}

	if already {
		fmt.Printf("Already initialized: %s\n", backend.Path())
		return nil
	}

	fmt.Printf("✓ Initialized checkpoint repository in %s\n", backend.Path())
	fmt.Printf("  Settings: %s\n", models.ProjectConfigPath(backend.Path()))
	fmt.Println("  You can now use: checkpoint save \"description\"")
	return nil
}
