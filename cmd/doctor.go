package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pders01/checkpoint/internal/config"
	"github.com/pders01/checkpoint/internal/git"
	"github.com/pders01/checkpoint/internal/models"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that git is usable and show the project state",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	binary := locateGit()
	fmt.Printf("Git executable: %s\n", binary)

	opts := config.BackendOptions()
	raw, version, err := git.ProbeVersion(commandContext(cmd), git.NewProcessExecutor(binary, appLog))
	if err != nil {
		return describeError(fmt.Errorf("cannot run git: %w", err))
	}
	fmt.Printf("Git version:    %s\n", raw)
	if version.Less(git.MinVersion) {
		fmt.Printf("  Warning: git %s or newer is recommended\n", git.MinVersion)
	}

	dir, err := resolveProjectDir()
	if err != nil {
		return err
	}
	backend := git.NewCLI(git.Handle{Dir: dir, Executable: binary}, opts, appLog)
	if !backend.IsInitialized() {
		fmt.Printf("Project:        %s (not initialized)\n", dir)
		return nil
	}
	fmt.Printf("Project:        %s\n", dir)

	cfg, err := models.LoadProjectConfig(dir)
	if err != nil {
		fmt.Printf("  Warning: %v\n", err)
		return nil
	}
	if cfg.GameName != "" {
		fmt.Printf("Game:           %s\n", cfg.GameName)
	}
	fmt.Printf("Autosave on close: %t\n", cfg.AutoSnapshotOnClose)
	fmt.Println("✓ Ready")
	return nil
}
