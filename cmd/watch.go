package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pders01/checkpoint/internal/autosave"
	"github.com/pders01/checkpoint/internal/config"
	"github.com/pders01/checkpoint/internal/models"
	"github.com/pders01/checkpoint/internal/snapshot"
)

var (
	watchDebounce time.Duration
	watchSchedule string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Take automatic snapshots while you play",
	Long: `Watch the game directory and create "[AUTO] Autosave" snapshots.

A snapshot is taken once files stop changing for the debounce period,
and optionally on a cron schedule. When the session ends with Ctrl-C a
final autosave runs if auto_snapshot_on_close is enabled for the project.

Examples:
  checkpoint watch
  checkpoint watch --debounce 1m
  checkpoint watch --debounce 0 --schedule "@every 15m"`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "Quiet period after changes (0 disables watching, default from autosave.debounce)")
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "", "Cron schedule for periodic autosaves (default from autosave.schedule)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	m, backend, err := openInitializedProject(nil)
	if err != nil {
		return err
	}

	cfg, err := models.LoadProjectConfig(backend.Path())
	if err != nil {
		return err
	}

	opts := autosave.Options{
		Debounce:    config.AutosaveDebounce(),
		Schedule:    config.AutosaveSchedule(),
		SaveOnClose: cfg.AutoSnapshotOnClose,
		Notify: func(outcome snapshot.AutosaveOutcome, err error) {
			if err != nil {
				fmt.Printf("Autosave failed: %v\n", describeError(err))
				return
			}
			if outcome.Created {
				fmt.Printf("✓ %s\n", outcome.Snapshot.DisplayText())
			}
		},
	}
	if cmd != nil && cmd.Flags().Changed("debounce") {
		opts.Debounce = watchDebounce
	}
	if cmd != nil && cmd.Flags().Changed("schedule") {
		opts.Schedule = watchSchedule
	}
	if opts.Debounce <= 0 && opts.Schedule == "" && !opts.SaveOnClose {
		return fmt.Errorf("nothing to do: enable --debounce, --schedule or auto_snapshot_on_close")
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", backend.Path())
	if err := autosave.NewService(backend.Path(), m, opts, appLog).Run(ctx); err != nil {
		return describeError(err)
	}
	fmt.Println("Stopped watching")
	return nil
}
