package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pders01/checkpoint/internal/models"
)

var (
	listAuto   bool
	listManual bool
	listToday  bool
	listSince  string
	listLimit  int
	listJSON   bool
	listToon   bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List snapshots, newest first",
	Long: `List the snapshots of the game directory with optional filtering.

The bootstrap revision recorded by init is never shown.

Examples:
  checkpoint list
  checkpoint list --manual
  checkpoint list --today
  checkpoint list --since 2025-10-01 --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listAuto, "auto", false, "Show only automatic snapshots")
	listCmd.Flags().BoolVar(&listManual, "manual", false, "Show only manual snapshots")
	listCmd.Flags().BoolVar(&listToday, "today", false, "Show only today's snapshots")
	listCmd.Flags().StringVar(&listSince, "since", "", "Show snapshots since date (YYYY-MM-DD)")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Show at most N snapshots")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	listCmd.Flags().BoolVar(&listToon, "toon", false, "Output in LLM-friendly toon format")
}

func runList(cmd *cobra.Command, args []string) error {
	if listAuto && listManual {
		return fmt.Errorf("--auto and --manual are mutually exclusive")
	}

	var since time.Time
	if listSince != "" {
		t, err := time.ParseInLocation("2006-01-02", listSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since date format (use YYYY-MM-DD): %w", err)
		}
		since = t
	}

	m, _, err := openInitializedProject(nil)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if detached, err := m.IsDetached(ctx).Wait(); err == nil && detached {
		fmt.Fprintln(os.Stderr, "Note: a restored snapshot is checked out; listing switches the files back to the newest snapshot")
	}

	snapshots, err := m.ListSnapshots(ctx).Wait()
	if err != nil {
		return describeError(err)
	}

	today := time.Now().Format("2006-01-02")
	filtered := make([]models.Snapshot, 0, len(snapshots))
	for _, s := range snapshots {
		// a lone bootstrap revision is reported by the backend; hide it
		if s.Description == models.BootstrapDescription {
			continue
		}
		if listAuto && !s.IsAutomatic {
			continue
		}
		if listManual && s.IsAutomatic {
			continue
		}
		if listToday && s.Timestamp.Local().Format("2006-01-02") != today {
			continue
		}
		if !since.IsZero() && s.Timestamp.Before(since) {
			continue
		}
		filtered = append(filtered, s)
	}
	if listLimit > 0 && len(filtered) > listLimit {
		filtered = filtered[:listLimit]
	}

	if done, err := printStructured(filtered, listJSON, listToon); done {
		return err
	}

	if len(filtered) == 0 {
		fmt.Println("No snapshots found")
		return nil
	}

	fmt.Printf("Found %d snapshot(s):\n\n", len(filtered))
	for _, s := range filtered {
		kind := "manual"
		if s.IsAutomatic {
			kind = "auto"
		}
		fmt.Printf("  %s  %s\n", s.ShortID(), s.DisplayText())
		fmt.Printf("    Author: %s (%s)\n", s.Author, kind)
	}

	return nil
}
