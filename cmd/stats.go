package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pders01/checkpoint/internal/models"
)

var (
	statsJSON bool
	statsToon bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show snapshot statistics and storage usage",
	Long: `Display statistics about your snapshots including:
  - Total, manual and automatic snapshot counts
  - Estimated repository size
  - Configured limits and whether they are exceeded
  - Daily activity

Examples:
  checkpoint stats
  checkpoint stats --json
  checkpoint stats --toon`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
	statsCmd.Flags().BoolVar(&statsToon, "toon", false, "Output in LLM-friendly toon format")
}

func runStats(cmd *cobra.Command, args []string) error {
	m, backend, err := openInitializedProject(nil)
	if err != nil {
		return err
	}

	cfg, err := models.LoadProjectConfig(backend.Path())
	if err != nil {
		return err
	}

	stats, err := m.Stats(commandContext(cmd), cfg).Wait()
	if err != nil {
		return describeError(err)
	}

	if done, err := printStructured(stats, statsJSON, statsToon); done {
		return err
	}

	fmt.Println("Snapshot Statistics")
	fmt.Println("━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	if cfg.GameName != "" {
		fmt.Printf("Game:            %s\n", cfg.GameName)
	}
	fmt.Printf("Total Snapshots: %d\n", stats.TotalSnapshots)
	if stats.TotalSnapshots > 0 {
		manual := float64(stats.ManualSnapshots) / float64(stats.TotalSnapshots) * 100
		fmt.Printf("  Manual:        %3d  (%.1f%%)\n", stats.ManualSnapshots, manual)
		fmt.Printf("  Automatic:     %3d  (%.1f%%)\n", stats.AutomaticSnapshots, 100-manual)
	}
	if stats.OldestSnapshot != nil && stats.NewestSnapshot != nil {
		fmt.Printf("Date Range:      %s to %s\n",
			stats.OldestSnapshot.Local().Format("2006-01-02"),
			stats.NewestSnapshot.Local().Format("2006-01-02"))
	}
	fmt.Println()

	fmt.Println("Storage:")
	fmt.Printf("  Repository size: %s\n", formatBytes(stats.RepositoryBytes))
	fmt.Printf("  Snapshot limit:  %s%s\n", formatLimit(int64(cfg.MaxSnapshots), false), overMark(stats.OverSnapshotLimit))
	fmt.Printf("  Size limit:      %s%s\n", formatLimit(cfg.MaxSizeBytes, true), overMark(stats.OverSizeLimit))
	fmt.Println()

	if len(stats.DailyActivity) > 0 {
		fmt.Println("Recent Activity:")
		limit := min(len(stats.DailyActivity), 7)
		for _, da := range stats.DailyActivity[:limit] {
			bar := strings.Repeat("█", min(da.Count, 20))
			fmt.Printf("  %s  %3d  %s\n", da.Date, da.Count, bar)
		}
	}

	return nil
}

func formatLimit(n int64, bytes bool) string {
	if n == models.Unlimited {
		return "unlimited"
	}
	if bytes {
		return formatBytes(n)
	}
	return fmt.Sprintf("%d", n)
}

func overMark(over bool) string {
	if over {
		return "  (exceeded)"
	}
	return ""
}
