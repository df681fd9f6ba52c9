package snapshot

import (
	"context"
	"sort"
	"time"

	"github.com/pders01/checkpoint/internal/models"
)

// Stats summarizes the snapshot history of a project
type Stats struct {
	TotalSnapshots     int             `json:"total_snapshots"`
	ManualSnapshots    int             `json:"manual_snapshots"`
	AutomaticSnapshots int             `json:"automatic_snapshots"`
	OldestSnapshot     *time.Time      `json:"oldest_snapshot,omitempty"`
	NewestSnapshot     *time.Time      `json:"newest_snapshot,omitempty"`
	DailyActivity      []DailyActivity `json:"daily_activity"`
	RepositoryBytes    int64           `json:"repository_bytes"`
	MaxSnapshots       int             `json:"max_snapshots"`
	MaxSizeBytes       int64           `json:"max_size_bytes"`
	OverSnapshotLimit  bool            `json:"over_snapshot_limit"`
	OverSizeLimit      bool            `json:"over_size_limit"`
}

type DailyActivity struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Stats collects history statistics and checks them against the project
// limits. The size estimate is best-effort and counts as 0 when unavailable.
func (m *Manager) Stats(ctx context.Context, cfg models.ProjectConfig) *Task[Stats] {
	log := m.opLogger("stats")
	return locked(m, func() (Stats, error) {
		snapshots, err := m.backend.History(ctx, statsHistoryLimit(m.historyLimit, cfg))
		if err != nil {
			return Stats{}, err
		}
		size, err := m.backend.RepositorySizeEstimate(ctx)
		if err != nil {
			log.Error(err, "size estimate unavailable")
			size = 0
		}
		return computeStats(snapshots, size, cfg), nil
	})
}

// statsHistoryLimit asks for enough revisions to see one more snapshot than
// the configured maximum, plus the revision the backend drops.
func statsHistoryLimit(listLimit int, cfg models.ProjectConfig) int {
	if cfg.MaxSnapshots == models.Unlimited {
		return listLimit
	}
	return max(listLimit, cfg.MaxSnapshots+2)
}

func computeStats(snapshots []models.Snapshot, size int64, cfg models.ProjectConfig) Stats {
	stats := Stats{
		TotalSnapshots:  len(snapshots),
		RepositoryBytes: size,
		MaxSnapshots:    cfg.MaxSnapshots,
		MaxSizeBytes:    cfg.MaxSizeBytes,
		DailyActivity:   []DailyActivity{},
	}

	byDate := make(map[string]int)
	for _, s := range snapshots {
		if s.IsAutomatic {
			stats.AutomaticSnapshots++
		} else {
			stats.ManualSnapshots++
		}
		if stats.OldestSnapshot == nil || s.Timestamp.Before(*stats.OldestSnapshot) {
			t := s.Timestamp
			stats.OldestSnapshot = &t
		}
		if stats.NewestSnapshot == nil || s.Timestamp.After(*stats.NewestSnapshot) {
			t := s.Timestamp
			stats.NewestSnapshot = &t
		}
		byDate[s.Timestamp.Local().Format("2006-01-02")]++
	}

	for date, count := range byDate {
		stats.DailyActivity = append(stats.DailyActivity, DailyActivity{Date: date, Count: count})
	}
	sort.Slice(stats.DailyActivity, func(i, j int) bool {
		return stats.DailyActivity[i].Date > stats.DailyActivity[j].Date
	})

	stats.OverSnapshotLimit = cfg.ExceedsSnapshots(stats.TotalSnapshots)
	stats.OverSizeLimit = cfg.ExceedsSize(size)
	return stats
}
