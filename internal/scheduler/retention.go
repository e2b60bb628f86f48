package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/crucial707/scantron/internal/metrics"
)

// RetentionSpec is the cron spec of the retention job.
const RetentionSpec = "@hourly"

// Retain deletes finished scheduled scans older than the configured retention period. It does
// nothing when retention is disabled and returns the number of deleted rows.
func (s *Scheduler) Retain(ctx context.Context) (int64, error) {
	cfg, err := s.Configuration.Current(ctx)
	if err != nil {
		return 0, fmt.Errorf("load configuration: %w", err)
	}
	if cfg == nil || !cfg.EnableScanRetention || cfg.ScanRetentionInDays <= 0 {
		return 0, nil
	}
	cutoff := s.now().UTC().AddDate(0, 0, -cfg.ScanRetentionInDays)
	n, err := s.ScheduledScans.DeleteFinishedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete finished scans: %w", err)
	}
	metrics.ScheduledScansDeleted.Add(float64(n))
	return n, nil
}

func (s *Scheduler) runRetention(ctx context.Context) {
	n, err := s.Retain(ctx)
	metrics.RecordJob(JobRetention, err)
	if err != nil {
		slog.Error("scheduler: retention", "error", err)
		return
	}
	if n > 0 {
		slog.Info("scheduler: retention deleted scans", "deleted", n, "at", s.now().UTC().Format(time.RFC3339))
	}
}
