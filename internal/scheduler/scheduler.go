// Package scheduler turns enabled scan definitions into scheduled-scan rows at their cron times
// and prunes finished rows according to the retention settings.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/crucial707/scantron/internal/metrics"
	"github.com/crucial707/scantron/internal/models"
	"github.com/crucial707/scantron/internal/repo"
	"github.com/robfig/cron/v3"
)

// ReloadInterval is how often enabled scans are re-read from the database.
const ReloadInterval = 60 * time.Second

// Scheduler owns the cron runner. Create it with New; the zero value is not usable.
type Scheduler struct {
	Scans          *repo.ScanRepo
	Sites          *repo.SiteRepo
	ScanCommands   *repo.ScanCommandRepo
	Engines        *repo.EngineRepo
	EnginePools    *repo.EnginePoolRepo
	Excluded       *repo.GloballyExcludedTargetRepo
	ScheduledScans *repo.ScheduledScanRepo
	Configuration  *repo.ConfigurationRepo

	// Now is the clock; nil means time.Now.
	Now func() time.Time

	cron    *cron.Cron
	mu      sync.Mutex
	entries map[int]entry // scan ID -> cron entry
}

type entry struct {
	id  cron.EntryID
	key string
}

// New returns a Scheduler backed by db.
func New(db *sql.DB) *Scheduler {
	return &Scheduler{
		Scans:          repo.NewScanRepo(db),
		Sites:          repo.NewSiteRepo(db),
		ScanCommands:   repo.NewScanCommandRepo(db),
		Engines:        repo.NewEngineRepo(db),
		EnginePools:    repo.NewEnginePoolRepo(db),
		Excluded:       repo.NewGloballyExcludedTargetRepo(db),
		ScheduledScans: repo.NewScheduledScanRepo(db),
		Configuration:  repo.NewConfigurationRepo(db),
		cron:           cron.New(cron.WithLocation(time.UTC)),
		entries:        make(map[int]entry),
	}
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Run starts the cron runner, loads enabled scans and reloads them every ReloadInterval
// until ctx is cancelled. Jobs still running when ctx ends are waited for.
func (s *Scheduler) Run(ctx context.Context) {
	if _, err := s.cron.AddFunc(RetentionSpec, func() { s.runRetention(ctx) }); err != nil {
		slog.Error("scheduler: add retention job", "error", err)
	}

	s.Sync(ctx)
	s.cron.Start()
	slog.Info("scheduler started", "reload_interval", ReloadInterval.String())

	ticker := time.NewTicker(ReloadInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			<-s.cron.Stop().Done()
			slog.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.Sync(ctx)
		}
	}
}

// Sync makes the cron entries match the enabled scans in the database. Entries for scans
// whose schedule did not change are kept so an imminent run is not lost.
func (s *Scheduler) Sync(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.Scans.ListEnabled(ctx)
	if err != nil {
		slog.Error("scheduler: list enabled scans", "error", err)
		return
	}

	seen := make(map[int]struct{}, len(list))
	for _, scan := range list {
		seen[scan.ID] = struct{}{}
		key := scheduleKey(scan)
		if cur, ok := s.entries[scan.ID]; ok {
			if cur.key == key {
				continue
			}
			s.cron.Remove(cur.id)
			delete(s.entries, scan.ID)
		}

		sched, err := ScheduleFor(scan)
		if err != nil {
			slog.Warn("scheduler: invalid recurrences", "scan_id", scan.ID, "recurrences", scan.Recurrences, "error", err)
			continue
		}
		id := s.cron.Schedule(sched, cron.FuncJob(func() { s.fire(ctx, scan) }))
		s.entries[scan.ID] = entry{id: id, key: key}
		slog.Debug("scheduler: scheduled scan", "scan_id", scan.ID, "recurrences", scan.Recurrences,
			"start_time", scan.StartTime)
	}

	for scanID, cur := range s.entries {
		if _, ok := seen[scanID]; !ok {
			s.cron.Remove(cur.id)
			delete(s.entries, scanID)
		}
	}
}

// scheduleKey changes whenever anything that affects a scan's fire times changes.
func scheduleKey(scan models.Scan) string {
	return scan.StartTime.UTC().Format(time.RFC3339Nano) + "|" + scan.Recurrences
}

// fire materializes one run. Recurring specs have minute resolution, so the run's start is the
// current minute; a one-off run starts at its start_time.
func (s *Scheduler) fire(ctx context.Context, scan models.Scan) {
	at := s.now().UTC().Truncate(time.Minute)
	if scan.Recurrences == "" {
		at = scan.StartTime.UTC()
	}
	n, err := s.Materialize(ctx, scan, at)
	metrics.RecordJob(JobMaterialize, err)
	if err != nil {
		slog.Error("scheduler: materialize scan", "scan_id", scan.ID, "start", at, "error", err)
		return
	}
	slog.Info("scheduler: materialized scan", "scan_id", scan.ID, "start", at, "created", n)
}

// ScheduleFor returns the cron schedule of scan: its recurrence spec starting at start_time,
// or a single run at start_time when there is no spec.
func ScheduleFor(scan models.Scan) (cron.Schedule, error) {
	if scan.Recurrences == "" {
		return once{at: scan.StartTime.UTC()}, nil
	}
	sched, err := cron.ParseStandard(scan.Recurrences)
	if err != nil {
		return nil, err
	}
	return notBefore{Schedule: sched, start: scan.StartTime.UTC()}, nil
}

// once fires a single time. A zero Next tells cron the entry is done.
type once struct {
	at time.Time
}

func (o once) Next(t time.Time) time.Time {
	if t.Before(o.at) {
		return o.at
	}
	return time.Time{}
}

// notBefore suppresses activations of a recurring schedule before start.
type notBefore struct {
	cron.Schedule
	start time.Time
}

func (n notBefore) Next(t time.Time) time.Time {
	if t.Before(n.start) {
		t = n.start.Add(-time.Second)
	}
	return n.Schedule.Next(t)
}
