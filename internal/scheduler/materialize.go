package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/crucial707/scantron/internal/metrics"
	"github.com/crucial707/scantron/internal/models"
	"github.com/crucial707/scantron/internal/targets"
)

// Job names used in the job metrics.
const (
	JobMaterialize = "materialize"
	JobRetention   = "retention"
)

// Materialize creates the scheduled-scan rows for one run of scan starting at at and returns
// how many were inserted. Globally excluded targets are removed from the site's targets and
// added to its exclude list. A pool site splits its targets across the pool's engines.
// Rows that already exist for the same site, engine and start are left alone.
func (s *Scheduler) Materialize(ctx context.Context, scan models.Scan, at time.Time) (int, error) {
	site, err := s.Sites.GetByID(ctx, scan.Site)
	if err != nil {
		return 0, fmt.Errorf("load site: %w", err)
	}
	if site == nil {
		return 0, fmt.Errorf("site %d not found", scan.Site)
	}
	command, err := s.ScanCommands.GetByID(ctx, site.ScanCommand)
	if err != nil {
		return 0, fmt.Errorf("load scan command: %w", err)
	}
	if command == nil {
		return 0, fmt.Errorf("scan command %d not found", site.ScanCommand)
	}
	engines, err := s.enginesFor(ctx, site)
	if err != nil {
		return 0, err
	}
	if len(engines) == 0 {
		return 0, fmt.Errorf("site %q has no scan engines", site.SiteName)
	}

	global, err := s.globalExclusions(ctx)
	if err != nil {
		return 0, err
	}
	include := targets.NewExclusionSet(global).Filter(targets.Extract(site.Targets))
	if include.Empty() {
		slog.Warn("scheduler: every target is globally excluded", "site", site.SiteName, "scan_id", scan.ID)
		return 0, nil
	}
	exclude := targets.Merge(targets.Extract(site.ExcludedTargets), global).AsNmap()

	chunks := SplitTargets(include.AsList(), len(engines))
	created := 0
	for i, e := range engines {
		if len(chunks[i]) == 0 {
			continue
		}
		ok, err := s.ScheduledScans.CreateIfAbsent(ctx, &models.ScheduledScan{
			SiteName:        site.SiteName,
			ScanEngine:      e.ScanEngine,
			StartDatetime:   at,
			ScanBinary:      command.ScanBinary,
			ScanCommand:     command.ScanCommand,
			Targets:         strings.Join(chunks[i], " "),
			ExcludedTargets: exclude,
			ScanStatus:      models.ScanStatusPending,
		})
		if err != nil {
			return created, fmt.Errorf("create scheduled scan for engine %q: %w", e.ScanEngine, err)
		}
		if ok {
			created++
			metrics.ScheduledScansCreated.Inc()
		}
	}
	return created, nil
}

// enginesFor returns the site's engine, or the members of its pool in pool order.
func (s *Scheduler) enginesFor(ctx context.Context, site *models.Site) ([]models.Engine, error) {
	if site.ScanEngine != nil {
		e, err := s.Engines.GetByID(ctx, *site.ScanEngine)
		if err != nil {
			return nil, fmt.Errorf("load engine: %w", err)
		}
		if e == nil {
			return nil, nil
		}
		return []models.Engine{*e}, nil
	}
	if site.ScanEnginePool == nil {
		return nil, nil
	}
	pool, err := s.EnginePools.GetByID(ctx, *site.ScanEnginePool)
	if err != nil {
		return nil, fmt.Errorf("load engine pool: %w", err)
	}
	if pool == nil {
		return nil, nil
	}
	list, err := s.Engines.ListByIDs(ctx, pool.ScanEngines)
	if err != nil {
		return nil, fmt.Errorf("load pool engines: %w", err)
	}
	byID := make(map[int]models.Engine, len(list))
	for _, e := range list {
		byID[e.ID] = e
	}
	out := make([]models.Engine, 0, len(list))
	for _, id := range pool.ScanEngines {
		if e, ok := byID[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Scheduler) globalExclusions(ctx context.Context) (*targets.Result, error) {
	rows, err := s.Excluded.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load globally excluded targets: %w", err)
	}
	parts := make([]string, 0, len(rows))
	for _, g := range rows {
		parts = append(parts, g.GloballyExcludedTargets)
	}
	return targets.Extract(strings.Join(parts, " ")), nil
}

// SplitTargets divides list into n contiguous chunks whose sizes differ by at most one; the
// first chunks get the extra items. Chunks past the end of list are empty.
func SplitTargets(list []string, n int) [][]string {
	if n <= 0 {
		return nil
	}
	out := make([][]string, n)
	size, extra := len(list)/n, len(list)%n
	start := 0
	for i := range out {
		end := start + size
		if i < extra {
			end++
		}
		out[i] = list[start:end]
		start = end
	}
	return out
}
