package jobs

import (
	"context"
	"fmt"

	"bansync/core/models"
	"bansync/feature/export"
	"bansync/feature/importer"
	"bansync/feature/profiles"
	"bansync/feature/reputation"
	"bansync/feature/sources"

	"go.uber.org/zap"
)

// Job names.
const (
	NameImport     = "import"
	NameProfiles   = "profiles"
	NameReputation = "reputation"
	NameExport     = "export"
	NameAll        = "all"
)

// ListSource loads the lists the importer reads.
type ListSource interface {
	IngestLists(ctx context.Context) ([]models.BanSourceList, error)
}

// Services are the collaborators of the standard jobs.
type Services struct {
	Lists      ListSource
	Providers  sources.Registry
	Importer   *importer.Importer
	Refresher  *profiles.Refresher
	Scorer     *reputation.Scorer
	Planner    *export.Planner
	Propagator *export.Propagator
}

// ExportReport combines the planning and propagation reports.
type ExportReport struct {
	Plan      *export.PlanReport      `json:"plan"`
	Propagate *export.PropagateReport `json:"propagate"`
}

// Standard returns the import, profiles, reputation and export jobs.
func Standard(s Services) []Job {
	return []Job{
		{Name: NameImport, Run: func(ctx context.Context, _ *zap.Logger) (any, error) {
			lists, err := s.Lists.IngestLists(ctx)
			if err != nil {
				return nil, err
			}
			return s.Importer.Run(ctx, lists, s.Providers)
		}},
		{Name: NameProfiles, Run: func(ctx context.Context, _ *zap.Logger) (any, error) {
			return s.Refresher.Run(ctx)
		}},
		{Name: NameReputation, Run: func(ctx context.Context, _ *zap.Logger) (any, error) {
			return s.Scorer.Run(ctx)
		}},
		{Name: NameExport, Run: func(ctx context.Context, _ *zap.Logger) (any, error) {
			report := &ExportReport{}
			plan, err := s.Planner.Run(ctx)
			report.Plan = plan
			if err != nil {
				return report, err
			}
			report.Propagate, err = s.Propagator.Run(ctx)
			return report, err
		}},
	}
}

// Pipeline returns a job running names in order through r. A failed step is
// logged and the remaining steps still run.
func Pipeline(r *Runner, names ...string) Job {
	return Job{Name: NameAll, Run: func(ctx context.Context, l *zap.Logger) (any, error) {
		results := make(map[string]any, len(names))
		var failed []string
		for _, name := range names {
			res, err := r.Run(ctx, name)
			results[name] = res
			if err != nil {
				l.Warn("Pipeline step failed", zap.String("step", name), zap.Error(err))
				failed = append(failed, name)
			}
		}
		if len(failed) > 0 {
			return results, fmt.Errorf("pipeline steps failed: %v", failed)
		}
		return results, nil
	}}
}
