// Package pipeline implements the batch enrichment stages: quarterly-report
// extraction, stub creation, merge, geocode-fill and price-fill. Stages are
// independently invocable, idempotent, and resumable; the dataset file and
// the durable geocode cache are the only run state.
package pipeline

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/haihuyentran/melbourne-properties/internal/dataset"
	"github.com/haihuyentran/melbourne-properties/internal/model"
	"github.com/haihuyentran/melbourne-properties/internal/store"
)

// Pipeline wires the enrichment stages to their collaborators.
type Pipeline struct {
	ds              *dataset.Dataset
	store           *store.Store
	geocoder        Geocoder
	prices          PriceResolver
	policy          MergePolicy
	checkpointEvery int
}

// New builds a Pipeline. Records are processed strictly sequentially within
// a stage; the external services set the pace.
func New(ds *dataset.Dataset, st *store.Store, g Geocoder, r PriceResolver, policy MergePolicy, checkpointEvery int) *Pipeline {
	return &Pipeline{
		ds:              ds,
		store:           st,
		geocoder:        g,
		prices:          r,
		policy:          policy,
		checkpointEvery: checkpointEvery,
	}
}

// track opens a run ledger row, executes the stage, and closes the row with
// the outcome. Ledger failures are logged, never fatal to the stage.
func (p *Pipeline) track(ctx context.Context, stage string, fn func() (processed, failed int, err error)) error {
	id, err := p.store.StartRun(ctx, stage)
	if err != nil {
		zap.L().Warn("pipeline: run ledger unavailable", zap.Error(err))
	}

	processed, failed, stageErr := fn()

	if id != "" {
		status := store.RunStatusComplete
		if stageErr != nil {
			status = store.RunStatusFailed
		}
		if finishErr := p.store.FinishRun(ctx, id, status, processed, failed); finishErr != nil {
			zap.L().Warn("pipeline: run ledger update failed", zap.Error(finishErr))
		}
	}
	return stageErr
}

// ExtractReport parses the quarterly report at path and returns its rows.
func (p *Pipeline) ExtractReport(path string) (map[string]model.ReportRow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: read report %s", path)
	}
	rows := ParseReport(string(raw))
	zap.L().Info("pipeline: report extracted",
		zap.String("path", path), zap.Int("localities", len(rows)))
	return rows, nil
}

// Stubs runs the stub-creation stage and saves the dataset.
func (p *Pipeline) Stubs(ctx context.Context, rows map[string]model.ReportRow) error {
	return p.track(ctx, "stubs", func() (int, int, error) {
		created := CreateStubs(p.ds, rows)
		return created, 0, p.ds.Save()
	})
}

// Merge runs the merge stage and saves the dataset.
func (p *Pipeline) Merge(ctx context.Context, rows map[string]model.ReportRow) error {
	return p.track(ctx, "merge", func() (int, int, error) {
		matched, _ := Merge(p.ds, rows, p.policy)
		return matched, 0, p.ds.Save()
	})
}

// Geocode runs the geocode-fill stage and saves the dataset.
func (p *Pipeline) Geocode(ctx context.Context) error {
	return p.track(ctx, "geocode", func() (int, int, error) {
		resolved, failed, err := GeocodeFill(ctx, p.ds, p.store, p.geocoder)
		if err != nil {
			return resolved, failed, err
		}
		return resolved, failed, p.ds.Save()
	})
}

// Prices runs the price-fill stage. The stage checkpoints the dataset
// itself.
func (p *Pipeline) Prices(ctx context.Context) error {
	return p.track(ctx, "prices", func() (int, int, error) {
		return PriceFill(ctx, p.ds, p.prices, p.checkpointEvery)
	})
}

// Run composes all five stages in dependency order against the report at
// reportPath. A stage error stops the run; completed stages have already
// saved their progress.
func (p *Pipeline) Run(ctx context.Context, reportPath string) error {
	rows, err := p.ExtractReport(reportPath)
	if err != nil {
		return err
	}
	if err := p.Stubs(ctx, rows); err != nil {
		return err
	}
	if err := p.Merge(ctx, rows); err != nil {
		return err
	}
	if err := p.Geocode(ctx); err != nil {
		return err
	}
	return p.Prices(ctx)
}
