package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haihuyentran/melbourne-properties/internal/dataset"
)

func TestPipeline_RunComposesStages(t *testing.T) {
	dir := t.TempDir()
	reportPath := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(reportPath, []byte(
		"South Morang    $745,000    3.2%    182\nPreston    $1,050,000    1.8%    96\n"), 0o644))

	ds := dataset.New(filepath.Join(dir, "suburbs.json"))
	st := newPipelineStore(t)
	g := &countingGeocoder{}
	r := &fakePrices{prices: map[string]int{"south-morang": 745000, "preston": 1050000}}

	p := New(ds, st, g, r, PolicyRetain, 20)
	require.NoError(t, p.Run(context.Background(), reportPath))

	assert.Equal(t, 2, ds.Len())
	for _, name := range []string{"South Morang", "Preston"} {
		rec := ds.Get(name)
		require.NotNil(t, rec, name)
		assert.True(t, rec.HasCoords(), name)
		require.NotNil(t, rec.MedianPrice, name)
	}
	// Merge already priced both suburbs, so price-fill had nothing to do.
	assert.Equal(t, 0, r.calls)

	// Every stage left a ledger row.
	runs, err := st.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	stages := map[string]bool{}
	for _, run := range runs {
		stages[run.Stage] = true
		assert.NotNil(t, run.FinishedAt)
	}
	assert.Equal(t, map[string]bool{"stubs": true, "merge": true, "geocode": true, "prices": true}, stages)
}

func TestPipeline_MissingReportFails(t *testing.T) {
	p := New(dataset.New(""), newPipelineStore(t), &countingGeocoder{}, &fakePrices{}, PolicyRetain, 20)
	err := p.Run(context.Background(), filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read report")
}
