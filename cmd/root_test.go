package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandRegistry(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "pipeline", "listing", "transit"} {
		assert.True(t, names[want], want)
	}

	stages := map[string]bool{}
	for _, c := range pipelineCmd.Commands() {
		stages[c.Name()] = true
	}
	for _, want := range []string{"extract", "stubs", "merge", "geocode", "prices", "run", "status"} {
		assert.True(t, stages[want], want)
	}
}

func TestReportRows_AcceptsJSONAndText(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "rows.json")
	require.NoError(t, os.WriteFile(jsonPath,
		[]byte(`{"South Morang":{"median_price":745000}}`), 0o644))

	rows, err := reportRows(jsonPath)
	require.NoError(t, err)
	require.Contains(t, rows, "South Morang")
	assert.Equal(t, 745000, rows["South Morang"].MedianPrice)

	textPath := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(textPath,
		[]byte("Preston    $1,050,000    1.8%    96\n"), 0o644))

	rows, err = reportRows(textPath)
	require.NoError(t, err)
	require.Contains(t, rows, "Preston")
	assert.Equal(t, 1050000, rows["Preston"].MedianPrice)
}
