package pipeline

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haihuyentran/melbourne-properties/internal/dataset"
	"github.com/haihuyentran/melbourne-properties/internal/model"
)

func mergeFixture() (*dataset.Dataset, map[string]model.ReportRow) {
	ds := dataset.New("")
	old := 700000
	ds.Put("South Morang", &model.SuburbRecord{MedianPrice: &old, MedianPriceUnit: "AUD"})
	stale := 880000
	ds.Put("Preston", &model.SuburbRecord{MedianPrice: &stale, MedianPriceUnit: "AUD"})

	change := 3.2
	sales := 182
	rows := map[string]model.ReportRow{
		"South Morang": {MedianPrice: 745000, AnnualChange: &change, SalesCount: &sales},
	}
	return ds, rows
}

func TestMerge_Retain(t *testing.T) {
	ds, rows := mergeFixture()

	matched, unmatched := Merge(ds, rows, PolicyRetain)
	assert.Equal(t, 1, matched)
	assert.Equal(t, 1, unmatched)

	sm := ds.Get("South Morang")
	require.NotNil(t, sm.MedianPrice)
	assert.Equal(t, 745000, *sm.MedianPrice)
	require.NotNil(t, sm.AnnualChange)
	assert.Equal(t, 3.2, *sm.AnnualChange)

	year := strconv.Itoa(time.Now().Year())
	assert.Equal(t, 745000, sm.PriceHistory[year])

	// Unmatched suburb keeps its prior value.
	require.NotNil(t, ds.Get("Preston").MedianPrice)
	assert.Equal(t, 880000, *ds.Get("Preston").MedianPrice)
}

func TestMerge_Clear(t *testing.T) {
	ds, rows := mergeFixture()

	Merge(ds, rows, PolicyClear)

	preston := ds.Get("Preston")
	assert.Nil(t, preston.MedianPrice)
	assert.Empty(t, preston.MedianPriceUnit)
	assert.Nil(t, preston.AnnualChange)
	assert.Nil(t, preston.SalesCount)
}

func TestMerge_Idempotent(t *testing.T) {
	ds, rows := mergeFixture()

	Merge(ds, rows, PolicyRetain)
	first := snapshot(ds)

	Merge(ds, rows, PolicyRetain)
	assert.Equal(t, first, snapshot(ds))
	assert.Equal(t, 2, ds.Len())
}

func snapshot(ds *dataset.Dataset) map[string]model.SuburbRecord {
	out := map[string]model.SuburbRecord{}
	for _, name := range ds.SortedNames() {
		out[name] = *ds.Get(name)
	}
	return out
}

func TestParseMergePolicy(t *testing.T) {
	assert.Equal(t, PolicyClear, ParseMergePolicy("clear"))
	assert.Equal(t, PolicyRetain, ParseMergePolicy("retain"))
	assert.Equal(t, PolicyRetain, ParseMergePolicy(""))
	assert.Equal(t, PolicyRetain, ParseMergePolicy("bogus"))
}
