package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haihuyentran/melbourne-properties/internal/model"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	ds, err := Load(filepath.Join(t.TempDir(), "suburbs.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
}

func TestLoad_UnparsableFileIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suburbs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset: parse")
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suburbs.json")

	ds := New(path)
	ds.Meta = Meta{Source: "REIV quarterly medians", DataQuarter: "2026Q2"}
	price := 745000
	ds.Put("South Morang", &model.SuburbRecord{
		Postcode:    "3752",
		Coords:      &model.Coords{Lat: -37.65, Lon: 145.065},
		MedianPrice: &price,
		ReivSlug:    "south-morang",
	})
	require.NoError(t, ds.Save())

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "REIV quarterly medians", got.Meta.Source)
	assert.NotEmpty(t, got.Meta.LastUpdated)

	rec := got.Get("South Morang")
	require.NotNil(t, rec)
	assert.Equal(t, "3752", rec.Postcode)
	require.NotNil(t, rec.MedianPrice)
	assert.Equal(t, 745000, *rec.MedianPrice)
	assert.True(t, rec.HasCoords())
}

func TestSave_LeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	ds := New(filepath.Join(dir, "suburbs.json"))
	require.NoError(t, ds.Save())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "suburbs.json", entries[0].Name())
}

func TestSortedNames(t *testing.T) {
	ds := New("")
	for _, name := range []string{"Werribee", "Box Hill", "Preston"} {
		ds.Put(name, &model.SuburbRecord{})
	}
	assert.Equal(t, []string{"Box Hill", "Preston", "Werribee"}, ds.SortedNames())
}
