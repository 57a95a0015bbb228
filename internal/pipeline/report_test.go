package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = `
REIV Quarterly Median House Prices
Locality        Median Price    Annual Change    Sales
South Morang    $745,000        3.2%             182
BOX HILL        1,510,000       -1.1%            94
Preston         $1,050,000
Werribee        $640,500        2.0              210
Neverland       $12,000
Footscray       $955,000        4.4%             120
Footscray       $955,000
Source: REIV, metro Melbourne
`

func TestParseReport(t *testing.T) {
	rows := ParseReport(sampleReport)

	require.Contains(t, rows, "South Morang")
	sm := rows["South Morang"]
	assert.Equal(t, 745000, sm.MedianPrice)
	require.NotNil(t, sm.AnnualChange)
	assert.Equal(t, 3.2, *sm.AnnualChange)
	require.NotNil(t, sm.SalesCount)
	assert.Equal(t, 182, *sm.SalesCount)

	// Names are normalised to title case.
	require.Contains(t, rows, "Box Hill")
	assert.Equal(t, 1510000, rows["Box Hill"].MedianPrice)

	// A bare name-and-price line still parses.
	require.Contains(t, rows, "Preston")
	assert.Nil(t, rows["Preston"].SalesCount)

	// Below the sanity floor.
	assert.NotContains(t, rows, "Neverland")

	// Header and legend lines never produce rows.
	assert.NotContains(t, rows, "Locality")
	assert.NotContains(t, rows, "Source")
}

func TestParseReport_CountWithoutChangeColumn(t *testing.T) {
	// No change column at all: the trailing integer is the sales count.
	rows := ParseReport("Altona    $910,000    57\n")

	require.Contains(t, rows, "Altona")
	assert.Equal(t, 910000, rows["Altona"].MedianPrice)
	assert.Nil(t, rows["Altona"].AnnualChange)
	require.NotNil(t, rows["Altona"].SalesCount)
	assert.Equal(t, 57, *rows["Altona"].SalesCount)
}

func TestParseReport_DuplicatePrefersSalesCount(t *testing.T) {
	rows := ParseReport(sampleReport)

	require.Contains(t, rows, "Footscray")
	require.NotNil(t, rows["Footscray"].SalesCount)
	assert.Equal(t, 120, *rows["Footscray"].SalesCount)
}

func TestParseReport_DuplicateCountedRowArrivesSecond(t *testing.T) {
	rows := ParseReport("Footscray  $955,000\nFootscray  $955,000  4.4%  120\n")

	require.Contains(t, rows, "Footscray")
	require.NotNil(t, rows["Footscray"].SalesCount)
}

func TestParseReport_Empty(t *testing.T) {
	assert.Empty(t, ParseReport(""))
	assert.Empty(t, ParseReport("no data rows here\n"))
}
