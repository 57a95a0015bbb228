package pipeline

import (
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/haihuyentran/melbourne-properties/internal/dataset"
	"github.com/haihuyentran/melbourne-properties/internal/model"
)

// MergePolicy says what happens to a suburb's price fields when the report
// has no row for it.
type MergePolicy string

const (
	// PolicyRetain keeps the previous quarter's values.
	PolicyRetain MergePolicy = "retain"
	// PolicyClear resets the price fields to unresolved.
	PolicyClear MergePolicy = "clear"
)

// ParseMergePolicy validates a config string, defaulting to retain.
func ParseMergePolicy(s string) MergePolicy {
	if MergePolicy(s) == PolicyClear {
		return PolicyClear
	}
	return PolicyRetain
}

// Merge overwrites each matched suburb's price fields from its report row
// and stamps the current year in the price history. Suburbs without a row
// follow the policy. Merging the same rows twice leaves the dataset
// unchanged. Returns matched and unmatched counts.
func Merge(ds *dataset.Dataset, rows map[string]model.ReportRow, policy MergePolicy) (matched, unmatched int) {
	year := strconv.Itoa(time.Now().Year())

	for _, name := range ds.SortedNames() {
		rec := ds.Get(name)
		row, ok := rows[name]
		if !ok {
			unmatched++
			if policy == PolicyClear {
				rec.MedianPrice = nil
				rec.MedianPriceUnit = ""
				rec.AnnualChange = nil
				rec.SalesCount = nil
			}
			continue
		}

		price := row.MedianPrice
		rec.MedianPrice = &price
		rec.MedianPriceUnit = "AUD"
		rec.AnnualChange = row.AnnualChange
		rec.SalesCount = row.SalesCount
		if rec.PriceHistory == nil {
			rec.PriceHistory = map[string]int{}
		}
		rec.PriceHistory[year] = price
		matched++
	}

	zap.L().Info("pipeline: merge complete",
		zap.Int("matched", matched),
		zap.Int("unmatched", unmatched),
		zap.String("policy", string(policy)))
	return matched, unmatched
}
