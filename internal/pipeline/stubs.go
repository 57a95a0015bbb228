package pipeline

import (
	"strings"

	"go.uber.org/zap"

	"github.com/haihuyentran/melbourne-properties/internal/dataset"
	"github.com/haihuyentran/melbourne-properties/internal/model"
)

// Slug derives the market-site slug for a suburb name: lower-cased, words
// joined with hyphens, parentheses stripped.
func Slug(name string) string {
	cleaned := strings.NewReplacer("(", "", ")", "").Replace(strings.ToLower(name))
	return strings.Join(strings.Fields(cleaned), "-")
}

// CreateStubs inserts an empty record for every report locality the dataset
// does not know yet. Existing records are untouched, so the stage is safe to
// rerun. Returns the number of stubs inserted.
func CreateStubs(ds *dataset.Dataset, rows map[string]model.ReportRow) int {
	created := 0
	for name := range rows {
		if ds.Get(name) != nil {
			continue
		}
		ds.Put(name, &model.SuburbRecord{
			PriceHistory: map[string]int{},
			ReivSlug:     Slug(name),
		})
		created++
	}
	if created > 0 {
		zap.L().Info("pipeline: stubs created", zap.Int("count", created))
	}
	return created
}
