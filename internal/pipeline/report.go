package pipeline

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/haihuyentran/melbourne-properties/internal/model"
)

// Sanity bounds for a quarterly-report median. Rows outside are table noise,
// not prices.
const (
	reportPriceMin = 50_000
	reportPriceMax = 99_999_999
)

// reportLineRe matches one data row: a locality name, a median price, and
// optionally an annual change and a sales count. The change token needs a %
// sign or a decimal point; a bare trailing integer is a sales count, not a
// change column.
var reportLineRe = regexp.MustCompile(
	`^\s*([A-Za-z][A-Za-z'. ()-]*[A-Za-z).])\s+\$?([\d,]{4,})(?:\s+(-?\d+(?:\.\d+)?%|-?\d+\.\d+))?(?:\s+(\d+))?\s*$`)

// headerWordRe knocks out header and legend lines that happen to scan like a
// data row.
var headerWordRe = regexp.MustCompile(
	`(?i)\b(median|locality|suburb|price|change|sales|quarter|metro|regional|source|growth|annual)\b`)

var titleCaser = cases.Title(language.English)

// ParseReport scans quarterly-report text line by line and returns one row
// per locality, names normalised to title case. When a locality recurs, the
// row carrying a sales count wins; a bare name-and-price line is usually a
// partial match from elsewhere in the table.
func ParseReport(text string) map[string]model.ReportRow {
	rows := map[string]model.ReportRow{}
	hasCount := map[string]bool{}

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := scanner.Text()
		if headerWordRe.MatchString(line) {
			continue
		}
		m := reportLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		price, err := strconv.Atoi(strings.ReplaceAll(m[2], ",", ""))
		if err != nil || price < reportPriceMin || price > reportPriceMax {
			continue
		}

		name := titleCaser.String(strings.Join(strings.Fields(m[1]), " "))
		row := model.ReportRow{MedianPrice: price}
		if m[3] != "" {
			if change, err := strconv.ParseFloat(strings.TrimSuffix(m[3], "%"), 64); err == nil {
				row.AnnualChange = &change
			}
		}
		if m[4] != "" {
			if count, err := strconv.Atoi(m[4]); err == nil {
				row.SalesCount = &count
			}
		}

		if _, seen := rows[name]; seen {
			if hasCount[name] || row.SalesCount == nil {
				continue
			}
		}
		rows[name] = row
		hasCount[name] = row.SalesCount != nil
	}
	return rows
}
