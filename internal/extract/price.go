package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Listing prices outside this band are treated as parse artifacts.
const (
	priceFloor   = 10_000
	priceCeiling = 50_000_000
)

// priceStrategy tries to pull an asking price out of raw listing HTML.
// Strategies run in order; the first range-valid candidate wins.
type priceStrategy func(html string) (int, bool)

var priceStrategies = []priceStrategy{
	priceFromRange,
	priceFromEmbeddedField,
	priceFromMillionShorthand,
}

// extractPrice runs the strategy chain. Returns nil when nothing range-valid
// was found; a missing price is a field miss, not a failure.
func extractPrice(html string) *int {
	for _, strategy := range priceStrategies {
		if v, ok := strategy(html); ok && priceValid(v) {
			return &v
		}
	}
	return nil
}

func priceValid(v int) bool {
	return v >= priceFloor && v <= priceCeiling
}

var priceRangeRe = regexp.MustCompile(
	`\$\s*(\d{1,3}(?:,\d{3})+)\s*(?:-|–|to)\s*\$\s*\d{1,3}(?:,\d{3})+`)

// priceFromRange matches a dollar range token and takes the lower bound,
// e.g. "$1,100,000 - $1,210,000" -> 1100000.
func priceFromRange(html string) (int, bool) {
	m := priceRangeRe.FindStringSubmatch(html)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0, false
	}
	return v, true
}

var embeddedPriceRe = regexp.MustCompile(`"price"\s*:\s*"?(\d{4,9})`)

// priceFromEmbeddedField matches a structured "price" field embedded in
// script blocks (JSON-LD and friends).
func priceFromEmbeddedField(html string) (int, bool) {
	m := embeddedPriceRe.FindStringSubmatch(html)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}

var millionShorthandRe = regexp.MustCompile(`(?i)\$\s*(\d+(?:\.\d{1,2})?)m\b`)

// priceFromMillionShorthand matches "$1.1m" style decimal-million tokens.
func priceFromMillionShorthand(html string) (int, bool) {
	m := millionShorthandRe.FindStringSubmatch(html)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return int(math.Round(f * 1_000_000)), true
}
