// Package extract turns heterogeneous real-estate listing HTML into a
// normalized Listing record. Every field is best-effort: a miss leaves the
// field nil, and the only failure the extractor itself raises is an
// anti-automation challenge page.
package extract

import (
	"bytes"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/haihuyentran/melbourne-properties/internal/model"
	"github.com/haihuyentran/melbourne-properties/internal/upstream"
)

// Display-address sanity band: titles shorter than a street address or
// longer than a marketing blurb are discarded.
const (
	displayAddressMin = 6
	displayAddressMax = 119
)

// propertyTypes are matched against tag boundaries, longest-first so
// "Townhouse" wins over "House".
var propertyTypes = []string{
	"Townhouse", "Apartment", "Acreage", "Duplex", "Studio",
	"Villa", "House", "Unit", "Land",
}

// Extract parses listing HTML fetched from originURL into a Listing. It
// never fails on malformed markup; absent fields stay nil. The one error it
// returns is a classified Blocked when the body looks like a challenge page,
// so callers can offer manual entry instead of retrying.
func Extract(html []byte, originURL string) (*model.Listing, error) {
	if kw, blocked := DetectChallenge(html); blocked {
		return nil, upstream.Errorf(upstream.Blocked, "extract",
			"challenge page detected (%q); enter listing details manually", kw)
	}

	u, err := url.Parse(originURL)
	if err != nil {
		u = nil
	}

	raw := string(html)
	lower := strings.ToLower(raw)

	var text string
	var doc *goquery.Document
	if d, docErr := goquery.NewDocumentFromReader(bytes.NewReader(html)); docErr == nil {
		doc = d
		text = d.Text()
	} else {
		text = raw
	}

	listing := &model.Listing{
		Price:        extractPrice(raw),
		Bedrooms:     firstCount(text, bedroomsRe),
		Bathrooms:    firstCount(text, bathroomsRe),
		Garage:       firstCount(text, garageRe),
		PropertyType: extractPropertyType(raw, u),
		Garden:       presenceOf(lower, gardenRe),
		Pool:         presenceOf(lower, poolRe),
	}

	if suburb, ok := suburbFromURL(u); ok {
		listing.Suburb = &suburb
	}

	listing.DisplayAddress = displayAddress(doc, listing.Suburb)

	zap.L().Debug("extract: listing parsed",
		zap.String("url", originURL),
		zap.Bool("price", listing.Price != nil),
		zap.Bool("suburb", listing.Suburb != nil),
	)
	return listing, nil
}

var (
	bedroomsRe  = regexp.MustCompile(`(?i)(\d+)\s*Beds?\b`)
	bathroomsRe = regexp.MustCompile(`(?i)(\d+)\s*Baths?\b`)
	garageRe    = regexp.MustCompile(`(?i)(\d+)\s*(?:Parking|Cars?|Garage)\b`)

	gardenRe = regexp.MustCompile(`\bgardens?\b`)
	poolRe   = regexp.MustCompile(`\b(?:swimming\s+)?pool\b`)
)

// firstCount returns the numeric prefix of the first match, nil on miss.
func firstCount(text string, re *regexp.Regexp) *int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.Atoi(m[1])
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

// presenceOf maps keyword presence in the lowercased body onto the
// yes/unknown tri-state. Absence of the keyword proves nothing.
func presenceOf(lowerBody string, re *regexp.Regexp) string {
	if re.MatchString(lowerBody) {
		return model.PresenceYes
	}
	return model.PresenceUnknown
}

// extractPropertyType finds the literal type keyword nearest a tag boundary.
// For the domain family, URL path tokens take precedence over the body.
func extractPropertyType(raw string, u *url.URL) string {
	if u != nil && (domainGrammar{}).Supports(u) {
		if t, ok := typeFromPath(u); ok {
			return t
		}
	}

	best := ""
	bestIdx := len(raw)
	for _, t := range propertyTypes {
		idx := tagBoundaryIndex(raw, t)
		if idx >= 0 && idx < bestIdx {
			best = t
			bestIdx = idx
		}
	}
	if best == "" {
		return "House"
	}
	return best
}

// tagBoundaryIndex returns the earliest position where keyword sits directly
// against a tag boundary (">Keyword" or "Keyword<"), or -1.
func tagBoundaryIndex(raw, keyword string) int {
	after := strings.Index(raw, ">"+keyword)
	before := strings.Index(raw, keyword+"<")
	switch {
	case after < 0:
		return before
	case before < 0:
		return after
	case before < after:
		return before
	default:
		return after
	}
}

// typeFromPath scans URL path tokens for a property-type word.
func typeFromPath(u *url.URL) (string, bool) {
	for _, tok := range strings.FieldsFunc(strings.ToLower(u.Path), func(r rune) bool {
		return r == '/' || r == '-'
	}) {
		for _, t := range propertyTypes {
			if tok == strings.ToLower(t) {
				return t, true
			}
		}
	}
	return "", false
}

var titleSeparators = []string{" | ", " - ", " – "}

// displayAddress takes the page title up to the first separator when its
// length is plausible for an address, falling back to "<Suburb>, VIC", then
// "Unknown".
func displayAddress(doc *goquery.Document, suburb *string) string {
	if doc != nil {
		title := strings.TrimSpace(doc.Find("title").First().Text())
		cut := title
		for _, sep := range titleSeparators {
			if i := strings.Index(cut, sep); i >= 0 {
				cut = cut[:i]
			}
		}
		cut = strings.TrimSpace(cut)
		if len(cut) >= displayAddressMin && len(cut) <= displayAddressMax {
			return cut
		}
	}
	if suburb != nil {
		return *suburb + ", VIC"
	}
	return "Unknown"
}
