package extract

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// stateCodes are the Australian state tokens that anchor both slug grammars.
var stateCodes = map[string]bool{
	"vic": true, "nsw": true, "qld": true, "sa": true,
	"wa": true, "tas": true, "nt": true, "act": true,
}

// noiseTokens never belong to a suburb name in a listing slug.
var noiseTokens = map[string]bool{
	"property": true, "house": true, "unit": true, "apartment": true,
	"townhouse": true, "villa": true, "land": true, "studio": true,
	"rent": true, "sale": true, "sold": true, "buy": true,
}

// streetTypeTokens end the street part of an address slug; suburb words
// follow the last one.
var streetTypeTokens = map[string]bool{
	"street": true, "st": true, "road": true, "rd": true,
	"avenue": true, "ave": true, "court": true, "ct": true,
	"drive": true, "dr": true, "crescent": true, "cres": true,
	"place": true, "pl": true, "lane": true, "way": true,
	"parade": true, "pde": true, "boulevard": true, "blvd": true,
	"grove": true, "terrace": true, "tce": true, "close": true,
	"circuit": true, "esplanade": true, "highway": true, "hwy": true,
}

var titleCaser = cases.Title(language.English)

// SiteGrammar derives a suburb display name from a listing URL. Each
// listing-site family carries its own grammar; they are deliberately not
// unified.
type SiteGrammar interface {
	Name() string
	Supports(u *url.URL) bool
	SuburbFromURL(u *url.URL) (string, bool)
}

// siteGrammars is the registry, tried in order. The first grammar that
// supports the host is the only one consulted.
var siteGrammars = []SiteGrammar{
	domainGrammar{},
	realEstateGrammar{},
}

// suburbFromURL resolves the suburb using the grammar for the URL's site
// family. Unknown hosts yield no suburb; the suburb is never read from the
// HTML body.
func suburbFromURL(u *url.URL) (string, bool) {
	if u == nil {
		return "", false
	}
	for _, g := range siteGrammars {
		if g.Supports(u) {
			return g.SuburbFromURL(u)
		}
	}
	return "", false
}

// domainGrammar handles slugs of the form
// ".../<street>-<suburb words>-vic-<postcode>-<listing id>": split the last
// path segment on hyphens and take the words leading up to the state-code
// token, dropping number and property-type noise.
type domainGrammar struct{}

func (domainGrammar) Name() string { return "domain" }

func (domainGrammar) Supports(u *url.URL) bool {
	return strings.Contains(u.Hostname(), "domain.com")
}

func (domainGrammar) SuburbFromURL(u *url.URL) (string, bool) {
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) == 0 {
		return "", false
	}
	tokens := strings.Split(segments[len(segments)-1], "-")

	stateIdx := -1
	for i, tok := range tokens {
		if stateCodes[strings.ToLower(tok)] {
			stateIdx = i
			break
		}
	}
	if stateIdx <= 0 {
		return "", false
	}

	// Anything up to the last street-type token is the street address.
	prefix := tokens[:stateIdx]
	for i := stateIdx - 1; i >= 0; i-- {
		if streetTypeTokens[strings.ToLower(prefix[i])] {
			prefix = prefix[i+1:]
			break
		}
	}

	var words []string
	for _, tok := range prefix {
		tok = strings.ToLower(tok)
		if tok == "" || noiseTokens[tok] || isNumeric(tok) {
			continue
		}
		words = append(words, tok)
	}
	if len(words) == 0 {
		return "", false
	}
	return titleCaser.String(strings.Join(words, " ")), true
}

var statePrefixSegmentRe = regexp.MustCompile(`^(vic|nsw|qld|sa|wa|tas|nt|act)-([a-z][a-z-]*)$`)

// realEstateGrammar handles slugs carrying a "<state>-<suburb>" path
// segment, e.g. ".../vic-south-morang/...".
type realEstateGrammar struct{}

func (realEstateGrammar) Name() string { return "realestate" }

func (realEstateGrammar) Supports(u *url.URL) bool {
	return strings.Contains(u.Hostname(), "realestate.com")
}

func (realEstateGrammar) SuburbFromURL(u *url.URL) (string, bool) {
	for _, segment := range strings.Split(strings.Trim(u.Path, "/"), "/") {
		m := statePrefixSegmentRe.FindStringSubmatch(strings.ToLower(segment))
		if m == nil {
			continue
		}
		words := strings.Split(m[2], "-")
		var kept []string
		for _, w := range words {
			if w == "" || noiseTokens[w] {
				continue
			}
			kept = append(kept, w)
		}
		if len(kept) == 0 {
			continue
		}
		return titleCaser.String(strings.Join(kept, " ")), true
	}
	return "", false
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
