package transit

import (
	_ "embed"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed commutes.yaml
var commutesYAML []byte

type commuteEntry struct {
	Match string `yaml:"match"`
	Text  string `yaml:"text"`
}

type commuteTables struct {
	CBD     []commuteEntry `yaml:"cbd"`
	Airport []commuteEntry `yaml:"airport"`
}

var tables = loadCommuteTables()

func loadCommuteTables() commuteTables {
	var t commuteTables
	// The tables ship inside the binary; a parse failure is a build defect.
	if err := yaml.Unmarshal(commutesYAML, &t); err != nil {
		panic("transit: embedded commute tables unparsable: " + err.Error())
	}
	return t
}

// CommuteCBD returns the static CBD commute note whose match key is a
// case-insensitive substring of name, or "" when no entry matches. Purely
// table-driven, never computed.
func CommuteCBD(name string) string {
	return lookup(tables.CBD, name)
}

// CommuteAirport is CommuteCBD for the airport table.
func CommuteAirport(name string) string {
	return lookup(tables.Airport, name)
}

func lookup(entries []commuteEntry, name string) string {
	lower := strings.ToLower(name)
	for _, e := range entries {
		if strings.Contains(lower, e.Match) {
			return e.Text
		}
	}
	return ""
}
