// Package model defines the domain entities shared across the enrichment
// pipeline, the external-data clients, and the HTTP layer.
package model

// Coords is a WGS84 latitude/longitude pair.
type Coords struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the pair lies inside the WGS84 domain. The zero
// value is not valid; a suburb without coordinates carries a nil *Coords.
func (c Coords) Valid() bool {
	if c.Lat == 0 && c.Lon == 0 {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// SuburbRecord is the persisted entity for one locality, keyed by its unique
// display name in the dataset. Stubs are created with every enrichable field
// nil or empty; the merge, geocode-fill and price-fill stages populate them.
// Records are never deleted.
type SuburbRecord struct {
	Postcode        string         `json:"postcode,omitempty"`
	Municipality    string         `json:"municipality,omitempty"`
	Coords          *Coords        `json:"coords"`
	MedianPrice     *int           `json:"median_price"`
	MedianPriceUnit string         `json:"median_price_unit,omitempty"`
	AnnualChange    *float64       `json:"annual_change"`
	SalesCount      *int           `json:"sales_count"`
	PriceHistory    map[string]int `json:"price_history,omitempty"`
	Demographics    string         `json:"demographics,omitempty"`
	Schools         string         `json:"schools,omitempty"`
	Transport       string         `json:"transport,omitempty"`
	Amenities       string         `json:"amenities,omitempty"`
	ReivSlug        string         `json:"reiv_slug,omitempty"`
}

// HasCoords reports whether the record carries a valid coordinate pair.
func (s *SuburbRecord) HasCoords() bool {
	return s.Coords != nil && s.Coords.Valid()
}

// ReportRow is the intermediate artifact extracted from one quarterly report
// line, keyed by locality name. Consumed once by the merge stage.
type ReportRow struct {
	MedianPrice  int      `json:"median_price"`
	AnnualChange *float64 `json:"annual_change"`
	SalesCount   *int     `json:"sales_count"`
}
