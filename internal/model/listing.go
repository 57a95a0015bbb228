package model

// Presence is the tri-state used for amenity flags scraped from listing
// pages. Absence of the keyword is not evidence of absence of the feature.
const (
	PresenceYes     = "yes"
	PresenceUnknown = "unknown"
)

// Listing is the normalized record produced by one extraction call against a
// listing page. It is ephemeral; the core never persists it. Pointer fields
// are nil when the page did not yield the attribute.
type Listing struct {
	Price          *int    `json:"price"`
	Suburb         *string `json:"suburb"`
	Bedrooms       *int    `json:"bedrooms"`
	Bathrooms      *int    `json:"bathrooms"`
	Garage         *int    `json:"garage"`
	PropertyType   string  `json:"property_type"`
	Garden         string  `json:"garden"`
	Pool           string  `json:"pool"`
	DisplayAddress string  `json:"display_address"`
}
