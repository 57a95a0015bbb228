package model

// Route provenance values. "driving" means the routing service answered;
// "straight-line" means the distance is the haversine fallback.
const (
	RouteSourceDriving      = "driving"
	RouteSourceStraightLine = "straight-line"
)

// Stop is one public-transport point feature near a query location.
type Stop struct {
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	DistanceKm float64 `json:"distance_km"`
}

// Stops holds the nearest stop per category. Nil means no stop of that
// category inside the query radius.
type Stops struct {
	Train *Stop `json:"train"`
	Tram  *Stop `json:"tram"`
	Bus   *Stop `json:"bus"`
}

// RouteResult is one origin-to-destination distance measurement.
// DurationMin is nil when Source is "straight-line".
type RouteResult struct {
	DistanceKm  float64  `json:"distance_km"`
	DurationMin *float64 `json:"duration_min"`
	Source      string   `json:"source"`
}

// TransitProfile combines the resolved location, nearby stops, commute
// distances to the fixed destinations, static commute notes, and a walking
// estimate to the nearest stop of any category.
type TransitProfile struct {
	Query          string      `json:"query"`
	DisplayName    string      `json:"display_name"`
	Coords         Coords      `json:"coords"`
	Stops          Stops       `json:"stops"`
	CBD            RouteResult `json:"cbd"`
	Airport        RouteResult `json:"airport"`
	CommuteCBD     string      `json:"commute_cbd,omitempty"`
	CommuteAirport string      `json:"commute_airport,omitempty"`
	WalkMinutes    *int        `json:"walk_minutes_to_nearest_stop"`
}
