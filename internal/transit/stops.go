// Package transit resolves the public-transport picture around an address:
// nearest stops by mode, driving commutes to the fixed destinations, and the
// static commute notes.
package transit

import (
	"github.com/haihuyentran/melbourne-properties/internal/geo"
	"github.com/haihuyentran/melbourne-properties/internal/model"
	"github.com/haihuyentran/melbourne-properties/pkg/overpass"
)

// ClassifyStops buckets tagged nodes into train/tram/bus and keeps only the
// nearest stop per category. Distances are rounded to two decimals; ties go
// to the smaller distance seen first.
func ClassifyStops(originLat, originLon float64, nodes []overpass.Node) model.Stops {
	var stops model.Stops
	best := map[string]float64{}

	for _, n := range nodes {
		category := classify(n.Tags)
		dist := geo.HaversineKm(originLat, originLon, n.Lat, n.Lon)

		prev, seen := best[category]
		if seen && dist >= prev {
			continue
		}
		best[category] = dist

		stop := &model.Stop{
			Name:       n.Name(),
			Lat:        n.Lat,
			Lon:        n.Lon,
			DistanceKm: geo.Round2(dist),
		}
		switch category {
		case "train":
			stops.Train = stop
		case "tram":
			stops.Tram = stop
		default:
			stops.Bus = stop
		}
	}
	return stops
}

// classify applies tag precedence: railway station or halt is Train; a tram
// or light-rail tag, or a public-transport tag with no bus tag, is Tram;
// everything else is Bus.
func classify(tags map[string]string) string {
	switch tags["railway"] {
	case "station", "halt":
		return "train"
	case "tram_stop":
		return "tram"
	}
	if tags["light_rail"] == "yes" || tags["tram"] == "yes" {
		return "tram"
	}
	if _, ok := tags["public_transport"]; ok {
		if !isBusTagged(tags) {
			return "tram"
		}
	}
	return "bus"
}

func isBusTagged(tags map[string]string) bool {
	return tags["bus"] == "yes" || tags["highway"] == "bus_stop"
}

// nearestAny returns the closest stop of any category, nil when none exist.
func nearestAny(stops model.Stops) *model.Stop {
	var nearest *model.Stop
	for _, s := range []*model.Stop{stops.Train, stops.Tram, stops.Bus} {
		if s == nil {
			continue
		}
		if nearest == nil || s.DistanceKm < nearest.DistanceKm {
			nearest = s
		}
	}
	return nearest
}
