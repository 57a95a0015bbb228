package transit

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/haihuyentran/melbourne-properties/internal/geo"
	"github.com/haihuyentran/melbourne-properties/internal/model"
	"github.com/haihuyentran/melbourne-properties/internal/upstream"
	"github.com/haihuyentran/melbourne-properties/pkg/nominatim"
	"github.com/haihuyentran/melbourne-properties/pkg/osrm"
	"github.com/haihuyentran/melbourne-properties/pkg/overpass"
)

// Fixed commute destinations.
var (
	// Flinders Street Station.
	DestCBD = model.Coords{Lat: -37.8183, Lon: 144.9671}
	// Melbourne Airport (Tullamarine).
	DestAirport = model.Coords{Lat: -37.6690, Lon: 144.8410}
)

// Geocoder resolves a free-text query to a point.
type Geocoder interface {
	Search(ctx context.Context, query string) (*nominatim.Point, error)
}

// StopSource returns tagged point features inside a radius.
type StopSource interface {
	NodesAround(ctx context.Context, lat, lon float64, radiusM int) ([]overpass.Node, error)
}

// Router resolves a two-point driving route.
type Router interface {
	Route(ctx context.Context, oLat, oLon, dLat, dLon float64) (*osrm.Route, error)
}

// Resolver composes the geocoder, the stop source and the router into
// transit profiles.
type Resolver struct {
	geocoder Geocoder
	stops    StopSource
	router   Router
	radiusM  int
}

// NewResolver builds a Resolver. radiusM bounds the stop search.
func NewResolver(g Geocoder, s StopSource, r Router, radiusM int) *Resolver {
	if radiusM <= 0 {
		radiusM = 1500
	}
	return &Resolver{geocoder: g, stops: s, router: r, radiusM: radiusM}
}

// Profile geocodes the address, then resolves nearby stops and the two fixed
// driving routes concurrently; the three lookups share no state and have no
// ordering dependency. Route failures degrade to the haversine straight-line
// distance with no duration.
func (r *Resolver) Profile(ctx context.Context, address string) (*model.TransitProfile, error) {
	if strings.TrimSpace(address) == "" {
		return nil, upstream.Errorf(upstream.Validation, "transit: profile", "empty address")
	}

	point, err := r.geocoder.Search(ctx, address)
	if err != nil {
		return nil, err
	}

	profile := &model.TransitProfile{
		Query:       address,
		DisplayName: point.DisplayName,
		Coords:      model.Coords{Lat: point.Lat, Lon: point.Lon},
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		nodes, stopErr := r.stops.NodesAround(gCtx, point.Lat, point.Lon, r.radiusM)
		if stopErr != nil {
			zap.L().Warn("transit: stop lookup failed", zap.Error(stopErr))
			return nil
		}
		profile.Stops = ClassifyStops(point.Lat, point.Lon, nodes)
		return nil
	})
	g.Go(func() error {
		profile.CBD = r.routeOrStraightLine(gCtx, *point, DestCBD)
		return nil
	})
	g.Go(func() error {
		profile.Airport = r.routeOrStraightLine(gCtx, *point, DestAirport)
		return nil
	})
	_ = g.Wait()

	profile.CommuteCBD = CommuteCBD(point.DisplayName)
	profile.CommuteAirport = CommuteAirport(point.DisplayName)

	if nearest := nearestAny(profile.Stops); nearest != nil {
		walk := geo.WalkingMinutes(nearest.DistanceKm)
		profile.WalkMinutes = &walk
	}

	return profile, nil
}

// routeOrStraightLine asks the router, falling back to haversine when the
// route cannot be resolved. The result's Source records which one answered.
func (r *Resolver) routeOrStraightLine(ctx context.Context, origin nominatim.Point, dest model.Coords) model.RouteResult {
	if r.router != nil {
		route, err := r.router.Route(ctx, origin.Lat, origin.Lon, dest.Lat, dest.Lon)
		if err == nil && route != nil {
			duration := route.DurationMin
			return model.RouteResult{
				DistanceKm:  geo.Round2(route.DistanceKm),
				DurationMin: &duration,
				Source:      model.RouteSourceDriving,
			}
		}
		zap.L().Debug("transit: route failed, using straight line", zap.Error(err))
	}
	return model.RouteResult{
		DistanceKm: geo.Round2(geo.HaversineKm(origin.Lat, origin.Lon, dest.Lat, dest.Lon)),
		Source:     model.RouteSourceStraightLine,
	}
}
