package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/haihuyentran/melbourne-properties/internal/dataset"
	"github.com/haihuyentran/melbourne-properties/internal/model"
	"github.com/haihuyentran/melbourne-properties/internal/store"
	"github.com/haihuyentran/melbourne-properties/internal/upstream"
	"github.com/haihuyentran/melbourne-properties/pkg/nominatim"
)

// Geocoder resolves a free-text query to a point. The nominatim client's
// internal gate rate-limits every call regardless of caller.
type Geocoder interface {
	Search(ctx context.Context, query string) (*nominatim.Point, error)
}

// GeocodeFill resolves coordinates for every suburb that lacks them. The
// durable cache is consulted first, so a rerun over the same set issues zero
// external calls; fresh results are written to the cache before the dataset,
// making the cache the resumption checkpoint. Per-suburb failures are logged
// and skipped.
func GeocodeFill(ctx context.Context, ds *dataset.Dataset, st *store.Store, g Geocoder) (resolved, failed int, err error) {
	for _, name := range ds.SortedNames() {
		rec := ds.Get(name)
		if rec.HasCoords() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return resolved, failed, err
		}

		lat, lon, ok, err := st.GetCoords(ctx, name)
		if err != nil {
			return resolved, failed, err
		}
		if !ok {
			point, searchErr := g.Search(ctx, fmt.Sprintf("%s, Victoria, Australia", name))
			if searchErr != nil {
				level := zap.L().Warn
				if upstream.IsNotFound(searchErr) {
					level = zap.L().Info
				}
				level("pipeline: geocode miss", zap.String("suburb", name), zap.Error(searchErr))
				failed++
				continue
			}
			lat, lon = point.Lat, point.Lon
			if err := st.PutCoords(ctx, name, lat, lon); err != nil {
				return resolved, failed, err
			}
		}

		rec.Coords = &model.Coords{Lat: lat, Lon: lon}
		resolved++
	}

	zap.L().Info("pipeline: geocode fill complete",
		zap.Int("resolved", resolved), zap.Int("failed", failed))
	return resolved, failed, nil
}
