package modes

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/unipheas/intercept/internal/model"
	"github.com/unipheas/intercept/internal/satellite"
	"github.com/unipheas/intercept/internal/tle"
	"github.com/unipheas/intercept/internal/validate"
)

// Satellite wraps the TLE cache and the SGP4 prediction routines
// behind the validated request shapes the HTTP layer exposes. Unlike
// every other mode controller, it supervises no subprocess: pass
// prediction is pure computation over cached elements, and TLE refresh
// is a single bounded HTTP fetch.
type Satellite struct {
	log   *zap.SugaredLogger
	cache *tle.Cache
}

// NewSatellite builds a Satellite controller with a seed-populated TLE
// cache.
func NewSatellite(log *zap.SugaredLogger) *Satellite {
	return &Satellite{log: log, cache: tle.New()}
}

// PredictParams is the validated request shape for /satellite/predict.
type PredictParams struct {
	Lat, Lon, Hours, MinEl float64
	Names                  []string
}

// Predict returns every pass of the requested satellites within the
// window, defaulting to Satellite's built-in set when Names is empty.
func (s *Satellite) Predict(params PredictParams) ([]model.Pass, error) {
	if err := validate.Latitude(params.Lat); err != nil {
		return nil, err
	}
	if err := validate.Longitude(params.Lon); err != nil {
		return nil, err
	}
	if err := validate.Hours(params.Hours); err != nil {
		return nil, err
	}
	if err := validate.MinElevation(params.MinEl); err != nil {
		return nil, err
	}

	names := params.Names
	if len(names) == 0 {
		names = satellite.DefaultSatellites
	}
	return satellite.Predict(s.cache, time.Now(), params.Lat, params.Lon, params.Hours, params.MinEl, names), nil
}

// PositionParams is the validated request shape for /satellite/position.
type PositionParams struct {
	Lat, Lon     float64
	Names        []string
	IncludeTrack bool
}

// Position returns the current topocentric snapshot for each requested
// satellite.
func (s *Satellite) Position(params PositionParams) ([]model.Position, error) {
	if err := validate.Latitude(params.Lat); err != nil {
		return nil, err
	}
	if err := validate.Longitude(params.Lon); err != nil {
		return nil, err
	}

	names := params.Names
	if len(names) == 0 {
		names = satellite.DefaultSatellites
	}
	return satellite.Position(s.cache, time.Now(), params.Lat, params.Lon, names, params.IncludeTrack), nil
}

// UpdateTLE refreshes the cache from CelesTrak, returning the short
// names actually updated.
func (s *Satellite) UpdateTLE(ctx context.Context) ([]string, error) {
	return s.cache.UpdateFromCelestrak(ctx)
}

// Celestrak browses one CelesTrak GP category without touching the
// cache, for the UI's satellite-picker route.
func (s *Satellite) Celestrak(ctx context.Context, category string) ([]tle.GPRecord, error) {
	return tle.FetchCategory(ctx, category)
}

// Names returns every satellite currently held in the cache.
func (s *Satellite) Names() []string { return s.cache.Names() }
