package satellite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unipheas/intercept/internal/tle"
)

func TestResolveNamesMixedInput(t *testing.T) {
	names := ResolveNames([]interface{}{"ISS", float64(25338), "NOAA-19"})
	assert.Equal(t, []string{"ISS", "NOAA-15", "NOAA-19"}, names)
}

func TestResolveNamesIgnoresUnknownNorad(t *testing.T) {
	names := ResolveNames([]interface{}{float64(99999)})
	assert.Empty(t, names)
}

func TestPredictPassShapes(t *testing.T) {
	cache := tle.New()
	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)

	passes := Predict(cache, now, 51.5074, -0.1278, 24, 0, []string{"ISS"})
	for _, p := range passes {
		assert.Equal(t, "ISS", p.Satellite)
		assert.Equal(t, 25544, p.Norad)
		assert.Len(t, p.Trajectory, trajectoryPoints)
		assert.Len(t, p.GroundTrack, groundTrackPoints)
		assert.True(t, p.SeedTLE)
	}

	for i := 1; i < len(passes); i++ {
		assert.LessOrEqual(t, passes[i-1].StartTime, passes[i].StartTime,
			"passes sorted ascending by start time")
	}
}

func TestPredictHonorsMinElevation(t *testing.T) {
	cache := tle.New()
	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)

	passes := Predict(cache, now, 51.5074, -0.1278, 24, 10, []string{"ISS"})
	for _, p := range passes {
		assert.GreaterOrEqual(t, p.MaxEl, 10.0)
	}
}

func TestPredictSkipsUnknownSatellite(t *testing.T) {
	cache := tle.New()
	passes := Predict(cache, time.Now(), 0, 0, 1, 0, []string{"NOT-A-SAT"})
	assert.Empty(t, passes)
}

func TestPositionTrackSampling(t *testing.T) {
	cache := tle.New()
	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)

	positions := Position(cache, now, 51.5074, -0.1278, []string{"ISS"}, true)
	require.Len(t, positions, 1)

	p := positions[0]
	assert.Len(t, p.Track, 91, "one point per minute across ±45 min")
	assert.True(t, p.Track[0].Past)
	assert.False(t, p.Track[90].Past)
	assert.InDelta(t, 0, p.Lat, 90)
	assert.InDelta(t, 0, p.Lon, 180)
	assert.Equal(t, p.Elevation > 0, p.Visible)
}
