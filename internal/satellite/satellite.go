// Package satellite predicts overhead passes and real-time positions
// for the satellites held in the TLE cache, via SGP4 propagation.
package satellite

import (
	"fmt"
	"sort"
	"time"

	gosat "github.com/joshuaferrara/go-satellite"

	"github.com/unipheas/intercept/internal/model"
	"github.com/unipheas/intercept/internal/tle"
)

// passStepMinutes is the coarse stride used while searching for rise
// and set events across the prediction window.
const passStepMinutes = 2

// trajectoryPoints is the number of elevation/azimuth samples taken
// across a single pass.
const trajectoryPoints = 30

// groundTrackPoints is the number of lat/lon samples taken across a
// single pass's sub-satellite track.
const groundTrackPoints = 60

// Colors assigns a display color per tracked satellite, matching the
// fixed palette the original dashboard used.
var Colors = map[string]string{
	"ISS":         "#00ffff",
	"NOAA-15":     "#00ff00",
	"NOAA-18":     "#ff6600",
	"NOAA-19":     "#ff3366",
	"NOAA-20":     "#00ffaa",
	"METEOR-M2":   "#9370DB",
	"METEOR-M2-3": "#ff00ff",
}

const defaultColor = "#00ff00"

// observation is one SGP4 propagation sample resolved to topocentric
// (az/el/range) and geocentric (lat/lon) coordinates for a single
// ground observer.
type observation struct {
	el, az, rangeKm float64
	lat, lon        float64
}

func observe(sat gosat.Satellite, t time.Time, obsLat, obsLon float64) observation {
	utc := t.UTC()
	year, month, day := utc.Year(), int(utc.Month()), utc.Day()
	hour, min, sec := utc.Hour(), utc.Minute(), utc.Second()

	pos, _ := gosat.Propagate(sat, year, month, day, hour, min, sec)
	gmst := gosat.GSTimeFromDate(year, month, day, hour, min, sec)

	_, _, subPointRad := gosat.ECIToLLA(pos, gmst)
	subPoint := gosat.LatLongDeg(subPointRad)

	obs := gosat.LatLong{Latitude: obsLat * deg2rad, Longitude: obsLon * deg2rad}
	jday := gosat.JDay(year, month, day, hour, min, sec)
	look := gosat.ECIToLookAngles(pos, obs, 0, jday)

	return observation{
		el:      look.El * rad2deg,
		az:      look.Az * rad2deg,
		rangeKm: look.Rg,
		lat:     subPoint.Latitude,
		lon:     subPoint.Longitude,
	}
}

const deg2rad = 3.14159265358979323846 / 180
const rad2deg = 180 / 3.14159265358979323846

// resolveSatellite loads the cached TLE for name and parses it into an
// SGP4 propagatable satellite.
func resolveSatellite(cache *tle.Cache, name string) (gosat.Satellite, bool) {
	entry, ok := cache.Get(name)
	if !ok {
		return gosat.Satellite{}, false
	}
	return gosat.TLEToSat(entry.Line1, entry.Line2, "wgs84"), true
}

// ResolveNames maps a request's mixed name/NORAD-ID satellite list to
// cache short names. Unknown NORAD ids are dropped rather than
// rejected, so one stale picker entry doesn't fail the request.
func ResolveNames(input []interface{}) []string {
	noradToName := make(map[int]string, len(tle.NoradIDs))
	for name, id := range tle.NoradIDs {
		noradToName[id] = name
	}

	out := make([]string, 0, len(input))
	for _, v := range input {
		switch x := v.(type) {
		case string:
			out = append(out, x)
		case float64:
			if name, ok := noradToName[int(x)]; ok {
				out = append(out, name)
			}
		case int:
			if name, ok := noradToName[x]; ok {
				out = append(out, name)
			}
		}
	}
	return out
}

// Predict searches [now, now+hours] for every rise/set pass of the
// named satellites above minEl degrees as seen from (lat, lon).
func Predict(cache *tle.Cache, now time.Time, lat, lon, hours, minEl float64, names []string) []model.Pass {
	windowEnd := now.Add(time.Duration(hours * float64(time.Hour)))

	var passes []model.Pass
	for _, name := range names {
		sat, ok := resolveSatellite(cache, name)
		if !ok {
			continue
		}

		entry, _ := cache.Get(name)
		passes = append(passes, findPasses(sat, entry, name, now, windowEnd, lat, lon, minEl)...)
	}

	sort.Slice(passes, func(i, j int) bool { return passes[i].StartTime < passes[j].StartTime })
	return passes
}

func findPasses(sat gosat.Satellite, tleEntry tle.Entry, name string, start, end time.Time, lat, lon, minEl float64) []model.Pass {
	var passes []model.Pass
	step := time.Duration(passStepMinutes) * time.Minute

	wasUp := observe(sat, start, lat, lon).el > 0
	riseT := start

	for t := start; t.Before(end); t = t.Add(step) {
		up := observe(sat, t, lat, lon).el > 0
		if !wasUp && up {
			riseT = t
		}
		if wasUp && !up {
			setT := t
			if p, ok := buildPass(sat, tleEntry, name, riseT, setT, lat, lon, minEl, start); ok {
				passes = append(passes, p)
			}
		}
		wasUp = up
	}

	return passes
}

func buildPass(sat gosat.Satellite, tleEntry tle.Entry, name string, rise, set time.Time, lat, lon, minEl float64, now time.Time) (model.Pass, bool) {
	duration := set.Sub(rise)
	if duration <= 0 {
		return model.Pass{}, false
	}

	trajectory := make([]model.TrajectoryPoint, trajectoryPoints)
	maxEl := 0.0
	for k := 0; k < trajectoryPoints; k++ {
		frac := float64(k) / float64(trajectoryPoints-1)
		t := rise.Add(time.Duration(float64(duration) * frac))
		obs := observe(sat, t, lat, lon)
		el := obs.el
		if el < 0 {
			el = 0
		}
		if el > maxEl {
			maxEl = el
		}
		trajectory[k] = model.TrajectoryPoint{El: el, Az: obs.az}
	}

	if maxEl < minEl {
		return model.Pass{}, false
	}

	groundTrack := make([]model.GroundTrackPoint, groundTrackPoints)
	for k := 0; k < groundTrackPoints; k++ {
		frac := float64(k) / float64(groundTrackPoints-1)
		t := rise.Add(time.Duration(float64(duration) * frac))
		obs := observe(sat, t, lat, lon)
		groundTrack[k] = model.GroundTrackPoint{Lat: obs.lat, Lon: obs.lon}
	}

	current := observe(sat, now, lat, lon)

	color, ok := Colors[name]
	if !ok {
		color = defaultColor
	}

	return model.Pass{
		Satellite:   name,
		Norad:       tle.NoradIDs[name],
		StartTime:   rise.UTC().Format("2006-01-02 15:04 UTC"),
		MaxEl:       round1(maxEl),
		Duration:    int(duration.Minutes()),
		Trajectory:  trajectory,
		GroundTrack: groundTrack,
		CurrentPos:  model.GroundTrackPoint{Lat: current.lat, Lon: current.lon},
		Color:       color,
		SeedTLE:     tleEntry.IsSeed,
	}, true
}

// Position returns the current topocentric snapshot (and, optionally,
// a ±45 minute ground track) for each named satellite.
func Position(cache *tle.Cache, now time.Time, lat, lon float64, names []string, includeTrack bool) []model.Position {
	var out []model.Position
	for _, name := range names {
		sat, ok := resolveSatellite(cache, name)
		if !ok {
			continue
		}
		entry, _ := cache.Get(name)

		obs := observe(sat, now, lat, lon)
		p := model.Position{
			Satellite: name,
			Lat:       obs.lat,
			Lon:       obs.lon,
			Elevation: obs.el,
			Azimuth:   obs.az,
			Distance:  obs.rangeKm,
			Visible:   obs.el > 0,
			SeedTLE:   entry.IsSeed,
		}

		if includeTrack {
			p.Track = make([]model.TrackPoint, 0, 91)
			for m := -45; m <= 45; m++ {
				t := now.Add(time.Duration(m) * time.Minute)
				o := observe(sat, t, lat, lon)
				p.Track = append(p.Track, model.TrackPoint{Lat: o.lat, Lon: o.lon, Past: m < 0})
			}
		}

		out = append(out, p)
	}
	return out
}

func round1(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}

// DefaultSatellites is the satellite set used when a request omits an
// explicit list.
var DefaultSatellites = []string{"ISS", "NOAA-15", "NOAA-18", "NOAA-19"}

// ErrUnknownSatellite is returned when a name resolves to nothing in
// the cache.
func ErrUnknownSatellite(name string) error {
	return fmt.Errorf("unknown satellite %q", name)
}
