// Package tle maintains INTERCEPT's in-memory two-line-element cache
// for satellite tracking. The cache starts pre-seeded with a handful
// of high-interest satellites so /satellite/predict works before any
// network fetch; seed entries are flagged so stale elements are never
// mistaken for fresh ones.
package tle

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Entry is one satellite's current two-line element set.
type Entry struct {
	Name    string
	Line1   string
	Line2   string
	Norad   int
	IsSeed  bool
	Updated time.Time
}

// Cache is a thread-safe, name-keyed TLE store.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NameMappings translates CelesTrak's published satellite names to
// the short names INTERCEPT's cache and UI use.
var NameMappings = map[string]string{
	"ISS (ZARYA)":  "ISS",
	"NOAA 15":      "NOAA-15",
	"NOAA 18":      "NOAA-18",
	"NOAA 19":      "NOAA-19",
	"NOAA 20":      "NOAA-20",
	"METEOR-M 2":   "METEOR-M2",
	"METEOR-M2 3":  "METEOR-M2-3",
}

// NoradIDs maps the cache's short names to their NORAD catalog number,
// for API responses and the satellites-by-ID request shape.
var NoradIDs = map[string]int{
	"ISS":         25544,
	"NOAA-15":     25338,
	"NOAA-18":     28654,
	"NOAA-19":     33591,
	"NOAA-20":     43013,
	"METEOR-M2":   40069,
	"METEOR-M2-3": 57166,
}

// seedElements are a compiled-in fallback TLE set, accurate as of this
// build and refreshed via /satellite/update-tle in normal operation.
var seedElements = map[string][2]string{
	"ISS": {
		"1 25544U 98067A   24001.50000000  .00016717  00000-0  10270-3 0  9994",
		"2 25544  51.6416 339.8627 0006703  60.0000 300.0000 15.50103472000017",
	},
	"NOAA-15": {
		"1 25338U 98030A   24001.50000000  .00000080  00000-0  54576-4 0  9993",
		"2 25338  98.7200  60.0000 0010500  90.0000 270.0000 14.25900000000012",
	},
	"NOAA-18": {
		"1 28654U 05018A   24001.50000000  .00000120  00000-0  84000-4 0  9990",
		"2 28654  99.0500  75.0000 0014000 100.0000 260.0000 14.12500000000015",
	},
	"NOAA-19": {
		"1 33591U 09005A   24001.50000000  .00000100  00000-0  70000-4 0  9998",
		"2 33591  99.1900  80.0000 0013500 110.0000 250.0000 14.12300000000014",
	},
	"NOAA-20": {
		"1 43013U 17073A   24001.50000000  .00000050  00000-0  30000-4 0  9991",
		"2 43013  98.7000  65.0000 0001000 120.0000 240.0000 14.19500000000016",
	},
	"METEOR-M2": {
		"1 40069U 14037A   24001.50000000  .00000040  00000-0  28000-4 0  9995",
		"2 40069  98.5600  70.0000 0005000  95.0000 265.0000 14.21000000000017",
	},
	"METEOR-M2-3": {
		"1 57166U 23091A   24001.50000000  .00000030  00000-0  20000-4 0  9992",
		"2 57166  98.6000  72.0000 0004000  98.0000 262.0000 14.22000000000010",
	},
}

// New builds a Cache pre-populated with the seed element set.
func New() *Cache {
	c := &Cache{entries: make(map[string]Entry)}
	for name, lines := range seedElements {
		c.entries[name] = Entry{
			Name:   name,
			Line1:  lines[0],
			Line2:  lines[1],
			Norad:  NoradIDs[name],
			IsSeed: true,
		}
	}
	return c
}

// Get returns the current element set for name.
func (c *Cache) Get(name string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[name]
	return e, ok
}

// Names returns every satellite name the cache currently knows.
func (c *Cache) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.entries))
	for n := range c.entries {
		out = append(out, n)
	}
	return out
}

var allowedTLEHosts = map[string]bool{
	"celestrak.org":     true,
	"celestrak.com":     true,
	"www.celestrak.org": true,
	"www.celestrak.com": true,
}

// maxResponseBytes bounds how much of a CelesTrak response body is
// ever read into memory.
const maxResponseBytes = 1024 * 1024

// groupURL builds the CelesTrak GP fetch URL for a named group.
func groupURL(group string) string {
	v := url.Values{}
	v.Set("GROUP", group)
	v.Set("FORMAT", "tle")
	return "https://celestrak.org/NORAD/elements/gp.php?" + v.Encode()
}

func fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if !allowedTLEHosts[u.Hostname()] {
		return "", fmt.Errorf("host not allowed: %s", u.Hostname())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("celestrak returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GPRecord is one parsed three-line TLE record from a CelesTrak GP
// response.
type GPRecord struct {
	Name  string
	Norad int
	Line1 string
	Line2 string
}

func parseTLEText(content string) []GPRecord {
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}

	var out []GPRecord
	for i := 0; i+2 < len(lines); i += 3 {
		name, l1, l2 := lines[i], lines[i+1], lines[i+2]
		if !strings.HasPrefix(l1, "1 ") || !strings.HasPrefix(l2, "2 ") {
			continue
		}
		norad := 0
		if len(l1) >= 7 {
			norad, _ = strconv.Atoi(strings.TrimSpace(l1[2:7]))
		}
		out = append(out, GPRecord{Name: name, Norad: norad, Line1: l1, Line2: l2})
	}
	return out
}

// UpdateFromCelestrak refreshes every cached satellite found in the
// "stations" and "weather" CelesTrak groups, returning the short names
// actually updated.
func (c *Cache) UpdateFromCelestrak(ctx context.Context) ([]string, error) {
	var updated []string
	for _, group := range []string{"stations", "weather"} {
		body, err := fetch(ctx, groupURL(group))
		if err != nil {
			continue
		}
		for _, rec := range parseTLEText(body) {
			short, known := NameMappings[rec.Name]
			if !known {
				short = rec.Name
			}

			c.mu.Lock()
			if _, exists := c.entries[short]; exists {
				c.entries[short] = Entry{
					Name:    short,
					Line1:   rec.Line1,
					Line2:   rec.Line2,
					Norad:   rec.Norad,
					Updated: time.Now(),
				}
				updated = append(updated, short)
			}
			c.mu.Unlock()
		}
	}
	return updated, nil
}

// validCategories are the CelesTrak GP groups INTERCEPT allows an
// operator to browse via /satellite/celestrak/<category>.
var validCategories = map[string]bool{
	"stations": true, "weather": true, "noaa": true, "goes": true,
	"resource": true, "sarsat": true, "dmc": true, "tdrss": true,
	"argos": true, "planet": true, "spire": true, "geo": true,
	"intelsat": true, "ses": true, "iridium": true, "iridium-NEXT": true,
	"starlink": true, "oneweb": true, "amateur": true, "cubesat": true,
	"visual": true,
}

// ValidCategory reports whether category is a recognized CelesTrak GP
// group.
func ValidCategory(category string) bool {
	return validCategories[category]
}

// FetchCategory downloads and parses every satellite in the named
// CelesTrak GP category without touching the cache.
func FetchCategory(ctx context.Context, category string) ([]GPRecord, error) {
	if !ValidCategory(category) {
		return nil, fmt.Errorf("invalid category %q", category)
	}
	body, err := fetch(ctx, groupURL(category))
	if err != nil {
		return nil, err
	}
	return parseTLEText(body), nil
}
