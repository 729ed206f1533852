package tle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGP = `ISS (ZARYA)
1 25544U 98067A   25123.50000000  .00016717  00000-0  10270-3 0  9994
2 25544  51.6416 339.8627 0006703  60.0000 300.0000 15.50103472000017
NOAA 15
1 25338U 98030A   25123.50000000  .00000080  00000-0  54576-4 0  9993
2 25338  98.7200  60.0000 0010500  90.0000 270.0000 14.25900000000012
`

func TestParseTLEText(t *testing.T) {
	recs := parseTLEText(sampleGP)
	require.Len(t, recs, 2)
	assert.Equal(t, "ISS (ZARYA)", recs[0].Name)
	assert.Equal(t, 25544, recs[0].Norad)
	assert.Equal(t, "NOAA 15", recs[1].Name)
	assert.Equal(t, 25338, recs[1].Norad)
}

func TestParseTLETextSkipsMalformedTriplets(t *testing.T) {
	recs := parseTLEText("GARBAGE\nnot a line one\nnot a line two\n")
	assert.Empty(t, recs)
}

func TestSeedCacheIsFlagged(t *testing.T) {
	c := New()
	e, ok := c.Get("ISS")
	require.True(t, ok)
	assert.True(t, e.IsSeed)
	assert.Equal(t, 25544, e.Norad)
}

func TestValidCategory(t *testing.T) {
	assert.True(t, ValidCategory("weather"))
	assert.False(t, ValidCategory("../../etc"))
}

func TestFetchRejectsDisallowedHost(t *testing.T) {
	_, err := fetch(context.Background(), "https://evil.example.com/NORAD/elements/gp.php")
	assert.Error(t, err)
}
