package wifi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unipheas/intercept/internal/oui"
)

const sampleCSV = `BSSID, First time seen, Last time seen, channel, Speed, Privacy, Cipher, Authentication, Power, # beacons, # IV, LAN IP, ID-length, ESSID, Key

AA:BB:CC:DD:EE:FF, 2025-01-01 10:00:00, 2025-01-01 10:05:00, 6, 54, WPA2, CCMP, PSK, -45, 120, 0, 0.0.0.0, 0, ,

11:22:33:44:55:66, 2025-01-01 10:00:00, 2025-01-01 10:05:00, 11, 54, OPN, , , -60, 80, 0, 0.0.0.0, 4, HomeNet,

Station MAC, First time seen, Last time seen, Power, # packets, BSSID, Probed ESSIDs

12:34:56:78:9A:BC, 2025-01-01 10:01:00, 2025-01-01 10:04:00, -50, 30, AA:BB:CC:DD:EE:FF, HomeNet,GuestNet
`

func TestParseCSVHiddenESSID(t *testing.T) {
	nets, _ := ParseCSV(sampleCSV, nil, time.Now())
	n, ok := nets["AA:BB:CC:DD:EE:FF"]
	require.True(t, ok)
	assert.Equal(t, "Hidden", n.ESSID)
	assert.Equal(t, "6", n.Channel)
}

func TestParseCSVNamedNetwork(t *testing.T) {
	nets, _ := ParseCSV(sampleCSV, nil, time.Now())
	n, ok := nets["11:22:33:44:55:66"]
	require.True(t, ok)
	assert.Equal(t, "HomeNet", n.ESSID)
}

func TestParseCSVStationProbes(t *testing.T) {
	_, clients := ParseCSV(sampleCSV, oui.New(""), time.Now())
	c, ok := clients["12:34:56:78:9A:BC"]
	require.True(t, ok)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", c.BSSID)
	assert.Equal(t, "HomeNet,GuestNet", c.Probes)
	assert.NotEmpty(t, c.Vendor)
}
