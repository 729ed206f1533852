// Package wifi decodes airodump-ng's periodic CSV dump into WiFi
// network and client records. The parse is deliberately tolerant:
// airodump rewrites the file mid-scan, so individual malformed rows
// are skipped rather than failing the snapshot.
package wifi

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/unipheas/intercept/internal/eventbus"
	"github.com/unipheas/intercept/internal/model"
	"github.com/unipheas/intercept/internal/oui"
	"github.com/unipheas/intercept/internal/state"
)

// PollInterval is how often the CSV file is re-read while a scan runs.
const PollInterval = 2 * time.Second

// FileGraceWindow is how long the poller waits for airodump-ng to
// produce its first CSV file before surfacing an error event.
const FileGraceWindow = 5 * time.Second

// ParseCSV parses one airodump-ng CSV snapshot into its AP and station
// tables. The file holds two comma-separated sections: an AP section
// whose header starts with "BSSID", and a station section whose header
// starts with "Station MAC". Blank lines divide the sections, but
// airodump rewrites the file mid-scan, so the parse keys off the header
// rows themselves and tolerates blank lines anywhere. Malformed
// individual rows are skipped rather than failing the whole parse.
func ParseCSV(content string, lookup *oui.Lookup, now time.Time) (map[string]model.WifiNetwork, map[string]model.WifiClient) {
	networks := make(map[string]model.WifiNetwork)
	clients := make(map[string]model.WifiClient)

	const (
		inNone = iota
		inAPs
		inStations
	)
	section := inNone

	content = strings.ReplaceAll(content, "\r\n", "\n")
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		row := splitRow(line)

		switch {
		case strings.EqualFold(row[0], "BSSID"):
			section = inAPs
			continue
		case strings.EqualFold(row[0], "Station MAC"):
			section = inStations
			continue
		}

		switch section {
		case inAPs:
			if n, ok := parseAPRow(row, now); ok {
				networks[n.BSSID] = n
			}
		case inStations:
			if c, ok := parseStationRow(row, lookup, now); ok {
				clients[c.MAC] = c
			}
		}
	}
	return networks, clients
}

// splitRow splits one CSV line into comma-delimited, trimmed fields.
func splitRow(line string) []string {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

// AP row layout: BSSID, First seen, Last seen, channel, Speed, Privacy,
// Cipher, Authentication, Power, # beacons, # IV, LAN IP, ID-length,
// ESSID, Key.
func parseAPRow(row []string, now time.Time) (model.WifiNetwork, bool) {
	if len(row) < 14 {
		return model.WifiNetwork{}, false
	}
	bssid := strings.ToUpper(row[0])
	if bssid == "" {
		return model.WifiNetwork{}, false
	}

	essid := row[13]
	if essid == "" {
		essid = "Hidden"
	}

	firstSeen := row[1]
	lastSeen := row[2]
	if lastSeen == "" {
		lastSeen = now.Format("2006-01-02 15:04:05")
	}

	return model.WifiNetwork{
		Type:      "network",
		BSSID:     bssid,
		ESSID:     essid,
		Channel:   row[3],
		Privacy:   row[5],
		Cipher:    row[6],
		Auth:      row[7],
		Power:     row[8],
		Beacons:   row[9],
		FirstSeen: firstSeen,
		LastSeen:  lastSeen,
	}, true
}

// Station row layout: Station MAC, First seen, Last seen, Power,
// # packets, BSSID, Probed ESSIDs (remaining fields, comma-joined
// since SSIDs may themselves contain commas).
func parseStationRow(row []string, lookup *oui.Lookup, now time.Time) (model.WifiClient, bool) {
	if len(row) < 6 {
		return model.WifiClient{}, false
	}
	mac := strings.ToUpper(row[0])
	if mac == "" {
		return model.WifiClient{}, false
	}

	bssid := strings.ToUpper(row[5])
	if bssid == "(not associated)" || bssid == "" {
		bssid = ""
	}

	var probes string
	if len(row) > 6 {
		probes = strings.Join(trimEmpty(row[6:]), ",")
	}

	firstSeen := row[1]
	lastSeen := row[2]
	if lastSeen == "" {
		lastSeen = now.Format("2006-01-02 15:04:05")
	}

	vendor := ""
	if lookup != nil {
		vendor = lookup.Vendor(mac)
	}
	if vendor == "" {
		vendor = "Unknown"
	}

	return model.WifiClient{
		Type:      "client",
		MAC:       mac,
		BSSID:     bssid,
		Power:     row[3],
		Packets:   row[4],
		Probes:    probes,
		Vendor:    vendor,
		FirstSeen: firstSeen,
		LastSeen:  lastSeen,
	}, true
}

func trimEmpty(fields []string) []string {
	var out []string
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Poll re-reads path every PollInterval, replacing the network/client
// stores atomically each cycle and publishing a network/client event
// per observed row with action "new" or "update" depending on whether
// the key already existed. It runs until ctx is cancelled. If no file
// appears within FileGraceWindow of Poll starting, a single error
// event is published.
func Poll(ctx context.Context, path string, lookup *oui.Lookup,
	networks *state.Store[string, model.WifiNetwork],
	clients *state.Store[string, model.WifiClient],
	bus *eventbus.Bus) {

	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	start := time.Now()
	seenFile := false
	warnedOnce := false

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if !seenFile && !warnedOnce && time.Since(start) > FileGraceWindow {
				bus.Publish(map[string]interface{}{
					"type": "error",
					"text": "airodump-ng CSV not found: " + path,
				})
				warnedOnce = true
			}
			continue
		}
		seenFile = true

		now := time.Now()
		nets, cls := ParseCSV(string(data), lookup, now)

		for bssid, n := range nets {
			if _, existed := networks.Get(bssid); existed {
				n.Action = "update"
			} else {
				n.Action = "new"
			}
			nets[bssid] = n
			bus.Publish(n)
		}
		networks.Replace(nets, now.UnixNano())

		for mac, c := range cls {
			if _, existed := clients.Get(mac); existed {
				c.Action = "update"
			} else {
				c.Action = "new"
			}
			cls[mac] = c
			bus.Publish(c)
		}
		clients.Replace(cls, now.UnixNano())
	}
}
