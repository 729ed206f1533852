// Package bluetooth decodes bluetoothctl's interactive scan stream and
// hcitool's one-line-per-device output into Bluetooth device records,
// classifying device type and flagging known anti-theft trackers.
package bluetooth

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/unipheas/intercept/internal/btclass"
	"github.com/unipheas/intercept/internal/eventbus"
	"github.com/unipheas/intercept/internal/model"
	"github.com/unipheas/intercept/internal/oui"
	"github.com/unipheas/intercept/internal/process"
	"github.com/unipheas/intercept/internal/state"
)

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripANSI removes terminal escape sequences bluetoothctl emits for
// its interactive prompt coloring, which would otherwise corrupt the
// device-name and RSSI matches below.
func StripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

var macRE = regexp.MustCompile(`^[0-9A-Fa-f]{2}(:[0-9A-Fa-f]{2}){5}$`)
var rssiRE = regexp.MustCompile(`Device\s+([0-9A-Fa-f:]{17})\s+RSSI:\s*(-?\d+)`)
var deviceRE = regexp.MustCompile(`Device\s+([0-9A-Fa-f:]{17})\s+(.*)$`)
var ctlPropRE = regexp.MustCompile(`^([A-Za-z][A-Za-z ]*):\s*(.*)$`)

// ParseCtl decodes one bluetoothctl output line (newline already
// stripped). It recognizes two shapes: a "Device <MAC> RSSI: <n>"
// signal-strength update, and a "[NEW|CHG] Device <MAC> <name>"
// discovery/rename line. ok is false for anything else (prompts, menu
// banners, connection chatter).
func ParseCtl(line string) (mac, name string, rssi *int, ok bool) {
	line = StripANSI(line)

	if m := rssiRE.FindStringSubmatch(line); m != nil {
		v, err := strconv.Atoi(m[2])
		if err != nil {
			return "", "", nil, false
		}
		return strings.ToUpper(m[1]), "", &v, true
	}
	if m := deviceRE.FindStringSubmatch(line); m != nil {
		name := strings.TrimSpace(m[2])
		// "Key: value" property lines: only Name/Alias are renames.
		if kv := ctlPropRE.FindStringSubmatch(name); kv != nil {
			if kv[1] != "Name" && kv[1] != "Alias" {
				return "", "", nil, false
			}
			name = strings.TrimSpace(kv[2])
		}
		return strings.ToUpper(m[1]), name, nil, true
	}
	return "", "", nil, false
}

// ParseHcitool decodes one line of `hcitool lescan`/`hcitool scan`
// output: "<MAC>\t<name>", name optional.
func ParseHcitool(line string) (mac, name string, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(line), "\t", 2)
	if len(parts) == 0 {
		return "", "", false
	}
	candidate := strings.ToUpper(strings.TrimSpace(parts[0]))
	if !macRE.MatchString(candidate) {
		return "", "", false
	}
	if len(parts) == 2 {
		name = strings.TrimSpace(parts[1])
	}
	return candidate, name, true
}

// Classify derives a device category and, when the name or MAC prefix
// matches a known anti-theft tag, a Tracker annotation.
func Classify(name, mac string) (deviceType string, tracker *model.Tracker) {
	if tName, risk, ok := btclass.DetectTracker(name, mac); ok {
		return string(btclass.CategoryTracker), &model.Tracker{Type: "tracker", Name: tName, Risk: risk}
	}
	return string(btclass.ClassifyName(name)), nil
}

// Upsert merges one observation into devices, publishing a "new" or
// "update" device event. rssi may be nil when the observation carries
// no signal-strength reading (a plain discovery line).
func Upsert(mac, name string, rssi *int, lookup *oui.Lookup,
	devices *state.Store[string, model.BluetoothDevice], bus *eventbus.Bus) {

	now := time.Now()
	rec, existed := devices.Get(mac)

	rec.Type = "device"
	rec.MAC = mac
	if name != "" {
		rec.Name = name
	}
	if rssi != nil {
		v := *rssi
		rec.RSSI = &v
	}
	if rec.Manufacturer == "" && lookup != nil {
		if v := lookup.Vendor(mac); v != "" {
			rec.Manufacturer = v
		}
	}
	rec.DeviceType, rec.Tracker = Classify(rec.Name, mac)
	rec.LastSeen = now.Format(time.RFC3339)

	if existed {
		rec.Action = "update"
	} else {
		rec.Action = "new"
	}

	devices.Upsert(mac, rec, now.UnixNano())
	bus.Publish(rec)
}

// StreamCtl returns a process.LineFunc suitable for wiring as the
// bluetoothctl child's onLine callback: every decodable line upserts
// the device store, everything else is forwarded as a raw event so
// the operator still sees tool chatter.
func StreamCtl(lookup *oui.Lookup, devices *state.Store[string, model.BluetoothDevice], bus *eventbus.Bus) process.LineFunc {
	return func(line string) {
		mac, name, rssi, ok := ParseCtl(line)
		if !ok {
			bus.Publish(map[string]interface{}{"type": "raw", "text": StripANSI(line)})
			return
		}
		Upsert(mac, name, rssi, lookup, devices, bus)
	}
}

// StreamHcitool returns a process.LineFunc for the legacy
// `hcitool lescan` path.
func StreamHcitool(lookup *oui.Lookup, devices *state.Store[string, model.BluetoothDevice], bus *eventbus.Bus) process.LineFunc {
	return func(line string) {
		mac, name, ok := ParseHcitool(line)
		if !ok {
			bus.Publish(map[string]interface{}{"type": "raw", "text": line})
			return
		}
		Upsert(mac, name, nil, lookup, devices, bus)
	}
}
