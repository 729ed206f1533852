// Package btclass classifies Bluetooth/BLE peers by advertised name
// and flags known anti-theft trackers.
package btclass

import "strings"

// Category is a coarse Bluetooth device classification.
type Category string

// Device categories surfaced in the UI's device_type field.
const (
	CategoryAudio    Category = "audio"
	CategoryWearable Category = "wearable"
	CategoryPhone    Category = "phone"
	CategoryTracker  Category = "tracker"
	CategoryInput    Category = "input"
	CategoryMedia    Category = "media"
	CategoryComputer Category = "computer"
	CategoryImaging  Category = "imaging"
	CategoryOther    Category = "other"
)

type trackerEntry struct {
	match string
	name  string
	risk  string
}

// trackerTable lists name substrings that identify known anti-theft
// tracking tags, checked in order; the first substring found wins.
var trackerTable = []trackerEntry{
	{"airtag", "Apple AirTag", "high"},
	{"find my", "Apple Find My network accessory", "high"},
	{"tile", "Tile tracker", "medium"},
	{"smarttag", "Samsung SmartTag", "medium"},
	{"galaxy smarttag", "Samsung SmartTag", "medium"},
	{"chipolo", "Chipolo tracker", "medium"},
}

// trackerPrefixes maps MAC OUI prefixes to known tracker vendors, for
// tags that advertise with no usable name.
var trackerPrefixes = map[string]trackerEntry{
	"D0:73:D5": {"", "Tile tracker", "medium"},
	"C8:F6:50": {"", "Chipolo tracker", "medium"},
	"E4:5E:1B": {"", "Samsung SmartTag", "medium"},
}

// nameTable maps name substrings to a coarse category, most to least
// specific, used when the class-of-device value itself is unhelpful.
var nameTable = []struct {
	match string
	cat   Category
}{
	{"airpods", CategoryAudio},
	{"buds", CategoryAudio},
	{"headphone", CategoryAudio},
	{"speaker", CategoryAudio},
	{"soundbar", CategoryAudio},
	{"watch", CategoryWearable},
	{"band", CategoryWearable},
	{"fitbit", CategoryWearable},
	{"iphone", CategoryPhone},
	{"galaxy s", CategoryPhone},
	{"pixel", CategoryPhone},
	{"keyboard", CategoryInput},
	{"mouse", CategoryInput},
	{"trackpad", CategoryInput},
	{"tv", CategoryMedia},
	{"chromecast", CategoryMedia},
	{"macbook", CategoryComputer},
	{"laptop", CategoryComputer},
	{"printer", CategoryImaging},
	{"camera", CategoryImaging},
}

// ClassifyName derives a device category from a BLE advertised name.
// Returns CategoryOther when nothing matches.
func ClassifyName(name string) Category {
	lower := strings.ToLower(name)
	for _, e := range nameTable {
		if strings.Contains(lower, e.match) {
			return e.cat
		}
	}
	return CategoryOther
}

// DetectTracker reports whether the name or the MAC's OUI prefix
// identifies a known anti-theft tracking tag, returning its display
// name and risk level. Name substrings win over the prefix table since
// they are the more specific signal.
func DetectTracker(name, mac string) (trackerName, risk string, ok bool) {
	lower := strings.ToLower(name)
	for _, t := range trackerTable {
		if strings.Contains(lower, t.match) {
			return t.name, t.risk, true
		}
	}
	if len(mac) >= 8 {
		if t, ok := trackerPrefixes[strings.ToUpper(mac[:8])]; ok {
			return t.name, t.risk, true
		}
	}
	return "", "", false
}
