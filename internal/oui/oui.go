// Package oui resolves MAC address vendor prefixes for the WiFi and
// Bluetooth parsers: an optional IEEE database file on disk, with a
// small compiled-in table behind it so vendor lookups still work on a
// fresh install with no database configured.
package oui

import (
	"strings"
	"sync"

	"github.com/klauspost/oui"
)

// Lookup resolves MAC prefixes to vendor names, preferring an optional
// on-disk IEEE database and falling back to a compiled-in table.
type Lookup struct {
	mu       sync.RWMutex
	db       oui.StaticDB
	hasDB    bool
	fallback map[string]string
}

// New builds a Lookup. dbPath may be empty, in which case only the
// fallback table is used.
func New(dbPath string) *Lookup {
	l := &Lookup{fallback: fallbackTable}
	if dbPath != "" {
		if db, err := oui.OpenStaticFile(dbPath); err == nil {
			l.db = db
			l.hasDB = true
		}
	}
	return l
}

// Vendor returns the manufacturer name for mac, or "" if unknown.
func (l *Lookup) Vendor(mac string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.hasDB {
		if entry, err := l.db.Query(mac); err == nil {
			return entry.Manufacturer
		}
	}

	prefix := normalizePrefix(mac)
	if v, ok := l.fallback[prefix]; ok {
		return v
	}
	return ""
}

// Reload swaps in a freshly loaded on-disk database, used when an
// operator drops a new oui.txt into place without restarting.
func (l *Lookup) Reload(dbPath string) error {
	db, err := oui.OpenStaticFile(dbPath)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.db = db
	l.hasDB = true
	l.mu.Unlock()
	return nil
}

func normalizePrefix(mac string) string {
	mac = strings.ToUpper(strings.ReplaceAll(mac, "-", ":"))
	parts := strings.Split(mac, ":")
	if len(parts) < 3 {
		return ""
	}
	return strings.Join(parts[:3], ":")
}

// fallbackTable covers a handful of vendors common in home/office
// WiFi and BLE tracker scans, so vendor tagging still works with no
// IEEE database configured.
var fallbackTable = map[string]string{
	"00:1A:11": "Google",
	"F4:F5:E8": "Google",
	"AC:DE:48": "Apple",
	"F0:18:98": "Apple",
	"00:17:88": "Philips (Hue)",
	"B8:27:EB": "Raspberry Pi Foundation",
	"DC:A6:32": "Raspberry Pi Foundation",
	"00:1B:63": "Apple",
	"3C:D9:2B": "Hewlett Packard",
	"E0:DB:55": "Samsung",
	"00:25:00": "Apple",
	"FC:A1:83": "Samsung",
	"8C:85:90": "Apple",
	"D0:73:D5": "Tile Inc",
	"C8:F6:50": "Chipolo",
}
