// Package tools holds the static registry of external binaries
// INTERCEPT depends on, and a bounded-time probe for their presence.
package tools

import (
	"context"
	"os/exec"
	"sync"
	"time"
)

// Tool describes one external binary a capture mode depends on.
// InstallHints is keyed by package manager (apt, brew) so the UI can
// show the right command for the operator's platform.
type Tool struct {
	Name         string            `json:"name"`
	Binary       string            `json:"binary"`
	Mode         string            `json:"mode"`
	Required     bool              `json:"required"`
	Description  string            `json:"description"`
	InstallHints map[string]string `json:"install_hints"`
}

// InstallHint returns a single representative install command,
// preferring apt, for one-line error messages.
func (t Tool) InstallHint() string {
	if hint, ok := t.InstallHints["apt"]; ok {
		return hint
	}
	for _, hint := range t.InstallHints {
		return hint
	}
	return ""
}

// Status is the runtime presence report (and resolved path) for one Tool.
type Status struct {
	Tool
	Present bool   `json:"present"`
	Path    string `json:"path,omitempty"`
}

// Registry is the fixed list of tools every mode may invoke. Order is
// stable so /dependencies responses are deterministic.
var Registry = []Tool{
	{Name: "rtl_fm", Binary: "rtl_fm", Mode: "pager", Required: true,
		Description: "RTL-SDR FM demodulator", InstallHints: map[string]string{"apt": "apt install rtl-sdr", "brew": "brew install librtlsdr"}},
	{Name: "multimon-ng", Binary: "multimon-ng", Mode: "pager", Required: true,
		Description: "POCSAG/FLEX pager decoder", InstallHints: map[string]string{"apt": "apt install multimon-ng", "brew": "brew install multimon-ng"}},
	{Name: "rtl_433", Binary: "rtl_433", Mode: "sensor", Required: true,
		Description: "ISM-band sensor decoder", InstallHints: map[string]string{"apt": "apt install rtl-433", "brew": "brew install rtl_433"}},
	{Name: "rtl_test", Binary: "rtl_test", Mode: "common", Required: false,
		Description: "RTL-SDR device enumerator", InstallHints: map[string]string{"apt": "apt install rtl-sdr", "brew": "brew install librtlsdr"}},
	{Name: "airmon-ng", Binary: "airmon-ng", Mode: "wifi", Required: true,
		Description: "Monitor-mode toggler", InstallHints: map[string]string{"apt": "apt install aircrack-ng", "brew": "brew install aircrack-ng"}},
	{Name: "airodump-ng", Binary: "airodump-ng", Mode: "wifi", Required: true,
		Description: "WiFi scanner", InstallHints: map[string]string{"apt": "apt install aircrack-ng", "brew": "brew install aircrack-ng"}},
	{Name: "aireplay-ng", Binary: "aireplay-ng", Mode: "wifi", Required: false,
		Description: "Deauthentication / handshake capture", InstallHints: map[string]string{"apt": "apt install aircrack-ng", "brew": "brew install aircrack-ng"}},
	{Name: "aircrack-ng", Binary: "aircrack-ng", Mode: "wifi", Required: false,
		Description: "Handshake verification", InstallHints: map[string]string{"apt": "apt install aircrack-ng", "brew": "brew install aircrack-ng"}},
	{Name: "hcxdumptool", Binary: "hcxdumptool", Mode: "wifi", Required: false,
		Description: "PMKID capture", InstallHints: map[string]string{"apt": "apt install hcxdumptool", "brew": "brew install hcxdumptool"}},
	{Name: "hcxpcapngtool", Binary: "hcxpcapngtool", Mode: "wifi", Required: false,
		Description: "PMKID hash conversion", InstallHints: map[string]string{"apt": "apt install hcxtools", "brew": "brew install hcxtools"}},
	{Name: "iw", Binary: "iw", Mode: "wifi", Required: false,
		Description: "WiFi interface enumeration", InstallHints: map[string]string{"apt": "apt install iw"}},
	{Name: "bluetoothctl", Binary: "bluetoothctl", Mode: "bluetooth", Required: true,
		Description: "Bluetooth scanner/control", InstallHints: map[string]string{"apt": "apt install bluez"}},
	{Name: "hcitool", Binary: "hcitool", Mode: "bluetooth", Required: false,
		Description: "Legacy Bluetooth device scan", InstallHints: map[string]string{"apt": "apt install bluez-hcidump"}},
	{Name: "dump1090", Binary: "dump1090", Mode: "adsb", Required: true,
		Description: "ADS-B Mode-S decoder", InstallHints: map[string]string{"source": "build dump1090-mutability or dump1090-fa"}},
	{Name: "rtl_adsb", Binary: "rtl_adsb", Mode: "adsb", Required: false,
		Description: "Fallback raw Mode-S receiver", InstallHints: map[string]string{"apt": "apt install rtl-sdr", "brew": "brew install librtlsdr"}},
	{Name: "hciconfig", Binary: "hciconfig", Mode: "bluetooth", Required: false,
		Description: "HCI adapter enumeration/reset", InstallHints: map[string]string{"apt": "apt install bluez"}},
	{Name: "sdptool", Binary: "sdptool", Mode: "bluetooth", Required: false,
		Description: "Bluetooth service discovery", InstallHints: map[string]string{"apt": "apt install bluez"}},
	{Name: "rtl_fm", Binary: "rtl_fm", Mode: "iridium", Required: true,
		Description: "RTL-SDR raw sampler for the Iridium band", InstallHints: map[string]string{"apt": "apt install rtl-sdr", "brew": "brew install librtlsdr"}},
}

// Probe checks presence of every tool in the registry via exec.LookPath,
// bounded by ctx so a misbehaving PATH entry can never hang startup.
func Probe(ctx context.Context) []Status {
	out := make([]Status, len(Registry))
	var wg sync.WaitGroup
	for i, t := range Registry {
		wg.Add(1)
		go func(i int, t Tool) {
			defer wg.Done()
			out[i] = probeOne(ctx, t)
		}(i, t)
	}
	wg.Wait()
	return out
}

func probeOne(ctx context.Context, t Tool) Status {
	type result struct {
		path string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		p, err := exec.LookPath(t.Binary)
		ch <- result{p, err}
	}()

	select {
	case r := <-ch:
		return Status{Tool: t, Present: r.err == nil, Path: r.path}
	case <-time.After(2 * time.Second):
		return Status{Tool: t, Present: false}
	case <-ctx.Done():
		return Status{Tool: t, Present: false}
	}
}

// ForMode returns the subset of the registry relevant to a given
// capture mode (plus the "common" tools every mode may use).
func ForMode(mode string) []Tool {
	var out []Tool
	for _, t := range Registry {
		if t.Mode == mode || t.Mode == "common" {
			out = append(out, t)
		}
	}
	return out
}
