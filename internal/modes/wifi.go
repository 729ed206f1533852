package modes

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/unipheas/intercept/internal/eventbus"
	"github.com/unipheas/intercept/internal/model"
	"github.com/unipheas/intercept/internal/oui"
	"github.com/unipheas/intercept/internal/parsers/wifi"
	"github.com/unipheas/intercept/internal/process"
	"github.com/unipheas/intercept/internal/state"
	"github.com/unipheas/intercept/internal/validate"
)

// Filesystem prefixes for WiFi capture artifacts, enforced by
// validate.CapturePath wherever a client-supplied path feeds back in.
const (
	wifiScanPrefix      = "/tmp/intercept_wifi"
	handshakeFilePrefix = "/tmp/intercept_handshake_"
	pmkidFilePrefix     = "/tmp/intercept_pmkid_"
	broadcastMAC        = "FF:FF:FF:FF:FF:FF"
)

// WifiMonitorState names the monitor-mode state machine's states.
type WifiMonitorState string

const (
	WifiManaged       WifiMonitorState = "managed"
	WifiTransitioning WifiMonitorState = "transitioning"
	WifiMonitor       WifiMonitorState = "monitor"
)

// Wifi supervises airodump-ng scans — and the handshake/PMKID capture
// variants that reuse the same card and therefore the same single-slot
// invariant — the monitor-mode toggle, and one-shot deauth/
// verification invocations.
type Wifi struct {
	log  *zap.SugaredLogger
	slot *process.Slot
	bus  *eventbus.Bus
	oui  *oui.Lookup

	networks *state.Store[string, model.WifiNetwork]
	clients  *state.Store[string, model.WifiClient]

	mu           sync.Mutex
	pollCancel   context.CancelFunc
	monitorState WifiMonitorState
	monitorIface string
}

// NewWifi builds an idle WiFi controller.
func NewWifi(log *zap.SugaredLogger, lookup *oui.Lookup) *Wifi {
	w := &Wifi{
		log:          log,
		slot:         process.NewSlot("wifi"),
		bus:          eventbus.New(eventbus.DefaultCapacity),
		oui:          lookup,
		networks:     state.NewStore[string, model.WifiNetwork](),
		clients:      state.NewStore[string, model.WifiClient](),
		monitorState: WifiManaged,
	}
	w.slot.SetOnExit(func() { w.bus.Publish(stoppedEvent()) })
	return w
}

// Bus returns the WiFi mode's event bus.
func (w *Wifi) Bus() *eventbus.Bus { return w.bus }

// Slot exposes the WiFi controller's process slot for metrics registration.
func (w *Wifi) Slot() *process.Slot { return w.slot }

// Networks returns a snapshot of every currently live access point.
func (w *Wifi) Networks() []model.WifiNetwork { return w.networks.All() }

// NetworkStore exposes the network store for the cleanup sweeper.
func (w *Wifi) NetworkStore() *state.Store[string, model.WifiNetwork] { return w.networks }

// ClientStore exposes the client store for the cleanup sweeper.
func (w *Wifi) ClientStore() *state.Store[string, model.WifiClient] { return w.clients }

// ScanParams is the validated request shape for /wifi/scan/start.
type ScanParams struct {
	Interface string
	Channel   string
	Band      string
}

// StartScan launches airodump-ng against Interface, writing a CSV
// dump that a background poller (parsers/wifi.Poll) turns into
// network/client events.
func (w *Wifi) StartScan(params ScanParams) Outcome {
	if params.Interface == "" {
		return validationOutcome(fmt.Errorf("invalid interface"))
	}
	if params.Channel != "" {
		if err := validate.Channel(params.Channel); err != nil {
			return validationOutcome(err)
		}
	}
	if err := requireTools("wifi"); err != nil {
		return dependencyOutcome(err)
	}

	tail := process.NewStderrTail(20)
	argv := []string{"airodump-ng"}
	if params.Channel != "" {
		argv = append(argv, "-c", params.Channel)
	}
	if params.Band != "" {
		argv = append(argv, "--band", params.Band)
	}
	argv = append(argv, "-w", wifiScanPrefix, "--output-format", "csv", params.Interface)

	result := w.slot.Start(func() (process.Runnable, error) {
		child := process.NewChild(w.log, "airodump-ng", func(line string) {
			w.bus.Publish(map[string]interface{}{"type": "raw", "text": line})
		}, argv...).OnStderr(airodumpStderr(tail, w.bus))
		return child, nil
	}, settleWindow, strings.Join(argv, " "))

	if result == process.Started {
		ctx, cancel := context.WithCancel(context.Background())
		w.mu.Lock()
		w.pollCancel = cancel
		w.mu.Unlock()
		go wifi.Poll(ctx, wifiScanPrefix+"-01.csv", w.oui, w.networks, w.clients, w.bus)
		return Outcome{Result: result}
	}
	if result == process.EarlyExit {
		return Outcome{Result: result, Cause: process.Classify(tail.Lines())}
	}
	return Outcome{Result: result}
}

// airodumpStderr is the stderr pump for airodump-ng invocations.
// airodump repaints its terminal status display to stderr constantly,
// so the "CH ..." header and "Elapsed ..." lines are dropped; anything
// else on stderr is a genuine complaint and goes out as an error event.
func airodumpStderr(tail *process.StderrTail, bus *eventbus.Bus) process.LineFunc {
	return func(line string) {
		tail.Append(line)
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "CH") || strings.HasPrefix(trimmed, "Elapsed") {
			return
		}
		bus.Publish(map[string]interface{}{"type": "error", "text": "airodump-ng: " + trimmed})
	}
}

// StopScan terminates the running airodump-ng capture, if any, and
// cancels its CSV poller.
func (w *Wifi) StopScan() StopOutcome {
	w.mu.Lock()
	if w.pollCancel != nil {
		w.pollCancel()
		w.pollCancel = nil
	}
	w.mu.Unlock()

	wasRunning := w.slot.Stop(stopGrace)
	if wasRunning {
		w.bus.Publish(stoppedEvent())
	}
	return StopOutcome{WasRunning: wasRunning}
}

// Status summarizes the current scan state and observed entity counts.
func (w *Wifi) Status() map[string]interface{} {
	return map[string]interface{}{
		"running":        w.slot.Running(),
		"started_at":     w.slot.StartedAt(),
		"networks":       w.networks.Len(),
		"clients":        w.clients.Len(),
		"launch_cmd":     w.slot.LaunchCmd(),
		"correlation_id": w.slot.CorrelationID(),
		"rss_bytes":      process.RSS(w.slot.PID()),
	}
}

// Interfaces lists wireless network interfaces, using iw on Linux and
// falling back to networksetup on Darwin (best-effort).
func (w *Wifi) Interfaces() ([]string, error) {
	if runtime.GOOS == "darwin" {
		return darwinInterfaces()
	}
	return listWirelessInterfaces()
}

var ifaceRE = regexp.MustCompile(`Interface\s+(\S+)`)

func listWirelessInterfaces() ([]string, error) {
	out, err := exec.Command("iw", "dev").CombinedOutput()
	if err != nil {
		return nil, err
	}
	var ifaces []string
	for _, m := range ifaceRE.FindAllStringSubmatch(string(out), -1) {
		ifaces = append(ifaces, m[1])
	}
	return ifaces, nil
}

func darwinInterfaces() ([]string, error) {
	out, err := exec.Command("networksetup", "-listallhardwareports").CombinedOutput()
	if err != nil {
		return nil, err
	}
	var ifaces []string
	lines := strings.Split(string(out), "\n")
	for i, line := range lines {
		if strings.Contains(line, "Wi-Fi") && i+1 < len(lines) && strings.HasPrefix(lines[i+1], "Device: ") {
			ifaces = append(ifaces, strings.TrimPrefix(lines[i+1], "Device: "))
		}
	}
	return ifaces, nil
}

// MonitorParams is the validated request shape for /wifi/monitor.
type MonitorParams struct {
	Interface     string
	Action        string
	KillProcesses bool
}

// Monitor drives the managed/transitioning/monitor state machine.
// On failure, the state reverts to what it was before the call.
func (w *Wifi) Monitor(params MonitorParams) (WifiMonitorState, string, error) {
	if params.Interface == "" {
		return w.monitorState, "", fmt.Errorf("invalid interface")
	}

	w.mu.Lock()
	if w.monitorState == WifiTransitioning {
		w.mu.Unlock()
		return WifiTransitioning, "", fmt.Errorf("monitor transition already in progress")
	}
	prior := w.monitorState
	w.monitorState = WifiTransitioning
	w.mu.Unlock()

	switch params.Action {
	case "enable":
		iface, err := w.enableMonitor(params.Interface, params.KillProcesses)
		w.mu.Lock()
		defer w.mu.Unlock()
		if err != nil {
			w.monitorState = prior
			return prior, "", err
		}
		w.monitorState = WifiMonitor
		w.monitorIface = iface
		w.bus.Publish(map[string]interface{}{"type": "info", "text": "monitor mode enabled on " + iface})
		return WifiMonitor, iface, nil
	case "disable":
		err := w.disableMonitor(params.Interface)
		w.mu.Lock()
		defer w.mu.Unlock()
		if err != nil {
			w.monitorState = prior
			return prior, "", err
		}
		w.monitorState = WifiManaged
		w.monitorIface = ""
		return WifiManaged, "", nil
	default:
		w.mu.Lock()
		w.monitorState = prior
		w.mu.Unlock()
		return prior, "", fmt.Errorf("invalid action")
	}
}

func (w *Wifi) enableMonitor(iface string, killProcesses bool) (string, error) {
	before, _ := listWirelessInterfaces()

	if killProcesses {
		_ = exec.Command("airmon-ng", "check", "kill").Run()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, "airmon-ng", "start", iface).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("airmon-ng start failed: %w", err)
	}

	time.Sleep(time.Second)
	after, _ := listWirelessInterfaces()

	if mon := newInterface(before, after); mon != "" {
		return mon, nil
	}
	if mon := parseMonFromOutput(string(out)); mon != "" {
		return mon, nil
	}
	if isModeMonitor(iface) {
		return iface, nil
	}
	return iface + "mon", nil
}

func (w *Wifi) disableMonitor(iface string) error {
	target := iface
	w.mu.Lock()
	if w.monitorIface != "" {
		target = w.monitorIface
	}
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := exec.CommandContext(ctx, "airmon-ng", "stop", target).Run(); err != nil {
		return fmt.Errorf("airmon-ng stop failed: %w", err)
	}
	return nil
}

// newInterface returns, in priority order, an interface present after
// but not before whose name contains "mon", else any other new
// interface.
func newInterface(before, after []string) string {
	beforeSet := make(map[string]bool, len(before))
	for _, ifc := range before {
		beforeSet[ifc] = true
	}
	var anyNew string
	for _, ifc := range after {
		if beforeSet[ifc] {
			continue
		}
		if anyNew == "" {
			anyNew = ifc
		}
		if strings.Contains(ifc, "mon") {
			return ifc
		}
	}
	return anyNew
}

var monOutputRE = regexp.MustCompile(`\b(\w*mon)\b`)

// parseMonFromOutput implements priority (c): pattern-match common
// *mon interface names in airmon-ng's own output.
func parseMonFromOutput(output string) string {
	m := monOutputRE.FindStringSubmatch(output)
	if m == nil {
		return ""
	}
	return m[1]
}

// isModeMonitor implements priority (d): the original interface
// already reporting Mode:Monitor via iwconfig.
func isModeMonitor(iface string) bool {
	out, err := exec.Command("iwconfig", iface).CombinedOutput()
	if err != nil {
		return false
	}
	return strings.Contains(string(out), "Mode:Monitor")
}

// DeauthParams is the validated request shape for /wifi/deauth.
type DeauthParams struct {
	BSSID     string
	Client    string
	Count     int
	Interface string
}

// Deauth fires a one-shot aireplay-ng deauthentication burst. It
// returns success even on tool timeout: aireplay-ng is fire-and-forget,
// and this never holds the mode lock.
func (w *Wifi) Deauth(params DeauthParams) error {
	if err := validate.MAC(params.BSSID); err != nil {
		return err
	}
	client := params.Client
	if client == "" {
		client = broadcastMAC
	}
	if err := validate.MAC(client); err != nil {
		return err
	}
	if params.Interface == "" {
		return fmt.Errorf("invalid interface")
	}

	count := params.Count
	if count < 1 {
		count = 1
	}
	if count > 100 {
		count = 100
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	argv := []string{"--deauth", fmt.Sprint(count), "-a", params.BSSID, "-c", client, params.Interface}
	_ = exec.CommandContext(ctx, "aireplay-ng", argv...).Run()
	return nil
}

// HandshakeCapture is the response payload for /wifi/handshake/capture.
type HandshakeCapture struct {
	BSSID string
	File  string
}

// CaptureHandshake locks an airodump-ng capture to one BSSID/channel,
// writing a pcap under handshakeFilePrefix. It reuses the WiFi mode's
// single slot, so a capture while an ordinary scan runs reports
// already_running.
func (w *Wifi) CaptureHandshake(bssid, channel, iface string) (HandshakeCapture, Outcome) {
	if err := validate.MAC(bssid); err != nil {
		return HandshakeCapture{}, validationOutcome(err)
	}
	if err := validate.Channel(channel); err != nil {
		return HandshakeCapture{}, validationOutcome(err)
	}
	if iface == "" {
		return HandshakeCapture{}, validationOutcome(fmt.Errorf("invalid interface"))
	}

	safeBSSID := strings.ReplaceAll(bssid, ":", "")
	prefix := handshakeFilePrefix + safeBSSID
	capFile := prefix + "-01.cap"

	tail := process.NewStderrTail(20)
	argv := []string{"airodump-ng", "--bssid", bssid, "-c", channel,
		"-w", prefix, "--output-format", "pcap", iface}
	result := w.slot.Start(func() (process.Runnable, error) {
		child := process.NewChild(w.log, "airodump-ng-handshake", func(line string) {
			w.bus.Publish(map[string]interface{}{"type": "raw", "text": line})
		}, argv...).OnStderr(airodumpStderr(tail, w.bus))
		return child, nil
	}, settleWindow, strings.Join(argv, " "))

	if result == process.EarlyExit {
		return HandshakeCapture{}, Outcome{Result: result, Cause: process.Classify(tail.Lines())}
	}
	return HandshakeCapture{BSSID: bssid, File: capFile}, Outcome{Result: result}
}

// HandshakeStatus is the response payload for /wifi/handshake/status.
type HandshakeStatus struct {
	FileExists     bool  `json:"file_exists"`
	FileSize       int64 `json:"file_size"`
	HandshakeFound bool  `json:"handshake_found"`
	PacketCount    int   `json:"packet_count"`
}

// HandshakeStatusCheck polls a capture file's progress and, if
// aircrack-ng is present, verifies whether it contains a complete
// handshake.
func (w *Wifi) HandshakeStatusCheck(file, bssid string) (HandshakeStatus, error) {
	if err := validate.CapturePath(file, handshakeFilePrefix); err != nil {
		return HandshakeStatus{}, err
	}
	if err := validate.MAC(bssid); err != nil {
		return HandshakeStatus{}, err
	}

	info, err := os.Stat(file)
	if err != nil {
		return HandshakeStatus{FileExists: false}, nil
	}
	status := HandshakeStatus{FileExists: true, FileSize: info.Size(), PacketCount: countCapturedPackets(file)}

	if path, err := exec.LookPath("aircrack-ng"); err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		out, _ := exec.CommandContext(ctx, path, "-b", bssid, file).CombinedOutput()
		status.HandshakeFound = strings.Contains(string(out), "1 handshake")
	}
	return status, nil
}

// PMKIDCapture is the response payload for /wifi/pmkid/capture.
type PMKIDCapture struct {
	BSSID string
	File  string
}

// CapturePMKID locks an hcxdumptool capture to one BSSID, writing a
// pcapng under pmkidFilePrefix and an hcxdumptool AP filter list file
// that StopPMKID removes.
func (w *Wifi) CapturePMKID(bssid, iface string) (PMKIDCapture, Outcome) {
	if err := validate.MAC(bssid); err != nil {
		return PMKIDCapture{}, validationOutcome(err)
	}
	if iface == "" {
		return PMKIDCapture{}, validationOutcome(fmt.Errorf("invalid interface"))
	}

	safeBSSID := strings.ReplaceAll(bssid, ":", "")
	outFile := pmkidFilePrefix + safeBSSID + ".pcapng"
	filterFile := "/tmp/pmkid_filter_" + safeBSSID

	if err := os.WriteFile(filterFile, []byte(bssid+"\n"), 0o644); err != nil {
		return PMKIDCapture{}, Outcome{DependencyErr: err}
	}

	tail := process.NewStderrTail(20)
	argv := []string{"hcxdumptool", "-i", iface, "-o", outFile,
		"--filterlist_ap=" + filterFile, "--filtermode=2"}
	result := w.slot.Start(func() (process.Runnable, error) {
		child := process.NewChild(w.log, "hcxdumptool", func(line string) {
			w.bus.Publish(map[string]interface{}{"type": "raw", "text": line})
		}, argv...).OnStderr(forwardStderr(tail, w.bus))
		return child, nil
	}, settleWindow, strings.Join(argv, " "))

	if result == process.EarlyExit {
		return PMKIDCapture{}, Outcome{Result: result, Cause: process.Classify(tail.Lines())}
	}
	return PMKIDCapture{BSSID: bssid, File: outFile}, Outcome{Result: result}
}

// StopPMKID stops the running hcxdumptool capture and removes its
// filter-list side file.
func (w *Wifi) StopPMKID(bssid string) StopOutcome {
	wasRunning := w.slot.Stop(stopGrace)
	if bssid != "" {
		safeBSSID := strings.ReplaceAll(bssid, ":", "")
		_ = os.Remove("/tmp/pmkid_filter_" + safeBSSID)
	}
	return StopOutcome{WasRunning: wasRunning}
}

// PMKIDStatus is the response payload for /wifi/pmkid/status.
type PMKIDStatus struct {
	FileExists     bool  `json:"file_exists"`
	FileSize       int64 `json:"file_size"`
	HandshakeFound bool  `json:"handshake_found"`
	PacketCount    int   `json:"packet_count"`
}

// PMKIDStatusCheck polls a PMKID capture's progress, converting with
// hcxpcapngtool when present and otherwise falling back to a size
// heuristic.
func (w *Wifi) PMKIDStatusCheck(file string) (PMKIDStatus, error) {
	if err := validate.CapturePath(file, pmkidFilePrefix); err != nil {
		return PMKIDStatus{}, err
	}

	info, err := os.Stat(file)
	if err != nil {
		return PMKIDStatus{FileExists: false}, nil
	}
	status := PMKIDStatus{FileExists: true, FileSize: info.Size(), PacketCount: countCapturedPackets(file)}

	if path, err := exec.LookPath("hcxpcapngtool"); err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		hashFile := strings.TrimSuffix(file, ".pcapng") + ".22000"
		_, _ = exec.CommandContext(ctx, path, "-o", hashFile, file).CombinedOutput()
		if hashInfo, err := os.Stat(hashFile); err == nil {
			status.HandshakeFound = hashInfo.Size() > 0
		}
	} else {
		status.HandshakeFound = status.FileSize > 1024
	}
	return status, nil
}
