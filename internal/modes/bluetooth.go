package modes

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/unipheas/intercept/internal/eventbus"
	"github.com/unipheas/intercept/internal/model"
	"github.com/unipheas/intercept/internal/oui"
	"github.com/unipheas/intercept/internal/parsers/bluetooth"
	"github.com/unipheas/intercept/internal/process"
	"github.com/unipheas/intercept/internal/state"
)

var hciAdapterRE = regexp.MustCompile(`^(hci\d+):`)

// ctlStartupCommands are fed to an interactive bluetoothctl session
// once it settles, spacing each by ctlCommandDelay so the tool's own
// prompt has time to catch up.
var ctlStartupCommands = []string{"power on\n", "agent on\n", "default-agent\n", "scan on\n"}

const ctlCommandDelay = 250 * time.Millisecond

// BluetoothParams is the validated request shape for /bt/scan/start.
// Duration, when positive, auto-stops the scan after that many
// seconds; zero scans until an explicit stop.
type BluetoothParams struct {
	Backend  string // "ctl" (bluetoothctl, default) or "hcitool"
	Adapter  string
	Duration int
}

// Bluetooth supervises either an interactive bluetoothctl session or a
// plain hcitool lescan, decoding either into BluetoothDevice records.
type Bluetooth struct {
	log     *zap.SugaredLogger
	slot    *process.Slot
	bus     *eventbus.Bus
	oui     *oui.Lookup
	devices *state.Store[string, model.BluetoothDevice]

	mu      sync.Mutex
	backend string
}

// NewBluetooth builds an idle Bluetooth controller.
func NewBluetooth(log *zap.SugaredLogger, lookup *oui.Lookup) *Bluetooth {
	b := &Bluetooth{
		log:     log,
		slot:    process.NewSlot("bluetooth"),
		bus:     eventbus.New(eventbus.DefaultCapacity),
		oui:     lookup,
		devices: state.NewStore[string, model.BluetoothDevice](),
	}
	b.slot.SetOnExit(func() { b.bus.Publish(stoppedEvent()) })
	return b
}

// Bus returns the Bluetooth mode's event bus.
func (b *Bluetooth) Bus() *eventbus.Bus { return b.bus }

// Slot exposes the Bluetooth controller's process slot for metrics registration.
func (b *Bluetooth) Slot() *process.Slot { return b.slot }

// Devices returns a snapshot of every currently tracked peer.
func (b *Bluetooth) Devices() []model.BluetoothDevice { return b.devices.All() }

// DeviceStore exposes the device store for the cleanup sweeper.
func (b *Bluetooth) DeviceStore() *state.Store[string, model.BluetoothDevice] { return b.devices }

// Start launches the chosen scan backend.
func (b *Bluetooth) Start(params BluetoothParams) Outcome {
	backend := params.Backend
	if backend == "" {
		backend = "ctl"
	}
	if backend != "ctl" && backend != "hcitool" {
		return validationOutcome(fmt.Errorf("invalid backend"))
	}
	if err := requireTools("bluetooth"); err != nil {
		return dependencyOutcome(err)
	}

	tail := process.NewStderrTail(20)
	var ctlChild *process.Child

	cmdDesc := "bluetoothctl"
	if backend == "hcitool" {
		cmdDesc = "hcitool lescan --duplicates"
		if params.Adapter != "" {
			cmdDesc += " -i " + params.Adapter
		}
	}

	result := b.slot.Start(func() (process.Runnable, error) {
		switch backend {
		case "hcitool":
			argv := []string{"hcitool", "lescan", "--duplicates"}
			if params.Adapter != "" {
				argv = append(argv, "-i", params.Adapter)
			}
			onLine := bluetooth.StreamHcitool(b.oui, b.devices, b.bus)
			return process.NewChild(b.log, "hcitool", onLine, argv...).OnStderr(forwardStderr(tail, b.bus)), nil
		default:
			onLine := bluetooth.StreamCtl(b.oui, b.devices, b.bus)
			child := process.NewChild(b.log, "bluetoothctl", onLine, "bluetoothctl").
				UsePTY().OnStderr(forwardStderr(tail, b.bus))
			ctlChild = child
			return child, nil
		}
	}, settleWindow, cmdDesc)

	switch result {
	case process.Started:
		b.mu.Lock()
		b.backend = backend
		b.mu.Unlock()
		if backend == "ctl" && ctlChild != nil {
			go driveCtlSession(ctlChild)
		}
		if params.Duration > 0 {
			launch := b.slot.CorrelationID()
			time.AfterFunc(time.Duration(params.Duration)*time.Second, func() {
				// only stop the scan this timer belongs to
				if b.slot.CorrelationID() == launch {
					b.Stop()
				}
			})
		}
		b.bus.Publish(map[string]interface{}{"type": "info", "text": "bluetooth scan started"})
		return Outcome{Result: result}
	case process.EarlyExit:
		return Outcome{Result: result, Cause: process.Classify(tail.Lines())}
	default:
		return Outcome{Result: result}
	}
}

// driveCtlSession feeds bluetoothctl the command sequence needed to
// enable the adapter, accept pairing, and start discovery. bluetoothctl
// has no non-interactive scan flag, unlike hcitool.
func driveCtlSession(child *process.Child) {
	for _, cmd := range ctlStartupCommands {
		time.Sleep(ctlCommandDelay)
		if _, err := child.Write([]byte(cmd)); err != nil {
			return
		}
	}
}

// Stop terminates the running scan, if any.
func (b *Bluetooth) Stop() StopOutcome {
	wasRunning := b.slot.Stop(stopGrace)
	if wasRunning {
		b.bus.Publish(stoppedEvent())
	}
	return StopOutcome{WasRunning: wasRunning}
}

// Status reports whether a scan is running and which backend it uses.
func (b *Bluetooth) Status() map[string]interface{} {
	b.mu.Lock()
	backend := b.backend
	b.mu.Unlock()
	return map[string]interface{}{
		"running":        b.slot.Running(),
		"started_at":     b.slot.StartedAt(),
		"backend":        backend,
		"devices":        b.devices.Len(),
		"launch_cmd":     b.slot.LaunchCmd(),
		"correlation_id": b.slot.CorrelationID(),
		"rss_bytes":      process.RSS(b.slot.PID()),
	}
}

// ResetAdapter cycles the named HCI adapter down then up, a recovery
// step when a prior scan leaves it wedged.
func (b *Bluetooth) ResetAdapter(adapter string) error {
	if adapter == "" {
		adapter = "hci0"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := exec.CommandContext(ctx, "hciconfig", adapter, "down").Run(); err != nil {
		return fmt.Errorf("hciconfig down failed: %w", err)
	}
	if err := exec.CommandContext(ctx, "hciconfig", adapter, "up").Run(); err != nil {
		return fmt.Errorf("hciconfig up failed: %w", err)
	}
	return nil
}

// Services runs sdptool browse against a known peer and returns its
// raw output, one of the few routes that shells out for an on-demand
// query rather than a supervised long-running capture.
func (b *Bluetooth) Services(mac string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, "sdptool", "browse", mac).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("sdptool browse failed: %w", err)
	}
	return string(out), nil
}

// ReloadOUI swaps in a freshly written IEEE OUI database file without
// requiring a server restart.
func (b *Bluetooth) ReloadOUI(path string) error {
	return b.oui.Reload(path)
}

// Interfaces lists local HCI adapters via hciconfig.
func (b *Bluetooth) Interfaces() ([]string, error) {
	out, err := exec.Command("hciconfig").CombinedOutput()
	if err != nil {
		return nil, err
	}
	var adapters []string
	for _, line := range splitLines(string(out)) {
		if m := hciAdapterRE.FindStringSubmatch(line); m != nil {
			adapters = append(adapters, m[1])
		}
	}
	return adapters, nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
