package modes

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/unipheas/intercept/internal/eventbus"
	"github.com/unipheas/intercept/internal/parsers/iridium"
	"github.com/unipheas/intercept/internal/process"
	"github.com/unipheas/intercept/internal/validate"
)

// iridiumMinMHz and iridiumMaxMHz bound the L-band downlink range
// Iridium's constellation transmits in.
const (
	iridiumMinMHz = 1616.0
	iridiumMaxMHz = 1626.5
)

// IridiumParams is the validated request shape for /iridium/start.
// SampleRate is in samples/second; empty selects the 2 Msps default
// the Iridium burst width needs.
type IridiumParams struct {
	Frequency  string
	Gain       string
	SampleRate string
	Device     string
}

// Iridium supervises an rtl_fm raw sampler tuned to the Iridium
// downlink band and runs the synthetic burst generator alongside it.
// Full Iridium burst demodulation is out of scope; see
// parsers/iridium for why every burst this mode publishes is tagged
// demo:true.
type Iridium struct {
	log  *zap.SugaredLogger
	slot *process.Slot
	bus  *eventbus.Bus

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewIridium builds an idle Iridium controller.
func NewIridium(log *zap.SugaredLogger) *Iridium {
	i := &Iridium{
		log:  log,
		slot: process.NewSlot("iridium"),
		bus:  eventbus.New(eventbus.DefaultCapacity),
	}
	i.slot.SetOnExit(func() { i.bus.Publish(stoppedEvent()) })
	return i
}

// Bus returns the Iridium mode's event bus.
func (i *Iridium) Bus() *eventbus.Bus { return i.bus }

// Slot exposes the Iridium controller's process slot for metrics registration.
func (i *Iridium) Slot() *process.Slot { return i.slot }

// Start launches the rtl_fm sampler and, once it settles, the demo
// burst generator.
func (i *Iridium) Start(params IridiumParams) Outcome {
	freq, err := validate.Frequency(params.Frequency, iridiumMinMHz, iridiumMaxMHz)
	if err != nil {
		return validationOutcome(err)
	}
	if err := validate.Gain(params.Gain); err != nil {
		return validationOutcome(err)
	}
	if err := validate.DeviceIndex(params.Device); err != nil {
		return validationOutcome(err)
	}
	if err := requireTools("iridium"); err != nil {
		return dependencyOutcome(err)
	}

	sampleRate := params.SampleRate
	if sampleRate == "" {
		sampleRate = "2000000"
	} else if _, err := strconv.Atoi(sampleRate); err != nil {
		return validationOutcome(fmt.Errorf("invalid sampleRate"))
	}

	tail := process.NewStderrTail(20)
	ctx, cancel := context.WithCancel(context.Background())

	argv := []string{"rtl_fm",
		"-f", params.Frequency + "M",
		"-M", "raw",
		"-s", sampleRate,
		"-g", params.Gain,
		"-d", params.Device,
	}
	result := i.slot.Start(func() (process.Runnable, error) {
		return process.NewChild(i.log, "rtl_fm", nil, argv...).OnStderr(forwardStderr(tail, i.bus)), nil
	}, settleWindow, strings.Join(argv, " "))

	if result != process.Started {
		cancel()
		if result == process.EarlyExit {
			return Outcome{Result: result, Cause: process.Classify(tail.Lines())}
		}
		return Outcome{Result: result}
	}

	i.mu.Lock()
	i.cancel = cancel
	i.mu.Unlock()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	go iridium.Demo(ctx, freq, rng, i.bus)

	i.bus.Publish(map[string]interface{}{"type": "info", "text": "iridium listener started"})
	return Outcome{Result: result}
}

// Stop terminates the rtl_fm sampler and cancels the burst generator.
func (i *Iridium) Stop() StopOutcome {
	i.mu.Lock()
	if i.cancel != nil {
		i.cancel()
		i.cancel = nil
	}
	i.mu.Unlock()

	wasRunning := i.slot.Stop(stopGrace)
	if wasRunning {
		i.bus.Publish(stoppedEvent())
	}
	return StopOutcome{WasRunning: wasRunning}
}

// Status reports whether the listener is running.
func (i *Iridium) Status() map[string]interface{} {
	return map[string]interface{}{
		"running":        i.slot.Running(),
		"started_at":     i.slot.StartedAt(),
		"launch_cmd":     i.slot.LaunchCmd(),
		"correlation_id": i.slot.CorrelationID(),
		"rss_bytes":      process.RSS(i.slot.PID()),
	}
}
