package modes

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/unipheas/intercept/internal/eventbus"
	"github.com/unipheas/intercept/internal/model"
	"github.com/unipheas/intercept/internal/parsers/adsb"
	"github.com/unipheas/intercept/internal/process"
	"github.com/unipheas/intercept/internal/state"
	"github.com/unipheas/intercept/internal/validate"
)

// AdsbParams is the validated request shape for /adsb/start.
type AdsbParams struct {
	Gain     string
	Device   string
	JSONURLs []string
}

// Adsb supervises a dump1090 process, feeding its raw Mode-S stdout
// and its polled JSON aircraft list through a single writer so the two
// sources never race each other's store writes.
type Adsb struct {
	log      *zap.SugaredLogger
	slot     *process.Slot
	bus      *eventbus.Bus
	aircraft *state.Store[string, model.Aircraft]

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewAdsb builds an idle ADS-B controller.
func NewAdsb(log *zap.SugaredLogger) *Adsb {
	a := &Adsb{
		log:      log,
		slot:     process.NewSlot("adsb"),
		bus:      eventbus.New(eventbus.DefaultCapacity),
		aircraft: state.NewStore[string, model.Aircraft](),
	}
	a.slot.SetOnExit(func() { a.bus.Publish(stoppedEvent()) })
	return a
}

// Bus returns the ADS-B mode's event bus.
func (a *Adsb) Bus() *eventbus.Bus { return a.bus }

// Slot exposes the ADS-B controller's process slot for metrics registration.
func (a *Adsb) Slot() *process.Slot { return a.slot }

// Aircraft returns a snapshot of every currently tracked aircraft.
func (a *Adsb) Aircraft() []model.Aircraft { return a.aircraft.All() }

// AircraftStore exposes the aircraft store for the cleanup sweeper.
func (a *Adsb) AircraftStore() *state.Store[string, model.Aircraft] { return a.aircraft }

// Start launches dump1090 and the writer/poller goroutines that feed
// its output into the aircraft store.
func (a *Adsb) Start(params AdsbParams) Outcome {
	if err := validate.DeviceIndex(params.Device); err != nil {
		return validationOutcome(err)
	}
	if params.Gain != "" {
		if err := validate.Gain(params.Gain); err != nil {
			return validationOutcome(err)
		}
	}
	if err := requireTools("adsb"); err != nil {
		return dependencyOutcome(err)
	}

	tail := process.NewStderrTail(20)
	rawCh := make(chan string, 256)
	ctx, cancel := context.WithCancel(context.Background())

	argv := []string{"dump1090", "--raw", "--device-index", params.Device}
	if params.Gain != "" && params.Gain != "auto" {
		argv = append(argv, "--gain", params.Gain)
	}
	result := a.slot.Start(func() (process.Runnable, error) {
		onLine := func(line string) {
			if icao, ok := adsb.ParseRaw(line); ok {
				select {
				case rawCh <- icao:
				default:
				}
			}
		}
		return process.NewChild(a.log, "dump1090", onLine, argv...).OnStderr(forwardStderr(tail, a.bus)), nil
	}, settleWindow, strings.Join(argv, " "))

	if result != process.Started {
		cancel()
		if result == process.EarlyExit {
			return Outcome{Result: result, Cause: process.Classify(tail.Lines())}
		}
		return Outcome{Result: result}
	}

	jsonCh := make(chan []byte, 8)
	writer := adsb.NewWriter(a.aircraft, a.bus)
	go writer.Run(ctx, rawCh, jsonCh)
	go adsb.PollJSON(ctx, params.JSONURLs, jsonCh)

	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()

	a.bus.Publish(map[string]interface{}{"type": "info", "text": "adsb started"})
	return Outcome{Result: result}
}

// Stop terminates dump1090 and cancels the writer/poller goroutines.
func (a *Adsb) Stop() StopOutcome {
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.mu.Unlock()

	wasRunning := a.slot.Stop(stopGrace)
	if wasRunning {
		a.bus.Publish(stoppedEvent())
	}
	return StopOutcome{WasRunning: wasRunning}
}

// Status reports whether dump1090 is running and how many aircraft are
// currently tracked.
func (a *Adsb) Status() map[string]interface{} {
	return map[string]interface{}{
		"running":        a.slot.Running(),
		"started_at":     a.slot.StartedAt(),
		"aircraft":       a.aircraft.Len(),
		"launch_cmd":     a.slot.LaunchCmd(),
		"correlation_id": a.slot.CorrelationID(),
		"rss_bytes":      process.RSS(a.slot.PID()),
	}
}
