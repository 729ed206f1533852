package modes

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/unipheas/intercept/internal/eventbus"
	"github.com/unipheas/intercept/internal/parsers/pager"
	"github.com/unipheas/intercept/internal/process"
	"github.com/unipheas/intercept/internal/validate"
)

// settleWindow is how long a freshly spawned pipeline must survive
// before Start reports it as successfully running rather than an
// early exit.
const settleWindow = 500 * time.Millisecond

// stopGrace is how long Stop waits for SIGTERM before escalating to
// SIGKILL.
const stopGrace = 2 * time.Second

// PagerParams is the validated request shape for the pager mode's
// /start route.
type PagerParams struct {
	Frequency string
	Gain      string
	Squelch   string
	PPM       string
	Device    string
	Protocols []string
}

// Pager supervises the rtl_fm | multimon-ng pipeline and decodes its
// downstream output into PagerMessage events.
type Pager struct {
	log  *zap.SugaredLogger
	slot *process.Slot
	bus  *eventbus.Bus
	logf *pager.Logger
}

// NewPager builds an idle pager controller.
func NewPager(log *zap.SugaredLogger) *Pager {
	p := &Pager{
		log:  log,
		slot: process.NewSlot("pager"),
		bus:  eventbus.New(eventbus.DefaultCapacity),
		logf: &pager.Logger{},
	}
	p.slot.SetOnExit(func() { p.bus.Publish(stoppedEvent()) })
	return p
}

// Bus returns the pager mode's event bus, for SSE subscription.
func (p *Pager) Bus() *eventbus.Bus { return p.bus }

// Slot exposes the pager's process slot for metrics registration.
func (p *Pager) Slot() *process.Slot { return p.slot }

// SetLogging enables or disables the tab-separated message log file.
func (p *Pager) SetLogging(enabled bool, path string) error {
	return p.logf.SetEnabled(enabled, path)
}

// LoggingStatus reports the current logging configuration.
func (p *Pager) LoggingStatus() (enabled bool, path string) {
	return p.logf.Enabled(), p.logf.Path()
}

// Start validates params, confirms the required tools are present, and
// launches the rtl_fm | multimon-ng pipeline.
func (p *Pager) Start(params PagerParams) Outcome {
	if _, err := validate.Frequency(params.Frequency, 25, 1800); err != nil {
		return validationOutcome(err)
	}
	if err := validate.Gain(params.Gain); err != nil {
		return validationOutcome(err)
	}
	if err := validate.Gain(params.Squelch); err != nil {
		return validationOutcome(fmt.Errorf("invalid squelch"))
	}
	if err := validate.PPM(params.PPM); err != nil {
		return validationOutcome(err)
	}
	if err := validate.DeviceIndex(params.Device); err != nil {
		return validationOutcome(err)
	}
	if len(params.Protocols) == 0 {
		return validationOutcome(fmt.Errorf("invalid protocols"))
	}
	for _, proto := range params.Protocols {
		if !knownProtocols[proto] {
			return validationOutcome(fmt.Errorf("invalid protocols"))
		}
	}

	if err := requireTools("pager"); err != nil {
		return dependencyOutcome(err)
	}

	tail := process.NewStderrTail(20)
	upArgv := []string{"rtl_fm",
		"-f", params.Frequency + "M",
		"-M", "fm",
		"-s", "22050",
		"-p", params.PPM,
		"-g", params.Gain,
		"-l", params.Squelch,
		"-d", params.Device,
	}
	downArgv := append([]string{"multimon-ng", "-t", "raw"}, expandProtocolFlags(params.Protocols)...)
	downArgv = append(downArgv, "-f", "alpha", "-")
	cmdDesc := strings.Join(upArgv, " ") + " | " + strings.Join(downArgv, " ")

	result := p.slot.Start(func() (process.Runnable, error) {
		onLine := func(line string) {
			msg, ok := pager.Parse(line, time.Now())
			if !ok {
				p.bus.Publish(map[string]interface{}{"type": "raw", "text": line})
				return
			}
			_ = p.logf.Write(msg)
			p.bus.Publish(msg)
		}

		up := process.NewChild(p.log, "rtl_fm", nil, upArgv...).OnStderr(forwardStderr(tail, p.bus))
		down := process.NewChild(p.log, "multimon-ng", onLine, downArgv...).UsePTY().OnStderr(forwardStderr(tail, p.bus))
		return process.NewPipeline(p.log, up, down), nil
	}, settleWindow, cmdDesc)

	switch result {
	case process.Started:
		p.bus.Publish(map[string]interface{}{"type": "info", "text": "pager started"})
		return Outcome{Result: result}
	case process.EarlyExit:
		return Outcome{Result: result, Cause: process.Classify(tail.Lines())}
	default:
		return Outcome{Result: result}
	}
}

// knownProtocols are the multimon-ng demodulators the pager mode may
// enable; the protocol list feeds argv, so anything else is rejected
// before the supervisor sees it.
var knownProtocols = map[string]bool{
	"POCSAG512":  true,
	"POCSAG1200": true,
	"POCSAG2400": true,
	"FLEX":       true,
}

func expandProtocolFlags(protocols []string) []string {
	out := make([]string, 0, len(protocols)*2)
	for _, proto := range protocols {
		out = append(out, "-a", proto)
	}
	return out
}

// Stop terminates the pager pipeline if one is running.
func (p *Pager) Stop() StopOutcome {
	wasRunning := p.slot.Stop(stopGrace)
	if wasRunning {
		p.bus.Publish(stoppedEvent())
	}
	return StopOutcome{WasRunning: wasRunning}
}

// Status reports whether the pipeline is running and, if so, since when.
func (p *Pager) Status() map[string]interface{} {
	enabled, path := p.LoggingStatus()
	return map[string]interface{}{
		"running":        p.slot.Running(),
		"started_at":     p.slot.StartedAt(),
		"logging":        enabled,
		"log_file":       path,
		"launch_cmd":     p.slot.LaunchCmd(),
		"correlation_id": p.slot.CorrelationID(),
		"rss_bytes":      process.RSS(p.slot.PID()),
	}
}
