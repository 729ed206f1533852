package modes

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/unipheas/intercept/internal/aplog"
	"github.com/unipheas/intercept/internal/eventbus"
	"github.com/unipheas/intercept/internal/parsers/sensor"
	"github.com/unipheas/intercept/internal/process"
	"github.com/unipheas/intercept/internal/validate"
)

// SensorParams is the validated request shape for the 433 MHz mode's
// /start_sensor route.
type SensorParams struct {
	Frequency string
	Gain      string
	Device    string
}

// Sensor supervises a single rtl_433 process and decodes its
// JSON-lines stdout into generic sensor events.
type Sensor struct {
	log  *zap.SugaredLogger
	slot *process.Slot
	bus  *eventbus.Bus
}

// NewSensor builds an idle sensor controller.
func NewSensor(log *zap.SugaredLogger) *Sensor {
	s := &Sensor{
		log:  log,
		slot: process.NewSlot("sensor"),
		bus:  eventbus.New(eventbus.DefaultCapacity),
	}
	s.slot.SetOnExit(func() { s.bus.Publish(stoppedEvent()) })
	return s
}

// Bus returns the sensor mode's event bus.
func (s *Sensor) Bus() *eventbus.Bus { return s.bus }

// Slot exposes the sensor's process slot for metrics registration.
func (s *Sensor) Slot() *process.Slot { return s.slot }

// Start validates params and launches rtl_433.
func (s *Sensor) Start(params SensorParams) Outcome {
	if params.Frequency != "" {
		if _, err := validate.Frequency(params.Frequency, 1, 1800); err != nil {
			return validationOutcome(err)
		}
	}
	if err := validate.Gain(params.Gain); err != nil {
		return validationOutcome(err)
	}
	if err := validate.DeviceIndex(params.Device); err != nil {
		return validationOutcome(err)
	}
	if err := requireTools("sensor"); err != nil {
		return dependencyOutcome(err)
	}

	tail := process.NewStderrTail(20)
	freq := params.Frequency
	if freq == "" {
		freq = "433.92"
	}

	argv := []string{"rtl_433",
		"-f", freq + "M",
		"-g", params.Gain,
		"-d", params.Device,
		"-F", "json",
	}
	result := s.slot.Start(func() (process.Runnable, error) {
		throttle := aplog.GetThrottled(s.log, time.Second, 30*time.Second)
		onLine := func(line string) {
			evt := sensor.Parse(line)
			if _, raw := evt.(sensor.RawLine); raw {
				throttle.Warnf("rtl_433 emitted a non-JSON line")
			}
			s.bus.Publish(evt)
		}
		return process.NewChild(s.log, "rtl_433", onLine, argv...).OnStderr(forwardStderr(tail, s.bus)), nil
	}, settleWindow, strings.Join(argv, " "))

	switch result {
	case process.Started:
		s.bus.Publish(map[string]interface{}{"type": "info", "text": "sensor started"})
		return Outcome{Result: result}
	case process.EarlyExit:
		return Outcome{Result: result, Cause: process.Classify(tail.Lines())}
	default:
		return Outcome{Result: result}
	}
}

// Stop terminates the sensor process if one is running.
func (s *Sensor) Stop() StopOutcome {
	wasRunning := s.slot.Stop(stopGrace)
	if wasRunning {
		s.bus.Publish(stoppedEvent())
	}
	return StopOutcome{WasRunning: wasRunning}
}

// Status reports whether rtl_433 is currently running.
func (s *Sensor) Status() map[string]interface{} {
	return map[string]interface{}{
		"running":        s.slot.Running(),
		"started_at":     s.slot.StartedAt(),
		"launch_cmd":     s.slot.LaunchCmd(),
		"correlation_id": s.slot.CorrelationID(),
		"rss_bytes":      process.RSS(s.slot.PID()),
	}
}
