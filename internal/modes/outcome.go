// Package modes implements INTERCEPT's per-capture-mode controllers
// (C8): the orchestration layer that composes validators, the tool
// registry, the process supervisor, a parser, live state, and the
// event bus into the small start/stop/status/stream verb set each
// decoder mode exposes over HTTP.
package modes

import (
	"github.com/unipheas/intercept/internal/eventbus"
	"github.com/unipheas/intercept/internal/process"
)

// Outcome is the uniform result every mode controller's Start verb
// returns, so the HTTP layer can map it to a status code in one place
// instead of each handler re-deriving it.
type Outcome struct {
	Result        process.Result
	Message       string
	Cause         process.Cause
	ValidationErr error
	DependencyErr error
}

// Started reports whether the outcome represents a successful launch.
func (o Outcome) Started() bool {
	return o.ValidationErr == nil && o.DependencyErr == nil && o.Result == process.Started
}

func validationOutcome(err error) Outcome { return Outcome{ValidationErr: err} }
func dependencyOutcome(err error) Outcome { return Outcome{DependencyErr: err} }

// StopOutcome is the uniform result of a mode controller's Stop verb.
type StopOutcome struct {
	WasRunning bool
}

// forwardStderr retains a process's trailing stderr for early-exit
// classification while also surfacing every line to the mode's event
// bus as an error event, so runtime tool complaints reach the
// dashboard and a full stderr pipe can never build up unread. Raw
// events are reserved for parser decode failures on stdout.
func forwardStderr(tail *process.StderrTail, bus *eventbus.Bus) process.LineFunc {
	return func(line string) {
		tail.Append(line)
		bus.Publish(map[string]interface{}{"type": "error", "text": line})
	}
}

// stoppedEvent is the terminal status event posted when a mode's
// pipeline goes away, whether by explicit stop or on its own.
func stoppedEvent() map[string]interface{} {
	return map[string]interface{}{"type": "status", "text": "stopped"}
}
