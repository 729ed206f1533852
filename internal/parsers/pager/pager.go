// Package pager decodes multimon-ng's POCSAG/FLEX text output into
// PagerMessage events. Parse is a pure function from line to event
// plus a bool, so the formats are testable without a live decoder.
package pager

import (
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/unipheas/intercept/internal/model"
)

// pocsagRE matches a full POCSAG message with an Alpha or Numeric body.
var pocsagRE = regexp.MustCompile(
	`^(POCSAG\d+):\s*Address:\s*(\d+)\s*Function:\s*(\d+)\s*(Alpha|Numeric):\s*(.*)$`)

// pocsagToneRE matches a POCSAG line with no trailing body.
var pocsagToneRE = regexp.MustCompile(
	`^(POCSAG\d+):\s*Address:\s*(\d+)\s*Function:\s*(\d+)\s*$`)

// flexColonRE matches the colon-delimited FLEX format:
// `FLEX: 2025-01-02 03:04:05 1234/5/A 1600.000 [9876543] ALN Hi`
var flexColonRE = regexp.MustCompile(
	`^FLEX:\s*(\S+)\s+(\S+)\s+(\S+)\s+(\S+)\s+\[(\d+)\]\s+(\S+)\s+(.*)$`)

// flexPipeRE matches the pipe-delimited FLEX variant some multimon-ng
// builds emit.
var flexPipeRE = regexp.MustCompile(
	`^FLEX\|\s*(\S+)\s+(\S+)\s+(\S+)\s+(\S+)\s+\[(\d+)\]\s+(\S+)\s+(.*)$`)

// flexBareRE matches the degenerate `FLEX: <text>` form with none of
// the structured fields present.
var flexBareRE = regexp.MustCompile(`^FLEX:\s*(.*)$`)

// Parse decodes a single line of multimon-ng output into a
// PagerMessage. ok is false for lines that match no known format
// (typically multimon-ng's own startup banner or sync noise).
func Parse(line string, now time.Time) (model.PagerMessage, bool) {
	ts := now.Format("15:04:05")

	if m := pocsagRE.FindStringSubmatch(line); m != nil {
		return model.PagerMessage{
			Type:      "message",
			Protocol:  m[1],
			Address:   m[2],
			Function:  m[3],
			MsgType:   m[4],
			Message:   m[5],
			Timestamp: ts,
		}, true
	}

	if m := pocsagToneRE.FindStringSubmatch(line); m != nil {
		return model.PagerMessage{
			Type:      "message",
			Protocol:  m[1],
			Address:   m[2],
			Function:  m[3],
			MsgType:   "Tone",
			Message:   "[Tone Only]",
			Timestamp: ts,
		}, true
	}

	if m := flexColonRE.FindStringSubmatch(line); m != nil {
		return flexMessage(m, ts), true
	}
	if m := flexPipeRE.FindStringSubmatch(line); m != nil {
		return flexMessage(m, ts), true
	}
	if m := flexBareRE.FindStringSubmatch(line); m != nil {
		return model.PagerMessage{
			Type:      "message",
			Protocol:  "FLEX",
			MsgType:   "Unknown",
			Message:   m[1],
			Timestamp: ts,
		}, true
	}

	return model.PagerMessage{}, false
}

func flexMessage(m []string, ts string) model.PagerMessage {
	return model.PagerMessage{
		Type:      "message",
		Protocol:  "FLEX",
		Address:   m[5],
		MsgType:   m[6],
		Message:   m[7],
		Timestamp: ts,
	}
}

// Logger appends decoded messages to an optional tab-separated log
// file, serialized so concurrent parser goroutines never interleave
// writes.
type Logger struct {
	mu      sync.Mutex
	f       *os.File
	path    string
	enabled bool
}

// SetEnabled opens or closes the underlying log file. path is ignored
// when enabling=false.
func (l *Logger) SetEnabled(enabled bool, path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f != nil {
		l.f.Close()
		l.f = nil
	}
	l.enabled = false

	if !enabled {
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	l.f = f
	l.path = path
	l.enabled = true
	return nil
}

// Enabled reports whether logging is currently active.
func (l *Logger) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

// Path returns the currently configured log file path.
func (l *Logger) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// Write appends one decoded message as a tab-separated row, a no-op
// if logging is disabled.
func (l *Logger) Write(msg model.PagerMessage) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled || l.f == nil {
		return nil
	}
	_, err := l.f.WriteString(msg.Timestamp + "\t" + msg.Protocol + "\t" + msg.Address + "\t" +
		msg.MsgType + "\t" + msg.Message + "\n")
	return err
}

// Close releases the underlying file handle, if open.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f != nil {
		err := l.f.Close()
		l.f = nil
		return err
	}
	return nil
}
