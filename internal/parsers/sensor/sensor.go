// Package sensor decodes rtl_433's JSON-lines output into generic
// sensor events, preserving unrecognized fields verbatim so the UI can
// surface device-specific readings the parser doesn't special-case.
package sensor

import (
	"encoding/json"
	"strconv"
)

// Event is one decoded rtl_433 reading. Extra carries every JSON field
// rtl_433 emitted beyond the ones promoted to named fields, since its
// schema varies per device protocol.
type Event struct {
	Type  string                 `json:"type"`
	Model string                 `json:"model,omitempty"`
	ID    json.Number            `json:"id,omitempty"`
	Extra map[string]interface{} `json:"-"`
}

// MarshalJSON flattens Extra back alongside the named fields, so a
// round-tripped event looks like rtl_433's native record with "type"
// added.
func (e Event) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(e.Extra)+3)
	for k, v := range e.Extra {
		out[k] = v
	}
	out["type"] = e.Type
	if e.Model != "" {
		out["model"] = e.Model
	}
	if e.ID != "" {
		// Some protocols use non-numeric ids; those must go back
		// out as strings or the whole event fails to marshal.
		if _, err := e.ID.Float64(); err == nil {
			out["id"] = e.ID
		} else {
			out["id"] = string(e.ID)
		}
	}
	return json.Marshal(out)
}

// RawLine is emitted when a line fails to parse as JSON, so the
// operator still sees rtl_433's raw output rather than a silent drop.
type RawLine struct {
	Type string `json:"type"`
	Raw  string `json:"raw"`
}

// Parse decodes one line of rtl_433 JSON-lines output. A line that
// isn't valid JSON is not an error: it is surfaced as a RawLine event
// so the stream never silently swallows decoder noise.
func Parse(line string) interface{} {
	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return RawLine{Type: "raw", Raw: line}
	}

	evt := Event{Type: "sensor", Extra: fields}
	if model, ok := fields["model"].(string); ok {
		evt.Model = model
		delete(evt.Extra, "model")
	}
	if id, ok := fields["id"]; ok {
		switch v := id.(type) {
		case float64:
			if v == float64(int64(v)) {
				evt.ID = json.Number(strconv.FormatInt(int64(v), 10))
			} else {
				evt.ID = json.Number(strconv.FormatFloat(v, 'f', -1, 64))
			}
		case string:
			evt.ID = json.Number(v)
		}
		delete(evt.Extra, "id")
	}
	delete(evt.Extra, "type")

	return evt
}
