package sensor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSensorJSON(t *testing.T) {
	evt := Parse(`{"time":"2025-01-02 03:04:05","model":"Acurite-Tower","id":1234,"channel":"A","temperature_C":21.5}`)
	sensorEvt, ok := evt.(Event)
	require.True(t, ok)
	assert.Equal(t, "sensor", sensorEvt.Type)
	assert.Equal(t, "Acurite-Tower", sensorEvt.Model)
	assert.Equal(t, json.Number("1234"), sensorEvt.ID)
	assert.Equal(t, "A", sensorEvt.Extra["channel"])
	assert.NotContains(t, sensorEvt.Extra, "model")
	assert.NotContains(t, sensorEvt.Extra, "id")
	assert.NotContains(t, sensorEvt.Extra, "type")
}

func TestParseSensorStringID(t *testing.T) {
	evt := Parse(`{"model":"LaCrosse-TX","id":"A1","channel":2}`)
	sensorEvt := evt.(Event)
	assert.Equal(t, json.Number("A1"), sensorEvt.ID)
}

func TestParseSensorInvalidJSONIsRaw(t *testing.T) {
	evt := Parse("not json at all")
	raw, ok := evt.(RawLine)
	require.True(t, ok)
	assert.Equal(t, "raw", raw.Type)
	assert.Equal(t, "not json at all", raw.Raw)
}

func TestEventMarshalRoundTripsExtraFields(t *testing.T) {
	evt := Parse(`{"model":"Acurite-Tower","id":1234,"humidity":55}`).(Event)
	b, err := json.Marshal(evt)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "sensor", out["type"])
	assert.Equal(t, "Acurite-Tower", out["model"])
	assert.Equal(t, float64(55), out["humidity"])
}
