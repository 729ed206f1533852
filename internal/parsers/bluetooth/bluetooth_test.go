package bluetooth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unipheas/intercept/internal/eventbus"
	"github.com/unipheas/intercept/internal/model"
	"github.com/unipheas/intercept/internal/state"
)

func TestParseCtlDevice(t *testing.T) {
	mac, name, rssi, ok := ParseCtl("\x1b[0;93m[NEW]\x1b[0m Device AA:BB:CC:DD:EE:FF TestSpeaker")
	require.True(t, ok)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", mac)
	assert.Equal(t, "TestSpeaker", name)
	assert.Nil(t, rssi)
}

func TestParseCtlRSSI(t *testing.T) {
	mac, _, rssi, ok := ParseCtl("[CHG] Device AA:BB:CC:DD:EE:FF RSSI: -67")
	require.True(t, ok)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", mac)
	require.NotNil(t, rssi)
	assert.Equal(t, -67, *rssi)
}

func TestParseHcitool(t *testing.T) {
	mac, name, ok := ParseHcitool("AA:BB:CC:DD:EE:FF\tTestSpeaker")
	require.True(t, ok)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", mac)
	assert.Equal(t, "TestSpeaker", name)
}

func TestParseHcitoolRejectsNonMAC(t *testing.T) {
	_, _, ok := ParseHcitool("scanning...")
	assert.False(t, ok)
}

func TestClassifyAudio(t *testing.T) {
	cat, tracker := Classify("TestSpeaker", "AA:BB:CC:DD:EE:FF")
	assert.Equal(t, "audio", cat)
	assert.Nil(t, tracker)
}

func TestClassifyTracker(t *testing.T) {
	cat, tracker := Classify("Someone's AirTag", "AA:BB:CC:DD:EE:FF")
	assert.Equal(t, "tracker", cat)
	require.NotNil(t, tracker)
	assert.Equal(t, "high", tracker.Risk)
}

func TestClassifyTrackerByMACPrefix(t *testing.T) {
	cat, tracker := Classify("", "D0:73:D5:12:34:56")
	assert.Equal(t, "tracker", cat)
	require.NotNil(t, tracker)
	assert.Equal(t, "Tile tracker", tracker.Name)
}

func TestUpsertEmitsNewThenUpdate(t *testing.T) {
	devices := state.NewStore[string, model.BluetoothDevice]()
	bus := eventbus.New(16)
	ch, unsub := bus.Subscribe(16)
	defer unsub()

	Upsert("AA:BB:CC:DD:EE:FF", "TestSpeaker", nil, nil, devices, bus)
	first := (<-ch).(model.BluetoothDevice)
	assert.Equal(t, "new", first.Action)

	rssi := -70
	Upsert("AA:BB:CC:DD:EE:FF", "", &rssi, nil, devices, bus)
	second := (<-ch).(model.BluetoothDevice)
	assert.Equal(t, "update", second.Action)
	assert.Equal(t, "TestSpeaker", second.Name)
	require.NotNil(t, second.RSSI)
	assert.Equal(t, -70, *second.RSSI)
}
