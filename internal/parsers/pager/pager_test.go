package pager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePOCSAGAlpha(t *testing.T) {
	msg, ok := Parse("POCSAG1200: Address: 1234567  Function: 0  Alpha: HELLO WORLD", time.Now())
	require.True(t, ok)
	assert.Equal(t, "POCSAG1200", msg.Protocol)
	assert.Equal(t, "1234567", msg.Address)
	assert.Equal(t, "0", msg.Function)
	assert.Equal(t, "Alpha", msg.MsgType)
	assert.Equal(t, "HELLO WORLD", msg.Message)
}

func TestParsePOCSAGToneOnly(t *testing.T) {
	msg, ok := Parse("POCSAG512: Address: 42  Function: 1", time.Now())
	require.True(t, ok)
	assert.Equal(t, "POCSAG512", msg.Protocol)
	assert.Equal(t, "Tone", msg.MsgType)
	assert.Equal(t, "[Tone Only]", msg.Message)
}

func TestParseFLEXColon(t *testing.T) {
	msg, ok := Parse("FLEX: 2025-01-02 03:04:05 1234/5/A 1600.000 [9876543] ALN Hi", time.Now())
	require.True(t, ok)
	assert.Equal(t, "FLEX", msg.Protocol)
	assert.Equal(t, "9876543", msg.Address)
	assert.Equal(t, "ALN", msg.MsgType)
	assert.Equal(t, "Hi", msg.Message)
}

func TestParseFLEXBare(t *testing.T) {
	msg, ok := Parse("FLEX: something unparseable here", time.Now())
	require.True(t, ok)
	assert.Equal(t, "FLEX", msg.Protocol)
	assert.Equal(t, "Unknown", msg.MsgType)
}

func TestParseUnrecognizedLine(t *testing.T) {
	_, ok := Parse("multimon-ng 1.2.0 starting", time.Now())
	assert.False(t, ok)
}

func TestLoggerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/pager.log"

	var l Logger
	require.NoError(t, l.SetEnabled(true, path))
	assert.True(t, l.Enabled())

	msg, ok := Parse("POCSAG1200: Address: 1234567  Function: 0  Alpha: HELLO WORLD", time.Now())
	require.True(t, ok)
	require.NoError(t, l.Write(msg))
	require.NoError(t, l.Close())
}
