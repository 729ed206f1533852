package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMAC(t *testing.T) {
	assert.NoError(t, MAC("AA:BB:CC:DD:EE:FF"))
	assert.Error(t, MAC("AA:BB:CC:DD:EE"))
	assert.Error(t, MAC(""))
}

func TestChannel(t *testing.T) {
	assert.Error(t, Channel("0"))
	assert.NoError(t, Channel("1"))
	assert.NoError(t, Channel("200"))
	assert.Error(t, Channel("201"))
	assert.Error(t, Channel("not-a-number"))
}

func TestFrequency(t *testing.T) {
	_, err := Frequency("153.350", 100, 200)
	assert.NoError(t, err)
	_, err = Frequency("NaN", 100, 200)
	assert.Error(t, err)
	_, err = Frequency("999", 100, 200)
	assert.Error(t, err)
}

func TestLatLon(t *testing.T) {
	assert.NoError(t, Latitude(51.5074))
	assert.Error(t, Latitude(91))
	assert.NoError(t, Longitude(-0.1278))
	assert.Error(t, Longitude(181))
}

func TestGain(t *testing.T) {
	assert.NoError(t, Gain("auto"))
	assert.NoError(t, Gain("0"))
	assert.NoError(t, Gain("60"))
	assert.Error(t, Gain("61"))
	assert.Error(t, Gain("bogus"))
}

func TestPPM(t *testing.T) {
	assert.NoError(t, PPM("0"))
	assert.NoError(t, PPM("-42"))
	assert.Error(t, PPM("501"))
	assert.Error(t, PPM(""))
}

func TestCapturePath(t *testing.T) {
	assert.NoError(t, CapturePath("/tmp/intercept_handshake_AABBCC-01.cap", "/tmp/intercept_handshake_"))
	assert.Error(t, CapturePath("/etc/shadow", "/tmp/intercept_handshake_"))
	assert.Error(t, CapturePath("/tmp/intercept_handshake_../../etc/passwd", "/tmp/intercept_handshake_"))
}
