package devices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceLineParses(t *testing.T) {
	m := deviceLine.FindStringSubmatch("  0:  Realtek, RTL2838UHIDIR, SN: 00000001")
	require.NotNil(t, m)
	assert.Equal(t, "0", m[1])
	assert.Equal(t, "Realtek", m[2])
	assert.Equal(t, "RTL2838UHIDIR", m[3])
	assert.Equal(t, "00000001", m[4])
}

func TestDeviceLineRejectsBanner(t *testing.T) {
	assert.Nil(t, deviceLine.FindStringSubmatch("Found 1 device(s):"))
	assert.Nil(t, deviceLine.FindStringSubmatch("Using device 0: Generic RTL2832U"))
}
