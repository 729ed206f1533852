package oui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVendorFallbackCaseInsensitive(t *testing.T) {
	l := New("")
	assert.Equal(t, "Tile Inc", l.Vendor("D0:73:D5:12:34:56"))
	assert.Equal(t, "Tile Inc", l.Vendor("d0:73:d5:12:34:56"))
	assert.Equal(t, "Tile Inc", l.Vendor("d0-73-d5-12-34-56"))
}

func TestVendorUnknownPrefix(t *testing.T) {
	l := New("")
	assert.Empty(t, l.Vendor("00:00:00:00:00:01"))
	assert.Empty(t, l.Vendor("garbage"))
}

func TestReloadRejectsMissingFile(t *testing.T) {
	l := New("")
	assert.Error(t, l.Reload("/nonexistent/oui.txt"))
}
