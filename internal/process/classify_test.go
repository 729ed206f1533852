package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPermission(t *testing.T) {
	assert.Equal(t, CausePermission, Classify([]string{"usb_open error: Permission denied"}))
}

func TestClassifyNoDevice(t *testing.T) {
	assert.Equal(t, CauseNoDevice, Classify([]string{"No supported devices found."}))
}

func TestClassifyBusy(t *testing.T) {
	assert.Equal(t, CauseBusy, Classify([]string{"usb_claim_interface error -6"}))
}

func TestClassifyGenericFallback(t *testing.T) {
	assert.Equal(t, CauseGeneric, Classify([]string{"something unexpected happened"}))
}
