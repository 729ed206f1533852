package process

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeRunnable is a minimal Runnable for exercising Slot without
// spawning real processes.
type fakeRunnable struct {
	done      chan struct{}
	startErr  error
	stopCalls int
}

func newFakeRunnable() *fakeRunnable {
	return &fakeRunnable{done: make(chan struct{})}
}

func (f *fakeRunnable) Start() error { return f.startErr }

func (f *fakeRunnable) Stop(time.Duration) {
	f.stopCalls++
	select {
	case <-f.done:
	default:
		close(f.done)
	}
}

func (f *fakeRunnable) Done() <-chan struct{} { return f.done }

func TestSlotStartThenAlreadyRunning(t *testing.T) {
	s := NewSlot("wifi")
	fr := newFakeRunnable()

	res := s.Start(func() (Runnable, error) { return fr, nil }, 10*time.Millisecond, "fake")
	assert.Equal(t, Started, res)
	assert.True(t, s.Running())

	res2 := s.Start(func() (Runnable, error) { return newFakeRunnable(), nil }, 10*time.Millisecond, "fake")
	assert.Equal(t, AlreadyRunning, res2)

	s.Stop(time.Second)
	assert.False(t, s.Running())
	assert.Equal(t, 1, fr.stopCalls)
}

func TestSlotEarlyExit(t *testing.T) {
	s := NewSlot("sensor")
	fr := newFakeRunnable()
	close(fr.done) // exits immediately

	res := s.Start(func() (Runnable, error) { return fr, nil }, 20*time.Millisecond, "fake")
	assert.Equal(t, EarlyExit, res)
	assert.False(t, s.Running())
}

func TestSlotFailedToSpawn(t *testing.T) {
	s := NewSlot("bt")
	res := s.Start(func() (Runnable, error) {
		return nil, assert.AnError
	}, time.Millisecond, "fake")
	assert.Equal(t, FailedToSpawn, res)
	assert.False(t, s.Running())
}

func TestSlotRecordsLaunchDiagnostics(t *testing.T) {
	s := NewSlot("pager")
	fr := newFakeRunnable()

	res := s.Start(func() (Runnable, error) { return fr, nil }, 5*time.Millisecond, "rtl_fm -f 153.350M")
	assert.Equal(t, Started, res)
	assert.Equal(t, "rtl_fm -f 153.350M", s.LaunchCmd())
	assert.NotEmpty(t, s.CorrelationID())
}

func TestSlotWatchClearsOnCrash(t *testing.T) {
	s := NewSlot("adsb")
	fr := newFakeRunnable()

	res := s.Start(func() (Runnable, error) { return fr, nil }, 5*time.Millisecond, "fake")
	assert.Equal(t, Started, res)

	close(fr.done)
	assert.Eventually(t, func() bool { return !s.Running() }, time.Second, 5*time.Millisecond)
}
