package process

import (
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChildLifecycle(t *testing.T) {
	c := NewChild(nil, "sleeper", nil, "sleep", "30")
	require.NoError(t, c.Start())
	assert.True(t, c.Running())
	assert.NotZero(t, c.PID())

	c.Stop(time.Second)
	select {
	case <-c.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("child did not exit after Stop")
	}
	assert.False(t, c.Running())
}

func TestChildLinesReachCallback(t *testing.T) {
	lines := make(chan string, 4)
	c := NewChild(nil, "echoer", func(line string) { lines <- line }, "echo", "hello world")
	require.NoError(t, c.Start())

	select {
	case line := <-lines:
		assert.Equal(t, "hello world", line)
	case <-time.After(3 * time.Second):
		t.Fatal("no output line observed")
	}
	<-c.Done()
}

func TestCleanupAllEmptiesRegistry(t *testing.T) {
	for i := 0; i < 3; i++ {
		c := NewChild(nil, "sleeper", nil, "sleep", "30")
		require.NoError(t, c.Start())
	}
	require.NotZero(t, RegisteredCount())

	CleanupAll()
	assert.Zero(t, RegisteredCount(), "no child may survive cleanup")
}

func TestChildStderrDrained(t *testing.T) {
	tail := NewStderrTail(4)
	c := NewChild(nil, "sh", nil, "sh", "-c", "echo oops >&2").OnStderr(tail.Append)
	require.NoError(t, c.Start())
	<-c.Done()

	assert.Eventually(t, func() bool {
		lines := tail.Lines()
		return len(lines) == 1 && lines[0] == "oops"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestChildSignalDelivery(t *testing.T) {
	c := NewChild(nil, "sleeper", nil, "sleep", "30")
	require.NoError(t, c.Start())

	require.NoError(t, c.Signal(syscall.SIGTERM))
	select {
	case <-c.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("child ignored SIGTERM")
	}
}
