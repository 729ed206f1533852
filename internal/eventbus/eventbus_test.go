package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDropOldestOnOverflow(t *testing.T) {
	b := New(4)
	ch, unsub := b.Subscribe(0) // inherit the bus capacity
	defer unsub()

	for i := 0; i < 6; i++ {
		b.Publish(map[string]interface{}{"n": i})
	}

	var got []int
	for i := 0; i < 4; i++ {
		select {
		case evt := <-ch:
			m := evt.(map[string]interface{})
			got = append(got, m["n"].(int))
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}

	assert.Equal(t, []int{2, 3, 4, 5}, got)
}

func TestSlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	b := New(1024)
	ch, unsub := b.Subscribe(1)
	defer unsub()

	for i := 0; i < 10; i++ {
		b.Publish(i)
	}

	require.Len(t, ch, 1)
	assert.Equal(t, 9, <-ch, "the freshest event survives")
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New(8)
	ch, unsub := b.Subscribe(4)
	unsub()

	_, ok := <-ch
	assert.False(t, ok)
}

func TestFrameWireFormat(t *testing.T) {
	b, err := Frame(map[string]string{"type": "keepalive"})
	require.NoError(t, err)
	assert.Equal(t, "data: {\"type\":\"keepalive\"}\n\n", string(b))
}

func TestSubscriberOrderingPreserved(t *testing.T) {
	b := New(16)
	ch, unsub := b.Subscribe(16)
	defer unsub()

	for i := 0; i < 5; i++ {
		b.Publish(i)
	}

	for i := 0; i < 5; i++ {
		select {
		case evt := <-ch:
			assert.Equal(t, i, evt)
		case <-time.After(time.Second):
			t.Fatal("timed out")
		}
	}
}
