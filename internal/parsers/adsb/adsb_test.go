package adsb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unipheas/intercept/internal/eventbus"
	"github.com/unipheas/intercept/internal/model"
	"github.com/unipheas/intercept/internal/state"
)

func TestParseRaw(t *testing.T) {
	icao, ok := ParseRaw("*8D4840D6202CC371C32CE0576098;")
	require.True(t, ok)
	assert.Equal(t, "4840D6", icao)
}

func TestParseRawRejectsNonFrame(t *testing.T) {
	_, ok := ParseRaw("some unrelated decoder banner")
	assert.False(t, ok)
}

func TestWriterMergesJSONPreservingPriorFields(t *testing.T) {
	store := state.NewStore[string, model.Aircraft]()
	bus := eventbus.New(16)
	ch, unsub := bus.Subscribe(16)
	defer unsub()

	w := NewWriter(store, bus)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rawCh := make(chan string, 1)
	jsonCh := make(chan []byte, 2)
	go w.Run(ctx, rawCh, jsonCh)

	jsonCh <- []byte(`{"aircraft":[{"hex":"abc123","flight":"UAL123","alt_baro":35000,"lat":51.5,"lon":-0.1}]}`)
	first := waitFor(t, ch)
	assert.Equal(t, "ABC123", first.ICAO)
	assert.Equal(t, "UAL123", first.Callsign)
	require.NotNil(t, first.Altitude)
	assert.Equal(t, 35000.0, *first.Altitude)

	jsonCh <- []byte(`{"aircraft":[{"hex":"abc123","gs":420}]}`)
	second := waitFor(t, ch)
	assert.Equal(t, "UAL123", second.Callsign, "missing fields retain prior values")
	require.NotNil(t, second.Speed)
	assert.Equal(t, 420.0, *second.Speed)
	require.NotNil(t, second.Altitude)
	assert.Equal(t, 35000.0, *second.Altitude)
}

func waitFor(t *testing.T, ch <-chan eventbus.Event) model.Aircraft {
	t.Helper()
	select {
	case evt := <-ch:
		return evt.(model.Aircraft)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for aircraft event")
		return model.Aircraft{}
	}
}
