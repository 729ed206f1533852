// Package eventbus implements the per-mode bounded event queue and
// multi-subscriber SSE fan-out for INTERCEPT's mode controllers: one
// output channel per subscriber, non-blocking sends, drop-oldest
// rather than stall. Live telemetry is worth more than a backlog.
package eventbus

import (
	"encoding/json"
	"sync"
	"time"
)

// DefaultCapacity is the recommended bound for a mode's event queue.
const DefaultCapacity = 1024

// KeepaliveInterval is how long a subscriber may go without a real
// event before a synthetic keepalive is injected.
const KeepaliveInterval = 30 * time.Second

// Event is any JSON-serializable payload with a "type" discriminator.
// Producers build these as map[string]interface{} or typed structs with
// a Type field; the bus only cares that json.Marshal succeeds.
type Event interface{}

type subscriber struct {
	ch     chan Event
	closed bool
}

// Bus is one logical per-mode queue with drop-oldest overflow and
// independent fan-out to every live subscriber.
type Bus struct {
	mu     sync.Mutex
	queue  []Event
	cap    int
	subs   map[int]*subscriber
	nextID int
	notify chan struct{}
}

// New creates a Bus with the given capacity (DefaultCapacity if cap<=0).
func New(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bus{
		cap:    capacity,
		subs:   make(map[int]*subscriber),
		notify: make(chan struct{}, 1),
	}
}

// Publish enqueues an event and fans it out to every current subscriber.
// If a subscriber's channel is full, that subscriber's oldest pending
// event is dropped to make room for this one, so the subscriber loses
// backlog rather than the newest event and the publisher never blocks. The
// queue itself keeps only the most recent `cap` events; publishing past
// capacity drops the oldest queued event first.
func (b *Bus) Publish(evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) >= b.cap {
		b.queue = b.queue[1:]
	}
	b.queue = append(b.queue, evt)

	// Fan-out happens under the bus lock: every send below is
	// non-blocking, and holding the lock means an Unsubscribe can
	// never close a channel mid-send.
	for _, s := range b.subs {
		select {
		case s.ch <- evt:
			continue
		default:
		}
		// Slow subscriber: evict its oldest pending event so the
		// freshest telemetry wins, never blocking the publisher.
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- evt:
		default:
		}
	}
}

// Subscribe registers a new independent reader and returns its channel
// plus an unsubscribe function. The channel is buffered so a burst of
// events doesn't immediately overflow into drops; bufSize <= 0 inherits
// the bus's own capacity.
func (b *Bus) Subscribe(bufSize int) (<-chan Event, func()) {
	if bufSize <= 0 {
		bufSize = b.cap
	}
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	s := &subscriber{ch: make(chan Event, bufSize)}
	b.subs[id] = s
	b.mu.Unlock()

	unsub := func() {
		b.mu.Lock()
		if sub, ok := b.subs[id]; ok && !sub.closed {
			sub.closed = true
			close(sub.ch)
			delete(b.subs, id)
		}
		b.mu.Unlock()
	}
	return s.ch, unsub
}

// SubscriberCount reports how many live subscribers are attached.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// QueueLen reports how many events are currently retained in the
// bounded backlog, for queue-depth metrics.
func (b *Bus) QueueLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// KeepaliveEvent is the payload sent when no real event has flowed for
// KeepaliveInterval, so intermediary proxies do not close idle SSE
// connections.
func KeepaliveEvent() Event {
	return map[string]interface{}{"type": "keepalive"}
}

// Frame renders an event using the exact SSE wire format INTERCEPT
// requires: "data: <json>\n\n". A marshal failure is reported to the
// caller instead of ever producing a malformed frame, so a bad payload
// is logged and skipped rather than crashing the stream.
func Frame(evt Event) ([]byte, error) {
	b, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(b)+8)
	out = append(out, "data: "...)
	out = append(out, b...)
	out = append(out, '\n', '\n')
	return out, nil
}
