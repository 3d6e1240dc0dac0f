package server

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jonathan/career-compass/internal/db"
)

const (
	hubRetryMin = time.Second
	hubRetryMax = 30 * time.Second
)

// OpResync tells subscribers that notifications may have been missed while
// the listener reconnected, so they should reload.
const OpResync = "RESYNC"

// changeHub runs one Notifier subscription for every catalog channel and
// fans changes out to the streams subscribed to each channel. The listener
// starts with the first subscriber and lives until Close.
type changeHub struct {
	notifier Notifier
	channels []string
	retryMin time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	start  sync.Once
	done   chan struct{}

	mu      sync.Mutex
	started bool
	subs    map[string]map[chan db.Change]struct{}
}

func newChangeHub(notifier Notifier, channels ...string) *changeHub {
	ctx, cancel := context.WithCancel(context.Background())
	return &changeHub{
		notifier: notifier,
		channels: channels,
		retryMin: hubRetryMin,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
		subs:     make(map[string]map[chan db.Change]struct{}),
	}
}

// Subscribe registers for changes on channel. A change is only a trigger
// to reload, so the returned channel holds at most one pending change.
// Call the returned func to unsubscribe.
func (h *changeHub) Subscribe(channel string) (<-chan db.Change, func()) {
	ch := make(chan db.Change, 1)

	h.mu.Lock()
	if h.subs[channel] == nil {
		h.subs[channel] = make(map[chan db.Change]struct{})
	}
	h.subs[channel][ch] = struct{}{}
	closed := h.ctx.Err() != nil
	if !closed {
		h.started = true
	}
	h.mu.Unlock()

	if !closed {
		h.start.Do(func() { go h.run() })
	}

	return ch, func() {
		h.mu.Lock()
		delete(h.subs[channel], ch)
		h.mu.Unlock()
	}
}

func (h *changeHub) publish(channel string, c db.Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[channel] {
		select {
		case ch <- c:
		default:
		}
	}
}

func (h *changeHub) run() {
	defer close(h.done)

	retry := h.retryMin
	for {
		began := time.Now()
		err := h.notifier.Listen(h.ctx, h.channels, h.publish)
		if h.ctx.Err() != nil {
			return
		}
		if time.Since(began) > hubRetryMax {
			retry = h.retryMin
		}
		log.Printf("[stream] change listener stopped: %v (retrying in %s)", err, retry)

		select {
		case <-h.ctx.Done():
			return
		case <-time.After(retry):
		}
		retry = min(retry*2, hubRetryMax)

		for _, channel := range h.channels {
			h.publish(channel, db.Change{Op: OpResync})
		}
	}
}

// Close stops the listener and waits for it to exit.
func (h *changeHub) Close() {
	h.cancel()

	h.mu.Lock()
	started := h.started
	h.mu.Unlock()
	if started {
		<-h.done
	}
}
