// Package sse streams filesystem changes made through the command surface
// to the front-end as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/starford/ansuz/internal/models"
)

const (
	clientBuffer     = 64
	changedEvent     = "fs.changed"
	defaultKeepAlive = 15 * time.Second
	retryMillis      = 3000
)

// Change is one mutation reported to subscribers as an fs.<Kind> event.
type Change struct {
	Kind    string    `json:"kind"`
	Path    string    `json:"path"`
	Command string    `json:"command"`
	At      time.Time `json:"at"`
}

// Option configures a Broker.
type Option func(*Broker)

// WithKeepAlive sets how often idle streams receive a comment frame.
func WithKeepAlive(d time.Duration) Option {
	return func(b *Broker) {
		if d > 0 {
			b.keepAlive = d
		}
	}
}

// Broker fans changes out to connected SSE clients.
//
// A single goroutine owns the client set, the event sequence and the
// fs.changed throttle; everything else talks to it over channels.
type Broker struct {
	throttle  time.Duration
	keepAlive time.Duration

	changes chan Change
	join    chan chan []byte
	leave   chan chan []byte
	counts  chan chan int

	quit    chan struct{}
	done    chan struct{}
	closing sync.Once
}

// NewBroker starts a broker. Every change is sent as fs.<kind>; at most
// one fs.changed summary is sent per throttle interval.
func NewBroker(throttle time.Duration, opts ...Option) *Broker {
	if throttle <= 0 {
		throttle = time.Second
	}
	b := &Broker{
		throttle:  throttle,
		keepAlive: defaultKeepAlive,
		changes:   make(chan Change, 256),
		join:      make(chan chan []byte),
		leave:     make(chan chan []byte),
		counts:    make(chan chan int),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.done)

	clients := make(map[chan []byte]struct{})
	var seq uint64
	var lastChanged time.Time

	send := func(event string, data any) {
		payload, err := json.Marshal(data)
		if err != nil {
			return
		}
		seq++
		frame := fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", seq, event, payload)
		for ch := range clients {
			select {
			case ch <- frame:
			default:
				// Slow client; drop rather than stall everyone else.
			}
		}
	}

	for {
		select {
		case <-b.quit:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.join:
			clients[ch] = struct{}{}

		case ch := <-b.leave:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case c := <-b.changes:
			send("fs."+c.Kind, c)
			if now := time.Now(); now.Sub(lastChanged) >= b.throttle {
				lastChanged = now
				send(changedEvent, struct{}{})
			}

		case resp := <-b.counts:
			resp <- len(clients)
		}
	}
}

// ObserveInvocation turns a successful mutating command into a change
// event. Reads, probes and failures are ignored. It has the shape of a
// command observer minus the context.
func (b *Broker) ObserveInvocation(inv models.Invocation) {
	if !inv.OK {
		return
	}
	kind, ok := models.ChangeKind(inv.Command)
	if !ok {
		return
	}
	c := Change{Kind: kind, Path: inv.Path, Command: inv.Command, At: inv.InvokedAt}
	select {
	case <-b.quit:
	case b.changes <- c:
	}
}

// ClientCount reports how many streams are connected. It is 0 once the
// broker is closed.
func (b *Broker) ClientCount() int {
	resp := make(chan int, 1)
	select {
	case b.counts <- resp:
		return <-resp
	case <-b.done:
		return 0
	}
}

// Close stops the broker and ends every open stream.
func (b *Broker) Close() {
	b.closing.Do(func() { close(b.quit) })
	<-b.done
}

func (b *Broker) subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	select {
	case b.join <- ch:
	case <-b.done:
		close(ch)
	}
	return ch
}

func (b *Broker) unsubscribe(ch chan []byte) {
	select {
	case b.leave <- ch:
	case <-b.done:
	}
}

// ServeHTTP streams change events (GET /api/events) until the client
// goes away or the broker closes.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	flusher.Flush()

	ch := b.subscribe()
	defer b.unsubscribe(ch)

	ticker := time.NewTicker(b.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": keep-alive\n\n")
			flusher.Flush()
		case frame, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(frame)
			flusher.Flush()
		}
	}
}
