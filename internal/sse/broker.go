// Package sse streams notebook change notifications to browsers as
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event is one notification sent to every subscriber.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Change kinds for PublishChange.
const (
	SourceCreated     = "source.created"
	SourceDeleted     = "source.deleted"
	SourceFileMissing = "source.file_missing"
	NoteCreated       = "note.created"
	SummariesUpdated  = "summaries.updated"
)

const (
	clientBuffer = 64
	keepAlive    = 25 * time.Second
)

// touchesSummaries reports whether a change of kind alters the individual
// or combined summaries.
func touchesSummaries(kind string) bool {
	return kind == SourceCreated || kind == SourceDeleted
}

// Broker fans events out to subscribers. The subscriber set, the event
// sequence and the summaries throttle belong to one goroutine, which runs
// the commands handed to it over cmds.
type Broker struct {
	throttle time.Duration
	cmds     chan func(*hub)
	done     chan struct{}
	stopped  chan struct{}
	closed   atomic.Bool
}

type hub struct {
	clients       map[chan []byte]struct{}
	seq           uint64
	throttle      time.Duration
	lastSummaries time.Time
}

// NewBroker starts a broker that emits summaries.updated at most once per
// throttle interval.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}
	b := &Broker{
		throttle: throttle,
		cmds:     make(chan func(*hub)),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.stopped)
	h := &hub{clients: make(map[chan []byte]struct{}), throttle: b.throttle}
	for {
		select {
		case <-b.done:
			for ch := range h.clients {
				close(ch)
			}
			return
		case cmd := <-b.cmds:
			cmd(h)
		}
	}
}

// do hands cmd to the broker goroutine. It returns false once the broker
// has stopped.
func (b *Broker) do(cmd func(*hub)) bool {
	if b.closed.Load() {
		return false
	}
	select {
	case b.cmds <- cmd:
		return true
	case <-b.stopped:
		return false
	}
}

func (h *hub) send(ev Event) {
	h.seq++
	msg, err := frame(h.seq, ev)
	if err != nil {
		return
	}
	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
			// slow subscriber misses this event
		}
	}
}

func (h *hub) change(kind, id string, now time.Time) {
	h.send(Event{Type: kind, Data: map[string]string{"id": id}})
	if !touchesSummaries(kind) || now.Sub(h.lastSummaries) < h.throttle {
		return
	}
	h.lastSummaries = now
	h.send(Event{Type: SummariesUpdated, Data: map[string]string{}})
}

func frame(seq uint64, ev Event) ([]byte, error) {
	payload, err := json.Marshal(ev.Data)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", seq, ev.Type, payload), nil
}

// Close stops the broker and closes every subscriber channel. It is safe to
// call more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.done)
	}
	<-b.stopped
}

// Subscribe registers a subscriber. The channel is closed on Unsubscribe or
// Close; on a closed broker it is returned already closed.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if !b.do(func(h *hub) { h.clients[ch] = struct{}{} }) {
		close(ch)
	}
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.do(func(h *hub) {
		if _, ok := h.clients[ch]; ok {
			delete(h.clients, ch)
			close(ch)
		}
	})
}

// ClientCount returns the number of subscribers.
func (b *Broker) ClientCount() int {
	reply := make(chan int, 1)
	if !b.do(func(h *hub) { reply <- len(h.clients) }) {
		return 0
	}
	return <-reply
}

// Publish sends ev to every subscriber.
func (b *Broker) Publish(ev Event) {
	b.do(func(h *hub) { h.send(ev) })
}

// PublishChange announces that the record id changed. Source creations and
// deletions are followed by a throttled summaries.updated event.
func (b *Broker) PublishChange(kind, id string) {
	b.do(func(h *hub) { h.change(kind, id, time.Now()) })
}

// ServeHTTP streams events to one client (GET /events) until it disconnects
// or the broker closes.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(keepAlive)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
