package warden

import (
	"sync"
	"time"

	"github.com/eapache/queue"
)

// EventKind labels one session lifecycle event on the admin feed.
type EventKind string

const (
	EventAdmitted    EventKind = "admitted"
	EventRejected    EventKind = "rejected"
	EventEvicted     EventKind = "evicted"
	EventDecodeError EventKind = "decode_error"
	EventSendFailure EventKind = "send_failure"
)

// Event is one entry on the bounded lifecycle feed.
type Event struct {
	At     time.Time `json:"at"`
	Kind   EventKind `json:"kind"`
	Addr   string    `json:"addr,omitempty"`
	Detail string    `json:"detail,omitempty"`
}

// EventLog keeps the most recent lifecycle events in a bounded FIFO. The
// tick loop appends; admin handlers snapshot concurrently.
type EventLog struct {
	mu    sync.Mutex
	ring  *queue.Queue
	bound int
}

func NewEventLog(bound int) *EventLog {
	if bound <= 0 {
		bound = DefaultServiceConfig().EventLogSize
	}
	return &EventLog{ring: queue.New(), bound: bound}
}

// Record appends one event, dropping the oldest entry once the bound is
// reached.
func (l *EventLog) Record(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ring.Add(ev)
	for l.ring.Length() > l.bound {
		l.ring.Remove()
	}
}

// Recent returns up to limit events, newest last. limit <= 0 means all.
func (l *EventLog) Recent(limit int) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := l.ring.Length()
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Event, 0, limit)
	for i := n - limit; i < n; i++ {
		out = append(out, l.ring.Get(i).(Event))
	}
	return out
}

// Len reports the current feed depth.
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ring.Length()
}
