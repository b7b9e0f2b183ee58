package warden

import (
	"testing"
	"time"

	"github.com/danmuck/lodestone/internal/testutil/testlog"
)

func TestEventLogBound(t *testing.T) {
	testlog.Start(t)
	l := NewEventLog(3)
	base := time.Unix(1700000000, 0)
	for i := 0; i < 5; i++ {
		l.Record(Event{At: base.Add(time.Duration(i) * time.Second), Kind: EventAdmitted})
	}
	if l.Len() != 3 {
		t.Fatalf("len=%d want 3", l.Len())
	}
	events := l.Recent(0)
	if len(events) != 3 {
		t.Fatalf("recent=%d want 3", len(events))
	}
	// Oldest two entries were displaced.
	if !events[0].At.Equal(base.Add(2 * time.Second)) {
		t.Fatalf("oldest surviving event at %v", events[0].At)
	}
	if !events[2].At.Equal(base.Add(4 * time.Second)) {
		t.Fatalf("newest event at %v", events[2].At)
	}
}

func TestEventLogRecentLimit(t *testing.T) {
	testlog.Start(t)
	l := NewEventLog(10)
	base := time.Unix(1700000000, 0)
	for i := 0; i < 4; i++ {
		l.Record(Event{At: base.Add(time.Duration(i) * time.Second), Kind: EventEvicted})
	}

	events := l.Recent(2)
	if len(events) != 2 {
		t.Fatalf("recent(2)=%d", len(events))
	}
	if !events[1].At.Equal(base.Add(3 * time.Second)) {
		t.Fatalf("limit did not keep newest entries: %v", events[1].At)
	}

	if got := l.Recent(99); len(got) != 4 {
		t.Fatalf("recent(99)=%d want 4", len(got))
	}
}
