package session

import (
	"net/netip"
	"time"

	"github.com/danmuck/lodestone/internal/protocol"
	"github.com/google/uuid"
)

// Session is the server-side state for one remote peer, alive from its first
// accepted message until timeout or eviction.
type Session struct {
	// ID is a stable identity for logs and admin views; the registry key is
	// the address.
	ID   uuid.UUID
	Addr netip.AddrPort

	// LastAck is the highest client-reported last-received-sequence seen so
	// far. It never decreases while the session is alive.
	LastAck uint64
	// TTL is the remaining simulation ticks before the reaper drops the
	// session.
	TTL uint64

	AdmittedAt   time.Time
	LastSeenAt   time.Time
	LastFreshAt  time.Time
	MessagesSeen uint64

	pending []protocol.ServerBodyElem
}

func newSession(addr netip.AddrPort, now time.Time, cfg Config) *Session {
	return &Session{
		ID:         uuid.New(),
		Addr:       addr,
		TTL:        cfg.InitialTTL,
		AdmittedAt: now,
		LastSeenAt: now,
	}
}

// Observe integrates one inbound header and reports whether the message was
// fresh. Fresh messages advance the ack watermark, supersede all pending
// bodies, and restore the drop countdown; stale messages leave ack state and
// queue untouched. TTL restoration on stale messages follows cfg.TTLPolicy.
func (s *Session) Observe(h protocol.ClientHeader, now time.Time, cfg Config) bool {
	s.MessagesSeen++
	s.LastSeenAt = now

	fresh := h.LastReceivedSequence > s.LastAck
	if fresh {
		s.LastAck = h.LastReceivedSequence
		s.pending = s.pending[:0]
		s.LastFreshAt = now
	}
	if fresh || cfg.TTLPolicy == TTLPolicyAnyInbound {
		s.TTL = cfg.InitialTTL
	}
	return fresh
}

// EnqueuePong queues an acknowledgment for the client message that carried
// seq as its current sequence.
func (s *Session) EnqueuePong(seq uint64) {
	s.pending = append(s.pending, protocol.Pong{Sequence: seq})
}

// EnqueueTerrain queues one world snapshot. The bytes are copied so each
// session owns its payload.
func (s *Session) EnqueueTerrain(snapshot []byte) {
	owned := make([]byte, len(snapshot))
	copy(owned, snapshot)
	s.pending = append(s.pending, protocol.Terrain{Snapshot: owned})
}

// FilterAcknowledged drops pongs answering pings older than the ack
// watermark. Terrain elements always survive this filter; they are pruned
// after each flush instead.
func (s *Session) FilterAcknowledged() {
	kept := s.pending[:0]
	for _, body := range s.pending {
		if pong, ok := body.(protocol.Pong); ok && pong.Sequence < s.LastAck {
			continue
		}
		kept = append(kept, body)
	}
	s.pending = kept
}

// PruneTransient applies the post-send rule: pongs stay queued until
// acknowledged, terrain snapshots never outlive the flush that sent them.
func (s *Session) PruneTransient() {
	kept := s.pending[:0]
	for _, body := range s.pending {
		if _, ok := body.(protocol.Terrain); ok {
			continue
		}
		kept = append(kept, body)
	}
	s.pending = kept
}

// PendingSnapshot returns a copy of the pending queue for one outbound
// flush.
func (s *Session) PendingSnapshot() []protocol.ServerBodyElem {
	if len(s.pending) == 0 {
		return nil
	}
	out := make([]protocol.ServerBodyElem, len(s.pending))
	copy(out, s.pending)
	return out
}

// PendingCounts reports queued pongs and terrains for views and metrics.
func (s *Session) PendingCounts() (pongs, terrains int) {
	for _, body := range s.pending {
		switch body.(type) {
		case protocol.Pong:
			pongs++
		case protocol.Terrain:
			terrains++
		}
	}
	return pongs, terrains
}

// PendingLen reports the pending queue depth.
func (s *Session) PendingLen() int {
	return len(s.pending)
}
