package session

import (
	"net/netip"
	"testing"
	"time"

	"github.com/danmuck/lodestone/internal/protocol"
	"github.com/danmuck/lodestone/internal/testutil/testlog"
)

func testAddr(t *testing.T, s string) netip.AddrPort {
	t.Helper()
	addr, err := netip.ParseAddrPort(s)
	if err != nil {
		t.Fatalf("parse addr %q: %v", s, err)
	}
	return addr
}

func TestObserveFirstMessageIsStale(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultConfig()
	now := time.Unix(1700000000, 0)
	s := newSession(testAddr(t, "127.0.0.1:40001"), now, cfg)
	s.TTL = 60 // pretend the countdown already ran down a little

	// A brand-new client has received nothing yet, so it reports
	// last_received_sequence=0, which does not exceed the initial watermark.
	fresh := s.Observe(protocol.ClientHeader{CurrentSequence: 1, LastReceivedSequence: 0}, now, cfg)
	if fresh {
		t.Fatalf("first message should be stale against initial watermark")
	}
	if s.LastAck != 0 {
		t.Fatalf("last_ack mutated by stale message: %d", s.LastAck)
	}
	if s.TTL != 60 {
		t.Fatalf("ttl reset by stale message under fresh-only policy: %d", s.TTL)
	}
	s.EnqueuePong(1)
	s.FilterAcknowledged()
	if pongs, _ := s.PendingCounts(); pongs != 1 {
		t.Fatalf("stale message should still produce a pong, pending pongs=%d", pongs)
	}

	// The follow-up acknowledges sequence 1: fresh, so the queue is
	// superseded and the countdown restored.
	fresh = s.Observe(protocol.ClientHeader{CurrentSequence: 2, LastReceivedSequence: 1}, now.Add(time.Second), cfg)
	if !fresh {
		t.Fatalf("expected fresh message")
	}
	if s.LastAck != 1 {
		t.Fatalf("last_ack=%d want 1", s.LastAck)
	}
	if s.PendingLen() != 0 {
		t.Fatalf("fresh message should clear pending queue, len=%d", s.PendingLen())
	}
	if s.TTL != cfg.InitialTTL {
		t.Fatalf("ttl not restored: %d", s.TTL)
	}
	s.EnqueuePong(2)
	if pongs, _ := s.PendingCounts(); pongs != 1 {
		t.Fatalf("pending pongs=%d want 1", pongs)
	}
}

func TestObserveAckWatermarkIsMonotonic(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultConfig()
	now := time.Unix(1700000000, 0)
	s := newSession(testAddr(t, "127.0.0.1:40001"), now, cfg)

	acks := []uint64{0, 3, 1, 3, 7, 2, 7}
	var highest uint64
	for i, ack := range acks {
		fresh := s.Observe(protocol.ClientHeader{CurrentSequence: uint64(i + 1), LastReceivedSequence: ack}, now, cfg)
		if fresh != (ack > highest) {
			t.Fatalf("ack=%d highest=%d fresh=%v", ack, highest, fresh)
		}
		if ack > highest {
			highest = ack
		}
		if s.LastAck != highest {
			t.Fatalf("last_ack=%d want %d after ack=%d", s.LastAck, highest, ack)
		}
	}
	if s.MessagesSeen != uint64(len(acks)) {
		t.Fatalf("messages_seen=%d want %d", s.MessagesSeen, len(acks))
	}
}

func TestAnyInboundPolicyResetsTTLOnStale(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultConfig()
	cfg.TTLPolicy = TTLPolicyAnyInbound
	now := time.Unix(1700000000, 0)
	s := newSession(testAddr(t, "127.0.0.1:40001"), now, cfg)
	s.TTL = 1

	fresh := s.Observe(protocol.ClientHeader{CurrentSequence: 9, LastReceivedSequence: 0}, now, cfg)
	if fresh {
		t.Fatalf("message should be stale")
	}
	if s.TTL != cfg.InitialTTL {
		t.Fatalf("any-inbound policy should reset ttl, got %d", s.TTL)
	}
}

func TestFilterAcknowledgedDropsMootPongs(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultConfig()
	now := time.Unix(1700000000, 0)
	s := newSession(testAddr(t, "127.0.0.1:40001"), now, cfg)

	s.EnqueuePong(5)
	s.EnqueueTerrain([]byte("snapshot"))
	s.LastAck = 6

	s.FilterAcknowledged()
	pongs, terrains := s.PendingCounts()
	if pongs != 0 {
		t.Fatalf("pong(5) with last_ack=6 should be dropped, pongs=%d", pongs)
	}
	if terrains != 1 {
		t.Fatalf("terrain must survive the ack filter, terrains=%d", terrains)
	}

	s.EnqueuePong(6)
	s.EnqueuePong(7)
	s.FilterAcknowledged()
	if pongs, _ := s.PendingCounts(); pongs != 2 {
		t.Fatalf("pongs at or above the watermark must be kept, pongs=%d", pongs)
	}
}

func TestPruneTransientDropsTerrainKeepsPongs(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultConfig()
	now := time.Unix(1700000000, 0)
	s := newSession(testAddr(t, "127.0.0.1:40001"), now, cfg)

	s.EnqueuePong(3)
	s.EnqueueTerrain([]byte("tick-1"))
	s.PruneTransient()

	pongs, terrains := s.PendingCounts()
	if pongs != 1 || terrains != 0 {
		t.Fatalf("post-send queue pongs=%d terrains=%d, want 1/0", pongs, terrains)
	}

	// Next tick enqueues a fresh snapshot; the queue never carries two.
	s.EnqueueTerrain([]byte("tick-2"))
	if _, terrains := s.PendingCounts(); terrains != 1 {
		t.Fatalf("terrain accumulated across ticks: %d", terrains)
	}
}

func TestEnqueueTerrainCopiesSnapshot(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultConfig()
	now := time.Unix(1700000000, 0)
	s := newSession(testAddr(t, "127.0.0.1:40001"), now, cfg)

	snapshot := []byte{1, 2, 3}
	s.EnqueueTerrain(snapshot)
	snapshot[0] = 99

	terrain := s.PendingSnapshot()[0].(protocol.Terrain)
	if terrain.Snapshot[0] != 1 {
		t.Fatalf("queued terrain aliases caller buffer: %v", terrain.Snapshot)
	}
}

func TestPendingSnapshotIsDetached(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultConfig()
	now := time.Unix(1700000000, 0)
	s := newSession(testAddr(t, "127.0.0.1:40001"), now, cfg)

	s.EnqueuePong(1)
	snap := s.PendingSnapshot()
	s.PruneTransient()
	s.EnqueueTerrain([]byte("x"))

	if len(snap) != 1 {
		t.Fatalf("snapshot len=%d want 1", len(snap))
	}
	if _, ok := snap[0].(protocol.Pong); !ok {
		t.Fatalf("snapshot mutated by later queue operations: %T", snap[0])
	}
}
