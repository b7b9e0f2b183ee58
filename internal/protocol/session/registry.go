package session

import (
	"net/netip"
	"sort"
	"time"
)

// Registry maps transport addresses to live sessions under a fixed capacity
// bound. A session exists here iff its address has been seen in an accepted
// inbound message and has not yet timed out or been evicted.
type Registry struct {
	cfg      Config
	sessions map[netip.AddrPort]*Session
}

func NewRegistry(cfg Config) *Registry {
	cfg = cfg.WithDefaults()
	return &Registry{
		cfg: cfg,
		// headroom over the bound avoids map growth during steady state
		sessions: make(map[netip.AddrPort]*Session, cfg.MaxSessions*2),
	}
}

func (r *Registry) Config() Config {
	return r.cfg
}

// LookupOrAdmit returns the session for addr, creating one when addr is
// unseen and the registry is below capacity. At capacity it fails with
// ErrCapacityExceeded and performs no mutation. The admitted flag reports
// whether this call created the session.
func (r *Registry) LookupOrAdmit(addr netip.AddrPort, now time.Time) (*Session, bool, error) {
	if s, ok := r.sessions[addr]; ok {
		return s, false, nil
	}
	if len(r.sessions) >= r.cfg.MaxSessions {
		return nil, false, ErrCapacityExceeded
	}
	s := newSession(addr, now, r.cfg)
	r.sessions[addr] = s
	return s, true, nil
}

// Get returns the session for addr, if present.
func (r *Registry) Get(addr netip.AddrPort) (*Session, bool) {
	s, ok := r.sessions[addr]
	return s, ok
}

// Remove drops the session for addr and reports whether one existed.
func (r *Registry) Remove(addr netip.AddrPort) bool {
	if _, ok := r.sessions[addr]; !ok {
		return false
	}
	delete(r.sessions, addr)
	return true
}

func (r *Registry) Len() int {
	return len(r.sessions)
}

// Each visits every session exactly once, in ascending address order so one
// pass is deterministic.
func (r *Registry) Each(fn func(*Session)) {
	for _, s := range r.ordered() {
		fn(s)
	}
}

// Reap advances every drop countdown by decrement simulation ticks and
// evicts sessions that cannot survive one further decrement. A session idle
// for N reaper runs with N*decrement >= InitialTTL is gone after the N-th
// run. Evicted sessions are returned for logging and cleanup.
func (r *Registry) Reap(decrement uint64) []*Session {
	var evicted []*Session
	for _, s := range r.ordered() {
		if s.TTL >= decrement {
			s.TTL -= decrement
		} else {
			s.TTL = 0
		}
		if s.TTL < decrement {
			delete(r.sessions, s.Addr)
			evicted = append(evicted, s)
		}
	}
	return evicted
}

func (r *Registry) ordered() []*Session {
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Addr.String() < out[j].Addr.String()
	})
	return out
}
