package world

import (
	"net/netip"
	"time"
)

// PlayerInput is the last input payload seen from one peer, tagged with the
// client sequence that carried it.
type PlayerInput struct {
	Payload    []byte
	Sequence   uint64
	ReceivedAt time.Time
}

// InputStore keeps at most one pending input per peer: last write wins, and
// inputs carried by older client sequences than the stored one are ignored
// so reordered datagrams cannot roll a newer input back.
type InputStore struct {
	inputs map[netip.AddrPort]PlayerInput
}

func NewInputStore() *InputStore {
	return &InputStore{inputs: make(map[netip.AddrPort]PlayerInput)}
}

// Upsert records the input for addr. It reports false when a stored input
// from a newer client sequence already exists.
func (st *InputStore) Upsert(addr netip.AddrPort, seq uint64, payload []byte, now time.Time) bool {
	if prev, ok := st.inputs[addr]; ok && prev.Sequence > seq {
		return false
	}
	owned := make([]byte, len(payload))
	copy(owned, payload)
	st.inputs[addr] = PlayerInput{Payload: owned, Sequence: seq, ReceivedAt: now}
	return true
}

// Get returns the stored input for addr, if any.
func (st *InputStore) Get(addr netip.AddrPort) (PlayerInput, bool) {
	in, ok := st.inputs[addr]
	return in, ok
}

// Drain hands every stored input to the simulation and clears the store.
func (st *InputStore) Drain(fn func(addr netip.AddrPort, in PlayerInput)) {
	for addr, in := range st.inputs {
		fn(addr, in)
		delete(st.inputs, addr)
	}
}

// Remove drops any stored input for addr, used when its session is evicted.
func (st *InputStore) Remove(addr netip.AddrPort) {
	delete(st.inputs, addr)
}

// Len reports how many peers currently have a stored input.
func (st *InputStore) Len() int {
	return len(st.inputs)
}
