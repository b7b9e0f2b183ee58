package warden

import (
	"errors"
	"net/netip"
	"sync"
	"time"

	"github.com/danmuck/lodestone/internal/observability"
	"github.com/danmuck/lodestone/internal/protocol"
	"github.com/danmuck/lodestone/internal/protocol/session"
	"github.com/danmuck/lodestone/internal/transport"
	"github.com/danmuck/lodestone/internal/world"
	"github.com/rs/zerolog/log"
)

var ErrNoSuchPeer = errors.New("warden: no such peer")

// Gateway is the transport surface the core drives. The real implementation
// is transport.Gateway; tests substitute an in-memory fake.
type Gateway interface {
	TryReceive() (netip.AddrPort, *protocol.ClientToServer, error)
	Send(addr netip.AddrPort, msg *protocol.ServerToClient) error
}

// Server is the warden core: registry, world collaborators, and the global
// sequence, driven through the two tick entry points. The tick loop is the
// single writer; the admin surface reads through snapshot methods under the
// same guard.
type Server struct {
	mu sync.RWMutex

	cfg      ServiceConfig
	gw       Gateway
	registry *session.Registry
	world    *world.State
	inputs   *world.InputStore
	events   *EventLog

	// sequence increments once per simulation tick and stamps every
	// outbound message. It never resets while the server runs.
	sequence uint64
	started  time.Time
	clock    func() time.Time
}

// NewServer wires the core around gw. The caller owns gw's lifecycle.
func NewServer(cfg ServiceConfig, gw Gateway) *Server {
	cfg = cfg.WithDefaults()
	now := time.Now()
	return &Server{
		cfg:      cfg,
		gw:       gw,
		registry: session.NewRegistry(cfg.Session),
		world:    world.NewState(),
		inputs:   world.NewInputStore(),
		events:   NewEventLog(cfg.EventLogSize),
		started:  now,
		clock:    time.Now,
	}
}

func (s *Server) World() *world.State {
	return s.world
}

func (s *Server) Inputs() *world.InputStore {
	return s.inputs
}

func (s *Server) Events() *EventLog {
	return s.events
}

// OnSimulationTick advances the global sequence, then drains every datagram
// currently queued on the gateway so nothing stays buffered past one tick.
func (s *Server) OnSimulationTick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sequence++
	s.drainInbound()
}

func (s *Server) drainInbound() {
	for {
		sender, msg, err := s.gw.TryReceive()
		switch {
		case err == nil:
			s.integrate(sender, msg)
		case errors.Is(err, transport.ErrNoMessage):
			return
		default:
			var decodeErr *transport.DecodeError
			if errors.As(err, &decodeErr) {
				// Malformed datagram: discard, never admit the sender.
				observability.RecordReceiveError("decode")
				s.events.Record(Event{
					At:     s.clock(),
					Kind:   EventDecodeError,
					Addr:   decodeErr.Sender.String(),
					Detail: decodeErr.Err.Error(),
				})
				log.Warn().
					Str("sender", decodeErr.Sender.String()).
					Err(decodeErr.Err).
					Msg("warden.Server.drainInbound datagram discarded")
				continue
			}
			// Genuine transport fault: log it and end this drain rather
			// than retry within the same call.
			observability.RecordReceiveError("io")
			log.Error().Err(err).Msg("warden.Server.drainInbound receive failed")
			return
		}
	}
}

// integrate applies one decoded message to its session: admission,
// freshness, body translation, then the acknowledgment filter.
func (s *Server) integrate(sender netip.AddrPort, msg *protocol.ClientToServer) {
	now := s.clock()
	observability.RecordDatagramIn()

	sess, admitted, err := s.registry.LookupOrAdmit(sender, now)
	if err != nil {
		// Registry full: the datagram is dropped outright, no reply.
		observability.RecordSessionRejected()
		s.events.Record(Event{At: now, Kind: EventRejected, Addr: sender.String(), Detail: err.Error()})
		log.Warn().
			Str("sender", sender.String()).
			Int("sessions", s.registry.Len()).
			Msg("warden.Server.integrate sender rejected at capacity")
		return
	}
	if admitted {
		observability.RecordSessionAdmitted()
		observability.SetSessionsActive(s.registry.Len())
		s.events.Record(Event{At: now, Kind: EventAdmitted, Addr: sender.String(), Detail: sess.ID.String()})
		log.Info().
			Str("sender", sender.String()).
			Str("session_id", sess.ID.String()).
			Msg("warden.Server.integrate session admitted")
	}

	fresh := sess.Observe(msg.Header, now, s.registry.Config())
	log.Debug().
		Str("sender", sender.String()).
		Uint64("current_seq", msg.Header.CurrentSequence).
		Uint64("last_recv_seq", msg.Header.LastReceivedSequence).
		Bool("fresh", fresh).
		Msg("warden.Server.integrate message observed")

	for _, body := range msg.Bodies {
		switch elem := body.(type) {
		case protocol.Ping:
			sess.EnqueuePong(msg.Header.CurrentSequence)
		case protocol.Input:
			s.inputs.Upsert(sender, msg.Header.CurrentSequence, elem.Payload, now)
		}
	}
	sess.FilterAcknowledged()
}

// OnNetworkTick runs the slow cadence in its fixed order: terrain broadcast
// enqueue, per-session flush, post-send prune, then the reaper.
func (s *Server) OnNetworkTick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enqueueBroadcast()
	s.flush()
	s.reap()
}

func (s *Server) enqueueBroadcast() {
	snapshot := s.world.Snapshot()
	s.registry.Each(func(sess *session.Session) {
		sess.EnqueueTerrain(snapshot)
	})
}

// flush sends one packet per session, then applies the post-send retention
// rule. One peer's failure never aborts the remaining sends.
func (s *Server) flush() {
	s.registry.Each(func(sess *session.Session) {
		msg := &protocol.ServerToClient{
			Header: protocol.ServerHeader{Sequence: s.sequence},
			Bodies: sess.PendingSnapshot(),
		}
		if err := s.gw.Send(sess.Addr, msg); err != nil {
			observability.RecordSendFailure()
			s.events.Record(Event{At: s.clock(), Kind: EventSendFailure, Addr: sess.Addr.String(), Detail: err.Error()})
			log.Error().
				Str("peer", sess.Addr.String()).
				Err(err).
				Msg("warden.Server.flush send failed")
			return
		}
		observability.RecordDatagramOut()
		log.Debug().
			Str("peer", sess.Addr.String()).
			Uint64("sequence", s.sequence).
			Int("bodies", len(msg.Bodies)).
			Msg("warden.Server.flush packet sent")
	})

	s.registry.Each(func(sess *session.Session) {
		sess.PruneTransient()
	})
}

func (s *Server) reap() {
	evicted := s.registry.Reap(s.cfg.ReapDecrement())
	for _, sess := range evicted {
		s.inputs.Remove(sess.Addr)
		observability.RecordSessionEvicted()
		s.events.Record(Event{At: s.clock(), Kind: EventEvicted, Addr: sess.Addr.String(), Detail: sess.ID.String()})
		log.Info().
			Str("peer", sess.Addr.String()).
			Str("session_id", sess.ID.String()).
			Msg("warden.Server.reap session timed out")
	}
	observability.SetSessionsActive(s.registry.Len())
}

// SendTo delivers one ad-hoc message to a known session. The core never
// sends to unknown peers.
func (s *Server) SendTo(addr netip.AddrPort, msg *protocol.ServerToClient) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.registry.Get(addr); !ok {
		return ErrNoSuchPeer
	}
	if err := s.gw.Send(addr, msg); err != nil {
		observability.RecordSendFailure()
		return err
	}
	observability.RecordDatagramOut()
	return nil
}

// Sequence reports the current global tick sequence.
func (s *Server) Sequence() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sequence
}

// SessionCount reports live registry size.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.Len()
}

// Status is a point-in-time summary for the heartbeat and admin surface.
type Status struct {
	ServerID        string    `json:"server_id"`
	StartedAt       time.Time `json:"started_at"`
	Sequence        uint64    `json:"sequence"`
	Sessions        int       `json:"sessions"`
	MaxSessions     int       `json:"max_sessions"`
	TerrainRevision uint64    `json:"terrain_revision"`
	TerrainBytes    int       `json:"terrain_bytes"`
	PendingInputs   int       `json:"pending_inputs"`
	SimulationHz    int       `json:"simulation_hz"`
	NetworkHz       int       `json:"network_hz"`
}

func (s *Server) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		ServerID:        s.cfg.ServerID,
		StartedAt:       s.started,
		Sequence:        s.sequence,
		Sessions:        s.registry.Len(),
		MaxSessions:     s.cfg.Session.MaxSessions,
		TerrainRevision: s.world.Revision(),
		TerrainBytes:    s.world.SnapshotLen(),
		PendingInputs:   s.inputs.Len(),
		SimulationHz:    s.cfg.SimulationHz,
		NetworkHz:       s.cfg.NetworkHz,
	}
}

// SessionView is one session's admin-facing summary.
type SessionView struct {
	ID              string    `json:"id"`
	Addr            string    `json:"addr"`
	LastAck         uint64    `json:"last_ack"`
	TTL             uint64    `json:"ttl"`
	PendingPongs    int       `json:"pending_pongs"`
	PendingTerrains int       `json:"pending_terrains"`
	MessagesSeen    uint64    `json:"messages_seen"`
	AdmittedAt      time.Time `json:"admitted_at"`
	LastSeenAt      time.Time `json:"last_seen_at"`
}

func (s *Server) Sessions() []SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SessionView, 0, s.registry.Len())
	s.registry.Each(func(sess *session.Session) {
		pongs, terrains := sess.PendingCounts()
		out = append(out, SessionView{
			ID:              sess.ID.String(),
			Addr:            sess.Addr.String(),
			LastAck:         sess.LastAck,
			TTL:             sess.TTL,
			PendingPongs:    pongs,
			PendingTerrains: terrains,
			MessagesSeen:    sess.MessagesSeen,
			AdmittedAt:      sess.AdmittedAt,
			LastSeenAt:      sess.LastSeenAt,
		})
	})
	return out
}
