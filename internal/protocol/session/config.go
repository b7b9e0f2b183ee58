package session

import (
	"errors"
	"fmt"
)

var (
	ErrCapacityExceeded = errors.New("session: registry at capacity")
	ErrInvalidTTLPolicy = errors.New("session: invalid ttl policy")
	ErrInvalidConfig    = errors.New("session: invalid config")
)

// TTLPolicy controls when an inbound message resets a session's drop
// countdown. The original behavior under packet reordering is ambiguous, so
// it is explicit configuration here.
type TTLPolicy string

const (
	// TTLPolicyFreshOnly resets the countdown only for messages that advance
	// the acknowledgment watermark.
	TTLPolicyFreshOnly TTLPolicy = "fresh-only"
	// TTLPolicyAnyInbound resets the countdown for every accepted message,
	// stale or not.
	TTLPolicyAnyInbound TTLPolicy = "any-inbound"
)

// Config defines registry capacity and disconnect-countdown defaults.
type Config struct {
	// MaxSessions bounds the registry; senders beyond it are rejected.
	MaxSessions int
	// InitialTTL is the drop countdown in simulation ticks, restored on
	// every TTL reset.
	InitialTTL uint64
	TTLPolicy  TTLPolicy
}

// DefaultConfig returns the shipping defaults: two clients, ten seconds of
// silence at 60 simulation ticks per second.
func DefaultConfig() Config {
	return Config{
		MaxSessions: 2,
		InitialTTL:  600,
		TTLPolicy:   TTLPolicyFreshOnly,
	}
}

// WithDefaults fills zero-valued fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.MaxSessions <= 0 {
		c.MaxSessions = def.MaxSessions
	}
	if c.InitialTTL == 0 {
		c.InitialTTL = def.InitialTTL
	}
	if c.TTLPolicy == "" {
		c.TTLPolicy = def.TTLPolicy
	}
	return c
}

func (c Config) Validate() error {
	if c.MaxSessions <= 0 {
		return fmt.Errorf("%w: max_sessions must be positive", ErrInvalidConfig)
	}
	if c.InitialTTL == 0 {
		return fmt.Errorf("%w: initial_ttl must be positive", ErrInvalidConfig)
	}
	switch c.TTLPolicy {
	case TTLPolicyFreshOnly, TTLPolicyAnyInbound:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTTLPolicy, c.TTLPolicy)
	}
}
