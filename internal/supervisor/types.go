package supervisor

import (
	"errors"
	"fmt"
	"time"
)

// Errors
var (
	ErrInvalidConfig = errors.New("invalid supervisor config")
)

// Default values for the reconnect policy.
const (
	DefaultMaxAttempts       = 10
	DefaultInitialDelay      = 15 * time.Second
	DefaultBackoffMultiplier = 2.0
)

// Config configures a Supervisor.
type Config struct {
	Address           string        // Endpoint, e.g. ws://host:8090/sub
	MaxAttempts       int           // Connection budget; the first connect is free
	InitialDelay      time.Duration // Delay before the first reconnection
	BackoffMultiplier float64       // Growth factor applied after each scheduled retry
	MaxDelay          time.Duration // Cap on the retry delay (0 = uncapped)

	// AuthPayload builds the credential frame. Called once per open.
	AuthPayload func() ([]byte, error)

	HeartbeatPayload  []byte
	HeartbeatInterval time.Duration // 0 disables the heartbeat

	// Callbacks run on the event loop. They must not block for long and must not call Stop.
	OnMessage   func(body []byte)
	OnRetry     func(attempt int, delay time.Duration)
	OnExhausted func()
}

// DefaultConfig returns the default reconnect policy with no address set.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:       DefaultMaxAttempts,
		InitialDelay:      DefaultInitialDelay,
		BackoffMultiplier: DefaultBackoffMultiplier,
	}
}

func (c Config) validate() error {
	if c.Address == "" {
		return fmt.Errorf("%w: address is required", ErrInvalidConfig)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be >= 1, got %d", ErrInvalidConfig, c.MaxAttempts)
	}
	if c.InitialDelay <= 0 {
		return fmt.Errorf("%w: initial delay must be positive, got %v", ErrInvalidConfig, c.InitialDelay)
	}
	if c.BackoffMultiplier < 1 {
		return fmt.Errorf("%w: backoff multiplier must be >= 1, got %v", ErrInvalidConfig, c.BackoffMultiplier)
	}
	if c.MaxDelay < 0 {
		return fmt.Errorf("%w: max delay must be >= 0, got %v", ErrInvalidConfig, c.MaxDelay)
	}
	if c.MaxDelay > 0 && c.MaxDelay < c.InitialDelay {
		return fmt.Errorf("%w: max delay (%v) cannot be below initial delay (%v)", ErrInvalidConfig, c.MaxDelay, c.InitialDelay)
	}
	if c.HeartbeatInterval < 0 {
		return fmt.Errorf("%w: heartbeat interval must be >= 0, got %v", ErrInvalidConfig, c.HeartbeatInterval)
	}
	if c.HeartbeatInterval > 0 && len(c.HeartbeatPayload) == 0 {
		return fmt.Errorf("%w: heartbeat payload is required when heartbeat is enabled", ErrInvalidConfig)
	}
	return nil
}

// State is the phase of the connection attempt cycle.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateAuthenticating
	StateLive
	StateClosed
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateLive:
		return "live"
	case StateClosed:
		return "closed"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Stats is a point-in-time view of the supervisor.
type Stats struct {
	State             State         `json:"-"`
	StateName         string        `json:"state"`
	ConnID            string        `json:"conn_id,omitempty"` // Current or last connection attempt
	AttemptsRemaining int           `json:"attempts_remaining"`
	CurrentDelay      time.Duration `json:"current_delay"` // Delay the next retry would use
	Connects          int           `json:"connects"`
	Retries           int           `json:"retries"`
	Messages          int64         `json:"messages"`
	Heartbeats        int64         `json:"heartbeats"`
}
