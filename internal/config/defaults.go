package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultMaxAttempts       = 10
	DefaultInitialDelay      = 15 * time.Second
	DefaultBackoffMultiplier = 2.0
	DefaultHeartbeatPayload  = "heartbeat"
	DefaultHandshakeTimeout  = 10 * time.Second
	DefaultWriteTimeout      = 5 * time.Second
	DefaultHealthPort        = 8080
	DefaultLogLevel          = "info"
)

func (c *SubscriberConfig) applyDefaults() {
	// Reconnect defaults
	if c.Reconnect.MaxAttempts == 0 {
		c.Reconnect.MaxAttempts = DefaultMaxAttempts
	}
	if c.Reconnect.InitialDelay == 0 {
		c.Reconnect.InitialDelay = DefaultInitialDelay
	}
	if c.Reconnect.BackoffMultiplier == 0 {
		c.Reconnect.BackoffMultiplier = DefaultBackoffMultiplier
	}

	// Heartbeat defaults (interval stays 0: disabled unless configured)
	if c.Heartbeat.Payload == "" {
		c.Heartbeat.Payload = DefaultHeartbeatPayload
	}

	// Transport defaults
	if c.Transport.HandshakeTimeout == 0 {
		c.Transport.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Transport.WriteTimeout == 0 {
		c.Transport.WriteTimeout = DefaultWriteTimeout
	}

	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
