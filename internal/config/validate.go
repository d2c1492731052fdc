package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *SubscriberConfig) Validate() error {
	if c.Server.Address == "" {
		return errors.New("server.address is required")
	}
	u, err := url.Parse(c.Server.Address)
	if err != nil {
		return fmt.Errorf("server.address is not a valid URL: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("server.address scheme must be ws or wss, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("server.address must include a host")
	}

	if c.Reconnect.MaxAttempts < 1 {
		return errors.New("reconnect.max_attempts must be >= 1")
	}
	if c.Reconnect.InitialDelay <= 0 {
		return errors.New("reconnect.initial_delay must be positive")
	}
	if c.Reconnect.BackoffMultiplier < 1 {
		return fmt.Errorf("reconnect.backoff_multiplier must be >= 1, got %v", c.Reconnect.BackoffMultiplier)
	}
	if c.Reconnect.MaxDelay < 0 {
		return errors.New("reconnect.max_delay must be >= 0")
	}
	if c.Reconnect.MaxDelay > 0 && c.Reconnect.MaxDelay < c.Reconnect.InitialDelay {
		return fmt.Errorf("reconnect.max_delay (%v) cannot be below initial_delay (%v)", c.Reconnect.MaxDelay, c.Reconnect.InitialDelay)
	}

	if c.Heartbeat.Interval < 0 {
		return errors.New("heartbeat.interval must be >= 0")
	}

	if c.Transport.HandshakeTimeout <= 0 {
		return errors.New("transport.handshake_timeout must be positive")
	}
	if c.Transport.WriteTimeout <= 0 {
		return errors.New("transport.write_timeout must be positive")
	}

	if !c.Health.Disabled && (c.Health.Port < 1 || c.Health.Port > 65535) {
		return fmt.Errorf("health.port must be between 1 and 65535, got %d", c.Health.Port)
	}

	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}

// ParseLogLevel maps a log.level value to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return 0, fmt.Errorf("log.level %q is not one of debug, info, warn, error", level)
	}
	return l, nil
}
