package config

import "time"

// SubscriberConfig is the root configuration for a subscriber instance.
type SubscriberConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Reconnect ReconnectConfig `yaml:"reconnect"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
	Transport TransportConfig `yaml:"transport"`
	Health    HealthConfig    `yaml:"health"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig identifies the comet endpoint.
type ServerConfig struct {
	Address string `yaml:"address"` // e.g. ws://192.168.4.7:8090/sub
}

// AuthConfig holds the credential record sent on every open.
type AuthConfig struct {
	UserID    int64  `yaml:"user_id"`
	RoomID    int32  `yaml:"room_id"`
	TokenFile string `yaml:"token_file"` // Pre-built token; overrides user_id/room_id
}

// ReconnectConfig holds the backoff policy.
type ReconnectConfig struct {
	MaxAttempts       int           `yaml:"max_attempts"`
	InitialDelay      time.Duration `yaml:"initial_delay"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
	MaxDelay          time.Duration `yaml:"max_delay"` // 0 = uncapped
}

// HeartbeatConfig holds liveness settings. Interval 0 disables the heartbeat.
type HeartbeatConfig struct {
	Interval time.Duration `yaml:"interval"`
	Payload  string        `yaml:"payload"`
}

// TransportConfig holds WebSocket settings.
type TransportConfig struct {
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
}

// HealthConfig holds the health endpoint settings.
type HealthConfig struct {
	Port     int  `yaml:"port"`
	Disabled bool `yaml:"disabled"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}
