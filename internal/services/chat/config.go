package chat

import (
	"fmt"
	"time"
)

type Config struct {
	// StreamTimeout bounds one upstream completion call.
	StreamTimeout time.Duration
	// SaveTimeout bounds persisting the reply once generation is over.
	SaveTimeout time.Duration
	// HeartbeatInterval is the gap between SSE keep-alive comments; zero disables them.
	HeartbeatInterval time.Duration
	// ExposeErrorDetails adds provider error text to in-stream error events.
	ExposeErrorDetails bool
}

func (c *Config) Validate() error {
	if c.StreamTimeout <= 0 {
		return fmt.Errorf("stream timeout must be positive")
	}
	if c.SaveTimeout <= 0 {
		return fmt.Errorf("save timeout must be positive")
	}
	if c.HeartbeatInterval < 0 {
		return fmt.Errorf("heartbeat interval cannot be negative")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		StreamTimeout:     2 * time.Minute,
		SaveTimeout:       5 * time.Second,
		HeartbeatInterval: 15 * time.Second,
	}
}
