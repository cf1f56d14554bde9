package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.InboundQueueSize != 256 {
		t.Errorf("InboundQueueSize = %d, want 256", cfg.InboundQueueSize)
	}
	if cfg.FeedRetryDelay != 5*time.Second {
		t.Errorf("FeedRetryDelay = %v, want 5s", cfg.FeedRetryDelay)
	}
	if cfg.SessionIdleTimeout != 30*time.Minute {
		t.Errorf("SessionIdleTimeout = %v, want 30m", cfg.SessionIdleTimeout)
	}
	if cfg.DisplayTimezone != "Asia/Jakarta" {
		t.Errorf("DisplayTimezone = %q, want Asia/Jakarta", cfg.DisplayTimezone)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("FEED_RETRY_DELAY", "250ms")
	t.Setenv("INBOUND_QUEUE_SIZE", "32")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Errorf("Port = %q, want 9999", cfg.Port)
	}
	if cfg.FeedRetryDelay != 250*time.Millisecond {
		t.Errorf("FeedRetryDelay = %v, want 250ms", cfg.FeedRetryDelay)
	}
	if cfg.InboundQueueSize != 32 {
		t.Errorf("InboundQueueSize = %d, want 32", cfg.InboundQueueSize)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("FEED_QUEUE_SIZE", "not-a-number")
	t.Setenv("SESSION_IDLE_TIMEOUT", "soon")

	cfg := Load()

	if cfg.FeedQueueSize != 256 {
		t.Errorf("FeedQueueSize = %d, want default 256", cfg.FeedQueueSize)
	}
	if cfg.SessionIdleTimeout != 30*time.Minute {
		t.Errorf("SessionIdleTimeout = %v, want default 30m", cfg.SessionIdleTimeout)
	}
}
