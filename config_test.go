package authgate

import (
	"testing"
	"time"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Claims.SigningMethod != "ed25519" {
		t.Fatalf("unexpected signing method %q", cfg.Claims.SigningMethod)
	}
	if cfg.Claims.RenewalThreshold != 600*time.Second {
		t.Fatalf("unexpected renewal threshold %v", cfg.Claims.RenewalThreshold)
	}
	if cfg.Refresh.MinInterval != 30*time.Second {
		t.Fatalf("unexpected min interval %v", cfg.Refresh.MinInterval)
	}
	if cfg.Refresh.BackgroundInterval != 5*time.Minute {
		t.Fatalf("unexpected background interval %v", cfg.Refresh.BackgroundInterval)
	}
	if cfg.Audit.Enabled || cfg.Metrics.Enabled {
		t.Fatal("audit and metrics must default to disabled")
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestConfigValidateBounds(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero renewal threshold", func(c *Config) { c.Claims.RenewalThreshold = 0 }},
		{"negative min interval", func(c *Config) { c.Refresh.MinInterval = -time.Second }},
		{"zero background interval", func(c *Config) { c.Refresh.BackgroundInterval = 0 }},
		{"background shorter than min", func(c *Config) {
			c.Refresh.MinInterval = time.Minute
			c.Refresh.BackgroundInterval = time.Second
		}},
		{"audit enabled without buffer", func(c *Config) {
			c.Audit.Enabled = true
			c.Audit.BufferSize = 0
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCloneConfigIsolatesSlices(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Claims.PublicKey = []byte{1, 2, 3}
	cfg.Critical.Attributes = []string{"role"}

	clone := cloneConfig(cfg)
	cfg.Claims.PublicKey[0] = 9
	cfg.Critical.Attributes[0] = "mutated"

	if clone.Claims.PublicKey[0] != 1 {
		t.Fatal("clone must not share key storage")
	}
	if clone.Critical.Attributes[0] != "role" {
		t.Fatal("clone must not share the critical attribute list")
	}
}
