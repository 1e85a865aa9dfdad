package memberauth

import (
	"testing"
	"time"

	"github.com/MrEthical07/memberauth/cache"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults valid",
			mutate:    func(*Config) {},
			wantValid: true,
		},
		{
			name: "custom keys valid",
			mutate: func(c *Config) {
				c.Cache.TokenKey = "app_token"
				c.Cache.AccountKey = "app_member"
			},
			wantValid: true,
		},
		{
			name: "empty token key invalid",
			mutate: func(c *Config) {
				c.Cache.TokenKey = "  "
			},
			wantValid: false,
		},
		{
			name: "empty account key invalid",
			mutate: func(c *Config) {
				c.Cache.AccountKey = ""
			},
			wantValid: false,
		},
		{
			name: "padded key invalid",
			mutate: func(c *Config) {
				c.Cache.TokenKey = " member_token"
			},
			wantValid: false,
		},
		{
			name: "identical keys invalid",
			mutate: func(c *Config) {
				c.Cache.AccountKey = c.Cache.TokenKey
			},
			wantValid: false,
		},
		{
			name: "zero purge timeout valid",
			mutate: func(c *Config) {
				c.Cache.PurgeTimeout = 0
			},
			wantValid: true,
		},
		{
			name: "negative purge timeout invalid",
			mutate: func(c *Config) {
				c.Cache.PurgeTimeout = -time.Second
			},
			wantValid: false,
		},
		{
			name: "zero watch buffer invalid",
			mutate: func(c *Config) {
				c.Notify.WatchBuffer = 0
			},
			wantValid: false,
		},
		{
			name: "audit enabled without buffer invalid",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
		{
			name: "audit disabled ignores buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = false
				c.Audit.BufferSize = 0
			},
			wantValid: true,
		},
		{
			name: "latency without metrics invalid",
			mutate: func(c *Config) {
				c.Metrics.Enabled = false
				c.Metrics.EnableLatencyHistograms = true
			},
			wantValid: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tc.wantValid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestDefaultConfigKeys(t *testing.T) {
	keys := DefaultConfig().Cache.Keys()
	if len(keys) != 2 || keys[0] != "member_token" || keys[1] != "member_account" {
		t.Fatalf("unexpected default keys: %v", keys)
	}
}

func TestBuildConfigImmutabilityAgainstExternalMutation(t *testing.T) {
	cfg := defaultConfig()
	cfg.Cache.TokenKey = "tok_a"

	b := New().WithConfig(cfg).WithClient(&fakeClient{}).WithCache(cache.NewMemoryCache())
	cfg.Cache.TokenKey = "tok_b"

	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer s.Close()

	if s.config.Cache.TokenKey != "tok_a" {
		t.Fatalf("expected config copied at WithConfig, got %q", s.config.Cache.TokenKey)
	}
}
