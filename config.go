package memberauth

import (
	"errors"
	"strings"
	"time"
)

// Config controls a [Store] built through [Builder].
//
// Config values are copied at Build time; mutating a Config afterwards has no
// effect on the built store.
type Config struct {
	Cache   CacheConfig
	Notify  NotifyConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
CACHE CONFIG
====================================
*/

// CacheConfig names the two durable cache entries that make up a persisted session.
type CacheConfig struct {
	TokenKey   string
	AccountKey string
	// PurgeTimeout bounds the cache delete issued after a failed restore or a
	// logout. Zero means the caller's context alone applies.
	PurgeTimeout time.Duration
}

// Keys returns the token and account keys in purge order.
func (c CacheConfig) Keys() []string {
	return []string{c.TokenKey, c.AccountKey}
}

/*
====================================
NOTIFY CONFIG
====================================
*/

// NotifyConfig controls change-notification delivery to [Store.Watch] consumers.
type NotifyConfig struct {
	// WatchBuffer is the default channel buffer used when Watch is called with
	// a non-positive buffer.
	WatchBuffer int
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls asynchronous audit delivery.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles in-process counters and latency histograms.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

const (
	defaultTokenKey   = "member_token"
	defaultAccountKey = "member_account"
)

// DefaultConfig returns the recommended configuration: the standard cache keys,
// metrics on, audit off.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			TokenKey:     defaultTokenKey,
			AccountKey:   defaultAccountKey,
			PurgeTimeout: 2 * time.Second,
		},
		Notify: NotifyConfig{
			WatchBuffer: 4,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

// Validate checks the configuration for values the store cannot operate with.
func (c *Config) Validate() error {
	tokenKey := strings.TrimSpace(c.Cache.TokenKey)
	accountKey := strings.TrimSpace(c.Cache.AccountKey)

	if tokenKey == "" {
		return errors.New("Cache TokenKey must not be empty")
	}
	if accountKey == "" {
		return errors.New("Cache AccountKey must not be empty")
	}
	if tokenKey != c.Cache.TokenKey || accountKey != c.Cache.AccountKey {
		return errors.New("Cache keys must not contain leading or trailing whitespace")
	}
	if tokenKey == accountKey {
		return errors.New("Cache TokenKey and AccountKey must differ")
	}
	if c.Cache.PurgeTimeout < 0 {
		return errors.New("Cache PurgeTimeout must be >= 0")
	}

	if c.Notify.WatchBuffer <= 0 {
		return errors.New("Notify WatchBuffer must be > 0")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}
