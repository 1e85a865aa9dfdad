package memberauth

import (
	"errors"

	internalaudit "github.com/MrEthical07/memberauth/internal/audit"
	"github.com/rs/zerolog"
)

// Builder assembles a [Store]. A Builder can be used for one Build only.
type Builder struct {
	config Config
	client AuthClient
	cache  Cache

	logger    *zerolog.Logger
	auditSink AuditSink

	built bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithClient sets the remote API collaborator. Required.
func (b *Builder) WithClient(client AuthClient) *Builder {
	b.client = client
	return b
}

// WithCache sets the durable cache the store purges on corruption and logout.
// Required; it should be the same cache the client persists logins into.
func (b *Builder) WithCache(c Cache) *Builder {
	b.cache = c
	return b
}

// WithLogger sets the logger. The default discards everything.
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = &logger
	return b
}

// WithAuditSink sets the audit sink and enables audit delivery.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = sink != nil
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles latency histograms for remote calls.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a Store in [StateInitializing].
// Call [Store.Restore] once at startup.
func (b *Builder) Build() (*Store, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.client == nil {
		return nil, errors.New("auth client required")
	}
	if b.cache == nil {
		return nil, errors.New("cache required")
	}

	logger := zerolog.Nop()
	if b.logger != nil {
		logger = b.logger.With().Str("component", "memberauth").Logger()
	}

	store := &Store{
		config:       cfg,
		client:       b.client,
		cache:        b.cache,
		logger:       logger,
		metrics:      NewMetrics(cfg.Metrics),
		ready:        make(chan struct{}),
		initializing: true,
		watchers:     make(map[uint64]chan Snapshot),
		done:         make(chan struct{}),
	}
	store.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	b.built = true

	return store, nil
}
