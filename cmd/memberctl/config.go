package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/memberauth"
	"github.com/MrEthical07/memberauth/api"
	"github.com/MrEthical07/memberauth/cache"
	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const envPrefix = "MEMBERCTL"

// cliConfig is loaded from MEMBERCTL_* environment variables. Flags on the
// root command override individual fields.
type cliConfig struct {
	APIURL  string        `envconfig:"API_URL" default:"http://localhost:8080"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"10s"`

	CacheBackend string `envconfig:"CACHE_BACKEND" default:"file"`
	CacheDir     string `envconfig:"CACHE_DIR"`

	RedisAddr   string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPrefix string        `envconfig:"REDIS_PREFIX" default:"memberauth"`
	RedisTTL    time.Duration `envconfig:"REDIS_TTL"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"warn"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"true"`
	AuditLog  bool   `envconfig:"AUDIT_LOG"`
}

func loadConfig() (cliConfig, error) {
	var cfg cliConfig
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return cliConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c cliConfig) validate() error {
	switch strings.ToLower(c.CacheBackend) {
	case "file", "redis":
	default:
		return fmt.Errorf("cache backend must be file or redis, got %q", c.CacheBackend)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be > 0")
	}
	return nil
}

// session bundles a restored store with the resources it holds.
type session struct {
	store   *memberauth.Store
	backend string
	redis   *cache.RedisCache
	closers []func()
}

func (s *session) Close() {
	if s.store != nil {
		s.store.Close()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openSession wires cache, api client and store, then runs the startup restore.
func openSession(ctx context.Context, cfg cliConfig, logger zerolog.Logger) (*session, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	s := &session{backend: strings.ToLower(cfg.CacheBackend)}

	var store cache.Cache
	switch s.backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		s.closers = append(s.closers, func() { _ = rdb.Close() })
		s.redis = cache.NewRedisCache(rdb, cfg.RedisPrefix, cfg.RedisTTL)
		store = s.redis
	default:
		dir := cfg.CacheDir
		if dir == "" {
			var err error
			if dir, err = cache.DefaultDir("memberctl"); err != nil {
				return nil, err
			}
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		store = fc
	}

	apiCfg := api.DefaultConfig(cfg.APIURL)
	apiCfg.Timeout = cfg.Timeout
	client, err := api.New(apiCfg, store)
	if err != nil {
		s.Close()
		return nil, err
	}

	builder := memberauth.New().
		WithClient(client).
		WithCache(store).
		WithLogger(logger).
		WithLatencyHistograms(true)
	if cfg.AuditLog {
		builder.WithAuditSink(memberauth.NewLoggerSink(logger.With().Str("stream", "audit").Logger()))
	}
	s.store, err = builder.Build()
	if err != nil {
		s.Close()
		return nil, err
	}

	s.store.Restore(ctx)
	if err := s.store.RestoreErr(); err != nil {
		logger.Warn().Err(err).Msg("discarded unreadable session")
	}
	return s, nil
}
