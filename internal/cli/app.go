// Package cli wires configuration into engines, stores and servers for the
// squeezer command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/gucorpling/squeezer"
	"github.com/gucorpling/squeezer/internal/adapters/file"
	"github.com/gucorpling/squeezer/internal/config"
	"github.com/gucorpling/squeezer/internal/logging"
	"github.com/gucorpling/squeezer/pkg/adapters/memory"
	redisadapter "github.com/gucorpling/squeezer/pkg/adapters/redis"
	"github.com/gucorpling/squeezer/pkg/codec"
	"github.com/gucorpling/squeezer/pkg/domain"
	"github.com/gucorpling/squeezer/pkg/observability"
	"github.com/gucorpling/squeezer/pkg/persistence/middleware"
	"github.com/gucorpling/squeezer/pkg/ports"
	"github.com/gucorpling/squeezer/pkg/session"
)

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"layer":      "target_layer",
	"dedup":      "dedup",
	"strict":     "dedup_strict",
	"workers":    "workers",
	"log-level":  "log.level",
	"log-format": "log.format",
	"store":      "store.kind",
	"store-dir":  "store.dir",
	"format":     "store.format",
	"addr":       "http.addr",
	"trace":      "tracing.enabled",
}

// App holds everything a command needs, built once from configuration.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *observability.Metrics
	Tracing  *observability.TracerProvider

	redis   *redisadapter.Store
	closers []func(context.Context) error
}

// Bootstrap loads configuration from cfgPath, the environment and flags and
// sets up logging, metrics and tracing.
func Bootstrap(ctx context.Context, cfgPath string, flags *pflag.FlagSet) (*App, error) {
	var opts []config.Option
	if flags != nil {
		for name, key := range flagKeys {
			opts = append(opts, config.WithFlag(key, flags.Lookup(name)))
		}
	}
	cfg, err := config.Load(cfgPath, opts...)
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	app := &App{
		Config:   cfg,
		Logger:   logging.New(level, cfg.Log.Format),
		Registry: prometheus.NewRegistry(),
	}

	app.Metrics, err = observability.NewMetrics(app.Registry)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	app.Tracing, err = observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:    cfg.Tracing.Enabled,
		SampleRate: cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}
	app.closers = append(app.closers, app.Tracing.Shutdown)
	return app, nil
}

// Engine builds an engine from the configuration with metrics and tracing attached.
func (a *App) Engine(extra ...squeezer.Option) (*squeezer.Engine, error) {
	opts := []squeezer.Option{
		squeezer.WithLogger(a.Logger),
		squeezer.WithTargetLayer(a.Config.TargetLayer),
		squeezer.WithDedupStage(a.Config.Dedup),
		squeezer.WithStrictDedup(a.Config.DedupStrict),
		squeezer.WithLifecycleHooks(a.Metrics.Hooks()),
		squeezer.WithTracer(a.Tracing.Tracer()),
	}
	if a.Logger.Enabled(context.Background(), slog.LevelDebug) {
		opts = append(opts, squeezer.WithLifecycleHooks(debugHooks(a.Logger)))
	}
	return squeezer.New(append(opts, extra...)...)
}

// Store opens the configured document store, wrapped with redaction and
// encryption when configured.
func (a *App) Store() (ports.DocumentStore, error) {
	base, err := a.baseStore()
	if err != nil {
		return nil, err
	}
	mws, err := a.storeMiddleware()
	if err != nil {
		return nil, err
	}
	return middleware.Chain(base, mws...), nil
}

func (a *App) storeMiddleware() ([]middleware.Middleware, error) {
	s := a.Config.Store
	var mws []middleware.Middleware
	if len(s.Redact) > 0 {
		mw, err := middleware.NewRedactionMiddleware(s.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	if s.EncryptionKey != "" {
		cfg := middleware.EncryptionConfig{}
		key, err := middleware.ParseKey(s.EncryptionKey)
		if err != nil {
			return nil, err
		}
		cfg.ActiveKey = key
		for _, k := range s.FallbackKeys {
			fk, err := middleware.ParseKey(k)
			if err != nil {
				return nil, err
			}
			cfg.FallbackKeys = append(cfg.FallbackKeys, fk)
		}
		mw, err := middleware.NewEncryptionMiddleware(cfg)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	return mws, nil
}

func (a *App) baseStore() (ports.DocumentStore, error) {
	s := a.Config.Store
	switch s.Kind {
	case config.StoreFile:
		format := codec.FormatJSON
		if s.Format != "" {
			f, err := codec.ParseFormat(s.Format)
			if err != nil {
				return nil, err
			}
			format = f
		}
		return file.New(s.Dir, format), nil
	case config.StoreRedis:
		store := redisadapter.New(s.Redis.Addr, s.Redis.Password, s.Redis.DB,
			redisadapter.WithPrefix(s.Redis.Prefix),
			redisadapter.WithTTL(s.Redis.TTL),
		)
		a.redis = store
		a.closers = append(a.closers, func(context.Context) error { return store.Close() })
		return store, nil
	case config.StoreMemory:
		return memory.NewStore(), nil
	}
	return nil, fmt.Errorf("unknown store kind %q", s.Kind)
}

// Sessions builds the document lock manager for store, adding a Redis
// locker when locking is enabled and a Redis store has been opened.
func (a *App) Sessions(store ports.DocumentStore) *session.Manager {
	opts := []session.Option{
		session.WithLogger(a.Logger),
		session.WithLockTTL(a.Config.Lock.TTL),
	}
	if a.redis != nil && a.Config.Lock.Enabled {
		opts = append(opts, session.WithLocker(redisadapter.NewLocker(a.redis.Client(), a.Config.Store.Redis.Prefix)))
	}
	return session.NewManager(store, opts...)
}

// Close releases stores and flushes traces.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	return errors.Join(errs...)
}

func debugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPassStart: func(ctx context.Context, e *domain.PassEvent) {
			logger.DebugContext(ctx, "pass start", "document", e.DocumentID, "pass", string(e.Pass))
		},
		OnDocumentDone: func(ctx context.Context, e *domain.DocumentEvent) {
			logger.DebugContext(ctx, "document done",
				"document", e.DocumentID,
				"nodes", e.Delta.Nodes,
				"relations", e.Delta.Relations,
				"err", e.Err)
		},
	}
}
