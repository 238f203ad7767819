package squeezer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/gucorpling/squeezer/internal/runtime"
	"github.com/gucorpling/squeezer/pkg/domain"
)

// Report summarizes one document run.
type Report = runtime.Report

// DedupReport summarizes the deduplication pass of a run.
type DedupReport = runtime.DedupReport

// PassError names the pass and document a fatal error came from.
type PassError = runtime.PassError

// Engine is the high-level entry point for the squeezer library.
// It wraps the internal runtime and guarantees that a failed run leaves the
// caller's document untouched.
type Engine struct {
	runtime *runtime.Engine
	cfg     runtime.Config
	hooks   domain.LifecycleHooks
	tracer  trace.Tracer
	logger  *slog.Logger

	dedupStage string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTargetLayer restricts deduplication to one layer.
func WithTargetLayer(layer string) Option {
	return func(e *Engine) {
		e.cfg.TargetLayer = layer
	}
}

// WithDedupStage places deduplication "before" or "after" the
// materialization passes, or turns it "off". The default is "after".
func WithDedupStage(stage string) Option {
	return func(e *Engine) {
		e.dedupStage = stage
	}
}

// WithStrictDedup rejects duplicate groups whose bare and annotated counts
// differ instead of collapsing them.
func WithStrictDedup(strict bool) Option {
	return func(e *Engine) {
		e.cfg.StrictDedup = strict
	}
}

// WithTracer overrides the global OpenTelemetry tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

// New initializes a new Engine.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	stage, err := runtime.ParseDedupStage(eng.dedupStage)
	if err != nil {
		return nil, err
	}
	eng.cfg.DedupStage = stage

	// Ensure logger is initialized (so we don't pass nil to runtime)
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	eng.runtime = runtime.NewEngine(eng.cfg,
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithTracer(eng.tracer),
	)
	return eng, nil
}

// Transform rewrites the document graph. The passes run on a deep copy that
// replaces doc.Graph only on success; on error doc is left as it was.
func (e *Engine) Transform(ctx context.Context, doc *domain.Document) (*Report, error) {
	if doc == nil {
		return nil, fmt.Errorf("transform: nil document")
	}
	work := doc.Clone()
	report, err := e.runtime.Run(ctx, work)
	if err != nil {
		return report, err
	}
	doc.Graph = work.Graph
	return report, nil
}

// TargetLayer returns the configured deduplication layer, if any.
func (e *Engine) TargetLayer() string { return e.cfg.TargetLayer }

// DedupStage returns the configured deduplication stage.
func (e *Engine) DedupStage() string { return string(e.cfg.DedupStage) }
