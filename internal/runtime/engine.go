package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gucorpling/squeezer/pkg/domain"
)

// TracerName is the instrumentation scope of engine spans.
const TracerName = "github.com/gucorpling/squeezer/internal/runtime"

// DedupStage places the deduplication pass relative to the materialization chain.
type DedupStage string

const (
	DedupBefore DedupStage = "before"
	DedupAfter  DedupStage = "after"
	DedupOff    DedupStage = "off"
)

// ParseDedupStage validates a stage name. Empty means DedupAfter.
func ParseDedupStage(s string) (DedupStage, error) {
	switch DedupStage(s) {
	case "", DedupAfter:
		return DedupAfter, nil
	case DedupBefore, DedupOff:
		return DedupStage(s), nil
	}
	return "", fmt.Errorf("invalid dedup stage %q (want before, after or off)", s)
}

// Config holds the engine settings.
type Config struct {
	TargetLayer string
	DedupStage  DedupStage
	StrictDedup bool
}

// Report summarizes one document run.
type Report struct {
	DocumentID  string            `json:"document_id"`
	ActiveLayer string            `json:"active_layer,omitempty"`
	Dedup       DedupReport       `json:"dedup"`
	Scaffolds   int               `json:"scaffolds"`
	Signals     int               `json:"signals"`
	Bound       int               `json:"bound"`
	Marked      int               `json:"marked"`
	Signaled    int               `json:"signaled"`
	Swept       int               `json:"swept"`
	Delta       domain.StatsDelta `json:"delta"`
	Duration    time.Duration     `json:"duration"`
}

// Engine runs the rewriting passes over one document graph at a time.
// It holds no per-document state and is safe for concurrent use.
type Engine struct {
	cfg    Config
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	tracer trace.Tracer
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithTracer overrides the global tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// NewEngine creates an engine.
func NewEngine(cfg Config, opts ...Option) *Engine {
	if cfg.DedupStage == "" {
		cfg.DedupStage = DedupAfter
	}
	e := &Engine{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer: otel.Tracer(TracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine settings.
func (e *Engine) Config() Config { return e.cfg }

// Run mutates doc.Graph in place. On error the graph may be partially
// rewritten; callers that need atomicity run it on a clone.
func (e *Engine) Run(ctx context.Context, doc *domain.Document) (*Report, error) {
	start := time.Now()
	logger := e.logger.With("document", doc.ID)
	report := &Report{DocumentID: doc.ID}

	ctx, span := e.tracer.Start(ctx, "squeezer.document",
		trace.WithAttributes(attribute.String("squeezer.document.id", doc.ID)))
	defer span.End()

	g := doc.Graph
	if g == nil {
		g = domain.NewGraph()
		doc.Graph = g
	}
	before := domain.Summarize(g)

	err := e.passes(ctx, doc, report, logger)

	report.Delta = domain.DiffStats(before, domain.Summarize(g))
	report.Duration = time.Since(start)
	if e.hooks.OnDocumentDone != nil {
		e.hooks.OnDocumentDone(ctx, &domain.DocumentEvent{
			Timestamp:  time.Now(),
			DocumentID: doc.ID,
			Duration:   report.Duration,
			Delta:      report.Delta,
			Err:        err,
		})
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorContext(ctx, "document failed", "error", err)
		return report, err
	}

	span.SetAttributes(
		attribute.Int("squeezer.scaffolds", report.Scaffolds),
		attribute.Int("squeezer.signals", report.Signals),
		attribute.Int("squeezer.dedup.merged", report.Dedup.Merged),
	)
	logger.InfoContext(ctx, "document transformed",
		"layer", report.ActiveLayer,
		"merged", report.Dedup.Merged,
		"deleted", report.Dedup.Deleted,
		"scaffolds", report.Scaffolds,
		"signals", report.Signals,
		"bound", report.Bound,
		"signaled", report.Signaled,
		"duration", report.Duration)
	return report, nil
}

func (e *Engine) passes(ctx context.Context, doc *domain.Document, report *Report, logger *slog.Logger) error {
	g := doc.Graph
	report.ActiveLayer = ActiveLayer(g)

	dedup := func(ctx context.Context) error {
		r, err := Deduplicate(g, DedupOptions{TargetLayer: e.cfg.TargetLayer, Strict: e.cfg.StrictDedup}, logger)
		report.Dedup = r
		return err
	}

	if e.cfg.DedupStage == DedupBefore {
		if err := e.pass(ctx, doc.ID, domain.PassDedup, logger, dedup); err != nil {
			return err
		}
	}

	// 1. Resolve external ids
	var ix *Index
	if err := e.pass(ctx, doc.ID, domain.PassIndex, logger, func(context.Context) error {
		var err error
		ix, err = BuildIndex(g)
		return err
	}); err != nil {
		return err
	}

	// 2. Scaffolds for secondary edges
	var scaffolds *Scaffolds
	if err := e.pass(ctx, doc.ID, domain.PassSecondaryEdges, logger, func(context.Context) error {
		var err error
		scaffolds, err = MaterializeSecondaryEdges(g, ix, report.ActiveLayer, logger)
		if err == nil {
			report.Scaffolds = scaffolds.Len()
		}
		return err
	}); err != nil {
		return err
	}

	// 3. Signals, primary and secondary
	var queue *SignalQueue
	if err := e.pass(ctx, doc.ID, domain.PassSignals, logger, func(context.Context) error {
		var err error
		queue, err = MaterializeSignals(g, ix, scaffolds, report.ActiveLayer, logger)
		if err == nil {
			report.Signals = queue.Created
		}
		return err
	}); err != nil {
		return err
	}

	// 4. One winning signal per scaffold
	if err := e.pass(ctx, doc.ID, domain.PassBind, logger, func(context.Context) error {
		var err error
		report.Bound, err = BindSignals(g, scaffolds, queue, report.ActiveLayer)
		return err
	}); err != nil {
		return err
	}

	// 5. is_signaled on ordinary tree relations
	if err := e.pass(ctx, doc.ID, domain.PassMark, logger, func(context.Context) error {
		report.Marked, report.Signaled = MarkSignaledEdges(g, queue)
		return nil
	}); err != nil {
		return err
	}

	if e.cfg.DedupStage == DedupAfter {
		if err := e.pass(ctx, doc.ID, domain.PassDedup, logger, dedup); err != nil {
			return err
		}
	}

	return e.pass(ctx, doc.ID, domain.PassSweep, logger, func(context.Context) error {
		report.Swept = SweepScratch(g, logger)
		return nil
	})
}

// pass runs one step with its span, hooks and error wrapping.
func (e *Engine) pass(ctx context.Context, docID string, name domain.PassName, logger *slog.Logger, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return &PassError{Pass: name, DocumentID: docID, Err: err}
	}

	ctx, span := e.tracer.Start(ctx, "squeezer.pass."+string(name),
		trace.WithAttributes(attribute.String("squeezer.pass", string(name))))
	defer span.End()

	start := time.Now()
	if e.hooks.OnPassStart != nil {
		e.hooks.OnPassStart(ctx, &domain.PassEvent{Timestamp: start, DocumentID: docID, Pass: name})
	}

	err := fn(ctx)

	if e.hooks.OnPassEnd != nil {
		e.hooks.OnPassEnd(ctx, &domain.PassEvent{
			Timestamp:  time.Now(),
			DocumentID: docID,
			Pass:       name,
			Duration:   time.Since(start),
			Err:        err,
		})
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return &PassError{Pass: name, DocumentID: docID, Err: err}
	}
	logger.DebugContext(ctx, "pass complete", "pass", string(name), "duration", time.Since(start))
	return nil
}
