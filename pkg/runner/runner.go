package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gucorpling/squeezer/internal/logging"
	"github.com/gucorpling/squeezer/internal/runtime"
	"github.com/gucorpling/squeezer/pkg/ports"
	"github.com/gucorpling/squeezer/pkg/session"
)

// Result is the outcome for one document.
type Result struct {
	DocumentID string
	Report     *runtime.Report
	Err        error
}

// Summary is the outcome of a corpus run. Results follow the order documents
// were scheduled in.
type Summary struct {
	RunID     string
	Results   []Result
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// Failures returns the results that carry an error.
func (s *Summary) Failures() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// Err joins all document errors, or returns nil when every document succeeded.
func (s *Summary) Err() error {
	var errs []error
	for _, r := range s.Failures() {
		errs = append(errs, fmt.Errorf("document %q: %w", r.DocumentID, r.Err))
	}
	return errors.Join(errs...)
}

// Runner drives an engine over every document of a store.
type Runner struct {
	engine  ports.Transformer
	source  ports.DocumentStore
	sink    ports.DocumentStore
	locks   *session.Manager
	workers int
	ids     []string
	dryRun  bool
	logger  *slog.Logger
}

// New creates a Runner reading from source.
func New(engine ports.Transformer, source ports.DocumentStore, opts ...Option) *Runner {
	r := &Runner{
		engine:  engine,
		source:  source,
		workers: DefaultWorkers,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.sink == nil {
		r.sink = source
	}
	if r.locks == nil {
		r.locks = session.NewManager(source, session.WithLogger(r.logger))
	}
	return r
}

// Run processes the corpus. The returned error is non-nil only when the run
// itself could not proceed (listing failed or ctx was canceled); per-document
// failures are in the Summary.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{RunID: uuid.NewString()}
	logger := r.logger.With("run_id", summary.RunID)

	ids := r.ids
	if len(ids) == 0 {
		var err error
		ids, err = r.source.List(ctx)
		if err != nil {
			return summary, fmt.Errorf("failed to list documents: %w", err)
		}
	}
	logger.InfoContext(ctx, "run started", "documents", len(ids), "workers", r.workers)

	summary.Results = make([]Result, len(ids))

	g := new(errgroup.Group)
	g.SetLimit(r.workers)

	for i, id := range ids {
		if ctx.Err() != nil {
			break
		}
		i, id := i, id
		g.Go(func() error {
			summary.Results[i] = r.process(ctx, id, logger)
			return nil
		})
	}
	_ = g.Wait()

	for i, res := range summary.Results {
		if res.DocumentID == "" {
			// never scheduled
			summary.Results[i] = Result{DocumentID: ids[i], Err: ctx.Err()}
			res = summary.Results[i]
		}
		if res.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	summary.Duration = time.Since(start)

	logger.InfoContext(ctx, "run finished",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"duration", summary.Duration)

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

func (r *Runner) process(ctx context.Context, id string, logger *slog.Logger) Result {
	res := Result{DocumentID: id}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	res.Err = r.locks.WithLock(ctx, id, func(ctx context.Context) error {
		doc, err := r.source.Load(ctx, id)
		if err != nil {
			return fmt.Errorf("load: %w", err)
		}
		report, err := r.engine.Transform(ctx, doc)
		res.Report = report
		if err != nil {
			return err
		}
		if r.dryRun {
			return nil
		}
		if err := r.sink.Save(ctx, doc); err != nil {
			return fmt.Errorf("save: %w", err)
		}
		return nil
	})

	if res.Err != nil {
		logger.WarnContext(ctx, "document failed", "document", id, "err", res.Err)
	}
	return res
}
