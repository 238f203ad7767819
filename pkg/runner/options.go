package runner

import (
	"log/slog"

	"github.com/gucorpling/squeezer/pkg/ports"
	"github.com/gucorpling/squeezer/pkg/session"
)

// DefaultWorkers is the pool size when none is configured.
const DefaultWorkers = 4

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithSink sets where transformed documents are written.
// Without it documents are written back to the source.
func WithSink(sink ports.DocumentStore) Option {
	return func(r *Runner) {
		r.sink = sink
	}
}

// WithWorkers bounds the number of documents transformed concurrently.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithSessionManager provides the lock manager documents are processed under.
// Use it to share locks with other components or to add a distributed locker.
func WithSessionManager(m *session.Manager) Option {
	return func(r *Runner) {
		r.locks = m
	}
}

// WithDocumentIDs restricts the run to the given ids instead of listing the source.
func WithDocumentIDs(ids ...string) Option {
	return func(r *Runner) {
		r.ids = ids
	}
}

// WithDryRun transforms documents without writing them.
func WithDryRun(dry bool) Option {
	return func(r *Runner) {
		r.dryRun = dry
	}
}
