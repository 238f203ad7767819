package ports

import (
	"context"

	"github.com/gucorpling/squeezer/internal/runtime"
	"github.com/gucorpling/squeezer/pkg/domain"
)

// Transformer is the engine as seen by adapters (HTTP, corpus runner).
// A failed Transform must leave doc unchanged.
type Transformer interface {
	Transform(ctx context.Context, doc *domain.Document) (*runtime.Report, error)
}
