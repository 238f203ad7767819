package ports

import (
	"context"

	"github.com/gucorpling/squeezer/pkg/domain"
)

// DocumentStore defines the interface for persisting document graphs.
type DocumentStore interface {
	// Save persists the document under its ID.
	Save(ctx context.Context, doc *domain.Document) error

	// Load retrieves a document by ID.
	// Returns domain.ErrDocumentNotFound if the document does not exist.
	Load(ctx context.Context, id string) (*domain.Document, error)

	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all stored documents.
	List(ctx context.Context) ([]string, error)
}
