package ports

import (
	"context"
	"testing"
	"time"

	"github.com/gucorpling/squeezer/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractDocument(id string) *domain.Document {
	doc := domain.NewDocument(id)
	g := doc.Graph
	tok := g.AddToken("t1", "Hello")
	edu := g.AddNode(domain.KindConstituent, "edu1")
	edu.Annotate(domain.NamespaceDefault, domain.AnnoKind, "edu")
	r, _ := g.AddRelation(domain.Dominance, edu.ID, tok.ID)
	r.Annotate(domain.NamespaceDefault, domain.AnnoIsSignaled, true)
	_ = g.AddNodeToLayer("rst", edu.ID)
	return doc
}

// RunDocumentStoreContract runs a suite of tests to verify that a DocumentStore implementation
// adheres to the defined interface contract.
func RunDocumentStoreContract(t *testing.T, store DocumentStore) {
	ctx := context.Background()
	docID := "contract-test-doc-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		// 1. Create a document
		doc := contractDocument(docID)

		// 2. Save
		err := store.Save(ctx, doc)
		require.NoError(t, err, "Save should not return error")

		// 3. Load
		loaded, err := store.Load(ctx, docID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, docID, loaded.ID)
		assert.Equal(t, 2, loaded.Graph.NodeCount())
		assert.Equal(t, 1, loaded.Graph.RelationCount())

		edus := loaded.Graph.NodesOf(domain.KindConstituent)
		require.Len(t, edus, 1)
		kind, _ := edus[0].StringAnnotation(domain.NamespaceDefault, domain.AnnoKind)
		assert.Equal(t, "edu", kind)
		assert.Equal(t, []string{"rst"}, loaded.Graph.LayersOf(edus[0].ID))

		rel := loaded.Graph.Relations()[0]
		v, _ := rel.Annotation(domain.NamespaceDefault, domain.AnnoIsSignaled)
		assert.Equal(t, true, v)
	})

	t.Run("Loaded Copy Is Independent", func(t *testing.T) {
		loaded, err := store.Load(ctx, docID)
		require.NoError(t, err)
		loaded.Graph.AddNode(domain.KindConstituent, "extra")

		again, err := store.Load(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, 2, again.Graph.NodeCount())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+docID)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		// Setup
		err := store.Save(ctx, contractDocument(docID))
		require.NoError(t, err)

		// Delete
		err = store.Delete(ctx, docID)
		require.NoError(t, err, "Delete should not return error")

		// Verify gone
		_, err = store.Load(ctx, docID)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound, "Load after Delete should return ErrDocumentNotFound")
	})

	t.Run("List", func(t *testing.T) {
		// Setup: Create 2 documents
		id1 := docID + "-1"
		id2 := docID + "-2"
		_ = store.Save(ctx, contractDocument(id1))
		_ = store.Save(ctx, contractDocument(id2))

		// Ensure cleanup
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		// List
		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
