package middleware_test

import (
	"crypto/rand"
	"io"
	"testing"

	"github.com/gucorpling/squeezer/pkg/domain"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

// sampleDocument returns a one-EDU document: edu1 dominates a single token.
func sampleDocument(t *testing.T, id string) *domain.Document {
	t.Helper()
	doc := domain.NewDocument(id)
	tok := doc.Graph.AddToken("t1", "confidential")
	edu := doc.Graph.AddNode(domain.KindConstituent, "edu1")
	edu.Annotate(domain.NamespaceDefault, domain.AnnoKind, "edu")
	edu.Annotate(domain.NamespaceDefault, domain.AnnoText, "confidential")
	rel, err := doc.Graph.AddRelation(domain.Dominance, edu.ID, tok.ID)
	if err != nil {
		t.Fatal(err)
	}
	rel.Annotate(domain.NamespaceDefault, domain.AnnoRelName, "span")
	return doc
}

func nodeNamed(g *domain.Graph, name string) *domain.Node {
	for _, n := range g.Nodes() {
		if n.Name == name {
			return n
		}
	}
	return nil
}
