package runtime

import (
	"fmt"

	"github.com/gucorpling/squeezer/internal/ingest"
	"github.com/gucorpling/squeezer/pkg/domain"
)

// Index resolves upstream external ids to live node handles.
type Index struct {
	tokens       map[string]domain.NodeID
	constituents map[string]domain.NodeID

	// positions holds the 1-based ordinal of every token in insertion order.
	positions map[domain.NodeID]int
}

// BuildIndex collects and strips the scratch external ids of tokens and
// constituents. Nodes without an external id are skipped.
func BuildIndex(g *domain.Graph) (*Index, error) {
	ix := &Index{
		tokens:       make(map[string]domain.NodeID),
		constituents: make(map[string]domain.NodeID),
		positions:    make(map[domain.NodeID]int),
	}

	pos := 0
	for _, n := range g.Nodes() {
		var table map[string]domain.NodeID
		switch n.Kind {
		case domain.KindToken:
			pos++
			ix.positions[n.ID] = pos
			table = ix.tokens
		case domain.KindConstituent:
			table = ix.constituents
		default:
			continue
		}

		raw, ok := n.RemoveAnnotation(domain.NamespaceScratch, domain.AnnoExternalID)
		if !ok {
			continue
		}
		id, err := ingest.ExternalID(raw)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n, err)
		}
		if prev, dup := table[id]; dup {
			return nil, fmt.Errorf("%s external id %q on nodes %d and %d: %w", n.Kind, id, prev, n.ID, domain.ErrModelInvariant)
		}
		table[id] = n.ID
	}
	return ix, nil
}

// Token resolves a token external id.
func (ix *Index) Token(id string) (domain.NodeID, error) {
	if n, ok := ix.tokens[id]; ok {
		return n, nil
	}
	return 0, fmt.Errorf("token %q: %w", id, domain.ErrUnresolvedReference)
}

// Constituent resolves a constituent external id.
func (ix *Index) Constituent(id string) (domain.NodeID, error) {
	if n, ok := ix.constituents[id]; ok {
		return n, nil
	}
	return 0, fmt.Errorf("constituent %q: %w", id, domain.ErrUnresolvedReference)
}

// TokenPosition returns the 1-based position of a token, or 0 if the node is not a token.
func (ix *Index) TokenPosition(n domain.NodeID) int {
	return ix.positions[n]
}

// Len returns the number of resolvable tokens and constituents.
func (ix *Index) Len() (tokens, constituents int) {
	return len(ix.tokens), len(ix.constituents)
}
