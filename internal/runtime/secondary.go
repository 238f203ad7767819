package runtime

import (
	"fmt"
	"log/slog"

	"github.com/gucorpling/squeezer/internal/ingest"
	"github.com/gucorpling/squeezer/pkg/domain"
)

// EdgeKey is the ordered (source, target) pair of a secondary edge.
type EdgeKey struct {
	Source domain.NodeID
	Target domain.NodeID
}

// Scaffolds indexes secondary-edge scaffold nodes by their ordered endpoint pair.
type Scaffolds struct {
	byKey map[EdgeKey]domain.NodeID
	keys  []EdgeKey
}

// NewScaffolds creates an empty scaffold index.
func NewScaffolds() *Scaffolds {
	return &Scaffolds{byKey: make(map[EdgeKey]domain.NodeID)}
}

// Register records a scaffold. It reports false if the pair is already taken.
func (s *Scaffolds) Register(key EdgeKey, scaffold domain.NodeID) bool {
	if _, ok := s.byKey[key]; ok {
		return false
	}
	s.byKey[key] = scaffold
	s.keys = append(s.keys, key)
	return true
}

// Lookup returns the scaffold registered for a pair.
func (s *Scaffolds) Lookup(key EdgeKey) (domain.NodeID, bool) {
	id, ok := s.byKey[key]
	return id, ok
}

// Keys returns registered pairs in registration order.
func (s *Scaffolds) Keys() []EdgeKey {
	return append([]EdgeKey(nil), s.keys...)
}

// Len returns the number of registered scaffolds.
func (s *Scaffolds) Len() int { return len(s.keys) }

// MaterializeSecondaryEdges turns every scratch secondary-edge descriptor into
// a scaffold node with two end-tagged dominance relations.
func MaterializeSecondaryEdges(g *domain.Graph, ix *Index, layer string, logger *slog.Logger) (*Scaffolds, error) {
	scaffolds := NewScaffolds()

	for _, host := range g.Nodes() {
		raw, ok := host.Annotation(domain.NamespaceScratch, domain.AnnoSecondaryEdges)
		if !ok {
			continue
		}
		descriptors, err := ingest.SecondaryEdges(raw)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", host, err)
		}

		for _, d := range descriptors {
			src, err := ix.Constituent(d.SourceID)
			if err != nil {
				return nil, fmt.Errorf("secondary edge %s->%s: source: %w", d.SourceID, d.TargetID, err)
			}
			tgt, err := ix.Constituent(d.TargetID)
			if err != nil {
				return nil, fmt.Errorf("secondary edge %s->%s: target: %w", d.SourceID, d.TargetID, err)
			}

			key := EdgeKey{Source: src, Target: tgt}
			if _, taken := scaffolds.Lookup(key); taken {
				logger.Warn("duplicate secondary edge skipped",
					"source", d.SourceID, "target", d.TargetID, "relname", d.RelationName)
				continue
			}

			scaffold, err := addScaffold(g, key, d, layer)
			if err != nil {
				return nil, err
			}
			scaffolds.Register(key, scaffold.ID)
		}

		host.RemoveAnnotation(domain.NamespaceScratch, domain.AnnoSecondaryEdges)
	}
	return scaffolds, nil
}

func addScaffold(g *domain.Graph, key EdgeKey, d domain.SecondaryEdgeDescriptor, layer string) (*domain.Node, error) {
	s := g.AddNode(domain.KindScaffold, fmt.Sprintf("secedge_%s_%s", d.SourceID, d.TargetID))
	s.Annotate(domain.NamespaceDefault, domain.AnnoRelName, d.RelationName)

	toSource, err := g.AddRelation(domain.Dominance, s.ID, key.Source)
	if err != nil {
		return nil, err
	}
	toSource.Annotate(domain.NamespaceDefault, domain.AnnoEnd, domain.EndSource)

	toTarget, err := g.AddRelation(domain.Dominance, s.ID, key.Target)
	if err != nil {
		return nil, err
	}
	toTarget.Annotate(domain.NamespaceDefault, domain.AnnoEnd, domain.EndTarget)

	addToLayer(g, layer, s, toSource, toTarget)
	return s, nil
}

// scaffoldEnds returns the nodes a scaffold's end=source and end=target relations point at.
func scaffoldEnds(g *domain.Graph, scaffold domain.NodeID) (source, target domain.NodeID, ok bool) {
	var haveSource, haveTarget bool
	for _, r := range g.Outgoing(scaffold) {
		if r.Kind != domain.Dominance {
			continue
		}
		end, _ := r.StringAnnotation(domain.NamespaceDefault, domain.AnnoEnd)
		switch end {
		case domain.EndSource:
			source, haveSource = r.Target, true
		case domain.EndTarget:
			target, haveTarget = r.Target, true
		}
	}
	return source, target, haveSource && haveTarget
}
