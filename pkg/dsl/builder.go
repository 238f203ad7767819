package dsl

import (
	"fmt"
	"strconv"

	"github.com/gucorpling/squeezer/pkg/domain"
)

type pendingRelation struct {
	kind        domain.RelationKind
	source      string
	target      string
	relType     string
	annotations []annotation
	layers      []string
}

type annotation struct {
	ns, name string
	value    any
}

// Builder manages the document construction.
type Builder struct {
	id        string
	order     []string
	nodes     map[string]*NodeBuilder
	relations []*pendingRelation
}

// New creates a new document builder.
func New(id string) *Builder {
	return &Builder{
		id:    id,
		nodes: make(map[string]*NodeBuilder),
	}
}

func (b *Builder) add(name string, kind domain.NodeKind) *NodeBuilder {
	if nb, ok := b.nodes[name]; ok {
		return nb
	}
	nb := &NodeBuilder{name: name, kind: kind, builder: b}
	b.nodes[name] = nb
	b.order = append(b.order, name)
	return nb
}

// Token declares a token node. If the name already exists, it returns the existing builder.
func (b *Builder) Token(name, text string) *NodeBuilder {
	nb := b.add(name, domain.KindToken)
	nb.text = text
	return nb
}

// Tokens declares tokens t1..tN with external ids 1..N.
func (b *Builder) Tokens(words ...string) []*NodeBuilder {
	out := make([]*NodeBuilder, 0, len(words))
	for i, w := range words {
		pos := i + 1
		out = append(out, b.Token("t"+strconv.Itoa(pos), w).ExternalID(pos))
	}
	return out
}

// Constituent declares a constituent node.
func (b *Builder) Constituent(name string) *NodeBuilder {
	return b.add(name, domain.KindConstituent)
}

// Node declares a node of an arbitrary kind.
func (b *Builder) Node(name string, kind domain.NodeKind) *NodeBuilder {
	return b.add(name, kind)
}

// Build compiles the declarations into a document.
func (b *Builder) Build() (*domain.Document, error) {
	doc := domain.NewDocument(b.id)
	g := doc.Graph
	ids := make(map[string]domain.NodeID, len(b.order))

	for _, name := range b.order {
		nb := b.nodes[name]
		n := g.AddNode(nb.kind, name)
		n.Text = nb.text
		for _, a := range nb.annotations {
			n.Annotate(a.ns, a.name, a.value)
		}
		if len(nb.secondaryEdges) > 0 {
			n.Annotate(domain.NamespaceScratch, domain.AnnoSecondaryEdges, nb.secondaryEdges)
		}
		if len(nb.signals) > 0 {
			n.Annotate(domain.NamespaceScratch, domain.AnnoSignals, nb.signals)
		}
		for _, l := range nb.layers {
			if err := g.AddNodeToLayer(l, n.ID); err != nil {
				return nil, err
			}
		}
		ids[name] = n.ID
	}

	for _, pr := range b.relations {
		src, ok := ids[pr.source]
		if !ok {
			return nil, fmt.Errorf("relation %s->%s: unknown source: %w", pr.source, pr.target, domain.ErrNodeNotFound)
		}
		tgt, ok := ids[pr.target]
		if !ok {
			return nil, fmt.Errorf("relation %s->%s: unknown target: %w", pr.source, pr.target, domain.ErrNodeNotFound)
		}
		r, err := g.AddRelation(pr.kind, src, tgt)
		if err != nil {
			return nil, fmt.Errorf("failed to build relation %s->%s: %w", pr.source, pr.target, err)
		}
		r.Type = pr.relType
		for _, a := range pr.annotations {
			r.Annotate(a.ns, a.name, a.value)
		}
		for _, l := range pr.layers {
			if err := g.AddRelationToLayer(l, r.ID); err != nil {
				return nil, err
			}
		}
	}
	return doc, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *domain.Document {
	doc, err := b.Build()
	if err != nil {
		panic(err)
	}
	return doc
}
