package dsl

import (
	"github.com/gucorpling/squeezer/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	name        string
	kind        domain.NodeKind
	text        string
	annotations []annotation
	layers      []string

	secondaryEdges []any
	signals        []any

	builder *Builder
}

// Annotate sets an annotation in the default namespace.
func (n *NodeBuilder) Annotate(name string, value any) *NodeBuilder {
	return n.AnnotateNS(domain.NamespaceDefault, name, value)
}

// AnnotateNS sets an annotation in an explicit namespace.
func (n *NodeBuilder) AnnotateNS(ns, name string, value any) *NodeBuilder {
	n.annotations = append(n.annotations, annotation{ns: ns, name: name, value: value})
	return n
}

// Kind sets the "kind" annotation used to locate the active layer.
func (n *NodeBuilder) Kind(value string) *NodeBuilder {
	return n.Annotate(domain.AnnoKind, value)
}

// ExternalID sets the scratch external id.
func (n *NodeBuilder) ExternalID(id any) *NodeBuilder {
	return n.AnnotateNS(domain.NamespaceScratch, domain.AnnoExternalID, id)
}

// Layer adds the node to a layer. Relations declared from this node join it too.
func (n *NodeBuilder) Layer(name string) *NodeBuilder {
	n.layers = append(n.layers, name)
	return n
}

func (n *NodeBuilder) relate(kind domain.RelationKind, target string) *pendingRelation {
	pr := &pendingRelation{
		kind:   kind,
		source: n.name,
		target: target,
		layers: append([]string(nil), n.layers...),
	}
	n.builder.relations = append(n.builder.relations, pr)
	return pr
}

// Dominates adds a dominance relation to each target.
func (n *NodeBuilder) Dominates(targets ...string) *NodeBuilder {
	for _, t := range targets {
		n.relate(domain.Dominance, t)
	}
	return n
}

// Child adds a dominance relation carrying a relation name.
func (n *NodeBuilder) Child(target, relname string) *NodeBuilder {
	pr := n.relate(domain.Dominance, target)
	if relname != "" {
		pr.annotations = append(pr.annotations, annotation{ns: domain.NamespaceDefault, name: domain.AnnoRelName, value: relname})
	}
	return n
}

// Points adds a pointing relation with an optional type.
func (n *NodeBuilder) Points(target, relType string) *NodeBuilder {
	pr := n.relate(domain.Pointing, target)
	pr.relType = relType
	return n
}

// SecondaryEdge appends a scratch secondary-edge descriptor, in the loose form
// an upstream reader would leave it.
func (n *NodeBuilder) SecondaryEdge(source, target any, relname string) *NodeBuilder {
	n.secondaryEdges = append(n.secondaryEdges, map[string]any{
		"source":  source,
		"target":  target,
		"relname": relname,
	})
	return n
}

// Signal appends a scratch signal descriptor.
func (n *NodeBuilder) Signal(sigType, subtype string, tokens []any, sources ...any) *NodeBuilder {
	n.signals = append(n.signals, map[string]any{
		"type":    sigType,
		"subtype": subtype,
		"tokens":  tokens,
		"sources": sources,
	})
	return n
}
