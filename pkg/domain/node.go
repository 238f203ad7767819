package domain

import "fmt"

// NodeID is an arena handle, stable within one Graph.
type NodeID int

// NodeKind tags the role a node plays in the document graph.
type NodeKind int

const (
	// KindToken is a leaf holding one unit of source text.
	KindToken NodeKind = iota + 1
	// KindConstituent is a structural unit (e.g. an elementary discourse unit or a span).
	KindConstituent
	// KindSignal is a textual cue justifying a relation.
	KindSignal
	// KindScaffold stands in for a secondary (non-tree) edge between two constituents.
	KindScaffold
)

var nodeKindNames = map[NodeKind]string{
	KindToken:       "token",
	KindConstituent: "constituent",
	KindSignal:      "signal",
	KindScaffold:    "scaffold",
}

func (k NodeKind) String() string {
	if s, ok := nodeKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// ParseNodeKind is the inverse of NodeKind.String.
func ParseNodeKind(s string) (NodeKind, error) {
	for k, name := range nodeKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown node kind %q", s)
}

// Node is a vertex of the document graph.
type Node struct {
	ID   NodeID
	Kind NodeKind

	// Name is the display name assigned by the producer (e.g. "tok12", "edu3").
	Name string

	// Text is the surface form. Only tokens carry text.
	Text string

	annotated

	// processing holds run-local values. They are never serialized.
	processing map[string]any
}

// SetProcessing stores a run-local value on the node.
func (n *Node) SetProcessing(key string, value any) {
	if n.processing == nil {
		n.processing = make(map[string]any)
	}
	n.processing[key] = value
}

// Processing returns a run-local value.
func (n *Node) Processing(key string) (any, bool) {
	v, ok := n.processing[key]
	return v, ok
}

// ClearProcessing drops every run-local value.
func (n *Node) ClearProcessing() {
	n.processing = nil
}

func (n *Node) String() string {
	if n.Name != "" {
		return fmt.Sprintf("%s#%d(%s)", n.Kind, n.ID, n.Name)
	}
	return fmt.Sprintf("%s#%d", n.Kind, n.ID)
}

func (n *Node) clone() *Node {
	c := *n
	c.annotated = n.annotated.clone()
	if n.processing != nil {
		c.processing = make(map[string]any, len(n.processing))
		for k, v := range n.processing {
			c.processing[k] = v
		}
	}
	return &c
}
