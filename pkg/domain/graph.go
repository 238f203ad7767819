package domain

import (
	"fmt"
)

// Graph is a mutable labeled multigraph owned by a single document.
//
// Nodes and relations live in append-only arenas; a removed element leaves a
// nil slot so handles are never reused. Iteration order is insertion order.
// A Graph is not safe for concurrent use.
type Graph struct {
	nodes     []*Node
	relations []*Relation

	outgoing map[NodeID][]RelationID
	incoming map[NodeID][]RelationID

	layers     []*Layer
	layerIndex map[string]*Layer

	liveNodes     int
	liveRelations int
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		outgoing:   make(map[NodeID][]RelationID),
		incoming:   make(map[NodeID][]RelationID),
		layerIndex: make(map[string]*Layer),
	}
}

// AddNode appends a node of the given kind and returns it.
func (g *Graph) AddNode(kind NodeKind, name string) *Node {
	n := &Node{
		ID:   NodeID(len(g.nodes)),
		Kind: kind,
		Name: name,
	}
	g.nodes = append(g.nodes, n)
	g.liveNodes++
	return n
}

// AddToken appends a token node carrying the given text.
func (g *Graph) AddToken(name, text string) *Node {
	n := g.AddNode(KindToken, name)
	n.Text = text
	return n
}

// Node returns the live node with the given handle, or nil.
func (g *Graph) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// HasNode reports whether the handle refers to a live node.
func (g *Graph) HasNode(id NodeID) bool {
	return g.Node(id) != nil
}

// Nodes returns a snapshot of live nodes in insertion order.
// The slice may be freely iterated while the graph is mutated.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, g.liveNodes)
	for _, n := range g.nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// NodesOf returns a snapshot of live nodes of one kind in insertion order.
func (g *Graph) NodesOf(kind NodeKind) []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n != nil && n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// NodeCount returns the number of live nodes.
func (g *Graph) NodeCount() int { return g.liveNodes }

// RemoveNode deletes a node together with every incident relation.
func (g *Graph) RemoveNode(id NodeID) error {
	if !g.HasNode(id) {
		return fmt.Errorf("remove node %d: %w", id, ErrNodeNotFound)
	}
	for _, rid := range append([]RelationID(nil), g.outgoing[id]...) {
		if err := g.RemoveRelation(rid); err != nil {
			return err
		}
	}
	for _, rid := range append([]RelationID(nil), g.incoming[id]...) {
		if err := g.RemoveRelation(rid); err != nil {
			return err
		}
	}
	for _, l := range g.layers {
		delete(l.nodes, id)
	}
	delete(g.outgoing, id)
	delete(g.incoming, id)
	g.nodes[id] = nil
	g.liveNodes--
	return nil
}

// AddRelation connects two live nodes.
func (g *Graph) AddRelation(kind RelationKind, source, target NodeID) (*Relation, error) {
	if !g.HasNode(source) {
		return nil, fmt.Errorf("add relation: source %d: %w", source, ErrNodeNotFound)
	}
	if !g.HasNode(target) {
		return nil, fmt.Errorf("add relation: target %d: %w", target, ErrNodeNotFound)
	}
	r := &Relation{
		ID:     RelationID(len(g.relations)),
		Kind:   kind,
		Source: source,
		Target: target,
	}
	g.relations = append(g.relations, r)
	g.outgoing[source] = append(g.outgoing[source], r.ID)
	g.incoming[target] = append(g.incoming[target], r.ID)
	g.liveRelations++
	return r, nil
}

// Relation returns the live relation with the given handle, or nil.
func (g *Graph) Relation(id RelationID) *Relation {
	if id < 0 || int(id) >= len(g.relations) {
		return nil
	}
	return g.relations[id]
}

// Relations returns a snapshot of live relations in insertion order.
func (g *Graph) Relations() []*Relation {
	out := make([]*Relation, 0, g.liveRelations)
	for _, r := range g.relations {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// RelationCount returns the number of live relations.
func (g *Graph) RelationCount() int { return g.liveRelations }

// RemoveRelation deletes a relation.
func (g *Graph) RemoveRelation(id RelationID) error {
	r := g.Relation(id)
	if r == nil {
		return fmt.Errorf("remove relation %d: %w", id, ErrRelationNotFound)
	}
	g.outgoing[r.Source] = removeRelationID(g.outgoing[r.Source], id)
	g.incoming[r.Target] = removeRelationID(g.incoming[r.Target], id)
	for _, l := range g.layers {
		delete(l.relations, id)
	}
	g.relations[id] = nil
	g.liveRelations--
	return nil
}

// Outgoing returns a snapshot of the relations leaving a node.
func (g *Graph) Outgoing(id NodeID) []*Relation {
	return g.resolve(g.outgoing[id])
}

// Incoming returns a snapshot of the relations entering a node.
func (g *Graph) Incoming(id NodeID) []*Relation {
	return g.resolve(g.incoming[id])
}

func (g *Graph) resolve(ids []RelationID) []*Relation {
	out := make([]*Relation, 0, len(ids))
	for _, rid := range ids {
		out = append(out, g.relations[rid])
	}
	return out
}

// SetSource re-anchors the source endpoint of a relation.
func (g *Graph) SetSource(id RelationID, source NodeID) error {
	r := g.Relation(id)
	if r == nil {
		return fmt.Errorf("set source of %d: %w", id, ErrRelationNotFound)
	}
	if !g.HasNode(source) {
		return fmt.Errorf("set source of %d to %d: %w", id, source, ErrNodeNotFound)
	}
	if r.Source == source {
		return nil
	}
	g.outgoing[r.Source] = removeRelationID(g.outgoing[r.Source], id)
	r.Source = source
	g.outgoing[source] = append(g.outgoing[source], id)
	return nil
}

// SetTarget re-anchors the target endpoint of a relation.
func (g *Graph) SetTarget(id RelationID, target NodeID) error {
	r := g.Relation(id)
	if r == nil {
		return fmt.Errorf("set target of %d: %w", id, ErrRelationNotFound)
	}
	if !g.HasNode(target) {
		return fmt.Errorf("set target of %d to %d: %w", id, target, ErrNodeNotFound)
	}
	if r.Target == target {
		return nil
	}
	g.incoming[r.Target] = removeRelationID(g.incoming[r.Target], id)
	r.Target = target
	g.incoming[target] = append(g.incoming[target], id)
	return nil
}

// Layer returns the named layer, or nil.
func (g *Graph) Layer(name string) *Layer {
	return g.layerIndex[name]
}

// EnsureLayer returns the named layer, creating it if needed.
func (g *Graph) EnsureLayer(name string) *Layer {
	if l, ok := g.layerIndex[name]; ok {
		return l
	}
	l := newLayer(name)
	g.layers = append(g.layers, l)
	g.layerIndex[name] = l
	return l
}

// Layers returns layers in creation order.
func (g *Graph) Layers() []*Layer {
	return append([]*Layer(nil), g.layers...)
}

// AddNodeToLayer adds a node to the named layer, creating the layer if needed.
func (g *Graph) AddNodeToLayer(layer string, id NodeID) error {
	if !g.HasNode(id) {
		return fmt.Errorf("add node %d to layer %q: %w", id, layer, ErrNodeNotFound)
	}
	g.EnsureLayer(layer).nodes[id] = struct{}{}
	return nil
}

// AddRelationToLayer adds a relation to the named layer, creating the layer if needed.
func (g *Graph) AddRelationToLayer(layer string, id RelationID) error {
	if g.Relation(id) == nil {
		return fmt.Errorf("add relation %d to layer %q: %w", id, layer, ErrRelationNotFound)
	}
	g.EnsureLayer(layer).relations[id] = struct{}{}
	return nil
}

// LayersOf returns the names of the layers containing a node, in layer creation order.
func (g *Graph) LayersOf(id NodeID) []string {
	var out []string
	for _, l := range g.layers {
		if l.HasNode(id) {
			out = append(out, l.Name)
		}
	}
	return out
}

// RelationLayersOf returns the names of the layers containing a relation.
func (g *Graph) RelationLayersOf(id RelationID) []string {
	var out []string
	for _, l := range g.layers {
		if l.HasRelation(id) {
			out = append(out, l.Name)
		}
	}
	return out
}

// Clone returns a deep copy. Handles are preserved.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes:         make([]*Node, len(g.nodes)),
		relations:     make([]*Relation, len(g.relations)),
		outgoing:      make(map[NodeID][]RelationID, len(g.outgoing)),
		incoming:      make(map[NodeID][]RelationID, len(g.incoming)),
		layerIndex:    make(map[string]*Layer, len(g.layers)),
		liveNodes:     g.liveNodes,
		liveRelations: g.liveRelations,
	}
	for i, n := range g.nodes {
		if n != nil {
			c.nodes[i] = n.clone()
		}
	}
	for i, r := range g.relations {
		if r != nil {
			c.relations[i] = r.clone()
		}
	}
	for id, rids := range g.outgoing {
		c.outgoing[id] = append([]RelationID(nil), rids...)
	}
	for id, rids := range g.incoming {
		c.incoming[id] = append([]RelationID(nil), rids...)
	}
	for _, l := range g.layers {
		lc := l.clone()
		c.layers = append(c.layers, lc)
		c.layerIndex[lc.Name] = lc
	}
	return c
}

func removeRelationID(ids []RelationID, id RelationID) []RelationID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
