package domain

import "sort"

// Layer is a named membership set over nodes and relations.
type Layer struct {
	Name      string
	nodes     map[NodeID]struct{}
	relations map[RelationID]struct{}
}

func newLayer(name string) *Layer {
	return &Layer{
		Name:      name,
		nodes:     make(map[NodeID]struct{}),
		relations: make(map[RelationID]struct{}),
	}
}

// HasNode reports node membership.
func (l *Layer) HasNode(id NodeID) bool {
	_, ok := l.nodes[id]
	return ok
}

// HasRelation reports relation membership.
func (l *Layer) HasRelation(id RelationID) bool {
	_, ok := l.relations[id]
	return ok
}

// NodeIDs returns member nodes in ascending (insertion) order.
func (l *Layer) NodeIDs() []NodeID {
	ids := make([]NodeID, 0, len(l.nodes))
	for id := range l.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// RelationIDs returns member relations in ascending (insertion) order.
func (l *Layer) RelationIDs() []RelationID {
	ids := make([]RelationID, 0, len(l.relations))
	for id := range l.relations {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (l *Layer) clone() *Layer {
	c := newLayer(l.Name)
	for id := range l.nodes {
		c.nodes[id] = struct{}{}
	}
	for id := range l.relations {
		c.relations[id] = struct{}{}
	}
	return c
}
