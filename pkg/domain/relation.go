package domain

import "fmt"

// RelationID is an arena handle, stable within one Graph.
type RelationID int

// RelationKind distinguishes hierarchical from non-hierarchical edges.
type RelationKind int

const (
	// Dominance is a hierarchical (containment) edge.
	Dominance RelationKind = iota + 1
	// Pointing is a non-hierarchical edge.
	Pointing
)

func (k RelationKind) String() string {
	switch k {
	case Dominance:
		return "dominance"
	case Pointing:
		return "pointing"
	}
	return fmt.Sprintf("RelationKind(%d)", int(k))
}

// ParseRelationKind is the inverse of RelationKind.String.
func ParseRelationKind(s string) (RelationKind, error) {
	switch s {
	case "dominance":
		return Dominance, nil
	case "pointing":
		return Pointing, nil
	}
	return 0, fmt.Errorf("unknown relation kind %q", s)
}

// Relation is a directed edge of the document graph.
// Source and Target are only mutated through Graph.SetSource / Graph.SetTarget.
type Relation struct {
	ID     RelationID
	Kind   RelationKind
	Source NodeID
	Target NodeID

	// Type is the optional producer-assigned relation type.
	Type string

	annotated
}

func (r *Relation) String() string {
	return fmt.Sprintf("%s#%d(%d->%d)", r.Kind, r.ID, r.Source, r.Target)
}

func (r *Relation) clone() *Relation {
	c := *r
	c.annotated = r.annotated.clone()
	return &c
}
