package domain

// Stats counts the live elements of a graph.
type Stats struct {
	Nodes     map[NodeKind]int     `json:"nodes"`
	Relations map[RelationKind]int `json:"relations"`
	Scratch   int                  `json:"scratch"`
}

// StatsDelta is the change between two Stats snapshots, per kind name.
// Only non-zero entries are present.
type StatsDelta struct {
	Nodes     map[string]int `json:"nodes,omitempty"`
	Relations map[string]int `json:"relations,omitempty"`
	Scratch   int            `json:"scratch,omitempty"`
}

// Summarize counts nodes and relations by kind and scratch annotations left on nodes.
func Summarize(g *Graph) Stats {
	s := Stats{
		Nodes:     make(map[NodeKind]int),
		Relations: make(map[RelationKind]int),
	}
	if g == nil {
		return s
	}
	for _, n := range g.Nodes() {
		s.Nodes[n.Kind]++
		s.Scratch += len(n.Annotations) - n.CountAnnotations(NamespaceScratch)
	}
	for _, r := range g.Relations() {
		s.Relations[r.Kind]++
	}
	return s
}

// DiffStats calculates the difference between two snapshots.
func DiffStats(before, after Stats) StatsDelta {
	d := StatsDelta{
		Scratch: after.Scratch - before.Scratch,
	}
	for _, k := range []NodeKind{KindToken, KindConstituent, KindSignal, KindScaffold} {
		if v := after.Nodes[k] - before.Nodes[k]; v != 0 {
			if d.Nodes == nil {
				d.Nodes = make(map[string]int)
			}
			d.Nodes[k.String()] = v
		}
	}
	for _, k := range []RelationKind{Dominance, Pointing} {
		if v := after.Relations[k] - before.Relations[k]; v != 0 {
			if d.Relations == nil {
				d.Relations = make(map[string]int)
			}
			d.Relations[k.String()] = v
		}
	}
	return d
}

// IsEmpty reports whether nothing changed.
func (d StatsDelta) IsEmpty() bool {
	return len(d.Nodes) == 0 && len(d.Relations) == 0 && d.Scratch == 0
}
