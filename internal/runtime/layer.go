package runtime

import "github.com/gucorpling/squeezer/pkg/domain"

// ActiveLayer returns the first layer of the first constituent carrying a
// "kind" annotation, or "" when the graph has none.
func ActiveLayer(g *domain.Graph) string {
	for _, n := range g.NodesOf(domain.KindConstituent) {
		if !n.HasAnnotation(domain.NamespaceDefault, domain.AnnoKind) {
			continue
		}
		if layers := g.LayersOf(n.ID); len(layers) > 0 {
			return layers[0]
		}
		return ""
	}
	return ""
}

// addToLayer places new nodes and relations in the active layer, if any.
func addToLayer(g *domain.Graph, layer string, node *domain.Node, rels ...*domain.Relation) {
	if layer == "" {
		return
	}
	// Handles are fresh, the calls cannot fail.
	if node != nil {
		_ = g.AddNodeToLayer(layer, node.ID)
	}
	for _, r := range rels {
		_ = g.AddRelationToLayer(layer, r.ID)
	}
}
