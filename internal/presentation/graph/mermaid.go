package graph

import (
	"fmt"
	"strings"

	"github.com/gucorpling/squeezer/pkg/domain"
)

// Options controls what GenerateMermaid draws.
type Options struct {
	// HideTokens drops token nodes and the relations that reach them.
	HideTokens bool
	// Layer, when set, keeps only nodes of that layer plus the nodes they
	// point to directly.
	Layer string
}

// GenerateMermaid produces a Mermaid flowchart of a document graph.
// It applies semantic styling:
// - Token: (["Stadium"])
// - Constituent: [Rectangle]
// - Signal: {{Hexagon}}
// - Scaffold: [[Subroutine]]
// Dominance relations are solid arrows, pointing relations dotted, and
// relations annotated is_signaled=true are drawn thick.
func GenerateMermaid(g *domain.Graph, opts *Options) string {
	if opts == nil {
		opts = &Options{}
	}
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	keep := visibleNodes(g, opts)
	for _, n := range g.Nodes() {
		if !keep[n.ID] {
			continue
		}
		opener, closer := "[", "]"
		switch n.Kind {
		case domain.KindToken:
			opener, closer = "([", "])"
		case domain.KindSignal:
			opener, closer = "{{", "}}"
		case domain.KindScaffold:
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", nodeID(n.ID), opener, escape(label(n)), closer)
	}

	for _, r := range g.Relations() {
		if !keep[r.Source] || !keep[r.Target] {
			continue
		}
		arrow := "-->"
		if r.Kind == domain.Pointing {
			arrow = "-.->"
		}
		if v, ok := r.Annotation(domain.NamespaceDefault, domain.AnnoIsSignaled); ok && v == true {
			arrow = "==>"
		}

		text := relationLabel(r)
		if text == "" {
			fmt.Fprintf(&sb, "    %s %s %s\n", nodeID(r.Source), arrow, nodeID(r.Target))
			continue
		}
		fmt.Fprintf(&sb, "    %s %s|\"%s\"| %s\n", nodeID(r.Source), arrow, escape(text), nodeID(r.Target))
	}

	sb.WriteString("\n    %% Kind Styles\n")
	sb.WriteString("    classDef signal fill:#fff3e0,stroke:#e65100,color:#000;\n")
	sb.WriteString("    classDef scaffold fill:#e1f5fe,stroke:#01579b,stroke-dasharray:4,color:#000;\n")
	for _, kind := range []domain.NodeKind{domain.KindSignal, domain.KindScaffold} {
		var ids []string
		for _, n := range g.NodesOf(kind) {
			if keep[n.ID] {
				ids = append(ids, nodeID(n.ID))
			}
		}
		if len(ids) > 0 {
			fmt.Fprintf(&sb, "    class %s %s;\n", strings.Join(ids, ","), kind)
		}
	}

	return sb.String()
}

func visibleNodes(g *domain.Graph, opts *Options) map[domain.NodeID]bool {
	keep := make(map[domain.NodeID]bool, g.NodeCount())
	for _, n := range g.Nodes() {
		if opts.HideTokens && n.Kind == domain.KindToken {
			continue
		}
		if opts.Layer != "" && !inLayer(g, n.ID, opts.Layer) {
			continue
		}
		keep[n.ID] = true
	}
	if opts.Layer != "" {
		for id := range keep {
			for _, r := range g.Outgoing(id) {
				t := g.Node(r.Target)
				if opts.HideTokens && t.Kind == domain.KindToken {
					continue
				}
				keep[r.Target] = true
			}
		}
	}
	return keep
}

func inLayer(g *domain.Graph, id domain.NodeID, layer string) bool {
	for _, l := range g.LayersOf(id) {
		if l == layer {
			return true
		}
	}
	return false
}

func label(n *domain.Node) string {
	switch n.Kind {
	case domain.KindToken:
		return n.Text
	case domain.KindSignal:
		typ, _ := n.StringAnnotation(domain.NamespaceDefault, domain.AnnoType)
		sub, _ := n.StringAnnotation(domain.NamespaceDefault, domain.AnnoSubtype)
		text, _ := n.StringAnnotation(domain.NamespaceDefault, domain.AnnoText)
		if text == "" {
			return typ + "/" + sub
		}
		return fmt.Sprintf("%s/%s: %s", typ, sub, text)
	case domain.KindScaffold:
		rel, _ := n.StringAnnotation(domain.NamespaceDefault, domain.AnnoRelName)
		return rel
	}
	if kind, ok := n.StringAnnotation(domain.NamespaceDefault, domain.AnnoKind); ok && kind != "" {
		return fmt.Sprintf("%s (%s)", n.Name, kind)
	}
	return n.Name
}

func relationLabel(r *domain.Relation) string {
	if r.Kind == domain.Pointing {
		return r.Type
	}
	if rel, ok := r.StringAnnotation(domain.NamespaceDefault, domain.AnnoRelName); ok {
		return rel
	}
	if end, ok := r.StringAnnotation(domain.NamespaceDefault, domain.AnnoEnd); ok {
		return end
	}
	return ""
}

func nodeID(id domain.NodeID) string {
	return fmt.Sprintf("n%d", id)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
