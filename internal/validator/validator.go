// Package validator runs structural checks on documents before and after a
// rewrite.
package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gucorpling/squeezer/internal/ingest"
	"github.com/gucorpling/squeezer/internal/runtime"
	"github.com/gucorpling/squeezer/pkg/domain"
)

// Mode selects which checks apply.
type Mode int

const (
	// Input expects scratch payloads and checks that they resolve.
	Input Mode = iota
	// Output expects a rewritten graph with no scratch left.
	Output
)

// ErrInvalid is wrapped by every error ValidateDocument returns.
var ErrInvalid = errors.New("document is invalid")

// Issue is one problem found in a document.
type Issue struct {
	Node    domain.NodeID
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("node %d: %s", i.Node, i.Message)
}

// Validate returns every issue found in g.
func Validate(g *domain.Graph, mode Mode) []Issue {
	var issues []Issue
	issues = append(issues, checkLeaves(g)...)
	issues = append(issues, checkCycles(g)...)
	issues = append(issues, checkScaffolds(g)...)
	issues = append(issues, checkSignals(g)...)
	switch mode {
	case Input:
		issues = append(issues, checkReferences(g)...)
	case Output:
		issues = append(issues, checkScratch(g)...)
	}
	return issues
}

// ValidateDocument wraps Validate into a single error.
func ValidateDocument(doc *domain.Document, mode Mode) error {
	if doc.Graph == nil {
		return nil
	}
	issues := Validate(doc.Graph, mode)
	if len(issues) == 0 {
		return nil
	}
	lines := make([]string, len(issues))
	for i, issue := range issues {
		lines[i] = issue.String()
	}
	return fmt.Errorf("%w: %s: found %d errors:\n- %s", ErrInvalid, doc.ID, len(issues), strings.Join(lines, "\n- "))
}

func checkLeaves(g *domain.Graph) []Issue {
	var issues []Issue
	for _, n := range g.NodesOf(domain.KindToken) {
		for _, r := range g.Outgoing(n.ID) {
			if r.Kind == domain.Dominance {
				issues = append(issues, Issue{n.ID, fmt.Sprintf("token dominates node %d", r.Target)})
			}
		}
	}
	return issues
}

// checkCycles walks dominance relations depth first from every unvisited node.
func checkCycles(g *domain.Graph) []Issue {
	const (
		white = iota
		grey
		black
	)
	color := make(map[domain.NodeID]int, g.NodeCount())
	var issues []Issue

	var visit func(id domain.NodeID)
	visit = func(id domain.NodeID) {
		color[id] = grey
		for _, r := range g.Outgoing(id) {
			if r.Kind != domain.Dominance {
				continue
			}
			switch color[r.Target] {
			case grey:
				issues = append(issues, Issue{id, fmt.Sprintf("dominance cycle through node %d", r.Target)})
			case white:
				visit(r.Target)
			}
		}
		color[id] = black
	}
	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			visit(n.ID)
		}
	}
	return issues
}

func checkScaffolds(g *domain.Graph) []Issue {
	var issues []Issue
	for _, s := range g.NodesOf(domain.KindScaffold) {
		ends := map[string]int{}
		bound := 0
		for _, r := range g.Outgoing(s.ID) {
			if r.Kind != domain.Dominance {
				continue
			}
			if g.Node(r.Target).Kind == domain.KindSignal {
				bound++
				continue
			}
			end, _ := r.StringAnnotation(domain.NamespaceDefault, domain.AnnoEnd)
			ends[end]++
		}
		if ends[domain.EndSource] != 1 || ends[domain.EndTarget] != 1 {
			issues = append(issues, Issue{s.ID, fmt.Sprintf("scaffold has %d source and %d target ends, want 1 and 1",
				ends[domain.EndSource], ends[domain.EndTarget])})
		}
		if bound > 1 {
			issues = append(issues, Issue{s.ID, fmt.Sprintf("scaffold is bound to %d signals", bound)})
		}
		if _, ok := s.StringAnnotation(domain.NamespaceDefault, domain.AnnoRelName); !ok {
			issues = append(issues, Issue{s.ID, "scaffold has no relname"})
		}
	}
	return issues
}

func checkSignals(g *domain.Graph) []Issue {
	var issues []Issue
	for _, s := range g.NodesOf(domain.KindSignal) {
		if len(g.Outgoing(s.ID)) == 0 {
			issues = append(issues, Issue{s.ID, "signal is not attached to any node"})
		}
	}
	return issues
}

func checkScratch(g *domain.Graph) []Issue {
	var issues []Issue
	for _, n := range g.Nodes() {
		if c := len(n.Annotations) - n.CountAnnotations(domain.NamespaceScratch); c > 0 {
			issues = append(issues, Issue{n.ID, fmt.Sprintf("%d scratch annotations left", c)})
		}
	}
	for _, r := range g.Relations() {
		if c := len(r.Annotations) - r.CountAnnotations(domain.NamespaceScratch); c > 0 {
			issues = append(issues, Issue{r.Source, fmt.Sprintf("relation %d has %d scratch annotations left", r.ID, c)})
		}
	}
	return issues
}

// checkReferences resolves every descriptor against a throwaway index.
func checkReferences(g *domain.Graph) []Issue {
	scratch := g.Clone()
	ix, err := runtime.BuildIndex(scratch)
	if err != nil {
		return []Issue{{Message: err.Error()}}
	}

	var issues []Issue
	for _, n := range scratch.Nodes() {
		if raw, ok := n.Annotation(domain.NamespaceScratch, domain.AnnoSecondaryEdges); ok {
			edges, err := ingest.SecondaryEdges(raw)
			if err != nil {
				issues = append(issues, Issue{n.ID, err.Error()})
			}
			for _, e := range edges {
				for _, id := range []string{e.SourceID, e.TargetID} {
					if _, err := ix.Constituent(id); err != nil {
						issues = append(issues, Issue{n.ID, "secondary edge " + err.Error()})
					}
				}
			}
		}
		if raw, ok := n.Annotation(domain.NamespaceScratch, domain.AnnoSignals); ok {
			signals, err := ingest.Signals(raw)
			if err != nil {
				issues = append(issues, Issue{n.ID, err.Error()})
			}
			for _, s := range signals {
				for _, id := range s.TokenIDs {
					if _, err := ix.Token(id); err != nil {
						issues = append(issues, Issue{n.ID, "signal " + err.Error()})
					}
				}
				for _, id := range s.SourceIDs {
					if _, err := ix.Constituent(id); err != nil {
						issues = append(issues, Issue{n.ID, "signal " + err.Error()})
					}
				}
			}
		}
	}
	return issues
}
