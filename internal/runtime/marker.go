package runtime

import "github.com/gucorpling/squeezer/pkg/domain"

// MarkSignaledEdges annotates every ordinary tree relation between
// constituents with is_signaled. It returns the number of relations marked true.
func MarkSignaledEdges(g *domain.Graph, q *SignalQueue) (total, signaled int) {
	for _, r := range g.Relations() {
		if r.Kind != domain.Dominance {
			continue
		}
		target := g.Node(r.Target)
		if target.Kind == domain.KindToken {
			continue
		}
		source := g.Node(r.Source)
		if source.Kind == domain.KindScaffold || source.Kind == domain.KindSignal ||
			source.HasAnnotationNamed(domain.AnnoRelName) ||
			source.HasAnnotationNamed(domain.AnnoSignaledRelation) {
			continue
		}

		is := q.IsSignaled(r.ID)
		r.Annotate(domain.NamespaceDefault, domain.AnnoIsSignaled, is)
		total++
		if is {
			signaled++
		}
	}
	return total, signaled
}
