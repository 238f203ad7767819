package runtime

import (
	"log/slog"

	"github.com/gucorpling/squeezer/pkg/domain"
)

// SweepScratch removes every scratch annotation still present and drops
// run-local values. Leftovers are logged since they mean no pass consumed them.
func SweepScratch(g *domain.Graph, logger *slog.Logger) int {
	removed := 0
	for _, n := range g.Nodes() {
		n.ClearProcessing()
		for _, k := range n.AnnotationKeys() {
			if k.Namespace != domain.NamespaceScratch {
				continue
			}
			n.RemoveAnnotation(k.Namespace, k.Name)
			removed++
			logger.Warn("unconsumed scratch annotation removed", "node", n.String(), "annotation", k.String())
		}
	}
	for _, r := range g.Relations() {
		for _, k := range r.AnnotationKeys() {
			if k.Namespace != domain.NamespaceScratch {
				continue
			}
			r.RemoveAnnotation(k.Namespace, k.Name)
			removed++
			logger.Warn("unconsumed scratch annotation removed", "relation", r.String(), "annotation", k.String())
		}
	}
	return removed
}
