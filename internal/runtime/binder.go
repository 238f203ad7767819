package runtime

import (
	"math"

	"github.com/gucorpling/squeezer/pkg/domain"
)

// earliestToken returns a signal's tie-break key. Signals without tokens rank last.
func earliestToken(n *domain.Node) int {
	if v, ok := n.Processing(domain.ProcessingEarliestToken); ok {
		if pos, ok := v.(int); ok {
			return pos
		}
	}
	return math.MaxInt
}

// SelectSignal picks the pending signal with the smallest earliest-token
// value. Ties go to the signal enqueued first.
func SelectSignal(g *domain.Graph, pending []domain.NodeID) (domain.NodeID, bool) {
	best, bestPos, found := domain.NodeID(0), 0, false
	for _, id := range pending {
		n := g.Node(id)
		if n == nil {
			continue
		}
		pos := earliestToken(n)
		if !found || pos < bestPos {
			best, bestPos, found = id, pos, true
		}
	}
	return best, found
}

// BindSignals attaches every scaffold with pending signals to its winning
// signal. Scaffolds without signals stay unbound.
func BindSignals(g *domain.Graph, scaffolds *Scaffolds, q *SignalQueue, layer string) (int, error) {
	bound := 0
	for _, key := range scaffolds.Keys() {
		winner, ok := SelectSignal(g, q.Pending(key))
		if !ok {
			continue
		}
		scaffold, _ := scaffolds.Lookup(key)
		r, err := g.AddRelation(domain.Dominance, scaffold, winner)
		if err != nil {
			return bound, err
		}
		addToLayer(g, layer, nil, r)
		bound++
	}
	return bound, nil
}
