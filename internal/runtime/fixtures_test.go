package runtime_test

import (
	"github.com/gucorpling/squeezer/pkg/domain"
	"github.com/gucorpling/squeezer/pkg/dsl"
)

// elaborationDoc builds two sibling units X (tokens 1-4) and Y (tokens 5-8)
// under a span root, a secondary elaboration edge X->Y carrying two signals
// with earliest tokens 7 and 3, and a primary signal on Y.
func elaborationDoc() *domain.Document {
	b := dsl.New("elaboration")
	b.Tokens("When", "the", "rain", "stopped", "we", "went", "outside", "again")

	b.Constituent("root").
		Kind("span").
		Layer("rst").
		ExternalID(100).
		Child("X", "span").
		Child("Y", "elaboration").
		SecondaryEdge(1, 2, "elaboration").
		Signal("dm", "dm", []any{"7"}, 1, 2).
		Signal("lexical", "indicative_word", []any{"3", "4"}, 1, 2)

	b.Constituent("X").
		Layer("rst").
		ExternalID(1).
		Dominates("t1", "t2", "t3", "t4")

	b.Constituent("Y").
		Layer("rst").
		ExternalID(2).
		Dominates("t5", "t6", "t7", "t8").
		Signal("dm", "dm", []any{"5"}, 2)

	return b.MustBuild()
}

func outgoingTo(g *domain.Graph, from, to domain.NodeID) []*domain.Relation {
	var out []*domain.Relation
	for _, r := range g.Outgoing(from) {
		if r.Target == to {
			out = append(out, r)
		}
	}
	return out
}
