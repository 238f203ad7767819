package runtime

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gucorpling/squeezer/internal/ingest"
	"github.com/gucorpling/squeezer/pkg/domain"
)

// SignalQueue carries the state the signal pass hands to the binder and the marker.
type SignalQueue struct {
	// Created counts signal nodes added to the graph.
	Created int

	pending  map[EdgeKey][]domain.NodeID
	signaled map[domain.RelationID]struct{}
}

func newSignalQueue() *SignalQueue {
	return &SignalQueue{
		pending:  make(map[EdgeKey][]domain.NodeID),
		signaled: make(map[domain.RelationID]struct{}),
	}
}

// Enqueue appends a signal to the pending list of a secondary edge.
func (q *SignalQueue) Enqueue(key EdgeKey, signal domain.NodeID) {
	q.pending[key] = append(q.pending[key], signal)
}

// Pending returns the signals enqueued for a secondary edge, in enqueue order.
func (q *SignalQueue) Pending(key EdgeKey) []domain.NodeID {
	return q.pending[key]
}

// MarkSignaled records a tree relation as justified by a signal.
func (q *SignalQueue) MarkSignaled(id domain.RelationID) {
	q.signaled[id] = struct{}{}
}

// IsSignaled reports whether a tree relation was recorded as signaled.
func (q *SignalQueue) IsSignaled(id domain.RelationID) bool {
	_, ok := q.signaled[id]
	return ok
}

// MaterializeSignals turns every scratch signal descriptor into a signal node
// linked to its tokens and to the relation it justifies.
func MaterializeSignals(g *domain.Graph, ix *Index, scaffolds *Scaffolds, layer string, logger *slog.Logger) (*SignalQueue, error) {
	q := newSignalQueue()

	for _, host := range g.Nodes() {
		raw, ok := host.Annotation(domain.NamespaceScratch, domain.AnnoSignals)
		if !ok {
			continue
		}
		descriptors, err := ingest.Signals(raw)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", host, err)
		}

		for _, d := range descriptors {
			sig, err := addSignal(g, ix, d, layer)
			if err != nil {
				return nil, fmt.Errorf("signal %s/%s on %s: %w", d.Type, d.Subtype, host, err)
			}
			q.Created++

			if d.IsSecondary() {
				err = attachSecondary(g, ix, scaffolds, q, sig, d, layer)
			} else {
				attachPrimary(g, q, sig, host, layer)
			}
			if err != nil {
				return nil, fmt.Errorf("signal %s/%s on %s: %w", d.Type, d.Subtype, host, err)
			}
		}

		host.RemoveAnnotation(domain.NamespaceScratch, domain.AnnoSignals)
		logger.Debug("signals materialized", "host", host.String(), "count", len(descriptors))
	}
	return q, nil
}

// addSignal creates the signal node and its token relations.
func addSignal(g *domain.Graph, ix *Index, d domain.SignalDescriptor, layer string) (*domain.Node, error) {
	sig := g.AddNode(domain.KindSignal, "")
	sig.Annotate(domain.NamespaceDefault, domain.AnnoType, d.Type)
	sig.Annotate(domain.NamespaceDefault, domain.AnnoSubtype, d.Subtype)
	addToLayer(g, layer, sig)

	if len(d.TokenIDs) == 0 {
		return sig, nil
	}

	texts := make([]string, 0, len(d.TokenIDs))
	positions := make([]string, 0, len(d.TokenIDs))
	earliest := 0
	for _, tid := range d.TokenIDs {
		tok, err := ix.Token(tid)
		if err != nil {
			return nil, err
		}
		pos := ix.TokenPosition(tok)
		texts = append(texts, g.Node(tok).Text)
		positions = append(positions, strconv.Itoa(pos))
		if earliest == 0 || pos < earliest {
			earliest = pos
		}

		r, err := g.AddRelation(domain.Dominance, sig.ID, tok)
		if err != nil {
			return nil, err
		}
		addToLayer(g, layer, nil, r)
	}

	sig.Annotate(domain.NamespaceDefault, domain.AnnoText, strings.Join(texts, " "))
	sig.Annotate(domain.NamespaceDefault, domain.AnnoTokens, strings.Join(positions, " "))
	sig.SetProcessing(domain.ProcessingEarliestToken, earliest)
	return sig, nil
}

// attachPrimary links a signal to the tree relation above its host.
func attachPrimary(g *domain.Graph, q *SignalQueue, sig, host *domain.Node, layer string) {
	relname := ""
	for _, r := range g.Incoming(host.ID) {
		if r.Kind != domain.Dominance {
			continue
		}
		// Only tree relations: scaffolds and signals also dominate constituents.
		if src := g.Node(r.Source); src != nil && (src.Kind == domain.KindSignal || src.Kind == domain.KindScaffold) {
			continue
		}
		q.MarkSignaled(r.ID)
		if relname == "" {
			relname, _ = r.StringAnnotation(domain.NamespaceDefault, domain.AnnoRelName)
		}
	}

	// Host and signal are both live, the call cannot fail.
	r, _ := g.AddRelation(domain.Dominance, sig.ID, host.ID)
	addToLayer(g, layer, nil, r)
	if relname != "" {
		r.Annotate(domain.NamespaceDefault, domain.AnnoRelName, relname)
		sig.Annotate(domain.NamespaceDefault, domain.AnnoSignaledRelation, relname)
	}
}

// attachSecondary links a signal to both constituents of a secondary edge and
// enqueues it for binding against the edge's scaffold.
func attachSecondary(g *domain.Graph, ix *Index, scaffolds *Scaffolds, q *SignalQueue, sig *domain.Node, d domain.SignalDescriptor, layer string) error {
	src, err := ix.Constituent(d.SourceIDs[0])
	if err != nil {
		return err
	}
	tgt, err := ix.Constituent(d.SourceIDs[1])
	if err != nil {
		return err
	}

	toSource, err := g.AddRelation(domain.Dominance, sig.ID, src)
	if err != nil {
		return err
	}
	toTarget, err := g.AddRelation(domain.Dominance, sig.ID, tgt)
	if err != nil {
		return err
	}
	addToLayer(g, layer, nil, toSource, toTarget)

	key := EdgeKey{Source: src, Target: tgt}
	scaffold, ok := scaffolds.Lookup(key)
	if !ok {
		return fmt.Errorf("no secondary edge %s->%s: %w", d.SourceIDs[0], d.SourceIDs[1], domain.ErrUnresolvedReference)
	}
	if s, t, ok := scaffoldEnds(g, scaffold); !ok || s != src || t != tgt {
		return fmt.Errorf("scaffold %d does not span %s->%s: %w", scaffold, d.SourceIDs[0], d.SourceIDs[1], domain.ErrModelInvariant)
	}
	relname, _ := g.Node(scaffold).StringAnnotation(domain.NamespaceDefault, domain.AnnoRelName)

	toSource.Annotate(domain.NamespaceDefault, domain.AnnoRelName, relname)
	sig.Annotate(domain.NamespaceDefault, domain.AnnoSignaledRelation, relname)
	q.Enqueue(key, sig.ID)
	return nil
}
