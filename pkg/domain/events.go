package domain

import (
	"context"
	"time"
)

// PassName identifies one rewriting pass.
type PassName string

const (
	PassIndex          PassName = "index"
	PassDedup          PassName = "dedup"
	PassSecondaryEdges PassName = "secondary_edges"
	PassSignals        PassName = "signals"
	PassBind           PassName = "bind"
	PassMark           PassName = "mark"
	PassSweep          PassName = "sweep"
)

// PassEvent is emitted around each pass of a document run.
type PassEvent struct {
	Timestamp  time.Time     `json:"timestamp"`
	DocumentID string        `json:"document_id"`
	Pass       PassName      `json:"pass"`
	Duration   time.Duration `json:"duration,omitempty"`
	Err        error         `json:"-"`
}

// DocumentEvent is emitted once a document run finishes, successfully or not.
type DocumentEvent struct {
	Timestamp  time.Time     `json:"timestamp"`
	DocumentID string        `json:"document_id"`
	Duration   time.Duration `json:"duration"`
	Delta      StatsDelta    `json:"delta"`
	Err        error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// Any field may be nil.
type LifecycleHooks struct {
	OnPassStart    func(context.Context, *PassEvent)
	OnPassEnd      func(context.Context, *PassEvent)
	OnDocumentDone func(context.Context, *DocumentEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnPassStart:    chainPass(h.OnPassStart, other.OnPassStart),
		OnPassEnd:      chainPass(h.OnPassEnd, other.OnPassEnd),
		OnDocumentDone: chainDocument(h.OnDocumentDone, other.OnDocumentDone),
	}
}

func chainPass(a, b func(context.Context, *PassEvent)) func(context.Context, *PassEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *PassEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainDocument(a, b func(context.Context, *DocumentEvent)) func(context.Context, *DocumentEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *DocumentEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
