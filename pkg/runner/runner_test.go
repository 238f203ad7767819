package runner_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gucorpling/squeezer"
	"github.com/gucorpling/squeezer/internal/runtime"
	"github.com/gucorpling/squeezer/pkg/adapters/memory"
	"github.com/gucorpling/squeezer/pkg/domain"
	"github.com/gucorpling/squeezer/pkg/dsl"
	"github.com/gucorpling/squeezer/pkg/runner"
)

func goodDoc(id string) *domain.Document {
	b := dsl.New(id)
	b.Tokens("It", "rained", "so", "we", "left")
	b.Constituent("root").Kind("span").Layer("rst").
		Child("cause", "span").
		Child("result", "result").
		SecondaryEdge(1, 2, "result").
		Signal("dm", "dm", []any{"3"}, 1, 2)
	b.Constituent("cause").Layer("rst").ExternalID(1).Dominates("t1", "t2")
	b.Constituent("result").Layer("rst").ExternalID(2).Dominates("t3", "t4", "t5")
	return b.MustBuild()
}

func badDoc(id string) *domain.Document {
	b := dsl.New(id)
	b.Tokens("a")
	b.Constituent("root").Kind("span").SecondaryEdge(1, 42, "result")
	b.Constituent("x").ExternalID(1).Dominates("t1")
	return b.MustBuild()
}

func TestRunner_FailingDocumentIsIsolated(t *testing.T) {
	source := memory.NewStoreFrom(goodDoc("a"), badDoc("b"), goodDoc("c"))
	sink := memory.NewStore()

	eng, err := squeezer.New()
	require.NoError(t, err)

	summary, err := runner.New(eng, source, runner.WithSink(sink), runner.WithWorkers(2)).Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Results, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{
		summary.Results[0].DocumentID, summary.Results[1].DocumentID, summary.Results[2].DocumentID,
	})

	failures := summary.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "b", failures[0].DocumentID)
	assert.ErrorIs(t, failures[0].Err, domain.ErrUnresolvedReference)
	assert.ErrorIs(t, summary.Err(), domain.ErrUnresolvedReference)

	ids, err := sink.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids, "failed documents are not written")

	out, err := sink.Load(context.Background(), "a")
	require.NoError(t, err)
	assert.Len(t, out.Graph.NodesOf(domain.KindScaffold), 1)
	assert.Zero(t, domain.Summarize(out.Graph).Scratch)

	// Source is untouched because a separate sink was given.
	in, err := source.Load(context.Background(), "a")
	require.NoError(t, err)
	assert.Empty(t, in.Graph.NodesOf(domain.KindScaffold))
}

func TestRunner_InPlaceAndDryRun(t *testing.T) {
	eng, err := squeezer.New()
	require.NoError(t, err)
	ctx := context.Background()

	dry := memory.NewStoreFrom(goodDoc("a"))
	_, err = runner.New(eng, dry, runner.WithDryRun(true)).Run(ctx)
	require.NoError(t, err)
	doc, _ := dry.Load(ctx, "a")
	assert.Empty(t, doc.Graph.NodesOf(domain.KindScaffold))

	inPlace := memory.NewStoreFrom(goodDoc("a"))
	_, err = runner.New(eng, inPlace).Run(ctx)
	require.NoError(t, err)
	doc, _ = inPlace.Load(ctx, "a")
	assert.Len(t, doc.Graph.NodesOf(domain.KindScaffold), 1)
}

func TestRunner_DocumentIDs(t *testing.T) {
	source := memory.NewStoreFrom(goodDoc("a"), goodDoc("b"))
	eng, err := squeezer.New()
	require.NoError(t, err)

	summary, err := runner.New(eng, source, runner.WithDocumentIDs("b", "missing")).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	require.Equal(t, 1, summary.Failed)
	assert.ErrorIs(t, summary.Failures()[0].Err, domain.ErrDocumentNotFound)
}

// gauge tracks how many transforms run at once.
type gauge struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (g *gauge) Transform(ctx context.Context, doc *domain.Document) (*runtime.Report, error) {
	n := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return &runtime.Report{DocumentID: doc.ID}, nil
}

func TestRunner_WorkerLimit(t *testing.T) {
	source := memory.NewStore()
	for i := 0; i < 20; i++ {
		require.NoError(t, source.Save(context.Background(), domain.NewDocument(fmt.Sprintf("d%02d", i))))
	}
	g := &gauge{}

	summary, err := runner.New(g, source, runner.WithWorkers(3)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, summary.Succeeded)
	assert.LessOrEqual(t, g.peak.Load(), int32(3))
}

type cancelling struct {
	cancel context.CancelFunc
}

func (c cancelling) Transform(ctx context.Context, doc *domain.Document) (*runtime.Report, error) {
	c.cancel()
	return nil, ctx.Err()
}

func TestRunner_Cancellation(t *testing.T) {
	source := memory.NewStoreFrom(goodDoc("a"), goodDoc("b"), goodDoc("c"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	summary, err := runner.New(cancelling{cancel}, source, runner.WithWorkers(1)).Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 3, summary.Failed)
	assert.Equal(t, 0, summary.Succeeded)
}
