package runtime_test

import (
	"testing"

	"github.com/gucorpling/squeezer/internal/runtime"
	"github.com/gucorpling/squeezer/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkSignaledEdges(t *testing.T) {
	doc := elaborationDoc()
	g := doc.Graph
	scaffolds, queue := materialize(t, doc)
	_, err := runtime.BindSignals(g, scaffolds, queue, "rst")
	require.NoError(t, err)

	total, signaled := runtime.MarkSignaledEdges(g, queue)
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, signaled)

	root := nodeByName(g, "root").ID
	toY := outgoingTo(g, root, nodeByName(g, "Y").ID)[0]
	toX := outgoingTo(g, root, nodeByName(g, "X").ID)[0]

	v, ok := toY.Annotation(domain.NamespaceDefault, domain.AnnoIsSignaled)
	require.True(t, ok)
	assert.Equal(t, true, v)
	v, ok = toX.Annotation(domain.NamespaceDefault, domain.AnnoIsSignaled)
	require.True(t, ok)
	assert.Equal(t, false, v)

	for _, r := range g.Relations() {
		src := g.Node(r.Source)
		tgt := g.Node(r.Target)
		if tgt.Kind == domain.KindToken || src.Kind == domain.KindSignal || src.Kind == domain.KindScaffold {
			assert.False(t, r.HasAnnotation(domain.NamespaceDefault, domain.AnnoIsSignaled), "relation %s", r)
		}
	}
}

func TestMarkSignaledEdges_SkipsNamedSources(t *testing.T) {
	g := domain.NewGraph()
	a := g.AddNode(domain.KindConstituent, "a")
	a.Annotate(domain.NamespaceDefault, domain.AnnoRelName, "joint")
	b := g.AddNode(domain.KindConstituent, "b")
	r, err := g.AddRelation(domain.Dominance, a.ID, b.ID)
	require.NoError(t, err)
	p, err := g.AddRelation(domain.Pointing, b.ID, a.ID)
	require.NoError(t, err)

	total, _ := runtime.MarkSignaledEdges(g, &runtime.SignalQueue{})
	assert.Zero(t, total)
	assert.False(t, r.HasAnnotation(domain.NamespaceDefault, domain.AnnoIsSignaled))
	assert.False(t, p.HasAnnotation(domain.NamespaceDefault, domain.AnnoIsSignaled))
}
