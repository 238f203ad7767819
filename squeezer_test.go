package squeezer_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gucorpling/squeezer"
	"github.com/gucorpling/squeezer/pkg/codec"
	"github.com/gucorpling/squeezer/pkg/domain"
	"github.com/gucorpling/squeezer/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransform_AsymmetricDuplicatesLeaveDocumentUntouched(t *testing.T) {
	b := dsl.New("asym")
	b.Tokens("a", "b")
	b.Constituent("root").Kind("span").Layer("rst")
	b.Constituent("bare").Layer("rst").ExternalID(1).Dominates("t1", "t2")
	b.Constituent("ann1").Layer("rst").Annotate("role", "nucleus").Dominates("t1", "t2")
	b.Constituent("ann2").Layer("rst").Annotate("role", "satellite").Dominates("t1", "t2")
	doc := b.MustBuild()
	original := doc.Graph

	eng, err := squeezer.New()
	require.NoError(t, err)

	_, err = eng.Transform(context.Background(), doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrModelInvariant)

	var pe *squeezer.PassError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, domain.PassDedup, pe.Pass)

	assert.Same(t, original, doc.Graph)
	assert.Equal(t, 6, doc.Graph.NodeCount())
	assert.Equal(t, 3, domain.Summarize(doc.Graph).Scratch)
	assert.True(t, doc.Graph.Node(0).HasAnnotation(domain.NamespaceScratch, domain.AnnoExternalID),
		"index pass mutations are not visible")
}

func TestTransform_Success(t *testing.T) {
	b := dsl.New("ok")
	b.Tokens("Hello", "world")
	b.Constituent("root").Kind("span").Layer("rst").Dominates("A", "B")
	b.Constituent("A").Layer("rst").Dominates("t1", "t2")
	b.Constituent("B").Layer("rst").Annotate("role", "nucleus").Dominates("t1", "t2")
	b.Constituent("p").Points("A", "coref")
	doc := b.MustBuild()

	eng, err := squeezer.New(squeezer.WithTargetLayer("rst"))
	require.NoError(t, err)
	assert.Equal(t, "rst", eng.TargetLayer())
	assert.Equal(t, "after", eng.DedupStage())

	report, err := eng.Transform(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Dedup.Merged)
	assert.Equal(t, -1, report.Delta.Nodes["constituent"])
	assert.Zero(t, domain.Summarize(doc.Graph).Scratch)
}

func TestNew_InvalidDedupStage(t *testing.T) {
	_, err := squeezer.New(squeezer.WithDedupStage("sometimes"))
	assert.Error(t, err)
}

func TestTransformStream(t *testing.T) {
	input := `
id: stream
layers: [rst]
nodes:
  - {id: t1, kind: token, text: Hello, annotations: [{ns: scratch, name: external_id, value: 1}]}
  - {id: t2, kind: token, text: again, annotations: [{ns: scratch, name: external_id, value: 2}]}
  - id: root
    kind: constituent
    layers: [rst]
    annotations:
      - {ns: rst, name: kind, value: span}
      - {ns: scratch, name: external_id, value: 10}
  - id: edu1
    kind: constituent
    layers: [rst]
    annotations:
      - {ns: scratch, name: external_id, value: 11}
      - {ns: scratch, name: signals, value: [{type: dm, subtype: dm, tokens: "2", sources: [11]}]}
relations:
  - {kind: dominance, source: root, target: edu1, layers: [rst], annotations: [{ns: rst, name: relname, value: restatement}]}
  - {kind: dominance, source: edu1, target: t1, layers: [rst]}
  - {kind: dominance, source: edu1, target: t2, layers: [rst]}
`
	eng, err := squeezer.New()
	require.NoError(t, err)

	var out bytes.Buffer
	report, err := eng.TransformStream(context.Background(), strings.NewReader(input), codec.FormatYAML, &out, codec.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Signals)
	assert.Equal(t, 1, report.Signaled)

	doc, err := codec.Unmarshal(out.Bytes(), codec.FormatJSON)
	require.NoError(t, err)
	assert.Zero(t, domain.Summarize(doc.Graph).Scratch)

	sigs := doc.Graph.NodesOf(domain.KindSignal)
	require.Len(t, sigs, 1)
	text, _ := sigs[0].StringAnnotation(domain.NamespaceDefault, domain.AnnoText)
	assert.Equal(t, "again", text)
	rel, _ := sigs[0].StringAnnotation(domain.NamespaceDefault, domain.AnnoSignaledRelation)
	assert.Equal(t, "restatement", rel)

	var marked int
	for _, r := range doc.Graph.Relations() {
		if v, ok := r.Annotation(domain.NamespaceDefault, domain.AnnoIsSignaled); ok {
			assert.Equal(t, true, v)
			marked++
		}
	}
	assert.Equal(t, 1, marked)
}

func TestTransformStream_NothingWrittenOnFailure(t *testing.T) {
	input := `{"id":"bad","nodes":[{"id":"a","kind":"constituent","annotations":[{"ns":"scratch","name":"secondary_edges","value":[{"source":"1","target":"2"}]}]}],"relations":[]}`

	eng, err := squeezer.New()
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = eng.TransformStream(context.Background(), strings.NewReader(input), codec.FormatJSON, &out, codec.FormatJSON)
	assert.ErrorIs(t, err, domain.ErrUnresolvedReference)
	assert.Zero(t, out.Len())
}
