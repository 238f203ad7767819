package ingest

import (
	"testing"

	"github.com/gucorpling/squeezer/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExternalID(t *testing.T) {
	id, err := ExternalID("12")
	require.NoError(t, err)
	assert.Equal(t, "12", id)

	id, err = ExternalID(12)
	require.NoError(t, err)
	assert.Equal(t, "12", id)

	_, err = ExternalID("  ")
	assert.ErrorIs(t, err, domain.ErrMalformedDescriptor)
}

func TestSecondaryEdges(t *testing.T) {
	t.Run("list of maps", func(t *testing.T) {
		got, err := SecondaryEdges([]any{
			map[string]any{"source": "3", "target": 5, "relname": "elaboration"},
		})
		require.NoError(t, err)
		assert.Equal(t, []domain.SecondaryEdgeDescriptor{
			{SourceID: "3", TargetID: "5", RelationName: "elaboration"},
		}, got)
	})

	t.Run("single record", func(t *testing.T) {
		got, err := SecondaryEdges(map[string]any{"source": "1", "target": "2", "relname": "cause"})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("typed records pass through", func(t *testing.T) {
		in := []domain.SecondaryEdgeDescriptor{{SourceID: "1", TargetID: "2"}}
		got, err := SecondaryEdges(in)
		require.NoError(t, err)
		assert.Equal(t, in, got)
	})

	t.Run("missing target", func(t *testing.T) {
		_, err := SecondaryEdges([]any{map[string]any{"source": "1"}})
		assert.ErrorIs(t, err, domain.ErrMalformedDescriptor)
	})

	t.Run("not a list", func(t *testing.T) {
		_, err := SecondaryEdges(42)
		assert.ErrorIs(t, err, domain.ErrMalformedDescriptor)
	})
}

func TestSignals(t *testing.T) {
	got, err := Signals([]any{
		map[string]any{
			"type":    "dm",
			"subtype": "dm",
			"tokens":  "4 5",
			"sources": []any{1, 2},
		},
		map[string]any{
			"type":    "semantic",
			"subtype": "repetition",
			"tokens":  []any{"7"},
			"sources": []any{"3"},
		},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, []string{"4", "5"}, got[0].TokenIDs)
	assert.Equal(t, []string{"1", "2"}, got[0].SourceIDs)
	assert.True(t, got[0].IsSecondary())

	assert.Equal(t, []string{"7"}, got[1].TokenIDs)
	assert.False(t, got[1].IsSecondary())
}
