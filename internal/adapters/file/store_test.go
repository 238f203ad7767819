package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gucorpling/squeezer/internal/adapters/file"
	"github.com/gucorpling/squeezer/pkg/codec"
	"github.com/gucorpling/squeezer/pkg/domain"
	"github.com/gucorpling/squeezer/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	for _, f := range []codec.Format{codec.FormatJSON, codec.FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			ports.RunDocumentStoreContract(t, file.New(t.TempDir(), f))
		})
	}
}

func TestFileStore_MixedDirectory(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	yamlDoc := "id: ignored\nnodes:\n  - {id: t1, kind: token, text: hi}\nrelations: []\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte(yamlDoc), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-a-123.json"), []byte("{"), 0644))

	store := file.New(dir, codec.FormatJSON)
	require.NoError(t, store.Save(ctx, domain.NewDocument("a")))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	b, err := store.Load(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", b.ID, "file name wins over embedded id")
	assert.Equal(t, 1, b.Graph.NodeCount())
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0644))

	_, err := file.New(dir, codec.FormatJSON).Load(context.Background(), "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestFileStore_EmptyID(t *testing.T) {
	store := file.New(t.TempDir(), "")
	assert.Error(t, store.Save(context.Background(), domain.NewDocument("")))
	_, err := store.Load(context.Background(), "")
	assert.Error(t, err)
}
