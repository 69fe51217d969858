package docstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "notes.md", want: "notes.md"},
		{in: "/guides/setup.md", want: "guides/setup.md"},
		{in: "guides\\win.txt", want: "guides/win.txt"},
		{in: "a/./b.txt", want: "a/b.txt"},
		{in: "../etc/passwd", wantErr: true},
		{in: "a/../../b", wantErr: true},
		{in: "a/../b.txt", wantErr: true},
		{in: ".env", wantErr: true},
		{in: "dir/.hidden", wantErr: true},
		{in: "node_modules/x.js", wantErr: true},
		{in: "", wantErr: true},
		{in: "/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Clean(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_SaveListDelete(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "docs")
	store := New(root)

	assert.Empty(t, store.List(ctx), "missing folder lists nothing")

	doc, err := store.Save(ctx, "guides/setup.md", strings.NewReader("install it"))
	require.NoError(t, err)
	assert.Equal(t, "guides/setup.md", doc.Path)
	assert.EqualValues(t, len("install it"), doc.Size)

	_, err = store.Save(ctx, "a.txt", strings.NewReader("first"))
	require.NoError(t, err)
	_, err = store.Save(ctx, "a.txt", strings.NewReader("second"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	docs := store.List(ctx)
	require.Len(t, docs, 2)
	assert.Equal(t, "a.txt", docs[0].Path)
	assert.Equal(t, "guides/setup.md", docs[1].Path)

	require.NoError(t, store.Delete(ctx, "a.txt"))
	assert.ErrorIs(t, store.Delete(ctx, "a.txt"), ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "guides"), ErrNotFound, "directories are not documents")
	assert.Len(t, store.List(ctx), 1)
}

func TestStore_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	parent := t.TempDir()
	store := New(filepath.Join(parent, "docs"))

	_, err := store.Save(ctx, "../escape.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidPath)
	_, statErr := os.Stat(filepath.Join(parent, "escape.txt"))
	assert.True(t, os.IsNotExist(statErr))

	assert.ErrorIs(t, store.Delete(ctx, "../../etc/passwd"), ErrInvalidPath)
}

func TestStore_NoTempFilesLeft(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := New(root)

	_, err := store.Save(ctx, "x.md", strings.NewReader("body"))
	require.NoError(t, err)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "x.md", entries[0].Name())
}
