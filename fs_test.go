package drivetree_test

import (
	"context"
	"io"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/Jumpaku/go-drivetree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_Conformance(t *testing.T) {
	f := newFixture(t)
	docs := f.remote.AddFolder("docs", root)
	sub := f.remote.AddFolder("sub", docs)
	f.remote.AddFile("a.txt", "alpha", docs)
	f.remote.AddFile("b.txt", "bravo", sub)
	f.remote.AddFile("top.txt", "top", root)
	gone := f.remote.AddFile("gone.txt", "gone", root)
	require.NoError(t, f.remote.Trash(context.Background(), gone))

	if err := fstest.TestFS(f.tree.FS(context.Background()), "docs/a.txt", "docs/sub/b.txt", "top.txt"); err != nil {
		t.Fatal(err)
	}
}

func TestFS_ReadFile(t *testing.T) {
	f := newFixture(t)
	docs := f.remote.AddFolder("docs", root)
	f.remote.AddFile("a.txt", "alpha", docs)

	got, err := fs.ReadFile(f.tree.FS(context.Background()), "docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(got))
}

func TestFS_OpenErrors(t *testing.T) {
	f := newFixture(t)
	f.remote.AddAppFile("Plan", "application/vnd.google-apps.document", map[string]string{"text/plain": "plan"}, root)
	gone := f.remote.AddFile("gone.txt", "", root)
	require.NoError(t, f.remote.Trash(context.Background(), gone))
	fsys := f.tree.FS(context.Background())

	cases := []struct {
		name string
		path string
		want error
	}{
		{"missing", "nope.txt", fs.ErrNotExist},
		{"trashed", "gone.txt", fs.ErrNotExist},
		{"leading_slash", "/Plan", fs.ErrInvalid},
		{"dot_dot", "../Plan", fs.ErrInvalid},
		{"proprietary", "Plan", drivetree.ErrUnsupportedConversion},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			_, err := fsys.Open(c.path)
			if !assert.ErrorIs(t, err, c.want) {
				t.Fatalf("Open(%q) = %v, want %v", c.path, err, c.want)
			}
		})
	}
}

func TestFS_ReadDirN(t *testing.T) {
	f := newFixture(t)
	f.remote.AddFile("file1.txt", "", root)
	f.remote.AddFile("file2.txt", "", root)
	f.remote.AddFolder("subdir", root)

	file, err := f.tree.FS(context.Background()).Open(".")
	require.NoError(t, err)
	defer file.Close()
	d, ok := file.(fs.ReadDirFile)
	require.True(t, ok)

	info, err := d.Stat()
	require.NoError(t, err)
	assert.Equal(t, ".", info.Name())
	assert.True(t, info.IsDir())

	result, err := d.ReadDir(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"file1.txt", "file2.txt"}, entryNames(result))

	result, err = d.ReadDir(2)
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []string{"subdir"}, entryNames(result))
	assert.True(t, result[0].IsDir())

	result, err = d.ReadDir(-1)
	require.NoError(t, err)
	assert.Empty(t, result)

	_, err = d.Read(make([]byte, 1))
	require.ErrorIs(t, err, fs.ErrInvalid)
}

func entryNames(entries []fs.DirEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name()
	}
	return out
}
