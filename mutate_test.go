package drivetree_test

import (
	"context"
	"testing"

	"github.com/Jumpaku/go-drivetree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMkdir_RoundTrip(t *testing.T) {
	f := newFixture(t)

	created, err := f.tree.Mkdir(context.Background(), f.sess, "/a/b/c")
	require.NoError(t, err)

	got := f.resolve(t, "/a/b/c")
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, got.IsFolder())
	assert.Equal(t, 3, f.remote.CallCount("Create"))

	again, err := f.tree.Mkdir(context.Background(), f.sess, "/a/b/c")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, 3, f.remote.CallCount("Create"))
}

func TestMkdir_ThroughFile(t *testing.T) {
	f := newFixture(t)
	f.remote.AddFile("a", "", root)

	_, err := f.tree.Mkdir(context.Background(), f.sess, "/a/b")
	require.ErrorIs(t, err, drivetree.ErrPathIsFile)
}

func TestCd_File(t *testing.T) {
	f := newFixture(t)
	f.remote.AddFile("a.txt", "", root)

	err := f.tree.Cd(context.Background(), f.sess, "/a.txt")
	require.ErrorIs(t, err, drivetree.ErrPathIsFile)
	assert.Equal(t, drivetree.RootPath, f.sess.Cwd())
}

func TestMove_ReplacesOnlyTheAddressedParent(t *testing.T) {
	cases := []struct {
		name        string
		extraParent bool
	}{
		{"single_parent", false},
		{"retains_other_parents", true},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			f := newFixture(t)
			p := f.remote.AddFolder("p", root)
			q := f.remote.AddFolder("q", root)
			r := f.remote.AddFolder("r", root)
			parents := []drivetree.NodeID{p}
			want := []drivetree.NodeID{q}
			if c.extraParent {
				parents = append(parents, r)
				want = append(want, r)
			}
			x := f.remote.AddFile("x", "", parents...)

			err := f.tree.Move(context.Background(), f.sess, "/p/x", "/q/x")
			require.NoError(t, err)

			n, _ := f.remote.Node(x)
			assert.ElementsMatch(t, want, n.Parents)
			assert.Equal(t, "x", n.Name)
			assert.Equal(t, x, f.resolve(t, "/q/x").ID)
		})
	}
}

func TestMove_Rename(t *testing.T) {
	f := newFixture(t)
	p := f.remote.AddFolder("p", root)
	q := f.remote.AddFolder("q", root)
	x := f.remote.AddFile("x", "", p)

	require.NoError(t, f.tree.Move(context.Background(), f.sess, "/p/x", "/q/y"))

	n, _ := f.remote.Node(x)
	assert.Equal(t, []drivetree.NodeID{q}, n.Parents)
	assert.Equal(t, "y", n.Name)
}

func TestMove_TakesLastComponentOfExistingFolder(t *testing.T) {
	f := newFixture(t)
	p := f.remote.AddFolder("p", root)
	q := f.remote.AddFolder("q", root)
	x := f.remote.AddFile("x", "", p)

	require.NoError(t, f.tree.Move(context.Background(), f.sess, "/p/x", "/q"))

	n, _ := f.remote.Node(x)
	assert.Equal(t, []drivetree.NodeID{root}, n.Parents)
	assert.Equal(t, "q", n.Name)
	folder, _ := f.remote.Node(q)
	assert.Equal(t, "q", folder.Name)
	got, err := f.tree.Candidates(context.Background(), f.sess, "/q", drivetree.ScopeLive)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestMove_ResolvesSourceParentByFullPath(t *testing.T) {
	f := newFixture(t)
	a := f.remote.AddFolder("a", root)
	b := f.remote.AddFolder("b", root)
	innerA := f.remote.AddFolder("dir", a)
	innerB := f.remote.AddFolder("dir", b)
	x := f.remote.AddFile("x", "", innerA, innerB)
	q := f.remote.AddFolder("q", root)

	require.NoError(t, f.tree.Move(context.Background(), f.sess, "/b/dir/x", "/q/x"))

	n, _ := f.remote.Node(x)
	assert.ElementsMatch(t, []drivetree.NodeID{innerA, q}, n.Parents)
	assert.Empty(t, f.script.Asked)
}

func TestMove_MissingDestinationParent(t *testing.T) {
	cases := []struct {
		name    string
		confirm bool
		wantErr error
	}{
		{"created", true, nil},
		{"declined", false, drivetree.ErrAborted},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			f := newFixture(t)
			x := f.remote.AddFile("x", "", root)
			f.script.Confirms = []bool{c.confirm}

			err := f.tree.Move(context.Background(), f.sess, "/x", "/new/y")
			if c.wantErr != nil {
				require.ErrorIs(t, err, c.wantErr)
				n, _ := f.remote.Node(x)
				assert.Equal(t, []drivetree.NodeID{root}, n.Parents)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, x, f.resolve(t, "/new/y").ID)
		})
	}
}

func TestMove_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		src     string
		dst     string
		wantErr error
	}{
		{"root", "/", "/a", drivetree.ErrInvalidPath},
		{"onto_root", "/f", "/", drivetree.ErrInvalidPath},
		{"into_itself", "/a", "/a/x", drivetree.ErrInvalidPath},
		{"into_descendant", "/a", "/a/b/x", drivetree.ErrInvalidPath},
		{"destination_parent_is_file", "/a", "/f/x", drivetree.ErrPathIsFile},
		{"missing_source", "/missing", "/a", drivetree.ErrPathNotFound},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			f := newFixture(t)
			a := f.remote.AddFolder("a", root)
			f.remote.AddFolder("b", a)
			f.remote.AddFile("f", "", root)

			err := f.tree.Move(context.Background(), f.sess, c.src, c.dst)
			require.ErrorIs(t, err, c.wantErr)
			assert.Equal(t, 0, f.remote.CallCount("SetParentsAndName"))
		})
	}
}

func TestRemove_TrashAndRestore(t *testing.T) {
	f := newFixture(t)
	docs := f.remote.AddFolder("docs", root)
	x := f.remote.AddFile("x.txt", "", docs)

	require.NoError(t, f.tree.Remove(context.Background(), f.sess, "/docs/x.txt", false))
	_, err := f.tree.Resolve(context.Background(), f.sess, "/docs/x.txt", drivetree.ScopeLive)
	require.ErrorIs(t, err, drivetree.ErrPathNotFound)

	require.NoError(t, f.tree.Restore(context.Background(), f.sess, "/docs/x.txt"))
	assert.Equal(t, x, f.resolve(t, "/docs/x.txt").ID)
}

func TestRemove_Permanent(t *testing.T) {
	f := newFixture(t)
	f.remote.AddFile("x.txt", "", root)

	require.NoError(t, f.tree.Remove(context.Background(), f.sess, "/x.txt", true))

	_, err := f.tree.Resolve(context.Background(), f.sess, "/x.txt", drivetree.ScopeAll)
	require.ErrorIs(t, err, drivetree.ErrPathNotFound)
	err = f.tree.Restore(context.Background(), f.sess, "/x.txt")
	require.ErrorIs(t, err, drivetree.ErrPathNotFound)
}

func TestRemove_Root(t *testing.T) {
	f := newFixture(t)

	err := f.tree.Remove(context.Background(), f.sess, "/", false)
	require.ErrorIs(t, err, drivetree.ErrInvalidPath)
}

func TestRestore_LiveNodeIsNotFound(t *testing.T) {
	f := newFixture(t)
	f.remote.AddFile("x.txt", "", root)

	err := f.tree.Restore(context.Background(), f.sess, "/x.txt")
	require.ErrorIs(t, err, drivetree.ErrPathNotFound)
	assert.Equal(t, 0, f.remote.CallCount("Untrash"))
}

func TestRemove_FailureKeepsCache(t *testing.T) {
	f := newFixture(t)
	f.remote.AddFile("x.txt", "", root)
	f.refresh(t)
	f.remote.FailOn("Trash", assert.AnError)

	err := f.tree.Remove(context.Background(), f.sess, "/x.txt", false)
	require.ErrorIs(t, err, drivetree.ErrTransport)
	assert.Equal(t, 1, f.remote.CallCount("ListLive"))
	f.resolve(t, "/x.txt")
}
