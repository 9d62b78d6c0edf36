package drivetree_test

import (
	"context"
	"io"
	"testing"

	"github.com/Jumpaku/go-drivetree"
	"github.com/Jumpaku/go-drivetree/drivetreetest"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/require"
)

const root = drivetreetest.RootID

type fixture struct {
	remote *drivetreetest.Remote
	script *drivetreetest.Script
	local  billy.Filesystem
	tree   *drivetree.DriveTree
	sess   *drivetree.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		remote: drivetreetest.NewRemote(),
		script: &drivetreetest.Script{},
		local:  memfs.New(),
		sess:   drivetree.NewSession("/home/user"),
	}
	f.tree = drivetree.New(f.remote, f.local, drivetree.WithPrompter(f.script))
	return f
}

// refresh reloads the cache after the remote was populated directly.
func (f *fixture) refresh(t *testing.T) {
	t.Helper()
	require.NoError(t, f.tree.Refresh(context.Background()))
}

func (f *fixture) writeLocal(t *testing.T, name, content string) {
	t.Helper()
	file, err := f.local.Create(name)
	require.NoError(t, err)
	_, err = file.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, file.Close())
}

func (f *fixture) readLocal(t *testing.T, name string) string {
	t.Helper()
	file, err := f.local.Open(name)
	require.NoError(t, err)
	defer file.Close()
	b, err := io.ReadAll(file)
	require.NoError(t, err)
	return string(b)
}

func (f *fixture) resolve(t *testing.T, p string) drivetree.Node {
	t.Helper()
	n, err := f.tree.Resolve(context.Background(), f.sess, p, drivetree.ScopeLive)
	require.NoError(t, err)
	return n
}
