package drivetree_test

import (
	"context"
	"sync"
	"testing"

	"github.com/Jumpaku/go-drivetree"
	"github.com/Jumpaku/go-drivetree/drivetreetest"
	"github.com/Jumpaku/go-drivetree/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_RefreshPartitionsLiveAndTrashed(t *testing.T) {
	remote := drivetreetest.NewRemote()
	a := remote.AddFolder("a", root)
	x := remote.AddFile("x", "", a)
	y := remote.AddFile("y", "", a)
	require.NoError(t, remote.Trash(context.Background(), y))

	c := drivetree.NewCache(remote, nil, nil)
	assert.False(t, c.Loaded())
	require.NoError(t, c.Refresh(context.Background()))
	assert.True(t, c.Loaded())

	assert.Equal(t, root, c.Root().ID)
	assert.Len(t, c.Nodes(drivetree.ScopeLive), 2)
	assert.Len(t, c.Nodes(drivetree.ScopeTrashed), 1)
	assert.Len(t, c.Nodes(drivetree.ScopeAll), 3)

	live := c.ChildrenOf(a, false)
	require.Len(t, live, 1)
	assert.Equal(t, x, live[0].ID)
	assert.Len(t, c.ChildrenOf(a, true), 2)

	n, ok := c.Lookup(y)
	require.True(t, ok)
	assert.True(t, n.Trashed)
}

func TestCache_FailedRefreshKeepsSnapshot(t *testing.T) {
	remote := drivetreetest.NewRemote()
	remote.AddFile("x", "", root)
	c := drivetree.NewCache(remote, nil, nil)
	require.NoError(t, c.Refresh(context.Background()))

	remote.AddFile("y", "", root)
	remote.FailOn("ListTrashed", assert.AnError)
	err := c.Refresh(context.Background())
	require.ErrorIs(t, err, drivetree.ErrTransport)
	require.ErrorIs(t, err, assert.AnError)

	got := c.Nodes(drivetree.ScopeAll)
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].Name)
}

func TestCache_ConcurrentRefreshes(t *testing.T) {
	remote := drivetreetest.NewRemote()
	remote.AddFile("x", "", root)
	c := drivetree.NewCache(remote, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Refresh(context.Background()))
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, remote.CallCount("ListLive"), 8)
	assert.Len(t, c.Nodes(drivetree.ScopeLive), 1)
}

func TestCache_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	remote := drivetreetest.NewRemote()
	remote.AddFile("x", "", root)
	remote.AddFile("y", "", root)

	c := drivetree.NewCache(drivetree.Instrument(remote, m, nil), nil, m)
	require.NoError(t, c.Refresh(context.Background()))

	count, err := testutil.GatherAndCount(reg, "drivetree_cache_refreshes_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	count, err = testutil.GatherAndCount(reg, "drivetree_remote_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
