package drivetree

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/Jumpaku/go-drivetree/logging"
	"github.com/Jumpaku/go-drivetree/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Scope selects which part of the registry an operation looks at.
type Scope int

const (
	// ScopeLive covers nodes that are not trashed.
	ScopeLive Scope = iota
	// ScopeTrashed covers trashed nodes only.
	ScopeTrashed
	// ScopeAll covers both live and trashed nodes.
	ScopeAll
)

func (s Scope) String() string {
	switch s {
	case ScopeTrashed:
		return "trashed"
	case ScopeAll:
		return "all"
	default:
		return "live"
	}
}

func (s Scope) includesLive() bool    { return s == ScopeLive || s == ScopeAll }
func (s Scope) includesTrashed() bool { return s == ScopeTrashed || s == ScopeAll }

// Cache is an in-memory copy of the whole remote registry.
// Readers always observe one complete snapshot; Refresh replaces it wholesale.
type Cache struct {
	remote  Remote
	logger  *zap.Logger
	metrics *metrics.Metrics

	current atomic.Pointer[snapshot]
	group   singleflight.Group
}

// NewCache returns an empty cache over remote. It is filled by the first Refresh.
func NewCache(remote Remote, logger *zap.Logger, m *metrics.Metrics) *Cache {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Cache{remote: remote, logger: logger, metrics: m}
}

// Refresh fetches the root id, the live set and the trashed set and swaps in the new snapshot.
// Concurrent calls share one round of requests. On failure the previous snapshot is kept.
func (c *Cache) Refresh(ctx context.Context) error {
	_, err, _ := c.group.Do("refresh", func() (any, error) {
		start := time.Now()
		s, err := c.fetch(ctx)
		c.metrics.RecordRefresh(time.Since(start), len(s.live), len(s.trashed), err)
		if err != nil {
			c.logger.Debug("cache refresh failed", zap.Error(err))
			return nil, err
		}
		c.current.Store(s)
		c.logger.Debug("cache refreshed",
			zap.Int("live", len(s.live)),
			zap.Int("trashed", len(s.trashed)),
			zap.Duration("duration", time.Since(start)))
		return nil, nil
	})
	return err
}

func (c *Cache) fetch(ctx context.Context) (*snapshot, error) {
	rootID, err := c.remote.RootID(ctx)
	if err != nil {
		return &snapshot{}, fmt.Errorf("failed to fetch root: %w", err)
	}
	live, err := c.remote.ListLive(ctx)
	if err != nil {
		return &snapshot{}, fmt.Errorf("failed to fetch live nodes: %w", err)
	}
	trashed, err := c.remote.ListTrashed(ctx)
	if err != nil {
		return &snapshot{}, fmt.Errorf("failed to fetch trashed nodes: %w", err)
	}
	return newSnapshot(rootID, live, trashed), nil
}

// Loaded reports whether a snapshot is available.
func (c *Cache) Loaded() bool {
	return c.current.Load() != nil
}

func (c *Cache) ensure(ctx context.Context) (*snapshot, error) {
	if s := c.current.Load(); s != nil {
		return s, nil
	}
	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}
	return c.current.Load(), nil
}

func (c *Cache) snapshot() *snapshot {
	if s := c.current.Load(); s != nil {
		return s
	}
	return newSnapshot("", nil, nil)
}

// Root returns the node standing for the root folder.
func (c *Cache) Root() Node {
	return c.snapshot().root()
}

// Lookup returns the node with id, searching live nodes first, then trashed ones.
func (c *Cache) Lookup(id NodeID) (Node, bool) {
	return c.snapshot().lookup(id, ScopeAll)
}

// ChildrenOf returns the nodes having id among their parents, sorted by name then id.
func (c *Cache) ChildrenOf(id NodeID, includeTrashed bool) []Node {
	scope := ScopeLive
	if includeTrashed {
		scope = ScopeAll
	}
	return c.snapshot().children(id, scope)
}

// Nodes returns every node in scope, sorted by name then id.
func (c *Cache) Nodes(scope Scope) []Node {
	return c.snapshot().nodes(scope)
}

type snapshot struct {
	rootID  NodeID
	live    map[NodeID]Node
	trashed map[NodeID]Node

	liveChildren    map[NodeID][]NodeID
	trashedChildren map[NodeID][]NodeID
	liveByName      map[string][]NodeID
	trashedByName   map[string][]NodeID
}

func newSnapshot(rootID NodeID, live, trashed []Node) *snapshot {
	s := &snapshot{
		rootID:          rootID,
		live:            map[NodeID]Node{},
		trashed:         map[NodeID]Node{},
		liveChildren:    map[NodeID][]NodeID{},
		trashedChildren: map[NodeID][]NodeID{},
		liveByName:      map[string][]NodeID{},
		trashedByName:   map[string][]NodeID{},
	}
	index := func(nodes []Node, byID map[NodeID]Node, children map[NodeID][]NodeID, byName map[string][]NodeID) {
		for _, n := range nodes {
			if n.ID == rootID {
				continue
			}
			byID[n.ID] = n
			byName[n.Name] = append(byName[n.Name], n.ID)
			for _, p := range n.Parents {
				children[p] = append(children[p], n.ID)
			}
		}
		for k := range children {
			s.sortIDs(children[k], byID)
		}
		for k := range byName {
			s.sortIDs(byName[k], byID)
		}
	}
	index(live, s.live, s.liveChildren, s.liveByName)
	index(trashed, s.trashed, s.trashedChildren, s.trashedByName)
	return s
}

func (s *snapshot) sortIDs(ids []NodeID, byID map[NodeID]Node) {
	sort.SliceStable(ids, func(i, j int) bool {
		return lessNode(byID[ids[i]], byID[ids[j]])
	})
}

func lessNode(a, b Node) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}

func (s *snapshot) root() Node {
	return Node{ID: s.rootID, MimeType: MimeTypeFolder}
}

func (s *snapshot) isRoot(id NodeID) bool {
	return id == s.rootID
}

func (s *snapshot) lookup(id NodeID, scope Scope) (Node, bool) {
	if s.isRoot(id) {
		return s.root(), true
	}
	if scope.includesLive() {
		if n, ok := s.live[id]; ok {
			return n, true
		}
	}
	if scope.includesTrashed() {
		if n, ok := s.trashed[id]; ok {
			return n, true
		}
	}
	return Node{}, false
}

func (s *snapshot) children(id NodeID, scope Scope) []Node {
	var out []Node
	if scope.includesLive() {
		for _, c := range s.liveChildren[id] {
			out = append(out, s.live[c])
		}
	}
	if scope.includesTrashed() {
		for _, c := range s.trashedChildren[id] {
			out = append(out, s.trashed[c])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return lessNode(out[i], out[j]) })
	return out
}

func (s *snapshot) named(name string, scope Scope) []Node {
	var out []Node
	if scope.includesLive() {
		for _, id := range s.liveByName[name] {
			out = append(out, s.live[id])
		}
	}
	if scope.includesTrashed() {
		for _, id := range s.trashedByName[name] {
			out = append(out, s.trashed[id])
		}
	}
	return out
}

func (s *snapshot) nodes(scope Scope) []Node {
	var out []Node
	if scope.includesLive() {
		for _, n := range s.live {
			out = append(out, n)
		}
	}
	if scope.includesTrashed() {
		for _, n := range s.trashed {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessNode(out[i], out[j]) })
	return out
}
