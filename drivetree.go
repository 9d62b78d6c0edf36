// Package drivetree addresses the objects of a graph-structured remote store, such as Google Drive, with
// POSIX-style paths and synchronizes subtrees between the remote store and a local filesystem.
//
// Remote objects carry display names that are not unique among siblings and may have several parents.
// A path is resolved by validating every same-named object against the chain of its parents; when more
// than one object matches, a Prompter chooses. All reads go through an in-memory Cache of the whole
// registry, which is refreshed after every mutation confirmed by the remote store.
package drivetree

import (
	"context"

	"github.com/Jumpaku/go-drivetree/errors"
	"github.com/Jumpaku/go-drivetree/logging"
	"github.com/Jumpaku/go-drivetree/metrics"
	"github.com/go-git/go-billy/v5"
	"go.uber.org/zap"
)

// DriveTree performs path-based operations against a Remote and a local filesystem.
// Operations are meant to be issued one at a time.
type DriveTree struct {
	remote   Remote
	local    billy.Filesystem
	prompter Prompter
	logger   *zap.Logger
	metrics  *metrics.Metrics
	cache    *Cache
}

// Option is a functional option for configuring a DriveTree.
type Option func(*DriveTree)

// WithPrompter sets the provider of interactive decisions.
// Without it, ambiguous paths and confirmations abort the operation.
func WithPrompter(p Prompter) Option {
	return func(t *DriveTree) {
		t.prompter = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(t *DriveTree) {
		t.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *DriveTree) {
		t.metrics = m
	}
}

// New returns a DriveTree over remote whose local paths are interpreted in local.
func New(remote Remote, local billy.Filesystem, opts ...Option) *DriveTree {
	t := &DriveTree{
		local:    local,
		prompter: refusingPrompter{},
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.remote = Instrument(remote, t.metrics, t.logger)
	t.cache = NewCache(t.remote, t.logger, t.metrics)
	return t
}

// Cache returns the registry cache.
func (t *DriveTree) Cache() *Cache {
	return t.cache
}

// Refresh reloads the registry cache from the remote store.
func (t *DriveTree) Refresh(ctx context.Context) error {
	return t.cache.Refresh(ctx)
}

type refusingPrompter struct{}

var _ Prompter = refusingPrompter{}

func (refusingPrompter) ChooseNode(context.Context, Path, []Node, string) (string, error) {
	return "", errNoPrompter
}

func (refusingPrompter) ChooseExport(context.Context, Node, []string, string) (string, error) {
	return "", errNoPrompter
}

func (refusingPrompter) Confirm(context.Context, string) (bool, error) {
	return false, nil
}

var errNoPrompter = errors.New("no prompter configured")

func logPath(p Path) zap.Field {
	return logging.Path(string(p))
}

func logAnswer(answer string) zap.Field {
	return zap.String("answer", answer)
}
