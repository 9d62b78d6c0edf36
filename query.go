package drivetree

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/gobwas/glob"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// ListOptions controls List.
type ListOptions struct {
	// All includes trashed children.
	All bool
	// Starred keeps starred nodes only.
	Starred bool
}

// List returns the children of the folder at p, sorted by name then id. A file lists itself.
func (t *DriveTree) List(ctx context.Context, sess *Session, p string, opts ListOptions) ([]Node, error) {
	scope := ScopeLive
	if opts.All {
		scope = ScopeAll
	}
	n, err := t.resolvePath(ctx, sess.Abs(p), scope)
	if err != nil {
		return nil, err
	}
	nodes := []Node{n}
	if n.IsFolder() {
		nodes = t.cache.snapshot().children(n.ID, scope)
	}
	if !opts.Starred {
		return nodes, nil
	}
	starred := []Node{}
	for _, c := range nodes {
		if c.Starred {
			starred = append(starred, c)
		}
	}
	return starred, nil
}

// Details is a node together with everything known about it.
type Details struct {
	Node   Node
	Paths  []Path
	Grants []Grant
}

// Info returns the node at p with its paths and access grants.
func (t *DriveTree) Info(ctx context.Context, sess *Session, p string) (Details, error) {
	abs := sess.Abs(p)
	n, err := t.resolvePath(ctx, abs, ScopeAll)
	if err != nil {
		return Details{}, err
	}
	d := Details{Node: n, Paths: t.cache.snapshot().pathsOf(n.ID)}
	if abs.IsRoot() {
		return d, nil
	}
	if d.Grants, err = t.remote.ListPermissions(ctx, n.ID); err != nil {
		return Details{}, fmt.Errorf("failed to list permissions of '%s': %w", abs, err)
	}
	return d, nil
}

// SearchMode selects how a search term is matched against names.
type SearchMode int

const (
	// SearchSubstring matches names containing the term, ignoring case.
	SearchSubstring SearchMode = iota
	// SearchFuzzy matches names similar to the term, ignoring case and word order.
	SearchFuzzy
	// SearchGlob matches names against a glob pattern.
	SearchGlob
)

// FuzzyThreshold is the minimum similarity score, out of 100, of a fuzzy match.
const FuzzyThreshold = 80

// SearchOptions controls Search.
type SearchOptions struct {
	Mode           SearchMode
	IncludeTrashed bool
}

// SearchHit is a node matching a search with every path leading to it.
type SearchHit struct {
	Node  Node
	Paths []Path
	// Score is 100 for exact and pattern matches and the similarity for fuzzy matches.
	Score int
}

// Search finds nodes whose names match term. Hits are ordered by descending score, then by name and id.
func (t *DriveTree) Search(ctx context.Context, term string, opts SearchOptions) ([]SearchHit, error) {
	snap, err := t.cache.ensure(ctx)
	if err != nil {
		return nil, err
	}
	match, err := newMatcher(term, opts.Mode)
	if err != nil {
		return nil, err
	}
	scope := ScopeLive
	if opts.IncludeTrashed {
		scope = ScopeAll
	}

	hits := []SearchHit{}
	for _, n := range snap.nodes(scope) {
		score, ok := match(n.Name)
		if !ok {
			continue
		}
		hits = append(hits, SearchHit{Node: n, Paths: snap.pathsOf(n.ID), Score: score})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return lessNode(hits[i].Node, hits[j].Node)
	})
	return hits, nil
}

func newMatcher(term string, mode SearchMode) (func(name string) (int, bool), error) {
	switch mode {
	case SearchGlob:
		g, err := glob.Compile(term)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern '%s': %w", term, err)
		}
		return func(name string) (int, bool) {
			return 100, g.Match(name)
		}, nil
	case SearchFuzzy:
		sortedTerm := tokenSort(term)
		return func(name string) (int, bool) {
			score := partialRatio(sortedTerm, tokenSort(name))
			return score, score >= FuzzyThreshold
		}, nil
	default:
		lower := strings.ToLower(term)
		return func(name string) (int, bool) {
			return 100, strings.Contains(strings.ToLower(name), lower)
		}, nil
	}
}

// tokenSort lowercases s and sorts its words.
func tokenSort(s string) string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	sort.Strings(words)
	return strings.Join(words, " ")
}

// partialRatio scores, out of 100, how well term matches the best aligned substring of name, by
// Levenshtein distance. A name shorter than term is compared as a whole.
func partialRatio(term, name string) int {
	short, long := []rune(term), []rune(name)
	if len(short) == 0 {
		if len(long) == 0 {
			return 100
		}
		return 0
	}
	dmp := diffmatchpatch.New()
	if len(long) < len(short) {
		distance := dmp.DiffLevenshtein(dmp.DiffMain(string(short), string(long), false))
		return 100 * (len(short) - distance) / len(short)
	}
	best := 0
	for i := 0; i+len(short) <= len(long); i++ {
		window := string(long[i : i+len(short)])
		distance := dmp.DiffLevenshtein(dmp.DiffMain(string(short), window, false))
		score := 100 * (len(short) - distance) / len(short)
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}
