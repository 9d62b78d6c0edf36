package drivetree_test

import (
	"context"
	"testing"

	"github.com/Jumpaku/go-drivetree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(nodes []drivetree.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestList(t *testing.T) {
	f := newFixture(t)
	docs := f.remote.AddFolder("docs", root)
	f.remote.AddFile("b.txt", "", docs)
	a := f.remote.AddFile("a.txt", "", docs)
	gone := f.remote.AddFile("c.txt", "", docs)
	f.remote.SetStarred(a, true)
	require.NoError(t, f.remote.Trash(context.Background(), gone))

	cases := []struct {
		name string
		path string
		opts drivetree.ListOptions
		want []string
	}{
		{"live", "/docs", drivetree.ListOptions{}, []string{"a.txt", "b.txt"}},
		{"all", "/docs", drivetree.ListOptions{All: true}, []string{"a.txt", "b.txt", "c.txt"}},
		{"starred", "/docs", drivetree.ListOptions{Starred: true}, []string{"a.txt"}},
		{"file_lists_itself", "/docs/b.txt", drivetree.ListOptions{}, []string{"b.txt"}},
		{"root", "/", drivetree.ListOptions{}, []string{"docs"}},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			got, err := f.tree.List(context.Background(), f.sess, c.path, c.opts)
			require.NoError(t, err)
			if !assert.ObjectsAreEqual(c.want, names(got)) {
				t.Fatalf("List(%q) = %v, want %v", c.path, names(got), c.want)
			}
		})
	}
}

func TestInfo(t *testing.T) {
	f := newFixture(t)
	a := f.remote.AddFolder("a", root)
	b := f.remote.AddFolder("b", root)
	x := f.remote.AddFile("x.txt", "", a, b)
	f.remote.AddGrant(x, drivetree.User("alice@example.com"), drivetree.RoleReader)

	got, err := f.tree.Info(context.Background(), f.sess, "/b/x.txt")
	require.NoError(t, err)
	assert.Equal(t, x, got.Node.ID)
	assert.Equal(t, []drivetree.Path{"/a/x.txt", "/b/x.txt"}, got.Paths)
	require.Len(t, got.Grants, 1)
	assert.Equal(t, "alice@example.com", got.Grants[0].Grantee.Identifier())
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	a := f.remote.AddFolder("a", root)
	b := f.remote.AddFolder("b", root)
	f.remote.AddFile("Quarterly Report.pdf", "", a, b)
	f.remote.AddFile("notes.txt", "", a)
	f.remote.AddFile("report-draft.txt", "", b)
	gone := f.remote.AddFile("old report.txt", "", root)
	require.NoError(t, f.remote.Trash(context.Background(), gone))

	cases := []struct {
		name string
		term string
		opts drivetree.SearchOptions
		want []string
	}{
		{"substring_ignores_case", "REPORT", drivetree.SearchOptions{}, []string{"Quarterly Report.pdf", "report-draft.txt"}},
		{"substring_with_trash", "report", drivetree.SearchOptions{IncludeTrashed: true}, []string{"Quarterly Report.pdf", "old report.txt", "report-draft.txt"}},
		{"glob", "*.txt", drivetree.SearchOptions{Mode: drivetree.SearchGlob}, []string{"notes.txt", "report-draft.txt"}},
		{"fuzzy", "report quartrly", drivetree.SearchOptions{Mode: drivetree.SearchFuzzy}, []string{"Quarterly Report.pdf"}},
		{"no_hits", "zzz", drivetree.SearchOptions{}, []string{}},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			hits, err := f.tree.Search(context.Background(), c.term, c.opts)
			require.NoError(t, err)
			got := []string{}
			for _, h := range hits {
				got = append(got, h.Node.Name)
			}
			assert.Equal(t, c.want, got)
		})
	}
}

func TestSearch_OnePathPerParentChain(t *testing.T) {
	f := newFixture(t)
	a := f.remote.AddFolder("a", root)
	b := f.remote.AddFolder("b", root)
	c := f.remote.AddFolder("c", a, b)
	f.remote.AddFile("deep.txt", "", c)

	hits, err := f.tree.Search(context.Background(), "deep", drivetree.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, []drivetree.Path{"/a/c/deep.txt", "/b/c/deep.txt"}, hits[0].Paths)
}

func TestSearch_InvalidGlob(t *testing.T) {
	f := newFixture(t)

	_, err := f.tree.Search(context.Background(), "[", drivetree.SearchOptions{Mode: drivetree.SearchGlob})
	require.Error(t, err)
}

func TestPartialRatio(t *testing.T) {
	cases := []struct {
		name      string
		term      string
		candidate string
		wantMin   int
		wantMax   int
	}{
		{"exact", "report", "report", 100, 100},
		{"substring", "report", "annual report 2024", 100, 100},
		{"typo", "quartrly report", "pdf quarterly report", 80, 99},
		{"unrelated", "report", "holiday", 0, 50},
		{"short_name", "report", "r", 0, 20},
		{"empty_term", "", "anything", 0, 0},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			got := drivetree.PartialRatio(c.term, c.candidate)
			if got < c.wantMin || got > c.wantMax {
				t.Fatalf("PartialRatio(%q, %q) = %d, want in [%d, %d]", c.term, c.candidate, got, c.wantMin, c.wantMax)
			}
		})
	}
}

func TestTokenSort(t *testing.T) {
	assert.Equal(t, "pdf quarterly report", drivetree.TokenSort("Quarterly Report.pdf"))
	assert.Equal(t, "", drivetree.TokenSort("--"))
}
