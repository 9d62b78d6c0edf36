package prompt_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/Jumpaku/go-drivetree"
	"github.com/Jumpaku/go-drivetree/drivetreetest"
	"github.com/Jumpaku/go-drivetree/prompt"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var candidates = []drivetree.Node{
	{ID: "id001", Name: "report.txt", MimeType: "text/plain", Size: 2048},
	{ID: "id002", Name: "report.txt", MimeType: drivetree.MimeTypeFolder},
}

func TestTerminal_ChooseNode(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"by_id", "id002\n", "id002"},
		{"by_index", "1\n", "id001"},
		{"index_out_of_range", "3\n", "3"},
		{"trimmed", "  id001  \r\n", "id001"},
		{"last_line_without_newline", "id002", "id002"},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			var out bytes.Buffer
			term := prompt.NewTerminal(strings.NewReader(c.input), &out)
			got, err := term.ChooseNode(context.Background(), "/report.txt", candidates, "")
			require.NoError(t, err)
			if got != c.want {
				t.Fatalf("ChooseNode() = %q, want %q", got, c.want)
			}
			assert.Contains(t, out.String(), "id001")
			assert.Contains(t, out.String(), "2.0 kB")
			assert.Contains(t, out.String(), "folder")
		})
	}
}

func TestTerminal_ChooseNodeShowsRejected(t *testing.T) {
	var out bytes.Buffer
	term := prompt.NewTerminal(strings.NewReader("id001\n"), &out)

	_, err := term.ChooseNode(context.Background(), "/report.txt", candidates, "nope")
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"nope" does not name a candidate`)
}

func TestTerminal_ClosedInput(t *testing.T) {
	term := prompt.NewTerminal(strings.NewReader(""), io.Discard)

	_, err := term.ChooseExport(context.Background(), drivetree.Node{Name: "doc"}, []string{".pdf"}, "")
	require.ErrorIs(t, err, io.EOF)
}

func TestTerminal_Confirm(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes", "y\n", true},
		{"yes_word", "YES\n", true},
		{"no", "n\n", false},
		{"empty_declines", "\n", false},
		{"reasks", "maybe\nyes\n", true},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			term := prompt.NewTerminal(strings.NewReader(c.input), io.Discard)
			got, err := term.Confirm(context.Background(), "Create anyway?")
			require.NoError(t, err)
			if got != c.want {
				t.Fatalf("Confirm() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestTerminal_DrivesExportChoice(t *testing.T) {
	remote := drivetreetest.NewRemote()
	remote.AddAppFile("Plan", "application/vnd.google-apps.document", map[string]string{
		"application/pdf": "pdf bytes",
		"text/plain":      "plain text",
	}, drivetreetest.RootID)

	var out bytes.Buffer
	term := prompt.NewTerminal(strings.NewReader("docx\n.txt\n"), &out)
	local := memfs.New()
	require.NoError(t, local.MkdirAll("/home/out", 0o755))
	tree := drivetree.New(remote, local, drivetree.WithPrompter(term))

	err := tree.Pull(context.Background(), drivetree.NewSession("/home"), "/Plan", "/home/out", drivetree.TransferOptions{})
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"docx" is not an offered format`)
	f, err := local.Open("/home/out/Plan.txt")
	require.NoError(t, err)
	defer f.Close()
	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "plain text", string(got))
}

func TestAssumeYes(t *testing.T) {
	p := prompt.AssumeYes(prompt.NewTerminal(strings.NewReader(""), io.Discard))

	ok, err := p.Confirm(context.Background(), "Create anyway?")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = p.ChooseNode(context.Background(), "/x", candidates, "")
	require.ErrorIs(t, err, io.EOF)
}
