package readme

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/naka-gawa/contributor-stats/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	start = "<!-- CONTRIBUTOR_STATS_START -->"
	end   = "<!-- CONTRIBUTOR_STATS_END -->"
)

func newTestUpdater() *Updater {
	return NewUpdater(start, end, Section{Title: "Contributors", Description: "Thanks!"}, log.New(io.Discard, "", 0))
}

func TestUpdater_Block(t *testing.T) {
	u := newTestUpdater()
	expected := start + "\n\n<br>\n\n## Contributors\n\nThanks!\n\n<p>x</p>\n\n" + end
	assert.Equal(t, expected, u.Block("<p>x</p>"))

	bare := NewUpdater(start, end, Section{}, log.New(io.Discard, "", 0))
	assert.Equal(t, start+"\n\n<br>\n\n<p>x</p>\n\n"+end, bare.Block("<p>x</p>"))
}

func TestUpdater_Apply(t *testing.T) {
	u := newTestUpdater()
	block := u.Block("NEW")

	testCases := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "replaces the region between markers",
			content:  "# Title\n\n" + start + "old" + end + "\n\nFooter\n",
			expected: "# Title\n\n" + block + "\n\nFooter\n",
		},
		{
			name:     "replaces a multi-line region",
			content:  "intro\n" + start + "\nline 1\nline 2\n" + end + "\noutro",
			expected: "intro\n" + block + "\noutro",
		},
		{
			name:     "appends when markers are absent",
			content:  "# Title\n",
			expected: "# Title\n\n\n" + block,
		},
		{
			name:     "appends to empty content",
			content:  "",
			expected: "\n\n" + block,
		},
		{
			name:     "appends when markers are out of order",
			content:  end + " then " + start,
			expected: end + " then " + start + "\n\n" + block,
		},
		{
			name:     "replaces every region",
			content:  start + "a" + end + "|" + start + "b" + end,
			expected: block + "|" + block,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, u.Apply(tc.content, "NEW"))
		})
	}

	t.Run("dollar signs survive", func(t *testing.T) {
		got := u.Apply(start+end, "cost $1 ${2}")
		assert.Contains(t, got, "cost $1 ${2}")
	})
}

func TestUpdater_Apply_Idempotent(t *testing.T) {
	u := newTestUpdater()
	for _, content := range []string{"", "# Title\n", "a" + start + "old" + end + "b"} {
		once := u.Apply(content, "markup")
		twice := u.Apply(once, "markup")
		assert.Equal(t, once, twice)
	}
}

func TestUpdater_Update(t *testing.T) {
	u := newTestUpdater()

	t.Run("appends records to a document without markers", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "README.md")
		require.NoError(t, os.WriteFile(path, []byte("# Blog\n"), 0o644))

		require.NoError(t, u.Update(path, domain.Artifact{Markup: "alice\nbob"}))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		content := string(data)
		assert.True(t, strings.HasPrefix(content, "# Blog\n"))
		assert.Less(t, strings.Index(content, start), strings.Index(content, "alice"))
		assert.Less(t, strings.Index(content, "alice"), strings.Index(content, "bob"))
		assert.Less(t, strings.Index(content, "bob"), strings.Index(content, end))
	})

	t.Run("missing document is created", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "README.md")
		require.NoError(t, u.Update(path, domain.Artifact{Markup: "m"}))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "\n\n"+u.Block("m"), string(data))
	})

	t.Run("assets are written before the document", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "README.md")
		asset := filepath.Join(dir, ".github", "assets", "contributors.svg")

		require.NoError(t, u.Update(path, domain.Artifact{
			Markup: "img",
			Assets: []domain.Asset{{Path: asset, Content: []byte("<svg/>")}},
		}))
		data, err := os.ReadFile(asset)
		require.NoError(t, err)
		assert.Equal(t, "<svg/>", string(data))
	})

	t.Run("read errors propagate", func(t *testing.T) {
		dir := t.TempDir()
		// A directory cannot be read as a file.
		err := u.Update(dir, domain.Artifact{Markup: "m"})
		assert.Error(t, err)
	})
}
