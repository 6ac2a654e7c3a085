package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"spiderAgent/internal/pipeline"
	"spiderAgent/internal/simplify"
	"spiderAgent/internal/tree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveDigest(t *testing.T) {
	dir := t.TempDir()
	root, err := tree.NewBuilder(nil, nil).BuildString(`<h1>Title</h1><p>a &amp; <b>b</b></p>`)
	require.NoError(t, err)

	var notified []string
	s := NewStore(func(p string) { notified = append(notified, p) }, nil)

	res := &pipeline.Result{
		Tree:       root,
		Simplified: []simplify.SimpleNode{{Markdown: "# Title"}, {Markdown: "a & **b**"}},
		Integrated: []simplify.SimpleNode{{Markdown: "# Title\n\na & **b**"}},
	}
	written, err := s.SaveDigest(dir, "page", res)
	require.NoError(t, err)

	want := []string{
		filepath.Join(dir, "page.json"),
		filepath.Join(dir, "simple_page.json"),
		filepath.Join(dir, "fit_page.json"),
		filepath.Join(dir, "fit_page.md"),
		filepath.Join(dir, "fit_page.html"),
	}
	assert.Equal(t, want, written)
	assert.Equal(t, want, notified)

	data, err := os.ReadFile(filepath.Join(dir, "simple_page.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"a & **b**"`)

	var simple []simplify.SimpleNode
	require.NoError(t, json.Unmarshal(data, &simple))
	assert.Equal(t, res.Simplified, simple)

	fit, err := os.ReadFile(filepath.Join(dir, "fit_page.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\na & **b**", string(fit))

	page, err := os.ReadFile(filepath.Join(dir, "fit_page.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "<h1>Title</h1>")
	assert.Contains(t, string(page), "<strong>b</strong>")
}

func TestSaveDigestTreeOnly(t *testing.T) {
	dir := t.TempDir()
	root, err := tree.NewBuilder(nil, nil).BuildString(`<p>x</p>`)
	require.NoError(t, err)

	written, err := NewStore(nil, nil).SaveDigest(dir, "only", &pipeline.Result{Tree: root})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "only.json")}, written)
}

func TestSaveDigestWithoutTree(t *testing.T) {
	_, err := NewStore(nil, nil).SaveDigest(t.TempDir(), "x", &pipeline.Result{})
	assert.Error(t, err)
}

func TestSaveRawSkipsEmpty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	written, err := NewStore(nil, nil).SaveRaw(dir, "site", "<html></html>", []byte{0x89, 'P', 'N', 'G'}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "site.html"),
		filepath.Join(dir, "site.png"),
	}, written)

	data, err := os.ReadFile(filepath.Join(dir, "site.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))
}

const article = `<html><body>
<h1>Site</h1>
<h2> First section </h2>
<p>Intro <b>text</b>.</p>
<a href="/one">one</a><a href="/two">two</a>
<h2>Second section</h2>
</body></html>`

func TestSavePage(t *testing.T) {
	dir := t.TempDir()

	written, err := NewStore(nil, nil).SavePage(dir, "site", article)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "raw_site.md"),
		filepath.Join(dir, "extract_site.json"),
	}, written)

	raw, err := os.ReadFile(filepath.Join(dir, "raw_site.md"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "# Site")
	assert.Contains(t, string(raw), "**text**")
	assert.Contains(t, string(raw), "[one](/one)")

	data, err := os.ReadFile(filepath.Join(dir, "extract_site.json"))
	require.NoError(t, err)
	var items []map[string]string
	require.NoError(t, json.Unmarshal(data, &items))
	assert.Equal(t, []map[string]string{{
		"title": "First section",
		"link":  "/one",
		"p":     "Intro text.",
	}}, items)
}

func TestExtractSkipsMissingFields(t *testing.T) {
	items, err := Extract(`<p>only text</p>`, PageSchema)
	require.NoError(t, err)
	assert.Equal(t, []map[string]string{{"p": "only text"}}, items)

	items, err = Extract(`<div></div>`, PageSchema)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
}
