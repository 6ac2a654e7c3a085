package tree

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

type tagRenderer struct {
	fail string
}

func (r tagRenderer) Render(n *html.Node) (string, error) {
	if r.fail != "" && n.Data == r.fail {
		return "", errors.New("render failed")
	}
	if n.Type == html.TextNode {
		return n.Data, nil
	}
	return "<" + n.Data + ">", nil
}

func TestBuildEmptyMarkup(t *testing.T) {
	b := NewBuilder(nil, nil)

	root, err := b.BuildString("")
	require.NoError(t, err)
	assert.Equal(t, "body", root.Tag)
	assert.Empty(t, root.Children)
	assert.Equal(t, "", root.Markdown)
}

func TestBuildKeepsDocumentOrder(t *testing.T) {
	b := NewBuilder(nil, nil)

	root, err := b.BuildString(`<h1>Title</h1><p>Hello <b>world</b> again</p>`)
	require.NoError(t, err)

	require.Len(t, root.Children, 2)
	h1, p := root.Children[0], root.Children[1]

	assert.Equal(t, "h1", h1.Tag)
	assert.Equal(t, "Title", h1.Text)
	assert.Contains(t, h1.Markdown, "Title")

	assert.Equal(t, "p", p.Tag)
	assert.Equal(t, "", p.Text, "у смешанного содержимого нет прямой строки")
	require.Len(t, p.Children, 3)
	assert.Equal(t, TextTag, p.Children[0].Tag)
	assert.Equal(t, "Hello", p.Children[0].Text)
	assert.Equal(t, "b", p.Children[1].Tag)
	assert.Equal(t, "world", p.Children[1].Text)
	assert.Equal(t, "again", p.Children[2].Text)

	assert.Contains(t, p.Markdown, "**world**")
	assert.Contains(t, root.Markdown, "Title")
	assert.Contains(t, root.Markdown, "again")
}

func TestBuildAttributes(t *testing.T) {
	b := NewBuilder(tagRenderer{}, nil)

	root, err := b.BuildString(`<div class="card  wide" id="main" rel="nofollow"></div>`)
	require.NoError(t, err)
	require.Len(t, root.Children, 1)

	attrs := root.Children[0].Attributes
	assert.Equal(t, AttrList, attrs["class"].Kind())
	assert.Equal(t, []string{"card", "wide"}, attrs["class"].Items())
	assert.Equal(t, AttrString, attrs["id"].Kind())
	assert.Equal(t, "main", attrs["id"].String())
	assert.Equal(t, []string{"nofollow"}, attrs["rel"].Items())
}

func TestBuildRenderFailureFallsBackToText(t *testing.T) {
	b := NewBuilder(tagRenderer{fail: "b"}, nil)

	root, err := b.BuildString(`<p>one <b>two <i>three</i></b></p>`)
	require.NoError(t, err)

	p := root.Children[0]
	bold := p.Children[1]
	assert.Equal(t, "two three", bold.Markdown)
	assert.Equal(t, "<p>", p.Markdown)
}

func TestBuildDeepNestingWithoutRecursion(t *testing.T) {
	const depth = 100000

	root := &html.Node{Type: html.ElementNode, Data: "div"}
	cur := root
	for i := 0; i < depth; i++ {
		child := &html.Node{Type: html.ElementNode, Data: "div"}
		cur.AppendChild(child)
		cur = child
	}
	cur.AppendChild(&html.Node{Type: html.TextNode, Data: "leaf"})

	out := NewBuilder(tagRenderer{}, nil).BuildNode(root)

	assert.Equal(t, depth+2, out.Size())
	assert.Equal(t, "leaf", out.Text, "строка единственного потомка поднимается по всей цепочке")
	n := out
	for !n.IsLeaf() {
		n = n.Children[0]
	}
	assert.Equal(t, TextTag, n.Tag)
	assert.Equal(t, "leaf", n.Markdown)
}

func TestBuildDirectTextThroughSingleChildChain(t *testing.T) {
	b := NewBuilder(tagRenderer{}, nil)
	root, err := b.BuildString(`<div><section><b> deep </b></section></div><p><i>a</i><i>b</i></p>`)
	require.NoError(t, err)
	require.Len(t, root.Children, 2)

	div := root.Children[0]
	assert.Equal(t, "deep", div.Text)
	assert.Equal(t, "deep", div.Children[0].Text)

	p := root.Children[1]
	assert.Equal(t, "", p.Text)
	assert.Equal(t, "a", p.Children[0].Text)
	assert.Equal(t, "", root.Text)
}

func TestNodeJSONShape(t *testing.T) {
	b := NewBuilder(tagRenderer{}, nil)
	root, err := b.BuildString(`<span class="x y">hi</span>`)
	require.NoError(t, err)

	data, err := json.Marshal(root.Children[0])
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "span", raw["tag"])
	assert.Equal(t, "hi", raw["text"])
	assert.Equal(t, "<span>", raw["markdown"])
	assert.Equal(t, []any{"x", "y"}, raw["attributes"].(map[string]any)["class"])
	assert.Len(t, raw["children"], 1)

	leaf, err := json.Marshal(root.Children[0].Children[0])
	require.NoError(t, err)
	assert.Contains(t, string(leaf), `"children":[]`)
	assert.Contains(t, string(leaf), `"attributes":{}`)
}

func TestAttrValueJSON(t *testing.T) {
	in := map[string]AttrValue{
		"id":    StringAttr("a"),
		"class": ListAttr("b", "c"),
		"style": MapAttr(map[string]string{"color": "red"}),
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out map[string]AttrValue
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, AttrString, out["id"].Kind())
	assert.Equal(t, "a", out["id"].String())
	assert.Equal(t, []string{"b", "c"}, out["class"].Items())
	assert.Equal(t, AttrMap, out["style"].Kind())
	assert.Equal(t, "color: red", out["style"].String())

	var bad AttrValue
	assert.Error(t, json.Unmarshal([]byte(`42`), &bad))
}
