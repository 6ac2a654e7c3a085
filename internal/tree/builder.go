package tree

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// DocumentTag: тег корня, когда в разметке нет <body>.
const DocumentTag = "[document]"

// multiValued: атрибуты, значения которых разбиваются на список по пробелам.
var multiValued = map[string]bool{
	"class":          true,
	"rel":            true,
	"rev":            true,
	"headers":        true,
	"accesskey":      true,
	"accept-charset": true,
	"dropzone":       true,
}

type Builder struct {
	renderer Renderer
	log      *zap.Logger
}

func NewBuilder(renderer Renderer, log *zap.Logger) *Builder {
	if renderer == nil {
		renderer = NewMarkdownRenderer()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{renderer: renderer, log: log}
}

// BuildString разбирает разметку и строит дерево от <body>.
// Пустой ввод дает корень без потомков.
func (b *Builder) BuildString(markup string) (*Node, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора html: %w", err)
	}

	if body := findBody(doc); body != nil {
		return b.BuildNode(body), nil
	}
	return b.BuildNode(doc), nil
}

// frame: кадр явного стека обхода: исходный узел DOM, построенный узел
// и следующий непросмотренный потомок.
type frame struct {
	src  *html.Node
	dst  *Node
	next *html.Node
}

// BuildNode строит дерево из уже разобранного DOM. Обход итеративный,
// поэтому глубина вложенности ограничена только памятью.
func (b *Builder) BuildNode(root *html.Node) *Node {
	if root == nil {
		return newNode(DocumentTag, "")
	}

	switch root.Type {
	case html.TextNode:
		return b.textNode(root)
	case html.ElementNode, html.DocumentNode:
	default:
		return newNode(DocumentTag, "")
	}

	out := b.elementNode(root)
	stack := []*frame{{src: root, dst: out, next: root.FirstChild}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if top.next == nil {
			// Все потомки готовы, можно рендерить сам узел.
			top.dst.Text = directText(top.src, top.dst)
			top.dst.Markdown = b.render(top.src)
			stack = stack[:len(stack)-1]
			continue
		}

		child := top.next
		top.next = child.NextSibling

		switch child.Type {
		case html.TextNode:
			if strings.TrimSpace(child.Data) == "" {
				continue
			}
			top.dst.Children = append(top.dst.Children, b.textNode(child))
		case html.ElementNode:
			node := b.elementNode(child)
			top.dst.Children = append(top.dst.Children, node)
			stack = append(stack, &frame{src: child, dst: node, next: child.FirstChild})
		}
	}

	return out
}

func (b *Builder) elementNode(n *html.Node) *Node {
	tag := n.Data
	if n.Type == html.DocumentNode {
		tag = DocumentTag
	}

	node := newNode(tag, "")
	for _, attr := range n.Attr {
		if multiValued[attr.Key] {
			node.Attributes[attr.Key] = ListAttr(strings.Fields(attr.Val)...)
		} else {
			node.Attributes[attr.Key] = StringAttr(attr.Val)
		}
	}
	return node
}

func (b *Builder) textNode(n *html.Node) *Node {
	node := newNode(TextTag, n.Data)
	node.Markdown = b.render(n)
	return node
}

// render не прерывает построение дерева: при ошибке узел получает
// обычный текст своего поддерева.
func (b *Builder) render(n *html.Node) string {
	out, err := b.renderer.Render(n)
	if err != nil {
		b.log.Warn("Ошибка рендеринга поддерева, используется текст",
			zap.String("component", "tree"),
			zap.String("tag", n.Data),
			zap.Error(err),
		)
		return plainText(n)
	}
	return out
}

// directText повторяет семантику .string из BeautifulSoup: текст есть,
// только если у элемента ровно один потомок по всей цепочке. Потомки
// к этому моменту уже построены, поэтому берется готовый текст
// единственного дочернего элемента.
func directText(src *html.Node, dst *Node) string {
	c := src.FirstChild
	if c == nil || c.NextSibling != nil {
		return ""
	}
	switch c.Type {
	case html.TextNode:
		return strings.TrimSpace(c.Data)
	case html.ElementNode:
		if len(dst.Children) == 1 {
			return dst.Children[0].Text
		}
	}
	return ""
}

func findBody(doc *html.Node) *html.Node {
	stack := []*html.Node{doc}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.Type == html.ElementNode && top.Data == "body" {
			return top
		}
		for c := top.LastChild; c != nil; c = c.PrevSibling {
			stack = append(stack, c)
		}
	}
	return nil
}
