package tree

import (
	"bytes"
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"golang.org/x/net/html"
)

// Renderer превращает узел DOM (вместе с потомками) в markdown.
type Renderer interface {
	Render(n *html.Node) (string, error)
}

// MarkdownRenderer рендерит внешнюю разметку узла через html-to-markdown.
type MarkdownRenderer struct {
	converter *md.Converter
}

func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{converter: md.NewConverter("", true, nil)}
}

func (r *MarkdownRenderer) Render(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("ошибка сериализации узла <%s>: %w", n.Data, err)
	}

	markup := strings.TrimSpace(buf.String())
	if markup == "" {
		return "", nil
	}

	out, err := r.converter.ConvertString(markup)
	if err != nil {
		return "", fmt.Errorf("ошибка конвертации в markdown: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// plainText собирает текст поддерева без разметки.
func plainText(n *html.Node) string {
	var sb strings.Builder
	stack := []*html.Node{n}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.Type == html.TextNode {
			sb.WriteString(top.Data)
			continue
		}
		// Потомки кладутся в обратном порядке, чтобы обход шел слева направо.
		for c := top.LastChild; c != nil; c = c.PrevSibling {
			stack = append(stack, c)
		}
	}
	return strings.TrimSpace(sb.String())
}
