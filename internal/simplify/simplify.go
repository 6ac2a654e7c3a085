// Package simplify сворачивает дерево контента в плоскую последовательность
// узлов, ограниченных по числу токенов.
package simplify

import (
	"fmt"

	"spiderAgent/internal/tree"
)

// DefaultMinTokens: порог, ниже которого поддерево не разворачивается.
const DefaultMinTokens = 1024

// SimpleNode: плоская единица контента, содержит только markdown.
type SimpleNode struct {
	Markdown string `json:"markdown"`
}

// Counter считает токены в тексте.
type Counter interface {
	Count(text string) (int, error)
}

type frame struct {
	node *tree.Node
	next int
}

// Simplify обходит дерево в глубину слева направо. Потомок с числом токенов
// строго меньше minLen выдается целиком, иначе обход спускается в него.
// Лист выдается всегда, независимо от размера. Дерево не изменяется.
func Simplify(root *tree.Node, counter Counter, minLen int) ([]SimpleNode, error) {
	if root == nil {
		return nil, fmt.Errorf("пустое дерево")
	}
	if root.IsLeaf() {
		return []SimpleNode{{Markdown: root.Markdown}}, nil
	}

	var out []SimpleNode
	stack := []*frame{{node: root}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next >= len(top.node.Children) {
			stack = stack[:len(stack)-1]
			continue
		}

		child := top.node.Children[top.next]
		top.next++

		if child.IsLeaf() {
			out = append(out, SimpleNode{Markdown: child.Markdown})
			continue
		}

		tokens, err := counter.Count(child.Markdown)
		if err != nil {
			return nil, fmt.Errorf("ошибка подсчета токенов узла <%s>: %w", child.Tag, err)
		}
		if tokens < minLen {
			out = append(out, SimpleNode{Markdown: child.Markdown})
			continue
		}

		stack = append(stack, &frame{node: child})
	}

	return out, nil
}

// Markdowns возвращает markdown узлов в исходном порядке.
func Markdowns(nodes []SimpleNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Markdown
	}
	return out
}
