// Package tree строит иерархическое дерево контента из HTML-разметки.
// Каждый узел хранит markdown-представление своего поддерева.
package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// TextTag помечает узел, полученный из текстового фрагмента без тега.
const TextTag = "text"

// Node: элемент разметки или текстовый фрагмент.
// После построения не изменяется.
type Node struct {
	Tag        string               `json:"tag"`
	Text       string               `json:"text"`
	Attributes map[string]AttrValue `json:"attributes"`
	Markdown   string               `json:"markdown"`
	Children   []*Node              `json:"children"`
}

func newNode(tag, text string) *Node {
	return &Node{
		Tag:        tag,
		Text:       strings.TrimSpace(text),
		Attributes: map[string]AttrValue{},
		Children:   []*Node{},
	}
}

func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Size возвращает количество узлов в поддереве, включая сам узел.
func (n *Node) Size() int {
	if n == nil {
		return 0
	}
	count := 0
	stack := []*Node{n}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		stack = append(stack, top.Children...)
	}
	return count
}

type AttrKind uint8

const (
	AttrString AttrKind = iota
	AttrList
	AttrMap
)

func (k AttrKind) String() string {
	switch k {
	case AttrString:
		return "string"
	case AttrList:
		return "list"
	case AttrMap:
		return "map"
	default:
		return "unknown"
	}
}

// AttrValue: значение атрибута: строка, список строк или вложенное отображение.
type AttrValue struct {
	kind AttrKind
	str  string
	list []string
	dict map[string]string
}

func StringAttr(s string) AttrValue {
	return AttrValue{kind: AttrString, str: s}
}

func ListAttr(items ...string) AttrValue {
	if items == nil {
		items = []string{}
	}
	return AttrValue{kind: AttrList, list: items}
}

func MapAttr(m map[string]string) AttrValue {
	if m == nil {
		m = map[string]string{}
	}
	return AttrValue{kind: AttrMap, dict: m}
}

func (a AttrValue) Kind() AttrKind {
	return a.kind
}

func (a AttrValue) Items() []string {
	return a.list
}

func (a AttrValue) Map() map[string]string {
	return a.dict
}

// String возвращает значение в том виде, в каком оно записалось бы в разметку.
func (a AttrValue) String() string {
	switch a.kind {
	case AttrList:
		return strings.Join(a.list, " ")
	case AttrMap:
		keys := make([]string, 0, len(a.dict))
		for k := range a.dict {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+a.dict[k])
		}
		return strings.Join(parts, "; ")
	default:
		return a.str
	}
}

func (a AttrValue) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case AttrList:
		return json.Marshal(a.list)
	case AttrMap:
		return json.Marshal(a.dict)
	default:
		return json.Marshal(a.str)
	}
}

func (a *AttrValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("пустое значение атрибута")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = StringAttr(s)
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*a = ListAttr(items...)
	case '{':
		var m map[string]string
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*a = MapAttr(m)
	default:
		return fmt.Errorf("неподдерживаемое значение атрибута: %s", data)
	}
	return nil
}
