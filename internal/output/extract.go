package output

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Field: одно поле извлечения. Без Attribute берется текст элемента.
type Field struct {
	Name      string `json:"name"`
	Selector  string `json:"selector"`
	Attribute string `json:"attribute,omitempty"`
}

// Schema описывает извлечение по CSS-селекторам: для каждого элемента Base
// берется первое совпадение каждого поля.
type Schema struct {
	Base   string  `json:"base"`
	Fields []Field `json:"fields"`
}

// PageSchema: заголовок h2, ссылка и абзац страницы.
var PageSchema = Schema{
	Base: "body",
	Fields: []Field{
		{Name: "title", Selector: "h2"},
		{Name: "link", Selector: "a", Attribute: "href"},
		{Name: "p", Selector: "p"},
	},
}

// Extract возвращает по объекту на каждый базовый элемент. Элементы, в
// которых не нашлось ни одного поля, пропускаются.
func Extract(markup string, schema Schema) ([]map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора html: %w", err)
	}

	items := []map[string]string{}
	doc.Find(schema.Base).Each(func(_ int, base *goquery.Selection) {
		item := map[string]string{}
		for _, f := range schema.Fields {
			sel := base.Find(f.Selector).First()
			if sel.Length() == 0 {
				continue
			}
			if f.Attribute == "" {
				item[f.Name] = strings.TrimSpace(sel.Text())
				continue
			}
			if v, ok := sel.Attr(f.Attribute); ok {
				item[f.Name] = v
			}
		}
		if len(item) > 0 {
			items = append(items, item)
		}
	})
	return items, nil
}
