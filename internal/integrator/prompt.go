package integrator

import (
	"fmt"
	"strings"

	"spiderAgent/internal/llm"
	"spiderAgent/internal/simplify"
)

// SystemPrompt требует дословного извлечения основного содержимого.
const SystemPrompt = `Ты извлекаешь основное содержимое веб-страницы.
Тебе передаются фрагменты страницы в формате markdown, пронумерованные по порядку.
Верни основной текст этих фрагментов дословно, в исходном порядке, одним markdown-документом.
Удали навигацию, рекламу, кнопки, подвалы и прочие служебные элементы.
Ничего не перефразируй, не сокращай и не дополняй.
Не добавляй комментариев, пояснений, заголовков от себя и номеров фрагментов.`

const (
	unitPrefixFormat = "Узел %d:\n"
	unitSeparator    = "\n\n---разделитель узлов---\n\n"
)

// format: оформление узлов в пользовательском сообщении.
type format struct {
	prefix    string
	separator string
}

var defaultFormat = format{prefix: unitPrefixFormat, separator: unitSeparator}

func (f format) unitPrefix(ordinal int) string {
	return fmt.Sprintf(f.prefix, ordinal)
}

// userMessage нумерует узлы с единицы и склеивает их через разделитель.
func (f format) userMessage(nodes []simplify.SimpleNode) string {
	var sb strings.Builder
	for i, n := range nodes {
		if i > 0 {
			sb.WriteString(f.separator)
		}
		sb.WriteString(f.unitPrefix(i + 1))
		sb.WriteString(n.Markdown)
	}
	return sb.String()
}

func (f format) messages(system string, nodes []simplify.SimpleNode) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: f.userMessage(nodes)},
	}
}
