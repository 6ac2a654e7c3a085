// Package sanitizer маскирует секреты и персональные данные в промптах и
// ответах LLM перед тем, как они попадают в журнал запросов.
package sanitizer

// Rule: одно правило маскирования.
type Rule interface {
	Sanitize(text string) string
}

type DataSanitizer struct {
	rules []Rule
}

// New возвращает санитайзер со стандартным набором правил. Порядок важен:
// именованные секреты маскируются раньше общих шаблонов.
func New() *DataSanitizer {
	return &DataSanitizer{
		rules: []Rule{
			passwordRule,
			tokenRule,
			apiKeyRule,
			cookieRule,
			cardRule,
			emailRule,
			phoneRule,
		},
	}
}

// NewWithRules собирает санитайзер из произвольного набора правил.
func NewWithRules(rules ...Rule) *DataSanitizer {
	return &DataSanitizer{rules: rules}
}

func (s *DataSanitizer) Sanitize(text string) string {
	if text == "" {
		return text
	}

	result := text
	for _, rule := range s.rules {
		result = rule.Sanitize(result)
	}

	return result
}
