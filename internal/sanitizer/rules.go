package sanitizer

import "regexp"

// PatternRule заменяет все совпадения шаблонов на Replacement.
// В Replacement допустимы ссылки на группы (${1}).
type PatternRule struct {
	Patterns    []*regexp.Regexp
	Replacement string
}

func (r *PatternRule) Sanitize(text string) string {
	for _, pattern := range r.Patterns {
		text = pattern.ReplaceAllString(text, r.Replacement)
	}
	return text
}

var passwordRule = &PatternRule{
	Patterns: []*regexp.Regexp{
		regexp.MustCompile(`(?i)(password|passwd|pwd|пароль)\s*[:=]\s*["']?[^"'\s]{3,}["']?`),
		regexp.MustCompile(`(?i)(<input[^>]*type=["']password["'][^>]*value=)["'][^"']+["']`),
	},
	Replacement: `${1}: [FILTERED]`,
}

var tokenRule = &PatternRule{
	Patterns: []*regexp.Regexp{
		regexp.MustCompile(`(?i)(token|токен)\s*[:=]\s*["']?[a-zA-Z0-9_-]{20,}["']?`),
		regexp.MustCompile(`(?i)(bearer\s+)[a-zA-Z0-9._-]{20,}`),
		regexp.MustCompile(`(sk-)[a-zA-Z0-9_-]{32,}`),
		regexp.MustCompile(`(pk_)[a-zA-Z0-9]{32,}`),
	},
	Replacement: `${1}[FILTERED]`,
}

var apiKeyRule = &PatternRule{
	Patterns: []*regexp.Regexp{
		regexp.MustCompile(`(?i)(api[_-]?key|api[_-]?secret|secret[_-]?key|access[_-]?key)\s*[:=]\s*["']?[a-zA-Z0-9_-]{20,}["']?`),
	},
	Replacement: `${1}: [FILTERED]`,
}

var cookieRule = &PatternRule{
	Patterns: []*regexp.Regexp{
		regexp.MustCompile(`(?i)((?:set-)?cookie\s*[:=]\s*)["']?[^"'\n]{10,}["']?`),
		regexp.MustCompile(`(?i)(session[_-]?(?:id|token)\s*[:=]\s*)["']?[a-zA-Z0-9_-]{10,}["']?`),
	},
	Replacement: `${1}[FILTERED]`,
}

var cardRule = &PatternRule{
	Patterns: []*regexp.Regexp{
		regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`),
		regexp.MustCompile(`(?i)\b(cvv2?|cvc2?)\s*[:=]\s*["']?\d{3,4}["']?`),
	},
	Replacement: `[FILTERED_CARD]`,
}

var emailRule = &PatternRule{
	Patterns: []*regexp.Regexp{
		regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`),
	},
	Replacement: `[FILTERED_EMAIL]`,
}

// Номера телефонов маскируются только с явной подписью: в тексте страниц
// слишком много чисел, похожих на телефон.
var phoneRule = &PatternRule{
	Patterns: []*regexp.Regexp{
		regexp.MustCompile(`(?i)(phone|tel|телефон|тел\.?)(\s*[:=]\s*)["']?[+\d\s\-()]{7,}["']?`),
	},
	Replacement: `${1}${2}[FILTERED_PHONE]`,
}
