package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// blockedPatterns: админ-панели и системные страницы, которые не загружаются.
var blockedPatterns = []string{
	"/admin",
	"/administrator",
	"/wp-admin",
	"/phpmyadmin",
	"/cpanel",
}

// CheckURL разрешает только http(s)-адреса с хостом и вне системных разделов.
func CheckURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("некорректный URL %q: %w", rawURL, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("неподдерживаемая схема %q, ожидается http или https", u.Scheme)
	}

	if u.Hostname() == "" {
		return fmt.Errorf("в URL %q нет хоста", rawURL)
	}

	path := strings.ToLower(u.Path)
	for _, pattern := range blockedPatterns {
		if path == pattern || strings.HasPrefix(path, pattern+"/") {
			return fmt.Errorf("URL заблокирован: системный раздел %s", pattern)
		}
	}
	return nil
}
