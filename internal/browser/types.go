// Package browser загружает страницы через Playwright и отдает итоговый
// HTML, скриншот и PDF.
package browser

import (
	"context"
	"time"
)

const (
	EngineChromium = "chromium"
	EngineFirefox  = "firefox"
)

// Fetcher загружает страницу по адресу.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
	Close() error
}

// Page: результат загрузки. PDF есть только у chromium.
type Page struct {
	URL        string
	Title      string
	HTML       string
	Screenshot []byte
	PDF        []byte
}

type Config struct {
	Engine          string
	Headless        bool
	Display         string
	Timeout         time.Duration
	NavigateTimeout time.Duration
	// SkipScreenshot и SkipPDF отключают тяжелые артефакты.
	SkipScreenshot bool
	SkipPDF        bool
}

func (c Config) withDefaults() Config {
	if c.Engine == "" {
		c.Engine = EngineChromium
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.NavigateTimeout == 0 {
		c.NavigateTimeout = 60 * time.Second
	}
	return c
}
