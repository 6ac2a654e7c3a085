package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

var closeSelectors = []string{
	"[role='dialog'] button[aria-label*='close' i]",
	"[role='dialog'] button[aria-label*='закрыть' i]",
	".modal button.close",
	".popup button.close",
	"[data-dismiss='modal']",
	".close-button",
	"[aria-label='Close']",
	"[aria-label='Закрыть']",
	"#onetrust-accept-btn-handler",
	"button:has-text('Accept all')",
	"button:has-text('Принять')",
}

// dismissOverlays закрывает видимые попапы и баннеры cookies, чтобы они не
// попали на скриншот и в контент.
func dismissOverlays(page playwright.Page) {
	for _, selector := range closeSelectors {
		elements, err := page.QuerySelectorAll(selector)
		if err != nil {
			continue
		}

		for _, element := range elements {
			visible, err := element.IsVisible()
			if err != nil || !visible {
				continue
			}
			if err := element.Click(); err == nil {
				time.Sleep(300 * time.Millisecond)
			}
		}
	}
}
