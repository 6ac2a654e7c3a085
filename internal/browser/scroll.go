package browser

import (
	"context"
	"time"

	"github.com/playwright-community/playwright-go"
)

const (
	scrollStep  = 800
	scrollPause = 250 * time.Millisecond
	maxScrolls  = 50
)

// scrollThrough прокручивает страницу до конца, чтобы подгрузился ленивый
// контент, и возвращается наверх. Ошибки прокрутки не критичны.
func scrollThrough(ctx context.Context, page playwright.Page) {
	for i := 0; i < maxScrolls; i++ {
		if ctx.Err() != nil {
			return
		}

		result, err := page.Evaluate(`(step) => {
			window.scrollBy(0, step);
			return window.innerHeight + window.scrollY >= document.body.scrollHeight;
		}`, scrollStep)
		if err != nil {
			return
		}
		time.Sleep(scrollPause)

		if atBottom, ok := result.(bool); ok && atBottom {
			break
		}
	}

	_, _ = page.Evaluate(`() => window.scrollTo(0, 0)`)
}
