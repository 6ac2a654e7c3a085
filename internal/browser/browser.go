package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

type PlaywrightFetcher struct {
	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	cfg     Config
	log     *zap.Logger
}

// New не запускает браузер: запуск происходит при первой загрузке.
func New(cfg Config, log *zap.Logger) (*PlaywrightFetcher, error) {
	cfg = cfg.withDefaults()
	if cfg.Engine != EngineChromium && cfg.Engine != EngineFirefox {
		return nil, fmt.Errorf("неизвестный движок браузера: %s", cfg.Engine)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PlaywrightFetcher{
		cfg: cfg,
		log: log.With(zap.String("component", "browser")),
	}, nil
}

func (f *PlaywrightFetcher) getBrowserArgs() []string {
	if f.cfg.Engine == EngineChromium {
		return []string{"--no-sandbox"}
	}
	return nil
}

func (f *PlaywrightFetcher) getEnvMap() map[string]string {
	if f.cfg.Display != "" {
		return map[string]string{
			"DISPLAY": f.cfg.Display,
		}
	}
	return nil
}

func (f *PlaywrightFetcher) launch() (playwright.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil {
		return f.browser, nil
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("ошибка запуска playwright: %w", err)
	}

	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(f.cfg.Headless),
		Args:     f.getBrowserArgs(),
	}
	if env := f.getEnvMap(); env != nil {
		opts.Env = env
	}

	engine := pw.Chromium
	if f.cfg.Engine == EngineFirefox {
		engine = pw.Firefox
	}

	browser, err := engine.Launch(opts)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("ошибка запуска %s: %w", f.cfg.Engine, err)
	}

	f.pw = pw
	f.browser = browser
	f.log.Info("Браузер запущен", zap.String("engine", f.cfg.Engine), zap.Bool("headless", f.cfg.Headless))
	return browser, nil
}

// Fetch открывает адрес в новой вкладке, дожидается простоя сети,
// прокручивает страницу для ленивой подгрузки и снимает артефакты.
func (f *PlaywrightFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	browser, err := f.launch()
	if err != nil {
		return nil, err
	}

	page, err := browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("ошибка создания вкладки: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			f.log.Warn("Ошибка закрытия вкладки", zap.Error(err))
		}
	}()
	page.SetDefaultTimeout(float64(f.cfg.Timeout.Milliseconds()))

	if err := f.navigate(ctx, page, url); err != nil {
		return nil, err
	}

	scrollThrough(ctx, page)
	dismissOverlays(page)

	result := &Page{URL: page.URL()}

	if result.Title, err = page.Title(); err != nil {
		f.log.Warn("Не удалось получить заголовок", zap.Error(err))
	}

	if result.HTML, err = page.Content(); err != nil {
		return nil, fmt.Errorf("ошибка получения html: %w", err)
	}

	if !f.cfg.SkipScreenshot {
		result.Screenshot, err = page.Screenshot(playwright.PageScreenshotOptions{
			FullPage: playwright.Bool(true),
		})
		if err != nil {
			f.log.Warn("Не удалось сделать скриншот", zap.Error(err))
		}
	}

	if !f.cfg.SkipPDF && f.cfg.Engine == EngineChromium {
		result.PDF, err = page.PDF(playwright.PagePdfOptions{
			PrintBackground: playwright.Bool(true),
		})
		if err != nil {
			f.log.Warn("Не удалось сохранить PDF", zap.Error(err))
		}
	}

	return result, nil
}

func (f *PlaywrightFetcher) navigate(ctx context.Context, page playwright.Page, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, f.cfg.NavigateTimeout)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		_, err := page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateNetworkidle,
			Timeout:   playwright.Float(float64(f.cfg.NavigateTimeout.Milliseconds())),
		})
		errChan <- err
	}()

	select {
	case <-navCtx.Done():
		return fmt.Errorf("таймаут загрузки %s после %v", url, f.cfg.NavigateTimeout)
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("ошибка загрузки %s: %w", url, err)
		}
	}
	return nil
}

func (f *PlaywrightFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil {
		if err := f.browser.Close(); err != nil {
			return err
		}
		f.browser = nil
	}
	if f.pw != nil {
		err := f.pw.Stop()
		f.pw = nil
		return err
	}
	return nil
}
