// Package output сохраняет артефакты обработки страницы на диск.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"spiderAgent/internal/pipeline"
	"spiderAgent/internal/simplify"

	htmlmd "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
)

// Notify вызывается для каждого записанного файла.
type Notify func(path string)

type Store struct {
	md        goldmark.Markdown
	converter *htmlmd.Converter
	notify    Notify
	log       *zap.Logger
}

func NewStore(notify Notify, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		md:        goldmark.New(goldmark.WithExtensions(extension.GFM)),
		converter: htmlmd.NewConverter("", true, nil),
		notify:    notify,
		log:       log.With(zap.String("component", "output")),
	}
}

// SaveDigest пишет дерево (<name>.json), упрощенные узлы (simple_<name>.json),
// интегрированные узлы (fit_<name>.json), их markdown (fit_<name>.md) и
// HTML-превью (fit_<name>.html). Отсутствующие этапы пропускаются.
func (s *Store) SaveDigest(dir, name string, res *pipeline.Result) ([]string, error) {
	if res == nil || res.Tree == nil {
		return nil, fmt.Errorf("нет результата для сохранения")
	}
	w, err := s.writer(dir)
	if err != nil {
		return nil, err
	}

	treeJSON, err := marshal(res.Tree)
	if err != nil {
		return w.written, err
	}
	if err := w.write(name+".json", treeJSON); err != nil {
		return w.written, err
	}

	if res.Simplified != nil {
		data, err := marshal(res.Simplified)
		if err != nil {
			return w.written, err
		}
		if err := w.write("simple_"+name+".json", data); err != nil {
			return w.written, err
		}
	}

	if res.Integrated != nil {
		data, err := marshal(res.Integrated)
		if err != nil {
			return w.written, err
		}
		if err := w.write("fit_"+name+".json", data); err != nil {
			return w.written, err
		}

		source := strings.Join(simplify.Markdowns(res.Integrated), "\n\n")
		if err := w.write("fit_"+name+".md", []byte(source)); err != nil {
			return w.written, err
		}

		page, err := s.renderHTML(name, source)
		if err != nil {
			return w.written, err
		}
		if err := w.write("fit_"+name+".html", page); err != nil {
			return w.written, err
		}
	}

	return w.written, nil
}

// SavePage пишет markdown всей страницы (raw_<name>.md) и извлечение по
// PageSchema (extract_<name>.json). Ошибка конвертации или разбора
// пропускает только свой файл.
func (s *Store) SavePage(dir, name, markup string) ([]string, error) {
	w, err := s.writer(dir)
	if err != nil {
		return nil, err
	}

	if text, err := s.converter.ConvertString(markup); err != nil {
		s.log.Warn("Ошибка конвертации страницы в markdown", zap.String("name", name), zap.Error(err))
	} else if err := w.write("raw_"+name+".md", []byte(strings.TrimSpace(text))); err != nil {
		return w.written, err
	}

	items, err := Extract(markup, PageSchema)
	if err != nil {
		s.log.Warn("Ошибка извлечения полей страницы", zap.String("name", name), zap.Error(err))
		return w.written, nil
	}
	data, err := marshal(items)
	if err != nil {
		return w.written, err
	}
	if err := w.write("extract_"+name+".json", data); err != nil {
		return w.written, err
	}

	return w.written, nil
}

// SaveRaw пишет исходный HTML, скриншот и PDF. Пустые данные не пишутся.
func (s *Store) SaveRaw(dir, name, markup string, screenshot, pdf []byte) ([]string, error) {
	w, err := s.writer(dir)
	if err != nil {
		return nil, err
	}

	files := []struct {
		ext  string
		data []byte
	}{
		{".html", []byte(markup)},
		{".png", screenshot},
		{".pdf", pdf},
	}
	for _, f := range files {
		if len(f.data) == 0 {
			continue
		}
		if err := w.write(name+f.ext, f.data); err != nil {
			return w.written, err
		}
	}
	return w.written, nil
}

type fileWriter struct {
	store   *Store
	dir     string
	written []string
}

func (s *Store) writer(dir string) (*fileWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога %s: %w", dir, err)
	}
	return &fileWriter{store: s, dir: dir}, nil
}

func (w *fileWriter) write(file string, data []byte) error {
	path := filepath.Join(w.dir, file)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("ошибка записи %s: %w", path, err)
	}
	w.written = append(w.written, path)
	w.store.log.Debug("Файл сохранен", zap.String("path", path))
	if w.store.notify != nil {
		w.store.notify(path)
	}
	return nil
}

func (s *Store) renderHTML(title, source string) ([]byte, error) {
	var body bytes.Buffer
	if err := s.md.Convert([]byte(source), &body); err != nil {
		return nil, fmt.Errorf("ошибка рендеринга markdown: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n",
		html.EscapeString(title))
	buf.Write(body.Bytes())
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("ошибка сериализации json: %w", err)
	}
	return buf.Bytes(), nil
}
