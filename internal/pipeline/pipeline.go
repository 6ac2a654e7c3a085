// Package pipeline проводит один документ через все этапы:
// разметка -> дерево -> упрощенные узлы -> интегрированные узлы.
package pipeline

import (
	"context"
	"fmt"

	"spiderAgent/internal/integrator"
	"spiderAgent/internal/simplify"
	"spiderAgent/internal/tokenizer"
	"spiderAgent/internal/tree"

	"go.uber.org/zap"
)

type Config struct {
	Encoding       string
	MaxInputTokens int
	MinTokens      int
	Integrate      bool
}

// Result: все представления документа. Tree есть всегда; Simplified и
// Integrated равны nil, если соответствующий этап не удался.
type Result struct {
	Tree       *tree.Node
	Simplified []simplify.SimpleNode
	Integrated []simplify.SimpleNode
	Report     integrator.Report
}

type Pipeline struct {
	cfg       Config
	completer integrator.Completer
	log       *zap.Logger
}

// New создает конвейер. Без completer интеграция пропускается и
// Integrated совпадает с Simplified.
func New(cfg Config, completer integrator.Completer, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MinTokens <= 0 {
		cfg.MinTokens = simplify.DefaultMinTokens
	}
	return &Pipeline{
		cfg:       cfg,
		completer: completer,
		log:       log.With(zap.String("component", "pipeline")),
	}
}

// Process строит дерево и его производные. Ошибка возвращается, только
// если не удалось получить само дерево.
func (p *Pipeline) Process(ctx context.Context, markup string, runID *uint) (*Result, error) {
	root, err := tree.NewBuilder(nil, p.log).BuildString(markup)
	if err != nil {
		return nil, fmt.Errorf("построение дерева: %w", err)
	}
	result := &Result{Tree: root}

	tok, err := tokenizer.New(p.cfg.Encoding)
	if err != nil {
		p.log.Error("Ошибка создания токенизатора", zap.Error(err))
		return result, nil
	}

	simple, err := simplify.Simplify(root, tok, p.cfg.MinTokens)
	if err != nil {
		p.log.Error("Ошибка упрощения дерева", zap.Error(err))
		return result, nil
	}
	result.Simplified = simple

	if p.completer == nil || !p.cfg.Integrate {
		result.Integrated = simple
		return result, nil
	}

	in, err := integrator.New(p.completer, tok, p.cfg.MaxInputTokens, p.log)
	if err != nil {
		p.log.Error("Ошибка создания интегратора", zap.Error(err))
		return result, nil
	}

	integrated, report, err := in.Integrate(ctx, simple, runID)
	result.Report = report
	if err != nil {
		p.log.Error("Ошибка интеграции", zap.Error(err))
		return result, nil
	}
	result.Integrated = integrated

	p.log.Info("Документ обработан",
		zap.Int("nodes", root.Size()),
		zap.Int("simple", len(simple)),
		zap.Int("integrated", len(integrated)),
		zap.Int("batches", report.Batches),
		zap.Int("failed", report.Failed),
	)

	return result, nil
}
