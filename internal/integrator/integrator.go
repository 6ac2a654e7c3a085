// Package integrator раскладывает упрощенные узлы по пакетам в пределах
// бюджета токенов и заменяет каждый пакет ответом модели.
package integrator

import (
	"context"
	"errors"
	"fmt"

	"spiderAgent/internal/llm"
	"spiderAgent/internal/simplify"

	"go.uber.org/zap"
)

// Completer выполняет запрос к модели.
type Completer interface {
	Ask(ctx context.Context, messages []llm.Message, runID *uint, batchNo int) (string, error)
}

// Report: итоги интеграции одного документа.
type Report struct {
	Batches     int  `json:"batches"`
	Integrated  int  `json:"integrated"`
	Passthrough int  `json:"passthrough"`
	Failed      int  `json:"failed"`
	Cancelled   bool `json:"cancelled"`
}

type Integrator struct {
	completer Completer
	packer    *Packer
	system    string
	format    format
	log       *zap.Logger
}

// New вычисляет полезный бюджет как maxTokens минус стоимость системного промпта.
func New(completer Completer, codec Codec, maxTokens int, log *zap.Logger) (*Integrator, error) {
	return newIntegrator(completer, codec, maxTokens, SystemPrompt, defaultFormat, log)
}

func newIntegrator(completer Completer, codec Codec, maxTokens int, system string, f format, log *zap.Logger) (*Integrator, error) {
	if completer == nil {
		return nil, errors.New("не задан клиент модели")
	}
	if log == nil {
		log = zap.NewNop()
	}

	systemTokens, err := codec.Count(system)
	if err != nil {
		return nil, fmt.Errorf("подсчет токенов системного промпта: %w", err)
	}

	packer, err := newPacker(codec, maxTokens-systemTokens, f)
	if err != nil {
		return nil, err
	}

	return &Integrator{
		completer: completer,
		packer:    packer,
		system:    system,
		format:    f,
		log:       log.With(zap.String("component", "integrator")),
	}, nil
}

func (i *Integrator) Packer() *Packer { return i.packer }

// Integrate обрабатывает пакеты строго по очереди. Пакет из одного узла
// модели не отправляется. Ошибка запроса оставляет исходные узлы пакета.
// Наружу возвращаются только ошибки токенизатора.
func (i *Integrator) Integrate(ctx context.Context, nodes []simplify.SimpleNode, runID *uint) ([]simplify.SimpleNode, Report, error) {
	var report Report

	batches, err := i.packer.Pack(nodes)
	if err != nil {
		return nil, report, err
	}
	report.Batches = len(batches)

	out := make([]simplify.SimpleNode, 0, len(nodes))
	for idx, batch := range batches {
		if len(batch.Nodes) == 1 {
			out = append(out, batch.Nodes...)
			report.Passthrough++
			continue
		}

		if !report.Cancelled && ctx.Err() != nil {
			report.Cancelled = true
			i.log.Info("Интеграция прервана, оставшиеся пакеты без изменений",
				zap.Int("batch", idx+1),
				zap.Int("remaining", len(batches)-idx),
			)
		}
		if report.Cancelled {
			out = append(out, batch.Nodes...)
			report.Passthrough++
			continue
		}

		resp, err := i.completer.Ask(ctx, i.format.messages(i.system, batch.Nodes), runID, idx+1)
		if err != nil {
			i.log.Warn("Ошибка интеграции пакета, используются исходные узлы",
				zap.Int("batch", idx+1),
				zap.Int("units", len(batch.Nodes)),
				zap.Int("tokens", batch.Tokens),
				zap.Error(err),
			)
			out = append(out, batch.Nodes...)
			report.Failed++
			continue
		}

		out = append(out, simplify.SimpleNode{Markdown: resp})
		report.Integrated++
	}

	return out, report, nil
}
