package integrator

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"spiderAgent/internal/simplify"
)

// ErrBudgetTooSmall: бюджет не вмещает даже служебные токены одного узла.
var ErrBudgetTooSmall = errors.New("бюджет токенов меньше накладных расходов на узел")

// Codec кодирует текст в токены и обратно.
type Codec interface {
	Count(text string) (int, error)
	Encode(text string) ([]int, error)
	Decode(ids []int) (string, error)
}

// Batch: узлы одного запроса к модели и их суммарная стоимость в токенах.
type Batch struct {
	Nodes  []simplify.SimpleNode
	Tokens int
}

type unit struct {
	node simplify.SimpleNode
	cost int
}

// Packer раскладывает узлы по пакетам, не превышающим budget токенов.
type Packer struct {
	codec    Codec
	budget   int
	overhead int
	format   format
}

func NewPacker(codec Codec, budget int) (*Packer, error) {
	return newPacker(codec, budget, defaultFormat)
}

// Накладные расходы считаются по префиксу с номером budget: номер узла в
// пакете не может быть больше, так что оценка не занижена ни для какого узла.
func newPacker(codec Codec, budget int, f format) (*Packer, error) {
	prefix, err := codec.Count(f.unitPrefix(budget))
	if err != nil {
		return nil, fmt.Errorf("подсчет токенов префикса: %w", err)
	}
	sep, err := codec.Count(f.separator)
	if err != nil {
		return nil, fmt.Errorf("подсчет токенов разделителя: %w", err)
	}

	overhead := prefix + sep
	if budget <= overhead {
		return nil, fmt.Errorf("%w: бюджет %d, накладные расходы %d", ErrBudgetTooSmall, budget, overhead)
	}

	return &Packer{codec: codec, budget: budget, overhead: overhead, format: f}, nil
}

func (p *Packer) Budget() int   { return p.budget }
func (p *Packer) Overhead() int { return p.overhead }

// Pack сохраняет порядок узлов. Узел, который не помещается в бюджет даже
// один, режется по границам токенов на куски по budget-overhead токенов.
func (p *Packer) Pack(nodes []simplify.SimpleNode) ([]Batch, error) {
	units, err := p.units(nodes)
	if err != nil {
		return nil, err
	}

	var (
		batches []Batch
		current Batch
	)
	for _, u := range units {
		if len(current.Nodes) > 0 && current.Tokens+u.cost > p.budget {
			batches = append(batches, current)
			current = Batch{}
		}
		current.Nodes = append(current.Nodes, u.node)
		current.Tokens += u.cost
	}
	if len(current.Nodes) > 0 {
		batches = append(batches, current)
	}

	return batches, nil
}

func (p *Packer) units(nodes []simplify.SimpleNode) ([]unit, error) {
	units := make([]unit, 0, len(nodes))
	for i, n := range nodes {
		tokens, err := p.codec.Count(n.Markdown)
		if err != nil {
			return nil, fmt.Errorf("подсчет токенов узла %d: %w", i, err)
		}

		cost := tokens + p.overhead
		if cost <= p.budget {
			units = append(units, unit{node: n, cost: cost})
			continue
		}

		parts, err := p.split(n.Markdown)
		if err != nil {
			return nil, fmt.Errorf("разбиение узла %d: %w", i, err)
		}
		units = append(units, parts...)
	}
	return units, nil
}

// split режет текст на непрерывные отрезки id. Склейка результатов дает
// исходный текст без потерь и повторов. Граница отрезка не попадает внутрь
// многобайтового символа: каждый кусок остается корректным UTF-8.
func (p *Packer) split(text string) ([]unit, error) {
	ids, err := p.codec.Encode(text)
	if err != nil {
		return nil, err
	}

	chunk := p.budget - p.overhead
	out := make([]unit, 0, len(ids)/chunk+1)
	for start := 0; start < len(ids); {
		end, part, err := p.cut(ids, start, min(start+chunk, len(ids)))
		if err != nil {
			return nil, err
		}
		out = append(out, unit{
			node: simplify.SimpleNode{Markdown: part},
			cost: end - start + p.overhead,
		})
		start = end
	}
	return out, nil
}

// cut ищет ближайшую к end границу, на которой ids[start:end] декодируется
// в корректный UTF-8. Сначала сдвигается назад, затем, если ни один отрезок
// не подошел, вперед.
func (p *Packer) cut(ids []int, start, end int) (int, string, error) {
	for e := end; e > start; e-- {
		part, err := p.codec.Decode(ids[start:e])
		if err != nil {
			return 0, "", err
		}
		if utf8.ValidString(part) {
			return e, part, nil
		}
	}
	for e := end + 1; e <= len(ids); e++ {
		part, err := p.codec.Decode(ids[start:e])
		if err != nil {
			return 0, "", err
		}
		if utf8.ValidString(part) || e == len(ids) {
			return e, part, nil
		}
	}
	part, err := p.codec.Decode(ids[start:end])
	return end, part, err
}
