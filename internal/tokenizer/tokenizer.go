// Package tokenizer считает, кодирует и декодирует токены через tiktoken.
// Все решения о бюджете в пайплайне принимаются по этим значениям.
package tokenizer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// DefaultEncoding используется, если схема не задана в конфигурации.
const DefaultEncoding = "cl100k_base"

// ErrCodec возвращается при любом сбое кодирования или декодирования.
var ErrCodec = errors.New("ошибка токенизатора")

// CodecError описывает сбой конкретной операции токенизатора.
type CodecError struct {
	Op  string
	Err error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrCodec, e.Op, e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

func (e *CodecError) Is(target error) bool {
	return target == ErrCodec
}

var loaderOnce sync.Once

// Tokenizer оборачивает кодировщик tiktoken.
// Экземпляр создается один раз на прогон пайплайна и передается явно.
type Tokenizer struct {
	encoding string
	enc      *tiktoken.Tiktoken
}

func New(encoding string) (*Tokenizer, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	// Словари BPE встроены в бинарник, сеть при старте не нужна.
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, &CodecError{Op: "загрузка кодировки " + encoding, Err: err}
	}

	return &Tokenizer{encoding: encoding, enc: enc}, nil
}

func (t *Tokenizer) Encoding() string {
	return t.encoding
}

// Count возвращает количество токенов в тексте.
func (t *Tokenizer) Count(text string) (int, error) {
	ids, err := t.Encode(text)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// CountAny считает токены произвольного значения: nil дает 0,
// остальные значения приводятся к строке.
func (t *Tokenizer) CountAny(v any) (int, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case string:
		return t.Count(val)
	case *string:
		if val == nil {
			return 0, nil
		}
		return t.Count(*val)
	case fmt.Stringer:
		return t.Count(val.String())
	default:
		return t.Count(fmt.Sprint(val))
	}
}

func (t *Tokenizer) Encode(text string) (ids []int, err error) {
	if text == "" {
		return []int{}, nil
	}

	defer func() {
		if r := recover(); r != nil {
			ids = nil
			err = &CodecError{Op: "encode", Err: fmt.Errorf("%v", r)}
		}
	}()

	return t.enc.Encode(text, nil, nil), nil
}

// Decode собирает текст из последовательности id. Результат для любого
// непрерывного среза Encode(x) можно склеивать обратно без потерь.
func (t *Tokenizer) Decode(ids []int) (text string, err error) {
	if len(ids) == 0 {
		return "", nil
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &CodecError{Op: "decode", Err: fmt.Errorf("%v", r)}
		}
	}()

	return t.enc.Decode(ids), nil
}
