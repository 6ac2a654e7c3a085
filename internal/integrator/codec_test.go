package integrator

import "errors"

// runeCodec: один токен на символ.
type runeCodec struct{}

func (runeCodec) Count(text string) (int, error) {
	return len([]rune(text)), nil
}

func (runeCodec) Encode(text string) ([]int, error) {
	rs := []rune(text)
	ids := make([]int, len(rs))
	for i, r := range rs {
		ids[i] = int(r)
	}
	return ids, nil
}

func (runeCodec) Decode(ids []int) (string, error) {
	rs := make([]rune, len(ids))
	for i, id := range ids {
		rs[i] = rune(id)
	}
	return string(rs), nil
}

type brokenCodec struct{ runeCodec }

func (brokenCodec) Encode(string) ([]int, error) {
	return nil, errors.New("encode failed")
}

// testFormat дает 20 токенов накладных расходов при бюджете 1000:
// "#1000:" (6) и разделитель (14).
var testFormat = format{prefix: "#%d:", separator: "\n\n----------\n\n"}

// byteCodec: один токен на байт, так что граница легко попадает внутрь символа.
type byteCodec struct{}

func (byteCodec) Count(text string) (int, error) {
	return len(text), nil
}

func (byteCodec) Encode(text string) ([]int, error) {
	ids := make([]int, len(text))
	for i := 0; i < len(text); i++ {
		ids[i] = int(text[i])
	}
	return ids, nil
}

func (byteCodec) Decode(ids []int) (string, error) {
	b := make([]byte, len(ids))
	for i, id := range ids {
		b[i] = byte(id)
	}
	return string(b), nil
}
