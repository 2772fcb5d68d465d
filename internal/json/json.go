// Package json centralizes the JSON implementation used by the transport
// layer. Handlers encode response envelopes through this package so the
// underlying library can be swapped in one place; the codec core does not
// use it because it needs token-level, order-preserving decoding.
package json

import (
	"io"

	"github.com/bytedance/sonic"
)

var config = sonic.Config{
	UseNumber:        true,
	CompactMarshaler: true,
}.Froze()

func Marshal(v any) ([]byte, error) {
	return config.Marshal(v)
}

func Unmarshal(data []byte, v any) error {
	return config.Unmarshal(data, v)
}

func NewEncoder(w io.Writer) sonic.Encoder {
	return config.NewEncoder(w)
}

func NewDecoder(r io.Reader) sonic.Decoder {
	return config.NewDecoder(r)
}
