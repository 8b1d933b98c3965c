// Package tokenizer provides the subword token codec shared by the chunker
// and the generation size check, so threshold decisions and chunk boundaries
// always agree.
package tokenizer

import (
	"errors"
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const defaultEncodingName = "cl100k_base"

// Codec encodes text to subword token ids and back. Implementations must be
// deterministic and lossless: Decode(Encode(s)) == s for valid UTF-8 input,
// and decoding adjacent token slices concatenates to decoding the whole.
type Codec interface {
	Name() string
	Count(input string) int
	Encode(input string) []int
	Decode(tokens []int) string
}

type tiktokenCodec struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewCodec returns the production codec backed by the named tiktoken
// encoding. An empty name selects cl100k_base.
func NewCodec(encodingName string) (Codec, error) {
	if encodingName == "" {
		encodingName = defaultEncodingName
	}
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("initialize tokenizer %s: %w", encodingName, err)
	}
	if encoding == nil {
		return nil, errors.New("nil tiktoken encoding")
	}
	return &tiktokenCodec{encoding: encoding, name: encodingName}, nil
}

func (c *tiktokenCodec) Name() string { return c.name }

func (c *tiktokenCodec) Count(input string) int {
	return len(c.encoding.Encode(input, nil, nil))
}

func (c *tiktokenCodec) Encode(input string) []int {
	return c.encoding.Encode(input, nil, nil)
}

func (c *tiktokenCodec) Decode(tokens []int) string {
	return c.encoding.Decode(tokens)
}
