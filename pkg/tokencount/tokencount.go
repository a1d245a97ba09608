// Package tokencount measures text length in model tokens for the usage
// counter. Unknown model names fall back to the cl100k_base encoding.
package tokencount

import (
	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog/log"
)

const fallbackEncoding = "cl100k_base"

type Counter struct {
	enc *tiktoken.Tiktoken
}

func New(model string) (*Counter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		log.Debug().Str("model", model).Err(err).
			Msgf("no tiktoken encoding for model, falling back to %s", fallbackEncoding)
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, err
		}
	}
	return &Counter{enc: enc}, nil
}

func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.enc.Encode(text, nil, nil))
}
