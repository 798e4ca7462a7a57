// Package tiktoken provides exact token counts through OpenAI's BPE
// vocabularies. Use it as the summarize service's tokenizer when chunk
// budgets must match what an OpenAI-compatible model actually sees; the
// encodings are fetched over the network on first use.
package tiktoken

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer counts tokens with a concrete BPE encoding. It satisfies the
// summarize package's Tokenizer interface.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

// New resolves an encoding by model name first ("gpt-4o"), then by
// encoding name ("o200k_base").
func New(name string) (*Tokenizer, error) {
	enc, err := tiktoken.EncodingForModel(name)
	if err != nil {
		enc, err = tiktoken.GetEncoding(name)
		if err != nil {
			return nil, fmt.Errorf("resolve encoding %q: %w", name, err)
		}
	}
	return &Tokenizer{enc: enc}, nil
}

// CountTokens returns the number of tokens in text.
func (t *Tokenizer) CountTokens(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}
