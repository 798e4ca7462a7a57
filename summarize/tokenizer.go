package summarize

import "regexp"

// Tokenizer measures prompt size for chunking decisions. The default is a
// regex approximation; contrib/tokenizer/tiktoken provides exact counts for
// OpenAI models.
type Tokenizer interface {
	CountTokens(text string) int
}

var tokenRegex = regexp.MustCompile(`\p{L}[\p{L}\p{M}]*|\p{N}+|[^\s]`)

// ApproxTokenizer counts tokens without depending on provider-specific
// codecs: one token per word, number run, or symbol.
type ApproxTokenizer struct{}

// CountTokens implements Tokenizer.
func (ApproxTokenizer) CountTokens(text string) int {
	return len(tokenRegex.FindAllStringIndex(text, -1))
}
