package summarize

import "strings"

// splitTokens cuts text into pieces of at most maxTokens tokens each,
// breaking on paragraph boundaries where possible and on word boundaries
// otherwise. Whitespace inside a piece is preserved; pieces concatenated
// with their separators cover the whole input.
func splitTokens(text string, maxTokens int, tok Tokenizer) []string {
	if maxTokens <= 0 || tok.CountTokens(text) <= maxTokens {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	currentTokens := 0

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
			currentTokens = 0
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(para) == "" {
			continue
		}
		paraTokens := tok.CountTokens(para)

		if paraTokens > maxTokens {
			// Paragraph alone exceeds the budget; fall back to words.
			flush()
			for _, word := range strings.Fields(para) {
				wordTokens := tok.CountTokens(word)
				if currentTokens+wordTokens > maxTokens {
					flush()
				}
				if current.Len() > 0 {
					current.WriteString(" ")
				}
				current.WriteString(word)
				currentTokens += wordTokens
			}
			flush()
			continue
		}

		if currentTokens+paraTokens > maxTokens {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
		currentTokens += paraTokens
	}
	flush()

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}
