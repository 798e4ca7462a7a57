package summarize

import (
	"fmt"
	"strings"
	"time"
)

// ExportMarkdown renders a finished run as a self-contained markdown
// document, suitable for download or archiving.
func ExportMarkdown(original string, sum *Summary, generatedAt time.Time) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Summary (%s)\n", titleCase(string(sum.Style)))
	fmt.Fprintf(&sb, "Generated on: %s\n", generatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Model: %s\n\n", sum.Model)

	fmt.Fprintf(&sb, "## Original Text (%d characters)\n%s\n\n", sum.Stats.OriginalChars, original)
	fmt.Fprintf(&sb, "## Summary (%d characters)\n%s\n\n", sum.Stats.SummaryChars, sum.Text)

	sb.WriteString("## Statistics\n")
	fmt.Fprintf(&sb, "- Compression Ratio: %.1f%%\n", sum.Stats.Compression)
	fmt.Fprintf(&sb, "- Processing Time: %.1fs\n", sum.Stats.Duration.Seconds())
	fmt.Fprintf(&sb, "- Word Count: %d → %d\n", sum.Stats.OriginalWords, sum.Stats.SummaryWords)

	return sb.String()
}

func titleCase(style string) string {
	words := strings.Split(style, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
