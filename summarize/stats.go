package summarize

import (
	"strings"
	"time"
)

// Stats describes one summarization run for display.
type Stats struct {
	OriginalChars int           `json:"original_chars"`
	SummaryChars  int           `json:"summary_chars"`
	OriginalWords int           `json:"original_words"`
	SummaryWords  int           `json:"summary_words"`
	Compression   float64       `json:"compression_pct"`
	Duration      time.Duration `json:"duration"`
}

func newStats(original, summary string, duration time.Duration) Stats {
	s := Stats{
		OriginalChars: len(original),
		SummaryChars:  len(summary),
		OriginalWords: len(strings.Fields(original)),
		SummaryWords:  len(strings.Fields(summary)),
		Duration:      duration,
	}
	if s.OriginalChars > 0 {
		s.Compression = float64(s.SummaryChars) / float64(s.OriginalChars) * 100
	}
	return s
}
