package prompt

import "fmt"

// Style selects the shape of the requested summary.
type Style string

const (
	StyleGeneral      Style = "general"
	StyleBulletPoints Style = "bullet_points"
	StyleExecutive    Style = "executive"
	StyleAcademic     Style = "academic"
	StyleTimeline     Style = "timeline"
	StyleQuestions    Style = "questions"
)

// Styles lists every registered style, in presentation order.
func Styles() []Style {
	return []Style{
		StyleGeneral,
		StyleBulletPoints,
		StyleExecutive,
		StyleAcademic,
		StyleTimeline,
		StyleQuestions,
	}
}

// Valid reports whether s names a registered style.
func (s Style) Valid() bool {
	for _, known := range Styles() {
		if s == known {
			return true
		}
	}
	return false
}

var styleTemplates = map[Style]string{
	StyleGeneral: `Provide a comprehensive yet concise summary of the following text. Focus on the main ideas, key arguments, and important details:

Text to summarize:
{{.Text}}

{{.Instructions}}

Summary:`,

	StyleBulletPoints: `Create a structured bullet-point summary of the following text. Organize information hierarchically with main points and sub-points:

Text to summarize:
{{.Text}}

{{.Instructions}}

Key Points:
•`,

	StyleExecutive: `Create an executive summary suitable for business leaders. Focus on key insights, actionable information, and strategic implications:

Text to summarize:
{{.Text}}

{{.Instructions}}

Executive Summary:`,

	StyleAcademic: `Create an academic-style summary that highlights the main thesis, methodology (if applicable), key findings, and conclusions:

Text to summarize:
{{.Text}}

{{.Instructions}}

Academic Summary:`,

	StyleTimeline: `Extract and organize the chronological events or processes mentioned in the text:

Text to summarize:
{{.Text}}

{{.Instructions}}

Timeline Summary:`,

	StyleQuestions: `Generate a summary in the form of key questions and answers based on the content:

Text to summarize:
{{.Text}}

{{.Instructions}}

Q&A Summary:`,
}

// NewStyleManager returns a Manager preloaded with every summary style.
func NewStyleManager() *Manager {
	m := NewManager()
	for style, content := range styleTemplates {
		// Registration of the built-in set cannot collide.
		_ = m.Register(string(style), content)
	}
	return m
}

// Options refine a rendered summary prompt.
type Options struct {
	// Instructions is free-form caller guidance appended to the template.
	Instructions string

	// WordLimit, when positive, asks the model to keep the summary near
	// that many words.
	WordLimit int
}

// Render builds the prompt for one summarization call. Unknown styles fall
// back to the general template, matching permissive style selection in the
// callers.
func Render(m *Manager, style Style, text string, opts Options) (string, error) {
	if !style.Valid() {
		style = StyleGeneral
	}

	instructions := opts.Instructions
	if opts.WordLimit > 0 {
		if instructions != "" {
			instructions += "\n\n"
		}
		instructions += fmt.Sprintf("Please keep the summary to approximately %d words.", opts.WordLimit)
	}

	return m.Render(string(style), Vars{
		"Text":         text,
		"Instructions": instructions,
	})
}
