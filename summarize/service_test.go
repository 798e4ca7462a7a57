package summarize

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"testing"
	"time"

	digesterrors "github.com/sweetpotato0/digest/errors"
	"github.com/sweetpotato0/digest/generate"
	"github.com/sweetpotato0/digest/history"
	"github.com/sweetpotato0/digest/middleware"
	"github.com/sweetpotato0/digest/prompt"
)

// fakeEngine echoes a canned summary and records the prompts it saw.
type fakeEngine struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (f *fakeEngine) Generate(ctx context.Context, req *generate.Request) (*generate.Result, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, req.Prompt)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &generate.Result{Text: f.reply}, nil
}

// fakeStreamEngine additionally yields canned fragments.
type fakeStreamEngine struct {
	fakeEngine
	deltas []string
}

func (f *fakeStreamEngine) GenerateStream(ctx context.Context, req *generate.Request) iter.Seq2[generate.Fragment, error] {
	f.mu.Lock()
	f.prompts = append(f.prompts, req.Prompt)
	f.mu.Unlock()
	return func(yield func(generate.Fragment, error) bool) {
		for _, d := range f.deltas {
			if !yield(generate.Fragment{Delta: d}, nil) {
				return
			}
		}
	}
}

func TestSummarizeSingleCall(t *testing.T) {
	eng := &fakeEngine{reply: "a concise summary"}
	store := history.NewLog(10)
	svc := New(eng, WithStore(store))

	sum, err := svc.Summarize(context.Background(), &Request{
		Text:  "The quick brown fox jumps over the lazy dog.",
		Model: "llama3.2:latest",
		Style: prompt.StyleGeneral,
	})
	if err != nil {
		t.Fatalf("summarize error: %v", err)
	}
	if sum.Text != "a concise summary" {
		t.Errorf("summary text = %q", sum.Text)
	}
	if sum.Chunked {
		t.Error("short input should not be chunked")
	}
	if len(eng.prompts) != 1 || !strings.Contains(eng.prompts[0], "quick brown fox") {
		t.Errorf("engine prompt missing source text: %v", eng.prompts)
	}

	records, _ := store.List(context.Background())
	if len(records) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(records))
	}
	if records[0].Model != "llama3.2:latest" || records[0].Style != "general" {
		t.Errorf("history record = %+v", records[0])
	}
}

func TestSummarizeStreamingReportsProgress(t *testing.T) {
	eng := &fakeStreamEngine{deltas: []string{"a ", "progressive ", "summary"}}
	svc := New(eng)

	var seen []string
	sum, err := svc.Summarize(context.Background(), &Request{
		Text:   "some input text",
		Model:  "m",
		Style:  prompt.StyleGeneral,
		Stream: true,
		Observer: func(acc string) error {
			seen = append(seen, acc)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("summarize error: %v", err)
	}
	if sum.Text != "a progressive summary" {
		t.Errorf("summary text = %q", sum.Text)
	}
	if len(seen) != 3 || seen[1] != "a progressive " {
		t.Errorf("observer calls = %v", seen)
	}
}

func TestSummarizeStreamFallbackWithoutStreamEngine(t *testing.T) {
	eng := &fakeEngine{reply: "all at once"}
	svc := New(eng)

	var seen []string
	sum, err := svc.Summarize(context.Background(), &Request{
		Text:   "some input",
		Model:  "m",
		Stream: true,
		Observer: func(acc string) error {
			seen = append(seen, acc)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("summarize error: %v", err)
	}
	if sum.Text != "all at once" {
		t.Errorf("summary text = %q", sum.Text)
	}
	if len(seen) != 1 || seen[0] != "all at once" {
		t.Errorf("observer should see the full text once, got %v", seen)
	}
}

func TestSummarizeObserverErrorAborts(t *testing.T) {
	eng := &fakeStreamEngine{deltas: []string{"x", "y"}}
	svc := New(eng)

	_, err := svc.Summarize(context.Background(), &Request{
		Text:   "input",
		Model:  "m",
		Stream: true,
		Observer: func(string) error {
			return errors.New("display gone")
		},
	})
	if !errors.Is(err, digesterrors.ErrObserver) {
		t.Fatalf("expected ErrObserver, got %v", err)
	}
}

func TestSummarizeChunksLongInput(t *testing.T) {
	eng := &fakeEngine{reply: "part"}
	svc := New(eng, WithChunkTokens(50))

	var paragraphs []string
	for i := 0; i < 30; i++ {
		paragraphs = append(paragraphs, fmt.Sprintf("Paragraph %d has a handful of ordinary words in it.", i))
	}

	sum, err := svc.Summarize(context.Background(), &Request{
		Text:      strings.Join(paragraphs, "\n\n"),
		Model:     "m",
		Style:     prompt.StyleGeneral,
		WordLimit: 200,
	})
	if err != nil {
		t.Fatalf("summarize error: %v", err)
	}
	if !sum.Chunked {
		t.Error("long input should be chunked")
	}
	if len(eng.prompts) < 2 {
		t.Errorf("expected multiple chunk calls, got %d", len(eng.prompts))
	}
	if sum.Text != strings.TrimSpace(strings.Repeat("part ", len(eng.prompts))) {
		t.Errorf("joined summary = %q over %d chunks", sum.Text, len(eng.prompts))
	}
}

func TestSummarizeValidatesInput(t *testing.T) {
	svc := New(&fakeEngine{reply: "x"})

	cases := []*Request{
		nil,
		{Text: "  ", Model: "m"},
		{Text: "content", Model: ""},
	}
	for i, req := range cases {
		if _, err := svc.Summarize(context.Background(), req); !errors.Is(err, digesterrors.ErrInvalidRequest) {
			t.Errorf("case %d: expected ErrInvalidRequest, got %v", i, err)
		}
	}
}

func TestSummarizeEngineErrorPropagates(t *testing.T) {
	cause := fmt.Errorf("%w: connection refused", digesterrors.ErrTransport)
	svc := New(&fakeEngine{err: cause}, WithStore(history.NewLog(10)))

	_, err := svc.Summarize(context.Background(), &Request{Text: "input", Model: "m"})
	if !errors.Is(err, digesterrors.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}

	records, _ := svc.History(context.Background())
	if len(records) != 0 {
		t.Error("failed runs must not be recorded")
	}
}

func TestSummarizeRunsThroughMiddleware(t *testing.T) {
	eng := &fakeEngine{reply: "ok"}
	chain := middleware.NewChain(middleware.NewInputValidator(func(input string) error {
		if len(input) > 20 {
			return middleware.ErrInvalidInput
		}
		return nil
	}))
	svc := New(eng, WithChain(chain))

	if _, err := svc.Summarize(context.Background(), &Request{Text: "short", Model: "m"}); err != nil {
		t.Fatalf("short input should pass: %v", err)
	}
	_, err := svc.Summarize(context.Background(), &Request{
		Text:  strings.Repeat("long input ", 10),
		Model: "m",
	})
	if !errors.Is(err, middleware.ErrInvalidInput) {
		t.Fatalf("expected middleware rejection, got %v", err)
	}
}

func TestModelsFallback(t *testing.T) {
	svc := New(&fakeEngine{reply: "x"}) // no ModelLister
	models := svc.Models(context.Background())
	if len(models) == 0 || models[0] != "llama3.2:latest" {
		t.Errorf("fallback models = %v", models)
	}
}

func TestExportMarkdown(t *testing.T) {
	sum := &Summary{
		Text:  "short summary",
		Model: "llama3.2:latest",
		Style: prompt.StyleBulletPoints,
		Stats: newStats("a longer original text with words", "short summary", 1500*time.Millisecond),
	}
	out := ExportMarkdown("a longer original text with words", sum, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	for _, want := range []string{
		"# Summary (Bullet Points)",
		"Generated on: 2025-06-01 12:00:00",
		"Model: llama3.2:latest",
		"short summary",
		"Processing Time: 1.5s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %q:\n%s", want, out)
		}
	}
}
