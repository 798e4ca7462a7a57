// Package summarize is the application service: it renders the prompt for a
// requested style, drives an inference engine (streaming or not), splits
// over-long inputs into token-bounded chunks, and records finished runs in
// the history store.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	digesterrors "github.com/sweetpotato0/digest/errors"
	"github.com/sweetpotato0/digest/generate"
	"github.com/sweetpotato0/digest/history"
	"github.com/sweetpotato0/digest/middleware"
	"github.com/sweetpotato0/digest/pkg/logging"
	"github.com/sweetpotato0/digest/pkg/telemetry"
	"github.com/sweetpotato0/digest/prompt"
)

// Request describes one summarization run.
type Request struct {
	// Text is the source to summarize.
	Text string

	// Model names the inference model, in the engine's own vocabulary.
	Model string

	// Style picks the summary shape; unknown styles render as general.
	Style prompt.Style

	// Instructions is optional free-form guidance appended to the prompt.
	Instructions string

	// WordLimit, when positive, bounds the requested summary length.
	WordLimit int

	// Stream requests incremental generation; progress is reported through
	// Observer. Engines without streaming support fall back to one call
	// with a single observer invocation at the end.
	Stream bool

	// Observer receives the running summary text during streaming runs.
	Observer generate.Observer
}

// Summary is the outcome of a run.
type Summary struct {
	Text    string       `json:"text"`
	Model   string       `json:"model"`
	Style   prompt.Style `json:"style"`
	Stats   Stats        `json:"stats"`
	Chunked bool         `json:"chunked"`
}

// Service coordinates prompting, generation, chunking, and history.
type Service struct {
	engine      generate.Engine
	prompts     *prompt.Manager
	store       history.Store
	chain       *middleware.Chain
	tokenizer   Tokenizer
	chunkTokens int
	concurrency int
	logger      *slog.Logger
	tracer      trace.Tracer
}

// Option customises the service.
type Option func(*Service)

// WithStore sets the history store; nil disables history.
func WithStore(store history.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithChain wraps every run in the given middleware chain.
func WithChain(chain *middleware.Chain) Option {
	return func(s *Service) { s.chain = chain }
}

// WithTokenizer sets the tokenizer used for chunking decisions.
func WithTokenizer(tok Tokenizer) Option {
	return func(s *Service) {
		if tok != nil {
			s.tokenizer = tok
		}
	}
}

// WithChunkTokens sets the token budget above which inputs are split
// (default 1024, matching the usual context headroom of small local models).
func WithChunkTokens(tokens int) Option {
	return func(s *Service) {
		if tokens > 0 {
			s.chunkTokens = tokens
		}
	}
}

// WithConcurrency caps parallel chunk summarization (default 4).
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger overrides the component logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a summarization service around an engine.
func New(engine generate.Engine, opts ...Option) *Service {
	s := &Service{
		engine:      engine,
		prompts:     prompt.NewStyleManager(),
		tokenizer:   ApproxTokenizer{},
		chunkTokens: 1024,
		concurrency: 4,
		logger:      logging.WithComponent("summarize"),
		tracer:      otel.Tracer("digest/summarize"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize runs one summarization request end to end.
func (s *Service) Summarize(ctx context.Context, req *Request) (*Summary, error) {
	if req == nil || strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: text must not be empty", digesterrors.ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Model) == "" {
		return nil, fmt.Errorf("%w: model must not be empty", digesterrors.ErrInvalidRequest)
	}

	ctx, span := s.tracer.Start(ctx, "summarize.run", trace.WithAttributes(
		attribute.String("model", req.Model),
		attribute.String("style", string(req.Style)),
		attribute.Int("input_chars", len(req.Text)),
	))

	var summary *Summary
	run := func(mwCtx *middleware.Context) error {
		out, err := s.run(mwCtx.Context(), req)
		if err != nil {
			return err
		}
		mwCtx.Summary = out.Text
		summary = out
		return nil
	}

	var err error
	if s.chain != nil {
		mwCtx := middleware.NewContext(ctx)
		mwCtx.Input = req.Text
		mwCtx.Model = req.Model
		mwCtx.Style = string(req.Style)
		err = s.chain.Execute(mwCtx, run)
	} else {
		mwCtx := middleware.NewContext(ctx)
		mwCtx.Input = req.Text
		mwCtx.Model = req.Model
		mwCtx.Style = string(req.Style)
		err = run(mwCtx)
	}
	telemetry.End(span, err)
	if err != nil {
		return nil, err
	}

	s.record(ctx, req, summary)
	return summary, nil
}

func (s *Service) run(ctx context.Context, req *Request) (*Summary, error) {
	start := time.Now()

	var text string
	chunked := false
	if s.tokenizer.CountTokens(req.Text) > s.chunkTokens {
		chunkSummary, err := s.summarizeChunks(ctx, req)
		if err != nil {
			return nil, err
		}
		text = chunkSummary
		chunked = true
	} else {
		rendered, err := prompt.Render(s.prompts, req.Style, req.Text, prompt.Options{
			Instructions: req.Instructions,
			WordLimit:    req.WordLimit,
		})
		if err != nil {
			return nil, err
		}
		result, err := s.generate(ctx, req, rendered)
		if err != nil {
			return nil, err
		}
		text = result
	}

	return &Summary{
		Text:    strings.TrimSpace(text),
		Model:   req.Model,
		Style:   req.Style,
		Stats:   newStats(req.Text, strings.TrimSpace(text), time.Since(start)),
		Chunked: chunked,
	}, nil
}

// generate performs one engine call, streaming when requested and supported.
func (s *Service) generate(ctx context.Context, req *Request, rendered string) (string, error) {
	genReq := &generate.Request{Model: req.Model, Prompt: rendered, Stream: req.Stream}

	if req.Stream {
		if streamer, ok := s.engine.(generate.StreamEngine); ok {
			result, err := generate.Assemble(streamer.GenerateStream(ctx, genReq), req.Observer)
			if err != nil {
				return "", err
			}
			return result.Text, nil
		}
	}

	result, err := s.engine.Generate(ctx, genReq)
	if err != nil {
		return "", err
	}
	if req.Stream && req.Observer != nil {
		// No incremental engine; deliver the whole text in one call.
		if obsErr := req.Observer(result.Text); obsErr != nil {
			return "", fmt.Errorf("%w: %w", digesterrors.ErrObserver, obsErr)
		}
	}
	return result.Text, nil
}

// summarizeChunks splits the input, summarizes each chunk with a share of
// the word budget, and joins the partial summaries in input order.
func (s *Service) summarizeChunks(ctx context.Context, req *Request) (string, error) {
	chunks := splitTokens(req.Text, s.chunkTokens, s.tokenizer)
	s.logger.Info("input split for summarization", "chunks", len(chunks), "model", req.Model)

	perChunkLimit := 0
	if req.WordLimit > 0 {
		perChunkLimit = req.WordLimit / len(chunks)
		if perChunkLimit < 20 {
			perChunkLimit = 20
		}
	}

	out := make([]string, len(chunks))
	sem := make(chan struct{}, s.concurrency)
	errc := make(chan error, 1)
	var wg sync.WaitGroup

	for i := range chunks {
		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			rendered, err := prompt.Render(s.prompts, req.Style, chunks[i], prompt.Options{
				Instructions: req.Instructions,
				WordLimit:    perChunkLimit,
			})
			if err == nil {
				var result *generate.Result
				// Chunked runs never stream; ordering of partial output
				// across goroutines would be meaningless to an observer.
				result, err = s.engine.Generate(ctx, &generate.Request{Model: req.Model, Prompt: rendered})
				if err == nil {
					out[i] = result.Text
					return
				}
			}
			select {
			case errc <- err:
			default:
			}
		}(i)
	}

	wg.Wait()

	select {
	case err := <-errc:
		return "", err
	default:
	}

	joined := strings.TrimSpace(strings.Join(out, " "))
	if req.Stream && req.Observer != nil {
		if obsErr := req.Observer(joined); obsErr != nil {
			return "", fmt.Errorf("%w: %w", digesterrors.ErrObserver, obsErr)
		}
	}
	return joined, nil
}

// record appends the finished run to history. Store failures are logged,
// not surfaced; the summary itself already succeeded.
func (s *Service) record(ctx context.Context, req *Request, sum *Summary) {
	if s.store == nil {
		return
	}
	rec := history.NewRecord(req.Text, sum.Text, req.Model, string(req.Style))
	if err := s.store.Save(ctx, rec); err != nil {
		s.logger.Warn("failed to save history record", "error", err)
	}
}

// Models lists the engine's available models, falling back to a static
// llama set when the endpoint cannot be reached.
func (s *Service) Models(ctx context.Context) []string {
	if lister, ok := s.engine.(generate.ModelLister); ok {
		models, err := lister.ListModels(ctx)
		if err == nil && len(models) > 0 {
			return models
		}
		if err != nil {
			s.logger.Warn("model listing failed, using fallback", "error", err)
		}
	}
	return []string{"llama3.2:latest", "llama3.2:1b", "llama3.2:3b"}
}

// History returns the recorded runs, newest first.
func (s *Service) History(ctx context.Context) ([]*history.Record, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.List(ctx)
}

// ClearHistory removes every recorded run.
func (s *Service) ClearHistory(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	return s.store.Clear(ctx)
}
