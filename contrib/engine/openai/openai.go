// Package openai implements the generate.Engine interfaces on top of the
// official OpenAI SDK, for summarization against a hosted model instead of
// a local server.
package openai

import (
	"context"
	"fmt"
	"iter"
	"os"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	digesterrors "github.com/sweetpotato0/digest/errors"
	"github.com/sweetpotato0/digest/generate"
)

// Config holds OpenAI engine configuration
type Config struct {
	APIKey      string
	BaseURL     string
	MaxTokens   int64
	Temperature float64
}

// DefaultConfig returns default OpenAI configuration
func DefaultConfig() *Config {
	return &Config{
		APIKey:      os.Getenv("OPENAI_API_KEY"),
		BaseURL:     os.Getenv("OPENAI_API_BASE_URL"),
		MaxTokens:   2000,
		Temperature: 0.7,
	}
}

// WithAPIKey set api key.
func (cfg *Config) WithAPIKey(apiKey string) *Config {
	cfg.APIKey = apiKey
	return cfg
}

// WithBaseURL set BaseURL.
func (cfg *Config) WithBaseURL(url string) *Config {
	cfg.BaseURL = url
	return cfg
}

// WithMaxTokens set completion token budget.
func (cfg *Config) WithMaxTokens(n int64) *Config {
	cfg.MaxTokens = n
	return cfg
}

// Engine calls the OpenAI chat completions API. The model comes from the
// generate.Request, so one Engine serves any hosted model.
type Engine struct {
	config *Config
	client openai.Client
}

// New creates a new OpenAI engine using the official SDK
func New(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}

	options := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		options = append(options, option.WithBaseURL(config.BaseURL))
	}
	client := openai.NewClient(options...)

	return &Engine{
		config: config,
		client: client,
	}
}

func (e *Engine) params(req *generate.Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		Model: openai.ChatModel(req.Model),
	}
	if e.config.Temperature > 0 {
		params.Temperature = param.NewOpt(e.config.Temperature)
	}
	if e.config.MaxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(e.config.MaxTokens)
	}
	return params
}

// Generate implements generate.Engine.
func (e *Engine) Generate(ctx context.Context, req *generate.Request) (*generate.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	completion, err := e.client.Chat.Completions.New(ctx, e.params(req))
	if err != nil {
		return nil, fmt.Errorf("%w: OpenAI API: %w", digesterrors.ErrTransport, err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", digesterrors.ErrTransport)
	}

	return &generate.Result{Text: completion.Choices[0].Message.Content}, nil
}

// GenerateStream implements generate.StreamEngine over the SDK's SSE
// stream. The sequence is one-shot like every StreamEngine.
func (e *Engine) GenerateStream(ctx context.Context, req *generate.Request) iter.Seq2[generate.Fragment, error] {
	consumed := false
	return func(yield func(generate.Fragment, error) bool) {
		if consumed {
			return
		}
		consumed = true

		if err := req.Validate(); err != nil {
			yield(generate.Fragment{}, err)
			return
		}

		stream := e.client.Chat.Completions.NewStreaming(ctx, e.params(req))
		defer stream.Close()

		for stream.Next() {
			event := stream.Current()
			if len(event.Choices) == 0 {
				continue
			}
			delta := event.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			if !yield(generate.Fragment{Delta: delta}, nil) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			yield(generate.Fragment{}, fmt.Errorf("%w: OpenAI streaming: %w", digesterrors.ErrTransport, err))
		}
	}
}
