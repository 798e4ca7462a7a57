// Package claude implements the generate.Engine interfaces on top of the
// official Anthropic SDK.
package claude

import (
	"context"
	"fmt"
	"iter"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	digesterrors "github.com/sweetpotato0/digest/errors"
	"github.com/sweetpotato0/digest/generate"
)

// Config holds Claude engine configuration
type Config struct {
	APIKey      string
	BaseURL     string
	MaxTokens   int64
	Temperature float64
}

// DefaultConfig returns default Claude configuration
func DefaultConfig() *Config {
	return &Config{
		APIKey:      os.Getenv("ANTHROPIC_API_KEY"),
		MaxTokens:   4096,
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

// Engine calls the Anthropic messages API.
type Engine struct {
	config *Config
	client anthropic.Client
}

// New creates a new Claude engine using the official SDK
func New(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}

	options := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		options = append(options, option.WithBaseURL(config.BaseURL))
	}

	return &Engine{
		config: config,
		client: anthropic.NewClient(options...),
	}
}

func (e *Engine) params(req *generate.Request) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model: anthropic.Model(req.Model),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
		MaxTokens: e.config.MaxTokens,
	}
	if e.config.Temperature > 0 {
		params.Temperature = param.NewOpt(e.config.Temperature)
	}
	return params
}

// Generate implements generate.Engine.
func (e *Engine) Generate(ctx context.Context, req *generate.Request) (*generate.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	apiMessage, err := e.client.Messages.New(ctx, e.params(req))
	if err != nil {
		return nil, fmt.Errorf("%w: Claude API: %w", digesterrors.ErrTransport, err)
	}

	var text string
	for _, content := range apiMessage.Content {
		if content.Type == "text" {
			text = content.Text
		}
	}
	return &generate.Result{Text: text}, nil
}

// GenerateStream implements generate.StreamEngine. Text deltas are emitted
// as fragments; non-text events are ignored.
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

		stream := e.client.Messages.NewStreaming(ctx, e.params(req))
		defer stream.Close()

		for stream.Next() {
			event := stream.Current()
			if event.Type != "content_block_delta" {
				continue
			}
			contentDelta := event.AsContentBlockDelta()
			if contentDelta.Delta.Type != "text_delta" || contentDelta.Delta.Text == "" {
				continue
			}
			if !yield(generate.Fragment{Delta: contentDelta.Delta.Text}, nil) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			yield(generate.Fragment{}, fmt.Errorf("%w: Claude streaming: %w", digesterrors.ErrTransport, err))
		}
	}
}
