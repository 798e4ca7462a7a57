// Package gemini implements generate.Engine against the Google Generative
// Language API. It is non-streaming; streaming callers should prefer the
// ollama or openai engines.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	digesterrors "github.com/sweetpotato0/digest/errors"
	"github.com/sweetpotato0/digest/generate"
)

const geminiAPIURL = "https://generativelanguage.googleapis.com/v1/models"

// Config holds Gemini engine configuration
type Config struct {
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Temperature float32
}

// DefaultConfig returns default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		BaseURL:     geminiAPIURL,
		MaxTokens:   2048,
		Temperature: 0.7,
	}
}

// WithAPIKey set api key.
func (cfg *Config) WithAPIKey(apiKey string) *Config {
	cfg.APIKey = apiKey
	return cfg
}

// WithBaseURL set BaseURL; mainly useful for tests.
func (cfg *Config) WithBaseURL(url string) *Config {
	cfg.BaseURL = url
	return cfg
}

// Engine calls the Gemini generateContent endpoint.
type Engine struct {
	config *Config
	client *http.Client
}

// New creates a new Gemini engine
func New(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = geminiAPIURL
	}

	return &Engine{
		config: config,
		client: &http.Client{},
	}
}

// geminiContent is one message in Gemini API format
type geminiContent struct {
	Role  string `json:"role"`
	Parts []struct {
		Text string `json:"text"`
	} `json:"parts"`
}

// geminiRequest represents a Gemini API request
type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
		Temperature     float32 `json:"temperature,omitempty"`
	} `json:"generationConfig"`
}

// geminiResponse represents a Gemini API response
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *geminiError `json:"error,omitempty"`
}

// geminiError represents an error in Gemini API response
type geminiError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Generate implements generate.Engine.
func (e *Engine) Generate(ctx context.Context, req *generate.Request) (*generate.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if e.config.APIKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key not configured", digesterrors.ErrInvalidRequest)
	}

	payload := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []struct {
				Text string `json:"text"`
			}{{Text: req.Prompt}},
		}},
	}
	payload.GenerationConfig.MaxOutputTokens = e.config.MaxTokens
	payload.GenerationConfig.Temperature = e.config.Temperature

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", e.config.BaseURL, req.Model, e.config.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", digesterrors.ErrTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", digesterrors.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", digesterrors.ErrTransport, err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", digesterrors.ErrTransport, err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("%w: Gemini API error %d: %s", digesterrors.ErrTransport, parsed.Error.Code, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: endpoint returned status %d", digesterrors.ErrTransport, resp.StatusCode)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no candidates returned", digesterrors.ErrTransport)
	}

	return &generate.Result{Text: parsed.Candidates[0].Content.Parts[0].Text}, nil
}
