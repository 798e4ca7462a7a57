// Package ollama implements the generate.Engine interfaces against a local
// Ollama server. The non-streaming path parses one JSON object; the
// streaming path consumes the newline-delimited JSON body of /api/generate.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"os"
	"time"

	digesterrors "github.com/sweetpotato0/digest/errors"
	"github.com/sweetpotato0/digest/generate"
	"github.com/sweetpotato0/digest/pkg/logging"
)

const (
	defaultBaseURL = "http://localhost:11434"

	// Lines carry one JSON record each; generous cap for long deltas.
	maxLineBytes = 1 << 20
)

// Config holds Ollama engine configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns default Ollama configuration
func DefaultConfig() *Config {
	return &Config{
		BaseURL: defaultBaseURL,
		Timeout: 120 * time.Second,
	}
}

// ConfigFromEnv loads Ollama configuration from environment variables
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("OLLAMA_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
	return cfg
}

// WithBaseURL set BaseURL.
func (cfg *Config) WithBaseURL(url string) *Config {
	cfg.BaseURL = url
	return cfg
}

// WithTimeout set request timeout.
func (cfg *Config) WithTimeout(d time.Duration) *Config {
	cfg.Timeout = d
	return cfg
}

// Engine talks to one Ollama server. Engines are safe for concurrent use;
// each call owns its own request and response.
type Engine struct {
	config *Config
	client *http.Client
}

// New creates a new Ollama engine
func New(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}

	return &Engine{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// generateRecord is one record of an /api/generate response body. In
// streaming mode each line is one record; Response is a pointer so a record
// without the field is distinguishable from an empty delta.
type generateRecord struct {
	Response *string `json:"response"`
	Done     bool    `json:"done"`
}

// Generate implements generate.Engine. It issues one non-streaming request
// and extracts the complete response text.
func (e *Engine) Generate(ctx context.Context, req *generate.Request) (*generate.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, err := e.post(ctx, &generate.Request{Model: req.Model, Prompt: req.Prompt, Stream: false})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", digesterrors.ErrTransport, err)
	}

	var record generateRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", digesterrors.ErrTransport, err)
	}

	text := ""
	if record.Response != nil {
		text = *record.Response
	}
	return &generate.Result{Text: text}, nil
}

// GenerateStream implements generate.StreamEngine. The request is issued
// lazily when iteration starts; the sequence is one-shot and a second range
// yields nothing. The response body is closed when the sequence is
// exhausted or abandoned. A line that is not valid JSON is skipped without
// aborting the stream.
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

		resp, err := e.post(ctx, &generate.Request{Model: req.Model, Prompt: req.Prompt, Stream: true})
		if err != nil {
			yield(generate.Fragment{}, err)
			return
		}
		defer resp.Body.Close()

		logger := logging.WithComponent("engine.ollama")
		skipped := 0

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			var record generateRecord
			if err := json.Unmarshal(line, &record); err != nil {
				skipped++
				continue
			}
			if record.Response == nil {
				continue
			}
			if !yield(generate.Fragment{Delta: *record.Response}, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(generate.Fragment{}, fmt.Errorf("%w: read stream: %w", digesterrors.ErrTransport, err))
			return
		}
		if skipped > 0 {
			logger.Debug("skipped malformed stream lines", "model", req.Model, "count", skipped)
		}
	}
}

// tagsResponse is the body of /api/tags.
type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ListModels implements generate.ModelLister via /api/tags.
func (e *Engine) ListModels(ctx context.Context) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, e.config.BaseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", digesterrors.ErrTransport, err)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", digesterrors.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: list models returned status %d", digesterrors.ErrTransport, resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("%w: decode tags: %w", digesterrors.ErrTransport, err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// post sends one /api/generate request. Callers own the returned body.
func (e *Engine) post(ctx context.Context, payload *generate.Request) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.config.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", digesterrors.ErrTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", digesterrors.ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: endpoint returned status %d", digesterrors.ErrTransport, resp.StatusCode)
	}
	return resp, nil
}
