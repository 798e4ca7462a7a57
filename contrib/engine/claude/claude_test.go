package claude

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	digesterrors "github.com/sweetpotato0/digest/errors"
	"github.com/sweetpotato0/digest/generate"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["model"] != "claude-sonnet-4-5" {
			t.Errorf("model = %v", body["model"])
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_1",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": "a hosted summary"},
			},
			"model":       "claude-sonnet-4-5",
			"stop_reason": "end_turn",
			"usage":       map[string]int{"input_tokens": 10, "output_tokens": 5},
		})
	}))
	defer srv.Close()

	engine := New(DefaultConfig().WithAPIKey("test-key").WithBaseURL(srv.URL))
	result, err := engine.Generate(context.Background(), &generate.Request{
		Model:  "claude-sonnet-4-5",
		Prompt: "summarize this",
	})
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if result.Text != "a hosted summary" {
		t.Errorf("text = %q", result.Text)
	}
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"type":"error","error":{"type":"not_found_error","message":"model not found"}}`, http.StatusNotFound)
	}))
	defer srv.Close()

	engine := New(DefaultConfig().WithAPIKey("test-key").WithBaseURL(srv.URL))
	_, err := engine.Generate(context.Background(), &generate.Request{Model: "nope", Prompt: "x"})
	if !errors.Is(err, digesterrors.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestGenerateValidatesRequest(t *testing.T) {
	engine := New(DefaultConfig().WithAPIKey("test-key"))
	_, err := engine.Generate(context.Background(), &generate.Request{Model: "m", Prompt: ""})
	if !errors.Is(err, digesterrors.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
