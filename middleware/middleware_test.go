package middleware

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// TestMiddleware records execution order for chain tests
type TestMiddleware struct {
	name  string
	err   error
	order *[]string
}

func (m *TestMiddleware) Name() string {
	return m.name
}

func (m *TestMiddleware) Execute(ctx *Context, next Handler) error {
	*m.order = append(*m.order, m.name)
	if m.err != nil {
		return m.err
	}
	return next(ctx)
}

func TestMiddlewareChain(t *testing.T) {
	t.Run("empty chain executes final handler", func(t *testing.T) {
		chain := NewChain()
		executed := false

		err := chain.Execute(&Context{}, func(ctx *Context) error {
			executed = true
			return nil
		})

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if !executed {
			t.Error("final handler was not executed")
		}
	})

	t.Run("middleware chain executes in order", func(t *testing.T) {
		order := []string{}

		m1 := &TestMiddleware{name: "m1", order: &order}
		m2 := &TestMiddleware{name: "m2", order: &order}

		chain := NewChain(m1, m2)
		chain.Execute(&Context{}, func(c *Context) error {
			order = append(order, "final")
			return nil
		})

		expected := []string{"m1", "m2", "final"}
		if len(order) != len(expected) {
			t.Fatalf("expected %d steps, got %d", len(expected), len(order))
		}
		for i, e := range expected {
			if order[i] != e {
				t.Errorf("expected step %d to be %s, got %s", i, e, order[i])
			}
		}
	})

	t.Run("error stops chain execution", func(t *testing.T) {
		order := []string{}
		m1 := &TestMiddleware{name: "m1", err: errors.New("test error"), order: &order}
		m2 := &TestMiddleware{name: "m2", order: &order}

		chain := NewChain(m1, m2)

		finalCalled := false
		err := chain.Execute(&Context{}, func(c *Context) error {
			finalCalled = true
			return nil
		})

		if err == nil {
			t.Error("expected error from middleware")
		}
		if finalCalled {
			t.Error("final handler should not be called after middleware error")
		}
		if len(order) != 1 {
			t.Errorf("m2 should not run after m1 errored, order: %v", order)
		}
	})
}

func TestInputValidator(t *testing.T) {
	validator := NewInputValidator(func(input string) error {
		if strings.TrimSpace(input) == "" {
			return ErrInvalidInput
		}
		return nil
	})

	t.Run("valid input passes through", func(t *testing.T) {
		executed := false
		err := validator.Execute(&Context{Input: "some text"}, func(c *Context) error {
			executed = true
			return nil
		})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if !executed {
			t.Error("next handler was not executed")
		}
	})

	t.Run("invalid input stops the chain", func(t *testing.T) {
		err := validator.Execute(&Context{Input: "   "}, func(c *Context) error {
			t.Error("next handler must not run for invalid input")
			return nil
		})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestRunLoggerRecordsOutcome(t *testing.T) {
	var sb strings.Builder
	logger := slog.New(slog.NewTextHandler(&sb, nil))

	m := NewRunLogger(logger)
	ctx := &Context{Input: "text", Model: "llama3.2:latest", Style: "general"}
	err := m.Execute(ctx, func(c *Context) error {
		c.Summary = "done"
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, "summarization started") || !strings.Contains(out, "summarization finished") {
		t.Errorf("expected start and finish log lines, got:\n%s", out)
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(2)
	noop := func(c *Context) error { return nil }

	if err := limiter.Execute(&Context{}, noop); err != nil {
		t.Fatalf("first request should pass: %v", err)
	}
	if err := limiter.Execute(&Context{}, noop); err != nil {
		t.Fatalf("second request should pass: %v", err)
	}
	if err := limiter.Execute(&Context{}, noop); !errors.Is(err, ErrRateLimitExceeded) {
		t.Fatalf("third request should be limited, got %v", err)
	}

	limiter.Reset()
	if err := limiter.Execute(&Context{}, noop); err != nil {
		t.Fatalf("request after reset should pass: %v", err)
	}
}

func TestErrorHandlerTransformsError(t *testing.T) {
	wrapped := errors.New("friendly message")
	handler := NewErrorHandler(func(err error) error {
		return wrapped
	})

	err := handler.Execute(&Context{}, func(c *Context) error {
		return errors.New("raw engine failure")
	})
	if !errors.Is(err, wrapped) {
		t.Errorf("expected transformed error, got %v", err)
	}
}
