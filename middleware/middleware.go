// Package middleware provides an interception chain around summarization
// runs: validation, logging, and rate limiting compose around the engine
// call without the service knowing about any of them.
package middleware

import (
	"context"
	"log/slog"
)

// Context represents the middleware execution context for one summarization
// run.
type Context struct {
	// Input is the source text to summarize
	Input string

	// Model and Style describe the requested run
	Model string
	Style string

	// Summary is filled by the final handler
	Summary string

	// Error from execution
	Error error

	// Metadata for passing data between middlewares
	Metadata map[string]interface{}

	// Internal state
	context context.Context
}

// NewContext creates a new middleware context
func NewContext(ctx context.Context) *Context {
	return &Context{
		Metadata: make(map[string]interface{}),
		context:  ctx,
	}
}

// Context returns the underlying context.Context
func (c *Context) Context() context.Context {
	if c.context == nil {
		return context.Background()
	}
	return c.context
}

// Middleware defines the interface for middleware components.
// Middlewares can intercept and modify a summarization run before and after
// the engine call.
type Middleware interface {
	// Name returns the name of the middleware for logging and debugging
	Name() string

	// Execute runs the middleware logic
	// It receives the current context and a next handler to continue the chain
	// Returning error will stop the middleware chain
	Execute(ctx *Context, next Handler) error
}

// Handler is the function called to pass control to the next middleware
type Handler func(*Context) error

// Chain represents a sequence of middleware to be executed
type Chain struct {
	middlewares []Middleware
}

// NewChain creates a new middleware chain
func NewChain(middlewares ...Middleware) *Chain {
	return &Chain{
		middlewares: middlewares,
	}
}

// Add appends a middleware to the chain
func (c *Chain) Add(m Middleware) *Chain {
	c.middlewares = append(c.middlewares, m)
	return c
}

// Execute runs all middlewares in the chain
func (c *Chain) Execute(ctx *Context, finalHandler Handler) error {
	return c.executeMiddleware(ctx, 0, finalHandler)
}

// executeMiddleware recursively executes middlewares in sequence
func (c *Chain) executeMiddleware(ctx *Context, index int, finalHandler Handler) error {
	if index >= len(c.middlewares) {
		// All middlewares executed, call the final handler
		return finalHandler(ctx)
	}

	nextHandler := func(ctx *Context) error {
		return c.executeMiddleware(ctx, index+1, finalHandler)
	}

	return c.middlewares[index].Execute(ctx, nextHandler)
}

// ValidatorFunc validates input
type ValidatorFunc func(string) error

// InputValidator validates the source text before the engine is called
type InputValidator struct {
	validator ValidatorFunc
}

// NewInputValidator creates an input validation middleware
func NewInputValidator(validator ValidatorFunc) *InputValidator {
	return &InputValidator{validator: validator}
}

// Name returns the middleware name
func (m *InputValidator) Name() string {
	return "InputValidator"
}

// Execute validates the input
func (m *InputValidator) Execute(ctx *Context, next Handler) error {
	if m.validator != nil {
		if err := m.validator(ctx.Input); err != nil {
			return err
		}
	}
	return next(ctx)
}

// RunLogger logs the run before and after the engine call
type RunLogger struct {
	logger *slog.Logger
}

// NewRunLogger creates a logging middleware
func NewRunLogger(logger *slog.Logger) *RunLogger {
	return &RunLogger{logger: logger}
}

// Name returns the middleware name
func (m *RunLogger) Name() string {
	return "RunLogger"
}

// Execute logs the run
func (m *RunLogger) Execute(ctx *Context, next Handler) error {
	if m.logger != nil {
		m.logger.Info("summarization started", "model", ctx.Model, "style", ctx.Style, "input_chars", len(ctx.Input))
	}
	err := next(ctx)
	if m.logger != nil {
		if err != nil {
			m.logger.Error("summarization failed", "model", ctx.Model, "error", err)
		} else {
			m.logger.Info("summarization finished", "model", ctx.Model, "summary_chars", len(ctx.Summary))
		}
	}
	return err
}

// RateLimiter caps how many runs a chain admits
type RateLimiter struct {
	maxRequests int
	counter     int
}

// NewRateLimiter creates a rate limiting middleware
func NewRateLimiter(maxRequests int) *RateLimiter {
	return &RateLimiter{maxRequests: maxRequests}
}

// Name returns the middleware name
func (m *RateLimiter) Name() string {
	return "RateLimiter"
}

// Execute checks rate limit
func (m *RateLimiter) Execute(ctx *Context, next Handler) error {
	if m.counter >= m.maxRequests {
		return ErrRateLimitExceeded
	}
	m.counter++
	return next(ctx)
}

// Reset resets the rate limiter counter
func (m *RateLimiter) Reset() {
	m.counter = 0
}

// ErrorHandlerFunc handles errors
type ErrorHandlerFunc func(error) error

// ErrorHandler handles errors from downstream middlewares
type ErrorHandler struct {
	handler ErrorHandlerFunc
}

// NewErrorHandler creates an error handling middleware
func NewErrorHandler(handler ErrorHandlerFunc) *ErrorHandler {
	return &ErrorHandler{handler: handler}
}

// Name returns the middleware name
func (m *ErrorHandler) Name() string {
	return "ErrorHandler"
}

// Execute handles errors from downstream middlewares
func (m *ErrorHandler) Execute(ctx *Context, next Handler) error {
	err := next(ctx)
	if err != nil && m.handler != nil {
		return m.handler(err)
	}
	return err
}
