// Package generate defines the request, fragment, and result types shared by
// all inference engines, together with the assembler that folds a streamed
// fragment sequence into a single result.
package generate

import (
	"context"
	"fmt"
	"iter"
	"strings"

	digesterrors "github.com/sweetpotato0/digest/errors"
)

// Request bundles inputs for one generation call.
// A Request is built per call and not mutated afterwards.
type Request struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// Validate checks caller-side preconditions. Model and Prompt must be
// non-empty after trimming; engines call this before any network activity.
func (r *Request) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil request", digesterrors.ErrInvalidRequest)
	}
	if strings.TrimSpace(r.Model) == "" {
		return fmt.Errorf("%w: model must not be empty", digesterrors.ErrInvalidRequest)
	}
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("%w: prompt must not be empty", digesterrors.ErrInvalidRequest)
	}
	return nil
}

// Fragment is one incremental unit of generated text. Fragments are
// ephemeral; they are folded into a Result and not retained.
type Fragment struct {
	Delta string
}

// Result is the terminal value of a generation call, either returned
// directly by a non-streaming engine or produced by folding fragments.
type Result struct {
	Text string
}

// Engine performs one non-streaming generation call against an inference
// endpoint. Implementations do not retry; retry policy belongs to callers.
type Engine interface {
	Generate(ctx context.Context, req *Request) (*Result, error)
}

// StreamEngine is implemented by engines that can deliver output
// incrementally. The returned sequence is lazy, forward-only, and
// non-restartable: ranging over it a second time yields nothing.
type StreamEngine interface {
	Engine
	GenerateStream(ctx context.Context, req *Request) iter.Seq2[Fragment, error]
}

// ModelLister is implemented by engines that can enumerate the models
// available at their endpoint.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}
