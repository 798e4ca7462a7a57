package generate

import (
	"fmt"
	"iter"
	"strings"

	digesterrors "github.com/sweetpotato0/digest/errors"
)

// Observer receives the running accumulation after each fragment. It is
// invoked synchronously, exactly once per fragment, in arrival order. A
// non-nil return aborts the fold and the accumulated text is discarded.
type Observer func(accumulated string) error

// Assemble folds a fragment sequence into a single Result. After each
// fragment the observer, when non-nil, is called with the accumulation so
// far. An empty sequence is a legitimate outcome: the result is the empty
// string and the observer is never called.
//
// Errors surfaced by the sequence itself are returned unmodified and end
// the fold with nothing committed. An observer failure is returned wrapped
// in ErrObserver. Given a fixed input sequence the result and the observer
// call sequence are deterministic.
func Assemble(seq iter.Seq2[Fragment, error], obs Observer) (*Result, error) {
	var sb strings.Builder

	for frag, err := range seq {
		if err != nil {
			return nil, err
		}
		sb.WriteString(frag.Delta)
		if obs != nil {
			if obsErr := obs(sb.String()); obsErr != nil {
				return nil, fmt.Errorf("%w: %w", digesterrors.ErrObserver, obsErr)
			}
		}
	}

	return &Result{Text: sb.String()}, nil
}
