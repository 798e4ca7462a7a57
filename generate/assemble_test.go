package generate

import (
	"errors"
	"fmt"
	"iter"
	"reflect"
	"testing"

	digesterrors "github.com/sweetpotato0/digest/errors"
)

func fragmentSeq(deltas ...string) iter.Seq2[Fragment, error] {
	return func(yield func(Fragment, error) bool) {
		for _, d := range deltas {
			if !yield(Fragment{Delta: d}, nil) {
				return
			}
		}
	}
}

func TestAssembleConcatenatesInOrder(t *testing.T) {
	cases := []struct {
		name   string
		deltas []string
		want   string
	}{
		{"single", []string{"hello"}, "hello"},
		{"split word", []string{"He", "llo", " world"}, "Hello world"},
		{"empty deltas mixed in", []string{"a", "", "b"}, "ab"},
		{"unicode", []string{"摘", "要"}, "摘要"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Assemble(fragmentSeq(tc.deltas...), nil)
			if err != nil {
				t.Fatalf("assemble error: %v", err)
			}
			if res.Text != tc.want {
				t.Fatalf("got %q, want %q", res.Text, tc.want)
			}
		})
	}
}

func TestAssembleObserverSeesRunningAccumulation(t *testing.T) {
	var calls []string
	res, err := Assemble(fragmentSeq("He", "llo", " world"), func(acc string) error {
		calls = append(calls, acc)
		return nil
	})
	if err != nil {
		t.Fatalf("assemble error: %v", err)
	}
	if res.Text != "Hello world" {
		t.Fatalf("final text = %q, want %q", res.Text, "Hello world")
	}
	want := []string{"He", "Hello", "Hello world"}
	if !reflect.DeepEqual(calls, want) {
		t.Fatalf("observer calls = %v, want %v", calls, want)
	}
}

func TestAssembleEmptySequence(t *testing.T) {
	calls := 0
	res, err := Assemble(fragmentSeq(), func(string) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("assemble error: %v", err)
	}
	if res.Text != "" {
		t.Fatalf("expected empty result, got %q", res.Text)
	}
	if calls != 0 {
		t.Fatalf("observer called %d times for empty sequence", calls)
	}
}

func TestAssembleObserverErrorAbortsFold(t *testing.T) {
	boom := errors.New("widget detached")
	calls := 0
	res, err := Assemble(fragmentSeq("a", "b", "c"), func(acc string) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})
	if res != nil {
		t.Fatalf("expected no result after observer failure, got %+v", res)
	}
	if !errors.Is(err, digesterrors.ErrObserver) {
		t.Fatalf("expected ErrObserver, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("observer called %d times, want 2", calls)
	}
}

func TestAssembleSequenceErrorPropagatesUnwrapped(t *testing.T) {
	cause := fmt.Errorf("%w: connection reset", digesterrors.ErrTransport)
	seq := func(yield func(Fragment, error) bool) {
		if !yield(Fragment{Delta: "par"}, nil) {
			return
		}
		yield(Fragment{}, cause)
	}

	var calls []string
	res, err := Assemble(seq, func(acc string) error {
		calls = append(calls, acc)
		return nil
	})
	if res != nil {
		t.Fatalf("expected no result after sequence failure, got %+v", res)
	}
	if !errors.Is(err, digesterrors.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if len(calls) != 1 || calls[0] != "par" {
		t.Fatalf("observer calls before failure = %v", calls)
	}
}
