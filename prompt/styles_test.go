package prompt

import (
	"strings"
	"testing"
)

func TestRenderIncludesTextAndInstructions(t *testing.T) {
	m := NewStyleManager()

	out, err := Render(m, StyleGeneral, "the quick brown fox", Options{
		Instructions: "Focus on the animals.",
		WordLimit:    150,
	})
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !strings.Contains(out, "the quick brown fox") {
		t.Error("rendered prompt missing source text")
	}
	if !strings.Contains(out, "Focus on the animals.") {
		t.Error("rendered prompt missing custom instructions")
	}
	if !strings.Contains(out, "approximately 150 words") {
		t.Error("rendered prompt missing word limit instruction")
	}
}

func TestRenderEveryStyle(t *testing.T) {
	m := NewStyleManager()
	for _, style := range Styles() {
		out, err := Render(m, style, "sample input", Options{})
		if err != nil {
			t.Fatalf("style %s: render error: %v", style, err)
		}
		if !strings.Contains(out, "sample input") {
			t.Errorf("style %s: rendered prompt missing source text", style)
		}
	}
}

func TestRenderUnknownStyleFallsBackToGeneral(t *testing.T) {
	m := NewStyleManager()
	got, err := Render(m, Style("haiku"), "some text", Options{})
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	want, err := Render(m, StyleGeneral, "some text", Options{})
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if got != want {
		t.Error("unknown style should render the general template")
	}
}

func TestStyleValid(t *testing.T) {
	if !StyleBulletPoints.Valid() {
		t.Error("bullet_points should be valid")
	}
	if Style("sonnet").Valid() {
		t.Error("unregistered style should be invalid")
	}
}
