package ai

import (
	"context"
	"fmt"
	"testing"
)

type fakeClassifier struct {
	labels []Label
	err    error
}

func (f fakeClassifier) Classify(ctx context.Context, lines []string) ([]Label, error) {
	return f.labels, f.err
}

func TestClassifyLinesUsesService(t *testing.T) {
	lines := []string{"1. Intro", "Hello world"}
	c := fakeClassifier{labels: []Label{LabelHeading, LabelBody}}
	got := ClassifyLines(context.Background(), c, nil, lines)
	if len(got) != 2 || got[0] != LabelHeading || got[1] != LabelBody {
		t.Fatalf("unexpected labels: %v", got)
	}
}

func TestClassifyLinesFallsBackOnMismatchedLength(t *testing.T) {
	lines := []string{"1. Intro", "", "This is a long body sentence that ends with a period."}
	c := fakeClassifier{labels: []Label{LabelHeading}}
	got := ClassifyLines(context.Background(), c, nil, lines)
	if len(got) != len(lines) {
		t.Fatalf("fallback labels length %d, want %d", len(got), len(lines))
	}
	if got[0] != LabelHeading {
		t.Fatalf("numbered line labeled %q, want heading", got[0])
	}
	if got[1] != LabelBlank {
		t.Fatalf("empty line labeled %q, want blank", got[1])
	}
	if got[2] != LabelBody {
		t.Fatalf("sentence labeled %q, want body", got[2])
	}
}

func TestClassifyLinesFallsBackOnError(t *testing.T) {
	lines := []string{"2.1 Details"}
	c := fakeClassifier{err: fmt.Errorf("service unavailable")}
	got := ClassifyLines(context.Background(), c, nil, lines)
	if len(got) != 1 || got[0] != LabelHeading {
		t.Fatalf("unexpected fallback labels: %v", got)
	}
}

func TestClassifyLinesNilClassifier(t *testing.T) {
	got := ClassifyLines(context.Background(), nil, nil, []string{"Hello there friend."})
	if len(got) != 1 || got[0] != LabelBody {
		t.Fatalf("unexpected labels: %v", got)
	}
}

func TestParseLabels(t *testing.T) {
	labels, err := parseLabels("heading\nbody\n\nBlank\n", 3)
	if err != nil {
		t.Fatalf("parseLabels: %v", err)
	}
	want := []Label{LabelHeading, LabelBody, LabelBlank}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("label %d: got %q want %q", i, labels[i], want[i])
		}
	}

	if _, err := parseLabels("heading\nbogus\n", 2); err == nil {
		t.Fatalf("expected error for unknown label word")
	}
	if _, err := parseLabels("heading\n", 2); err == nil {
		t.Fatalf("expected error for short response")
	}
}

type stubProvider struct {
	name string
}

func (s stubProvider) Name() string    { return s.name }
func (s stubProvider) Validate() error { return nil }
func (s stubProvider) Classify(ctx context.Context, lines []string) ([]Label, error) {
	return nil, fmt.Errorf("not implemented")
}
func (s stubProvider) Generate(ctx context.Context, prompt, title, subtitle string) (string, error) {
	return "", fmt.Errorf("not implemented")
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(stubProvider{name: "openai"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(stubProvider{name: "anthropic"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(stubProvider{name: "openai"}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := r.Register(stubProvider{}); err == nil {
		t.Fatalf("expected empty name registration to fail")
	}

	p, err := r.Get("anthropic")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Name() != "anthropic" {
		t.Fatalf("got provider %q", p.Name())
	}
	if _, err := r.Get("gemini"); err == nil {
		t.Fatalf("expected lookup of unknown provider to fail")
	}

	names := r.List()
	if len(names) != 2 || names[0] != "anthropic" || names[1] != "openai" {
		t.Fatalf("unexpected provider list: %v", names)
	}
	if !r.Has("openai") || r.Has("gemini") {
		t.Fatalf("Has reported wrong membership")
	}
}
