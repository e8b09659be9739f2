package document

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func fakePDF() []byte {
	return []byte("%PDF-1.7\n" + strings.Repeat("x", 2048))
}

func TestNormalizeRejectsInvalidHeader(t *testing.T) {
	n := newNormalizer(zap.NewNop(), nil)

	_, err := n.Normalize([]byte("PK\x03\x04 definitely a zip"))

	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected FormatError, got %v", err)
	}
	if formatErr.Reason != ReasonInvalidHeader {
		t.Fatalf("unexpected reason %q", formatErr.Reason)
	}
	if formatErr.Hint() == "" {
		t.Fatalf("expected actionable hint")
	}
}

func TestNormalizeFallsBackThroughMethods(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)

	var calls []string
	methods := []method{
		{name: "primary", extract: func([]byte) (string, error) {
			calls = append(calls, "primary")
			return "", errors.New("broken xref")
		}},
		{name: "secondary", extract: func([]byte) (string, error) {
			calls = append(calls, "secondary")
			return "   \n\t  ", nil
		}},
		{name: "salvage", extract: func([]byte) (string, error) {
			calls = append(calls, "salvage")
			return "Jane   Smith\n\n\n\nPython", nil
		}},
	}

	n := newNormalizer(zap.New(core), methods)
	text, err := n.Normalize(fakePDF())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if text != "Jane Smith\n\nPython" {
		t.Fatalf("unexpected text %q", text)
	}
	if strings.Join(calls, ",") != "primary,secondary,salvage" {
		t.Fatalf("unexpected call order: %v", calls)
	}

	attempts := observed.FilterMessage("text extraction attempt").All()
	if len(attempts) != 2 {
		t.Fatalf("expected 2 logged attempts with character counts, got %d", len(attempts))
	}
	if got := attempts[1].ContextMap()["characters"]; got != int64(15) {
		t.Fatalf("expected 15 recovered characters, got %v", got)
	}
}

func TestNormalizeStopsAtFirstUsefulMethod(t *testing.T) {
	called := false
	methods := []method{
		{name: "primary", extract: func([]byte) (string, error) { return "Resume text", nil }},
		{name: "secondary", extract: func([]byte) (string, error) {
			called = true
			return "", nil
		}},
	}

	text, err := newNormalizer(nil, methods).Normalize(fakePDF())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Resume text" || called {
		t.Fatalf("expected primary result only, got %q (secondary called: %v)", text, called)
	}
}

func TestNormalizeNoExtractableText(t *testing.T) {
	methods := []method{
		{name: "primary", extract: func([]byte) (string, error) { panic("malformed stream") }},
		{name: "secondary", extract: func([]byte) (string, error) { return "", nil }},
	}

	_, err := newNormalizer(nil, methods).Normalize(fakePDF())

	var formatErr *FormatError
	if !errors.As(err, &formatErr) || formatErr.Reason != ReasonNoText {
		t.Fatalf("expected no extractable text error, got %v", err)
	}
}

func TestNormalizeGarbagePDF(t *testing.T) {
	// The real reader chain must fail cleanly on a header-only file.
	_, err := New(zap.NewNop()).Normalize([]byte("%PDF-1.4\ngarbage"))

	var formatErr *FormatError
	if !errors.As(err, &formatErr) || formatErr.Reason != ReasonNoText {
		t.Fatalf("expected no extractable text error, got %v", err)
	}
}

func TestClean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{name: "collapses spaces", input: "a \t  b", expect: "a b"},
		{name: "keeps paragraph break", input: "a\n\nb", expect: "a\n\nb"},
		{name: "squeezes blank lines", input: "a\n \n\n  \nb", expect: "a\n\nb"},
		{name: "drops invalid utf8", input: "Jo" + string([]byte{0xff}) + "hn", expect: "John"},
		{name: "non breaking space", input: "New\u00a0York", expect: "New York"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Clean(tt.input); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
