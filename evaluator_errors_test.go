package formiq

import (
	"errors"
	"testing"
)

func TestWrapEvaluationErrorCreatesMetadata(t *testing.T) {
	base := errors.New("boom")
	err := wrapEvaluationError("expr", "len(value) > 3", base)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != "expr" {
		t.Fatalf("expected engine expr, got %q", evalErr.Engine)
	}
	if evalErr.Expr != "len(value) > 3" {
		t.Fatalf("expected expression metadata, got %q", evalErr.Expr)
	}
	if !errors.Is(evalErr.Err, base) {
		t.Fatalf("wrapped error should unwrap to base error")
	}
}

func TestWrapEvaluationErrorAugmentsExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{
		Engine: "expr",
		Err:    base,
	}

	err := wrapEvaluationError("cel", "rule", existing)
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if existing.Engine != "expr" {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "rule" {
		t.Fatalf("expression should be filled, got %q", existing.Expr)
	}
}

func TestWrapEvaluatorErrorKeepsPrefixedErrors(t *testing.T) {
	prefixed := errors.New("formiq: already described")
	if got := wrapEvaluatorError("js", prefixed); got != prefixed {
		t.Fatalf("expected prefixed error to pass through, got %v", got)
	}
	plain := errors.New("plain")
	got := wrapEvaluatorError("js", plain)
	if !errors.Is(got, plain) {
		t.Fatalf("expected wrapped error to unwrap to plain")
	}
	if got.Error() != "formiq: js evaluator: plain" {
		t.Fatalf("unexpected message %q", got.Error())
	}
}
