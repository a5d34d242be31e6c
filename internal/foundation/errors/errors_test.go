package errors

import (
	"errors"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "config.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().GetString("file")
		if !exists || file != "config.yaml" {
			t.Errorf("expected context file=config.yaml, got %v", file)
		}
	})

	t.Run("Error detection", func(t *testing.T) {
		err := NewError(CategoryStructure, "unknown subsection type").Build()

		if !IsClassified(err) {
			t.Error("expected error to be classified")
		}
		if !HasCategory(err, CategoryStructure) {
			t.Error("expected error to have structure category")
		}
		if err.IsFatal() {
			t.Error("expected default severity to be non-fatal")
		}
	})

	t.Run("Wrapping and unwrapping", func(t *testing.T) {
		originalErr := errors.New("disk full")
		err := WrapError(originalErr, CategoryStorage, "artifact write failed").Build()

		if !errors.Is(err, originalErr) {
			t.Error("expected wrapped error to match original via errors.Is")
		}
		if err.Cause() != originalErr {
			t.Error("expected Cause to return the original error")
		}
	})

	t.Run("Category extraction fallback", func(t *testing.T) {
		if GetCategory(errors.New("plain")) != CategoryInternal {
			t.Error("expected unclassified error to map to internal category")
		}
		if GetSeverity(errors.New("plain")) != SeverityError {
			t.Error("expected unclassified error to map to error severity")
		}
	})
}

func TestErrorContext(t *testing.T) {
	ctx := ErrorContext{}.Set("a", 1)
	merged := ctx.Merge(ErrorContext{"b": "two"})

	if v, ok := merged.Get("a"); !ok || v != 1 {
		t.Errorf("expected merged context to keep a=1, got %v", v)
	}
	if v, ok := merged.GetString("b"); !ok || v != "two" {
		t.Errorf("expected merged context to have b=two, got %v", v)
	}
}
