package errors

import (
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation error", NewError(CategoryValidation, "bad input").Build(), 2},
		{"structure error", NewError(CategoryStructure, "bad structure").Build(), 2},
		{"config error", NewError(CategoryConfig, "bad config").Build(), 7},
		{"not found", NewError(CategoryNotFound, "missing template").Build(), 4},
		{"storage error", NewError(CategoryStorage, "write failed").Build(), 11},
		{"daemon error", NewError(CategoryDaemon, "shutdown failed").Build(), 12},
		{"internal error", NewError(CategoryInternal, "bug").Build(), 10},
		{"plain error", &customHTTPError{msg: "plain"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	err := WrapError(&customHTTPError{msg: "disk full"}, CategoryStorage, "artifact write failed").Build()

	terse := NewCLIErrorAdapter(false, slog.Default()).FormatError(err)
	if terse != "Error: artifact write failed" {
		t.Errorf("FormatError() non-verbose = %q", terse)
	}

	verbose := NewCLIErrorAdapter(true, slog.Default()).FormatError(err)
	if !strings.Contains(verbose, "disk full") {
		t.Errorf("FormatError() verbose should include cause, got %q", verbose)
	}
}
