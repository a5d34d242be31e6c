// Package errors provides foundational, type-safe error primitives used across contractforge.
//
// This package contains classified error types and helpers for robust error handling,
// including a fluent builder API for constructing ClassifiedError values with context.
//
// Key features:
//   - ErrorCategory: Broad error classification (validation, structure, storage, registry, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - HTTP adapter for error presentation, including the registry's 404/410 split
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryStructure, "unknown subsection type").
//		WithContext("type", tag).
//		Build()
package errors
