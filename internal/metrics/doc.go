// Package metrics provides observability hooks for generation and
// distribution metrics.
//
// The package implements the Null Object pattern: components receive a
// Recorder through dependency injection and default to NoopRecorder, so no
// call site needs a nil check and metrics impose zero overhead when
// disabled. The serve daemon swaps in NewPrometheusRecorder and exposes the
// registry on the admin server's /metrics endpoint.
//
// The sweep delete-failure counter exists deliberately: sweep deletion
// errors are never propagated to callers, so this counter (plus the log
// line at the call site) is the only operational signal that artifact
// cleanup is misbehaving.
package metrics
