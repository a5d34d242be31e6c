package history

import (
	"testing"
	"time"
)

func TestHistoryAppendAndRetrieve(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	artifact := "NDA_20260830_120000.docx"
	details := map[string]string{"document_type": "NDA"}

	err = store.Append(ctx, artifact, EventGenerated, details)
	if err != nil {
		t.Fatalf("failed to append event: %v", err)
	}

	events, err := store.GetByArtifact(ctx, artifact)
	if err != nil {
		t.Fatalf("failed to get events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	event := events[0]
	if event.Artifact != artifact {
		t.Errorf("expected artifact %s, got %s", artifact, event.Artifact)
	}
	if event.Type != EventGenerated {
		t.Errorf("expected event type %s, got %s", EventGenerated, event.Type)
	}
	if event.Details["document_type"] != "NDA" {
		t.Errorf("expected document_type=NDA, got %v", event.Details)
	}
	if event.Timestamp.IsZero() {
		t.Error("expected non-zero timestamp")
	}
}

func TestHistoryLifecycleOrder(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	artifact := "SOW_20260830_130000.docx"

	for _, eventType := range []string{EventGenerated, EventRegistered, EventDownloaded, EventExpired, EventSwept} {
		if err := store.Append(ctx, artifact, eventType, nil); err != nil {
			t.Fatalf("failed to append %s: %v", eventType, err)
		}
	}

	events, err := store.GetByArtifact(ctx, artifact)
	if err != nil {
		t.Fatalf("failed to get events: %v", err)
	}
	if len(events) != 5 {
		t.Fatalf("expected 5 events, got %d", len(events))
	}
	want := []string{EventGenerated, EventRegistered, EventDownloaded, EventExpired, EventSwept}
	for i, event := range events {
		if event.Type != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], event.Type)
		}
	}
}

func TestHistoryGetRange(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	now := time.Now()

	for range 3 {
		if appendErr := store.Append(ctx, "doc.docx", EventDownloaded, nil); appendErr != nil {
			t.Fatalf("failed to append event: %v", appendErr)
		}
	}

	events, err := store.GetRange(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("failed to get range: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("expected 3 events, got %d", len(events))
	}

	events, err = store.GetRange(ctx, now.Add(-2*time.Hour), now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("failed to get range: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events outside the range, got %d", len(events))
	}
}

func TestHistoryMultipleArtifacts(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	_ = store.Append(ctx, "a.docx", EventGenerated, nil)
	_ = store.Append(ctx, "b.docx", EventGenerated, nil)
	_ = store.Append(ctx, "a.docx", EventDownloaded, nil)

	events, err := store.GetByArtifact(ctx, "a.docx")
	if err != nil {
		t.Fatalf("failed to get events: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("expected 2 events for a.docx, got %d", len(events))
	}

	events, err = store.GetByArtifact(ctx, "b.docx")
	if err != nil {
		t.Fatalf("failed to get events: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 event for b.docx, got %d", len(events))
	}
}
