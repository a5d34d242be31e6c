// Package registry tracks generated artifacts offered for download. Every
// served file gets an opaque ID and a TTL; expired entries answer Gone until
// the sweeper evicts them and removes the backing artifact.
package registry

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/contractforge/internal/foundation/errors"
	"git.home.luguber.info/inful/contractforge/internal/history"
	"git.home.luguber.info/inful/contractforge/internal/metrics"
	"git.home.luguber.info/inful/contractforge/internal/storage"
)

// DefaultTTL applies when Register is called with a zero TTL.
const DefaultTTL = time.Hour

// ServedFile is the public view of one registered artifact.
type ServedFile struct {
	ID           string
	DisplayName  string
	Path         string
	RegisteredAt time.Time
	ExpiresAt    time.Time
}

// Expired reports whether the entry is past its TTL at the given instant.
func (f ServedFile) Expired(at time.Time) bool {
	return !at.Before(f.ExpiresAt)
}

// Options configures a Registry. The zero value is usable: wall clock,
// DefaultTTL, no metrics.
type Options struct {
	// DefaultTTL applies to registrations that do not specify a TTL.
	DefaultTTL time.Duration
	// Recorder receives download and sweep metrics. Nil means no recording.
	Recorder metrics.Recorder
	// History receives lifecycle events. Nil disables recording.
	History history.Store
	// Clock overrides time.Now for deterministic expiry in tests.
	Clock func() time.Time
}

// Registry is an in-memory index of downloadable artifacts backed by an
// artifact store. Safe for concurrent use.
type Registry struct {
	store      storage.ArtifactStore
	rec        metrics.Recorder
	hist       history.Store
	now        func() time.Time
	defaultTTL time.Duration

	mu    sync.Mutex
	files map[string]ServedFile
}

// New creates a Registry serving artifacts from store.
func New(store storage.ArtifactStore, opts Options) *Registry {
	rec := opts.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	hist := opts.History
	if hist == nil {
		hist = history.NopStore{}
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	ttl := opts.DefaultTTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		store:      store,
		rec:        rec,
		hist:       hist,
		now:        now,
		defaultTTL: ttl,
		files:      make(map[string]ServedFile),
	}
}

// Register adds an artifact under a fresh ID and returns it. A zero ttl
// falls back to the registry default; a negative ttl yields an entry that
// is already expired.
func (r *Registry) Register(ctx context.Context, path, displayName string, ttl time.Duration) ServedFile {
	if ttl == 0 {
		r.mu.Lock()
		ttl = r.defaultTTL
		r.mu.Unlock()
	}
	at := r.now()
	file := ServedFile{
		ID:           uuid.NewString(),
		DisplayName:  displayName,
		Path:         path,
		RegisteredAt: at,
		ExpiresAt:    at.Add(ttl),
	}

	r.mu.Lock()
	r.files[file.ID] = file
	active := 0
	for _, f := range r.files {
		if !f.Expired(at) {
			active++
		}
	}
	r.mu.Unlock()

	r.rec.SetActiveFiles(active)
	r.appendHistory(ctx, file, history.EventRegistered)
	slog.Debug("Artifact registered for download",
		"file_id", file.ID,
		"name", displayName,
		"expires_at", file.ExpiresAt)
	return file
}

// SetDefaultTTL changes the TTL applied to future registrations. Existing
// entries keep their original expiry.
func (r *Registry) SetDefaultTTL(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	r.mu.Lock()
	r.defaultTTL = ttl
	r.mu.Unlock()
}

// Resolve returns the artifact bytes and display name for id. Unknown IDs
// yield a not-found error; expired IDs yield a gone error and evict the
// entry so the ID never flips back to serving.
func (r *Registry) Resolve(ctx context.Context, id string) ([]byte, string, error) {
	r.mu.Lock()
	file, ok := r.files[id]
	if ok && file.Expired(r.now()) {
		delete(r.files, id)
		r.mu.Unlock()

		r.rec.IncDownload(metrics.DownloadGone)
		r.appendHistory(ctx, file, history.EventExpired)
		r.deleteArtifact(ctx, file)
		return nil, "", errors.NewError(errors.CategoryGone, "download link has expired").
			WithContext("file_id", id).
			Build()
	}
	r.mu.Unlock()

	if !ok {
		r.rec.IncDownload(metrics.DownloadNotFound)
		return nil, "", errors.NewError(errors.CategoryNotFound, "unknown file ID").
			WithContext("file_id", id).
			Build()
	}

	data, err := r.store.Read(ctx, file.Path)
	if err != nil {
		r.rec.IncDownload(metrics.DownloadError)
		if storage.IsNotFound(err) {
			return nil, "", errors.WrapError(err, errors.CategoryNotFound, "artifact missing from store").
				WithContext("file_id", id).
				Build()
		}
		return nil, "", errors.WrapError(err, errors.CategoryStorage, "failed to read artifact").
			WithContext("file_id", id).
			Build()
	}

	r.rec.IncDownload(metrics.DownloadOK)
	r.appendHistory(ctx, file, history.EventDownloaded)
	return data, file.DisplayName, nil
}

// ListActive returns the non-expired entries ordered by registration time.
func (r *Registry) ListActive() []ServedFile {
	at := r.now()

	r.mu.Lock()
	out := make([]ServedFile, 0, len(r.files))
	for _, file := range r.files {
		if !file.Expired(at) {
			out = append(out, file)
		}
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].RegisteredAt.Before(out[j].RegisteredAt)
	})
	return out
}

// Len returns the number of tracked entries, expired ones included.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.files)
}

// Sweep evicts expired entries and removes their backing artifacts. Delete
// failures are logged and counted but never abort the sweep; the entry is
// evicted regardless so it cannot be served again.
func (r *Registry) Sweep(ctx context.Context) int {
	at := r.now()

	r.mu.Lock()
	var expired []ServedFile
	for id, file := range r.files {
		if file.Expired(at) {
			expired = append(expired, file)
			delete(r.files, id)
		}
	}
	active := len(r.files)
	r.mu.Unlock()

	for _, file := range expired {
		r.rec.IncSweepEvicted(1)
		r.appendHistory(ctx, file, history.EventSwept)
		r.deleteArtifact(ctx, file)
	}

	r.rec.SetActiveFiles(active)
	if len(expired) > 0 {
		slog.Info("Expired downloads swept", "evicted", len(expired), "active", active)
	}
	return len(expired)
}

// appendHistory records a lifecycle event, never failing the caller.
func (r *Registry) appendHistory(ctx context.Context, file ServedFile, eventType string) {
	err := r.hist.Append(ctx, file.DisplayName, eventType, map[string]string{"file_id": file.ID})
	if err != nil {
		slog.Warn("Failed to record history event",
			"file_id", file.ID,
			"event", eventType,
			"error", err)
	}
}

// deleteArtifact removes the backing file, tolerating entries whose artifact
// is already gone.
func (r *Registry) deleteArtifact(ctx context.Context, file ServedFile) {
	if err := r.store.Delete(ctx, file.Path); err != nil && !storage.IsNotFound(err) {
		r.rec.IncSweepDeleteFailure()
		slog.Warn("Failed to delete expired artifact",
			"file_id", file.ID,
			"path", file.Path,
			"error", err)
	}
}
