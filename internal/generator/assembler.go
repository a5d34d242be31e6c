// Package generator assembles contract documents from a structure
// description and input data. Section builders append block-level elements
// to a render.Sink in a fixed order; the Generator persists the finished
// artifact through the artifact store.
package generator

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"git.home.luguber.info/inful/contractforge/internal/docmodel"
	"git.home.luguber.info/inful/contractforge/internal/docx"
	"git.home.luguber.info/inful/contractforge/internal/foundation/errors"
	"git.home.luguber.info/inful/contractforge/internal/metrics"
	"git.home.luguber.info/inful/contractforge/internal/render"
	"git.home.luguber.info/inful/contractforge/internal/storage"
)

// Artifact is the handle returned for a generated document.
type Artifact struct {
	// Name is the artifact file name, extension included.
	Name string
	// Path is the storage path of the persisted artifact.
	Path string
	// Size is the artifact size in bytes.
	Size int64
	// DocumentType is the declared type from the generation request.
	DocumentType string
	// CreatedAt is the generation timestamp.
	CreatedAt time.Time
}

// Options configures a Generator. The zero value is usable: wall clock,
// DOCX documents, no metrics.
type Options struct {
	// Recorder receives generation metrics. Nil means no recording.
	Recorder metrics.Recorder
	// Clock overrides time.Now, used for deterministic artifact names in tests.
	Clock func() time.Time
	// NewDocument overrides the output document factory.
	NewDocument func() render.Document
}

// Generator turns generation requests into persisted artifacts. It performs
// no network I/O; distribution is layered on top by the caller. A Generator
// is safe for concurrent use: each call owns its request and document.
type Generator struct {
	store  storage.ArtifactStore
	rec    metrics.Recorder
	now    func() time.Time
	newDoc func() render.Document
}

// New creates a Generator persisting artifacts through store.
func New(store storage.ArtifactStore, opts Options) *Generator {
	rec := opts.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	newDoc := opts.NewDocument
	if newDoc == nil {
		newDoc = func() render.Document { return docx.NewDocument() }
	}
	return &Generator{store: store, rec: rec, now: now, newDoc: newDoc}
}

// Generate renders the request into a new artifact with a synthesized name:
// the document type with spaces replaced by underscores, a second-precision
// timestamp, and the document's native extension.
func (g *Generator) Generate(ctx context.Context, req *docmodel.Request) (*Artifact, error) {
	return g.GenerateNamed(ctx, req, "")
}

// GenerateNamed renders the request into an artifact under the given name,
// or a synthesized one when name is empty. The call either fully succeeds
// or fully fails; no partial artifact is persisted.
func (g *Generator) GenerateNamed(ctx context.Context, req *docmodel.Request, name string) (*Artifact, error) {
	start := g.now()

	if err := req.Structure.Validate(); err != nil {
		g.rec.IncGenerateOutcome(metrics.OutcomeRejected)
		return nil, err
	}

	doc := g.newDoc()
	Assemble(&req.Structure, req.InputData, doc)

	data, err := doc.Bytes()
	if err != nil {
		g.rec.IncGenerateOutcome(metrics.OutcomeFailed)
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to serialize document").Build()
	}

	if name == "" {
		name = defaultArtifactName(req.DocumentType, start) + doc.Extension()
	}

	path, err := g.store.Write(ctx, name, data)
	if err != nil {
		g.rec.IncGenerateOutcome(metrics.OutcomeFailed)
		return nil, errors.WrapError(err, errors.CategoryStorage, "failed to persist artifact").
			WithContext("name", name).
			Build()
	}

	elapsed := g.now().Sub(start)
	g.rec.ObserveGenerateDuration(elapsed)
	g.rec.IncGenerateOutcome(metrics.OutcomeSuccess)

	slog.Info("Document generated",
		"document_type", req.DocumentType,
		"artifact", name,
		"size", len(data),
		"duration", elapsed)

	return &Artifact{
		Name:         name,
		Path:         path,
		Size:         int64(len(data)),
		DocumentType: req.DocumentType,
		CreatedAt:    start,
	}, nil
}

// Assemble walks the structure description in the fixed assembly order and
// renders every present block into sink: title, header section (plus a
// spacer), parties, sections in array order, signature section. Absent
// blocks are skipped without error.
func Assemble(structure *docmodel.Structure, data docmodel.InputData, sink render.Sink) {
	b := &builder{data: data, sink: sink}

	if structure.Title != nil {
		b.title(structure.Title)
	}
	if structure.HeaderSection != nil {
		b.headerSection(structure.HeaderSection)
		sink.Spacer()
	}
	if structure.Parties != nil {
		b.parties(structure.Parties)
	}
	for _, section := range structure.Sections {
		b.section(section)
	}
	if structure.SignatureSection != nil {
		b.signatureSection(structure.SignatureSection)
	}
}

// defaultArtifactName synthesizes the artifact base name from the document
// type and generation time, e.g. "Service_Agreement_20260830_142501".
func defaultArtifactName(documentType string, at time.Time) string {
	if documentType == "" {
		documentType = docmodel.DefaultDocumentType
	}
	return strings.ReplaceAll(documentType, " ", "_") + "_" + at.Format("20060102_150405")
}
