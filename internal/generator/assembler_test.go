package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/contractforge/internal/docmodel"
	founderrors "git.home.luguber.info/inful/contractforge/internal/foundation/errors"
	"git.home.luguber.info/inful/contractforge/internal/render"
	"git.home.luguber.info/inful/contractforge/internal/storage"
)

// fakeDocument records assembly output and serializes to a fixed payload.
type fakeDocument struct {
	recordingSink
	bytesErr error
}

func (d *fakeDocument) Bytes() ([]byte, error) {
	if d.bytesErr != nil {
		return nil, d.bytesErr
	}
	return []byte("artifact-bytes"), nil
}

func (d *fakeDocument) Extension() string { return ".docx" }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func validRequest() *docmodel.Request {
	return &docmodel.Request{
		DocumentType: "Service Agreement",
		Structure: docmodel.Structure{
			Title: &docmodel.TitleBlock{Content: "{{doc.title}}"},
		},
		InputData: docmodel.InputData{
			"doc": map[string]any{"title": "Service Agreement"},
		},
	}
}

func TestGenerateDefaultName(t *testing.T) {
	store := storage.NewMockStore()
	at := time.Date(2026, 8, 30, 14, 25, 1, 0, time.UTC)
	doc := &fakeDocument{}
	gen := New(store, Options{
		Clock:       fixedClock(at),
		NewDocument: func() render.Document { return doc },
	})

	artifact, err := gen.Generate(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "Service_Agreement_20260830_142501.docx", artifact.Name)
	assert.Equal(t, "Service Agreement", artifact.DocumentType)
	assert.Equal(t, int64(len("artifact-bytes")), artifact.Size)
	assert.Equal(t, at, artifact.CreatedAt)
	assert.Equal(t, 1, store.Calls().Write)

	require.NotEmpty(t, doc.blocks)
	assert.Equal(t, "heading", doc.blocks[0].kind)
}

func TestGenerateNamedKeepsCallerName(t *testing.T) {
	store := storage.NewMockStore()
	gen := New(store, Options{
		NewDocument: func() render.Document { return &fakeDocument{} },
	})

	artifact, err := gen.GenerateNamed(context.Background(), validRequest(), "custom.docx")
	require.NoError(t, err)
	assert.Equal(t, "custom.docx", artifact.Name)
}

func TestGenerateRejectsInvalidStructure(t *testing.T) {
	store := storage.NewMockStore()
	gen := New(store, Options{
		NewDocument: func() render.Document { return &fakeDocument{} },
	})

	req := validRequest()
	req.Structure.Title.Content = ""

	_, err := gen.Generate(context.Background(), req)
	require.Error(t, err)
	assert.True(t, founderrors.HasCategory(err, founderrors.CategoryStructure))
	assert.Zero(t, store.Calls().Write, "rejected request must not reach the store")
}

func TestGenerateStorageFailure(t *testing.T) {
	store := storage.NewMockStore()
	store.WriteErr = errors.New("disk full")
	gen := New(store, Options{
		NewDocument: func() render.Document { return &fakeDocument{} },
	})

	_, err := gen.Generate(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, founderrors.HasCategory(err, founderrors.CategoryStorage))
}

func TestGenerateSerializationFailure(t *testing.T) {
	store := storage.NewMockStore()
	gen := New(store, Options{
		NewDocument: func() render.Document {
			return &fakeDocument{bytesErr: errors.New("boom")}
		},
	})

	_, err := gen.Generate(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, founderrors.HasCategory(err, founderrors.CategoryInternal))
	assert.Zero(t, store.Calls().Write)
}

func TestGenerateDefaultDocumentIsDocx(t *testing.T) {
	store := storage.NewMockStore()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	gen := New(store, Options{Clock: fixedClock(at)})

	artifact, err := gen.Generate(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "Service_Agreement_20260102_030405.docx", artifact.Name)
	assert.Greater(t, artifact.Size, int64(0))
}
