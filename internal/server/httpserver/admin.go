package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/contractforge/internal/docmodel"
	founderrors "git.home.luguber.info/inful/contractforge/internal/foundation/errors"
	"git.home.luguber.info/inful/contractforge/internal/history"
	"git.home.luguber.info/inful/contractforge/internal/logfields"
)

// adminMux builds the administrative surface: generation API, file listing,
// template catalog, and metrics.
func (s *Server) adminMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/files", s.handleFiles)
	mux.HandleFunc("GET /api/templates", s.handleTemplates)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	if s.deps.PrometheusHandler != nil {
		mux.Handle("GET /metrics", s.deps.PrometheusHandler)
	}
	return mux
}

// generateRequest is the API envelope. Callers either supply a full
// structure inline or name a document type from the template library.
type generateRequest struct {
	DocumentType string              `json:"document_type"`
	Structure    *docmodel.Structure `json:"structure,omitempty"`
	InputData    docmodel.InputData  `json:"input_data"`
}

// generateResponse describes the registered download.
type generateResponse struct {
	Message     string    `json:"message"`
	File        string    `json:"file"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
	FileID      string    `json:"file_id"`
}

// handleGenerate renders a document and registers it for download.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var apiReq generateRequest
	if err := json.NewDecoder(r.Body).Decode(&apiReq); err != nil {
		s.errorAdapter.WriteErrorResponse(w, r,
			founderrors.WrapError(err, founderrors.CategoryValidation, "failed to decode generation request").Build())
		return
	}

	var req *docmodel.Request
	if apiReq.Structure != nil {
		req = &docmodel.Request{
			DocumentType: apiReq.DocumentType,
			Structure:    *apiReq.Structure,
			InputData:    apiReq.InputData,
		}
		if req.DocumentType == "" {
			req.DocumentType = docmodel.DefaultDocumentType
		}
		if req.InputData == nil {
			req.InputData = docmodel.InputData{}
		}
	} else {
		tpl, err := s.deps.Library.Load(apiReq.DocumentType)
		if err != nil {
			s.errorAdapter.WriteErrorResponse(w, r, err)
			return
		}
		req = tpl.BuildRequest(apiReq.InputData)
	}

	artifact, err := s.deps.Generator.Generate(r.Context(), req)
	if err != nil {
		s.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	_ = s.deps.History.Append(r.Context(), artifact.Name, history.EventGenerated,
		map[string]string{"document_type": artifact.DocumentType})

	// TTL of zero defers to the registry default, which tracks config reloads.
	file := s.deps.Registry.Register(r.Context(), artifact.Path, artifact.Name, 0)

	slog.Info("Document generated via API",
		logfields.DocumentType(artifact.DocumentType),
		logfields.Artifact(artifact.Name),
		logfields.FileID(file.ID))

	writeJSON(w, http.StatusCreated, generateResponse{
		Message:     "Document generated successfully",
		File:        file.DisplayName,
		DownloadURL: "/download/" + file.ID,
		ExpiresAt:   file.ExpiresAt,
		FileID:      file.ID,
	})
}

// servedFileResponse is one row of the active files listing.
type servedFileResponse struct {
	FileID       string    `json:"file_id"`
	Name         string    `json:"name"`
	DownloadURL  string    `json:"download_url"`
	RegisteredAt time.Time `json:"registered_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (s *Server) handleFiles(w http.ResponseWriter, _ *http.Request) {
	active := s.deps.Registry.ListActive()
	out := make([]servedFileResponse, 0, len(active))
	for _, f := range active {
		out = append(out, servedFileResponse{
			FileID:       f.ID,
			Name:         f.DisplayName,
			DownloadURL:  "/download/" + f.ID,
			RegisteredAt: f.RegisteredAt,
			ExpiresAt:    f.ExpiresAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": out})
}

func (s *Server) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"document_types": s.deps.Library.Types()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", logfields.Error(err))
	}
}
