package httpserver

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/contractforge/internal/logfields"
)

// docxContentType is the MIME type for WordprocessingML documents.
const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// docsMux builds the public download surface.
func (s *Server) docsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /index.html", s.handleIndex)
	mux.HandleFunc("GET /download/{id}", s.handleDownload)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return mux
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Generated Documents</title>
<style>
body { font-family: sans-serif; margin: 2rem auto; max-width: 48rem; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: 0.4rem 0.8rem; border-bottom: 1px solid #ddd; }
.empty { color: #666; }
</style>
</head>
<body>
<h1>Generated Documents</h1>
{{if .Files}}
<table>
<tr><th>Document</th><th>Expires</th></tr>
{{range .Files}}
<tr><td><a href="/download/{{.ID}}">{{.DisplayName}}</a></td><td>{{.ExpiresAt.Format "2006-01-02 15:04 MST"}}</td></tr>
{{end}}
</table>
{{else}}
<p class="empty">No documents are currently available for download.</p>
{{end}}
</body>
</html>
`))

type indexFile struct {
	ID          string
	DisplayName string
	ExpiresAt   time.Time
}

// handleIndex lists the active downloads as an HTML page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	active := s.deps.Registry.ListActive()
	files := make([]indexFile, 0, len(active))
	for _, f := range active {
		files = append(files, indexFile{ID: f.ID, DisplayName: f.DisplayName, ExpiresAt: f.ExpiresAt})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, struct{ Files []indexFile }{files}); err != nil {
		slog.Error("Failed to render index page", logfields.Error(err))
	}
}

// handleDownload streams one artifact. Unknown IDs answer 404; expired ones
// answer 410 and never flip back.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	data, name, err := s.deps.Registry.Resolve(r.Context(), id)
	if err != nil {
		s.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	if _, err := w.Write(data); err != nil {
		slog.Warn("Download interrupted", logfields.FileID(id), logfields.Error(err))
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
