// Package templates loads contract structure templates. Built-in templates
// ship embedded in the binary; a library directory on disk overrides or
// extends them per deployment.
package templates

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"git.home.luguber.info/inful/contractforge/internal/docmodel"
	"git.home.luguber.info/inful/contractforge/internal/foundation/errors"
)

//go:embed builtin/*.json
var builtinFS embed.FS

// Template is one loadable contract template: the declared document type
// plus the structure description to merge with caller input data.
type Template struct {
	DocumentType string             `json:"document_type"`
	Structure    docmodel.Structure `json:"structure"`
}

// Library resolves document types to templates. A zero directory serves
// built-ins only. Safe for concurrent use; the directory may be swapped at
// runtime by a config reload.
type Library struct {
	mu  sync.RWMutex
	dir string
}

// NewLibrary creates a Library reading overrides from dir. An empty dir
// disables overrides.
func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// Directory returns the current override directory.
func (l *Library) Directory() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dir
}

// SetDirectory changes the override directory. Holders of the Library see
// the new directory on their next lookup.
func (l *Library) SetDirectory(dir string) {
	l.mu.Lock()
	l.dir = dir
	l.mu.Unlock()
}

// fileName maps a document type onto its template file name, e.g.
// "service-agreement" becomes "service_agreement.json".
func fileName(documentType string) string {
	normalized := strings.ReplaceAll(strings.ToLower(documentType), "-", "_")
	return normalized + ".json"
}

// Load returns the template for documentType, preferring the on-disk
// library over built-ins. Unknown types yield a not-found error.
func (l *Library) Load(documentType string) (*Template, error) {
	if strings.TrimSpace(documentType) == "" {
		return nil, errors.NewError(errors.CategoryValidation, "document type is required").Build()
	}

	name := fileName(documentType)

	if dir := l.Directory(); dir != "" {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path) // #nosec G304 -- path is confined to the configured library dir
		if err == nil {
			return parseTemplate(documentType, data)
		}
		if !os.IsNotExist(err) {
			return nil, errors.WrapError(err, errors.CategoryStorage, "failed to read template").
				WithContext("path", path).
				Build()
		}
	}

	data, err := builtinFS.ReadFile("builtin/" + name)
	if err != nil {
		return nil, errors.NewError(errors.CategoryNotFound, "unsupported document type").
			WithContext("document_type", documentType).
			Build()
	}
	return parseTemplate(documentType, data)
}

func parseTemplate(documentType string, data []byte) (*Template, error) {
	var tpl Template
	if err := json.Unmarshal(data, &tpl); err != nil {
		return nil, errors.WrapError(err, errors.CategoryStructure, "malformed template").
			WithContext("document_type", documentType).
			Build()
	}
	if tpl.DocumentType == "" {
		tpl.DocumentType = documentType
	}
	if err := tpl.Structure.Validate(); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// Types returns the available document types, built-ins and on-disk
// overrides combined, sorted.
func (l *Library) Types() []string {
	seen := make(map[string]bool)

	entries, err := builtinFS.ReadDir("builtin")
	if err == nil {
		for _, entry := range entries {
			if typ := typeFromFile(entry.Name()); typ != "" {
				seen[typ] = true
			}
		}
	}

	if dir := l.Directory(); dir != "" {
		diskEntries, err := os.ReadDir(dir)
		if err == nil {
			for _, entry := range diskEntries {
				if entry.IsDir() {
					continue
				}
				if typ := typeFromFile(entry.Name()); typ != "" {
					seen[typ] = true
				}
			}
		}
	}

	types := make([]string, 0, len(seen))
	for typ := range seen {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

// typeFromFile recovers the document type from a template file name.
func typeFromFile(name string) string {
	if !strings.HasSuffix(name, ".json") {
		return ""
	}
	base := strings.TrimSuffix(name, ".json")
	return strings.ReplaceAll(base, "_", "-")
}

// BuildRequest merges a loaded template with input data into a generation
// request.
func (t *Template) BuildRequest(data docmodel.InputData) *docmodel.Request {
	if data == nil {
		data = docmodel.InputData{}
	}
	return &docmodel.Request{
		DocumentType: t.DocumentType,
		Structure:    t.Structure,
		InputData:    data,
	}
}

// WriteStarter writes the built-in template for documentType into dir,
// giving deployments a file to customize. Existing files are not
// overwritten.
func WriteStarter(dir, documentType string) (string, error) {
	name := fileName(documentType)
	data, err := builtinFS.ReadFile("builtin/" + name)
	if err != nil {
		return "", errors.NewError(errors.CategoryNotFound, "unsupported document type").
			WithContext("document_type", documentType).
			Build()
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", errors.WrapError(err, errors.CategoryStorage, "failed to create template directory").Build()
	}

	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("template already exists: %s", path)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", errors.WrapError(err, errors.CategoryStorage, "failed to write template").
			WithContext("path", path).
			Build()
	}
	return path, nil
}
