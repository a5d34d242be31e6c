package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"git.home.luguber.info/inful/contractforge/internal/config"
	"git.home.luguber.info/inful/contractforge/internal/docmodel"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRunGenerateFromTemplate(t *testing.T) {
	dir := t.TempDir()
	dataPath := writeFile(t, dir, "data.json", `{"disclosing_party_name": "Acme Corp"}`)
	output := filepath.Join(dir, "nda.docx")

	cfg := config.Default()
	cfg.Storage.Directory = dir

	if err := runGenerate(cfg, "", "nda", dataPath, "", output); err != nil {
		t.Fatalf("runGenerate: %v", err)
	}

	raw, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("output artifact missing: %v", err)
	}
	if _, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw))); err != nil {
		t.Fatalf("output is not a DOCX archive: %v", err)
	}
}

func TestRunGenerateDefaultsToStorageDir(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.Directory = dir

	if err := runGenerate(cfg, "", "sow", "", "", ""); err != nil {
		t.Fatalf("runGenerate: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one artifact, got %d", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "Statement_of_Work_") || !strings.HasSuffix(name, ".docx") {
		t.Fatalf("unexpected artifact name %q", name)
	}
}

func TestRunGenerateUnknownType(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Directory = t.TempDir()

	if err := runGenerate(cfg, "", "lease", "", "", ""); err == nil {
		t.Fatal("expected error for unknown document type")
	}
}

func TestRunGenerateFromCombinedRequest(t *testing.T) {
	dir := t.TempDir()
	requestPath := writeFile(t, dir, "request.json", `{
		"document_type": "Consulting Agreement",
		"structure": {"title": {"content": "Consulting Agreement for {{client.name}}"}},
		"input_data": {"client": {"name": "Acme"}}
	}`)
	output := filepath.Join(dir, "consulting.docx")

	cfg := config.Default()
	cfg.Storage.Directory = dir

	if err := runGenerate(cfg, requestPath, "", "", "", output); err != nil {
		t.Fatalf("runGenerate: %v", err)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("output artifact missing: %v", err)
	}
}

func TestBuildRequestRequiresTypeOrStructure(t *testing.T) {
	if _, err := buildRequest(config.Default(), "", "", "", nil); err == nil {
		t.Fatal("expected error when neither type nor structure given")
	}
}

func TestBuildRequestFromStructureFile(t *testing.T) {
	dir := t.TempDir()
	structPath := writeFile(t, dir, "structure.json", `{
		"title": {"content": "Custom {{client.name}} Agreement"}
	}`)

	req, err := buildRequest(config.Default(), "", "", structPath, docmodel.InputData{"client": map[string]any{"name": "Acme"}})
	if err != nil {
		t.Fatalf("buildRequest: %v", err)
	}
	if req.DocumentType != docmodel.DefaultDocumentType {
		t.Fatalf("expected fallback document type, got %q", req.DocumentType)
	}
	if req.Structure.Title == nil {
		t.Fatal("structure title not parsed")
	}
}

func TestBuildRequestRejectsMalformedStructure(t *testing.T) {
	dir := t.TempDir()
	structPath := writeFile(t, dir, "structure.json", `{"title": [`)

	if _, err := buildRequest(config.Default(), "", "", structPath, nil); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadInputData(t *testing.T) {
	dir := t.TempDir()
	dataPath := writeFile(t, dir, "data.json", `{"client": {"name": "Acme"}}`)

	data, err := loadInputData(dataPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := data["client"]; !ok {
		t.Fatal("client key missing from parsed input data")
	}

	empty, err := loadInputData("")
	if err != nil {
		t.Fatal(err)
	}
	if empty == nil {
		t.Fatal("expected non-nil empty input data")
	}
}

func TestRunInitWritesConfigAndTemplates(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "contractforge.yaml")
	templateDir := filepath.Join(dir, "templates")

	if err := runInit(configPath, false, templateDir); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	entries, err := os.ReadDir(templateDir)
	if err != nil {
		t.Fatalf("template dir not written: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no starter templates written")
	}
}
