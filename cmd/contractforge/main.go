package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/contractforge/internal/config"
	"git.home.luguber.info/inful/contractforge/internal/daemon"
	"git.home.luguber.info/inful/contractforge/internal/docmodel"
	founderrors "git.home.luguber.info/inful/contractforge/internal/foundation/errors"
	"git.home.luguber.info/inful/contractforge/internal/generator"
	"git.home.luguber.info/inful/contractforge/internal/storage"
	"git.home.luguber.info/inful/contractforge/internal/templates"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"contractforge.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Generate struct {
		Request   string `arg:"" optional:"" help:"Combined request JSON file (document_type, structure, input_data)"`
		Type      string `short:"t" help:"Document type to generate (see the templates command)"`
		Data      string `short:"d" help:"JSON file with input data for placeholder resolution"`
		Structure string `short:"s" help:"JSON file with a full document structure, bypassing the template library"`
		Output    string `short:"o" help:"Output file path (default: storage directory with a timestamped name)"`
	} `cmd:"" help:"Generate a contract document to a local file"`

	Serve struct{} `cmd:"" help:"Run the generation and download service"`

	Init struct {
		Force     bool   `help:"Overwrite an existing configuration file"`
		Templates string `help:"Also write starter template files into this directory"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Templates struct{} `cmd:"" help:"List available document types"`
}

func main() {
	ctx := kong.Parse(&CLI)

	errAdapter := founderrors.NewCLIErrorAdapter(CLI.Verbose, nil)

	cfg, err := config.LoadOrDefault(CLI.Config)
	if err != nil {
		errAdapter.HandleError(err)
	}
	setupLogging(cfg.Logging, CLI.Verbose)

	switch ctx.Command() {
	case "generate", "generate <request>":
		errAdapter.HandleError(runGenerate(cfg, CLI.Generate.Request, CLI.Generate.Type, CLI.Generate.Data, CLI.Generate.Structure, CLI.Generate.Output))
	case "serve":
		errAdapter.HandleError(runServe(cfg))
	case "init":
		errAdapter.HandleError(runInit(CLI.Config, CLI.Init.Force, CLI.Init.Templates))
	case "templates":
		for _, typ := range templates.NewLibrary(cfg.Templates.Directory).Types() {
			fmt.Println(typ)
		}
	}
}

func setupLogging(cfg config.LoggingConfig, verbose bool) {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func runGenerate(cfg *config.Config, requestPath, documentType, dataPath, structurePath, output string) error {
	data, err := loadInputData(dataPath)
	if err != nil {
		return err
	}

	req, err := buildRequest(cfg, requestPath, documentType, structurePath, data)
	if err != nil {
		return err
	}

	// A one-off generation writes straight to the output location instead
	// of the daemon's storage directory.
	storeDir := cfg.Storage.Directory
	name := ""
	if output != "" {
		abs, err := filepath.Abs(output)
		if err != nil {
			return fmt.Errorf("failed to resolve output path: %w", err)
		}
		storeDir = filepath.Dir(abs)
		name = filepath.Base(abs)
	}
	store, err := storage.NewFSStore(storeDir)
	if err != nil {
		return err
	}

	gen := generator.New(store, generator.Options{})
	artifact, err := gen.GenerateNamed(context.Background(), req, name)
	if err != nil {
		return err
	}

	slog.Info("Document generated", "path", artifact.Path)
	fmt.Println(artifact.Path)
	return nil
}

func loadInputData(path string) (docmodel.InputData, error) {
	if path == "" {
		return docmodel.InputData{}, nil
	}
	raw, err := os.ReadFile(path) // #nosec G304 -- user-supplied CLI path
	if err != nil {
		return nil, fmt.Errorf("failed to read input data: %w", err)
	}
	var data docmodel.InputData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse input data: %w", err)
	}
	return data, nil
}

func buildRequest(cfg *config.Config, requestPath, documentType, structurePath string, data docmodel.InputData) (*docmodel.Request, error) {
	if requestPath != "" {
		raw, err := os.ReadFile(requestPath) // #nosec G304 -- user-supplied CLI path
		if err != nil {
			return nil, fmt.Errorf("failed to read request: %w", err)
		}
		var req docmodel.Request
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("failed to parse request: %w", err)
		}
		if req.DocumentType == "" {
			req.DocumentType = docmodel.DefaultDocumentType
		}
		if req.InputData == nil {
			req.InputData = data
		}
		return &req, nil
	}

	if structurePath != "" {
		raw, err := os.ReadFile(structurePath) // #nosec G304 -- user-supplied CLI path
		if err != nil {
			return nil, fmt.Errorf("failed to read structure: %w", err)
		}
		var structure docmodel.Structure
		if err := json.Unmarshal(raw, &structure); err != nil {
			return nil, fmt.Errorf("failed to parse structure: %w", err)
		}
		if documentType == "" {
			documentType = docmodel.DefaultDocumentType
		}
		return &docmodel.Request{DocumentType: documentType, Structure: structure, InputData: data}, nil
	}

	if documentType == "" {
		return nil, fmt.Errorf("either --type or --structure is required")
	}
	tpl, err := templates.NewLibrary(cfg.Templates.Directory).Load(documentType)
	if err != nil {
		return nil, err
	}
	return tpl.BuildRequest(data), nil
}

func runServe(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	configPath := ""
	if _, err := os.Stat(CLI.Config); err == nil {
		configPath = CLI.Config
	}

	d, err := daemon.NewWithConfigFile(cfg, configPath)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- d.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("daemon error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received, stopping daemon")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	return d.Stop(stopCtx)
}

func runInit(configPath string, force bool, templateDir string) error {
	slog.Info("Initializing configuration", "path", configPath, "force", force)
	if err := config.Init(configPath, force); err != nil {
		return err
	}

	if templateDir != "" {
		for _, typ := range templates.NewLibrary("").Types() {
			path, err := templates.WriteStarter(templateDir, typ)
			if err != nil {
				slog.Warn("Skipping starter template", "document_type", typ, "error", err)
				continue
			}
			slog.Info("Starter template written", "path", path)
		}
	}
	return nil
}
