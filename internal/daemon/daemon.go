// Package daemon assembles the long-running service: artifact storage,
// the generation engine, the download registry with its expiry sweeper,
// both HTTP surfaces, and the config watcher.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/contractforge/internal/config"
	"git.home.luguber.info/inful/contractforge/internal/generator"
	"git.home.luguber.info/inful/contractforge/internal/history"
	"git.home.luguber.info/inful/contractforge/internal/metrics"
	"git.home.luguber.info/inful/contractforge/internal/registry"
	"git.home.luguber.info/inful/contractforge/internal/server/httpserver"
	"git.home.luguber.info/inful/contractforge/internal/storage"
	"git.home.luguber.info/inful/contractforge/internal/templates"
)

// Status represents the current state of the daemon.
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
	StatusError    Status = "error"
)

// Daemon owns the service components and their lifecycle.
type Daemon struct {
	config         *config.Config
	configFilePath string
	status         atomic.Value // Status
	startTime      time.Time
	stopChan       chan struct{}
	mu             sync.RWMutex

	store         *storage.FSStore
	historyStore  history.Store
	recorder      *metrics.PrometheusRecorder
	generator     *generator.Generator
	registry      *registry.Registry
	library       *templates.Library
	httpServer    *httpserver.Server
	sweeper       *Sweeper
	configWatcher *ConfigWatcher
}

// New creates a daemon instance without config file watching.
func New(cfg *config.Config) (*Daemon, error) {
	return NewWithConfigFile(cfg, "")
}

// NewWithConfigFile creates a daemon instance. A non-empty configFilePath
// enables hot reload of the configuration file.
func NewWithConfigFile(cfg *config.Config, configFilePath string) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Daemon{
		config:         cfg,
		configFilePath: configFilePath,
		stopChan:       make(chan struct{}),
	}
	d.status.Store(StatusStopped)

	store, err := storage.NewFSStore(cfg.Storage.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize artifact storage: %w", err)
	}
	d.store = store

	if cfg.History.Enabled {
		dbPath := cfg.History.Path
		if dbPath == "" {
			dbPath = ":memory:"
		}
		hist, err := history.NewSQLiteStore(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open history store: %w", err)
		}
		d.historyStore = hist
	} else {
		d.historyStore = history.NopStore{}
	}

	promRegistry := prom.NewRegistry()
	d.recorder = metrics.NewPrometheusRecorder(promRegistry)

	d.generator = generator.New(store, generator.Options{Recorder: d.recorder})
	d.registry = registry.New(store, registry.Options{
		DefaultTTL: cfg.Downloads.TTL.D(),
		Recorder:   d.recorder,
		History:    d.historyStore,
	})
	d.library = templates.NewLibrary(cfg.Templates.Directory)

	d.httpServer = httpserver.New(cfg, httpserver.Deps{
		Generator:         d.generator,
		Registry:          d.registry,
		Library:           d.library,
		History:           d.historyStore,
		PrometheusHandler: metrics.HTTPHandler(promRegistry),
	})

	sweeper, err := NewSweeper(d.registry, cfg.Downloads.SweepInterval.D())
	if err != nil {
		return nil, fmt.Errorf("failed to create sweeper: %w", err)
	}
	d.sweeper = sweeper

	if configFilePath != "" {
		watcher, err := NewConfigWatcher(configFilePath, d)
		if err != nil {
			slog.Warn("Config watcher unavailable, hot reload disabled", "error", err)
		} else {
			d.configWatcher = watcher
		}
	}

	return d, nil
}

// Start launches all components and blocks until ctx is cancelled or Stop
// is called.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.GetStatus() != StatusStopped {
		d.mu.Unlock()
		return fmt.Errorf("daemon is not in stopped state: %s", d.GetStatus())
	}

	d.status.Store(StatusStarting)
	d.startTime = time.Now()
	slog.Info("Starting ContractForge daemon")

	if err := d.httpServer.Start(ctx); err != nil {
		d.status.Store(StatusError)
		d.mu.Unlock()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	d.sweeper.Start(ctx)

	if d.configWatcher != nil {
		if err := d.configWatcher.Start(ctx); err != nil {
			slog.Error("Failed to start config watcher", "error", err)
		}
	}

	d.status.Store(StatusRunning)
	slog.Info("ContractForge daemon started",
		slog.String("docs_addr", d.config.Server.DocsAddr),
		slog.String("admin_addr", d.config.Server.AdminAddr),
		slog.String("storage_dir", d.config.Storage.Directory),
		slog.Duration("download_ttl", d.config.Downloads.TTL.D()),
		slog.Duration("sweep_interval", d.config.Downloads.SweepInterval.D()))
	d.mu.Unlock()

	select {
	case <-ctx.Done():
	case <-d.stopChan:
	}

	d.status.Store(StatusStopping)
	return nil
}

// Stop gracefully shuts down the daemon. Safe to call more than once.
func (d *Daemon) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.GetStatus() == StatusStopped {
		return nil
	}
	d.status.Store(StatusStopping)
	slog.Info("Stopping ContractForge daemon")

	select {
	case <-d.stopChan:
	default:
		close(d.stopChan)
	}

	if d.configWatcher != nil {
		if err := d.configWatcher.Stop(ctx); err != nil {
			slog.Error("Failed to stop config watcher", "error", err)
		}
	}

	if d.sweeper != nil {
		if err := d.sweeper.Stop(ctx); err != nil {
			slog.Error("Failed to stop sweeper", "error", err)
		}
	}

	if d.httpServer != nil {
		if err := d.httpServer.Stop(ctx); err != nil {
			slog.Error("Failed to stop HTTP server", "error", err)
		}
	}

	if d.historyStore != nil {
		if err := d.historyStore.Close(); err != nil {
			slog.Error("Failed to close history store", "error", err)
		}
	}

	d.status.Store(StatusStopped)
	slog.Info("ContractForge daemon stopped", slog.Duration("uptime", time.Since(d.startTime)))
	return nil
}

// GetStatus returns the current daemon status.
func (d *Daemon) GetStatus() Status {
	if s, ok := d.status.Load().(Status); ok {
		return s
	}
	return StatusStopped
}

// GetStartTime returns when the daemon started.
func (d *Daemon) GetStartTime() time.Time {
	return d.startTime
}

// Registry exposes the download registry, used by the sweeper and tests.
func (d *Daemon) Registry() *registry.Registry {
	return d.registry
}

// GetConfig returns the active configuration.
func (d *Daemon) GetConfig() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.config
}

// ReloadConfig applies a new configuration to running components. Address
// and storage changes require a restart and are only logged; download TTL
// and sweep cadence take effect immediately.
func (d *Daemon) ReloadConfig(ctx context.Context, newConfig *config.Config) error {
	if err := newConfig.Validate(); err != nil {
		return fmt.Errorf("new configuration is invalid: %w", err)
	}

	d.mu.Lock()
	old := d.config
	d.config = newConfig
	d.mu.Unlock()

	if old.Downloads.TTL != newConfig.Downloads.TTL {
		d.registry.SetDefaultTTL(newConfig.Downloads.TTL.D())
		slog.Info("Download TTL updated",
			slog.Duration("old", old.Downloads.TTL.D()),
			slog.Duration("new", newConfig.Downloads.TTL.D()))
	}

	if old.Downloads.SweepInterval != newConfig.Downloads.SweepInterval {
		if err := d.sweeper.Reschedule(newConfig.Downloads.SweepInterval.D()); err != nil {
			return fmt.Errorf("failed to reschedule sweeper: %w", err)
		}
	}

	if old.Templates.Directory != newConfig.Templates.Directory {
		// The HTTP server holds the same *Library, so it picks up the new
		// directory on its next lookup.
		d.library.SetDirectory(newConfig.Templates.Directory)
		slog.Info("Template directory updated", "directory", newConfig.Templates.Directory)
	}

	return nil
}
