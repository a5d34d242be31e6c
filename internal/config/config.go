// Package config loads the service configuration from YAML with environment
// expansion. A .env file in the working directory seeds the environment
// before expansion; process variables win over file entries.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/contractforge/internal/foundation/errors"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "contractforge.yaml"

// Config is the application configuration.
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Server    ServerConfig    `yaml:"server"`
	Downloads DownloadsConfig `yaml:"downloads"`
	Templates TemplatesConfig `yaml:"templates"`
	History   HistoryConfig   `yaml:"history"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// StorageConfig locates the artifact store on disk.
type StorageConfig struct {
	// Directory holds generated artifacts awaiting download.
	Directory string `yaml:"directory"`
}

// ServerConfig configures the two HTTP listeners: the public docs server
// serving the index and downloads, and the admin server carrying the API
// and metrics.
type ServerConfig struct {
	DocsAddr  string `yaml:"docs_addr"`
	AdminAddr string `yaml:"admin_addr"`
}

// DownloadsConfig governs the ephemeral distribution of artifacts.
type DownloadsConfig struct {
	// TTL is how long a registered file stays downloadable.
	TTL Duration `yaml:"ttl"`
	// SweepInterval is how often expired entries are garbage collected.
	SweepInterval Duration `yaml:"sweep_interval"`
}

// TemplatesConfig locates the on-disk template library overriding the
// built-in templates.
type TemplatesConfig struct {
	Directory string `yaml:"directory"`
}

// HistoryConfig configures the artifact event log.
type HistoryConfig struct {
	// Enabled toggles history recording.
	Enabled bool `yaml:"enabled"`
	// Path is the SQLite database file. Empty means in-memory.
	Path string `yaml:"path"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Storage:   StorageConfig{Directory: "./generated_docs"},
		Server:    ServerConfig{DocsAddr: ":8080", AdminAddr: ":8081"},
		Downloads: DownloadsConfig{TTL: Duration(time.Hour), SweepInterval: Duration(10 * time.Minute)},
		Templates: TemplatesConfig{Directory: ""},
		History:   HistoryConfig{Enabled: true, Path: "./contractforge_history.db"},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads the configuration from path, expanding ${VAR} references
// against the environment. A .env or .env.local file is loaded first when
// present, without overriding existing variables.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator's CLI flag
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read configuration").
			WithContext("path", path).
			Build()
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse configuration").
			WithContext("path", path).
			Build()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to defaults when the file
// does not exist.
func LoadOrDefault(path string) (*Config, error) {
	lookup := path
	if lookup == "" {
		lookup = DefaultPath
	}
	if _, err := os.Stat(lookup); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// loadEnvFiles seeds the environment from the first .env file found.
// Existing process variables are never overwritten.
func loadEnvFiles() {
	for _, name := range []string{".env", ".env.local"} {
		if err := godotenv.Load(name); err == nil {
			return
		}
	}
}

// Validate checks the configuration for operator mistakes.
func (c *Config) Validate() error {
	var problems []string

	if c.Storage.Directory == "" {
		problems = append(problems, "storage.directory is required")
	}
	if c.Server.DocsAddr == "" {
		problems = append(problems, "server.docs_addr is required")
	}
	if c.Server.AdminAddr == "" {
		problems = append(problems, "server.admin_addr is required")
	}
	if c.Server.DocsAddr != "" && c.Server.DocsAddr == c.Server.AdminAddr {
		problems = append(problems, "server.docs_addr and server.admin_addr must differ")
	}
	if c.Downloads.TTL <= 0 {
		problems = append(problems, "downloads.ttl must be positive")
	}
	if c.Downloads.SweepInterval <= 0 {
		problems = append(problems, "downloads.sweep_interval must be positive")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not one of text, json", c.Logging.Format))
	}

	if len(problems) > 0 {
		return errors.NewError(errors.CategoryConfig, "invalid configuration").
			WithContext("problems", problems).
			Build()
	}
	return nil
}

// Init writes a starter configuration file at path.
func Init(path string, force bool) error {
	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err == nil && !force {
		return errors.NewError(errors.CategoryConfig, "configuration file already exists").
			WithContext("path", path).
			WithContext("hint", "use --force to overwrite").
			Build()
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal configuration").Build()
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "failed to write configuration").
			WithContext("path", path).
			Build()
	}
	return nil
}
