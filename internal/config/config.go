package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/panini/internal/foundation/errors"
)

// DefaultLayout is the layout used when neither front matter nor a directory
// override names one.
const DefaultLayout = "default"

// StagingDirName is the directory under the input root used by disk staging.
const StagingDirName = ".panini"

// Config represents the pipeline configuration. It is threaded explicitly into
// the parser, renderer and pipeline; nothing reads it from package state.
type Config struct {
	Input    string `yaml:"input"`
	Pages    string `yaml:"pages"`
	Layouts  string `yaml:"layouts"`
	Partials string `yaml:"partials"`
	Data     string `yaml:"data"`
	Output   string `yaml:"output"`

	Staging StagingMode `yaml:"staging"`

	// PageLayouts maps a directory relative to the pages root to a layout name.
	PageLayouts map[string]string `yaml:"page_layouts,omitempty"`
	// DataValues are inline global data merged over the data directory files.
	DataValues map[string]any `yaml:"data_values,omitempty"`

	Render  RenderConfig  `yaml:"render"`
	Events  EventsConfig  `yaml:"events"`
	Metrics MetricsConfig `yaml:"metrics"`
	Watch   WatchConfig   `yaml:"watch"`
}

// RenderConfig controls the build phase fan-out.
type RenderConfig struct {
	// Concurrency bounds simultaneous renders; 0 starts every page at once.
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`
}

// EventsConfig configures lifecycle event sinks.
type EventsConfig struct {
	Store       string `yaml:"store,omitempty"`
	NATSURL     string `yaml:"nats_url,omitempty"`
	NATSSubject string `yaml:"nats_subject,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint used in watch mode.
type MetricsConfig struct {
	Listen string `yaml:"listen,omitempty"`
	Path   string `yaml:"path,omitempty"`
}

// WatchConfig configures rebuild triggers in watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	Interval time.Duration `yaml:"interval"`
}

// Load loads configuration from the specified file, applying defaults.
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.ConfigError("configuration file not found").
				WithContext("path", configPath).
				Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, err
	}

	// Relative input roots are resolved against the config file location.
	if !filepath.IsAbs(cfg.Input) {
		cfg.Input = filepath.Join(filepath.Dir(configPath), cfg.Input)
	}
	if cfg.Output != "" && !filepath.IsAbs(cfg.Output) {
		cfg.Output = filepath.Join(filepath.Dir(configPath), cfg.Output)
	}
	return cfg, nil
}

// Parse decodes YAML configuration and applies defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to unmarshal config").Fatal().Build()
	}
	if err := ApplyDefaults(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := Config{
		Input:    "src",
		Pages:    "pages",
		Layouts:  "layouts",
		Partials: "partials",
		Data:     "data",
		Output:   "dist",
		Staging:  StagingMemory,
		PageLayouts: map[string]string{
			"blog": "post",
		},
		DataValues: map[string]any{
			"site": "My Site",
		},
		Render: RenderConfig{Timeout: 30 * time.Second},
		Events: EventsConfig{NATSSubject: DefaultNATSSubject},
		Watch:  WatchConfig{Debounce: DefaultDebounce},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
