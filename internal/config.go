package internal

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	pkgconfig "github.com/starford/ansuz/pkg/config"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	DataDir DataDirConfig     `yaml:"data_dir"`
	FS      FSConfig          `yaml:"fs"`
	MCP     MCPConfig         `yaml:"mcp"`
	Events  EventsConfig      `yaml:"events"`
	Journal JournalConfig     `yaml:"journal"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.DataDir.Validate(); err != nil {
		return err
	}
	if err := c.Events.Validate(); err != nil {
		return err
	}
	if !c.App.HTTP.Enabled && !c.MCP.Enabled {
		return fmt.Errorf("no transport enabled: set app.http.enabled or mcp.enabled")
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds the HTTP IPC transport configuration.
//
// AllowedOrigins lists the webview origins permitted to call the API
// cross-origin; "*" allows any.
type HTTPConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.When(c.Enabled, validation.Required, validation.Min(1), validation.Max(65535))),
	)
}

// DataDirConfig controls where get_data_dir points.
//
// Identifier names the application; the data directory is
// <OS data home>/<Identifier>. Path, when set, overrides it.
type DataDirConfig struct {
	Identifier string `yaml:"identifier"`
	Path       string `yaml:"path"`
}

// Validate validates the data directory configuration.
func (c *DataDirConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Identifier, validation.When(c.Path == "", validation.Required)),
	)
}

// FSConfig holds filesystem policy.
type FSConfig struct {
	// Confine restricts every command to paths under the data directory.
	Confine bool `yaml:"confine"`
}

// MCPConfig enables the MCP stdio transport.
type MCPConfig struct {
	Enabled bool `yaml:"enabled"`
}

// EventsConfig controls the SSE change stream.
type EventsConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Throttle time.Duration `yaml:"throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Throttle, validation.Min(time.Duration(0))),
	)
}

// JournalConfig holds the optional invocation journal. An empty Path
// disables it.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether the journal is configured.
func (c *JournalConfig) Enabled() bool {
	return c.Path != ""
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Enabled: true,
				Host:    "127.0.0.1",
				Port:    8787,
			},
		},
		DataDir: DataDirConfig{
			Identifier: "com.starford.ansuz",
		},
		Events: EventsConfig{
			Enabled:  true,
			Throttle: time.Second,
		},
	}
}

// Overrides holds command-line values that take precedence over the
// config file.
type Overrides struct {
	DataDir string
	MCP     *bool
}

// Apply writes the set overrides into cfg.
func (o Overrides) Apply(cfg *Config) {
	if o.DataDir != "" {
		cfg.DataDir.Path = o.DataDir
	}
	if o.MCP != nil {
		cfg.MCP.Enabled = *o.MCP
	}
}

// LoadConfig layers defaults, the file at path (skipped when missing) and
// o, then validates the result once. It reports whether the file was read.
func LoadConfig(path string, o Overrides) (*Config, bool, error) {
	cfg := NewDefaultConfig()
	found, err := pkgconfig.LoadOptional(path, cfg)
	if err != nil {
		return nil, false, err
	}
	o.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, found, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, found, nil
}
