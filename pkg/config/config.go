package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/blang/semver/v4"
	"github.com/prometheus/common/model"
	"github.com/prometheus/common/promslog"
	"gopkg.in/yaml.v3"
)

// Environment variables read by FromEnv.
const (
	EnvConfigFile = "MCP_EXEC_CONFIG"
	EnvListen     = "MCP_EXEC_LISTEN"
	EnvLogLevel   = "MCP_EXEC_LOG_LEVEL"
	EnvLogFormat  = "MCP_EXEC_LOG_FORMAT"
	EnvTimeout    = "MCP_EXEC_TIMEOUT"
	EnvWorkDir    = "MCP_EXEC_WORK_DIR"
)

const (
	DefaultName      = "mcp-exec"
	DefaultVersion   = "1.0.0"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "logfmt"
	DefaultTimeout   = "5m"
)

// Config holds the server settings. Tools are never configured here; they come
// from the command line.
type Config struct {
	// Name is the MCP server name announced to clients.
	// Default: "mcp-exec"
	Name string `toml:"name,omitempty" yaml:"name,omitempty"`

	// Version is the MCP server version announced to clients. Must be a semantic version.
	// Default: "1.0.0"
	Version string `toml:"version,omitempty" yaml:"version,omitempty"`

	// Instructions replaces the generated server instructions.
	Instructions string `toml:"instructions,omitempty" yaml:"instructions,omitempty"`

	// Listen is the HTTP listen address (e.g. ":9100"). Empty serves on stdio.
	Listen string `toml:"listen,omitempty" yaml:"listen,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	// Default: "info"
	LogLevel string `toml:"log_level,omitempty" yaml:"log_level,omitempty"`

	// LogFormat is logfmt or json.
	// Default: "logfmt"
	LogFormat string `toml:"log_format,omitempty" yaml:"log_format,omitempty"`

	// Timeout bounds every tool call, e.g. "90s", "5m".
	// Default: "5m"
	Timeout string `toml:"timeout,omitempty" yaml:"timeout,omitempty"`

	// WorkDir is the working directory of the wrapped command.
	WorkDir string `toml:"work_dir,omitempty" yaml:"work_dir,omitempty"`

	// Env lists extra KEY=VALUE entries for the environment of the wrapped command.
	Env []string `toml:"env,omitempty" yaml:"env,omitempty"`
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	return &Config{
		Name:      DefaultName,
		Version:   DefaultVersion,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		Timeout:   DefaultTimeout,
	}
}

// Load reads a configuration file on top of the defaults. Files ending in
// .yaml or .yml are YAML, everything else is TOML. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = decodeYAML(data, cfg)
	default:
		err = decodeTOML(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

func decodeTOML(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// FromEnv loads the file named by MCP_EXEC_CONFIG, if any, and applies the
// environment overrides.
func FromEnv() (*Config, error) {
	cfg := Default()
	if path := os.Getenv(EnvConfigFile); path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// ApplyEnv overrides settings with the environment variables that are set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	overrides := []struct {
		env   string
		field *string
	}{
		{EnvListen, &c.Listen},
		{EnvLogLevel, &c.LogLevel},
		{EnvLogFormat, &c.LogFormat},
		{EnvTimeout, &c.Timeout},
		{EnvWorkDir, &c.WorkDir},
	}
	for _, o := range overrides {
		if val, ok := lookup(o.env); ok {
			*o.field = val
		}
	}
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	if _, err := semver.ParseTolerant(c.Version); err != nil {
		return fmt.Errorf("invalid version %q: %w", c.Version, err)
	}

	if err := promslog.NewLevel().Set(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	if err := promslog.NewFormat().Set(c.LogFormat); err != nil {
		return fmt.Errorf("invalid log format: %w", err)
	}

	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}

	if c.WorkDir != "" {
		info, err := os.Stat(c.WorkDir)
		if err != nil {
			return fmt.Errorf("invalid work_dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("invalid work_dir: %s is not a directory", c.WorkDir)
		}
	}

	for _, kv := range c.Env {
		if key, _, ok := strings.Cut(kv, "="); !ok || key == "" {
			return fmt.Errorf("invalid env entry %q: want KEY=VALUE", kv)
		}
	}

	return nil
}

// TimeoutDuration returns the parsed per-call timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	timeout := c.Timeout
	if timeout == "" {
		timeout = DefaultTimeout
	}
	d, err := model.ParseDuration(timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid timeout %q: must be positive", c.Timeout)
	}
	return time.Duration(d), nil
}

// Logger builds the slog logger described by the configuration.
func (c *Config) Logger() (*slog.Logger, error) {
	level := promslog.NewLevel()
	if err := level.Set(c.LogLevel); err != nil {
		return nil, err
	}

	format := promslog.NewFormat()
	if err := format.Set(c.LogFormat); err != nil {
		return nil, err
	}

	return promslog.New(&promslog.Config{
		Level:  level,
		Format: format,
		Style:  promslog.GoKitStyle,
		Writer: os.Stderr,
	}), nil
}
