// Package config loads the server configuration.
//
// Values come from, in increasing precedence: built-in defaults, a TOML
// file, and GEMINI_ADVISOR_* environment variables. The file is optional;
// only an explicitly named file that does not exist is an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/HendryAvila/gemini-advisor/internal/invoker"
	"github.com/HendryAvila/gemini-advisor/internal/journal"
	"github.com/HendryAvila/gemini-advisor/internal/logging"
)

// ErrInvalid marks a configuration that failed validation.
var ErrInvalid = errors.New("invalid configuration")

// Environment variables.
const (
	EnvConfig       = "GEMINI_ADVISOR_CONFIG"
	EnvBinary       = "GEMINI_ADVISOR_BINARY"
	EnvFastModel    = "GEMINI_ADVISOR_FAST_MODEL"
	EnvDeepModel    = "GEMINI_ADVISOR_DEEP_MODEL"
	EnvTimeout      = "GEMINI_ADVISOR_TIMEOUT"
	EnvAdHocTimeout = "GEMINI_ADVISOR_ADHOC_TIMEOUT"
	EnvLogLevel     = "GEMINI_ADVISOR_LOG_LEVEL"
	EnvJournal      = "GEMINI_ADVISOR_JOURNAL"
)

// Journal controls the consultation journal.
type Journal struct {
	Enabled bool
	Path    string
}

// Config is the resolved server configuration.
type Config struct {
	Binary    string
	Shell     string
	FastModel string
	DeepModel string

	// Timeout bounds each invocation made by the MCP server.
	Timeout time.Duration
	// AdHocTimeout bounds invocations made by one-off CLI calls.
	AdHocTimeout time.Duration

	MaxConcurrent int

	LogLevel  string
	LogFormat string

	Journal Journal

	// Source is the file the configuration was read from, if any.
	Source string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Binary:       invoker.DefaultBinary,
		Shell:        invoker.DefaultShell,
		FastModel:    invoker.DefaultFastModel,
		DeepModel:    invoker.DefaultDeepModel,
		Timeout:      invoker.SharedTimeout,
		AdHocTimeout: invoker.DefaultTimeout,
		LogLevel:     "info",
		LogFormat:    logging.FormatConsole,
		Journal:      Journal{Path: journal.DefaultConfig().Path},
	}
}

// DefaultPath returns ~/.gemini-advisor/config.toml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".gemini-advisor", "config.toml")
}

type fileConfig struct {
	Binary        string `toml:"binary"`
	Shell         string `toml:"shell"`
	FastModel     string `toml:"fast_model"`
	DeepModel     string `toml:"deep_model"`
	Timeout       string `toml:"timeout"`
	AdHocTimeout  string `toml:"adhoc_timeout"`
	MaxConcurrent int    `toml:"max_concurrent"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	Journal       struct {
		Enabled bool   `toml:"enabled"`
		Path    string `toml:"path"`
	} `toml:"journal"`
}

// Load resolves the configuration. path is the --config flag value; when
// empty, $GEMINI_ADVISOR_CONFIG and then DefaultPath are tried. The result
// is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := true
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path = DefaultPath()
		explicit = false
	}

	if _, err := os.Stat(path); err == nil || explicit {
		if err := loadFile(&cfg, path); err != nil {
			return Config{}, err
		}
		cfg.Source = path
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
	}

	setString := func(key string, dst *string, v string) {
		if meta.IsDefined(key) {
			*dst = strings.TrimSpace(v)
		}
	}
	setString("binary", &cfg.Binary, raw.Binary)
	setString("shell", &cfg.Shell, raw.Shell)
	setString("fast_model", &cfg.FastModel, raw.FastModel)
	setString("deep_model", &cfg.DeepModel, raw.DeepModel)
	setString("log_level", &cfg.LogLevel, raw.LogLevel)
	setString("log_format", &cfg.LogFormat, raw.LogFormat)

	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if meta.IsDefined("adhoc_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.AdHocTimeout))
		if err != nil {
			return fmt.Errorf("parse adhoc_timeout: %w", err)
		}
		cfg.AdHocTimeout = d
	}
	if meta.IsDefined("max_concurrent") {
		cfg.MaxConcurrent = raw.MaxConcurrent
	}
	if meta.IsDefined("journal", "enabled") {
		cfg.Journal.Enabled = raw.Journal.Enabled
	}
	if meta.IsDefined("journal", "path") {
		cfg.Journal.Path = expandHome(strings.TrimSpace(raw.Journal.Path))
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	setString(EnvBinary, &cfg.Binary)
	setString(EnvFastModel, &cfg.FastModel)
	setString(EnvDeepModel, &cfg.DeepModel)
	setString(EnvLogLevel, &cfg.LogLevel)

	setDuration := func(key string, dst *time.Duration) error {
		v, ok := os.LookupEnv(key)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		*dst = d
		return nil
	}
	if err := setDuration(EnvTimeout, &cfg.Timeout); err != nil {
		return err
	}
	if err := setDuration(EnvAdHocTimeout, &cfg.AdHocTimeout); err != nil {
		return err
	}

	// GEMINI_ADVISOR_JOURNAL is a boolean, or a database path that also
	// enables the journal.
	if v, ok := os.LookupEnv(EnvJournal); ok {
		v = strings.TrimSpace(v)
		if on, err := strconv.ParseBool(v); err == nil {
			cfg.Journal.Enabled = on
		} else if v != "" {
			cfg.Journal.Enabled = true
			cfg.Journal.Path = expandHome(v)
		}
	}
	return nil
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	var problems []string
	if c.Binary == "" {
		problems = append(problems, "binary is empty")
	}
	if c.Shell == "" {
		problems = append(problems, "shell is empty")
	}
	if c.FastModel == "" {
		problems = append(problems, "fast_model is empty")
	}
	if c.DeepModel == "" {
		problems = append(problems, "deep_model is empty")
	}
	if c.Timeout <= 0 {
		problems = append(problems, fmt.Sprintf("timeout must be positive, got %s", c.Timeout))
	}
	if c.AdHocTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("adhoc_timeout must be positive, got %s", c.AdHocTimeout))
	}
	if c.MaxConcurrent < 0 {
		problems = append(problems, fmt.Sprintf("max_concurrent must not be negative, got %d", c.MaxConcurrent))
	}
	if _, _, err := logging.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}
	switch c.LogFormat {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		problems = append(problems, fmt.Sprintf("log_format must be console or json, got %q", c.LogFormat))
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		problems = append(problems, "journal is enabled without a path")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// Models maps each tier to its configured model.
func (c Config) Models() map[invoker.Tier]string {
	return map[invoker.Tier]string{
		invoker.TierFast: c.FastModel,
		invoker.TierDeep: c.DeepModel,
	}
}

// InvokerOptions returns invoker options with the given per-call timeout.
func (c Config) InvokerOptions(timeout time.Duration, logger *zap.Logger) invoker.Options {
	return invoker.Options{
		Binary:        c.Binary,
		Shell:         c.Shell,
		Models:        c.Models(),
		Timeout:       timeout,
		MaxConcurrent: c.MaxConcurrent,
		Logger:        logger,
	}
}

// Logging returns the logger configuration.
func (c Config) Logging() logging.Config {
	return logging.Config{Level: c.LogLevel, Format: c.LogFormat}
}

// JournalConfig returns the journal store configuration.
func (c Config) JournalConfig() journal.Config {
	return journal.Config{Path: c.Journal.Path}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
