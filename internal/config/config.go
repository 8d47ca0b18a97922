// Package config resolves runtime settings from defaults, an optional config
// file, a .env file and the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"animestudio/internal/api"
)

// Environment variable names.
const (
	EnvAPIURL         = "ANIMESTUDIO_API_URL"
	EnvImageHost      = "ANIMESTUDIO_IMAGE_HOST"
	EnvStatusPoll     = "ANIMESTUDIO_STATUS_POLL"
	EnvInstallPoll    = "ANIMESTUDIO_INSTALL_POLL"
	EnvRequestTimeout = "ANIMESTUDIO_REQUEST_TIMEOUT"
	EnvLogFile        = "ANIMESTUDIO_LOG_FILE"
	EnvLogLevel       = "ANIMESTUDIO_LOG_LEVEL"
	EnvConfigFile     = "ANIMESTUDIO_CONFIG"
)

// Duration is a time.Duration that reads "5s"-style strings from config files.
type Duration time.Duration

// D returns the value as a time.Duration.
func (d Duration) D() time.Duration { return time.Duration(d) }

// UnmarshalText implements encoding.TextUnmarshaler (used by toml and json).
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// Config holds every tunable of the client.
type Config struct {
	APIURL              string   `json:"api_url" yaml:"api_url" toml:"api_url"`
	ImageHost           string   `json:"image_host" yaml:"image_host" toml:"image_host"`
	StatusPollInterval  Duration `json:"status_poll_interval" yaml:"status_poll_interval" toml:"status_poll_interval"`
	InstallPollInterval Duration `json:"install_poll_interval" yaml:"install_poll_interval" toml:"install_poll_interval"`
	RequestTimeout      Duration `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`
	LogFile             string   `json:"log_file" yaml:"log_file" toml:"log_file"`
	LogLevel            string   `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:              api.DefaultBaseURL,
		ImageHost:           api.DefaultImageHost,
		StatusPollInterval:  Duration(5 * time.Second),
		InstallPollInterval: Duration(2 * time.Second),
		LogFile:             filepath.Join(os.TempDir(), "animestudio.log"),
		LogLevel:            "info",
	}
}

// Load resolves configuration: defaults, then the file at path (or
// $ANIMESTUDIO_CONFIG when path is empty), then .env, then environment variables.
// A missing .env is not an error; a missing explicit config file is.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadFile decodes a config file chosen by extension over cfg.
// Supports: .toml, .yaml/.yml, .json
func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(b), cfg); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, cfg); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config extension: %s", ext)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv(EnvImageHost); v != "" {
		cfg.ImageHost = v
	}
	durations := []struct {
		env string
		dst *Duration
	}{
		{EnvStatusPoll, &cfg.StatusPollInterval},
		{EnvInstallPoll, &cfg.InstallPollInterval},
		{EnvRequestTimeout, &cfg.RequestTimeout},
	}
	for _, d := range durations {
		v := os.Getenv(d.env)
		if v == "" {
			continue
		}
		if err := d.dst.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%s: %w", d.env, err)
		}
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

// Validate checks URLs and intervals.
func (c Config) Validate() error {
	for _, u := range []struct{ name, value string }{
		{"api_url", c.APIURL},
		{"image_host", c.ImageHost},
	} {
		parsed, err := url.Parse(u.value)
		if err != nil {
			return fmt.Errorf("%s: %w", u.name, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("%s: must be an http(s) URL, got %q", u.name, u.value)
		}
		if parsed.Host == "" {
			return fmt.Errorf("%s: missing host in %q", u.name, u.value)
		}
	}
	if c.StatusPollInterval <= 0 {
		return fmt.Errorf("status_poll_interval must be positive")
	}
	if c.InstallPollInterval <= 0 {
		return fmt.Errorf("install_poll_interval must be positive")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	return nil
}
