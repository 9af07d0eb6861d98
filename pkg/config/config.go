// Package config loads the YAML configuration shared by the CLI and the TUI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const appDir = "strava-tui"

// Units selects how distances and paces are displayed.
type Units string

const (
	Metric   Units = "metric"
	Imperial Units = "imperial"
)

// Config holds every setting. Zero values are replaced by defaults.
type Config struct {
	ClientID      string        `yaml:"client_id"`
	ClientSecret  string        `yaml:"client_secret"`
	RedirectPort  int           `yaml:"redirect_port"`
	Database      string        `yaml:"database"`
	APIURL        string        `yaml:"api_url"`
	OAuthURL      string        `yaml:"oauth_url"`
	Timeout       time.Duration `yaml:"timeout"`
	PageSize      int           `yaml:"page_size"`
	LogFile       string        `yaml:"log_file"`
	DefaultFilter string        `yaml:"default_filter"`
	Units         Units         `yaml:"units"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		RedirectPort: 8089,
		Database:     filepath.Join(dataDir(), appDir, "activities.db"),
		APIURL:       "https://www.strava.com/api/v3",
		OAuthURL:     "https://www.strava.com/oauth",
		Timeout:      30 * time.Second,
		PageSize:     100,
		LogFile:      filepath.Join(stateDir(), appDir, "tui.log"),
		Units:        Metric,
	}
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, appDir, "config.yaml")
}

// Load reads the file at path (DefaultPath when empty) on top of the
// defaults and applies environment overrides. A missing file is not an
// error.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config file: %w", err)
	default:
		if cfg, err = FromYAML(data); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// FromYAML parses YAML data over the defaults.
func FromYAML(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.RedirectPort == 0 {
		c.RedirectPort = def.RedirectPort
	}
	if c.Database == "" {
		c.Database = def.Database
	}
	if c.APIURL == "" {
		c.APIURL = def.APIURL
	}
	if c.OAuthURL == "" {
		c.OAuthURL = def.OAuthURL
	}
	if c.Timeout == 0 {
		c.Timeout = def.Timeout
	}
	if c.PageSize == 0 {
		c.PageSize = def.PageSize
	}
	if c.LogFile == "" {
		c.LogFile = def.LogFile
	}
	if c.Units == "" {
		c.Units = def.Units
	}
	c.Database = expandHome(c.Database)
	c.LogFile = expandHome(c.LogFile)
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("STRAVA_CLIENT_ID"); v != "" {
		c.ClientID = v
	}
	if v := getenv("STRAVA_CLIENT_SECRET"); v != "" {
		c.ClientSecret = v
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.RedirectPort < 1 || c.RedirectPort > 65535:
		return fmt.Errorf("redirect_port %d out of range", c.RedirectPort)
	case c.Timeout < 0:
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	case c.PageSize < 1 || c.PageSize > 200:
		return fmt.Errorf("page_size must be between 1 and 200, got %d", c.PageSize)
	case c.Units != Metric && c.Units != Imperial:
		return fmt.Errorf("units must be %q or %q, got %q", Metric, Imperial, c.Units)
	}
	return nil
}

// RequireCredentials reports whether the API application is configured.
func (c Config) RequireCredentials() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return errors.New("client_id and client_secret must be set in the config file or via STRAVA_CLIENT_ID/STRAVA_CLIENT_SECRET")
	}
	return nil
}

// RedirectAddr is the local address the OAuth redirect listener binds.
func (c Config) RedirectAddr() string {
	return net.JoinHostPort("localhost", strconv.Itoa(c.RedirectPort))
}

// RedirectURL is the OAuth redirect URI registered with the API application.
func (c Config) RedirectURL() string {
	return "http://" + c.RedirectAddr() + "/callback"
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share")
	}
	return "."
}

func stateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state")
	}
	return "."
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
