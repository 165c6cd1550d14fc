// Package config loads the server configuration from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the file.
const (
	EnvAddr     = "POVDASH_ADDR"
	EnvDataDir  = "POVDASH_DATA_DIR"
	EnvLogLevel = "POVDASH_LOG_LEVEL"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Server  Server  `yaml:"server"`
	Data    Data    `yaml:"data"`
	Widgets Widgets `yaml:"widgets"`
	Cluster Cluster `yaml:"cluster"`
	Log     Log     `yaml:"log"`
}

type Server struct {
	Addr            string `yaml:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// Data locates the input files. Relative paths are resolved against Dir.
type Data struct {
	Dir     string   `yaml:"dir"`
	Wide    string   `yaml:"wide"`
	Long    string   `yaml:"long"`
	Series  string   `yaml:"series"`
	Regions []string `yaml:"regions"`
}

type Widgets struct {
	ReportYear int `yaml:"report_year"`
	TopN       int `yaml:"top_n"`
}

type Cluster struct {
	DefaultK int     `yaml:"default_k"`
	Seed     int64   `yaml:"seed"`
	Restarts int     `yaml:"restarts"`
	MaxIter  int     `yaml:"max_iter"`
	Tol      float64 `yaml:"tol"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: Server{Addr: ":8080", ShutdownTimeout: "10s"},
		Data: Data{
			Dir:    "data",
			Wide:   "PovStatsData.csv",
			Long:   "poverty.csv",
			Series: "PovStatsSeries.csv",
		},
		Widgets: Widgets{ReportYear: 2010, TopN: 20},
		Cluster: Cluster{DefaultK: 4, Restarts: 10, MaxIter: 300, Tol: 1e-4},
		Log:     Log{Level: "info", Format: "json"},
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvDataDir); ok && v != "" {
		c.Data.Dir = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
}

// Validate checks the values that would otherwise fail late.
func (c Config) Validate() error {
	switch {
	case c.Server.Addr == "":
		return fmt.Errorf("%w: server.addr is empty", ErrInvalid)
	case c.Data.Wide == "" || c.Data.Long == "":
		return fmt.Errorf("%w: data.wide and data.long are required", ErrInvalid)
	case c.Widgets.TopN < 1:
		return fmt.Errorf("%w: widgets.top_n must be positive", ErrInvalid)
	case c.Cluster.DefaultK < 1:
		return fmt.Errorf("%w: cluster.default_k must be positive", ErrInvalid)
	case c.Log.Format != "json" && c.Log.Format != "console":
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("%w: server.shutdown_timeout: %v", ErrInvalid, err)
	}
	return nil
}

// ShutdownTimeout is Server.ShutdownTimeout parsed; Validate guarantees it parses.
func (c Config) ShutdownTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.ShutdownTimeout)
	return d
}

// Path resolves a data file name against Data.Dir.
func (d Data) Path(name string) string {
	if name == "" || filepath.IsAbs(name) || d.Dir == "" {
		return name
	}
	return filepath.Join(d.Dir, name)
}
