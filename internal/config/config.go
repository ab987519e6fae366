package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/njchilds90/gonewton"
	"github.com/njchilds90/gonewton/internal/logging"
)

// Archive backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the file-level configuration shared by every command.
type Config struct {
	Solver  SolverConfig  `yaml:"solver" json:"solver"`
	Plot    PlotConfig    `yaml:"plot" json:"plot"`
	Server  ServerConfig  `yaml:"server" json:"server"`
	Archive ArchiveConfig `yaml:"archive" json:"archive"`
	Log     LogConfig     `yaml:"log" json:"log"`
}

type SolverConfig struct {
	MaxIterations int `yaml:"max_iterations" json:"max_iterations"`
}

type PlotConfig struct {
	Samples int `yaml:"samples" json:"samples"`
	Width   int `yaml:"width" json:"width"`
	Height  int `yaml:"height" json:"height"`
}

type ServerConfig struct {
	Addr         string   `yaml:"addr" json:"addr"`
	ReadTimeout  Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout" json:"write_timeout"`
	MaxBodyBytes int64    `yaml:"max_body_bytes" json:"max_body_bytes"`
}

type ArchiveConfig struct {
	Backend string      `yaml:"backend" json:"backend"`
	TTL     Duration    `yaml:"ttl" json:"ttl"`
	Redis   RedisConfig `yaml:"redis" json:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Duration is a time.Duration written as text ("90s", "1h") in both YAML
// and JSON files.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Solver: SolverConfig{MaxIterations: 50},
		Plot:   PlotConfig{Samples: 400, Width: 800, Height: 600},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration(10 * time.Second),
			WriteTimeout: Duration(30 * time.Second),
			MaxBodyBytes: 1 << 20,
		},
		Archive: ArchiveConfig{
			Backend: BackendMemory,
			TTL:     Duration(time.Hour),
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "gonewton:"},
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a YAML or JSON file (chosen by extension) over the defaults.
// An empty path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}
	return cfg, cfg.Validate()
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch {
	case c.Solver.MaxIterations <= 0 || c.Solver.MaxIterations > gonewton.MaxIterationsLimit:
		return fmt.Errorf("config: solver.max_iterations must be between 1 and %d, got %d", gonewton.MaxIterationsLimit, c.Solver.MaxIterations)
	case c.Plot.Samples < 2 || c.Plot.Samples > gonewton.MaxSamples:
		return fmt.Errorf("config: plot.samples must be between 2 and %d, got %d", gonewton.MaxSamples, c.Plot.Samples)
	case c.Plot.Width <= 0 || c.Plot.Height <= 0:
		return fmt.Errorf("config: plot size must be positive, got %dx%d", c.Plot.Width, c.Plot.Height)
	case c.Server.MaxBodyBytes <= 0:
		return fmt.Errorf("config: server.max_body_bytes must be positive")
	case c.Archive.TTL < 0:
		return fmt.Errorf("config: archive.ttl must not be negative")
	}
	switch c.Archive.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("config: unknown archive backend %q", c.Archive.Backend)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
