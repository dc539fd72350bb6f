// Package config loads service configuration. Defaults are layered under an
// optional voxgrep.yaml file, which is layered under VOXGREP_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort      = 8788
	DefaultLogLevel  = "info"
	DefaultDataDir   = ".voxgrep"
	DefaultBatchSize = 50
	DefaultFrameRate = 30.0

	EnvPort        = "VOXGREP_PORT"
	EnvLogLevel    = "VOXGREP_LOG_LEVEL"
	EnvDataDir     = "VOXGREP_DATA_DIR"
	EnvMediaDirs   = "VOXGREP_MEDIA_DIRS"
	EnvBatchSize   = "VOXGREP_BATCH_SIZE"
	EnvFFmpeg      = "VOXGREP_FFMPEG"
	EnvFFprobe     = "VOXGREP_FFPROBE"
	EnvCORSOrigins = "VOXGREP_CORS_ORIGINS"
	EnvConfigFile  = "VOXGREP_CONFIG"

	DBFilename     = "voxgrep.db"
	ConfigFilename = "voxgrep.yaml"
)

type Config struct {
	Port        int      `yaml:"port"`
	LogLevel    string   `yaml:"log_level"`
	DataDir     string   `yaml:"data_dir"`
	MediaDirs   []string `yaml:"media_dirs"`
	BatchSize   int      `yaml:"batch_size"`
	FrameRate   float64  `yaml:"frame_rate"`
	FFmpegPath  string   `yaml:"ffmpeg"`
	FFprobePath string   `yaml:"ffprobe"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// New builds the configuration: defaults, then the yaml file (if present),
// then environment overrides.
func New() (*Config, error) {
	cfg := &Config{
		Port:      DefaultPort,
		LogLevel:  DefaultLogLevel,
		DataDir:   defaultDataDir(),
		BatchSize: DefaultBatchSize,
		FrameRate: DefaultFrameRate,
	}

	if err := cfg.loadFile(configFilePath()); err != nil {
		return nil, err
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("batch size must be positive, got %d", cfg.BatchSize)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		c.Port = port
	}
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		c.LogLevel = ll
	}
	if dd := os.Getenv(EnvDataDir); dd != "" {
		c.DataDir = dd
	}
	if md := os.Getenv(EnvMediaDirs); md != "" {
		c.MediaDirs = splitList(md)
	}
	if bs := os.Getenv(EnvBatchSize); bs != "" {
		size, err := strconv.Atoi(bs)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvBatchSize, err)
		}
		c.BatchSize = size
	}
	if f := os.Getenv(EnvFFmpeg); f != "" {
		c.FFmpegPath = f
	}
	if f := os.Getenv(EnvFFprobe); f != "" {
		c.FFprobePath = f
	}
	if co := os.Getenv(EnvCORSOrigins); co != "" {
		c.CORSOrigins = splitList(co)
	}
	return nil
}

// DBPath returns the sqlite database location inside the data dir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, DBFilename)
}

// ExportDir returns where rendered supercuts land.
func (c *Config) ExportDir() string {
	return filepath.Join(c.DataDir, "exports")
}

func configFilePath() string {
	if p := os.Getenv(EnvConfigFile); p != "" {
		return p
	}
	return ConfigFilename
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
