package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultPort           = 3000
	DefaultBackendURL     = "http://localhost:8000"
	DefaultMaxUploadBytes = 10 << 20 // 10 MB
	DefaultStaleAfter     = time.Hour
	DefaultSweepInterval  = 10 * time.Minute

	streamPath = "/ask/stream"
	socketPath = "/ws/ask"
)

// Config represents runtime configuration for the relay and the streaming clients.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Backend BackendConfig `mapstructure:"backend"`
	Upload  UploadConfig  `mapstructure:"upload"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
}

type BackendConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	StreamURL string `mapstructure:"stream_url"`
	SocketURL string `mapstructure:"socket_url"`
	// Timeout bounds each backend call. Zero waits indefinitely.
	Timeout time.Duration `mapstructure:"timeout"`
}

type UploadConfig struct {
	Dir      string `mapstructure:"dir"`
	MaxBytes int64  `mapstructure:"max_bytes"`
	// StaleAfter is how old an orphaned staged file must be before the
	// sweeper removes it.
	StaleAfter    time.Duration `mapstructure:"stale_after"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// Load reads configuration from the optional JSON file at path and lets the
// process environment override it.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("server.address", "")
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("backend.base_url", DefaultBackendURL)
	v.SetDefault("backend.stream_url", "")
	v.SetDefault("backend.socket_url", "")
	v.SetDefault("backend.timeout", time.Duration(0))
	v.SetDefault("upload.dir", "")
	v.SetDefault("upload.max_bytes", DefaultMaxUploadBytes)
	v.SetDefault("upload.stale_after", DefaultStaleAfter)
	v.SetDefault("upload.sweep_interval", DefaultSweepInterval)

	for key, env := range map[string]string{
		"server.port":        "PORT",
		"backend.base_url":   "BACKEND_URL",
		"backend.stream_url": "DOCRELAY_STREAM_URL",
		"backend.socket_url": "DOCRELAY_SOCKET_URL",
		"backend.timeout":    "DOCRELAY_BACKEND_TIMEOUT",
		"upload.dir":         "DOCRELAY_UPLOAD_DIR",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
		v.SetConfigFile(absPath)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", absPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDotEnv populates the environment from the given .env files. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func (c *Config) normalize() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	base := strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an absolute http(s) URL, got %q", c.Backend.BaseURL)
	}
	c.Backend.BaseURL = base

	if c.Backend.StreamURL == "" {
		c.Backend.StreamURL = base + streamPath
	}
	if c.Backend.SocketURL == "" {
		ws := *u
		ws.Scheme = "ws"
		if u.Scheme == "https" {
			ws.Scheme = "wss"
		}
		ws.Path = strings.TrimRight(u.Path, "/") + socketPath
		c.Backend.SocketURL = ws.String()
	}
	if c.Backend.Timeout < 0 {
		return errors.New("backend.timeout cannot be negative")
	}

	if c.Upload.Dir == "" {
		c.Upload.Dir = filepath.Join(os.TempDir(), "docrelay-uploads")
	}
	if c.Upload.MaxBytes <= 0 {
		c.Upload.MaxBytes = DefaultMaxUploadBytes
	}
	if c.Upload.StaleAfter <= 0 {
		c.Upload.StaleAfter = DefaultStaleAfter
	}
	if c.Upload.SweepInterval <= 0 {
		c.Upload.SweepInterval = DefaultSweepInterval
	}
	return nil
}

// ListenAddr is the address the relay binds to.
func (c *Config) ListenAddr() string {
	return c.Server.Address + ":" + strconv.Itoa(c.Server.Port)
}
