package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-audience-dashboard/components/audience"
	"github.com/goliatone/go-audience-dashboard/components/dashboard"
)

// Transports served by audiencectl.
const (
	TransportFiber = "fiber"
	TransportHTTP  = "http"
)

// Config is the audiencectl configuration file.
type Config struct {
	Server     Server     `yaml:"server"`
	Generation Generation `yaml:"generation"`
	Charts     Charts     `yaml:"charts"`
	Sessions   Sessions   `yaml:"sessions"`
	Log        Log        `yaml:"log"`
}

type Server struct {
	Addr      string `yaml:"addr"`
	BasePath  string `yaml:"base_path"`
	Transport string `yaml:"transport"`
}

// Generation selects the audience backend. An empty Endpoint uses the mock
// generator delayed by Latency.
type Generation struct {
	Latency  time.Duration `yaml:"latency"`
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key"`
}

type Charts struct {
	Theme      string        `yaml:"theme"`
	AssetsHost string        `yaml:"assets_host"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
}

type Sessions struct {
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: Server{
			Addr:      ":8080",
			BasePath:  dashboard.DefaultBasePath,
			Transport: TransportFiber,
		},
		Generation: Generation{Latency: audience.DefaultLatency},
		Charts:     Charts{CacheTTL: 10 * time.Minute},
		Sessions:   Sessions{IdleTTL: 30 * time.Minute, SweepInterval: time.Minute},
		Log:        Log{Level: "info", Format: "json"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		errs = append(errs, fmt.Errorf("server.base_path %q must start with /", c.Server.BasePath))
	}
	switch c.Server.Transport {
	case TransportFiber, TransportHTTP:
	default:
		errs = append(errs, fmt.Errorf("server.transport %q must be %s or %s", c.Server.Transport, TransportFiber, TransportHTTP))
	}
	if c.Generation.Latency < 0 {
		errs = append(errs, errors.New("generation.latency must not be negative"))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be json or console", c.Log.Format))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config: %w", errors.Join(errs...))
}
