package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values read from the TOML file.
const (
	EnvClientID     = "AMADEUS_CLIENT_ID"
	EnvClientSecret = "AMADEUS_CLIENT_SECRET"
	EnvListen       = "QAREN_LISTEN"
	EnvDatabasePath = "QAREN_DB_PATH"
	EnvLogLevel     = "QAREN_LOG_LEVEL"
	EnvConfigPath   = "QAREN_CONFIG"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Upstream    UpstreamConfig    `toml:"upstream"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Amadeus AmadeusConfig `toml:"amadeus"`
}

// AmadeusConfig contains the client-credentials pair for the flight-offers API.
type AmadeusConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// UpstreamConfig describes the identity and flight-offers endpoints.
type UpstreamConfig struct {
	TokenURL     string        `toml:"token_url"`
	SearchURL    string        `toml:"search_url"`
	MaxResults   int           `toml:"max_results"`
	RateLimit    float64       `toml:"rate_limit"`    // Upstream searches per second, 0 disables
	Timeout      time.Duration `toml:"timeout"`       // Per upstream call, 0 disables
	ExpiryMargin time.Duration `toml:"expiry_margin"` // Subtracted from the declared token lifetime
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	History      bool   `toml:"history"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
	Metrics  bool   `toml:"metrics"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values absent from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadDotEnv loads variables from the given .env files (default ".env") without overriding the existing environment.
//
// A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides config values with any set environment variables.
func (c *Config) ApplyEnv() {
	if v, ok := os.LookupEnv(EnvClientID); ok && v != "" {
		c.Credentials.Amadeus.ClientID = v
	}
	if v, ok := os.LookupEnv(EnvClientSecret); ok && v != "" {
		c.Credentials.Amadeus.ClientSecret = v
	}
	if v, ok := os.LookupEnv(EnvDatabasePath); ok && v != "" {
		c.Database.Path = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.Server.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvListen); ok && v != "" {
		if host, port, err := net.SplitHostPort(v); err == nil {
			if p, err := strconv.Atoi(port); err == nil {
				c.Server.Host = host
				c.Server.Port = p
			}
		}
	}
}

// ResolveConfig loads path when it exists (defaults otherwise) and then applies environment overrides.
//
// An empty path falls back to $QAREN_CONFIG, then "config.toml".
func ResolveConfig(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = "config.toml"
	}

	config := DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		if config, err = LoadConfig(path); err != nil {
			return nil, err
		}
	}

	config.ApplyEnv()
	return config, nil
}

// Validate reports whether the config can be used to reach the upstream API.
func (c *Config) Validate() error {
	if c.Credentials.Amadeus.ClientID == "" || c.Credentials.Amadeus.ClientSecret == "" {
		return fmt.Errorf("%w: set %s and %s", ErrMissingCredentials, EnvClientID, EnvClientSecret)
	}
	if c.Upstream.TokenURL == "" || c.Upstream.SearchURL == "" {
		return fmt.Errorf("%w: upstream token_url and search_url are required", ErrInvalidConfig)
	}
	if c.Upstream.MaxResults <= 0 {
		return fmt.Errorf("%w: upstream max_results must be positive", ErrInvalidConfig)
	}
	return nil
}
