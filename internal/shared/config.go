package shared

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	DefaultScope          = "user-top-read"
	DefaultRequestTimeout = 10 * time.Second
)

// Environment variables that override the Spotify credentials from the config file.
const (
	EnvClientID     = "SPOTIFY_CLIENT_ID"
	EnvClientSecret = "SPOTIFY_CLIENT_SECRET"
	EnvRedirectURI  = "SPOTIFY_REDIRECT_URI"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Storage     StorageConfig     `toml:"storage"`
	HTTP        HTTPConfig        `toml:"http"`
	UI          UIConfig          `toml:"ui"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	Scope        string `toml:"scope"`
}

// Validate reports every missing credential field as a single [ErrMissingConfig].
func (s SpotifyConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(s.ClientID) == "" {
		missing = append(missing, "client_id")
	}
	if strings.TrimSpace(s.ClientSecret) == "" {
		missing = append(missing, "client_secret")
	}
	if strings.TrimSpace(s.RedirectURI) == "" {
		missing = append(missing, "redirect_uri")
	}
	if strings.TrimSpace(s.Scope) == "" {
		missing = append(missing, "scope")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: credentials.spotify.%s", ErrMissingConfig, strings.Join(missing, ", credentials.spotify."))
	}
	return nil
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"` // CORS origins for the dashboard API, none when empty
}

// Addr returns host:port for [net/http.Server].
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig selects where the token is persisted.
type StorageConfig struct {
	Backend  string `toml:"backend"` // sqlite, file or memory
	FilePath string `toml:"file_path"`
}

// HTTPConfig controls outbound requests to the provider.
type HTTPConfig struct {
	Timeout    string  `toml:"timeout"`
	RateLimit  float64 `toml:"rate_limit"`  // requests per second
	MaxRetries int     `toml:"max_retries"` // attempts for rate-limited and transient failures
}

// RequestTimeout parses Timeout, falling back to [DefaultRequestTimeout].
func (h HTTPConfig) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(h.Timeout)
	if err != nil || d <= 0 {
		return DefaultRequestTimeout
	}
	return d
}

// UIConfig contains presentation settings.
type UIConfig struct {
	Theme string `toml:"theme"`
}

// LoadDotEnv loads variables from the given .env files (default ".env") without overriding ones already set.
// Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, path := range paths {
		if err := godotenv.Load(ExpandPath(path)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: failed to load %s: %v", ErrInvalidConfig, path, err)
		}
	}
	return nil
}

// ApplyEnv overrides the Spotify credentials with any SPOTIFY_* variables that are set.
func (c *Config) ApplyEnv() {
	for env, field := range map[string]*string{
		EnvClientID:     &c.Credentials.Spotify.ClientID,
		EnvClientSecret: &c.Credentials.Spotify.ClientSecret,
		EnvRedirectURI:  &c.Credentials.Spotify.RedirectURI,
	} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			*field = v
		}
	}
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
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
	path = ExpandPath(path)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path as TOML, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(ExpandPath(path), buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
