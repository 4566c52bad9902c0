package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "~/.spotstats/spotstats.db" {
			t.Errorf("expected database path ~/.spotstats/spotstats.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Credentials.Spotify.Scope != DefaultScope {
			t.Errorf("expected scope %s, got %s", DefaultScope, config.Credentials.Spotify.Scope)
		}

		if config.Credentials.Spotify.ClientID != "your_spotify_client_id" {
			t.Errorf("expected spotify client_id your_spotify_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.Storage.Backend != "sqlite" {
			t.Errorf("expected sqlite storage backend, got %s", config.Storage.Backend)
		}

		if config.HTTP.RequestTimeout() != 10*time.Second {
			t.Errorf("expected 10s timeout, got %v", config.HTTP.RequestTimeout())
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "nested", "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 8080

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:3000/callback"

[http]
timeout = "3s"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.Credentials.Spotify.Scope != DefaultScope {
			t.Errorf("expected scope to keep default, got %q", config.Credentials.Spotify.Scope)
		}

		if config.HTTP.RequestTimeout() != 3*time.Second {
			t.Errorf("expected 3s timeout, got %v", config.HTTP.RequestTimeout())
		}
	})

	t.Run("LoadConfig Invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[server\nport = "), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("SaveConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.Credentials.Spotify.ClientID = "saved_id"
		config.UI.Theme = "midnight"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if loaded.Credentials.Spotify.ClientID != "saved_id" {
			t.Errorf("expected saved_id, got %s", loaded.Credentials.Spotify.ClientID)
		}
		if loaded.UI.Theme != "midnight" {
			t.Errorf("expected midnight theme, got %s", loaded.UI.Theme)
		}
	})

	t.Run("RequestTimeout Fallback", func(t *testing.T) {
		for _, raw := range []string{"", "soon", "-1s"} {
			h := HTTPConfig{Timeout: raw}
			if h.RequestTimeout() != DefaultRequestTimeout {
				t.Errorf("timeout %q: expected default, got %v", raw, h.RequestTimeout())
			}
		}
	})
}

func TestSpotifyConfigValidate(t *testing.T) {
	t.Run("complete credentials", func(t *testing.T) {
		s := SpotifyConfig{ClientID: "id", ClientSecret: "secret", RedirectURI: "http://x/callback", Scope: DefaultScope}
		if err := s.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("missing fields are all reported", func(t *testing.T) {
		s := SpotifyConfig{ClientID: "id", Scope: " "}
		err := s.Validate()
		if !errors.Is(err, ErrMissingConfig) {
			t.Fatalf("expected ErrMissingConfig, got %v", err)
		}
		for _, field := range []string{"client_secret", "redirect_uri", "scope"} {
			if !strings.Contains(err.Error(), field) {
				t.Errorf("expected %s in error, got %v", field, err)
			}
		}
		if strings.Contains(err.Error(), "client_id") {
			t.Errorf("client_id was set and should not be reported: %v", err)
		}
	})
}

func TestEnvOverrides(t *testing.T) {
	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv(EnvClientID, "env-id")
		t.Setenv(EnvClientSecret, "  ")
		t.Setenv(EnvRedirectURI, "")

		config := DefaultConfig()
		config.ApplyEnv()

		if config.Credentials.Spotify.ClientID != "env-id" {
			t.Errorf("expected env client id, got %q", config.Credentials.Spotify.ClientID)
		}
		if config.Credentials.Spotify.ClientSecret != "your_spotify_client_secret" {
			t.Errorf("blank env should not override, got %q", config.Credentials.Spotify.ClientSecret)
		}
	})

	t.Run("LoadDotEnv", func(t *testing.T) {
		t.Setenv(EnvClientID, "")
		os.Unsetenv(EnvClientID)

		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte(EnvClientID+"=from-dotenv\n"), 0600); err != nil {
			t.Fatalf("failed to write .env: %v", err)
		}

		if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Fatalf("LoadDotEnv failed: %v", err)
		}
		if got := os.Getenv(EnvClientID); got != "from-dotenv" {
			t.Errorf("expected from-dotenv, got %q", got)
		}
	})
}
