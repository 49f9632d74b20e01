package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./playster.db" {
			t.Errorf("expected database path ./playster.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8085 {
			t.Errorf("expected server port 8085, got %d", config.Server.Port)
		}

		if config.UI.MinLoading != 2*time.Second {
			t.Errorf("expected min loading 2s, got %v", config.UI.MinLoading)
		}

		if config.Auth.Timeout != 3*time.Minute {
			t.Errorf("expected auth timeout 3m, got %v", config.Auth.Timeout)
		}

		if config.Auth.BrokerTimeout != 30*time.Second {
			t.Errorf("expected broker timeout 30s, got %v", config.Auth.BrokerTimeout)
		}

		if config.App.AccountType != "io.playster.cli" {
			t.Errorf("expected account type io.playster.cli, got %s", config.App.AccountType)
		}

		if config.Google.HasClient() {
			t.Error("placeholder client ID should not count as configured")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
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
host = "localhost"
port = 9000

[google]
client_id = "test_client_id"
client_secret = "test_secret"

[auth]
timeout = "45s"
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

		if got := config.Server.Addr(); got != "localhost:9000" {
			t.Errorf("expected callback address localhost:9000, got %s", got)
		}

		if config.Auth.Timeout != 45*time.Second {
			t.Errorf("expected auth timeout 45s, got %v", config.Auth.Timeout)
		}

		if config.Auth.BrokerTimeout != 30*time.Second {
			t.Errorf("missing keys should keep defaults, got broker timeout %v", config.Auth.BrokerTimeout)
		}

		if !config.Google.HasClient() || config.Google.Audience() != "test_client_id" {
			t.Errorf("expected client test_client_id as audience, got %q", config.Google.Audience())
		}
	})

	t.Run("LoadConfig Invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[database\npath ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}

		if got := LoadConfigOrDefault(configPath); got.Database.Path != "./playster.db" {
			t.Errorf("LoadConfigOrDefault should fall back to defaults, got %s", got.Database.Path)
		}
	})

	t.Run("SaveConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.Google.ServerClientID = "server-aud"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("SaveConfig() error = %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if loaded.Google.Audience() != "server-aud" {
			t.Errorf("expected audience server-aud, got %s", loaded.Google.Audience())
		}
	})
}
