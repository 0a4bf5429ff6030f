package cfg

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.DBPath != "./data/cyberguardian.db" {
		t.Errorf("Expected default DB path, got '%s'", cfg.DBPath)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("Expected worker count 5, got %d", cfg.WorkerCount)
	}
	if cfg.IngestLimit != 15 {
		t.Errorf("Expected ingest limit 15, got %d", cfg.IngestLimit)
	}
	if cfg.SummarizeBatch != 10 {
		t.Errorf("Expected summarize batch 10, got %d", cfg.SummarizeBatch)
	}
	if cfg.AllowClear {
		t.Error("Expected allow clear to be off by default")
	}
	if cfg.SummarizerEnabled() {
		t.Error("Expected summarizer to be disabled without an API key")
	}
	if cfg.Location == nil {
		t.Error("Expected location to be set")
	}
}

func TestLoadFlagsAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_API_KEY", "secret")
	t.Setenv("TZ", "America/Mexico_City")

	cfg, err := Load([]string{"--worker-count", "2", "--allow-clear", "--api-key", "k"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port from env '9090', got '%s'", cfg.Port)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("Expected worker count 2, got %d", cfg.WorkerCount)
	}
	if !cfg.AllowClear {
		t.Error("Expected allow clear to be set")
	}
	if cfg.APIAccessKey != "k" {
		t.Errorf("Expected API key 'k', got '%s'", cfg.APIAccessKey)
	}
	if !cfg.SummarizerEnabled() {
		t.Error("Expected summarizer to be enabled")
	}
	if cfg.Location.String() != "America/Mexico_City" {
		t.Errorf("Expected location 'America/Mexico_City', got '%s'", cfg.Location)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	// Registered so the variable is restored after godotenv sets it
	t.Setenv("FEEDS_DIR", "")
	os.Unsetenv("FEEDS_DIR")

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("FEEDS_DIR=/srv/feeds\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.FeedsDir != "/srv/feeds" {
		t.Errorf("Expected feeds dir from .env, got '%s'", cfg.FeedsDir)
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name string
		args []string
	}{
		{name: "zero workers", args: []string{"--worker-count", "0"}},
		{name: "zero interval", args: []string{"--scheduler-interval", "0"}},
		{name: "unknown flag", args: []string{"--no-such-flag"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.args); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestLoadHelp(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load([]string{"--help"})
	if !errors.Is(err, ErrHelp) {
		t.Errorf("Expected ErrHelp, got %v", err)
	}
}

func TestLoadLocation(t *testing.T) {
	if loc := loadLocation("Not/AZone"); loc != time.Local {
		t.Errorf("Expected time.Local for invalid zone, got %v", loc)
	}
	if loc := loadLocation("UTC"); loc.String() != "UTC" {
		t.Errorf("Expected UTC, got %v", loc)
	}
}
