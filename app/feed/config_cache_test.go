package feed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	writeConfig(t, tempDir, "ftc_consumer_blog.yml", `
url: "https://consumer.ftc.gov/blog/gd-rss.xml"

settings:
  enabled: true
  refresh_interval: 1800
  max_items: 25
  timeout: 15
  enrich_summaries: true
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 sourceConfig, got %d", configCache.GetConfigCount())
	}

	sourceConfig, err := configCache.GetConfig("ftc_consumer_blog")
	if err != nil {
		t.Fatal(err)
	}

	if sourceConfig.Name != "ftc_consumer_blog" {
		t.Errorf("Expected name 'ftc_consumer_blog', got '%s'", sourceConfig.Name)
	}
	if sourceConfig.URL != "https://consumer.ftc.gov/blog/gd-rss.xml" {
		t.Errorf("Expected FTC URL, got '%s'", sourceConfig.URL)
	}
	if time.Duration(sourceConfig.Settings.RefreshInterval)*time.Second != 30*time.Minute {
		t.Errorf("Expected refresh interval 30m, got %v", time.Duration(sourceConfig.Settings.RefreshInterval)*time.Second)
	}
	if sourceConfig.Settings.MaxItems != 25 {
		t.Errorf("Expected max items 25, got %d", sourceConfig.Settings.MaxItems)
	}
	if sourceConfig.Settings.Timeout != 15 {
		t.Errorf("Expected timeout 15, got %d", sourceConfig.Settings.Timeout)
	}
	if !sourceConfig.Settings.EnrichSummaries {
		t.Error("Expected enrich_summaries to be true")
	}
}

func TestConfigCacheLoadConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()

	writeConfig(t, tempDir, "test.yml", `
url: "https://example.com/feed.xml"

settings:
  enabled: true
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	sourceConfig, err := configCache.GetConfig("test")
	if err != nil {
		t.Fatal(err)
	}

	if sourceConfig.Settings.RefreshInterval != DefaultRefreshInterval {
		t.Errorf("Expected default refresh interval %d, got %d", DefaultRefreshInterval, sourceConfig.Settings.RefreshInterval)
	}
	if sourceConfig.Settings.MaxItems != 15 {
		t.Errorf("Expected default max items 15, got %d", sourceConfig.Settings.MaxItems)
	}
	if sourceConfig.Settings.Timeout != 30 {
		t.Errorf("Expected default timeout 30, got %d", sourceConfig.Settings.Timeout)
	}
	if sourceConfig.Settings.EnrichSummaries {
		t.Error("Expected enrich_summaries to default to false")
	}
	if sourceConfig.Settings.Location != nil {
		t.Errorf("Expected no location without timezone, got %v", sourceConfig.Settings.Location)
	}
}

func TestConfigCacheTimezone(t *testing.T) {
	tempDir := t.TempDir()

	writeConfig(t, tempDir, "ftc.yml", `
url: "https://consumer.ftc.gov/blog/gd-rss.xml"

settings:
  enabled: true
  timezone: America/New_York
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	sourceConfig, err := configCache.GetConfig("ftc")
	if err != nil {
		t.Fatal(err)
	}

	loc := sourceConfig.Settings.Location
	if loc == nil || loc.String() != "America/New_York" {
		t.Fatalf("Expected location America/New_York, got %v", loc)
	}

	_, offset := time.Date(2025, 7, 22, 7, 47, 0, 0, loc).Zone()
	if offset != -4*3600 {
		t.Errorf("Expected summer offset -4h, got %ds", offset)
	}
}

func TestConfigCacheInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing URL",
			content: "settings:\n  enabled: true\n",
		},
		{
			name:    "relative URL",
			content: "url: \"/feed.xml\"\n",
		},
		{
			name:    "unsupported scheme",
			content: "url: \"ftp://example.com/feed.xml\"\n",
		},
		{
			name:    "negative timeout",
			content: "url: \"https://example.com/feed.xml\"\nsettings:\n  timeout: -5\n",
		},
		{
			name:    "unknown timezone",
			content: "url: \"https://example.com/feed.xml\"\nsettings:\n  timezone: Mars/Olympus_Mons\n",
		},
		{
			name:    "malformed YAML",
			content: "invalid yaml content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			writeConfig(t, tempDir, "invalid.yml", tt.content)

			configCache := NewConfigCache(tempDir)
			if err := configCache.Run(); err == nil {
				t.Error("Expected error for invalid sourceConfig")
			}
		})
	}
}

func TestConfigCacheEmptyDirectory(t *testing.T) {
	configCache := NewConfigCache(t.TempDir())
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 0 {
		t.Errorf("Expected 0 sourceConfigs from empty directory, got %d", configCache.GetConfigCount())
	}
}

func TestConfigCacheMissingDirectory(t *testing.T) {
	configCache := NewConfigCache(filepath.Join(t.TempDir(), "missing"))
	if err := configCache.Run(); err != nil {
		t.Errorf("Expected no error for missing directory, got: %v", err)
	}
}

func TestConfigCacheReloadConfig(t *testing.T) {
	tempDir := t.TempDir()

	configFile := writeConfig(t, tempDir, "test.yml", `
url: "https://example.com/feed.xml"
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	writeConfig(t, tempDir, "test.yml", `
url: "https://example.com/new-feed.xml"

settings:
  max_items: 50
`)

	reloadedConfig, err := configCache.LoadConfig("test")
	if err != nil {
		t.Fatal(err)
	}

	if reloadedConfig.URL != "https://example.com/new-feed.xml" {
		t.Errorf("Expected updated URL 'https://example.com/new-feed.xml', got '%s'", reloadedConfig.URL)
	}
	if reloadedConfig.Settings.MaxItems != 50 {
		t.Errorf("Expected updated max_items 50, got %d", reloadedConfig.Settings.MaxItems)
	}

	if _, err := configCache.LoadConfig("nonexistent"); err == nil {
		t.Error("Expected error for non-existent config")
	}

	if err := os.WriteFile(configFile, []byte("invalid yaml content"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := configCache.LoadConfig("test"); err == nil {
		t.Error("Expected error for invalid config file")
	}
}

func TestConfigCacheGetEnabledConfigs(t *testing.T) {
	tempDir := t.TempDir()

	writeConfig(t, tempDir, "zeta.yml", "url: \"https://zeta.example.com/rss\"\nsettings:\n  enabled: true\n")
	writeConfig(t, tempDir, "alpha.yml", "url: \"https://alpha.example.com/rss\"\nsettings:\n  enabled: true\n")
	writeConfig(t, tempDir, "off.yml", "url: \"https://off.example.com/rss\"\nsettings:\n  enabled: false\n")

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if len(configCache.GetConfigs()) != 3 {
		t.Errorf("Expected 3 configs, got %d", len(configCache.GetConfigs()))
	}

	enabled := configCache.GetEnabledConfigs()
	if len(enabled) != 2 {
		t.Fatalf("Expected 2 enabled configs, got %d", len(enabled))
	}
	if enabled[0].Name != "alpha" || enabled[1].Name != "zeta" {
		t.Errorf("Expected [alpha zeta], got [%s %s]", enabled[0].Name, enabled[1].Name)
	}
}

func TestConfigCacheWatch(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "test.yml", "url: \"https://example.com/feed.xml\"\n")

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan *Config, 10)
	if err := configCache.Watch(ctx, func(c *Config) { changed <- c }); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	writeConfig(t, tempDir, "added.yml", "url: \"https://example.com/added.xml\"\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-changed:
			if c.Name != "added" {
				continue
			}
			if _, err := configCache.GetConfig("added"); err != nil {
				t.Errorf("Expected added config in cache, got: %v", err)
			}
			return
		case <-deadline:
			t.Fatal("Timed out waiting for config reload")
		}
	}
}

func TestConfigCacheWatchMissingDirectory(t *testing.T) {
	configCache := NewConfigCache(filepath.Join(t.TempDir(), "missing"))
	if err := configCache.Watch(context.Background(), nil); err == nil {
		t.Error("Expected error when watching a missing directory")
	}
}
