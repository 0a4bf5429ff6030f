package tasks

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeSourceConfig(t *testing.T, dir, name string, enabled bool) {
	t.Helper()
	content := fmt.Sprintf("url: \"https://%s.example.com/rss\"\nsettings:\n  enabled: %t\n", name, enabled)
	if err := os.WriteFile(filepath.Join(dir, name+".yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
