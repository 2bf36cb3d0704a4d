package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}

	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}

	if !cfg.Document.Lead.Emphasis {
		t.Error("Expected lead emphasis to be enabled by default")
	}

	if cfg.Server.Address == "" {
		t.Error("Expected default server address to be set")
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `version: 1
document:
  output_name_template: "{{ .Title }}"
  file_name_transliterate: true
  accessed_date: "25 July 2025"
  lead:
    emphasis: false
  headings:
    sentence_case: false
server:
  address: "localhost:9000"
  allowed_origins: ["http://localhost:3000"]
  export_dir: ` + filepath.Join(tmpDir, "out") + `
logging:
  console:
    level: normal
  file:
    level: debug
    destination: ` + filepath.Join(tmpDir, "test.log") + `
    mode: append
reporting:
  destination: ` + filepath.Join(tmpDir, "test-report.zip") + `
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}

	if !cfg.Document.FileNameTransliterate {
		t.Error("Expected FileNameTransliterate to be true")
	}

	if cfg.Document.Lead.Emphasis {
		t.Error("Expected lead emphasis to be disabled")
	}

	if cfg.Document.AccessedDate != "25 July 2025" {
		t.Errorf("AccessedDate = %q, want %q", cfg.Document.AccessedDate, "25 July 2025")
	}

	if cfg.Server.Address != "localhost:9000" {
		t.Errorf("Server address = %q, want %q", cfg.Server.Address, "localhost:9000")
	}
}

func TestLoadConfiguration_UnknownFields(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `version: 1
document:
  no_such_option: true
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := LoadConfiguration(configPath); err == nil {
		t.Fatal("Expected error for unknown configuration fields")
	}
}

func TestDump_HidesSecrets(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Pipeline.APIToken = "super-secret-token"

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	if strings.Contains(string(data), "super-secret-token") {
		t.Error("Dump() leaked secret value")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Prepare() returned empty configuration")
	}
	if !strings.Contains(string(data), "version: 1") {
		t.Error("Prepared configuration does not contain version")
	}
}

func TestParseExportMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    ExportMethod
		wantErr bool
	}{
		{"static", ExportMethodStatic, false},
		{"SNAPSHOT", ExportMethodSnapshot, false},
		{"dom", ExportMethodStatic, true},
		{"", ExportMethodStatic, true},
	}
	for _, tt := range tests {
		got, err := ParseExportMethod(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseExportMethod(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseExportMethod(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExportMethodSuffix(t *testing.T) {
	if got := ExportMethodStatic.Suffix(); got != "-article.html" {
		t.Errorf("static suffix = %q", got)
	}
	if got := ExportMethodSnapshot.Suffix(); got != "-dom-capture.html" {
		t.Errorf("snapshot suffix = %q", got)
	}
}
