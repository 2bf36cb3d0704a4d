package convert

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestIsArchiveFile(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("non-zip extension", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "test.txt")
		if err := os.WriteFile(filePath, []byte("not a zip"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
		got, err := isArchiveFile(filePath)
		if err != nil {
			t.Errorf("isArchiveFile() error = %v", err)
		}
		if got != false {
			t.Errorf("isArchiveFile() = %v, want false", got)
		}
	})

	t.Run("zip extension but invalid content", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "test.zip")
		if err := os.WriteFile(filePath, []byte("not a real zip file"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
		got, err := isArchiveFile(filePath)
		if err != nil {
			t.Errorf("isArchiveFile() error = %v", err)
		}
		if got != false {
			t.Errorf("isArchiveFile() = %v, want false", got)
		}
	})

	t.Run("valid zip file", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "test2.zip")
		zipFile, err := os.Create(filePath)
		if err != nil {
			t.Fatalf("Failed to create zip file: %v", err)
		}
		w := zip.NewWriter(zipFile)
		f, err := w.Create("test.json")
		if err != nil {
			t.Fatalf("Failed to create file in zip: %v", err)
		}
		if _, err := f.Write([]byte(`{"id": "a"}`)); err != nil {
			t.Fatalf("Failed to write file in zip: %v", err)
		}
		w.Close()
		zipFile.Close()

		got, err := isArchiveFile(filePath)
		if err != nil {
			t.Errorf("isArchiveFile() error = %v", err)
		}
		if got != true {
			t.Errorf("isArchiveFile() = %v, want true", got)
		}
	})
}

func TestIsDocumentFile(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		want    bool
	}{
		{"json object", "doc.json", `{"id": "a"}`, true},
		{"json object with BOM", "bom.json", "\ufeff{\"id\": \"a\"}", true},
		{"json object with leading space", "space.json", "\n  {\"id\": \"a\"}", true},
		{"json array", "arr.json", `[1, 2]`, false},
		{"wrong extension", "doc.txt", `{"id": "a"}`, false},
		{"empty json", "empty.json", "", false},
		{"upper case extension", "doc.JSON", `{"id": "a"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filePath := filepath.Join(tmpDir, tt.file)
			if err := os.WriteFile(filePath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to create test file: %v", err)
			}
			got, err := isDocumentFile(filePath)
			if err != nil {
				t.Errorf("isDocumentFile() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("isDocumentFile() = %v, want %v", got, tt.want)
			}
		})
	}
}
