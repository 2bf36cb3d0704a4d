package convert

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// isArchiveFile reports whether path looks like a zip archive we can walk:
// matching extension and a readable zip directory.
func isArchiveFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	r, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return false, nil
		}
		return false, err
	}
	defer r.Close()
	return true, nil
}

// isDocumentFile reports whether path looks like an article document: json
// extension and an object payload.
func isDocumentFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return false, nil
	}

	head := make([]byte, 64)
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	n, err := file.Read(head)
	if n == 0 && err != nil {
		return false, nil
	}
	return looksLikeDocument(head[:n]), nil
}

// isDocumentInArchive mirrors isDocumentFile for archive members, extension
// only - opening every member to sniff defeats streaming.
func isDocumentInArchive(f *zip.File) bool {
	return strings.EqualFold(filepath.Ext(f.FileHeader.Name), ".json")
}

// looksLikeDocument checks that the payload opens with a JSON object,
// skipping an optional BOM.
func looksLikeDocument(head []byte) bool {
	head = bytes.TrimPrefix(head, []byte{0xEF, 0xBB, 0xBF})
	head = bytes.TrimLeft(head, " \t\r\n")
	return len(head) > 0 && head[0] == '{'
}
