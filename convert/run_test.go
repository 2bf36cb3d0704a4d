package convert

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"artc/config"
)

const runPayload = `{
	"id": "brett-gibson",
	"sections": {
		"lead": {
			"blocks": [{"type": "paragraph", "content": "Brett Gibson is a partner.", "citations": [{"id": 1}]}],
			"references": [{"id": 1, "title": "Profile", "url": "https://example.com/p"}]
		}
	}
}`

func TestProcess_SingleFile(t *testing.T) {
	ctx, _ := testEnv(t)
	srcDir, dstDir := t.TempDir(), t.TempDir()

	src := filepath.Join(srcDir, "doc.json")
	if err := os.WriteFile(src, []byte(runPayload), 0644); err != nil {
		t.Fatalf("unable to write source: %v", err)
	}

	if err := process(ctx, src, dstDir, config.ExportMethodStatic, zap.NewNop()); err != nil {
		t.Fatalf("process() error = %v", err)
	}

	out := filepath.Join(dstDir, "brett-gibson-article.html")
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !strings.Contains(string(data), "Brett Gibson") {
		t.Error("output missing article content")
	}
}

func TestProcess_Directory(t *testing.T) {
	ctx, _ := testEnv(t)
	srcDir, dstDir := t.TempDir(), t.TempDir()

	sub := filepath.Join(srcDir, "batch")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "doc.json"), []byte(runPayload), 0644); err != nil {
		t.Fatal(err)
	}
	// non-document files are skipped silently
	if err := os.WriteFile(filepath.Join(sub, "notes.txt"), []byte("skip me"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := process(ctx, srcDir, dstDir, config.ExportMethodStatic, zap.NewNop()); err != nil {
		t.Fatalf("process() error = %v", err)
	}

	// source directory structure is preserved
	out := filepath.Join(dstDir, "batch", "brett-gibson-article.html")
	if _, err := os.Stat(out); err != nil {
		t.Errorf("expected output at %s: %v", out, err)
	}
}

func TestProcess_Archive(t *testing.T) {
	ctx, _ := testEnv(t)
	srcDir, dstDir := t.TempDir(), t.TempDir()

	archivePath := filepath.Join(srcDir, "docs.zip")
	zf, err := os.Create(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(zf)
	f, err := w.Create("inner/doc.json")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte(runPayload)); err != nil {
		t.Fatal(err)
	}
	w.Close()
	zf.Close()

	if err := process(ctx, archivePath, dstDir, config.ExportMethodStatic, zap.NewNop()); err != nil {
		t.Fatalf("process() error = %v", err)
	}

	out := filepath.Join(dstDir, "inner", "brett-gibson-article.html")
	if _, err := os.Stat(out); err != nil {
		t.Errorf("expected output at %s: %v", out, err)
	}
}

func TestProcess_MissingSource(t *testing.T) {
	ctx, _ := testEnv(t)
	if err := process(ctx, filepath.Join(t.TempDir(), "no-such.json"), t.TempDir(), config.ExportMethodStatic, zap.NewNop()); err == nil {
		t.Fatal("process() succeeded on missing source")
	}
}

func TestProcessDocument_OverwriteGuard(t *testing.T) {
	ctx, env := testEnv(t)
	dstDir := t.TempDir()

	run := func() error {
		return processDocument(ctx, strings.NewReader(runPayload), "doc.json", dstDir, config.ExportMethodStatic, zap.NewNop())
	}

	if err := run(); err != nil {
		t.Fatalf("first conversion error = %v", err)
	}
	if err := run(); err == nil {
		t.Fatal("second conversion succeeded without --overwrite")
	}
	env.Overwrite = true
	if err := run(); err != nil {
		t.Fatalf("conversion with overwrite error = %v", err)
	}
}

func TestProcessDocument_BadPayload(t *testing.T) {
	ctx, _ := testEnv(t)
	err := processDocument(ctx, strings.NewReader("{not json"), "doc.json", t.TempDir(), config.ExportMethodStatic, zap.NewNop())
	if err == nil {
		t.Fatal("processDocument() succeeded on malformed payload")
	}
}

func TestLoadStyles_Overrides(t *testing.T) {
	_, env := testEnv(t)

	custom := filepath.Join(t.TempDir(), "custom.css")
	if err := os.WriteFile(custom, []byte("p { color: red }"), 0644); err != nil {
		t.Fatal(err)
	}
	env.Cfg.Document.Styles.StaticPath = custom

	if err := LoadStyles(env); err != nil {
		t.Fatalf("LoadStyles() error = %v", err)
	}
	if string(env.StaticStyle) != "p { color: red }" {
		t.Errorf("StaticStyle = %q, want override content", env.StaticStyle)
	}
	if len(env.SnapshotStyle) == 0 || len(env.ViewStyle) == 0 {
		t.Error("embedded defaults not loaded")
	}

	env.Cfg.Document.Styles.StaticPath = filepath.Join(t.TempDir(), "missing.css")
	if err := LoadStyles(env); err == nil {
		t.Error("LoadStyles() succeeded with missing override file")
	}
}
