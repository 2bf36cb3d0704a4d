package convert

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"artc/config"
	"artc/content"
	"artc/state"
)

func testEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	t.Helper()
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)

	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	env.Cfg = cfg
	env.Log = zap.NewNop()
	env.Method = config.ExportMethodStatic
	if err := LoadStyles(env); err != nil {
		t.Fatalf("LoadStyles() error = %v", err)
	}
	return ctx, env
}

func prepareContent(t *testing.T, ctx context.Context, payload string, method config.ExportMethod) *content.Content {
	t.Helper()
	c, err := content.Prepare(ctx, strings.NewReader(payload), "source.json", method, zap.NewNop())
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(c.WorkDir) })
	return c
}

func TestBuildOutputPath_Defaults(t *testing.T) {
	ctx, env := testEnv(t)
	c := prepareContent(t, ctx, `{"id": "brett-gibson", "sections": {}}`, config.ExportMethodStatic)

	got := buildOutputPath(c, "source.json", "/out", env)
	want := filepath.Join("/out", "brett-gibson-article.html")
	if got != want {
		t.Errorf("buildOutputPath() = %q, want %q", got, want)
	}
}

func TestBuildOutputPath_SnapshotSuffix(t *testing.T) {
	ctx, env := testEnv(t)
	c := prepareContent(t, ctx, `{"id": "brett-gibson", "sections": {}}`, config.ExportMethodSnapshot)

	got := buildOutputPath(c, "source.json", "/out", env)
	if !strings.HasSuffix(got, "brett-gibson-dom-capture.html") {
		t.Errorf("buildOutputPath() = %q, want dom-capture suffix", got)
	}
}

func TestBuildOutputPath_PreservesSourceDirs(t *testing.T) {
	ctx, env := testEnv(t)
	c := prepareContent(t, ctx, `{"id": "a-b", "sections": {}}`, config.ExportMethodStatic)

	got := buildOutputPath(c, filepath.Join("batch", "one", "source.json"), "/out", env)
	want := filepath.Join("/out", "batch", "one", "a-b-article.html")
	if got != want {
		t.Errorf("buildOutputPath() = %q, want %q", got, want)
	}

	env.NoDirs = true
	got = buildOutputPath(c, filepath.Join("batch", "one", "source.json"), "/out", env)
	want = filepath.Join("/out", "a-b-article.html")
	if got != want {
		t.Errorf("buildOutputPath() with nodirs = %q, want %q", got, want)
	}
}

func TestBuildOutputPath_Template(t *testing.T) {
	ctx, env := testEnv(t)
	c := prepareContent(t, ctx, `{"id": "brett-gibson", "sections": {}}`, config.ExportMethodStatic)

	env.Cfg.Document.OutputNameTemplate = "{{.Method}}/{{.ID}}"
	got := buildOutputPath(c, "source.json", "/out", env)
	want := filepath.Join("/out", "static", "brett-gibson-article.html")
	if got != want {
		t.Errorf("buildOutputPath() = %q, want %q", got, want)
	}
}

func TestBuildOutputPath_BadTemplateFallsBack(t *testing.T) {
	ctx, env := testEnv(t)
	c := prepareContent(t, ctx, `{"id": "a-b", "sections": {}}`, config.ExportMethodStatic)

	env.Cfg.Document.OutputNameTemplate = "{{.NoSuchField}}"
	got := buildOutputPath(c, "source.json", "/out", env)
	want := filepath.Join("/out", "a-b-article.html")
	if got != want {
		t.Errorf("buildOutputPath() = %q, want default fallback %q", got, want)
	}
}

func TestSplitAndCleanPath(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"a/b/c", []string{"a", "b", "c"}},
		{"single", []string{"single"}},
		{"", nil},
	}
	for _, tt := range tests {
		got := splitAndCleanPath(filepath.FromSlash(tt.path))
		if len(got) != len(tt.want) {
			t.Errorf("splitAndCleanPath(%q) = %v, want %v", tt.path, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitAndCleanPath(%q)[%d] = %q, want %q", tt.path, i, got[i], tt.want[i])
			}
		}
	}
}
