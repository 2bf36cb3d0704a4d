package convert

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"artc/config"
)

func TestIsRemoteSource(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"http://host/articles/a.json", true},
		{"https://host/articles/a.json", true},
		{"pipeline:brett-gibson", true},
		{"article.json", false},
		{"/abs/path/article.json", false},
		{"httpdocs/article.json", false},
	}
	for _, tt := range tests {
		if got := isRemoteSource(tt.src); got != tt.want {
			t.Errorf("isRemoteSource(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestProcessRemote_PipelineSource(t *testing.T) {
	ctx, env := testEnv(t)
	dstDir := t.TempDir()

	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/articles/brett-gibson" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(runPayload))
	}))
	defer ts.Close()

	env.Cfg.Pipeline.BaseURL = ts.URL
	env.Cfg.Pipeline.APIToken = "s3cret"

	if err := process(ctx, "pipeline:brett-gibson", dstDir, config.ExportMethodStatic, zap.NewNop()); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if gotAuth != "Bearer s3cret" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if _, err := os.Stat(filepath.Join(dstDir, "brett-gibson-article.html")); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestProcessRemote_DirectURL(t *testing.T) {
	ctx, env := testEnv(t)
	dstDir := t.TempDir()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("no token configured, request must carry no credential")
		}
		_, _ = w.Write([]byte(runPayload))
	}))
	defer ts.Close()

	env.Cfg.Pipeline.APIToken = ""
	if err := process(ctx, ts.URL+"/batch/doc.json", dstDir, config.ExportMethodStatic, zap.NewNop()); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dstDir, "brett-gibson-article.html")); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestProcessRemote_Errors(t *testing.T) {
	ctx, env := testEnv(t)

	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	env.Cfg.Pipeline.BaseURL = ts.URL
	if err := process(ctx, "pipeline:no-such-article", t.TempDir(), config.ExportMethodStatic, zap.NewNop()); err == nil {
		t.Error("process() succeeded on 404 response")
	}

	if err := process(ctx, "pipeline:", t.TempDir(), config.ExportMethodStatic, zap.NewNop()); err == nil {
		t.Error("process() succeeded on empty pipeline id")
	}

	env.Cfg.Pipeline.BaseURL = ""
	if err := process(ctx, "pipeline:brett-gibson", t.TempDir(), config.ExportMethodStatic, zap.NewNop()); err == nil {
		t.Error("process() succeeded without configured base url")
	}
}
