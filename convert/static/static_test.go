package static

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"artc/config"
	"artc/content"
	"artc/state"
)

func generate(t *testing.T, payload string) string {
	t.Helper()
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)

	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	env.Cfg = cfg
	env.Log = zap.NewNop()
	env.StaticStyle = []byte(".font-semibold { font-weight: 600; }")

	c, err := content.Prepare(ctx, strings.NewReader(payload), "doc.json", config.ExportMethodStatic, zap.NewNop())
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(c.WorkDir) })

	out := filepath.Join(t.TempDir(), c.Doc.ID+"-article.html")
	if err := Generate(ctx, c, out, zap.NewNop()); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("unable to read output: %v", err)
	}
	return string(data)
}

func TestGenerate_Boilerplate(t *testing.T) {
	out := generate(t, `{"id": "a-b", "sections": {"lead": {"blocks": [{"type": "paragraph", "content": "Hi."}]}}}`)

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<meta charset="UTF-8">`,
		"<title>Exported Article</title>",
		".font-semibold { font-weight: 600; }",
		"Hi.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "fonts.googleapis.com") {
		t.Error("static export must not carry web font links")
	}
}

// Every citation marker in the export points at a reference row that exists,
// and every reference row is addressable.
func TestGenerate_AnchorRoundTrip(t *testing.T) {
	out := generate(t, `{
		"id": "brett-gibson",
		"sections": {
			"lead": {
				"blocks": [{"type": "paragraph", "content": "Lead.", "citations": [{"id": 1}]}],
				"references": [{"id": 1, "title": "One", "url": "u1"}]
			},
			"career": {
				"blocks": [{"type": "paragraph", "content": "Career.", "citations": [{"id": 1}, {"id": 2}]}],
				"references": [
					{"id": 1, "title": "One", "url": "u1"},
					{"id": 2, "title": "Two", "url": "u2"}
				]
			}
		}
	}`)

	doc, err := html.Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("exported HTML does not parse: %v", err)
	}

	hrefs := map[string]bool{}
	ids := map[string]bool{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if n.Data == "a" && a.Key == "href" && strings.HasPrefix(a.Val, "#ref-") {
					hrefs[strings.TrimPrefix(a.Val, "#")] = true
				}
				if a.Key == "id" && strings.HasPrefix(a.Val, "ref-") {
					ids[a.Val] = true
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(hrefs) == 0 || len(ids) == 0 {
		t.Fatalf("no anchors found: hrefs=%v ids=%v", hrefs, ids)
	}
	for href := range hrefs {
		if !ids[href] {
			t.Errorf("citation points at %q but no reference row has that id", href)
		}
	}
	// two distinct references, dense numbering
	for _, want := range []string{"ref-1", "ref-2"} {
		if !ids[want] {
			t.Errorf("reference row %q missing", want)
		}
	}
	if ids["ref-3"] {
		t.Error("unexpected third reference row")
	}
}

func TestGenerate_ContextCancelled(t *testing.T) {
	ctx := state.ContextWithEnv(context.Background())
	ctx, cancel := context.WithCancel(ctx)
	cancel()
	if err := Generate(ctx, nil, "", zap.NewNop()); err == nil {
		t.Fatal("Generate() ignored cancelled context")
	}
}
