// Package snapshot captures the rendered live page as standalone HTML. The
// capture works on page markup, not on the document model: the page is
// parsed, interactivity is stripped and every element gets its computed style
// inlined, so the result looks right without the original stylesheet.
package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"artc/content"
	"artc/css"
	"artc/render"
	"artc/state"
)

// Generate writes the snapshot export of a prepared document to outputName.
func Generate(ctx context.Context, c *content.Content, outputName string, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)

	body, err := render.New(c.Doc, c.Resolver, render.OptionsFor(&env.Cfg.Document)).BodyHTML()
	if err != nil {
		return fmt.Errorf("unable to render article: %w", err)
	}

	// the live view page is the capture source
	page := render.Page{Title: c.Doc.Title(), Styles: string(env.ViewStyle), Body: body}
	pageHTML, err := page.HTML()
	if err != nil {
		return err
	}

	captured, err := Capture([]byte(pageHTML), env.ViewStyle, log)
	if err != nil {
		return fmt.Errorf("unable to capture page: %w", err)
	}

	out := render.Page{
		Title:  "Captured Content",
		Styles: string(env.SnapshotStyle),
		Body:   captured,
		Fonts:  true,
	}
	html, err := out.HTML()
	if err != nil {
		return err
	}

	log.Debug("Writing snapshot export", zap.String("file", outputName), zap.Int("bytes", len(html)))
	if err := os.WriteFile(outputName, []byte(html), 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	return nil
}

// interactive attributes are dropped, the elements themselves stay.
var eventAttributes = []string{"onclick", "onchange", "oninput", "onfocus", "onblur"}

// Capture extracts the content element from rendered page markup, strips
// scripts and event handlers and inlines computed styles resolved against
// the page stylesheet. It returns the serialized element.
func Capture(pageHTML []byte, stylesheet []byte, log *zap.Logger) (string, error) {
	doc, err := html.Parse(bytes.NewReader(pageHTML))
	if err != nil {
		return "", fmt.Errorf("unable to parse page markup: %w", err)
	}

	bodyNode := findElement(doc, "body")
	if bodyNode == nil {
		return "", errors.New("page markup has no body")
	}
	target := firstElementChild(bodyNode)
	if target == nil {
		return "", errors.New("page markup is empty, nothing was rendered")
	}

	stripInteractivity(target)

	sheet := css.NewParser(log).Parse(stylesheet, "page stylesheet")
	engine := css.NewEngine(sheet)
	bodyStyle := engine.Resolve(bodyNode, nil)
	inlineStyles(engine, target, bodyStyle)

	var buf bytes.Buffer
	if err := html.Render(&buf, target); err != nil {
		return "", fmt.Errorf("unable to serialize captured markup: %w", err)
	}
	return buf.String(), nil
}

// stripInteractivity removes script elements outright and event handler
// attributes from everything else.
func stripInteractivity(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && c.Data == "script" {
			n.RemoveChild(c)
		} else {
			stripInteractivity(c)
		}
		c = next
	}

	if n.Type != html.ElementNode {
		return
	}
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if isEventAttribute(a.Key) {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

func isEventAttribute(key string) bool {
	for _, name := range eventAttributes {
		if strings.EqualFold(key, name) {
			return true
		}
	}
	return false
}

// inlineStyles resolves and inlines the computed style of every element in
// pre-order. Styles with nothing to say leave no attribute behind.
func inlineStyles(engine *css.Engine, n *html.Node, parent css.Style) {
	style := engine.Resolve(n, parent)
	if s := style.Inline(); s != "" {
		setAttribute(n, "style", s)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			inlineStyles(engine, c, style)
		}
	}
}

func setAttribute(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, name); found != nil {
			return found
		}
	}
	return nil
}

func firstElementChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}
