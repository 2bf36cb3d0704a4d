// Package static renders the presentation tree directly into a standalone
// HTML file with a small fixed stylesheet. The output is deliberately plain,
// styling beyond the utility classes the sheet covers is out of scope here.
package static

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"artc/content"
	"artc/render"
	"artc/state"
)

// Generate writes the static export of a prepared document to outputName.
func Generate(ctx context.Context, c *content.Content, outputName string, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)

	body, err := render.New(c.Doc, c.Resolver, render.OptionsFor(&env.Cfg.Document)).BodyHTML()
	if err != nil {
		return fmt.Errorf("unable to render article: %w", err)
	}
	if strings.TrimSpace(body) == "" {
		return errors.New("nothing to export: rendered markup is empty")
	}

	page := render.Page{
		Title:  "Exported Article",
		Styles: string(env.StaticStyle),
		Body:   body,
	}
	html, err := page.HTML()
	if err != nil {
		return err
	}

	log.Debug("Writing static export", zap.String("file", outputName), zap.Int("bytes", len(html)))
	if err := os.WriteFile(outputName, []byte(html), 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	return nil
}
