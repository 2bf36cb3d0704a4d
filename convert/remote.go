package convert

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"artc/config"
	"artc/state"
)

// pipelineScheme names an article by id, resolved against the configured
// editorial pipeline base URL.
const pipelineScheme = "pipeline:"

func isRemoteSource(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") ||
		strings.HasPrefix(src, pipelineScheme)
}

// processRemote fetches a single article document over HTTP and processes it.
// Sources are either full URLs or "pipeline:ID" references to the editorial
// pipeline REST API.
func processRemote(ctx context.Context, src, dst string, method config.ExportMethod, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	target := src
	if id, ok := strings.CutPrefix(src, pipelineScheme); ok {
		if len(id) == 0 {
			return errors.New("no article id in pipeline source")
		}
		base := strings.TrimSuffix(env.Cfg.Pipeline.BaseURL, "/")
		if len(base) == 0 {
			return errors.New("pipeline base url is not configured")
		}
		target = base + "/articles/" + id
	}

	log.Debug("Fetching remote article", zap.String("url", target))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("unable to prepare pipeline request: %w", err)
	}
	if token := env.Cfg.Pipeline.APIToken; len(token) > 0 {
		req.Header.Set("Authorization", "Bearer "+string(token))
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("unable to fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unable to fetch article: %s returned %s", target, resp.Status)
	}

	name := path.Base(req.URL.Path)
	if !strings.EqualFold(path.Ext(name), ".json") {
		name += ".json"
	}
	return processDocument(ctx, resp.Body, name, dst, method, log)
}
