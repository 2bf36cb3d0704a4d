// Package content prepares article documents for conversion: decoding,
// id normalization and document-wide reference merging happen here once,
// the export backends work off the prepared result.
package content

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"

	"artc/article"
	"artc/config"
	"artc/misc"
	"artc/state"
)

// Content is a fully prepared article ready for export.
type Content struct {
	SrcName string
	Method  config.ExportMethod

	Doc      *article.Document
	Resolver *article.Resolver

	WorkDir string
}

// Prepare reads, parses and prepares an article document for conversion.
func Prepare(ctx context.Context, r io.Reader, srcName string, method config.ExportMethod, log *zap.Logger) (*Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env := state.EnvFromContext(ctx)

	// Pipeline exports are UTF-8, some carry a BOM
	data, err := io.ReadAll(unicode.UTF8BOM.NewDecoder().Reader(r))
	if err != nil {
		return nil, fmt.Errorf("unable to read document: %w", err)
	}

	doc, err := article.ParseDocument(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unable to parse document: %w", err)
	}

	// Make sure the document id is present and slug shaped - output naming
	// and title reconstruction depend on it
	if doc.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("unable to generate document id: %w", err)
		}
		doc.ID = "article-" + id.String()
		log.Warn("Document has no id, generating", zap.String("new_id", doc.ID))
	} else if normalized := slug.Make(doc.ID); normalized != doc.ID {
		log.Warn("Document id is not a clean slug, correcting", zap.String("old_id", doc.ID), zap.String("new_id", normalized))
		doc.ID = normalized
	}

	tmpDir, err := os.MkdirTemp("", misc.GetAppName()+"-")
	if err != nil {
		return nil, fmt.Errorf("unable to create temporary directory: %w", err)
	}
	env.Rpt.Store(fmt.Sprintf("%s-%s", misc.GetAppName(), doc.ID), tmpDir)

	c := &Content{
		SrcName:  srcName,
		Method:   method,
		Doc:      doc,
		Resolver: article.NewResolver(doc, article.CollectReferences(doc)),
		WorkDir:  tmpDir,
	}

	// Save input and prepared document for debugging
	if env.Rpt != nil {
		baseSrcName := filepath.Base(srcName)
		if err := os.WriteFile(filepath.Join(tmpDir, baseSrcName), data, 0644); err != nil {
			return nil, fmt.Errorf("unable to write input doc for debugging: %w", err)
		}
		if err := os.WriteFile(filepath.Join(tmpDir, baseSrcName+"_prepared"), []byte(c.String()), 0644); err != nil {
			return nil, fmt.Errorf("unable to write prepared doc for debugging: %w", err)
		}
	}

	return c, nil
}
