package server

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// ExportRecord is a single row of the export history.
type ExportRecord struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Method     string    `json:"method"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	Created    time.Time `json:"created"`
}

// History keeps export events in a sqlite database. A nil History is valid
// and records nothing, history is an optional feature.
type History struct {
	pool *sqlitex.Pool
	log  *zap.Logger
}

const historySchema = `
CREATE TABLE IF NOT EXISTS exports (
	id          TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	method      TEXT NOT NULL,
	filename    TEXT NOT NULL,
	size        INTEGER NOT NULL,
	created     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS exports_by_created ON exports (created DESC);
`

// OpenHistory opens (creating when necessary) the history database at path.
// Empty path disables history and returns nil.
func OpenHistory(ctx context.Context, path string, log *zap.Logger) (*History, error) {
	if len(path) == 0 {
		return nil, nil
	}

	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{PoolSize: 4})
	if err != nil {
		return nil, fmt.Errorf("unable to open history database: %w", err)
	}

	conn, err := pool.Take(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to open history database: %w", err)
	}
	defer pool.Put(conn)

	if err := sqlitex.ExecuteScript(conn, historySchema, nil); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to prepare history schema: %w", err)
	}
	return &History{pool: pool, log: log}, nil
}

func (h *History) Close() error {
	if h == nil {
		return nil
	}
	return h.pool.Close()
}

// Record stores one export event. History problems never fail the export
// itself, they are logged and dropped.
func (h *History) Record(ctx context.Context, docID, method, filename string, size int64) {
	if h == nil {
		return
	}

	conn, err := h.pool.Take(ctx)
	if err != nil {
		h.log.Warn("Unable to record export history", zap.Error(err))
		return
	}
	defer h.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO exports (id, document_id, method, filename, size, created) VALUES (?, ?, ?, ?, ?, ?);`,
		&sqlitex.ExecOptions{
			Args: []any{uuid.Must(uuid.NewV7()).String(), docID, method, filename, size, time.Now().Unix()},
		})
	if err != nil {
		h.log.Warn("Unable to record export history", zap.Error(err))
	}
}

// Recent returns up to limit most recent export records, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]ExportRecord, error) {
	if h == nil {
		return nil, nil
	}

	conn, err := h.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to read export history: %w", err)
	}
	defer h.pool.Put(conn)

	var records []ExportRecord
	err = sqlitex.Execute(conn,
		`SELECT id, document_id, method, filename, size, created FROM exports ORDER BY created DESC, id DESC LIMIT ?;`,
		&sqlitex.ExecOptions{
			Args: []any{limit},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				records = append(records, ExportRecord{
					ID:         stmt.ColumnText(0),
					DocumentID: stmt.ColumnText(1),
					Method:     stmt.ColumnText(2),
					Filename:   stmt.ColumnText(3),
					Size:       stmt.ColumnInt64(4),
					Created:    time.Unix(stmt.ColumnInt64(5), 0).UTC(),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("unable to read export history: %w", err)
	}
	return records, nil
}
