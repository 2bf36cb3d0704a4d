// Package server exposes article live views and exports over HTTP for the
// editorial front end. It serves documents from a directory, no persistence
// beyond the optional export history.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"artc/article"
	"artc/config"
	"artc/content"
	"artc/convert"
	"artc/convert/snapshot"
	"artc/convert/static"
	"artc/misc"
	"artc/render"
	"artc/state"
)

func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("serve")

	dir := cmd.Args().Get(0)
	if len(dir) == 0 {
		var err error
		if dir, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("unable to access articles directory: %w", err)
	}
	if !fi.Mode().IsDir() {
		return fmt.Errorf("articles path is not a directory (%s)", dir)
	}

	if err := convert.LoadStyles(env); err != nil {
		return err
	}

	hist, err := OpenHistory(ctx, env.Cfg.Server.HistoryPath, log)
	if err != nil {
		return err
	}
	defer hist.Close()

	srv := &http.Server{
		Addr:    env.Cfg.Server.Address,
		Handler: NewRouter(env, dir, hist, log),
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	log.Info("Server listening", zap.String("address", env.Cfg.Server.Address), zap.String("articles", dir))

	select {
	case err := <-errc:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Server shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("unable to shut down server: %w", err)
	}
	return nil
}

type service struct {
	env  *state.LocalEnv
	dir  string
	hist *History
	log  *zap.Logger
}

// NewRouter builds the HTTP routing for the article service. Split out of Run
// so tests can drive it without a listening socket.
func NewRouter(env *state.LocalEnv, dir string, hist *History, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(requestLogger(log), gin.Recovery())
	if origins := env.Cfg.Server.AllowedOrigins; len(origins) > 0 {
		cc := cors.DefaultConfig()
		cc.AllowOrigins = origins
		cc.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		router.Use(cors.New(cc))
	}

	s := &service{env: env, dir: dir, hist: hist, log: log}

	router.GET("/healthz", s.health)
	router.GET("/articles/:id", s.viewArticle)
	router.GET("/articles/:id/export", s.exportArticle)

	api := router.Group("/api")
	api.GET("/articles", s.listArticles)
	api.GET("/exports", s.listExports)
	api.POST("/export-html", s.saveExport)

	return router
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("Request served",
			zap.String("method", c.Request.Method), zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()), zap.Duration("elapsed", time.Since(start)))
	}
}

func (s *service) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": misc.GetVersion()})
}

func (s *service) listArticles(c *gin.Context) {
	ids := []string{}
	err := s.walkDocuments(func(path string, doc *article.Document) error {
		ids = append(ids, doc.ID)
		return nil
	})
	if err != nil {
		s.fail(c, http.StatusInternalServerError, "unable to list articles", err)
		return
	}
	sort.Sort(natural.StringSlice(ids))
	c.JSON(http.StatusOK, gin.H{"articles": ids})
}

func (s *service) viewArticle(c *gin.Context) {
	doc, _, ok := s.lookupDocument(c)
	if !ok {
		return
	}

	resolver := article.NewResolver(doc, article.CollectReferences(doc))
	body, err := render.New(doc, resolver, render.OptionsFor(&s.env.Cfg.Document)).BodyHTML()
	if err != nil {
		s.fail(c, http.StatusInternalServerError, "unable to render article", err)
		return
	}

	page := render.Page{Title: doc.Title(), Styles: string(s.env.ViewStyle), Body: body}
	html, err := page.HTML()
	if err != nil {
		s.fail(c, http.StatusInternalServerError, "unable to render article", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (s *service) exportArticle(c *gin.Context) {
	method, err := config.ParseExportMethod(c.DefaultQuery("method", "static"))
	if err != nil {
		s.fail(c, http.StatusBadRequest, "unknown export method", err)
		return
	}

	_, path, ok := s.lookupDocument(c)
	if !ok {
		return
	}

	file, err := os.Open(path)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, "unable to export article", err)
		return
	}
	defer file.Close()

	ctx := state.ContextWith(c.Request.Context(), s.env)
	cnt, err := content.Prepare(ctx, file, filepath.Base(path), method, s.log)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, "unable to export article", err)
		return
	}
	defer os.RemoveAll(cnt.WorkDir)

	out := filepath.Join(cnt.WorkDir, cnt.Doc.ID+method.Suffix())
	switch method {
	case config.ExportMethodStatic:
		err = static.Generate(ctx, cnt, out, s.log)
	case config.ExportMethodSnapshot:
		err = snapshot.Generate(ctx, cnt, out, s.log)
	}
	if err != nil {
		s.fail(c, http.StatusInternalServerError, "unable to export article", err)
		return
	}

	if fi, err := os.Stat(out); err == nil {
		s.hist.Record(ctx, cnt.Doc.ID, method.String(), filepath.Base(out), fi.Size())
	}
	c.FileAttachment(out, filepath.Base(out))
}

func (s *service) saveExport(c *gin.Context) {
	var req struct {
		HTML     string `json:"html" binding:"required"`
		Filename string `json:"filename" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "malformed export request", err)
		return
	}

	// reject anything trying to escape the export directory
	if req.Filename != filepath.Base(req.Filename) || strings.Contains(req.Filename, "..") {
		s.fail(c, http.StatusBadRequest, "unacceptable file name", errors.New(req.Filename))
		return
	}
	name := config.CleanFileName(req.Filename)
	if len(name) == 0 {
		s.fail(c, http.StatusBadRequest, "unacceptable file name", errors.New(req.Filename))
		return
	}
	if !strings.EqualFold(filepath.Ext(name), ".html") {
		name += ".html"
	}

	dir := s.env.Cfg.Server.ExportDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		s.fail(c, http.StatusInternalServerError, "unable to store export", err)
		return
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(req.HTML), 0644); err != nil {
		s.fail(c, http.StatusInternalServerError, "unable to store export", err)
		return
	}

	s.hist.Record(c.Request.Context(), "", "upload", name, int64(len(req.HTML)))
	c.JSON(http.StatusCreated, gin.H{"saved": name})
}

func (s *service) listExports(c *gin.Context) {
	records, err := s.hist.Recent(c.Request.Context(), 50)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, "unable to read export history", err)
		return
	}
	if records == nil {
		records = []ExportRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"exports": records})
}

func (s *service) fail(c *gin.Context, code int, msg string, err error) {
	s.log.Warn("Request failed", zap.String("path", c.Request.URL.Path), zap.String("reason", msg), zap.Error(err))
	c.JSON(code, gin.H{"error": msg})
}

// lookupDocument resolves the :id route parameter to a parsed document and
// its source path, answering 404 itself when nothing matches.
func (s *service) lookupDocument(c *gin.Context) (*article.Document, string, bool) {
	id := c.Param("id")

	var (
		doc  *article.Document
		path string
	)
	err := s.walkDocuments(func(p string, d *article.Document) error {
		if d.ID == id {
			doc, path = d, p
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		s.fail(c, http.StatusInternalServerError, "unable to look up article", err)
		return nil, "", false
	}
	if doc == nil {
		s.fail(c, http.StatusNotFound, "article not found", errors.New(id))
		return nil, "", false
	}
	return doc, path, true
}

// walkDocuments calls fn for every parsable article document under the serve
// directory. Files which do not parse are skipped silently, the directory may
// hold anything.
func (s *service) walkDocuments(fn func(path string, doc *article.Document) error) error {
	return filepath.Walk(s.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			s.log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		file, err := os.Open(path)
		if err != nil {
			s.log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		defer file.Close()

		doc, err := article.ParseDocument(file)
		if err != nil {
			s.log.Debug("Skipping file, not recognized as document", zap.String("file", path), zap.Error(err))
			return nil
		}
		return fn(path, doc)
	})
}
