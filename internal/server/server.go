// Package server exposes report conversion over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openstat-dev/snatree/internal/buildinfo"
	"github.com/openstat-dev/snatree/internal/config"
	"github.com/openstat-dev/snatree/internal/convert"
	"github.com/openstat-dev/snatree/internal/parser"
	"github.com/openstat-dev/snatree/internal/render"
	"github.com/openstat-dev/snatree/internal/sheet"
)

// RequestIDHeader carries the id assigned to every request.
const RequestIDHeader = "X-Request-ID"

// Server serves the conversion API.
type Server struct {
	router  *gin.Engine
	cfg     *config.Config
	formats *sheet.Registry
	writers *render.Registry
	log     *slog.Logger
}

// New creates a Server with its routes registered.
func New(cfg *config.Config, log *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:  gin.New(),
		cfg:     cfg,
		formats: sheet.DefaultRegistry(),
		writers: render.DefaultRegistry(cfg.Output.Indent),
		log:     log,
	}
	s.router.MaxMultipartMemory = cfg.Server.MaxUploadBytes
	s.router.Use(gin.Recovery(), s.requestLogger())

	api := s.router.Group("/api")
	api.GET("/status", s.status)
	api.POST("/convert", s.convert)

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)

		start := time.Now()
		c.Next()

		s.log.Info("request",
			"id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// status reports the build and the supported formats.
// GET /api/status
func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"outputs": s.writers.Names(),
	})
}

// convert parses an uploaded report and renders it.
// POST /api/convert?format=json&select=$[0].type&sheet=Sheet1
func (s *Server) convert(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing upload field \"file\""})
		return
	}
	if limit := s.cfg.Server.MaxUploadBytes; limit > 0 && fh.Size > limit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
		return
	}

	writer, err := s.writers.Get(c.DefaultQuery("format", s.cfg.Output.Format))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	format, err := s.formats.ForPath(fh.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reading upload"})
		return
	}
	defer f.Close()

	opts := s.cfg.Markers.ParserOptions()
	opts.Logger = s.log.With("request", c.GetString(RequestIDHeader))
	res, err := convert.Reader(c.Request.Context(), f, format, sheet.OpenOptions{Sheet: c.Query("sheet")}, opts)
	if err != nil {
		body := gin.H{"error": err.Error()}
		var rowErr *parser.RowError
		if errors.As(err, &rowErr) {
			body["row"] = rowErr.Row
		}
		c.JSON(http.StatusUnprocessableEntity, body)
		return
	}

	if expr := c.Query("select"); expr != "" {
		val, err := render.Select(res.Document, expr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, val)
		return
	}

	c.Header("Content-Type", writer.ContentType())
	c.Status(http.StatusOK)
	if err := writer.Write(c.Writer, res.Document); err != nil {
		s.log.Error("writing response", "error", err)
	}
}
