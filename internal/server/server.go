package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/agenthands/scrivener/internal/core"
	"github.com/agenthands/scrivener/internal/core/common"
	"github.com/agenthands/scrivener/internal/core/model"
	"github.com/agenthands/scrivener/internal/export"
	"github.com/agenthands/scrivener/internal/logger"
	"github.com/agenthands/scrivener/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

// Processor runs one uploaded document through the pipeline.
type Processor interface {
	Process(ctx context.Context, upload model.Upload) (*core.Result, error)
}

type Server struct {
	Processor   Processor
	MaxUploadMB int

	logger *zap.Logger
}

func NewServer(p Processor, maxUploadMB int, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{Processor: p, MaxUploadMB: maxUploadMB, logger: log}
}

func (s *Server) SetupRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(s.accessLog(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/parse-upload", s.ParseUpload)

	return r
}

// accessLog assigns a request id, logs each request and records its latency.
func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		metrics.RecordHTTPRequestDuration(c.Request.Method, path, status, elapsed)
		s.logger.Info("http request",
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
		)
	}
}

// ParseUpload handles POST /parse-upload with a multipart "file" field.
// Passing ?format=xlsx returns the schema as a workbook instead of JSON.
func (s *Server) ParseUpload(c *gin.Context) {
	if s.MaxUploadMB > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(s.MaxUploadMB)<<20)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	log := logger.WithRequest(c.Request.Context(), s.logger)
	res, err := s.Processor.Process(c.Request.Context(), model.Upload{Filename: fh.Filename, Data: data})
	if err != nil {
		s.writeError(c, log, err)
		return
	}

	if res.Empty() {
		c.JSON(http.StatusOK, gin.H{"extractedText": ""})
		return
	}

	if c.Query("format") == "xlsx" {
		book, err := export.Workbook(*res.FinalSchema, res.PersonAnnotations)
		if err != nil {
			log.Error("workbook export failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		c.Header("Content-Disposition", "attachment; filename="+strconv.Quote("schema.xlsx"))
		c.Data(http.StatusOK, export.ContentType, book)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (s *Server) writeError(c *gin.Context, log *zap.Logger, err error) {
	var parseErr *common.ParseError
	switch {
	case errors.As(err, &parseErr):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to parse first-pass LLM output as JSON",
			"rawOutput": parseErr.Raw,
		})
	case errors.Is(err, common.ErrNoInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
	default:
		log.Error("parse-upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}
