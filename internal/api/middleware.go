package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docrelay/internal/ui"
	"docrelay/internal/view"
)

const (
	requestIDHeader  = "X-Request-ID"
	loggerContextKey = "relay_logger"

	// multipartSlack covers boundaries and part headers around the file.
	multipartSlack = 64 << 10
)

// accessLog tags each request with an id, stores a request-scoped logger in
// the context and logs the outcome.
func accessLog(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		reqLog := log.With("request_id", id)
		c.Set(loggerContextKey, reqLog)

		c.Next()

		level := slog.LevelInfo
		if strings.HasPrefix(c.Request.URL.Path, "/static/") {
			level = slog.LevelDebug
		}
		reqLog.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// requestLogger returns the logger stored by accessLog, or fallback.
func requestLogger(c *gin.Context, fallback *slog.Logger) *slog.Logger {
	if val, ok := c.Get(loggerContextKey); ok {
		if log, ok := val.(*slog.Logger); ok {
			return log
		}
	}
	return fallback
}

// cors allows any origin, matching the relay's role as a local front end.
func cors(c *gin.Context) {
	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
	c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, HX-Request, HX-Target, HX-Current-URL, HX-Trigger")
	c.Writer.Header().Set("Access-Control-Expose-Headers", "HX-Trigger")

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}

// limitUploadSize rejects bodies over the upload ceiling before a handler
// parses them.
func limitUploadSize(maxBytes int64) gin.HandlerFunc {
	limit := maxBytes + multipartSlack
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			renderTooLarge(c, maxBytes)
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "request body too large")
}

func renderTooLarge(c *gin.Context, maxBytes int64) {
	renderAlert(c, http.StatusRequestEntityTooLarge, view.Danger("File too large (max %s).", ui.FormatFileSize(maxBytes)))
}
