package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docrelay/internal/backend"
	"docrelay/internal/models"
	"docrelay/internal/staging"
	"docrelay/internal/ui"
	"docrelay/internal/view"
)

// Backend is the document question-answering service the relay forwards to.
type Backend interface {
	Ask(ctx context.Context, question string) (string, error)
	UploadFile(ctx context.Context, kind models.UploadKind, file *models.TempFile) error
	UploadText(ctx context.Context, text, title string) error
	ListDocuments(ctx context.Context) ([]models.DocumentSummary, error)
	Reset(ctx context.Context) error
}

// Handler turns browser form posts into backend calls and renders the results
// as HTML fragments.
type Handler struct {
	backend   Backend
	stager    *staging.Stager
	log       *slog.Logger
	streamURL string
	socketURL string
}

type Option func(*Handler)

func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// WithDemoEndpoints sets the backend URLs the streaming demo pages talk to.
func WithDemoEndpoints(streamURL, socketURL string) Option {
	return func(h *Handler) {
		h.streamURL = streamURL
		h.socketURL = socketURL
	}
}

// NewHandler constructs a Handler instance.
func NewHandler(b Backend, stager *staging.Stager, opts ...Option) *Handler {
	h := &Handler{
		backend: b,
		stager:  stager,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.index)
	router.GET("/healthz", h.healthz)
	router.GET("/demo/sse", h.sseDemo)
	router.GET("/demo/ws", h.socketDemo)

	uiRoutes := router.Group("/ui")
	uiRoutes.POST("/theme", h.cycleTheme)
	uiRoutes.POST("/tab", h.switchTab)
	uiRoutes.POST("/key", h.pressKey)
	uiRoutes.POST("/scheme", h.schemeChanged)
	uiRoutes.GET("/status", h.backendStatus)

	api := router.Group("/api")
	api.POST("/ask", h.ask)
	api.GET("/documents", h.listDocuments)
	api.POST("/reset", h.resetAll)

	uploads := api.Group("/upload")
	uploads.Use(limitUploadSize(h.stager.MaxBytes()), h.afterUpload)
	uploads.POST("/pdf", h.uploadPDF)
	uploads.POST("/text", h.uploadTextFile)
	uploads.POST("/direct", h.uploadDirect)
}

func renderAlert(c *gin.Context, status int, alert view.Alert) {
	c.HTML(status, view.AlertTemplate, alert)
}

type askRequest struct {
	Question string `form:"question" json:"question"`
}

func (h *Handler) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBind(&req); err != nil {
		requestLogger(c, h.log).Debug("bind ask request", "error", err)
	}
	question, err := models.NormalizeQuestion(req.Question)
	if err != nil {
		renderAlert(c, http.StatusBadRequest, view.Danger("Please enter a question."))
		return
	}
	answer, err := h.backend.Ask(c.Request.Context(), question)
	if err != nil {
		requestLogger(c, h.log).Error("ask failed", "error", err)
		renderAlert(c, http.StatusInternalServerError, view.Danger("Error: %s", backend.Message(err)))
		return
	}
	c.HTML(http.StatusOK, view.ChatTemplate, view.ChatPair{Question: question, Answer: answer})
}

type uploadMessages struct {
	missing string
	success string
	failure string
}

var (
	pdfMessages = uploadMessages{
		missing: "Please select a PDF file.",
		success: "PDF uploaded successfully: %s (%s)",
		failure: "Error uploading PDF: %s",
	}
	textFileMessages = uploadMessages{
		missing: "Please select a text file.",
		success: "Text file uploaded successfully: %s (%s)",
		failure: "Error uploading text file: %s",
	}
)

func (h *Handler) uploadPDF(c *gin.Context) {
	h.forwardFile(c, models.UploadPDF, pdfMessages)
}

func (h *Handler) uploadTextFile(c *gin.Context) {
	h.forwardFile(c, models.UploadText, textFileMessages)
}

// forwardFile stages the multipart "file" field, streams it to the backend
// and removes the staged copy whatever the outcome.
func (h *Handler) forwardFile(c *gin.Context, kind models.UploadKind, msgs uploadMessages) {
	log := requestLogger(c, h.log)
	header, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			renderTooLarge(c, h.stager.MaxBytes())
			return
		}
		renderAlert(c, http.StatusBadRequest, view.Alert{Level: view.LevelDanger, Message: msgs.missing})
		return
	}

	tmp, err := h.stager.Stage(header)
	switch {
	case errors.Is(err, staging.ErrTooLarge):
		renderTooLarge(c, h.stager.MaxBytes())
		return
	case errors.Is(err, staging.ErrNoFile):
		renderAlert(c, http.StatusBadRequest, view.Alert{Level: view.LevelDanger, Message: msgs.missing})
		return
	case err != nil:
		log.Error("stage upload failed", "kind", kind, "error", err)
		renderAlert(c, http.StatusInternalServerError, view.Danger(msgs.failure, err.Error()))
		return
	}
	defer func() {
		if err := h.stager.Remove(tmp); err != nil {
			log.Warn("staged file not removed", "path", tmp.StoredPath, "error", err)
		}
	}()

	log.Debug("forwarding upload", "kind", kind, "file", tmp.FileName, "size", tmp.Size, "sniffed", tmp.MimeType)
	if err := h.backend.UploadFile(c.Request.Context(), kind, tmp); err != nil {
		log.Error("upload failed", "kind", kind, "file", tmp.FileName, "error", err)
		renderAlert(c, http.StatusInternalServerError, view.Danger(msgs.failure, backend.Message(err)))
		return
	}
	renderAlert(c, http.StatusOK, view.Success(msgs.success, tmp.FileName, ui.FormatFileSize(tmp.Size)))
}

const defaultUploadTitle = "Direct Text Upload"

type uploadTextRequest struct {
	Text  string `form:"text" json:"text"`
	Title string `form:"title" json:"title"`
}

func (h *Handler) uploadDirect(c *gin.Context) {
	var req uploadTextRequest
	if err := c.ShouldBind(&req); err != nil {
		if isTooLarge(err) {
			renderTooLarge(c, h.stager.MaxBytes())
			return
		}
		requestLogger(c, h.log).Debug("bind text upload", "error", err)
	}
	text, err := models.NormalizeText(req.Text)
	if err != nil {
		renderAlert(c, http.StatusBadRequest, view.Danger("Please enter some text."))
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = defaultUploadTitle
	}
	if err := h.backend.UploadText(c.Request.Context(), text, title); err != nil {
		requestLogger(c, h.log).Error("text upload failed", "error", err)
		renderAlert(c, http.StatusInternalServerError, view.Danger("Error uploading text: %s", backend.Message(err)))
		return
	}
	renderAlert(c, http.StatusOK, view.Success("Text uploaded successfully!"))
}

func (h *Handler) listDocuments(c *gin.Context) {
	docs, err := h.backend.ListDocuments(c.Request.Context())
	if err != nil {
		requestLogger(c, h.log).Error("list documents failed", "error", err)
		renderAlert(c, http.StatusInternalServerError, view.Danger("Error loading documents: %s", backend.Message(err)))
		return
	}
	if len(docs) == 0 {
		renderAlert(c, http.StatusOK, view.Info("No documents found."))
		return
	}
	c.HTML(http.StatusOK, view.DocumentsTemplate, view.NewDocuments(docs))
}

func (h *Handler) resetAll(c *gin.Context) {
	if err := h.backend.Reset(c.Request.Context()); err != nil {
		requestLogger(c, h.log).Error("reset failed", "error", err)
		renderAlert(c, http.StatusInternalServerError, view.Danger("Error clearing documents: %s", backend.Message(err)))
		return
	}
	renderAlert(c, http.StatusOK, view.Success("All documents have been cleared successfully!"))
}
