package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"docrelay/internal/view"
)

// NewRouter assembles the gin engine: recovery, access logging, CORS, the
// embedded templates and assets, and the relay routes.
func NewRouter(h *Handler) (*gin.Engine, error) {
	tmpl, err := view.Templates()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	router := gin.New()
	router.Use(gin.Recovery(), accessLog(h.log), cors)
	router.SetHTMLTemplate(tmpl)
	router.StaticFS("/static", http.FS(view.Static()))
	h.RegisterRoutes(router)
	return router, nil
}
