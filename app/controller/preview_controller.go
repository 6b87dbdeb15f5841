package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"apparel-designer/service"
)

// PreviewController renders and exports the design of a session
type PreviewController struct {
	sessions *service.SessionService
	previews *service.PreviewService
	logger   *zap.Logger
}

// NewPreviewController creates a new PreviewController
func NewPreviewController(sessions *service.SessionService, previews *service.PreviewService, logger *zap.Logger) *PreviewController {
	return &PreviewController{sessions: sessions, previews: previews, logger: logger}
}

// GetPreview handles GET /sessions/{id}/preview
func (c *PreviewController) GetPreview(w http.ResponseWriter, r *http.Request) {
	sel, err := c.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, c.logger, "GetPreview", err)
		return
	}
	writeJSON(w, c.logger, http.StatusOK, c.previews.Preview(sel))
}

// GetPreviewSVG handles GET /sessions/{id}/preview.svg
func (c *PreviewController) GetPreviewSVG(w http.ResponseWriter, r *http.Request) {
	sel, err := c.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, c.logger, "GetPreviewSVG", err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(c.previews.SVG(sel))
}

// GetPreviewPNG handles GET /sessions/{id}/preview.png
func (c *PreviewController) GetPreviewPNG(w http.ResponseWriter, r *http.Request) {
	sel, err := c.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, c.logger, "GetPreviewPNG", err)
		return
	}
	png, err := c.previews.PNG(r.Context(), sel)
	if err != nil {
		writeError(w, c.logger, "GetPreviewPNG", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// ExportDesign handles POST /sessions/{id}/export
func (c *PreviewController) ExportDesign(w http.ResponseWriter, r *http.Request) {
	sel, err := c.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, c.logger, "ExportDesign", err)
		return
	}
	res, err := c.previews.Export(r.Context(), sel)
	if err != nil {
		writeError(w, c.logger, "ExportDesign", err)
		return
	}
	writeJSON(w, c.logger, http.StatusCreated, res)
}
