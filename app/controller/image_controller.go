package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"apparel-designer/models"
	"apparel-designer/service"
)

// ImageController handles the uploaded custom image of a session
type ImageController struct {
	sessions *service.SessionService
	designer *service.SelectionService
	images   *service.ImageService
	maxBytes int64
	logger   *zap.Logger
}

// NewImageController creates a new ImageController
func NewImageController(sessions *service.SessionService, designer *service.SelectionService, images *service.ImageService, maxBytes int64, logger *zap.Logger) *ImageController {
	return &ImageController{sessions: sessions, designer: designer, images: images, maxBytes: maxBytes, logger: logger}
}

// UploadImage handles POST /sessions/{id}/image (multipart field "file")
func (c *ImageController) UploadImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := c.sessions.Get(r.Context(), id); err != nil {
		writeError(w, c.logger, "UploadImage", err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, c.maxBytes+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.tooLarge(w)
			return
		}
		writeBadRequest(w, c.logger, "UploadImage", "file field is required")
		return
	}
	defer file.Close()

	if header.Size > c.maxBytes {
		c.tooLarge(w)
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, c.maxBytes+1))
	if err != nil {
		writeError(w, c.logger, "UploadImage", err)
		return
	}
	if int64(len(data)) > c.maxBytes {
		c.tooLarge(w)
		return
	}

	dataURI, err := c.images.EncodeUpload(data)
	if err != nil {
		writeError(w, c.logger, "UploadImage", err)
		return
	}
	sel, err := c.sessions.Apply(r.Context(), id, func(sel models.Selection) (models.Selection, error) {
		return c.designer.SetImage(sel, dataURI), nil
	})
	if err != nil {
		writeError(w, c.logger, "UploadImage", err)
		return
	}
	c.logger.Info("✓ Custom image uploaded", zap.String("session_id", id), zap.String("file", header.Filename), zap.Int("bytes", len(data)))
	writeJSON(w, c.logger, http.StatusOK, selectionView(c.designer, id, sel, nil))
}

// ClearImage handles DELETE /sessions/{id}/image
func (c *ImageController) ClearImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sel, err := c.sessions.Apply(r.Context(), id, func(sel models.Selection) (models.Selection, error) {
		return c.designer.ClearImage(sel), nil
	})
	if err != nil {
		writeError(w, c.logger, "ClearImage", err)
		return
	}
	writeJSON(w, c.logger, http.StatusOK, selectionView(c.designer, id, sel, nil))
}

func (c *ImageController) tooLarge(w http.ResponseWriter) {
	c.logger.Warn("⚠️ UploadImage: file too large", zap.Int64("max_bytes", c.maxBytes))
	writeJSON(w, c.logger, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "image is too large", Code: "too_large"})
}
