package controller

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"apparel-designer/service"
)

const (
	maxFrameBytes = 4 << 20
	shotTimeout   = 5 * time.Second
)

// CaptureController drives the webcam dialog of a session
type CaptureController struct {
	sessions *service.SessionService
	designer *service.SelectionService
	devices  *service.RelayDevices
	images   *service.ImageService
	logger   *zap.Logger
}

// NewCaptureController creates a new CaptureController
func NewCaptureController(sessions *service.SessionService, designer *service.SelectionService, devices *service.RelayDevices, images *service.ImageService, logger *zap.Logger) *CaptureController {
	return &CaptureController{sessions: sessions, designer: designer, devices: devices, images: images, logger: logger}
}

// GetStatus handles GET /sessions/{id}/capture
func (c *CaptureController) GetStatus(w http.ResponseWriter, r *http.Request) {
	dialog, ok := c.dialog(w, r, "GetCaptureStatus")
	if !ok {
		return
	}
	writeJSON(w, c.logger, http.StatusOK, dialog.Status())
}

// Open handles POST /sessions/{id}/capture/open
func (c *CaptureController) Open(w http.ResponseWriter, r *http.Request) {
	dialog, ok := c.dialog(w, r, "OpenCapture")
	if !ok {
		return
	}
	writeJSON(w, c.logger, http.StatusOK, dialog.Open(r.Context()))
}

// PushFrame handles POST /sessions/{id}/capture/frames with a JPEG or PNG body
func (c *CaptureController) PushFrame(w http.ResponseWriter, r *http.Request) {
	dialog, ok := c.dialog(w, r, "PushFrame")
	if !ok {
		return
	}
	streamID := dialog.StreamID()
	if streamID == "" {
		writeError(w, c.logger, "PushFrame", service.ErrNoStream)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFrameBytes))
	if err != nil {
		writeBadRequest(w, c.logger, "PushFrame", "frame body too large or unreadable")
		return
	}
	frame, err := c.images.DecodeFrame(data)
	if err != nil {
		writeError(w, c.logger, "PushFrame", err)
		return
	}
	if err := c.devices.Push(streamID, frame); err != nil {
		writeError(w, c.logger, "PushFrame", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Shot handles POST /sessions/{id}/capture/shot
func (c *CaptureController) Shot(w http.ResponseWriter, r *http.Request) {
	dialog, ok := c.dialog(w, r, "CapturePhoto")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), shotTimeout)
	defer cancel()
	if _, err := dialog.Capture(ctx); err != nil {
		writeError(w, c.logger, "CapturePhoto", err)
		return
	}
	writeJSON(w, c.logger, http.StatusOK, dialog.Status())
}

// Retake handles POST /sessions/{id}/capture/retake
func (c *CaptureController) Retake(w http.ResponseWriter, r *http.Request) {
	dialog, ok := c.dialog(w, r, "RetakePhoto")
	if !ok {
		return
	}
	if err := dialog.Retake(); err != nil {
		writeError(w, c.logger, "RetakePhoto", err)
		return
	}
	writeJSON(w, c.logger, http.StatusOK, dialog.Status())
}

// Accept handles POST /sessions/{id}/capture/accept
func (c *CaptureController) Accept(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sel, err := c.sessions.AcceptCapture(r.Context(), id)
	if err != nil {
		writeError(w, c.logger, "AcceptPhoto", err)
		return
	}
	c.logger.Info("✓ Captured photo accepted", zap.String("session_id", id))
	writeJSON(w, c.logger, http.StatusOK, selectionView(c.designer, id, sel, nil))
}

// Close handles POST /sessions/{id}/capture/close
func (c *CaptureController) Close(w http.ResponseWriter, r *http.Request) {
	dialog, ok := c.dialog(w, r, "CloseCapture")
	if !ok {
		return
	}
	dialog.Close()
	writeJSON(w, c.logger, http.StatusOK, dialog.Status())
}

func (c *CaptureController) dialog(w http.ResponseWriter, r *http.Request, op string) (*service.CaptureDialog, bool) {
	dialog, err := c.sessions.Dialog(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, c.logger, op, err)
		return nil, false
	}
	return dialog, true
}
