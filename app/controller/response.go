package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"apparel-designer/models"
	"apparel-designer/service"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{service.ErrSessionNotFound, http.StatusNotFound, "session_not_found"},
	{service.ErrInvalidChoice, http.StatusBadRequest, "invalid_choice"},
	{service.ErrNotDescendant, http.StatusBadRequest, "not_descendant"},
	{service.ErrUserNameTooLong, http.StatusUnprocessableEntity, "user_name_too_long"},
	{service.ErrEmptyMessage, http.StatusBadRequest, "empty_message"},
	{service.ErrUnsupportedImage, http.StatusUnprocessableEntity, "unsupported_image"},
	{service.ErrNothingCaptured, http.StatusUnprocessableEntity, "nothing_captured"},
	{service.ErrNoStream, http.StatusUnprocessableEntity, "no_stream"},
	{service.ErrDialogClosed, http.StatusConflict, "dialog_closed"},
	{service.ErrStreamNotFound, http.StatusNotFound, "stream_not_found"},
	{service.ErrBusy, http.StatusConflict, "busy"},
	{service.ErrConfirmationRequired, http.StatusPreconditionRequired, "confirmation_required"},
	{service.ErrExportDisabled, http.StatusServiceUnavailable, "export_disabled"},
}

// statusFor maps a service error to its HTTP status and code
func statusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("❌ Error encoding response", zap.Error(err))
	}
}

// writeError logs err under op and writes the mapped error body
func writeError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("❌ "+op, zap.Error(err))
	} else {
		logger.Warn("⚠️ "+op, zap.Int("status", status), zap.Error(err))
	}
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	writeJSON(w, logger, status, ErrorResponse{Error: message, Code: code})
}

func writeBadRequest(w http.ResponseWriter, logger *zap.Logger, op, message string) {
	logger.Warn("⚠️ "+op, zap.String("reason", message))
	writeJSON(w, logger, http.StatusBadRequest, ErrorResponse{Error: message, Code: "bad_request"})
}

// selectionView joins a selection with its catalog entries for the client
func selectionView(designer *service.SelectionService, sessionID string, sel models.Selection, capture *models.CaptureStatus) models.SelectionResponse {
	res := designer.Resolve(sel)
	return models.SelectionResponse{
		SessionID: sessionID,
		Selection: sel,
		Sport:     res.Sport,
		Leagues:   res.Leagues,
		League:    res.League,
		Teams:     res.Teams,
		Team:      res.Team,
		Summary:   designer.Summary(sel),
		Capture:   capture,
	}
}
