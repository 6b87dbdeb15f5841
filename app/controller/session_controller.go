package controller

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"apparel-designer/models"
	"apparel-designer/service"
)

const maxJSONBody = 64 << 10

// SessionController handles the design wizard of a session
type SessionController struct {
	sessions *service.SessionService
	designer *service.SelectionService
	logger   *zap.Logger
}

// NewSessionController creates a new SessionController
func NewSessionController(sessions *service.SessionService, designer *service.SelectionService, logger *zap.Logger) *SessionController {
	return &SessionController{sessions: sessions, designer: designer, logger: logger}
}

// CreateSession handles POST /sessions
func (c *SessionController) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, sel, err := c.sessions.Create(r.Context())
	if err != nil {
		writeError(w, c.logger, "CreateSession", err)
		return
	}
	writeJSON(w, c.logger, http.StatusCreated, selectionView(c.designer, id, sel, nil))
}

// GetSession handles GET /sessions/{id}
func (c *SessionController) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sel, err := c.sessions.Get(r.Context(), id)
	if err != nil {
		writeError(w, c.logger, "GetSession", err)
		return
	}
	var capture *models.CaptureStatus
	if dialog, err := c.sessions.Dialog(r.Context(), id); err == nil {
		status := dialog.Status()
		capture = &status
	}
	writeJSON(w, c.logger, http.StatusOK, selectionView(c.designer, id, sel, capture))
}

// DeleteSession handles DELETE /sessions/{id}
func (c *SessionController) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := c.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, c.logger, "DeleteSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetProduct handles PUT /sessions/{id}/product
func (c *SessionController) SetProduct(w http.ResponseWriter, r *http.Request) {
	c.setValue(w, r, "SetProduct", c.designer.SetProductType)
}

// SetColor handles PUT /sessions/{id}/color
func (c *SessionController) SetColor(w http.ResponseWriter, r *http.Request) {
	c.setValue(w, r, "SetColor", c.designer.SetColor)
}

// SetTextColor handles PUT /sessions/{id}/text-color
func (c *SessionController) SetTextColor(w http.ResponseWriter, r *http.Request) {
	c.setValue(w, r, "SetTextColor", c.designer.SetTextColor)
}

// SetSport handles PUT /sessions/{id}/sport
func (c *SessionController) SetSport(w http.ResponseWriter, r *http.Request) {
	c.setValue(w, r, "SetSport", c.designer.SetSport)
}

// SetLeague handles PUT /sessions/{id}/league
func (c *SessionController) SetLeague(w http.ResponseWriter, r *http.Request) {
	c.setValue(w, r, "SetLeague", c.designer.SetLeague)
}

// SetTeam handles PUT /sessions/{id}/team
func (c *SessionController) SetTeam(w http.ResponseWriter, r *http.Request) {
	c.setValue(w, r, "SetTeam", c.designer.SetTeam)
}

// SetName handles PUT /sessions/{id}/name
func (c *SessionController) SetName(w http.ResponseWriter, r *http.Request) {
	c.setValue(w, r, "SetName", c.designer.SetUserName)
}

// NextStep handles POST /sessions/{id}/step/next
func (c *SessionController) NextStep(w http.ResponseWriter, r *http.Request) {
	c.apply(w, r, "NextStep", func(sel models.Selection) (models.Selection, error) {
		return c.designer.AdvanceStep(sel), nil
	})
}

// PrevStep handles POST /sessions/{id}/step/prev
func (c *SessionController) PrevStep(w http.ResponseWriter, r *http.Request) {
	c.apply(w, r, "PrevStep", func(sel models.Selection) (models.Selection, error) {
		return c.designer.RetreatStep(sel), nil
	})
}

func (c *SessionController) setValue(w http.ResponseWriter, r *http.Request, op string, set func(models.Selection, string) (models.Selection, error)) {
	var req models.SelectionValueRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
		writeBadRequest(w, c.logger, op, "invalid request body: "+err.Error())
		return
	}
	c.apply(w, r, op, func(sel models.Selection) (models.Selection, error) {
		return set(sel, req.Value)
	})
}

func (c *SessionController) apply(w http.ResponseWriter, r *http.Request, op string, fn service.Mutation) {
	id := chi.URLParam(r, "id")
	sel, err := c.sessions.Apply(r.Context(), id, fn)
	if err != nil {
		writeError(w, c.logger, op, err)
		return
	}
	writeJSON(w, c.logger, http.StatusOK, selectionView(c.designer, id, sel, nil))
}
