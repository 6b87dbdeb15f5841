package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"apparel-designer/repository"
)

// CatalogController serves the static product, color and sport catalog
type CatalogController struct {
	repository repository.CatalogRepositoryInterface
	logger     *zap.Logger
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(repo repository.CatalogRepositoryInterface, logger *zap.Logger) *CatalogController {
	return &CatalogController{repository: repo, logger: logger}
}

// GetCatalog handles GET /catalog
func (c *CatalogController) GetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, c.logger, http.StatusOK, c.repository.Catalog())
}

// GetLeagues handles GET /catalog/sports/{sportID}/leagues
func (c *CatalogController) GetLeagues(w http.ResponseWriter, r *http.Request) {
	sport, err := c.repository.Sport(chi.URLParam(r, "sportID"))
	if err != nil {
		c.notFound(w, "GetLeagues", err)
		return
	}
	writeJSON(w, c.logger, http.StatusOK, sport.Leagues)
}

// GetTeams handles GET /catalog/sports/{sportID}/leagues/{leagueID}/teams
func (c *CatalogController) GetTeams(w http.ResponseWriter, r *http.Request) {
	league, err := c.repository.League(chi.URLParam(r, "sportID"), chi.URLParam(r, "leagueID"))
	if err != nil {
		c.notFound(w, "GetTeams", err)
		return
	}
	writeJSON(w, c.logger, http.StatusOK, league.Teams)
}

func (c *CatalogController) notFound(w http.ResponseWriter, op string, err error) {
	if !errors.Is(err, repository.ErrNotFound) {
		writeError(w, c.logger, op, err)
		return
	}
	c.logger.Warn("⚠️ "+op, zap.Error(err))
	writeJSON(w, c.logger, http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"})
}
