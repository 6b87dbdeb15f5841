package repository

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"apparel-designer/models"
	"apparel-designer/utils"
)

//go:embed data/catalog.yaml
var catalogYAML []byte

// CatalogRepository serves the static product, color and sport catalog.
// The data is immutable after construction and safe for concurrent use.
type CatalogRepository struct {
	catalog models.Catalog
}

// Ensure CatalogRepository implements CatalogRepositoryInterface
var _ CatalogRepositoryInterface = (*CatalogRepository)(nil)

// NewCatalogRepository parses the embedded catalog
func NewCatalogRepository() (*CatalogRepository, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog builds a CatalogRepository from YAML data
func ParseCatalog(data []byte) (*CatalogRepository, error) {
	var c models.Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(c.Colors) == 0 || len(c.TextColors) == 0 {
		return nil, fmt.Errorf("catalog must define at least one color and one text color")
	}
	for i := range c.Colors {
		c.Colors[i].Value = utils.NormalizeHex(c.Colors[i].Value)
	}
	for i := range c.TextColors {
		c.TextColors[i].Value = utils.NormalizeHex(c.TextColors[i].Value)
	}
	c.Products = append([]models.ProductType(nil), models.ProductTypes...)
	return &CatalogRepository{catalog: c}, nil
}

// Catalog returns the whole catalog
func (r *CatalogRepository) Catalog() models.Catalog {
	return r.catalog
}

// Sports returns every sport in display order
func (r *CatalogRepository) Sports() []models.Sport {
	return r.catalog.Sports
}

// Sport finds a sport by id
func (r *CatalogRepository) Sport(id string) (*models.Sport, error) {
	for i := range r.catalog.Sports {
		if r.catalog.Sports[i].ID == id {
			return &r.catalog.Sports[i], nil
		}
	}
	return nil, fmt.Errorf("sport %q: %w", id, ErrNotFound)
}

// League finds a league inside a sport
func (r *CatalogRepository) League(sportID, leagueID string) (*models.League, error) {
	sport, err := r.Sport(sportID)
	if err != nil {
		return nil, err
	}
	for i := range sport.Leagues {
		if sport.Leagues[i].ID == leagueID {
			return &sport.Leagues[i], nil
		}
	}
	return nil, fmt.Errorf("league %q in sport %q: %w", leagueID, sportID, ErrNotFound)
}

// Team finds a team inside a league. Team ids are only unique per league.
func (r *CatalogRepository) Team(sportID, leagueID, teamID string) (*models.Team, error) {
	league, err := r.League(sportID, leagueID)
	if err != nil {
		return nil, err
	}
	for i := range league.Teams {
		if league.Teams[i].ID == teamID {
			return &league.Teams[i], nil
		}
	}
	return nil, fmt.Errorf("team %q in league %q: %w", teamID, leagueID, ErrNotFound)
}

// Colors returns the product color palette
func (r *CatalogRepository) Colors() []models.ColorOption {
	return r.catalog.Colors
}

// TextColors returns the text color palette
func (r *CatalogRepository) TextColors() []models.ColorOption {
	return r.catalog.TextColors
}

// ColorName maps a product color value to its name
func (r *CatalogRepository) ColorName(hex string) (string, bool) {
	return lookupColor(r.catalog.Colors, hex)
}

// TextColorName maps a text color value to its name
func (r *CatalogRepository) TextColorName(hex string) (string, bool) {
	return lookupColor(r.catalog.TextColors, hex)
}

func lookupColor(options []models.ColorOption, hex string) (string, bool) {
	normalized := utils.NormalizeHex(hex)
	for _, opt := range options {
		if opt.Value == normalized {
			return opt.Name, true
		}
	}
	return "", false
}
