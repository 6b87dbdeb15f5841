package service

import (
	"errors"
	"fmt"
	"time"

	"apparel-designer/models"
	"apparel-designer/repository"
	"apparel-designer/utils"
)

var (
	// ErrInvalidChoice is returned for values outside the catalog's closed enumerations
	ErrInvalidChoice = errors.New("invalid choice")
	// ErrNotDescendant is returned when a league or team does not belong to the current parent
	ErrNotDescendant = errors.New("not a child of the current selection")
	// ErrUserNameTooLong is returned for names over models.MaxUserNameLength characters
	ErrUserNameTooLong = errors.New("user name is too long")
)

// SelectionService implements the customization state machine.
// Every operation takes a Selection by value and returns the next one;
// on error the returned Selection is the unchanged input.
type SelectionService struct {
	catalog repository.CatalogRepositoryInterface
	now     func() time.Time
}

// NewSelectionService creates a new SelectionService. now may be nil.
func NewSelectionService(catalog repository.CatalogRepositoryInterface, now func() time.Time) *SelectionService {
	if now == nil {
		now = time.Now
	}
	return &SelectionService{catalog: catalog, now: now}
}

// Default returns the initial selection: first product, colors and sport,
// with the sport cascade applied.
func (s *SelectionService) Default() models.Selection {
	sel := models.Selection{
		ProductType: models.ProductTypes[0],
		Color:       s.catalog.Colors()[0].Value,
		TextColor:   s.catalog.TextColors()[0].Value,
		CurrentStep: models.StepProduct,
	}
	if sports := s.catalog.Sports(); len(sports) > 0 {
		sel = cascadeSport(sel, &sports[0])
	}
	return sel
}

// SetProductType selects one of the product templates
func (s *SelectionService) SetProductType(sel models.Selection, value string) (models.Selection, error) {
	pt := models.ProductType(value)
	if !pt.Valid() {
		pt = utils.MapNameToProductType(value)
	}
	if pt == "" {
		return sel, fmt.Errorf("%w: product type %q", ErrInvalidChoice, value)
	}
	if pt != sel.ProductType {
		sel.ProductType = pt
		sel.PreviewChangedAt = s.now()
	}
	return sel, nil
}

// SetColor selects the product color from the color palette
func (s *SelectionService) SetColor(sel models.Selection, value string) (models.Selection, error) {
	if _, ok := s.catalog.ColorName(value); !ok {
		return sel, fmt.Errorf("%w: color %q", ErrInvalidChoice, value)
	}
	if hex := utils.NormalizeHex(value); hex != sel.Color {
		sel.Color = hex
		sel.PreviewChangedAt = s.now()
	}
	return sel, nil
}

// SetTextColor selects the text color from the text palette
func (s *SelectionService) SetTextColor(sel models.Selection, value string) (models.Selection, error) {
	if _, ok := s.catalog.TextColorName(value); !ok {
		return sel, fmt.Errorf("%w: text color %q", ErrInvalidChoice, value)
	}
	if hex := utils.NormalizeHex(value); hex != sel.TextColor {
		sel.TextColor = hex
		sel.PreviewChangedAt = s.now()
	}
	return sel, nil
}

// SetSport selects a sport and resets league and team to the sport's first
// league and that league's first team (or none).
func (s *SelectionService) SetSport(sel models.Selection, sportID string) (models.Selection, error) {
	sport, err := s.catalog.Sport(sportID)
	if err != nil {
		return sel, fmt.Errorf("%w: sport %q", ErrInvalidChoice, sportID)
	}
	return cascadeSport(sel, sport), nil
}

// SetLeague selects a league of the current sport and resets the team to
// the league's first team (or none).
func (s *SelectionService) SetLeague(sel models.Selection, leagueID string) (models.Selection, error) {
	if sel.SportID == "" {
		return sel, fmt.Errorf("%w: no sport selected", ErrNotDescendant)
	}
	league, err := s.catalog.League(sel.SportID, leagueID)
	if err != nil {
		return sel, fmt.Errorf("%w: league %q is not part of sport %q", ErrNotDescendant, leagueID, sel.SportID)
	}
	return cascadeLeague(sel, league), nil
}

// SetTeam selects a team of the current league
func (s *SelectionService) SetTeam(sel models.Selection, teamID string) (models.Selection, error) {
	if sel.LeagueID == "" {
		return sel, fmt.Errorf("%w: no league selected", ErrNotDescendant)
	}
	team, err := s.catalog.Team(sel.SportID, sel.LeagueID, teamID)
	if err != nil {
		return sel, fmt.Errorf("%w: team %q is not part of league %q", ErrNotDescendant, teamID, sel.LeagueID)
	}
	sel.TeamID = team.ID
	return sel, nil
}

// SetUserName sets the personalization name. Names containing markup or
// longer than models.MaxUserNameLength characters are rejected.
func (s *SelectionService) SetUserName(sel models.Selection, name string) (models.Selection, error) {
	clean, plain := utils.PlainText(name)
	if !plain {
		return sel, fmt.Errorf("%w: name must be plain text", ErrInvalidChoice)
	}
	if utils.RuneLen(clean) > models.MaxUserNameLength {
		return sel, fmt.Errorf("%w: %d characters, at most %d allowed", ErrUserNameTooLong, utils.RuneLen(clean), models.MaxUserNameLength)
	}
	sel.UserName = clean
	return sel, nil
}

// SetImage stores a custom image data URI
func (s *SelectionService) SetImage(sel models.Selection, dataURI string) models.Selection {
	sel.CustomImage = dataURI
	return sel
}

// ClearImage removes the custom image
func (s *SelectionService) ClearImage(sel models.Selection) models.Selection {
	sel.CustomImage = ""
	return sel
}

// AdvanceStep moves the wizard one step forward; the last step stays put
func (s *SelectionService) AdvanceStep(sel models.Selection) models.Selection {
	if i := stepIndex(sel.CurrentStep); i >= 0 && i < len(models.Steps)-1 {
		sel.CurrentStep = models.Steps[i+1]
	}
	return sel
}

// RetreatStep moves the wizard one step back; the first step stays put
func (s *SelectionService) RetreatStep(sel models.Selection) models.Selection {
	if i := stepIndex(sel.CurrentStep); i > 0 {
		sel.CurrentStep = models.Steps[i-1]
	}
	return sel
}

// Resolved is a selection joined with its catalog entries
type Resolved struct {
	Sport   *models.Sport
	League  *models.League
	Team    *models.Team
	Leagues []models.League
	Teams   []models.Team
}

// Resolve looks up the sport, league and team a selection points at
func (s *SelectionService) Resolve(sel models.Selection) Resolved {
	res := Resolved{Leagues: []models.League{}, Teams: []models.Team{}}
	if sel.SportID == "" {
		return res
	}
	sport, err := s.catalog.Sport(sel.SportID)
	if err != nil {
		return res
	}
	res.Sport = sport
	res.Leagues = sport.Leagues
	if sel.LeagueID == "" {
		return res
	}
	league, err := s.catalog.League(sel.SportID, sel.LeagueID)
	if err != nil {
		return res
	}
	res.League = league
	res.Teams = league.Teams
	if sel.TeamID == "" {
		return res
	}
	if team, err := s.catalog.Team(sel.SportID, sel.LeagueID, sel.TeamID); err == nil {
		res.Team = team
	}
	return res
}

// TeamName returns the selected team's name, or ""
func (s *SelectionService) TeamName(sel models.Selection) string {
	if team := s.Resolve(sel).Team; team != nil {
		return team.Name
	}
	return ""
}

// Summary describes the design, e.g. "Los Angeles Lakers t-shirt in Black with White text"
func (s *SelectionService) Summary(sel models.Selection) string {
	team := s.TeamName(sel)
	if team == "" {
		team = "Custom"
	}
	color, _ := s.catalog.ColorName(sel.Color)
	textColor, _ := s.catalog.TextColorName(sel.TextColor)
	return fmt.Sprintf("%s %s in %s with %s text", team, sel.ProductType, color, textColor)
}

// Loading reports whether the preview is inside its placeholder window
func (s *SelectionService) Loading(sel models.Selection, delay time.Duration) bool {
	if sel.PreviewChangedAt.IsZero() || delay <= 0 {
		return false
	}
	return s.now().Before(sel.PreviewChangedAt.Add(delay))
}

func cascadeSport(sel models.Selection, sport *models.Sport) models.Selection {
	sel.SportID = sport.ID
	sel.LeagueID = ""
	sel.TeamID = ""
	if len(sport.Leagues) > 0 {
		sel = cascadeLeague(sel, &sport.Leagues[0])
	}
	return sel
}

func cascadeLeague(sel models.Selection, league *models.League) models.Selection {
	sel.LeagueID = league.ID
	sel.TeamID = ""
	if len(league.Teams) > 0 {
		sel.TeamID = league.Teams[0].ID
	}
	return sel
}

func stepIndex(step models.Step) int {
	for i, s := range models.Steps {
		if s == step {
			return i
		}
	}
	return -1
}
