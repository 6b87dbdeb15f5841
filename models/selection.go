package models

import "time"

// Step is a stage of the three-step design wizard
type Step string

const (
	StepProduct     Step = "product"
	StepTeam        Step = "team"
	StepPersonalize Step = "personalize"
)

// Steps lists the wizard stages in order
var Steps = []Step{StepProduct, StepTeam, StepPersonalize}

// MaxUserNameLength is the longest personalization name accepted, in runes
const MaxUserNameLength = 15

// Selection holds the user's current customization choices.
// SportID/LeagueID/TeamID are empty when nothing is selected at that level.
type Selection struct {
	ProductType ProductType `json:"productType"`
	Color       string      `json:"color"`
	TextColor   string      `json:"textColor"`
	SportID     string      `json:"sportId,omitempty"`
	LeagueID    string      `json:"leagueId,omitempty"`
	TeamID      string      `json:"teamId,omitempty"`
	UserName    string      `json:"userName"`
	CustomImage string      `json:"customImage,omitempty"` // data URI
	CurrentStep Step        `json:"currentStep"`
	// PreviewChangedAt is the last product/color/text-color change; the
	// preview shows a loading placeholder for a short window after it.
	PreviewChangedAt time.Time `json:"previewChangedAt"`
}

// SelectionValueRequest is the body of every single-value setter
// Example: {"value": "hoodie"}
type SelectionValueRequest struct {
	Value string `json:"value"`
}

// SelectionResponse is the session view returned by the designer endpoints
type SelectionResponse struct {
	SessionID string         `json:"sessionId"`
	Selection Selection      `json:"selection"`
	Sport     *Sport         `json:"sport,omitempty"`
	Leagues   []League       `json:"leagues"`
	League    *League        `json:"league,omitempty"`
	Teams     []Team         `json:"teams"`
	Team      *Team          `json:"team,omitempty"`
	Summary   string         `json:"summary"`
	Capture   *CaptureStatus `json:"capture,omitempty"`
}
