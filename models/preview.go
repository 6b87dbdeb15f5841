package models

// Shape is one vector element of a product template
type Shape struct {
	Kind      string // "path" or "line"
	D         string
	X1, Y1    float64
	X2, Y2    float64
	Filled    bool // fill with the product color; otherwise fill="none"
	DashArray string
}

// TextOverlay is a line of text placed on the product
type TextOverlay struct {
	X, Y     float64
	FontSize int
	Fill     string
	Content  string
}

// ImageOverlay is the custom photo box placed on the product
type ImageOverlay struct {
	X, Y          float64
	Width, Height float64
	Href          string
}

// Scene is the rendered preview: a background, the product shapes and the overlays
type Scene struct {
	ProductType ProductType
	Background  string
	Fill        string
	Shapes      []Shape
	Team        *TextOverlay
	UserName    *TextOverlay
	Image       *ImageOverlay
	Loading     bool
}

// PreviewResponse is returned by GET /sessions/{id}/preview
type PreviewResponse struct {
	Loading bool   `json:"loading"`
	SVG     string `json:"svg"`
	Summary string `json:"summary"`
}
