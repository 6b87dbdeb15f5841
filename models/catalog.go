package models

// ProductType identifies one of the garment templates
type ProductType string

const (
	ProductTShirt ProductType = "t-shirt"
	ProductHoodie ProductType = "hoodie"
	ProductCap    ProductType = "cap"
	ProductJacket ProductType = "jacket"
)

// ProductTypes lists every product type in display order
var ProductTypes = []ProductType{ProductTShirt, ProductHoodie, ProductCap, ProductJacket}

// Valid reports whether p is one of the known product types
func (p ProductType) Valid() bool {
	for _, known := range ProductTypes {
		if p == known {
			return true
		}
	}
	return false
}

// ColorOption represents a named swatch (e.g., {"Navy", "#0A2342"})
type ColorOption struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Team represents a team inside a league
type Team struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	PrimaryColor string `json:"primaryColor,omitempty" yaml:"primaryColor,omitempty"`
}

// League represents a league and its teams
type League struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Teams []Team `json:"teams" yaml:"teams"`
}

// Sport represents the top level of the sport -> league -> team hierarchy
type Sport struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Leagues []League `json:"leagues" yaml:"leagues"`
}

// Catalog is the static reference data passed to the designer
type Catalog struct {
	Products   []ProductType `json:"products" yaml:"-"`
	Colors     []ColorOption `json:"colors" yaml:"colors"`
	TextColors []ColorOption `json:"textColors" yaml:"textColors"`
	Sports     []Sport       `json:"sports" yaml:"sports"`
}
