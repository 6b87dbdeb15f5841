package utils

import (
	"strings"

	"apparel-designer/models"
)

// NormalizeHex returns a color value in canonical "#RRGGBB" uppercase form.
// Shorthand "#abc" is expanded; a missing "#" is added.
func NormalizeHex(value string) string {
	v := strings.ToUpper(strings.TrimSpace(value))
	v = strings.TrimPrefix(v, "#")
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	return "#" + v
}

// MapNameToProductType maps product names and common spellings to a ProductType
// Input is normalized to lowercase before mapping
// Returns "" when the name is unknown
func MapNameToProductType(name string) models.ProductType {
	lower := strings.ToLower(strings.TrimSpace(name))

	productMap := map[string]models.ProductType{
		"t-shirt":    models.ProductTShirt,
		"tshirt":     models.ProductTShirt,
		"t shirt":    models.ProductTShirt,
		"tee":        models.ProductTShirt,
		"hoodie":     models.ProductHoodie,
		"sweatshirt": models.ProductHoodie,
		"cap":        models.ProductCap,
		"hat":        models.ProductCap,
		"jacket":     models.ProductJacket,
	}

	if pt, exists := productMap[lower]; exists {
		return pt
	}
	return ""
}

// MapProductTypeToName maps a ProductType to its human-readable label
func MapProductTypeToName(pt models.ProductType) string {
	nameMap := map[models.ProductType]string{
		models.ProductTShirt: "T-Shirt",
		models.ProductHoodie: "Hoodie",
		models.ProductCap:    "Cap",
		models.ProductJacket: "Jacket",
	}

	if name, exists := nameMap[pt]; exists {
		return name
	}
	return CapitalizeWords(string(pt))
}

// CapitalizeWords capitalizes the first letter of each word
func CapitalizeWords(s string) string {
	if s == "" {
		return s
	}
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(string(word[0])) + strings.ToLower(word[1:])
		}
	}
	return strings.Join(words, " ")
}
