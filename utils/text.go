package utils

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// PlainText trims surrounding whitespace and reports whether the rest is
// free of markup. Anything an HTML parser reads as a tag or comment, such
// as "<b>" or "x<y", makes the text not plain; "x < y" and "Tom & Jerry" are.
func PlainText(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	return trimmed, html.UnescapeString(strictPolicy.Sanitize(trimmed)) == trimmed
}

// RuneLen counts characters the way the name field limit does
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
