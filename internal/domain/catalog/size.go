package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeSize returns the canonical key of a size label ("m " -> "M").
// Size keys compare case-insensitively everywhere in the engine.
func NormalizeSize(label string) string {
	// a Caser is stateful and cannot be shared between goroutines
	return cases.Upper(language.Und).String(strings.TrimSpace(label))
}

// NormalizeColor trims a color label; colors are free text and keep their casing
func NormalizeColor(label string) string {
	return strings.TrimSpace(label)
}
