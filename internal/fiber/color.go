// File path: internal/fiber/color.go
package fiber

import "strings"

// Color is a canonical fiber strand color.
type Color struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// colorTable follows the 12-strand color code used on the upstream portal.
// Order matters: Resolve returns the first entry whose name appears in the
// label, so "verde" must precede nothing that contains it, and ambiguous
// labels resolve to the earliest listed strand.
var colorTable = []Color{
	{Name: "azul", Hex: "#0000FF"},
	{Name: "laranja", Hex: "#FF7F00"},
	{Name: "verde", Hex: "#008000"},
	{Name: "castanho", Hex: "#A52A2A"},
	{Name: "cinza", Hex: "#708090"},
	{Name: "branca", Hex: "#FFFFFF"},
	{Name: "vermelha", Hex: "#FF0000"},
	{Name: "preta", Hex: "#000000"},
	{Name: "amarela", Hex: "#FFFF00"},
	{Name: "violeta", Hex: "#EE82EE"},
	{Name: "rosa", Hex: "#FF69B4"},
	{Name: "aqua", Hex: "#00FFFF"},
}

// Resolve maps a free-text color label to its canonical strand color. The
// match is a case-insensitive substring test against the fixed table; the
// first hit wins. Unknown labels report ok=false and the UI omits the swatch.
func Resolve(label string) (Color, bool) {
	lowered := strings.ToLower(label)
	for _, c := range colorTable {
		if strings.Contains(lowered, c.Name) {
			return c, true
		}
	}
	return Color{}, false
}
