package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Predefined HUD colors
var (
	colorHUD    = tcell.NewRGBColor(140, 140, 150)
	colorHUDDim = tcell.NewRGBColor(90, 90, 100)
)

// TermColor converts a linear-blended trail color to a truecolor cell color
func TermColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
