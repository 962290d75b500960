package theme

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// HexToColor converts a hex color string (#RRGGBB or #RGB) to tcell.Color
func HexToColor(hexColor string) tcell.Color {
	hexColor = strings.TrimPrefix(hexColor, "#")

	// Handle short form (#RGB)
	if len(hexColor) == 3 {
		hexColor = string(hexColor[0]) + string(hexColor[0]) +
			string(hexColor[1]) + string(hexColor[1]) +
			string(hexColor[2]) + string(hexColor[2])
	}

	if len(hexColor) != 6 {
		return tcell.ColorDefault
	}

	c, err := colorful.Hex("#" + hexColor)
	if err != nil {
		return tcell.ColorDefault
	}
	return fromColorful(c)
}

// RGBToColor converts RGB values to tcell.Color
func RGBToColor(r, g, b int) tcell.Color {
	if r < 0 || r > 255 || g < 0 || g > 255 || b < 0 || b > 255 {
		return tcell.ColorDefault
	}
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// ParseColorString handles multiple color formats: #RRGGBB, #RGB, or rgb(r,g,b)
func ParseColorString(colorStr string) tcell.Color {
	colorStr = strings.TrimSpace(colorStr)

	if strings.HasPrefix(colorStr, "#") {
		return HexToColor(colorStr)
	}

	if strings.HasPrefix(colorStr, "rgb(") && strings.HasSuffix(colorStr, ")") {
		innerStr := strings.TrimSuffix(strings.TrimPrefix(colorStr, "rgb("), ")")
		parts := strings.Split(innerStr, ",")
		if len(parts) != 3 {
			return tcell.ColorDefault
		}

		r, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		g, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		b, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))

		if err1 == nil && err2 == nil && err3 == nil {
			return RGBToColor(r, g, b)
		}
	}

	return tcell.ColorDefault
}

// Blend mixes two colors in Lab space. t=0 gives a, t=1 gives b. When
// either color is the terminal default, b is returned unchanged.
func Blend(a, b tcell.Color, t float64) tcell.Color {
	if a == tcell.ColorDefault || b == tcell.ColorDefault {
		return b
	}
	ca, okA := toColorful(a)
	cb, okB := toColorful(b)
	if !okA || !okB {
		return b
	}
	return fromColorful(ca.BlendLab(cb, t).Clamped())
}

func toColorful(c tcell.Color) (colorful.Color, bool) {
	r, g, b := c.RGB()
	if r < 0 {
		return colorful.Color{}, false
	}
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}, true
}

func fromColorful(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// ColorToStyle creates a style with a specific foreground color
func ColorToStyle(fgColor tcell.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(fgColor)
}

// ColorPairToStyle creates a style with specific foreground and background colors
func ColorPairToStyle(fgColor, bgColor tcell.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(fgColor).Background(bgColor)
}
