package theme

import (
	"github.com/gdamore/tcell/v2"
)

// Colors holds all the color definitions for the theme
type Colors struct {
	// Pane colors
	PaneText      tcell.Color
	PaneBorder    tcell.Color
	PaneTitle     tcell.Color
	PaneActive    tcell.Color
	PaneSelection tcell.Color

	// Folding
	GroupPlaceholder tcell.Color

	// Diff highlighting
	DiffInserted tcell.Color
	DiffDeleted  tcell.Color
	DiffModified tcell.Color
	DiffMoved    tcell.Color
	DiffGhost    tcell.Color
	DiffSummary  tcell.Color

	// Status line colors
	StatusMode    tcell.Color
	StatusMessage tcell.Color

	Background tcell.Color
}

// Theme represents a complete color theme
type Theme struct {
	Name   string
	Colors Colors
}

// Default returns a default theme using terminal defaults
func Default() *Theme {
	return &Theme{
		Name: "default",
		Colors: Colors{
			PaneText:         tcell.ColorDefault,
			PaneBorder:       tcell.ColorDefault,
			PaneTitle:        tcell.ColorDefault,
			PaneActive:       tcell.ColorDefault,
			PaneSelection:    tcell.ColorDefault,
			GroupPlaceholder: tcell.ColorDefault,
			DiffInserted:     tcell.ColorGreen,
			DiffDeleted:      tcell.ColorRed,
			DiffModified:     tcell.ColorYellow,
			DiffMoved:        tcell.ColorBlue,
			DiffGhost:        tcell.ColorGray,
			DiffSummary:      tcell.ColorDefault,
			StatusMode:       tcell.ColorDefault,
			StatusMessage:    tcell.ColorDefault,
			Background:       tcell.ColorDefault,
		},
	}
}

// TokyoNight returns the Tokyo Night theme
func TokyoNight() *Theme {
	return &Theme{
		Name: "tokyo-night",
		Colors: Colors{
			PaneText:         HexToColor("#c0caf5"), // Light gray-blue
			PaneBorder:       HexToColor("#565f89"), // Comment gray
			PaneTitle:        HexToColor("#bb9af7"), // Magenta
			PaneActive:       HexToColor("#7aa2f7"), // Blue
			PaneSelection:    HexToColor("#7dcfff"), // Cyan
			GroupPlaceholder: HexToColor("#565f89"),
			DiffInserted:     HexToColor("#9ece6a"), // Green
			DiffDeleted:      HexToColor("#f7768e"), // Red
			DiffModified:     HexToColor("#e0af68"), // Yellow
			DiffMoved:        HexToColor("#7aa2f7"),
			DiffGhost:        HexToColor("#414868"),
			DiffSummary:      HexToColor("#bb9af7"),
			StatusMode:       HexToColor("#bb9af7"),
			StatusMessage:    HexToColor("#9ece6a"),
			Background:       HexToColor("#1a1b26"), // Dark background
		},
	}
}

// DiffBackground returns a subtle background for a highlighted chunk: the
// diff color blended into the theme background
func (t *Theme) DiffBackground(diffColor tcell.Color) tcell.Color {
	return Blend(t.Colors.Background, diffColor, 0.25)
}
