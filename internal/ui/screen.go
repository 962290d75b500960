package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/pstuifzand/chunkview/internal/config"
	"github.com/pstuifzand/chunkview/internal/theme"
)

// Screen manages the tcell screen and rendering
type Screen struct {
	tcellScreen tcell.Screen
	width       int
	height      int
	Theme       *theme.Theme
}

// NewScreen creates a new Screen instance with the configured theme
func NewScreen(cfg *config.Config) (*Screen, error) {
	if cfg == nil {
		return NewScreenWithTheme(theme.Default())
	}
	return NewScreenWithTheme(theme.LoadThemeOrDefault(cfg.Theme))
}

// NewScreenWithTheme creates a new terminal Screen with a specific theme
func NewScreenWithTheme(t *theme.Theme) (*Screen, error) {
	tcellScreen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	return NewScreenFrom(tcellScreen, t)
}

// NewScreenFrom initializes an existing tcell screen, e.g. a simulation screen
func NewScreenFrom(tcellScreen tcell.Screen, t *theme.Theme) (*Screen, error) {
	if err := tcellScreen.Init(); err != nil {
		return nil, fmt.Errorf("failed to init screen: %w", err)
	}
	if t == nil {
		t = theme.Default()
	}

	width, height := tcellScreen.Size()
	return &Screen{
		tcellScreen: tcellScreen,
		width:       width,
		height:      height,
		Theme:       t,
	}, nil
}

// Close closes the screen
func (s *Screen) Close() error {
	s.tcellScreen.Fini()
	return nil
}

// Clear clears the entire screen
func (s *Screen) Clear() {
	s.tcellScreen.Clear()
}

// SetCell sets a cell at the given position
func (s *Screen) SetCell(x, y int, r rune, style tcell.Style) {
	if x >= 0 && x < s.width && y >= 0 && y < s.height {
		s.tcellScreen.SetContent(x, y, r, nil, style)
	}
}

// DrawString draws a string at the given position and returns the columns used
func (s *Screen) DrawString(x, y int, text string, style tcell.Style) int {
	col := 0
	for _, r := range text {
		w := RuneWidth(r)
		if w == 0 {
			continue
		}
		s.SetCell(x+col, y, r, style)
		col += w
	}
	return col
}

// DrawStringLimited draws a string, truncating it if it exceeds maxWidth columns
func (s *Screen) DrawStringLimited(x, y int, text string, maxWidth int, style tcell.Style) int {
	if maxWidth <= 0 {
		return 0
	}
	return s.DrawString(x, y, TruncateToWidth(text, maxWidth), style)
}

// FillRow paints width blank cells starting at x
func (s *Screen) FillRow(x, y, width int, style tcell.Style) {
	for i := 0; i < width; i++ {
		s.SetCell(x+i, y, ' ', style)
	}
}

// PollEvent polls for the next event (key press, resize, etc.)
func (s *Screen) PollEvent() tcell.Event {
	return s.tcellScreen.PollEvent()
}

// PostEvent injects an event into the event queue
func (s *Screen) PostEvent(ev tcell.Event) error {
	return s.tcellScreen.PostEvent(ev)
}

// Show shows the screen
func (s *Screen) Show() {
	s.tcellScreen.Show()
}

// Sync refreshes the size after a resize and redraws everything
func (s *Screen) Sync() {
	s.tcellScreen.Sync()
	s.Size()
}

// Size returns the width and height of the screen
func (s *Screen) Size() (int, int) {
	w, h := s.tcellScreen.Size()
	s.width = w
	s.height = h
	return w, h
}

// GetWidth returns the width of the screen
func (s *Screen) GetWidth() int {
	s.width, _ = s.tcellScreen.Size()
	return s.width
}

// GetHeight returns the height of the screen
func (s *Screen) GetHeight() int {
	_, s.height = s.tcellScreen.Size()
	return s.height
}

// EnableMouse enables mouse support on the screen
func (s *Screen) EnableMouse() {
	s.tcellScreen.EnableMouse()
}

// Theme-aware style methods

// PaneTextStyle returns the style for chunk text
func (s *Screen) PaneTextStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.PaneText, s.Theme.Colors.Background)
}

// PaneBorderStyle returns the style for pane borders
func (s *Screen) PaneBorderStyle(active bool) tcell.Style {
	if active {
		return theme.ColorPairToStyle(s.Theme.Colors.PaneActive, s.Theme.Colors.Background).Bold(true)
	}
	return theme.ColorPairToStyle(s.Theme.Colors.PaneBorder, s.Theme.Colors.Background)
}

// PaneTitleStyle returns the style for pane titles
func (s *Screen) PaneTitleStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.PaneTitle, s.Theme.Colors.Background).Bold(true)
}

// PaneSelectionStyle returns the style for chunks in a pending fold selection
func (s *Screen) PaneSelectionStyle() tcell.Style {
	if s.Theme.Colors.PaneSelection == tcell.ColorDefault {
		return s.PaneTextStyle().Reverse(true)
	}
	return s.PaneTextStyle().Background(s.Theme.DiffBackground(s.Theme.Colors.PaneSelection))
}

// GroupPlaceholderStyle returns the style for collapsed group placeholders
func (s *Screen) GroupPlaceholderStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.GroupPlaceholder, s.Theme.Colors.Background).Italic(true)
}

// DiffStyle returns the foreground style for a diff colour
func (s *Screen) DiffStyle(c tcell.Color) tcell.Style {
	return theme.ColorPairToStyle(c, s.Theme.Colors.Background)
}

// StatusModeStyle returns the style for mode indicator
func (s *Screen) StatusModeStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.StatusMode, s.Theme.Colors.Background).Reverse(true).Bold(true)
}

// StatusMessageStyle returns the style for status messages
func (s *Screen) StatusMessageStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.StatusMessage, s.Theme.Colors.Background)
}

// BackgroundStyle returns the default background style for the application
func (s *Screen) BackgroundStyle() tcell.Style {
	return tcell.StyleDefault.Background(s.Theme.Colors.Background)
}
