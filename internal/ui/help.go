package ui

import "fmt"

// KeyBindingInfo represents a keybinding for display
type KeyBindingInfo interface {
	GetKey() string
	GetDescription() string
}

// HelpScreen manages the help display
type HelpScreen struct {
	visible     bool
	keybindings []KeyBindingInfo
	commands    []string
}

// NewHelpScreen creates a new HelpScreen
func NewHelpScreen() *HelpScreen {
	return &HelpScreen{}
}

// SetKeybindings sets the keybindings to display
func (h *HelpScreen) SetKeybindings(keybindings []KeyBindingInfo) {
	h.keybindings = keybindings
}

// SetCommands sets the command descriptions listed below the keybindings
func (h *HelpScreen) SetCommands(commands []string) {
	h.commands = commands
}

// Toggle toggles the help screen visibility
func (h *HelpScreen) Toggle() {
	h.visible = !h.visible
}

// IsVisible returns whether the help screen is visible
func (h *HelpScreen) IsVisible() bool {
	return h.visible
}

// GetKeybindings returns the formatted help lines
func (h *HelpScreen) GetKeybindings() []string {
	result := []string{"Keybindings:", ""}
	for _, kb := range h.keybindings {
		result = append(result, fmt.Sprintf("  %-8s - %s", kb.GetKey(), kb.GetDescription()))
	}
	if len(h.commands) > 0 {
		result = append(result, "", "Commands:")
		for _, c := range h.commands {
			result = append(result, "  "+c)
		}
	}
	return result
}

// Render renders the help screen
func (h *HelpScreen) Render(screen *Screen) {
	if !h.visible {
		return
	}

	width, height := screen.Size()
	startX, startY := 5, 2
	boxWidth, boxHeight := width-10, height-4
	if boxWidth < 20 || boxHeight < 5 {
		return
	}

	contentStyle := screen.PaneTextStyle()
	borderStyle := screen.PaneBorderStyle(true)
	for y := startY; y < startY+boxHeight; y++ {
		screen.FillRow(startX, y, boxWidth, contentStyle)
	}
	drawBox(screen, startX, startY, boxWidth, boxHeight, borderStyle)
	screen.DrawString(startX+2, startY, " Keybindings (? to close) ", screen.PaneTitleStyle())

	y := startY + 1
	for _, line := range h.GetKeybindings() {
		if y >= startY+boxHeight-1 {
			break
		}
		screen.DrawStringLimited(startX+2, y, line, boxWidth-4, contentStyle)
		y++
	}
}
