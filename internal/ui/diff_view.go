package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/pstuifzand/chunkview/internal/diff"
	"github.com/pstuifzand/chunkview/internal/theme"
)

// DiffViewWidget displays the structural and rendered diff of two documents
// as an overlay
type DiffViewWidget struct {
	visible      bool
	lines        []diff.DiffLine
	scrollOffset int
	maxHeight    int

	beforeName string
	afterName  string
}

// NewDiffViewWidget creates a new diff view widget
func NewDiffViewWidget() *DiffViewWidget {
	return &DiffViewWidget{}
}

// Show displays the diff view for a report between two files
func (dv *DiffViewWidget) Show(report *diff.Report, beforePath, afterPath string, verbose bool) {
	dv.beforeName = filepath.Base(beforePath)
	dv.afterName = filepath.Base(afterPath)
	dv.scrollOffset = 0
	dv.lines = ReportLines(report, verbose)
	dv.visible = true
}

// ReportLines joins the structural and rendered display lines of a report
func ReportLines(report *diff.Report, verbose bool) []diff.DiffLine {
	lines := diff.BuildStructuralLines(report.Structural, verbose)
	lines = append(lines, diff.DiffLine{Type: diff.DiffTypeBlank})
	return append(lines, diff.BuildRenderedLines(report.Rendered, verbose)...)
}

// Hide closes the diff view
func (dv *DiffViewWidget) Hide() {
	dv.visible = false
}

// IsVisible returns whether the widget is currently visible
func (dv *DiffViewWidget) IsVisible() bool {
	return dv.visible
}

// Lines returns the display lines
func (dv *DiffViewWidget) Lines() []diff.DiffLine {
	return dv.lines
}

// HandleKeyEvent processes keyboard input
func (dv *DiffViewWidget) HandleKeyEvent(ev *tcell.EventKey) {
	if !dv.visible {
		return
	}

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		dv.Hide()
	case tcell.KeyUp:
		dv.scroll(-1)
	case tcell.KeyDown:
		dv.scroll(1)
	case tcell.KeyPgUp, tcell.KeyCtrlU:
		dv.scroll(-dv.maxHeight / 2)
	case tcell.KeyPgDn, tcell.KeyCtrlD:
		dv.scroll(dv.maxHeight / 2)
	case tcell.KeyHome:
		dv.scrollOffset = 0
	case tcell.KeyEnd:
		dv.scrollOffset = dv.maxScroll()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			dv.Hide()
		case 'j':
			dv.scroll(1)
		case 'k':
			dv.scroll(-1)
		}
	}
}

func (dv *DiffViewWidget) maxScroll() int {
	return max(len(dv.lines)-dv.maxHeight, 0)
}

func (dv *DiffViewWidget) scroll(lines int) {
	dv.scrollOffset = min(max(dv.scrollOffset+lines, 0), dv.maxScroll())
}

// Render draws the diff view on the screen
func (dv *DiffViewWidget) Render(screen *Screen) {
	if !dv.visible {
		return
	}

	width, height := screen.Size()
	boxWidth, boxHeight := width-4, height-4
	startX, startY := 2, 2
	if boxWidth < 20 || boxHeight < 5 {
		return
	}

	border := screen.PaneBorderStyle(true)
	for row := startY; row < startY+boxHeight; row++ {
		screen.FillRow(startX, row, boxWidth, screen.BackgroundStyle())
	}
	drawBox(screen, startX, startY, boxWidth, boxHeight, border)

	header := fmt.Sprintf(" Diff: %s → %s ", dv.beforeName, dv.afterName)
	screen.DrawStringLimited(startX+1, startY, header, boxWidth-2, screen.PaneTitleStyle())

	dv.maxHeight = boxHeight - 4
	dv.scrollOffset = min(dv.scrollOffset, dv.maxScroll())
	dv.renderContent(screen, startX+1, startY+2, boxWidth-2, dv.maxHeight)

	footer := "j/k/↓/↑: scroll | Ctrl+U/D: page | q/Esc: close"
	screen.DrawStringLimited(startX+1, startY+boxHeight-1, footer, boxWidth-2, border)
}

func (dv *DiffViewWidget) renderContent(screen *Screen, x, y, width, height int) {
	end := min(dv.scrollOffset+height, len(dv.lines))
	for i := dv.scrollOffset; i < end; i++ {
		line := dv.lines[i]
		text := strings.Repeat("  ", line.Indent) + line.Content
		text = TruncateToWidthWithEllipsis(text, width-1)
		screen.DrawString(x, y+i-dv.scrollOffset, text, lineStyle(screen, line.Type))
	}

	if len(dv.lines) > height && height > 0 {
		bar := y + dv.scrollOffset*height/len(dv.lines)
		screen.SetCell(x+width-1, bar, '█', screen.PaneBorderStyle(true))
	}
}

// lineStyle returns the style for a diff line type
func lineStyle(screen *Screen, t diff.DiffLineType) tcell.Style {
	c := screen.Theme.Colors
	switch t {
	case diff.DiffTypeHeader, diff.DiffTypeSummary:
		return screen.DiffStyle(c.DiffSummary).Bold(true)
	case diff.DiffTypeNewSection, diff.DiffTypeNewItem:
		return screen.DiffStyle(c.DiffInserted)
	case diff.DiffTypeDeletedSection, diff.DiffTypeDeletedItem:
		return screen.DiffStyle(c.DiffDeleted)
	case diff.DiffTypeModifiedSection, diff.DiffTypeModifiedItem:
		return screen.DiffStyle(c.DiffModified)
	case diff.DiffTypeMovedSection, diff.DiffTypeMovedItem:
		return screen.DiffStyle(c.DiffMoved)
	case diff.DiffTypeItemDetail, diff.DiffTypeEqualItem:
		return screen.DiffStyle(c.DiffGhost)
	default:
		return screen.PaneTextStyle()
	}
}

// ChunkHighlights maps the after-side chunk IDs of a rendered diff to the
// theme colour of their operation. Equal chunks are left out.
func ChunkHighlights(r *diff.RenderedDiff, th *theme.Theme) map[string]tcell.Color {
	out := make(map[string]tcell.Color)
	for _, op := range r.Operations {
		if op.After == nil {
			continue
		}
		switch op.Op {
		case diff.OpInsert:
			out[op.After.ChunkID] = th.Colors.DiffInserted
		case diff.OpReplace:
			out[op.After.ChunkID] = th.Colors.DiffModified
		}
	}
	return out
}

// drawBox draws a simple box border
func drawBox(screen *Screen, x, y, width, height int, style tcell.Style) {
	screen.SetCell(x, y, '┌', style)
	screen.SetCell(x+width-1, y, '┐', style)
	screen.SetCell(x, y+height-1, '└', style)
	screen.SetCell(x+width-1, y+height-1, '┘', style)
	for i := 1; i < width-1; i++ {
		screen.SetCell(x+i, y, '─', style)
		screen.SetCell(x+i, y+height-1, '─', style)
	}
	for i := 1; i < height-1; i++ {
		screen.SetCell(x, y+i, '│', style)
		screen.SetCell(x+width-1, y+i, '│', style)
	}
}
