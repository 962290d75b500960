package ui

import (
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
)

// Prompt is a one-line input at the bottom of the screen, used for fold
// queries (`/query`) and commands (`:command`)
type Prompt struct {
	active    bool
	prefix    string
	input     string
	cursorPos int // byte offset into input
	history   *History
}

// NewPrompt creates a prompt that draws prefix before the input
func NewPrompt(prefix string, h *History) *Prompt {
	if h == nil {
		h = NewHistory(50)
	}
	return &Prompt{prefix: prefix, history: h}
}

// Start activates the prompt with empty input
func (p *Prompt) Start() {
	p.active = true
	p.input = ""
	p.cursorPos = 0
	p.history.Reset()
}

// Stop deactivates the prompt
func (p *Prompt) Stop() {
	p.active = false
}

// IsActive returns whether the prompt takes input
func (p *Prompt) IsActive() bool {
	return p.active
}

// Input returns the trimmed input
func (p *Prompt) Input() string {
	return strings.TrimSpace(p.input)
}

// HandleKey processes a key press. done is true when the prompt closed;
// input is empty when it was cancelled.
func (p *Prompt) HandleKey(ev *tcell.EventKey) (input string, done bool) {
	switch ev.Key() {
	case tcell.KeyEscape:
		p.Stop()
		return "", true
	case tcell.KeyEnter:
		in := p.Input()
		p.history.Add(in)
		p.Stop()
		return in, true
	case tcell.KeyUp:
		if !p.history.IsNavigating() {
			p.history.SetTemporary(p.input)
		}
		if prev, ok := p.history.Previous(); ok {
			p.setInput(prev)
		}
	case tcell.KeyDown:
		if next, ok := p.history.Next(); ok {
			p.setInput(next)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if p.cursorPos > 0 {
			_, size := utf8.DecodeLastRuneInString(p.input[:p.cursorPos])
			p.input = p.input[:p.cursorPos-size] + p.input[p.cursorPos:]
			p.cursorPos -= size
		} else if p.input == "" {
			p.Stop()
			return "", true
		}
	case tcell.KeyDelete:
		if p.cursorPos < len(p.input) {
			_, size := utf8.DecodeRuneInString(p.input[p.cursorPos:])
			p.input = p.input[:p.cursorPos] + p.input[p.cursorPos+size:]
		}
	case tcell.KeyLeft:
		if p.cursorPos > 0 {
			_, size := utf8.DecodeLastRuneInString(p.input[:p.cursorPos])
			p.cursorPos -= size
		}
	case tcell.KeyRight:
		if p.cursorPos < len(p.input) {
			_, size := utf8.DecodeRuneInString(p.input[p.cursorPos:])
			p.cursorPos += size
		}
	case tcell.KeyHome, tcell.KeyCtrlA:
		p.cursorPos = 0
	case tcell.KeyEnd, tcell.KeyCtrlE:
		p.cursorPos = len(p.input)
	case tcell.KeyCtrlU:
		p.input = p.input[p.cursorPos:]
		p.cursorPos = 0
	case tcell.KeyCtrlW:
		p.deleteWordBackwards()
	case tcell.KeyRune:
		s := string(ev.Rune())
		p.input = p.input[:p.cursorPos] + s + p.input[p.cursorPos:]
		p.cursorPos += len(s)
	}
	return "", false
}

func (p *Prompt) setInput(s string) {
	p.input = s
	p.cursorPos = len(s)
}

func (p *Prompt) deleteWordBackwards() {
	before := strings.TrimRight(p.input[:p.cursorPos], " \t")
	start := strings.LastIndexAny(before, " \t") + 1
	p.input = p.input[:start] + p.input[p.cursorPos:]
	p.cursorPos = start
}

// Render draws the prompt on row y
func (p *Prompt) Render(screen *Screen, y int) {
	if !p.active {
		return
	}

	width := screen.GetWidth()
	textStyle := screen.PaneTextStyle()
	screen.FillRow(0, y, width, textStyle)

	x := screen.DrawString(0, y, p.prefix, screen.PaneTitleStyle())
	x += screen.DrawString(x, y, p.input[:p.cursorPos], textStyle)

	cursor := " "
	rest := ""
	if p.cursorPos < len(p.input) {
		_, size := utf8.DecodeRuneInString(p.input[p.cursorPos:])
		cursor = p.input[p.cursorPos : p.cursorPos+size]
		rest = p.input[p.cursorPos+size:]
	}
	x += screen.DrawString(x, y, cursor, textStyle.Reverse(true))
	screen.DrawStringLimited(x, y, rest, width-x, textStyle)
}
