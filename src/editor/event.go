package editor

import (
	"image/color"
	"unicode"

	"screen-annotate/src/geometry"
)

// Event is one input delivered by the host surface. Handle dispatches it.
type Event interface{ isEvent() }

type PointerDown struct {
	Pos    geometry.Point
	Clicks int
}

type PointerDrag struct{ Pos geometry.Point }

type PointerUp struct{ Pos geometry.Point }

// PointerMove is motion with no button held.
type PointerMove struct{ Pos geometry.Point }

// PointerExit reports that the pointer left the canvas.
type PointerExit struct{}

type KeyDown struct{ Key Key }

// TextInput carries characters typed while a text entry is open.
type TextInput struct{ Text string }

type SelectTool struct{ Tool Tool }

type SelectColor struct{ Color color.NRGBA }

type SelectLineWidth struct{ Width float64 }

// Command is a toolbar action.
type Command struct{ Name CommandName }

type CommandName string

const (
	CommandUndo   CommandName = "undo"
	CommandRedo   CommandName = "redo"
	CommandDelete CommandName = "delete"
	CommandCopy   CommandName = "copy"
	CommandSave   CommandName = "save"
	CommandCancel CommandName = "cancel"
)

func (PointerDown) isEvent()     {}
func (PointerDrag) isEvent()     {}
func (PointerUp) isEvent()       {}
func (PointerMove) isEvent()     {}
func (PointerExit) isEvent()     {}
func (KeyDown) isEvent()         {}
func (TextInput) isEvent()       {}
func (SelectTool) isEvent()      {}
func (SelectColor) isEvent()     {}
func (SelectLineWidth) isEvent() {}
func (Command) isEvent()         {}

// KeyCode names the keys the editor reacts to. Printable keys arrive as
// KeyChar with Key.Char set.
type KeyCode int

const (
	KeyUnknown KeyCode = iota
	KeyEscape
	KeyEnter
	KeyBackspace
	KeyDelete
	KeyChar
)

// Modifiers is a bit set of held modifier keys. ModCommand is Ctrl on Windows
// and Linux and Cmd on macOS.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCommand
	ModAlt
)

type Key struct {
	Code KeyCode
	Char rune
	Mods Modifiers
}

func (k Key) Has(m Modifiers) bool { return k.Mods&m == m }

// Shortcut reports whether k is ModCommand plus the letter c, ignoring case and
// any extra modifiers.
func (k Key) Shortcut(c rune) bool {
	return k.Code == KeyChar && k.Has(ModCommand) && unicode.ToLower(k.Char) == unicode.ToLower(c)
}

// Handle dispatches ev to the matching method.
func (e *Editor) Handle(ev Event) {
	switch ev := ev.(type) {
	case PointerDown:
		e.PointerDown(ev.Pos, ev.Clicks)
	case PointerDrag:
		e.PointerDrag(ev.Pos)
	case PointerUp:
		e.PointerUp(ev.Pos)
	case PointerMove:
		e.PointerMove(ev.Pos)
	case PointerExit:
		e.PointerExit()
	case KeyDown:
		e.KeyDown(ev.Key)
	case TextInput:
		e.TypeText(ev.Text)
	case SelectTool:
		e.SetTool(ev.Tool)
	case SelectColor:
		e.SetColor(ev.Color)
	case SelectLineWidth:
		e.SetLineWidth(ev.Width)
	case Command:
		e.Run(ev.Name)
	}
}
