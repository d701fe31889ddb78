package editor

import (
	"image/color"
	"math"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"screen-annotate/src/annotation"
	"screen-annotate/src/geometry"
)

// Text field geometry while an entry is open.
const (
	TextFieldHeight     = 26.0
	TextFieldEmptyWidth = 180.0
	TextFieldMinWidth   = 140.0
	TextFieldPad        = 24.0
)

type textEntry struct {
	origin   geometry.Point
	text     string
	color    color.NRGBA
	rotation float64
	// ref is set when an existing annotation is being edited.
	ref annotation.Ref
}

// TextEntry describes the open text field.
type TextEntry struct {
	Origin   geometry.Point
	Text     string
	Color    color.NRGBA
	Rotation float64
	Frame    geometry.Rect
	// Editing names the annotation being edited; it is zero for a new entry.
	Editing annotation.Ref
}

// TextEntry returns the open text field, if any.
func (e *Editor) TextEntry() (TextEntry, bool) {
	if e.text == nil {
		return TextEntry{}, false
	}
	return TextEntry{
		Origin:   e.text.origin,
		Text:     e.text.text,
		Color:    e.text.color,
		Rotation: e.text.rotation,
		Frame:    e.TextFieldFrame(),
		Editing:  e.text.ref,
	}, true
}

// TextFieldFrame is the on-screen frame of the open field. It grows with the
// content.
func (e *Editor) TextFieldFrame() geometry.Rect {
	if e.text == nil {
		return geometry.Rect{}
	}
	w := TextFieldEmptyWidth
	if e.text.text != "" {
		mw, _ := e.measure(e.text.text, annotation.TextFontSize)
		w = math.Max(TextFieldMinWidth, mw+TextFieldPad)
	}
	return geometry.R(e.text.origin.X, e.text.origin.Y, w, TextFieldHeight)
}

func (e *Editor) beginNewText(p geometry.Point) {
	// The empty field must fit inside the selection.
	sel := e.selection
	p.X = math.Max(sel.MinX(), math.Min(p.X, sel.MaxX()-TextFieldEmptyWidth))
	p.Y = math.Max(sel.MinY(), math.Min(p.Y, sel.MaxY()-TextFieldHeight))
	e.selected = annotation.Ref{}
	e.text = &textEntry{origin: p, color: e.color}
}

func (e *Editor) beginEditText(ref annotation.Ref) {
	a, ok := e.items.Get(ref)
	if !ok {
		return
	}
	t := a.(annotation.Text)
	e.selected = ref
	e.text = &textEntry{
		origin:   t.Frame.Origin(),
		text:     t.Text,
		color:    t.Color,
		rotation: t.Rotation,
		ref:      ref,
	}
	e.log.Debug("editing text", zap.String("id", string(t.ID)))
}

// TypeText appends s to the open field.
func (e *Editor) TypeText(s string) {
	if e.text == nil || e.done {
		return
	}
	e.text.text += s
}

// SetTextEntry replaces the content of the open field.
func (e *Editor) SetTextEntry(s string) {
	if e.text == nil || e.done {
		return
	}
	e.text.text = s
}

func (e *Editor) textKey(k Key) {
	switch {
	case k.Code == KeyEscape:
		e.CancelText()
	case k.Code == KeyEnter && k.Has(ModShift):
		e.text.text += "\n"
	case k.Code == KeyEnter:
		e.CommitText()
	case k.Code == KeyBackspace:
		if _, n := utf8.DecodeLastRuneInString(e.text.text); n > 0 {
			e.text.text = e.text.text[:len(e.text.text)-n]
		}
	case k.Shortcut('c'):
		e.Run(CommandCopy)
	case k.Shortcut('s'):
		e.Run(CommandSave)
	}
}

// CancelText closes the field without touching the document.
func (e *Editor) CancelText() {
	e.text = nil
}

// CommitText closes the field and writes it to the document. A new empty entry
// is dropped, an edit emptied out removes its annotation. Afterwards the select
// tool is active.
func (e *Editor) CommitText() {
	t := e.text
	if t == nil {
		return
	}
	e.text = nil
	e.tool = ToolSelect

	body := strings.TrimSpace(t.text)
	empty := body == ""
	switch {
	case empty && t.ref.IsZero():
		return
	case empty:
		if !e.items.Contains(t.ref) {
			return
		}
		e.history.Record(e.Snapshot())
		e.items.Remove(t.ref)
		e.selected = annotation.Ref{}
		e.log.Debug("text removed", zap.String("id", string(t.ref.ID)))
		return
	}

	w, h := e.measure(body, annotation.TextFontSize)
	next := annotation.Text{
		Frame:    geometry.R(t.origin.X, t.origin.Y, w+annotation.TextPadX, h+annotation.TextPadY),
		Text:     body,
		Color:    t.color,
		Rotation: t.rotation,
	}
	if t.ref.IsZero() {
		next.ID = annotation.NewID()
		e.history.Record(e.Snapshot())
		e.selected = e.items.Add(next)
		return
	}
	next.ID = t.ref.ID
	prev, ok := e.items.Get(t.ref)
	if !ok {
		return
	}
	if prev == annotation.Annotation(next) {
		return
	}
	e.history.Record(e.Snapshot())
	e.items.Replace(next)
	e.selected = t.ref
}
