// Package editor is the interactive core of a capture session. It turns
// pointer and keyboard input into region selection and then into edits of an
// annotation document, with snapshot-based undo and redo.
//
// An Editor is not safe for concurrent use; the host delivers events from one
// goroutine.
package editor

import (
	"image"
	"image/color"
	"math"

	"go.uber.org/zap"

	"screen-annotate/src/annotation"
	"screen-annotate/src/geometry"
	"screen-annotate/src/history"
	"screen-annotate/src/typeface"
)

// SelectionMinSize is the smallest region, in both dimensions, that completes
// selection.
const SelectionMinSize = 4.0

// MeasureFunc returns the rendered size of text at size points.
type MeasureFunc func(text string, size float64) (w, h float64)

type Options struct {
	// Color and LineWidth seed the style of new annotations.
	Color        color.NRGBA
	LineWidth    float64
	HistoryLimit int
	Measure      MeasureFunc
	Logger       *zap.Logger

	// OnSelect fires once when a valid region has been dragged out. The host
	// captures it and calls EnterEditing, or Cancel when nothing came back.
	OnSelect func(r geometry.Rect)
	// OnCancel fires when the session should end without output.
	OnCancel func()
	OnCopy   func()
	OnSave   func()
}

type dragKind int

const (
	dragNone dragKind = iota
	dragMove
	dragResize
	dragRotate
	dragEndpoint
)

type dragState struct {
	kind     dragKind
	handle   HandleKind
	ref      annotation.Ref
	origin   geometry.Point
	original annotation.Annotation
	// before is pushed onto the undo stack once the gesture passes the drag
	// threshold.
	before annotation.Snapshot
	moved  bool
}

type Editor struct {
	opts    Options
	log     *zap.Logger
	measure MeasureFunc

	mode      Mode
	selecting bool
	selStart  geometry.Point
	selCur    geometry.Point
	awaiting  bool
	selection geometry.Rect
	base      image.Image

	tool      Tool
	color     color.NRGBA
	lineWidth float64

	items        annotation.Collection
	badgeCounter int
	history      *history.Manager

	hovered     annotation.Ref
	lastHovered annotation.Ref
	selected    annotation.Ref

	draft  annotation.Annotation
	anchor geometry.Point
	drag   dragState
	text   *textEntry
	done   bool
}

func New(opts Options) *Editor {
	e := &Editor{
		opts:         opts,
		log:          opts.Logger,
		measure:      opts.Measure,
		color:        opts.Color,
		lineWidth:    clampLineWidth(opts.LineWidth),
		badgeCounter: 1,
		history:      history.New(opts.HistoryLimit),
	}
	if e.log == nil {
		e.log = zap.L()
	}
	e.log = e.log.Named("editor")
	if e.measure == nil {
		e.measure = typeface.Measure
	}
	if e.color == (color.NRGBA{}) {
		e.color = annotation.DefaultColor
	}
	return e
}

func clampLineWidth(w float64) float64 {
	if w <= 0 || math.IsNaN(w) {
		return annotation.DefaultLineWidth
	}
	return math.Max(annotation.MinLineWidth, math.Min(annotation.MaxLineWidth, w))
}

func (e *Editor) Mode() Mode                      { return e.mode }
func (e *Editor) Tool() Tool                      { return e.tool }
func (e *Editor) Color() color.NRGBA              { return e.color }
func (e *Editor) LineWidth() float64              { return e.lineWidth }
func (e *Editor) Selection() geometry.Rect        { return e.selection }
func (e *Editor) Base() image.Image               { return e.base }
func (e *Editor) BadgeCounter() int               { return e.badgeCounter }
func (e *Editor) Selected() annotation.Ref        { return e.selected }
func (e *Editor) Hovered() annotation.Ref         { return e.hovered }
func (e *Editor) Draft() annotation.Annotation    { return e.draft }
func (e *Editor) UndoDepth() int                  { return e.history.UndoDepth() }
func (e *Editor) RedoDepth() int                  { return e.history.RedoDepth() }
func (e *Editor) Document() annotation.Collection { return e.items.Clone() }

// Done reports whether the session has signalled cancellation.
func (e *Editor) Done() bool { return e.done }

// Snapshot returns a deep copy of the document and badge counter.
func (e *Editor) Snapshot() annotation.Snapshot {
	return annotation.Capture(e.items, e.badgeCounter)
}

// HitTestItem resolves p against the committed document.
func (e *Editor) HitTestItem(p geometry.Point) (annotation.Ref, bool) {
	return HitTestItem(e.items, p)
}

// HitTestResizeHandle resolves p against the handles of the item at ref. A
// stale ref yields HandleNone.
func (e *Editor) HitTestResizeHandle(p geometry.Point, ref annotation.Ref) HandleKind {
	a, ok := e.items.Get(ref)
	if !ok {
		return HandleNone
	}
	return HitTestHandle(a, p)
}

// EnterEditing switches to editing over img, which shows the region r.
func (e *Editor) EnterEditing(img image.Image, r geometry.Rect) {
	e.mode = ModeEditing
	e.awaiting = false
	e.selecting = false
	e.selection = r
	e.base = img
	e.history.Reset()
	e.log.Info("editing started", zap.Float64("x", r.X), zap.Float64("y", r.Y),
		zap.Float64("width", r.Width), zap.Float64("height", r.Height))
}

// Cancel ends the session without output. It fires OnCancel once.
func (e *Editor) Cancel() {
	if e.done {
		return
	}
	e.done = true
	e.selecting = false
	e.awaiting = false
	e.log.Info("session cancelled", zap.Stringer("mode", e.mode))
	if e.opts.OnCancel != nil {
		e.opts.OnCancel()
	}
}

// SelectionDrag returns the rectangle being dragged out in selecting mode.
func (e *Editor) SelectionDrag() (geometry.Rect, bool) {
	if !e.selecting {
		return geometry.Rect{}, false
	}
	return geometry.RectFromPoints(e.selStart, e.selCur), true
}

func (e *Editor) PointerDown(p geometry.Point, clicks int) {
	if e.done {
		return
	}
	if e.mode == ModeSelecting {
		if e.awaiting {
			return
		}
		e.selecting = true
		e.selStart, e.selCur = p, p
		return
	}
	if e.text != nil {
		if !e.TextFieldFrame().Contains(p) {
			e.CommitText()
		}
		return
	}
	if !e.selection.Contains(p) {
		return
	}

	switch e.tool {
	case ToolSelect:
		e.pressSelect(p, clicks)
	case ToolRect:
		e.beginDraft(p, annotation.Rect{ID: annotation.NewID(), Frame: geometry.RectFromPoints(p, p), Color: e.color, LineWidth: e.lineWidth})
	case ToolEllipse:
		e.beginDraft(p, annotation.Ellipse{ID: annotation.NewID(), Frame: geometry.RectFromPoints(p, p), Color: e.color, LineWidth: e.lineWidth})
	case ToolHighlight:
		e.beginDraft(p, annotation.Highlight{ID: annotation.NewID(), Frame: geometry.RectFromPoints(p, p), Color: annotation.WithAlpha(e.color, annotation.HighlightAlpha)})
	case ToolArrow:
		e.beginDraft(p, annotation.Arrow{ID: annotation.NewID(), Start: p, End: p, Color: e.color, LineWidth: e.lineWidth})
	case ToolPen:
		e.beginDraft(p, annotation.Stroke{ID: annotation.NewID(), Points: []geometry.Point{p}, Color: e.color, LineWidth: e.lineWidth})
	case ToolBadge:
		e.placeBadge(p)
	case ToolText:
		e.beginNewText(p)
	}
}

func (e *Editor) pressSelect(p geometry.Point, clicks int) {
	if clicks >= 2 {
		if ref, ok := e.HitTestItem(p); ok && ref.Kind == annotation.KindText {
			e.beginEditText(ref)
			return
		}
	}
	if sel, ok := e.items.Get(e.selected); ok {
		if h := HitTestHandle(sel, p); h != HandleNone {
			kind := dragResize
			switch h {
			case HandleRotate:
				kind = dragRotate
			case HandleArrowStart, HandleArrowEnd:
				kind = dragEndpoint
			}
			e.startDrag(kind, h, sel, p)
			return
		}
	}
	ref, ok := e.HitTestItem(p)
	if !ok {
		e.selected = annotation.Ref{}
		return
	}
	e.selected = ref
	a, _ := e.items.Get(ref)
	e.startDrag(dragMove, HandleNone, a, p)
}

// startDrag holds the pre-gesture state aside. History is only touched once
// the gesture actually changes something.
func (e *Editor) startDrag(kind dragKind, h HandleKind, a annotation.Annotation, p geometry.Point) {
	e.drag = dragState{
		kind:     kind,
		handle:   h,
		ref:      annotation.RefOf(a),
		origin:   p,
		original: a.Clone(),
		before:   e.Snapshot(),
	}
	e.log.Debug("drag started", zap.Stringer("handle", h), zap.Stringer("kind", a.Kind()))
}

func (e *Editor) beginDraft(p geometry.Point, a annotation.Annotation) {
	e.anchor = p
	e.draft = a
}

func (e *Editor) placeBadge(p geometry.Point) {
	e.history.Record(e.Snapshot())
	b := annotation.Badge{ID: annotation.NewID(), Center: p, Number: e.badgeCounter, Color: e.color}
	e.badgeCounter++
	e.selected = e.items.Add(b)
	e.log.Debug("badge placed", zap.Int("number", b.Number))
}

func (e *Editor) PointerDrag(p geometry.Point) {
	if e.done {
		return
	}
	if e.mode == ModeSelecting {
		if e.selecting {
			e.selCur = p
		}
		return
	}
	if e.draft != nil {
		e.updateDraft(p)
		return
	}
	if e.drag.kind != dragNone {
		e.updateDrag(p)
	}
}

func (e *Editor) updateDraft(p geometry.Point) {
	switch d := e.draft.(type) {
	case annotation.Rect:
		d.Frame = geometry.RectFromPoints(e.anchor, p)
		e.draft = d
	case annotation.Ellipse:
		d.Frame = geometry.RectFromPoints(e.anchor, p)
		e.draft = d
	case annotation.Highlight:
		d.Frame = geometry.RectFromPoints(e.anchor, p)
		e.draft = d
	case annotation.Arrow:
		d.End = p
		e.draft = d
	case annotation.Stroke:
		if last := d.Points[len(d.Points)-1]; last != p {
			d.Points = append(d.Points, p)
		}
		e.draft = d
	}
}

func (e *Editor) updateDrag(p geometry.Point) {
	d := p.Sub(e.drag.origin)
	if !e.drag.moved {
		if math.Abs(d.X) <= DragThreshold && math.Abs(d.Y) <= DragThreshold {
			return
		}
		e.drag.moved = true
		e.history.Record(e.drag.before)
	}
	var next annotation.Annotation
	switch e.drag.kind {
	case dragMove:
		next = Move(e.drag.original, d)
	case dragResize:
		next = Resize(e.drag.original, e.drag.handle, d)
	case dragRotate:
		next = Rotate(e.drag.original, e.drag.origin, p)
	case dragEndpoint:
		arrow, ok := e.drag.original.(annotation.Arrow)
		if !ok {
			return
		}
		next = MoveEndpoint(arrow, e.drag.handle, p)
	default:
		return
	}
	if !e.items.Replace(next) {
		e.log.Debug("drag target is gone", zap.String("id", string(e.drag.ref.ID)))
	}
}

func (e *Editor) PointerUp(p geometry.Point) {
	if e.done {
		return
	}
	if e.mode == ModeSelecting {
		e.finishSelection(p)
		return
	}
	if e.draft != nil {
		e.updateDraft(p)
		e.commitDraft()
		return
	}
	if e.drag.kind != dragNone {
		e.drag = dragState{}
	}
}

func (e *Editor) finishSelection(p geometry.Point) {
	if !e.selecting {
		return
	}
	e.selecting = false
	r := geometry.RectFromPoints(e.selStart, p)
	if r.Width < SelectionMinSize || r.Height < SelectionMinSize {
		e.log.Info("selection too small", zap.Float64("width", r.Width), zap.Float64("height", r.Height))
		e.Cancel()
		return
	}
	e.awaiting = true
	e.selection = r
	e.log.Info("region selected", zap.Float64("width", r.Width), zap.Float64("height", r.Height))
	if e.opts.OnSelect != nil {
		e.opts.OnSelect(r)
	}
}

func (e *Editor) commitDraft() {
	d := e.draft
	e.draft = nil
	if degenerate(d) {
		return
	}
	e.history.Record(e.Snapshot())
	e.selected = e.items.Add(d)
	e.log.Debug("annotation committed", zap.Stringer("kind", d.Kind()))
}

func degenerate(a annotation.Annotation) bool {
	switch v := a.(type) {
	case annotation.Stroke:
		return len(v.Points) == 0
	case annotation.Badge:
		return false
	case annotation.Arrow:
		return v.Start == v.End
	}
	return a.Bounds().Empty()
}

// PointerMove tracks hover. The most recent hovered item is remembered after the
// pointer leaves it so Delete can still reach it.
func (e *Editor) PointerMove(p geometry.Point) {
	if e.done || e.mode != ModeEditing {
		return
	}
	ref, ok := e.HitTestItem(p)
	if !ok {
		e.hovered = annotation.Ref{}
		return
	}
	e.hovered = ref
	e.lastHovered = ref
}

func (e *Editor) PointerExit() { e.hovered = annotation.Ref{} }

// SetTool switches tools. Pending text is committed first, and leaving the
// select tool drops the selection.
func (e *Editor) SetTool(t Tool) {
	if e.text != nil {
		e.CommitText()
	}
	if t != ToolSelect {
		e.selected = annotation.Ref{}
	}
	e.tool = t
}

// SetColor changes the color for new annotations and restyles the selected one.
func (e *Editor) SetColor(c color.NRGBA) {
	e.color = c
	if e.text != nil {
		e.text.color = c
		return
	}
	a, ok := e.items.Get(e.selected)
	if !ok {
		return
	}
	if next, changed := recolor(a, c); changed {
		e.history.Record(e.Snapshot())
		e.items.Replace(next)
	}
}

// SetLineWidth changes the stroke width, clamped to the allowed range, and
// restyles the selected annotation when it has an outline.
func (e *Editor) SetLineWidth(w float64) {
	e.lineWidth = clampLineWidth(w)
	a, ok := e.items.Get(e.selected)
	if !ok {
		return
	}
	if next := rewidth(a, e.lineWidth); next != nil {
		e.history.Record(e.Snapshot())
		e.items.Replace(next)
	}
}

func recolor(a annotation.Annotation, c color.NRGBA) (annotation.Annotation, bool) {
	switch v := a.(type) {
	case annotation.Rect:
		if v.Color != c {
			v.Color = c
			return v, true
		}
	case annotation.Ellipse:
		if v.Color != c {
			v.Color = c
			return v, true
		}
	case annotation.Highlight:
		if hc := annotation.WithAlpha(c, annotation.HighlightAlpha); v.Color != hc {
			v.Color = hc
			return v, true
		}
	case annotation.Arrow:
		if v.Color != c {
			v.Color = c
			return v, true
		}
	case annotation.Stroke:
		if v.Color != c {
			v.Color = c
			return v, true
		}
	case annotation.Text:
		if v.Color != c {
			v.Color = c
			return v, true
		}
	case annotation.Badge:
		if v.Color != c {
			v.Color = c
			return v, true
		}
	}
	return a, false
}

// rewidth returns a restyled copy, or nil when a has no outline or already has
// width w.
func rewidth(a annotation.Annotation, w float64) annotation.Annotation {
	switch v := a.(type) {
	case annotation.Rect:
		if v.LineWidth != w {
			v.LineWidth = w
			return v
		}
	case annotation.Ellipse:
		if v.LineWidth != w {
			v.LineWidth = w
			return v
		}
	case annotation.Arrow:
		if v.LineWidth != w {
			v.LineWidth = w
			return v
		}
	case annotation.Stroke:
		if v.LineWidth != w {
			v.LineWidth = w
			return v
		}
	}
	return nil
}

// KeyDown handles keyboard input.
func (e *Editor) KeyDown(k Key) {
	if e.done {
		return
	}
	if e.mode == ModeSelecting {
		if k.Code == KeyEscape {
			e.Cancel()
		}
		return
	}
	if e.text != nil {
		e.textKey(k)
		return
	}
	switch {
	case k.Code == KeyEscape:
		if e.tool != ToolSelect {
			e.SetTool(ToolSelect)
			return
		}
		e.Cancel()
	case k.Shortcut('z') && k.Has(ModShift), k.Shortcut('y'):
		e.Redo()
	case k.Shortcut('z'):
		e.Undo()
	case k.Shortcut('c'):
		e.Run(CommandCopy)
	case k.Shortcut('s'):
		e.Run(CommandSave)
	case k.Code == KeyBackspace, k.Code == KeyDelete:
		e.DeleteTarget()
	}
}

// Run executes a toolbar command.
func (e *Editor) Run(name CommandName) {
	if e.done {
		return
	}
	switch name {
	case CommandUndo:
		e.Undo()
	case CommandRedo:
		e.Redo()
	case CommandDelete:
		e.DeleteTarget()
	case CommandCancel:
		e.Cancel()
	case CommandCopy, CommandSave:
		if e.mode != ModeEditing {
			return
		}
		if e.text != nil {
			e.CommitText()
		}
		if name == CommandCopy && e.opts.OnCopy != nil {
			e.opts.OnCopy()
		}
		if name == CommandSave && e.opts.OnSave != nil {
			e.opts.OnSave()
		}
	}
}

// Undo restores the previous snapshot. It does nothing mid-gesture or when
// there is no history.
func (e *Editor) Undo() {
	if e.busy() {
		return
	}
	e.CommitText()
	prev, ok := e.history.Undo(e.Snapshot())
	if !ok {
		return
	}
	e.apply(prev)
}

// Redo reapplies the most recently undone snapshot.
func (e *Editor) Redo() {
	if e.busy() {
		return
	}
	e.CommitText()
	next, ok := e.history.Redo(e.Snapshot())
	if !ok {
		return
	}
	e.apply(next)
}

func (e *Editor) busy() bool { return e.draft != nil || e.drag.kind != dragNone }

func (e *Editor) apply(s annotation.Snapshot) {
	e.items, e.badgeCounter = s.Restore()
	e.selected = annotation.Ref{}
}

// DeleteTarget removes the selected item, else the hovered one, else the last
// hovered one. Stale candidates are skipped; with none left it does nothing.
func (e *Editor) DeleteTarget() {
	if e.busy() {
		return
	}
	var target annotation.Ref
	for _, ref := range []annotation.Ref{e.selected, e.hovered, e.lastHovered} {
		if e.items.Contains(ref) {
			target = ref
			break
		}
	}
	if target.IsZero() {
		return
	}
	e.history.Record(e.Snapshot())
	e.items.Remove(target)
	e.selected = annotation.Ref{}
	e.hovered = annotation.Ref{}
	e.lastHovered = annotation.Ref{}
	e.log.Debug("annotation deleted", zap.Stringer("kind", target.Kind))
}
