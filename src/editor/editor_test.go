package editor

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"screen-annotate/src/annotation"
	"screen-annotate/src/geometry"
)

// fixedMeasure makes text geometry independent of the font.
func fixedMeasure(text string, size float64) (float64, float64) {
	return float64(len(text)) * 8, 18
}

func newEditing(t *testing.T, opts Options) *Editor {
	t.Helper()
	opts.Measure = fixedMeasure
	opts.Logger = zap.NewNop()
	e := New(opts)
	e.EnterEditing(image.NewRGBA(image.Rect(0, 0, 400, 300)), geometry.R(0, 0, 400, 300))
	return e
}

func drag(e *Editor, from, to geometry.Point) {
	e.PointerDown(from, 1)
	mid := geometry.Pt((from.X+to.X)/2, (from.Y+to.Y)/2)
	e.PointerDrag(mid)
	e.PointerDrag(to)
	e.PointerUp(to)
}

func click(e *Editor, p geometry.Point) {
	e.PointerDown(p, 1)
	e.PointerUp(p)
}

func TestSelectionCompletesRegion(t *testing.T) {
	var got geometry.Rect
	calls := 0
	e := New(Options{Logger: zap.NewNop(), OnSelect: func(r geometry.Rect) {
		got = r
		calls++
	}})
	assert.Equal(t, ModeSelecting, e.Mode())

	e.PointerDown(geometry.Pt(60, 50), 1)
	e.PointerDrag(geometry.Pt(30, 20))
	r, ok := e.SelectionDrag()
	require.True(t, ok)
	assert.Equal(t, geometry.R(30, 20, 30, 30), r)
	e.PointerUp(geometry.Pt(10, 10))

	assert.Equal(t, 1, calls)
	assert.Equal(t, geometry.R(10, 10, 50, 40), got)

	// A second drag while the capture is pending is ignored.
	drag(e, geometry.Pt(0, 0), geometry.Pt(100, 100))
	assert.Equal(t, 1, calls)

	e.EnterEditing(image.NewRGBA(image.Rect(0, 0, 50, 40)), got)
	assert.Equal(t, ModeEditing, e.Mode())
	assert.Equal(t, got, e.Selection())
}

func TestDegenerateSelectionCancels(t *testing.T) {
	for _, end := range []geometry.Point{{X: 13, Y: 50}, {X: 50, Y: 12}, {X: 10, Y: 10}} {
		cancelled := 0
		selected := 0
		e := New(Options{
			Logger:   zap.NewNop(),
			OnSelect: func(geometry.Rect) { selected++ },
			OnCancel: func() { cancelled++ },
		})
		drag(e, geometry.Pt(10, 10), end)
		assert.Equal(t, 1, cancelled, "end %v", end)
		assert.Zero(t, selected)
		assert.True(t, e.Done())
	}
}

func TestSelectionMinimumIsInclusive(t *testing.T) {
	selected := 0
	e := New(Options{Logger: zap.NewNop(), OnSelect: func(geometry.Rect) { selected++ }})
	drag(e, geometry.Pt(10, 10), geometry.Pt(14, 14))
	assert.Equal(t, 1, selected)
}

func TestEscapeWhileSelectingCancels(t *testing.T) {
	cancelled := false
	e := New(Options{Logger: zap.NewNop(), OnCancel: func() { cancelled = true }})
	e.KeyDown(Key{Code: KeyEscape})
	assert.True(t, cancelled)
}

func TestRectangleScenario(t *testing.T) {
	e := newEditing(t, Options{})
	e.SetTool(ToolRect)
	drag(e, geometry.Pt(10, 10), geometry.Pt(110, 60))

	doc := e.Document()
	require.Len(t, doc.Rects, 1)
	rect := doc.Rects[0]
	assert.Equal(t, geometry.R(10, 10, 100, 50), rect.Frame)
	assert.Equal(t, annotation.RefOf(rect), e.Selected())
	assert.Equal(t, annotation.DefaultColor, rect.Color)
	assert.Equal(t, annotation.DefaultLineWidth, rect.LineWidth)

	e.Run(CommandUndo)
	assert.Zero(t, e.Document().Total())
	assert.True(t, e.Selected().IsZero())

	e.Run(CommandRedo)
	doc = e.Document()
	require.Len(t, doc.Rects, 1)
	assert.Equal(t, rect, doc.Rects[0])
}

func TestUndoRedoInverseLaw(t *testing.T) {
	e := newEditing(t, Options{})
	states := []annotation.Snapshot{e.Snapshot()}
	step := func() { states = append(states, e.Snapshot()) }

	e.SetTool(ToolRect)
	drag(e, geometry.Pt(20, 20), geometry.Pt(120, 80))
	step()
	e.SetTool(ToolArrow)
	drag(e, geometry.Pt(200, 50), geometry.Pt(260, 120))
	step()
	e.SetTool(ToolBadge)
	click(e, geometry.Pt(300, 200))
	step()
	e.SetTool(ToolPen)
	e.PointerDown(geometry.Pt(50, 200), 1)
	e.PointerDrag(geometry.Pt(60, 210))
	e.PointerDrag(geometry.Pt(70, 205))
	e.PointerUp(geometry.Pt(80, 220))
	step()
	e.SetTool(ToolSelect)
	drag(e, geometry.Pt(70, 50), geometry.Pt(90, 70))
	step()
	e.SetColor(annotation.Palette[5].Color)
	step()
	e.Run(CommandDelete)
	step()

	n := len(states) - 1
	require.Equal(t, n, e.UndoDepth())
	doc := states[5].Items
	require.Len(t, doc.Rects, 1)
	assert.Equal(t, geometry.R(40, 40, 100, 60), doc.Rects[0].Frame)
	assert.Empty(t, states[n].Items.Rects)

	for i := n - 1; i >= 0; i-- {
		e.Undo()
		assert.Equal(t, states[i], e.Snapshot(), "after undo to state %d", i)
	}
	e.Undo()
	assert.Equal(t, states[0], e.Snapshot())

	for i := 1; i <= n; i++ {
		e.Redo()
		assert.Equal(t, states[i], e.Snapshot(), "after redo to state %d", i)
	}
	e.Redo()
	assert.Equal(t, states[n], e.Snapshot())
}

func TestNewMutationClearsRedo(t *testing.T) {
	e := newEditing(t, Options{})
	e.SetTool(ToolRect)
	drag(e, geometry.Pt(10, 10), geometry.Pt(50, 50))
	e.Undo()
	require.Equal(t, 1, e.RedoDepth())

	drag(e, geometry.Pt(100, 100), geometry.Pt(150, 150))
	assert.Zero(t, e.RedoDepth())
}

func TestClickWithoutDragIsUndoNeutral(t *testing.T) {
	e := newEditing(t, Options{})
	e.SetTool(ToolRect)
	drag(e, geometry.Pt(10, 10), geometry.Pt(110, 60))
	drag(e, geometry.Pt(200, 200), geometry.Pt(250, 250))
	e.Undo()
	require.Equal(t, 1, e.UndoDepth())
	require.Equal(t, 1, e.RedoDepth())
	before := e.Snapshot()

	e.SetTool(ToolSelect)
	click(e, geometry.Pt(50, 30))
	assert.Equal(t, annotation.KindRect, e.Selected().Kind)
	assert.Equal(t, 1, e.UndoDepth())
	assert.Equal(t, 1, e.RedoDepth())

	// Jitter under the drag threshold is still a click.
	e.PointerDown(geometry.Pt(50, 30), 1)
	e.PointerDrag(geometry.Pt(51, 31))
	e.PointerUp(geometry.Pt(52, 30))
	assert.Equal(t, 1, e.UndoDepth())
	assert.Equal(t, 1, e.RedoDepth())
	assert.Equal(t, before, e.Snapshot())
}

func TestClickWithoutDragKeepsFullLimitedHistory(t *testing.T) {
	e := newEditing(t, Options{HistoryLimit: 2})
	e.SetTool(ToolBadge)
	click(e, geometry.Pt(50, 50))
	click(e, geometry.Pt(150, 50))
	require.Equal(t, 2, e.UndoDepth())

	e.SetTool(ToolSelect)
	click(e, geometry.Pt(50, 50))
	assert.Equal(t, 2, e.UndoDepth())

	e.Undo()
	e.Undo()
	assert.Zero(t, e.Document().Total())
	assert.Zero(t, e.UndoDepth())

	// A real drag at the limit still records exactly one entry.
	e.Redo()
	require.Equal(t, 1, e.UndoDepth())
	drag(e, geometry.Pt(50, 50), geometry.Pt(80, 90))
	assert.Equal(t, 2, e.UndoDepth())
	assert.Zero(t, e.RedoDepth())
}

func TestMoveUsesOriginalGeometry(t *testing.T) {
	e := newEditing(t, Options{})
	e.SetTool(ToolPen)
	e.PointerDown(geometry.Pt(10, 10), 1)
	e.PointerDrag(geometry.Pt(20, 20))
	e.PointerUp(geometry.Pt(30, 10))

	e.SetTool(ToolSelect)
	e.PointerDown(geometry.Pt(20, 15), 1)
	for i := 1; i <= 10; i++ {
		e.PointerDrag(geometry.Pt(20+float64(i)*5, 15))
	}
	e.PointerUp(geometry.Pt(70, 15))

	doc := e.Document()
	require.Len(t, doc.Strokes, 1)
	assert.Equal(t, []geometry.Point{{X: 60, Y: 10}, {X: 70, Y: 20}, {X: 80, Y: 10}}, doc.Strokes[0].Points)
	assert.Equal(t, 2, e.UndoDepth())
}

func TestBadgeCounter(t *testing.T) {
	e := newEditing(t, Options{})
	e.SetTool(ToolBadge)
	start := e.BadgeCounter()
	require.Equal(t, 1, start)

	for i := 0; i < 3; i++ {
		click(e, geometry.Pt(50+float64(i)*40, 50))
	}
	assert.Equal(t, start+3, e.BadgeCounter())
	doc := e.Document()
	require.Len(t, doc.Badges, 3)
	for i, b := range doc.Badges {
		assert.Equal(t, start+i, b.Number)
	}
	assert.Equal(t, annotation.RefOf(doc.Badges[2]), e.Selected())

	e.Undo()
	assert.Equal(t, start+2, e.BadgeCounter())
	assert.Len(t, e.Document().Badges, 2)

	e.Redo()
	assert.Equal(t, start+3, e.BadgeCounter())

	// Deleting a badge does not give its number back.
	e.PointerMove(geometry.Pt(130, 50))
	e.Run(CommandDelete)
	require.Len(t, e.Document().Badges, 2)
	assert.Equal(t, start+3, e.BadgeCounter())
	click(e, geometry.Pt(300, 200))
	badges := e.Document().Badges
	require.Len(t, badges, 3)
	assert.Equal(t, start+3, badges[2].Number)
}

func TestRotationRoundTrip(t *testing.T) {
	e := newEditing(t, Options{})
	e.SetTool(ToolRect)
	drag(e, geometry.Pt(100, 100), geometry.Pt(200, 150))
	e.SetTool(ToolSelect)
	orig := e.Document().Rects[0]

	// Rotation handle sits 3+22 above the top edge, over the center.
	drag(e, geometry.Pt(150, 75), geometry.Pt(200, 125))
	turned := e.Document().Rects[0]
	assert.InDelta(t, math.Pi/2, turned.Rotation, 1e-9)
	assert.Equal(t, orig.Frame, turned.Frame)

	drag(e, geometry.Pt(200, 125), geometry.Pt(150, 75))
	back := e.Document().Rects[0]
	assert.InDelta(t, 0, geometry.NormalizeAngle(back.Rotation), 1e-9)
	assert.Equal(t, orig.Frame, back.Frame)
	assert.Equal(t, 3, e.UndoDepth())
}

func TestRotateFunctionRoundTrip(t *testing.T) {
	r := annotation.Ellipse{ID: "e", Frame: geometry.R(0, 0, 80, 40), Rotation: 0.3}
	c := r.Frame.Center()
	a := geometry.Pt(c.X+30, c.Y+10)
	b := geometry.Pt(c.X-5, c.Y+40)

	turned := Rotate(r, a, b)
	back := Rotate(turned, b, a).(annotation.Ellipse)
	assert.InDelta(t, 0.3, back.Rotation, 1e-9)
	assert.Equal(t, r.Frame, back.Frame)

	arrow := annotation.Arrow{ID: "a", Start: geometry.Pt(0, 0), End: geometry.Pt(10, 10)}
	assert.Equal(t, annotation.Annotation(arrow), Rotate(arrow, a, b))
}

func TestResizeFloor(t *testing.T) {
	frame := geometry.R(10, 10, 100, 50)
	shapes := []annotation.Annotation{
		annotation.Rect{ID: "r", Frame: frame},
		annotation.Ellipse{ID: "e", Frame: frame, Rotation: 0.7},
		annotation.Highlight{ID: "h", Frame: frame, Rotation: -2},
		annotation.Text{ID: "t", Frame: frame, Text: "x"},
	}
	corners := []HandleKind{HandleTopLeft, HandleTopRight, HandleBottomLeft, HandleBottomRight}
	deltas := []geometry.Point{{X: 1000, Y: 1000}, {X: -1000, Y: -1000}, {X: 1000, Y: -1000}, {X: -1000, Y: 1000}, {X: 97, Y: 49}}
	for _, a := range shapes {
		for _, h := range corners {
			for _, d := range deltas {
				got := Resize(a, h, d).Bounds()
				assert.GreaterOrEqual(t, got.Width, MinFrameSize-1e-9, "%v %v %v", a.Kind(), h, d)
				assert.GreaterOrEqual(t, got.Height, MinFrameSize-1e-9, "%v %v %v", a.Kind(), h, d)
			}
		}
	}
}

func TestResizeHoldsOppositeEdges(t *testing.T) {
	r := annotation.Rect{ID: "r", Frame: geometry.R(10, 10, 100, 50)}

	got := Resize(r, HandleBottomRight, geometry.Pt(10, 20)).Bounds()
	assert.Equal(t, geometry.R(10, 10, 110, 70), got)

	got = Resize(r, HandleTopLeft, geometry.Pt(1000, 1000)).Bounds()
	assert.Equal(t, geometry.R(102, 52, 8, 8), got)

	got = Resize(r, HandleTopRight, geometry.Pt(-5, -5)).Bounds()
	assert.Equal(t, geometry.R(10, 5, 95, 55), got)

	assert.Equal(t, annotation.Annotation(r), Resize(r, HandleRotate, geometry.Pt(5, 5)))
}

func TestResizeRotatedKeepsAnchor(t *testing.T) {
	r := annotation.Rect{ID: "r", Frame: geometry.R(50, 50, 100, 60), Rotation: 0.5}
	anchor := func(a annotation.Annotation) geometry.Point {
		b := a.Bounds()
		return geometry.RotatePoint(b.Origin(), b.Center(), a.Angle())
	}
	before := anchor(r)
	next := Resize(r, HandleBottomRight, geometry.Pt(30, 10))
	after := anchor(next)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
	assert.InDelta(t, 0.5, next.Angle(), 1e-12)
}

func TestResizeThroughHandle(t *testing.T) {
	e := newEditing(t, Options{})
	e.SetTool(ToolEllipse)
	drag(e, geometry.Pt(10, 10), geometry.Pt(110, 60))
	e.SetTool(ToolSelect)

	// Bottom-right handle sits on the outline 3px outside the frame.
	assert.Equal(t, HandleBottomRight, e.HitTestResizeHandle(geometry.Pt(113, 63), e.Selected()))
	drag(e, geometry.Pt(113, 63), geometry.Pt(133, 83))
	assert.Equal(t, geometry.R(10, 10, 120, 70), e.Document().Ellipses[0].Frame)

	assert.Equal(t, HandleNone, e.HitTestResizeHandle(geometry.Pt(113, 63), annotation.Ref{Kind: annotation.KindEllipse, ID: "gone"}))
}

func TestArrowEndpointDrag(t *testing.T) {
	e := newEditing(t, Options{})
	e.SetTool(ToolArrow)
	drag(e, geometry.Pt(20, 20), geometry.Pt(120, 20))
	e.SetTool(ToolSelect)

	drag(e, geometry.Pt(121, 21), geometry.Pt(150, 90))
	a := e.Document().Arrows[0]
	assert.Equal(t, geometry.Pt(20, 20), a.Start)
	assert.Equal(t, geometry.Pt(150, 90), a.End)
}

func TestHitTestZOrder(t *testing.T) {
	var c annotation.Collection
	c.Add(annotation.Highlight{ID: "highlight", Frame: geometry.R(0, 0, 100, 100)})
	c.Add(annotation.Rect{ID: "rect", Frame: geometry.R(0, 0, 100, 100)})
	c.Add(annotation.Ellipse{ID: "ellipse", Frame: geometry.R(0, 0, 100, 100)})
	c.Add(annotation.Arrow{ID: "arrow", Start: geometry.Pt(40, 40), End: geometry.Pt(60, 60)})
	c.Add(annotation.Stroke{ID: "stroke", Points: []geometry.Point{{X: 45, Y: 45}, {X: 55, Y: 55}}})
	c.Add(annotation.Badge{ID: "badge", Center: geometry.Pt(50, 50), Number: 1})
	c.Add(annotation.Text{ID: "text", Frame: geometry.R(40, 40, 30, 20), Text: "t"})

	p := geometry.Pt(50, 50)
	var got []annotation.ID
	for {
		ref, ok := HitTestItem(c, p)
		if !ok {
			break
		}
		got = append(got, ref.ID)
		require.True(t, c.Remove(ref))
	}
	assert.Equal(t, []annotation.ID{"text", "badge", "stroke", "arrow", "ellipse", "rect", "highlight"}, got)
}

func TestHitTestNewestFirstAndRotation(t *testing.T) {
	var c annotation.Collection
	c.Add(annotation.Rect{ID: "old", Frame: geometry.R(0, 0, 100, 100)})
	c.Add(annotation.Rect{ID: "new", Frame: geometry.R(50, 50, 100, 100)})
	ref, ok := HitTestItem(c, geometry.Pt(75, 75))
	require.True(t, ok)
	assert.Equal(t, annotation.ID("new"), ref.ID)

	var r annotation.Collection
	r.Add(annotation.Rect{ID: "bar", Frame: geometry.R(0, 0, 100, 10), Rotation: math.Pi / 2})
	_, ok = HitTestItem(r, geometry.Pt(50, 40))
	assert.True(t, ok)
	_, ok = HitTestItem(r, geometry.Pt(90, 5))
	assert.False(t, ok)
	// The tolerance reaches just past the outline.
	_, ok = HitTestItem(r, geometry.Pt(58, 5))
	assert.True(t, ok)
}

func TestTextScenario(t *testing.T) {
	e := newEditing(t, Options{})
	e.SetTool(ToolText)
	click(e, geometry.Pt(30, 40))
	entry, ok := e.TextEntry()
	require.True(t, ok)
	assert.Equal(t, geometry.R(30, 40, TextFieldEmptyWidth, TextFieldHeight), entry.Frame)

	e.Handle(TextInput{Text: "Hi"})
	e.KeyDown(Key{Code: KeyEnter})

	doc := e.Document()
	require.Len(t, doc.Texts, 1)
	assert.Equal(t, "Hi", doc.Texts[0].Text)
	assert.Equal(t, geometry.R(30, 40, 16+annotation.TextPadX, 18+annotation.TextPadY), doc.Texts[0].Frame)
	assert.Equal(t, ToolSelect, e.Tool())
	assert.Equal(t, 1, e.UndoDepth())

	e.PointerDown(geometry.Pt(35, 45), 1)
	e.PointerUp(geometry.Pt(35, 45))
	e.PointerDown(geometry.Pt(35, 45), 2)
	e.PointerUp(geometry.Pt(35, 45))
	entry, ok = e.TextEntry()
	require.True(t, ok)
	assert.Equal(t, "Hi", entry.Text)
	assert.Equal(t, annotation.RefOf(doc.Texts[0]), entry.Editing)
	assert.Empty(t, e.Scene().Items.Texts)

	e.SetTextEntry("")
	e.CommitText()
	assert.Empty(t, e.Document().Texts)
	assert.Equal(t, 2, e.UndoDepth())

	e.Undo()
	doc = e.Document()
	require.Len(t, doc.Texts, 1)
	assert.Equal(t, "Hi", doc.Texts[0].Text)
}

func TestTextEntryRules(t *testing.T) {
	e := newEditing(t, Options{})
	e.SetTool(ToolText)

	// A new entry committed empty leaves no trace.
	click(e, geometry.Pt(30, 40))
	e.TypeText("   ")
	e.CommitText()
	assert.Zero(t, e.Document().Total())
	assert.Zero(t, e.UndoDepth())

	// Escape discards.
	e.SetTool(ToolText)
	click(e, geometry.Pt(30, 40))
	e.TypeText("gone")
	e.KeyDown(Key{Code: KeyEscape})
	_, open := e.TextEntry()
	assert.False(t, open)
	assert.Zero(t, e.Document().Total())
	assert.Zero(t, e.UndoDepth())

	// A click inside the field keeps it open, a click outside commits.
	e.SetTool(ToolText)
	click(e, geometry.Pt(30, 40))
	e.TypeText("abc")
	e.KeyDown(Key{Code: KeyBackspace})
	click(e, geometry.Pt(50, 50))
	_, open = e.TextEntry()
	assert.True(t, open)
	click(e, geometry.Pt(300, 250))
	_, open = e.TextEntry()
	assert.False(t, open)
	doc := e.Document()
	require.Len(t, doc.Texts, 1)
	assert.Equal(t, "ab", doc.Texts[0].Text)
	assert.Empty(t, doc.Rects)
}

func TestTextEntryOnlyInsideSelection(t *testing.T) {
	e := New(Options{Measure: fixedMeasure, Logger: zap.NewNop()})
	e.EnterEditing(image.NewRGBA(image.Rect(0, 0, 100, 100)), geometry.R(50, 50, 100, 100))
	e.SetTool(ToolText)
	click(e, geometry.Pt(20, 20))
	_, open := e.TextEntry()
	assert.False(t, open, "press outside the selection is ignored")

	click(e, geometry.Pt(60, 70))
	entry, open := e.TextEntry()
	require.True(t, open)
	assert.Equal(t, geometry.Pt(50, 70), entry.Origin)
}

func TestTextFieldStaysInsideSelection(t *testing.T) {
	e := newEditing(t, Options{})
	e.SetTool(ToolText)
	click(e, geometry.Pt(390, 290))
	entry, open := e.TextEntry()
	require.True(t, open)
	assert.Equal(t, geometry.Pt(400-TextFieldEmptyWidth, 300-TextFieldHeight), entry.Origin)
	for _, c := range entry.Frame.Corners() {
		assert.True(t, e.Selection().Contains(c), "corner %v", c)
	}
	e.CancelText()

	// Narrower than the field: pinned to the left edge.
	narrow := New(Options{Measure: fixedMeasure, Logger: zap.NewNop()})
	narrow.EnterEditing(image.NewRGBA(image.Rect(0, 0, 100, 100)), geometry.R(50, 50, 100, 100))
	narrow.SetTool(ToolText)
	click(narrow, geometry.Pt(140, 140))
	entry, open = narrow.TextEntry()
	require.True(t, open)
	assert.Equal(t, geometry.Pt(50, 150-TextFieldHeight), entry.Origin)
}

func TestCommitTrimsText(t *testing.T) {
	e := newEditing(t, Options{})
	e.SetTool(ToolText)
	click(e, geometry.Pt(30, 40))
	e.TypeText("  Hi \n")
	e.CommitText()

	doc := e.Document()
	require.Len(t, doc.Texts, 1)
	assert.Equal(t, "Hi", doc.Texts[0].Text)
	assert.Equal(t, 16+annotation.TextPadX, doc.Texts[0].Frame.Width)
}

func TestUndoCommitsOpenText(t *testing.T) {
	e := newEditing(t, Options{})
	e.SetTool(ToolText)
	click(e, geometry.Pt(30, 40))
	e.TypeText("keep")

	e.Run(CommandUndo)
	_, open := e.TextEntry()
	assert.False(t, open)
	assert.Empty(t, e.Document().Texts)
	require.Equal(t, 1, e.RedoDepth())

	e.Run(CommandRedo)
	doc := e.Document()
	require.Len(t, doc.Texts, 1)
	assert.Equal(t, "keep", doc.Texts[0].Text)
}

func TestSwitchingToolCommitsText(t *testing.T) {
	e := newEditing(t, Options{})
	e.SetTool(ToolText)
	click(e, geometry.Pt(30, 40))
	e.TypeText("keep")
	e.SetTool(ToolRect)
	assert.Len(t, e.Document().Texts, 1)
	assert.Equal(t, ToolRect, e.Tool())
}

func TestDeleteFallsBackToHover(t *testing.T) {
	e := newEditing(t, Options{})
	e.SetTool(ToolRect)
	drag(e, geometry.Pt(10, 10), geometry.Pt(60, 60))
	drag(e, geometry.Pt(200, 200), geometry.Pt(260, 260))
	e.SetTool(ToolSelect)
	click(e, geometry.Pt(150, 150))
	require.True(t, e.Selected().IsZero())

	e.PointerMove(geometry.Pt(30, 30))
	assert.Equal(t, annotation.KindRect, e.Hovered().Kind)
	e.PointerExit()
	assert.True(t, e.Hovered().IsZero())

	e.KeyDown(Key{Code: KeyBackspace})
	doc := e.Document()
	require.Len(t, doc.Rects, 1)
	assert.Equal(t, geometry.R(200, 200, 60, 60), doc.Rects[0].Frame)

	depth := e.UndoDepth()
	e.KeyDown(Key{Code: KeyDelete})
	assert.Equal(t, depth, e.UndoDepth())
	assert.Len(t, e.Document().Rects, 1)
}

func TestDeleteStaleTargetIsNoop(t *testing.T) {
	e := newEditing(t, Options{})
	e.SetTool(ToolRect)
	drag(e, geometry.Pt(10, 10), geometry.Pt(60, 60))
	e.SetTool(ToolSelect)
	e.PointerMove(geometry.Pt(30, 30))
	e.Undo()
	require.Zero(t, e.Document().Total())

	e.DeleteTarget()
	assert.Zero(t, e.UndoDepth())
	assert.Equal(t, 1, e.RedoDepth())
}

func TestDegenerateDraftIsDiscarded(t *testing.T) {
	e := newEditing(t, Options{})
	for _, tool := range []Tool{ToolRect, ToolEllipse, ToolHighlight, ToolArrow} {
		e.SetTool(tool)
		click(e, geometry.Pt(40, 40))
	}
	assert.Zero(t, e.Document().Total())
	assert.Zero(t, e.UndoDepth())

	// A single-point stroke is a dot.
	e.SetTool(ToolPen)
	click(e, geometry.Pt(40, 40))
	assert.Len(t, e.Document().Strokes, 1)
}

func TestPressOutsideSelectionIgnored(t *testing.T) {
	e := New(Options{Logger: zap.NewNop()})
	e.EnterEditing(image.NewRGBA(image.Rect(0, 0, 100, 100)), geometry.R(100, 100, 100, 100))
	e.SetTool(ToolRect)
	drag(e, geometry.Pt(10, 10), geometry.Pt(90, 90))
	assert.Zero(t, e.Document().Total())
	assert.Nil(t, e.Draft())
}

func TestDraftVisibleDuringDrag(t *testing.T) {
	e := newEditing(t, Options{})
	e.SetTool(ToolHighlight)
	e.PointerDown(geometry.Pt(50, 50), 1)
	e.PointerDrag(geometry.Pt(20, 30))
	d, ok := e.Scene().Draft.(annotation.Highlight)
	require.True(t, ok)
	assert.Equal(t, geometry.R(20, 30, 30, 20), d.Frame)
	assert.Equal(t, uint8(64), d.Color.A)

	// Undo waits for the gesture to end.
	e.Undo()
	e.PointerUp(geometry.Pt(20, 30))
	assert.Len(t, e.Document().Highlights, 1)
}

func TestKeyboardShortcuts(t *testing.T) {
	copies, saves, cancels := 0, 0, 0
	e := newEditing(t, Options{
		OnCopy:   func() { copies++ },
		OnSave:   func() { saves++ },
		OnCancel: func() { cancels++ },
	})
	e.SetTool(ToolRect)
	drag(e, geometry.Pt(10, 10), geometry.Pt(60, 60))

	e.KeyDown(Key{Code: KeyChar, Char: 'z', Mods: ModCommand})
	assert.Zero(t, e.Document().Total())
	e.KeyDown(Key{Code: KeyChar, Char: 'Z', Mods: ModCommand | ModShift})
	assert.Equal(t, 1, e.Document().Total())
	e.KeyDown(Key{Code: KeyChar, Char: 'z', Mods: ModCommand})
	e.KeyDown(Key{Code: KeyChar, Char: 'y', Mods: ModCommand})
	assert.Equal(t, 1, e.Document().Total())

	e.KeyDown(Key{Code: KeyChar, Char: 'c', Mods: ModCommand})
	e.KeyDown(Key{Code: KeyChar, Char: 's', Mods: ModCommand})
	e.KeyDown(Key{Code: KeyChar, Char: 's'})
	assert.Equal(t, 1, copies)
	assert.Equal(t, 1, saves)

	e.KeyDown(Key{Code: KeyEscape})
	assert.Equal(t, ToolSelect, e.Tool())
	assert.Zero(t, cancels)
	e.KeyDown(Key{Code: KeyEscape})
	assert.Equal(t, 1, cancels)

	// Nothing reacts once the session has ended.
	e.KeyDown(Key{Code: KeyChar, Char: 'c', Mods: ModCommand})
	assert.Equal(t, 1, copies)
}

func TestCopyCommitsPendingText(t *testing.T) {
	var seen int
	var e *Editor
	e = newEditing(t, Options{OnCopy: func() { seen = e.Document().Total() }})
	e.SetTool(ToolText)
	click(e, geometry.Pt(30, 40))
	e.TypeText("note")
	e.Run(CommandCopy)
	assert.Equal(t, 1, seen)
}

func TestStyleChangesRestyleSelection(t *testing.T) {
	e := newEditing(t, Options{LineWidth: 5})
	assert.Equal(t, 5.0, e.LineWidth())
	e.SetTool(ToolRect)
	drag(e, geometry.Pt(10, 10), geometry.Pt(60, 60))
	e.SetTool(ToolSelect)

	e.SetLineWidth(50)
	assert.Equal(t, annotation.MaxLineWidth, e.LineWidth())
	assert.Equal(t, annotation.MaxLineWidth, e.Document().Rects[0].LineWidth)
	assert.Equal(t, 2, e.UndoDepth())

	e.SetLineWidth(50)
	assert.Equal(t, 2, e.UndoDepth())

	blue := color.NRGBA{B: 255, A: 255}
	e.SetColor(blue)
	assert.Equal(t, blue, e.Document().Rects[0].Color)
	assert.Equal(t, 3, e.UndoDepth())

	e.SetTool(ToolHighlight)
	drag(e, geometry.Pt(100, 100), geometry.Pt(150, 150))
	e.SetTool(ToolSelect)
	red := color.NRGBA{R: 255, A: 255}
	e.SetColor(red)
	assert.Equal(t, annotation.WithAlpha(red, annotation.HighlightAlpha), e.Document().Highlights[0].Color)

	// Highlights have no outline.
	depth := e.UndoDepth()
	e.SetLineWidth(2)
	assert.Equal(t, depth, e.UndoDepth())
}

func TestSceneChrome(t *testing.T) {
	e := newEditing(t, Options{})
	e.SetTool(ToolRect)
	drag(e, geometry.Pt(10, 10), geometry.Pt(60, 60))
	drag(e, geometry.Pt(200, 200), geometry.Pt(260, 260))
	e.SetTool(ToolSelect)
	e.PointerMove(geometry.Pt(30, 30))

	s := e.Scene()
	assert.Equal(t, ModeEditing, s.Mode)
	require.NotNil(t, s.Selected)
	assert.Equal(t, geometry.R(200, 200, 60, 60), s.Selected.Bounds())
	assert.Len(t, s.Handles, 5)
	assert.Equal(t, HandleRotate, s.Handles[0].Kind)
	require.NotNil(t, s.Hovered)
	assert.Equal(t, geometry.R(10, 10, 50, 50), s.Hovered.Bounds())
	assert.False(t, s.HasText)
}

func TestParseTool(t *testing.T) {
	for _, tool := range Tools() {
		got, ok := ParseTool(tool.String())
		assert.True(t, ok)
		assert.Equal(t, tool, got)
	}
	got, ok := ParseTool(" Freehand ")
	assert.True(t, ok)
	assert.Equal(t, ToolPen, got)
	_, ok = ParseTool("lasso")
	assert.False(t, ok)
}
