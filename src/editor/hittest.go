package editor

import (
	"screen-annotate/src/annotation"
	"screen-annotate/src/geometry"
)

const (
	// HitTolerance grows shape frames so thin outlines stay easy to grab.
	HitTolerance = 4.0
	// PathHitTolerance pads the bounding box of arrows and freehand strokes.
	PathHitTolerance = 8.0
	// BadgeHitTolerance grows the badge circle's box to 28 points.
	BadgeHitTolerance = 2.0
	// HandleRadius is how close the pointer must be to a handle center.
	HandleRadius = 10.0
	// HandleOutset is the gap between a frame and the outline carrying its
	// corner handles.
	HandleOutset = 3.0
	// RotateHandleOffset places the rotation handle above the outline's top edge.
	RotateHandleOffset = 22.0
)

// HandleKind names a draggable control point.
type HandleKind int

const (
	HandleNone HandleKind = iota
	HandleTopLeft
	HandleTopRight
	HandleBottomLeft
	HandleBottomRight
	HandleRotate
	HandleArrowStart
	HandleArrowEnd
)

var handleNames = [...]string{"none", "top-left", "top-right", "bottom-left", "bottom-right", "rotate", "arrow-start", "arrow-end"}

func (h HandleKind) String() string {
	if h < 0 || int(h) >= len(handleNames) {
		return "unknown"
	}
	return handleNames[h]
}

// IsCorner reports whether h resizes a box.
func (h HandleKind) IsCorner() bool { return h >= HandleTopLeft && h <= HandleBottomRight }

// Handle is a control point in screen space.
type Handle struct {
	Kind HandleKind
	Pos  geometry.Point
}

// HitTestItem returns the topmost annotation under p. Kinds are tried in
// annotation.HitOrder and, within a kind, newest first.
func HitTestItem(items annotation.Collection, p geometry.Point) (annotation.Ref, bool) {
	for _, k := range annotation.HitOrder() {
		for i := items.Len(k) - 1; i >= 0; i-- {
			a, _ := items.At(k, i)
			if hits(a, p) {
				return annotation.RefOf(a), true
			}
		}
	}
	return annotation.Ref{}, false
}

func hits(a annotation.Annotation, p geometry.Point) bool {
	switch a.Kind() {
	case annotation.KindStroke, annotation.KindArrow:
		return a.Bounds().Inset(-PathHitTolerance).Contains(p)
	case annotation.KindBadge:
		return a.Bounds().Inset(-BadgeHitTolerance).Contains(p)
	default:
		return a.Bounds().Inset(-HitTolerance).Contains(toLocal(a, p))
	}
}

// toLocal maps a screen point into the unrotated frame of a.
func toLocal(a annotation.Annotation, p geometry.Point) geometry.Point {
	return geometry.RotatePoint(p, a.Bounds().Center(), -a.Angle())
}

// localHandles returns the handles of a in its unrotated frame.
func localHandles(a annotation.Annotation) []Handle {
	switch v := a.(type) {
	case annotation.Arrow:
		return []Handle{{HandleArrowStart, v.Start}, {HandleArrowEnd, v.End}}
	}
	if !a.Kind().Rotatable() {
		return nil
	}
	o := a.Bounds().Inset(-HandleOutset)
	c := o.Corners()
	return []Handle{
		{HandleRotate, geometry.Pt(o.MidX(), o.MinY()-RotateHandleOffset)},
		{HandleTopLeft, c[0]},
		{HandleTopRight, c[1]},
		{HandleBottomLeft, c[2]},
		{HandleBottomRight, c[3]},
	}
}

// Handles returns the control points of a in screen space, rotation handle
// first. Strokes and badges have none; arrows expose their two endpoints.
func Handles(a annotation.Annotation) []Handle {
	hs := localHandles(a)
	if angle := a.Angle(); angle != 0 {
		c := a.Bounds().Center()
		for i := range hs {
			hs[i].Pos = geometry.RotatePoint(hs[i].Pos, c, angle)
		}
	}
	return hs
}

// HandleOutline returns the unrotated outline that carries the corner handles.
func HandleOutline(a annotation.Annotation) geometry.Rect {
	return a.Bounds().Inset(-HandleOutset)
}

// HitTestHandle returns the handle of a under p. The rotation handle wins over
// corners when both are in reach.
func HitTestHandle(a annotation.Annotation, p geometry.Point) HandleKind {
	if a == nil {
		return HandleNone
	}
	q := p
	if a.Kind() != annotation.KindArrow {
		q = toLocal(a, p)
	}
	for _, h := range localHandles(a) {
		if h.Pos.Dist(q) <= HandleRadius {
			return h.Kind
		}
	}
	return HandleNone
}
