package editor

import (
	"math"

	"screen-annotate/src/annotation"
	"screen-annotate/src/geometry"
)

const (
	// MinFrameSize is the smallest width or height a resize can produce.
	MinFrameSize = 8.0
	// DragThreshold is how far the pointer travels before a press becomes a
	// transform.
	DragThreshold = 2.0
)

// Move offsets every coordinate of a by d.
func Move(a annotation.Annotation, d geometry.Point) annotation.Annotation {
	switch v := a.(type) {
	case annotation.Rect:
		v.Frame = v.Frame.Offset(d.X, d.Y)
		return v
	case annotation.Ellipse:
		v.Frame = v.Frame.Offset(d.X, d.Y)
		return v
	case annotation.Highlight:
		v.Frame = v.Frame.Offset(d.X, d.Y)
		return v
	case annotation.Text:
		v.Frame = v.Frame.Offset(d.X, d.Y)
		return v
	case annotation.Arrow:
		v.Start = v.Start.Add(d)
		v.End = v.End.Add(d)
		return v
	case annotation.Stroke:
		pts := make([]geometry.Point, len(v.Points))
		for i, p := range v.Points {
			pts[i] = p.Add(d)
		}
		v.Points = pts
		return v
	case annotation.Badge:
		v.Center = v.Center.Add(d)
		return v
	}
	return a
}

// Resize drags corner h of a's frame by the screen delta d. The delta is
// rotated into the frame's local space, the edges meeting at h move and the
// opposite edges hold. Spans below MinFrameSize stop at the floor instead of
// inverting. For rotated frames the opposite corner keeps its screen position.
func Resize(a annotation.Annotation, h HandleKind, d geometry.Point) annotation.Annotation {
	if !h.IsCorner() || !a.Kind().Rotatable() {
		return a
	}
	orig := a.Bounds()
	angle := a.Angle()
	ld := geometry.RotatePoint(d, geometry.Point{}, -angle)

	minX, minY, maxX, maxY := orig.MinX(), orig.MinY(), orig.MaxX(), orig.MaxY()
	left := h == HandleTopLeft || h == HandleBottomLeft
	top := h == HandleTopLeft || h == HandleTopRight
	if left {
		minX = math.Min(minX+ld.X, maxX-MinFrameSize)
	} else {
		maxX = math.Max(maxX+ld.X, minX+MinFrameSize)
	}
	if top {
		minY = math.Min(minY+ld.Y, maxY-MinFrameSize)
	} else {
		maxY = math.Max(maxY+ld.Y, minY+MinFrameSize)
	}
	next := geometry.R(minX, minY, maxX-minX, maxY-minY)

	if angle != 0 {
		anchor := opposite(h)
		before := geometry.RotatePoint(corner(orig, anchor), orig.Center(), angle)
		after := geometry.RotatePoint(corner(next, anchor), next.Center(), angle)
		shift := before.Sub(after)
		next = next.Offset(shift.X, shift.Y)
	}
	return withFrame(a, next)
}

// Rotate turns a by the angle the pointer swept around the center of a's frame
// since the gesture started at start. Both angles are measured against the
// frame captured at gesture start.
func Rotate(a annotation.Annotation, start, cur geometry.Point) annotation.Annotation {
	if !a.Kind().Rotatable() {
		return a
	}
	c := a.Bounds().Center()
	delta := math.Atan2(cur.Y-c.Y, cur.X-c.X) - math.Atan2(start.Y-c.Y, start.X-c.X)
	return withRotation(a, a.Angle()+delta)
}

// MoveEndpoint places the arrow endpoint named by h at p.
func MoveEndpoint(a annotation.Arrow, h HandleKind, p geometry.Point) annotation.Arrow {
	switch h {
	case HandleArrowStart:
		a.Start = p
	case HandleArrowEnd:
		a.End = p
	}
	return a
}

func opposite(h HandleKind) HandleKind {
	switch h {
	case HandleTopLeft:
		return HandleBottomRight
	case HandleTopRight:
		return HandleBottomLeft
	case HandleBottomLeft:
		return HandleTopRight
	case HandleBottomRight:
		return HandleTopLeft
	}
	return HandleNone
}

func corner(r geometry.Rect, h HandleKind) geometry.Point {
	c := r.Corners()
	switch h {
	case HandleTopRight:
		return c[1]
	case HandleBottomLeft:
		return c[2]
	case HandleBottomRight:
		return c[3]
	}
	return c[0]
}

func withFrame(a annotation.Annotation, r geometry.Rect) annotation.Annotation {
	switch v := a.(type) {
	case annotation.Rect:
		v.Frame = r
		return v
	case annotation.Ellipse:
		v.Frame = r
		return v
	case annotation.Highlight:
		v.Frame = r
		return v
	case annotation.Text:
		v.Frame = r
		return v
	}
	return a
}

func withRotation(a annotation.Annotation, angle float64) annotation.Annotation {
	switch v := a.(type) {
	case annotation.Rect:
		v.Rotation = angle
		return v
	case annotation.Ellipse:
		v.Rotation = angle
		return v
	case annotation.Highlight:
		v.Rotation = angle
		return v
	case annotation.Text:
		v.Rotation = angle
		return v
	}
	return a
}
