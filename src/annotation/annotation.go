// Package annotation defines the document model edited on top of a captured
// region: seven annotation variants, the per-session collection that holds them
// and the snapshots used for undo.
package annotation

import (
	"image/color"

	"github.com/oklog/ulid/v2"

	"screen-annotate/src/geometry"
)

const (
	// BadgeRadius is half the fixed diameter of a numbered badge.
	BadgeRadius = 12.0
	// BadgeFontSize is the size of the number drawn inside a badge.
	BadgeFontSize = 12.0
	// TextFontSize is the size of committed text annotations.
	TextFontSize = 16.0
	// TextPadX and TextPadY pad a committed text frame around the measured run.
	TextPadX = 8.0
	TextPadY = 4.0
	// HighlightAlpha is the opacity applied to the current color for highlights.
	HighlightAlpha = 0.25
	// DefaultLineWidth is the stroke width used before the user picks one.
	DefaultLineWidth = 3.0
	MinLineWidth     = 1.0
	MaxLineWidth     = 20.0
)

// ID identifies one annotation for its whole lifetime inside a session.
type ID string

// NewID returns a fresh lexically sortable identifier.
func NewID() ID { return ID(ulid.Make().String()) }

// Annotation is the tagged union over the seven variants. Implementations are
// value types; Clone returns a copy that shares no memory with the receiver.
type Annotation interface {
	Kind() Kind
	Identity() ID
	// Bounds is the unrotated frame of the annotation.
	Bounds() geometry.Rect
	// Angle is the rotation about the center of Bounds, zero for variants
	// that cannot rotate.
	Angle() float64
	Clone() Annotation
}

type Rect struct {
	ID        ID
	Frame     geometry.Rect
	Color     color.NRGBA
	LineWidth float64
	Rotation  float64
}

func (a Rect) Kind() Kind            { return KindRect }
func (a Rect) Identity() ID          { return a.ID }
func (a Rect) Bounds() geometry.Rect { return a.Frame }
func (a Rect) Angle() float64        { return a.Rotation }
func (a Rect) Clone() Annotation     { return a }

type Ellipse struct {
	ID        ID
	Frame     geometry.Rect
	Color     color.NRGBA
	LineWidth float64
	Rotation  float64
}

func (a Ellipse) Kind() Kind            { return KindEllipse }
func (a Ellipse) Identity() ID          { return a.ID }
func (a Ellipse) Bounds() geometry.Rect { return a.Frame }
func (a Ellipse) Angle() float64        { return a.Rotation }
func (a Ellipse) Clone() Annotation     { return a }

// Highlight is a translucent filled box. Color already carries its alpha.
type Highlight struct {
	ID       ID
	Frame    geometry.Rect
	Color    color.NRGBA
	Rotation float64
}

func (a Highlight) Kind() Kind            { return KindHighlight }
func (a Highlight) Identity() ID          { return a.ID }
func (a Highlight) Bounds() geometry.Rect { return a.Frame }
func (a Highlight) Angle() float64        { return a.Rotation }
func (a Highlight) Clone() Annotation     { return a }

type Arrow struct {
	ID        ID
	Start     geometry.Point
	End       geometry.Point
	Color     color.NRGBA
	LineWidth float64
}

func (a Arrow) Kind() Kind   { return KindArrow }
func (a Arrow) Identity() ID { return a.ID }
func (a Arrow) Bounds() geometry.Rect {
	return geometry.RectFromPoints(a.Start, a.End)
}
func (a Arrow) Angle() float64    { return 0 }
func (a Arrow) Clone() Annotation { return a }

// Stroke is a freehand polyline with at least one point.
type Stroke struct {
	ID        ID
	Points    []geometry.Point
	Color     color.NRGBA
	LineWidth float64
}

func (a Stroke) Kind() Kind   { return KindStroke }
func (a Stroke) Identity() ID { return a.ID }
func (a Stroke) Bounds() geometry.Rect {
	r, _ := geometry.BoundingBox(a.Points)
	return r
}
func (a Stroke) Angle() float64 { return 0 }
func (a Stroke) Clone() Annotation {
	a.Points = append([]geometry.Point(nil), a.Points...)
	return a
}

type Text struct {
	ID       ID
	Frame    geometry.Rect
	Text     string
	Color    color.NRGBA
	Rotation float64
}

func (a Text) Kind() Kind            { return KindText }
func (a Text) Identity() ID          { return a.ID }
func (a Text) Bounds() geometry.Rect { return a.Frame }
func (a Text) Angle() float64        { return a.Rotation }
func (a Text) Clone() Annotation     { return a }

// Badge is a filled circle of fixed size showing a sequence number.
type Badge struct {
	ID     ID
	Center geometry.Point
	Number int
	Color  color.NRGBA
}

func (a Badge) Kind() Kind   { return KindBadge }
func (a Badge) Identity() ID { return a.ID }
func (a Badge) Bounds() geometry.Rect {
	return geometry.R(a.Center.X-BadgeRadius, a.Center.Y-BadgeRadius, 2*BadgeRadius, 2*BadgeRadius)
}
func (a Badge) Angle() float64    { return 0 }
func (a Badge) Clone() Annotation { return a }

// RefOf returns the reference addressing a.
func RefOf(a Annotation) Ref {
	if a == nil {
		return Ref{}
	}
	return Ref{Kind: a.Kind(), ID: a.Identity()}
}

// WithAlpha returns c with its alpha replaced by the fraction a in [0,1].
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	if a < 0 {
		a = 0
	} else if a > 1 {
		a = 1
	}
	c.A = uint8(a*255 + 0.5)
	return c
}
