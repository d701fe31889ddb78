package compositor

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"

	"screen-annotate/src/annotation"
	"screen-annotate/src/editor"
	"screen-annotate/src/geometry"
	"screen-annotate/src/typeface"
)

// Overlay chrome.
var (
	DimColor    = color.NRGBA{A: 0x66}
	AccentColor = color.NRGBA{R: 0x00, G: 0x7a, B: 0xff, A: 0xff}
	LabelColor  = color.NRGBA{R: 0x1c, G: 0x1c, B: 0x1e, A: 0xd9}
	FieldColor  = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xe6}
)

const (
	cornerMarkLen   = 12.0
	cornerMarkWidth = 3.0
	handleRadius    = 5.0
	labelFontSize   = 12.0
	labelPad        = 6.0
	labelGap        = 6.0
)

var hoverDashes = []float64{4, 3}

// RenderFrame paints one overlay frame into dst in screen points. backdrop, if
// non-nil, is the desktop shown behind the dimming.
func RenderFrame(dst *image.RGBA, backdrop image.Image, s editor.Scene) error {
	if dst.Bounds().Min != (image.Point{}) {
		return ErrOrigin
	}
	if backdrop != nil {
		draw.Draw(dst, dst.Bounds(), backdrop, backdrop.Bounds().Min, draw.Src)
	}
	p := newPainter(dst, rasterx.Identity, 1)

	if s.Mode == editor.ModeSelecting {
		if !s.Dragging {
			dimExcept(dst, image.Rectangle{})
			return nil
		}
		r := p.pixelRect(s.Drag)
		dimExcept(dst, r)
		p.selectionChrome(s.Drag, true)
		return nil
	}

	sel := p.pixelRect(s.Selection)
	dimExcept(dst, sel)
	if s.Base != nil {
		blit(dst, sel, s.Base)
	}
	p.clip(s.Selection)
	p.document(s.Items, s.Draft)
	p.clip(geometry.Rect{})
	p.selectionChrome(s.Selection, false)

	if s.Hovered != nil {
		p.outline(s.Hovered.Bounds().Inset(-editor.HandleOutset), s.Hovered.Angle(), hoverDashes)
	}
	if s.Selected != nil {
		p.outline(editor.HandleOutline(s.Selected), s.Selected.Angle(), nil)
		p.handles(s)
	}
	if s.HasText {
		p.textField(s.Text)
	}
	return nil
}

// dimExcept darkens dst everywhere outside keep.
func dimExcept(dst *image.RGBA, keep image.Rectangle) {
	b := dst.Bounds()
	dim := image.NewUniform(DimColor)
	keep = keep.Intersect(b)
	if keep.Empty() {
		draw.Draw(dst, b, dim, image.Point{}, draw.Over)
		return
	}
	for _, r := range []image.Rectangle{
		{Min: b.Min, Max: image.Pt(b.Max.X, keep.Min.Y)},
		{Min: image.Pt(b.Min.X, keep.Max.Y), Max: b.Max},
		{Min: image.Pt(b.Min.X, keep.Min.Y), Max: image.Pt(keep.Min.X, keep.Max.Y)},
		{Min: image.Pt(keep.Max.X, keep.Min.Y), Max: image.Pt(b.Max.X, keep.Max.Y)},
	} {
		if !r.Empty() {
			draw.Draw(dst, r, dim, image.Point{}, draw.Over)
		}
	}
}

// blit copies src into r, scaling when the sizes differ.
func blit(dst *image.RGBA, r image.Rectangle, src image.Image) {
	if src.Bounds().Size() == r.Size() {
		draw.Draw(dst, r, src, src.Bounds().Min, draw.Src)
		return
	}
	xdraw.CatmullRom.Scale(dst, r, src, src.Bounds(), draw.Src, nil)
}

// selectionChrome draws the border of r and, while selecting, corner marks
// and the size label.
func (p *painter) selectionChrome(r geometry.Rect, selecting bool) {
	p.stroke(white, strokeStyle{width: 1}, p.view, rectPath(r))
	if !selecting {
		return
	}
	st := strokeStyle{width: cornerMarkWidth, cap: rasterx.SquareCap, join: rasterx.Miter}
	l := math.Min(cornerMarkLen, math.Min(r.Width, r.Height)/2)
	for _, c := range [][3]geometry.Point{
		{geometry.Pt(r.MinX(), r.MinY()+l), geometry.Pt(r.MinX(), r.MinY()), geometry.Pt(r.MinX()+l, r.MinY())},
		{geometry.Pt(r.MaxX()-l, r.MinY()), geometry.Pt(r.MaxX(), r.MinY()), geometry.Pt(r.MaxX(), r.MinY()+l)},
		{geometry.Pt(r.MinX(), r.MaxY()-l), geometry.Pt(r.MinX(), r.MaxY()), geometry.Pt(r.MinX()+l, r.MaxY())},
		{geometry.Pt(r.MaxX()-l, r.MaxY()), geometry.Pt(r.MaxX(), r.MaxY()), geometry.Pt(r.MaxX(), r.MaxY()-l)},
	} {
		p.stroke(white, st, p.view, polyline(c[:], false))
	}
	p.sizeLabel(r)
}

// SizeLabel formats the dimension label shown while selecting.
func SizeLabel(r geometry.Rect) string {
	return fmt.Sprintf("%d × %d", int(math.Round(r.Width)), int(math.Round(r.Height)))
}

func (p *painter) sizeLabel(r geometry.Rect) {
	text := SizeLabel(r)
	w, h := typeface.Measure(text, labelFontSize)
	box := geometry.R(r.MinX(), r.MinY()-h-2*labelPad-labelGap, w+2*labelPad, h+2*labelPad)
	if box.MinY() < 0 {
		box.Y = r.MinY() + labelGap
		box.X = r.MinX() + labelGap
	}
	p.fill(LabelColor, p.view, func(a rasterx.Adder) {
		rasterx.AddRoundRect(box.MinX(), box.MinY(), box.MaxX(), box.MaxY(), 4, 4, 0, rasterx.RoundGap, a)
	})
	p.label(geometry.Pt(box.X+labelPad, box.Y+labelPad), text, labelFontSize, white)
}

func (p *painter) outline(r geometry.Rect, angle float64, dashes []float64) {
	p.stroke(AccentColor, strokeStyle{width: 1, join: rasterx.Miter, dashes: dashes}, p.around(r.Center(), angle), rectPath(r))
}

func (p *painter) handles(s editor.Scene) {
	hs := s.Handles
	if len(hs) > 0 && hs[0].Kind == editor.HandleRotate {
		o := editor.HandleOutline(s.Selected)
		top := geometry.RotatePoint(geometry.Pt(o.MidX(), o.MinY()), o.Center(), s.Selected.Angle())
		p.stroke(AccentColor, strokeStyle{width: 1}, p.view, polyline([]geometry.Point{top, hs[0].Pos}, false))
	}
	for _, h := range hs {
		c := h.Pos
		circle := func(a rasterx.Adder) { rasterx.AddCircle(c.X, c.Y, handleRadius, a) }
		p.fill(white, p.view, circle)
		p.stroke(AccentColor, strokeStyle{width: 1.5}, p.view, circle)
	}
}

func (p *painter) textField(t editor.TextEntry) {
	f := t.Frame
	p.fill(FieldColor, p.view, rectPath(f))
	p.stroke(AccentColor, strokeStyle{width: 1, join: rasterx.Miter}, p.view, rectPath(f))

	m := typeface.LineMetrics(annotation.TextFontSize)
	origin := geometry.Pt(f.X+annotation.TextPadX/2, f.Y+(f.Height-m.Height)/2)
	if t.Text != "" {
		p.label(origin, t.Text, annotation.TextFontSize, t.Color)
	}
	w, _ := typeface.Measure(t.Text, annotation.TextFontSize)
	if t.Text == "" {
		w = 0
	}
	x := origin.X + w + 1
	p.stroke(t.Color, strokeStyle{width: 1}, p.view, polyline([]geometry.Point{
		geometry.Pt(x, origin.Y), geometry.Pt(x, origin.Y+m.Height),
	}, false))
}
