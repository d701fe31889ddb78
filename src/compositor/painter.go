package compositor

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"

	"github.com/srwiley/rasterx"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"screen-annotate/src/annotation"
	"screen-annotate/src/geometry"
	"screen-annotate/src/typeface"
)

// Arrow head geometry.
const (
	ArrowHeadAngle  = math.Pi / 6
	ArrowHeadMinLen = 6.0
	ArrowHeadFactor = 4.0
)

var white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// painter draws document geometry into an RGBA image through a view matrix
// mapping document points to pixels. The image must have its origin at (0,0).
type painter struct {
	dst     *image.RGBA
	scanner *rasterx.ScannerGV
	filler  *rasterx.Filler
	dasher  *rasterx.Dasher
	view    rasterx.Matrix2D
	scale   float64
	// clipRect is the pixel clip; empty means unclipped.
	clipRect image.Rectangle
}

func newPainter(dst *image.RGBA, view rasterx.Matrix2D, scale float64) *painter {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	return &painter{
		dst:     dst,
		scanner: scanner,
		filler:  rasterx.NewFiller(w, h, scanner),
		dasher:  rasterx.NewDasher(w, h, scanner),
		view:    view,
		scale:   scale,
	}
}

// clip restricts painting to r in document space. A zero rect clears it.
func (p *painter) clip(r geometry.Rect) {
	if r.Empty() {
		p.clipRect = image.Rectangle{}
		p.scanner.SetClip(image.ZR)
		return
	}
	p.clipRect = p.pixelRect(r).Intersect(p.dst.Bounds())
	p.scanner.SetClip(p.clipRect)
}

// target is the destination for raster copies, honoring the clip.
func (p *painter) target() *image.RGBA {
	if p.clipRect.Empty() {
		return p.dst
	}
	return p.dst.SubImage(p.clipRect).(*image.RGBA)
}

func (p *painter) pixelRect(r geometry.Rect) image.Rectangle {
	x0, y0 := p.view.Transform(r.MinX(), r.MinY())
	x1, y1 := p.view.Transform(r.MaxX(), r.MaxY())
	return image.Rect(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Ceil(x1)), int(math.Ceil(y1)))
}

// around returns the view composed with a rotation by angle about c.
func (p *painter) around(c geometry.Point, angle float64) rasterx.Matrix2D {
	if angle == 0 {
		return p.view
	}
	return p.view.Translate(c.X, c.Y).Rotate(angle).Translate(-c.X, -c.Y)
}

func (p *painter) fill(c color.Color, m rasterx.Matrix2D, path func(a rasterx.Adder)) {
	p.filler.Clear()
	p.filler.SetColor(c)
	path(&rasterx.MatrixAdder{Adder: p.filler, M: m})
	p.filler.Draw()
	p.filler.Clear()
}

type strokeStyle struct {
	width  float64
	cap    rasterx.CapFunc
	join   rasterx.JoinMode
	dashes []float64
}

func (p *painter) stroke(c color.Color, st strokeStyle, m rasterx.Matrix2D, path func(a rasterx.Adder)) {
	w := fixed.Int26_6(math.Round(st.width * p.scale * 64))
	if w <= 0 {
		return
	}
	gap := rasterx.FlatGap
	if st.join == rasterx.Round {
		gap = rasterx.RoundGap
	}
	var dashes []float64
	for _, d := range st.dashes {
		dashes = append(dashes, d*p.scale)
	}
	p.dasher.Clear()
	p.dasher.SetStroke(w, 4<<6, st.cap, nil, gap, st.join, dashes, 0)
	p.dasher.SetColor(c)
	path(&rasterx.MatrixAdder{Adder: p.dasher, M: m})
	p.dasher.Draw()
	p.dasher.Clear()
}

func rectPath(r geometry.Rect) func(a rasterx.Adder) {
	return func(a rasterx.Adder) { rasterx.AddRect(r.MinX(), r.MinY(), r.MaxX(), r.MaxY(), 0, a) }
}

func polyline(pts []geometry.Point, closed bool) func(a rasterx.Adder) {
	return func(a rasterx.Adder) {
		if len(pts) == 0 {
			return
		}
		a.Start(rasterx.ToFixedP(pts[0].X, pts[0].Y))
		for _, q := range pts[1:] {
			a.Line(rasterx.ToFixedP(q.X, q.Y))
		}
		a.Stop(closed)
	}
}

// annotation draws one committed or draft annotation.
func (p *painter) annotation(a annotation.Annotation) {
	switch v := a.(type) {
	case annotation.Rect:
		p.stroke(v.Color, strokeStyle{width: v.LineWidth, join: rasterx.Miter}, p.around(v.Frame.Center(), v.Rotation), rectPath(v.Frame))
	case annotation.Ellipse:
		c := v.Frame.Center()
		p.stroke(v.Color, strokeStyle{width: v.LineWidth, join: rasterx.Round}, p.around(c, v.Rotation), func(a rasterx.Adder) {
			rasterx.AddEllipse(c.X, c.Y, v.Frame.Width/2, v.Frame.Height/2, 0, a)
		})
	case annotation.Highlight:
		p.fill(v.Color, p.around(v.Frame.Center(), v.Rotation), rectPath(v.Frame))
	case annotation.Arrow:
		p.arrow(v)
	case annotation.Stroke:
		p.freehand(v)
	case annotation.Badge:
		p.badge(v)
	case annotation.Text:
		p.text(v.Frame, v.Text, v.Color, v.Rotation)
	}
}

// ArrowHead returns the two barb tips of an arrow ending at a.End.
func ArrowHead(a annotation.Arrow) (geometry.Point, geometry.Point) {
	l := math.Max(ArrowHeadMinLen, ArrowHeadFactor*a.LineWidth)
	angle := math.Atan2(a.End.Y-a.Start.Y, a.End.X-a.Start.X)
	barb := func(da float64) geometry.Point {
		return geometry.Pt(a.End.X-l*math.Cos(angle+da), a.End.Y-l*math.Sin(angle+da))
	}
	return barb(-ArrowHeadAngle), barb(ArrowHeadAngle)
}

func (p *painter) arrow(a annotation.Arrow) {
	st := strokeStyle{width: a.LineWidth, cap: rasterx.RoundCap, join: rasterx.Round}
	p.stroke(a.Color, st, p.view, polyline([]geometry.Point{a.Start, a.End}, false))
	if a.Start == a.End {
		return
	}
	l, r := ArrowHead(a)
	p.stroke(a.Color, st, p.view, polyline([]geometry.Point{l, a.End, r}, false))
}

func (p *painter) freehand(s annotation.Stroke) {
	if len(s.Points) == 1 {
		q := s.Points[0]
		p.fill(s.Color, p.view, func(a rasterx.Adder) { rasterx.AddCircle(q.X, q.Y, s.LineWidth/2, a) })
		return
	}
	p.stroke(s.Color, strokeStyle{width: s.LineWidth, cap: rasterx.RoundCap, join: rasterx.Round}, p.view, polyline(s.Points, false))
}

func (p *painter) badge(b annotation.Badge) {
	p.fill(b.Color, p.view, func(a rasterx.Adder) {
		rasterx.AddCircle(b.Center.X, b.Center.Y, annotation.BadgeRadius, a)
	})
	label := strconv.Itoa(b.Number)
	w, _ := typeface.Measure(label, annotation.BadgeFontSize)
	m := typeface.LineMetrics(annotation.BadgeFontSize)
	origin := geometry.Pt(b.Center.X-w/2, b.Center.Y-m.Height/2)
	p.label(origin, label, annotation.BadgeFontSize, white)
}

// text draws a text annotation inside frame, padded and rotated about the
// frame center.
func (p *painter) text(frame geometry.Rect, s string, c color.NRGBA, angle float64) {
	origin := geometry.Pt(frame.X+annotation.TextPadX/2, frame.Y+annotation.TextPadY/2)
	if angle == 0 {
		p.label(origin, s, annotation.TextFontSize, c)
		return
	}
	size := annotation.TextFontSize * p.scale
	w := int(math.Ceil(frame.Width * p.scale))
	h := int(math.Ceil(frame.Height * p.scale))
	if w <= 0 || h <= 0 {
		return
	}
	tmp := image.NewRGBA(image.Rect(0, 0, w, h))
	baseline := annotation.TextPadY/2*p.scale + typeface.LineMetrics(size).Ascent
	if err := typeface.DrawString(tmp, annotation.TextPadX/2*p.scale, baseline, s, size, c); err != nil {
		zap.L().Warn("text draw failed", zap.Error(err))
		return
	}
	// tmp pixel (u,v) sits at document frame.Origin + (u,v)/scale before rotation.
	m := p.around(frame.Center(), angle).Translate(frame.X, frame.Y).Scale(1/p.scale, 1/p.scale)
	aff := f64.Aff3{m.A, m.C, m.E, m.B, m.D, m.F}
	xdraw.BiLinear.Transform(p.target(), aff, tmp, tmp.Bounds(), draw.Over, nil)
}

// label draws unrotated text with its top-left at origin.
func (p *painter) label(origin geometry.Point, s string, pt float64, c color.Color) {
	size := pt * p.scale
	x, y := p.view.Transform(origin.X, origin.Y)
	y += typeface.LineMetrics(size).Ascent
	if err := typeface.DrawString(p.target(), x, y, s, size, c); err != nil {
		zap.L().Warn("text draw failed", zap.Error(err))
	}
}
