// Package compositor rasterizes annotations over a captured image. Compose
// builds the exported raster; RenderFrame paints the interactive overlay with
// its chrome. Both go through the same painter so rotation and stroke geometry
// match between preview and output.
package compositor

import (
	"errors"
	"image"
	"image/draw"

	"github.com/srwiley/rasterx"

	"screen-annotate/src/annotation"
	"screen-annotate/src/geometry"
)

// ErrOrigin is returned when a destination image does not start at (0,0).
var ErrOrigin = errors.New("compositor: destination must have its origin at (0,0)")

// Compose returns base with items, and draft when non-nil, painted on top.
// Item geometry is in screen points over sel; it is shifted to the selection
// origin and scaled by the ratio of base pixels to selection points.
func Compose(base image.Image, sel geometry.Rect, items annotation.Collection, draft annotation.Annotation) *image.RGBA {
	b := base.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), base, b.Min, draw.Src)

	sx, sy := ExportScale(b, sel)
	view := rasterx.Identity.Scale(sx, sy).Translate(-sel.X, -sel.Y)
	p := newPainter(dst, view, sx)
	p.document(items, draft)
	return dst
}

// ExportScale returns pixels per point of base over sel on each axis.
func ExportScale(base image.Rectangle, sel geometry.Rect) (sx, sy float64) {
	sx, sy = 1, 1
	if sel.Width > 0 && base.Dx() > 0 {
		sx = float64(base.Dx()) / sel.Width
	}
	if sel.Height > 0 && base.Dy() > 0 {
		sy = float64(base.Dy()) / sel.Height
	}
	return sx, sy
}

// document paints items in annotation.PaintOrder, then the draft.
func (p *painter) document(items annotation.Collection, draft annotation.Annotation) {
	for _, k := range annotation.PaintOrder() {
		for _, a := range items.Items(k) {
			p.annotation(a)
		}
	}
	if draft != nil {
		p.annotation(draft)
	}
}
