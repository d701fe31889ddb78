// Package screenshot grabs pixels from the attached displays.
package screenshot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/kbinani/screenshot"

	"screen-annotate/src/geometry"
)

// ErrNoDisplay is returned when no active display is attached.
var ErrNoDisplay = errors.New("no active displays found")

// Capture captures the entire virtual screen across all active displays.
func Capture() (*image.RGBA, error) {
	union, err := VirtualBounds()
	if err != nil {
		return nil, err
	}
	return screenshot.CaptureRect(union)
}

// VirtualBounds returns the union of all active display bounds.
func VirtualBounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, ErrNoDisplay
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return union, nil
}

// PixelRect converts a region in screen points to whole pixels, growing it
// outward so no selected point is lost.
func PixelRect(r geometry.Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.MinX())), int(math.Floor(r.MinY())),
		int(math.Ceil(r.MaxX())), int(math.Ceil(r.MaxY())),
	)
}

// CaptureRegion captures r from the screen.
func CaptureRegion(r geometry.Rect) (*image.RGBA, error) {
	bounds := PixelRect(r)
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", bounds.Dx(), bounds.Dy())
	}
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture region: %w", err)
	}
	return img, nil
}

// Crop copies r out of a previously captured frame whose top-left pixel sat
// at origin on screen. It returns nil when r misses the frame.
func Crop(frame image.Image, origin image.Point, r geometry.Rect) *image.RGBA {
	want := PixelRect(r).Sub(origin).Add(frame.Bounds().Min).Intersect(frame.Bounds())
	if want.Empty() {
		return nil
	}
	out := image.NewRGBA(image.Rect(0, 0, want.Dx(), want.Dy()))
	for y := 0; y < want.Dy(); y++ {
		for x := 0; x < want.Dx(); x++ {
			out.Set(x, y, frame.At(want.Min.X+x, want.Min.Y+y))
		}
	}
	return out
}

// Capturer produces the base image for a selected region. A nil image with a
// nil error means nothing was captured.
type Capturer interface {
	CaptureRegion(ctx context.Context, r geometry.Rect) (image.Image, error)
}

// Live captures from the screen at call time.
type Live struct{}

func (Live) CaptureRegion(ctx context.Context, r geometry.Rect) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return CaptureRegion(r)
}

// Frozen crops from a frame grabbed before the overlay appeared, so the overlay
// itself never shows up in the result.
type Frozen struct {
	Frame  image.Image
	Origin image.Point
}

func (f Frozen) CaptureRegion(ctx context.Context, r geometry.Rect) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Frame == nil {
		return nil, nil
	}
	if img := Crop(f.Frame, f.Origin, r); img != nil {
		return img, nil
	}
	return nil, nil
}
