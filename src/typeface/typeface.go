// Package typeface loads the bold UI face used for text annotations and badge
// numbers and measures strings set in it.
package typeface

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	parseOnce sync.Once
	parsed    *opentype.Font
	parseErr  error

	// mu guards faces and every use of a cached face; opentype faces keep
	// scratch buffers and are not safe for concurrent use.
	mu    sync.Mutex
	faces = map[float64]*cachedFace{}
)

type cachedFace struct {
	face    font.Face
	metrics Metrics
}

func boldFont() (*opentype.Font, error) {
	parseOnce.Do(func() {
		parsed, parseErr = opentype.Parse(gobold.TTF)
	})
	return parsed, parseErr
}

// Face returns a cached bold face at size points (72 DPI, so one point is one
// pixel). Sizes are rounded to a quarter point to bound the cache. Callers
// outside this package must not use the face concurrently with drawing.
func Face(size float64) (font.Face, error) {
	mu.Lock()
	defer mu.Unlock()
	c, err := lookup(size)
	if err != nil {
		return nil, err
	}
	return c.face, nil
}

// lookup must be called with mu held.
func lookup(size float64) (*cachedFace, error) {
	size = math.Round(size*4) / 4
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %v", size)
	}
	if c, ok := faces[size]; ok {
		return c, nil
	}
	f, err := boldFont()
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	m := face.Metrics()
	c := &cachedFace{
		face: face,
		metrics: Metrics{
			Ascent:  fixedToFloat(m.Ascent),
			Descent: fixedToFloat(m.Descent),
			Height:  fixedToFloat(m.Ascent + m.Descent),
		},
	}
	faces[size] = c
	return c, nil
}

// Metrics describes the vertical extent of a face in pixels.
type Metrics struct {
	Ascent  float64
	Descent float64
	Height  float64
}

// LineMetrics returns the metrics of the face at size.
func LineMetrics(size float64) Metrics {
	mu.Lock()
	c, err := lookup(size)
	mu.Unlock()
	if err != nil {
		return fallbackMetrics(size)
	}
	return c.metrics
}

func fallbackMetrics(size float64) Metrics {
	return Metrics{Ascent: size * 0.8, Descent: size * 0.2, Height: size * 1.2}
}

// Measure returns the advance width and line height of text at size. Multi-line
// text measures its widest line and stacks line heights.
func Measure(text string, size float64) (w, h float64) {
	lines := splitLines(text)
	mu.Lock()
	defer mu.Unlock()
	c, err := lookup(size)
	if err != nil {
		for _, line := range lines {
			w = math.Max(w, float64(len([]rune(line)))*size*0.6)
		}
		return math.Ceil(w), math.Ceil(fallbackMetrics(size).Height * float64(len(lines)))
	}
	for _, line := range lines {
		w = math.Max(w, fixedToFloat(font.MeasureString(c.face, line)))
	}
	return math.Ceil(w), math.Ceil(c.metrics.Height * float64(len(lines)))
}

// DrawString draws text at size with its first baseline at (x, y) in dst.
// Lines after the first are stacked one line height apart.
func DrawString(dst draw.Image, x, y float64, text string, size float64, c color.Color) error {
	mu.Lock()
	defer mu.Unlock()
	cf, err := lookup(size)
	if err != nil {
		return err
	}
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: cf.face}
	for i, line := range splitLines(text) {
		d.Dot = fixed.Point26_6{
			X: fixed.Int26_6(math.Round(x * 64)),
			Y: fixed.Int26_6(math.Round((y + float64(i)*cf.metrics.Height) * 64)),
		}
		d.DrawString(line)
	}
	return nil
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

func fixedToFloat[T ~int32](v T) float64 { return float64(v) / 64 }
