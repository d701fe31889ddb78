package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"runtime"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

const iconSize = 32

var (
	iconFrame  = color.NRGBA{R: 0x00, G: 0x78, B: 0xd4, A: 0xff}
	iconMarker = color.NRGBA{R: 0xff, G: 0x3b, B: 0x30, A: 0xff}
)

// renderIcon draws the tray glyph: a dashed capture frame with a badge in
// its lower right corner.
func renderIcon() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	scanner := rasterx.NewScannerGV(iconSize, iconSize, img, img.Bounds())

	frame := rasterx.NewDasher(iconSize, iconSize, scanner)
	frame.SetStroke(fixed.Int26_6(2.5*64), 4<<6, rasterx.ButtCap, nil, rasterx.FlatGap, rasterx.Miter, []float64{4, 2.5}, 0)
	rasterx.AddRect(4, 4, 24, 20, 0, frame)
	frame.SetColor(iconFrame)
	frame.Draw()

	badge := rasterx.NewFiller(iconSize, iconSize, scanner)
	rasterx.AddCircle(23, 23, 7, badge)
	badge.SetColor(iconMarker)
	badge.Draw()

	mark := rasterx.NewStroker(iconSize, iconSize, scanner)
	mark.SetStroke(2<<6, 4<<6, rasterx.RoundCap, nil, rasterx.RoundGap, rasterx.Round)
	mark.Start(rasterx.ToFixedP(23, 19.5))
	mark.Line(rasterx.ToFixedP(23, 26.5))
	mark.Stop(false)
	mark.SetColor(color.White)
	mark.Draw()
	return img
}

// iconPNG returns the glyph encoded as PNG.
func iconPNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, renderIcon()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// wrapICO packs a PNG into a single-image ICO container, which is what the
// Windows tray expects.
func wrapICO(pngData []byte, size int) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	_ = binary.Write(&buf, le, [3]uint16{0, 1, 1})
	dim := uint8(size)
	if size >= 256 {
		dim = 0
	}
	buf.Write([]byte{dim, dim, 0, 0})
	_ = binary.Write(&buf, le, [2]uint16{1, 32})
	_ = binary.Write(&buf, le, [2]uint32{uint32(len(pngData)), 6 + 16})
	buf.Write(pngData)
	return buf.Bytes()
}

// Icon returns the tray icon in the format the platform tray accepts.
func Icon() ([]byte, error) {
	data, err := iconPNG()
	if err != nil {
		return nil, err
	}
	if runtime.GOOS == "windows" {
		return wrapICO(data, iconSize), nil
	}
	return data, nil
}
