package annotation

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Swatch is one named entry of the tool palette.
type Swatch struct {
	Name  string
	Color color.NRGBA
}

func rgb(r, g, b uint8) color.NRGBA { return color.NRGBA{R: r, G: g, B: b, A: 0xff} }

func gray(v uint8) color.NRGBA { return rgb(v, v, v) }

// Palette is laid out in rows of six: warm, green/blue, purple/pink, pastels
// and grays.
var Palette = []Swatch{
	{"red", rgb(255, 59, 48)},
	{"coral", rgb(255, 107, 107)},
	{"orange", rgb(255, 149, 0)},
	{"amber", rgb(255, 191, 0)},
	{"yellow", rgb(255, 204, 0)},
	{"lime", rgb(204, 230, 51)},

	{"green", rgb(40, 205, 65)},
	{"teal", rgb(89, 173, 196)},
	{"cyan", rgb(0, 204, 230)},
	{"blue", rgb(0, 122, 255)},
	{"indigo", rgb(88, 86, 214)},
	{"navy", rgb(51, 64, 140)},

	{"purple", rgb(175, 82, 222)},
	{"violet", rgb(140, 77, 230)},
	{"magenta", rgb(217, 51, 166)},
	{"pink", rgb(255, 45, 85)},
	{"rose", rgb(255, 102, 128)},
	{"brown", rgb(153, 77, 77)},

	{"pastel-red", rgb(255, 179, 179)},
	{"pastel-orange", rgb(255, 217, 179)},
	{"pastel-yellow", rgb(255, 255, 179)},
	{"pastel-green", rgb(179, 255, 191)},
	{"pastel-blue", rgb(179, 217, 255)},
	{"pastel-purple", rgb(217, 179, 255)},

	{"white", gray(255)},
	{"light-gray", gray(209)},
	{"gray", gray(166)},
	{"dim-gray", gray(115)},
	{"dark-gray", gray(64)},
	{"black", gray(0)},
}

// DefaultColor is the first palette entry.
var DefaultColor = Palette[0].Color

// ParseColor accepts a palette name or a #rrggbb / #rrggbbaa hex string.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, sw := range Palette {
		if sw.Name == s {
			return sw.Color, nil
		}
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 6 && len(hex) != 8) {
		return color.NRGBA{}, fmt.Errorf("unknown color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
