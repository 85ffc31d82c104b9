// Package marker holds the state of a single annotation placed on a map.
package marker

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// DefaultCategory is the category new markers start in and the one a marker
// falls back to when its saved category or icon is no longer available.
const DefaultCategory = "Basic"

// Icon edge length in pixels. Markers keep this size regardless of zoom.
const (
	MinSize     = 10
	MaxSize     = 100
	DefaultSize = 25
)

var ErrInvalidColor = errors.New("invalid color")

// Point is a position in the background image's own pixel space.
type Point struct {
	X, Y float64
}

func (p Point) String() string {
	return fmt.Sprintf("(%.1f,%.1f)", p.X, p.Y)
}

// RGB is the color of a marker's name label.
type RGB struct {
	R, G, B uint8
}

// Hex formats the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) Color() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// ParseRGB accepts "#rrggbb" or "rrggbb".
func ParseRGB(s string) (RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Swatch is one entry of the label color palette.
type Swatch struct {
	Name string
	RGB  RGB
}

// Palette lists the label colors offered by the editor, in display order.
var Palette = []Swatch{
	{"black", RGB{0x00, 0x00, 0x00}},
	{"red", RGB{0xff, 0x00, 0x00}},
	{"blue", RGB{0x00, 0x00, 0xff}},
	{"green", RGB{0x00, 0x80, 0x00}},
	{"yellow", RGB{0xff, 0xff, 0x00}},
	{"white", RGB{0xff, 0xff, 0xff}},
	{"orange", RGB{0xff, 0xa5, 0x00}},
	{"pink", RGB{0xff, 0xc0, 0xcb}},
	{"purple", RGB{0x80, 0x00, 0x80}},
	{"lightGreen", RGB{0x90, 0xee, 0x90}},
}

func PaletteColor(i int) (RGB, bool) {
	if i < 0 || i >= len(Palette) {
		return RGB{}, false
	}
	return Palette[i].RGB, true
}

// SwatchName returns the palette name of c, or its hex form when c is not a
// palette color.
func SwatchName(c RGB) string {
	for _, s := range Palette {
		if s.RGB == c {
			return s.Name
		}
	}
	return c.Hex()
}

func ClampSize(n int) int {
	if n < MinSize {
		return MinSize
	}
	if n > MaxSize {
		return MaxSize
	}
	return n
}

// Marker is a pictorial annotation anchored to a point on the map.
type Marker struct {
	Position    Point
	Category    string
	IconIndex   int
	Name        string
	Description string
	NameVisible bool
	TextColor   RGB
}

// New returns a marker at pos using the first icon of the default category.
func New(pos Point) Marker {
	return Marker{
		Position:  pos,
		Category:  DefaultCategory,
		IconIndex: 0,
	}
}

// Label is the text shown next to the marker, empty when hidden.
func (m Marker) Label() string {
	if !m.NameVisible {
		return ""
	}
	return m.Name
}
