// Package palette maps object classes and instances to display colors.
package palette

import (
	"image/color"
	"strconv"

	"gonum.org/v1/plot/palette"

	"github.com/wingrune/objectmap/geometry"
)

// ByClass maps a stringified class id to its display color. Keys are the
// decimal form of the class id, e.g. "12".
type ByClass map[string]geometry.Color

// ForClass looks up the color for a class id.
func (p ByClass) ForClass(class int) (geometry.Color, bool) {
	c, ok := p[strconv.Itoa(class)]
	return c, ok
}

// EvenlySpaced returns n visually distinct colors drawn from a rainbow
// sweep of the hue circle. The result is deterministic for a given n.
func EvenlySpaced(n int) []geometry.Color {
	if n <= 0 {
		return nil
	}
	out := make([]geometry.Color, 0, n)
	for _, c := range palette.Rainbow(n, palette.Red, palette.Magenta, 1, 1, 1).Colors() {
		out = append(out, fromColor(c))
	}
	return out
}

// fromColor converts a stdlib color into a unit-range RGB triple.
func fromColor(c color.Color) geometry.Color {
	r, g, b, _ := c.RGBA()
	return geometry.Color{
		float64(r) / 0xffff,
		float64(g) / 0xffff,
		float64(b) / 0xffff,
	}
}
