// Package draw renders the play surface to an ANSI terminal using coloured
// half-block pixels.
package draw

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// RGB is a packed 24-bit colour. It is comparable, so the canvas can diff
// frames cheaply.
type RGB struct {
	R, G, B uint8
}

// Common colours.
var (
	White = RGB{255, 255, 255}
	Black = RGB{0, 0, 0}
)

// Hex parses "#rrggbb" (or "#rgb"). Invalid input yields white.
func Hex(s string) RGB {
	c, err := colorful.Hex(expandShortHex(s))
	if err != nil {
		return White
	}
	return FromColorful(c)
}

// FromColorful converts a go-colorful colour, clamping out-of-gamut values.
func FromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{r, g, b}
}

// Colorful converts back to a go-colorful colour.
func (c RGB) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Blend mixes c towards other by t in [0,1] (alpha compositing of other over c).
func (c RGB) Blend(other RGB, t float64) RGB {
	switch {
	case t <= 0:
		return c
	case t >= 1:
		return other
	}
	return FromColorful(c.Colorful().BlendRgb(other.Colorful(), t))
}

// Luminance returns the perceived lightness in [0,1], used to pick readable
// text colours over a background.
func (c RGB) Luminance() float64 {
	l, _, _ := c.Colorful().Lab()
	return l
}

// Hex formats the colour as "#rrggbb".
func (c RGB) Hex() string {
	return c.Colorful().Hex()
}

func expandShortHex(s string) string {
	if len(s) == 4 && s[0] == '#' {
		return string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	return s
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
