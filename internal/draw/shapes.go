package draw

import "math"

// RegularPolygon fills dst with the vertices of a regular polygon centred on
// (cx, cy), rotated by angle radians. radius is in logical X units; Y
// offsets are multiplied by aspect (see Canvas.Aspect) so the shape stays
// regular on screen. len(dst) is the vertex count.
func RegularPolygon(dst []Point, cx, cy, radius, angle, aspect float64) []Point {
	n := len(dst)
	for i := range dst {
		a := angle + float64(i)*2*math.Pi/float64(n)
		dst[i] = Point{
			X: cx + math.Cos(a)*radius,
			Y: cy + math.Sin(a)*radius*aspect,
		}
	}
	return dst
}

// Spoke returns the point at distance radius from (cx, cy) along angle,
// with the same aspect correction as RegularPolygon.
func Spoke(cx, cy, radius, angle, aspect float64) Point {
	return Point{
		X: cx + math.Cos(angle)*radius,
		Y: cy + math.Sin(angle)*radius*aspect,
	}
}
