// Package physics provides distance, impulse and boundary utilities.
package physics

import "math"

// DistanceSquared returns the squared distance from (x1, y1) to (x2, y2).
func DistanceSquared(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

// Within reports whether (px, py) lies strictly inside radius of (cx, cy).
func Within(px, py, cx, cy, radius float64) bool {
	return DistanceSquared(px, py, cx, cy) < radius*radius
}

// RepelImpulse returns the velocity change for a body at (px, py) caused by
// a disturbance at (ox, oy). Inside radius the magnitude is
// (radius - d) / falloff, pointing away from the disturbance; at or beyond
// radius it is zero. A body exactly on the disturbance point is pushed along
// angle (radians) with the maximum magnitude.
func RepelImpulse(px, py, ox, oy, radius, falloff, angle float64) (ix, iy float64) {
	if !Within(px, py, ox, oy, radius) || falloff <= 0 {
		return 0, 0
	}
	dx := px - ox
	dy := py - oy
	d := math.Sqrt(DistanceSquared(px, py, ox, oy))

	force := (radius - d) / falloff
	if d == 0 {
		return math.Cos(angle) * force, math.Sin(angle) * force
	}
	return dx / d * force, dy / d * force
}

// Reflect keeps a coordinate inside [lo, hi]. When the position crosses a
// bound it is clamped and the velocity is pointed back inside. Returns true
// when a bounce happened.
func Reflect(pos, vel *float64, lo, hi float64) bool {
	switch {
	case *pos < lo:
		*pos = lo
		*vel = math.Abs(*vel)
		return true
	case *pos > hi:
		*pos = hi
		*vel = -math.Abs(*vel)
		return true
	}
	return false
}

// ClampSpeed scales (vx, vy) down so its magnitude does not exceed max.
func ClampSpeed(vx, vy *float64, max float64) {
	s := math.Hypot(*vx, *vy)
	if s > max && s > 0 {
		k := max / s
		*vx *= k
		*vy *= k
	}
}
