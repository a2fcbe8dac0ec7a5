package object

import (
	"math"
	"math/rand"

	"github.com/tomz197/peckplay/internal/draw"
)

// Falling item geometry and culling bounds, in viewport percent unless noted.
const (
	ItemSizePx   = 96.0  // Drawn diameter in reference pixels
	ItemSpawnY   = -15.0 // Spawn height, above the viewport
	ItemCullY    = 110.0 // Falling items at or below this are removed
	ItemCeilingY = -30.0 // Bounced items above this are removed
	BandTop      = 10.0  // Pecks affect items strictly inside (BandTop, BandBottom)
	BandBottom   = 90.0
	BounceLift   = 5.0 // Upward displacement of a bounced item
)

// FallingItem is a collectible drifting down the viewport.
type FallingItem struct {
	ID            uint64
	X, Y          float64 // Centre, viewport percent
	Speed         float64 // Percent per tick
	Rotation      float64 // Degrees
	RotationSpeed float64 // Degrees per tick
	Image         string
	Color         draw.RGB
	Broken        bool // Bounced at least once

	vertices []float64 // Outline radii relative to the nominal radius
}

// NewFallingItem creates an item at (x, y). rng shapes its outline.
func NewFallingItem(id uint64, x, y, speed, rotation, rotationSpeed float64, image string, col draw.RGB, rng *rand.Rand) *FallingItem {
	// Irregular 7-10 sided outline, radius varied by +-15%
	n := 7 + rng.Intn(4)
	vertices := make([]float64, n)
	for i := range vertices {
		vertices[i] = 0.85 + rng.Float64()*0.3
	}
	return &FallingItem{
		ID:            id,
		X:             x,
		Y:             y,
		Speed:         speed,
		Rotation:      rotation,
		RotationSpeed: rotationSpeed,
		Image:         image,
		Color:         col,
		vertices:      vertices,
	}
}

// InBand reports whether a peck can reach the item.
func (f *FallingItem) InBand() bool {
	return f.Y > BandTop && f.Y < BandBottom
}

// Bounce lifts the item and halves its fall speed.
func (f *FallingItem) Bounce() {
	f.Y -= BounceLift
	f.Speed *= 0.5
	f.Broken = true
}

// Offscreen reports whether the item has left the viewport for good.
func (f *FallingItem) Offscreen() bool {
	return f.Y >= ItemCullY || (f.Broken && f.Y < ItemCeilingY)
}

// Update advances the fall and spin. Returns true once the item is off screen.
func (f *FallingItem) Update(ctx UpdateContext) (bool, error) {
	f.Y += f.Speed
	f.Rotation += f.RotationSpeed
	return f.Offscreen(), nil
}

// Draw renders the item as a filled irregular outline with a stem.
func (f *FallingItem) Draw(ctx DrawContext) error {
	cx, cy := ctx.Project(f.X, f.Y)
	radius := ItemSizePx / 2 * ctx.PixelSize
	aspect := ctx.Canvas.Aspect()
	angle := f.Rotation * math.Pi / 180

	// Use reusable buffer from canvas to avoid per-frame allocations
	points := ctx.Canvas.BorrowPoints(len(f.vertices))
	n := float64(len(f.vertices))
	for i, dist := range f.vertices {
		points[i] = draw.Spoke(cx, cy, radius*dist, angle+float64(i)*2*math.Pi/n, aspect)
	}
	ctx.Canvas.DrawPolygon(points, f.Color, true)
	ctx.Canvas.DrawPolygon(points, f.Color.Blend(draw.Black, 0.35), false)

	top := draw.Spoke(cx, cy, radius*0.9, angle-math.Pi/2, aspect)
	tip := draw.Spoke(cx, cy, radius*1.25, angle-math.Pi/2, aspect)
	ctx.Canvas.DrawLine(top, tip, draw.Hex("#65A30D"))
	return nil
}
