package object

import (
	"github.com/tomz197/peckplay/internal/draw"
	"github.com/tomz197/peckplay/internal/physics"
)

// Orb is one bouncing disc of the ambient screensaver. Coordinates are in
// the ambient field's units.
type Orb struct {
	X, Y   float64
	VX, VY float64
	Radius float64
	Color  draw.RGB
}

// Push adds an impulse to the orb's velocity and caps the resulting speed.
func (o *Orb) Push(ix, iy, maxSpeed float64) {
	o.VX += ix
	o.VY += iy
	physics.ClampSpeed(&o.VX, &o.VY, maxSpeed)
}

// Update moves the orb and reflects it off the field bounds.
func (o *Orb) Update(ctx UpdateContext) (bool, error) {
	o.X += o.VX
	o.Y += o.VY
	physics.Reflect(&o.X, &o.VX, 0, ctx.Field.Width)
	physics.Reflect(&o.Y, &o.VY, 0, ctx.Field.Height)
	return false, nil
}

// Draw renders the orb as a filled disc with a translucent white rim.
func (o *Orb) Draw(ctx DrawContext) error {
	x, y := ctx.Project(o.X, o.Y)
	r := ctx.ScaleX(o.Radius)
	ctx.Canvas.FillCircle(x, y, r, o.Color, 1)
	ctx.Canvas.StrokeCircle(x, y, r, draw.White, 0.5)
	return nil
}
