// Package object holds the entities game modes simulate and draw: particles,
// falling items, the bug target and ambient orbs.
package object

import (
	"io"
	"time"

	"github.com/tomz197/peckplay/internal/draw"
)

// Field is the coordinate space an object lives in. Target and falling
// modes use percent of the viewport (100x100); the ambient mode uses a
// fixed pixel field.
type Field struct {
	Width  float64
	Height float64
}

// Percent is the viewport-percentage field.
var Percent = Field{Width: 100, Height: 100}

// UpdateContext provides all the information an object needs during one
// simulation tick. Physics advance per tick, not per second.
type UpdateContext struct {
	Now   time.Time
	Field Field
}

// DrawContext provides drawing resources for objects.
type DrawContext struct {
	Canvas *draw.Canvas
	Text   TextWriter // Text overlay drawn after the canvas
	Field  Field      // Field the drawn objects live in
	Now    time.Time

	// PixelSize converts sizes given in reference pixels to canvas units.
	PixelSize float64

	// ShiftX/ShiftY move everything drawn by a mode (screen shake), in
	// canvas units.
	ShiftX, ShiftY float64
}

// TextWriter is the overlay writer used by text objects (the session text
// layer or a *draw.ChunkWriter).
type TextWriter interface {
	io.Writer
	WriteAt(col, row int, s string)
}

// Project maps field coordinates to canvas logical coordinates.
func (ctx DrawContext) Project(x, y float64) (float64, float64) {
	sx := ctx.Canvas.LogicalWidth() / ctx.Field.Width
	sy := ctx.Canvas.LogicalHeight() / ctx.Field.Height
	return x*sx + ctx.ShiftX, y*sy + ctx.ShiftY
}

// ScaleX maps a horizontal field length to canvas units.
func (ctx DrawContext) ScaleX(l float64) float64 {
	return l * ctx.Canvas.LogicalWidth() / ctx.Field.Width
}

// Object is a drawable and updatable game entity.
type Object interface {
	// Update advances the object one tick. Returns true if the object should be removed.
	Update(ctx UpdateContext) (remove bool, err error)

	// Draw draws the object onto ctx.Canvas (shapes) or ctx.Text (labels).
	Draw(ctx DrawContext) error
}

// World is a list of objects plus a queue of objects spawned mid-update.
type World struct {
	Objects []Object
	toSpawn []Object
}

// Spawn queues an object to be added after the current update cycle.
func (w *World) Spawn(obj Object) {
	w.toSpawn = append(w.toSpawn, obj)
}

// Update advances every object, drops the ones that ask for removal and then
// adds everything spawned during the pass.
func (w *World) Update(ctx UpdateContext) error {
	kept := w.Objects[:0] // reuse backing array
	for _, obj := range w.Objects {
		remove, err := obj.Update(ctx)
		if err != nil {
			return err
		}
		if !remove {
			kept = append(kept, obj)
		}
	}
	clear(w.Objects[len(kept):])
	w.Objects = kept

	w.Objects = append(w.Objects, w.toSpawn...)
	clear(w.toSpawn)
	w.toSpawn = w.toSpawn[:0]
	return nil
}

// Draw draws every object in order.
func (w *World) Draw(ctx DrawContext) error {
	for _, obj := range w.Objects {
		if err := obj.Draw(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Reset removes every object and pending spawn.
func (w *World) Reset() {
	clear(w.Objects)
	w.Objects = w.Objects[:0]
	clear(w.toSpawn)
	w.toSpawn = w.toSpawn[:0]
}
