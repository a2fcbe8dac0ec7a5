package mode

import (
	"math"
	"math/rand"

	"github.com/tomz197/peckplay/internal/asset"
	"github.com/tomz197/peckplay/internal/draw"
	"github.com/tomz197/peckplay/internal/object"
	"github.com/tomz197/peckplay/internal/peck"
	"github.com/tomz197/peckplay/internal/physics"
)

// Ambient field and disturbance tuning.
const (
	AmbientWidth   = 1280.0
	AmbientHeight  = 800.0
	AmbientOrbs    = 40
	DisturbRadius  = 400.0 // Orbs farther than this from a peck are unaffected
	DisturbFalloff = 20.0  // Impulse is (DisturbRadius - d) / DisturbFalloff
	MaxOrbSpeed    = 20.0
)

var (
	AmbientField = object.Field{Width: AmbientWidth, Height: AmbientHeight}

	orbPalette = []draw.RGB{
		draw.Hex("#F59E0B"),
		draw.Hex("#EF4444"),
		draw.Hex("#10B981"),
		draw.Hex("#3B82F6"),
		draw.Hex("#8B5CF6"),
	}

	orbRadius = object.Range{Min: 10, Max: 30}
	orbSpeed  = object.Range{Min: -1.5, Max: 1.5}
)

// Ambient is the screensaver: a pool of orbs bouncing around a fixed field.
// A peck disturbs the orbs near a random point.
type Ambient struct {
	rng    *rand.Rand
	cursor peck.Cursor
	orbs   []*object.Orb
	grid   *physics.SpatialGrid

	disturbances int
	lastX, lastY float64 // Most recent disturbance point
}

// NewAmbient creates the orb pool.
func NewAmbient(rng *rand.Rand) *Ambient {
	a := &Ambient{
		rng:  rng,
		orbs: make([]*object.Orb, AmbientOrbs),
		grid: physics.NewSpatialGrid(AmbientWidth, AmbientHeight, DisturbRadius),
	}
	for i := range a.orbs {
		a.orbs[i] = &object.Orb{
			X:      rng.Float64() * AmbientWidth,
			Y:      rng.Float64() * AmbientHeight,
			VX:     orbSpeed.Sample(rng),
			VY:     orbSpeed.Sample(rng),
			Radius: orbRadius.Sample(rng),
			Color:  orbPalette[rng.Intn(len(orbPalette))],
		}
	}
	return a
}

func (a *Ambient) Kind() Kind { return KindAmbient }

// Activate syncs the peck cursor. The ambient mode has no timers.
func (a *Ambient) Activate(t Tick) {
	a.cursor = peck.NewCursor(t.Peck)
}

// Deactivate is a no-op: orbs only move while Update is called.
func (a *Ambient) Deactivate() {}

// Update applies a new peck's disturbance, then moves the orbs.
func (a *Ambient) Update(t Tick) error {
	if a.cursor.Advance(t.Peck) {
		a.Disturb(a.rng.Float64()*AmbientWidth, a.rng.Float64()*AmbientHeight)
	}

	ctx := object.UpdateContext{Now: t.Now, Field: AmbientField}
	for _, o := range a.orbs {
		if _, err := o.Update(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Disturb pushes every orb within DisturbRadius of (x, y) away from it.
func (a *Ambient) Disturb(x, y float64) {
	a.disturbances++
	a.lastX, a.lastY = x, y

	a.grid.Clear()
	for i, o := range a.orbs {
		a.grid.Insert(o.X, o.Y, i)
	}
	a.grid.QueryAround(x, y, func(i int) bool {
		o := a.orbs[i]
		if !physics.Within(o.X, o.Y, x, y, DisturbRadius) {
			return false
		}
		ix, iy := physics.RepelImpulse(o.X, o.Y, x, y, DisturbRadius, DisturbFalloff, a.rng.Float64()*2*math.Pi)
		if ix != 0 || iy != 0 {
			o.Push(ix, iy, MaxOrbSpeed)
		}
		return false
	})
}

// Draw renders the orbs.
func (a *Ambient) Draw(ctx object.DrawContext) error {
	ctx.Field = AmbientField
	for _, o := range a.orbs {
		if err := o.Draw(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Score returns the number of disturbances.
func (a *Ambient) Score() int { return a.disturbances }

// SetAssets is a no-op; orbs use a fixed palette.
func (a *Ambient) SetAssets(asset.GameAssets) {}

// Orbs returns the orb pool.
func (a *Ambient) Orbs() []*object.Orb {
	return a.orbs
}

// LastDisturbance returns the most recent disturbance point.
func (a *Ambient) LastDisturbance() (x, y float64) {
	return a.lastX, a.lastY
}
