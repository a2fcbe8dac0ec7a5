package object

import (
	"math"
	"math/rand"

	"github.com/tomz197/peckplay/internal/draw"
)

// Range is a closed interval sampled uniformly.
type Range struct {
	Min, Max float64
}

// Sample draws a value in [Min, Max).
func (r Range) Sample(rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Particle is a short-lived visual effect. Position is in viewport percent,
// velocity is per tick and size is in reference pixels.
type Particle struct {
	ID     uint64
	X, Y   float64
	VX, VY float64
	Color  draw.RGB
	Size   float64
	Life   float64 // 1 when emitted, removed at <= 0
	Decay  float64 // Life lost per tick
}

// Emitter creates particle bursts. Given the same seed it produces the same
// particles.
type Emitter struct {
	rng    *rand.Rand
	nextID uint64
}

// NewEmitter creates an emitter drawing from rng.
func NewEmitter(rng *rand.Rand) *Emitter {
	return &Emitter{rng: rng}
}

// Burst describes one emission.
type Burst struct {
	Count   int
	Speed   Range
	Palette []draw.RGB
	Size    Range
	Decay   Range
}

// Emit appends burst.Count particles at origin to dst. Each particle gets a
// uniformly random direction and independent speed, colour, size and decay.
func (e *Emitter) Emit(dst []Particle, origin draw.Point, burst Burst) []Particle {
	for i := 0; i < burst.Count; i++ {
		angle := e.rng.Float64() * 2 * math.Pi
		speed := burst.Speed.Sample(e.rng)

		col := draw.White
		if len(burst.Palette) > 0 {
			col = burst.Palette[e.rng.Intn(len(burst.Palette))]
		}

		e.nextID++
		dst = append(dst, Particle{
			ID:    e.nextID,
			X:     origin.X,
			Y:     origin.Y,
			VX:    math.Cos(angle) * speed,
			VY:    math.Sin(angle) * speed,
			Color: col,
			Size:  burst.Size.Sample(e.rng),
			Life:  1,
			Decay: burst.Decay.Sample(e.rng),
		})
	}
	return dst
}

// Step advances every particle one tick in place and drops the dead ones.
func Step(ps []Particle, gravity float64) []Particle {
	kept := ps[:0] // reuse backing array
	for _, p := range ps {
		p.X += p.VX
		p.Y += p.VY
		p.VY += gravity
		p.Life -= p.Decay
		if p.Life <= 0 {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// Particles is the particle engine instance owned by one game mode.
type Particles struct {
	emitter *Emitter
	gravity float64
	items   []Particle
}

// NewParticles creates an empty particle system.
func NewParticles(rng *rand.Rand, gravity float64) *Particles {
	return &Particles{emitter: NewEmitter(rng), gravity: gravity}
}

// Emit adds a burst at (x, y).
func (p *Particles) Emit(x, y float64, burst Burst) {
	p.items = p.emitter.Emit(p.items, draw.Point{X: x, Y: y}, burst)
}

// Len returns the number of live particles.
func (p *Particles) Len() int {
	return len(p.items)
}

// Items returns the live particles. The slice is only valid until the next
// Update or Emit.
func (p *Particles) Items() []Particle {
	return p.items
}

// Reset drops every particle.
func (p *Particles) Reset() {
	p.items = p.items[:0]
}

// Update steps the system. A particle system is never removed.
func (p *Particles) Update(ctx UpdateContext) (bool, error) {
	p.items = Step(p.items, p.gravity)
	return false, nil
}

// Draw renders each particle as a disc that fades with its remaining life.
func (p *Particles) Draw(ctx DrawContext) error {
	for i := range p.items {
		pt := &p.items[i]
		x, y := ctx.Project(pt.X, pt.Y)
		r := pt.Size / 2 * ctx.PixelSize
		ctx.Canvas.FillCircle(x, y, r, pt.Color, math.Min(pt.Life, 1))
	}
	return nil
}
