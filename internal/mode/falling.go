package mode

import (
	"math"
	"math/rand"
	"time"

	"github.com/tomz197/peckplay/internal/asset"
	"github.com/tomz197/peckplay/internal/draw"
	"github.com/tomz197/peckplay/internal/object"
	"github.com/tomz197/peckplay/internal/peck"
)

// Falling-collectible tuning.
const (
	FallingSpawnInterval = 1200 * time.Millisecond
	FallingShake         = 200 * time.Millisecond
	ExplodeChance        = 0.6
	fallingGravity       = 0.05
	shakePx              = 6.0
)

var (
	spawnX        = object.Range{Min: 10, Max: 90}
	fallSpeed     = object.Range{Min: 0.3, Max: 1.1}
	rotationSpeed = object.Range{Min: -2.5, Max: 2.5}
)

// Falling is the falling-collectible mode. Items rain down on a fixed
// cadence; every peck shakes the screen and either explodes or bounces each
// item in the peck band.
type Falling struct {
	rng    *rand.Rand
	assets asset.GameAssets
	cursor peck.Cursor

	items     []*object.FallingItem
	particles *object.Particles
	nextID    uint64
	spawned   int
	popped    int

	spawn *Interval
	shake *Delay
}

// NewFalling creates an empty falling-collectible mode.
func NewFalling(assets asset.GameAssets, rng *rand.Rand) *Falling {
	return &Falling{
		rng:       rng,
		assets:    assets,
		particles: object.NewParticles(rng, fallingGravity),
		spawn:     NewInterval(FallingSpawnInterval),
		shake:     NewDelay(FallingShake),
	}
}

func (f *Falling) Kind() Kind { return KindFalling }

// Activate starts the spawner.
func (f *Falling) Activate(t Tick) {
	f.cursor = peck.NewCursor(t.Peck)
	f.spawn.Start(t.Now)
}

// Deactivate stops the spawner and the shake, and clears the screen.
func (f *Falling) Deactivate() {
	f.spawn.Stop()
	f.shake.Stop()
	clear(f.items)
	f.items = f.items[:0]
	f.particles.Reset()
}

// Update spawns due items, resolves a new peck, then advances physics.
func (f *Falling) Update(t Tick) error {
	f.shake.Fired(t.Now) // Ends an elapsed shake

	for n := f.spawn.Due(t.Now); n > 0; n-- {
		f.spawnItem()
	}

	if f.cursor.Advance(t.Peck) {
		f.shake.Start(t.Now)
		f.resolvePeck()
	}

	ctx := object.UpdateContext{Now: t.Now, Field: object.Percent}
	kept := f.items[:0] // reuse backing array
	for _, item := range f.items {
		remove, err := item.Update(ctx)
		if err != nil {
			return err
		}
		if !remove {
			kept = append(kept, item)
		}
	}
	clear(f.items[len(kept):])
	f.items = kept

	_, err := f.particles.Update(ctx)
	return err
}

func (f *Falling) spawnItem() {
	f.nextID++
	f.spawned++
	image := asset.Pick(f.rng, f.assets.FruitImages)
	item := object.NewFallingItem(
		f.nextID,
		spawnX.Sample(f.rng),
		object.ItemSpawnY,
		fallSpeed.Sample(f.rng),
		f.rng.Float64()*360,
		rotationSpeed.Sample(f.rng),
		image,
		draw.FromColorful(asset.Tint(image)),
		f.rng,
	)
	f.items = append(f.items, item)
}

// resolvePeck explodes in-band items with ExplodeChance and bounces the rest.
func (f *Falling) resolvePeck() {
	kept := f.items[:0]
	for _, item := range f.items {
		if item.InBand() && f.rng.Float64() < ExplodeChance {
			f.popped++
			f.particles.Emit(item.X, item.Y, object.Burst{
				Count:   12,
				Speed:   object.Range{Min: 0.5, Max: 1.5},
				Palette: []draw.RGB{item.Color},
				Size:    object.Range{Min: 4, Max: 12},
				Decay:   object.Range{Min: 0.02, Max: 0.04},
			})
			continue
		}
		item.Bounce()
		kept = append(kept, item)
	}
	clear(f.items[len(kept):])
	f.items = kept
}

// Draw renders items and particles, offset while the screen shakes.
func (f *Falling) Draw(ctx object.DrawContext) error {
	ctx.Field = object.Percent
	if f.shake.Pending() {
		phase := float64(ctx.Now.UnixMilli()) * 0.25
		ctx.ShiftX += math.Sin(phase) * shakePx * ctx.PixelSize
		ctx.ShiftY += math.Cos(phase*1.3) * shakePx * ctx.PixelSize * ctx.Canvas.Aspect()
	}
	for _, item := range f.items {
		if err := item.Draw(ctx); err != nil {
			return err
		}
	}
	return f.particles.Draw(ctx)
}

// Score returns the number of items popped so far.
func (f *Falling) Score() int { return f.popped }

// SetAssets replaces the fruit images used for future spawns.
func (f *Falling) SetAssets(a asset.GameAssets) {
	f.assets = a
}

// Shaking reports whether the peck shake is running.
func (f *Falling) Shaking(now time.Time) bool {
	return f.shake.Remaining(now) > 0
}

// Items returns the live items.
func (f *Falling) Items() []*object.FallingItem {
	return f.items
}

// Spawned returns the number of items spawned since creation.
func (f *Falling) Spawned() int {
	return f.spawned
}
