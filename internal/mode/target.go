package mode

import (
	"math/rand"
	"time"

	"github.com/tomz197/peckplay/internal/asset"
	"github.com/tomz197/peckplay/internal/draw"
	"github.com/tomz197/peckplay/internal/object"
	"github.com/tomz197/peckplay/internal/peck"
)

// Target-hit timing and layout.
const (
	TargetMoveInterval = 2500 * time.Millisecond
	TargetHitDelay     = 400 * time.Millisecond
	targetMin          = 15.0
	targetMax          = 85.0
	targetGravity      = 0.05
)

var targetBurst = object.Burst{
	Count: 20,
	Speed: object.Range{Min: 0.5, Max: 2.5},
	Palette: []draw.RGB{
		draw.Hex("#F59E0B"),
		draw.Hex("#FCD34D"),
		draw.Hex("#FFFFFF"),
		draw.Hex("#000000"),
		draw.Hex("#EF4444"),
	},
	Size:  object.Range{Min: 4, Max: 16},
	Decay: object.Range{Min: 0.02, Max: 0.05},
}

// Target is the target-hit mode: one bug that wanders on a timer and can be
// pecked once per appearance.
type Target struct {
	rng    *rand.Rand
	assets asset.GameAssets
	cursor peck.Cursor

	bug       *object.BugTarget
	particles *object.Particles
	labels    object.World

	move    *Interval
	recover *Delay
	score   int
}

// NewTarget creates a target-hit mode with a randomly placed bug.
func NewTarget(assets asset.GameAssets, rng *rand.Rand) *Target {
	t := &Target{
		rng:       rng,
		assets:    assets,
		particles: object.NewParticles(rng, targetGravity),
		move:      NewInterval(TargetMoveInterval),
		recover:   NewDelay(TargetHitDelay),
	}
	x, y := t.randomPosition()
	t.bug = object.NewBugTarget(x, y, asset.Pick(rng, assets.BugImages))
	return t
}

func (t *Target) Kind() Kind { return KindTarget }

// Activate starts the wander timer.
func (t *Target) Activate(tick Tick) {
	t.cursor = peck.NewCursor(tick.Peck)
	t.move.Start(tick.Now)
}

// Deactivate stops both timers. A bug caught mid-hit is reset so the mode
// resumes idle.
func (t *Target) Deactivate() {
	t.move.Stop()
	if t.recover.Pending() {
		t.recover.Stop()
		t.respawn()
	}
	t.particles.Reset()
	t.labels.Reset()
}

// Update runs the timers, then reacts to a new peck.
func (t *Target) Update(tick Tick) error {
	if t.move.Due(tick.Now) > 0 && !t.bug.Hit {
		t.bug.X, t.bug.Y = t.randomPosition()
	}
	if t.recover.Fired(tick.Now) {
		t.respawn()
	}

	// Pecks during the hit window still advance the cursor.
	if t.cursor.Advance(tick.Peck) && !t.bug.Hit {
		t.score++
		t.bug.MarkHit(tick.Now)
		t.particles.Emit(t.bug.X, t.bug.Y, targetBurst)
		t.labels.Spawn(object.NewFloatingText(t.bug.X, t.bug.Y-8, "+1", 600*time.Millisecond, tick.Now))
		t.recover.Start(tick.Now)
	}

	ctx := object.UpdateContext{Now: tick.Now, Field: object.Percent}
	if _, err := t.particles.Update(ctx); err != nil {
		return err
	}
	return t.labels.Update(ctx)
}

func (t *Target) respawn() {
	x, y := t.randomPosition()
	t.bug.Reset(x, y, asset.Pick(t.rng, t.assets.BugImages))
}

func (t *Target) randomPosition() (float64, float64) {
	span := targetMax - targetMin
	return targetMin + t.rng.Float64()*span, targetMin + t.rng.Float64()*span
}

// Draw renders the bug, its burst and the score labels.
func (t *Target) Draw(ctx object.DrawContext) error {
	ctx.Field = object.Percent
	if err := t.bug.Draw(ctx); err != nil {
		return err
	}
	if err := t.particles.Draw(ctx); err != nil {
		return err
	}
	return t.labels.Draw(ctx)
}

func (t *Target) Score() int { return t.score }

// SetAssets replaces the bug images. The current bug keeps its image until
// it next respawns.
func (t *Target) SetAssets(a asset.GameAssets) {
	t.assets = a
}

// Bug returns the current target.
func (t *Target) Bug() *object.BugTarget {
	return t.bug
}

// Particles returns the live burst particles.
func (t *Target) Particles() []object.Particle {
	return t.particles.Items()
}
