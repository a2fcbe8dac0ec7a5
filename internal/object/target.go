package object

import (
	"math"
	"time"

	"github.com/tomz197/peckplay/internal/asset"
	"github.com/tomz197/peckplay/internal/draw"
)

// Bug geometry and hit animation.
const (
	BugSizePx      = 128.0 // Drawn width in reference pixels
	bugHitDuration = 300 * time.Millisecond
	bugBobPeriod   = 3 * time.Second
	bugBobPx       = 10.0
	bugLegs        = 3 // Per side
)

var pingColor = draw.Hex("#FACC15")

// BugTarget is the single target of the target-hit mode.
type BugTarget struct {
	X, Y  float64 // Centre, viewport percent
	Image string
	Hit   bool
	HitAt time.Time

	body draw.RGB
}

// NewBugTarget creates an idle target.
func NewBugTarget(x, y float64, image string) *BugTarget {
	b := &BugTarget{X: x, Y: y}
	b.SetImage(image)
	return b
}

// SetImage swaps the target image and its body tint.
func (b *BugTarget) SetImage(image string) {
	b.Image = image
	b.body = draw.FromColorful(asset.Tint(image))
}

// MarkHit starts the hit animation.
func (b *BugTarget) MarkHit(now time.Time) {
	b.Hit = true
	b.HitAt = now
}

// Reset returns the target to idle at a new position and image.
func (b *BugTarget) Reset(x, y float64, image string) {
	b.X, b.Y = x, y
	b.Hit = false
	b.HitAt = time.Time{}
	b.SetImage(image)
}

// Update is a no-op; the owning mode drives the target's timers.
func (b *BugTarget) Update(ctx UpdateContext) (bool, error) {
	return false, nil
}

// Draw renders the bug. An idle bug bobs up and down; a hit bug grows
// and fades out behind an expanding ping ring.
func (b *BugTarget) Draw(ctx DrawContext) error {
	cx, cy := ctx.Project(b.X, b.Y)
	scale, alpha := 1.0, 1.0
	var progress float64

	if b.Hit {
		progress = math.Min(float64(ctx.Now.Sub(b.HitAt))/float64(bugHitDuration), 1)
		scale = 1 + 0.5*progress
		alpha = 1 - progress
	} else {
		phase := float64(ctx.Now.UnixNano()%int64(bugBobPeriod)) / float64(bugBobPeriod)
		cy += math.Sin(phase*2*math.Pi) * bugBobPx * ctx.PixelSize * ctx.Canvas.Aspect()
	}

	radius := BugSizePx / 2 * ctx.PixelSize * scale
	if alpha > 0 {
		b.drawBody(ctx, cx, cy, radius, alpha)
	}
	if b.Hit {
		ring := radius * (0.6 + progress)
		ctx.Canvas.FillCircle(cx, cy, radius*0.6, pingColor, 0.75*(1-progress))
		ctx.Canvas.StrokeCircle(cx, cy, ring, pingColor, 1-progress)
	}
	return nil
}

func (b *BugTarget) drawBody(ctx DrawContext, cx, cy, radius, alpha float64) {
	aspect := ctx.Canvas.Aspect()
	dark := b.body.Blend(draw.Black, 0.6)

	// Legs: three per side, fanned out from the body
	for i := 0; i < bugLegs; i++ {
		spread := (float64(i) - 1) * 0.45
		for _, side := range []float64{0, math.Pi} {
			a := side + spread
			from := draw.Spoke(cx, cy, radius*0.3, a, aspect)
			to := draw.Spoke(cx, cy, radius*0.75, a, aspect)
			ctx.Canvas.DrawLine(from, to, dark)
		}
	}

	body := radius * 0.45
	head := radius * 0.22
	ctx.Canvas.FillCircle(cx, cy+body*0.2*aspect, body, b.body, alpha)
	ctx.Canvas.FillCircle(cx, cy-body*aspect, head, dark, alpha)

	// Spots
	ctx.Canvas.FillCircle(cx-body*0.4, cy, body*0.18, dark, alpha)
	ctx.Canvas.FillCircle(cx+body*0.4, cy+body*0.4*aspect, body*0.18, dark, alpha)
}
