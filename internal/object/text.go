package object

import (
	"time"
	"unicode/utf8"
)

// FloatingText is a short label that rises from a point and disappears,
// e.g. the "+1" shown on a hit. Coordinates are viewport percent.
type FloatingText struct {
	X, Y     float64
	Value    string
	Rise     float64 // Percent per tick
	Lifetime time.Duration

	born time.Time
}

// NewFloatingText creates a label that lives for lifetime from now.
func NewFloatingText(x, y float64, value string, lifetime time.Duration, now time.Time) *FloatingText {
	return &FloatingText{X: x, Y: y, Value: value, Rise: 0.4, Lifetime: lifetime, born: now}
}

// Update moves the label up. Returns true once it has expired.
func (t *FloatingText) Update(ctx UpdateContext) (bool, error) {
	t.Y -= t.Rise
	return ctx.Now.Sub(t.born) >= t.Lifetime, nil
}

// Draw writes the label at its position. Text is laid over the rendered
// canvas, so the writer must mark the covered cells dirty.
func (t *FloatingText) Draw(ctx DrawContext) error {
	if t.Value == "" || ctx.Text == nil {
		return nil
	}
	x, y := ctx.Project(t.X, t.Y)
	col, row := ctx.Canvas.LogicalToTerminal(x, y)
	n := utf8.RuneCountInString(t.Value)
	col -= n / 2
	if col < 1 || row < 1 || col+n-1 > ctx.Canvas.TerminalWidth() || row > ctx.Canvas.TerminalHeight() {
		return nil
	}
	ctx.Text.WriteAt(col, row, t.Value)
	return nil
}
