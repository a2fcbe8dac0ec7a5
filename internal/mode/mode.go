// Package mode implements the three game modes. Each mode owns its entities
// and particle system, consumes the global peck counter through its own
// cursor and runs on the session's frame clock.
package mode

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/tomz197/peckplay/internal/asset"
	"github.com/tomz197/peckplay/internal/object"
)

// Kind identifies a game mode.
type Kind int

const (
	KindTarget Kind = iota
	KindFalling
	KindAmbient
)

var kindNames = [...]string{
	KindTarget:  "target",
	KindFalling: "falling",
	KindAmbient: "ambient",
}

// Kinds lists every mode in cycling order.
func Kinds() []Kind {
	return []Kind{KindTarget, KindFalling, KindAmbient}
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Title is the name shown to players.
func (k Kind) Title() string {
	switch k {
	case KindTarget:
		return "Peck the Bug"
	case KindFalling:
		return "Falling Fruit"
	case KindAmbient:
		return "Screensaver"
	}
	return k.String()
}

// Next returns the following mode, wrapping around.
func (k Kind) Next() Kind {
	return Kind((int(k) + 1) % len(kindNames))
}

// ParseKind parses a mode name case-insensitively.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown game mode %q (want %s)", s, strings.Join(kindNames[:], ", "))
}

// Tick is the input to one frame of a mode: the frame time and the current
// value of the global peck counter.
type Tick struct {
	Now  time.Time
	Peck uint64
}

// Mode is one game mode's state machine.
type Mode interface {
	Kind() Kind

	// Activate starts the mode's timers. Pecks up to t.Peck are treated as
	// already processed.
	Activate(t Tick)

	// Deactivate stops every timer and drops transient effects.
	Deactivate()

	// Update advances the mode one frame and reacts to a new peck.
	Update(t Tick) error

	// Draw renders the mode. ctx.Field is set by the mode.
	Draw(ctx object.DrawContext) error

	// Score returns the mode's counter shown in the HUD.
	Score() int

	// SetAssets replaces the image lists used for future spawns.
	SetAssets(a asset.GameAssets)
}

// New creates a mode of the given kind.
func New(kind Kind, assets asset.GameAssets, rng *rand.Rand) Mode {
	switch kind {
	case KindFalling:
		return NewFalling(assets, rng)
	case KindAmbient:
		return NewAmbient(rng)
	default:
		return NewTarget(assets, rng)
	}
}
