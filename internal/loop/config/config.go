// Package config centralizes the tunable playground parameters.
package config

import "time"

// View resolution - the canvas coordinate space in logical units.
// Actual rendering scales to fit terminal size.
const (
	ViewWidth  = 160 // Logical viewport width
	ViewHeight = 100 // Logical viewport height (in sub-pixels, so 50 terminal rows)
)

// ReferenceWidthPx is the viewport width that pixel sizes (bug 128px, fruit
// 96px, particles) were designed for; sizes scale with the canvas.
const ReferenceWidthPx = 1280

// Max render resolution. Larger terminals get a centered, bordered canvas.
const (
	MaxTermWidth  = 200
	MaxTermHeight = 60
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Settings panel ranges.
const (
	SoundThresholdMin  = 0.01
	SoundThresholdMax  = 0.8
	SoundThresholdStep = 0.01

	VibrationThresholdMin  = 1.0
	VibrationThresholdMax  = 15.0
	VibrationThresholdStep = 0.5

	MaxThemeLength = 60
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)

// Debug overlay
const (
	DebugBarWidth = 20
	MotionBarMax  = 20.0 // |z| in m/s² that fills the motion bar
)
