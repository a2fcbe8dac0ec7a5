// Package sensor turns raw touch, microphone and accelerometer streams into
// per-tick candidate spikes.
package sensor

import (
	"fmt"
	"strings"
)

// DetectionMode selects which modalities may produce candidate spikes.
type DetectionMode int

const (
	ModeTouch     DetectionMode = iota // Taps only
	ModeSound                          // Microphone amplitude only
	ModeVibration                      // Accelerometer spikes only
	ModeMixed                          // Sound + vibration
)

var detectionModeNames = [...]string{
	ModeTouch:     "TOUCH",
	ModeSound:     "SOUND",
	ModeVibration: "VIBRATION",
	ModeMixed:     "MIXED",
}

// String returns the canonical upper-case name of the mode.
func (m DetectionMode) String() string {
	if m < 0 || int(m) >= len(detectionModeNames) {
		return "UNKNOWN"
	}
	return detectionModeNames[m]
}

// Next cycles to the following mode, wrapping around.
func (m DetectionMode) Next() DetectionMode {
	return (m + 1) % DetectionMode(len(detectionModeNames))
}

// ParseDetectionMode parses a mode name (case-insensitive).
func ParseDetectionMode(s string) (DetectionMode, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range detectionModeNames {
		if n == name {
			return DetectionMode(i), nil
		}
	}
	return ModeTouch, fmt.Errorf("unknown detection mode %q", s)
}

// Source tags which modality produced a spike.
type Source int

const (
	SourceTouch Source = iota
	SourceSound
	SourceMotion
)

// String returns the lower-case source tag.
func (s Source) String() string {
	switch s {
	case SourceTouch:
		return "touch"
	case SourceSound:
		return "sound"
	case SourceMotion:
		return "motion"
	default:
		return "unknown"
	}
}

// DetectionConfig is the snapshot of detection settings read on every tick.
// The detection core never mutates it.
type DetectionConfig struct {
	SoundThreshold     float64       // Normalized level in (0,1]
	VibrationThreshold float64       // |z| acceleration in m/s²
	Mode               DetectionMode // Enabled modalities
	Debug              bool          // Taps count in every mode
}

// DefaultDetectionConfig mirrors the playground's out-of-the-box settings.
func DefaultDetectionConfig() DetectionConfig {
	return DetectionConfig{
		SoundThreshold:     0.2,
		VibrationThreshold: 5.0,
		Mode:               ModeMixed,
		Debug:              true,
	}
}

// Validate checks threshold ranges and the mode value.
func (c DetectionConfig) Validate() error {
	if c.SoundThreshold <= 0 || c.SoundThreshold > 1 {
		return fmt.Errorf("sound threshold %.3f outside (0,1]", c.SoundThreshold)
	}
	if c.VibrationThreshold <= 0 {
		return fmt.Errorf("vibration threshold %.3f must be positive", c.VibrationThreshold)
	}
	if c.Mode < ModeTouch || c.Mode > ModeMixed {
		return fmt.Errorf("invalid detection mode %d", c.Mode)
	}
	return nil
}

// SoundEnabled reports whether the mode listens to the microphone.
func (c DetectionConfig) SoundEnabled() bool {
	return c.Mode == ModeSound || c.Mode == ModeMixed
}

// MotionEnabled reports whether the mode listens to the accelerometer.
func (c DetectionConfig) MotionEnabled() bool {
	return c.Mode == ModeVibration || c.Mode == ModeMixed
}

// TouchEnabled reports whether taps are candidate spikes.
func (c DetectionConfig) TouchEnabled() bool {
	return c.Mode == ModeTouch || c.Debug
}
