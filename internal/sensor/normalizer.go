package sensor

import "math"

// levelScale maps the mean byte magnitude to an approximate 0..1 range.
const levelScale = 128.0

// Normalizer converts raw modality readings into candidate spikes.
// It is owned by the session loop and never touched from other goroutines.
type Normalizer struct {
	active bool // Play surface is the foreground context
}

// NewNormalizer creates an inactive normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// SetActive gates sound and motion polling (and taps) on foreground status.
func (n *Normalizer) SetActive(active bool) {
	n.active = active
}

// Active reports whether the play surface is in the foreground.
func (n *Normalizer) Active() bool {
	return n.active
}

// Touch reports whether a tap on the play surface is a candidate spike.
func (n *Normalizer) Touch(cfg DetectionConfig) bool {
	return n.active && cfg.TouchEnabled()
}

// PollSound reports whether the microphone should be read this tick.
func (n *Normalizer) PollSound(cfg DetectionConfig) bool {
	return n.active && cfg.SoundEnabled()
}

// PollMotion reports whether motion samples should be consumed this tick.
func (n *Normalizer) PollMotion(cfg DetectionConfig) bool {
	return n.active && cfg.MotionEnabled()
}

// Sound reports whether a normalized microphone level is a candidate spike.
func (n *Normalizer) Sound(cfg DetectionConfig, level float64) bool {
	return n.PollSound(cfg) && level > cfg.SoundThreshold
}

// Motion reports whether a z-axis acceleration sample is a candidate spike.
func (n *Normalizer) Motion(cfg DetectionConfig, z float64) bool {
	return n.PollMotion(cfg) && math.Abs(z) > cfg.VibrationThreshold
}

// NormalizeLevel returns the mean of a byte frequency buffer divided by 128.
func NormalizeLevel(freq []uint8) float64 {
	if len(freq) == 0 {
		return 0
	}
	sum := 0
	for _, v := range freq {
		sum += int(v)
	}
	return float64(sum) / float64(len(freq)) / levelScale
}
