package sensor

// MicrophoneConfig selects the capture device and buffer geometry.
type MicrophoneConfig struct {
	DeviceID        int     // -1 for the system default input
	SampleRate      float64 // Hz; 0 uses the device default
	FramesPerBuffer int     // Frames delivered per callback
	FFTSize         int     // Analyser window length
}

// DefaultMicrophoneConfig returns the default capture settings.
func DefaultMicrophoneConfig() MicrophoneConfig {
	return MicrophoneConfig{
		DeviceID:        -1,
		SampleRate:      0,
		FramesPerBuffer: 512,
		FFTSize:         DefaultFFTSize,
	}
}
