package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tomz197/peckplay/internal/asset"
	"github.com/tomz197/peckplay/internal/mode"
	"github.com/tomz197/peckplay/internal/sensor"
)

// DefaultSettingsFile is looked up in the working directory when no path is given.
const DefaultSettingsFile = "peckplay.yaml"

// Settings is the playground configuration loaded from YAML.
type Settings struct {
	Detection DetectionSettings `yaml:"detection"`
	Game      GameSettings      `yaml:"game"`
	Assets    AssetSettings     `yaml:"assets"`
	Audio     AudioSettings     `yaml:"audio"`
	Motion    MotionSettings    `yaml:"motion"`
	Generator GeneratorSettings `yaml:"generator"`
	Log       LogSettings       `yaml:"log"`

	// Overrides lists the PECK_* variables applied on top of the file.
	Overrides []string `yaml:"-"`
}

// DetectionSettings mirrors sensor.DetectionConfig in file form.
type DetectionSettings struct {
	Mode               string  `yaml:"mode"`                // TOUCH, SOUND, VIBRATION or MIXED
	SoundThreshold     float64 `yaml:"sound_threshold"`     // Normalized level, (0,1]
	VibrationThreshold float64 `yaml:"vibration_threshold"` // |z| in m/s²
	Debug              bool    `yaml:"debug"`               // Taps count in every mode
}

// GameSettings selects the game mode shown at startup.
type GameSettings struct {
	Mode string `yaml:"mode"` // target, falling or ambient
}

// AssetSettings overrides the built-in image lists and background.
type AssetSettings struct {
	BugImages   []string `yaml:"bug_images"`
	FruitImages []string `yaml:"fruit_images"`
	Background  string   `yaml:"background"` // Preset name
}

// AudioSettings configures microphone capture and feedback playback.
type AudioSettings struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio index, -1 for default
	SampleRate      float64 `yaml:"sample_rate"`       // 0 uses the device default
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Power of two
	Feedback        bool    `yaml:"feedback"`          // Play feedback tones
	Volume          float64 `yaml:"volume"`            // Feedback gain, 0..1
}

// MotionSettings configures the websocket endpoint motion remotes push to.
type MotionSettings struct {
	Addr string `yaml:"addr"`
	Path string `yaml:"path"`
}

// GeneratorSettings configures the theme generation service.
type GeneratorSettings struct {
	BaseURL string        `yaml:"base_url"` // Empty disables theme generation
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// LogSettings configures the logger.
type LogSettings struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // Empty logs to stderr
}

// DefaultSettings returns the out-of-the-box playground settings.
func DefaultSettings() Settings {
	det := sensor.DefaultDetectionConfig()
	mic := sensor.DefaultMicrophoneConfig()
	motion := sensor.DefaultMotionConfig()
	return Settings{
		Detection: DetectionSettings{
			Mode:               det.Mode.String(),
			SoundThreshold:     det.SoundThreshold,
			VibrationThreshold: det.VibrationThreshold,
			Debug:              det.Debug,
		},
		Game: GameSettings{Mode: "target"},
		Assets: AssetSettings{
			Background: asset.DefaultBackground().Name,
		},
		Audio: AudioSettings{
			InputDevice:     mic.DeviceID,
			SampleRate:      mic.SampleRate,
			FramesPerBuffer: mic.FramesPerBuffer,
			Feedback:        true,
			Volume:          1.0,
		},
		Motion: MotionSettings{
			Addr: motion.Addr,
			Path: motion.Path,
		},
		Generator: GeneratorSettings{
			Timeout: 90 * time.Second,
		},
		Log: LogSettings{
			Level: "info",
		},
	}
}

// LoadSettings loads settings from a YAML file. With an empty path it looks
// for DefaultSettingsFile and falls back to the defaults when it is absent.
// PECK_* environment variables are applied after the file, then the result
// is validated.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()

	if path == "" {
		if _, err := os.Stat(DefaultSettingsFile); err == nil {
			path = DefaultSettingsFile
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse settings file: %w", err)
		}
	}

	s.applyEnvOverrides()

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &s, nil
}

func (s *Settings) applyEnvOverrides() {
	s.Overrides = applyEnv([]envOverride{
		{"PECK_MODE", envString(&s.Detection.Mode)},
		{"PECK_SOUND_THRESHOLD", envFloat(&s.Detection.SoundThreshold)},
		{"PECK_VIBRATION_THRESHOLD", envFloat(&s.Detection.VibrationThreshold)},
		{"PECK_DEBUG", envBool(&s.Detection.Debug)},
		{"PECK_GAME", envString(&s.Game.Mode)},
		{"PECK_BACKGROUND", envString(&s.Assets.Background)},
		{"PECK_INPUT_DEVICE", envInt(&s.Audio.InputDevice)},
		{"PECK_FEEDBACK", envBool(&s.Audio.Feedback)},
		{"PECK_MOTION_ADDR", envString(&s.Motion.Addr)},
		{"PECK_GENERATOR_URL", envString(&s.Generator.BaseURL)},
		{"PECK_GENERATOR_KEY", envString(&s.Generator.APIKey)},
		{"PECK_GENERATOR_TIMEOUT", envDuration(&s.Generator.Timeout)},
		{"PECK_LOG_LEVEL", envString(&s.Log.Level)},
		{"PECK_LOG_FILE", envString(&s.Log.File)},
	})
}

// Validate checks every section and joins all problems into one error.
func (s *Settings) Validate() error {
	var errs []error

	if _, err := s.DetectionConfig(); err != nil {
		errs = append(errs, fmt.Errorf("detection: %w", err))
	}
	if _, err := s.GameKind(); err != nil {
		errs = append(errs, fmt.Errorf("game.mode: %w", err))
	}
	if _, ok := asset.BackgroundByName(s.Assets.Background); !ok {
		errs = append(errs, fmt.Errorf("assets.background %q is not a known preset", s.Assets.Background))
	}
	if n := s.Audio.FramesPerBuffer; n <= 0 || n&(n-1) != 0 {
		errs = append(errs, fmt.Errorf("audio.frames_per_buffer %d must be a positive power of two", n))
	}
	if s.Audio.Volume < 0 || s.Audio.Volume > 1 {
		errs = append(errs, fmt.Errorf("audio.volume %.2f outside [0,1]", s.Audio.Volume))
	}
	if s.Motion.Path == "" || !strings.HasPrefix(s.Motion.Path, "/") {
		errs = append(errs, fmt.Errorf("motion.path %q must start with /", s.Motion.Path))
	}
	if s.Generator.Timeout <= 0 {
		errs = append(errs, errors.New("generator.timeout must be positive"))
	}

	return errors.Join(errs...)
}

// DetectionConfig converts the detection section into the runtime snapshot.
func (s *Settings) DetectionConfig() (sensor.DetectionConfig, error) {
	dm, err := sensor.ParseDetectionMode(s.Detection.Mode)
	if err != nil {
		return sensor.DetectionConfig{}, err
	}
	cfg := sensor.DetectionConfig{
		SoundThreshold:     s.Detection.SoundThreshold,
		VibrationThreshold: s.Detection.VibrationThreshold,
		Mode:               dm,
		Debug:              s.Detection.Debug,
	}
	return cfg, cfg.Validate()
}

// MicrophoneConfig converts the audio section into capture settings.
func (s *Settings) MicrophoneConfig() sensor.MicrophoneConfig {
	cfg := sensor.DefaultMicrophoneConfig()
	cfg.DeviceID = s.Audio.InputDevice
	cfg.SampleRate = s.Audio.SampleRate
	cfg.FramesPerBuffer = s.Audio.FramesPerBuffer
	return cfg
}

// MotionConfig converts the motion section into receiver settings.
func (s *Settings) MotionConfig() sensor.MotionConfig {
	return sensor.MotionConfig{Addr: s.Motion.Addr, Path: s.Motion.Path}
}

// GameAssets builds the asset set from the defaults and any overrides.
func (s *Settings) GameAssets() asset.GameAssets {
	a := asset.DefaultAssets()
	if len(s.Assets.BugImages) > 0 {
		a.BugImages = append([]string(nil), s.Assets.BugImages...)
	}
	if len(s.Assets.FruitImages) > 0 {
		a.FruitImages = append([]string(nil), s.Assets.FruitImages...)
	}
	if bg, ok := asset.BackgroundByName(s.Assets.Background); ok {
		a.Background = bg
	}
	return a
}

// GameKind parses the initial game mode.
func (s *Settings) GameKind() (mode.Kind, error) {
	return mode.ParseKind(s.Game.Mode)
}
