package feedback

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// SampleRate is the output rate of the shared speaker.
const SampleRate = beep.SampleRate(44100)

// Player plays feedback tones.
type Player interface {
	Play(t Tone)
}

// Voice is the process-wide audio output. The device is opened lazily on
// the first Init (or Play) and then lives for the rest of the process;
// sessions only Resume and Suspend it.
type Voice struct {
	logger *log.Logger
	volume float64

	once sync.Once
	mu   sync.Mutex
	err  error // Init failure; playback stays silent
	out  *beep.Mixer
	busy bool // Device is running (not suspended)
}

var (
	defaultVoice     *Voice
	defaultVoiceOnce sync.Once
)

// DefaultVoice returns the shared process voice.
func DefaultVoice(logger *log.Logger, volume float64) *Voice {
	defaultVoiceOnce.Do(func() {
		defaultVoice = NewVoice(logger, volume)
	})
	return defaultVoice
}

// NewVoice creates an uninitialised voice at the given linear volume.
func NewVoice(logger *log.Logger, volume float64) *Voice {
	if logger == nil {
		logger = log.Default()
	}
	return &Voice{logger: logger, volume: volume}
}

// Init opens the output device once. Later calls return the first result.
func (v *Voice) Init() error {
	v.once.Do(func() {
		v.mu.Lock()
		defer v.mu.Unlock()

		if err := speaker.Init(SampleRate, SampleRate.N(50*time.Millisecond)); err != nil {
			v.err = err
			v.logger.Warn("audio feedback disabled", "err", err)
			return
		}
		v.out = &beep.Mixer{}
		speaker.Play(v.out)
		v.busy = true
		v.logger.Debug("audio feedback ready", "rate", int(SampleRate))
	})
	return v.err
}

// Resume restarts a suspended device, initialising it on first use.
func (v *Voice) Resume() {
	if v.Init() != nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.busy {
		return
	}
	if err := speaker.Resume(); err != nil {
		v.logger.Warn("audio resume failed", "err", err)
		return
	}
	v.busy = true
}

// Suspend pauses the device while nobody is playing.
func (v *Voice) Suspend() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.out == nil || !v.busy {
		return
	}
	if err := speaker.Suspend(); err != nil {
		v.logger.Warn("audio suspend failed", "err", err)
		return
	}
	v.busy = false
}

// Play queues a tone. It never blocks on the device and is silent when
// audio is unavailable or suspended.
func (v *Voice) Play(t Tone) {
	if v.Init() != nil {
		return
	}
	v.mu.Lock()
	busy := v.busy
	v.mu.Unlock()
	if !busy {
		return
	}

	s := withVolume(t.Streamer(SampleRate), v.volume)
	speaker.Lock()
	v.out.Add(s)
	speaker.Unlock()
}

// Mute is a Player that discards every tone.
type Mute struct{}

func (Mute) Play(Tone) {}
