// Package mic captures the host microphone through PortAudio. It is the only
// package that links libportaudio.
package mic

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"

	"github.com/tomz197/peckplay/internal/sensor"
)

// Microphone captures mono input through PortAudio and exposes the current
// amplitude level for per-tick polling. One instance is shared by every
// session on the host; the stream only runs while at least one session is
// listening.
type Microphone struct {
	cfg      sensor.MicrophoneConfig
	logger   *log.Logger
	analyser *sensor.Analyser

	mu         sync.Mutex
	permission sensor.Permission
	stream     *portaudio.Stream
	running    bool
	listeners  int
}

// New creates a microphone in the prompt state. Nothing is opened
// until Request is called from a user interaction.
func New(cfg sensor.MicrophoneConfig, logger *log.Logger) *Microphone {
	if cfg.FramesPerBuffer <= 0 {
		cfg.FramesPerBuffer = sensor.DefaultMicrophoneConfig().FramesPerBuffer
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Microphone{
		cfg:      cfg,
		logger:   logger,
		analyser: sensor.NewAnalyser(cfg.FFTSize),
	}
}

// Permission returns the current access state.
func (m *Microphone) Permission() sensor.Permission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.permission
}

// Request initializes PortAudio and opens the input stream. It is a no-op
// once granted. A failure leaves the microphone permanently denied.
func (m *Microphone) Request() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.permission {
	case sensor.PermissionGranted:
		return nil
	case sensor.PermissionDenied:
		return sensor.ErrPermissionDenied
	}

	if err := m.open(); err != nil {
		m.permission = sensor.PermissionDenied
		m.logger.Warn("microphone disabled", "err", err)
		return err
	}
	m.permission = sensor.PermissionGranted
	m.logger.Info("microphone enabled", "frames", m.cfg.FramesPerBuffer, "fft", m.analyser.FFTSize())

	if m.listeners > 0 {
		m.startLocked()
	}
	return nil
}

// open sets up PortAudio and the input stream. Caller holds mu.
func (m *Microphone) open() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("%w: initializing PortAudio: %v", sensor.ErrSensorUnavailable, err)
	}

	device, err := inputDevice(m.cfg.DeviceID)
	if err != nil {
		portaudio.Terminate()
		return err
	}
	if device.MaxInputChannels < 1 {
		portaudio.Terminate()
		return fmt.Errorf("%w: device %q has no input channels", sensor.ErrSensorUnavailable, device.Name)
	}

	params := portaudio.LowLatencyParameters(device, nil)
	params.Input.Channels = 1
	params.FramesPerBuffer = m.cfg.FramesPerBuffer
	if m.cfg.SampleRate > 0 {
		params.SampleRate = m.cfg.SampleRate
	}

	stream, err := portaudio.OpenStream(params, m.process)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("%w: opening input stream: %v", sensor.ErrPermissionDenied, err)
	}
	m.stream = stream
	return nil
}

// process is the PortAudio callback.
func (m *Microphone) process(in []float32) {
	m.analyser.Write(in)
}

// Level returns the normalized amplitude of the latest audio window, or 0
// when the microphone is not granted.
func (m *Microphone) Level() float64 {
	if m.Permission() != sensor.PermissionGranted {
		return 0
	}
	return m.analyser.Level()
}

// Resume registers a foreground listener and starts capture if needed.
func (m *Microphone) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listeners++
	if m.permission == sensor.PermissionGranted {
		m.startLocked()
	}
}

// Pause releases a listener; capture stops when the last one leaves.
func (m *Microphone) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listeners == 0 {
		return
	}
	m.listeners--
	if m.listeners == 0 {
		m.stopLocked()
	}
}

func (m *Microphone) startLocked() {
	if m.running || m.stream == nil {
		return
	}
	if err := m.stream.Start(); err != nil {
		m.logger.Warn("microphone start failed", "err", err)
		return
	}
	m.running = true
}

func (m *Microphone) stopLocked() {
	if !m.running || m.stream == nil {
		return
	}
	if err := m.stream.Stop(); err != nil {
		m.logger.Warn("microphone stop failed", "err", err)
	}
	m.running = false
}

// Close stops capture and releases PortAudio.
func (m *Microphone) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stream == nil {
		return nil
	}
	m.stopLocked()
	err := m.stream.Close()
	m.stream = nil
	if termErr := portaudio.Terminate(); termErr != nil {
		err = errors.Join(err, termErr)
	}
	return err
}

// inputDevice resolves a device index, or the default input for -1.
func inputDevice(deviceID int) (*portaudio.DeviceInfo, error) {
	if deviceID < 0 {
		device, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("%w: no default input device: %v", sensor.ErrSensorUnavailable, err)
		}
		return device, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("%w: listing devices: %v", sensor.ErrSensorUnavailable, err)
	}
	if deviceID >= len(devices) {
		return nil, fmt.Errorf("%w: invalid device ID %d", sensor.ErrSensorUnavailable, deviceID)
	}
	return devices[deviceID], nil
}

// ListDevices prints every capture-capable device with the index accepted by
// sensor.MicrophoneConfig.DeviceID.
func ListDevices(w io.Writer) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing PortAudio: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return fmt.Errorf("listing devices: %w", err)
	}
	def, _ := portaudio.DefaultInputDevice()

	for i, d := range devices {
		if d.MaxInputChannels < 1 {
			continue
		}
		marker := " "
		if def != nil && d.Name == def.Name {
			marker = "*"
		}
		fmt.Fprintf(w, "%s[%d] %s\n", marker, i, d.Name)
		fmt.Fprintf(w, "    Input channels: %d, default sample rate: %.0f Hz, low latency: %.2fms\n",
			d.MaxInputChannels, d.DefaultSampleRate, d.DefaultLowInputLatency.Seconds()*1000)
	}
	return nil
}
