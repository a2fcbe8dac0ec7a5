// Package loop wires settings, the shared host sensors and playground
// sessions together.
package loop

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/tomz197/peckplay/internal/assetgen"
	"github.com/tomz197/peckplay/internal/config"
	"github.com/tomz197/peckplay/internal/draw"
	"github.com/tomz197/peckplay/internal/feedback"
	"github.com/tomz197/peckplay/internal/loop/client"
	"github.com/tomz197/peckplay/internal/loop/server"
	"github.com/tomz197/peckplay/internal/peck"
	"github.com/tomz197/peckplay/internal/sensor"
	"github.com/tomz197/peckplay/internal/sensor/mic"
)

// Host owns the hardware behind a server: one microphone, one motion
// receiver and the process speaker.
type Host struct {
	Server *server.Server

	settings *config.Settings
	logger   *log.Logger
	mic      *mic.Microphone
	motion   *sensor.MotionReceiver
}

// NewHost creates the shared sensors described by s. Nothing is opened
// until a session requests it.
func NewHost(s *config.Settings, logger *log.Logger) *Host {
	microphone := mic.New(s.MicrophoneConfig(), logger.WithPrefix("mic"))
	motion := sensor.NewMotionReceiver(s.MotionConfig(), logger.WithPrefix("motion"))
	voice := feedback.DefaultVoice(logger.WithPrefix("audio"), s.Audio.Volume)
	gen := assetgen.NewClient(assetgen.Config{
		BaseURL: s.Generator.BaseURL,
		APIKey:  s.Generator.APIKey,
		Timeout: s.Generator.Timeout,
	}, logger.WithPrefix("assetgen"))

	srv := server.NewServer(server.Options{
		Sound:     microphone,
		Motion:    motion,
		Hub:       motion.Hub(),
		Speaker:   voice,
		Generator: gen,
		Logger:    logger,
	})
	return &Host{
		Server:   srv,
		settings: s,
		logger:   logger,
		mic:      microphone,
		motion:   motion,
	}
}

// Enable requests the microphone and/or motion receiver up front, as if the
// user had pressed the buttons on the settings screen. Failures leave the
// modality inert and are returned joined.
func (h *Host) Enable(mic, motion bool) error {
	var errs []error
	if mic {
		if err := h.Server.RequestMicrophone(); err != nil {
			errs = append(errs, fmt.Errorf("microphone: %w", err))
		}
	}
	if motion {
		if err := h.Server.RequestMotion(); err != nil {
			errs = append(errs, fmt.Errorf("motion: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Close releases the microphone and stops the motion receiver.
func (h *Host) Close() error {
	return errors.Join(h.mic.Close(), h.motion.Close())
}

// SessionOptions builds the options of one session from the settings.
func (h *Host) SessionOptions(name string, termSize draw.TermSizeFunc) (client.ClientOptions, error) {
	det, err := h.settings.DetectionConfig()
	if err != nil {
		return client.ClientOptions{}, fmt.Errorf("detection settings: %w", err)
	}
	kind, err := h.settings.GameKind()
	if err != nil {
		return client.ClientOptions{}, fmt.Errorf("game settings: %w", err)
	}
	return client.ClientOptions{
		TermSizeFunc: termSize,
		Name:         name,
		Logger:       h.logger,
		Detection:    det,
		Game:         kind,
		Assets:       h.settings.GameAssets(),
		Feedback:     h.settings.Audio.Feedback,
		Debounce:     peck.DefaultWindow,
	}, nil
}

// Run plays a single local session in the current terminal. It blocks until
// the player quits or ctx is cancelled.
func Run(ctx context.Context, r *bufio.Reader, w io.Writer, host *Host) error {
	opts, err := host.SessionOptions("local", nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go host.Server.Run(ctx)

	c := client.NewClient(host.Server, r, w, opts)
	return c.Run(ctx)
}
