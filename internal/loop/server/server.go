// Package server owns the host resources every playground session shares:
// the microphone, the motion receiver, the speaker and the theme generator.
// Game state is never shared; each session runs its own modes.
package server

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/peckplay/internal/assetgen"
	"github.com/tomz197/peckplay/internal/feedback"
	"github.com/tomz197/peckplay/internal/loop/config"
	"github.com/tomz197/peckplay/internal/sensor"
)

// GameServer is the interface clients use to reach the shared host sensors.
// Decouples the Client from the concrete Server implementation, enabling
// testing with fake sensors.
type GameServer interface {
	RegisterClient(name string) *ClientHandle
	UnregisterClient(clientID int)
	GetSnapshot() *SensorSnapshot
	RequestMicrophone() error
	RequestMotion() error
	ListenSound(on bool)
	Speaker() Speaker
	Generator() ThemeGenerator
}

// SoundSource is the pull-based microphone (a *mic.Microphone).
type SoundSource interface {
	Request() error
	Permission() sensor.Permission
	Level() float64
	Resume()
	Pause()
}

// MotionSource is the push-based accelerometer receiver (a *sensor.MotionReceiver).
type MotionSource interface {
	Request() error
	Permission() sensor.Permission
}

// Speaker is the process-wide feedback output (a *feedback.Voice).
type Speaker interface {
	feedback.Player
	Resume()
	Suspend()
}

// ThemeGenerator produces themed asset references (an *assetgen.Client).
type ThemeGenerator interface {
	Enabled() bool
	Generate(ctx context.Context, theme string) assetgen.Result
}

// SensorSnapshot is an immutable view of the shared sensors for one tick.
type SensorSnapshot struct {
	Level      float64 // Normalized microphone level, 0 when nobody listens
	Microphone sensor.Permission
	Motion     sensor.Permission
	Clients    int
	At         time.Time
}

// Options wires the shared resources. Nil fields fall back to inert
// implementations, so a host without a microphone still runs.
type Options struct {
	Sound     SoundSource
	Motion    MotionSource
	Hub       *sensor.MotionHub // Fan-out for Motion; required when Motion pushes samples
	Speaker   Speaker
	Generator ThemeGenerator
	Logger    *log.Logger
}

// Server samples the shared sensors once per tick and tracks sessions.
type Server struct {
	sound     SoundSource
	motion    MotionSource
	hub       *sensor.MotionHub
	speaker   Speaker
	generator ThemeGenerator
	logger    *log.Logger

	snapshot     atomic.Pointer[SensorSnapshot]
	clients      map[int]*ClientHandle
	nextClientID int
	registerCh   chan *ClientHandle
	unregisterCh chan int
	mu           sync.RWMutex

	listeners int // Sessions whose play surface is foreground with sound enabled
}

// Compile-time check that Server implements GameServer.
var _ GameServer = (*Server)(nil)

// ClientHandle represents a session's connection to the server.
type ClientHandle struct {
	ID       int
	Name     string                     // Display name (SSH user or "local")
	Motion   *sensor.MotionSubscription // Per-session motion queue
	EventsCh chan ClientEvent           // Events sent to the client
}

// ClientEvent represents an event sent from server to client.
type ClientEvent struct {
	Type ClientEventType
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventServerShutdown ClientEventType = iota
)

// NewServer creates a server around the given resources.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		sound:        opts.Sound,
		motion:       opts.Motion,
		hub:          opts.Hub,
		speaker:      opts.Speaker,
		generator:    opts.Generator,
		logger:       logger,
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
		registerCh:   make(chan *ClientHandle, 16),
		unregisterCh: make(chan int, 16),
	}
	if s.sound == nil {
		s.sound = unavailable{}
	}
	if s.motion == nil {
		s.motion = unavailable{}
	}
	if s.hub == nil {
		s.hub = sensor.NewMotionHub()
	}
	if s.speaker == nil {
		s.speaker = silent{}
	}
	if s.generator == nil {
		s.generator = assetgen.NewClient(assetgen.Config{}, logger)
	}

	s.snapshot.Store(&SensorSnapshot{
		Microphone: s.sound.Permission(),
		Motion:     s.motion.Permission(),
	})
	return s
}

// Run starts the sampling loop. Blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frameStart := time.Now()

		s.processRegistrations()
		s.sample(frameStart)

		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}
}

// sample reads the microphone once and publishes a new snapshot. Reading the
// analyser advances its smoothing, so it happens here and not per session.
func (s *Server) sample(now time.Time) {
	s.mu.RLock()
	listening := s.listeners > 0
	clients := len(s.clients)
	s.mu.RUnlock()

	level := 0.0
	if listening {
		level = s.sound.Level()
	}
	s.snapshot.Store(&SensorSnapshot{
		Level:      level,
		Microphone: s.sound.Permission(),
		Motion:     s.motion.Permission(),
		Clients:    clients,
		At:         now,
	})
}

// Shutdown gracefully shuts down the server by notifying all connected clients
// and waiting for them to disconnect (up to the given timeout).
// The caller should cancel the server context after Shutdown returns.
func (s *Server) Shutdown(timeout time.Duration) {
	s.mu.RLock()
	for _, handle := range s.clients {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
		default:
		}
	}
	s.mu.RUnlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			s.processRegistrations()
			if s.Clients() == 0 {
				return
			}
		}
	}
}

// RegisterClient registers a new session and subscribes it to motion samples.
func (s *Server) RegisterClient(name string) *ClientHandle {
	s.mu.Lock()
	id := s.nextClientID
	s.nextClientID++
	s.mu.Unlock()

	handle := &ClientHandle{
		ID:       id,
		Name:     name,
		Motion:   s.hub.Subscribe(),
		EventsCh: make(chan ClientEvent, 16),
	}

	s.registerCh <- handle
	return handle
}

// UnregisterClient removes a session from the server.
func (s *Server) UnregisterClient(clientID int) {
	s.unregisterCh <- clientID
}

// GetSnapshot returns the latest sensor snapshot.
func (s *Server) GetSnapshot() *SensorSnapshot {
	return s.snapshot.Load()
}

// Clients returns the number of registered sessions.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// RequestMicrophone asks for microphone access on behalf of a session.
func (s *Server) RequestMicrophone() error {
	return s.sound.Request()
}

// RequestMotion starts the motion receiver on behalf of a session.
func (s *Server) RequestMotion() error {
	return s.motion.Request()
}

// ListenSound registers or releases a foreground listener. Capture runs
// while at least one session listens.
func (s *Server) ListenSound(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if on {
		s.listeners++
		s.sound.Resume()
		return
	}
	if s.listeners > 0 {
		s.listeners--
		s.sound.Pause()
	}
}

// Speaker returns the shared feedback output.
func (s *Server) Speaker() Speaker {
	return s.speaker
}

// Generator returns the theme generator.
func (s *Server) Generator() ThemeGenerator {
	return s.generator
}

// processRegistrations handles pending client registrations/unregistrations.
func (s *Server) processRegistrations() {
	for {
		select {
		case handle := <-s.registerCh:
			s.mu.Lock()
			s.clients[handle.ID] = handle
			total := len(s.clients)
			s.mu.Unlock()
			s.logger.Info("session joined", "id", handle.ID, "name", handle.Name, "sessions", total)
		case clientID := <-s.unregisterCh:
			s.mu.Lock()
			handle, ok := s.clients[clientID]
			if ok {
				s.hub.Unsubscribe(handle.Motion.ID)
				close(handle.EventsCh)
				delete(s.clients, clientID)
			}
			total := len(s.clients)
			s.mu.Unlock()
			if !ok {
				continue
			}
			s.logger.Info("session left", "id", clientID, "sessions", total)
			if total == 0 {
				s.speaker.Suspend()
			}
		default:
			return
		}
	}
}

// unavailable stands in for a sensor the host does not have.
type unavailable struct{}

func (unavailable) Request() error                { return sensor.ErrSensorUnavailable }
func (unavailable) Permission() sensor.Permission { return sensor.PermissionDenied }
func (unavailable) Level() float64                { return 0 }
func (unavailable) Resume()                       {}
func (unavailable) Pause()                        {}

// silent is a Speaker without an output device.
type silent struct {
	feedback.Mute
}

func (silent) Resume()  {}
func (silent) Suspend() {}
