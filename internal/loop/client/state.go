package client

import (
	"time"

	"github.com/tomz197/peckplay/internal/input"
	"github.com/tomz197/peckplay/internal/sensor"
)

// Screen is the surface currently in the foreground.
type Screen int

const (
	ScreenPlay     Screen = iota // Active game mode, sensing on
	ScreenSettings               // Settings panel, sensing paused
	ScreenTheme                  // Theme text entry, sensing paused
	ScreenShutdown               // Server is shutting down
)

// ClientState holds per-session UI state. Game state lives in the modes.
type ClientState struct {
	Input      input.Input
	Screen     Screen
	Running    bool
	prevScreen Screen

	// Settings panel
	Cursor     settingItem
	ThemeInput []rune
	Status     string    // Last settings message
	StatusAt   time.Time // When Status was set
	Generating bool      // Theme request in flight
	Theme      string    // Last theme submitted

	// Play HUD
	LastSource sensor.Source
	HasPecked  bool
	LastTapX   float64 // Logical canvas position of the last tap (debug)
	LastTapY   float64
	HasTapped  bool

	listening     bool          // Registered as a sound listener on the server
	delta         time.Duration // Frame delta time
	shutdownTimer float64       // Countdown before auto-disconnect on shutdown
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		Screen:     ScreenPlay,
		prevScreen: ScreenPlay,
		Running:    true,
	}
}
