package loop

import (
	"testing"

	"github.com/tomz197/peckplay/internal/config"
	"github.com/tomz197/peckplay/internal/logging"
	"github.com/tomz197/peckplay/internal/mode"
	"github.com/tomz197/peckplay/internal/peck"
	"github.com/tomz197/peckplay/internal/sensor"
)

func newTestHost(t *testing.T, s config.Settings) *Host {
	t.Helper()
	h := NewHost(&s, logging.Discard())
	t.Cleanup(func() {
		if err := h.Close(); err != nil {
			t.Errorf("Close() = %v", err)
		}
	})
	return h
}

func TestSessionOptions(t *testing.T) {
	s := config.DefaultSettings()
	s.Detection.Mode = "VIBRATION"
	s.Detection.VibrationThreshold = 8
	s.Game.Mode = "ambient"
	s.Audio.Feedback = false
	s.Assets.BugImages = []string{"bug.png"}
	h := newTestHost(t, s)

	opts, err := h.SessionOptions("rook", nil)
	if err != nil {
		t.Fatalf("SessionOptions() = %v", err)
	}
	if opts.Name != "rook" {
		t.Errorf("name = %q", opts.Name)
	}
	if opts.Detection.Mode != sensor.ModeVibration || opts.Detection.VibrationThreshold != 8 {
		t.Errorf("detection = %+v", opts.Detection)
	}
	if opts.Game != mode.KindAmbient {
		t.Errorf("game = %v, want ambient", opts.Game)
	}
	if opts.Feedback {
		t.Error("feedback enabled against the settings")
	}
	if len(opts.Assets.BugImages) != 1 || opts.Assets.BugImages[0] != "bug.png" {
		t.Errorf("bug images = %v", opts.Assets.BugImages)
	}
	if opts.Debounce != peck.DefaultWindow {
		t.Errorf("debounce = %v, want %v", opts.Debounce, peck.DefaultWindow)
	}
}

func TestSessionOptionsRejectsBadSettings(t *testing.T) {
	s := config.DefaultSettings()
	s.Game.Mode = "pinball"
	h := newTestHost(t, s)

	if _, err := h.SessionOptions("rook", nil); err == nil {
		t.Fatal("SessionOptions() accepted an unknown game mode")
	}
}

func TestEnableNothing(t *testing.T) {
	h := newTestHost(t, config.DefaultSettings())

	if err := h.Enable(false, false); err != nil {
		t.Fatalf("Enable(false, false) = %v", err)
	}
	snap := h.Server.GetSnapshot()
	if snap.Microphone != sensor.PermissionPrompt || snap.Motion != sensor.PermissionPrompt {
		t.Errorf("permissions = %v/%v, want untouched", snap.Microphone, snap.Motion)
	}
}
