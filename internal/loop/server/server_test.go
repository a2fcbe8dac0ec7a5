package server

import (
	"errors"
	"testing"
	"time"

	"github.com/tomz197/peckplay/internal/feedback"
	"github.com/tomz197/peckplay/internal/logging"
	"github.com/tomz197/peckplay/internal/sensor"
)

type fakeSound struct {
	level           float64
	perm            sensor.Permission
	resumes, pauses int
}

func (f *fakeSound) Request() error {
	f.perm = sensor.PermissionGranted
	return nil
}
func (f *fakeSound) Permission() sensor.Permission { return f.perm }
func (f *fakeSound) Level() float64                { return f.level }
func (f *fakeSound) Resume()                       { f.resumes++ }
func (f *fakeSound) Pause()                        { f.pauses++ }

type fakeSpeaker struct {
	feedback.Mute
	suspends int
}

func (s *fakeSpeaker) Resume()  {}
func (s *fakeSpeaker) Suspend() { s.suspends++ }

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	opts.Logger = logging.Discard()
	return NewServer(opts)
}

func TestRegisterAndUnregister(t *testing.T) {
	speaker := &fakeSpeaker{}
	s := newTestServer(t, Options{Speaker: speaker})

	a := s.RegisterClient("alice")
	b := s.RegisterClient("bob")
	s.processRegistrations()
	if got := s.Clients(); got != 2 {
		t.Fatalf("clients = %d, want 2", got)
	}
	if a.ID == b.ID {
		t.Fatalf("duplicate client id %d", a.ID)
	}

	s.UnregisterClient(a.ID)
	s.processRegistrations()
	if got := s.Clients(); got != 1 {
		t.Fatalf("clients = %d, want 1", got)
	}
	if _, ok := <-a.EventsCh; ok {
		t.Error("events channel still open after unregister")
	}
	if _, ok := <-a.Motion.C; ok {
		t.Error("motion subscription still open after unregister")
	}
	if speaker.suspends != 0 {
		t.Errorf("speaker suspended with a session left")
	}

	s.UnregisterClient(b.ID)
	s.processRegistrations()
	if speaker.suspends != 1 {
		t.Errorf("suspends = %d, want 1 after the last session left", speaker.suspends)
	}
}

func TestSampleOnlyWhileListening(t *testing.T) {
	sound := &fakeSound{level: 0.5, perm: sensor.PermissionGranted}
	s := newTestServer(t, Options{Sound: sound})
	now := time.Unix(100, 0)

	s.sample(now)
	if got := s.GetSnapshot().Level; got != 0 {
		t.Fatalf("level without listeners = %v, want 0", got)
	}

	s.ListenSound(true)
	s.sample(now)
	snap := s.GetSnapshot()
	if snap.Level != 0.5 {
		t.Errorf("level = %v, want 0.5", snap.Level)
	}
	if snap.Microphone != sensor.PermissionGranted {
		t.Errorf("microphone = %v, want granted", snap.Microphone)
	}
	if !snap.At.Equal(now) {
		t.Errorf("snapshot time = %v, want %v", snap.At, now)
	}

	s.ListenSound(false)
	s.ListenSound(false) // Unbalanced release is ignored
	if sound.resumes != 1 || sound.pauses != 1 {
		t.Errorf("resumes/pauses = %d/%d, want 1/1", sound.resumes, sound.pauses)
	}
}

func TestShutdownNotifiesClients(t *testing.T) {
	s := newTestServer(t, Options{})
	h := s.RegisterClient("carol")
	s.processRegistrations()

	got := make(chan ClientEvent, 1)
	go func() {
		ev := <-h.EventsCh
		got <- ev
		s.UnregisterClient(h.ID)
	}()

	start := time.Now()
	s.Shutdown(5 * time.Second)
	if elapsed := time.Since(start); elapsed >= 5*time.Second {
		t.Fatalf("shutdown waited for the full timeout (%v)", elapsed)
	}

	select {
	case ev := <-got:
		if ev.Type != EventServerShutdown {
			t.Errorf("event = %v, want shutdown", ev.Type)
		}
	default:
		t.Fatal("client never received the shutdown event")
	}
	if s.Clients() != 0 {
		t.Errorf("clients = %d after shutdown, want 0", s.Clients())
	}
}

func TestMissingResourcesAreInert(t *testing.T) {
	s := newTestServer(t, Options{})

	if err := s.RequestMicrophone(); !errors.Is(err, sensor.ErrSensorUnavailable) {
		t.Errorf("RequestMicrophone() = %v, want ErrSensorUnavailable", err)
	}
	if err := s.RequestMotion(); !errors.Is(err, sensor.ErrSensorUnavailable) {
		t.Errorf("RequestMotion() = %v, want ErrSensorUnavailable", err)
	}
	snap := s.GetSnapshot()
	if snap.Microphone != sensor.PermissionDenied || snap.Motion != sensor.PermissionDenied {
		t.Errorf("permissions = %v/%v, want denied/denied", snap.Microphone, snap.Motion)
	}
	if s.Generator().Enabled() {
		t.Error("generator enabled without a service URL")
	}
	s.Speaker().Play(feedback.PopTone) // Must not panic without a device
}

func TestMotionFanOut(t *testing.T) {
	hub := sensor.NewMotionHub()
	s := newTestServer(t, Options{Hub: hub})
	a := s.RegisterClient("a")
	b := s.RegisterClient("b")

	hub.Publish(sensor.MotionSample{Z: 7})

	for _, h := range []*ClientHandle{a, b} {
		samples, open := h.Motion.Drain(nil)
		if !open || len(samples) != 1 || samples[0].Z != 7 {
			t.Errorf("client %d drained %v (open=%v), want one sample", h.ID, samples, open)
		}
	}
}
