package client

import (
	"bufio"
	"bytes"
	"context"
	"math"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomz197/peckplay/internal/asset"
	"github.com/tomz197/peckplay/internal/assetgen"
	"github.com/tomz197/peckplay/internal/feedback"
	"github.com/tomz197/peckplay/internal/input"
	"github.com/tomz197/peckplay/internal/logging"
	"github.com/tomz197/peckplay/internal/loop/server"
	"github.com/tomz197/peckplay/internal/mode"
	"github.com/tomz197/peckplay/internal/sensor"
)

type fakeSpeaker struct {
	tones    []feedback.Tone
	resumes  int
	suspends int
}

func (s *fakeSpeaker) Play(t feedback.Tone) { s.tones = append(s.tones, t) }
func (s *fakeSpeaker) Resume()              { s.resumes++ }
func (s *fakeSpeaker) Suspend()             { s.suspends++ }

type fakeGenerator struct {
	enabled bool
	res     assetgen.Result
	calls   chan context.Context // Receives each request's context when set
}

func (g fakeGenerator) Enabled() bool { return g.enabled }
func (g fakeGenerator) Generate(ctx context.Context, theme string) assetgen.Result {
	if g.calls != nil {
		g.calls <- ctx
	}
	return g.res
}

type fakeServer struct {
	mu           sync.Mutex
	hub          *sensor.MotionHub
	handle       *server.ClientHandle
	snap         server.SensorSnapshot
	listeners    int
	unregistered []int
	speaker      *fakeSpeaker
	generator    fakeGenerator
}

var _ server.GameServer = (*fakeServer)(nil)

func newFakeServer() *fakeServer {
	return &fakeServer{
		hub:     sensor.NewMotionHub(),
		speaker: &fakeSpeaker{},
	}
}

func (f *fakeServer) RegisterClient(name string) *server.ClientHandle {
	f.handle = &server.ClientHandle{
		ID:       1,
		Name:     name,
		Motion:   f.hub.Subscribe(),
		EventsCh: make(chan server.ClientEvent, 4),
	}
	return f.handle
}

func (f *fakeServer) UnregisterClient(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unregistered = append(f.unregistered, id)
}

func (f *fakeServer) GetSnapshot() *server.SensorSnapshot {
	snap := f.snap
	return &snap
}

func (f *fakeServer) RequestMicrophone() error {
	f.snap.Microphone = sensor.PermissionDenied
	return sensor.ErrPermissionDenied
}

func (f *fakeServer) RequestMotion() error {
	f.snap.Motion = sensor.PermissionGranted
	return nil
}

func (f *fakeServer) ListenSound(on bool) {
	if on {
		f.listeners++
	} else {
		f.listeners--
	}
}

func (f *fakeServer) Speaker() server.Speaker          { return f.speaker }
func (f *fakeServer) Generator() server.ThemeGenerator { return f.generator }

func newTestClient(t *testing.T, fs *fakeServer, det sensor.DetectionConfig, game mode.Kind, in string) (*Client, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	c := NewClient(fs, bufio.NewReader(strings.NewReader(in)), &out, ClientOptions{
		TermSizeFunc: func() (int, int, error) { return 100, 40, nil },
		Name:         "test",
		Logger:       logging.Discard(),
		Rand:         rand.New(rand.NewSource(1)),
		Detection:    det,
		Game:         game,
		Assets:       asset.DefaultAssets(),
		Feedback:     true,
	})
	return c, &out
}

// press runs one play tick with the given input.
func press(c *Client, in input.Input, now time.Time) {
	c.state.Input = in
	c.updatePlay(now)
}

func space() input.Input { return input.Input{Text: []rune{' '}} }

func TestSpaceIsATouchPeck(t *testing.T) {
	fs := newFakeServer()
	c, _ := newTestClient(t, fs, detection(sensor.ModeTouch, false), mode.KindTarget, "")
	t0 := time.Unix(1000, 0)
	c.enterPlay(t0)

	press(c, space(), t0)

	if c.pipeline.Last() != 1 {
		t.Fatalf("counter = %d, want 1", c.pipeline.Last())
	}
	if got := c.active.Score(); got != 1 {
		t.Errorf("score = %d, want 1", got)
	}
	if len(fs.speaker.tones) != 2 || fs.speaker.tones[0] != feedback.PopTone || fs.speaker.tones[1] != feedback.SuccessTone {
		t.Errorf("tones = %d played, want pop then success", len(fs.speaker.tones))
	}
	if !c.state.HasPecked || c.state.LastSource != sensor.SourceTouch {
		t.Errorf("last source = %v, want touch", c.state.LastSource)
	}
	if c.dispatcher.Flash(t0) <= 0 {
		t.Error("flash not triggered by the peck")
	}
}

func TestPecksAreDebouncedAcrossTicks(t *testing.T) {
	fs := newFakeServer()
	c, _ := newTestClient(t, fs, detection(sensor.ModeTouch, false), mode.KindTarget, "")
	t0 := time.Unix(1000, 0)
	c.enterPlay(t0)

	for _, ms := range []int{0, 50, 100, 200} {
		press(c, space(), t0.Add(time.Duration(ms)*time.Millisecond))
	}
	if c.pipeline.Last() != 2 {
		t.Errorf("counter = %d, want 2", c.pipeline.Last())
	}
	// The second peck lands while the bug is still hit
	if got := c.active.Score(); got != 1 {
		t.Errorf("score = %d, want 1", got)
	}
}

func TestTapsOutsideCanvasAreIgnored(t *testing.T) {
	fs := newFakeServer()
	c, _ := newTestClient(t, fs, detection(sensor.ModeTouch, true), mode.KindAmbient, "")
	t0 := time.Unix(1000, 0)
	c.enterPlay(t0)

	press(c, input.Input{Taps: []input.Tap{{Col: 500, Row: 3}}}, t0)
	if c.pipeline.Last() != 0 {
		t.Fatalf("tap outside the canvas became a peck")
	}

	press(c, input.Input{Taps: []input.Tap{{Col: 50, Row: 20}}}, t0.Add(time.Second))
	if c.pipeline.Last() != 1 {
		t.Fatalf("tap on the canvas ignored")
	}
	if !c.state.HasTapped {
		t.Error("tap position not recorded")
	}
}

func TestSettingsPausesSensing(t *testing.T) {
	fs := newFakeServer()
	c, _ := newTestClient(t, fs, detection(sensor.ModeMixed, false), mode.KindFalling, "")
	t0 := time.Unix(1000, 0)
	c.enterPlay(t0)
	if fs.listeners != 1 {
		t.Fatalf("listeners = %d after entering play, want 1", fs.listeners)
	}

	press(c, input.Input{Tab: true}, t0)
	if c.state.Screen != ScreenSettings {
		t.Fatalf("screen = %v, want settings", c.state.Screen)
	}
	if fs.listeners != 0 || c.pipeline.Active() {
		t.Errorf("sensing still running in settings (listeners=%d)", fs.listeners)
	}

	c.state.Input = input.Input{Escape: true}
	c.updateSettings(t0.Add(time.Second))
	if c.state.Screen != ScreenPlay || !c.pipeline.Active() {
		t.Fatalf("closing settings did not resume play")
	}
	if fs.listeners != 1 {
		t.Errorf("listeners = %d after resuming, want 1", fs.listeners)
	}
	if fs.speaker.resumes != 1 {
		t.Errorf("speaker resumes = %d, want 1", fs.speaker.resumes)
	}
}

func TestSettingsAdjustThresholds(t *testing.T) {
	fs := newFakeServer()
	c, _ := newTestClient(t, fs, sensor.DefaultDetectionConfig(), mode.KindTarget, "")
	now := time.Unix(1000, 0)

	c.adjustSetting(itemSound, 1, now)
	if got := c.detection.SoundThreshold; math.Abs(got-0.21) > 1e-9 {
		t.Errorf("sound threshold = %v, want 0.21", got)
	}
	for range 50 {
		c.adjustSetting(itemSound, -1, now)
	}
	if got := c.detection.SoundThreshold; math.Abs(got-0.01) > 1e-9 {
		t.Errorf("sound threshold = %v, want clamped to 0.01", got)
	}

	c.adjustSetting(itemVibration, 1, now)
	if got := c.detection.VibrationThreshold; math.Abs(got-5.5) > 1e-9 {
		t.Errorf("vibration threshold = %v, want 5.5", got)
	}
	for range 40 {
		c.adjustSetting(itemVibration, 1, now)
	}
	if got := c.detection.VibrationThreshold; got != 15 {
		t.Errorf("vibration threshold = %v, want clamped to 15", got)
	}

	c.adjustSetting(itemDetection, 1, now)
	if c.detection.Mode != sensor.ModeTouch {
		t.Errorf("detection mode = %v, want wrap from MIXED to TOUCH", c.detection.Mode)
	}
	c.adjustSetting(itemDetection, -1, now)
	if c.detection.Mode != sensor.ModeMixed {
		t.Errorf("detection mode = %v, want MIXED", c.detection.Mode)
	}

	if err := c.detection.Validate(); err != nil {
		t.Errorf("adjusted config invalid: %v", err)
	}
}

func TestSwitchGameMode(t *testing.T) {
	fs := newFakeServer()
	c, _ := newTestClient(t, fs, detection(sensor.ModeTouch, false), mode.KindTarget, "")
	t0 := time.Unix(1000, 0)
	c.enterPlay(t0)
	press(c, space(), t0)

	press(c, input.Input{Text: []rune{'g'}}, t0.Add(time.Second))
	if c.active.Kind() != mode.KindFalling {
		t.Fatalf("game = %v, want falling", c.active.Kind())
	}
	if c.active.Score() != 0 {
		t.Errorf("new mode starts with score %d", c.active.Score())
	}

	// The peck before the switch must not reach the new mode
	press(c, input.Input{}, t0.Add(2*time.Second))
	if f, ok := c.active.(*mode.Falling); ok && f.Shaking(t0.Add(2*time.Second)) {
		t.Error("old peck replayed into the new mode")
	}

	c.adjustSetting(itemGame, -1, t0)
	if c.active.Kind() != mode.KindTarget {
		t.Errorf("game = %v, want target after stepping back", c.active.Kind())
	}
}

func TestPermissionRequests(t *testing.T) {
	fs := newFakeServer()
	c, _ := newTestClient(t, fs, sensor.DefaultDetectionConfig(), mode.KindTarget, "")
	now := time.Unix(1000, 0)

	c.activateSetting(itemMicrophone, now)
	if c.state.Status != "Microphone permission denied" {
		t.Errorf("status = %q", c.state.Status)
	}
	if got := c.settingValue(itemMicrophone); got != "not enabled" {
		t.Errorf("microphone row = %q, want not enabled", got)
	}

	c.activateSetting(itemMotion, now)
	if c.state.Status != "Motion remote enabled" {
		t.Errorf("status = %q", c.state.Status)
	}
}

func TestThemeNotConfigured(t *testing.T) {
	fs := newFakeServer()
	c, _ := newTestClient(t, fs, sensor.DefaultDetectionConfig(), mode.KindTarget, "")
	c.state.Screen = ScreenSettings

	c.activateSetting(itemTheme, time.Unix(1000, 0))
	if c.state.Screen != ScreenSettings {
		t.Errorf("screen = %v, want settings", c.state.Screen)
	}
	if c.state.Status != "Theme service not configured" {
		t.Errorf("status = %q", c.state.Status)
	}
}

func TestThemeIsAppliedOnTheLoop(t *testing.T) {
	fs := newFakeServer()
	fs.generator = fakeGenerator{enabled: true, res: assetgen.Result{
		BugURL:        "https://img.example/bug.png",
		FruitURL:      "https://img.example/fruit.png",
		BackgroundURL: "https://img.example/bg.png",
	}, calls: make(chan context.Context, 1)}
	c, _ := newTestClient(t, fs, sensor.DefaultDetectionConfig(), mode.KindFalling, "")
	now := time.Unix(1000, 0)
	c.state.Screen = ScreenSettings

	c.activateSetting(itemTheme, now)
	if c.state.Screen != ScreenTheme {
		t.Fatalf("screen = %v, want theme entry", c.state.Screen)
	}
	c.state.Input = input.Input{Text: []rune("crows")}
	c.updateTheme(now)
	c.state.Input = input.Input{Backspace: true}
	c.updateTheme(now)
	c.state.Input = input.Input{Text: []rune("s")}
	c.updateTheme(now)
	c.state.Input = input.Input{Enter: true}
	c.updateTheme(now)

	if c.state.Screen != ScreenSettings || !c.state.Generating {
		t.Fatalf("theme not submitted (screen=%v generating=%v)", c.state.Screen, c.state.Generating)
	}

	deadline := time.Now().Add(2 * time.Second)
	for c.state.Generating && time.Now().Before(deadline) {
		c.applyTheme(now)
		time.Sleep(time.Millisecond)
	}
	if c.state.Generating {
		t.Fatal("theme result never arrived")
	}
	if c.state.Theme != "crows" {
		t.Errorf("theme = %q, want crows", c.state.Theme)
	}
	if len(c.assets.BugImages) != 1 || c.assets.BugImages[0] != "https://img.example/bug.png" {
		t.Errorf("bug images = %v", c.assets.BugImages)
	}
	if c.assets.Background.Type != asset.BackgroundImage || c.assets.Background.Value != "https://img.example/bg.png" {
		t.Errorf("background = %+v", c.assets.Background)
	}

	reqCtx := <-fs.generator.calls
	if reqCtx.Err() == nil {
		t.Error("request context still live after the theme was applied")
	}
	if c.cancelTheme != nil {
		t.Error("cancel func kept after the theme was applied")
	}
}

func TestShutdownEventCountsDown(t *testing.T) {
	fs := newFakeServer()
	c, _ := newTestClient(t, fs, sensor.DefaultDetectionConfig(), mode.KindTarget, "")
	c.enterPlay(time.Unix(1000, 0))

	fs.handle.EventsCh <- server.ClientEvent{Type: server.EventServerShutdown}
	c.processServerEvents()
	if c.state.Screen != ScreenShutdown {
		t.Fatalf("screen = %v, want shutdown", c.state.Screen)
	}
	if c.pipeline.Active() {
		t.Error("sensing still active during shutdown")
	}

	c.state.delta = 5 * time.Second
	c.updateShutdownState()
	if !c.state.Running {
		t.Fatal("disconnected before the countdown ended")
	}
	c.state.delta = 6 * time.Second
	c.updateShutdownState()
	if c.state.Running {
		t.Error("still running after the countdown")
	}
}

func TestDrawFrame(t *testing.T) {
	fs := newFakeServer()
	c, out := newTestClient(t, fs, detection(sensor.ModeMixed, true), mode.KindTarget, "")
	now := time.Unix(1000, 0)
	c.enterPlay(now)

	if err := c.drawFrame(now); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Peck the Bug") {
		t.Error("HUD title missing from the frame")
	}
	if !strings.Contains(out.String(), "snd") {
		t.Error("debug overlay missing from the frame")
	}

	out.Reset()
	c.openSettings()
	if err := c.drawFrame(now); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Settings") || !strings.Contains(out.String(), "Sound threshold") {
		t.Error("settings panel missing from the frame")
	}
}

func TestRunExitsWhenInputEnds(t *testing.T) {
	fs := newFakeServer()
	c, out := newTestClient(t, fs, sensor.DefaultDetectionConfig(), mode.KindAmbient, "q")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("Run only returned on timeout")
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if len(fs.unregistered) != 1 || fs.unregistered[0] != 1 {
		t.Errorf("unregistered = %v, want [1]", fs.unregistered)
	}
	if fs.listeners != 0 {
		t.Errorf("listeners = %d after exit, want 0", fs.listeners)
	}
	if !strings.Contains(out.String(), "\033[?1000h") || !strings.Contains(out.String(), "\033[?1000l") {
		t.Error("mouse reporting not toggled around the session")
	}
}
