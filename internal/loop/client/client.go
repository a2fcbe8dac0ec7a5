// Package client runs one playground session: sensing, feedback, the active
// game mode and the terminal surface.
package client

import (
	"bufio"
	"context"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/peckplay/internal/asset"
	"github.com/tomz197/peckplay/internal/draw"
	"github.com/tomz197/peckplay/internal/feedback"
	"github.com/tomz197/peckplay/internal/input"
	"github.com/tomz197/peckplay/internal/loop/config"
	"github.com/tomz197/peckplay/internal/loop/server"
	"github.com/tomz197/peckplay/internal/mode"
	"github.com/tomz197/peckplay/internal/peck"
	"github.com/tomz197/peckplay/internal/sensor"
)

// Client handles sensing, game logic and rendering for a single connection.
type Client struct {
	server       server.GameServer
	handle       *server.ClientHandle
	state        *ClientState
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates UI text for chunked output
	reader       *bufio.Reader
	writer       io.Writer
	inputStream  *input.Stream
	termSizeFunc draw.TermSizeFunc
	logger       *log.Logger
	rng          *rand.Rand
	styles       styles
	text         textLayer // Object labels, written after the canvas

	detection  sensor.DetectionConfig
	assets     asset.GameAssets
	pipeline   *Pipeline
	dispatcher *feedback.Dispatcher
	active     mode.Mode

	ctx         context.Context
	themeCh     chan themeResult
	cancelTheme context.CancelFunc
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Name         string
	Logger       *log.Logger
	Rand         *rand.Rand // Seeded from the clock when nil

	Detection sensor.DetectionConfig
	Game      mode.Kind
	Assets    asset.GameAssets
	Feedback  bool          // Play feedback tones
	Debounce  time.Duration // Peck debounce window (peck.DefaultWindow when 0)
}

// NewClient creates a new client connected to the given server.
func NewClient(gs server.GameServer, r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	window := opts.Debounce
	if window <= 0 {
		window = peck.DefaultWindow
	}

	handle := gs.RegisterClient(opts.Name)
	logger = logger.With("session", handle.ID)

	// Create canvas with clamped dimensions for max render resolution
	termWidth, termHeight, _ := draw.TerminalSizeRawWith(termSizeFunc)
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, config.ViewWidth, config.ViewHeight)
	canvas.SetOffset(offsetCol, offsetRow)
	chunkWriter := draw.NewChunkWriter(w, offsetCol, offsetRow)

	return &Client{
		server:       gs,
		handle:       handle,
		state:        NewClientState(),
		canvas:       canvas,
		chunkWriter:  chunkWriter,
		reader:       r,
		writer:       w,
		inputStream:  input.StartStream(r),
		termSizeFunc: termSizeFunc,
		logger:       logger,
		rng:          rng,
		styles:       newStyles(w),
		detection:    opts.Detection,
		assets:       opts.Assets,
		pipeline:     NewPipeline(window),
		dispatcher:   feedback.NewDispatcher(gs.Speaker(), logger, opts.Feedback),
		active:       mode.New(opts.Game, opts.Assets, rng),
		ctx:          context.Background(),
		themeCh:      make(chan themeResult, 1),
	}
}

// Run starts the client loop. Blocks until the client quits, its input ends,
// the server stops or ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	c.ctx = ctx

	draw.HideCursor(c.writer)
	draw.EnableMouse(c.writer)
	defer draw.ShowCursor(c.writer)
	defer draw.DisableMouse(c.writer)
	draw.ClearScreen(c.writer)

	c.server.Speaker().Resume()
	c.enterPlay(time.Now())
	c.logger.Info("session started", "game", c.active.Kind(), "detection", c.detection.Mode)

	lastTime := time.Now()
	var err error

	for c.state.Running {
		if ctx.Err() != nil {
			break
		}

		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		c.tick(frameStart)

		if err = c.drawFrame(frameStart); err != nil {
			break
		}

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	c.close()
	draw.ClearScreen(c.writer)
	return err
}

// tick runs one Input -> Update step.
func (c *Client) tick(now time.Time) {
	c.processInput()
	c.processServerEvents()
	c.applyTheme(now)
	c.updateScreen()

	switch c.state.Screen {
	case ScreenPlay:
		c.updatePlay(now)
	case ScreenSettings:
		c.updateSettings(now)
	case ScreenTheme:
		c.updateTheme(now)
	case ScreenShutdown:
		c.updateShutdownState()
	}
}

// close tears down every periodic process and leaves the server.
func (c *Client) close() {
	c.leavePlay()
	if c.cancelTheme != nil {
		c.cancelTheme()
	}
	c.server.UnregisterClient(c.handle.ID)
	total, _ := c.dispatcher.Count(sensor.SourceTouch)
	c.logger.Info("session ended", "pecks", total, "score", c.active.Score())
}

// processInput reads this frame's input.
func (c *Client) processInput() {
	c.state.Input = input.ReadInput(c.inputStream)

	if c.state.Input.Interrupt || c.state.Input.Closed {
		c.state.Running = false
	}
}

// processServerEvents handles events from the server.
func (c *Client) processServerEvents() {
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				// Server closed the channel
				c.state.Running = false
				return
			}
			if event.Type == server.EventServerShutdown {
				c.leavePlay()
				c.state.Screen = ScreenShutdown
				c.state.shutdownTimer = config.ShutdownDisplaySeconds
			}
		default:
			return
		}
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area (e.g. old borders or offset content).
func (c *Client) updateScreen() {
	termWidth, termHeight, err := draw.TerminalSizeRawWith(c.termSizeFunc)
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		draw.ClearScreen(c.writer)
		c.canvas.ForceRedraw()
	}

	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, config.MaxTermWidth)
	renderHeight = min(termHeight, config.MaxTermHeight)
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}

// updatePlay senses, dispatches feedback and advances the active mode.
func (c *Client) updatePlay(now time.Time) {
	in := c.state.Input
	switch {
	case in.Has('q'):
		c.state.Running = false
		return
	case in.Tab || in.Has('s'):
		c.openSettings()
		return
	case in.Has('g'):
		c.switchMode(c.active.Kind().Next())
		c.active.Activate(mode.Tick{Now: now, Peck: c.pipeline.Last()})
		return
	}

	taps := c.surfaceTaps(in)
	snap := c.server.GetSnapshot()
	for _, ev := range c.pipeline.Sense(c.detection, taps, c.handle.Motion, snap.Level, now) {
		c.dispatcher.OnPeck(ev, now)
		c.state.LastSource = ev.Source
		c.state.HasPecked = true
	}

	// The mode reads the counter once per tick
	before := c.active.Score()
	if err := c.active.Update(mode.Tick{Now: now, Peck: c.pipeline.Last()}); err != nil {
		c.logger.Error("mode update failed", "game", c.active.Kind(), "err", err)
	}
	if c.active.Kind() == mode.KindTarget && c.active.Score() > before {
		c.dispatcher.OnScore()
	}
}

// surfaceTaps counts taps that landed on the canvas, plus space presses.
// Tap coordinates are kept only for the debug overlay.
func (c *Client) surfaceTaps(in input.Input) int {
	n := 0
	for _, r := range in.Text {
		if r == ' ' {
			n++
		}
	}
	offCol, offRow := c.canvas.OffsetCol(), c.canvas.OffsetRow()
	for _, t := range in.Taps {
		col, row := t.Col-offCol, t.Row-offRow
		if col < 1 || row < 1 || col > c.canvas.TerminalWidth() || row > c.canvas.TerminalHeight() {
			continue
		}
		c.state.LastTapX, c.state.LastTapY = c.canvas.TerminalToLogical(col, row)
		c.state.HasTapped = true
		n++
	}
	return n
}

// enterPlay brings the play surface to the foreground.
func (c *Client) enterPlay(now time.Time) {
	c.state.Screen = ScreenPlay
	c.pipeline.SetActive(true)
	c.syncListening()
	c.active.Activate(mode.Tick{Now: now, Peck: c.pipeline.Last()})
}

// leavePlay stops sensing and the mode's timers.
func (c *Client) leavePlay() {
	if c.pipeline.Active() {
		c.active.Deactivate()
	}
	c.pipeline.SetActive(false)
	c.syncListening()
}

// openSettings moves the play surface to the background.
func (c *Client) openSettings() {
	c.leavePlay()
	c.state.Screen = ScreenSettings
}

// closeSettings resumes audio output and sensing.
func (c *Client) closeSettings(now time.Time) {
	c.server.Speaker().Resume()
	c.enterPlay(now)
}

// switchMode replaces the active mode with a fresh instance. The new mode is
// activated by the caller (or when play resumes).
func (c *Client) switchMode(kind mode.Kind) {
	if c.pipeline.Active() {
		c.active.Deactivate()
	}
	c.active = mode.New(kind, c.assets, c.rng)
	c.canvas.ForceRedraw()
	c.logger.Info("game mode changed", "game", kind)
}

// syncListening keeps the server's sound listener count in step with
// whether this session is sensing sound.
func (c *Client) syncListening() {
	want := c.pipeline.Active() && c.detection.SoundEnabled()
	if want == c.state.listening {
		return
	}
	c.server.ListenSound(want)
	c.state.listening = want
}

// updateShutdownState handles the shutdown screen countdown.
func (c *Client) updateShutdownState() {
	if c.state.Input.Has('q') || c.state.Input.Escape {
		c.state.Running = false
		return
	}
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}
