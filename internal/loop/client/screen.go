package client

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/tomz197/peckplay/internal/draw"
	"github.com/tomz197/peckplay/internal/loop/config"
	"github.com/tomz197/peckplay/internal/mode"
	"github.com/tomz197/peckplay/internal/object"
	"github.com/tomz197/peckplay/internal/sensor"
)

// statusDuration is how long a settings message stays visible.
const statusDuration = 4 * time.Second

var tapMarkerColor = draw.Hex("#EF4444")

// styles holds the lipgloss styles of one session's UI.
type styles struct {
	title    lipgloss.Style
	score    lipgloss.Style
	dim      lipgloss.Style
	on       lipgloss.Style
	off      lipgloss.Style
	selected lipgloss.Style
	status   lipgloss.Style
	panel    lipgloss.Style
	bar      lipgloss.Style
}

// newStyles builds the styles for output w. Sessions always get true
// colour: the canvas already requires it, and SSH sessions are not a tty
// lipgloss could query.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.TrueColor)
	r.SetHasDarkBackground(true)

	base := r.NewStyle().Background(lipgloss.Color("#111827")).Foreground(lipgloss.Color("#F9FAFB"))
	return styles{
		title:    base.Bold(true).Foreground(lipgloss.Color("#FACC15")),
		score:    base.Bold(true),
		dim:      base.Foreground(lipgloss.Color("#9CA3AF")),
		on:       base.Foreground(lipgloss.Color("#4ADE80")),
		off:      base.Foreground(lipgloss.Color("#F87171")),
		selected: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#111827")).Background(lipgloss.Color("#FACC15")),
		status:   r.NewStyle().Italic(true).Foreground(lipgloss.Color("#93C5FD")),
		panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FACC15")).
			Background(lipgloss.Color("#111827")).
			Foreground(lipgloss.Color("#F9FAFB")).
			Padding(0, 2).
			Width(panelWidth),
		bar: base.Foreground(lipgloss.Color("#38BDF8")),
	}
}

const panelWidth = 60

// textLayer collects text drawn by objects during the canvas pass and
// writes it once the canvas has been rendered, so pixels never cover it.
type textLayer struct {
	items []layerText
	raw   strings.Builder
}

type layerText struct {
	col, row int
	s        string
}

var _ object.TextWriter = (*textLayer)(nil)

func (l *textLayer) WriteAt(col, row int, s string) {
	l.items = append(l.items, layerText{col: col, row: row, s: s})
}

func (l *textLayer) Write(p []byte) (int, error) {
	return l.raw.Write(p)
}

// flush writes the collected text and marks the covered cells dirty.
func (l *textLayer) flush(cw *draw.ChunkWriter, canvas *draw.Canvas) {
	for _, it := range l.items {
		cw.WriteAt(it.col, it.row, it.s)
		canvas.MarkTextDirty(it.col, it.row, lipgloss.Width(it.s))
	}
	cw.WriteString(l.raw.String())
	l.items = l.items[:0]
	l.raw.Reset()
}

// drawFrame draws the current frame.
func (c *Client) drawFrame(now time.Time) error {
	// On screen transitions, do a full terminal clear so UI elements from
	// the previous screen don't persist.
	if c.state.Screen != c.state.prevScreen {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.state.prevScreen = c.state.Screen
	}

	c.canvas.Fill(draw.FromColorful(c.assets.Background.Color()))

	ctx := object.DrawContext{
		Canvas:    c.canvas,
		Text:      &c.text,
		Now:       now,
		PixelSize: c.canvas.LogicalWidth() / config.ReferenceWidthPx,
	}
	if err := c.active.Draw(ctx); err != nil {
		return err
	}
	if c.state.Screen == ScreenPlay && c.detection.Debug && c.state.HasTapped {
		c.drawTapMarker()
	}

	// Feedback flash over everything the mode drew
	c.canvas.Overlay(draw.White, c.dispatcher.Flash(now))

	c.canvas.Render(c.chunkWriter)
	c.canvas.RenderBorder(c.chunkWriter)
	c.text.flush(c.chunkWriter, c.canvas)

	c.drawUI(now)

	return c.chunkWriter.Flush()
}

// drawTapMarker marks where the last tap landed. Game logic never sees the
// position.
func (c *Client) drawTapMarker() {
	x, y := c.state.LastTapX, c.state.LastTapY
	const arm = 1.5
	dy := arm / c.canvas.Aspect()
	c.canvas.DrawLine(draw.Point{X: x - arm, Y: y}, draw.Point{X: x + arm, Y: y}, tapMarkerColor)
	c.canvas.DrawLine(draw.Point{X: x, Y: y - dy}, draw.Point{X: x, Y: y + dy}, tapMarkerColor)
}

// drawUI draws the text overlay for the current screen.
func (c *Client) drawUI(now time.Time) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()

	switch c.state.Screen {
	case ScreenShutdown:
		c.drawShutdownScreen(termWidth/2, termHeight/2)
	case ScreenSettings, ScreenTheme:
		c.drawSettingsPanel(termWidth, termHeight, now)
	default:
		c.drawPlayingHUD(termWidth, termHeight)
	}
}

// writeText writes s (which may carry styling) and marks its cells dirty.
func (c *Client) writeText(col, row int, s string) {
	if row < 1 || row > c.canvas.TerminalHeight() {
		return
	}
	if col < 1 {
		col = 1
	}
	c.chunkWriter.WriteAt(col, row, s)
	c.canvas.MarkTextDirty(col, row, lipgloss.Width(s))
}

// writeBlock writes a multi-line block line by line.
func (c *Client) writeBlock(col, row int, block string) {
	for i, line := range strings.Split(block, "\n") {
		c.writeText(col, row+i, line)
	}
}

// drawPlayingHUD draws the in-game HUD.
// Text fields use fixed-width formatting so shrinking values don't leave
// residual characters on screen.
func (c *Client) drawPlayingHUD(termWidth, termHeight int) {
	st := c.styles
	kind := c.active.Kind()

	left := st.title.Render(" "+kind.Title()+" ") +
		st.score.Render(fmt.Sprintf(" %s: %-6d", scoreLabel(kind), c.active.Score()))
	c.writeText(2, 1, left)

	snap := c.server.GetSnapshot()
	right := st.dim.Render(fmt.Sprintf(" %-9s ", c.detection.Mode)) +
		st.dim.Render("mic ") + c.permission(snap.Microphone) +
		st.dim.Render(" motion ") + c.permission(snap.Motion) + st.dim.Render(" ")
	c.writeText(termWidth-lipgloss.Width(right), 1, right)

	hint := st.dim.Render(" space/click peck · tab settings · g game · q quit ")
	c.writeText(2, termHeight, hint)

	if c.state.HasPecked {
		last := st.dim.Render(fmt.Sprintf(" last peck: %-6s ", c.state.LastSource))
		c.writeText(termWidth-lipgloss.Width(last), termHeight, last)
	}

	if c.detection.Debug {
		c.drawDebugOverlay(termHeight)
	}
}

// drawDebugOverlay shows the live sensor readings against their thresholds.
func (c *Client) drawDebugOverlay(termHeight int) {
	st := c.styles
	level, z := c.pipeline.Readings()
	total, _ := c.dispatcher.Count(sensor.SourceTouch)

	sound := fmt.Sprintf(" snd %s %.2f/%.2f ",
		meter(level, 1, c.detection.SoundThreshold), level, c.detection.SoundThreshold)
	motion := fmt.Sprintf(" |z| %s %4.1f/%4.1f ",
		meter(z, config.MotionBarMax, c.detection.VibrationThreshold), z, c.detection.VibrationThreshold)
	c.writeText(2, termHeight-3, st.bar.Render(sound))
	c.writeText(2, termHeight-2, st.bar.Render(motion))
	c.writeText(2, termHeight-1, st.dim.Render(fmt.Sprintf(" pecks %-6d seq %-6d ", total, c.pipeline.Last())))
}

// meter renders v/full as a fixed-width bar with a tick at the threshold.
func meter(v, full, threshold float64) string {
	width := config.DebugBarWidth
	filled := int(v / full * float64(width))
	filled = min(max(filled, 0), width)
	mark := int(threshold / full * float64(width))

	var b strings.Builder
	for i := range width {
		switch {
		case i == mark:
			b.WriteRune('|')
		case i < filled:
			b.WriteRune(draw.BlockFull)
		default:
			b.WriteRune('·')
		}
	}
	return b.String()
}

func (c *Client) permission(p sensor.Permission) string {
	switch p {
	case sensor.PermissionGranted:
		return c.styles.on.Render("on ")
	case sensor.PermissionDenied:
		return c.styles.off.Render("off")
	default:
		return c.styles.dim.Render("ask")
	}
}

func scoreLabel(k mode.Kind) string {
	switch k {
	case mode.KindFalling:
		return "Popped"
	case mode.KindAmbient:
		return "Ripples"
	default:
		return "Score"
	}
}

// drawSettingsPanel draws the settings panel (and theme entry) centered
// over the paused game.
func (c *Client) drawSettingsPanel(termWidth, termHeight int, now time.Time) {
	st := c.styles

	var lines []string
	lines = append(lines, st.title.Render("Settings"), "")
	for it := settingItem(0); it < itemCount; it++ {
		row := fmt.Sprintf("%-27s %-24s", it.label(), truncate(c.settingValue(it), 24))
		if it == c.state.Cursor {
			lines = append(lines, st.selected.Render("› "+row))
		} else {
			lines = append(lines, "  "+row)
		}
	}
	lines = append(lines, "")

	if c.state.Screen == ScreenTheme {
		entry := truncate(string(c.state.ThemeInput), panelWidth-14)
		lines = append(lines,
			"Theme: "+entry+"_",
			st.dim.Render("enter generate · esc cancel"))
	} else {
		lines = append(lines, st.dim.Render("↑/↓ select · ←/→ change · enter toggle · esc back"))
	}

	status := ""
	if c.state.Status != "" && now.Sub(c.state.StatusAt) < statusDuration {
		status = truncate(c.state.Status, panelWidth-6)
	}
	lines = append(lines, st.status.Render(status))

	block := st.panel.Render(strings.Join(lines, "\n"))
	col := (termWidth-lipgloss.Width(block))/2 + 1
	row := (termHeight-lipgloss.Height(block))/2 + 1
	c.writeBlock(col, row, block)
}

// drawShutdownScreen draws the host shutdown notification screen.
func (c *Client) drawShutdownScreen(centerX, centerY int) {
	st := c.styles
	remaining := int(c.state.shutdownTimer) + 1
	lines := []string{
		st.title.Render("HOST SHUTTING DOWN"),
		"",
		"The playground host is restarting.",
		"Please reconnect in a moment.",
		"",
		fmt.Sprintf("Disconnecting in %2d seconds...", remaining),
		st.dim.Render("Press Q to disconnect now"),
	}
	block := st.panel.Render(strings.Join(lines, "\n"))
	c.writeBlock(centerX-lipgloss.Width(block)/2+1, centerY-lipgloss.Height(block)/2+1, block)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
