package client

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tomz197/peckplay/internal/asset"
	"github.com/tomz197/peckplay/internal/assetgen"
	"github.com/tomz197/peckplay/internal/loop/config"
	"github.com/tomz197/peckplay/internal/mode"
	"github.com/tomz197/peckplay/internal/sensor"
)

// settingItem is one row of the settings panel.
type settingItem int

const (
	itemDetection settingItem = iota
	itemSound
	itemVibration
	itemDebug
	itemGame
	itemBackground
	itemFeedback
	itemMicrophone
	itemMotion
	itemTheme
	itemCount
)

var itemLabels = [...]string{
	itemDetection:  "Detection",
	itemSound:      "Sound threshold",
	itemVibration:  "Vibration threshold",
	itemDebug:      "Debug (taps always count)",
	itemGame:       "Game",
	itemBackground: "Background",
	itemFeedback:   "Feedback tones",
	itemMicrophone: "Microphone",
	itemMotion:     "Motion remote",
	itemTheme:      "Generate theme",
}

func (it settingItem) label() string {
	return itemLabels[it]
}

// settingValue renders the current value of a row.
func (c *Client) settingValue(it settingItem) string {
	snap := c.server.GetSnapshot()
	switch it {
	case itemDetection:
		return c.detection.Mode.String()
	case itemSound:
		return fmt.Sprintf("%.2f", c.detection.SoundThreshold)
	case itemVibration:
		return fmt.Sprintf("%.1f m/s²", c.detection.VibrationThreshold)
	case itemDebug:
		return onOff(c.detection.Debug)
	case itemGame:
		return c.active.Kind().Title()
	case itemBackground:
		return c.assets.Background.Name
	case itemFeedback:
		return onOff(c.dispatcher.Enabled())
	case itemMicrophone:
		return permissionLabel(snap.Microphone)
	case itemMotion:
		return permissionLabel(snap.Motion)
	case itemTheme:
		switch {
		case c.state.Generating:
			return "generating..."
		case !c.server.Generator().Enabled():
			return "not configured"
		case c.state.Theme != "":
			return c.state.Theme
		default:
			return "enter a theme"
		}
	}
	return ""
}

// updateSettings handles the settings panel.
func (c *Client) updateSettings(now time.Time) {
	in := c.state.Input
	switch {
	case in.Escape || in.Tab || in.Has('s') || in.Has('q'):
		c.closeSettings(now)
		return
	case in.Up:
		c.state.Cursor = (c.state.Cursor + itemCount - 1) % itemCount
	case in.Down:
		c.state.Cursor = (c.state.Cursor + 1) % itemCount
	case in.Left || in.Has('-'):
		c.adjustSetting(c.state.Cursor, -1, now)
	case in.Right || in.Has('+') || in.Has('='):
		c.adjustSetting(c.state.Cursor, 1, now)
	case in.Enter || in.Has(' '):
		c.activateSetting(c.state.Cursor, now)
	}
}

// adjustSetting steps a row's value in direction dir (-1 or +1).
func (c *Client) adjustSetting(it settingItem, dir int, now time.Time) {
	switch it {
	case itemDetection:
		n := int(sensor.ModeMixed) + 1
		c.detection.Mode = sensor.DetectionMode((int(c.detection.Mode) + dir + n) % n)
	case itemSound:
		c.detection.SoundThreshold = stepClamp(c.detection.SoundThreshold, dir,
			config.SoundThresholdStep, config.SoundThresholdMin, config.SoundThresholdMax)
	case itemVibration:
		c.detection.VibrationThreshold = stepClamp(c.detection.VibrationThreshold, dir,
			config.VibrationThresholdStep, config.VibrationThresholdMin, config.VibrationThresholdMax)
	case itemDebug:
		c.detection.Debug = !c.detection.Debug
	case itemGame:
		kind := c.active.Kind()
		if dir > 0 {
			kind = kind.Next()
		} else {
			kinds := mode.Kinds()
			kind = kinds[(int(kind)+len(kinds)-1)%len(kinds)]
		}
		c.switchMode(kind)
	case itemBackground:
		c.assets.Background = asset.NextBackground(c.assets.Background)
		c.active.SetAssets(c.assets)
	case itemFeedback:
		c.dispatcher.SetEnabled(!c.dispatcher.Enabled())
	default:
		return
	}
	c.logger.Debug("setting changed", "setting", it.label(), "value", c.settingValue(it))
}

// activateSetting runs a row's action; rows without one step forward.
func (c *Client) activateSetting(it settingItem, now time.Time) {
	switch it {
	case itemMicrophone:
		c.setStatus(requestResult("Microphone", c.server.RequestMicrophone()), now)
	case itemMotion:
		c.setStatus(requestResult("Motion remote", c.server.RequestMotion()), now)
	case itemTheme:
		if c.state.Generating {
			return
		}
		if !c.server.Generator().Enabled() {
			c.setStatus("Theme service not configured", now)
			return
		}
		c.state.ThemeInput = c.state.ThemeInput[:0]
		c.state.Screen = ScreenTheme
	default:
		c.adjustSetting(it, 1, now)
	}
}

// updateTheme handles theme text entry.
func (c *Client) updateTheme(now time.Time) {
	in := c.state.Input
	switch {
	case in.Escape:
		c.state.Screen = ScreenSettings
		return
	case in.Enter:
		theme := strings.TrimSpace(string(c.state.ThemeInput))
		c.state.Screen = ScreenSettings
		if theme == "" {
			return
		}
		c.startTheme(theme, now)
		return
	case in.Backspace:
		if n := len(c.state.ThemeInput); n > 0 {
			c.state.ThemeInput = c.state.ThemeInput[:n-1]
		}
	}
	for _, r := range in.Text {
		if len(c.state.ThemeInput) >= config.MaxThemeLength {
			break
		}
		c.state.ThemeInput = append(c.state.ThemeInput, r)
	}
}

// startTheme asks the generator for a theme in the background. The result
// is applied on the loop goroutine by applyTheme.
func (c *Client) startTheme(theme string, now time.Time) {
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancelTheme = cancel
	c.state.Generating = true
	c.state.Theme = theme
	c.setStatus(fmt.Sprintf("Generating %q...", theme), now)

	gen := c.server.Generator()
	go func() {
		res := gen.Generate(ctx, theme)
		select {
		case c.themeCh <- themeResult{theme: theme, Result: res}:
		case <-ctx.Done():
		}
	}()
}

type themeResult struct {
	theme string
	assetgen.Result
}

// applyTheme installs a finished theme, if one arrived.
func (c *Client) applyTheme(now time.Time) {
	select {
	case res := <-c.themeCh:
		c.state.Generating = false
		if c.cancelTheme != nil {
			c.cancelTheme()
			c.cancelTheme = nil
		}
		c.assets.BugImages = []string{res.BugURL}
		c.assets.FruitImages = []string{res.FruitURL}
		c.assets.Background = asset.BackgroundSetting{
			Type:  asset.BackgroundImage,
			Value: res.BackgroundURL,
			Name:  "Theme: " + res.theme,
		}
		c.active.SetAssets(c.assets)
		c.setStatus(fmt.Sprintf("Theme %q ready", res.theme), now)
		c.logger.Info("theme applied", "theme", res.theme, "bug", res.BugURL, "fruit", res.FruitURL)
	default:
	}
}

func (c *Client) setStatus(msg string, now time.Time) {
	c.state.Status = msg
	c.state.StatusAt = now
}

func requestResult(name string, err error) string {
	switch {
	case err == nil:
		return name + " enabled"
	case errors.Is(err, sensor.ErrPermissionDenied):
		return name + " permission denied"
	case errors.Is(err, sensor.ErrSensorUnavailable):
		return name + " not available on this host"
	default:
		return fmt.Sprintf("%s failed: %v", name, err)
	}
}

func permissionLabel(p sensor.Permission) string {
	switch p {
	case sensor.PermissionGranted:
		return "enabled"
	case sensor.PermissionDenied:
		return "not enabled"
	default:
		return "press enter to enable"
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// stepClamp moves v by one step in direction dir, snapped to the step grid
// and clamped to [lo, hi].
func stepClamp(v float64, dir int, step, lo, hi float64) float64 {
	v = math.Round(v/step)*step + float64(dir)*step
	v = math.Round(v/step) * step
	return math.Max(lo, math.Min(hi, v))
}
