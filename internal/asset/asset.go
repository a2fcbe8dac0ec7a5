// Package asset holds the image references and background presets the game
// modes draw from. The core treats every reference as opaque.
package asset

import (
	"hash/fnv"
	"math/rand"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// BackgroundType distinguishes solid colours from image backgrounds.
type BackgroundType string

const (
	BackgroundColor BackgroundType = "color"
	BackgroundImage BackgroundType = "image"
)

// BackgroundSetting is one selectable background.
type BackgroundSetting struct {
	Type  BackgroundType
	Value string // Hex colour or image URL
	Name  string
}

// GameAssets is the read-only asset set handed to game modes.
type GameAssets struct {
	BugImages   []string
	FruitImages []string
	Background  BackgroundSetting
}

// DefaultAssets returns the built-in asset set.
func DefaultAssets() GameAssets {
	return GameAssets{
		BugImages:   append([]string(nil), BugImages...),
		FruitImages: append([]string(nil), FruitImages...),
		Background:  DefaultBackground(),
	}
}

// DefaultBackground returns the first preset.
func DefaultBackground() BackgroundSetting {
	return BackgroundPresets[0]
}

// BackgroundByName finds a preset by name (case-insensitive).
func BackgroundByName(name string) (BackgroundSetting, bool) {
	for _, bg := range BackgroundPresets {
		if strings.EqualFold(bg.Name, name) {
			return bg, true
		}
	}
	return BackgroundSetting{}, false
}

// NextBackground returns the preset following current, wrapping around.
// A background that is not a preset (e.g. generated) cycles to the first.
func NextBackground(current BackgroundSetting) BackgroundSetting {
	for i, bg := range BackgroundPresets {
		if bg.Name == current.Name {
			return BackgroundPresets[(i+1)%len(BackgroundPresets)]
		}
	}
	return BackgroundPresets[0]
}

// Pick returns a uniformly random entry of urls, or "" when it is empty.
func Pick(rng *rand.Rand, urls []string) string {
	if len(urls) == 0 {
		return ""
	}
	return urls[rng.Intn(len(urls))]
}

// FruitColor returns the colour tag for a fruit image. The first key
// contained in the URL wins; unknown images are white.
func FruitColor(url string) string {
	for _, tag := range fruitColors {
		if strings.Contains(url, tag.key) {
			return tag.color
		}
	}
	return "#FFFFFF"
}

// Tint returns a representative display colour for an image reference.
// Known fruit images use their tag; any other reference gets a stable
// colour derived from its hash so each image stays recognisable.
func Tint(url string) colorful.Color {
	if hex := FruitColor(url); hex != "#FFFFFF" {
		c, _ := colorful.Hex(hex)
		return c
	}
	h := fnv.New32a()
	h.Write([]byte(url))
	return colorful.Hsv(float64(h.Sum32()%360), 0.75, 0.9)
}

// Color returns the fill colour of a background. Image
// backgrounds cannot be displayed in a terminal, so they fall back to their
// preset tint.
func (b BackgroundSetting) Color() colorful.Color {
	if b.Type == BackgroundColor {
		if c, err := colorful.Hex(b.Value); err == nil {
			return c
		}
	}
	if hex, ok := imageTints[b.Name]; ok {
		c, _ := colorful.Hex(hex)
		return c
	}
	dark := colorful.Color{R: 0.1, G: 0.1, B: 0.12}
	if b.Type == BackgroundImage && b.Value != "" {
		// Generated images get a muted shade of their URL tint
		return Tint(b.Value).BlendLab(dark, 0.7)
	}
	return dark
}
