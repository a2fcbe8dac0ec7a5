// Package assetgen requests themed game images from an external generation
// service. Failures never reach the game: every image that cannot be
// produced is replaced by a placeholder.
package assetgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// PlaceholderURL stands in for any image the service failed to produce.
const PlaceholderURL = "https://placehold.co/512x512/png?text=Error"

// DefaultPrompts are used when the service cannot design a theme.
var DefaultPrompts = Prompts{
	Bug:        "A shiny golden beetle, high contrast, vector art style, white background",
	Fruit:      "A bright red cherry with a green leaf, glossy, vector art style, white background",
	Background: "A forest floor with leaves and pebbles, slightly blurred, top down view",
}

// ErrNotConfigured is returned by requests made without a base URL.
var ErrNotConfigured = errors.New("generation service not configured")

// Prompts describes the three images of a theme.
type Prompts struct {
	Bug        string `json:"bugPrompt"`
	Fruit      string `json:"fruitPrompt"`
	Background string `json:"bgPrompt"`
}

// Result holds one image reference per asset category.
type Result struct {
	BugURL        string
	FruitURL      string
	BackgroundURL string
}

// Config holds generation client configuration.
type Config struct {
	BaseURL string        // Service root, e.g. http://localhost:8787
	APIKey  string        // Sent as a bearer token when set
	Timeout time.Duration // Per request (default: 90s)
}

// Client talks to the generation service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates a generation client.
func NewClient(cfg Config, logger *log.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 90 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// Enabled reports whether a service URL is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// Generate designs a theme and renders its three images concurrently.
// It always returns a complete Result.
func (c *Client) Generate(ctx context.Context, theme string) Result {
	prompts, err := c.Design(ctx, theme)
	if err != nil {
		c.logger.Warn("theme design failed, using default prompts", "theme", theme, "err", err)
		prompts = DefaultPrompts
	}

	var res Result
	g, gctx := errgroup.WithContext(ctx)
	jobs := []struct {
		prompt string
		size   string
		dst    *string
	}{
		{prompts.Bug, "1K", &res.BugURL},
		{prompts.Fruit, "1K", &res.FruitURL},
		{prompts.Background, "2K", &res.BackgroundURL},
	}
	for _, job := range jobs {
		g.Go(func() error {
			url, err := c.Image(gctx, job.prompt, job.size)
			if err != nil {
				c.logger.Warn("image generation failed", "size", job.size, "err", err)
				url = PlaceholderURL
			}
			*job.dst = url
			return nil // One failed image must not cancel the others
		})
	}
	_ = g.Wait()

	c.logger.Info("theme generated", "theme", theme)
	return res
}

type designRequest struct {
	Theme string `json:"theme"`
}

// Design asks the service for the three image prompts of a theme.
func (c *Client) Design(ctx context.Context, theme string) (Prompts, error) {
	var p Prompts
	if err := c.post(ctx, "/prompts", designRequest{Theme: theme}, &p); err != nil {
		return Prompts{}, err
	}
	if p.Bug == "" || p.Fruit == "" || p.Background == "" {
		return Prompts{}, fmt.Errorf("incomplete prompts: %+v", p)
	}
	return p, nil
}

type imageRequest struct {
	Prompt      string `json:"prompt"`
	Size        string `json:"size"`
	AspectRatio string `json:"aspectRatio"`
}

type imageResponse struct {
	URL  string `json:"url,omitempty"`
	Data string `json:"data,omitempty"` // Base64 PNG
}

// Image renders one prompt. 2K images are 16:9, smaller ones square.
func (c *Client) Image(ctx context.Context, prompt, size string) (string, error) {
	aspect := "1:1"
	if size == "2K" {
		aspect = "16:9"
	}

	var resp imageResponse
	if err := c.post(ctx, "/images", imageRequest{Prompt: prompt, Size: size, AspectRatio: aspect}, &resp); err != nil {
		return "", err
	}
	switch {
	case resp.Data != "":
		return "data:image/png;base64," + resp.Data, nil
	case resp.URL != "":
		return resp.URL, nil
	}
	return "", errors.New("no image data found")
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
