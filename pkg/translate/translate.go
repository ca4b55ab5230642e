// Package translate localizes fallback answers through a
// LibreTranslate-compatible HTTP service. Translation is best-effort: the
// gateway swallows every error here and returns untranslated text instead.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jeeves-ai/jeeves/pkg/config"
)

// Translator detects languages and translates text.
type Translator interface {
	// Detect returns the dominant language code of text (e.g. "es").
	Detect(ctx context.Context, text string) (string, error)
	// Translate converts text from source to target language. Source "auto"
	// lets the service detect it.
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Noop is used when translation is disabled. Detect reports English and
// Translate returns the input unchanged.
type Noop struct{}

func (Noop) Detect(ctx context.Context, text string) (string, error) { return "en", nil }

func (Noop) Translate(ctx context.Context, text, source, target string) (string, error) {
	return text, nil
}

// Client talks to a LibreTranslate-compatible service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a translation client from config.
func New(cfg config.TranslationConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("translate service status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Detect returns the most confident language for text.
func (c *Client) Detect(ctx context.Context, text string) (string, error) {
	var detections []struct {
		Language   string  `json:"language"`
		Confidence float64 `json:"confidence"`
	}
	if err := c.post(ctx, "/detect", map[string]string{"q": text}, &detections); err != nil {
		return "", err
	}
	if len(detections) == 0 {
		return "", fmt.Errorf("translate service returned no detections")
	}
	best := detections[0]
	for _, d := range detections[1:] {
		if d.Confidence > best.Confidence {
			best = d
		}
	}
	return best.Language, nil
}

// Translate converts text between languages.
func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	if source == target {
		return text, nil
	}
	var result struct {
		TranslatedText string `json:"translatedText"`
	}
	payload := map[string]string{"q": text, "source": source, "target": target}
	if err := c.post(ctx, "/translate", payload, &result); err != nil {
		return "", err
	}
	return result.TranslatedText, nil
}
