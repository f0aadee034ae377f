// ABOUTME: Speech-to-text capability used when the AI provider lacks audio
// ABOUTME: Posts raw audio to a configured transcription endpoint
package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Transcriber turns recorded audio into text. The session protocol
// behind the endpoint is opaque to this module.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mime string) (string, error)
}

// HTTPTranscriber posts audio bytes to a transcription endpoint and
// expects a JSON body with a "text" field (whisper-style).
type HTTPTranscriber struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPTranscriber(endpoint, apiKey string) *HTTPTranscriber {
	return &HTTPTranscriber{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

func (t *HTTPTranscriber) Transcribe(ctx context.Context, audio []byte, mime string) (string, error) {
	if t.endpoint == "" {
		return "", fmt.Errorf("no transcription endpoint configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("failed to build transcription request: %w", err)
	}
	if mime == "" {
		mime = "application/octet-stream"
	}
	req.Header.Set("Content-Type", mime)
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	text := gjson.GetBytes(body, "text").String()
	if text == "" {
		return "", fmt.Errorf("transcription response had no text")
	}
	return text, nil
}
