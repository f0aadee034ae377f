// ABOUTME: Gemini implementation of the Analyzer capability
// ABOUTME: Calls generateContent over HTTPS with inline audio support
package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Gemini analyzes visits with the Gemini generateContent API. Audio is
// passed inline, so no separate transcription service is needed.
type Gemini struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewGemini(apiKey string) *Gemini {
	return &Gemini{
		apiKey:  apiKey,
		baseURL: defaultGeminiBaseURL,
		model:   "gemini-2.5-flash",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// NewGeminiWithBaseURL points the client at a different endpoint. Tests
// pass an httptest server.
func NewGeminiWithBaseURL(apiKey, baseURL string) *Gemini {
	g := NewGemini(apiKey)
	g.baseURL = strings.TrimRight(baseURL, "/")
	return g
}

func (g *Gemini) SupportsAudio() bool { return true }

func (g *Gemini) AnalyzeText(ctx context.Context, notes string, meta Context) (*Analysis, error) {
	parts := []map[string]interface{}{
		{"text": analysisPrompt(notes, meta)},
	}
	return g.generate(ctx, parts)
}

func (g *Gemini) AnalyzeAudio(ctx context.Context, audio []byte, mime string, meta Context) (*Analysis, error) {
	prompt := analysisPrompt("(transcribe the attached audio first, and include the transcription in a \"transcription\" field)", meta)
	parts := []map[string]interface{}{
		{"text": prompt},
		{"inline_data": map[string]string{
			"mime_type": mime,
			"data":      base64.StdEncoding.EncodeToString(audio),
		}},
	}
	return g.generate(ctx, parts)
}

func (g *Gemini) generate(ctx context.Context, parts []map[string]interface{}) (*Analysis, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": parts},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode gemini request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	text := gjson.GetBytes(respBody, "candidates.0.content.parts.0.text").String()
	if text == "" {
		return nil, fmt.Errorf("%w: empty gemini candidate", ErrUnparseable)
	}
	return parseAnalysis(text)
}
