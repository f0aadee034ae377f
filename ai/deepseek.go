// ABOUTME: DeepSeek implementation of the Analyzer capability
// ABOUTME: Chat-completions API, text only; audio goes through transcription
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const defaultDeepSeekBaseURL = "https://api.deepseek.com/v1"

// DeepSeek analyzes visits with the DeepSeek chat-completions API. It
// has no audio mode; callers transcribe first and analyze the text.
type DeepSeek struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewDeepSeek(apiKey string) *DeepSeek {
	return &DeepSeek{
		apiKey:  apiKey,
		baseURL: defaultDeepSeekBaseURL,
		model:   "deepseek-chat",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// NewDeepSeekWithBaseURL points the client at a different endpoint.
func NewDeepSeekWithBaseURL(apiKey, baseURL string) *DeepSeek {
	d := NewDeepSeek(apiKey)
	d.baseURL = strings.TrimRight(baseURL, "/")
	return d
}

func (d *DeepSeek) SupportsAudio() bool { return false }

func (d *DeepSeek) AnalyzeAudio(ctx context.Context, audio []byte, mime string, meta Context) (*Analysis, error) {
	return nil, fmt.Errorf("%w: deepseek has no audio mode, transcribe first", ErrNotConfigured)
}

func (d *DeepSeek) AnalyzeText(ctx context.Context, notes string, meta Context) (*Analysis, error) {
	payload := map[string]interface{}{
		"model": d.model,
		"messages": []map[string]string{
			{"role": "user", "content": analysisPrompt(notes, meta)},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode deepseek request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build deepseek request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deepseek request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("deepseek returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	text := gjson.GetBytes(respBody, "choices.0.message.content").String()
	if text == "" {
		return nil, fmt.Errorf("%w: empty deepseek choice", ErrUnparseable)
	}
	return parseAnalysis(text)
}
