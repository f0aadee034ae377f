// ABOUTME: AI analysis capability interface and provider factory
// ABOUTME: Turns raw visit notes or audio into structured analysis results
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/visitlog/models"
)

// ErrNotConfigured is returned when no AI provider is selected or the
// selected provider is missing credentials.
var ErrNotConfigured = errors.New("ai provider not configured")

// ErrUnparseable is returned when the provider answered but its response
// could not be turned into a structured result.
var ErrUnparseable = errors.New("ai response could not be parsed")

// Analysis is the structured result of analyzing a visit.
type Analysis struct {
	Summary       string   `json:"summary"`
	Sentiment     string   `json:"sentiment"`
	PainPoints    []string `json:"painPoints,omitempty"`
	ActionItems   []string `json:"actionItems,omitempty"`
	FollowUpEmail string   `json:"followUpEmailDraft,omitempty"`
	Transcription string   `json:"transcription,omitempty"`
}

// Score derives the numeric sentiment score from the sentiment label.
func (a *Analysis) Score() float64 {
	return models.OutcomeScore(a.Sentiment)
}

// Context carries what the provider needs to know about the visit.
type Context struct {
	SubjectName string
	Industry    string
	Tone        string
}

// Analyzer is the provider-switchable analysis capability.
type Analyzer interface {
	AnalyzeText(ctx context.Context, notes string, meta Context) (*Analysis, error)
	AnalyzeAudio(ctx context.Context, audio []byte, mime string, meta Context) (*Analysis, error)
	// SupportsAudio reports whether AnalyzeAudio works natively; when it
	// does not, callers transcribe first and analyze the text.
	SupportsAudio() bool
}

// ForSettings selects the analyzer the settings designate.
// Switch AI provider by changing settings, not call sites.
func ForSettings(s models.Settings) (Analyzer, error) {
	switch s.AIProvider {
	case models.ProviderGemini:
		if s.GeminiKey == "" {
			return nil, fmt.Errorf("%w: gemini requires an api key", ErrNotConfigured)
		}
		return NewGemini(s.GeminiKey), nil
	case models.ProviderDeepSeek:
		if s.DeepSeekKey == "" {
			return nil, fmt.Errorf("%w: deepseek requires an api key", ErrNotConfigured)
		}
		return NewDeepSeek(s.DeepSeekKey), nil
	case models.ProviderNone, "":
		return nil, ErrNotConfigured
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrNotConfigured, s.AIProvider)
	}
}

// analysisPrompt is shared by providers: it pins the response to one JSON
// object so parsing stays provider-agnostic.
func analysisPrompt(notes string, meta Context) string {
	var b strings.Builder
	b.WriteString("You are a CRM assistant. Analyze the following visit notes and respond with a single JSON object, no prose, shaped exactly like:\n")
	b.WriteString(`{"summary":"...","sentiment":"positive|neutral|negative","painPoints":["..."],"actionItems":["..."],"followUpEmailDraft":"..."}`)
	b.WriteString("\n\n")
	if meta.SubjectName != "" {
		fmt.Fprintf(&b, "Client: %s\n", meta.SubjectName)
	}
	if meta.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", meta.Industry)
	}
	if meta.Tone != "" {
		fmt.Fprintf(&b, "Follow-up email tone: %s\n", meta.Tone)
	}
	b.WriteString("\nVISIT NOTES:\n")
	b.WriteString(notes)
	return b.String()
}

// extractJSON strips everything outside the outermost {...}. Providers
// routinely wrap their JSON in prose or code fences.
func extractJSON(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// parseAnalysis decodes a provider response into an Analysis,
// normalizing the sentiment label.
func parseAnalysis(text string) (*Analysis, error) {
	raw, ok := extractJSON(text)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrUnparseable)
	}
	var a Analysis
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	a.Sentiment = normalizeSentiment(a.Sentiment)
	return &a, nil
}

func normalizeSentiment(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case models.OutcomePositive:
		return models.OutcomePositive
	case models.OutcomeNegative:
		return models.OutcomeNegative
	default:
		return models.OutcomeNeutral
	}
}
