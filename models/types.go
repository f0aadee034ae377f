// ABOUTME: Data models for visit-tracking CRM entities
// ABOUTME: Defines Client, Visit, User, Attachment, and custom field structs
package models

import (
	"time"

	"github.com/google/uuid"
)

// Client status constants.
const (
	StatusActive  = "active"
	StatusLead    = "lead"
	StatusChurned = "churned"
)

// Visit category constants.
const (
	CategoryOutbound = "outbound"
	CategoryInbound  = "inbound"
)

// Visit outcome constants.
const (
	OutcomePositive = "positive"
	OutcomeNeutral  = "neutral"
	OutcomeNegative = "negative"
	OutcomePending  = "pending"
)

// Role tag constants. Roles are an open set; these are the built-ins.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Custom field value type constants.
const (
	FieldKindText   = "text"
	FieldKindNumber = "number"
	FieldKindDate   = "date"
)

// Custom field target entity constants.
const (
	TargetClient = "client"
	TargetVisit  = "visit"
	TargetUser   = "user"
)

// Attachment kind constants.
const (
	AttachmentImage    = "image"
	AttachmentDocument = "document"
	AttachmentOther    = "other"
)

type Client struct {
	ID           uuid.UUID          `json:"id"`
	Name         string             `json:"name"`
	Company      string             `json:"company,omitempty"`
	Email        string             `json:"email,omitempty"`
	Phone        string             `json:"phone,omitempty"`
	Industry     string             `json:"industry,omitempty"`
	Status       string             `json:"status"`
	CustomFields []CustomFieldValue `json:"custom_fields,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

type Visit struct {
	ID       uuid.UUID `json:"id"`
	ClientID uuid.UUID `json:"client_id"`
	// ClientName is a snapshot of the client's display name taken when the
	// visit is created. It is never cascaded when the client is renamed.
	ClientName     string             `json:"client_name"`
	UserID         uuid.UUID          `json:"user_id"`
	Date           time.Time          `json:"date"`
	Category       string             `json:"category"`
	RawNotes       string             `json:"raw_notes,omitempty"`
	Summary        string             `json:"summary,omitempty"`
	Outcome        string             `json:"outcome"`
	ActionItems    []string           `json:"action_items,omitempty"`
	SentimentScore float64            `json:"sentiment_score"`
	FollowUpEmail  string             `json:"follow_up_email,omitempty"`
	CustomFields   []CustomFieldValue `json:"custom_fields,omitempty"`
	Attachments    []Attachment       `json:"attachments,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// Attachment payload references are opaque: either an inline data URI or
// a plain URL. Attachment IDs are ULIDs so they sort by creation time.
type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
	Ref  string `json:"ref"`
}

type User struct {
	ID           uuid.UUID          `json:"id"`
	Name         string             `json:"name"`
	Email        string             `json:"email,omitempty"`
	Phone        string             `json:"phone,omitempty"`
	Department   string             `json:"department,omitempty"`
	Team         string             `json:"team,omitempty"`
	Roles        []string           `json:"roles"`
	CustomFields []CustomFieldValue `json:"custom_fields,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

type CustomFieldDefinition struct {
	ID        uuid.UUID `json:"id"`
	Target    string    `json:"target"`
	Label     string    `json:"label"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// CustomFieldValue pairs a definition id with a value stored as text.
// The value is interpreted per the definition's kind at render time.
type CustomFieldValue struct {
	FieldID uuid.UUID `json:"field_id"`
	Value   string    `json:"value"`
}

// Settings is the process-wide application configuration. It is loaded
// once at startup and replaced wholesale on save, never patched in place.
type Settings struct {
	// StorageMode selects the remote mirror: "local" (no mirror),
	// "rest" (hosted table API), or "sqlite" (self-hosted mirror file).
	StorageMode string `json:"storage_mode"`
	RemoteURL   string `json:"remote_url,omitempty"`
	RemoteKey   string `json:"remote_key,omitempty"`
	MirrorPath  string `json:"mirror_path,omitempty"`

	// AIProvider selects the analysis backend: "gemini", "deepseek", or
	// "none".
	AIProvider  string `json:"ai_provider"`
	GeminiKey   string `json:"gemini_key,omitempty"`
	DeepSeekKey string `json:"deepseek_key,omitempty"`

	// SpeechURL is the transcription endpoint used when the selected AI
	// provider has no audio mode.
	SpeechURL string `json:"speech_url,omitempty"`
	SpeechKey string `json:"speech_key,omitempty"`

	// Email relay parameters for sending follow-up drafts.
	SMTPHost     string `json:"smtp_host,omitempty"`
	SMTPPort     int    `json:"smtp_port,omitempty"`
	SMTPUsername string `json:"smtp_username,omitempty"`
	SMTPPassword string `json:"smtp_password,omitempty"`
	FromEmail    string `json:"from_email,omitempty"`
	FromName     string `json:"from_name,omitempty"`
}

// Storage mode constants.
const (
	StorageLocal  = "local"
	StorageRest   = "rest"
	StorageSQLite = "sqlite"
)

// AI provider constants.
const (
	ProviderGemini   = "gemini"
	ProviderDeepSeek = "deepseek"
	ProviderNone     = "none"
)

// UnknownFieldLabel is rendered for custom field values whose definition
// has been deleted.
const UnknownFieldLabel = "Unknown field"

// ResolveFieldLabel returns the label for a custom field definition id,
// or UnknownFieldLabel when the definition no longer exists.
func ResolveFieldLabel(defs []CustomFieldDefinition, fieldID uuid.UUID) string {
	for _, d := range defs {
		if d.ID == fieldID {
			return d.Label
		}
	}
	return UnknownFieldLabel
}

// OutcomeScore maps an outcome to a numeric sentiment score.
func OutcomeScore(outcome string) float64 {
	switch outcome {
	case OutcomePositive:
		return 1.0
	case OutcomeNegative:
		return -1.0
	default:
		return 0.0
	}
}
