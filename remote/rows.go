// ABOUTME: Snake_case wire rows for the remote mirror and their mapping
// ABOUTME: Normalizes legacy scalar vs JSON-array role values to tag lists
package remote

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/visitlog/models"
)

// Wire rows are self-contained: list and struct fields travel as JSON
// text so the same row shape works for both the REST mirror and the SQL
// mirror's text columns.

type clientRow struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Company      string `json:"company,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Industry     string `json:"industry,omitempty"`
	Status       string `json:"status"`
	CustomFields string `json:"custom_fields,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

type visitRow struct {
	ID             string  `json:"id"`
	ClientID       string  `json:"client_id"`
	ClientName     string  `json:"client_name"`
	UserID         string  `json:"user_id"`
	Date           string  `json:"date"`
	Category       string  `json:"category"`
	RawNotes       string  `json:"raw_notes,omitempty"`
	Summary        string  `json:"summary,omitempty"`
	Outcome        string  `json:"outcome"`
	ActionItems    string  `json:"action_items,omitempty"`
	SentimentScore float64 `json:"sentiment_score"`
	FollowUpEmail  string  `json:"follow_up_email,omitempty"`
	CustomFields   string  `json:"custom_fields,omitempty"`
	Attachments    string  `json:"attachments,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

type userRow struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department,omitempty"`
	Team       string `json:"team,omitempty"`
	// Role is either a JSON-serialized array of tags or a single legacy
	// scalar tag. NormalizeRoles accepts both.
	Role         string `json:"role"`
	CustomFields string `json:"custom_fields,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

type fieldDefinitionRow struct {
	ID        string `json:"id"`
	Target    string `json:"target"`
	Label     string `json:"label"`
	Kind      string `json:"kind"`
	CreatedAt string `json:"created_at"`
}

// NormalizeRoles decodes a remote role value into a non-empty tag list.
// Accepted shapes: `["admin","member"]`, `"admin"` (JSON string), and a
// bare legacy scalar like `Admin`. Unknown shapes fall back to member.
func NormalizeRoles(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{models.RoleMember}
	}

	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err == nil {
		tags = cleanTags(tags)
		if len(tags) > 0 {
			return tags
		}
		return []string{models.RoleMember}
	}

	var single string
	if err := json.Unmarshal([]byte(raw), &single); err == nil {
		raw = single
	}

	tags = cleanTags([]string{raw})
	if len(tags) == 0 {
		return []string{models.RoleMember}
	}
	return tags
}

func cleanTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func encodeRoles(roles []string) string {
	roles = cleanTags(roles)
	if len(roles) == 0 {
		roles = []string{models.RoleMember}
	}
	raw, _ := json.Marshal(roles)
	return string(raw)
}

func encodeList(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	s := string(raw)
	if s == "null" {
		return ""
	}
	return s
}

func decodeList(raw string, out interface{}) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	// Malformed list columns degrade to empty, never to a failed fetch.
	_ = json.Unmarshal([]byte(raw), out)
}

func encodeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func clientToRow(c models.Client) clientRow {
	return clientRow{
		ID:           c.ID.String(),
		Name:         c.Name,
		Company:      c.Company,
		Email:        c.Email,
		Phone:        c.Phone,
		Industry:     c.Industry,
		Status:       c.Status,
		CustomFields: encodeList(c.CustomFields),
		CreatedAt:    encodeTime(c.CreatedAt),
		UpdatedAt:    encodeTime(c.UpdatedAt),
	}
}

func clientFromRow(r clientRow) (models.Client, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return models.Client{}, err
	}
	c := models.Client{
		ID:        id,
		Name:      r.Name,
		Company:   r.Company,
		Email:     r.Email,
		Phone:     r.Phone,
		Industry:  r.Industry,
		Status:    r.Status,
		CreatedAt: decodeTime(r.CreatedAt),
		UpdatedAt: decodeTime(r.UpdatedAt),
	}
	decodeList(r.CustomFields, &c.CustomFields)
	return c, nil
}

func visitToRow(v models.Visit) visitRow {
	return visitRow{
		ID:             v.ID.String(),
		ClientID:       v.ClientID.String(),
		ClientName:     v.ClientName,
		UserID:         v.UserID.String(),
		Date:           encodeTime(v.Date),
		Category:       v.Category,
		RawNotes:       v.RawNotes,
		Summary:        v.Summary,
		Outcome:        v.Outcome,
		ActionItems:    encodeList(v.ActionItems),
		SentimentScore: v.SentimentScore,
		FollowUpEmail:  v.FollowUpEmail,
		CustomFields:   encodeList(v.CustomFields),
		Attachments:    encodeList(v.Attachments),
		CreatedAt:      encodeTime(v.CreatedAt),
		UpdatedAt:      encodeTime(v.UpdatedAt),
	}
}

func visitFromRow(r visitRow) (models.Visit, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return models.Visit{}, err
	}
	clientID, err := uuid.Parse(r.ClientID)
	if err != nil {
		return models.Visit{}, err
	}
	// A visit row without an acting user is tolerated (legacy exports).
	userID, _ := uuid.Parse(r.UserID)

	v := models.Visit{
		ID:             id,
		ClientID:       clientID,
		ClientName:     r.ClientName,
		UserID:         userID,
		Date:           decodeTime(r.Date),
		Category:       r.Category,
		RawNotes:       r.RawNotes,
		Summary:        r.Summary,
		Outcome:        r.Outcome,
		SentimentScore: r.SentimentScore,
		FollowUpEmail:  r.FollowUpEmail,
		CreatedAt:      decodeTime(r.CreatedAt),
		UpdatedAt:      decodeTime(r.UpdatedAt),
	}
	decodeList(r.ActionItems, &v.ActionItems)
	decodeList(r.CustomFields, &v.CustomFields)
	decodeList(r.Attachments, &v.Attachments)
	return v, nil
}

func userToRow(u models.User) userRow {
	return userRow{
		ID:           u.ID.String(),
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		Department:   u.Department,
		Team:         u.Team,
		Role:         encodeRoles(u.Roles),
		CustomFields: encodeList(u.CustomFields),
		CreatedAt:    encodeTime(u.CreatedAt),
		UpdatedAt:    encodeTime(u.UpdatedAt),
	}
}

func userFromRow(r userRow) (models.User, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return models.User{}, err
	}
	u := models.User{
		ID:         id,
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		Department: r.Department,
		Team:       r.Team,
		Roles:      NormalizeRoles(r.Role),
		CreatedAt:  decodeTime(r.CreatedAt),
		UpdatedAt:  decodeTime(r.UpdatedAt),
	}
	decodeList(r.CustomFields, &u.CustomFields)
	return u, nil
}

func fieldDefinitionToRow(d models.CustomFieldDefinition) fieldDefinitionRow {
	return fieldDefinitionRow{
		ID:        d.ID.String(),
		Target:    d.Target,
		Label:     d.Label,
		Kind:      d.Kind,
		CreatedAt: encodeTime(d.CreatedAt),
	}
}

func fieldDefinitionFromRow(r fieldDefinitionRow) (models.CustomFieldDefinition, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return models.CustomFieldDefinition{}, err
	}
	return models.CustomFieldDefinition{
		ID:        id,
		Target:    r.Target,
		Label:     r.Label,
		Kind:      r.Kind,
		CreatedAt: decodeTime(r.CreatedAt),
	}, nil
}
