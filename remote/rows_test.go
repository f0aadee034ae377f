// ABOUTME: Tests for wire row mapping and role normalization
// ABOUTME: Covers legacy scalar roles, JSON-array roles, and bad list columns
package remote

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/visitlog/models"
)

func TestNormalizeRoles(t *testing.T) {
	// Legacy scalar string.
	assert.Equal(t, []string{"Admin"}, NormalizeRoles("Admin"))

	// JSON-serialized array.
	assert.Equal(t, []string{"SystemAdmin"}, NormalizeRoles(`["SystemAdmin"]`))
	assert.Equal(t, []string{"admin", "member"}, NormalizeRoles(`["admin","member"]`))

	// JSON string scalar.
	assert.Equal(t, []string{"lead"}, NormalizeRoles(`"lead"`))

	// Degenerate inputs still yield a non-empty list.
	assert.Equal(t, []string{models.RoleMember}, NormalizeRoles(""))
	assert.Equal(t, []string{models.RoleMember}, NormalizeRoles("  "))
	assert.Equal(t, []string{models.RoleMember}, NormalizeRoles(`[]`))
	assert.Equal(t, []string{models.RoleMember}, NormalizeRoles(`["",""]`))
}

func TestUserRowRoleNormalization(t *testing.T) {
	legacy := userRow{ID: uuid.New().String(), Name: "Old Timer", Role: "Admin"}
	u, err := userFromRow(legacy)
	require.NoError(t, err)
	assert.Equal(t, []string{"Admin"}, u.Roles)

	modern := userRow{ID: uuid.New().String(), Name: "New Joiner", Role: `["SystemAdmin"]`}
	u, err = userFromRow(modern)
	require.NoError(t, err)
	assert.Equal(t, []string{"SystemAdmin"}, u.Roles)
}

func TestUserRowRoundTrip(t *testing.T) {
	u := models.User{
		ID:         uuid.New(),
		Name:       "Jane Doe",
		Email:      "jane@example.com",
		Department: "Sales",
		Roles:      []string{models.RoleAdmin, models.RoleMember},
		CustomFields: []models.CustomFieldValue{
			{FieldID: uuid.New(), Value: "west"},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}

	got, err := userFromRow(userToRow(u))
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Roles, got.Roles)
	assert.Equal(t, u.CustomFields, got.CustomFields)
	assert.True(t, u.CreatedAt.Equal(got.CreatedAt))
}

func TestVisitRowRoundTrip(t *testing.T) {
	v := models.Visit{
		ID:             uuid.New(),
		ClientID:       uuid.New(),
		ClientName:     "Acme Corp",
		UserID:         uuid.New(),
		Date:           time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Category:       models.CategoryOutbound,
		RawNotes:       "discussed renewal",
		Summary:        "wants a renewal quote",
		Outcome:        models.OutcomePositive,
		ActionItems:    []string{"send quote", "schedule demo"},
		SentimentScore: 1.0,
		Attachments: []models.Attachment{
			{ID: "01HV5E0Z3Q", Name: "site.jpg", Kind: models.AttachmentImage, Ref: "https://example.com/site.jpg"},
		},
	}

	got, err := visitFromRow(visitToRow(v))
	require.NoError(t, err)
	assert.Equal(t, v.ClientID, got.ClientID)
	assert.Equal(t, "Acme Corp", got.ClientName)
	assert.Equal(t, v.ActionItems, got.ActionItems)
	assert.Equal(t, v.Attachments, got.Attachments)
	assert.True(t, v.Date.Equal(got.Date))
}

func TestVisitRowToleratesMissingUser(t *testing.T) {
	r := visitToRow(models.Visit{ID: uuid.New(), ClientID: uuid.New()})
	r.UserID = ""

	v, err := visitFromRow(r)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, v.UserID)
}

func TestClientRowBadIDRejected(t *testing.T) {
	_, err := clientFromRow(clientRow{ID: "not-a-uuid", Name: "x"})
	assert.Error(t, err)
}

func TestDecodeListToleratesGarbage(t *testing.T) {
	var items []string
	decodeList("{broken", &items)
	assert.Empty(t, items)

	decodeList(`["ok"]`, &items)
	assert.Equal(t, []string{"ok"}, items)
}
