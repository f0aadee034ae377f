// ABOUTME: Tests for CLI commands against an in-memory local store
// ABOUTME: Commands run in local-only mode, no remote mirror wired
package cli

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/visitlog/draft"
	"github.com/harperreed/visitlog/logger"
	"github.com/harperreed/visitlog/models"
	"github.com/harperreed/visitlog/store"
	"github.com/harperreed/visitlog/syncer"
)

func testApp(t *testing.T) *App {
	t.Helper()
	st, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	log := logger.Silent()
	return &App{
		Store: st,
		Coord: syncer.New(st, nil, log),
		Log:   log,
	}
}

func TestAddClientCommand(t *testing.T) {
	app := testApp(t)

	err := AddClientCommand(app, []string{"--name", "Globex", "--industry", "manufacturing"})
	require.NoError(t, err)

	ds, err := app.Store.Load()
	require.NoError(t, err)
	require.Len(t, ds.Clients, 1)
	assert.Equal(t, "Globex", ds.Clients[0].Name)
	assert.Equal(t, models.StatusActive, ds.Clients[0].Status)
}

func TestAddClientCommand_RequiresName(t *testing.T) {
	app := testApp(t)

	err := AddClientCommand(app, []string{"--industry", "manufacturing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--name is required")
}

func TestUpdateClientCommand_PrefixID(t *testing.T) {
	app := testApp(t)
	require.NoError(t, AddClientCommand(app, []string{"--name", "Globex"}))

	ds, err := app.Store.Load()
	require.NoError(t, err)
	prefix := ds.Clients[0].ID.String()[:8]

	require.NoError(t, UpdateClientCommand(app, []string{"--status", models.StatusChurned, prefix}))

	ds, err = app.Store.Load()
	require.NoError(t, err)
	assert.Equal(t, models.StatusChurned, ds.Clients[0].Status)
	// Untouched flags keep their values.
	assert.Equal(t, "Globex", ds.Clients[0].Name)
}

func TestAddVisitCommand_SnapshotsClientName(t *testing.T) {
	app := testApp(t)
	require.NoError(t, AddClientCommand(app, []string{"--name", "Globex"}))

	ds, err := app.Store.Load()
	require.NoError(t, err)
	clientID := ds.Clients[0].ID
	// The seed dataset ships one admin user, so --user can be omitted.
	require.Len(t, ds.Users, 1)

	err = AddVisitCommand(app, []string{
		"--client", clientID.String(),
		"--notes", "productive kickoff",
		"--outcome", models.OutcomePositive,
	})
	require.NoError(t, err)

	ds, err = app.Store.Load()
	require.NoError(t, err)
	require.Len(t, ds.Visits, 1)
	assert.Equal(t, "Globex", ds.Visits[0].ClientName)
	assert.Equal(t, 1.0, ds.Visits[0].SentimentScore)
}

func TestAddVisitCommand_UnknownClient(t *testing.T) {
	app := testApp(t)

	err := AddVisitCommand(app, []string{"--client", uuid.New().String()})
	require.Error(t, err)
}

func TestSetFieldCommand(t *testing.T) {
	app := testApp(t)
	require.NoError(t, AddClientCommand(app, []string{"--name", "Globex"}))
	require.NoError(t, AddFieldCommand(app, []string{"--label", "Account Tier", "--target", "client"}))

	ds, err := app.Store.Load()
	require.NoError(t, err)
	fieldID := ds.FieldDefinitions[0].ID
	clientID := ds.Clients[0].ID

	err = SetFieldCommand(app, []string{
		"--field", fieldID.String(), "--value", "gold", clientID.String(),
	})
	require.NoError(t, err)

	ds, err = app.Store.Load()
	require.NoError(t, err)
	require.Len(t, ds.Clients[0].CustomFields, 1)
	assert.Equal(t, "gold", ds.Clients[0].CustomFields[0].Value)

	// Setting again replaces, not appends.
	err = SetFieldCommand(app, []string{
		"--field", fieldID.String(), "--value", "platinum", clientID.String(),
	})
	require.NoError(t, err)

	ds, err = app.Store.Load()
	require.NoError(t, err)
	require.Len(t, ds.Clients[0].CustomFields, 1)
	assert.Equal(t, "platinum", ds.Clients[0].CustomFields[0].Value)
}

func TestSplitRoles(t *testing.T) {
	assert.Equal(t, []string{"admin", "sales"}, splitRoles("admin, sales"))
	assert.Nil(t, splitRoles(""))
	assert.Equal(t, []string{"admin"}, splitRoles("admin,,"))
}

func TestVisitSession_SaveCommits(t *testing.T) {
	app := testApp(t)
	require.NoError(t, AddClientCommand(app, []string{"--name", "Globex"}))

	ds, err := app.Store.Load()
	require.NoError(t, err)
	clientID := ds.Clients[0].ID
	userID := ds.Users[0].ID

	tracker := draft.NewTracker(app.Store, sessionTarget, app.Log)
	in := strings.NewReader("met with dana\ndiscussed rollout\n:save\n")
	var out strings.Builder

	require.NoError(t, runVisitSession(app, tracker, clientID, userID, in, &out))

	ds, err = app.Store.Load()
	require.NoError(t, err)
	require.Len(t, ds.Visits, 1)
	assert.Equal(t, "met with dana\ndiscussed rollout", ds.Visits[0].RawNotes)
	assert.Contains(t, out.String(), "✓ Visit saved")

	// Saving cleared the draft slot.
	raw, err := app.Store.LoadDraft()
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestVisitSession_QuitKeepsDraftAndRestores(t *testing.T) {
	app := testApp(t)
	require.NoError(t, AddClientCommand(app, []string{"--name", "Globex"}))

	ds, err := app.Store.Load()
	require.NoError(t, err)
	clientID := ds.Clients[0].ID
	userID := ds.Users[0].ID

	tracker := draft.NewTracker(app.Store, sessionTarget, app.Log)
	in := strings.NewReader("half-finished note\n:quit\n")
	var out strings.Builder
	require.NoError(t, runVisitSession(app, tracker, clientID, userID, in, &out))

	ds, err = app.Store.Load()
	require.NoError(t, err)
	assert.Empty(t, ds.Visits)

	// Next session offers the draft back; accept and save.
	tracker2 := draft.NewTracker(app.Store, sessionTarget, app.Log)
	in2 := strings.NewReader("y\n:save\n")
	var out2 strings.Builder
	require.NoError(t, runVisitSession(app, tracker2, clientID, userID, in2, &out2))

	assert.Contains(t, out2.String(), "Restore it?")
	ds, err = app.Store.Load()
	require.NoError(t, err)
	require.Len(t, ds.Visits, 1)
	assert.Equal(t, "half-finished note", ds.Visits[0].RawNotes)
}

func TestVisitSession_DeclineDiscardsDraft(t *testing.T) {
	app := testApp(t)
	require.NoError(t, AddClientCommand(app, []string{"--name", "Globex"}))

	ds, err := app.Store.Load()
	require.NoError(t, err)
	clientID := ds.Clients[0].ID
	userID := ds.Users[0].ID

	tracker := draft.NewTracker(app.Store, sessionTarget, app.Log)
	in := strings.NewReader("stale note\n:quit\n")
	var out strings.Builder
	require.NoError(t, runVisitSession(app, tracker, clientID, userID, in, &out))

	tracker2 := draft.NewTracker(app.Store, sessionTarget, app.Log)
	in2 := strings.NewReader("n\n:quit\n")
	var out2 strings.Builder
	require.NoError(t, runVisitSession(app, tracker2, clientID, userID, in2, &out2))

	raw, err := app.Store.LoadDraft()
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestSetSettingsCommand(t *testing.T) {
	app := testApp(t)

	err := SetSettingsCommand(app, []string{"--ai-provider", "bogus"})
	require.Error(t, err)

	require.NoError(t, SetSettingsCommand(app, []string{
		"--ai-provider", models.ProviderDeepSeek,
		"--storage-mode", models.StorageLocal,
	}))

	ds, err := app.Store.Load()
	require.NoError(t, err)
	assert.Equal(t, models.ProviderDeepSeek, ds.Settings.AIProvider)
}
