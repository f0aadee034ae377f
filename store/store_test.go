// ABOUTME: Tests for the badger-backed local cache store
// ABOUTME: Covers dataset round-trip, corrupt-blob recovery, and draft slot
package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/visitlog/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLoadFreshStoreReturnsSeed(t *testing.T) {
	s := openTestStore(t)

	ds, err := s.Load()
	require.NoError(t, err)

	assert.Empty(t, ds.Clients)
	assert.Empty(t, ds.Visits)
	require.Len(t, ds.Users, 1)
	assert.Contains(t, ds.Users[0].Roles, models.RoleAdmin)
	assert.Equal(t, models.StorageLocal, ds.Settings.StorageMode)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)

	ds, err := s.Load()
	require.NoError(t, err)

	client := models.Client{ID: uuid.New(), Name: "Globex", Status: models.StatusLead}
	ds.Clients = append(ds.Clients, client)
	ds.Settings.AIProvider = models.ProviderGemini
	require.NoError(t, s.Save(ds))

	loaded, err := s.Load()
	require.NoError(t, err)
	require.Len(t, loaded.Clients, 1)
	assert.Equal(t, client.ID, loaded.Clients[0].ID)
	assert.Equal(t, "Globex", loaded.Clients[0].Name)
	assert.Equal(t, models.ProviderGemini, loaded.Settings.AIProvider)
}

func TestLoadCorruptBlobFallsBackToSeed(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.set(datasetKey, []byte("{not json")))

	ds, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, ds.Clients)
	assert.Equal(t, models.StorageLocal, ds.Settings.StorageMode)
}

func TestDraftSlot(t *testing.T) {
	s := openTestStore(t)

	// Empty slot reads as nil, deleting it is fine.
	raw, err := s.LoadDraft()
	require.NoError(t, err)
	assert.Nil(t, raw)
	require.NoError(t, s.DeleteDraft())

	require.NoError(t, s.SaveDraft([]byte(`{"target_id":""}`)))
	raw, err = s.LoadDraft()
	require.NoError(t, err)
	assert.JSONEq(t, `{"target_id":""}`, string(raw))

	// Single slot: a second write overwrites the first.
	require.NoError(t, s.SaveDraft([]byte(`{"target_id":"x"}`)))
	raw, err = s.LoadDraft()
	require.NoError(t, err)
	assert.JSONEq(t, `{"target_id":"x"}`, string(raw))

	require.NoError(t, s.DeleteDraft())
	raw, err = s.LoadDraft()
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestOpenOnDisk(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)

	ds, err := s.Load()
	require.NoError(t, err)
	ds.Clients = append(ds.Clients, models.Client{ID: uuid.New(), Name: "Initech", Status: models.StatusActive})
	require.NoError(t, s.Save(ds))
	require.NoError(t, s.Close())

	// Reopen and verify persistence.
	s, err = Open(dir)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	loaded, err := s.Load()
	require.NoError(t, err)
	require.Len(t, loaded.Clients, 1)
	assert.Equal(t, "Initech", loaded.Clients[0].Name)
}
