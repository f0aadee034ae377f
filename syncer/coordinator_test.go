// ABOUTME: Tests for optimistic-write-with-rollback sync coordination
// ABOUTME: Covers create/update/delete rollback and local-only operation
package syncer

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/visitlog/logger"
	"github.com/harperreed/visitlog/models"
	"github.com/harperreed/visitlog/store"
)

// fakeTableStore records calls and fails on demand. List results are
// preset per collection.
type fakeTableStore struct {
	calls  []string
	failOn map[string]error

	clients []models.Client
	visits  []models.Visit
	users   []models.User
	defs    []models.CustomFieldDefinition
}

func newFakeTableStore() *fakeTableStore {
	return &fakeTableStore{failOn: map[string]error{}}
}

func (f *fakeTableStore) call(name string) error {
	f.calls = append(f.calls, name)
	return f.failOn[name]
}

func (f *fakeTableStore) InsertClient(_ context.Context, _ models.Client) error {
	return f.call("InsertClient")
}
func (f *fakeTableStore) UpdateClient(_ context.Context, _ models.Client) error {
	return f.call("UpdateClient")
}
func (f *fakeTableStore) DeleteClient(_ context.Context, _ uuid.UUID) error {
	return f.call("DeleteClient")
}
func (f *fakeTableStore) UpsertClient(_ context.Context, _ models.Client) error {
	return f.call("UpsertClient")
}
func (f *fakeTableStore) ListClients(_ context.Context) ([]models.Client, error) {
	return f.clients, f.call("ListClients")
}

func (f *fakeTableStore) InsertVisit(_ context.Context, _ models.Visit) error {
	return f.call("InsertVisit")
}
func (f *fakeTableStore) UpdateVisit(_ context.Context, _ models.Visit) error {
	return f.call("UpdateVisit")
}
func (f *fakeTableStore) DeleteVisit(_ context.Context, _ uuid.UUID) error {
	return f.call("DeleteVisit")
}
func (f *fakeTableStore) UpsertVisit(_ context.Context, _ models.Visit) error {
	return f.call("UpsertVisit")
}
func (f *fakeTableStore) ListVisits(_ context.Context) ([]models.Visit, error) {
	return f.visits, f.call("ListVisits")
}

func (f *fakeTableStore) InsertUser(_ context.Context, _ models.User) error {
	return f.call("InsertUser")
}
func (f *fakeTableStore) UpdateUser(_ context.Context, _ models.User) error {
	return f.call("UpdateUser")
}
func (f *fakeTableStore) DeleteUser(_ context.Context, _ uuid.UUID) error {
	return f.call("DeleteUser")
}
func (f *fakeTableStore) UpsertUser(_ context.Context, _ models.User) error {
	return f.call("UpsertUser")
}
func (f *fakeTableStore) ListUsers(_ context.Context) ([]models.User, error) {
	return f.users, f.call("ListUsers")
}

func (f *fakeTableStore) InsertFieldDefinition(_ context.Context, _ models.CustomFieldDefinition) error {
	return f.call("InsertFieldDefinition")
}
func (f *fakeTableStore) UpdateFieldDefinition(_ context.Context, _ models.CustomFieldDefinition) error {
	return f.call("UpdateFieldDefinition")
}
func (f *fakeTableStore) DeleteFieldDefinition(_ context.Context, _ uuid.UUID) error {
	return f.call("DeleteFieldDefinition")
}
func (f *fakeTableStore) UpsertFieldDefinition(_ context.Context, _ models.CustomFieldDefinition) error {
	return f.call("UpsertFieldDefinition")
}
func (f *fakeTableStore) ListFieldDefinitions(_ context.Context) ([]models.CustomFieldDefinition, error) {
	return f.defs, f.call("ListFieldDefinitions")
}

func setupCoordinator(t *testing.T, fake *fakeTableStore) (*Coordinator, *store.Store) {
	t.Helper()
	st, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return New(st, fake, logger.Silent()), st
}

func TestCreateClientRemoteFailureRollsBack(t *testing.T) {
	fake := newFakeTableStore()
	fake.failOn["InsertClient"] = errors.New("network unreachable")
	coord, st := setupCoordinator(t, fake)

	client := &models.Client{Name: "Acme Corp", Status: models.StatusLead}
	err := coord.CreateClient(context.Background(), client)

	var rwe *RemoteWriteError
	require.ErrorAs(t, err, &rwe)
	assert.Equal(t, "insert", rwe.Op)
	assert.Contains(t, err.Error(), "network unreachable")

	ds, err := st.Load()
	require.NoError(t, err)
	assert.Nil(t, ds.FindClient(client.ID), "failed insert must not remain locally")
}

func TestCreateClientRemoteSuccessKeepsLocalValue(t *testing.T) {
	fake := newFakeTableStore()
	coord, st := setupCoordinator(t, fake)

	client := &models.Client{Name: "Acme Corp", Status: models.StatusActive}
	require.NoError(t, coord.CreateClient(context.Background(), client))

	ds, err := st.Load()
	require.NoError(t, err)
	got := ds.FindClient(client.ID)
	require.NotNil(t, got)
	// The remote response never further mutates local state.
	assert.Equal(t, "Acme Corp", got.Name)
	assert.Equal(t, models.StatusActive, got.Status)
	assert.Equal(t, []string{"InsertClient"}, fake.calls)
}

func TestUpdateVisitRemoteFailureRestoresPriorValue(t *testing.T) {
	fake := newFakeTableStore()
	coord, st := setupCoordinator(t, fake)
	ctx := context.Background()

	client := &models.Client{Name: "Acme Corp", Status: models.StatusActive}
	require.NoError(t, coord.CreateClient(ctx, client))
	visit := &models.Visit{ClientID: client.ID, Category: models.CategoryOutbound, Summary: "old"}
	require.NoError(t, coord.CreateVisit(ctx, visit))

	fake.failOn["UpdateVisit"] = errors.New("constraint violation")
	updated := *visit
	updated.Summary = "new"
	err := coord.UpdateVisit(ctx, &updated)

	var rwe *RemoteWriteError
	require.ErrorAs(t, err, &rwe)

	ds, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, "old", ds.FindVisit(visit.ID).Summary)
}

func TestUpdateVisitRemoteSuccess(t *testing.T) {
	fake := newFakeTableStore()
	coord, st := setupCoordinator(t, fake)
	ctx := context.Background()

	client := &models.Client{Name: "Acme Corp", Status: models.StatusActive}
	require.NoError(t, coord.CreateClient(ctx, client))
	visit := &models.Visit{ClientID: client.ID, Summary: "old"}
	require.NoError(t, coord.CreateVisit(ctx, visit))

	updated := *visit
	updated.Summary = "new"
	require.NoError(t, coord.UpdateVisit(ctx, &updated))

	ds, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, "new", ds.FindVisit(visit.ID).Summary)
}

func TestDeleteUserRemoteFailureReinsertsRecord(t *testing.T) {
	fake := newFakeTableStore()
	coord, st := setupCoordinator(t, fake)
	ctx := context.Background()

	user := &models.User{Name: "Jane Doe", Roles: []string{models.RoleAdmin}}
	require.NoError(t, coord.CreateUser(ctx, user))

	fake.failOn["DeleteUser"] = errors.New("timeout")
	err := coord.DeleteUser(ctx, user.ID)
	require.Error(t, err)

	ds, err := st.Load()
	require.NoError(t, err)
	got := ds.FindUser(user.ID)
	require.NotNil(t, got, "failed delete must keep the record locally")
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Equal(t, []string{models.RoleAdmin}, got.Roles)
}

func TestCreateVisitRequiresExistingClient(t *testing.T) {
	fake := newFakeTableStore()
	coord, _ := setupCoordinator(t, fake)

	visit := &models.Visit{ClientID: uuid.New(), RawNotes: "orphan"}
	err := coord.CreateVisit(context.Background(), visit)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown client")
	assert.Empty(t, fake.calls, "no remote write for a rejected visit")
}

func TestCreateVisitSnapshotsClientName(t *testing.T) {
	fake := newFakeTableStore()
	coord, st := setupCoordinator(t, fake)
	ctx := context.Background()

	client := &models.Client{Name: "Acme Corp", Status: models.StatusActive}
	require.NoError(t, coord.CreateClient(ctx, client))
	visit := &models.Visit{ClientID: client.ID}
	require.NoError(t, coord.CreateVisit(ctx, visit))
	assert.Equal(t, "Acme Corp", visit.ClientName)

	// Renaming the client does not cascade into the visit snapshot.
	renamed := *client
	renamed.Name = "Acme Corporation"
	require.NoError(t, coord.UpdateClient(ctx, &renamed))

	ds, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", ds.FindVisit(visit.ID).ClientName)
	assert.Equal(t, "Acme Corporation", ds.FindClient(client.ID).Name)
}

func TestLocalOnlyModeSkipsRemote(t *testing.T) {
	st, err := store.OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = st.Close() }()
	coord := New(st, nil, logger.Silent())
	ctx := context.Background()

	client := &models.Client{Name: "Acme Corp", Status: models.StatusLead}
	require.NoError(t, coord.CreateClient(ctx, client))
	require.NoError(t, coord.DeleteClient(ctx, client.ID))

	ds, err := st.Load()
	require.NoError(t, err)
	assert.Empty(t, ds.Clients)
}

func TestUpdateMissingRecordFailsWithoutRemoteCall(t *testing.T) {
	fake := newFakeTableStore()
	coord, _ := setupCoordinator(t, fake)

	err := coord.UpdateClient(context.Background(), &models.Client{ID: uuid.New(), Name: "Ghost"})
	require.Error(t, err)
	assert.Empty(t, fake.calls)
}

func TestFieldDefinitionRollback(t *testing.T) {
	fake := newFakeTableStore()
	coord, st := setupCoordinator(t, fake)
	ctx := context.Background()

	def := &models.CustomFieldDefinition{Target: models.TargetClient, Label: "Region", Kind: models.FieldKindText}
	require.NoError(t, coord.CreateFieldDefinition(ctx, def))

	fake.failOn["UpdateFieldDefinition"] = errors.New("boom")
	changed := *def
	changed.Label = "Territory"
	require.Error(t, coord.UpdateFieldDefinition(ctx, &changed))

	ds, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, "Region", ds.FindFieldDefinition(def.ID).Label)
}
