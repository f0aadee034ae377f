// ABOUTME: Tests for entity models and custom field label resolution
// ABOUTME: Covers dangling definition rendering and outcome scoring
package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestResolveFieldLabel(t *testing.T) {
	defs := []CustomFieldDefinition{
		{ID: uuid.New(), Target: TargetClient, Label: "Region", Kind: FieldKindText},
		{ID: uuid.New(), Target: TargetVisit, Label: "Budget", Kind: FieldKindNumber},
	}

	assert.Equal(t, "Region", ResolveFieldLabel(defs, defs[0].ID))
	assert.Equal(t, "Budget", ResolveFieldLabel(defs, defs[1].ID))
}

func TestResolveFieldLabelDanglingDefinition(t *testing.T) {
	// A value whose definition was deleted must render a placeholder, not
	// crash.
	defs := []CustomFieldDefinition{
		{ID: uuid.New(), Target: TargetClient, Label: "Region", Kind: FieldKindText},
	}
	deleted := uuid.New()

	assert.Equal(t, UnknownFieldLabel, ResolveFieldLabel(defs, deleted))
	assert.Equal(t, UnknownFieldLabel, ResolveFieldLabel(nil, deleted))
}

func TestOutcomeScore(t *testing.T) {
	assert.Equal(t, 1.0, OutcomeScore(OutcomePositive))
	assert.Equal(t, -1.0, OutcomeScore(OutcomeNegative))
	assert.Equal(t, 0.0, OutcomeScore(OutcomeNeutral))
	assert.Equal(t, 0.0, OutcomeScore(OutcomePending))
	assert.Equal(t, 0.0, OutcomeScore("garbage"))
}

func TestDatasetLookupsAndRemovals(t *testing.T) {
	client := Client{ID: uuid.New(), Name: "Acme Corp", Status: StatusActive}
	visit := Visit{ID: uuid.New(), ClientID: client.ID, ClientName: client.Name, Date: time.Now()}
	user := User{ID: uuid.New(), Name: "Jane Doe", Roles: []string{RoleMember}}
	def := CustomFieldDefinition{ID: uuid.New(), Target: TargetUser, Label: "Desk", Kind: FieldKindText}

	ds := &Dataset{
		Clients:          []Client{client},
		Visits:           []Visit{visit},
		Users:            []User{user},
		FieldDefinitions: []CustomFieldDefinition{def},
	}

	assert.Equal(t, "Acme Corp", ds.FindClient(client.ID).Name)
	assert.Equal(t, client.ID, ds.FindVisit(visit.ID).ClientID)
	assert.Equal(t, "Jane Doe", ds.FindUser(user.ID).Name)
	assert.Equal(t, "Desk", ds.FindFieldDefinition(def.ID).Label)
	assert.Nil(t, ds.FindClient(uuid.New()))

	assert.True(t, ds.RemoveVisit(visit.ID))
	assert.False(t, ds.RemoveVisit(visit.ID))
	assert.Empty(t, ds.Visits)

	assert.True(t, ds.RemoveClient(client.ID))
	assert.True(t, ds.RemoveUser(user.ID))
	assert.True(t, ds.RemoveFieldDefinition(def.ID))
	assert.False(t, ds.RemoveFieldDefinition(def.ID))
}
