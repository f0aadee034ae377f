// ABOUTME: Shared CLI application context wiring store, remote, and sync
// ABOUTME: Commands receive an App instead of opening resources themselves
package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/harperreed/visitlog/config"
	"github.com/harperreed/visitlog/logger"
	"github.com/harperreed/visitlog/models"
	"github.com/harperreed/visitlog/remote"
	"github.com/harperreed/visitlog/store"
	"github.com/harperreed/visitlog/syncer"
)

// App bundles the resources every command needs. Settings carry the env
// overrides applied at startup; the stored copy stays untouched.
type App struct {
	Store    *store.Store
	Settings models.Settings
	Remote   remote.TableStore
	Coord    *syncer.Coordinator
	Log      logger.Logger
}

// NewApp loads settings from the local cache, applies env overrides, and
// wires the remote mirror and sync coordinator the settings designate.
func NewApp(st *store.Store, log logger.Logger) (*App, error) {
	ds, err := st.Load()
	if err != nil {
		return nil, err
	}

	settings := ds.Settings
	config.ApplyEnvOverrides(&settings)

	rt, err := remote.ForSettings(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to configure remote mirror: %w", err)
	}

	return &App{
		Store:    st,
		Settings: settings,
		Remote:   rt,
		Coord:    syncer.New(st, rt, log),
		Log:      log,
	}, nil
}

// resolveID parses a full or abbreviated entity id against the known ids.
// An 8-char prefix is enough as long as it is unambiguous.
func resolveID(raw string, known []uuid.UUID) (uuid.UUID, error) {
	if id, err := uuid.Parse(raw); err == nil {
		return id, nil
	}

	var match uuid.UUID
	found := 0
	for _, id := range known {
		if strings.HasPrefix(id.String(), strings.ToLower(raw)) {
			match = id
			found++
		}
	}
	switch found {
	case 0:
		return uuid.Nil, fmt.Errorf("no record matches id %q", raw)
	case 1:
		return match, nil
	default:
		return uuid.Nil, fmt.Errorf("id %q is ambiguous (%d matches)", raw, found)
	}
}

func clientIDs(ds *models.Dataset) []uuid.UUID {
	ids := make([]uuid.UUID, len(ds.Clients))
	for i, c := range ds.Clients {
		ids[i] = c.ID
	}
	return ids
}

func visitIDs(ds *models.Dataset) []uuid.UUID {
	ids := make([]uuid.UUID, len(ds.Visits))
	for i, v := range ds.Visits {
		ids[i] = v.ID
	}
	return ids
}

func userIDs(ds *models.Dataset) []uuid.UUID {
	ids := make([]uuid.UUID, len(ds.Users))
	for i, u := range ds.Users {
		ids[i] = u.ID
	}
	return ids
}

func fieldDefinitionIDs(ds *models.Dataset) []uuid.UUID {
	ids := make([]uuid.UUID, len(ds.FieldDefinitions))
	for i, d := range ds.FieldDefinitions {
		ids[i] = d.ID
	}
	return ids
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
