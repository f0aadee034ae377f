// ABOUTME: Remote table store contract and settings-driven selection
// ABOUTME: Per-entity insert/update/delete/upsert/list keyed on entity id
package remote

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/harperreed/visitlog/models"
)

// Table names on the remote mirror.
const (
	TableClients          = "clients"
	TableVisits           = "visits"
	TableUsers            = "users"
	TableFieldDefinitions = "field_definitions"
)

// TableStore is the remote mirror: per-entity tables reachable by primary
// id. Writes are idempotent upserts/deletes keyed by id; calls may fail
// or time out, and the caller owns rollback of any optimistic local state.
type TableStore interface {
	InsertClient(ctx context.Context, c models.Client) error
	UpdateClient(ctx context.Context, c models.Client) error
	DeleteClient(ctx context.Context, id uuid.UUID) error
	UpsertClient(ctx context.Context, c models.Client) error
	ListClients(ctx context.Context) ([]models.Client, error)

	InsertVisit(ctx context.Context, v models.Visit) error
	UpdateVisit(ctx context.Context, v models.Visit) error
	DeleteVisit(ctx context.Context, id uuid.UUID) error
	UpsertVisit(ctx context.Context, v models.Visit) error
	ListVisits(ctx context.Context) ([]models.Visit, error)

	InsertUser(ctx context.Context, u models.User) error
	UpdateUser(ctx context.Context, u models.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	UpsertUser(ctx context.Context, u models.User) error
	ListUsers(ctx context.Context) ([]models.User, error)

	InsertFieldDefinition(ctx context.Context, d models.CustomFieldDefinition) error
	UpdateFieldDefinition(ctx context.Context, d models.CustomFieldDefinition) error
	DeleteFieldDefinition(ctx context.Context, id uuid.UUID) error
	UpsertFieldDefinition(ctx context.Context, d models.CustomFieldDefinition) error
	ListFieldDefinitions(ctx context.Context) ([]models.CustomFieldDefinition, error)
}

// ForSettings returns the mirror the settings designate, or nil when the
// storage mode is local-only.
func ForSettings(s models.Settings) (TableStore, error) {
	switch s.StorageMode {
	case models.StorageLocal, "":
		return nil, nil
	case models.StorageRest:
		if s.RemoteURL == "" {
			return nil, fmt.Errorf("storage mode %q requires a remote URL", s.StorageMode)
		}
		return NewRestStore(s.RemoteURL, s.RemoteKey), nil
	case models.StorageSQLite:
		if s.MirrorPath == "" {
			return nil, fmt.Errorf("storage mode %q requires a mirror path", s.StorageMode)
		}
		return OpenSQLMirror(s.MirrorPath)
	default:
		return nil, fmt.Errorf("unknown storage mode %q", s.StorageMode)
	}
}
