// ABOUTME: Whole-dataset export, import, and seed-remote operations
// ABOUTME: Portable backup document independent of the remote mirror
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/harperreed/visitlog/models"
	"github.com/harperreed/visitlog/remote"
	"github.com/harperreed/visitlog/store"
)

// FormatVersion identifies the backup document layout.
const FormatVersion = "1"

// ErrInvalidFormat is returned when an import document is unparseable or
// missing a required collection. Local state is left untouched.
var ErrInvalidFormat = errors.New("invalid backup document")

// CollectionError reports which collection a bulk upload failed on.
// Collections upserted before the failure are left in place remotely.
type CollectionError struct {
	Collection string
	Err        error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("bulk upload failed on %s: %v", e.Collection, e.Err)
}

func (e *CollectionError) Unwrap() error {
	return e.Err
}

// Metadata annotates an exported document.
type Metadata struct {
	Version    string    `json:"version"`
	ExportDate time.Time `json:"exportDate"`
}

// Document is the portable backup shape. clients, visits, and users are
// required on import; everything else is optional and defaulted.
type Document struct {
	Metadata         Metadata                       `json:"metadata"`
	Clients          []models.Client                `json:"clients"`
	Visits           []models.Visit                 `json:"visits"`
	Users            []models.User                  `json:"users"`
	FieldDefinitions []models.CustomFieldDefinition `json:"fieldDefinitions"`
	Settings         *models.Settings               `json:"settings,omitempty"`
}

// Export writes the entire dataset as one backup document. There is no
// partial export.
func Export(ds *models.Dataset, w io.Writer) error {
	settings := ds.Settings
	doc := Document{
		Metadata:         Metadata{Version: FormatVersion, ExportDate: time.Now().UTC()},
		Clients:          ds.Clients,
		Visits:           ds.Visits,
		Users:            ds.Users,
		FieldDefinitions: ds.FieldDefinitions,
		Settings:         &settings,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to write backup document: %w", err)
	}
	return nil
}

// requiredCollections must be present arrays for an import to proceed.
var requiredCollections = []string{"clients", "visits", "users"}

// Import replaces every local collection from a backup document. The
// check is structural presence only, no deep schema validation: a
// missing required collection or an unparseable document rejects the
// import with local state untouched.
func Import(st *store.Store, r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read backup document: %w", err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return fmt.Errorf("%w: not a JSON object: %v", ErrInvalidFormat, err)
	}
	for _, key := range requiredCollections {
		entry, ok := top[key]
		if !ok {
			return fmt.Errorf("%w: missing %q collection", ErrInvalidFormat, key)
		}
		var arr []json.RawMessage
		if err := json.Unmarshal(entry, &arr); err != nil {
			return fmt.Errorf("%w: %q is not an array", ErrInvalidFormat, key)
		}
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	ds, err := st.Load()
	if err != nil {
		return err
	}
	ds.Clients = doc.Clients
	ds.Visits = doc.Visits
	ds.Users = doc.Users
	ds.FieldDefinitions = doc.FieldDefinitions
	if doc.Settings != nil {
		ds.Settings = *doc.Settings
	}
	return st.Save(ds)
}

// SeedRemote upserts every local record to the remote mirror, one
// collection at a time in dependency order: definition data before the
// leaf records that reference it. The first failure aborts the remaining
// collections; collections already upserted are not rolled back.
func SeedRemote(ctx context.Context, ds *models.Dataset, rt remote.TableStore) error {
	if rt == nil {
		return errors.New("no remote mirror configured")
	}

	for _, d := range ds.FieldDefinitions {
		if err := rt.UpsertFieldDefinition(ctx, d); err != nil {
			return &CollectionError{Collection: "fieldDefinitions", Err: err}
		}
	}
	for _, u := range ds.Users {
		if err := rt.UpsertUser(ctx, u); err != nil {
			return &CollectionError{Collection: "users", Err: err}
		}
	}
	for _, c := range ds.Clients {
		if err := rt.UpsertClient(ctx, c); err != nil {
			return &CollectionError{Collection: "clients", Err: err}
		}
	}
	for _, v := range ds.Visits {
		if err := rt.UpsertVisit(ctx, v); err != nil {
			return &CollectionError{Collection: "visits", Err: err}
		}
	}
	return nil
}
