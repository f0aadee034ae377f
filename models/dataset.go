// ABOUTME: Dataset container holding every entity collection plus settings
// ABOUTME: Provides id lookups and removals used by sync rollback paths
package models

import "github.com/google/uuid"

// Dataset is the whole application state: every entity collection plus
// the current settings, serialized as one blob in the local cache.
type Dataset struct {
	Clients          []Client                `json:"clients"`
	Visits           []Visit                 `json:"visits"`
	Users            []User                  `json:"users"`
	FieldDefinitions []CustomFieldDefinition `json:"field_definitions"`
	Settings         Settings                `json:"settings"`
}

func (d *Dataset) FindClient(id uuid.UUID) *Client {
	for i := range d.Clients {
		if d.Clients[i].ID == id {
			return &d.Clients[i]
		}
	}
	return nil
}

func (d *Dataset) FindVisit(id uuid.UUID) *Visit {
	for i := range d.Visits {
		if d.Visits[i].ID == id {
			return &d.Visits[i]
		}
	}
	return nil
}

func (d *Dataset) FindUser(id uuid.UUID) *User {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i]
		}
	}
	return nil
}

func (d *Dataset) FindFieldDefinition(id uuid.UUID) *CustomFieldDefinition {
	for i := range d.FieldDefinitions {
		if d.FieldDefinitions[i].ID == id {
			return &d.FieldDefinitions[i]
		}
	}
	return nil
}

// RemoveClient deletes a client by id and reports whether it was present.
func (d *Dataset) RemoveClient(id uuid.UUID) bool {
	for i := range d.Clients {
		if d.Clients[i].ID == id {
			d.Clients = append(d.Clients[:i], d.Clients[i+1:]...)
			return true
		}
	}
	return false
}

func (d *Dataset) RemoveVisit(id uuid.UUID) bool {
	for i := range d.Visits {
		if d.Visits[i].ID == id {
			d.Visits = append(d.Visits[:i], d.Visits[i+1:]...)
			return true
		}
	}
	return false
}

func (d *Dataset) RemoveUser(id uuid.UUID) bool {
	for i := range d.Users {
		if d.Users[i].ID == id {
			d.Users = append(d.Users[:i], d.Users[i+1:]...)
			return true
		}
	}
	return false
}

func (d *Dataset) RemoveFieldDefinition(id uuid.UUID) bool {
	for i := range d.FieldDefinitions {
		if d.FieldDefinitions[i].ID == id {
			d.FieldDefinitions = append(d.FieldDefinitions[:i], d.FieldDefinitions[i+1:]...)
			return true
		}
	}
	return false
}
