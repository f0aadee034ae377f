// ABOUTME: Seed dataset used for first run and corrupt-blob recovery
// ABOUTME: Provides one admin user and local-only default settings
package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/visitlog/models"
)

// SeedDataset returns the dataset a fresh (or unrecoverable) installation
// starts from.
func SeedDataset() *models.Dataset {
	now := time.Now()
	return &models.Dataset{
		Clients: []models.Client{},
		Visits:  []models.Visit{},
		Users: []models.User{
			{
				ID:        uuid.New(),
				Name:      "Admin",
				Roles:     []string{models.RoleAdmin},
				CreatedAt: now,
				UpdatedAt: now,
			},
		},
		FieldDefinitions: []models.CustomFieldDefinition{},
		Settings: models.Settings{
			StorageMode: models.StorageLocal,
			AIProvider:  models.ProviderNone,
		},
	}
}
