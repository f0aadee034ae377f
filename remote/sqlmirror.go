// ABOUTME: Self-hosted SQLite implementation of TableStore
// ABOUTME: Snake_case tables with upsert via ON CONFLICT(id) DO UPDATE
package remote

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harperreed/visitlog/models"
)

// sqlStore mirrors the dataset into a SQLite file. It exists for
// deployments that want a queryable mirror without a hosted table API.
type sqlStore struct {
	db *sql.DB
}

// OpenSQLMirror opens (or creates) the mirror database at path.
func OpenSQLMirror(path string) (TableStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create mirror directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror database: %w", err)
	}

	// Single connection avoids database-locked errors under WAL.
	db.SetMaxOpenConns(1)

	if err := initMirrorSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqlStore{db: db}, nil
}

func initMirrorSchema(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS clients (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			company TEXT,
			email TEXT,
			phone TEXT,
			industry TEXT,
			status TEXT NOT NULL,
			custom_fields TEXT,
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS visits (
			id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL,
			client_name TEXT,
			user_id TEXT,
			date TEXT,
			category TEXT,
			raw_notes TEXT,
			summary TEXT,
			outcome TEXT,
			action_items TEXT,
			sentiment_score REAL,
			follow_up_email TEXT,
			custom_fields TEXT,
			attachments TEXT,
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT,
			phone TEXT,
			department TEXT,
			team TEXT,
			role TEXT,
			custom_fields TEXT,
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS field_definitions (
			id TEXT PRIMARY KEY,
			target TEXT NOT NULL,
			label TEXT NOT NULL,
			kind TEXT NOT NULL,
			created_at TEXT
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize mirror schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database. Callers holding the concrete
// type may close it; the TableStore contract itself has no lifecycle.
func (s *sqlStore) Close() error {
	return s.db.Close()
}

func (s *sqlStore) deleteByID(table string, id uuid.UUID) error {
	_, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id.String())
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return nil
}

func (s *sqlStore) InsertClient(ctx context.Context, c models.Client) error {
	r := clientToRow(c)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, company, email, phone, industry, status, custom_fields, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Name, r.Company, r.Email, r.Phone, r.Industry, r.Status, r.CustomFields, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert client: %w", err)
	}
	return nil
}

func (s *sqlStore) UpdateClient(ctx context.Context, c models.Client) error {
	r := clientToRow(c)
	res, err := s.db.ExecContext(ctx, `
		UPDATE clients
		SET name = ?, company = ?, email = ?, phone = ?, industry = ?, status = ?, custom_fields = ?, updated_at = ?
		WHERE id = ?
	`, r.Name, r.Company, r.Email, r.Phone, r.Industry, r.Status, r.CustomFields, r.UpdatedAt, r.ID)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("client %s not found in mirror", r.ID)
	}
	return nil
}

func (s *sqlStore) DeleteClient(ctx context.Context, id uuid.UUID) error {
	return s.deleteByID(TableClients, id)
}

func (s *sqlStore) UpsertClient(ctx context.Context, c models.Client) error {
	r := clientToRow(c)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, company, email, phone, industry, status, custom_fields, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			company = excluded.company,
			email = excluded.email,
			phone = excluded.phone,
			industry = excluded.industry,
			status = excluded.status,
			custom_fields = excluded.custom_fields,
			updated_at = excluded.updated_at
	`, r.ID, r.Name, r.Company, r.Email, r.Phone, r.Industry, r.Status, r.CustomFields, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert client: %w", err)
	}
	return nil
}

func (s *sqlStore) ListClients(ctx context.Context) ([]models.Client, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, company, email, phone, industry, status, custom_fields, created_at, updated_at
		FROM clients ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var clients []models.Client
	for rows.Next() {
		var r clientRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Company, &r.Email, &r.Phone, &r.Industry, &r.Status, &r.CustomFields, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		c, err := clientFromRow(r)
		if err != nil {
			return nil, fmt.Errorf("bad client row %q: %w", r.ID, err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}
	return clients, nil
}

func (s *sqlStore) InsertVisit(ctx context.Context, v models.Visit) error {
	r := visitToRow(v)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO visits (id, client_id, client_name, user_id, date, category, raw_notes, summary, outcome, action_items, sentiment_score, follow_up_email, custom_fields, attachments, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.ClientID, r.ClientName, r.UserID, r.Date, r.Category, r.RawNotes, r.Summary, r.Outcome, r.ActionItems, r.SentimentScore, r.FollowUpEmail, r.CustomFields, r.Attachments, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert visit: %w", err)
	}
	return nil
}

func (s *sqlStore) UpdateVisit(ctx context.Context, v models.Visit) error {
	r := visitToRow(v)
	res, err := s.db.ExecContext(ctx, `
		UPDATE visits
		SET client_id = ?, client_name = ?, user_id = ?, date = ?, category = ?, raw_notes = ?, summary = ?, outcome = ?, action_items = ?, sentiment_score = ?, follow_up_email = ?, custom_fields = ?, attachments = ?, updated_at = ?
		WHERE id = ?
	`, r.ClientID, r.ClientName, r.UserID, r.Date, r.Category, r.RawNotes, r.Summary, r.Outcome, r.ActionItems, r.SentimentScore, r.FollowUpEmail, r.CustomFields, r.Attachments, r.UpdatedAt, r.ID)
	if err != nil {
		return fmt.Errorf("failed to update visit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("visit %s not found in mirror", r.ID)
	}
	return nil
}

func (s *sqlStore) DeleteVisit(ctx context.Context, id uuid.UUID) error {
	return s.deleteByID(TableVisits, id)
}

func (s *sqlStore) UpsertVisit(ctx context.Context, v models.Visit) error {
	r := visitToRow(v)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO visits (id, client_id, client_name, user_id, date, category, raw_notes, summary, outcome, action_items, sentiment_score, follow_up_email, custom_fields, attachments, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			client_id = excluded.client_id,
			client_name = excluded.client_name,
			user_id = excluded.user_id,
			date = excluded.date,
			category = excluded.category,
			raw_notes = excluded.raw_notes,
			summary = excluded.summary,
			outcome = excluded.outcome,
			action_items = excluded.action_items,
			sentiment_score = excluded.sentiment_score,
			follow_up_email = excluded.follow_up_email,
			custom_fields = excluded.custom_fields,
			attachments = excluded.attachments,
			updated_at = excluded.updated_at
	`, r.ID, r.ClientID, r.ClientName, r.UserID, r.Date, r.Category, r.RawNotes, r.Summary, r.Outcome, r.ActionItems, r.SentimentScore, r.FollowUpEmail, r.CustomFields, r.Attachments, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert visit: %w", err)
	}
	return nil
}

func (s *sqlStore) ListVisits(ctx context.Context) ([]models.Visit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_id, client_name, user_id, date, category, raw_notes, summary, outcome, action_items, sentiment_score, follow_up_email, custom_fields, attachments, created_at, updated_at
		FROM visits ORDER BY date
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var visits []models.Visit
	for rows.Next() {
		var r visitRow
		if err := rows.Scan(&r.ID, &r.ClientID, &r.ClientName, &r.UserID, &r.Date, &r.Category, &r.RawNotes, &r.Summary, &r.Outcome, &r.ActionItems, &r.SentimentScore, &r.FollowUpEmail, &r.CustomFields, &r.Attachments, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		v, err := visitFromRow(r)
		if err != nil {
			return nil, fmt.Errorf("bad visit row %q: %w", r.ID, err)
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating visits: %w", err)
	}
	return visits, nil
}

func (s *sqlStore) InsertUser(ctx context.Context, u models.User) error {
	r := userToRow(u)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone, department, team, role, custom_fields, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Name, r.Email, r.Phone, r.Department, r.Team, r.Role, r.CustomFields, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *sqlStore) UpdateUser(ctx context.Context, u models.User) error {
	r := userToRow(u)
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET name = ?, email = ?, phone = ?, department = ?, team = ?, role = ?, custom_fields = ?, updated_at = ?
		WHERE id = ?
	`, r.Name, r.Email, r.Phone, r.Department, r.Team, r.Role, r.CustomFields, r.UpdatedAt, r.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s not found in mirror", r.ID)
	}
	return nil
}

func (s *sqlStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.deleteByID(TableUsers, id)
}

func (s *sqlStore) UpsertUser(ctx context.Context, u models.User) error {
	r := userToRow(u)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone, department, team, role, custom_fields, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			department = excluded.department,
			team = excluded.team,
			role = excluded.role,
			custom_fields = excluded.custom_fields,
			updated_at = excluded.updated_at
	`, r.ID, r.Name, r.Email, r.Phone, r.Department, r.Team, r.Role, r.CustomFields, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (s *sqlStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, phone, department, team, role, custom_fields, created_at, updated_at
		FROM users ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []models.User
	for rows.Next() {
		var r userRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Email, &r.Phone, &r.Department, &r.Team, &r.Role, &r.CustomFields, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u, err := userFromRow(r)
		if err != nil {
			return nil, fmt.Errorf("bad user row %q: %w", r.ID, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

func (s *sqlStore) InsertFieldDefinition(ctx context.Context, d models.CustomFieldDefinition) error {
	r := fieldDefinitionToRow(d)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO field_definitions (id, target, label, kind, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, r.ID, r.Target, r.Label, r.Kind, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert field definition: %w", err)
	}
	return nil
}

func (s *sqlStore) UpdateFieldDefinition(ctx context.Context, d models.CustomFieldDefinition) error {
	r := fieldDefinitionToRow(d)
	res, err := s.db.ExecContext(ctx, `
		UPDATE field_definitions SET target = ?, label = ?, kind = ? WHERE id = ?
	`, r.Target, r.Label, r.Kind, r.ID)
	if err != nil {
		return fmt.Errorf("failed to update field definition: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("field definition %s not found in mirror", r.ID)
	}
	return nil
}

func (s *sqlStore) DeleteFieldDefinition(ctx context.Context, id uuid.UUID) error {
	return s.deleteByID(TableFieldDefinitions, id)
}

func (s *sqlStore) UpsertFieldDefinition(ctx context.Context, d models.CustomFieldDefinition) error {
	r := fieldDefinitionToRow(d)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO field_definitions (id, target, label, kind, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			target = excluded.target,
			label = excluded.label,
			kind = excluded.kind
	`, r.ID, r.Target, r.Label, r.Kind, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert field definition: %w", err)
	}
	return nil
}

func (s *sqlStore) ListFieldDefinitions(ctx context.Context) ([]models.CustomFieldDefinition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, target, label, kind, created_at FROM field_definitions ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query field definitions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var defs []models.CustomFieldDefinition
	for rows.Next() {
		var r fieldDefinitionRow
		if err := rows.Scan(&r.ID, &r.Target, &r.Label, &r.Kind, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan field definition: %w", err)
		}
		d, err := fieldDefinitionFromRow(r)
		if err != nil {
			return nil, fmt.Errorf("bad field definition row %q: %w", r.ID, err)
		}
		defs = append(defs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating field definitions: %w", err)
	}
	return defs, nil
}
