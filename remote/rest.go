// ABOUTME: Hosted table API implementation of TableStore
// ABOUTME: PostgREST-style per-table endpoints with id=eq filters
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/visitlog/models"
)

// restStore talks to a hosted table API: one endpoint per table, rows as
// JSON objects, filters in the query string. Timeouts come from the
// underlying http.Client; no retry policy is layered on top.
type restStore struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewRestStore returns a TableStore backed by the hosted table API at
// baseURL. The api key may be empty for unauthenticated deployments.
func NewRestStore(baseURL, apiKey string) TableStore {
	return &restStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *restStore) do(ctx context.Context, method, table, filter string, body interface{}, prefer string) ([]byte, error) {
	endpoint := s.baseURL + "/" + table
	if filter != "" {
		endpoint += "?" + filter
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s row: %w", table, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", table, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("apikey", s.apiKey)
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", table, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s returned %d: %s", method, table, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return respBody, nil
}

func idFilter(id uuid.UUID) string {
	return "id=eq." + url.QueryEscape(id.String())
}

func (s *restStore) insert(ctx context.Context, table string, row interface{}) error {
	_, err := s.do(ctx, http.MethodPost, table, "", row, "return=minimal")
	return err
}

func (s *restStore) update(ctx context.Context, table string, id uuid.UUID, row interface{}) error {
	_, err := s.do(ctx, http.MethodPatch, table, idFilter(id), row, "return=minimal")
	return err
}

func (s *restStore) delete(ctx context.Context, table string, id uuid.UUID) error {
	_, err := s.do(ctx, http.MethodDelete, table, idFilter(id), nil, "")
	return err
}

func (s *restStore) upsert(ctx context.Context, table string, row interface{}) error {
	_, err := s.do(ctx, http.MethodPost, table, "", row, "return=minimal,resolution=merge-duplicates")
	return err
}

func (s *restStore) list(ctx context.Context, table string, out interface{}) error {
	raw, err := s.do(ctx, http.MethodGet, table, "select=*", nil, "")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s rows: %w", table, err)
	}
	return nil
}

func (s *restStore) InsertClient(ctx context.Context, c models.Client) error {
	return s.insert(ctx, TableClients, clientToRow(c))
}

func (s *restStore) UpdateClient(ctx context.Context, c models.Client) error {
	return s.update(ctx, TableClients, c.ID, clientToRow(c))
}

func (s *restStore) DeleteClient(ctx context.Context, id uuid.UUID) error {
	return s.delete(ctx, TableClients, id)
}

func (s *restStore) UpsertClient(ctx context.Context, c models.Client) error {
	return s.upsert(ctx, TableClients, clientToRow(c))
}

func (s *restStore) ListClients(ctx context.Context) ([]models.Client, error) {
	var rows []clientRow
	if err := s.list(ctx, TableClients, &rows); err != nil {
		return nil, err
	}
	clients := make([]models.Client, 0, len(rows))
	for _, r := range rows {
		c, err := clientFromRow(r)
		if err != nil {
			return nil, fmt.Errorf("bad client row %q: %w", r.ID, err)
		}
		clients = append(clients, c)
	}
	return clients, nil
}

func (s *restStore) InsertVisit(ctx context.Context, v models.Visit) error {
	return s.insert(ctx, TableVisits, visitToRow(v))
}

func (s *restStore) UpdateVisit(ctx context.Context, v models.Visit) error {
	return s.update(ctx, TableVisits, v.ID, visitToRow(v))
}

func (s *restStore) DeleteVisit(ctx context.Context, id uuid.UUID) error {
	return s.delete(ctx, TableVisits, id)
}

func (s *restStore) UpsertVisit(ctx context.Context, v models.Visit) error {
	return s.upsert(ctx, TableVisits, visitToRow(v))
}

func (s *restStore) ListVisits(ctx context.Context) ([]models.Visit, error) {
	var rows []visitRow
	if err := s.list(ctx, TableVisits, &rows); err != nil {
		return nil, err
	}
	visits := make([]models.Visit, 0, len(rows))
	for _, r := range rows {
		v, err := visitFromRow(r)
		if err != nil {
			return nil, fmt.Errorf("bad visit row %q: %w", r.ID, err)
		}
		visits = append(visits, v)
	}
	return visits, nil
}

func (s *restStore) InsertUser(ctx context.Context, u models.User) error {
	return s.insert(ctx, TableUsers, userToRow(u))
}

func (s *restStore) UpdateUser(ctx context.Context, u models.User) error {
	return s.update(ctx, TableUsers, u.ID, userToRow(u))
}

func (s *restStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.delete(ctx, TableUsers, id)
}

func (s *restStore) UpsertUser(ctx context.Context, u models.User) error {
	return s.upsert(ctx, TableUsers, userToRow(u))
}

func (s *restStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var rows []userRow
	if err := s.list(ctx, TableUsers, &rows); err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(rows))
	for _, r := range rows {
		u, err := userFromRow(r)
		if err != nil {
			return nil, fmt.Errorf("bad user row %q: %w", r.ID, err)
		}
		users = append(users, u)
	}
	return users, nil
}

func (s *restStore) InsertFieldDefinition(ctx context.Context, d models.CustomFieldDefinition) error {
	return s.insert(ctx, TableFieldDefinitions, fieldDefinitionToRow(d))
}

func (s *restStore) UpdateFieldDefinition(ctx context.Context, d models.CustomFieldDefinition) error {
	return s.update(ctx, TableFieldDefinitions, d.ID, fieldDefinitionToRow(d))
}

func (s *restStore) DeleteFieldDefinition(ctx context.Context, id uuid.UUID) error {
	return s.delete(ctx, TableFieldDefinitions, id)
}

func (s *restStore) UpsertFieldDefinition(ctx context.Context, d models.CustomFieldDefinition) error {
	return s.upsert(ctx, TableFieldDefinitions, fieldDefinitionToRow(d))
}

func (s *restStore) ListFieldDefinitions(ctx context.Context) ([]models.CustomFieldDefinition, error) {
	var rows []fieldDefinitionRow
	if err := s.list(ctx, TableFieldDefinitions, &rows); err != nil {
		return nil, err
	}
	defs := make([]models.CustomFieldDefinition, 0, len(rows))
	for _, r := range rows {
		d, err := fieldDefinitionFromRow(r)
		if err != nil {
			return nil, fmt.Errorf("bad field definition row %q: %w", r.ID, err)
		}
		defs = append(defs, d)
	}
	return defs, nil
}
