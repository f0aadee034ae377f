// ABOUTME: Sync coordinator for optimistic local writes with remote mirror
// ABOUTME: Applies mutations locally first, then rolls back on remote failure
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/visitlog/logger"
	"github.com/harperreed/visitlog/models"
	"github.com/harperreed/visitlog/remote"
	"github.com/harperreed/visitlog/store"
)

// RemoteWriteError reports a remote write that failed after the local
// mutation was applied. By the time the caller sees it, the local cache
// has been rolled back to its pre-mutation state.
type RemoteWriteError struct {
	Op     string
	Entity string
	Err    error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("remote %s %s failed (local change rolled back): %v", e.Op, e.Entity, e.Err)
}

func (e *RemoteWriteError) Unwrap() error {
	return e.Err
}

// Coordinator keeps the local cache immediately consistent with user
// intent and mirrors it to the remote store on a best-effort basis.
// With no remote configured it degrades to plain local persistence.
type Coordinator struct {
	store  *store.Store
	remote remote.TableStore
	log    logger.Logger
}

// New builds a coordinator. remote may be nil for local-only mode.
func New(st *store.Store, rt remote.TableStore, log logger.Logger) *Coordinator {
	if log == nil {
		log = logger.Silent()
	}
	return &Coordinator{store: st, remote: rt, log: log}
}

// rollback restores the pre-mutation dataset state after a remote
// failure. A failed rollback save is logged, not returned: the remote
// error is the one the caller needs.
func (c *Coordinator) rollback(ds *models.Dataset, op, entity string) {
	if err := c.store.Save(ds); err != nil {
		c.log.WithField("op", op).WithField("entity", entity).
			Error(fmt.Sprintf("rollback save failed: %v", err))
	}
}

func (c *Coordinator) remoteErr(op, entity string, err error) error {
	c.log.WithField("op", op).WithField("entity", entity).
		Warn(fmt.Sprintf("remote write failed, rolled back: %v", err))
	return &RemoteWriteError{Op: op, Entity: entity, Err: err}
}

// CreateClient adds a client locally, then mirrors the insert. A nil id
// gets assigned; timestamps are stamped here.
func (c *Coordinator) CreateClient(ctx context.Context, client *models.Client) error {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	now := time.Now()
	client.CreatedAt = now
	client.UpdatedAt = now

	ds, err := c.store.Load()
	if err != nil {
		return err
	}
	ds.Clients = append(ds.Clients, *client)
	if err := c.store.Save(ds); err != nil {
		return err
	}

	if c.remote == nil {
		return nil
	}
	if err := c.remote.InsertClient(ctx, *client); err != nil {
		ds.RemoveClient(client.ID)
		c.rollback(ds, "insert", "client")
		return c.remoteErr("insert", "client", err)
	}
	return nil
}

// UpdateClient replaces a client record wholesale. The denormalized
// ClientName on existing visits is left alone: it is a snapshot taken at
// visit creation, not a derived field.
func (c *Coordinator) UpdateClient(ctx context.Context, client *models.Client) error {
	ds, err := c.store.Load()
	if err != nil {
		return err
	}
	existing := ds.FindClient(client.ID)
	if existing == nil {
		return fmt.Errorf("client %s not found", client.ID)
	}
	prev := *existing
	client.CreatedAt = prev.CreatedAt
	client.UpdatedAt = time.Now()
	*existing = *client
	if err := c.store.Save(ds); err != nil {
		return err
	}

	if c.remote == nil {
		return nil
	}
	if err := c.remote.UpdateClient(ctx, *client); err != nil {
		*ds.FindClient(client.ID) = prev
		c.rollback(ds, "update", "client")
		return c.remoteErr("update", "client", err)
	}
	return nil
}

// DeleteClient removes a client locally, then mirrors the delete,
// re-inserting the record if the remote delete fails.
func (c *Coordinator) DeleteClient(ctx context.Context, id uuid.UUID) error {
	ds, err := c.store.Load()
	if err != nil {
		return err
	}
	existing := ds.FindClient(id)
	if existing == nil {
		return fmt.Errorf("client %s not found", id)
	}
	prev := *existing
	ds.RemoveClient(id)
	if err := c.store.Save(ds); err != nil {
		return err
	}

	if c.remote == nil {
		return nil
	}
	if err := c.remote.DeleteClient(ctx, id); err != nil {
		ds.Clients = append(ds.Clients, prev)
		c.rollback(ds, "delete", "client")
		return c.remoteErr("delete", "client", err)
	}
	return nil
}

// CreateVisit adds a visit. The owning client must exist; its display
// name is snapshotted onto the visit at creation time.
func (c *Coordinator) CreateVisit(ctx context.Context, visit *models.Visit) error {
	ds, err := c.store.Load()
	if err != nil {
		return err
	}
	client := ds.FindClient(visit.ClientID)
	if client == nil {
		return fmt.Errorf("visit references unknown client %s", visit.ClientID)
	}

	if visit.ID == uuid.Nil {
		visit.ID = uuid.New()
	}
	visit.ClientName = client.Name
	if visit.Outcome == "" {
		visit.Outcome = models.OutcomePending
	}
	now := time.Now()
	visit.CreatedAt = now
	visit.UpdatedAt = now

	ds.Visits = append(ds.Visits, *visit)
	if err := c.store.Save(ds); err != nil {
		return err
	}

	if c.remote == nil {
		return nil
	}
	if err := c.remote.InsertVisit(ctx, *visit); err != nil {
		ds.RemoveVisit(visit.ID)
		c.rollback(ds, "insert", "visit")
		return c.remoteErr("insert", "visit", err)
	}
	return nil
}

func (c *Coordinator) UpdateVisit(ctx context.Context, visit *models.Visit) error {
	ds, err := c.store.Load()
	if err != nil {
		return err
	}
	existing := ds.FindVisit(visit.ID)
	if existing == nil {
		return fmt.Errorf("visit %s not found", visit.ID)
	}
	prev := *existing
	visit.CreatedAt = prev.CreatedAt
	visit.UpdatedAt = time.Now()
	*existing = *visit
	if err := c.store.Save(ds); err != nil {
		return err
	}

	if c.remote == nil {
		return nil
	}
	if err := c.remote.UpdateVisit(ctx, *visit); err != nil {
		*ds.FindVisit(visit.ID) = prev
		c.rollback(ds, "update", "visit")
		return c.remoteErr("update", "visit", err)
	}
	return nil
}

func (c *Coordinator) DeleteVisit(ctx context.Context, id uuid.UUID) error {
	ds, err := c.store.Load()
	if err != nil {
		return err
	}
	existing := ds.FindVisit(id)
	if existing == nil {
		return fmt.Errorf("visit %s not found", id)
	}
	prev := *existing
	ds.RemoveVisit(id)
	if err := c.store.Save(ds); err != nil {
		return err
	}

	if c.remote == nil {
		return nil
	}
	if err := c.remote.DeleteVisit(ctx, id); err != nil {
		ds.Visits = append(ds.Visits, prev)
		c.rollback(ds, "delete", "visit")
		return c.remoteErr("delete", "visit", err)
	}
	return nil
}

func (c *Coordinator) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if len(user.Roles) == 0 {
		user.Roles = []string{models.RoleMember}
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	ds, err := c.store.Load()
	if err != nil {
		return err
	}
	ds.Users = append(ds.Users, *user)
	if err := c.store.Save(ds); err != nil {
		return err
	}

	if c.remote == nil {
		return nil
	}
	if err := c.remote.InsertUser(ctx, *user); err != nil {
		ds.RemoveUser(user.ID)
		c.rollback(ds, "insert", "user")
		return c.remoteErr("insert", "user", err)
	}
	return nil
}

func (c *Coordinator) UpdateUser(ctx context.Context, user *models.User) error {
	ds, err := c.store.Load()
	if err != nil {
		return err
	}
	existing := ds.FindUser(user.ID)
	if existing == nil {
		return fmt.Errorf("user %s not found", user.ID)
	}
	prev := *existing
	user.CreatedAt = prev.CreatedAt
	user.UpdatedAt = time.Now()
	*existing = *user
	if err := c.store.Save(ds); err != nil {
		return err
	}

	if c.remote == nil {
		return nil
	}
	if err := c.remote.UpdateUser(ctx, *user); err != nil {
		*ds.FindUser(user.ID) = prev
		c.rollback(ds, "update", "user")
		return c.remoteErr("update", "user", err)
	}
	return nil
}

func (c *Coordinator) DeleteUser(ctx context.Context, id uuid.UUID) error {
	ds, err := c.store.Load()
	if err != nil {
		return err
	}
	existing := ds.FindUser(id)
	if existing == nil {
		return fmt.Errorf("user %s not found", id)
	}
	prev := *existing
	ds.RemoveUser(id)
	if err := c.store.Save(ds); err != nil {
		return err
	}

	if c.remote == nil {
		return nil
	}
	if err := c.remote.DeleteUser(ctx, id); err != nil {
		ds.Users = append(ds.Users, prev)
		c.rollback(ds, "delete", "user")
		return c.remoteErr("delete", "user", err)
	}
	return nil
}

func (c *Coordinator) CreateFieldDefinition(ctx context.Context, def *models.CustomFieldDefinition) error {
	if def.ID == uuid.Nil {
		def.ID = uuid.New()
	}
	def.CreatedAt = time.Now()

	ds, err := c.store.Load()
	if err != nil {
		return err
	}
	ds.FieldDefinitions = append(ds.FieldDefinitions, *def)
	if err := c.store.Save(ds); err != nil {
		return err
	}

	if c.remote == nil {
		return nil
	}
	if err := c.remote.InsertFieldDefinition(ctx, *def); err != nil {
		ds.RemoveFieldDefinition(def.ID)
		c.rollback(ds, "insert", "field definition")
		return c.remoteErr("insert", "field definition", err)
	}
	return nil
}

func (c *Coordinator) UpdateFieldDefinition(ctx context.Context, def *models.CustomFieldDefinition) error {
	ds, err := c.store.Load()
	if err != nil {
		return err
	}
	existing := ds.FindFieldDefinition(def.ID)
	if existing == nil {
		return fmt.Errorf("field definition %s not found", def.ID)
	}
	prev := *existing
	def.CreatedAt = prev.CreatedAt
	*existing = *def
	if err := c.store.Save(ds); err != nil {
		return err
	}

	if c.remote == nil {
		return nil
	}
	if err := c.remote.UpdateFieldDefinition(ctx, *def); err != nil {
		*ds.FindFieldDefinition(def.ID) = prev
		c.rollback(ds, "update", "field definition")
		return c.remoteErr("update", "field definition", err)
	}
	return nil
}

// DeleteFieldDefinition removes a definition. Values referencing it are
// left in place and render as an unknown field.
func (c *Coordinator) DeleteFieldDefinition(ctx context.Context, id uuid.UUID) error {
	ds, err := c.store.Load()
	if err != nil {
		return err
	}
	existing := ds.FindFieldDefinition(id)
	if existing == nil {
		return fmt.Errorf("field definition %s not found", id)
	}
	prev := *existing
	ds.RemoveFieldDefinition(id)
	if err := c.store.Save(ds); err != nil {
		return err
	}

	if c.remote == nil {
		return nil
	}
	if err := c.remote.DeleteFieldDefinition(ctx, id); err != nil {
		ds.FieldDefinitions = append(ds.FieldDefinitions, prev)
		c.rollback(ds, "delete", "field definition")
		return c.remoteErr("delete", "field definition", err)
	}
	return nil
}
