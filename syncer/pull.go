// ABOUTME: Full resync pull replacing local collections from the mirror
// ABOUTME: Skips the wholesale replace when every fetched collection is empty
package syncer

import (
	"context"
	"errors"
	"fmt"
)

// Pull fetches every entity collection from the remote mirror and
// replaces the local collections wholesale (settings are untouched).
// Any fetch failure aborts with no local change. When every fetched
// collection is empty the replace is skipped entirely, so a
// mis-configured or freshly-created mirror cannot clobber local data.
func (c *Coordinator) Pull(ctx context.Context) error {
	if c.remote == nil {
		return errors.New("no remote mirror configured")
	}

	clients, clientsErr := c.remote.ListClients(ctx)
	visits, visitsErr := c.remote.ListVisits(ctx)
	users, usersErr := c.remote.ListUsers(ctx)
	defs, defsErr := c.remote.ListFieldDefinitions(ctx)

	if err := errors.Join(clientsErr, visitsErr, usersErr, defsErr); err != nil {
		return fmt.Errorf("sync pull failed, local data untouched: %w", err)
	}

	if len(clients) == 0 && len(visits) == 0 && len(users) == 0 && len(defs) == 0 {
		c.log.Info("sync pull: remote is empty, keeping local data")
		return nil
	}

	ds, err := c.store.Load()
	if err != nil {
		return err
	}
	ds.Clients = clients
	ds.Visits = visits
	ds.Users = users
	ds.FieldDefinitions = defs
	if err := c.store.Save(ds); err != nil {
		return err
	}

	c.log.WithField("clients", len(clients)).WithField("visits", len(visits)).
		Info("sync pull: local collections replaced from remote")
	return nil
}
