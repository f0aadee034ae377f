// ABOUTME: Client CLI commands
// ABOUTME: Human-friendly commands for managing clients
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/harperreed/visitlog/models"
)

// AddClientCommand adds a new client
func AddClientCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("add-client", flag.ExitOnError)
	name := fs.String("name", "", "Client name (required)")
	company := fs.String("company", "", "Company name")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	industry := fs.String("industry", "", "Industry")
	status := fs.String("status", models.StatusActive, "Status (active, lead, churned)")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	client := &models.Client{
		Name:     *name,
		Company:  *company,
		Email:    *email,
		Phone:    *phone,
		Industry: *industry,
		Status:   *status,
	}

	if err := app.Coord.CreateClient(context.Background(), client); err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	fmt.Printf("✓ Client created: %s (ID: %s)\n", client.Name, client.ID)
	if client.Company != "" {
		fmt.Printf("  Company: %s\n", client.Company)
	}
	if client.Industry != "" {
		fmt.Printf("  Industry: %s\n", client.Industry)
	}

	return nil
}

// ListClientsCommand lists all clients
func ListClientsCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("list-clients", flag.ExitOnError)
	status := fs.String("status", "", "Filter by status")
	_ = fs.Parse(args)

	ds, err := app.Store.Load()
	if err != nil {
		return err
	}

	var clients []models.Client
	for _, c := range ds.Clients {
		if *status != "" && c.Status != *status {
			continue
		}
		clients = append(clients, c)
	}

	if len(clients) == 0 {
		fmt.Println("No clients found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tCOMPANY\tINDUSTRY\tSTATUS\tID")
	_, _ = fmt.Fprintln(w, "----\t-------\t--------\t------\t--")

	for _, c := range clients {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			c.Name, orDash(c.Company), orDash(c.Industry), c.Status, c.ID.String()[:8])
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %d client(s)\n", len(clients))
	return nil
}

// ShowClientCommand prints one client with custom fields resolved
func ShowClientCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("show-client", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("client ID is required")
	}

	ds, err := app.Store.Load()
	if err != nil {
		return err
	}

	id, err := resolveID(fs.Arg(0), clientIDs(ds))
	if err != nil {
		return err
	}
	client := ds.FindClient(id)
	if client == nil {
		return fmt.Errorf("client %s not found", id)
	}

	fmt.Printf("Client: %s (ID: %s)\n", client.Name, client.ID)
	fmt.Printf("  Status: %s\n", client.Status)
	if client.Company != "" {
		fmt.Printf("  Company: %s\n", client.Company)
	}
	if client.Email != "" {
		fmt.Printf("  Email: %s\n", client.Email)
	}
	if client.Phone != "" {
		fmt.Printf("  Phone: %s\n", client.Phone)
	}
	if client.Industry != "" {
		fmt.Printf("  Industry: %s\n", client.Industry)
	}
	for _, cf := range client.CustomFields {
		fmt.Printf("  %s: %s\n", models.ResolveFieldLabel(ds.FieldDefinitions, cf.FieldID), cf.Value)
	}

	return nil
}

// UpdateClientCommand updates an existing client. Flags must come before
// the client ID.
func UpdateClientCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("update-client", flag.ExitOnError)
	name := fs.String("name", "", "Client name")
	company := fs.String("company", "", "Company name")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	industry := fs.String("industry", "", "Industry")
	status := fs.String("status", "", "Status (active, lead, churned)")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("client ID is required")
	}

	ds, err := app.Store.Load()
	if err != nil {
		return err
	}

	id, err := resolveID(fs.Arg(0), clientIDs(ds))
	if err != nil {
		return err
	}
	existing := ds.FindClient(id)
	if existing == nil {
		return fmt.Errorf("client %s not found", id)
	}

	updated := *existing
	if *name != "" {
		updated.Name = *name
	}
	if *company != "" {
		updated.Company = *company
	}
	if *email != "" {
		updated.Email = *email
	}
	if *phone != "" {
		updated.Phone = *phone
	}
	if *industry != "" {
		updated.Industry = *industry
	}
	if *status != "" {
		updated.Status = *status
	}

	if err := app.Coord.UpdateClient(context.Background(), &updated); err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}

	fmt.Printf("✓ Client updated: %s (ID: %s)\n", updated.Name, updated.ID)
	return nil
}

// DeleteClientCommand deletes a client
func DeleteClientCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("delete-client", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("client ID is required")
	}

	ds, err := app.Store.Load()
	if err != nil {
		return err
	}

	id, err := resolveID(fs.Arg(0), clientIDs(ds))
	if err != nil {
		return err
	}

	if err := app.Coord.DeleteClient(context.Background(), id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	fmt.Printf("✓ Client deleted (ID: %s)\n", id)
	return nil
}
