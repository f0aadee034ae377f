// ABOUTME: Custom field CLI commands
// ABOUTME: Defining per-entity fields and setting values on records
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/harperreed/visitlog/models"
)

// AddFieldCommand defines a new custom field
func AddFieldCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("add-field", flag.ExitOnError)
	label := fs.String("label", "", "Field label (required)")
	target := fs.String("target", "", "Target entity: client, visit, or user (required)")
	kind := fs.String("kind", models.FieldKindText, "Value type (text, number, date)")
	_ = fs.Parse(args)

	if *label == "" {
		return fmt.Errorf("--label is required")
	}
	switch *target {
	case models.TargetClient, models.TargetVisit, models.TargetUser:
	default:
		return fmt.Errorf("--target must be client, visit, or user")
	}
	switch *kind {
	case models.FieldKindText, models.FieldKindNumber, models.FieldKindDate:
	default:
		return fmt.Errorf("--kind must be text, number, or date")
	}

	def := &models.CustomFieldDefinition{
		Label:  *label,
		Target: *target,
		Kind:   *kind,
	}

	if err := app.Coord.CreateFieldDefinition(context.Background(), def); err != nil {
		return fmt.Errorf("failed to create field: %w", err)
	}

	fmt.Printf("✓ Field created: %s on %s (ID: %s)\n", def.Label, def.Target, def.ID)
	return nil
}

// ListFieldsCommand lists custom field definitions
func ListFieldsCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("list-fields", flag.ExitOnError)
	target := fs.String("target", "", "Filter by target entity")
	_ = fs.Parse(args)

	ds, err := app.Store.Load()
	if err != nil {
		return err
	}

	var defs []models.CustomFieldDefinition
	for _, d := range ds.FieldDefinitions {
		if *target != "" && d.Target != *target {
			continue
		}
		defs = append(defs, d)
	}

	if len(defs) == 0 {
		fmt.Println("No fields found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "LABEL\tTARGET\tKIND\tID")
	_, _ = fmt.Fprintln(w, "-----\t------\t----\t--")

	for _, d := range defs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Label, d.Target, d.Kind, d.ID.String()[:8])
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %d field(s)\n", len(defs))
	return nil
}

// DeleteFieldCommand deletes a field definition. Values referencing it
// stay on their records and render as "Unknown field".
func DeleteFieldCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("delete-field", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("field ID is required")
	}

	ds, err := app.Store.Load()
	if err != nil {
		return err
	}

	id, err := resolveID(fs.Arg(0), fieldDefinitionIDs(ds))
	if err != nil {
		return err
	}

	if err := app.Coord.DeleteFieldDefinition(context.Background(), id); err != nil {
		return fmt.Errorf("failed to delete field: %w", err)
	}

	fmt.Printf("✓ Field deleted (ID: %s)\n", id)
	return nil
}

// SetFieldCommand sets a custom field value on a client, visit, or user
func SetFieldCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("set-field", flag.ExitOnError)
	fieldRef := fs.String("field", "", "Field ID (required)")
	value := fs.String("value", "", "Value to set (required)")
	_ = fs.Parse(args)

	if *fieldRef == "" || *value == "" {
		return fmt.Errorf("--field and --value are required")
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("record ID is required")
	}

	ds, err := app.Store.Load()
	if err != nil {
		return err
	}

	fieldID, err := resolveID(*fieldRef, fieldDefinitionIDs(ds))
	if err != nil {
		return err
	}
	def := ds.FindFieldDefinition(fieldID)
	if def == nil {
		return fmt.Errorf("field %s not found", fieldID)
	}

	ctx := context.Background()
	switch def.Target {
	case models.TargetClient:
		id, err := resolveID(fs.Arg(0), clientIDs(ds))
		if err != nil {
			return err
		}
		client := ds.FindClient(id)
		if client == nil {
			return fmt.Errorf("client %s not found", id)
		}
		updated := *client
		updated.CustomFields = setFieldValue(client.CustomFields, fieldID, *value)
		if err := app.Coord.UpdateClient(ctx, &updated); err != nil {
			return fmt.Errorf("failed to set field: %w", err)
		}

	case models.TargetVisit:
		id, err := resolveID(fs.Arg(0), visitIDs(ds))
		if err != nil {
			return err
		}
		visit := ds.FindVisit(id)
		if visit == nil {
			return fmt.Errorf("visit %s not found", id)
		}
		updated := *visit
		updated.CustomFields = setFieldValue(visit.CustomFields, fieldID, *value)
		if err := app.Coord.UpdateVisit(ctx, &updated); err != nil {
			return fmt.Errorf("failed to set field: %w", err)
		}

	case models.TargetUser:
		id, err := resolveID(fs.Arg(0), userIDs(ds))
		if err != nil {
			return err
		}
		user := ds.FindUser(id)
		if user == nil {
			return fmt.Errorf("user %s not found", id)
		}
		updated := *user
		updated.CustomFields = setFieldValue(user.CustomFields, fieldID, *value)
		if err := app.Coord.UpdateUser(ctx, &updated); err != nil {
			return fmt.Errorf("failed to set field: %w", err)
		}

	default:
		return fmt.Errorf("field %s has unknown target %q", fieldID, def.Target)
	}

	fmt.Printf("✓ %s = %s\n", def.Label, *value)
	return nil
}

// setFieldValue replaces an existing value for the field or appends one.
func setFieldValue(values []models.CustomFieldValue, fieldID uuid.UUID, value string) []models.CustomFieldValue {
	out := append([]models.CustomFieldValue{}, values...)
	for i := range out {
		if out[i].FieldID == fieldID {
			out[i].Value = value
			return out
		}
	}
	return append(out, models.CustomFieldValue{FieldID: fieldID, Value: value})
}
