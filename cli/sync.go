// ABOUTME: Sync and backup CLI commands
// ABOUTME: Pull from the remote mirror, seed it, export and import backups
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/harperreed/visitlog/transfer"
)

// SyncPullCommand replaces local collections from the remote mirror
func SyncPullCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("pull", flag.ExitOnError)
	_ = fs.Parse(args)

	if err := app.Coord.Pull(context.Background()); err != nil {
		return err
	}

	ds, err := app.Store.Load()
	if err != nil {
		return err
	}
	fmt.Printf("✓ Pulled from remote: %d client(s), %d visit(s), %d user(s), %d field(s)\n",
		len(ds.Clients), len(ds.Visits), len(ds.Users), len(ds.FieldDefinitions))
	return nil
}

// SyncSeedCommand uploads every local record to the remote mirror
func SyncSeedCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	_ = fs.Parse(args)

	ds, err := app.Store.Load()
	if err != nil {
		return err
	}

	if err := transfer.SeedRemote(context.Background(), ds, app.Remote); err != nil {
		return err
	}

	fmt.Printf("✓ Seeded remote: %d client(s), %d visit(s), %d user(s), %d field(s)\n",
		len(ds.Clients), len(ds.Visits), len(ds.Users), len(ds.FieldDefinitions))
	return nil
}

// ExportCommand writes the entire dataset to a backup file or stdout
func ExportCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	_ = fs.Parse(args)

	ds, err := app.Store.Load()
	if err != nil {
		return err
	}

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := transfer.Export(ds, out); err != nil {
		return err
	}

	if *output != "" {
		fmt.Printf("✓ Exported %d client(s), %d visit(s), %d user(s) to %s\n",
			len(ds.Clients), len(ds.Visits), len(ds.Users), *output)
	}
	return nil
}

// ImportCommand replaces the local dataset from a backup file
func ImportCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	input := fs.String("input", "", "Backup file to import (required)")
	_ = fs.Parse(args)

	if *input == "" {
		return fmt.Errorf("--input is required")
	}

	f, err := os.Open(*input)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	if err := transfer.Import(app.Store, f); err != nil {
		return err
	}

	ds, err := app.Store.Load()
	if err != nil {
		return err
	}
	fmt.Printf("✓ Imported %d client(s), %d visit(s), %d user(s)\n",
		len(ds.Clients), len(ds.Visits), len(ds.Users))
	return nil
}
