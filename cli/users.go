// ABOUTME: User CLI commands
// ABOUTME: Managing team members and their role tags
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/visitlog/models"
)

// AddUserCommand adds a new user
func AddUserCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("add-user", flag.ExitOnError)
	name := fs.String("name", "", "User name (required)")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	department := fs.String("department", "", "Department")
	team := fs.String("team", "", "Team")
	roles := fs.String("roles", "", "Comma-separated role tags (default: member)")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	user := &models.User{
		Name:       *name,
		Email:      *email,
		Phone:      *phone,
		Department: *department,
		Team:       *team,
		Roles:      splitRoles(*roles),
	}

	if err := app.Coord.CreateUser(context.Background(), user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("✓ User created: %s (ID: %s)\n", user.Name, user.ID)
	fmt.Printf("  Roles: %s\n", strings.Join(user.Roles, ", "))
	return nil
}

// splitRoles parses a comma-separated role list, dropping empty entries.
func splitRoles(raw string) []string {
	var roles []string
	for _, r := range strings.Split(raw, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

// ListUsersCommand lists all users
func ListUsersCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("list-users", flag.ExitOnError)
	_ = fs.Parse(args)

	ds, err := app.Store.Load()
	if err != nil {
		return err
	}

	if len(ds.Users) == 0 {
		fmt.Println("No users found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tEMAIL\tTEAM\tROLES\tID")
	_, _ = fmt.Fprintln(w, "----\t-----\t----\t-----\t--")

	for _, u := range ds.Users {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			u.Name, orDash(u.Email), orDash(u.Team), strings.Join(u.Roles, ","), u.ID.String()[:8])
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %d user(s)\n", len(ds.Users))
	return nil
}

// UpdateUserCommand updates an existing user. Flags must come before the
// user ID.
func UpdateUserCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("update-user", flag.ExitOnError)
	name := fs.String("name", "", "User name")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	department := fs.String("department", "", "Department")
	team := fs.String("team", "", "Team")
	roles := fs.String("roles", "", "Comma-separated role tags (replaces existing)")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("user ID is required")
	}

	ds, err := app.Store.Load()
	if err != nil {
		return err
	}

	id, err := resolveID(fs.Arg(0), userIDs(ds))
	if err != nil {
		return err
	}
	existing := ds.FindUser(id)
	if existing == nil {
		return fmt.Errorf("user %s not found", id)
	}

	updated := *existing
	if *name != "" {
		updated.Name = *name
	}
	if *email != "" {
		updated.Email = *email
	}
	if *phone != "" {
		updated.Phone = *phone
	}
	if *department != "" {
		updated.Department = *department
	}
	if *team != "" {
		updated.Team = *team
	}
	if *roles != "" {
		updated.Roles = splitRoles(*roles)
	}

	if err := app.Coord.UpdateUser(context.Background(), &updated); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	fmt.Printf("✓ User updated: %s (ID: %s)\n", updated.Name, updated.ID)
	return nil
}

// DeleteUserCommand deletes a user
func DeleteUserCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("delete-user", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("user ID is required")
	}

	ds, err := app.Store.Load()
	if err != nil {
		return err
	}

	id, err := resolveID(fs.Arg(0), userIDs(ds))
	if err != nil {
		return err
	}

	if err := app.Coord.DeleteUser(context.Background(), id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	fmt.Printf("✓ User deleted (ID: %s)\n", id)
	return nil
}
