// ABOUTME: Entry point for the visitlog CLI
// ABOUTME: Routes entity commands to their handlers based on arguments
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/harperreed/visitlog/cli"
	"github.com/harperreed/visitlog/config"
	"github.com/harperreed/visitlog/logger"
	"github.com/harperreed/visitlog/store"
)

const version = "0.2.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	storePath := flag.String("store-path", "", "Local cache path (default: ~/.local/share/visitlog/cache)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")

	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("visitlog version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	config.LoadEnv()

	logg := logger.Silent()
	if *verbose {
		logg = logger.New()
	}

	finalPath := *storePath
	if finalPath == "" {
		var err error
		finalPath, err = config.StorePath()
		if err != nil {
			log.Fatalf("Failed to locate data directory: %v", err)
		}
	}

	st, err := store.Open(finalPath)
	if err != nil {
		log.Fatalf("Failed to open local cache: %v", err)
	}
	defer st.Close()

	app, err := cli.NewApp(st, logg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	command := args[0]
	commandArgs := args[1:]

	run := func(err error) {
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
	}

	sub := func(name string) (string, []string) {
		if len(commandArgs) == 0 {
			fmt.Printf("Error: %s requires a subcommand\n\n", name)
			printUsage()
			os.Exit(1)
		}
		return commandArgs[0], commandArgs[1:]
	}

	switch command {
	case "client":
		verb, verbArgs := sub("client")
		switch verb {
		case "add":
			run(cli.AddClientCommand(app, verbArgs))
		case "list":
			run(cli.ListClientsCommand(app, verbArgs))
		case "show":
			run(cli.ShowClientCommand(app, verbArgs))
		case "update":
			run(cli.UpdateClientCommand(app, verbArgs))
		case "delete":
			run(cli.DeleteClientCommand(app, verbArgs))
		default:
			unknown("client", verb)
		}

	case "visit":
		verb, verbArgs := sub("visit")
		switch verb {
		case "add":
			run(cli.AddVisitCommand(app, verbArgs))
		case "list":
			run(cli.ListVisitsCommand(app, verbArgs))
		case "show":
			run(cli.ShowVisitCommand(app, verbArgs))
		case "update":
			run(cli.UpdateVisitCommand(app, verbArgs))
		case "delete":
			run(cli.DeleteVisitCommand(app, verbArgs))
		case "attach":
			run(cli.AttachVisitCommand(app, verbArgs))
		case "analyze":
			run(cli.AnalyzeVisitCommand(app, verbArgs))
		case "email":
			run(cli.EmailVisitCommand(app, verbArgs))
		case "session":
			run(cli.VisitSessionCommand(app, verbArgs))
		default:
			unknown("visit", verb)
		}

	case "user":
		verb, verbArgs := sub("user")
		switch verb {
		case "add":
			run(cli.AddUserCommand(app, verbArgs))
		case "list":
			run(cli.ListUsersCommand(app, verbArgs))
		case "update":
			run(cli.UpdateUserCommand(app, verbArgs))
		case "delete":
			run(cli.DeleteUserCommand(app, verbArgs))
		default:
			unknown("user", verb)
		}

	case "field":
		verb, verbArgs := sub("field")
		switch verb {
		case "add":
			run(cli.AddFieldCommand(app, verbArgs))
		case "list":
			run(cli.ListFieldsCommand(app, verbArgs))
		case "delete":
			run(cli.DeleteFieldCommand(app, verbArgs))
		case "set":
			run(cli.SetFieldCommand(app, verbArgs))
		default:
			unknown("field", verb)
		}

	case "sync":
		verb, verbArgs := sub("sync")
		switch verb {
		case "pull":
			run(cli.SyncPullCommand(app, verbArgs))
		case "seed":
			run(cli.SyncSeedCommand(app, verbArgs))
		default:
			unknown("sync", verb)
		}

	case "export":
		run(cli.ExportCommand(app, commandArgs))

	case "import":
		run(cli.ImportCommand(app, commandArgs))

	case "settings":
		verb, verbArgs := sub("settings")
		switch verb {
		case "show":
			run(cli.ShowSettingsCommand(app, verbArgs))
		case "set":
			run(cli.SetSettingsCommand(app, verbArgs))
		default:
			unknown("settings", verb)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func unknown(command, verb string) {
	fmt.Printf("Unknown %s command: %s\n\n", command, verb)
	printUsage()
	os.Exit(1)
}

func printUsage() {
	fmt.Printf(`visitlog v%s - Client visit tracking

USAGE:
  visitlog [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --store-path <path>    Local cache path (default: ~/.local/share/visitlog/cache)
  --verbose              Enable debug logging

CLIENT COMMANDS:
  visitlog client add       Add a new client
    --name <name>             Client name (required)
    --company <company>       Company name
    --email <email>           Email address
    --industry <industry>     Industry
    --status <status>         active, lead, or churned (default: active)

  visitlog client list      List clients
    --status <status>         Filter by status

  visitlog client show <id>             Show one client with custom fields
  visitlog client update [flags] <id>   Update a client
  visitlog client delete <id>           Delete a client
    Note: flags must come before the ID

VISIT COMMANDS:
  visitlog visit add        Record a visit
    --client <id>             Client ID (required)
    --user <id>               User ID (optional with a single user)
    --notes <text>            Raw visit notes
    --category <cat>          outbound or inbound (default: outbound)
    --outcome <outcome>       positive, neutral, negative, or pending
    --date <YYYY-MM-DD>       Visit date (default: today)

  visitlog visit list       List visits, newest first
    --client <id>             Filter by client
    --limit <n>               Max results (default: 50)

  visitlog visit show <id>              Show one visit in full
  visitlog visit update [flags] <id>    Update a visit
  visitlog visit delete <id>            Delete a visit

  visitlog visit attach [flags] <id>    Attach a file or URL
    --file <path>             File to inline
    --url <url>               URL to reference
    --name <name>             Display name

  visitlog visit analyze [flags] <id>   AI analysis of notes or audio
    --audio <path>            Audio recording instead of notes
    --tone <tone>             Follow-up draft tone (default: professional)

  visitlog visit email [flags] <id>     Send the follow-up draft
    --to <email>              Recipient (default: client email)
    --subject <subject>       Subject line

  visitlog visit session    Interactive note-taking with draft autosave
    --client <id>             Client ID (required)

USER COMMANDS:
  visitlog user add         Add a user
    --name <name>             User name (required)
    --roles <roles>           Comma-separated role tags (default: member)

  visitlog user list        List users
  visitlog user update [flags] <id>   Update a user
  visitlog user delete <id>           Delete a user

FIELD COMMANDS:
  visitlog field add        Define a custom field
    --label <label>           Field label (required)
    --target <entity>         client, visit, or user (required)
    --kind <kind>             text, number, or date (default: text)

  visitlog field list       List field definitions
  visitlog field delete <id>          Delete a field definition
  visitlog field set [flags] <id>     Set a value on a record
    --field <id>              Field ID (required)
    --value <value>           Value (required)

SYNC AND BACKUP:
  visitlog sync pull        Replace local data from the remote mirror
  visitlog sync seed        Upload all local data to the remote mirror
  visitlog export           Write a backup document
    --output <file>           Output file (default: stdout)
  visitlog import           Replace local data from a backup document
    --input <file>            Backup file (required)

SETTINGS:
  visitlog settings show    Show settings (secrets masked)
  visitlog settings set     Change settings
    --storage-mode <mode>     local, rest, or sqlite
    --remote-url <url>        Remote table API base URL
    --ai-provider <name>      gemini, deepseek, or none

EXAMPLES:
  # Add a client and record a visit
  visitlog client add --name "Globex" --industry manufacturing
  visitlog visit add --client 1a2b3c4d --notes "kickoff went well" --outcome positive

  # Analyze a visit and send the follow-up
  visitlog visit analyze 5e6f7a8b
  visitlog visit email 5e6f7a8b

  # Mirror to a hosted table API
  visitlog settings set --storage-mode rest --remote-url https://db.example.com/rest/v1
  visitlog sync seed

`, version)
}
