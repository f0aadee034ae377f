// ABOUTME: Interactive visit note-taking session with draft autosave
// ABOUTME: Unsaved notes survive a quit or crash and are offered back
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/visitlog/ai"
	"github.com/harperreed/visitlog/draft"
	"github.com/harperreed/visitlog/models"
)

// sessionTarget identifies the new-visit form in the draft slot.
const sessionTarget = "visit:new"

// VisitSessionCommand runs an interactive note-taking session for one
// client. Notes are draft-saved as they are typed; :save commits the
// visit and clears the draft, :quit leaves the draft for next time.
func VisitSessionCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("visit-session", flag.ExitOnError)
	clientRef := fs.String("client", "", "Client ID (required)")
	userRef := fs.String("user", "", "User ID (defaults to the only user when unambiguous)")
	_ = fs.Parse(args)

	if *clientRef == "" {
		return fmt.Errorf("--client is required")
	}

	ds, err := app.Store.Load()
	if err != nil {
		return err
	}
	clientID, err := resolveID(*clientRef, clientIDs(ds))
	if err != nil {
		return err
	}
	userID, err := resolveVisitUser(ds, *userRef)
	if err != nil {
		return err
	}

	tracker := draft.NewTracker(app.Store, sessionTarget, app.Log)
	return runVisitSession(app, tracker, clientID, userID, os.Stdin, os.Stdout)
}

func runVisitSession(app *App, tracker *draft.Tracker, clientID, userID uuid.UUID, in io.Reader, out io.Writer) error {
	var notes []string
	var analysis *ai.Analysis

	scanner := bufio.NewScanner(in)

	// Offer a surviving draft back before starting fresh.
	if pending, err := tracker.Pending(); err == nil && pending != nil {
		fmt.Fprintf(out, "A draft from %s exists. Restore it? [y/N] ", pending.SavedAt.Format("Jan 2 15:04"))
		if readLine(scanner) == "y" {
			snap, err := tracker.Restore()
			if err != nil {
				return fmt.Errorf("failed to restore draft: %w", err)
			}
			if text := snap.Form["notes"]; text != "" {
				notes = strings.Split(text, "\n")
			}
			analysis = snap.Analysis
			fmt.Fprintln(out, "Draft restored.")
		} else if err := tracker.Discard(); err != nil {
			return fmt.Errorf("failed to discard draft: %w", err)
		}
	}

	fmt.Fprintln(out, "Type notes line by line. Commands: :analyze, :save, :discard, :quit")

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()

		switch line {
		case ":save":
			tracker.Cancel()
			visit := &models.Visit{
				ClientID: clientID,
				UserID:   userID,
				Date:     time.Now().UTC(),
				Category: models.CategoryOutbound,
				RawNotes: strings.Join(notes, "\n"),
			}
			if analysis != nil {
				applyAnalysis(visit, analysis)
			}
			if err := app.Coord.CreateVisit(context.Background(), visit); err != nil {
				return fmt.Errorf("failed to save visit: %w", err)
			}
			if err := tracker.ClearOnSave(); err != nil {
				app.Log.Warn(fmt.Sprintf("failed to clear draft: %v", err))
			}
			fmt.Fprintf(out, "✓ Visit saved (ID: %s)\n", visit.ID)
			return nil

		case ":discard":
			tracker.Cancel()
			if err := tracker.Discard(); err != nil {
				return fmt.Errorf("failed to discard draft: %w", err)
			}
			fmt.Fprintln(out, "Draft discarded.")
			return nil

		case ":quit":
			// Flush whatever the debounce hasn't written yet, then leave
			// the draft in place for the next session.
			if err := tracker.Flush(); err != nil {
				app.Log.Warn(fmt.Sprintf("failed to flush draft: %v", err))
			}
			tracker.Cancel()
			fmt.Fprintln(out, "Draft kept. It will be offered on the next session.")
			return nil

		case ":analyze":
			result, err := sessionAnalyze(app, strings.Join(notes, "\n"), clientID)
			if errors.Is(err, ai.ErrNotConfigured) {
				fmt.Fprintln(out, "No AI provider configured; keeping raw notes.")
				continue
			}
			if err != nil {
				fmt.Fprintf(out, "Analysis failed: %v\n", err)
				continue
			}
			analysis = result
			tracker.Update(map[string]string{"notes": strings.Join(notes, "\n")}, analysis)
			fmt.Fprintf(out, "Summary: %s\nSentiment: %s\n", analysis.Summary, analysis.Sentiment)

		default:
			notes = append(notes, line)
			tracker.Update(map[string]string{"notes": strings.Join(notes, "\n")}, analysis)
		}
	}

	// EOF without :save behaves like :quit.
	if err := tracker.Flush(); err != nil {
		app.Log.Warn(fmt.Sprintf("failed to flush draft: %v", err))
	}
	tracker.Cancel()
	return nil
}

func sessionAnalyze(app *App, notes string, clientID uuid.UUID) (*ai.Analysis, error) {
	if strings.TrimSpace(notes) == "" {
		return nil, fmt.Errorf("nothing to analyze yet")
	}

	analyzer, err := ai.ForSettings(app.Settings)
	if err != nil {
		return nil, err
	}

	meta := ai.Context{Tone: "professional"}
	if ds, err := app.Store.Load(); err == nil {
		if client := ds.FindClient(clientID); client != nil {
			meta.SubjectName = client.Name
			meta.Industry = client.Industry
		}
	}
	return analyzer.AnalyzeText(context.Background(), notes, meta)
}

func readLine(scanner *bufio.Scanner) string {
	if scanner.Scan() {
		return strings.ToLower(strings.TrimSpace(scanner.Text()))
	}
	return ""
}
