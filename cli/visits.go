// ABOUTME: Visit CLI commands
// ABOUTME: Recording, listing, attaching, and AI analysis of client visits
package cli

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/harperreed/visitlog/ai"
	"github.com/harperreed/visitlog/mailer"
	"github.com/harperreed/visitlog/models"
	"github.com/harperreed/visitlog/speech"
)

// AddVisitCommand records a new visit
func AddVisitCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("add-visit", flag.ExitOnError)
	clientRef := fs.String("client", "", "Client ID (required)")
	userRef := fs.String("user", "", "User ID (defaults to the only user when unambiguous)")
	notes := fs.String("notes", "", "Raw visit notes")
	category := fs.String("category", models.CategoryOutbound, "Category (outbound, inbound)")
	outcome := fs.String("outcome", "", "Outcome (positive, neutral, negative, pending)")
	date := fs.String("date", "", "Visit date (YYYY-MM-DD, default today)")
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

	visitDate := time.Now().UTC()
	if *date != "" {
		visitDate, err = time.Parse("2006-01-02", *date)
		if err != nil {
			return fmt.Errorf("failed to parse date %q: %w", *date, err)
		}
	}

	visit := &models.Visit{
		ClientID: clientID,
		UserID:   userID,
		Date:     visitDate,
		Category: *category,
		RawNotes: *notes,
		Outcome:  *outcome,
	}
	if visit.Outcome != "" {
		visit.SentimentScore = models.OutcomeScore(visit.Outcome)
	}

	if err := app.Coord.CreateVisit(context.Background(), visit); err != nil {
		return fmt.Errorf("failed to create visit: %w", err)
	}

	fmt.Printf("✓ Visit recorded: %s on %s (ID: %s)\n",
		visit.ClientName, visit.Date.Format("2006-01-02"), visit.ID)
	return nil
}

func resolveVisitUser(ds *models.Dataset, userRef string) (uuid.UUID, error) {
	if userRef != "" {
		return resolveID(userRef, userIDs(ds))
	}
	if len(ds.Users) == 1 {
		return ds.Users[0].ID, nil
	}
	return uuid.Nil, fmt.Errorf("--user is required when more than one user exists")
}

// ListVisitsCommand lists visits, newest first
func ListVisitsCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("list-visits", flag.ExitOnError)
	clientRef := fs.String("client", "", "Filter by client ID")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	ds, err := app.Store.Load()
	if err != nil {
		return err
	}

	var filterID uuid.UUID
	if *clientRef != "" {
		filterID, err = resolveID(*clientRef, clientIDs(ds))
		if err != nil {
			return err
		}
	}

	var visits []models.Visit
	for _, v := range ds.Visits {
		if filterID != uuid.Nil && v.ClientID != filterID {
			continue
		}
		visits = append(visits, v)
	}
	sort.Slice(visits, func(i, j int) bool { return visits[i].Date.After(visits[j].Date) })
	if len(visits) > *limit {
		visits = visits[:*limit]
	}

	if len(visits) == 0 {
		fmt.Println("No visits found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DATE\tCLIENT\tCATEGORY\tOUTCOME\tID")
	_, _ = fmt.Fprintln(w, "----\t------\t--------\t-------\t--")

	for _, v := range visits {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			v.Date.Format("2006-01-02"), v.ClientName, v.Category, v.Outcome, v.ID.String()[:8])
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %d visit(s)\n", len(visits))
	return nil
}

// ShowVisitCommand prints one visit in full
func ShowVisitCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("show-visit", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("visit ID is required")
	}

	ds, err := app.Store.Load()
	if err != nil {
		return err
	}

	id, err := resolveID(fs.Arg(0), visitIDs(ds))
	if err != nil {
		return err
	}
	visit := ds.FindVisit(id)
	if visit == nil {
		return fmt.Errorf("visit %s not found", id)
	}

	fmt.Printf("Visit: %s on %s (ID: %s)\n", visit.ClientName, visit.Date.Format("2006-01-02"), visit.ID)
	fmt.Printf("  Category: %s\n", visit.Category)
	fmt.Printf("  Outcome: %s (score %.1f)\n", orDash(visit.Outcome), visit.SentimentScore)
	if visit.Summary != "" {
		fmt.Printf("  Summary: %s\n", visit.Summary)
	}
	if visit.RawNotes != "" {
		fmt.Printf("  Notes: %s\n", visit.RawNotes)
	}
	for _, item := range visit.ActionItems {
		fmt.Printf("  - [ ] %s\n", item)
	}
	for _, att := range visit.Attachments {
		fmt.Printf("  Attachment: %s (%s, ID: %s)\n", att.Name, att.Kind, att.ID)
	}
	for _, cf := range visit.CustomFields {
		fmt.Printf("  %s: %s\n", models.ResolveFieldLabel(ds.FieldDefinitions, cf.FieldID), cf.Value)
	}
	if visit.FollowUpEmail != "" {
		fmt.Printf("\n  Follow-up draft:\n%s\n", visit.FollowUpEmail)
	}

	return nil
}

// UpdateVisitCommand updates an existing visit. Flags must come before
// the visit ID.
func UpdateVisitCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("update-visit", flag.ExitOnError)
	notes := fs.String("notes", "", "Raw visit notes")
	summary := fs.String("summary", "", "Visit summary")
	category := fs.String("category", "", "Category (outbound, inbound)")
	outcome := fs.String("outcome", "", "Outcome (positive, neutral, negative, pending)")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("visit ID is required")
	}

	ds, err := app.Store.Load()
	if err != nil {
		return err
	}

	id, err := resolveID(fs.Arg(0), visitIDs(ds))
	if err != nil {
		return err
	}
	existing := ds.FindVisit(id)
	if existing == nil {
		return fmt.Errorf("visit %s not found", id)
	}

	updated := *existing
	if *notes != "" {
		updated.RawNotes = *notes
	}
	if *summary != "" {
		updated.Summary = *summary
	}
	if *category != "" {
		updated.Category = *category
	}
	if *outcome != "" {
		updated.Outcome = *outcome
		updated.SentimentScore = models.OutcomeScore(*outcome)
	}

	if err := app.Coord.UpdateVisit(context.Background(), &updated); err != nil {
		return fmt.Errorf("failed to update visit: %w", err)
	}

	fmt.Printf("✓ Visit updated (ID: %s)\n", updated.ID)
	return nil
}

// DeleteVisitCommand deletes a visit
func DeleteVisitCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("delete-visit", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("visit ID is required")
	}

	ds, err := app.Store.Load()
	if err != nil {
		return err
	}

	id, err := resolveID(fs.Arg(0), visitIDs(ds))
	if err != nil {
		return err
	}

	if err := app.Coord.DeleteVisit(context.Background(), id); err != nil {
		return fmt.Errorf("failed to delete visit: %w", err)
	}

	fmt.Printf("✓ Visit deleted (ID: %s)\n", id)
	return nil
}

// AttachVisitCommand attaches a file or URL to a visit. File contents are
// inlined as a data URI; URLs are stored as-is.
func AttachVisitCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("attach-visit", flag.ExitOnError)
	file := fs.String("file", "", "Path of a file to inline")
	url := fs.String("url", "", "URL to reference")
	name := fs.String("name", "", "Display name (default: file basename or URL)")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("visit ID is required")
	}
	if (*file == "") == (*url == "") {
		return fmt.Errorf("exactly one of --file or --url is required")
	}

	ds, err := app.Store.Load()
	if err != nil {
		return err
	}

	id, err := resolveID(fs.Arg(0), visitIDs(ds))
	if err != nil {
		return err
	}
	existing := ds.FindVisit(id)
	if existing == nil {
		return fmt.Errorf("visit %s not found", id)
	}

	att := models.Attachment{
		ID: ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String(),
	}
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			return fmt.Errorf("failed to read attachment: %w", err)
		}
		mimeType := mime.TypeByExtension(filepath.Ext(*file))
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		att.Name = filepath.Base(*file)
		att.Kind = attachmentKind(mimeType)
		att.Ref = fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
	} else {
		att.Name = *url
		att.Kind = models.AttachmentOther
		att.Ref = *url
	}
	if *name != "" {
		att.Name = *name
	}

	updated := *existing
	updated.Attachments = append(append([]models.Attachment{}, existing.Attachments...), att)

	if err := app.Coord.UpdateVisit(context.Background(), &updated); err != nil {
		return fmt.Errorf("failed to attach to visit: %w", err)
	}

	fmt.Printf("✓ Attached %s (ID: %s)\n", att.Name, att.ID)
	return nil
}

func attachmentKind(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return models.AttachmentImage
	case mimeType == "application/pdf", strings.HasPrefix(mimeType, "text/"):
		return models.AttachmentDocument
	default:
		return models.AttachmentOther
	}
}

// AnalyzeVisitCommand runs AI analysis on a visit's notes or an audio
// recording and writes the structured result back onto the visit.
func AnalyzeVisitCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("analyze-visit", flag.ExitOnError)
	audio := fs.String("audio", "", "Path of an audio recording to analyze instead of notes")
	tone := fs.String("tone", "professional", "Tone for the follow-up draft")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("visit ID is required")
	}

	ds, err := app.Store.Load()
	if err != nil {
		return err
	}

	id, err := resolveID(fs.Arg(0), visitIDs(ds))
	if err != nil {
		return err
	}
	visit := ds.FindVisit(id)
	if visit == nil {
		return fmt.Errorf("visit %s not found", id)
	}

	meta := ai.Context{SubjectName: visit.ClientName, Tone: *tone}
	if client := ds.FindClient(visit.ClientID); client != nil {
		meta.Industry = client.Industry
	}

	analysis, err := analyzeVisit(app, visit, *audio, meta)
	if errors.Is(err, ai.ErrNotConfigured) {
		fmt.Println("No AI provider configured. Fill in the summary and outcome by hand:")
		fmt.Printf("  visitlog visit update --summary \"...\" --outcome positive %s\n", visit.ID.String()[:8])
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to analyze visit: %w", err)
	}

	updated := *visit
	applyAnalysis(&updated, analysis)

	if err := app.Coord.UpdateVisit(context.Background(), &updated); err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	fmt.Printf("✓ Visit analyzed (ID: %s)\n", updated.ID)
	fmt.Printf("  Summary: %s\n", analysis.Summary)
	fmt.Printf("  Sentiment: %s\n", analysis.Sentiment)
	for _, item := range analysis.ActionItems {
		fmt.Printf("  - [ ] %s\n", item)
	}
	return nil
}

// analyzeVisit picks the analysis path: native audio when the provider
// supports it, transcribe-then-analyze otherwise, plain text for notes.
func analyzeVisit(app *App, visit *models.Visit, audioPath string, meta ai.Context) (*ai.Analysis, error) {
	analyzer, err := ai.ForSettings(app.Settings)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()

	if audioPath == "" {
		if visit.RawNotes == "" {
			return nil, fmt.Errorf("visit has no notes to analyze")
		}
		return analyzer.AnalyzeText(ctx, visit.RawNotes, meta)
	}

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(audioPath))
	if mimeType == "" {
		mimeType = "audio/wav"
	}

	if analyzer.SupportsAudio() {
		return analyzer.AnalyzeAudio(ctx, audio, mimeType, meta)
	}

	if app.Settings.SpeechURL == "" {
		return nil, fmt.Errorf("%w: provider has no audio mode and no speech endpoint is set", ai.ErrNotConfigured)
	}
	transcriber := speech.NewHTTPTranscriber(app.Settings.SpeechURL, app.Settings.SpeechKey)
	text, err := transcriber.Transcribe(ctx, audio, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to transcribe audio: %w", err)
	}

	analysis, err := analyzer.AnalyzeText(ctx, text, meta)
	if err != nil {
		return nil, err
	}
	analysis.Transcription = text
	return analysis, nil
}

// applyAnalysis writes analysis results onto a visit. Transcriptions
// replace the raw notes so the text that was analyzed is the text kept.
func applyAnalysis(visit *models.Visit, analysis *ai.Analysis) {
	visit.Summary = analysis.Summary
	visit.Outcome = analysis.Sentiment
	visit.SentimentScore = analysis.Score()
	visit.ActionItems = analysis.ActionItems
	if analysis.FollowUpEmail != "" {
		visit.FollowUpEmail = analysis.FollowUpEmail
	}
	if analysis.Transcription != "" {
		visit.RawNotes = analysis.Transcription
	}
}

// EmailVisitCommand sends a visit's follow-up draft to the client
func EmailVisitCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("email-visit", flag.ExitOnError)
	to := fs.String("to", "", "Recipient (default: the client's email)")
	subject := fs.String("subject", "", "Subject (default: Following up on our visit)")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("visit ID is required")
	}

	ds, err := app.Store.Load()
	if err != nil {
		return err
	}

	id, err := resolveID(fs.Arg(0), visitIDs(ds))
	if err != nil {
		return err
	}
	visit := ds.FindVisit(id)
	if visit == nil {
		return fmt.Errorf("visit %s not found", id)
	}
	if visit.FollowUpEmail == "" {
		return fmt.Errorf("visit has no follow-up draft; run analyze first")
	}

	toEmail := *to
	toName := ""
	if client := ds.FindClient(visit.ClientID); client != nil {
		toName = client.Name
		if toEmail == "" {
			toEmail = client.Email
		}
	}
	if toEmail == "" {
		return fmt.Errorf("no recipient: client has no email, pass --to")
	}

	subj := *subject
	if subj == "" {
		subj = fmt.Sprintf("Following up on our visit (%s)", visit.Date.Format("2006-01-02"))
	}

	m := mailer.ForSettings(app.Settings)
	if err := m.SendFollowUp(toEmail, toName, subj, visit.FollowUpEmail); err != nil {
		return fmt.Errorf("failed to send follow-up: %w", err)
	}

	fmt.Printf("✓ Follow-up sent to %s\n", toEmail)
	return nil
}
