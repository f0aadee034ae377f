// ABOUTME: Settings CLI commands
// ABOUTME: Show and change storage mode, AI provider, and relay config
package cli

import (
	"flag"
	"fmt"

	"github.com/harperreed/visitlog/models"
)

// ShowSettingsCommand prints the current settings with secrets masked
func ShowSettingsCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	_ = fs.Parse(args)

	ds, err := app.Store.Load()
	if err != nil {
		return err
	}
	s := ds.Settings

	fmt.Println("Settings:")
	fmt.Printf("  Storage mode: %s\n", orDash(s.StorageMode))
	if s.RemoteURL != "" {
		fmt.Printf("  Remote URL: %s\n", s.RemoteURL)
	}
	if s.MirrorPath != "" {
		fmt.Printf("  Mirror path: %s\n", s.MirrorPath)
	}
	fmt.Printf("  AI provider: %s\n", orDash(s.AIProvider))
	fmt.Printf("  Gemini key: %s\n", maskSecret(s.GeminiKey))
	fmt.Printf("  DeepSeek key: %s\n", maskSecret(s.DeepSeekKey))
	if s.SpeechURL != "" {
		fmt.Printf("  Speech endpoint: %s\n", s.SpeechURL)
	}
	if s.SMTPHost != "" {
		fmt.Printf("  SMTP relay: %s:%d\n", s.SMTPHost, s.SMTPPort)
		fmt.Printf("  From: %s <%s>\n", s.FromName, s.FromEmail)
	}

	return nil
}

func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	return "********"
}

// SetSettingsCommand changes settings. Only passed flags are changed;
// the result is saved wholesale.
func SetSettingsCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	storageMode := fs.String("storage-mode", "", "Storage mode (local, rest, sqlite)")
	remoteURL := fs.String("remote-url", "", "Remote table API base URL")
	remoteKey := fs.String("remote-key", "", "Remote table API key")
	mirrorPath := fs.String("mirror-path", "", "SQLite mirror file path")
	aiProvider := fs.String("ai-provider", "", "AI provider (gemini, deepseek, none)")
	geminiKey := fs.String("gemini-key", "", "Gemini API key")
	deepseekKey := fs.String("deepseek-key", "", "DeepSeek API key")
	speechURL := fs.String("speech-url", "", "Speech-to-text endpoint")
	speechKey := fs.String("speech-key", "", "Speech-to-text API key")
	smtpHost := fs.String("smtp-host", "", "SMTP relay host")
	smtpPort := fs.Int("smtp-port", 0, "SMTP relay port")
	smtpUsername := fs.String("smtp-username", "", "SMTP username")
	smtpPassword := fs.String("smtp-password", "", "SMTP password")
	fromEmail := fs.String("from-email", "", "From address for follow-ups")
	fromName := fs.String("from-name", "", "From name for follow-ups")
	_ = fs.Parse(args)

	if *storageMode != "" {
		switch *storageMode {
		case models.StorageLocal, models.StorageRest, models.StorageSQLite:
		default:
			return fmt.Errorf("--storage-mode must be local, rest, or sqlite")
		}
	}
	if *aiProvider != "" {
		switch *aiProvider {
		case models.ProviderGemini, models.ProviderDeepSeek, models.ProviderNone:
		default:
			return fmt.Errorf("--ai-provider must be gemini, deepseek, or none")
		}
	}

	ds, err := app.Store.Load()
	if err != nil {
		return err
	}

	s := ds.Settings
	apply := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	apply(&s.StorageMode, *storageMode)
	apply(&s.RemoteURL, *remoteURL)
	apply(&s.RemoteKey, *remoteKey)
	apply(&s.MirrorPath, *mirrorPath)
	apply(&s.AIProvider, *aiProvider)
	apply(&s.GeminiKey, *geminiKey)
	apply(&s.DeepSeekKey, *deepseekKey)
	apply(&s.SpeechURL, *speechURL)
	apply(&s.SpeechKey, *speechKey)
	apply(&s.SMTPHost, *smtpHost)
	apply(&s.SMTPUsername, *smtpUsername)
	apply(&s.SMTPPassword, *smtpPassword)
	apply(&s.FromEmail, *fromEmail)
	apply(&s.FromName, *fromName)
	if *smtpPort != 0 {
		s.SMTPPort = *smtpPort
	}

	ds.Settings = s
	if err := app.Store.Save(ds); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	fmt.Println("✓ Settings updated")
	return nil
}
