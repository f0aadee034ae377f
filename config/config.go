// ABOUTME: Locates the application data directory and loads env secrets
// ABOUTME: Env vars override settings so keys stay out of the cache file
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"

	"github.com/harperreed/visitlog/models"
)

const (
	// AppName is the application name used for the XDG data directory.
	AppName = "visitlog"

	// CacheDirName is where the local cache database lives inside the
	// data directory.
	CacheDirName = "cache"
)

// DataDir returns the application data directory, creating it if needed.
// VISITLOG_DATA_DIR overrides the XDG default.
func DataDir() (string, error) {
	dir := os.Getenv("VISITLOG_DATA_DIR")
	if dir == "" {
		dir = filepath.Join(xdg.DataHome, AppName)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

// StorePath returns the local cache database path.
func StorePath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, CacheDirName), nil
}

// LoadEnv loads a .env file from the working directory if one exists.
// A missing file is not an error.
func LoadEnv() {
	_ = godotenv.Load()
}

// ApplyEnvOverrides lets env vars override stored settings, so API keys
// and relay credentials never have to live in the cache file.
func ApplyEnvOverrides(s *models.Settings) {
	overrideString(&s.RemoteURL, "VISITLOG_REMOTE_URL")
	overrideString(&s.RemoteKey, "VISITLOG_REMOTE_KEY")
	overrideString(&s.GeminiKey, "VISITLOG_GEMINI_KEY")
	overrideString(&s.DeepSeekKey, "VISITLOG_DEEPSEEK_KEY")
	overrideString(&s.SpeechURL, "VISITLOG_SPEECH_URL")
	overrideString(&s.SpeechKey, "VISITLOG_SPEECH_KEY")
	overrideString(&s.SMTPHost, "VISITLOG_SMTP_HOST")
	overrideString(&s.SMTPUsername, "VISITLOG_SMTP_USERNAME")
	overrideString(&s.SMTPPassword, "VISITLOG_SMTP_PASSWORD")
	overrideString(&s.FromEmail, "VISITLOG_FROM_EMAIL")
	overrideString(&s.FromName, "VISITLOG_FROM_NAME")

	if v := os.Getenv("VISITLOG_SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			s.SMTPPort = port
		}
	}
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
