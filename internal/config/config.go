// Package config loads snapsync settings from an INI file, with environment
// variables taking precedence over file values.
//
// Example config.ini:
//
//	[teamsnap]
//	client_id     = ...
//	client_secret = ...
//	callback_url  = https://localhost/callback
//	access_token  = ...
//	user_id       = 123
//	team_id       = 456
//	sync_maybe    = false
//
//	[sync]
//	destination  = google
//	match        = overlap
//	horizon_days = 30
//
//	[google]
//	calendar_id = primary
//
//	[caldav]
//	calendar_name  = Games
//	attendee_email = me@example.com
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/ini.v1"
)

// DefaultPath is used when no --config flag is given.
const DefaultPath = "./config.ini"

// Destination names.
const (
	DestinationGoogle = "google"
	DestinationCalDAV = "caldav"
)

// TeamSnap holds the source account settings.
type TeamSnap struct {
	ClientID     string        `ini:"client_id" env:"TEAMSNAP_CLIENT_ID"`
	ClientSecret string        `ini:"client_secret" env:"TEAMSNAP_CLIENT_SECRET"`
	CallbackURL  string        `ini:"callback_url" env:"TEAMSNAP_CALLBACK_URL"`
	AccessToken  string        `ini:"access_token" env:"TEAMSNAP_ACCESS_TOKEN"`
	UserID       string        `ini:"user_id" env:"TEAMSNAP_USER_ID"`
	TeamID       string        `ini:"team_id" env:"TEAMSNAP_TEAM_ID"`
	SyncMaybe    bool          `ini:"sync_maybe" env:"TEAMSNAP_SYNC_MAYBE"`
	APIRoot      string        `ini:"api_root" env:"TEAMSNAP_API_ROOT"`
	Timeout      time.Duration `ini:"timeout" env:"TEAMSNAP_TIMEOUT"`
}

// Sync holds matching and destination selection.
type Sync struct {
	Destination string `ini:"destination" env:"SYNC_DESTINATION"`
	Match       string `ini:"match" env:"SYNC_MATCH"`
	HorizonDays int    `ini:"horizon_days" env:"SYNC_HORIZON_DAYS"`
}

// Google holds the Google Calendar destination settings.
type Google struct {
	ClientID     string `ini:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `ini:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	CalendarID   string `ini:"calendar_id" env:"GOOGLE_CALENDAR_ID"`
	TokenFile    string `ini:"token_file" env:"GOOGLE_TOKEN_FILE"`
}

// CalDAV holds the CalDAV destination settings. iCloud is the default server.
type CalDAV struct {
	Endpoint      string `ini:"endpoint" env:"CALDAV_ENDPOINT"`
	Username      string `ini:"username" env:"CALDAV_USERNAME"`
	Password      string `ini:"password" env:"CALDAV_PASSWORD"`
	CalendarName  string `ini:"calendar_name" env:"CALDAV_CALENDAR_NAME"`
	AttendeeEmail string `ini:"attendee_email" env:"CALDAV_ATTENDEE_EMAIL"`
}

// Config is the full application configuration.
type Config struct {
	Path     string
	TeamSnap TeamSnap
	Sync     Sync
	Google   Google
	CalDAV   CalDAV
}

// MissingKeysError lists required settings that are empty.
type MissingKeysError struct {
	Keys []string
}

func (e *MissingKeysError) Error() string {
	return "missing config keys: " + strings.Join(e.Keys, ", ")
}

// Default returns the configuration used for keys absent from the file.
func Default() *Config {
	return &Config{
		Path: DefaultPath,
		Sync: Sync{
			Destination: DestinationGoogle,
			Match:       "overlap",
			HorizonDays: 30,
		},
		Google: Google{
			CalendarID: "primary",
			TokenFile:  "token-google.json",
		},
		CalDAV: CalDAV{
			Endpoint: "https://caldav.icloud.com/",
		},
	}
}

// Load reads path and then applies environment overrides. A missing file is
// not an error: every value may come from the environment.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	cfg := Default()
	cfg.Path = path

	f, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	sections := map[string]any{
		"teamsnap": &cfg.TeamSnap,
		"sync":     &cfg.Sync,
		"google":   &cfg.Google,
		"caldav":   &cfg.CalDAV,
	}
	for name, target := range sections {
		if err := f.Section(name).MapTo(target); err != nil {
			return nil, fmt.Errorf("failed to read [%s] from %s: %w", name, path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func loadFile(path string) (*ini.File, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return ini.Empty(), nil
	}
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return f, nil
}

// ValidateSync checks what a sync run needs.
func (c *Config) ValidateSync() error {
	missing := c.missing(map[string]string{
		"teamsnap.access_token": c.TeamSnap.AccessToken,
		"teamsnap.user_id":      c.TeamSnap.UserID,
		"teamsnap.team_id":      c.TeamSnap.TeamID,
	})

	switch c.Sync.Destination {
	case DestinationGoogle:
		missing = append(missing, c.missing(map[string]string{
			"google.calendar_id": c.Google.CalendarID,
			"google.token_file":  c.Google.TokenFile,
		})...)
	case DestinationCalDAV:
		missing = append(missing, c.missing(map[string]string{
			"caldav.endpoint":       c.CalDAV.Endpoint,
			"caldav.username":       c.CalDAV.Username,
			"caldav.password":       c.CalDAV.Password,
			"caldav.calendar_name":  c.CalDAV.CalendarName,
			"caldav.attendee_email": c.CalDAV.AttendeeEmail,
		})...)
	default:
		return fmt.Errorf("unknown destination %q (want %q or %q)", c.Sync.Destination, DestinationGoogle, DestinationCalDAV)
	}

	if len(missing) > 0 {
		return &MissingKeysError{Keys: missing}
	}
	return nil
}

// ValidateTeamSnapAuth checks what the TeamSnap authorization flow needs.
func (c *Config) ValidateTeamSnapAuth() error {
	return c.require(map[string]string{
		"teamsnap.client_id":     c.TeamSnap.ClientID,
		"teamsnap.client_secret": c.TeamSnap.ClientSecret,
		"teamsnap.callback_url":  c.TeamSnap.CallbackURL,
	})
}

// ValidateDiscover checks what ID discovery needs.
func (c *Config) ValidateDiscover() error {
	return c.require(map[string]string{
		"teamsnap.access_token": c.TeamSnap.AccessToken,
	})
}

func (c *Config) require(keys map[string]string) error {
	if missing := c.missing(keys); len(missing) > 0 {
		return &MissingKeysError{Keys: missing}
	}
	return nil
}

func (c *Config) missing(keys map[string]string) []string {
	var out []string
	for k, v := range keys {
		if strings.TrimSpace(v) == "" {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

// SetValues writes key/value pairs into section of the INI file at path,
// creating the file if needed. Other content is preserved. The file is
// replaced atomically and kept at 0600 since it holds credentials.
func SetValues(path, section string, values map[string]string) error {
	f, err := loadFile(path)
	if err != nil {
		return err
	}
	sec := f.Section(section)
	for k, v := range values {
		sec.Key(k).SetValue(v)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".snapsync-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
