package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Defaults applied by WithDefaults when the corresponding field is unset.
const (
	DefaultBackendURL     = "http://localhost:7861"
	DefaultAddr           = ":8080"
	DefaultSlashCommand   = "/art"
	DefaultImageCount     = 4
	DefaultCellSize       = 256
	DefaultTimeoutSeconds = 60
)

// Config holds process-wide settings. It is built once at startup and passed
// by value; nothing mutates it afterwards.
type Config struct {
	SlackAppToken string `json:"slack_app_token" yaml:"slack_app_token" toml:"slack_app_token"`
	SlackBotToken string `json:"slack_bot_token" yaml:"slack_bot_token" toml:"slack_bot_token"`
	SlashCommand  string `json:"slash_command" yaml:"slash_command" toml:"slash_command"`
	// NotifyErrors is nil when unset so a later layer can turn it off.
	NotifyErrors  *bool  `json:"notify_errors" yaml:"notify_errors" toml:"notify_errors"`

	BackendURL            string `json:"backend_url" yaml:"backend_url" toml:"backend_url"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds" yaml:"request_timeout_seconds" toml:"request_timeout_seconds"`
	ImageCount            int    `json:"image_count" yaml:"image_count" toml:"image_count"`
	CellSize              int    `json:"cell_size" yaml:"cell_size" toml:"cell_size"`

	Addr        string   `json:"addr" yaml:"addr" toml:"addr"`
	CORSEnabled *bool    `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	LogLevel    string   `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// ErrorNotices reports whether failures are posted back to the channel.
func (c Config) ErrorNotices() bool { return c.NotifyErrors != nil && *c.NotifyErrors }

// CORS reports whether the operations API sends CORS headers.
func (c Config) CORS() bool { return c.CORSEnabled != nil && *c.CORSEnabled }

// Bool returns a pointer to v, for the optional switches of Config.
func Bool(v bool) *bool { return &v }

// RequestTimeout is the hard ceiling on a single backend call.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// WithDefaults returns a copy with zero fields replaced by package defaults.
func (c Config) WithDefaults() Config {
	if c.BackendURL == "" {
		c.BackendURL = DefaultBackendURL
	}
	c.BackendURL = strings.TrimRight(c.BackendURL, "/")
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.SlashCommand == "" {
		c.SlashCommand = DefaultSlashCommand
	}
	if c.ImageCount <= 0 {
		c.ImageCount = DefaultImageCount
	}
	if c.CellSize <= 0 {
		c.CellSize = DefaultCellSize
	}
	if c.RequestTimeoutSeconds <= 0 {
		c.RequestTimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return c
}

// Merge overlays non-zero fields of o onto c.
func (c Config) Merge(o Config) Config {
	if o.SlackAppToken != "" {
		c.SlackAppToken = o.SlackAppToken
	}
	if o.SlackBotToken != "" {
		c.SlackBotToken = o.SlackBotToken
	}
	if o.SlashCommand != "" {
		c.SlashCommand = o.SlashCommand
	}
	if o.NotifyErrors != nil {
		c.NotifyErrors = Bool(*o.NotifyErrors)
	}
	if o.BackendURL != "" {
		c.BackendURL = o.BackendURL
	}
	if o.RequestTimeoutSeconds > 0 {
		c.RequestTimeoutSeconds = o.RequestTimeoutSeconds
	}
	if o.ImageCount > 0 {
		c.ImageCount = o.ImageCount
	}
	if o.CellSize > 0 {
		c.CellSize = o.CellSize
	}
	if o.Addr != "" {
		c.Addr = o.Addr
	}
	if o.CORSEnabled != nil {
		c.CORSEnabled = Bool(*o.CORSEnabled)
	}
	if len(o.CORSOrigins) > 0 {
		c.CORSOrigins = append([]string(nil), o.CORSOrigins...)
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	return c
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// FromEnv builds a partial Config from environment variables. Unset
// variables leave the field zero so the result can be merged.
func FromEnv(lookup LookupFunc) (Config, error) {
	var c Config
	str := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}
	c.SlackAppToken = str("SLACK_APP_TOKEN")
	c.SlackBotToken = str("SLACK_BOT_TOKEN")
	c.BackendURL = str("BACKEND_URL")
	c.Addr = str("ARTBOT_ADDR")
	c.SlashCommand = str("ARTBOT_SLASH_COMMAND")
	c.LogLevel = str("ARTBOT_LOG_LEVEL")

	ints := []struct {
		key string
		dst *int
	}{
		{"ARTBOT_IMAGE_COUNT", &c.ImageCount},
		{"ARTBOT_CELL_SIZE", &c.CellSize},
		{"ARTBOT_REQUEST_TIMEOUT_SECONDS", &c.RequestTimeoutSeconds},
	}
	for _, e := range ints {
		v := str(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", e.key, err)
		}
		*e.dst = n
	}
	if v := str("ARTBOT_NOTIFY_ERRORS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("ARTBOT_NOTIFY_ERRORS: %w", err)
		}
		c.NotifyErrors = Bool(b)
	}
	return c, nil
}

// Validate checks the settings needed to serve. Slack credentials are only
// required when requireSlack is set; the one-shot generate command runs
// without them.
func (c Config) Validate(requireSlack bool) error {
	if requireSlack {
		if c.SlackAppToken == "" {
			return &MissingCredentialError{Name: "SLACK_APP_TOKEN"}
		}
		if c.SlackBotToken == "" {
			return &MissingCredentialError{Name: "SLACK_BOT_TOKEN"}
		}
	}
	if !strings.HasPrefix(c.BackendURL, "http://") && !strings.HasPrefix(c.BackendURL, "https://") {
		return fmt.Errorf("backend url must be http(s): %q", c.BackendURL)
	}
	if c.ImageCount <= 0 {
		return fmt.Errorf("image count must be positive, got %d", c.ImageCount)
	}
	if c.CellSize <= 0 {
		return fmt.Errorf("cell size must be positive, got %d", c.CellSize)
	}
	return nil
}

// MissingCredentialError is returned by Validate when a required secret is empty.
type MissingCredentialError struct{ Name string }

func (e *MissingCredentialError) Error() string { return "missing required credential: " + e.Name }

// IsMissingCredential reports whether err is a MissingCredentialError.
func IsMissingCredential(err error) bool {
	_, ok := err.(*MissingCredentialError)
	return ok
}
