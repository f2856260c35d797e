// Package config loads and validates the exchange server settings.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ErrMissingCredentials is returned when no exchange credentials are
// configured. The server refuses to start without them.
var ErrMissingCredentials = errors.New("exchange credentials not configured")

const envPrefix = "EXGATE"

// Settings holds the process-wide exchange configuration. Loaded once at
// startup and read-only afterwards.
type Settings struct {
	// Username and Password are the static exchange partner credentials.
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// UseZip reports whether the partner may send zipped payloads.
	UseZip bool `mapstructure:"use_zip"`

	// FileSizeLimit is the maximum accepted upload size in bytes.
	FileSizeLimit int64 `mapstructure:"file_size_limit"`

	// SessionDurationSeconds bounds the lifetime of an exchange session.
	SessionDurationSeconds int `mapstructure:"session_duration_seconds"`

	// SessionCookieName names the cookie carrying the session id.
	SessionCookieName string `mapstructure:"session_cookie_name"`

	// CSRFParamName names the query parameter (and response line key)
	// carrying the CSRF token.
	CSRFParamName string `mapstructure:"csrf_param_name"`

	// CSRFProtection enables CSRF token checking on privileged calls.
	CSRFProtection bool `mapstructure:"csrf_protection"`

	// DataDir is the directory for the session database and uploaded files.
	DataDir string `mapstructure:"data_dir"`

	// ListenPort is the HTTP listen port.
	ListenPort int `mapstructure:"listen_port"`
}

// File mirrors Settings with optional fields, so that a loaded value only
// overrides the default when it is actually present and non-empty.
type File struct {
	Username               string `mapstructure:"username"`
	Password               string `mapstructure:"password"`
	UseZip                 *bool  `mapstructure:"use_zip"`
	FileSizeLimit          int64  `mapstructure:"file_size_limit"`
	SessionDurationSeconds int    `mapstructure:"session_duration_seconds"`
	SessionCookieName      string `mapstructure:"session_cookie_name"`
	CSRFParamName          string `mapstructure:"csrf_param_name"`
	CSRFProtection         *bool  `mapstructure:"csrf_protection"`
	DataDir                string `mapstructure:"data_dir"`
	ListenPort             int    `mapstructure:"listen_port"`
}

// Defaults returns the built-in settings. Credentials have no default.
func Defaults() Settings {
	return Settings{
		UseZip:                 false,
		FileSizeLimit:          32 << 20,
		SessionDurationSeconds: 3600,
		SessionCookieName:      "exgate_sessid",
		CSRFParamName:          "sessid",
		CSRFProtection:         true,
		DataDir:                "./data",
		ListenPort:             8080,
	}
}

// Merge applies the loaded overrides onto base, field by field. String and
// numeric fields override only when non-empty / positive; boolean fields
// override only when present in the source.
func Merge(base Settings, over File) Settings {
	if over.Username != "" {
		base.Username = over.Username
	}
	if over.Password != "" {
		base.Password = over.Password
	}
	if over.UseZip != nil {
		base.UseZip = *over.UseZip
	}
	if over.FileSizeLimit > 0 {
		base.FileSizeLimit = over.FileSizeLimit
	}
	if over.SessionDurationSeconds > 0 {
		base.SessionDurationSeconds = over.SessionDurationSeconds
	}
	if over.SessionCookieName != "" {
		base.SessionCookieName = over.SessionCookieName
	}
	if over.CSRFParamName != "" {
		base.CSRFParamName = over.CSRFParamName
	}
	if over.CSRFProtection != nil {
		base.CSRFProtection = *over.CSRFProtection
	}
	if over.DataDir != "" {
		base.DataDir = over.DataDir
	}
	if over.ListenPort > 0 {
		base.ListenPort = over.ListenPort
	}
	return base
}

// Load reads settings from the given config file (optional when empty:
// default search paths apply), merges them over the defaults with EXGATE_*
// environment variables taking part, and validates the result.
func Load(configPath string) (*Settings, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// No config file: environment variables alone may carry the settings.
	}

	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range []string{
		"username", "password", "use_zip", "file_size_limit",
		"session_duration_seconds", "session_cookie_name",
		"csrf_param_name", "csrf_protection", "data_dir", "listen_port",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	var over File
	if err := v.Unmarshal(&over); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	settings := Merge(Defaults(), over)
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Validate reports fatal configuration problems.
func (s *Settings) Validate() error {
	if s.Username == "" || s.Password == "" {
		return ErrMissingCredentials
	}
	if s.SessionDurationSeconds <= 0 {
		return fmt.Errorf("session_duration_seconds must be positive, got %d", s.SessionDurationSeconds)
	}
	if s.FileSizeLimit <= 0 {
		return fmt.Errorf("file_size_limit must be positive, got %d", s.FileSizeLimit)
	}
	return nil
}
