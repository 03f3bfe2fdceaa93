// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/docvault/internal/logging"
	"github.com/jeranaias/docvault/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete docvault configuration.
type Config struct {
	Data     DataConfig     `toml:"data" json:"data"`
	Security SecurityConfig `toml:"security" json:"security"`
	Logging  LoggingConfig  `toml:"logging" json:"logging"`
	UI       UIConfig       `toml:"ui" json:"ui"`
}

// DataConfig locates the stores. Relative file names resolve against Dir.
type DataConfig struct {
	Dir             string `toml:"dir" json:"dir"`
	CredentialsFile string `toml:"credentials_file" json:"credentials_file"`
	ProfilesFile    string `toml:"profiles_file" json:"profiles_file"`
	DocumentsDir    string `toml:"documents_dir" json:"documents_dir"`
}

// SecurityConfig holds lockout and password policy.
type SecurityConfig struct {
	MaxLoginAttempts    int `toml:"max_login_attempts" json:"max_login_attempts"`
	LockDurationMinutes int `toml:"lock_duration_minutes" json:"lock_duration_minutes"`
	MinPasswordLength   int `toml:"min_password_length" json:"min_password_length"`

	// AttemptsPerSecond throttles logins per user. 0 disables throttling.
	AttemptsPerSecond float64 `toml:"attempts_per_second" json:"attempts_per_second"`
	AttemptBurst      int     `toml:"attempt_burst" json:"attempt_burst"`
}

// LoggingConfig controls the stderr trace log.
type LoggingConfig struct {
	Level  string `toml:"level" json:"level"`
	Format string `toml:"format" json:"format"`
}

// UIConfig controls the command line front end.
type UIConfig struct {
	// HistoryFile is the shell history, relative to the config directory.
	HistoryFile string `toml:"history_file" json:"history_file"`

	// Color is auto, always or never.
	Color string `toml:"color" json:"color"`
}

// Default returns a configuration with all defaults set.
func Default() *Config {
	dataDir := "data"
	if dir, err := ConfigDir(); err == nil {
		dataDir = filepath.Join(dir, "data")
	}

	return &Config{
		Data: DataConfig{
			Dir:             dataDir,
			CredentialsFile: "credentials.json",
			ProfilesFile:    "user_data.json",
			DocumentsDir:    "files",
		},
		Security: SecurityConfig{
			MaxLoginAttempts:    5,
			LockDurationMinutes: 15,
			MinPasswordLength:   6,
			AttemptsPerSecond:   0,
			AttemptBurst:        5,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: logging.FormatText,
		},
		UI: UIConfig{
			HistoryFile: "history",
			Color:       "auto",
		},
	}
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// CredentialsPath is the credentials store file.
func (c *Config) CredentialsPath() string {
	return c.resolve(c.Data.CredentialsFile)
}

// ProfilesPath is the user profile store file.
func (c *Config) ProfilesPath() string {
	return c.resolve(c.Data.ProfilesFile)
}

// DocumentsPath is the document directory.
func (c *Config) DocumentsPath() string {
	return c.resolve(c.Data.DocumentsDir)
}

// LockDuration is the lock length as a duration.
func (c *Config) LockDuration() time.Duration {
	return time.Duration(c.Security.LockDurationMinutes) * time.Minute
}

// HistoryPath is the shell history file, or "" when history is disabled.
func (c *Config) HistoryPath() string {
	if c.UI.HistoryFile == "" || filepath.IsAbs(c.UI.HistoryFile) {
		return c.UI.HistoryFile
	}
	dir, err := ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, c.UI.HistoryFile)
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Data.Dir, name)
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the docvault configuration directory. DOCVAULT_HOME
// overrides the default ~/.docvault.
func ConfigDir() (string, error) {
	if dir := os.Getenv("DOCVAULT_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".docvault"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads config.toml, else config.json, from ConfigDir, falling back to
// defaults when neither exists. Environment overrides are applied last.
func Load() (*Config, error) {
	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := pathFn()
		if err != nil {
			break
		}
		if _, err := os.Stat(path); err == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	return finish(cfg)
}

// LoadFromPath loads configuration from a specific file. Files ending in
// .json are read as JSON, anything else as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}
	return finish(cfg)
}

// LoadTOML decodes a TOML file into cfg and fills missing values.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	fillDefaults(cfg)
	return nil
}

// LoadJSON decodes a JSON file into cfg and fills missing values.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	// Data
	if cfg.Data.Dir == "" {
		cfg.Data.Dir = defaults.Data.Dir
	}
	if cfg.Data.CredentialsFile == "" {
		cfg.Data.CredentialsFile = defaults.Data.CredentialsFile
	}
	if cfg.Data.ProfilesFile == "" {
		cfg.Data.ProfilesFile = defaults.Data.ProfilesFile
	}
	if cfg.Data.DocumentsDir == "" {
		cfg.Data.DocumentsDir = defaults.Data.DocumentsDir
	}

	// Security
	if cfg.Security.MaxLoginAttempts == 0 {
		cfg.Security.MaxLoginAttempts = defaults.Security.MaxLoginAttempts
	}
	if cfg.Security.LockDurationMinutes == 0 {
		cfg.Security.LockDurationMinutes = defaults.Security.LockDurationMinutes
	}
	if cfg.Security.MinPasswordLength == 0 {
		cfg.Security.MinPasswordLength = defaults.Security.MinPasswordLength
	}
	if cfg.Security.AttemptBurst == 0 {
		cfg.Security.AttemptBurst = defaults.Security.AttemptBurst
	}

	// Logging
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = defaults.Logging.Format
	}

	// UI
	if cfg.UI.Color == "" {
		cfg.UI.Color = defaults.UI.Color
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg to path, as JSON when path ends in .json and as TOML
// otherwise. An empty path means the default config.toml.
func Save(cfg *Config, path string) error {
	if path == "" {
		p, err := ConfigPathTOML()
		if err != nil {
			return err
		}
		path = p
	}
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return SaveJSON(cfg, path)
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg as TOML with a header comment.
// SECURITY: config files are written 0600.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# docvault configuration file")
	fmt.Fprintln(&buf, "# Generated by docvault - edit with care")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes cfg as indented JSON.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every field and returns ValidateErrors, or nil.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Data
	if strings.TrimSpace(c.Data.Dir) == "" {
		add("data.dir", "must not be empty")
	}
	for field, name := range map[string]string{
		"data.credentials_file": c.Data.CredentialsFile,
		"data.profiles_file":    c.Data.ProfilesFile,
		"data.documents_dir":    c.Data.DocumentsDir,
	} {
		if strings.TrimSpace(name) == "" {
			add(field, "must not be empty")
		}
	}
	if c.CredentialsPath() == c.ProfilesPath() {
		add("data.profiles_file", "must differ from data.credentials_file")
	}

	// Security
	if c.Security.MaxLoginAttempts < 1 {
		add("security.max_login_attempts", "must be at least 1, got %d", c.Security.MaxLoginAttempts)
	}
	if c.Security.LockDurationMinutes < 1 {
		add("security.lock_duration_minutes", "must be at least 1, got %d", c.Security.LockDurationMinutes)
	}
	if c.Security.MinPasswordLength < 1 {
		add("security.min_password_length", "must be at least 1, got %d", c.Security.MinPasswordLength)
	}
	if c.Security.AttemptsPerSecond < 0 {
		add("security.attempts_per_second", "must not be negative")
	}
	if c.Security.AttemptBurst < 1 {
		add("security.attempt_burst", "must be at least 1, got %d", c.Security.AttemptBurst)
	}

	// Logging
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		add("logging.level", "invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level)
	}
	if f := strings.ToLower(c.Logging.Format); f != logging.FormatText && f != logging.FormatJSON {
		add("logging.format", "invalid format '%s', must be one of: text, json", c.Logging.Format)
	}

	// UI
	switch strings.ToLower(c.UI.Color) {
	case "auto", "always", "never":
	default:
		add("ui.color", "invalid value '%s', must be one of: auto, always, never", c.UI.Color)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies DOCVAULT_* environment variables:
//   - DOCVAULT_DATA_DIR: overrides data.dir
//   - DOCVAULT_MAX_LOGIN_ATTEMPTS: overrides security.max_login_attempts
//   - DOCVAULT_LOCK_MINUTES: overrides security.lock_duration_minutes
//   - DOCVAULT_MIN_PASSWORD_LENGTH: overrides security.min_password_length
//   - DOCVAULT_LOG_LEVEL: overrides logging.level
//   - DOCVAULT_LOG_FORMAT: overrides logging.format
//   - NO_COLOR: forces ui.color = never
//
// Unparsable numbers are ignored.
func (c *Config) ApplyEnvOverrides() {
	if dir := os.Getenv("DOCVAULT_DATA_DIR"); dir != "" {
		c.Data.Dir = dir
	}
	envInt("DOCVAULT_MAX_LOGIN_ATTEMPTS", &c.Security.MaxLoginAttempts)
	envInt("DOCVAULT_LOCK_MINUTES", &c.Security.LockDurationMinutes)
	envInt("DOCVAULT_MIN_PASSWORD_LENGTH", &c.Security.MinPasswordLength)
	if level := os.Getenv("DOCVAULT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("DOCVAULT_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		c.UI.Color = "never"
	}
}

func envInt(key string, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a value using dot notation, e.g. "security.max_login_attempts".
func (c *Config) Get(key string) (any, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set assigns a value given as a string using dot notation. The result is
// validated; on failure the old value is restored.
func (c *Config) Set(key, value string) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	old := reflect.New(field.Type()).Elem()
	old.Set(field)

	if err := setFieldValue(field, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := c.Validate(); err != nil {
		field.Set(old)
		return err
	}
	return nil
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() || fieldName == "" {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("%s is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts snake_case or kebab-case to a Go field name.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(strings.ToLower(part[1:]))
	}
	return result.String()
}

func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value: %v", err)
		}
		field.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value: %v", err)
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value: %v", err)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}

// Keys returns every settable key in dot notation.
func Keys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, section.Tag.Get("toml")+"."+section.Type.Field(j).Tag.Get("toml"))
		}
	}
	return keys
}

// String renders cfg as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("error encoding config: %v", err)
	}
	return buf.String()
}
