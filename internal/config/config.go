// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/carepath/carepath-tui/internal/model"
	"github.com/carepath/carepath-tui/internal/util"
)

// Fallback service locations used when nothing else is configured.
const (
	DefaultDBAPIURL   = "http://localhost:8001"
	DefaultChatAPIURL = "http://localhost:8000"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the root configuration.
type Config struct {
	Version string        `toml:"version" json:"version"`
	API     APIConfig     `toml:"api" json:"api"`
	Chat    ChatConfig    `toml:"chat" json:"chat"`
	History HistoryConfig `toml:"history" json:"history"`
	Journal JournalConfig `toml:"journal" json:"journal"`
	UI      UIConfig      `toml:"ui" json:"ui"`
}

// APIConfig locates the two backend services.
type APIConfig struct {
	// DBAPIURL is the data service (chat logs). Trailing slashes are stripped.
	DBAPIURL string `toml:"db_api_url" json:"db_api_url"`

	// ChatAPIURL is the inference service (triage).
	ChatAPIURL string `toml:"chat_api_url" json:"chat_api_url"`

	// TimeoutSecs bounds every request. Inference on CPU backends is slow,
	// so the default is generous.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`

	// MaxRequestsPerSecond throttles the client; 0 disables the limiter.
	MaxRequestsPerSecond float64 `toml:"max_requests_per_second" json:"max_requests_per_second"`

	UserAgent string `toml:"user_agent" json:"user_agent"`
}

// ChatConfig holds chat form defaults.
type ChatConfig struct {
	DefaultPatientMRN string   `toml:"default_patient_mrn" json:"default_patient_mrn"`
	LLMModes          []string `toml:"llm_modes" json:"llm_modes"`

	// TickMs is the elapsed-time refresh interval while a query runs.
	TickMs int `toml:"tick_ms" json:"tick_ms"`
}

// HistoryConfig holds history browser settings.
type HistoryConfig struct {
	PageSize int `toml:"page_size" json:"page_size"`
}

// JournalConfig controls the local SQLite journal of answered queries.
type JournalConfig struct {
	Enabled bool   `toml:"enabled" json:"enabled"`
	Path    string `toml:"path" json:"path"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	RenderMarkdown bool   `toml:"render_markdown" json:"render_markdown"`
	LogFile        string `toml:"log_file" json:"log_file"`
	ExportDir      string `toml:"export_dir" json:"export_dir"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns the configuration used when no file or environment
// variable says otherwise.
func Default() *Config {
	modes := make([]string, len(model.DefaultLLMModes))
	copy(modes, model.DefaultLLMModes)

	return &Config{
		Version: "1",
		API: APIConfig{
			DBAPIURL:             DefaultDBAPIURL,
			ChatAPIURL:           DefaultChatAPIURL,
			TimeoutSecs:          120,
			MaxRequestsPerSecond: 0,
			UserAgent:            "carepath-tui",
		},
		Chat: ChatConfig{
			DefaultPatientMRN: model.DefaultPatientMRN,
			LLMModes:          modes,
			TickMs:            100,
		},
		History: HistoryConfig{
			PageSize: model.DefaultPageSize,
		},
		Journal: JournalConfig{
			Enabled: false,
		},
		UI: UIConfig{
			RenderMarkdown: true,
		},
	}
}

// =============================================================================
// PATH FUNCTIONS
// =============================================================================

// ConfigDir returns the configuration directory. CAREPATH_HOME overrides the
// default of ~/.carepath.
func ConfigDir() (string, error) {
	if dir := os.Getenv("CAREPATH_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".carepath"), nil
}

// ConfigPathTOML returns the path of config.toml.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path of config.json.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir creates the configuration directory if needed.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// JournalPath resolves the journal database path.
func (c *Config) JournalPath() (string, error) {
	if c.Journal.Path != "" {
		return c.Journal.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "journal.db"), nil
}

// LogPath resolves the TUI log file path.
func (c *Config) LogPath() (string, error) {
	if c.UI.LogFile != "" {
		return c.UI.LogFile, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "carepath.log"), nil
}

// ExportPath resolves the export directory; the working directory by default.
func (c *Config) ExportPath() string {
	if c.UI.ExportDir != "" {
		return c.UI.ExportDir
	}
	return "."
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load builds the effective configuration. TOML wins over JSON; a file that
// fails to parse is reported but the remaining sources still apply.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	if tomlPath, err := ConfigPathTOML(); err == nil && fileExists(tomlPath) {
		if err := LoadTOML(cfg, tomlPath); err != nil {
			loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			cfg = Default()
		} else {
			return finish(cfg)
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil && fileExists(jsonPath) {
		if err := LoadJSON(cfg, jsonPath); err != nil {
			loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			cfg = Default()
		} else {
			return finish(cfg)
		}
	}

	cfg, err := finish(cfg)
	if err != nil {
		return cfg, err
	}
	return cfg, loadErr
}

// LoadFromPath loads the file at path (JSON by extension, TOML otherwise)
// and applies environment overrides.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
	}
	return finish(cfg)
}

// LoadTOML decodes the TOML file at path over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes the JSON file at path over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// finish applies the environment and validates. Invalid fields are put back
// to their defaults, so the returned config is usable even with an error.
func finish(cfg *Config) (*Config, error) {
	LoadDotEnv()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		var verrs ValidateErrors
		if errors.As(err, &verrs) {
			cfg.ResetInvalid(verrs)
		}
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv reads .env from the working directory into the process
// environment. Variables already set are not overwritten and a missing
// file is not an error.
func LoadDotEnv() {
	if !fileExists(".env") {
		return
	}
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not read .env: %v\n", err)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg to the default TOML path.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg as TOML with a short header, owner read/write only.
func SaveTOML(cfg *Config, path string) error {
	var buf strings.Builder
	buf.WriteString("# CarePath configuration file\n")
	buf.WriteString("# Environment variables (CAREPATH_*) take precedence over these values.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(buf.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes cfg as indented JSON, owner read/write only.
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

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError is a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every invalid field found by Validate.
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

// Validate checks every field and returns ValidateErrors when any is invalid.
func (c *Config) Validate() error {
	var errs ValidateErrors

	for field, raw := range map[string]string{
		"api.db_api_url":   c.API.DBAPIURL,
		"api.chat_api_url": c.API.ChatAPIURL,
	} {
		if msg := checkURL(raw); msg != "" {
			errs = append(errs, ValidationError{Field: field, Message: msg})
		}
	}

	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 3600 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 3600, got %d", c.API.TimeoutSecs),
		})
	}
	if c.API.MaxRequestsPerSecond < 0 {
		errs = append(errs, ValidationError{
			Field:   "api.max_requests_per_second",
			Message: "must not be negative",
		})
	}

	if strings.TrimSpace(c.Chat.DefaultPatientMRN) == "" {
		errs = append(errs, ValidationError{Field: "chat.default_patient_mrn", Message: "must not be blank"})
	}
	if c.Chat.TickMs < 10 || c.Chat.TickMs > 1000 {
		errs = append(errs, ValidationError{
			Field:   "chat.tick_ms",
			Message: fmt.Sprintf("must be between 10 and 1000, got %d", c.Chat.TickMs),
		})
	}

	if c.History.PageSize < model.MinPageSize || c.History.PageSize > model.MaxPageSize {
		errs = append(errs, ValidationError{
			Field: "history.page_size",
			Message: fmt.Sprintf("must be between %d and %d, got %d",
				model.MinPageSize, model.MaxPageSize, c.History.PageSize),
		})
	}

	if len(errs) == 0 {
		return nil
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
	return errs
}

// ResetInvalid puts each field named in errs back to its default value.
func (c *Config) ResetInvalid(errs ValidateErrors) {
	d := Default()
	for _, e := range errs {
		dst, err := c.lookup(e.Field)
		if err != nil {
			continue
		}
		src, err := d.lookup(e.Field)
		if err != nil {
			continue
		}
		dst.Set(src)
	}
	c.SetDefaults()
}

func checkURL(raw string) string {
	if raw == "" {
		return "must not be empty"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Sprintf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Sprintf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return "missing host"
	}
	return ""
}

// SetDefaults fills zero values and normalizes URLs. Validate runs after it,
// so out-of-range values that are not zero still get reported.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if strings.TrimSpace(c.API.DBAPIURL) == "" {
		c.API.DBAPIURL = d.API.DBAPIURL
	}
	if strings.TrimSpace(c.API.ChatAPIURL) == "" {
		c.API.ChatAPIURL = d.API.ChatAPIURL
	}
	c.API.DBAPIURL = NormalizeBaseURL(c.API.DBAPIURL)
	c.API.ChatAPIURL = NormalizeBaseURL(c.API.ChatAPIURL)

	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = d.API.TimeoutSecs
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = d.API.UserAgent
	}
	if c.Chat.DefaultPatientMRN == "" {
		c.Chat.DefaultPatientMRN = d.Chat.DefaultPatientMRN
	}
	if len(c.Chat.LLMModes) == 0 {
		c.Chat.LLMModes = d.Chat.LLMModes
	}
	if c.Chat.TickMs == 0 {
		c.Chat.TickMs = d.Chat.TickMs
	}
	if c.History.PageSize == 0 {
		c.History.PageSize = d.History.PageSize
	}
}

// NormalizeBaseURL trims whitespace and every trailing slash.
func NormalizeBaseURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported environment variables:
//   - CAREPATH_DB_API_URL (or VITE_DB_API_URL): api.db_api_url
//   - CAREPATH_CHAT_API_URL (or VITE_CHAT_API_URL): api.chat_api_url
//   - CAREPATH_TIMEOUT_SECS: api.timeout_secs
//   - CAREPATH_PATIENT_MRN: chat.default_patient_mrn
//   - CAREPATH_PAGE_SIZE: history.page_size
//   - CAREPATH_JOURNAL: "1"/"true" enables the journal
//   - CAREPATH_LOG_FILE: ui.log_file
func (c *Config) ApplyEnvOverrides() {
	if v := firstEnv("CAREPATH_DB_API_URL", "VITE_DB_API_URL"); v != "" {
		c.API.DBAPIURL = v
	}
	if v := firstEnv("CAREPATH_CHAT_API_URL", "VITE_CHAT_API_URL"); v != "" {
		c.API.ChatAPIURL = v
	}
	if v := os.Getenv("CAREPATH_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.API.TimeoutSecs = n
		}
	}
	if v := os.Getenv("CAREPATH_PATIENT_MRN"); v != "" {
		c.Chat.DefaultPatientMRN = v
	}
	if v := os.Getenv("CAREPATH_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.History.PageSize = n
		}
	}
	if v := os.Getenv("CAREPATH_JOURNAL"); v != "" {
		c.Journal.Enabled = parseBool(v)
	}
	if v := os.Getenv("CAREPATH_LOG_FILE"); v != "" {
		c.UI.LogFile = v
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get returns the value at a dot-notation key such as "history.page_size".
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set assigns a value at a dot-notation key. String values are converted to
// the field's type; list fields take a comma-separated string.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field := fieldByTag(v, part)
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// fieldByTag finds a struct field by its toml tag name.
func fieldByTag(v reflect.Value, name string) reflect.Value {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if tag := strings.Split(t.Field(i).Tag.Get("toml"), ",")[0]; tag == name {
			return v.Field(i)
		}
	}
	return reflect.Value{}
}

func setFieldValue(field reflect.Value, value interface{}) error {
	if s, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(s)
			return nil
		case reflect.Int, reflect.Int64:
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(n)
			return nil
		case reflect.Float64:
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(f)
			return nil
		case reflect.Bool:
			field.SetBool(parseBool(s))
			return nil
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				var items []string
				for _, item := range strings.Split(s, ",") {
					if item = strings.TrimSpace(item); item != "" {
						items = append(items, item)
					}
				}
				field.Set(reflect.ValueOf(items))
				return nil
			}
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// Keys returns every settable key in dot notation, sorted.
func Keys() []string {
	var keys []string
	var walk func(prefix string, t reflect.Type)
	walk = func(prefix string, t reflect.Type) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name := strings.Split(f.Tag.Get("toml"), ",")[0]
			if name == "" {
				continue
			}
			if f.Type.Kind() == reflect.Struct {
				walk(prefix+name+".", f.Type)
				continue
			}
			keys = append(keys, prefix+name)
		}
	}
	walk("", reflect.TypeOf(Config{}))
	sort.Strings(keys)
	return keys
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the process-wide configuration, loading it on first use.
// Load problems are reported on stderr. Invalid fields fall back to their
// defaults and every valid setting is kept.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults for those settings)\n", err)
		}
		if cfg == nil {
			cfg = Default()
			cfg.SetDefaults()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal replaces the process-wide configuration.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting clears the singleton so the next Global call reloads.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
