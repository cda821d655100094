// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/forgecad/forge/internal/entrypoint"
	"github.com/forgecad/forge/internal/sandbox"
	"github.com/forgecad/forge/internal/store"
)

const (
	// BackendMemory keeps parameter overrides for the lifetime of the process.
	BackendMemory ParamsBackend = store.BackendMemory
	// BackendFile keeps parameter overrides in a TOML document on disk.
	BackendFile ParamsBackend = store.BackendFile
	// BackendRedis keeps parameter overrides in Redis.
	BackendRedis ParamsBackend = store.BackendRedis

	// LogLevelDebug enables debug output, including swallowed introspection failures.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs each run.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs normalization repairs and store problems.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs only failures.
	LogLevelError LogLevel = "error"

	defaultDebounce = "500ms"
)

var (
	// ErrInvalidParamsBackend is returned when a ParamsBackend value is not recognized.
	ErrInvalidParamsBackend = errors.New("invalid params backend")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidFunctionName is returned when a FunctionName is not a Lua identifier.
	ErrInvalidFunctionName = errors.New("invalid function name")
	// ErrInvalidFileName is returned when a FileName is empty or contains a separator.
	ErrInvalidFileName = errors.New("invalid file name")
	// ErrInvalidDebounce is returned when the watch debounce is not a positive duration.
	ErrInvalidDebounce = errors.New("invalid watch debounce")
	// ErrInvalidParamsConfig is the sentinel error wrapped by InvalidParamsConfigError.
	ErrInvalidParamsConfig = errors.New("invalid params config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")

	luaIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

type (
	// ParamsBackend selects where parameter overrides are persisted.
	ParamsBackend string

	// InvalidParamsBackendError is returned when a ParamsBackend value is not recognized.
	// It wraps ErrInvalidParamsBackend for errors.Is() compatibility.
	InvalidParamsBackendError struct {
		Value ParamsBackend
	}

	// LogLevel is a charmbracelet/log level name.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// FunctionName is the name of a global Lua function a script defines.
	FunctionName string

	// InvalidFunctionNameError is returned when a FunctionName is not a Lua identifier.
	InvalidFunctionNameError struct {
		Value FunctionName
	}

	// FileName is a bare file name looked up inside the project root.
	FileName string

	// InvalidFileNameError is returned when a FileName is empty or has a directory part.
	InvalidFileNameError struct {
		Value FileName
	}

	// InvalidDebounceError is returned when WatchConfig.Debounce cannot be parsed.
	InvalidDebounceError struct {
		Value string
		Err   error
	}

	// InvalidParamsConfigError is returned when a ParamsConfig has invalid fields.
	// It wraps ErrInvalidParamsConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidParamsConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// EntryFunction is the global function that builds geometry.
		EntryFunction FunctionName `json:"entry_function" mapstructure:"entry_function"`
		// ParameterFunction is the global function that declares parameters.
		ParameterFunction FunctionName `json:"parameter_function" mapstructure:"parameter_function"`
		// ManifestName is the project manifest looked up in the root directory.
		ManifestName FileName `json:"manifest_name" mapstructure:"manifest_name"`
		// DefaultScript is used when the manifest names no script.
		DefaultScript FileName `json:"default_script" mapstructure:"default_script"`
		// LibraryPath is an extra directory searched by require after the bundled modules.
		LibraryPath string `json:"library_path" mapstructure:"library_path"`
		// Params configures override persistence.
		Params ParamsConfig `json:"params" mapstructure:"params"`
		// Watch configures `forge watch`.
		Watch WatchConfig `json:"watch" mapstructure:"watch"`
		// Log configures the logger.
		Log LogConfig `json:"log" mapstructure:"log"`
		// UI configures terminal output.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// ParamsConfig selects the parameter store backend.
	ParamsConfig struct {
		Backend ParamsBackend `json:"backend" mapstructure:"backend"`
		// File is the TOML document used by the file backend.
		File  string      `json:"file" mapstructure:"file"`
		Redis RedisConfig `json:"redis" mapstructure:"redis"`
	}

	// RedisConfig holds connection settings for the redis backend.
	RedisConfig struct {
		Addr     string `json:"addr" mapstructure:"addr"`
		Password string `json:"password" mapstructure:"password"`
		DB       int    `json:"db" mapstructure:"db"`
		Prefix   string `json:"prefix" mapstructure:"prefix"`
	}

	// WatchConfig configures re-running on save.
	WatchConfig struct {
		// Debounce is a Go duration string.
		Debounce    string   `json:"debounce" mapstructure:"debounce"`
		ClearScreen bool     `json:"clear_screen" mapstructure:"clear_screen"`
		Ignore      []string `json:"ignore" mapstructure:"ignore"`
	}

	// LogConfig configures the logger.
	LogConfig struct {
		Level LogLevel `json:"level" mapstructure:"level"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose prints full error chains and stack traces.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// String returns the string representation of the ParamsBackend.
func (b ParamsBackend) String() string { return string(b) }

// IsValid returns whether the ParamsBackend is one of the defined backends,
// and a list of validation errors if it is not.
func (b ParamsBackend) IsValid() (bool, []error) {
	switch b {
	case BackendMemory, BackendFile, BackendRedis:
		return true, nil
	default:
		return false, []error{&InvalidParamsBackendError{Value: b}}
	}
}

// Error implements the error interface for InvalidParamsBackendError.
func (e *InvalidParamsBackendError) Error() string {
	return fmt.Sprintf("invalid params backend %q (valid: memory, file, redis)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidParamsBackendError) Unwrap() error { return ErrInvalidParamsBackend }

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// String returns the string representation of the FunctionName.
func (n FunctionName) String() string { return string(n) }

// IsValid returns whether the FunctionName is a valid Lua identifier.
func (n FunctionName) IsValid() (bool, []error) {
	if !luaIdentifier.MatchString(string(n)) {
		return false, []error{&InvalidFunctionNameError{Value: n}}
	}
	return true, nil
}

// Error implements the error interface for InvalidFunctionNameError.
func (e *InvalidFunctionNameError) Error() string {
	return fmt.Sprintf("invalid function name %q: must be a Lua identifier", e.Value)
}

// Unwrap returns ErrInvalidFunctionName for errors.Is() compatibility.
func (e *InvalidFunctionNameError) Unwrap() error { return ErrInvalidFunctionName }

// String returns the string representation of the FileName.
func (n FileName) String() string { return string(n) }

// IsValid returns whether the FileName is a non-empty name without directory separators.
func (n FileName) IsValid() (bool, []error) {
	if strings.TrimSpace(string(n)) == "" || strings.ContainsAny(string(n), `/\`) {
		return false, []error{&InvalidFileNameError{Value: n}}
	}
	return true, nil
}

// Error implements the error interface for InvalidFileNameError.
func (e *InvalidFileNameError) Error() string {
	return fmt.Sprintf("invalid file name %q: must be non-empty and contain no path separators", e.Value)
}

// Unwrap returns ErrInvalidFileName for errors.Is() compatibility.
func (e *InvalidFileNameError) Unwrap() error { return ErrInvalidFileName }

// Error implements the error interface for InvalidDebounceError.
func (e *InvalidDebounceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid watch debounce %q: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("invalid watch debounce %q: must be positive", e.Value)
}

// Unwrap returns ErrInvalidDebounce for errors.Is() compatibility.
func (e *InvalidDebounceError) Unwrap() error { return ErrInvalidDebounce }

// DebounceDuration parses Debounce. An empty value yields the default.
func (c WatchConfig) DebounceDuration() (time.Duration, error) {
	raw := c.Debounce
	if raw == "" {
		raw = defaultDebounce
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, &InvalidDebounceError{Value: c.Debounce, Err: err}
	}
	if d <= 0 {
		return 0, &InvalidDebounceError{Value: c.Debounce}
	}
	return d, nil
}

// IsValid returns whether the ParamsConfig has valid fields. The file backend
// needs a path.
func (c ParamsConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Backend.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.Backend == BackendFile && strings.TrimSpace(c.File) == "" {
		errs = append(errs, errors.New("params.file is required by the file backend"))
	}
	if c.Redis.DB < 0 {
		errs = append(errs, fmt.Errorf("params.redis.db must not be negative, got %d", c.Redis.DB))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidParamsConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidParamsConfigError.
func (e *InvalidParamsConfigError) Error() string {
	return fmt.Sprintf("invalid params config: %s", joinErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidParamsConfig for errors.Is() compatibility.
func (e *InvalidParamsConfigError) Unwrap() error { return ErrInvalidParamsConfig }

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	for _, n := range []FunctionName{c.EntryFunction, c.ParameterFunction} {
		if valid, fieldErrs := n.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	for _, n := range []FileName{c.ManifestName, c.DefaultScript} {
		if valid, fieldErrs := n.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if valid, fieldErrs := c.Params.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if _, err := c.Watch.DebounceDuration(); err != nil {
		errs = append(errs, err)
	}
	if valid, fieldErrs := c.Log.Level.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s", joinErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// StoreSettings maps the params section onto store.Open settings.
func (c *Config) StoreSettings() store.Settings {
	return store.Settings{
		Backend:       string(c.Params.Backend),
		File:          c.Params.File,
		RedisAddr:     c.Params.Redis.Addr,
		RedisPassword: c.Params.Redis.Password,
		RedisDB:       c.Params.Redis.DB,
		RedisPrefix:   c.Params.Redis.Prefix,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		EntryFunction:     sandbox.DefaultEntryFunction,
		ParameterFunction: sandbox.DefaultParameterFunction,
		ManifestName:      entrypoint.DefaultManifestName,
		DefaultScript:     entrypoint.DefaultScriptName,
		LibraryPath:       "",
		Params: ParamsConfig{
			Backend: BackendMemory,
			File:    "",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				DB:     0,
				Prefix: store.DefaultRedisPrefix,
			},
		},
		Watch: WatchConfig{
			Debounce:    defaultDebounce,
			ClearScreen: false,
			Ignore:      []string{},
		},
		Log: LogConfig{Level: LogLevelWarn},
		UI:  UIConfig{Verbose: false},
	}
}
