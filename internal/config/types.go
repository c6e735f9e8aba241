// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// LogLevelDebug logs every resolution and the full child command line.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs one line per run.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs only degraded behavior such as cache failures.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs only runner failures.
	LogLevelError LogLevel = "error"

	// DefaultPythonInterpreter is used to check python:* dependencies.
	DefaultPythonInterpreter = "python3"
	// DefaultGracePeriod is how long a cancelled child gets between the
	// termination signal and a kill.
	DefaultGracePeriod = 10 * time.Second
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level the runner logs at.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidConfigError collects field-level validation errors.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config is the runner configuration.
	Config struct {
		// Dependencies are the dependency identifiers the target needs,
		// in declaration order ("python3", "python:requests", ...).
		Dependencies []string `json:"dependencies" mapstructure:"dependencies"`
		// Target is the executable the runner starts.
		Target TargetConfig `json:"target" mapstructure:"target"`
		// SearchPaths are directories prepended to PATH before resolution.
		SearchPaths []string `json:"search_paths" mapstructure:"search_paths"`
		// Python configures python:* dependency checks.
		Python PythonConfig `json:"python" mapstructure:"python"`
		// Signals configures what happens to signals received while the target runs.
		Signals SignalsConfig `json:"signals" mapstructure:"signals"`
		// Cache configures the on-disk resolution cache.
		Cache CacheConfig `json:"cache" mapstructure:"cache"`
		// Log configures runner logging.
		Log LogConfig `json:"log" mapstructure:"log"`

		// BaseDir is the directory relative search paths and work dirs are
		// resolved against: the config file's directory, or the working
		// directory when no file was read.
		BaseDir string `json:"-" mapstructure:"-"`
		// Source is the path of the file the configuration was read from,
		// empty when only defaults apply.
		Source string `json:"-" mapstructure:"-"`
	}

	// TargetConfig describes the target executable.
	TargetConfig struct {
		// Executable is a command name looked up on the prepared PATH, or a path.
		Executable string `json:"executable" mapstructure:"executable"`
		// Args are fixed arguments placed before the forwarded ones
		// (typically the script path).
		Args []string `json:"args" mapstructure:"args"`
		// WorkDir is the child's working directory. Empty means inherit.
		WorkDir string `json:"work_dir" mapstructure:"work_dir"`
	}

	// PythonConfig configures python:* dependency checks.
	PythonConfig struct {
		// Interpreter is the interpreter command used to import modules.
		Interpreter string `json:"interpreter" mapstructure:"interpreter"`
	}

	// SignalsConfig configures signal handling while the target runs.
	SignalsConfig struct {
		// Forward lists signals relayed to the child.
		Forward []string `json:"forward" mapstructure:"forward"`
		// Intercept lists signals the runner swallows because the terminal
		// already delivers them to the child's process group.
		Intercept []string `json:"intercept" mapstructure:"intercept"`
		// GracePeriod is the delay between terminating and killing a child
		// whose run was cancelled.
		GracePeriod time.Duration `json:"grace_period" mapstructure:"grace_period"`
	}

	// CacheConfig configures the resolution cache.
	CacheConfig struct {
		// Enabled turns the on-disk cache on. The in-process memo is always on.
		Enabled bool `json:"enabled" mapstructure:"enabled"`
		// Dir overrides the cache directory. Empty means the user cache dir.
		Dir string `json:"dir" mapstructure:"dir"`
	}

	// LogConfig configures runner logging.
	LogConfig struct {
		// Level is the minimum level logged.
		Level LogLevel `json:"level" mapstructure:"level"`
	}
)

// DefaultConfig returns the configuration used when no file sets a value.
func DefaultConfig() *Config {
	return &Config{
		Dependencies: []string{},
		Target: TargetConfig{
			Args: []string{},
		},
		SearchPaths: []string{},
		Python: PythonConfig{
			Interpreter: DefaultPythonInterpreter,
		},
		Signals: SignalsConfig{
			Forward:     []string{"SIGTERM", "SIGHUP"},
			Intercept:   []string{"SIGINT", "SIGQUIT"},
			GracePeriod: DefaultGracePeriod,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level: LogLevelWarn,
		},
	}
}

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

// Error implements the error interface.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// IsValid checks the constraints the schema cannot express once defaults
// and flags are merged in.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Log.Level.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.Signals.GracePeriod < 0 {
		errs = append(errs, fmt.Errorf("signals.grace_period must not be negative, got %s", c.Signals.GracePeriod))
	}
	for i, p := range c.SearchPaths {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Errorf("search_paths[%d] must not be blank", i))
		}
	}
	if strings.TrimSpace(c.Python.Interpreter) == "" {
		errs = append(errs, errors.New("python.interpreter must not be empty"))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, fe := range e.FieldErrors {
		msgs = append(msgs, fe.Error())
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }
