// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/enggenv/envrun/internal/issue"
	"github.com/enggenv/envrun/pkg/cueutil"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/format"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "envrun"
	// ConfigFileName is the name of the config file in the user config directory.
	ConfigFileName = "config.cue"
	// LocalConfigFileName is the name of the config file looked up in the
	// working directory.
	LocalConfigFileName = "envrun.cue"

	schemaDefinition = "#Config"
)

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the envrun configuration directory inside the
// platform's user configuration directory.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// DefaultCacheDir returns the resolution cache directory used when
// cache.dir is not set.
func DefaultCacheDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// loadWithOptions finds the config file for opts and loads it over the defaults.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	workDir := opts.WorkingDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		workDir = wd
	}

	// An explicit --config path is used exclusively.
	if opts.ConfigFilePath != "" {
		path := opts.ConfigFilePath
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}
		if !fileExists(path) {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'envrun config init' to create a configuration file").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return loadFile(path)
	}

	candidates := []string{filepath.Join(workDir, LocalConfigFileName)}
	cfgDir := opts.ConfigDirPath
	if cfgDir == "" {
		if dir, err := ConfigDir(); err == nil {
			cfgDir = dir
		}
	}
	if cfgDir != "" {
		candidates = append(candidates, filepath.Join(cfgDir, ConfigFileName))
	}

	for _, path := range candidates {
		if fileExists(path) {
			return loadFile(path)
		}
	}

	// No file anywhere: defaults only.
	cfg, err := decode(newViper())
	if err != nil {
		return nil, err
	}
	cfg.BaseDir = workDir
	return cfg, nil
}

// loadFile reads a config file from disk.
func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithSuggestion("Check that the file is readable").
			Wrap(err).
			BuildError()
	}
	cfg, err := LoadBytes(data, path, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	cfg.Source = path
	return cfg, nil
}

// LoadBytes parses CUE configuration data over the defaults. The filename is
// used in error messages; baseDir anchors relative paths in the result.
func LoadBytes(data []byte, filename, baseDir string) (*Config, error) {
	v := newViper()
	if err := loadCUEIntoViper(v, data, filename); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(filename).
			WithSuggestion("Check that the file contains valid CUE syntax").
			WithSuggestion("Verify the values match the documented fields (see 'envrun config show')").
			Wrap(err).
			BuildError()
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(filename).
			Wrap(err).
			BuildError()
	}
	cfg.BaseDir = baseDir
	return cfg, nil
}

// newViper returns a Viper instance seeded with DefaultConfig.
func newViper() *viper.Viper {
	v := viper.New()
	defaults := DefaultConfig()
	v.SetDefault("dependencies", defaults.Dependencies)
	v.SetDefault("target.executable", defaults.Target.Executable)
	v.SetDefault("target.args", defaults.Target.Args)
	v.SetDefault("target.work_dir", defaults.Target.WorkDir)
	v.SetDefault("search_paths", defaults.SearchPaths)
	v.SetDefault("python.interpreter", defaults.Python.Interpreter)
	v.SetDefault("signals.forward", defaults.Signals.Forward)
	v.SetDefault("signals.intercept", defaults.Signals.Intercept)
	v.SetDefault("signals.grace_period", defaults.Signals.GracePeriod)
	v.SetDefault("cache.enabled", defaults.Cache.Enabled)
	v.SetDefault("cache.dir", defaults.Cache.Dir)
	v.SetDefault("log.level", defaults.Log.Level)
	return v
}

// decode unmarshals the merged Viper state and checks cross-field constraints.
func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if valid, errs := cfg.IsValid(); !valid {
		return nil, errs[0]
	}
	return &cfg, nil
}

// loadCUEIntoViper validates data against #Config and merges the fields it
// sets into v, leaving the defaults underneath in place.
func loadCUEIntoViper(v *viper.Viper, data []byte, filename string) error {
	values, err := cueutil.DecodeMap(configSchema, data, schemaDefinition, filename)
	if err != nil {
		return err
	}
	if err := v.MergeConfigMap(values); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// ResolvedSearchPaths returns SearchPaths with relative entries anchored at BaseDir.
func (c *Config) ResolvedSearchPaths() []string {
	out := make([]string, 0, len(c.SearchPaths))
	for _, p := range c.SearchPaths {
		out = append(out, c.resolvePath(p))
	}
	return out
}

// ResolvedWorkDir returns Target.WorkDir anchored at BaseDir, or "" to inherit.
func (c *Config) ResolvedWorkDir() string {
	if c.Target.WorkDir == "" {
		return ""
	}
	return c.resolvePath(c.Target.WorkDir)
}

// ResolvedCacheDir returns Cache.Dir anchored at BaseDir, or the default
// cache directory when it is unset.
func (c *Config) ResolvedCacheDir() (string, error) {
	if c.Cache.Dir == "" {
		return DefaultCacheDir()
	}
	return c.resolvePath(c.Cache.Dir), nil
}

func (c *Config) resolvePath(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// GenerateCUE renders cfg as a CUE document accepted by the loader.
func GenerateCUE(cfg *Config) (string, error) {
	doc := map[string]any{
		"dependencies": nonNil(cfg.Dependencies),
		"target": map[string]any{
			"executable": cfg.Target.Executable,
			"args":       nonNil(cfg.Target.Args),
			"work_dir":   cfg.Target.WorkDir,
		},
		"search_paths": nonNil(cfg.SearchPaths),
		"python": map[string]any{
			"interpreter": cfg.Python.Interpreter,
		},
		"signals": map[string]any{
			"forward":      nonNil(cfg.Signals.Forward),
			"intercept":    nonNil(cfg.Signals.Intercept),
			"grace_period": cfg.Signals.GracePeriod.String(),
		},
		"cache": map[string]any{
			"enabled": cfg.Cache.Enabled,
			"dir":     cfg.Cache.Dir,
		},
		"log": map[string]any{
			"level": string(cfg.Log.Level),
		},
	}
	// An empty executable is "unset", which the schema expresses by absence.
	if cfg.Target.Executable == "" {
		delete(doc["target"].(map[string]any), "executable")
	}

	value := cuecontext.New().Encode(doc)
	if value.Err() != nil {
		return "", fmt.Errorf("failed to encode config: %w", value.Err())
	}

	node := value.Syntax(cue.Final())
	if lit, ok := node.(*ast.StructLit); ok {
		node = &ast.File{Decls: lit.Elts}
	}
	out, err := format.Node(node)
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}
	return string(out), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// EnsureConfigDir creates the user config directory if it doesn't exist.
func EnsureConfigDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// WriteFile renders cfg as CUE and writes it to path. An existing file is
// only replaced when overwrite is set.
func WriteFile(cfg *Config, path string, overwrite bool) error {
	if !overwrite && fileExists(path) {
		return issue.NewErrorContext().
			WithOperation("write configuration").
			WithResource(path).
			WithSuggestion("Pass --force to overwrite it").
			Wrap(os.ErrExist).
			BuildError()
	}
	content, err := GenerateCUE(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
