package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/leapstack-labs/eslintcfg/pkg/compose"
	"github.com/leapstack-labs/eslintcfg/pkg/core"
	"github.com/leapstack-labs/eslintcfg/pkg/presets"
)

var (
	validOutputs = []string{"auto", "text", "markdown", "json"}
	validFormats = []string{"json", "yaml"}
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Entry == "" {
		errs = append(errs, errors.New("entry is required"))
	}
	if !slices.Contains(validOutputs, c.Output) {
		errs = append(errs, fmt.Errorf("invalid output %q: must be one of %s", c.Output, strings.Join(validOutputs, ", ")))
	}
	if !slices.Contains(validFormats, c.Format) {
		errs = append(errs, fmt.Errorf("invalid format %q: must be one of %s", c.Format, strings.Join(validFormats, ", ")))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth))
	}
	if _, err := c.Overrides(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseLogLevel converts a level name to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelWarn, fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", level)
	}
	return l, nil
}

// Level returns the effective log level. Verbose lowers it to debug.
func (c *Config) Level() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	l, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return l
}

// Overrides converts the disabled and severity settings into rule overrides.
func (c *Config) Overrides() (*compose.Overrides, error) {
	o := compose.NewOverrides()
	for _, id := range c.Disabled {
		o.Disable(id)
	}

	ids := make([]string, 0, len(c.Severity))
	for id := range c.Severity {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		sev, ok := core.ParseSeverity(c.Severity[id])
		if !ok {
			return nil, fmt.Errorf("invalid severity %q for rule %q: must be off, warn or error", c.Severity[id], id)
		}
		o.SetSeverity(id, sev)
	}
	return o, nil
}

// EntryRef returns the configured entry pinned with Pin.
func (c *Config) EntryRef() string {
	return c.Pin(c.Entry)
}

// Pin restricts a bare alias reference to the configured preset constraint.
func (c *Config) Pin(ref string) string {
	if ref == presets.Alias && c.Preset != "" {
		return presets.Alias + "@" + c.Preset
	}
	return ref
}
