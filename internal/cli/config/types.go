// Package config provides configuration management for the eslintcfg CLI.
//
// Settings are layered with koanf: built-in defaults, then an optional
// eslintcfg.yaml, then ESLINTCFG_* environment variables, then flags that were
// explicitly set on the command line.
package config

// Config holds all CLI configuration options.
type Config struct {
	// Entry is the document to compose: a registry name, an alias such as
	// "base@^3", or a path to a local configuration file.
	Entry string `koanf:"entry"`
	// Preset restricts bare aliases to a release constraint (e.g. "^3").
	Preset      string            `koanf:"preset"`
	Verbose     bool              `koanf:"verbose"`
	LogLevel    string            `koanf:"log_level"`
	Output      string            `koanf:"output"`
	Format      string            `koanf:"format"`
	Disabled    []string          `koanf:"disabled"`
	Severity    map[string]string `koanf:"severity"`
	MaxDepth    int               `koanf:"max_depth"`
	ProjectRoot string            `koanf:"-"`
}

// Default configuration values.
const (
	DefaultEntry    = "base"
	DefaultOutput   = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultFormat   = "json"
	DefaultLogLevel = "warn"
	DefaultMaxDepth = 64
)

// configFileNames are searched in order in each candidate directory.
var configFileNames = []string{"eslintcfg.yaml", "eslintcfg.yml", ".eslintcfg.yaml"}
