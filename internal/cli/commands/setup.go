package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/eslintcfg/internal/cli/config"
	"github.com/leapstack-labs/eslintcfg/internal/cli/output"
	"github.com/leapstack-labs/eslintcfg/internal/source"
	"github.com/leapstack-labs/eslintcfg/pkg/compose"
	"github.com/leapstack-labs/eslintcfg/pkg/core"
	"github.com/leapstack-labs/eslintcfg/pkg/presets"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg       *config.Config
	Logger    *slog.Logger
	Renderer  *output.Renderer
	Registry  *presets.Registry
	Files     *source.FileSource
	Resolver  *compose.Resolver
	Overrides *compose.Overrides
}

// NewCommandContext creates a CommandContext whose resolver reads local
// document files first and then the bundled presets.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())

	mode, err := output.ParseMode(cfg.Output)
	if err != nil {
		return nil, err
	}
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	reg, err := presets.Default()
	if err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	files, err := source.NewFileSource(cwd, logger)
	if err != nil {
		return nil, err
	}

	overrides, err := cfg.Overrides()
	if err != nil {
		return nil, err
	}

	resolver := compose.NewResolver(
		compose.NewLoader(files, reg),
		compose.WithLogger(logger),
		compose.WithMaxDepth(cfg.MaxDepth),
	)

	return &CommandContext{
		Cfg:       cfg,
		Logger:    logger,
		Renderer:  r,
		Registry:  reg,
		Files:     files,
		Resolver:  resolver,
		Overrides: overrides,
	}, nil
}

// Resolve composes ref, or the configured entry when ref is empty, and
// applies the configured overrides.
func (c *CommandContext) Resolve(ref string) (*core.EffectiveConfig, error) {
	if ref == "" {
		ref = c.Cfg.EntryRef()
	} else {
		ref = c.Cfg.Pin(ref)
	}

	ec, err := c.Resolver.ResolveRef(ref)
	if err != nil {
		return nil, err
	}
	c.Overrides.Apply(ec)
	return ec, nil
}

// CompleteDocuments completes document references: registry names, the
// alias and local document files.
func CompleteDocuments(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	reg, err := presets.Default()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	names := append([]string{presets.Alias}, reg.Names()...)
	if cwd, err := os.Getwd(); err == nil {
		if files, err := source.NewFileSource(cwd, slog.New(slog.DiscardHandler)); err == nil {
			names = append(names, files.Names()...)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// argOrEmpty returns the first argument, or "" when there is none.
func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
