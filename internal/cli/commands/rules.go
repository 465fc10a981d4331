package commands

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/leapstack-labs/eslintcfg/internal/cli/output"
	"github.com/leapstack-labs/eslintcfg/pkg/core"
	"github.com/spf13/cobra"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Match      string // Glob over rule IDs, e.g. "react/*"
	Severity   string // Filter by severity: off, warn, error
	Overridden bool   // Only rules set by more than one document
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [document]",
		Short: "List the rules of the composed configuration",
		Long: `List every rule of the composed configuration with its severity, options
and the document that set the effective value.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown table
  - JSON: Machine-readable format`,
		Example: `  # All rules of the configured entry
  eslintcfg rules

  # Only import rules that fail the build
  eslintcfg rules --match 'import/*' --severity error

  # Rules whose value was changed by a later document
  eslintcfg rules base@^2 --overridden`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: CompleteDocuments,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRules(cmd, argOrEmpty(args), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Match, "match", "m", "", "Glob over rule IDs (doublestar syntax)")
	cmd.Flags().StringVarP(&opts.Severity, "severity", "s", "", "Filter by severity: off, warn, error")
	cmd.Flags().BoolVar(&opts.Overridden, "overridden", false, "Only rules set by more than one document")

	return cmd
}

type ruleRow struct {
	Rule     string        `json:"rule"`
	Severity string        `json:"severity"`
	Options  []any         `json:"options,omitempty"`
	Source   string        `json:"source"`
	Spec     core.RuleSpec `json:"-"`
}

// filterRules selects the rules of ec matching opts, sorted by ID.
func filterRules(ec *core.EffectiveConfig, opts *RulesOptions) ([]ruleRow, error) {
	var want *core.Severity
	if opts.Severity != "" {
		sev, ok := core.ParseSeverity(opts.Severity)
		if !ok {
			return nil, fmt.Errorf("invalid severity %q: must be off, warn or error", opts.Severity)
		}
		want = &sev
	}
	if opts.Match != "" && !doublestar.ValidatePattern(opts.Match) {
		return nil, fmt.Errorf("invalid match pattern %q", opts.Match)
	}

	var rows []ruleRow
	for _, name := range ec.Rules.Names() {
		spec := ec.Rules[name]
		if want != nil && spec.Severity != *want {
			continue
		}
		if opts.Match != "" {
			if ok, _ := doublestar.Match(opts.Match, name); !ok {
				continue
			}
		}
		origins := ec.Origins(name)
		if opts.Overridden && len(origins) < 2 {
			continue
		}
		source := ""
		if len(origins) > 0 {
			source = origins[len(origins)-1].Document
		}
		rows = append(rows, ruleRow{
			Rule:     name,
			Severity: spec.Severity.String(),
			Options:  spec.Options,
			Source:   source,
			Spec:     spec,
		})
	}
	return rows, nil
}

func listRules(cmd *cobra.Command, ref string, opts *RulesOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	ec, err := cc.Resolve(ref)
	if err != nil {
		return err
	}
	rows, err := filterRules(ec, opts)
	if err != nil {
		return err
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		if rows == nil {
			rows = []ruleRow{}
		}
		return r.JSON(rows)
	}

	if len(rows) == 0 {
		r.Println(r.Styles().Muted.Render("No rules match."))
		return nil
	}

	table := make([][]string, len(rows))
	counts := make(map[core.Severity]int)
	for i, row := range rows {
		table[i] = []string{row.Rule, severityLabel(r, row.Spec.Severity), optionsText(row.Spec), row.Source}
		counts[row.Spec.Severity]++
	}

	r.Header(1, ec.Name)
	r.Table([]string{"Rule", "Severity", "Options", "Source"}, table)
	r.Printf("%d rules: %d error, %d warn, %d off\n",
		len(rows), counts[core.SeverityError], counts[core.SeverityWarn], counts[core.SeverityOff])
	return nil
}
