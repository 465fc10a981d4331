package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/eslintcfg/internal/cli/output"
	"github.com/leapstack-labs/eslintcfg/pkg/compose"
	"github.com/leapstack-labs/eslintcfg/pkg/core"
	"github.com/spf13/cobra"
)

// NewExplainCommand creates the explain command.
func NewExplainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <rule>",
		Short: "Show which documents set a rule",
		Long: `Show the provenance chain of a rule: every document that set it while
composing the entry, in application order. The last one wins.`,
		Example: `  eslintcfg explain no-unused-vars
  eslintcfg explain max-len -e base@^1`,
		Args: cobra.ExactArgs(1),
		RunE: runExplain,
	}
	return cmd
}

type explanation struct {
	Rule      string        `json:"rule"`
	Entry     string        `json:"entry"`
	Effective core.RuleSpec `json:"effective"`
	Origins   []core.Origin `json:"origins"`
}

func runExplain(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	ec, err := cc.Resolve("")
	if err != nil {
		return err
	}

	rule := args[0]
	origins := ec.Origins(rule)
	if len(origins) == 0 {
		msg := fmt.Sprintf("rule %q is not set by %s", rule, ec.Name)
		if near := compose.Suggest(rule, ec.Rules.Names()); len(near) > 0 {
			quoted := make([]string, len(near))
			for i, name := range near {
				quoted[i] = strconv.Quote(name)
			}
			msg += fmt.Sprintf("; did you mean %s?", strings.Join(quoted, ", "))
		}
		return errors.New(msg)
	}

	exp := explanation{
		Rule:      rule,
		Entry:     ec.Name,
		Effective: ec.Rules[rule],
		Origins:   origins,
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(exp)
	}

	r.Header(1, rule)
	rows := make([][]string, len(origins))
	for i, o := range origins {
		rows[i] = []string{fmt.Sprint(i + 1), o.Document, o.Spec.String()}
	}
	r.Table([]string{"#", "Document", "Value"}, rows)

	s := r.Styles()
	r.Printf("%s %s\n", s.Bold.Render("Effective:"), exp.Effective.String())
	if len(origins) > 1 {
		r.Println(s.Muted.Render(fmt.Sprintf("overridden %d time(s)", len(origins)-1)))
	}
	return nil
}
