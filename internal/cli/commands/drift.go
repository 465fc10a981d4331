package commands

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/eslintcfg/internal/cli/output"
	"github.com/leapstack-labs/eslintcfg/pkg/core"
	"github.com/leapstack-labs/eslintcfg/pkg/drift"
	"github.com/spf13/cobra"
)

// ErrDrift is returned by drift --fail when documents diverge.
var ErrDrift = errors.New("documents diverge")

// DriftOptions holds options for the drift command.
type DriftOptions struct {
	Group    string // Only this group
	Details  bool   // Show each changed rule
	Resolved bool   // Compare composed configurations instead of own rules
	Fail     bool   // Exit with an error when anything diverges
}

// NewDriftCommand creates the drift command.
func NewDriftCommand() *cobra.Command {
	opts := &DriftOptions{}
	cmd := &cobra.Command{
		Use:   "drift [left right]",
		Short: "Compare rule groups across releases",
		Long: `Report how rule groups diverged between releases.

Without arguments every group bundled in more than one release is compared
with its copy in the next release. With two documents, those are compared;
--resolved compares their composed configurations.`,
		Example: `  # Every duplicated group
  eslintcfg drift

  # One group, with a diff per rule
  eslintcfg drift --group stylistic --details

  # What changed between two releases, all groups included
  eslintcfg drift base@^2 base@^3 --resolved

  # In CI
  eslintcfg drift --fail`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("accepts 0 or 2 arg(s), received %d", len(args))
			}
			return nil
		},
		ValidArgsFunction: CompleteDocuments,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDrift(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Group, "group", "g", "", "Only compare this group")
	cmd.Flags().BoolVarP(&opts.Details, "details", "d", false, "Show each changed rule with a diff")
	cmd.Flags().BoolVar(&opts.Resolved, "resolved", false, "Compare composed configurations")
	cmd.Flags().BoolVar(&opts.Fail, "fail", false, "Exit with an error when anything diverges")

	return cmd
}

func runDrift(cmd *cobra.Command, args []string, opts *DriftOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	var reports []drift.Report
	if len(args) == 2 {
		report, err := compareRefs(cc, args[0], args[1], opts.Resolved)
		if err != nil {
			return err
		}
		reports = []drift.Report{report}
	} else {
		for _, report := range drift.Scan(cc.Registry) {
			if opts.Group == "" || report.Group == opts.Group {
				reports = append(reports, report)
			}
		}
		if opts.Group != "" && len(reports) == 0 {
			return fmt.Errorf("group %q is not bundled in more than one release", opts.Group)
		}
	}

	if err := renderDrift(cc.Renderer, reports, opts.Details); err != nil {
		return err
	}

	if opts.Fail {
		for _, report := range reports {
			if !report.Empty() {
				return ErrDrift
			}
		}
	}
	return nil
}

// compareRefs compares two documents, either their own rules or, when
// resolved is set, their composed configurations.
func compareRefs(cc *CommandContext, leftRef, rightRef string, resolved bool) (drift.Report, error) {
	load := func(ref string) (*core.Document, error) {
		if resolved {
			ec, err := cc.Resolve(ref)
			if err != nil {
				return nil, err
			}
			return &ec.Document, nil
		}
		return cc.Resolver.Loader().Load(cc.Cfg.Pin(ref), nil)
	}

	left, err := load(leftRef)
	if err != nil {
		return drift.Report{}, err
	}
	right, err := load(rightRef)
	if err != nil {
		return drift.Report{}, err
	}

	report := drift.Compare(left, right)
	report.Group = leftRef + " .. " + rightRef
	return report, nil
}

func renderDrift(r *output.Renderer, reports []drift.Report, details bool) error {
	if r.EffectiveMode() == output.ModeJSON {
		if reports == nil {
			reports = []drift.Report{}
		}
		return r.JSON(reports)
	}

	r.Section(1, "drift")
	rows := make([][]string, len(reports))
	diverged := 0
	for i, report := range reports {
		rows[i] = []string{
			report.Group,
			report.Left,
			report.Right,
			fmt.Sprint(report.Count(drift.Changed)),
			fmt.Sprint(report.Count(drift.Added)),
			fmt.Sprint(report.Count(drift.Removed)),
		}
		if !report.Empty() {
			diverged++
		}
	}
	r.Table([]string{"Group", "From", "To", "Changed", "Added", "Removed"}, rows)

	if details {
		for _, report := range reports {
			if report.Empty() {
				continue
			}
			r.Println()
			r.Header(2, report.Left+" -> "+report.Right)
			for _, c := range report.Changes {
				r.Printf("- %s (%s): %s\n", c.Rule, c.Kind, c.Diff())
			}
		}
		r.Println()
	}

	s := r.Styles()
	if diverged == 0 {
		r.Println(s.Success.Render("No drift."))
	} else {
		r.Println(s.Warning.Render(fmt.Sprintf("%d of %d comparisons diverge", diverged, len(reports))))
	}
	return nil
}
