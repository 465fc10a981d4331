package commands

import (
	"errors"
	"fmt"
	"runtime"
	"slices"

	"github.com/leapstack-labs/eslintcfg/internal/cli/output"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [document...]",
		Short: "Check that documents compose without errors",
		Long: `Compose the entry of every bundled release, the configured entry and any
documents given as arguments. Each composition runs independently and in
parallel; every failure is reported.`,
		Example: `  eslintcfg validate
  eslintcfg validate ./.eslintrc.json ./packages/web/.eslintrc.yaml
  eslintcfg validate --all`,
		ValidArgsFunction: CompleteDocuments,
		RunE:              runValidate,
	}
	cmd.Flags().Bool("all", false, "Also compose every bundled document")
	return cmd
}

type validation struct {
	Ref     string `json:"ref"`
	Rules   int    `json:"rules"`
	Sources int    `json:"sources"`
	Error   string `json:"error,omitempty"`
	err     error
}

func runValidate(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	all, _ := cmd.Flags().GetBool("all")

	var refs []string
	add := func(ref string) {
		if !slices.Contains(refs, ref) {
			refs = append(refs, ref)
		}
	}
	for _, rel := range cc.Registry.Releases() {
		add(rel.Entry)
	}
	if all {
		for _, name := range cc.Registry.Names() {
			add(name)
		}
	}
	add(cc.Cfg.EntryRef())
	for _, arg := range args {
		add(cc.Cfg.Pin(arg))
	}

	results := make([]validation, len(refs))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, ref := range refs {
		g.Go(func() error {
			res := validation{Ref: ref}
			ec, err := cc.Resolve(ref)
			if err != nil {
				res.err = err
				res.Error = err.Error()
			} else {
				res.Rules = len(ec.Rules)
				res.Sources = len(ec.Sources)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, res := range results {
		if res.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Ref, res.err))
		}
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(results); err != nil {
			return err
		}
	} else {
		s := r.Styles()
		rows := make([][]string, len(results))
		for i, res := range results {
			status := s.Success.Render("ok")
			if res.err != nil {
				status = s.Error.Render(res.Error)
			}
			rows[i] = []string{res.Ref, fmt.Sprint(res.Rules), fmt.Sprint(res.Sources), status}
		}
		r.Section(1, "validation")
		r.Table([]string{"Document", "Rules", "Sources", "Status"}, rows)
		if len(errs) == 0 {
			r.Println(s.Success.Render(fmt.Sprintf("%d documents compose cleanly", len(results))))
		}
	}

	return errors.Join(errs...)
}
