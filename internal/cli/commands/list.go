package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/eslintcfg/internal/cli/output"
	"github.com/leapstack-labs/eslintcfg/pkg/presets"
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bundled documents and releases",
		Long: `List the releases and every bundled document with its kind, rule count
and the documents it extends. With --local, document files under the working
directory are listed too.`,
		RunE: runList,
	}
	cmd.Flags().String("kind", "", "Filter by kind: leaf, aggregator, entry")
	cmd.Flags().Bool("local", false, "Include document files under the working directory")
	return cmd
}

var kinds = []string{"leaf", "aggregator", "entry"}

type documentRow struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Release string   `json:"release,omitempty"`
	Rules   int      `json:"rules"`
	Extends []string `json:"extends,omitempty"`
}

type releaseRow struct {
	Version string `json:"version"`
	Entry   string `json:"entry"`
	Latest  bool   `json:"latest"`
}

func runList(cmd *cobra.Command, _ []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	kind, _ := cmd.Flags().GetString("kind")
	local, _ := cmd.Flags().GetBool("local")
	if kind != "" && !slices.Contains(kinds, kind) {
		return fmt.Errorf("invalid kind %q: must be one of %s", kind, strings.Join(kinds, ", "))
	}

	docs := cc.Registry.Documents()
	if local {
		for _, ref := range cc.Files.Names() {
			doc, err := cc.Files.Lookup(ref, nil)
			if err != nil {
				cc.Logger.Warn("skipping unreadable document", "ref", ref, "error", err)
				continue
			}
			docs = append(docs, doc)
		}
	}

	var rows []documentRow
	for _, doc := range docs {
		if kind != "" && doc.Kind() != kind {
			continue
		}
		row := documentRow{
			Name:    doc.Name,
			Kind:    doc.Kind(),
			Rules:   len(doc.Rules),
			Extends: doc.Extends,
		}
		if rel, ok := cc.Registry.ReleaseOf(doc.Name); ok && doc.Path == "" {
			row.Release = rel.Version.String()
		}
		rows = append(rows, row)
	}

	latest := cc.Registry.Latest()
	var releases []releaseRow
	for _, rel := range cc.Registry.Releases() {
		releases = append(releases, releaseRow{
			Version: rel.Version.String(),
			Entry:   rel.Entry,
			Latest:  rel.Entry == latest.Entry,
		})
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(map[string]any{
			"releases":  releases,
			"documents": rows,
		})
	}

	r.Section(1, "releases")
	relTable := make([][]string, len(releases))
	for i, rel := range releases {
		mark := ""
		if rel.Latest {
			mark = r.Styles().Success.Render("latest (" + presets.Alias + ")")
		}
		relTable[i] = []string{rel.Version, rel.Entry, mark}
	}
	r.Table([]string{"Version", "Entry", ""}, relTable)
	r.Println()

	r.Section(1, "documents")
	docTable := make([][]string, len(rows))
	for i, row := range rows {
		docTable[i] = []string{row.Name, row.Kind, fmt.Sprint(row.Rules), strings.Join(row.Extends, ", ")}
	}
	r.Table([]string{"Document", "Kind", "Rules", "Extends"}, docTable)
	r.Printf("%d documents\n", len(rows))
	return nil
}
