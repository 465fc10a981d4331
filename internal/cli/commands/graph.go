package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leapstack-labs/eslintcfg/internal/cli/output"
	"github.com/spf13/cobra"
)

// GraphQuerier provides read-only access to the extends graph.
type GraphQuerier interface {
	Extends(string) []string
	ExtendedBy(string) []string
	NodeCount() int
	EdgeCount() int
}

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph [document]",
		Short: "Show the extends graph of the bundled documents",
		Long: `Display the extends graph of the bundled documents.

Documents are grouped by level: level 0 holds the rule groups, and every
other document sits one level above the deepest document it extends.
With a document argument, its transitive extends and the documents
affected by changing it are shown instead.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Show the graph
  eslintcfg graph

  # What v3 is built from and what depends on one group
  eslintcfg graph v3
  eslintcfg graph v3/core/es6

  # Output as JSON
  eslintcfg graph --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runGraph,
	}

	return cmd
}

func runGraph(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cc.Renderer
	graph := cc.Registry.Graph()

	if len(args) == 1 {
		return graphDocument(r, cc, args[0])
	}

	levels, err := graph.Levels()
	if err != nil {
		return fmt.Errorf("failed to get levels: %w", err)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return graphJSON(r, graph, levels)
	case output.ModeMarkdown:
		return graphMarkdown(r, graph, levels)
	default:
		return graphText(r, graph, levels)
	}
}

// graphText outputs the graph in styled text format.
func graphText(r *output.Renderer, graph GraphQuerier, levels [][]string) error {
	styles := r.Styles()

	r.Section(1, "extends graph")

	for i, level := range levels {
		r.Println(styles.Header2.Render(fmt.Sprintf("Level %d:", i)))
		for _, doc := range level {
			extends := graph.Extends(doc)
			extendedBy := graph.ExtendedBy(doc)

			r.Printf("  %s\n", styles.Bold.Render(doc))
			if len(extends) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("extends:"), strings.Join(extends, ", "))
			}
			if len(extendedBy) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("extended by:"), strings.Join(extendedBy, ", "))
			}
		}
		r.Println("")
	}

	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d documents, %d extends edges", graph.NodeCount(), graph.EdgeCount())))

	return nil
}

// graphMarkdown outputs the graph in markdown format.
func graphMarkdown(r *output.Renderer, graph GraphQuerier, levels [][]string) error {
	r.Println(output.FormatHeader(1, "Extends Graph"))
	r.Println("")

	for i, level := range levels {
		levelName := fmt.Sprintf("Level %d", i)
		if i == 0 {
			levelName = "Level 0 (Rule Groups)"
		}
		r.Println(output.FormatHeader(2, levelName))

		for _, doc := range level {
			extends := graph.Extends(doc)
			extendedBy := graph.ExtendedBy(doc)

			r.Printf("- %s\n", doc)
			if len(extends) > 0 {
				r.Printf("  - extends: %s\n", strings.Join(extends, ", "))
			}
			if len(extendedBy) > 0 {
				r.Printf("  - extended by: %s\n", strings.Join(extendedBy, ", "))
			}
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Total Documents", fmt.Sprintf("%d", graph.NodeCount())))
	r.Println(output.FormatKeyValue("Total Edges", fmt.Sprintf("%d", graph.EdgeCount())))

	return nil
}

type graphNode struct {
	Name       string   `json:"name"`
	Extends    []string `json:"extends"`
	ExtendedBy []string `json:"extended_by"`
}

type graphLevel struct {
	Level     int         `json:"level"`
	Documents []graphNode `json:"documents"`
}

type graphOutput struct {
	Levels         []graphLevel `json:"levels"`
	TotalDocuments int          `json:"total_documents"`
	TotalEdges     int          `json:"total_edges"`
}

// graphJSON outputs the graph in JSON format.
func graphJSON(r *output.Renderer, graph GraphQuerier, levels [][]string) error {
	out := graphOutput{
		Levels:         make([]graphLevel, 0, len(levels)),
		TotalDocuments: graph.NodeCount(),
		TotalEdges:     graph.EdgeCount(),
	}

	for i, level := range levels {
		gl := graphLevel{
			Level:     i,
			Documents: make([]graphNode, 0, len(level)),
		}
		for _, doc := range level {
			gl.Documents = append(gl.Documents, graphNode{
				Name:       doc,
				Extends:    nonNil(graph.Extends(doc)),
				ExtendedBy: nonNil(graph.ExtendedBy(doc)),
			})
		}
		out.Levels = append(out.Levels, gl)
	}

	enc := json.NewEncoder(r.Writer())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

type documentGraph struct {
	Name     string   `json:"name"`
	Extends  []string `json:"extends"`
	Upstream []string `json:"upstream"`
	Affected []string `json:"affected"`
}

// graphDocument shows what one document is built from and what it affects.
func graphDocument(r *output.Renderer, cc *CommandContext, name string) error {
	graph := cc.Registry.Graph()
	if _, ok := graph.GetNode(name); !ok {
		return fmt.Errorf("document %q is not bundled (see 'eslintcfg list')", name)
	}

	dg := documentGraph{
		Name:     name,
		Extends:  nonNil(graph.Extends(name)),
		Upstream: nonNil(graph.Upstream(name)),
	}
	for _, id := range graph.Dependents([]string{name}) {
		if id != name {
			dg.Affected = append(dg.Affected, id)
		}
	}
	dg.Affected = nonNil(dg.Affected)

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(dg)
	}

	r.Header(1, name)
	list := func(title string, items []string) {
		r.Section(2, title)
		if len(items) == 0 {
			r.Println(r.Styles().Muted.Render("(none)"))
		}
		for _, item := range items {
			r.Printf("- %s\n", item)
		}
		r.Println("")
	}
	list("extends", dg.Extends)
	list("upstream", dg.Upstream)
	list("affected by changes", dg.Affected)
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
