package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/eslintcfg/pkg/compose"
	"github.com/leapstack-labs/eslintcfg/pkg/core"
	"github.com/leapstack-labs/eslintcfg/pkg/drift"
	"github.com/leapstack-labs/eslintcfg/pkg/presets"
)

// generatePresetDocs writes an overview of the releases and one rules
// reference page per release.
func generatePresetDocs(outDir string) error {
	log.Printf("Generating preset docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	reg, err := presets.Default()
	if err != nil {
		return fmt.Errorf("failed to load presets: %w", err)
	}
	resolver := compose.NewResolver(compose.NewLoader(reg))

	if err := generatePresetIndex(reg, resolver, outDir); err != nil {
		return fmt.Errorf("failed to generate index: %w", err)
	}
	log.Printf("  Generated index.md")

	for _, rel := range reg.Releases() {
		if err := generateReleasePage(reg, rel, outDir); err != nil {
			return fmt.Errorf("failed to generate page for %s: %w", rel.Entry, err)
		}
		log.Printf("  Generated %s.md", rel.Entry)
	}

	return nil
}

func generatePresetIndex(reg *presets.Registry, resolver *compose.Resolver, outDir string) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Presets", "Releases of the shareable ESLint configuration")
	w.GeneratedMarker()

	w.Header(1, "Presets")
	w.Paragraph(fmt.Sprintf("The package bundles %d documents across %d releases. Each release keeps its own copy of every rule group, so upgrading never changes a pinned release.",
		len(reg.Names()), len(reg.Releases())))

	w.Header(2, "Releases")
	latest := reg.Latest()
	var rows [][]string
	for _, rel := range reg.Releases() {
		ec, err := resolver.ResolveRef(rel.Entry)
		if err != nil {
			return err
		}
		counts := ec.Rules.Count()
		name := rel.Version.String()
		if rel.Entry == latest.Entry {
			name += " (latest)"
		}
		rows = append(rows, []string{
			fmt.Sprintf("[%s](/presets/%s)", name, rel.Entry),
			InlineCode(rel.Entry),
			fmt.Sprint(len(ec.Rules)),
			fmt.Sprint(counts[core.SeverityError]),
			fmt.Sprint(counts[core.SeverityWarn]),
			fmt.Sprint(counts[core.SeverityOff]),
		})
	}
	w.Table([]string{"Version", "Entry", "Rules", "Error", "Warn", "Off"}, rows)

	w.Header(2, "Referencing a Release")
	w.Paragraph(fmt.Sprintf("%s names the latest release. Append a semver constraint to pin one:", InlineCode(presets.Alias)))
	w.CodeBlock("yaml", fmt.Sprintf(`extends:
  - %s        # latest release
  - %s@^2     # newest 2.x release
  - v1/core/es6 # a single rule group`, presets.Alias, presets.Alias))

	w.Header(2, "Drift Between Releases")
	var driftRows [][]string
	for _, report := range drift.Scan(reg) {
		if report.Empty() {
			continue
		}
		driftRows = append(driftRows, []string{
			InlineCode(report.Group),
			fmt.Sprintf("%s → %s", report.Left, report.Right),
			fmt.Sprint(report.Count(drift.Changed)),
			fmt.Sprint(report.Count(drift.Added)),
			fmt.Sprint(report.Count(drift.Removed)),
		})
	}
	if len(driftRows) == 0 {
		w.Paragraph("Every rule group is identical across releases.")
	} else {
		w.Table([]string{"Group", "Releases", "Changed", "Added", "Removed"}, driftRows)
	}

	return os.WriteFile(filepath.Join(outDir, "index.md"), w.Bytes(), 0600)
}

// generateReleasePage documents the rule groups a release entry extends.
func generateReleasePage(reg *presets.Registry, rel presets.Release, outDir string) error {
	entry, ok := reg.Get(rel.Entry)
	if !ok {
		return fmt.Errorf("release entry %q is not bundled", rel.Entry)
	}

	w := NewMarkdownWriter()
	title := "Release " + rel.Version.String()
	w.Frontmatter(title, entry.Description)
	w.GeneratedMarker()

	w.Header(1, title)
	w.Paragraph(entry.Description)

	w.Header(2, "Usage")
	w.CodeBlock("yaml", fmt.Sprintf("extends:\n  - %s@%d", presets.Alias, rel.Version.Major()))

	if len(entry.Env) > 0 || len(entry.ParserOptions) > 0 {
		w.Header(2, "Environment")
		w.CodeBlock("json", indentJSON(map[string]any{
			"env":           entry.Env,
			"parserOptions": entry.ParserOptions,
		}))
	}

	for _, name := range groupNames(reg, entry) {
		doc, _ := reg.Get(name)
		w.Header(2, InlineCode(name))
		w.Paragraph(doc.Description)

		var rows [][]string
		for _, rule := range doc.Rules.Names() {
			spec := doc.Rules[rule]
			opts := ""
			if spec.HasOptions() {
				opts = InlineCode(compactJSON(spec.Options))
			}
			rows = append(rows, []string{InlineCode(rule), spec.Severity.String(), opts})
		}
		w.Table([]string{"Rule", "Severity", "Options"}, rows)
	}

	return os.WriteFile(filepath.Join(outDir, rel.Entry+".md"), w.Bytes(), 0600)
}

// groupNames returns the leaf documents reachable from entry in extends order.
func groupNames(reg *presets.Registry, entry *core.Document) []string {
	var out []string
	seen := make(map[string]bool)
	var walk func(doc *core.Document)
	walk = func(doc *core.Document) {
		for _, ref := range doc.Extends {
			child, ok := reg.Get(ref)
			if !ok || seen[child.Name] {
				continue
			}
			seen[child.Name] = true
			if child.IsLeaf() {
				out = append(out, child.Name)
				continue
			}
			walk(child)
		}
	}
	walk(entry)
	return out
}

func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func indentJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSpace(string(data))
}
