package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/eslintcfg/internal/cli"
	"github.com/leapstack-labs/eslintcfg/pkg/presets"
)

const envPrefix = "ESLINTCFG_"

// flagsWithoutEnv are persistent flags that have no configuration key.
var flagsWithoutEnv = map[string]bool{"config": true, "severity": true}

// generateCLIDocs writes an overview page and one page per command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rootCmd := cli.NewRootCmd()
	if err := generateCLIIndex(rootCmd, outDir); err != nil {
		return fmt.Errorf("failed to generate index: %w", err)
	}
	log.Printf("  Generated index.md")

	for _, cmd := range visibleCommands(rootCmd) {
		if err := generateCommandPage(cmd, outDir); err != nil {
			return fmt.Errorf("failed to generate page for %s: %w", cmd.Name(), err)
		}
		log.Printf("  Generated %s.md", cmd.Name())
	}
	return nil
}

func generateCLIIndex(rootCmd *cobra.Command, outDir string) error {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for eslintcfg")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph("eslintcfg composes the bundled rule groups with your own configuration files and prints the effective ESLint configuration. It also explains where each rule comes from and compares rule groups across releases.")

	w.Header(2, "Installation")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/eslintcfg/cmd/eslintcfg@latest")

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range visibleCommands(rootCmd) {
		link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name())
		rows = append(rows, []string{link, cleanDescription(cmd.Short)})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	w.Paragraph("These flags are available for all commands:")
	writeFlagsTable(w, rootCmd.PersistentFlags())

	w.Header(2, "Configuration")
	w.Paragraph(fmt.Sprintf("Settings are read from %s in the working directory or the nearest parent, then from the environment, then from flags. Later sources win. Paths in the file are relative to the file.",
		InlineCode("eslintcfg.yaml")))
	w.CodeBlock("yaml", fmt.Sprintf(`entry: ./.eslintrc.yaml
preset: "^3"        # pins %s to the newest 3.x release
output: auto
format: json
log_level: warn
disabled: [no-console]
severity:
  eqeqeq: warn`, presets.Alias))

	w.Header(2, "Environment Variables")
	w.Table([]string{"Variable", "Flag"}, envRows(rootCmd.PersistentFlags()))
	w.Paragraph(InlineCode(envPrefix+"DISABLED") + " takes a comma-separated list.")

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Success"},
		{InlineCode("1"), "Error, or drift found with " + InlineCode("drift --fail")},
	})

	return os.WriteFile(filepath.Join(outDir, "index.md"), w.Bytes(), 0600)
}

// envRows derives the environment variable of each persistent flag the way
// the config loader maps them: upper snake case under the ESLINTCFG_ prefix.
func envRows(flags *pflag.FlagSet) [][]string {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden || flagsWithoutEnv[f.Name] {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		if f.Name == "disable" {
			key = "disabled"
		}
		rows = append(rows, []string{
			InlineCode(envPrefix + strings.ToUpper(key)),
			InlineCode("--" + f.Name),
		})
	})
	return rows
}

func generateCommandPage(cmd *cobra.Command, outDir string) error {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cmd.Short)
	}

	w.Header(2, "Usage")
	useLine := cmd.UseLine()
	if !strings.HasPrefix(useLine, "eslintcfg") {
		useLine = "eslintcfg " + useLine
	}
	w.CodeBlock("bash", useLine)

	if cmd.HasLocalFlags() {
		w.Header(2, "Options")
		writeFlagsTable(w, cmd.LocalFlags())
	}
	if cmd.HasInheritedFlags() {
		w.Header(2, "Global Options")
		w.Paragraph("See the [CLI reference](/cli/) for " + Bold(fmt.Sprint(countFlags(cmd.InheritedFlags()))) + " flags shared by every command.")
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", cleanExample(cmd.Example))
	}

	return os.WriteFile(filepath.Join(outDir, cmd.Name()+".md"), w.Bytes(), 0600)
}

func writeFlagsTable(w *MarkdownWriter, flags *pflag.FlagSet) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		short := ""
		if f.Shorthand != "" {
			short = "-" + f.Shorthand
		}
		rows = append(rows, []string{
			InlineCode("--" + f.Name),
			short,
			flagDefault(f),
			cleanDescription(f.Usage),
		})
	})
	w.Table([]string{"Option", "Short", "Default", "Description"}, rows)
}

func countFlags(flags *pflag.FlagSet) int {
	n := 0
	flags.VisitAll(func(f *pflag.Flag) {
		if !f.Hidden {
			n++
		}
	})
	return n
}

// visibleCommands returns the documented subcommands of root.
func visibleCommands(root *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, cmd := range root.Commands() {
		if cmd.Hidden || cmd.Name() == "help" || cmd.Name() == "__complete" {
			continue
		}
		out = append(out, cmd)
	}
	return out
}

// flagDefault renders a flag default for the options table. Empty slices and
// maps read as no default.
func flagDefault(f *pflag.Flag) string {
	switch f.DefValue {
	case "", "[]", "{}":
		return ""
	case "true", "false":
		return f.DefValue
	}
	switch f.Value.Type() {
	case "string", "int":
		return InlineCode(f.DefValue)
	}
	return f.DefValue
}

// cleanExample removes the common leading indentation of an example.
func cleanExample(example string) string {
	lines := strings.Split(example, "\n")
	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent <= 0 {
		return strings.TrimSpace(example)
	}

	for i, line := range lines {
		if len(line) >= minIndent {
			lines[i] = line[minIndent:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
