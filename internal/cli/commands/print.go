package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewPrintCommand creates the print command.
func NewPrintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "print [document]",
		Short: "Print the composed configuration",
		Long: `Compose a document with everything it extends and print the effective
configuration ESLint consumes.

Without an argument the configured entry is printed. A jq filter narrows
the output.`,
		Example: `  # The latest release
  eslintcfg print base

  # Release 1 as YAML
  eslintcfg print base@^1 --format yaml

  # Only the enabled rules of a local config
  eslintcfg print ./.eslintrc.json -q '.rules | map_values(select(. != "off"))'`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: CompleteDocuments,
		RunE:              runPrint,
	}

	cmd.Flags().String("format", "json", "Document format (json|yaml)")
	cmd.Flags().StringP("query", "q", "", "jq filter applied to the configuration")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runPrint(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	ec, err := cc.Resolve(argOrEmpty(args))
	if err != nil {
		return err
	}

	query, _ := cmd.Flags().GetString("query")
	return printConfig(cmd.Context(), cc, ec, query)
}

// encode writes v as indented JSON or as YAML.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// runQuery evaluates a jq filter against a JSON-compatible value.
func runQuery(ctx context.Context, src string, input any) ([]any, error) {
	q, err := gojq.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	// gojq only accepts the types encoding/json produces.
	data, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	var normalized any
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&normalized); err != nil {
		return nil, err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	var results []any
	iter := code.RunWithContext(ctx, normalized)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				break
			}
			return nil, fmt.Errorf("query failed: %w", err)
		}
		results = append(results, v)
	}
	return results, nil
}
