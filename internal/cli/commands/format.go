package commands

import (
	"encoding/json"
	"fmt"

	"github.com/leapstack-labs/eslintcfg/internal/cli/output"
	"github.com/leapstack-labs/eslintcfg/pkg/core"
)

// severityLabel renders a severity in its status color.
func severityLabel(r *output.Renderer, sev core.Severity) string {
	s := r.Styles()
	switch sev {
	case core.SeverityError:
		return s.Error.Render(sev.String())
	case core.SeverityWarn:
		return s.Warning.Render(sev.String())
	default:
		return s.Muted.Render(sev.String())
	}
}

// optionsText returns the JSON form of a rule's options, or "" without options.
func optionsText(spec core.RuleSpec) string {
	if !spec.HasOptions() {
		return ""
	}
	data, err := json.Marshal(spec.Options)
	if err != nil {
		return fmt.Sprint(spec.Options)
	}
	return string(data)
}
