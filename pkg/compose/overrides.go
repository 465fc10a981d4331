package compose

import (
	"sort"

	"github.com/leapstack-labs/eslintcfg/pkg/core"
)

// OverridesName is the document name recorded for applied overrides.
const OverridesName = "<overrides>"

// Overrides are user adjustments applied above every document.
type Overrides struct {
	// Disabled contains rule IDs to turn off.
	Disabled []string

	// Severity changes the severity of rules, keeping their options.
	Severity map[string]core.Severity
}

// NewOverrides creates empty overrides.
func NewOverrides() *Overrides {
	return &Overrides{Severity: make(map[string]core.Severity)}
}

// Disable turns a rule off.
func (o *Overrides) Disable(ruleID string) *Overrides {
	for _, id := range o.Disabled {
		if id == ruleID {
			return o
		}
	}
	o.Disabled = append(o.Disabled, ruleID)
	return o
}

// SetSeverity overrides the severity for a rule.
func (o *Overrides) SetSeverity(ruleID string, severity core.Severity) *Overrides {
	if o.Severity == nil {
		o.Severity = make(map[string]core.Severity)
	}
	o.Severity[ruleID] = severity
	return o
}

// IsEmpty reports whether the overrides change nothing.
func (o *Overrides) IsEmpty() bool {
	return o == nil || (len(o.Disabled) == 0 && len(o.Severity) == 0)
}

// Document builds the pseudo-document that applies the overrides on top of
// current. A disabled rule wins over a severity override for the same rule.
func (o *Overrides) Document(current core.RuleSet) *core.Document {
	doc := &core.Document{Name: OverridesName, Rules: make(core.RuleSet)}
	if o == nil {
		return doc
	}

	ids := make([]string, 0, len(o.Severity))
	for id := range o.Severity {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		sev := o.Severity[id]
		if spec, ok := current[id]; ok {
			doc.Rules[id] = spec.WithSeverity(sev)
		} else {
			doc.Rules[id] = core.NewRuleSpec(sev)
		}
	}

	for _, id := range o.Disabled {
		doc.Rules[id] = core.NewRuleSpec(core.SeverityOff)
	}
	return doc
}

// Apply merges the overrides into ec as its last source.
func (o *Overrides) Apply(ec *core.EffectiveConfig) {
	if o.IsEmpty() {
		return
	}
	apply(ec, o.Document(ec.Rules))
}
