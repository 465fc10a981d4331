package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// RuleSpec
// =============================================================================

// RuleSpec is the value of one entry in a rules mapping: a severity, optionally
// followed by rule-specific options. Options are opaque to composition and are
// carried through unchanged.
type RuleSpec struct {
	Severity Severity
	Options  []any
}

// NewRuleSpec builds a RuleSpec from a severity and options.
func NewRuleSpec(severity Severity, options ...any) RuleSpec {
	spec := RuleSpec{Severity: severity}
	if len(options) > 0 {
		spec.Options = NormalizeValue(options).([]any)
	}
	return spec
}

// ParseRuleSpec converts a decoded rule entry ("error", 2, ["warn", {...}]) to a RuleSpec.
func ParseRuleSpec(v any) (RuleSpec, error) {
	switch val := NormalizeValue(v).(type) {
	case []any:
		if len(val) == 0 {
			return RuleSpec{}, errors.New("rule entry is an empty array")
		}
		sev, err := SeverityFromValue(val[0])
		if err != nil {
			return RuleSpec{}, err
		}
		spec := RuleSpec{Severity: sev}
		if len(val) > 1 {
			spec.Options = val[1:]
		}
		return spec, nil
	case nil:
		return RuleSpec{}, errors.New("rule entry is empty")
	default:
		sev, err := SeverityFromValue(val)
		if err != nil {
			return RuleSpec{}, err
		}
		return RuleSpec{Severity: sev}, nil
	}
}

// Enabled reports whether the rule is set to warn or error.
func (r RuleSpec) Enabled() bool {
	return r.Severity != SeverityOff
}

// HasOptions reports whether the entry carries options.
func (r RuleSpec) HasOptions() bool {
	return len(r.Options) > 0
}

// WithSeverity returns a copy of r with a different severity and the same options.
func (r RuleSpec) WithSeverity(severity Severity) RuleSpec {
	return RuleSpec{Severity: severity, Options: r.cloneOptions()}
}

// Value returns the ESLint shape of the entry: the bare tag when there are no
// options, otherwise a [tag, options...] array.
func (r RuleSpec) Value() any {
	if len(r.Options) == 0 {
		return r.Severity.String()
	}
	out := make([]any, 0, len(r.Options)+1)
	out = append(out, r.Severity.String())
	return append(out, r.cloneOptions()...)
}

// Equal reports whether both entries have the same severity and options.
func (r RuleSpec) Equal(other RuleSpec) bool {
	if r.Severity != other.Severity || len(r.Options) != len(other.Options) {
		return false
	}
	if len(r.Options) == 0 {
		return true
	}
	return reflect.DeepEqual(NormalizeValue(r.Options), NormalizeValue(other.Options))
}

// String returns the JSON form of the entry.
func (r RuleSpec) String() string {
	data, err := json.Marshal(r.Value())
	if err != nil {
		return fmt.Sprintf("%v", r.Value())
	}
	return string(data)
}

func (r RuleSpec) cloneOptions() []any {
	if r.Options == nil {
		return nil
	}
	return CloneValue(r.Options).([]any)
}

// MarshalJSON implements json.Marshaler.
func (r RuleSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Value())
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RuleSpec) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	spec, err := ParseRuleSpec(raw)
	if err != nil {
		return err
	}
	*r = spec
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (r RuleSpec) MarshalYAML() (any, error) {
	return r.Value(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *RuleSpec) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	spec, err := ParseRuleSpec(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*r = spec
	return nil
}

// =============================================================================
// RuleSet
// =============================================================================

// RuleSet maps rule identifiers to their entries.
type RuleSet map[string]RuleSpec

// Names returns the rule identifiers in sorted order.
func (rs RuleSet) Names() []string {
	names := make([]string, 0, len(rs))
	for name := range rs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of the rule set.
func (rs RuleSet) Clone() RuleSet {
	if rs == nil {
		return nil
	}
	out := make(RuleSet, len(rs))
	for name, spec := range rs {
		out[name] = RuleSpec{Severity: spec.Severity, Options: spec.cloneOptions()}
	}
	return out
}

// Count returns the number of rules at each severity.
func (rs RuleSet) Count() map[Severity]int {
	counts := make(map[Severity]int, 3)
	for _, spec := range rs {
		counts[spec.Severity]++
	}
	return counts
}

// ParseRuleSet converts a decoded rules mapping to a RuleSet.
func ParseRuleSet(raw map[string]any) (RuleSet, error) {
	rs := make(RuleSet, len(raw))
	for name, v := range raw {
		spec, err := ParseRuleSpec(v)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", name, err)
		}
		rs[name] = spec
	}
	return rs, nil
}
