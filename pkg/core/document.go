package core

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/go-viper/mapstructure/v2"
)

// =============================================================================
// Document
// =============================================================================

// Document is one composable unit of ESLint configuration: a leaf rule group,
// an aggregator that extends other documents, or an entry point.
// Documents are treated as immutable once decoded.
type Document struct {
	// Name is the identity of the document: a registry name such as
	// "v3/core/es6" or the cleaned absolute path of a file.
	Name string `mapstructure:"-"`
	// Path is the file the document was read from; empty for embedded presets.
	Path string `mapstructure:"-"`

	Description   string          `mapstructure:"description"`
	Extends       []string        `mapstructure:"extends"`
	Rules         RuleSet         `mapstructure:"rules"`
	Settings      map[string]any  `mapstructure:"settings"`
	Plugins       []string        `mapstructure:"plugins"`
	ParserOptions map[string]any  `mapstructure:"parserOptions"`
	Env           map[string]bool `mapstructure:"env"`
	Globals       map[string]any  `mapstructure:"globals"`

	// Extra holds any other top-level ESLint key (root, parser, ignorePatterns, ...).
	Extra map[string]any `mapstructure:",remain"`
}

var (
	ruleSpecType    = reflect.TypeOf(RuleSpec{})
	stringSliceType = reflect.TypeOf([]string{})
)

// documentDecodeHook builds RuleSpecs from raw rule entries and accepts a single
// string where ESLint accepts either a string or a list (extends, plugins).
func documentDecodeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	switch {
	case to == ruleSpecType:
		if spec, ok := data.(RuleSpec); ok {
			return spec, nil
		}
		return ParseRuleSpec(data)
	case to == stringSliceType && from.Kind() == reflect.String:
		return []string{data.(string)}, nil
	}
	return data, nil
}

// DecodeDocument builds a Document from a decoded configuration object.
func DecodeDocument(name string, raw map[string]any) (*Document, error) {
	doc := &Document{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: documentDecodeHook,
		Result:     doc,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(NormalizeValue(raw)); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	doc.Name = name
	doc.Settings = normalizeMap(doc.Settings)
	doc.ParserOptions = normalizeMap(doc.ParserOptions)
	doc.Globals = normalizeMap(doc.Globals)
	doc.Extra = normalizeMap(doc.Extra)
	if len(doc.Extra) == 0 {
		doc.Extra = nil
	}
	return doc, nil
}

func normalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return NormalizeValue(m).(map[string]any)
}

// IsLeaf reports whether the document extends nothing.
func (d *Document) IsLeaf() bool {
	return len(d.Extends) == 0
}

// Kind returns "leaf", "aggregator" or "entry" for display.
// An entry is an aggregator that also declares environment or parser metadata.
func (d *Document) Kind() string {
	switch {
	case d.IsLeaf():
		return "leaf"
	case len(d.Env) > 0 || len(d.ParserOptions) > 0:
		return "entry"
	default:
		return "aggregator"
	}
}

// ToMap returns the document in the shape ESLint reads: extends, rules,
// settings, plugins, parserOptions, env, globals and any extra keys.
// Identity fields and the description are not part of the output.
func (d *Document) ToMap() map[string]any {
	out := make(map[string]any, len(d.Extra)+7)
	for k, v := range d.Extra {
		out[k] = CloneValue(v)
	}
	if len(d.Extends) > 0 {
		out["extends"] = stringsToAny(d.Extends)
	}
	if d.Rules != nil {
		rules := make(map[string]any, len(d.Rules))
		for name, spec := range d.Rules {
			rules[name] = spec.Value()
		}
		out["rules"] = rules
	}
	if d.Settings != nil {
		out["settings"] = CloneMap(d.Settings)
	}
	if d.Plugins != nil {
		out["plugins"] = stringsToAny(d.Plugins)
	}
	if d.ParserOptions != nil {
		out["parserOptions"] = CloneMap(d.ParserOptions)
	}
	if d.Env != nil {
		env := make(map[string]any, len(d.Env))
		for k, v := range d.Env {
			env[k] = v
		}
		out["env"] = env
	}
	if d.Globals != nil {
		out["globals"] = CloneMap(d.Globals)
	}
	return out
}

// MarshalJSON implements json.Marshaler using ToMap.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.ToMap())
}

// MarshalYAML implements yaml.Marshaler using ToMap.
func (d *Document) MarshalYAML() (any, error) {
	return d.ToMap(), nil
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// =============================================================================
// EffectiveConfig
// =============================================================================

// Origin records one document setting a rule during composition.
type Origin struct {
	Document string   `json:"document"`
	Spec     RuleSpec `json:"spec"`
}

// EffectiveConfig is the fully merged configuration consumed by ESLint.
// Its Extends list is always empty: every reference has been resolved.
type EffectiveConfig struct {
	Document

	// Sources lists the documents in the order they were applied.
	// A document reached through several branches appears once per application.
	Sources []string

	// Provenance maps each rule to the documents that set it, in application
	// order. The last origin holds the effective value.
	Provenance map[string][]Origin
}

// NewEffectiveConfig returns an empty effective configuration.
func NewEffectiveConfig(name string) *EffectiveConfig {
	return &EffectiveConfig{
		Document: Document{
			Name:          name,
			Rules:         make(RuleSet),
			Settings:      make(map[string]any),
			Plugins:       []string{},
			ParserOptions: make(map[string]any),
			Env:           make(map[string]bool),
			Globals:       make(map[string]any),
		},
		Provenance: make(map[string][]Origin),
	}
}

// Origins returns the provenance chain of a rule, or nil if no document set it.
func (e *EffectiveConfig) Origins(rule string) []Origin {
	return e.Provenance[rule]
}

// OverriddenRules returns the rules set by more than one document, sorted.
func (e *EffectiveConfig) OverriddenRules() []string {
	var names []string
	for name, chain := range e.Provenance {
		if len(chain) > 1 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
