package starlark

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/leapstack-labs/eslintcfg/pkg/core"
)

// ConfigGlobal is the global a script assigns its document to.
const ConfigGlobal = "config"

// RuleLookup returns the rules a bundled document sets itself.
type RuleLookup func(name string) (core.RuleSet, bool)

// Predeclared returns the globals available to configuration scripts:
//
//	severity                   struct with off, warn and error tags
//	rule(severity, *options)   builds a rule entry
//	confusing_browser_globals  list of browser globals easily used by mistake
//	preset_rules(name)         rules of a bundled document, as a dict
//
// preset_rules is only declared when lookup is non-nil.
func Predeclared(browserGlobals []string, lookup RuleLookup) starlark.StringDict {
	globals := make([]starlark.Value, len(browserGlobals))
	for i, name := range browserGlobals {
		globals[i] = starlark.String(name)
	}
	list := starlark.NewList(globals)
	list.Freeze()

	globalsDict := starlark.StringDict{
		"severity":                  severityStruct(),
		"rule":                      starlark.NewBuiltin("rule", ruleBuiltin),
		"confusing_browser_globals": list,
	}
	if lookup != nil {
		globalsDict["preset_rules"] = starlark.NewBuiltin("preset_rules", presetRulesBuiltin(lookup))
	}
	return globalsDict
}

// presetRulesBuiltin implements preset_rules(name). The returned dict is a
// fresh copy the script may modify.
func presetRulesBuiltin(lookup RuleLookup) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &name); err != nil {
			return nil, err
		}
		rules, ok := lookup(name)
		if !ok {
			return nil, fmt.Errorf("%s: %q is not bundled", b.Name(), name)
		}
		raw := make(map[string]any, len(rules))
		for rule, spec := range rules {
			raw[rule] = spec.Value()
		}
		return GoToStarlark(raw)
	}
}

func severityStruct() starlark.Value {
	s := starlarkstruct.FromStringDict(starlark.String("severity"), starlark.StringDict{
		"off":   starlark.String(core.SeverityOff.String()),
		"warn":  starlark.String(core.SeverityWarn.String()),
		"error": starlark.String(core.SeverityError.String()),
	})
	s.Freeze()
	return s
}

// ruleBuiltin implements rule(severity, *options). With no options the bare
// severity is returned, as in a hand-written rules mapping.
func ruleBuiltin(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%s: missing severity", b.Name())
	}

	raw, err := ToGo(args[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	if _, err := core.SeverityFromValue(raw); err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}

	if len(args) == 1 {
		return args[0], nil
	}
	elems := make([]starlark.Value, len(args))
	copy(elems, args)
	return starlark.NewList(elems), nil
}
