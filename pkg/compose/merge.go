package compose

import (
	"log/slog"
	"reflect"

	"github.com/leapstack-labs/eslintcfg/pkg/core"
)

// DefaultMaxDepth bounds extends nesting.
const DefaultMaxDepth = 64

// Merge reduces documents in order into one effective configuration.
// Extends lists are ignored: the documents are taken as already expanded.
func Merge(docs ...*core.Document) *core.EffectiveConfig {
	name := ""
	if len(docs) > 0 {
		name = docs[len(docs)-1].Name
	}
	ec := core.NewEffectiveConfig(name)
	for _, doc := range docs {
		apply(ec, doc)
	}
	return ec
}

// apply merges one document's own fields over ec.
func apply(ec *core.EffectiveConfig, doc *core.Document) {
	ec.Sources = append(ec.Sources, doc.Name)

	for _, name := range doc.Rules.Names() {
		spec := doc.Rules[name]
		spec = core.NewRuleSpec(spec.Severity, spec.Options...)
		ec.Rules[name] = spec
		ec.Provenance[name] = append(ec.Provenance[name], core.Origin{Document: doc.Name, Spec: spec})
	}

	for key, value := range doc.Settings {
		ec.Settings[key] = mergeSetting(ec.Settings[key], value)
	}

	ec.Plugins = unionStrings(ec.Plugins, doc.Plugins)

	for key, value := range doc.ParserOptions {
		if key == "ecmaFeatures" {
			if prev, ok := ec.ParserOptions[key].(map[string]any); ok {
				if next, ok := value.(map[string]any); ok {
					merged := core.CloneMap(prev)
					for k, v := range next {
						merged[k] = core.CloneValue(v)
					}
					ec.ParserOptions[key] = merged
					continue
				}
			}
		}
		ec.ParserOptions[key] = core.CloneValue(value)
	}

	for key, value := range doc.Env {
		ec.Env[key] = value
	}
	for key, value := range doc.Globals {
		ec.Globals[key] = core.CloneValue(value)
	}

	if len(doc.Extra) > 0 && ec.Extra == nil {
		ec.Extra = make(map[string]any, len(doc.Extra))
	}
	for key, value := range doc.Extra {
		ec.Extra[key] = core.CloneValue(value)
	}
}

// mergeSetting overwrites prev with next, except that an array value is
// appended to a previous array. Arrays never hold duplicates, including the
// first array stored for a key.
func mergeSetting(prev, next any) any {
	nextList, ok := next.([]any)
	if !ok {
		return core.CloneValue(next)
	}
	out := make([]any, 0, len(nextList))
	if prevList, ok := prev.([]any); ok {
		out = appendUnique(out, prevList)
	}
	return appendUnique(out, nextList)
}

func appendUnique(out, values []any) []any {
	for _, v := range values {
		if !containsValue(out, v) {
			out = append(out, core.CloneValue(v))
		}
	}
	return out
}

func containsValue(list []any, v any) bool {
	for _, item := range list {
		if reflect.DeepEqual(item, v) {
			return true
		}
	}
	return false
}

func unionStrings(prev, next []string) []string {
	for _, s := range next {
		found := false
		for _, p := range prev {
			if p == s {
				found = true
				break
			}
		}
		if !found {
			prev = append(prev, s)
		}
	}
	return prev
}

// =============================================================================
// Resolver
// =============================================================================

// Resolver expands extends references and merges the result.
// It holds no state between calls and is safe for concurrent use.
type Resolver struct {
	loader   *Loader
	logger   *slog.Logger
	maxDepth int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for resolution tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMaxDepth sets the extends nesting limit.
func WithMaxDepth(depth int) Option {
	return func(r *Resolver) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// NewResolver creates a resolver that loads references through loader.
func NewResolver(loader *Loader, opts ...Option) *Resolver {
	if loader == nil {
		loader = NewLoader()
	}
	r := &Resolver{
		loader:   loader,
		logger:   slog.New(slog.DiscardHandler),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Loader returns the loader used for references.
func (r *Resolver) Loader() *Loader {
	return r.loader
}

// ResolveRef loads ref and resolves it as an entry point.
func (r *Resolver) ResolveRef(ref string) (*core.EffectiveConfig, error) {
	entry, err := r.loader.Load(ref, nil)
	if err != nil {
		return nil, err
	}
	return r.Resolve(entry)
}

// Resolve expands entry depth-first, left to right, applying each document's
// own fields after everything it extends. A document reached through several
// branches is applied at each occurrence.
func (r *Resolver) Resolve(entry *core.Document) (*core.EffectiveConfig, error) {
	ec := core.NewEffectiveConfig(entry.Name)
	if err := r.expand(ec, entry, nil); err != nil {
		return nil, err
	}
	r.logger.Debug("resolved configuration",
		slog.String("entry", entry.Name),
		slog.Int("documents", len(ec.Sources)),
		slog.Int("rules", len(ec.Rules)))
	return ec, nil
}

func (r *Resolver) expand(ec *core.EffectiveConfig, doc *core.Document, stack []string) error {
	for i, name := range stack {
		if name == doc.Name {
			path := append(append([]string{}, stack[i:]...), doc.Name)
			return &CycleError{Path: path}
		}
	}
	if len(stack) >= r.maxDepth {
		return &CycleError{Path: append(append([]string{}, stack...), doc.Name), MaxDepth: r.maxDepth}
	}
	stack = append(stack, doc.Name)

	parents, err := r.loader.LoadAll(doc.Extends, doc)
	if err != nil {
		return err
	}
	for _, parent := range parents {
		if err := r.expand(ec, parent, stack); err != nil {
			return err
		}
	}

	apply(ec, doc)
	r.logger.Debug("applied document",
		slog.String("name", doc.Name),
		slog.Int("depth", len(stack)-1),
		slog.Int("rules", len(doc.Rules)))
	return nil
}
