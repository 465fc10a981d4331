package compose

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by a Source that does not know a reference.
var ErrNotFound = errors.New("document not found")

// ResolutionError reports an extends reference that could not be loaded.
type ResolutionError struct {
	// Ref is the reference as written.
	Ref string
	// From is the name of the referencing document, empty for an entry point.
	From string
	// Suggestions lists known names close to Ref.
	Suggestions []string
	// Err is ErrNotFound or the failure reported by the source.
	Err error
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cannot resolve %q", e.Ref)
	if e.From != "" {
		fmt.Fprintf(&b, " (extended by %q)", e.From)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if len(e.Suggestions) > 0 {
		quoted := make([]string, len(e.Suggestions))
		for i, s := range e.Suggestions {
			quoted[i] = fmt.Sprintf("%q", s)
		}
		fmt.Fprintf(&b, "; did you mean %s?", strings.Join(quoted, ", "))
	}
	return b.String()
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// CycleError reports a document that extends itself, directly or transitively,
// or an extends chain nested deeper than the resolver allows.
type CycleError struct {
	// Path starts and ends with the same document, e.g. [a b a].
	// When the depth guard trips the path is the expansion stack at that point.
	Path []string
	// MaxDepth is set when the depth guard tripped. The chain need not
	// contain a cycle then.
	MaxDepth int
}

// DepthExceeded reports whether the error comes from the depth guard rather
// than a detected cycle.
func (e *CycleError) DepthExceeded() bool {
	return e.MaxDepth > 0
}

func (e *CycleError) Error() string {
	chain := strings.Join(e.Path, " -> ")
	if e.DepthExceeded() {
		return fmt.Sprintf("extends nesting deeper than %d: %s", e.MaxDepth, chain)
	}
	return "extends cycle: " + chain
}
