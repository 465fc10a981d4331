package compose

import (
	"errors"
	"sort"

	"github.com/leapstack-labs/eslintcfg/pkg/core"
)

// Source resolves extends references to documents.
type Source interface {
	// Lookup returns the document named by ref. from is the referencing
	// document and may be nil. An unknown reference returns an error
	// wrapping ErrNotFound.
	Lookup(ref string, from *core.Document) (*core.Document, error)
}

// Lister is implemented by sources that can enumerate their documents.
type Lister interface {
	Names() []string
}

// Loader resolves references against an ordered list of sources.
// The first source that knows a reference wins.
type Loader struct {
	sources []Source
}

// NewLoader creates a loader over the given sources.
func NewLoader(sources ...Source) *Loader {
	return &Loader{sources: sources}
}

// Sources returns the sources in lookup order.
func (l *Loader) Sources() []Source {
	return l.sources
}

// Load resolves a single reference.
func (l *Loader) Load(ref string, from *core.Document) (*core.Document, error) {
	for _, src := range l.sources {
		doc, err := src.Lookup(ref, from)
		if err == nil {
			return doc, nil
		}
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return nil, &ResolutionError{Ref: ref, From: nameOf(from), Err: err}
	}
	return nil, &ResolutionError{
		Ref:         ref,
		From:        nameOf(from),
		Suggestions: l.suggest(ref),
		Err:         ErrNotFound,
	}
}

// LoadAll resolves refs in order. The result has the same length and order as
// refs; the first unresolved reference fails the whole call.
func (l *Loader) LoadAll(refs []string, from *core.Document) ([]*core.Document, error) {
	docs := make([]*core.Document, 0, len(refs))
	for _, ref := range refs {
		doc, err := l.Load(ref, from)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// suggest returns the names known to the listing sources that are closest to ref.
func (l *Loader) suggest(ref string) []string {
	var names []string
	for _, src := range l.sources {
		if lister, ok := src.(Lister); ok {
			names = append(names, lister.Names()...)
		}
	}
	return Suggest(ref, names)
}

func nameOf(doc *core.Document) string {
	if doc == nil {
		return ""
	}
	return doc.Name
}

// MapSource is an in-memory Source keyed by document name.
type MapSource map[string]*core.Document

// NewMapSource indexes documents by name.
func NewMapSource(docs ...*core.Document) MapSource {
	m := make(MapSource, len(docs))
	for _, doc := range docs {
		m[doc.Name] = doc
	}
	return m
}

// Lookup implements Source.
func (m MapSource) Lookup(ref string, _ *core.Document) (*core.Document, error) {
	if doc, ok := m[ref]; ok {
		return doc, nil
	}
	return nil, ErrNotFound
}

// Names implements Lister.
func (m MapSource) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
