// Package presets provides the bundled rule-group documents and the releases
// of the shareable configuration that reference them.
//
// Every release is kept as its own version-prefixed tree (v1, v2, v3). A group
// that exists in several releases is never collapsed into one copy; see
// Registry.Duplicates and the drift package for comparing them.
package presets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/eslintcfg/internal/dag"
	"github.com/leapstack-labs/eslintcfg/pkg/compose"
	"github.com/leapstack-labs/eslintcfg/pkg/core"
)

//go:embed data
var data embed.FS

const (
	catalogFile = "catalog.yaml"

	// Alias is the reference that names the entry of the latest release.
	// "base@<constraint>" names the newest release matching the constraint.
	Alias = "base"
)

// Release is one published version of the configuration.
type Release struct {
	Version *semver.Version
	Entry   string
}

// UnknownReleaseError reports a version constraint no release satisfies.
type UnknownReleaseError struct {
	Constraint string
	Available  []string
}

func (e *UnknownReleaseError) Error() string {
	return fmt.Sprintf("no release matches %q (available: %s)", e.Constraint, strings.Join(e.Available, ", "))
}

type catalog struct {
	Releases []struct {
		Version string `yaml:"version"`
		Entry   string `yaml:"entry"`
	} `yaml:"releases"`
}

// Registry holds a validated set of documents. It is immutable after Load and
// safe for concurrent use.
type Registry struct {
	docs     map[string]*core.Document
	names    []string
	releases []Release
	graph    *dag.Graph
}

var loadDefault = sync.OnceValues(func() (*Registry, error) {
	sub, err := fs.Sub(data, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
})

// Default returns the registry of the bundled documents.
func Default() (*Registry, error) {
	return loadDefault()
}

// Load reads every .yaml document under fsys and the release catalog at its
// root. A document's name is its path without the extension, with a trailing
// "/index" removed. Every extends reference must name a loaded document and
// the extends graph must be acyclic.
func Load(fsys fs.FS) (*Registry, error) {
	r := &Registry{docs: make(map[string]*core.Document)}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".yaml" || p == catalogFile {
			return nil
		}

		name := strings.TrimSuffix(strings.TrimSuffix(p, ".yaml"), "/index")
		doc, err := readDocument(fsys, p, name)
		if err != nil {
			return err
		}
		r.docs[name] = doc
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load presets: %w", err)
	}

	for name := range r.docs {
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)

	docs := make([]*core.Document, 0, len(r.names))
	for _, name := range r.names {
		docs = append(docs, r.docs[name])
	}
	r.graph, err = dag.FromDocuments(docs)
	if err != nil {
		return nil, fmt.Errorf("load presets: %w", err)
	}
	if hasCycle, cyclePath := r.graph.HasCycle(); hasCycle {
		return nil, fmt.Errorf("load presets: %w", &compose.CycleError{Path: cyclePath})
	}

	if err := r.loadCatalog(fsys); err != nil {
		return nil, fmt.Errorf("load presets: %w", err)
	}
	return r, nil
}

func readDocument(fsys fs.FS, p, name string) (*core.Document, error) {
	content, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return core.DecodeDocument(name, raw)
}

func (r *Registry) loadCatalog(fsys fs.FS) error {
	content, err := fs.ReadFile(fsys, catalogFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var c catalog
	if err := yaml.Unmarshal(content, &c); err != nil {
		return fmt.Errorf("%s: %w", catalogFile, err)
	}
	for _, entry := range c.Releases {
		v, err := semver.NewVersion(entry.Version)
		if err != nil {
			return fmt.Errorf("%s: release %q: %w", catalogFile, entry.Version, err)
		}
		if _, ok := r.docs[entry.Entry]; !ok {
			return fmt.Errorf("%s: release %s: unknown entry %q", catalogFile, v, entry.Entry)
		}
		r.releases = append(r.releases, Release{Version: v, Entry: entry.Entry})
	}
	sort.Slice(r.releases, func(i, j int) bool {
		return r.releases[i].Version.LessThan(r.releases[j].Version)
	})
	return nil
}

// Get returns the document with the given name.
func (r *Registry) Get(name string) (*core.Document, bool) {
	doc, ok := r.docs[name]
	return doc, ok
}

// Names returns every document name, sorted. It implements compose.Lister.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Documents returns every document in name order.
func (r *Registry) Documents() []*core.Document {
	out := make([]*core.Document, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.docs[name])
	}
	return out
}

// Lookup implements compose.Source. It accepts document names and the
// release aliases "base" and "base@<constraint>".
func (r *Registry) Lookup(ref string, _ *core.Document) (*core.Document, error) {
	if doc, ok := r.docs[ref]; ok {
		return doc, nil
	}

	switch {
	case ref == Alias:
		if len(r.releases) == 0 {
			break
		}
		return r.docs[r.Latest().Entry], nil
	case strings.HasPrefix(ref, Alias+"@"):
		rel, err := r.Select(strings.TrimPrefix(ref, Alias+"@"))
		if err != nil {
			return nil, err
		}
		return r.docs[rel.Entry], nil
	}
	return nil, fmt.Errorf("%w: %s", compose.ErrNotFound, ref)
}

// Releases returns the releases in ascending version order.
func (r *Registry) Releases() []Release {
	out := make([]Release, len(r.releases))
	copy(out, r.releases)
	return out
}

// Latest returns the newest release, or the zero Release when there is none.
func (r *Registry) Latest() Release {
	if len(r.releases) == 0 {
		return Release{}
	}
	return r.releases[len(r.releases)-1]
}

// Select returns the newest release satisfying a semver constraint such as
// "^2", "~1.0" or "<3.0.0".
func (r *Registry) Select(constraint string) (Release, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return Release{}, fmt.Errorf("release constraint %q: %w", constraint, err)
	}
	for i := len(r.releases) - 1; i >= 0; i-- {
		if c.Check(r.releases[i].Version) {
			return r.releases[i], nil
		}
	}

	available := make([]string, len(r.releases))
	for i, rel := range r.releases {
		available[i] = rel.Version.String()
	}
	return Release{}, &UnknownReleaseError{Constraint: constraint, Available: available}
}

// ReleaseOf returns the release whose tree holds the named document. The tree
// is the first path element of the name, which is the name of the release entry.
func (r *Registry) ReleaseOf(name string) (Release, bool) {
	tree, _, _ := strings.Cut(name, "/")
	for _, rel := range r.releases {
		if rel.Entry == tree {
			return rel, true
		}
	}
	return Release{}, false
}

// Graph returns the extends graph of the registry.
func (r *Registry) Graph() *dag.Graph {
	return r.graph
}

// Duplicates groups leaf documents that share a group name (the last path
// element) across release trees. Only groups with more than one document are
// returned; each list is in release order.
func (r *Registry) Duplicates() map[string][]string {
	groups := make(map[string][]string)
	for _, name := range r.names {
		if !r.docs[name].IsLeaf() {
			continue
		}
		group := path.Base(name)
		groups[group] = append(groups[group], name)
	}

	for group, names := range groups {
		if len(names) < 2 {
			delete(groups, group)
			continue
		}
		sort.SliceStable(names, func(i, j int) bool {
			return r.releaseIndex(names[i]) < r.releaseIndex(names[j])
		})
	}
	return groups
}

func (r *Registry) releaseIndex(name string) int {
	tree, _, _ := strings.Cut(name, "/")
	for i, rel := range r.releases {
		if rel.Entry == tree {
			return i
		}
	}
	return len(r.releases)
}
