// Package source loads configuration documents from files.
//
// A FileSource answers path-like extends references ("./base.yaml",
// "../shared/.eslintrc", "/etc/lint/strict.toml"). Relative paths are
// resolved against the directory of the referencing document, or the base
// directory for entry points. A document's name is its cleaned absolute path.
package source

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/leapstack-labs/eslintcfg/internal/starlark"
	"github.com/leapstack-labs/eslintcfg/pkg/compose"
	"github.com/leapstack-labs/eslintcfg/pkg/core"
	"github.com/leapstack-labs/eslintcfg/pkg/presets"
)

// documentPattern matches the files offered as suggestions for unresolved
// references.
const documentPattern = "**/{*.yaml,*.yml,*.json,*.jsonc,*.toml,*.star,.eslintrc}"

// FileSource implements compose.Source for documents on disk.
type FileSource struct {
	baseDir string
	eval    *starlark.Evaluator
	logger  *slog.Logger
}

// NewFileSource creates a source resolving entry paths against baseDir.
// An empty baseDir means the working directory.
func NewFileSource(baseDir string, logger *slog.Logger) (*FileSource, error) {
	if baseDir == "" {
		baseDir = "."
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("base directory: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	reg, err := presets.Default()
	if err != nil {
		return nil, err
	}
	predeclared := starlark.Predeclared(presets.ConfusingBrowserGlobals, func(name string) (core.RuleSet, bool) {
		doc, ok := reg.Get(name)
		if !ok {
			return nil, false
		}
		return doc.Rules, true
	})
	return &FileSource{
		baseDir: abs,
		eval:    starlark.NewEvaluator(predeclared, logger),
		logger:  logger,
	}, nil
}

// BaseDir returns the directory entry paths are resolved against.
func (s *FileSource) BaseDir() string {
	return s.baseDir
}

// IsPathRef reports whether ref names a file rather than a registry document.
func IsPathRef(ref string) bool {
	switch {
	case strings.HasPrefix(ref, "./"), strings.HasPrefix(ref, "../"), filepath.IsAbs(ref):
		return true
	}
	_, ok := codecFor(ref)
	return ok
}

// Lookup implements compose.Source.
func (s *FileSource) Lookup(ref string, from *core.Document) (*core.Document, error) {
	if !IsPathRef(ref) {
		return nil, compose.ErrNotFound
	}

	dir := s.baseDir
	if from != nil && from.Path != "" {
		dir = filepath.Dir(from.Path)
	}
	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, ref)
	}
	return s.Open(path)
}

// Open reads the document at path.
func (s *FileSource) Open(path string) (*core.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	decode, ok := codecFor(abs)
	if !ok {
		return nil, fmt.Errorf("%s: unsupported document format", abs)
	}

	data, err := os.ReadFile(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", compose.ErrNotFound, abs)
	}
	if err != nil {
		return nil, err
	}

	raw, err := decode(s, abs, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}

	doc, err := core.DecodeDocument(abs, raw)
	if err != nil {
		return nil, err
	}
	doc.Path = abs
	s.logger.Debug("loaded document file", slog.String("path", abs), slog.Int("rules", len(doc.Rules)))
	return doc, nil
}

// Names implements compose.Lister with the document files under the base
// directory, as "./"-relative references.
func (s *FileSource) Names() []string {
	matches, err := doublestar.Glob(os.DirFS(s.baseDir), documentPattern, doublestar.WithFilesOnly())
	if err != nil {
		s.logger.Debug("listing document files failed", slog.String("dir", s.baseDir), slog.Any("error", err))
		return nil
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if strings.HasPrefix(m, "node_modules/") || strings.Contains(m, "/node_modules/") {
			continue
		}
		names = append(names, "./"+m)
	}
	sort.Strings(names)
	return names
}
