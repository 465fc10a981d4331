package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// codec decodes a document file into a raw configuration object.
type codec func(s *FileSource, path string, data []byte) (map[string]any, error)

// codecFor selects the codec for a file name.
func codecFor(path string) (codec, bool) {
	switch base := filepath.Base(path); {
	case base == "package.json":
		return decodePackageJSON, true
	case base == ".eslintrc":
		return decodeEslintrc, true
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return decodeYAML, true
	case ".json", ".jsonc":
		return decodeJSON, true
	case ".toml":
		return decodeTOML, true
	case ".star":
		return decodeStarlark, true
	}
	return nil, false
}

func decodeYAML(_ *FileSource, _ string, data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// decodeJSON accepts comments and trailing commas, as ESLint does.
func decodeJSON(_ *FileSource, _ string, data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// decodeEslintrc reads a legacy .eslintrc file, which may hold JSON or YAML.
func decodeEslintrc(s *FileSource, path string, data []byte) (map[string]any, error) {
	raw, jsonErr := decodeJSON(s, path, data)
	if jsonErr == nil {
		return raw, nil
	}
	raw, yamlErr := decodeYAML(s, path, data)
	if yamlErr != nil {
		return nil, errors.Join(jsonErr, yamlErr)
	}
	return raw, nil
}

func decodeTOML(_ *FileSource, _ string, data []byte) (map[string]any, error) {
	raw := map[string]any{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func decodeStarlark(s *FileSource, path string, data []byte) (map[string]any, error) {
	return s.eval.EvalConfig(path, data)
}

// decodePackageJSON reads the eslintConfig key of a package manifest.
func decodePackageJSON(s *FileSource, path string, data []byte) (map[string]any, error) {
	manifest, err := decodeJSON(s, path, data)
	if err != nil {
		return nil, err
	}
	cfg, ok := manifest["eslintConfig"]
	if !ok {
		return nil, errors.New("package.json has no eslintConfig")
	}
	raw, ok := cfg.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("eslintConfig must be an object, got %T", cfg)
	}
	return raw, nil
}
