package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/eslintcfg/pkg/core"
)

func TestSuggest(t *testing.T) {
	tests := []struct {
		name  string
		ref   string
		names []string
		want  []string
	}{
		{
			name:  "closest first",
			ref:   "max-dpeth",
			names: []string{"semi", "max-len", "max-depth"},
			want:  []string{"max-depth", "max-len"},
		},
		{
			name:  "duplicates dropped",
			ref:   "max-dpeth",
			names: []string{"max-depth", "max-depth"},
			want:  []string{"max-depth"},
		},
		{
			name:  "capped at three",
			ref:   "v3/cor",
			names: []string{"v3/import", "v2/core", "v1/core", "v3/base", "v3/core"},
			want:  []string{"v3/core", "v1/core", "v2/core"},
		},
		{
			name:  "ties sorted by name",
			ref:   "core/esx",
			names: []string{"core/esm", "core/es6", "core/x", "core/es5"},
			want:  []string{"core/es5", "core/es6", "core/esm"},
		},
		{
			name:  "nothing close",
			ref:   "semi",
			names: []string{"eqeqeq", "curly"},
			want:  nil,
		},
		{
			name: "no names",
			ref:  "semi",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Suggest(tt.ref, tt.names))
		})
	}
}

func TestLoader_SuggestsAcrossSources(t *testing.T) {
	first := NewMapSource(&core.Document{Name: "base"}, &core.Document{Name: "core/es6"})
	second := NewMapSource(&core.Document{Name: "core/es6"}, &core.Document{Name: "core/es5"})

	_, err := NewLoader(first, second).Load("core/esx", nil)

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, []string{"core/es5", "core/es6"}, resErr.Suggestions)
}
