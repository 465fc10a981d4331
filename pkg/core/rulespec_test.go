package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseRuleSpec(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    RuleSpec
		wantErr bool
	}{
		{
			name:  "bare tag",
			input: "error",
			want:  RuleSpec{Severity: SeverityError},
		},
		{
			name:  "numeric severity",
			input: 2,
			want:  RuleSpec{Severity: SeverityError},
		},
		{
			name:  "tag only array",
			input: []any{"warn"},
			want:  RuleSpec{Severity: SeverityWarn},
		},
		{
			name:  "tag with option",
			input: []any{"error", "never"},
			want:  RuleSpec{Severity: SeverityError, Options: []any{"never"}},
		},
		{
			name:  "tag with two options",
			input: []any{"error", "double", map[string]any{"avoidEscape": true}},
			want: RuleSpec{Severity: SeverityError, Options: []any{
				"double", map[string]any{"avoidEscape": true},
			}},
		},
		{
			name:  "options normalized",
			input: []any{1, map[string]any{"max": 4}},
			want:  RuleSpec{Severity: SeverityWarn, Options: []any{map[string]any{"max": int64(4)}}},
		},
		{name: "empty array", input: []any{}, wantErr: true},
		{name: "nil", input: nil, wantErr: true},
		{name: "bad severity", input: []any{"fatal"}, wantErr: true},
		{name: "object", input: map[string]any{"severity": "error"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRuleSpec(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestRuleSpec_Value(t *testing.T) {
	assert.Equal(t, "off", NewRuleSpec(SeverityOff).Value())
	assert.Equal(t, []any{"error", "always"}, NewRuleSpec(SeverityError, "always").Value())
	// numeric severities are written back as tags
	spec, err := ParseRuleSpec([]any{2, map[string]any{"max": 6}})
	require.NoError(t, err)
	assert.Equal(t, []any{"error", map[string]any{"max": int64(6)}}, spec.Value())
}

func TestRuleSpec_WithSeverity(t *testing.T) {
	spec := NewRuleSpec(SeverityError, map[string]any{"max": 4})

	warn := spec.WithSeverity(SeverityWarn)

	assert.Equal(t, SeverityWarn, warn.Severity)
	assert.Equal(t, spec.Options, warn.Options)
	warn.Options[0].(map[string]any)["max"] = int64(10)
	assert.Equal(t, int64(4), spec.Options[0].(map[string]any)["max"])
}

func TestRuleSpec_Equal(t *testing.T) {
	a := NewRuleSpec(SeverityError, map[string]any{"max": 4})

	assert.True(t, a.Equal(NewRuleSpec(SeverityError, map[string]any{"max": int64(4)})))
	assert.False(t, a.Equal(NewRuleSpec(SeverityWarn, map[string]any{"max": 4})))
	assert.False(t, a.Equal(NewRuleSpec(SeverityError, map[string]any{"max": 5})))
	assert.False(t, a.Equal(NewRuleSpec(SeverityError)))
	assert.True(t, NewRuleSpec(SeverityOff).Equal(RuleSpec{}))
}

func TestRuleSpec_Flags(t *testing.T) {
	assert.False(t, NewRuleSpec(SeverityOff).Enabled())
	assert.True(t, NewRuleSpec(SeverityWarn).Enabled())
	assert.False(t, NewRuleSpec(SeverityError).HasOptions())
	assert.True(t, NewRuleSpec(SeverityError, "never").HasOptions())
}

func TestRuleSpec_JSON(t *testing.T) {
	var rs map[string]RuleSpec
	err := json.Unmarshal([]byte(`{"strict": ["error", "never"], "semi": 2, "no-new": "warn"}`), &rs)
	require.NoError(t, err)

	assert.Equal(t, []any{"error", "never"}, rs["strict"].Value())
	assert.Equal(t, "error", rs["semi"].Value())
	assert.Equal(t, "warn", rs["no-new"].Value())

	data, err := json.Marshal(rs["strict"])
	require.NoError(t, err)
	assert.JSONEq(t, `["error","never"]`, string(data))
	assert.Equal(t, `["error","never"]`, rs["strict"].String())
}

func TestRuleSpec_YAML(t *testing.T) {
	input := `
max-depth: [error, {max: 6}]
no-new-func: 2
`
	var rs map[string]RuleSpec
	require.NoError(t, yaml.Unmarshal([]byte(input), &rs))

	assert.Equal(t, []any{"error", map[string]any{"max": int64(6)}}, rs["max-depth"].Value())
	assert.Equal(t, "error", rs["no-new-func"].Value())

	out, err := yaml.Marshal(rs["max-depth"])
	require.NoError(t, err)
	assert.Contains(t, string(out), "error")

	err = yaml.Unmarshal([]byte("bad: [fatal]\n"), &rs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestRuleSet(t *testing.T) {
	rs, err := ParseRuleSet(map[string]any{
		"semi":        "error",
		"eqeqeq":      []any{"error", "always"},
		"no-new":      "warn",
		"no-plusplus": "off",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"eqeqeq", "no-new", "no-plusplus", "semi"}, rs.Names())
	assert.Equal(t, map[Severity]int{SeverityError: 2, SeverityWarn: 1, SeverityOff: 1}, rs.Count())

	clone := rs.Clone()
	clone["eqeqeq"].Options[0] = "smart"
	assert.Equal(t, "always", rs["eqeqeq"].Options[0])

	_, err = ParseRuleSet(map[string]any{"semi": "sometimes"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `rule "semi"`)
}
