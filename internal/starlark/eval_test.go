package starlark

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/eslintcfg/internal/testutil"
)

const script = `
def restricted():
    return ["isFinite", "isNaN"] + confusing_browser_globals

print("building config")

config = {
    "extends": ["./base.yaml"],
    "env": {"browser": True},
    "rules": {
        "no-restricted-globals": rule(severity.error, *restricted()),
        "max-depth": rule(severity.error, {"max": 6}),
        "semi": severity.warn,
    },
}
`

func TestEvaluator_EvalConfig(t *testing.T) {
	e := NewEvaluator(Predeclared([]string{"event"}, nil), testutil.NewTestLogger(t))

	raw, err := e.EvalConfig("config.star", []byte(script))
	require.NoError(t, err)

	assert.Equal(t, []any{"./base.yaml"}, raw["extends"])
	assert.Equal(t, map[string]any{"browser": true}, raw["env"])

	rules := raw["rules"].(map[string]any)
	assert.Equal(t, []any{"error", "isFinite", "isNaN", "event"}, rules["no-restricted-globals"])
	assert.Equal(t, []any{"error", map[string]any{"max": int64(6)}}, rules["max-depth"])
	assert.Equal(t, "warn", rules["semi"])
}

func TestEvaluator_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{name: "no config", src: "x = 1\n", wantErr: `does not assign "config"`},
		{name: "not a dict", src: "config = [1]\n", wantErr: `"config" must be a dict, got list`},
		{name: "syntax", src: "config = {\n", wantErr: "bad.star"},
		{name: "runtime", src: "config = {'rules': undefined}\n", wantErr: "undefined"},
		{name: "function value", src: "def f(): pass\nconfig = {'f': f}\n", wantErr: "unsupported value"},
		{name: "load", src: "load('other.star', 'x')\nconfig = {}\n", wantErr: "cannot load modules"},
		{name: "runaway", src: "def spin():\n    for i in range(100000000):\n        pass\nspin()\nconfig = {}\n", wantErr: "too many steps"},
	}

	e := NewEvaluator(Predeclared(nil, nil), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.EvalConfig("bad.star", []byte(tt.src))
			require.Error(t, err)

			var evalErr *EvalError
			require.ErrorAs(t, err, &evalErr)
			assert.Equal(t, "bad.star", evalErr.File)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEvaluator_Concurrent(t *testing.T) {
	e := NewEvaluator(Predeclared(nil, nil), nil)
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			raw, err := e.EvalConfig("c.star", []byte(`config = {"rules": {"semi": rule("error")}}`))
			assert.NoError(t, err)
			assert.Equal(t, map[string]any{"semi": "error"}, raw["rules"])
		}()
	}
	wg.Wait()
}
