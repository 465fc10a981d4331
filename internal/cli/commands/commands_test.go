package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/eslintcfg/internal/cli/config"
	"github.com/leapstack-labs/eslintcfg/internal/cli/testutil"
	logtest "github.com/leapstack-labs/eslintcfg/internal/testutil"
	"github.com/leapstack-labs/eslintcfg/pkg/drift"
)

// testConfig returns the default configuration with the given output mode.
func testConfig(mode string) *config.Config {
	cfg := config.FromContext(context.Background())
	cfg.Output = mode
	return cfg
}

// execute runs cmd with cfg and a test logger in its context.
func execute(t *testing.T, cmd *cobra.Command, cfg *config.Config, args ...string) (string, error) {
	t.Helper()

	ctx := config.WithConfig(context.Background(), cfg)
	ctx = context.WithValue(ctx, config.LoggerKey(), logtest.NewTestLogger(t))

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

// projectConfig changes into the test project and returns a config whose
// entry is the project's local document.
func projectConfig(t *testing.T, mode string) (*config.Config, string) {
	t.Helper()
	dir := testutil.SetupTestProject(t)
	t.Chdir(dir)
	cfg := testConfig(mode)
	cfg.Entry = filepath.Join(dir, ".eslintrc.yaml")
	return cfg, dir
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewPrintCommand(), "print [document]", []string{"format", "query"}},
		{NewExplainCommand(), "explain <rule>", nil},
		{NewRulesCommand(), "rules [document]", []string{"match", "severity", "overridden"}},
		{NewListCommand(), "list", []string{"kind", "local"}},
		{NewGraphCommand(), "graph [document]", nil},
		{NewDriftCommand(), "drift [left right]", []string{"group", "details", "resolved", "fail"}},
		{NewValidateCommand(), "validate [document...]", []string{"all"}},
		{NewWatchCommand(), "watch [document]", []string{"format", "query"}},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Long, "Long should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestPrint_Preset(t *testing.T) {
	out, err := execute(t, NewPrintCommand(), testConfig("json"), "base@^1")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	rules := doc["rules"].(map[string]any)
	assert.Len(t, rules, 259)
	assert.Equal(t, []any{"error", map[string]any{"max": float64(4)}}, rules["max-depth"])
	assert.NotContains(t, doc, "extends")
}

func TestPrint_YAML(t *testing.T) {
	cfg := testConfig("json")
	cfg.Format = "yaml"
	out, err := execute(t, NewPrintCommand(), cfg, "v3/import")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Len(t, doc["rules"], 40)
	assert.Equal(t, []any{"import"}, doc["plugins"])
}

func TestPrint_Query(t *testing.T) {
	out, err := execute(t, NewPrintCommand(), testConfig("json"), "base", "-q", ".rules | length")
	require.NoError(t, err)
	assert.Equal(t, "295\n", out)

	out, err = execute(t, NewPrintCommand(), testConfig("json"), "base", "-q", `.rules["max-depth"][1].max, .env.jest`)
	require.NoError(t, err)
	assert.Equal(t, "6\ntrue\n", out)

	_, err = execute(t, NewPrintCommand(), testConfig("json"), "base", "-q", ".rules |||")
	assert.ErrorContains(t, err, "invalid query")
}

func TestPrint_LocalEntryWithOverrides(t *testing.T) {
	cfg, _ := projectConfig(t, "json")
	cfg.Disabled = []string{"curly"}
	cfg.Severity = map[string]string{"quotes": "warn"}

	out, err := execute(t, NewPrintCommand(), cfg)
	require.NoError(t, err)

	var doc struct {
		Rules map[string]any `json:"rules"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Len(t, doc.Rules, 295)
	assert.Equal(t, "error", doc.Rules["no-console"])
	assert.Equal(t, []any{"warn", "smart"}, doc.Rules["eqeqeq"])
	assert.Equal(t, "off", doc.Rules["curly"])
	assert.Equal(t, "warn", doc.Rules["quotes"].([]any)[0])
	assert.Equal(t, "double", doc.Rules["quotes"].([]any)[1])
}

func TestPrint_UnknownReference(t *testing.T) {
	_, err := execute(t, NewPrintCommand(), testConfig("json"), "v3/core/es7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `cannot resolve "v3/core/es7"`)
	assert.Contains(t, err.Error(), `"v3/core/es6"`)
}

func TestExplain(t *testing.T) {
	cfg, dir := projectConfig(t, "json")

	out, err := execute(t, NewExplainCommand(), cfg, "eqeqeq")
	require.NoError(t, err)

	var exp struct {
		Rule      string `json:"rule"`
		Effective any    `json:"effective"`
		Origins   []struct {
			Document string `json:"document"`
			Spec     any    `json:"spec"`
		} `json:"origins"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &exp))
	assert.Equal(t, "eqeqeq", exp.Rule)
	assert.Equal(t, []any{"warn", "smart"}, exp.Effective)
	require.Len(t, exp.Origins, 2)
	assert.Equal(t, "v2/core/best-practices", exp.Origins[0].Document)
	assert.Equal(t, []any{"error", "always"}, exp.Origins[0].Spec)
	assert.Equal(t, filepath.Join(dir, "shared", "team.json"), exp.Origins[1].Document)
}

func TestExplain_Markdown(t *testing.T) {
	out, err := execute(t, NewExplainCommand(), testConfig("markdown"), "max-depth")
	require.NoError(t, err)

	testutil.AssertNoANSI(t, out)
	testutil.AssertValidMarkdown(t, out)
	assert.Contains(t, out, "# max-depth")
	assert.Contains(t, out, "v2/core/stylistic")
	assert.Contains(t, out, `Effective: ["error",{"max":6}]`)
}

func TestExplain_UnknownRuleSuggests(t *testing.T) {
	_, err := execute(t, NewExplainCommand(), testConfig("json"), "max-dpeth")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `rule "max-dpeth" is not set by v3`)
	assert.Contains(t, err.Error(), `"max-depth"`)
}

func TestRules_Filters(t *testing.T) {
	out, err := execute(t, NewRulesCommand(), testConfig("json"), "v3", "--match", "import/no-*", "--severity", "off")
	require.NoError(t, err)

	var rows []struct {
		Rule     string `json:"rule"`
		Severity string `json:"severity"`
		Source   string `json:"source"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.NotEmpty(t, rows)
	for _, row := range rows {
		assert.True(t, strings.HasPrefix(row.Rule, "import/no-"), row.Rule)
		assert.Equal(t, "off", row.Severity)
		assert.True(t, strings.HasPrefix(row.Source, "v3/import/"), row.Source)
	}
}

func TestRules_Overridden(t *testing.T) {
	cfg, _ := projectConfig(t, "json")

	out, err := execute(t, NewRulesCommand(), cfg, "--overridden")
	require.NoError(t, err)

	var rows []struct {
		Rule string `json:"rule"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	var names []string
	for _, row := range rows {
		names = append(names, row.Rule)
	}
	assert.Equal(t, []string{"curly", "eqeqeq", "import/no-unused-modules", "no-console"}, names)
}

func TestRules_Errors(t *testing.T) {
	_, err := execute(t, NewRulesCommand(), testConfig("json"), "--severity", "fatal")
	assert.ErrorContains(t, err, "invalid severity")

	_, err = execute(t, NewRulesCommand(), testConfig("json"), "--match", "[")
	assert.ErrorContains(t, err, "invalid match pattern")
}

func TestRules_MarkdownTable(t *testing.T) {
	out, err := execute(t, NewRulesCommand(), testConfig("markdown"), "v3/import", "--match", "import/first")
	require.NoError(t, err)

	testutil.AssertNoANSI(t, out)
	assert.Contains(t, out, "# v3/import")
	assert.Contains(t, out, "| import/first")
	assert.Contains(t, out, "1 rules:")
}

func TestList(t *testing.T) {
	out, err := execute(t, NewListCommand(), testConfig("json"), "--kind", "entry")
	require.NoError(t, err)

	var listing struct {
		Releases []struct {
			Version string `json:"version"`
			Entry   string `json:"entry"`
			Latest  bool   `json:"latest"`
		} `json:"releases"`
		Documents []struct {
			Name    string `json:"name"`
			Kind    string `json:"kind"`
			Release string `json:"release"`
		} `json:"documents"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listing))

	require.Len(t, listing.Releases, 3)
	assert.Equal(t, "3.0.0", listing.Releases[2].Version)
	assert.True(t, listing.Releases[2].Latest)
	assert.False(t, listing.Releases[0].Latest)

	require.NotEmpty(t, listing.Documents)
	for _, doc := range listing.Documents {
		assert.Equal(t, "entry", doc.Kind)
	}
	assert.Equal(t, "v3", listing.Documents[len(listing.Documents)-1].Name)
	assert.Equal(t, "3.0.0", listing.Documents[len(listing.Documents)-1].Release)
}

func TestList_Local(t *testing.T) {
	_, dir := projectConfig(t, "json")

	out, err := execute(t, NewListCommand(), testConfig("json"), "--local")
	require.NoError(t, err)

	assert.Contains(t, out, filepath.Join(dir, "shared", "team.json"))

	_, err = execute(t, NewListCommand(), testConfig("json"), "--kind", "group")
	assert.ErrorContains(t, err, "invalid kind")
}

func TestGraph(t *testing.T) {
	out, err := execute(t, NewGraphCommand(), testConfig("json"))
	require.NoError(t, err)

	var graph struct {
		Levels []struct {
			Level     int `json:"level"`
			Documents []struct {
				Name string `json:"name"`
			} `json:"documents"`
		} `json:"levels"`
		TotalDocuments int `json:"total_documents"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &graph))
	assert.Equal(t, 29, graph.TotalDocuments)
	require.GreaterOrEqual(t, len(graph.Levels), 3)

	top := graph.Levels[len(graph.Levels)-1].Documents
	var names []string
	for _, d := range top {
		names = append(names, d.Name)
	}
	assert.Contains(t, names, "v3")
}

func TestGraph_Markdown(t *testing.T) {
	out, err := execute(t, NewGraphCommand(), testConfig("markdown"))
	require.NoError(t, err)

	testutil.AssertValidMarkdown(t, out)
	assert.Contains(t, out, "# Extends Graph")
	assert.Contains(t, out, "## Level 0 (Rule Groups)")
	assert.Contains(t, out, "- **Total Documents:** 29")
}

func TestGraph_Document(t *testing.T) {
	out, err := execute(t, NewGraphCommand(), testConfig("json"), "v1/base/strict-mode")
	require.NoError(t, err)

	var dg struct {
		Extends  []string `json:"extends"`
		Upstream []string `json:"upstream"`
		Affected []string `json:"affected"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &dg))
	assert.Empty(t, dg.Extends)
	assert.Empty(t, dg.Upstream)
	assert.Contains(t, dg.Affected, "v3/core")
	assert.Contains(t, dg.Affected, "v3")
	assert.Contains(t, dg.Affected, "v1")

	_, err = execute(t, NewGraphCommand(), testConfig("json"), "v9")
	assert.ErrorContains(t, err, "not bundled")
}

func TestDrift_Scan(t *testing.T) {
	out, err := execute(t, NewDriftCommand(), testConfig("json"))
	require.NoError(t, err)

	var reports []drift.Report
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	assert.Len(t, reports, 9)

	_, err = execute(t, NewDriftCommand(), testConfig("json"), "--fail")
	assert.ErrorIs(t, err, ErrDrift)
}

func TestDrift_GroupDetails(t *testing.T) {
	out, err := execute(t, NewDriftCommand(), testConfig("markdown"), "--group", "es6", "--details")
	require.NoError(t, err)

	assert.Contains(t, out, "v1/base/es6 -> v3/core/es6")
	assert.Contains(t, strings.ToLower(out), "changed")

	_, err = execute(t, NewDriftCommand(), testConfig("json"), "--group", "errors")
	assert.ErrorContains(t, err, `group "errors"`)
}

func TestDrift_TwoDocuments(t *testing.T) {
	out, err := execute(t, NewDriftCommand(), testConfig("json"), "v1/base/stylistic", "v2/core/stylistic")
	require.NoError(t, err)

	var reports []drift.Report
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, 16, reports[0].Count(drift.Changed))

	out, err = execute(t, NewDriftCommand(), testConfig("json"), "v3", "v3", "--resolved", "--fail")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	assert.True(t, reports[0].Empty())

	_, err = execute(t, NewDriftCommand(), testConfig("json"), "v3")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, _ := projectConfig(t, "json")

	out, err := execute(t, NewValidateCommand(), cfg)
	require.NoError(t, err)

	var results []struct {
		Ref   string `json:"ref"`
		Rules int    `json:"rules"`
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 4)
	assert.Equal(t, "v1", results[0].Ref)
	assert.Equal(t, 259, results[0].Rules)
	assert.Equal(t, 295, results[3].Rules)
	for _, res := range results {
		assert.Empty(t, res.Error)
	}
}

func TestValidate_ReportsEveryFailure(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"a.yaml": "extends: [./b.yaml]\n",
		"b.yaml": "extends: [./a.yaml]\n",
		"c.json": `{"extends": ["v3/core/es7"]}`,
	})
	t.Chdir(dir)

	out, err := execute(t, NewValidateCommand(), testConfig("markdown"), "./a.yaml", "./c.json", "--all")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extends cycle")
	assert.Contains(t, err.Error(), "v3/core/es7")
	assert.Contains(t, out, "| v3/core/es6")
}

func TestWatchedFiles(t *testing.T) {
	cfg, dir := projectConfig(t, "json")
	cmd := NewWatchCommand()
	cmd.SetContext(config.WithConfig(context.Background(), cfg))

	cc, err := NewCommandContext(cmd)
	require.NoError(t, err)
	ec, err := cc.Resolve("")
	require.NoError(t, err)

	// extended documents are applied before the document extending them
	assert.Equal(t, []string{
		filepath.Join(dir, "shared", "team.json"),
		filepath.Join(dir, ".eslintrc.yaml"),
	}, watchedFiles(ec))
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunWatch_ReprintsOnChange(t *testing.T) {
	cfg, dir := projectConfig(t, "json")
	out := &syncBuffer{}
	cmd := NewWatchCommand()
	cmd.SetOut(out)
	cmd.SetContext(config.WithConfig(context.Background(), cfg))

	cc, err := NewCommandContext(cmd)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, cc, "", `.rules.curly`) }()

	require.Eventually(t, func() bool {
		return out.String() == "\"error\"\n"
	}, 5*time.Second, 20*time.Millisecond)

	team := filepath.Join(dir, "shared", "team.json")
	require.NoError(t, os.WriteFile(team, []byte(`{"rules": {"curly": "warn"}}`), 0o644))

	require.Eventually(t, func() bool {
		return strings.HasSuffix(out.String(), "\"warn\"\n")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestRunWatch_NothingToWatch(t *testing.T) {
	errOut := &bytes.Buffer{}
	cmd := NewWatchCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(errOut)
	cmd.SetContext(config.WithConfig(context.Background(), testConfig("json")))

	cc, err := NewCommandContext(cmd)
	require.NoError(t, err)

	require.NoError(t, runWatch(context.Background(), cc, "v3", ""))
	assert.Contains(t, errOut.String(), "no local document files to watch")
}
