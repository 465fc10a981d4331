package dag

import (
	"reflect"
	"testing"

	"github.com/leapstack-labs/eslintcfg/pkg/core"
)

func doc(name string, extends ...string) *core.Document {
	return &core.Document{Name: name, Extends: extends}
}

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := NewGraph()

	g.AddNode("entry", nil)
	g.AddNode("core", nil)
	g.AddNode("core/es6", nil)

	if g.NodeCount() != 3 {
		t.Errorf("expected 3 nodes, got %d", g.NodeCount())
	}

	if err := g.AddEdge("entry", "core"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}
	if err := g.AddEdge("core", "core/es6"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}

	if g.EdgeCount() != 2 {
		t.Errorf("expected 2 edges, got %d", g.EdgeCount())
	}
}

func TestGraph_AddEdge_UnknownDocuments(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", nil)

	if err := g.AddEdge("a", "missing"); err == nil {
		t.Error("expected error for unknown extended document")
	}
	if err := g.AddEdge("missing", "a"); err == nil {
		t.Error("expected error for unknown extending document")
	}
}

func TestFromDocuments(t *testing.T) {
	g, err := FromDocuments([]*core.Document{
		doc("entry", "core", "import"),
		doc("core", "core/es6", "core/variables"),
		doc("import"),
		doc("core/es6"),
		doc("core/variables"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := g.Extends("entry"); !reflect.DeepEqual(got, []string{"core", "import"}) {
		t.Errorf("extends order not preserved: %v", got)
	}
	if got := g.ExtendedBy("core/es6"); !reflect.DeepEqual(got, []string{"core"}) {
		t.Errorf("unexpected extended-by list: %v", got)
	}
	if node, ok := g.GetNode("core"); !ok || node.Doc == nil || node.Doc.Name != "core" {
		t.Error("expected node data to hold the document")
	}
}

func TestFromDocuments_DanglingReference(t *testing.T) {
	_, err := FromDocuments([]*core.Document{doc("entry", "missing")})
	if err == nil {
		t.Fatal("expected error for dangling extends reference")
	}
}

func TestGraph_HasCycle_NoCycle(t *testing.T) {
	g, _ := FromDocuments([]*core.Document{doc("a", "b"), doc("b", "c"), doc("c")})

	hasCycle, path := g.HasCycle()
	if hasCycle {
		t.Errorf("expected no cycle, but found: %v", path)
	}
}

func TestGraph_HasCycle_WithCycle(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", nil)
	g.AddNode("b", nil)
	g.AddNode("c", nil)

	_ = g.AddEdge("a", "b")
	_ = g.AddEdge("b", "c")
	_ = g.AddEdge("c", "a")

	hasCycle, path := g.HasCycle()
	if !hasCycle {
		t.Fatal("expected cycle to be detected")
	}
	if want := []string{"a", "b", "c", "a"}; !reflect.DeepEqual(path, want) {
		t.Errorf("expected cycle path %v, got %v", want, path)
	}
}

func TestGraph_HasCycle_SelfExtends(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", nil)
	if err := g.AddEdge("a", "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hasCycle, path := g.HasCycle()
	if !hasCycle {
		t.Fatal("expected self-extension to be a cycle")
	}
	if want := []string{"a", "a"}; !reflect.DeepEqual(path, want) {
		t.Errorf("expected cycle path %v, got %v", want, path)
	}
}

func TestGraph_TopologicalSort_Diamond(t *testing.T) {
	// entry extends left and right, both extend shared
	g, _ := FromDocuments([]*core.Document{
		doc("entry", "left", "right"),
		doc("left", "shared"),
		doc("right", "shared"),
		doc("shared"),
	})

	sorted, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("failed to sort: %v", err)
	}

	positions := make(map[string]int)
	for i, node := range sorted {
		positions[node.ID] = i
	}

	if positions["shared"] != 0 {
		t.Error("shared should be first")
	}
	if positions["entry"] != 3 {
		t.Error("entry should be last")
	}
}

func TestGraph_TopologicalSort_WithCycle(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", nil)
	g.AddNode("b", nil)
	_ = g.AddEdge("a", "b")
	_ = g.AddEdge("b", "a")

	if _, err := g.TopologicalSort(); err == nil {
		t.Error("expected error for cyclic graph")
	}
}

func TestGraph_Levels(t *testing.T) {
	g, _ := FromDocuments([]*core.Document{
		doc("entry", "core", "import"),
		doc("core", "core/es6", "core/errors"),
		doc("import", "import/style-guide"),
		doc("core/es6"),
		doc("core/errors"),
		doc("import/style-guide"),
	})

	levels, err := g.Levels()
	if err != nil {
		t.Fatalf("failed to get levels: %v", err)
	}

	want := [][]string{
		{"core/errors", "core/es6", "import/style-guide"},
		{"core", "import"},
		{"entry"},
	}
	if !reflect.DeepEqual(levels, want) {
		t.Errorf("expected levels %v, got %v", want, levels)
	}
}

func TestGraph_Dependents(t *testing.T) {
	g, _ := FromDocuments([]*core.Document{
		doc("entry", "core"),
		doc("core", "core/es6"),
		doc("core/es6"),
		doc("other"),
	})

	affected := g.Dependents([]string{"core/es6"})
	if want := []string{"core", "core/es6", "entry"}; !reflect.DeepEqual(affected, want) {
		t.Errorf("expected %v, got %v", want, affected)
	}
}

func TestGraph_Upstream(t *testing.T) {
	g, _ := FromDocuments([]*core.Document{
		doc("entry", "core", "import"),
		doc("core", "core/es6"),
		doc("import"),
		doc("core/es6"),
	})

	upstream := g.Upstream("entry")
	if want := []string{"core", "core/es6", "import"}; !reflect.DeepEqual(upstream, want) {
		t.Errorf("expected %v, got %v", want, upstream)
	}
}

func TestGraph_RootsAndLeaves(t *testing.T) {
	g, _ := FromDocuments([]*core.Document{
		doc("entry", "core", "import"),
		doc("core"),
		doc("import"),
	})

	if roots := g.Roots(); !reflect.DeepEqual(roots, []string{"entry"}) {
		t.Errorf("unexpected roots: %v", roots)
	}
	if leaves := g.Leaves(); !reflect.DeepEqual(leaves, []string{"core", "import"}) {
		t.Errorf("unexpected leaves: %v", leaves)
	}
}

func TestGraph_DuplicateEdges(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", nil)
	g.AddNode("b", nil)

	_ = g.AddEdge("a", "b")
	_ = g.AddEdge("a", "b")

	if g.EdgeCount() != 1 {
		t.Errorf("expected 1 edge (no duplicates), got %d", g.EdgeCount())
	}
}
