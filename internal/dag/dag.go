// Package dag models the extends graph between configuration documents.
// It supports cycle detection, resolution levels and change impact queries.
package dag

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/eslintcfg/pkg/core"
)

// Node represents a document in the graph.
type Node struct {
	// ID is the document name.
	ID string
	// Doc is the document itself; nil for placeholder nodes.
	Doc *core.Document
}

// Graph is a directed graph whose edges point from a document to the
// documents it extends. Edge order follows the extends list.
type Graph struct {
	nodes      map[string]*Node
	extends    map[string][]string // document -> documents it extends, in order
	extendedBy map[string][]string // document -> documents extending it
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:      make(map[string]*Node),
		extends:    make(map[string][]string),
		extendedBy: make(map[string][]string),
	}
}

// FromDocuments builds the graph of a closed set of documents.
// Every extends reference must name a document of the set.
func FromDocuments(docs []*core.Document) (*Graph, error) {
	g := NewGraph()
	for _, doc := range docs {
		g.AddNode(doc.Name, doc)
	}
	for _, doc := range docs {
		for _, ref := range doc.Extends {
			if err := g.AddEdge(doc.Name, ref); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// AddNode adds a document to the graph, replacing the data of an existing node.
func (g *Graph) AddNode(id string, doc *core.Document) {
	if node, exists := g.nodes[id]; exists {
		node.Doc = doc
		return
	}
	g.nodes[id] = &Node{ID: id, Doc: doc}
	g.extends[id] = []string{}
	g.extendedBy[id] = []string{}
}

// AddEdge records that document from extends document to.
// A document extending itself is kept so that HasCycle reports it.
func (g *Graph) AddEdge(from, to string) error {
	if _, exists := g.nodes[from]; !exists {
		return fmt.Errorf("document %q does not exist", from)
	}
	if _, exists := g.nodes[to]; !exists {
		return fmt.Errorf("document %q extends unknown document %q", from, to)
	}

	if !contains(g.extends[from], to) {
		g.extends[from] = append(g.extends[from], to)
	}
	if !contains(g.extendedBy[to], from) {
		g.extendedBy[to] = append(g.extendedBy[to], from)
	}
	return nil
}

// GetNode returns a node by ID.
func (g *Graph) GetNode(id string) (*Node, bool) {
	node, exists := g.nodes[id]
	return node, exists
}

// Extends returns the documents id extends, in extends order.
func (g *Graph) Extends(id string) []string {
	return g.extends[id]
}

// ExtendedBy returns the documents that extend id.
func (g *Graph) ExtendedBy(id string) []string {
	return g.extendedBy[id]
}

// Nodes returns all nodes sorted by ID.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, node := range g.nodes {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].ID < nodes[j].ID
	})
	return nodes
}

// NodeCount returns the number of documents in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of extends edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, refs := range g.extends {
		count += len(refs)
	}
	return count
}

// sortedIDs returns node IDs in sorted order for deterministic traversal.
func (g *Graph) sortedIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HasCycle returns true if some document transitively extends itself, along
// with the cycle path in extends direction, e.g. [a b a].
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string
	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onStack[id] = true
		stack = append(stack, id)

		for _, ref := range g.extends[id] {
			if onStack[ref] {
				for i, s := range stack {
					if s == ref {
						cyclePath = append(append([]string{}, stack[i:]...), ref)
						break
					}
				}
				return true
			}
			if !visited[ref] && dfs(ref) {
				return true
			}
		}

		stack = stack[:len(stack)-1]
		onStack[id] = false
		return false
	}

	for _, id := range g.sortedIDs() {
		if !visited[id] && dfs(id) {
			return true, cyclePath
		}
	}
	return false, nil
}

// TopologicalSort returns documents with every extended document before the
// documents extending it. Returns an error if the graph contains a cycle.
func (g *Graph) TopologicalSort() ([]*Node, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("cycle detected: %v", cyclePath)
	}

	visited := make(map[string]bool)
	var result []*Node

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, ref := range g.extends[id] {
			visit(ref)
		}
		result = append(result, g.nodes[id])
	}

	for _, id := range g.sortedIDs() {
		visit(id)
	}
	return result, nil
}

// Levels groups documents by depth. Level 0 holds leaves; a document sits one
// level above the deepest document it extends.
func (g *Graph) Levels() ([][]string, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("cycle detected: %v", cyclePath)
	}

	assigned := make(map[string]int)
	var getLevel func(id string) int
	getLevel = func(id string) int {
		if level, ok := assigned[id]; ok {
			return level
		}
		level := 0
		for _, ref := range g.extends[id] {
			if l := getLevel(ref) + 1; l > level {
				level = l
			}
		}
		assigned[id] = level
		return level
	}

	maxLevel := -1
	for id := range g.nodes {
		if level := getLevel(id); level > maxLevel {
			maxLevel = level
		}
	}

	levels := make([][]string, maxLevel+1)
	for i := range levels {
		levels[i] = []string{}
	}
	for id, level := range assigned {
		levels[level] = append(levels[level], id)
	}
	for i := range levels {
		sort.Strings(levels[i])
	}
	return levels, nil
}

// Dependents returns the changed documents and every document that extends
// one of them, directly or transitively.
func (g *Graph) Dependents(changedIDs []string) []string {
	affected := make(map[string]bool)

	var mark func(id string)
	mark = func(id string) {
		if affected[id] {
			return
		}
		affected[id] = true
		for _, parent := range g.extendedBy[id] {
			mark(parent)
		}
	}

	for _, id := range changedIDs {
		if _, exists := g.nodes[id]; exists {
			mark(id)
		}
	}
	return sortedKeys(affected)
}

// Upstream returns every document id extends, directly or transitively.
func (g *Graph) Upstream(id string) []string {
	upstream := make(map[string]bool)

	var mark func(nodeID string)
	mark = func(nodeID string) {
		for _, ref := range g.extends[nodeID] {
			if !upstream[ref] {
				upstream[ref] = true
				mark(ref)
			}
		}
	}

	mark(id)
	return sortedKeys(upstream)
}

// Roots returns documents that no other document extends.
func (g *Graph) Roots() []string {
	var roots []string
	for id := range g.nodes {
		if len(g.extendedBy[id]) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

// Leaves returns documents that extend nothing.
func (g *Graph) Leaves() []string {
	var leaves []string
	for id := range g.nodes {
		if len(g.extends[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	sort.Strings(leaves)
	return leaves
}

func sortedKeys(set map[string]bool) []string {
	result := make([]string, 0, len(set))
	for id := range set {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}

// contains checks if a slice contains a string.
func contains(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}
