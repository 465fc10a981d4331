// Package drift reports how a rule group diverged between releases.
//
// The bundled releases keep their own copy of every group. Compare shows what
// changed between two copies; Scan walks every group present in more than one
// release.
package drift

import (
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/leapstack-labs/eslintcfg/pkg/core"
	"github.com/leapstack-labs/eslintcfg/pkg/presets"
)

// ChangeKind classifies a rule difference.
type ChangeKind string

// Change kinds.
const (
	Added   ChangeKind = "added"
	Removed ChangeKind = "removed"
	Changed ChangeKind = "changed"
)

// Change is one rule that differs between two documents.
type Change struct {
	Rule string     `json:"rule"`
	Kind ChangeKind `json:"kind"`
	// Left is nil for added rules.
	Left *core.RuleSpec `json:"left,omitempty"`
	// Right is nil for removed rules.
	Right *core.RuleSpec `json:"right,omitempty"`
}

// SeverityChanged reports whether both sides exist with different severities.
func (c Change) SeverityChanged() bool {
	return c.Left != nil && c.Right != nil && c.Left.Severity != c.Right.Severity
}

// Diffs returns a character diff between the JSON forms of both sides.
func (c Change) Diffs() []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(specText(c.Left), specText(c.Right), false)
	return dmp.DiffCleanupSemantic(diffs)
}

// Diff renders Diffs inline, deletions as [-text-] and insertions as {+text+}.
func (c Change) Diff() string {
	var b strings.Builder
	for _, d := range c.Diffs() {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

func specText(spec *core.RuleSpec) string {
	if spec == nil {
		return ""
	}
	return spec.String()
}

// Report is the comparison of two copies of a group.
type Report struct {
	Group   string   `json:"group"`
	Left    string   `json:"left"`
	Right   string   `json:"right"`
	Changes []Change `json:"changes"`
}

// Empty reports whether both documents set the same rules to the same values.
func (r Report) Empty() bool {
	return len(r.Changes) == 0
}

// Count returns the number of changes of a kind.
func (r Report) Count(kind ChangeKind) int {
	n := 0
	for _, c := range r.Changes {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// Compare lists the rules of right that differ from left, sorted by rule.
// Only the rules of the two documents are compared, not what they extend.
func Compare(left, right *core.Document) Report {
	report := Report{Left: left.Name, Right: right.Name, Changes: []Change{}}

	for _, name := range left.Rules.Names() {
		l := left.Rules[name]
		r, ok := right.Rules[name]
		switch {
		case !ok:
			report.Changes = append(report.Changes, Change{Rule: name, Kind: Removed, Left: &l})
		case !l.Equal(r):
			report.Changes = append(report.Changes, Change{Rule: name, Kind: Changed, Left: &l, Right: &r})
		}
	}
	for _, name := range right.Rules.Names() {
		if _, ok := left.Rules[name]; ok {
			continue
		}
		r := right.Rules[name]
		report.Changes = append(report.Changes, Change{Rule: name, Kind: Added, Right: &r})
	}

	sort.SliceStable(report.Changes, func(i, j int) bool {
		return report.Changes[i].Rule < report.Changes[j].Rule
	})
	return report
}

// Scan compares consecutive releases of every duplicated group in reg.
// Reports are ordered by group, then by release.
func Scan(reg *presets.Registry) []Report {
	dups := reg.Duplicates()
	groups := make([]string, 0, len(dups))
	for group := range dups {
		groups = append(groups, group)
	}
	sort.Strings(groups)

	var reports []Report
	for _, group := range groups {
		names := dups[group]
		for i := 1; i < len(names); i++ {
			left, _ := reg.Get(names[i-1])
			right, _ := reg.Get(names[i])
			report := Compare(left, right)
			report.Group = group
			reports = append(reports, report)
		}
	}
	return reports
}
