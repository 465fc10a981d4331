package compose

import (
	"sort"

	"github.com/agnivade/levenshtein"
)

// maxSuggestions bounds the near-miss names returned by Suggest.
const maxSuggestions = 3

// Suggest returns up to three names within a small edit distance of ref,
// closest first. Ties are broken alphabetically and duplicates are dropped.
func Suggest(ref string, names []string) []string {
	type candidate struct {
		name string
		dist int
	}

	limit := len(ref)/3 + 1
	seen := make(map[string]bool, len(names))
	var candidates []candidate
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if d := levenshtein.ComputeDistance(ref, name); d <= limit {
			candidates = append(candidates, candidate{name: name, dist: d})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].name < candidates[j].name
	})

	var out []string
	for i := 0; i < len(candidates) && i < maxSuggestions; i++ {
		out = append(out, candidates[i].name)
	}
	return out
}
