package backends

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/quantmind-br/appcenter/internal/core"
)

// MaxSuggestions caps the fuzzy suggestions returned by Find
const MaxSuggestions = 5

// Find locates packages by exact id, then by case-insensitive display
// name. When nothing matches it returns up to MaxSuggestions ids that
// fuzzy-match the query.
func Find(pkgs []core.Package, query string) (matches []core.Package, suggestions []string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	for _, p := range pkgs {
		if p.ID == query {
			matches = append(matches, p)
		}
	}
	if len(matches) > 0 {
		return matches, nil
	}

	for _, p := range pkgs {
		if strings.EqualFold(p.Name, query) {
			matches = append(matches, p)
		}
	}
	if len(matches) > 0 {
		return matches, nil
	}

	return nil, suggest(pkgs, query)
}

func suggest(pkgs []core.Package, query string) []string {
	best := make(map[string]int)
	for _, p := range pkgs {
		for _, target := range []string{p.ID, p.Name} {
			if target == "" || !fuzzy.MatchNormalizedFold(query, target) {
				continue
			}
			dist := fuzzy.RankMatchNormalizedFold(query, target)
			if cur, ok := best[p.ID]; !ok || dist < cur {
				best[p.ID] = dist
			}
		}
	}

	ids := make([]string, 0, len(best))
	for id := range best {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if best[ids[i]] != best[ids[j]] {
			return best[ids[i]] < best[ids[j]]
		}
		return ids[i] < ids[j]
	})

	if len(ids) > MaxSuggestions {
		ids = ids[:MaxSuggestions]
	}
	return ids
}
