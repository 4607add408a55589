package catalog

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Match is a search hit.
type Match struct {
	Item     Item
	Distance int // Levenshtein distance of the best matching label; lower is better
}

// Search finds items whose id or display name in lang fuzzily matches query.
// Matching is case-insensitive and ignores diacritics. Results are ordered by
// distance, then by id. An empty query returns every item.
func (c *Catalog) Search(query, lang string) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]Match, len(c.ids))
		for i, id := range c.ids {
			out[i] = Match{Item: c.items[id]}
		}
		return out
	}

	// Each item contributes its id and its localized name as targets.
	targets := make([]string, 0, 2*len(c.ids))
	owners := make([]string, 0, 2*len(c.ids))
	for _, id := range c.ids {
		targets = append(targets, id)
		owners = append(owners, id)
		if name := c.items[id].Name(lang); name != id {
			targets = append(targets, name)
			owners = append(owners, id)
		}
	}

	best := map[string]int{}
	for _, r := range fuzzy.RankFindNormalizedFold(query, targets) {
		id := owners[r.OriginalIndex]
		if d, ok := best[id]; !ok || r.Distance < d {
			best[id] = r.Distance
		}
	}

	out := make([]Match, 0, len(best))
	for id, d := range best {
		out = append(out, Match{Item: c.items[id], Distance: d})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Item.ID < out[j].Item.ID
	})
	return out
}
