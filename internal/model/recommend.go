package model

import (
	"slices"

	"github.com/actuallystonmai/shopwiz/internal/domain"
)

const DefaultTopN = 8

// Recommend ranks every item against the first item named name and returns
// the topN best, excluding the query itself. Ties keep catalog order. An
// unknown name or a non-positive topN yields an empty result.
func Recommend(idx *Index, items []domain.CatalogItem, name string, topN int) []domain.ScoredItem {
	if topN <= 0 {
		return []domain.ScoredItem{}
	}
	q := slices.IndexFunc(items, func(it domain.CatalogItem) bool { return it.Name == name })
	if q < 0 || q >= idx.Len() {
		return []domain.ScoredItem{}
	}

	type ranked struct {
		pos   int
		score float64
	}
	all := make([]ranked, len(items))
	for i := range items {
		all[i] = ranked{pos: i, score: idx.Similarity(q, i)}
	}
	slices.SortStableFunc(all, func(a, b ranked) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		}
		return 0
	})

	out := make([]domain.ScoredItem, 0, min(topN, len(items)-1))
	for _, r := range all {
		if r.pos == q {
			continue
		}
		out = append(out, domain.ScoredItem{Item: items[r.pos], Score: r.score})
		if len(out) == topN {
			break
		}
	}
	return out
}
