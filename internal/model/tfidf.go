package model

import (
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/actuallystonmai/shopwiz/internal/domain"
)

// tokens are runs of two or more letters, digits or underscores
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// term is one non-zero entry of a row, keyed by vocabulary position.
type term struct {
	col    int
	weight float64
}

// Index holds one L2-normalised TF-IDF row per catalog position. Rows are
// stored sparse and sorted by column.
type Index struct {
	hash  uint64
	vocab []string
	idf   []float64
	rows  [][]term
}

func tokenize(text string) []string {
	words := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := words[:0]
	for _, w := range words {
		if _, stop := englishStopWords[w]; !stop {
			out = append(out, w)
		}
	}
	return out
}

// BuildIndex vectorises the Tags of items. The vocabulary comes from this
// snapshot alone. Weights are raw term counts times the smoothed inverse
// document frequency ln((1+n)/(1+df))+1, normalised per row.
func BuildIndex(items []domain.CatalogItem) *Index {
	docs := make([][]string, len(items))
	df := make(map[string]int)
	for i, it := range items {
		docs[i] = tokenize(it.Tags)
		seen := make(map[string]struct{}, len(docs[i]))
		for _, w := range docs[i] {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			df[w]++
		}
	}

	vocab := make([]string, 0, len(df))
	for w := range df {
		vocab = append(vocab, w)
	}
	slices.Sort(vocab)

	col := make(map[string]int, len(vocab))
	idf := make([]float64, len(vocab))
	n := float64(len(items))
	for i, w := range vocab {
		col[w] = i
		idf[i] = math.Log((1+n)/(1+float64(df[w]))) + 1
	}

	rows := make([][]term, len(items))
	for i, doc := range docs {
		counts := make(map[int]int, len(doc))
		for _, w := range doc {
			counts[col[w]]++
		}
		row := make([]term, 0, len(counts))
		for c, tf := range counts {
			row = append(row, term{col: c, weight: float64(tf) * idf[c]})
		}
		// Sum in column order so equal rows get bit-identical weights.
		slices.SortFunc(row, func(a, b term) int { return a.col - b.col })
		var norm float64
		for _, t := range row {
			norm += t.weight * t.weight
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range row {
				row[j].weight /= norm
			}
		}
		rows[i] = row
	}

	return &Index{vocab: vocab, idf: idf, rows: rows}
}

// Len is the number of rows.
func (x *Index) Len() int { return len(x.rows) }

// Vocabulary returns the sorted terms backing each vector dimension.
func (x *Index) Vocabulary() []string { return x.vocab }

// Dense returns row i as a vector over the full vocabulary.
func (x *Index) Dense(i int) []float64 {
	v := make([]float64, len(x.vocab))
	for _, t := range x.rows[i] {
		v[t.col] = t.weight
	}
	return v
}

// Similarity is the cosine similarity between rows i and j. A zero row is
// similar to nothing.
func (x *Index) Similarity(i, j int) float64 {
	return cosine(x.rows[i], x.rows[j])
}

// cosine merge-joins two column-sorted rows.
func cosine(a, b []term) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, na, nb float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].col == b[j].col:
			dot += a[i].weight * b[j].weight
			na += a[i].weight * a[i].weight
			nb += b[j].weight * b[j].weight
			i++
			j++
		case a[i].col < b[j].col:
			na += a[i].weight * a[i].weight
			i++
		default:
			nb += b[j].weight * b[j].weight
			j++
		}
	}
	for ; i < len(a); i++ {
		na += a[i].weight * a[i].weight
	}
	for ; j < len(b); j++ {
		nb += b[j].weight * b[j].weight
	}
	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
