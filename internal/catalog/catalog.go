package catalog

import (
	"encoding/binary"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/actuallystonmai/shopwiz/internal/domain"
	"github.com/cespare/xxhash/v2"
)

const (
	minSuggestQuery = 2
	maxSuggestions  = 8
)

// Catalog is an immutable, ordered snapshot of catalog items. Every method
// that narrows or reorders the catalog returns a new slice or Catalog.
type Catalog struct {
	items []domain.CatalogItem
	hash  uint64
}

// New takes ownership of items.
func New(items []domain.CatalogItem) *Catalog {
	return &Catalog{items: items, hash: contentHash(items)}
}

func contentHash(items []domain.CatalogItem) uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, it := range items {
		// field separators keep ("ab","c") distinct from ("a","bc")
		d.WriteString(it.Name)
		d.Write([]byte{0})
		d.WriteString(it.Brand)
		d.Write([]byte{0})
		d.WriteString(it.Tags)
		d.Write([]byte{0})
		d.WriteString(it.ImageURL)
		d.Write([]byte{0})
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(it.Rating))
		d.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], uint64(it.ReviewCount))
		d.Write(buf[:])
	}
	return d.Sum64()
}

func (c *Catalog) Len() int { return len(c.items) }

// Hash identifies the catalog content. Equal catalogs hash equal.
func (c *Catalog) Hash() uint64 { return c.hash }

// Items returns the underlying items. Callers must not modify them.
func (c *Catalog) Items() []domain.CatalogItem { return c.items }

// Lookup returns the position of the first item named name.
func (c *Catalog) Lookup(name string) (int, bool) {
	for i := range c.items {
		if c.items[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// Head returns up to n leading items.
func (c *Catalog) Head(n int) []domain.CatalogItem {
	n = max(0, min(n, len(c.items)))
	return slices.Clone(c.items[:n])
}

// Sample returns n distinct items picked at random.
func (c *Catalog) Sample(rng *rand.Rand, n int) []domain.CatalogItem {
	n = max(0, min(n, len(c.items)))
	perm := rng.Perm(len(c.items))[:n]
	out := make([]domain.CatalogItem, n)
	for i, p := range perm {
		out[i] = c.items[p]
	}
	return out
}

// Suggest returns up to 8 names containing q, case-insensitively.
func (c *Catalog) Suggest(q string) []string {
	q = strings.ToLower(strings.TrimSpace(q))
	if utf8.RuneCountInString(q) < minSuggestQuery {
		return []string{}
	}
	out := []string{}
	for _, it := range c.items {
		if strings.Contains(strings.ToLower(it.Name), q) {
			out = append(out, it.Name)
			if len(out) == maxSuggestions {
				break
			}
		}
	}
	return out
}

// Filter keeps items whose tags contain category, case-insensitively.
// An empty category keeps everything.
func (c *Catalog) Filter(category string) []domain.CatalogItem {
	if category == "" {
		return slices.Clone(c.items)
	}
	needle := strings.ToLower(category)
	var out []domain.CatalogItem
	for _, it := range c.items {
		if strings.Contains(strings.ToLower(it.Tags), needle) {
			out = append(out, it)
		}
	}
	return out
}

// Named returns, in catalog order, every item whose name is in names.
func (c *Catalog) Named(names []string) []domain.CatalogItem {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	var out []domain.CatalogItem
	for _, it := range c.items {
		if _, ok := set[it.Name]; ok {
			out = append(out, it)
		}
	}
	return out
}

// SortByRating orders items by rating, highest first. Equal ratings keep
// their relative order.
func SortByRating(items []domain.CatalogItem) {
	slices.SortStableFunc(items, func(a, b domain.CatalogItem) int {
		switch {
		case a.Rating > b.Rating:
			return -1
		case a.Rating < b.Rating:
			return 1
		}
		return 0
	})
}

// Page slices items into 1-based pages of perPage and returns the page
// along with the total page count.
func Page(items []domain.CatalogItem, page, perPage int) ([]domain.CatalogItem, int) {
	if perPage <= 0 {
		return nil, 0
	}
	pages := (len(items) + perPage - 1) / perPage
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(items) {
		return []domain.CatalogItem{}, pages
	}
	end := min(start+perPage, len(items))
	return items[start:end], pages
}
