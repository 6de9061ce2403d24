package model

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/actuallystonmai/shopwiz/internal/catalog"
	"github.com/actuallystonmai/shopwiz/internal/domain"
	"github.com/actuallystonmai/shopwiz/internal/logging"
	"github.com/actuallystonmai/shopwiz/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// Recommender memoises the similarity index of the most recent catalog.
// The index is rebuilt only when the catalog hash changes and is published
// whole, so concurrent readers never see a partial build.
type Recommender struct {
	current atomic.Pointer[Index]
	group   singleflight.Group
}

func NewRecommender() *Recommender {
	return &Recommender{}
}

// Index returns the index for c, building it if needed.
func (r *Recommender) Index(c *catalog.Catalog) *Index {
	if idx := r.current.Load(); idx != nil && idx.hash == c.Hash() {
		return idx
	}

	key := strconv.FormatUint(c.Hash(), 16)
	v, _, _ := r.group.Do(key, func() (any, error) {
		if idx := r.current.Load(); idx != nil && idx.hash == c.Hash() {
			return idx, nil
		}
		start := time.Now()
		idx := BuildIndex(c.Items())
		idx.hash = c.Hash()
		r.current.Store(idx)

		elapsed := time.Since(start)
		metrics.IndexBuilds.Inc()
		metrics.IndexBuildDuration.Observe(elapsed.Seconds())
		logging.Info().
			Str("catalog_hash", key).
			Int("items", idx.Len()).
			Int("vocabulary", len(idx.vocab)).
			Dur("elapsed", elapsed).
			Msg("similarity index built")
		return idx, nil
	})
	return v.(*Index)
}

// Recommend runs Recommend against the cached index for c.
func (r *Recommender) Recommend(c *catalog.Catalog, name string, topN int) []domain.ScoredItem {
	start := time.Now()
	defer func() { metrics.RecommendDuration.Observe(time.Since(start).Seconds()) }()
	return Recommend(r.Index(c), c.Items(), name, topN)
}
