package server

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ncloudioj/ampidx/pkg/ampidx"
)

// queryCache is a read-through LRU cache over Index.Query. Query is a pure
// function of the built index, so evicting an entry never produces a wrong
// answer: a miss just re-queries and repopulates the cache.
type queryCache struct {
	index *ampidx.Index
	cache *lru.Cache[string, []ampidx.AmpResult]
}

func newQueryCache(index *ampidx.Index, size int) *queryCache {
	cache, err := lru.New[string, []ampidx.AmpResult](size)
	if err != nil {
		// size <= 0 is the only failure mode; NewServer already guards
		// against that, so this is unreachable in practice.
		cache, _ = lru.New[string, []ampidx.AmpResult](1)
	}
	return &queryCache{index: index, cache: cache}
}

func (c *queryCache) Query(prefix string) ([]ampidx.AmpResult, error) {
	if results, ok := c.cache.Get(prefix); ok {
		return results, nil
	}
	results, err := c.index.Query(prefix)
	if err != nil {
		return nil, err
	}
	c.cache.Add(prefix, results)
	return results, nil
}
