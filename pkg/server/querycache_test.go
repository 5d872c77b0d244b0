package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncloudioj/ampidx/pkg/ampidx"
)

func buildCacheTestIndex(t *testing.T) *ampidx.Index {
	t.Helper()
	idx := ampidx.New()
	require.NoError(t, idx.Build([]ampidx.OriginalRecord{
		{Keywords: []string{"am", "ama", "amaz", "amazo", "amazon"}, Advertiser: "Amazon", Title: "Amazon", URL: "https://www.amazon.com/"},
	}))
	return idx
}

func TestQueryCache_HitReturnsSameResultAsMiss(t *testing.T) {
	idx := buildCacheTestIndex(t)
	qc := newQueryCache(idx, 16)

	miss, err := qc.Query("amazon")
	require.NoError(t, err)
	require.Len(t, miss, 1)

	hit, err := qc.Query("amazon")
	require.NoError(t, err)
	assert.Equal(t, miss, hit)
}

func TestQueryCache_NoMatchIsCachedToo(t *testing.T) {
	idx := buildCacheTestIndex(t)
	qc := newQueryCache(idx, 16)

	results, err := qc.Query("zzz")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.True(t, qc.cache.Contains("zzz"), "an empty result should be cached")

	again, err := qc.Query("zzz")
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestQueryCache_EvictsUnderPressureWithoutError(t *testing.T) {
	idx := buildCacheTestIndex(t)
	qc := newQueryCache(idx, 1)

	_, err := qc.Query("am")
	require.NoError(t, err)
	_, err = qc.Query("amazon")
	require.NoError(t, err)

	// "am" was evicted by the size-1 cache; re-querying must still work
	// correctly since Query is a pure function of the built index.
	results, err := qc.Query("am")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Amazon", results[0].Advertiser)
}
