package ampidx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullKeywordsLike(keywords []string) []string {
	out := make([]string, len(keywords))
	copy(out, keywords)
	return out
}

func TestCollapseKeywords_AmazonRun(t *testing.T) {
	keywords := []string{"am", "ama", "amaz", "amazo", "amazon"}
	entries := CollapseKeywords(keywords, fullKeywordsLike(keywords))

	require.Len(t, entries, 1)
	assert.Equal(t, "amazon", entries[0].Key)
	assert.Equal(t, 2, entries[0].MinPrefixLen)
	assert.Equal(t, sameFullKeyword(), entries[0].FullKeyword)
}

func TestCollapseKeywords_EmptyInput(t *testing.T) {
	entries := CollapseKeywords(nil, nil)
	assert.Empty(t, entries)
}

func TestCollapseKeywords_SingleKeyword(t *testing.T) {
	entries := CollapseKeywords([]string{"x"}, []string{"x"})
	require.Len(t, entries, 1)
	assert.Equal(t, "x", entries[0].Key)
	assert.Equal(t, 1, entries[0].MinPrefixLen)
}

func TestCollapseKeywords_RunOfTwo(t *testing.T) {
	entries := CollapseKeywords([]string{"ab", "abc"}, []string{"ab", "abc"})
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0].Key)
	assert.Equal(t, 2, entries[0].MinPrefixLen)
}

func TestCollapseKeywords_MultiWordRun(t *testing.T) {
	keywords := []string{"k cup", "k cups"}
	entries := CollapseKeywords(keywords, fullKeywordsLike(keywords))
	require.Len(t, entries, 1)
	assert.Equal(t, "k cups", entries[0].Key)
	assert.Equal(t, 5, entries[0].MinPrefixLen)
}

func TestCollapseKeywords_TrailingSpaceRun(t *testing.T) {
	keywords := []string{"mini ", "mini s"}
	entries := CollapseKeywords(keywords, fullKeywordsLike(keywords))
	require.Len(t, entries, 1)
	assert.Equal(t, "mini s", entries[0].Key)
	assert.Equal(t, 5, entries[0].MinPrefixLen)
}

func TestCollapseKeywords_BreaksOnNonExtension(t *testing.T) {
	keywords := []string{"ca", "cat", "dog"}
	entries := CollapseKeywords(keywords, fullKeywordsLike(keywords))
	require.Len(t, entries, 2)
	assert.Equal(t, "cat", entries[0].Key)
	assert.Equal(t, 2, entries[0].MinPrefixLen)
	assert.Equal(t, "dog", entries[1].Key)
	assert.Equal(t, 3, entries[1].MinPrefixLen)
}

func TestCollapseKeywords_DifferentFullKeyword(t *testing.T) {
	keywords := []string{"am", "ama", "amazon"}
	full := []string{"Amazon Inc", "Amazon Inc", "Amazon Inc"}
	entries := CollapseKeywords(keywords, full)
	// "amazon" is not a one-character extension of "ama", so it is its own entry.
	require.Len(t, entries, 2)
	assert.Equal(t, "amazon", entries[1].Key)
	assert.Equal(t, differentFullKeyword("Amazon Inc"), entries[1].FullKeyword)
}

func TestCollapseKeywords_UnicodeRuneCounts(t *testing.T) {
	// "café" is 4 runes but 5 bytes; the run must be measured in runes.
	keywords := []string{"café", "cafés"}
	entries := CollapseKeywords(keywords, fullKeywordsLike(keywords))
	require.Len(t, entries, 1)
	assert.Equal(t, "cafés", entries[0].Key)
	assert.Equal(t, 4, entries[0].MinPrefixLen)
}

func TestExpandFullKeywords_RunLengthExpansion(t *testing.T) {
	runs := []FullKeywordRun{{Text: "Amazon", Count: 3}, {Text: "Amazon Prime", Count: 2}}
	out, ok := expandFullKeywords(runs, 5)
	require.True(t, ok)
	assert.Equal(t, []string{"Amazon", "Amazon", "Amazon", "Amazon Prime", "Amazon Prime"}, out)
}

func TestExpandFullKeywords_LengthMismatchRejected(t *testing.T) {
	runs := []FullKeywordRun{{Text: "Amazon", Count: 2}}
	_, ok := expandFullKeywords(runs, 5)
	assert.False(t, ok)
}
