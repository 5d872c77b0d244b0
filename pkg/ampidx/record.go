// Package ampidx implements a compact, read-mostly prefix suggestion index
// for sponsored-placement (AMP) records.
//
// An OriginalRecord carries a list of related keywords and a bundle of
// metadata (title, URLs, advertiser, category, icon). Build collapses and
// dictionary-encodes a batch of records into an immutable Index; Query then
// finds the shortest indexed key that begins with a typed prefix, subject to
// a per-key minimum-prefix admission rule, and returns at most one result.
//
// # Build
//
// Build runs in three passes fused into one: for each record, repeated
// strings (advertiser, title, category, icon, URL templates) are interned
// into dense dictionaries, the keyword list is collapsed into a small set of
// indexable keys annotated with a minimum-prefix length, and each key is
// inserted into the prefix container. First insertion wins on key collision.
//
// # Query
//
//	idx := ampidx.New()
//	idx.Build(records)
//	results, _ := idx.Query("amazo")
//
// Short queries (character count ≤ 3) are first looked up in a direct map
// that segregates short keys out of the trie entirely. When that map has no
// admitted match, and for every longer query, the patricia trie is checked
// for an exact key and then scanned over the query's subtree, picking the
// shortest key that both starts with the query and admits it under the
// key's min-prefix rule.
//
// # Immutability
//
// Once Build returns, an Index never mutates its own state again. Query is a
// pure function of the built state and may be called concurrently by many
// readers without locking.
package ampidx

import "sort"

// OriginalRecord is the caller-supplied input record (deserialization-compatible).
type OriginalRecord struct {
	Keywords       []string
	Title          string
	URL            string
	ClickURL       string
	ImpressionURL  string
	Advertiser     string
	BlockID        int32
	IABCategory    string
	IconID         string
	FullKeywords   []FullKeywordRun
}

// FullKeywordRun is one (text, repeat_count) pair of the full_keywords RLE.
type FullKeywordRun struct {
	Text  string
	Count int
}

// AmpResult is the public result assembled by the reconstructor.
type AmpResult struct {
	Title         string
	URL           string
	ClickURL      string
	ImpressionURL string
	Advertiser    string
	BlockID       int32
	IABCategory   string
	Icon          string
	FullKeyword   string
}

// RunEndEncoding stores a sequence of distinct values plus the inclusive end
// index of each run. values[i] covers logical positions (ends[i-1], ends[i]].
type RunEndEncoding struct {
	values []string
	ends   []int
}

// NewRunEndEncoding returns an empty encoding.
func NewRunEndEncoding() *RunEndEncoding {
	return &RunEndEncoding{}
}

// Add appends (value, count): value covers the next `count` logical positions.
func (r *RunEndEncoding) Add(value string, count int) {
	last := -1
	if n := len(r.ends); n > 0 {
		last = r.ends[n-1]
	}
	r.values = append(r.values, value)
	r.ends = append(r.ends, last+count)
}

// Get locates the value covering logical index k, via binary search over ends.
func (r *RunEndEncoding) Get(k int) (string, bool) {
	i := sort.Search(len(r.ends), func(i int) bool { return r.ends[i] >= k })
	if i >= len(r.ends) {
		return "", false
	}
	return r.values[i], true
}

// Len reports how many runs have been added.
func (r *RunEndEncoding) Len() int {
	return len(r.values)
}
