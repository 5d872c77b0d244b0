package ampidx

import (
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// shortKeyThreshold is the character-count cutoff at or below which a collapsed
// key bypasses the trie entirely and lives only in the direct map fast path.
const shortKeyThreshold = 3

// indexValue is what the prefix container stores per collapsed key: a
// reference into the compact record store, the full-keyword reference, and
// the key's admission threshold.
type indexValue struct {
	recordIdx    int
	fullKeyword  FullKeywordRef
	minPrefixLen int
}

// Index is the built, immutable prefix suggestion index. The zero value via
// New is safe to Build once; Query may be called concurrently by any number
// of readers once Build has returned.
type Index struct {
	trie      *patricia.Trie
	shortKeys map[string]indexValue

	records []compactRecord

	titles       *dictionary
	advertisers  *dictionary
	iabCategorys *dictionary
	icons        *dictionary
	urlTemplate  *urlTemplate
	clickTmpl    *urlTemplate
	impTmpl      *urlTemplate

	fullKeywords *RunEndEncoding

	keywordCount int
}

// New returns an empty index ready for Build.
func New() *Index {
	return &Index{
		trie:         patricia.NewTrie(),
		shortKeys:    make(map[string]indexValue),
		titles:       newDictionary(),
		advertisers:  newDictionary(),
		iabCategorys: newDictionary(),
		icons:        newDictionary(),
		urlTemplate:  newURLTemplate(),
		clickTmpl:    newURLTemplate(),
		impTmpl:      newURLTemplate(),
		fullKeywords: NewRunEndEncoding(),
	}
}

// Build consumes a read-only batch of input records and populates the index.
// Build is infallible apart from a malformed record (mismatched
// full_keywords length) or dictionary-capacity overflow; either aborts the
// whole build and returns an error, leaving the index unusable.
func (idx *Index) Build(records []OriginalRecord) error {
	for _, rec := range records {
		fullKeywords, ok := idx.recordFullKeywords(rec)
		if !ok {
			return ErrFullKeywordLengthMismatch
		}

		cr := compactRecord{
			titleID:      idx.titles.intern(rec.Title),
			advertiserID: idx.advertisers.intern(rec.Advertiser),
			iabCategoryID: idx.iabCategorys.intern(rec.IABCategory),
			iconID:        idx.icons.intern(rec.IconID),
			blockID:       rec.BlockID,
		}
		cr.urlTemplateID, cr.urlSuffix = idx.urlTemplate.extract(rec.URL)
		cr.clickURLTemplateID, cr.clickURLSuffix = idx.clickTmpl.extract(rec.ClickURL)
		cr.impressionTemplateID, cr.impressionSuffix = idx.impTmpl.extract(rec.ImpressionURL)

		if idx.titles.size() >= 1<<32-1 || idx.advertisers.size() >= 1<<32-1 {
			return ErrBuildCapacityExceeded
		}

		recordIdx := len(idx.records)
		idx.records = append(idx.records, cr)

		idx.recordFullKeywordRuns(rec)

		if len(rec.Keywords) == 0 {
			continue
		}

		for _, entry := range CollapseKeywords(rec.Keywords, fullKeywords) {
			value := indexValue{
				recordIdx:    recordIdx,
				fullKeyword:  entry.FullKeyword,
				minPrefixLen: entry.MinPrefixLen,
			}
			idx.insertKey(entry.Key, value)
			idx.keywordCount++
		}
	}
	return nil
}

// recordFullKeywords expands a record's full_keywords RLE and validates its
// length against keywords, falling back to a single-run "advertiser" default
// when full_keywords is empty (matching the reconstructor's advertiser
// fallback for an absent full keyword).
func (idx *Index) recordFullKeywords(rec OriginalRecord) ([]string, bool) {
	if len(rec.FullKeywords) == 0 {
		out := make([]string, len(rec.Keywords))
		for i := range out {
			out[i] = rec.Advertiser
		}
		return out, true
	}
	return expandFullKeywords(rec.FullKeywords, len(rec.Keywords))
}

// recordFullKeywordRuns stores a record's full_keywords runs in their
// original compact RLE form, independent of the flattened per-keyword slice
// used for collapsing, so Stats can report the number of stored runs.
func (idx *Index) recordFullKeywordRuns(rec OriginalRecord) {
	if len(rec.FullKeywords) == 0 {
		idx.fullKeywords.Add(rec.Advertiser, len(rec.Keywords))
		return
	}
	for _, run := range rec.FullKeywords {
		idx.fullKeywords.Add(run.Text, run.Count)
	}
}

// insertKey inserts key into whichever backing container it belongs to,
// keeping the first inserter on collision.
func (idx *Index) insertKey(key string, value indexValue) {
	if runeCount(key) <= shortKeyThreshold {
		if _, exists := idx.shortKeys[key]; exists {
			return
		}
		idx.shortKeys[key] = value
		return
	}
	prefix := patricia.Prefix(key)
	if idx.trie.Get(prefix) != nil {
		return
	}
	idx.trie.Insert(prefix, value)
}

// Query returns 0 or 1 results for a UTF-8 prefix. Never fails: absence of a
// match is a normal empty result, not an error.
func (idx *Index) Query(prefix string) ([]AmpResult, error) {
	qlen := runeCount(prefix)

	if qlen <= shortKeyThreshold {
		if key, value, ok := idx.lookupShort(prefix, qlen); ok {
			return []AmpResult{idx.reconstruct(key, value)}, nil
		}
		// A query this short can still match a longer trie key (e.g. "am"
		// admitted by a min_prefix_len of 2 against key "amazon"); fall
		// through to the trie scan below rather than returning early.
	}

	if key, value, ok := idx.exactTrieMatch(prefix, qlen); ok {
		return []AmpResult{idx.reconstruct(key, value)}, nil
	}

	if key, value, ok := idx.shortestPrefixMatch(prefix, qlen); ok {
		return []AmpResult{idx.reconstruct(key, value)}, nil
	}

	return nil, nil
}

// lookupShort finds the shortest key in the short-key map that both starts
// with query and admits it under min_prefix_len, tie-breaking
// lexicographically among equal-length candidates.
func (idx *Index) lookupShort(query string, qlen int) (string, indexValue, bool) {
	var bestKey string
	var bestValue indexValue
	found := false
	for key, value := range idx.shortKeys {
		if !startsWith(key, query) {
			continue
		}
		if qlen < value.minPrefixLen {
			continue
		}
		if !found || len(key) < len(bestKey) || (len(key) == len(bestKey) && key < bestKey) {
			bestKey = key
			bestValue = value
			found = true
		}
	}
	return bestKey, bestValue, found
}

// exactTrieMatch checks whether query itself is an indexed trie key that
// admits this qlen.
func (idx *Index) exactTrieMatch(query string, qlen int) (string, indexValue, bool) {
	item := idx.trie.Get(patricia.Prefix(query))
	if item == nil {
		return "", indexValue{}, false
	}
	value := item.(indexValue)
	if qlen < value.minPrefixLen {
		return "", indexValue{}, false
	}
	return query, value, true
}

// shortestPrefixMatch scans every trie key in query's subtree, keeping the
// shortest (then lexicographically smallest) key that admits qlen. Scanning
// and comparing explicitly rather than trusting VisitSubtree's traversal
// order: a trie's branching order is not guaranteed to coincide with key
// length order.
func (idx *Index) shortestPrefixMatch(query string, qlen int) (string, indexValue, bool) {
	var bestValue indexValue
	var bestKey string
	found := false

	err := idx.trie.VisitSubtree(patricia.Prefix(query), func(p patricia.Prefix, item patricia.Item) error {
		key := string(p)
		if key == query {
			return nil
		}
		value := item.(indexValue)
		if qlen < value.minPrefixLen {
			return nil
		}
		if !found || len(key) < len(bestKey) || (len(key) == len(bestKey) && key < bestKey) {
			bestValue = value
			bestKey = key
			found = true
		}
		return nil
	})
	if err != nil {
		log.Errorf("ampidx: error visiting trie subtree: %v", err)
	}
	return bestKey, bestValue, found
}

// reconstruct assembles the public result for a matched index value from
// dictionaries and the compact record store. matchedKey is the collapsed key
// text that was actually found (not necessarily the queried prefix), used to
// resolve a Same full_keyword_ref.
func (idx *Index) reconstruct(matchedKey string, value indexValue) AmpResult {
	rec := idx.records[value.recordIdx]

	fullKeyword := value.fullKeyword.text
	if value.fullKeyword.kind == fullKeywordSame {
		fullKeyword = matchedKey
	}

	return AmpResult{
		Title:         idx.titles.get(rec.titleID),
		URL:           idx.urlTemplate.resolve(rec.urlTemplateID, rec.urlSuffix),
		ClickURL:      idx.clickTmpl.resolve(rec.clickURLTemplateID, rec.clickURLSuffix),
		ImpressionURL: idx.impTmpl.resolve(rec.impressionTemplateID, rec.impressionSuffix),
		Advertiser:    idx.advertisers.get(rec.advertiserID),
		BlockID:       rec.blockID,
		IABCategory:   idx.iabCategorys.get(rec.iabCategoryID),
		Icon:          idx.icons.get(rec.iconID),
		FullKeyword:   fullKeyword,
	}
}

// Stats returns diagnostic counters, keyed by name rather than a fixed
// struct so new counters can be added without breaking callers.
func (idx *Index) Stats() map[string]int {
	return map[string]int{
		"suggestions_count":    len(idx.records),
		"keyword_count":        idx.keywordCount,
		"full_keywords_count":  idx.fullKeywords.Len(),
		"advertisers_count":    idx.advertisers.size(),
		"titles_count":         idx.titles.size(),
		"iab_categories_count": idx.iabCategorys.size(),
		"icons_count":          idx.icons.size(),
		"url_templates_count":  idx.urlTemplate.dict.size() + idx.clickTmpl.dict.size() + idx.impTmpl.dict.size(),
		"cache_exact_matches":  len(idx.shortKeys),
		"trie_estimated_size":  idx.keywordCount - len(idx.shortKeys),
	}
}
