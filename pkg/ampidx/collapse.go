package ampidx

import (
	"strings"
	"unicode/utf8"
)

// fullKeywordKind distinguishes whether a collapsed entry's display keyword
// equals its indexed key, or differs and must carry its own text.
type fullKeywordKind int

const (
	fullKeywordSame fullKeywordKind = iota
	fullKeywordDifferent
)

// FullKeywordRef is the full_keyword_ref of a CollapsedKeywordEntry: either
// Same (the full keyword equals the collapsed key) or Different(text).
type FullKeywordRef struct {
	kind fullKeywordKind
	text string
}

func sameFullKeyword() FullKeywordRef {
	return FullKeywordRef{kind: fullKeywordSame}
}

func differentFullKeyword(text string) FullKeywordRef {
	return FullKeywordRef{kind: fullKeywordDifferent, text: text}
}

// CollapsedKeywordEntry is one (key, min_prefix_len, full_keyword_ref) triple
// produced by CollapseKeywords.
type CollapsedKeywordEntry struct {
	Key          string
	MinPrefixLen int
	FullKeyword  FullKeywordRef
}

// CollapseKeywords reduces a suggestion's keyword list to the minimal set of
// indexable keys: a maximal run of one-character extensions collapses to its
// last (longest) member, tagged with the character count of the run's first
// member as the min-prefix length a user must type before that key is
// eligible to match.
//
// fullKeywords must be parallel to keywords (same length) — the expanded
// per-keyword display text, already flattened from the input's run-length
// encoding. Caller is responsible for rejecting length mismatches before
// calling this (see Index.Build).
func CollapseKeywords(keywords []string, fullKeywords []string) []CollapsedKeywordEntry {
	var out []CollapsedKeywordEntry
	i := 0
	n := len(keywords)
	for i < n {
		curr := keywords[i]
		currLen := utf8.RuneCountInString(curr)

		j := i + 1
		for j < n {
			next := keywords[j]
			if strings.HasPrefix(next, curr) &&
				utf8.RuneCountInString(next) == currLen+(j-i) {
				j++
				continue
			}
			break
		}

		var emitted string
		var emittedFull string
		if j > i+1 {
			emitted = keywords[j-1]
			emittedFull = fullKeywords[j-1]
		} else {
			emitted = curr
			emittedFull = fullKeywords[i]
		}

		var ref FullKeywordRef
		if emittedFull == emitted {
			ref = sameFullKeyword()
		} else {
			ref = differentFullKeyword(emittedFull)
		}

		out = append(out, CollapsedKeywordEntry{
			Key:          emitted,
			MinPrefixLen: currLen,
			FullKeyword:  ref,
		})
		i = j
	}
	return out
}

// expandFullKeywords flattens an input's RLE full_keywords into one text per
// logical keyword position. Returns an error-signalling false if the
// expansion's length does not match wantLen, rejecting the record rather
// than guessing at a partial mapping.
func expandFullKeywords(runs []FullKeywordRun, wantLen int) ([]string, bool) {
	out := make([]string, 0, wantLen)
	for _, r := range runs {
		for k := 0; k < r.Count; k++ {
			out = append(out, r.Text)
		}
	}
	return out, len(out) == wantLen
}
