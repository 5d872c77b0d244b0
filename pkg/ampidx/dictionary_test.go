package ampidx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDictionary_InternIsStableAndDense(t *testing.T) {
	d := newDictionary()

	id1 := d.intern("alpha")
	id2 := d.intern("beta")
	id3 := d.intern("alpha")

	assert.Equal(t, id1, id3, "re-interning the same value returns the same id")
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, uint32(0), id1)
	assert.Equal(t, uint32(1), id2)
	assert.Equal(t, 2, d.size())
}

func TestDictionary_GetRoundTrip(t *testing.T) {
	d := newDictionary()
	id := d.intern("gamma")
	assert.Equal(t, "gamma", d.get(id))
}

func TestDictionary_GetOutOfRangeReturnsEmpty(t *testing.T) {
	d := newDictionary()
	assert.Equal(t, "", d.get(99))
}

func TestSplitURL_QueryStringTakesPriority(t *testing.T) {
	template, suffix := splitURL("https://example.com/path/to/page?x=1&y=2")
	assert.Equal(t, "https://example.com/path/to/page", template)
	assert.Equal(t, "?x=1&y=2", suffix)
}

func TestSplitURL_FallsBackToLastSlash(t *testing.T) {
	template, suffix := splitURL("https://example.com/path/to/page")
	assert.Equal(t, "https://example.com/path/to", template)
	assert.Equal(t, "/page", suffix)
}

func TestSplitURL_BareHostSplitsAtZero(t *testing.T) {
	template, suffix := splitURL("example")
	assert.Equal(t, "", template)
	assert.Equal(t, "example", suffix)
}

func TestSplitURL_Empty(t *testing.T) {
	template, suffix := splitURL("")
	assert.Equal(t, "", template)
	assert.Equal(t, "", suffix)
}

func TestURLTemplate_ExtractResolveRoundTrip(t *testing.T) {
	ut := newURLTemplate()

	id, suffix := ut.extract("https://example.com/a/b?x=1")
	assert.Equal(t, "?x=1", suffix)
	assert.Equal(t, "https://example.com/a/b?x=1", ut.resolve(id, suffix))
}

func TestURLTemplate_SharesTemplateAcrossRecords(t *testing.T) {
	ut := newURLTemplate()

	id1, _ := ut.extract("https://example.com/p?x=1")
	id2, _ := ut.extract("https://example.com/p?x=2")

	assert.Equal(t, id1, id2, "identical template portions should intern to the same id")
}
