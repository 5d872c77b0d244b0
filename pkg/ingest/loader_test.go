package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoader_LoadArrayFile(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "a.json", `[
		{"keywords":["am","ama","amazon"],"title":"Amazon","url":"https://amazon.example/?x=1","advertiser":"Amazon","id":1,"iab_category":"Shopping","icon":"icon-1"}
	]`)

	l := NewLoader(dir)
	records, err := l.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Amazon", records[0].Title)
	assert.EqualValues(t, 1, records[0].BlockID)
	assert.Equal(t, 1, l.Stats().FilesRead)
	assert.Equal(t, 1, l.Stats().RecordsRead)
}

func TestLoader_LoadNDJSONFile(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "b.json",
		"{\"keywords\":[\"x\"],\"title\":\"X\",\"advertiser\":\"X Co\",\"id\":2}\n"+
			"{\"keywords\":[\"y\"],\"title\":\"Y\",\"advertiser\":\"Y Co\",\"id\":3}\n")

	l := NewLoader(dir)
	records, err := l.Load()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "X", records[0].Title)
	assert.Equal(t, "Y", records[1].Title)
}

func TestLoader_MultipleFilesSortedOrder(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "2.json", `[{"keywords":["b"],"title":"B","advertiser":"B","id":2}]`)
	writeJSON(t, dir, "1.json", `[{"keywords":["a"],"title":"A","advertiser":"A","id":1}]`)

	l := NewLoader(dir)
	records, err := l.Load()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].Title)
	assert.Equal(t, "B", records[1].Title)
}

func TestLoader_FullKeywordsRunLengthParsed(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "a.json", `[
		{"keywords":["am","ama","amazon"],"title":"Amazon","advertiser":"Amazon","id":1,
		 "full_keywords":[{"text":"Amazon Prime","repeat_count":3}]}
	]`)

	l := NewLoader(dir)
	records, err := l.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Len(t, records[0].FullKeywords, 1)
	assert.Equal(t, "Amazon Prime", records[0].FullKeywords[0].Text)
	assert.Equal(t, 3, records[0].FullKeywords[0].Count)
}

func TestLoader_NoFilesReturnsError(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader(dir)
	_, err := l.Load()
	assert.Error(t, err)
}
