package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/ncloudioj/ampidx/internal/logger"
	"github.com/ncloudioj/ampidx/pkg/ampidx"
)

// jsonFullKeywordRun mirrors ampidx.FullKeywordRun's wire shape: a
// (text, repeat_count) pair.
type jsonFullKeywordRun struct {
	Text  string `json:"text"`
	Count int    `json:"repeat_count"`
}

// jsonRecord mirrors the external AMP record schema field-for-field;
// `score` is accepted and discarded, unused by the core.
type jsonRecord struct {
	Keywords      []string             `json:"keywords"`
	Title         string               `json:"title"`
	URL           string               `json:"url"`
	ClickURL      string               `json:"click_url"`
	ImpressionURL string               `json:"impression_url"`
	Score         *float64             `json:"score,omitempty"`
	FullKeywords  []jsonFullKeywordRun `json:"full_keywords,omitempty"`
	Advertiser    string               `json:"advertiser"`
	BlockID       int32                `json:"id"`
	IABCategory   string               `json:"iab_category"`
	IconID        string               `json:"icon"`
}

// Stats summarizes one Load call, mirroring the shape of the shape the
// rest of this repo reports build-time diagnostics in.
type Stats struct {
	FilesRead   int
	RecordsRead int
	BytesRead   int64
}

// Loader reads OriginalRecord batches from a directory of *.json files.
// Unlike the dictionary chunk loader this repo is grounded on, ingestion
// here is a single synchronous pass: the core index is built once, so
// there is no background goroutine, retry queue, or eviction to manage.
type Loader struct {
	dirPath string
	stats   Stats
	log     *log.Logger
}

// NewLoader returns a Loader reading *.json files from dirPath.
func NewLoader(dirPath string) *Loader {
	return &Loader{dirPath: dirPath, log: logger.New("ingest")}
}

// Load reads every *.json file in the loader's directory, in sorted
// filename order for reproducible dictionary id assignment, and returns
// the concatenated batch of input records ready for ampidx.Index.Build.
func (l *Loader) Load() ([]ampidx.OriginalRecord, error) {
	l.stats = Stats{}
	pattern := filepath.Join(l.dirPath, "*.json")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("ingest: scanning %s: %w", l.dirPath, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("ingest: no *.json files found in %s", l.dirPath)
	}
	sort.Strings(files)

	var out []ampidx.OriginalRecord
	for _, file := range files {
		records, n, err := l.loadFile(file)
		if err != nil {
			return nil, fmt.Errorf("ingest: loading %s: %w", file, err)
		}
		l.log.Debugf("loaded %d records from %s", len(records), file)
		out = append(out, records...)
		l.stats.FilesRead++
		l.stats.RecordsRead += len(records)
		l.stats.BytesRead += n
	}
	l.log.Infof("loaded %d records from %d files", l.stats.RecordsRead, l.stats.FilesRead)
	return out, nil
}

// loadFile decodes one JSON file, which may hold either a top-level array
// of records or a stream of newline-delimited record objects.
func (l *Loader) loadFile(path string) ([]ampidx.OriginalRecord, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, 0, err
	}

	dec := json.NewDecoder(f)
	tok, err := dec.Token()
	if err != nil {
		return nil, 0, err
	}

	var out []ampidx.OriginalRecord
	if delim, ok := tok.(json.Delim); ok && delim == '[' {
		for dec.More() {
			var jr jsonRecord
			if err := dec.Decode(&jr); err != nil {
				return nil, 0, err
			}
			out = append(out, toOriginalRecord(jr))
		}
		return out, info.Size(), nil
	}

	// Not a top-level array: rewind and treat as NDJSON.
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, 0, err
	}
	dec = json.NewDecoder(f)
	for {
		var jr jsonRecord
		if err := dec.Decode(&jr); err != nil {
			if err == io.EOF {
				break
			}
			return nil, 0, err
		}
		out = append(out, toOriginalRecord(jr))
	}
	return out, info.Size(), nil
}

func toOriginalRecord(jr jsonRecord) ampidx.OriginalRecord {
	runs := make([]ampidx.FullKeywordRun, len(jr.FullKeywords))
	for i, r := range jr.FullKeywords {
		runs[i] = ampidx.FullKeywordRun{Text: r.Text, Count: r.Count}
	}
	return ampidx.OriginalRecord{
		Keywords:      jr.Keywords,
		Title:         jr.Title,
		URL:           jr.URL,
		ClickURL:      jr.ClickURL,
		ImpressionURL: jr.ImpressionURL,
		Advertiser:    jr.Advertiser,
		BlockID:       jr.BlockID,
		IABCategory:   jr.IABCategory,
		IconID:        jr.IconID,
		FullKeywords:  runs,
	}
}

// Stats returns diagnostics for the most recent Load call.
func (l *Loader) Stats() Stats {
	return l.stats
}
