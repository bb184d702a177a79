package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-json"
)

// Loader loads transcripts from a directory of JSON files, each holding an
// array of transcripts. It is used to build the serialized transcript
// database.
type Loader struct {
	dir string
}

// NewLoader creates a loader for the given directory.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// LoadAll loads every *.json file in the directory into the cache.
func (l *Loader) LoadAll(c *Cache) error {
	files, err := filepath.Glob(filepath.Join(l.dir, "*.json"))
	if err != nil {
		return fmt.Errorf("glob json files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no transcript json files in %s", l.dir)
	}
	sort.Strings(files)

	for _, f := range files {
		if err := l.loadJSONFile(c, f); err != nil {
			return fmt.Errorf("load json file %s: %w", f, err)
		}
	}
	return nil
}

// loadJSONFile loads transcripts from a JSON file.
func (l *Loader) loadJSONFile(c *Cache, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var transcripts []*Transcript
	if err := json.Unmarshal(data, &transcripts); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}

	for i, t := range transcripts {
		if t.ID == "" || t.Chrom == "" || t.Start <= 0 || t.End < t.Start {
			return fmt.Errorf("transcript %d: missing id, chromosome or coordinates", i)
		}
		c.AddTranscript(t)
	}
	return nil
}
