package duckdb

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/szabgab/varfish-server-worker/internal/cache"
)

// TranscriptsFile is the transcript database file name inside a release directory.
const TranscriptsFile = "txs.bin.zst"

// transcriptData is the on-disk payload of the transcript database.
type transcriptData struct {
	Release     string
	Transcripts map[string][]*cache.Transcript
}

// TranscriptDB manages the zstd-compressed, gob-serialized transcript
// database of one genome release:
//
//	{db}/{release}/txs.bin.zst
type TranscriptDB struct {
	path string
}

// NewTranscriptDB creates a transcript database handle for the given file.
func NewTranscriptDB(path string) *TranscriptDB {
	return &TranscriptDB{path: path}
}

// TranscriptDBPath returns the transcript database path for a release.
func TranscriptDBPath(dbDir, release string) string {
	return filepath.Join(dbDir, release, TranscriptsFile)
}

// Path returns the file path.
func (tdb *TranscriptDB) Path() string {
	return tdb.path
}

// Exists reports whether the database file is present.
func (tdb *TranscriptDB) Exists() bool {
	_, err := os.Stat(tdb.path)
	return err == nil
}

// Load reads serialized transcripts into the cache and builds its trees.
// It fails if the file was written for another genome release.
func (tdb *TranscriptDB) Load(c *cache.Cache, release string) error {
	f, err := os.Open(tdb.path)
	if err != nil {
		return fmt.Errorf("open transcript db: %w", err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("open zstd stream: %w", err)
	}
	defer zr.Close()

	var data transcriptData
	if err := gob.NewDecoder(zr).Decode(&data); err != nil {
		return fmt.Errorf("decode transcript db: %w", err)
	}
	if data.Release != release {
		return fmt.Errorf("transcript db %s is for release %q, want %q", tdb.path, data.Release, release)
	}

	for _, transcripts := range data.Transcripts {
		for _, t := range transcripts {
			c.AddTranscript(t)
		}
	}
	c.Build()
	return nil
}

// Write serializes all transcripts from the cache to disk.
func (tdb *TranscriptDB) Write(c *cache.Cache, release string) error {
	data := transcriptData{
		Release:     release,
		Transcripts: make(map[string][]*cache.Transcript),
	}
	for _, chrom := range c.Chromosomes() {
		data.Transcripts[chrom] = c.FindTranscriptsByChrom(chrom)
	}

	if err := os.MkdirAll(filepath.Dir(tdb.path), 0755); err != nil {
		return fmt.Errorf("create transcript db directory: %w", err)
	}
	f, err := os.Create(tdb.path)
	if err != nil {
		return fmt.Errorf("create transcript db: %w", err)
	}

	zw, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		os.Remove(tdb.path)
		return fmt.Errorf("create zstd stream: %w", err)
	}
	if err := gob.NewEncoder(zw).Encode(data); err != nil {
		zw.Close()
		f.Close()
		os.Remove(tdb.path)
		return fmt.Errorf("encode transcript db: %w", err)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("flush zstd stream: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close transcript db: %w", err)
	}
	return nil
}
