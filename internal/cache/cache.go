package cache

import "sort"

// Cache provides access to transcripts by genomic location.
// Add transcripts, then call Build before querying; the cache is read-only
// afterwards and safe for concurrent readers.
type Cache struct {
	transcripts map[string][]*Transcript
	trees       map[string]*IntervalTree
}

// New creates a new empty cache.
func New() *Cache {
	return &Cache{
		transcripts: make(map[string][]*Transcript),
		trees:       make(map[string]*IntervalTree),
	}
}

// AddTranscript adds a transcript to the cache. It invalidates the tree
// of its chromosome until the next Build.
func (c *Cache) AddTranscript(t *Transcript) {
	c.transcripts[t.Chrom] = append(c.transcripts[t.Chrom], t)
	delete(c.trees, t.Chrom)
}

// Build creates the interval trees for all chromosomes.
func (c *Cache) Build() {
	for chrom, txs := range c.transcripts {
		if _, ok := c.trees[chrom]; !ok {
			c.trees[chrom] = BuildIntervalTree(txs)
		}
	}
}

// FindTranscripts returns transcripts overlapping [start, end] on chrom.
// Chromosomes added after the last Build fall back to a linear scan.
func (c *Cache) FindTranscripts(chrom string, start, end int64) []*Transcript {
	if tree, ok := c.trees[chrom]; ok {
		return tree.FindRange(start, end)
	}
	var result []*Transcript
	for _, t := range c.transcripts[chrom] {
		if t.Start <= end && t.End >= start {
			result = append(result, t)
		}
	}
	return result
}

// GetTranscript returns a specific transcript by ID, or nil if not found.
func (c *Cache) GetTranscript(id string) *Transcript {
	for _, transcripts := range c.transcripts {
		for _, t := range transcripts {
			if t.ID == id {
				return t
			}
		}
	}
	return nil
}

// TranscriptCount returns the total number of transcripts in the cache.
func (c *Cache) TranscriptCount() int {
	count := 0
	for _, transcripts := range c.transcripts {
		count += len(transcripts)
	}
	return count
}

// Chromosomes returns a sorted list of chromosomes in the cache.
func (c *Cache) Chromosomes() []string {
	chroms := make([]string, 0, len(c.transcripts))
	for chrom := range c.transcripts {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}

// FindTranscriptsByChrom returns all transcripts for a chromosome.
func (c *Cache) FindTranscriptsByChrom(chrom string) []*Transcript {
	return c.transcripts[chrom]
}
