// Package cache holds the in-memory transcript models used for effect prediction.
package cache

// Transcript represents a specific gene isoform.
type Transcript struct {
	ID          string // Transcript accession (e.g., ENST00000311936.8, NM_004985.5)
	GeneID      string // Parent gene ID (HGNC or Ensembl)
	GeneName    string // Parent gene symbol
	Chrom       string // Chromosome, without "chr" prefix
	Start       int64  // Transcript start (1-based)
	End         int64  // Transcript end (1-based, inclusive)
	Strand      int8   // +1 or -1
	Biotype     string // Transcript biotype
	IsCanonical bool   // Ensembl canonical / MANE Select flag
	Exons       []Exon // Exons in transcript order (5' to 3')
	CDSStart    int64  // Lowest genomic CDS coordinate (1-based), 0 if non-coding
	CDSEnd      int64  // Highest genomic CDS coordinate (1-based), 0 if non-coding
	CDSSequence string // Coding sequence in transcript orientation, may be empty
}

// Exon represents a single exon within a transcript.
type Exon struct {
	Number int   // Exon number in transcript order (1-based)
	Start  int64 // Genomic start (1-based)
	End    int64 // Genomic end (1-based, inclusive)
}

// IsProteinCoding returns true if the transcript has a coding sequence.
func (t *Transcript) IsProteinCoding() bool {
	return t.CDSStart > 0 && t.CDSEnd > 0
}

// IsForwardStrand returns true if the transcript is on the forward strand.
func (t *Transcript) IsForwardStrand() bool {
	return t.Strand >= 0
}

// Contains returns true if the given position is within the transcript boundaries.
func (t *Transcript) Contains(pos int64) bool {
	return pos >= t.Start && pos <= t.End
}

// ContainsCDS returns true if the given position is within the CDS boundaries.
func (t *Transcript) ContainsCDS(pos int64) bool {
	return t.IsProteinCoding() && pos >= t.CDSStart && pos <= t.CDSEnd
}

// FindExon returns the exon containing pos, or nil if pos is intronic or
// outside the transcript.
func (t *Transcript) FindExon(pos int64) *Exon {
	for i := range t.Exons {
		if e := &t.Exons[i]; pos >= e.Start && pos <= e.End {
			return e
		}
	}
	return nil
}

// Intron describes the intron containing a position.
type Intron struct {
	Number int   // Intron number in transcript order (1-based)
	Start  int64 // First intronic base (genomic)
	End    int64 // Last intronic base (genomic)
}

// FindIntron returns the intron containing pos, or nil.
func (t *Transcript) FindIntron(pos int64) *Intron {
	for i := 0; i+1 < len(t.Exons); i++ {
		a, b := t.Exons[i], t.Exons[i+1]
		lo, hi := a.End+1, b.Start-1
		if !t.IsForwardStrand() {
			lo, hi = b.End+1, a.Start-1
		}
		if pos >= lo && pos <= hi {
			return &Intron{Number: i + 1, Start: lo, End: hi}
		}
	}
	return nil
}

// CDSOffset returns the 1-based position of pos within the coding sequence,
// or 0 if pos is not in a coding exon.
func (t *Transcript) CDSOffset(pos int64) int64 {
	if !t.ContainsCDS(pos) || t.FindExon(pos) == nil {
		return 0
	}
	var offset int64
	for _, e := range t.Exons {
		lo, hi := max(e.Start, t.CDSStart), min(e.End, t.CDSEnd)
		if lo > hi {
			continue
		}
		if pos >= lo && pos <= hi {
			if t.IsForwardStrand() {
				return offset + pos - lo + 1
			}
			return offset + hi - pos + 1
		}
		offset += hi - lo + 1
	}
	return 0
}

// CDSLength returns the number of coding bases.
func (t *Transcript) CDSLength() int64 {
	var n int64
	for _, e := range t.Exons {
		lo, hi := max(e.Start, t.CDSStart), min(e.End, t.CDSEnd)
		if lo <= hi {
			n += hi - lo + 1
		}
	}
	return n
}
