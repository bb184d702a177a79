package cache

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/szabgab/varfish-server-worker/internal/vcf"
)

// TranscriptLoader fills a cache from some transcript source.
type TranscriptLoader interface {
	LoadAll(c *Cache) error
}

// GENCODELoader loads transcripts from a GENCODE GTF file and, optionally,
// their coding sequences from the matching pc_transcripts FASTA file.
type GENCODELoader struct {
	gtfPath   string
	fastaPath string
	overrides CanonicalOverrides
}

// NewGENCODELoader creates a loader for GENCODE GTF + FASTA files.
// fastaPath may be empty.
func NewGENCODELoader(gtfPath, fastaPath string) *GENCODELoader {
	return &GENCODELoader{gtfPath: gtfPath, fastaPath: fastaPath}
}

// SetCanonicalOverrides sets per-gene canonical transcript choices that
// replace the GTF tags.
func (l *GENCODELoader) SetCanonicalOverrides(o CanonicalOverrides) {
	l.overrides = o
}

// LoadAll parses the files and adds every transcript that has exons.
func (l *GENCODELoader) LoadAll(c *Cache) error {
	r, err := openMaybeGzip(l.gtfPath)
	if err != nil {
		return fmt.Errorf("open GTF: %w", err)
	}
	txs, err := parseGTF(r)
	r.Close()
	if err != nil {
		return fmt.Errorf("load GTF %s: %w", l.gtfPath, err)
	}

	if l.fastaPath != "" {
		r, err := openMaybeGzip(l.fastaPath)
		if err != nil {
			return fmt.Errorf("open FASTA: %w", err)
		}
		seqs, err := parseCDSFasta(r)
		r.Close()
		if err != nil {
			return fmt.Errorf("load FASTA %s: %w", l.fastaPath, err)
		}
		for _, t := range txs {
			if t.IsProteinCoding() {
				t.CDSSequence = seqs[t.ID]
			}
		}
	}

	l.overrides.apply(txs)
	for _, t := range txs {
		c.AddTranscript(t)
	}
	return nil
}

type gtfRecord struct {
	chrom   string
	feature string
	start   int64
	end     int64
	strand  int8
	attrs   map[string]string
	tags    []string
}

// parseGTF assembles transcripts from transcript, exon, CDS and codon lines.
// Transcripts are returned in file order.
func parseGTF(r io.Reader) ([]*Transcript, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var order []*Transcript
	byID := make(map[string]*Transcript)
	cds := make(map[string][2]int64)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		rec, err := parseGTFLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		id := stripVersion(rec.attrs["transcript_id"])
		if id == "" {
			continue
		}

		switch rec.feature {
		case "transcript":
			canonical := slices.Contains(rec.tags, "Ensembl_canonical") ||
				slices.Contains(rec.tags, "MANE_Select")
			t := &Transcript{
				ID:          id,
				GeneID:      stripVersion(rec.attrs["gene_id"]),
				GeneName:    rec.attrs["gene_name"],
				Chrom:       rec.chrom,
				Start:       rec.start,
				End:         rec.end,
				Strand:      rec.strand,
				Biotype:     rec.attrs["transcript_type"],
				IsCanonical: canonical,
			}
			byID[id] = t
			order = append(order, t)
		case "exon":
			t, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("line %d: exon of unknown transcript %s", lineNo, id)
			}
			t.Exons = append(t.Exons, Exon{Start: rec.start, End: rec.end})
		case "CDS", "start_codon", "stop_codon":
			// Stop codons lie outside the CDS features but belong to the
			// coding sequence.
			span, ok := cds[id]
			if !ok || rec.start < span[0] {
				span[0] = rec.start
			}
			if rec.end > span[1] {
				span[1] = rec.end
			}
			cds[id] = span
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan GTF: %w", err)
	}

	out := order[:0]
	for _, t := range order {
		if len(t.Exons) == 0 {
			continue
		}
		sort.Slice(t.Exons, func(i, j int) bool {
			if t.IsForwardStrand() {
				return t.Exons[i].Start < t.Exons[j].Start
			}
			return t.Exons[i].Start > t.Exons[j].Start
		})
		for i := range t.Exons {
			t.Exons[i].Number = i + 1
		}
		if span, ok := cds[t.ID]; ok {
			t.CDSStart, t.CDSEnd = span[0], span[1]
		}
		out = append(out, t)
	}
	return out, nil
}

func parseGTFLine(line string) (*gtfRecord, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 9 {
		return nil, fmt.Errorf("expected 9 columns, got %d", len(fields))
	}
	start, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid start %q", fields[3])
	}
	end, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid end %q", fields[4])
	}

	rec := &gtfRecord{
		chrom:   vcf.NormalizeChrom(fields[0]),
		feature: fields[2],
		start:   start,
		end:     end,
		strand:  1,
		attrs:   make(map[string]string),
	}
	if fields[6] == "-" {
		rec.strand = -1
	}

	// key "value"; key "value"; ...
	for _, part := range strings.Split(fields[8], ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), " ")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"`)
		if key == "tag" {
			rec.tags = append(rec.tags, value)
			continue
		}
		rec.attrs[key] = value
	}
	return rec, nil
}

// parseCDSFasta reads a GENCODE pc_transcripts FASTA and returns the coding
// part of each sequence by versionless transcript ID. Headers look like
//
//	>ENST00000456328.2|ENSG00000290825.1|...|UTR5:1-200|CDS:201-459|UTR3:460-1657|
//
// Records without a CDS range are skipped.
func parseCDSFasta(r io.Reader) (map[string]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	seqs := make(map[string]string)
	var (
		id       string
		from, to int
		seq      strings.Builder
	)
	flush := func() {
		if id != "" && from > 0 && to <= seq.Len() && from <= to {
			seqs[id] = strings.ToUpper(seq.String()[from-1 : to])
		}
	}

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, ">") {
			seq.WriteString(line)
			continue
		}
		flush()
		seq.Reset()
		fields := strings.Split(strings.TrimPrefix(line, ">"), "|")
		name, _, _ := strings.Cut(fields[0], " ")
		id = stripVersion(name)
		from, to = 0, 0
		for _, f := range fields[1:] {
			if rng, ok := strings.CutPrefix(f, "CDS:"); ok {
				a, b, _ := strings.Cut(rng, "-")
				from, _ = strconv.Atoi(a)
				to, _ = strconv.Atoi(b)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan FASTA: %w", err)
	}
	flush()
	return seqs, nil
}

// CanonicalOverrides maps gene symbol to its canonical transcript ID
// (without version).
type CanonicalOverrides map[string]string

// LoadCanonicalOverrides reads a tab-separated file with a header line,
// the gene symbol in column 1 and the transcript ID in column 5 (the
// Genome Nexus canonical transcript export).
func LoadCanonicalOverrides(path string) (CanonicalOverrides, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open canonical overrides: %w", err)
	}
	defer f.Close()

	o := make(CanonicalOverrides)
	sc := bufio.NewScanner(f)
	sc.Scan() // header
	for sc.Scan() {
		fields := strings.Split(sc.Text(), "\t")
		if len(fields) < 5 {
			continue
		}
		gene, tx := fields[0], fields[4]
		if gene == "" || tx == "" || tx == "nan" {
			continue
		}
		o[gene] = stripVersion(tx)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan canonical overrides: %w", err)
	}
	return o, nil
}

// apply marks the chosen transcript of each overridden gene as the only
// canonical one. Genes whose chosen transcript is absent keep their tags.
func (o CanonicalOverrides) apply(txs []*Transcript) {
	if len(o) == 0 {
		return
	}
	byGene := make(map[string][]*Transcript)
	for _, t := range txs {
		if t.GeneName != "" {
			byGene[t.GeneName] = append(byGene[t.GeneName], t)
		}
	}
	for gene, id := range o {
		group := byGene[gene]
		if !slices.ContainsFunc(group, func(t *Transcript) bool { return t.ID == id }) {
			continue
		}
		for _, t := range group {
			t.IsCanonical = t.ID == id
		}
	}
}

// openMaybeGzip opens path, decompressing it if it ends in ".gz".
func openMaybeGzip(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open gzip reader: %w", err)
	}
	return &gzipFile{Reader: gz, f: f}, nil
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	g.Reader.Close()
	return g.f.Close()
}

// stripVersion removes the version suffix from an Ensembl ID,
// e.g. "ENST00000456328.2" -> "ENST00000456328".
func stripVersion(id string) string {
	if i := strings.LastIndexByte(id, '.'); i != -1 {
		return id[:i]
	}
	return id
}
