// Package vcf provides VCF file parsing functionality.
package vcf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Parser reads records from a VCF file.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	header     *Header
}

// NewParser creates a new VCF parser for the given file.
// Plain, gzipped and BGZF-compressed (multi-member gzip) files are supported.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	p := &Parser{file: file}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read vcf header: %w", err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek vcf file: %w", err)
	}

	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
func NewParserFromReader(r io.Reader) (*Parser, error) {
	p := &Parser{
		reader: bufio.NewReader(r),
	}

	if err := p.parseHeader(); err != nil {
		return nil, err
	}

	return p, nil
}

// parseHeader reads the "##" lines and the "#CHROM" line.
func (p *Parser) parseHeader() error {
	h := NewHeader(nil)
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("read header: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")

		if strings.HasPrefix(line, "##") {
			h.AddMeta(line)
			continue
		}

		if strings.HasPrefix(line, "#CHROM") {
			fields := strings.Split(line, "\t")
			if len(fields) > 9 {
				h.SampleNames = fields[9:]
			}
			p.header = h
			return nil
		}

		return &ParseError{
			Line:    p.lineNumber,
			Message: "expected #CHROM header line",
		}
	}

	return &ParseError{
		Line:    p.lineNumber,
		Message: "no #CHROM header line found",
	}
}

// Next reads the next record from the VCF file.
// Returns nil, nil when there are no more records.
func (p *Parser) Next() (*Record, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		return p.parseLine(line)
	}
}

// parseLine parses a single VCF data line into a Record.
func (p *Parser) parseLine(line string) (*Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return nil, p.errorf("expected at least 8 columns, found %d", len(fields))
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, p.errorf("invalid position: %s", fields[1])
	}

	rec := &Record{
		Chrom:  fields[0],
		Pos:    pos,
		ID:     fields[2],
		Ref:    fields[3],
		Qual:   fields[5],
		Filter: fields[6],
		Info:   p.parseInfo(fields[7]),
	}
	if fields[4] != "." {
		rec.Alt = strings.Split(fields[4], ",")
	}

	nSamples := len(p.header.SampleNames)
	if nSamples == 0 {
		return rec, nil
	}
	if len(fields) != 9+nSamples {
		return nil, p.errorf("expected %d sample columns, found %d", nSamples, len(fields)-9)
	}

	rec.Format = strings.Split(fields[8], ":")
	defs := make([]FieldDef, len(rec.Format))
	for i, key := range rec.Format {
		defs[i] = p.header.Format(key)
	}

	rec.Samples = make([][]Value, nSamples)
	for i, col := range fields[9:] {
		raw := strings.Split(col, ":")
		if len(raw) > len(rec.Format) {
			return nil, p.errorf("sample %s has %d values for %d FORMAT keys",
				p.header.SampleNames[i], len(raw), len(rec.Format))
		}
		row := make([]Value, len(rec.Format))
		for j := range row {
			if j < len(raw) {
				row[j] = ParseValue(raw[j], defs[j])
			}
		}
		rec.Samples[i] = row
	}

	return rec, nil
}

// parseInfo parses the INFO column using the header's INFO definitions.
func (p *Parser) parseInfo(info string) Info {
	if info == "." || info == "" {
		return nil
	}

	var result Info
	for _, kv := range strings.Split(info, ";") {
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			result.SetFlag(key)
			continue
		}
		result.Set(key, ParseValue(val, p.header.Info(key)))
	}
	return result
}

// Header returns the parsed VCF header.
func (p *Parser) Header() *Header {
	return p.header
}

// SampleNames returns sample names from the #CHROM header line.
// Returns nil if no sample columns are present.
func (p *Parser) SampleNames() []string {
	return p.header.SampleNames
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return &ParseError{Line: p.lineNumber, Message: fmt.Sprintf(format, args...)}
}

// ParseError represents an error during VCF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}
