// Package output writes decomposed, annotated records as VCF.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/hts/bgzf"

	"github.com/szabgab/varfish-server-worker/internal/vcf"
)

// VCFWriter writes a VCF header followed by records, one line each.
type VCFWriter struct {
	w       *bufio.Writer
	closers []io.Closer // closed in order after flushing
	line    strings.Builder
}

// NewVCFWriter creates a writer on w. Close flushes but does not close w.
func NewVCFWriter(w io.Writer) *VCFWriter {
	return &VCFWriter{w: bufio.NewWriter(w)}
}

// Create opens path for writing. Paths ending in ".gz" are written as BGZF.
func Create(path string) (*VCFWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	if !strings.HasSuffix(path, ".gz") {
		vw := NewVCFWriter(f)
		vw.closers = []io.Closer{f}
		return vw, nil
	}
	bg := bgzf.NewWriter(f, 1)
	vw := NewVCFWriter(bg)
	vw.closers = []io.Closer{bg, f}
	return vw, nil
}

// WriteHeader writes the "##" meta lines and the "#CHROM" line.
func (vw *VCFWriter) WriteHeader(h *vcf.Header) error {
	for _, line := range h.Meta {
		if _, err := vw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	_, err := vw.w.WriteString(h.ColumnLine() + "\n")
	return err
}

// WriteRecord writes one record. INFO and FORMAT keep the order in which
// they were built.
func (vw *VCFWriter) WriteRecord(r *vcf.Record) error {
	lb := &vw.line
	lb.Reset()

	lb.WriteString(r.Chrom)
	lb.WriteByte('\t')
	lb.WriteString(strconv.FormatInt(r.Pos, 10))
	lb.WriteByte('\t')
	lb.WriteString(orDot(r.ID))
	lb.WriteByte('\t')
	lb.WriteString(r.Ref)
	lb.WriteByte('\t')
	lb.WriteString(orDot(strings.Join(r.Alt, ",")))
	lb.WriteByte('\t')
	lb.WriteString(orDot(r.Qual))
	lb.WriteByte('\t')
	lb.WriteString(orDot(r.Filter))
	lb.WriteByte('\t')
	writeInfo(lb, r.Info)

	if len(r.Format) > 0 {
		lb.WriteByte('\t')
		lb.WriteString(strings.Join(r.Format, ":"))
		for _, row := range r.Samples {
			lb.WriteByte('\t')
			for i, v := range row {
				if i > 0 {
					lb.WriteByte(':')
				}
				lb.WriteString(v.String())
			}
		}
	}
	lb.WriteByte('\n')

	_, err := vw.w.WriteString(lb.String())
	return err
}

// Flush writes buffered data to the underlying writer.
func (vw *VCFWriter) Flush() error {
	return vw.w.Flush()
}

// Close flushes and closes the files opened by Create.
func (vw *VCFWriter) Close() error {
	err := vw.w.Flush()
	for _, c := range vw.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func writeInfo(lb *strings.Builder, info vcf.Info) {
	if len(info) == 0 {
		lb.WriteByte('.')
		return
	}
	for i, f := range info {
		if i > 0 {
			lb.WriteByte(';')
		}
		lb.WriteString(f.Key)
		if !f.Flag {
			lb.WriteByte('=')
			lb.WriteString(f.Value.String())
		}
	}
}

func orDot(s string) string {
	if s == "" {
		return "."
	}
	return s
}
