package datasource

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/szabgab/varfish-server-worker/internal/vcf"
)

func TestKeyFor(t *testing.T) {
	tests := []struct {
		name  string
		chrom string
		pos   int64
		ref   string
		alt   string
		want  []byte
	}{
		{"autosome", "1", 100, "A", "G", []byte{'0', '1', 0, 0, 0, 100, 'A', '>', 'G'}},
		{"chr prefix", "chr1", 100, "A", "G", []byte{'0', '1', 0, 0, 0, 100, 'A', '>', 'G'}},
		{"two digit", "12", 0x01020304, "CA", "C", []byte{'1', '2', 1, 2, 3, 4, 'C', 'A', '>', 'C'}},
		{"X", "chrX", 1000, "G", "A", []byte{'0', 'X', 0, 0, 3, 232, 'G', '>', 'A'}},
		{"mito", "chrM", 150, "T", "C", []byte{'M', 'T', 0, 0, 0, 150, 'T', '>', 'C'}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeyFor(tt.chrom, tt.pos, tt.ref, tt.alt))
		})
	}
}

func TestKeyForVariant(t *testing.T) {
	v := vcf.Variant{Chrom: "M", Pos: 150, Ref: "T", Alt: "C"}
	assert.Equal(t, KeyFor("MT", 150, "T", "C"), KeyForVariant(v))
}
