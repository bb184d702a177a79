package datasource

import (
	"encoding/binary"

	"github.com/szabgab/varfish-server-worker/internal/vcf"
)

// KeyFor derives the store lookup key of a single-allele variant:
// a two-byte chromosome code, the 1-based position as big-endian uint32,
// then REF, '>' and ALT.
func KeyFor(chrom string, pos int64, ref, alt string) []byte {
	code := chromCode(chrom)
	key := make([]byte, 0, len(code)+4+len(ref)+1+len(alt))
	key = append(key, code...)
	key = binary.BigEndian.AppendUint32(key, uint32(pos))
	key = append(key, ref...)
	key = append(key, '>')
	key = append(key, alt...)
	return key
}

// KeyForVariant is KeyFor on a vcf.Variant.
func KeyForVariant(v vcf.Variant) []byte {
	return KeyFor(v.Chrom, v.Pos, v.Ref, v.Alt)
}

// chromCode maps a chromosome name to its fixed-width code ("01", "0X", "MT").
func chromCode(chrom string) string {
	chrom = vcf.NormalizeChrom(chrom)
	if len(chrom) == 1 {
		return "0" + chrom
	}
	return chrom
}
