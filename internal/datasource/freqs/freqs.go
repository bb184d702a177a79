// Package freqs encodes and decodes population frequency records as stored
// in the frequency database and writes them to INFO.
//
// Values are sequences of big-endian uint32 counts:
//
//	autosomal:     exomes(an, hom, het) genomes(an, hom, het)
//	gonosomal:     exomes(an, hom, het, hemi) genomes(an, hom, het, hemi)
//	mitochondrial: helix(an, hom, het) gnomad_mtdna(an, hom, het)
package freqs

import (
	"encoding/binary"
	"fmt"

	"github.com/szabgab/varfish-server-worker/internal/vcf"
)

// Counts are allele counts of one cohort.
type Counts struct {
	AN   uint32 // number of alleles
	Hom  uint32 // homozygous (or homoplasmic) carriers
	Het  uint32 // heterozygous (or heteroplasmic) carriers
	Hemi uint32 // hemizygous carriers, gonosomes only
}

func (c Counts) annotate(info *vcf.Info, prefix string, hemi bool) {
	info.Set(prefix+"_an", vcf.Int(int(c.AN)))
	info.Set(prefix+"_hom", vcf.Int(int(c.Hom)))
	info.Set(prefix+"_het", vcf.Int(int(c.Het)))
	if hemi {
		info.Set(prefix+"_hemi", vcf.Int(int(c.Hemi)))
	}
}

// AutoRecord holds gnomAD counts for an autosomal variant.
type AutoRecord struct {
	Exomes  Counts
	Genomes Counts
}

// Encode serializes the record.
func (r AutoRecord) Encode() []byte {
	return putCounts(nil, false, r.Exomes, r.Genomes)
}

// DecodeAuto parses an autosomal record.
func DecodeAuto(buf []byte) (AutoRecord, error) {
	cs, err := getCounts(buf, "autosomal", 2, false)
	if err != nil {
		return AutoRecord{}, err
	}
	return AutoRecord{Exomes: cs[0], Genomes: cs[1]}, nil
}

// Annotate writes the gnomad_exomes_* and gnomad_genomes_* INFO fields.
func (r AutoRecord) Annotate(info *vcf.Info) {
	r.Exomes.annotate(info, "gnomad_exomes", false)
	r.Genomes.annotate(info, "gnomad_genomes", false)
}

// XYRecord holds gnomAD counts for a variant on X or Y.
type XYRecord struct {
	Exomes  Counts
	Genomes Counts
}

// Encode serializes the record.
func (r XYRecord) Encode() []byte {
	return putCounts(nil, true, r.Exomes, r.Genomes)
}

// DecodeXY parses a gonosomal record.
func DecodeXY(buf []byte) (XYRecord, error) {
	cs, err := getCounts(buf, "gonosomal", 2, true)
	if err != nil {
		return XYRecord{}, err
	}
	return XYRecord{Exomes: cs[0], Genomes: cs[1]}, nil
}

// Annotate writes the gnomad_exomes_* and gnomad_genomes_* INFO fields
// including hemizygous counts.
func (r XYRecord) Annotate(info *vcf.Info) {
	r.Exomes.annotate(info, "gnomad_exomes", true)
	r.Genomes.annotate(info, "gnomad_genomes", true)
}

// MtRecord holds HelixMtDb and gnomAD-mtDNA counts.
type MtRecord struct {
	Helix       Counts
	GnomadMtDNA Counts
}

// Encode serializes the record.
func (r MtRecord) Encode() []byte {
	return putCounts(nil, false, r.Helix, r.GnomadMtDNA)
}

// DecodeMt parses a mitochondrial record.
func DecodeMt(buf []byte) (MtRecord, error) {
	cs, err := getCounts(buf, "mitochondrial", 2, false)
	if err != nil {
		return MtRecord{}, err
	}
	return MtRecord{Helix: cs[0], GnomadMtDNA: cs[1]}, nil
}

// Annotate writes the helix_* and gnomad_mtdna_* INFO fields.
func (r MtRecord) Annotate(info *vcf.Info) {
	r.Helix.annotate(info, "helix", false)
	r.GnomadMtDNA.annotate(info, "gnomad_mtdna", false)
}

// InfoFields lists the INFO keys written by any record type, in output order.
func InfoFields() []string {
	var keys []string
	for _, prefix := range []string{"gnomad_exomes", "gnomad_genomes"} {
		for _, suffix := range []string{"an", "hom", "het", "hemi"} {
			keys = append(keys, prefix+"_"+suffix)
		}
	}
	for _, prefix := range []string{"helix", "gnomad_mtdna"} {
		for _, suffix := range []string{"an", "hom", "het"} {
			keys = append(keys, prefix+"_"+suffix)
		}
	}
	return keys
}

func putCounts(buf []byte, hemi bool, cs ...Counts) []byte {
	for _, c := range cs {
		buf = binary.BigEndian.AppendUint32(buf, c.AN)
		buf = binary.BigEndian.AppendUint32(buf, c.Hom)
		buf = binary.BigEndian.AppendUint32(buf, c.Het)
		if hemi {
			buf = binary.BigEndian.AppendUint32(buf, c.Hemi)
		}
	}
	return buf
}

func getCounts(buf []byte, what string, n int, hemi bool) ([]Counts, error) {
	width := 3
	if hemi {
		width = 4
	}
	if len(buf) != n*width*4 {
		return nil, fmt.Errorf("%s frequency record: got %d bytes, want %d", what, len(buf), n*width*4)
	}
	cs := make([]Counts, n)
	for i := range cs {
		off := i * width * 4
		cs[i].AN = binary.BigEndian.Uint32(buf[off:])
		cs[i].Hom = binary.BigEndian.Uint32(buf[off+4:])
		cs[i].Het = binary.BigEndian.Uint32(buf[off+8:])
		if hemi {
			cs[i].Hemi = binary.BigEndian.Uint32(buf[off+12:])
		}
	}
	return cs, nil
}
