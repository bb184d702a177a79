package ingest

import (
	"regexp"
	"strconv"

	"github.com/szabgab/varfish-server-worker/internal/vcf"
)

// gtRe splits a diploid genotype into its two alleles and the separator.
var gtRe = regexp.MustCompile(`^([^|/]+)([/|])([^|/]+)$`)

// noCalls pass through decomposition unchanged.
var noCalls = map[string]bool{"./.": true, ".|.": true, ".": true}

// Transformer rewrites FORMAT values for one emitted alternate allele.
type Transformer struct {
	table *FieldTable

	// Lenient lets an AD value that is not an integer array through
	// untransformed instead of failing.
	Lenient bool
}

// NewTransformer creates a transformer over the given field table.
func NewTransformer(table *FieldTable) *Transformer {
	return &Transformer{table: table}
}

// Transform computes the output value of field for the 1-based allele.
// The boolean result is false when the transformer declines; the caller
// then copies the input value if field is an output field.
func (tr *Transformer) Transform(field string, value vcf.Value, allele int, sample vcf.Sample) (vcf.Value, bool, error) {
	if value.IsMissing() {
		return vcf.Missing(), true, nil
	}
	switch field {
	case FieldGenotype:
		return transformGenotype(value, allele)
	case FieldAlleleDepths:
		return tr.transformAlleleDepths(value, allele, sample)
	case FieldSecondaryQual:
		return transformSecondaryQual(value, allele)
	}
	return vcf.Value{}, false, nil
}

// transformGenotype turns a multi-allelic call into the 0/1 call for allele.
func transformGenotype(value vcf.Value, allele int) (vcf.Value, bool, error) {
	gt, ok := value.AsString()
	if !ok {
		return vcf.Value{}, false, formatError(FieldGenotype, value.String(), "expected string, got %s", value.Kind())
	}
	if noCalls[gt] {
		return value, true, nil
	}
	m := gtRe.FindStringSubmatch(gt)
	if m == nil {
		return vcf.Value{}, false, formatError(FieldGenotype, gt, "cannot be parsed")
	}
	curr := strconv.Itoa(allele)
	side := func(a string) string {
		if a == curr {
			return "1"
		}
		return "0"
	}
	return vcf.String(side(m[1]) + m[2] + side(m[3])), true, nil
}

// transformAlleleDepths keeps the depth of allele and folds everything else
// into the reference count: [DP-AD[allele], AD[allele]].
func (tr *Transformer) transformAlleleDepths(value vcf.Value, allele int, sample vcf.Sample) (vcf.Value, bool, error) {
	dpValue, ok := sample.Get(FieldReadDepth)
	if !ok || dpValue.IsMissing() {
		return vcf.Value{}, false, formatError(FieldAlleleDepths, value.String(), "requires FORMAT/DP")
	}
	dp, ok := dpValue.AsInt()
	if !ok {
		return vcf.Value{}, false, formatError(FieldReadDepth, dpValue.String(), "expected integer, got %s", dpValue.Kind())
	}

	switch value.Kind() {
	case vcf.KindArray:
		if value.Elem() == vcf.KindInteger {
			break
		}
		fallthrough
	case vcf.KindInteger, vcf.KindFloat, vcf.KindString, vcf.KindMissing:
		if tr.Lenient {
			return vcf.Value{}, false, nil
		}
		return vcf.Value{}, false, formatError(FieldAlleleDepths, value.String(), "expected integer array, got %s", value.Kind())
	}

	if allele >= value.Len() {
		return vcf.Value{}, false, formatError(FieldAlleleDepths, value.String(), "no entry for allele %d", allele)
	}
	ad, ok := value.Items()[allele].AsInt()
	if !ok {
		return vcf.Value{}, false, formatError(FieldAlleleDepths, value.String(), "missing entry for allele %d", allele)
	}
	return vcf.IntArray(dp-ad, ad), true, nil
}

// transformSecondaryQual picks the per-allele SQ value.
//
// NB: SQ is indexed with allele-1 while AD above is indexed with allele.
// Both match what downstream consumers of the ingested files expect.
func transformSecondaryQual(value vcf.Value, allele int) (vcf.Value, bool, error) {
	switch value.Kind() {
	case vcf.KindFloat:
		return value, true, nil
	case vcf.KindArray:
		if value.Elem() != vcf.KindFloat {
			break
		}
		if allele-1 >= value.Len() {
			return vcf.Value{}, false, formatError(FieldSecondaryQual, value.String(), "no entry for allele %d", allele)
		}
		items := value.Items()
		if items[allele-1].IsMissing() {
			return vcf.Value{}, false, formatError(FieldSecondaryQual, value.String(), "missing entry for allele %d", allele)
		}
		return items[allele-1], true, nil
	case vcf.KindMissing, vcf.KindInteger, vcf.KindString:
	}
	return vcf.Value{}, false, formatError(FieldSecondaryQual, value.String(), "expected float or float array, got %s", value.Kind())
}

// Genotypes builds the FORMAT keys and the sample rows, in output sample
// order, of the record emitted for allele.
func (tr *Transformer) Genotypes(rec *vcf.Record, index SampleIndex, allele int) ([]string, [][]vcf.Value, error) {
	var inputKeys, outputKeys []string
	seen := make(map[string]string)
	for _, key := range rec.Format {
		if !tr.table.IsKnown(key) {
			continue
		}
		out := tr.table.Resolve(key)
		if prev, dup := seen[out]; dup {
			return nil, nil, logicError("FORMAT keys %s and %s both map to %s", prev, key, out)
		}
		seen[out] = key
		inputKeys = append(inputKeys, key)
		outputKeys = append(outputKeys, out)
	}

	rows := make([][]vcf.Value, len(index))
	for outIdx, inIdx := range index {
		if inIdx < 0 || inIdx >= len(rec.Samples) {
			return nil, nil, logicError("sample index %d out of range", inIdx)
		}
		sample := rec.Sample(inIdx)
		row := make([]vcf.Value, len(inputKeys))
		for j, key := range inputKeys {
			value, _ := sample.Get(key)
			out, ok, err := tr.Transform(key, value, allele, sample)
			if err != nil {
				return nil, nil, err
			}
			if !ok {
				if !tr.table.IsOutput(key) {
					return nil, nil, logicError("don't know how to handle FORMAT/%s", key)
				}
				out = value
			}
			row[j] = out
		}
		rows[outIdx] = row
	}
	return outputKeys, rows, nil
}
