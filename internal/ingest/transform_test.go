package ingest

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szabgab/varfish-server-worker/internal/vcf"
)

func assertValue(t *testing.T, want, got vcf.Value, msgAndArgs ...any) bool {
	t.Helper()
	if want.Equal(got) {
		return true
	}
	return assert.Fail(t, fmt.Sprintf("want %s (%s), got %s (%s)", want, want.Kind(), got, got.Kind()), msgAndArgs...)
}

func sampleOf(kv ...any) vcf.Sample {
	var keys []string
	var values []vcf.Value
	for i := 0; i < len(kv); i += 2 {
		keys = append(keys, kv[i].(string))
		values = append(values, kv[i+1].(vcf.Value))
	}
	return vcf.NewSample(keys, values)
}

func TestTransform_Genotype(t *testing.T) {
	tr := NewTransformer(NewFieldTable())
	tests := []struct {
		gt     string
		allele int
		want   string
	}{
		{"2/3", 2, "1/0"},
		{"2/3", 3, "0/1"},
		{"2|3", 2, "1|0"},
		{"2|3", 3, "0|1"},
		{"1/2", 1, "1/0"},
		{"1/2", 2, "0/1"},
		{"0/1", 1, "0/1"},
		{"1/1", 2, "0/0"},
		{"1|1", 1, "1|1"},
		{"0/0", 1, "0/0"},
		{"./.", 1, "./."},
		{"./.", 4, "./."},
		{".|.", 2, ".|."},
		{".", 3, "."},
	}
	for _, tt := range tests {
		t.Run(tt.gt, func(t *testing.T) {
			got, ok, err := tr.Transform(FieldGenotype, vcf.String(tt.gt), tt.allele, vcf.Sample{})
			require.NoError(t, err)
			require.True(t, ok)
			assertValue(t, vcf.String(tt.want), got)
		})
	}
}

func TestTransform_GenotypeErrors(t *testing.T) {
	tr := NewTransformer(NewFieldTable())
	for _, gt := range []string{"1", "1/2/3", "abc", "/1"} {
		t.Run(gt, func(t *testing.T) {
			_, _, err := tr.Transform(FieldGenotype, vcf.String(gt), 1, vcf.Sample{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFormat))
			var ie *Error
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, gt, ie.Value, "raw value attached")
		})
	}

	_, _, err := tr.Transform(FieldGenotype, vcf.Int(1), 1, vcf.Sample{})
	assert.ErrorIs(t, err, ErrFormat)
}

func TestTransform_Missing(t *testing.T) {
	tr := NewTransformer(NewFieldTable())
	for _, field := range []string{FieldGenotype, FieldAlleleDepths, FieldSecondaryQual, FieldReadDepth} {
		got, ok, err := tr.Transform(field, vcf.Missing(), 1, vcf.Sample{})
		require.NoError(t, err)
		assert.True(t, ok, field)
		assert.True(t, got.IsMissing(), field)
	}
}

func TestTransform_AlleleDepths(t *testing.T) {
	tr := NewTransformer(NewFieldTable())
	ad := vcf.IntArray(10, 12, 8)
	sample := sampleOf("AD", ad, "DP", vcf.Int(30))

	// [D - A, A] with A = AD[allele].
	got, ok, err := tr.Transform(FieldAlleleDepths, ad, 1, sample)
	require.NoError(t, err)
	require.True(t, ok)
	assertValue(t, vcf.IntArray(18, 12), got)

	got, _, err = tr.Transform(FieldAlleleDepths, ad, 2, sample)
	require.NoError(t, err)
	assertValue(t, vcf.IntArray(22, 8), got)
}

func TestTransform_AlleleDepthsErrors(t *testing.T) {
	tr := NewTransformer(NewFieldTable())
	ad := vcf.IntArray(10, 12)

	tests := []struct {
		name   string
		value  vcf.Value
		sample vcf.Sample
		allele int
	}{
		{"no DP", ad, sampleOf("AD", ad), 1},
		{"missing DP", ad, sampleOf("AD", ad, "DP", vcf.Missing()), 1},
		{"float DP", ad, sampleOf("AD", ad, "DP", vcf.Float(3.5)), 1},
		{"allele out of range", ad, sampleOf("AD", ad, "DP", vcf.Int(30)), 2},
		{"missing element", vcf.Array(vcf.KindInteger, vcf.Int(3), vcf.Missing()), sampleOf("DP", vcf.Int(30)), 1},
		{"scalar AD", vcf.Int(3), sampleOf("DP", vcf.Int(30)), 1},
		{"string AD", vcf.String("x"), sampleOf("DP", vcf.Int(30)), 1},
		{"float array AD", vcf.FloatArray(1, 2), sampleOf("DP", vcf.Int(30)), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tr.Transform(FieldAlleleDepths, tt.value, tt.allele, tt.sample)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestTransform_AlleleDepthsLenient(t *testing.T) {
	tr := NewTransformer(NewFieldTable())
	tr.Lenient = true
	sample := sampleOf("DP", vcf.Int(30))

	_, ok, err := tr.Transform(FieldAlleleDepths, vcf.String("x"), 1, sample)
	require.NoError(t, err)
	assert.False(t, ok, "declines, caller copies")

	// Lenient only covers the shape; a missing DP still fails.
	_, _, err = tr.Transform(FieldAlleleDepths, vcf.IntArray(1, 2), 1, vcf.Sample{})
	assert.ErrorIs(t, err, ErrFormat)
}

func TestTransform_SecondaryQual(t *testing.T) {
	tr := NewTransformer(NewFieldTable())
	sq := vcf.FloatArray(1.5, 2.5, 3.5)

	// SQ is indexed with allele-1, unlike AD.
	got, ok, err := tr.Transform(FieldSecondaryQual, sq, 2, vcf.Sample{})
	require.NoError(t, err)
	require.True(t, ok)
	assertValue(t, vcf.Float(2.5), got)

	got, _, err = tr.Transform(FieldSecondaryQual, sq, 1, vcf.Sample{})
	require.NoError(t, err)
	assertValue(t, vcf.Float(1.5), got)

	got, _, err = tr.Transform(FieldSecondaryQual, vcf.Float(7.25), 3, vcf.Sample{})
	require.NoError(t, err)
	assertValue(t, vcf.Float(7.25), got, "scalar passes through")

	_, _, err = tr.Transform(FieldSecondaryQual, sq, 4, vcf.Sample{})
	assert.ErrorIs(t, err, ErrFormat)
	_, _, err = tr.Transform(FieldSecondaryQual, vcf.String("high"), 1, vcf.Sample{})
	assert.ErrorIs(t, err, ErrFormat)
	_, _, err = tr.Transform(FieldSecondaryQual, vcf.IntArray(1, 2), 1, vcf.Sample{})
	assert.ErrorIs(t, err, ErrFormat)
}

func TestTransform_Declines(t *testing.T) {
	tr := NewTransformer(NewFieldTable())
	for _, field := range []string{FieldGenotypeQual, FieldReadDepth, FieldPhaseSet, "PL"} {
		_, ok, err := tr.Transform(field, vcf.Int(5), 1, vcf.Sample{})
		require.NoError(t, err)
		assert.False(t, ok, field)
	}
}

func TestGenotypes_RoundTrip(t *testing.T) {
	tr := NewTransformer(NewFieldTable())
	rec := &vcf.Record{
		Chrom:  "1",
		Pos:    200,
		Ref:    "C",
		Alt:    []string{"T", "G"},
		Format: []string{"GT", "AD", "DP"},
		Samples: [][]vcf.Value{
			{vcf.String("1/2"), vcf.IntArray(10, 12, 8), vcf.Int(30)},
		},
	}

	keys, rows, err := tr.Genotypes(rec, SampleIndex{0}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"GT", "AD", "DP"}, keys)
	require.Len(t, rows, 1)
	assertValue(t, vcf.String("1/0"), rows[0][0])
	assertValue(t, vcf.IntArray(18, 12), rows[0][1])
	assertValue(t, vcf.Int(30), rows[0][2])

	_, rows, err = tr.Genotypes(rec, SampleIndex{0}, 2)
	require.NoError(t, err)
	assertValue(t, vcf.String("0/1"), rows[0][0])
	assertValue(t, vcf.IntArray(22, 8), rows[0][1])
}

func TestGenotypes_KeysAndOrder(t *testing.T) {
	tr := NewTransformer(NewFieldTable())
	rec := &vcf.Record{
		Chrom:  "chr1",
		Pos:    10000,
		Ref:    "T",
		Alt:    []string{"A", "C"},
		Format: []string{"GT", "SQ", "PL", "AD", "DP", "PS"},
		Samples: [][]vcf.Value{
			{vcf.String("0/1"), vcf.FloatArray(3.5, 0), vcf.IntArray(0, 1, 2), vcf.IntArray(5, 5, 0), vcf.Int(10), vcf.Missing()},
			{vcf.String("1|2"), vcf.FloatArray(3.5, 7.25), vcf.IntArray(0, 1, 2), vcf.IntArray(2, 9, 11), vcf.Int(22), vcf.Int(9990)},
		},
	}

	// Output order swaps the two samples.
	keys, rows, err := tr.Genotypes(rec, SampleIndex{1, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"GT", "GQ", "AD", "DP", "PS"}, keys, "PL dropped, SQ written as GQ")
	require.Len(t, rows, 2)

	assertValue(t, vcf.String("0|1"), rows[0][0])
	assertValue(t, vcf.Float(7.25), rows[0][1])
	assertValue(t, vcf.IntArray(11, 11), rows[0][2])
	assertValue(t, vcf.Int(9990), rows[0][4])

	assertValue(t, vcf.String("0/0"), rows[1][0])
	assertValue(t, vcf.IntArray(10, 0), rows[1][2])
	assert.True(t, rows[1][4].IsMissing())
}

func TestGenotypes_DuplicateOutputKey(t *testing.T) {
	tr := NewTransformer(NewFieldTable())
	rec := &vcf.Record{
		Alt:     []string{"A"},
		Format:  []string{"GT", "GQ", "SQ"},
		Samples: [][]vcf.Value{{vcf.String("0/1"), vcf.Int(50), vcf.Float(3)}},
	}
	_, _, err := tr.Genotypes(rec, SampleIndex{0}, 1)
	assert.ErrorIs(t, err, ErrLogic)
}

func TestGenotypes_UnhandledKnownField(t *testing.T) {
	// A known field that is neither transformed nor an output field.
	ft := &FieldTable{
		output: []string{FieldGenotype},
		known:  []string{FieldGenotype, "XX"},
	}
	tr := NewTransformer(ft)
	rec := &vcf.Record{
		Alt:     []string{"A"},
		Format:  []string{"GT", "XX"},
		Samples: [][]vcf.Value{{vcf.String("0/1"), vcf.Int(1)}},
	}
	_, _, err := tr.Genotypes(rec, SampleIndex{0}, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLogic)
	assert.Contains(t, err.Error(), "FORMAT/XX")
}

func TestGenotypes_ShortSampleRow(t *testing.T) {
	tr := NewTransformer(NewFieldTable())
	rec := &vcf.Record{
		Alt:     []string{"A"},
		Format:  []string{"GT", "AD", "DP"},
		Samples: [][]vcf.Value{{vcf.String("0/1")}},
	}
	_, rows, err := tr.Genotypes(rec, SampleIndex{0}, 1)
	require.NoError(t, err)
	assert.True(t, rows[0][1].IsMissing())
	assert.True(t, rows[0][2].IsMissing())
}
