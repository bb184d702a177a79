package vcf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Trio(t *testing.T) {
	parser, err := NewParser(findTestFile(t, "trio.vcf"))
	require.NoError(t, err)
	defer parser.Close()

	assert.Equal(t, []string{"mother", "father", "index"}, parser.SampleNames())

	count := 0
	var multi *Record
	for {
		rec, err := parser.Next()
		require.NoError(t, err)
		if rec == nil {
			break
		}
		count++
		if rec.Pos == 200 {
			multi = rec
		}
	}
	assert.Equal(t, 6, count)

	require.NotNil(t, multi)
	assert.Equal(t, "1", multi.Chrom)
	assert.Equal(t, "C", multi.Ref)
	assert.Equal(t, []string{"T", "G"}, multi.Alt)
	assert.Equal(t, []string{"GT", "AD", "DP", "GQ"}, multi.Format)
	require.Len(t, multi.Samples, 3)

	mother := multi.Sample(0)
	gt, ok := mother.Get("GT")
	require.True(t, ok)
	assert.True(t, gt.Equal(String("1/2")))

	ad, ok := mother.Get("AD")
	require.True(t, ok)
	assert.True(t, ad.Equal(IntArray(10, 12, 8)), "got %s", ad)

	dp, _ := mother.Get("DP")
	assert.True(t, dp.Equal(Int(30)))

	index := multi.Sample(2)
	gt, _ = index.Get("GT")
	assert.True(t, gt.Equal(String("./.")))
	ad, _ = index.Get("AD")
	assert.True(t, ad.IsMissing())

	_, ok = index.Get("PS")
	assert.False(t, ok)

	infoDP, ok := multi.Info.Get("DP")
	require.True(t, ok)
	assert.True(t, infoDP.Equal(Int(90)))
}

func TestParser_Gzip(t *testing.T) {
	parser, err := NewParser(findTestFile(t, "dragen.vcf.gz"))
	require.NoError(t, err)
	defer parser.Close()

	rec, err := parser.Next()
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, "chr1", rec.Chrom)
	sq, ok := rec.Sample(0).Get("SQ")
	require.True(t, ok)
	assert.True(t, sq.Equal(FloatArray(3.5, 7.25)), "got %s", sq)

	// Number=A with one allele still parses as a one-element array.
	rec, err = parser.Next()
	require.NoError(t, err)
	sq, _ = rec.Sample(0).Get("SQ")
	assert.Equal(t, KindArray, sq.Kind())
	assert.Equal(t, 1, sq.Len())
}

func TestParser_Header(t *testing.T) {
	parser, err := NewParser(findTestFile(t, "trio.vcf"))
	require.NoError(t, err)
	defer parser.Close()

	h := parser.Header()
	require.NotEmpty(t, h.Meta)
	assert.Equal(t, "##fileformat=VCFv4.2", h.Meta[0])
	assert.True(t, h.HasFormat("AD"))
	assert.Equal(t, "R", h.Format("AD").Number)
	assert.Equal(t, TypeInteger, h.Format("AD").Type)
	assert.Equal(t, "Allelic depths for the ref and alt alleles in the order listed", h.Format("AD").Description)
	assert.Equal(t, "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tmother\tfather\tindex", h.ColumnLine())
}

func TestParser_TrailingFieldsDropped(t *testing.T) {
	input := "##fileformat=VCFv4.2\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\ts1\n" +
		"1\t5\t.\tA\tT\t.\t.\t.\tGT:AD:DP\t0/1\n"
	parser, err := NewParserFromReader(strings.NewReader(input))
	require.NoError(t, err)

	rec, err := parser.Next()
	require.NoError(t, err)
	ad, ok := rec.Sample(0).Get("AD")
	require.True(t, ok)
	assert.True(t, ad.IsMissing())
}

func TestParser_SampleColumnMismatch(t *testing.T) {
	input := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\ts1\ts2\n" +
		"1\t5\t.\tA\tT\t.\t.\t.\tGT\t0/1\n"
	parser, err := NewParserFromReader(strings.NewReader(input))
	require.NoError(t, err)

	_, err = parser.Next()
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
}

func TestParser_NoChromLine(t *testing.T) {
	_, err := NewParserFromReader(strings.NewReader("##fileformat=VCFv4.2\n"))
	assert.Error(t, err)
}

func TestParseError(t *testing.T) {
	err := &ParseError{
		Line:    42,
		Message: "expected 8 columns, found 7",
	}

	expected := "vcf parse error at line 42: expected 8 columns, found 7"
	if err.Error() != expected {
		t.Errorf("Error message mismatch: got %q, want %q", err.Error(), expected)
	}
}

// findTestFile locates a test file in the testdata directory.
func findTestFile(t *testing.T, name string) string {
	t.Helper()

	paths := []string{
		filepath.Join("testdata", name),
		filepath.Join("..", "..", "testdata", name),
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	t.Fatalf("Test file not found: %s", name)
	return ""
}
