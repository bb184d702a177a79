package clinvar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szabgab/varfish-server-worker/internal/vcf"
)

func TestDecode(t *testing.T) {
	r, err := Decode([]byte(`{"vcv":"VCV000000001","clinsig":["likely_benign","uncertain_significance"]}`))
	require.NoError(t, err)
	assert.Equal(t, "VCV000000001", r.VCV)
	assert.Equal(t, "uncertain_significance", r.Significance())

	_, err = Decode([]byte(`{not json`))
	assert.Error(t, err)
}

func TestSignificance(t *testing.T) {
	assert.Equal(t, "", Record{}.Significance())
	assert.Equal(t, "pathogenic", Record{Clinsig: []string{"benign", "pathogenic"}}.Significance())
	assert.Equal(t, "drug_response", Record{Clinsig: []string{"drug_response"}}.Significance())
}

func TestAnnotate(t *testing.T) {
	var info vcf.Info
	Record{VCV: "VCV1", Clinsig: []string{"benign"}}.Annotate(&info)
	v, ok := info.Get("clinvar_clinsig")
	require.True(t, ok)
	assert.Equal(t, vcf.String("benign"), v)
	v, ok = info.Get("clinvar_vcv")
	require.True(t, ok)
	assert.Equal(t, vcf.String("VCV1"), v)

	var empty vcf.Info
	Record{}.Annotate(&empty)
	assert.Empty(t, empty)
}
