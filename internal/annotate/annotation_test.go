package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetImpact(t *testing.T) {
	assert.Equal(t, ImpactHigh, GetImpact(ConsequenceStopGained))
	assert.Equal(t, ImpactModerate, GetImpact(ConsequenceMissenseVariant))
	assert.Equal(t, ImpactLow, GetImpact(ConsequenceSynonymousVariant))
	assert.Equal(t, ImpactModifier, GetImpact(ConsequenceIntronVariant))
	assert.Equal(t, ImpactModifier, GetImpact("unknown_term"))
	assert.Equal(t, ImpactLow, worstImpact([]string{ConsequenceSpliceRegion, ConsequenceIntronVariant}))
}

func TestAnnotation_ANN(t *testing.T) {
	a := &Annotation{
		Allele:          "T",
		Consequences:    []string{ConsequenceMissenseVariant, ConsequenceSpliceRegion},
		Impact:          ImpactModerate,
		GeneName:        "KRAS",
		GeneID:          "HGNC:6407",
		TranscriptID:    "NM_004985.5",
		Biotype:         "protein_coding",
		Rank:            "2/6",
		HGVSc:           "c.35G>T",
		HGVSp:           "p.Gly12Val",
		CDSPosition:     35,
		CDSLength:       570,
		ProteinPosition: 12,
	}
	assert.Equal(t,
		"T|missense_variant&splice_region_variant|MODERATE|KRAS|HGNC:6407|transcript|NM_004985.5|protein_coding|2/6|c.35G>T|p.Gly12Val||35/570|12/190||",
		a.ANN())

	up := &Annotation{Allele: "A", Consequences: []string{ConsequenceUpstreamGene}, Impact: ImpactModifier, Distance: 120}
	assert.Equal(t, "A|upstream_gene_variant|MODIFIER|||transcript|||||||||120|", up.ANN())
}
