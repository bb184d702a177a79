package annotate

import (
	"strconv"
	"strings"
)

// Impact levels for variant consequences.
const (
	ImpactHigh     = "HIGH"
	ImpactModerate = "MODERATE"
	ImpactLow      = "LOW"
	ImpactModifier = "MODIFIER"
)

// Consequence types (Sequence Ontology terms).
const (
	// HIGH impact
	ConsequenceStopGained        = "stop_gained"
	ConsequenceFrameshiftVariant = "frameshift_variant"
	ConsequenceStopLost          = "stop_lost"
	ConsequenceStartLost         = "start_lost"
	ConsequenceSpliceAcceptor    = "splice_acceptor_variant"
	ConsequenceSpliceDonor       = "splice_donor_variant"

	// MODERATE impact
	ConsequenceMissenseVariant  = "missense_variant"
	ConsequenceInframeInsertion = "inframe_insertion"
	ConsequenceInframeDeletion  = "inframe_deletion"

	// LOW impact
	ConsequenceSynonymousVariant     = "synonymous_variant"
	ConsequenceSpliceRegion          = "splice_region_variant"
	ConsequenceStopRetained          = "stop_retained_variant"
	ConsequenceCodingSequenceVariant = "coding_sequence_variant"

	// MODIFIER impact
	ConsequenceIntronVariant     = "intron_variant"
	Consequence5PrimeUTR         = "5_prime_UTR_variant"
	Consequence3PrimeUTR         = "3_prime_UTR_variant"
	ConsequenceUpstreamGene      = "upstream_gene_variant"
	ConsequenceDownstreamGene    = "downstream_gene_variant"
	ConsequenceNonCodingExon     = "non_coding_transcript_exon_variant"
	ConsequenceIntergenicVariant = "intergenic_variant"
)

// Annotation represents the predicted effect of a variant on a transcript.
type Annotation struct {
	Allele          string   // The alternate allele
	Consequences    []string // SO consequence terms, most severe first
	Impact          string   // HIGH, MODERATE, LOW, MODIFIER
	GeneName        string   // Gene symbol
	GeneID          string   // Gene identifier
	TranscriptID    string   // Affected transcript
	Biotype         string   // Transcript biotype
	IsCanonical     bool     // Annotation on canonical transcript
	Rank            string   // Exon or intron number (e.g., "2/5")
	HGVSc           string   // HGVS coding DNA notation (e.g., "c.34G>T")
	HGVSp           string   // HGVS protein notation (e.g., "p.Gly12Cys")
	CDSPosition     int64    // Position in CDS, 0 if not in CDS
	CDSLength       int64    // Coding length of the transcript
	ProteinPosition int64    // Amino acid position, 0 if not in CDS
	Distance        int64    // Distance to the transcript for up/downstream variants
}

// ANN renders the annotation as one entry of the ANN INFO field:
//
//	Allele|Consequence|Impact|Gene|GeneID|Feature_type|Feature|Biotype|Rank|HGVS.c|HGVS.p|cDNA|CDS|AA|Distance|Errors
func (a *Annotation) ANN() string {
	fields := [16]string{
		a.Allele,
		strings.Join(a.Consequences, "&"),
		a.Impact,
		a.GeneName,
		a.GeneID,
		"transcript",
		a.TranscriptID,
		a.Biotype,
		a.Rank,
		a.HGVSc,
		a.HGVSp,
	}
	if a.CDSPosition > 0 {
		fields[12] = strconv.FormatInt(a.CDSPosition, 10) + "/" + strconv.FormatInt(a.CDSLength, 10)
	}
	if a.ProteinPosition > 0 {
		fields[13] = strconv.FormatInt(a.ProteinPosition, 10) + "/" + strconv.FormatInt(a.CDSLength/3, 10)
	}
	if a.Distance > 0 {
		fields[14] = strconv.FormatInt(a.Distance, 10)
	}
	return strings.Join(fields[:], "|")
}

// GetImpact returns the impact level for a given consequence type.
func GetImpact(consequence string) string {
	switch consequence {
	case ConsequenceStopGained, ConsequenceFrameshiftVariant,
		ConsequenceStopLost, ConsequenceStartLost,
		ConsequenceSpliceAcceptor, ConsequenceSpliceDonor:
		return ImpactHigh
	case ConsequenceMissenseVariant, ConsequenceInframeInsertion,
		ConsequenceInframeDeletion:
		return ImpactModerate
	case ConsequenceSynonymousVariant, ConsequenceSpliceRegion,
		ConsequenceStopRetained, ConsequenceCodingSequenceVariant:
		return ImpactLow
	}
	return ImpactModifier
}

// ImpactRank returns numeric rank for impact comparison (higher = more severe).
func ImpactRank(impact string) int {
	switch impact {
	case ImpactHigh:
		return 3
	case ImpactModerate:
		return 2
	case ImpactLow:
		return 1
	default:
		return 0
	}
}

// worstImpact returns the highest impact among terms.
func worstImpact(terms []string) string {
	best := ImpactModifier
	for _, term := range terms {
		if impact := GetImpact(term); ImpactRank(impact) > ImpactRank(best) {
			best = impact
		}
	}
	return best
}
