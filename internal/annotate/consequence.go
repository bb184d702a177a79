package annotate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/szabgab/varfish-server-worker/internal/cache"
	"github.com/szabgab/varfish-server-worker/internal/vcf"
)

// ErrRefMismatch means a transcript's coding sequence disagrees with the
// variant's reference allele, i.e. the transcript database does not belong
// to the input's assembly.
var ErrRefMismatch = errors.New("reference allele does not match transcript sequence")

const (
	spliceSiteSize         = 2 // intronic bases of a donor/acceptor site
	spliceRegionIntronSize = 8
	spliceRegionExonSize   = 3
)

// PredictConsequence determines the effect of a variant on a transcript.
// The variant's chromosome is expected to be normalised.
func PredictConsequence(v *vcf.Variant, t *cache.Transcript) (*Annotation, error) {
	ann := &Annotation{
		Allele:       v.Alt,
		GeneName:     t.GeneName,
		GeneID:       t.GeneID,
		TranscriptID: t.ID,
		Biotype:      t.Biotype,
		IsCanonical:  t.IsCanonical,
		CDSLength:    t.CDSLength(),
	}

	switch end := v.End(); {
	case end < t.Start:
		ann.Distance = t.Start - end
		ann.Consequences = []string{flankConsequence(t, true)}
	case v.Pos > t.End:
		ann.Distance = v.Pos - t.End
		ann.Consequences = []string{flankConsequence(t, false)}
	default:
		if err := predictWithin(v, t, ann); err != nil {
			return nil, err
		}
	}

	ann.Impact = worstImpact(ann.Consequences)
	return ann, nil
}

// flankConsequence names a position before (lower coordinate) or after
// the transcript in its own orientation.
func flankConsequence(t *cache.Transcript, before bool) string {
	if before == t.IsForwardStrand() {
		return ConsequenceUpstreamGene
	}
	return ConsequenceDownstreamGene
}

func predictWithin(v *vcf.Variant, t *cache.Transcript, ann *Annotation) error {
	exon := t.FindExon(v.Pos)
	if exon == nil {
		intron := t.FindIntron(v.Pos)
		if intron == nil {
			ann.Consequences = []string{ConsequenceIntronVariant}
			return nil
		}
		ann.Rank = fmt.Sprintf("%d/%d", intron.Number, len(t.Exons)-1)
		ann.Consequences = intronConsequences(v.Pos, intron, t.IsForwardStrand())
		return nil
	}

	ann.Rank = fmt.Sprintf("%d/%d", exon.Number, len(t.Exons))

	var terms []string
	switch {
	case !t.IsProteinCoding():
		terms = []string{ConsequenceNonCodingExon}
	case !t.ContainsCDS(v.Pos):
		if (v.Pos < t.CDSStart) == t.IsForwardStrand() {
			terms = []string{Consequence5PrimeUTR}
		} else {
			terms = []string{Consequence3PrimeUTR}
		}
	default:
		var err error
		if terms, err = codingConsequences(v, t, ann); err != nil {
			return err
		}
	}

	if inExonicSpliceRegion(v.Pos, exon, t) {
		terms = append(terms, ConsequenceSpliceRegion)
	}
	ann.Consequences = sortBySeverity(terms)
	return nil
}

func intronConsequences(pos int64, intron *cache.Intron, forward bool) []string {
	fromStart := pos - intron.Start + 1
	fromEnd := intron.End - pos + 1
	d := min(fromStart, fromEnd)

	switch {
	case d <= spliceSiteSize:
		// The donor sits at the 5' end of the intron in transcript orientation.
		if (fromStart <= fromEnd) == forward {
			return []string{ConsequenceSpliceDonor}
		}
		return []string{ConsequenceSpliceAcceptor}
	case d <= spliceRegionIntronSize:
		return []string{ConsequenceSpliceRegion, ConsequenceIntronVariant}
	}
	return []string{ConsequenceIntronVariant}
}

// inExonicSpliceRegion reports whether pos lies within the last exonic
// bases next to an intron.
func inExonicSpliceRegion(pos int64, exon *cache.Exon, t *cache.Transcript) bool {
	if exon.Start != t.Start && pos-exon.Start < spliceRegionExonSize {
		return true
	}
	return exon.End != t.End && exon.End-pos < spliceRegionExonSize
}

func codingConsequences(v *vcf.Variant, t *cache.Transcript, ann *Annotation) ([]string, error) {
	cdsPos := t.CDSOffset(v.Pos)
	ann.CDSPosition = cdsPos
	ann.ProteinPosition = (cdsPos + 2) / 3

	if v.IsIndel() {
		return indelConsequences(v, t), nil
	}
	if !v.IsSNV() || cdsPos == 0 {
		return []string{ConsequenceCodingSequenceVariant}, nil
	}

	refBase, altBase := upper(v.Ref[0]), upper(v.Alt[0])
	if !t.IsForwardStrand() {
		refBase, altBase = Complement(refBase), Complement(altBase)
	}
	ann.HGVSc = fmt.Sprintf("c.%d%c>%c", cdsPos, refBase, altBase)

	seq := t.CDSSequence
	if seq == "" {
		return []string{ConsequenceCodingSequenceVariant}, nil
	}
	if cdsPos > int64(len(seq)) {
		return nil, fmt.Errorf("%s: c.%d is beyond the coding sequence of length %d: %w",
			t.ID, cdsPos, len(seq), ErrRefMismatch)
	}
	if got := upper(seq[cdsPos-1]); got != refBase {
		return nil, fmt.Errorf("%s: c.%d is %c, variant has %c: %w",
			t.ID, cdsPos, got, refBase, ErrRefMismatch)
	}

	codonStart := (cdsPos - 1) / 3 * 3
	if codonStart+3 > int64(len(seq)) {
		return []string{ConsequenceCodingSequenceVariant}, nil
	}
	refCodon := strings.ToUpper(seq[codonStart : codonStart+3])
	altCodon := MutateCodon(refCodon, int((cdsPos-1)%3), altBase)
	refAA, altAA := TranslateCodon(refCodon), TranslateCodon(altCodon)
	refStop, altStop := IsStopCodon(refCodon), IsStopCodon(altCodon)

	var term string
	switch {
	case ann.ProteinPosition == 1 && refAA == 'M' && altAA != 'M':
		term = ConsequenceStartLost
		ann.HGVSp = "p.Met1?"
	case refStop && !altStop:
		term = ConsequenceStopLost
	case !refStop && altStop:
		term = ConsequenceStopGained
	case refStop:
		term = ConsequenceStopRetained
	case refAA == altAA:
		term = ConsequenceSynonymousVariant
	default:
		term = ConsequenceMissenseVariant
	}
	if ann.HGVSp == "" {
		ann.HGVSp = formatHGVSp(refAA, altAA, ann.ProteinPosition)
	}
	return []string{term}, nil
}

// indelConsequences classifies an anchored insertion or deletion.
func indelConsequences(v *vcf.Variant, t *cache.Transcript) []string {
	if v.IsDeletion() {
		startLo, startHi := t.CDSStart, t.CDSStart+2
		if !t.IsForwardStrand() {
			startLo, startHi = t.CDSEnd-2, t.CDSEnd
		}
		if v.Pos+1 <= startHi && v.End() >= startLo {
			return []string{ConsequenceStartLost}
		}
	}

	switch {
	case (len(v.Alt)-len(v.Ref))%3 != 0:
		return []string{ConsequenceFrameshiftVariant}
	case v.IsInsertion():
		return []string{ConsequenceInframeInsertion}
	}
	return []string{ConsequenceInframeDeletion}
}

func formatHGVSp(refAA, altAA byte, pos int64) string {
	if refAA == altAA {
		return fmt.Sprintf("p.%s%d=", aminoAcidThree[refAA], pos)
	}
	return fmt.Sprintf("p.%s%d%s", aminoAcidThree[refAA], pos, aminoAcidThree[altAA])
}

// sortBySeverity orders terms by impact, keeping the order of equal ones.
func sortBySeverity(terms []string) []string {
	out := make([]string, 0, len(terms))
	for rank := 3; rank >= 0; rank-- {
		for _, term := range terms {
			if ImpactRank(GetImpact(term)) == rank {
				out = append(out, term)
			}
		}
	}
	return out
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
