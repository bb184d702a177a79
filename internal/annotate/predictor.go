// Package annotate predicts the effects of variants on overlapping transcripts.
package annotate

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/szabgab/varfish-server-worker/internal/cache"
	"github.com/szabgab/varfish-server-worker/internal/vcf"
)

// DefaultFlankSize is how far up- and downstream of a transcript variants
// are still reported.
const DefaultFlankSize = 5000

// TranscriptLookup defines the interface for finding transcripts in a region.
type TranscriptLookup interface {
	FindTranscripts(chrom string, start, end int64) []*cache.Transcript
}

// Predictor annotates variants with consequence predictions.
type Predictor struct {
	cache         TranscriptLookup
	flank         int64
	canonicalOnly bool
	logger        *zap.Logger
}

// NewPredictor creates a new predictor with the given cache.
func NewPredictor(c TranscriptLookup) *Predictor {
	return &Predictor{
		cache:  c,
		flank:  DefaultFlankSize,
		logger: zap.NewNop(),
	}
}

// SetCanonicalOnly configures whether to only report canonical transcript annotations.
func (p *Predictor) SetCanonicalOnly(canonical bool) {
	p.canonicalOnly = canonical
}

// SetLogger sets the logger for debug messages.
func (p *Predictor) SetLogger(l *zap.Logger) {
	p.logger = l
}

// Annotate returns one annotation per transcript within the flank window
// of the variant. Intergenic variants have no annotations.
func (p *Predictor) Annotate(v *vcf.Variant) ([]*Annotation, error) {
	chrom := v.NormalizeChrom()
	nv := vcf.Variant{Chrom: chrom, Pos: v.Pos, Ref: v.Ref, Alt: v.Alt}

	transcripts := p.cache.FindTranscripts(chrom, v.Pos-p.flank, nv.End()+p.flank)

	var annotations []*Annotation
	for _, t := range transcripts {
		if p.canonicalOnly && !t.IsCanonical {
			continue
		}
		ann, err := PredictConsequence(&nv, t)
		if err != nil {
			return nil, fmt.Errorf("predict %s:%d %s>%s: %w", v.Chrom, v.Pos, v.Ref, v.Alt, err)
		}
		annotations = append(annotations, ann)
	}

	if len(annotations) == 0 {
		p.logger.Debug("no transcripts near variant",
			zap.String("chrom", v.Chrom),
			zap.Int64("pos", v.Pos))
	}
	return annotations, nil
}

// Predict returns the ANN strings for a single-allele variant.
func (p *Predictor) Predict(chrom string, pos int64, ref, alt string) ([]string, error) {
	anns, err := p.Annotate(&vcf.Variant{Chrom: chrom, Pos: pos, Ref: ref, Alt: alt})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(anns))
	for _, a := range anns {
		out = append(out, a.ANN())
	}
	return out, nil
}
