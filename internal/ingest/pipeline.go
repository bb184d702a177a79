package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/szabgab/varfish-server-worker/internal/datasource"
	"github.com/szabgab/varfish-server-worker/internal/vcf"
)

// OverlappingDeletion is the symbolic ALT of an allele spanned by an
// upstream deletion. Such alleles are never emitted.
const OverlappingDeletion = "*"

// InfoANN is the INFO key of the predicted effects.
const InfoANN = "ANN"

// RecordSource yields input records; Next returns nil, nil at the end.
type RecordSource interface {
	Next() (*vcf.Record, error)
	SampleNames() []string
}

// RecordSink accepts output records one at a time.
type RecordSink interface {
	WriteRecord(rec *vcf.Record) error
}

// Annotator attaches store annotations for a variant key to INFO.
type Annotator interface {
	Annotate(chrom string, key []byte, info *vcf.Info) error
}

// Predictor returns effect annotation strings for a single-allele variant.
type Predictor interface {
	Predict(chrom string, pos int64, ref, alt string) ([]string, error)
}

// Reason tells why a run ended.
type Reason int

const (
	ReasonExhausted Reason = iota
	ReasonLimitReached
)

func (r Reason) String() string {
	if r == ReasonLimitReached {
		return "record limit reached"
	}
	return "input exhausted"
}

// Stats summarises a run.
type Stats struct {
	Read    int // input records
	Emitted int // output records
	Skipped int // overlapping-deletion alleles
	Elapsed time.Duration
	Reason  Reason
}

// DefaultProgressInterval is how often progress is logged.
const DefaultProgressInterval = time.Minute

// Pipeline decomposes input records into one annotated output record per
// alternate allele.
type Pipeline struct {
	transformer *Transformer
	samples     []string
	annotator   Annotator
	predictor   Predictor

	// MaxRecords stops the run after the input record that brings the
	// emitted count to this value; 0 means no limit.
	MaxRecords int
	// ProgressInterval is the minimum time between progress messages.
	ProgressInterval time.Duration

	logger  *zap.Logger
	printer *message.Printer
	now     func() time.Time
}

// NewPipeline creates a pipeline writing samples in the given order.
// annotator and predictor may be nil to skip the respective annotations.
func NewPipeline(tr *Transformer, samples []string, annotator Annotator, predictor Predictor) *Pipeline {
	return &Pipeline{
		transformer:      tr,
		samples:          samples,
		annotator:        annotator,
		predictor:        predictor,
		ProgressInterval: DefaultProgressInterval,
		logger:           zap.NewNop(),
		printer:          message.NewPrinter(language.English),
		now:              time.Now,
	}
}

// SetLogger sets the logger for progress messages.
func (p *Pipeline) SetLogger(l *zap.Logger) {
	p.logger = l
}

// Run reads src to the end (or the record limit) and writes to sink.
// Records are processed one at a time in input order; alleles of a record
// in increasing allele order. The limit is checked after each input record,
// so all alleles of the record that reaches it are written. Stats.Elapsed is
// set on every return, including errors.
func (p *Pipeline) Run(ctx context.Context, src RecordSource, sink RecordSink) (stats Stats, err error) {
	start := p.now()
	lastProgress := start
	defer func() {
		stats.Elapsed = p.now().Sub(start)
	}()

	index, err := BuildSampleIndex(p.samples, src.SampleNames())
	if err != nil {
		return stats, WithPhase("reading header", KindLookup, err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("ingest interrupted: %w", err)
		}

		rec, err := src.Next()
		if err != nil {
			return stats, WithPhase("reading input", KindIO, err)
		}
		if rec == nil {
			break
		}
		stats.Read++

		for allele := 1; allele <= len(rec.Alt); allele++ {
			emitted, err := p.emit(rec, index, allele, sink)
			if err != nil {
				return stats, err
			}
			if !emitted {
				stats.Skipped++
				continue
			}
			stats.Emitted++
		}

		if p.MaxRecords > 0 && stats.Emitted >= p.MaxRecords {
			stats.Reason = ReasonLimitReached
			p.logger.Warn("stopping early, record limit reached",
				zap.Int("max_records", p.MaxRecords),
				zap.Int("emitted", stats.Emitted))
			return stats, nil
		}

		if now := p.now(); now.Sub(lastProgress) >= p.ProgressInterval {
			lastProgress = now
			p.logger.Info("processing",
				zap.String("at", fmt.Sprintf("%s:%d", rec.Chrom, rec.Pos)),
				zap.String("emitted", p.printer.Sprintf("%d", stats.Emitted)))
		}
	}

	stats.Reason = ReasonExhausted
	return stats, nil
}

// emit builds, annotates and writes the record of one alternate allele.
// It reports false for alleles that are not emitted.
func (p *Pipeline) emit(rec *vcf.Record, index SampleIndex, allele int, sink RecordSink) (bool, error) {
	v := rec.Allele(allele)
	where := fmt.Sprintf("%s:%d %s>%s", v.Chrom, v.Pos, v.Ref, v.Alt)

	format, rows, err := p.transformer.Genotypes(rec, index, allele)
	if err != nil {
		return false, WithPhase("transforming record "+where, KindFormat, err)
	}
	key := datasource.KeyForVariant(v)

	if v.Alt == OverlappingDeletion {
		return false, nil
	}

	out := &vcf.Record{
		Chrom:   v.Chrom,
		Pos:     v.Pos,
		ID:      ".",
		Ref:     v.Ref,
		Alt:     []string{v.Alt},
		Qual:    ".",
		Filter:  ".",
		Format:  format,
		Samples: rows,
	}

	if p.annotator != nil {
		if err := p.annotator.Annotate(v.Chrom, key, &out.Info); err != nil {
			return false, WithPhase("annotating record "+where, KindLookup, err)
		}
	}
	if p.predictor != nil {
		effects, err := p.predictor.Predict(v.Chrom, v.Pos, v.Ref, v.Alt)
		if err != nil {
			return false, WithPhase("predicting effects of "+where, KindLookup, err)
		}
		if nonEmpty := dropEmpty(effects); len(nonEmpty) > 0 {
			out.Info.Set(InfoANN, vcf.StringArray(nonEmpty...))
		}
	}

	if err := sink.WriteRecord(out); err != nil {
		return false, WithPhase("writing record "+where, KindIO, err)
	}
	return true, nil
}

func dropEmpty(xs []string) []string {
	var out []string
	for _, x := range xs {
		if x != "" {
			out = append(out, x)
		}
	}
	return out
}
