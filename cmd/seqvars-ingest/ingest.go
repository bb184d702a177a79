package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/szabgab/varfish-server-worker/internal/annotate"
	"github.com/szabgab/varfish-server-worker/internal/cache"
	"github.com/szabgab/varfish-server-worker/internal/datasource"
	"github.com/szabgab/varfish-server-worker/internal/duckdb"
	"github.com/szabgab/varfish-server-worker/internal/ingest"
	"github.com/szabgab/varfish-server-worker/internal/output"
	"github.com/szabgab/varfish-server-worker/internal/ped"
	"github.com/szabgab/varfish-server-worker/internal/vcf"
)

// Viper keys of the ingest command.
const (
	keyPathIn        = "path-in"
	keyPathOut       = "path-out"
	keyPathPed       = "path-ped"
	keyPathDB        = "path-db"
	keyGenomeRelease = "genome-release"
	keyCaseUUID      = "case-uuid"
	keyFileDate      = "file-date"
	keyMaxVarCount   = "max-var-count"
	keyLenientAD     = "lenient-ad"
	keyCanonicalOnly = "canonical-only"
)

// ingestOptions holds the resolved settings of one ingest run.
type ingestOptions struct {
	PathIn        string
	PathOut       string
	PathPed       string
	PathDB        string
	GenomeRelease string
	CaseUUID      uuid.UUID
	FileDate      time.Time
	MaxVarCount   int
	LenientAD     bool
	CanonicalOnly bool
}

func newIngestCmd(newLogger func() (*zap.Logger, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Decompose, annotate and re-order a caller VCF",
		Example: `  seqvars-ingest ingest --path-in calls.vcf.gz --path-out out.vcf.gz \
    --path-ped case.ped --path-db /data/varfish --genome-release grch37 \
    --case-uuid 5b7c6f5c-3c1a-4f8e-9d0c-2d7f1b8e4a11`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := ingestOptionsFromConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger()
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, err = runIngest(ctx, logger, opts)
			return err
		},
	}

	f := cmd.Flags()
	f.String(keyPathIn, "", "Input VCF file, plain or gzip/BGZF compressed ('-' for stdin)")
	f.String(keyPathOut, "", "Output VCF file, BGZF compressed if it ends in .gz")
	f.String(keyPathPed, "", "PED file giving the output samples and their order")
	f.String(keyPathDB, "", "Database directory holding the annotation stores")
	f.String(keyGenomeRelease, "grch37", "Genome release: grch37 or grch38")
	f.String(keyCaseUUID, "", "Case UUID written to the output header")
	f.String(keyFileDate, "", "File date (YYYYMMDD) for the output header (default: today)")
	f.Int(keyMaxVarCount, 0, "Stop after writing this many records (0: no limit)")
	f.Bool(keyLenientAD, false, "Pass AD values that are not integer arrays through unchanged")
	f.Bool(keyCanonicalOnly, false, "Only predict effects on canonical transcripts")

	return cmd
}

// ingestOptionsFromConfig resolves and validates the ingest settings from
// flags, environment and config file.
func ingestOptionsFromConfig() (ingestOptions, error) {
	opts := ingestOptions{
		PathIn:        viper.GetString(keyPathIn),
		PathOut:       viper.GetString(keyPathOut),
		PathPed:       viper.GetString(keyPathPed),
		PathDB:        viper.GetString(keyPathDB),
		GenomeRelease: strings.ToLower(viper.GetString(keyGenomeRelease)),
		MaxVarCount:   viper.GetInt(keyMaxVarCount),
		LenientAD:     viper.GetBool(keyLenientAD),
		CanonicalOnly: viper.GetBool(keyCanonicalOnly),
	}

	for key, val := range map[string]string{
		keyPathIn:   opts.PathIn,
		keyPathOut:  opts.PathOut,
		keyPathPed:  opts.PathPed,
		keyPathDB:   opts.PathDB,
		keyCaseUUID: viper.GetString(keyCaseUUID),
	} {
		if val == "" {
			return opts, fmt.Errorf("--%s is required", key)
		}
	}
	if opts.GenomeRelease != "grch37" && opts.GenomeRelease != "grch38" {
		return opts, fmt.Errorf("unknown genome release %q (want grch37 or grch38)", opts.GenomeRelease)
	}
	if opts.MaxVarCount < 0 {
		return opts, fmt.Errorf("--%s must not be negative", keyMaxVarCount)
	}

	id, err := uuid.Parse(viper.GetString(keyCaseUUID))
	if err != nil {
		return opts, fmt.Errorf("invalid case UUID: %w", err)
	}
	opts.CaseUUID = id

	opts.FileDate = time.Now()
	if s := viper.GetString(keyFileDate); s != "" {
		opts.FileDate, err = time.Parse("20060102", s)
		if err != nil {
			return opts, fmt.Errorf("invalid file date %q (want YYYYMMDD): %w", s, err)
		}
	}
	return opts, nil
}

// freqsDBPath returns the frequency store of a release.
func freqsDBPath(dbDir, release string) string {
	return filepath.Join(dbDir, release, "seqvars", "freqs", "freqs.duckdb")
}

// clinvarDBPath returns the ClinVar store of a release.
func clinvarDBPath(dbDir, release string) string {
	return filepath.Join(dbDir, release, "seqvars", "clinvar", "clinvar.duckdb")
}

// runIngest runs one ingest from opts.PathIn to opts.PathOut.
func runIngest(ctx context.Context, logger *zap.Logger, opts ingestOptions) (ingest.Stats, error) {
	var stats ingest.Stats
	p := message.NewPrinter(language.English)
	start := time.Now()

	pedigree, err := ped.Read(opts.PathPed)
	if err != nil {
		return stats, ingest.WithPhase("reading pedigree", ingest.KindIO, err)
	}
	samples := pedigree.SampleNames()
	logger.Info("read pedigree", zap.Strings("samples", samples))

	router, closeStores, err := openStores(opts, logger)
	if err != nil {
		return stats, ingest.WithPhase("opening stores", ingest.KindIO, err)
	}
	defer closeStores()

	c := cache.New()
	tdb := duckdb.NewTranscriptDB(duckdb.TranscriptDBPath(opts.PathDB, opts.GenomeRelease))
	if !tdb.Exists() {
		return stats, ingest.WithPhase("opening stores", ingest.KindIO,
			fmt.Errorf("transcript database %s not found, create it with 'txdb build'", tdb.Path()))
	}
	if err := tdb.Load(c, opts.GenomeRelease); err != nil {
		return stats, ingest.WithPhase("opening stores", ingest.KindIO, err)
	}
	logger.Info("loaded transcripts",
		zap.String("path", tdb.Path()),
		zap.String("count", p.Sprintf("%d", c.TranscriptCount())))

	predictor := annotate.NewPredictor(c)
	predictor.SetCanonicalOnly(opts.CanonicalOnly)
	predictor.SetLogger(logger)

	parser, err := vcf.NewParser(opts.PathIn)
	if err != nil {
		return stats, ingest.WithPhase("reading header", ingest.KindIO, err)
	}
	defer parser.Close()

	table := ingest.NewFieldTable()
	tr := ingest.NewTransformer(table)
	tr.Lenient = opts.LenientAD

	header, err := output.BuildHeader(parser.Header(), output.HeaderOptions{
		FileDate:      opts.FileDate,
		CaseUUID:      opts.CaseUUID,
		GenomeRelease: opts.GenomeRelease,
		Samples:       samples,
		FormatFields:  table.OutputFields(),
	})
	if err != nil {
		return stats, ingest.WithPhase("writing header", ingest.KindIO, err)
	}

	w, err := output.Create(opts.PathOut)
	if err != nil {
		return stats, ingest.WithPhase("writing header", ingest.KindIO, err)
	}
	if err := w.WriteHeader(header); err != nil {
		w.Close()
		return stats, ingest.WithPhase("writing header", ingest.KindIO, err)
	}

	pipeline := ingest.NewPipeline(tr, samples, router, predictor)
	pipeline.MaxRecords = opts.MaxVarCount
	pipeline.SetLogger(logger)

	stats, err = pipeline.Run(ctx, parser, w)
	if cerr := w.Close(); cerr != nil && err == nil {
		err = ingest.WithPhase("closing output", ingest.KindIO, cerr)
	}
	if err != nil {
		return stats, err
	}

	logger.Info("ingest done",
		zap.String("read", p.Sprintf("%d", stats.Read)),
		zap.String("written", p.Sprintf("%d", stats.Emitted)),
		zap.String("skipped", p.Sprintf("%d", stats.Skipped)),
		zap.Stringer("reason", stats.Reason),
		zap.Duration("elapsed", time.Since(start)))
	return stats, nil
}

// openStores opens the frequency and ClinVar stores read-only and returns
// the router over their scopes and a function closing both.
func openStores(opts ingestOptions, logger *zap.Logger) (*datasource.Router, func(), error) {
	freqsPath := freqsDBPath(opts.PathDB, opts.GenomeRelease)
	freqStore, err := duckdb.OpenReadOnly(freqsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open frequency store %s: %w", freqsPath, err)
	}

	clinvarPath := clinvarDBPath(opts.PathDB, opts.GenomeRelease)
	clinvarStore, err := duckdb.OpenReadOnly(clinvarPath)
	if err != nil {
		freqStore.Close()
		return nil, nil, fmt.Errorf("open clinvar store %s: %w", clinvarPath, err)
	}
	closeAll := func() {
		freqStore.Close()
		clinvarStore.Close()
	}

	for _, s := range []*duckdb.Store{freqStore, clinvarStore} {
		if err := s.CheckRelease(opts.GenomeRelease); err != nil {
			closeAll()
			return nil, nil, err
		}
	}

	var scopes []*duckdb.Scope
	for _, ss := range []struct {
		store *duckdb.Store
		name  string
	}{
		{freqStore, datasource.ScopeAutosomal},
		{freqStore, datasource.ScopeGonosomal},
		{freqStore, datasource.ScopeMitochondrial},
		{clinvarStore, datasource.ScopeClinvar},
	} {
		sc, err := ss.store.Scope(ss.name)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("store %s: %w", ss.store.Path(), err)
		}
		scopes = append(scopes, sc)
	}
	router := datasource.NewRouter(scopes[0], scopes[1], scopes[2], scopes[3])
	logger.Info("opened stores",
		zap.String("freqs", freqsPath),
		zap.String("clinvar", clinvarPath))
	return router, closeAll, nil
}
