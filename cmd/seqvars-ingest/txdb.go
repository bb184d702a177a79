package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/szabgab/varfish-server-worker/internal/cache"
	"github.com/szabgab/varfish-server-worker/internal/duckdb"
)

func newTxDBCmd(newLogger func() (*zap.Logger, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "txdb",
		Short: "Manage the transcript database used for effect prediction",
	}
	cmd.AddCommand(newTxDBBuildCmd(newLogger))
	return cmd
}

func newTxDBBuildCmd(newLogger func() (*zap.Logger, error)) *cobra.Command {
	var (
		pathJSON      string
		pathGTF       string
		pathFasta     string
		pathCanonical string
		pathDB        string
		release       string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the transcript database from GENCODE or JSON transcript files",
		Long: `Build {path-db}/{release}/txs.bin.zst either from a GENCODE GTF file
(plus the pc_transcripts FASTA for coding sequences) or from a directory of
*.json files, each holding an array of transcript models.`,
		Example: `  seqvars-ingest txdb build --path-gtf gencode.v46.annotation.gtf.gz \
    --path-fasta gencode.v46.pc_transcripts.fa.gz --path-db /data/varfish --genome-release grch38
  seqvars-ingest txdb build --path-json ./transcripts --path-db /data/varfish`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck
			var loader cache.TranscriptLoader
			switch {
			case pathGTF != "" && pathJSON != "":
				return fmt.Errorf("--path-gtf and --path-json are mutually exclusive")
			case pathGTF != "":
				gl := cache.NewGENCODELoader(pathGTF, pathFasta)
				if pathCanonical != "" {
					overrides, err := cache.LoadCanonicalOverrides(pathCanonical)
					if err != nil {
						return err
					}
					gl.SetCanonicalOverrides(overrides)
				}
				loader = gl
			case pathJSON != "":
				loader = cache.NewLoader(pathJSON)
			default:
				return fmt.Errorf("one of --path-gtf or --path-json is required")
			}
			return runTxDBBuild(logger, loader, pathDB, strings.ToLower(release))
		},
	}

	cmd.Flags().StringVar(&pathGTF, "path-gtf", "", "GENCODE GTF annotation file (optionally gzipped)")
	cmd.Flags().StringVar(&pathFasta, "path-fasta", "", "GENCODE pc_transcripts FASTA file for coding sequences")
	cmd.Flags().StringVar(&pathCanonical, "path-canonical", "", "TSV of canonical transcript per gene, overriding GTF tags")
	cmd.Flags().StringVar(&pathJSON, "path-json", "", "Directory of transcript JSON files")
	cmd.Flags().StringVar(&pathDB, "path-db", "", "Database directory")
	cmd.Flags().StringVar(&release, "genome-release", "grch37", "Genome release: grch37 or grch38")
	_ = cmd.MarkFlagRequired("path-db")

	return cmd
}

func runTxDBBuild(logger *zap.Logger, loader cache.TranscriptLoader, pathDB, release string) error {
	if release != "grch37" && release != "grch38" {
		return fmt.Errorf("unknown genome release %q (want grch37 or grch38)", release)
	}

	c := cache.New()
	if err := loader.LoadAll(c); err != nil {
		return fmt.Errorf("loading transcripts: %w", err)
	}

	tdb := duckdb.NewTranscriptDB(duckdb.TranscriptDBPath(pathDB, release))
	if err := tdb.Write(c, release); err != nil {
		return fmt.Errorf("writing transcript db: %w", err)
	}

	p := message.NewPrinter(language.English)
	logger.Info("wrote transcript db",
		zap.String("path", tdb.Path()),
		zap.String("transcripts", p.Sprintf("%d", c.TranscriptCount())),
		zap.Int("chromosomes", len(c.Chromosomes())))
	return nil
}
