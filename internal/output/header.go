package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/szabgab/varfish-server-worker/internal/datasource/freqs"
	"github.com/szabgab/varfish-server-worker/internal/vcf"
)

// Version is written into the output header.
var Version = "dev"

// HeaderOptions configures the output header.
type HeaderOptions struct {
	FileDate      time.Time
	CaseUUID      uuid.UUID
	GenomeRelease string   // "grch37" or "grch38"
	Samples       []string // output sample order, from the pedigree
	FormatFields  []string // FORMAT keys written to the output
}

// BuildHeader creates the output header from the input header. Contig
// lines are kept, INFO lines describe the annotations, FORMAT lines the
// output fields.
func BuildHeader(in *vcf.Header, opts HeaderOptions) (*vcf.Header, error) {
	if opts.CaseUUID == uuid.Nil {
		return nil, fmt.Errorf("case UUID must be set")
	}
	assembly, err := assemblyName(opts.GenomeRelease)
	if err != nil {
		return nil, err
	}

	out := vcf.NewHeader(opts.Samples)
	out.AddMeta("##fileformat=VCFv4.2")
	out.AddMeta("##fileDate=" + opts.FileDate.Format("20060102"))
	out.AddMeta("##x-varfish-case-uuid=" + opts.CaseUUID.String())
	out.AddMeta(fmt.Sprintf("##x-varfish-version=<ID=seqvars-ingest,Version=%s>", Version))
	out.AddMeta("##reference=" + assembly)

	for _, line := range in.Meta {
		if strings.HasPrefix(line, "##contig=") {
			out.AddMeta(line)
		}
	}

	for _, d := range infoDefs() {
		out.AddMeta(d.Line("INFO"))
	}
	for _, id := range opts.FormatFields {
		out.AddMeta(outputFormat(in, id).Line("FORMAT"))
	}
	return out, nil
}

func assemblyName(release string) (string, error) {
	switch strings.ToLower(release) {
	case "grch37":
		return "GRCh37", nil
	case "grch38":
		return "GRCh38", nil
	}
	return "", fmt.Errorf("unknown genome release %q", release)
}

// outputFormat returns the FORMAT definition written for id. GQ filled
// from SQ (and no GQ in the input) is declared as a float.
func outputFormat(in *vcf.Header, id string) vcf.FieldDef {
	switch id {
	case "GQ":
		if in.HasFormat("SQ") && !in.HasFormat("GQ") {
			return vcf.FieldDef{ID: "GQ", Number: "1", Type: vcf.TypeFloat, Description: "Conditional genotype quality (from SQ)"}
		}
		return vcf.FieldDef{ID: "GQ", Number: "1", Type: vcf.TypeInteger, Description: "Conditional genotype quality"}
	case "AD":
		return vcf.FieldDef{ID: "AD", Number: "R", Type: vcf.TypeInteger, Description: "Allelic depths for the ref and alt alleles in the order listed"}
	}
	return in.Format(id)
}

func infoDefs() []vcf.FieldDef {
	var defs []vcf.FieldDef
	for _, key := range freqs.InfoFields() {
		defs = append(defs, vcf.FieldDef{
			ID:          key,
			Number:      "1",
			Type:        vcf.TypeInteger,
			Description: describeFreq(key),
		})
	}
	defs = append(defs,
		vcf.FieldDef{ID: "clinvar_clinsig", Number: "1", Type: vcf.TypeString, Description: "ClinVar clinical significance"},
		vcf.FieldDef{ID: "clinvar_vcv", Number: "1", Type: vcf.TypeString, Description: "ClinVar VCV accession"},
		vcf.FieldDef{ID: "ANN", Number: ".", Type: vcf.TypeString, Description: "Functional annotations: 'Allele | Annotation | Annotation_Impact | Gene_Name | Gene_ID | Feature_Type | Feature_ID | Transcript_BioType | Rank | HGVS.c | HGVS.p | cDNA.pos / cDNA.length | CDS.pos / CDS.length | AA.pos / AA.length | Distance | ERRORS / WARNINGS / INFO'"},
	)
	return defs
}

func describeFreq(key string) string {
	cohorts := []struct{ prefix, name string }{
		{"gnomad_exomes_", "gnomAD exomes"},
		{"gnomad_genomes_", "gnomAD genomes"},
		{"gnomad_mtdna_", "gnomAD-mtDNA"},
		{"helix_", "HelixMtDb"},
	}
	counts := map[string]string{
		"an":   "number of alleles",
		"hom":  "number of homozygous carriers",
		"het":  "number of heterozygous carriers",
		"hemi": "number of hemizygous carriers",
	}
	for _, c := range cohorts {
		if suffix, ok := strings.CutPrefix(key, c.prefix); ok {
			return c.name + " " + counts[suffix]
		}
	}
	return key
}
