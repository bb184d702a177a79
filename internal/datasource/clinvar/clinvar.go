// Package clinvar decodes ClinVar records from the ClinVar database and
// writes them to INFO.
package clinvar

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/szabgab/varfish-server-worker/internal/vcf"
)

// Record is the stored value of one ClinVar variant.
type Record struct {
	VCV     string   `json:"vcv"`
	Clinsig []string `json:"clinsig"`
}

// Decode parses a stored record.
func Decode(buf []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(buf, &r); err != nil {
		return Record{}, fmt.Errorf("decode clinvar record: %w", err)
	}
	return r, nil
}

// Encode serializes the record.
func (r Record) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// significance ranks clinical significance terms, most significant first.
var significance = []string{
	"pathogenic",
	"likely_pathogenic",
	"uncertain_significance",
	"likely_benign",
	"benign",
}

// Significance returns the most significant term of the record. Terms
// outside the ranking come after ranked ones in their stored order.
func (r Record) Significance() string {
	for _, s := range significance {
		for _, c := range r.Clinsig {
			if c == s {
				return c
			}
		}
	}
	if len(r.Clinsig) > 0 {
		return r.Clinsig[0]
	}
	return ""
}

// Annotate writes clinvar_clinsig and clinvar_vcv.
func (r Record) Annotate(info *vcf.Info) {
	if sig := r.Significance(); sig != "" {
		info.Set("clinvar_clinsig", vcf.String(sig))
	}
	if r.VCV != "" {
		info.Set("clinvar_vcv", vcf.String(r.VCV))
	}
}
