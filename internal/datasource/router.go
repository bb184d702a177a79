// Package datasource routes annotation lookups to the frequency and
// ClinVar stores.
package datasource

import (
	"fmt"

	"github.com/szabgab/varfish-server-worker/internal/datasource/clinvar"
	"github.com/szabgab/varfish-server-worker/internal/datasource/freqs"
	"github.com/szabgab/varfish-server-worker/internal/vcf"
)

// Category is the frequency scope a chromosome is routed to.
type Category int

const (
	NonCanonical Category = iota
	Autosomal
	Gonosomal
	Mitochondrial
)

func (c Category) String() string {
	switch c {
	case Autosomal:
		return "autosomal"
	case Gonosomal:
		return "gonosomal"
	case Mitochondrial:
		return "mitochondrial"
	}
	return "non-canonical"
}

// Scope names of the frequency and ClinVar databases.
const (
	ScopeAutosomal     = "autosomal"
	ScopeGonosomal     = "gonosomal"
	ScopeMitochondrial = "mitochondrial"
	ScopeClinvar       = "clinvar"
)

var (
	chromAuto = map[string]bool{
		"1": true, "2": true, "3": true, "4": true, "5": true, "6": true,
		"7": true, "8": true, "9": true, "10": true, "11": true, "12": true,
		"13": true, "14": true, "15": true, "16": true, "17": true, "18": true,
		"19": true, "20": true, "21": true, "22": true,
	}
	chromXY = map[string]bool{"X": true, "Y": true}
	chromMT = map[string]bool{"MT": true}
)

// Classify returns the category of a chromosome name. "chr" prefixes and
// "M" are normalised first.
func Classify(chrom string) Category {
	chrom = vcf.NormalizeChrom(chrom)
	switch {
	case chromAuto[chrom]:
		return Autosomal
	case chromXY[chrom]:
		return Gonosomal
	case chromMT[chrom]:
		return Mitochondrial
	}
	return NonCanonical
}

// Getter is a read-only key-value scope. A missing key returns ok=false and
// a nil error.
type Getter interface {
	Get(key []byte) (value []byte, ok bool, err error)
}

// Router dispatches lookups to the store bound to each category.
type Router struct {
	freqs   map[Category]Getter
	clinvar Getter
}

// NewRouter creates a router over the three frequency scopes and the
// ClinVar scope.
func NewRouter(auto, xy, mt, clinvar Getter) *Router {
	return &Router{
		freqs: map[Category]Getter{
			Autosomal:     auto,
			Gonosomal:     xy,
			Mitochondrial: mt,
		},
		clinvar: clinvar,
	}
}

// Lookup queries the frequency scope of cat. NonCanonical never hits a store.
func (r *Router) Lookup(cat Category, key []byte) ([]byte, bool, error) {
	g, ok := r.freqs[cat]
	if !ok || g == nil {
		return nil, false, nil
	}
	val, found, err := g.Get(key)
	if err != nil {
		return nil, false, fmt.Errorf("%s frequency lookup: %w", cat, err)
	}
	return val, found, nil
}

// LookupClinical queries the ClinVar scope.
func (r *Router) LookupClinical(key []byte) ([]byte, bool, error) {
	if r.clinvar == nil {
		return nil, false, nil
	}
	val, found, err := r.clinvar.Get(key)
	if err != nil {
		return nil, false, fmt.Errorf("clinvar lookup: %w", err)
	}
	return val, found, nil
}

// Annotate looks up key for a variant on chrom and writes what is found into
// info. Non-canonical chromosomes are left unannotated without any lookup;
// misses attach nothing.
func (r *Router) Annotate(chrom string, key []byte, info *vcf.Info) error {
	cat := Classify(chrom)
	if cat == NonCanonical {
		return nil
	}

	val, found, err := r.Lookup(cat, key)
	if err != nil {
		return err
	}
	if found {
		if err := annotateFreqs(cat, val, info); err != nil {
			return err
		}
	}

	val, found, err = r.LookupClinical(key)
	if err != nil {
		return err
	}
	if found {
		rec, err := clinvar.Decode(val)
		if err != nil {
			return err
		}
		rec.Annotate(info)
	}
	return nil
}

func annotateFreqs(cat Category, val []byte, info *vcf.Info) error {
	switch cat {
	case Autosomal:
		rec, err := freqs.DecodeAuto(val)
		if err != nil {
			return err
		}
		rec.Annotate(info)
	case Gonosomal:
		rec, err := freqs.DecodeXY(val)
		if err != nil {
			return err
		}
		rec.Annotate(info)
	case Mitochondrial:
		rec, err := freqs.DecodeMt(val)
		if err != nil {
			return err
		}
		rec.Annotate(info)
	}
	return nil
}
