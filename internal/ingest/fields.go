// Package ingest turns caller VCF files into per-allele annotated records.
package ingest

import (
	"fmt"
	"slices"
)

// FORMAT keys handled by the ingest.
const (
	FieldGenotype      = "GT"
	FieldGenotypeQual  = "GQ"
	FieldReadDepth     = "DP"
	FieldAlleleDepths  = "AD"
	FieldPhaseSet      = "PS"
	FieldSecondaryQual = "SQ" // DRAGEN per-allele quality, written as GQ
)

// FieldTable describes which FORMAT keys are read, which are written, and
// how keys are renamed on the way. It is immutable after construction.
type FieldTable struct {
	output  []string
	known   []string
	renames map[string]string
}

// NewFieldTable returns the table for the standard FORMAT keys.
func NewFieldTable() *FieldTable {
	ft := &FieldTable{
		output: []string{
			FieldGenotype,
			FieldGenotypeQual,
			FieldReadDepth,
			FieldAlleleDepths,
			FieldPhaseSet,
		},
		known: []string{
			FieldGenotype,
			FieldGenotypeQual,
			FieldReadDepth,
			FieldAlleleDepths,
			FieldPhaseSet,
			FieldSecondaryQual,
		},
		renames: map[string]string{
			FieldSecondaryQual: FieldGenotypeQual,
		},
	}
	if err := ft.validate(); err != nil {
		panic(err)
	}
	return ft
}

func (ft *FieldTable) validate() error {
	for _, f := range ft.output {
		if !ft.IsKnown(f) {
			return fmt.Errorf("output field %s is not a known field", f)
		}
	}
	for from, to := range ft.renames {
		if !ft.IsKnown(from) {
			return fmt.Errorf("rename source %s is not a known field", from)
		}
		if !ft.IsOutput(to) {
			return fmt.Errorf("rename target %s is not an output field", to)
		}
	}
	return nil
}

// Resolve maps an input key to the key it is written as.
func (ft *FieldTable) Resolve(field string) string {
	if to, ok := ft.renames[field]; ok {
		return to
	}
	return field
}

// IsKnown reports whether the transformer can read field.
func (ft *FieldTable) IsKnown(field string) bool {
	return slices.Contains(ft.known, field)
}

// IsOutput reports whether field may appear in output records.
func (ft *FieldTable) IsOutput(field string) bool {
	return slices.Contains(ft.output, field)
}

// OutputFields returns the output keys in canonical order.
func (ft *FieldTable) OutputFields() []string {
	return slices.Clone(ft.output)
}
