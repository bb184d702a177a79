package vcf

import (
	"fmt"
	"strings"
)

// FieldType is the declared Type= of an INFO or FORMAT definition.
type FieldType string

const (
	TypeInteger   FieldType = "Integer"
	TypeFloat     FieldType = "Float"
	TypeString    FieldType = "String"
	TypeCharacter FieldType = "Character"
	TypeFlag      FieldType = "Flag"
)

func (t FieldType) kind() Kind {
	switch t {
	case TypeInteger:
		return KindInteger
	case TypeFloat:
		return KindFloat
	}
	return KindString
}

// FieldDef describes one ##INFO or ##FORMAT header line.
type FieldDef struct {
	ID          string
	Number      string // "1", "A", "R", "G", "." or a count
	Type        FieldType
	Description string
}

// IsScalar reports whether the field holds at most one value.
func (d FieldDef) IsScalar() bool {
	return d.Number == "1" || d.Number == "0"
}

// Line renders the definition as a header line of the given kind
// ("INFO" or "FORMAT").
func (d FieldDef) Line(kind string) string {
	return fmt.Sprintf("##%s=<ID=%s,Number=%s,Type=%s,Description=%q>",
		kind, d.ID, d.Number, d.Type, d.Description)
}

// Standard FORMAT definitions used when an input header omits them.
var standardFormats = map[string]FieldDef{
	"GT": {ID: "GT", Number: "1", Type: TypeString, Description: "Genotype"},
	"GQ": {ID: "GQ", Number: "1", Type: TypeInteger, Description: "Conditional genotype quality"},
	"DP": {ID: "DP", Number: "1", Type: TypeInteger, Description: "Read depth"},
	"AD": {ID: "AD", Number: "R", Type: TypeInteger, Description: "Read depth for each allele"},
	"PS": {ID: "PS", Number: "1", Type: TypeInteger, Description: "Phase set"},
	"SQ": {ID: "SQ", Number: "A", Type: TypeFloat, Description: "Somatic quality"},
}

// Header holds the meta lines and sample names of a VCF file.
type Header struct {
	Meta        []string // "##" lines in input order
	SampleNames []string

	formats map[string]FieldDef
	infos   map[string]FieldDef
}

// NewHeader creates an empty header for the given samples.
func NewHeader(samples []string) *Header {
	return &Header{
		SampleNames: samples,
		formats:     make(map[string]FieldDef),
		infos:       make(map[string]FieldDef),
	}
}

// AddMeta appends a "##" line, registering INFO and FORMAT definitions.
func (h *Header) AddMeta(line string) {
	h.Meta = append(h.Meta, line)
	switch {
	case strings.HasPrefix(line, "##FORMAT=<"):
		if d, ok := parseDefinition(line[len("##FORMAT=<"):]); ok {
			h.formats[d.ID] = d
		}
	case strings.HasPrefix(line, "##INFO=<"):
		if d, ok := parseDefinition(line[len("##INFO=<"):]); ok {
			h.infos[d.ID] = d
		}
	}
}

// Format returns the FORMAT definition for id. Undeclared standard keys
// get their VCF 4.x definition, anything else is treated as a string list.
func (h *Header) Format(id string) FieldDef {
	if d, ok := h.formats[id]; ok {
		return d
	}
	if d, ok := standardFormats[id]; ok {
		return d
	}
	return FieldDef{ID: id, Number: ".", Type: TypeString}
}

// Info returns the INFO definition for id.
func (h *Header) Info(id string) FieldDef {
	if d, ok := h.infos[id]; ok {
		return d
	}
	return FieldDef{ID: id, Number: ".", Type: TypeString}
}

// HasFormat reports whether the header declares a FORMAT field.
func (h *Header) HasFormat(id string) bool {
	_, ok := h.formats[id]
	return ok
}

// ColumnLine returns the "#CHROM" line.
func (h *Header) ColumnLine() string {
	cols := []string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO"}
	if len(h.SampleNames) > 0 {
		cols = append(cols, "FORMAT")
		cols = append(cols, h.SampleNames...)
	}
	return strings.Join(cols, "\t")
}

// parseDefinition parses the body of an INFO/FORMAT line, e.g.
// `ID=DP,Number=1,Type=Integer,Description="Read depth">`.
func parseDefinition(body string) (FieldDef, bool) {
	body = strings.TrimSuffix(body, ">")
	var d FieldDef
	for body != "" {
		key, rest, ok := strings.Cut(body, "=")
		if !ok {
			break
		}
		var val string
		if strings.HasPrefix(rest, "\"") {
			end := strings.Index(rest[1:], "\"")
			if end < 0 {
				val, body = rest[1:], ""
			} else {
				val = rest[1 : end+1]
				body = strings.TrimPrefix(rest[end+2:], ",")
			}
		} else {
			val, body, _ = strings.Cut(rest, ",")
		}
		switch key {
		case "ID":
			d.ID = val
		case "Number":
			d.Number = val
		case "Type":
			d.Type = FieldType(val)
		case "Description":
			d.Description = val
		}
	}
	return d, d.ID != ""
}
