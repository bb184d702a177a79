package vcf

import (
	"strconv"
	"strings"
)

// Kind tags the shape held by a Value.
type Kind uint8

const (
	KindMissing Kind = iota
	KindInteger
	KindFloat
	KindString
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	}
	return "unknown"
}

// Value is a single FORMAT or INFO value. Arrays hold scalar elements of one
// kind (Elem), any of which may be missing.
type Value struct {
	kind  Kind
	elem  Kind
	i     int
	f     float64
	s     string
	items []Value
}

// Missing returns the "." value.
func Missing() Value { return Value{} }

// Int returns an integer value.
func Int(i int) Value { return Value{kind: KindInteger, i: i} }

// Float returns a float value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// IntArray returns an integer array without missing elements.
func IntArray(xs ...int) Value {
	items := make([]Value, len(xs))
	for i, x := range xs {
		items[i] = Int(x)
	}
	return Value{kind: KindArray, elem: KindInteger, items: items}
}

// FloatArray returns a float array without missing elements.
func FloatArray(xs ...float64) Value {
	items := make([]Value, len(xs))
	for i, x := range xs {
		items[i] = Float(x)
	}
	return Value{kind: KindArray, elem: KindFloat, items: items}
}

// StringArray returns a string array without missing elements.
func StringArray(xs ...string) Value {
	items := make([]Value, len(xs))
	for i, x := range xs {
		items[i] = String(x)
	}
	return Value{kind: KindArray, elem: KindString, items: items}
}

// Array returns an array of the given element kind. Elements must be either
// missing or of kind elem.
func Array(elem Kind, items ...Value) Value {
	return Value{kind: KindArray, elem: elem, items: items}
}

// Kind returns the shape of the value.
func (v Value) Kind() Kind { return v.kind }

// Elem returns the element kind of an array, KindMissing otherwise.
func (v Value) Elem() Kind { return v.elem }

// IsMissing reports whether v is ".".
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// AsInt returns the integer held by v.
func (v Value) AsInt() (int, bool) { return v.i, v.kind == KindInteger }

// AsFloat returns the float held by v.
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// Items returns the elements of an array value, nil for scalars.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.items
}

// Len returns the number of array elements, 0 for scalars.
func (v Value) Len() int { return len(v.Items()) }

// Equal compares two values structurally.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindMissing:
		return true
	case KindInteger:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindArray:
		if v.elem != o.elem || len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// String formats the value in VCF text form.
func (v Value) String() string {
	switch v.kind {
	case KindMissing:
		return "."
	case KindInteger:
		return strconv.Itoa(v.i)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindString:
		return v.s
	case KindArray:
		if len(v.items) == 0 {
			return "."
		}
		parts := make([]string, len(v.items))
		for i, item := range v.items {
			parts[i] = item.String()
		}
		return strings.Join(parts, ",")
	}
	return "."
}

// ParseValue parses raw VCF text according to a field definition. Values
// that do not parse as the declared type fall back to strings so that
// downstream shape checks see them as such.
func ParseValue(raw string, def FieldDef) Value {
	if raw == "" || raw == "." {
		return Missing()
	}
	if def.Type == TypeString && def.Number == "1" {
		return String(raw)
	}
	if !def.IsScalar() || strings.IndexByte(raw, ',') >= 0 {
		parts := strings.Split(raw, ",")
		items := make([]Value, len(parts))
		elem := KindMissing
		for i, p := range parts {
			items[i] = parseScalar(p, def.Type)
			if k := items[i].kind; k != KindMissing {
				if elem == KindMissing {
					elem = k
				} else if elem != k {
					return String(raw)
				}
			}
		}
		if elem == KindMissing {
			elem = def.Type.kind()
		}
		return Array(elem, items...)
	}
	return parseScalar(raw, def.Type)
}

func parseScalar(raw string, typ FieldType) Value {
	if raw == "" || raw == "." {
		return Missing()
	}
	switch typ {
	case TypeInteger:
		if i, err := strconv.Atoi(raw); err == nil {
			return Int(i)
		}
	case TypeFloat:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return Float(f)
		}
	}
	return String(raw)
}
