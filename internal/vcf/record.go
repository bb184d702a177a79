package vcf

// InfoField is one key of the INFO column. Flags carry no value.
type InfoField struct {
	Key   string
	Value Value
	Flag  bool
}

// Info is an ordered INFO column.
type Info []InfoField

// Get returns the value stored for key.
func (in Info) Get(key string) (Value, bool) {
	for _, f := range in {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Set stores a value, replacing an existing key in place or appending.
func (in *Info) Set(key string, v Value) {
	for i := range *in {
		if (*in)[i].Key == key {
			(*in)[i] = InfoField{Key: key, Value: v}
			return
		}
	}
	*in = append(*in, InfoField{Key: key, Value: v})
}

// SetFlag stores a flag key.
func (in *Info) SetFlag(key string) {
	for _, f := range *in {
		if f.Key == key {
			return
		}
	}
	*in = append(*in, InfoField{Key: key, Flag: true})
}

// Record is one VCF data line with typed FORMAT values.
type Record struct {
	Chrom  string
	Pos    int64 // 1-based
	ID     string
	Ref    string
	Alt    []string
	Qual   string
	Filter string
	Info   Info

	// Format lists the FORMAT keys; Samples holds one row per sample with
	// one value per key.
	Format  []string
	Samples [][]Value
}

// Allele returns the single-allele view for the 1-based alternate allele i.
func (r *Record) Allele(i int) Variant {
	return Variant{Chrom: r.Chrom, Pos: r.Pos, Ref: r.Ref, Alt: r.Alt[i-1]}
}

// Sample returns the FORMAT view of the sample at column index i.
func (r *Record) Sample(i int) Sample {
	return Sample{keys: r.Format, values: r.Samples[i]}
}

// Sample gives keyed access to one sample's FORMAT values.
type Sample struct {
	keys   []string
	values []Value
}

// NewSample builds a sample from parallel key and value slices.
func NewSample(keys []string, values []Value) Sample {
	return Sample{keys: keys, values: values}
}

// Get returns the value for key. ok is false when the key is not part of
// the record's FORMAT column.
func (s Sample) Get(key string) (v Value, ok bool) {
	for i, k := range s.keys {
		if k == key {
			if i < len(s.values) {
				return s.values[i], true
			}
			return Missing(), true
		}
	}
	return Value{}, false
}
