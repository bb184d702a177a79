package ingest

import "fmt"

// SampleIndex maps output sample positions to input sample positions.
type SampleIndex []int

// BuildSampleIndex returns the input position of every output sample.
func BuildSampleIndex(output, input []string) (SampleIndex, error) {
	inputIdx := make(map[string]int, len(input))
	for i, name := range input {
		inputIdx[name] = i
	}

	index := make(SampleIndex, len(output))
	for i, name := range output {
		j, ok := inputIdx[name]
		if !ok {
			return nil, &Error{
				Kind:  KindLookup,
				Value: name,
				Err:   fmt.Errorf("output sample %s not found in input samples", name),
			}
		}
		index[i] = j
	}
	return index, nil
}
