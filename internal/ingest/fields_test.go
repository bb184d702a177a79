package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldTable(t *testing.T) {
	ft := NewFieldTable()

	assert.Equal(t, []string{"GT", "GQ", "DP", "AD", "PS"}, ft.OutputFields())
	for _, f := range []string{"GT", "GQ", "DP", "AD", "PS", "SQ"} {
		assert.True(t, ft.IsKnown(f), f)
	}

	assert.Equal(t, "GQ", ft.Resolve("SQ"))
	assert.Equal(t, "GQ", ft.Resolve("GQ"))
	assert.Equal(t, "PL", ft.Resolve("PL"), "unknown fields are not renamed")

	assert.True(t, ft.IsKnown("SQ"))
	assert.False(t, ft.IsOutput("SQ"))
	assert.False(t, ft.IsKnown("PL"))

	// Returned slices are copies.
	out := ft.OutputFields()
	out[0] = "XX"
	assert.Equal(t, "GT", ft.OutputFields()[0])
}

func TestFieldTable_Validate(t *testing.T) {
	tests := []struct {
		name string
		ft   *FieldTable
	}{
		{"output not known", &FieldTable{output: []string{"GT"}, known: []string{"DP"}}},
		{"rename source not known", &FieldTable{output: []string{"GQ"}, known: []string{"GQ"}, renames: map[string]string{"SQ": "GQ"}}},
		{"rename target not output", &FieldTable{output: []string{"GT"}, known: []string{"GT", "SQ"}, renames: map[string]string{"SQ": "GQ"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.ft.validate())
		})
	}
	assert.NoError(t, NewFieldTable().validate())
}
