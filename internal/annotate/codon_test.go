package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslateCodon(t *testing.T) {
	tests := []struct {
		name  string
		codon string
		want  byte
	}{
		{"ATG -> Met (start)", "ATG", 'M'},
		{"GGT -> Gly", "GGT", 'G'},
		{"TGT -> Cys", "TGT", 'C'},
		{"TAA -> Stop", "TAA", '*'},
		{"TAG -> Stop", "TAG", '*'},
		{"TGA -> Stop", "TGA", '*'},
		{"lowercase atg", "atg", 'M'},
		{"too short", "AT", 'X'},
		{"invalid bases", "XYZ", 'X'},
		{"empty", "", 'X'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, string(tt.want), string(TranslateCodon(tt.codon)))
		})
	}
}

func TestComplement(t *testing.T) {
	assert.Equal(t, byte('T'), Complement('A'))
	assert.Equal(t, byte('g'), Complement('c'))
	assert.Equal(t, byte('N'), Complement('N'))
}

func TestMutateCodon(t *testing.T) {
	assert.Equal(t, "TGT", MutateCodon("GGT", 0, 'T'))
	assert.Equal(t, "GGC", MutateCodon("GGT", 2, 'C'))
	assert.Equal(t, "GGT", MutateCodon("GGT", 3, 'C'), "out of range")
	assert.True(t, IsStopCodon("TGA"))
	assert.False(t, IsStopCodon("TGG"))
}
