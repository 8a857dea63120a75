package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_StripsDiacritics(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"accented cafe", "Café", "cafe"},
		{"tilde n", "Azúcar Moreno", "azucar moreno"},
		{"enye", "Ñoquis", "noquis"},
		{"mixed case", "LECHE Entera", "leche entera"},
		{"surrounding whitespace", "  pan integral  ", "pan integral"},
		{"empty", "", ""},
		{"already normalized", "leche", "leche"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalize_ComposedAndDecomposedAgree(t *testing.T) {
	// Precomposed and combining-mark forms must normalize identically.
	assert.Equal(t, Normalize("españa"), Normalize("españa"))
	assert.Equal(t, Normalize("café"), Normalize("café"))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"Café con Leche", "  MERMELADA  ", "piña", "àéîõü"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", in)
	}
}
