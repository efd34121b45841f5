package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumberToWords(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0.75", "CERO LEMPIRAS CON 75/100"},
		{"1", "UN LEMPIRA CON 00/100"},
		{"21", "VEINTIÚN LEMPIRAS CON 00/100"},
		{"100", "CIEN LEMPIRAS CON 00/100"},
		{"101", "CIENTO UN LEMPIRAS CON 00/100"},
		{"1500.50", "MIL QUINIENTOS LEMPIRAS CON 50/100"},
		{"31000", "TREINTA Y UN MIL LEMPIRAS CON 00/100"},
		{"2000000", "DOS MILLONES LEMPIRAS CON 00/100"},
		{"2.999", "TRES LEMPIRAS CON 00/100"},
		{"-45.10", "MENOS CUARENTA Y CINCO LEMPIRAS CON 10/100"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NumberToWords(d(tt.input)))
		})
	}
}
