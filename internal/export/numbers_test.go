package export_test

import (
	"testing"

	"github.com/khiva-consulting/backoffice-api/internal/export"
	"github.com/stretchr/testify/assert"
)

func TestNumberToWordsUz(t *testing.T) {
	tests := []struct {
		name     string
		input    int64
		expected string
	}{
		{"zero", 0, "nol"},
		{"single digit", 7, "yetti"},
		{"teens", 14, "o'n to'rt"},
		{"round tens", 50, "ellik"},
		{"hundreds", 305, "uch yuz besh"},
		{"round hundred", 100, "bir yuz"},
		{"thousands", 1_000, "bir ming"},
		{"compound thousands", 45_230, "qirq besh ming ikki yuz o'ttiz"},
		{"millions", 12_000_000, "o'n ikki million"},
		{"typical service fee", 8_500_000, "sakkiz million besh yuz ming"},
		{"milliard", 2_000_000_001, "ikki milliard bir"},
		{"trillion", 1_000_000_000_000, "bir trillion"},
		{"negative", -42, "minus qirq ikki"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, export.NumberToWordsUz(tt.input))
		})
	}
}
