package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSKU(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"A0012/B0012", []string{"A0012", "B0012"}},
		{"A0012", []string{"A0012"}},
		{"", []string{}},
		{" A0012 / B00012 /C0012/D0012 ", []string{"A0012", "B00012", "C0012", "D0012"}},
		{"A0012//", []string{"A0012"}},
		{"/", []string{}},
	}

	for _, tt := range tests {
		got := ParseSKU(tt.raw)
		assert.Equal(t, tt.raw, got.Raw)
		assert.Equal(t, tt.want, got.Parts, "raw=%q", tt.raw)
	}
}
