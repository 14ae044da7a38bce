package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"150,00", "150.00", true},
		{"121", "121", true},
		{"1 234,56", "1234.56", true},
		{"1.234,56", "1234.56", true},
		{"12.345.678,90", "12345678.90", true},
		{"23.95", "23.95", true},
		{"23.9", "23.9", true},
		{"1.234", "1234", true}, // dot with 3 trailing digits is grouping
		{"0,50", "0.50", true},
		{"", "", false},
		{"abc", "", false},
		{"12,34,56", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAmount(tt.in)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got.String(), "input %q", tt.in)
			}
		})
	}
}

func TestParseRate(t *testing.T) {
	r, ok := ParseRate("19")
	require.True(t, ok)
	assert.Equal(t, "19", r.String())

	r, ok = ParseRate("9,5")
	require.True(t, ok)
	assert.Equal(t, "9.5", r.String())

	_, ok = ParseRate("x")
	assert.False(t, ok)
}
